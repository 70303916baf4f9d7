package expressd

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptionsAreValid(t *testing.T) {
	opts := NewOptions()
	require.NoError(t, opts.Complete())
	assert.NoError(t, opts.Validate())
}

func TestValidateAggregatesErrors(t *testing.T) {
	opts := NewOptions()
	opts.Health.LivenessPath = "live"
	opts.Metrics.Path = "metrics"
	opts.Middleware.Version.Path = "version"

	err := opts.Validate()
	require.Error(t, err)
	assert.ErrorContains(t, err, "health.liveness-path")
	assert.ErrorContains(t, err, "metrics.path")
	assert.ErrorContains(t, err, "middleware.version.path")
}

func TestFlagsAreRegistered(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	NewOptions().AddFlags(fs)

	for _, name := range []string{
		"express.port-env",
		"express.default-port",
		"log.level",
		"middleware.request-id.header",
		"health.readiness-path",
		"metrics.path",
	} {
		assert.NotNil(t, fs.Lookup(name), name)
	}
}
