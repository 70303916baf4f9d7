package logger

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddFlags(t *testing.T) {
	o := NewOptions()
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	o.AddFlags(fs)

	require.NoError(t, fs.Parse([]string{"--log.level=DEBUG", "--log.format=console"}))
	assert.Equal(t, "DEBUG", o.Level)
	assert.Equal(t, "console", o.Format)
}

func TestValidateDefaults(t *testing.T) {
	assert.Empty(t, NewOptions().Validate())
}

func TestCreateLogger(t *testing.T) {
	o := NewOptions()
	o.AddInitialField("service.name", "test")

	log, err := o.CreateLogger()
	require.NoError(t, err)
	assert.NotNil(t, log)
}
