// Package health provides configuration options for the health check plugin.
package health

import (
	"errors"
	"strings"

	"github.com/kart-io/express-plugin/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options defines health check options.
type Options struct {
	Enabled       bool   `json:"enabled" mapstructure:"enabled"`
	LivenessPath  string `json:"liveness-path" mapstructure:"liveness-path"`
	ReadinessPath string `json:"readiness-path" mapstructure:"readiness-path"`
}

// NewOptions creates health check options with default values.
func NewOptions() *Options {
	return &Options{
		Enabled:       true,
		LivenessPath:  "/live",
		ReadinessPath: "/ready",
	}
}

// AddFlags adds flags for health check options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "health."
	fs.BoolVar(&o.Enabled, p+"enabled", o.Enabled, "Register the liveness and readiness endpoints.")
	fs.StringVar(&o.LivenessPath, p+"liveness-path", o.LivenessPath, "Liveness probe path.")
	fs.StringVar(&o.ReadinessPath, p+"readiness-path", o.ReadinessPath, "Readiness probe path.")
}

// Validate validates the health check options.
func (o *Options) Validate() []error {
	if o == nil || !o.Enabled {
		return nil
	}
	var errs []error
	if !strings.HasPrefix(o.LivenessPath, "/") {
		errs = append(errs, errors.New("health.liveness-path must start with '/'"))
	}
	if !strings.HasPrefix(o.ReadinessPath, "/") {
		errs = append(errs, errors.New("health.readiness-path must start with '/'"))
	}
	if len(errs) == 0 && o.LivenessPath == o.ReadinessPath {
		errs = append(errs, errors.New("health.liveness-path and health.readiness-path must differ"))
	}
	return errs
}

// Complete completes the health check options.
func (o *Options) Complete() error {
	return nil
}
