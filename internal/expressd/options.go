package expressd

import (
	"errors"

	"github.com/spf13/pflag"

	expressopts "github.com/kart-io/express-plugin/pkg/options/express"
	healthopts "github.com/kart-io/express-plugin/pkg/options/health"
	logopts "github.com/kart-io/express-plugin/pkg/options/logger"
	metricsopts "github.com/kart-io/express-plugin/pkg/options/metrics"
	mwopts "github.com/kart-io/express-plugin/pkg/options/middleware"
)

// Options contains all express-server options.
type Options struct {
	// Express contains HTTP server configuration.
	Express *expressopts.Options `json:"express" mapstructure:"express"`

	// Log contains logger configuration.
	Log *logopts.Options `json:"log" mapstructure:"log"`

	// Middleware contains the built-in middleware configuration.
	Middleware *mwopts.Options `json:"middleware" mapstructure:"middleware"`

	// Health contains liveness and readiness probe configuration.
	Health *healthopts.Options `json:"health" mapstructure:"health"`

	// Metrics contains Prometheus metrics configuration.
	Metrics *metricsopts.Options `json:"metrics" mapstructure:"metrics"`
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Express:    expressopts.NewOptions(),
		Log:        logopts.NewOptions(),
		Middleware: mwopts.NewOptions(),
		Health:     healthopts.NewOptions(),
		Metrics:    metricsopts.NewOptions(),
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.Express.AddFlags(fs)
	o.Log.AddFlags(fs)
	o.Middleware.AddFlags(fs)
	o.Health.AddFlags(fs)
	o.Metrics.AddFlags(fs)
}

// Validate validates every option group and reports all problems at once.
func (o *Options) Validate() error {
	var errs []error
	errs = append(errs, o.Express.Validate()...)
	errs = append(errs, o.Log.Validate()...)
	errs = append(errs, o.Middleware.Validate()...)
	errs = append(errs, o.Health.Validate()...)
	errs = append(errs, o.Metrics.Validate()...)
	return errors.Join(errs...)
}

// Complete completes the options.
func (o *Options) Complete() error {
	if err := o.Express.Complete(); err != nil {
		return err
	}
	if err := o.Log.Complete(); err != nil {
		return err
	}
	if err := o.Middleware.Complete(); err != nil {
		return err
	}
	if err := o.Health.Complete(); err != nil {
		return err
	}
	return o.Metrics.Complete()
}
