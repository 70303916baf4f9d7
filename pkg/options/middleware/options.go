// Package middleware provides configuration options for the built-in
// middleware plugins.
package middleware

import (
	"github.com/kart-io/express-plugin/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options aggregates the options of every built-in middleware plugin.
type Options struct {
	Recovery  *RecoveryOptions  `json:"recovery" mapstructure:"recovery"`
	RequestID *RequestIDOptions `json:"request-id" mapstructure:"request-id"`
	Logger    *LoggerOptions    `json:"logger" mapstructure:"logger"`
	Version   *VersionOptions   `json:"version" mapstructure:"version"`
}

// NewOptions creates Options with every middleware at its defaults.
func NewOptions() *Options {
	return &Options{
		Recovery:  NewRecoveryOptions(),
		RequestID: NewRequestIDOptions(),
		Logger:    NewLoggerOptions(),
		Version:   NewVersionOptions(),
	}
}

// AddFlags adds the flags of every middleware.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	o.Recovery.AddFlags(fs, prefixes...)
	o.RequestID.AddFlags(fs, prefixes...)
	o.Logger.AddFlags(fs, prefixes...)
	o.Version.AddFlags(fs, prefixes...)
}

// Validate validates every middleware.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}
	var errs []error
	errs = append(errs, o.Recovery.Validate()...)
	errs = append(errs, o.RequestID.Validate()...)
	errs = append(errs, o.Logger.Validate()...)
	errs = append(errs, o.Version.Validate()...)
	return errs
}

// Complete completes the options.
func (o *Options) Complete() error {
	return nil
}
