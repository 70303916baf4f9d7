package middleware

import (
	"github.com/kart-io/express-plugin/pkg/options"
	"github.com/spf13/pflag"
)

// LoggerOptions defines access log middleware options.
type LoggerOptions struct {
	// Enabled installs the middleware.
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	// SkipPaths are not logged.
	SkipPaths []string `json:"skip-paths" mapstructure:"skip-paths"`
}

// NewLoggerOptions creates default access log options.
func NewLoggerOptions() *LoggerOptions {
	return &LoggerOptions{
		Enabled:   true,
		SkipPaths: []string{"/live", "/ready", "/metrics"},
	}
}

// AddFlags adds flags for access log options to the specified FlagSet.
func (o *LoggerOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "middleware.logger."
	fs.BoolVar(&o.Enabled, p+"enabled", o.Enabled, "Log every HTTP request.")
	fs.StringSliceVar(&o.SkipPaths, p+"skip-paths", o.SkipPaths, "Paths to skip logging.")
}

// Validate validates the access log options.
func (o *LoggerOptions) Validate() []error {
	return nil
}
