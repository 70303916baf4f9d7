package middleware

import (
	"github.com/kart-io/express-plugin/pkg/options"
	"github.com/spf13/pflag"
)

// RecoveryOptions defines recovery middleware options.
type RecoveryOptions struct {
	// Enabled installs the middleware.
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	// EnableStackTrace includes the stack in error responses outside production.
	EnableStackTrace bool `json:"enable-stack-trace" mapstructure:"enable-stack-trace"`
}

// NewRecoveryOptions creates default recovery options.
func NewRecoveryOptions() *RecoveryOptions {
	return &RecoveryOptions{Enabled: true}
}

// AddFlags adds flags for recovery options to the specified FlagSet.
func (o *RecoveryOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "middleware.recovery."
	fs.BoolVar(&o.Enabled, p+"enabled", o.Enabled, "Recover from handler panics.")
	fs.BoolVar(&o.EnableStackTrace, p+"enable-stack-trace", o.EnableStackTrace, "Include the stack trace in panic responses (ignored in production).")
}

// Validate validates the recovery options.
func (o *RecoveryOptions) Validate() []error {
	return nil
}
