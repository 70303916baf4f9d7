package middleware

import (
	"errors"

	"github.com/kart-io/express-plugin/pkg/options"
	"github.com/spf13/pflag"
)

// RequestIDOptions defines request ID middleware options.
type RequestIDOptions struct {
	// Enabled installs the middleware.
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	// Header is the header carrying the request ID in both directions.
	Header string `json:"header" mapstructure:"header"`
}

// NewRequestIDOptions creates default request ID options.
func NewRequestIDOptions() *RequestIDOptions {
	return &RequestIDOptions{
		Enabled: true,
		Header:  "X-Request-ID",
	}
}

// AddFlags adds flags for request ID options to the specified FlagSet.
func (o *RequestIDOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "middleware.request-id."
	fs.BoolVar(&o.Enabled, p+"enabled", o.Enabled, "Assign a request ID to every request.")
	fs.StringVar(&o.Header, p+"header", o.Header, "Request ID header name.")
}

// Validate validates the request ID options.
func (o *RequestIDOptions) Validate() []error {
	if o == nil || !o.Enabled {
		return nil
	}
	if o.Header == "" {
		return []error{errors.New("middleware.request-id.header is required")}
	}
	return nil
}
