package middleware

import (
	"errors"
	"strings"

	"github.com/kart-io/express-plugin/pkg/options"
	"github.com/spf13/pflag"
)

// VersionOptions contains version endpoint configuration.
type VersionOptions struct {
	// Enabled registers the version endpoint.
	Enabled bool `json:"enabled" mapstructure:"enabled"`
	// Path is the version endpoint path.
	Path string `json:"path" mapstructure:"path"`
	// HideDetails hides build details (commit hash, build date).
	HideDetails bool `json:"hide-details" mapstructure:"hide-details"`
}

// NewVersionOptions creates default version options.
func NewVersionOptions() *VersionOptions {
	return &VersionOptions{
		Enabled: true,
		Path:    "/version",
	}
}

// AddFlags adds flags for version options to the specified FlagSet.
func (o *VersionOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "middleware.version."
	fs.BoolVar(&o.Enabled, p+"enabled", o.Enabled, "Register the version endpoint.")
	fs.StringVar(&o.Path, p+"path", o.Path, "Version endpoint path.")
	fs.BoolVar(&o.HideDetails, p+"hide-details", o.HideDetails, "Hide build details in the version response.")
}

// Validate validates version options.
func (o *VersionOptions) Validate() []error {
	if o == nil || !o.Enabled {
		return nil
	}
	if !strings.HasPrefix(o.Path, "/") {
		return []error{errors.New("middleware.version.path must start with '/'")}
	}
	return nil
}
