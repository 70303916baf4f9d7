// Package express provides configuration options for the express HTTP server
// plugin.
package express

import (
	"errors"
	"fmt"
	"net"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/kart-io/express-plugin/pkg/options"
	"github.com/spf13/pflag"
)

const (
	// DefaultPort is used when the port environment variable is absent or
	// not a valid port number.
	DefaultPort = 5173
	// DefaultPortEnv is the environment variable the port is read from.
	DefaultPortEnv = "PORT"

	maxPort = 65535
)

// Gin modes accepted by Mode.
const (
	ModeDebug   = "debug"
	ModeRelease = "release"
	ModeTest    = "test"
)

var _ options.IOptions = (*Options)(nil)

// Options contains the express plugin configuration.
type Options struct {
	// PortEnv names the environment variable holding the listen port.
	PortEnv string `json:"port-env" mapstructure:"port-env" validate:"required"`
	// DefaultPort is the fallback listen port.
	DefaultPort int `json:"default-port" mapstructure:"default-port" validate:"gte=0,lte=65535"`
	// Host is the interface to bind; empty binds all interfaces.
	Host string `json:"host" mapstructure:"host" validate:"omitempty,hostname|ip"`
	// Mode is the gin engine mode.
	Mode string `json:"mode" mapstructure:"mode" validate:"oneof=debug release test"`
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `json:"read-timeout" mapstructure:"read-timeout" validate:"gt=0"`
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration `json:"write-timeout" mapstructure:"write-timeout" validate:"gt=0"`
	// IdleTimeout is the maximum amount of time to wait for the next request.
	IdleTimeout time.Duration `json:"idle-timeout" mapstructure:"idle-timeout" validate:"gte=0"`
	// ShutdownTimeout bounds the graceful close triggered by the stop callback.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout" validate:"gt=0"`
}

// Option is a function that configures Options.
type Option func(*Options)

// NewOptions creates a new Options with default values.
func NewOptions() *Options {
	return &Options{
		PortEnv:         DefaultPortEnv,
		DefaultPort:     DefaultPort,
		Mode:            ModeRelease,
		ReadTimeout:     30 * time.Second,
		WriteTimeout:    30 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// AddFlags adds flags for express options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "express."
	fs.StringVar(&o.PortEnv, p+"port-env", o.PortEnv, "Environment variable the listen port is read from.")
	fs.IntVar(&o.DefaultPort, p+"default-port", o.DefaultPort, "Listen port used when the port environment variable is absent or invalid.")
	fs.StringVar(&o.Host, p+"host", o.Host, "Interface to bind. Empty binds all interfaces.")
	fs.StringVar(&o.Mode, p+"mode", o.Mode, "Gin engine mode (debug|release|test).")
	fs.DurationVar(&o.ReadTimeout, p+"read-timeout", o.ReadTimeout, "Timeout for reading the entire request.")
	fs.DurationVar(&o.WriteTimeout, p+"write-timeout", o.WriteTimeout, "Timeout before timing out writes of the response.")
	fs.DurationVar(&o.IdleTimeout, p+"idle-timeout", o.IdleTimeout, "Maximum amount of time to wait for the next request.")
	fs.DurationVar(&o.ShutdownTimeout, p+"shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout when the server is stopped.")
}

// Validate validates the express options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	err := structValidator.Struct(o)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []error{err}
	}

	errs := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		errs = append(errs, fmt.Errorf("express: %s", fe.Translate(translator)))
	}
	return errs
}

// Complete normalizes the options.
func (o *Options) Complete() error {
	o.PortEnv = strings.TrimSpace(o.PortEnv)
	o.Mode = strings.ToLower(strings.TrimSpace(o.Mode))
	if o.Mode == "" {
		o.Mode = ModeRelease
	}
	return nil
}

// ResolvePort reads the port from the PortEnv variable through lookup
// (normally os.LookupEnv). Absent, non-numeric or out-of-range values yield
// DefaultPort. Zero is a valid value and asks the kernel for a free port.
func (o *Options) ResolvePort(lookup func(string) (string, bool)) int {
	raw, ok := lookup(o.PortEnv)
	if !ok {
		return o.DefaultPort
	}
	port, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || port < 0 || port > maxPort {
		return o.DefaultPort
	}
	return port
}

// Addr returns the host:port listen address for port.
func (o *Options) Addr(port int) string {
	return net.JoinHostPort(o.Host, strconv.Itoa(port))
}

// WithPortEnv sets the port environment variable name.
func WithPortEnv(name string) Option {
	return func(o *Options) {
		o.PortEnv = name
	}
}

// WithDefaultPort sets the fallback port.
func WithDefaultPort(port int) Option {
	return func(o *Options) {
		o.DefaultPort = port
	}
}

// WithHost sets the bind interface.
func WithHost(host string) Option {
	return func(o *Options) {
		o.Host = host
	}
}

// WithMode sets the gin engine mode.
func WithMode(mode string) Option {
	return func(o *Options) {
		o.Mode = mode
	}
}

// WithShutdownTimeout sets the graceful shutdown timeout.
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ShutdownTimeout = d
	}
}

// ApplyOptions applies the given options to the Options.
func (o *Options) ApplyOptions(opts ...Option) {
	for _, opt := range opts {
		opt(o)
	}
}

var structValidator, translator = newValidator()

func newValidator() (*validator.Validate, ut.Translator) {
	v := validator.New()

	// Report flag-style names ("default-port") instead of Go field names.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	enLocale := en.New()
	trans, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	if err := entranslations.RegisterDefaultTranslations(v, trans); err != nil {
		panic(fmt.Sprintf("register validator translations: %v", err))
	}
	return v, trans
}
