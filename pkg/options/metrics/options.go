// Package metrics provides configuration options for the metrics plugin.
package metrics

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kart-io/express-plugin/pkg/options"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options defines metrics options.
type Options struct {
	Enabled   bool      `json:"enabled" mapstructure:"enabled"`
	Path      string    `json:"path" mapstructure:"path"`
	Namespace string    `json:"namespace" mapstructure:"namespace"`
	Subsystem string    `json:"subsystem" mapstructure:"subsystem"`
	Buckets   []float64 `json:"buckets" mapstructure:"buckets"`
}

// NewOptions creates metrics options with default values.
func NewOptions() *Options {
	return &Options{
		Enabled:   true,
		Path:      "/metrics",
		Namespace: "express",
		Subsystem: "http",
		Buckets:   prometheus.DefBuckets,
	}
}

// AddFlags adds flags for metrics options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...) + "metrics."
	fs.BoolVar(&o.Enabled, p+"enabled", o.Enabled, "Collect request metrics and expose them.")
	fs.StringVar(&o.Path, p+"path", o.Path, "Metrics endpoint path.")
	fs.StringVar(&o.Namespace, p+"namespace", o.Namespace, "Metrics namespace.")
	fs.StringVar(&o.Subsystem, p+"subsystem", o.Subsystem, "Metrics subsystem.")
	fs.Float64SliceVar(&o.Buckets, p+"buckets", o.Buckets, "Request duration histogram buckets in seconds.")
}

// Validate validates the metrics options.
func (o *Options) Validate() []error {
	if o == nil || !o.Enabled {
		return nil
	}
	var errs []error
	if !strings.HasPrefix(o.Path, "/") {
		errs = append(errs, errors.New("metrics.path must start with '/'"))
	}
	if o.Namespace == "" {
		errs = append(errs, errors.New("metrics.namespace is required"))
	}
	for i, b := range o.Buckets {
		if i > 0 && b <= o.Buckets[i-1] {
			errs = append(errs, fmt.Errorf("metrics.buckets must be strictly increasing, got %v", o.Buckets))
			break
		}
	}
	return errs
}

// Complete completes the metrics options.
func (o *Options) Complete() error {
	if len(o.Buckets) == 0 {
		o.Buckets = prometheus.DefBuckets
	}
	return nil
}
