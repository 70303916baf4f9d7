// Package metrics provides a sibling plugin that records Prometheus request
// metrics and exposes them on the express application.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	metricsopts "github.com/kart-io/express-plugin/pkg/options/metrics"
	"github.com/kart-io/express-plugin/pkg/plugin"
	"github.com/kart-io/express-plugin/pkg/plugin/express"
)

// Name is the plugin name.
const Name = "metrics"

// unmatchedRoute labels requests that matched no registered route, keeping
// label cardinality bounded.
const unmatchedRoute = "unmatched"

// Plugin installs the request metrics middleware and the scrape endpoint.
type Plugin struct {
	plugin.Base

	opts     metricsopts.Options
	reg      prometheus.Registerer
	gatherer prometheus.Gatherer

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

var (
	_ plugin.Plugin      = (*Plugin)(nil)
	_ express.Configurer = (*Plugin)(nil)
)

// New returns a metrics plugin registering its collectors on reg. When reg
// also implements prometheus.Gatherer it backs the scrape endpoint;
// otherwise the default gatherer is used. A nil reg selects the default
// registry and a nil opts uses defaults.
func New(opts *metricsopts.Options, reg prometheus.Registerer) *Plugin {
	if opts == nil {
		opts = metricsopts.NewOptions()
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	buckets := opts.Buckets
	if len(buckets) == 0 {
		buckets = prometheus.DefBuckets
	}

	return &Plugin{
		opts:     *opts,
		reg:      reg,
		gatherer: gatherer,
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: opts.Namespace,
			Subsystem: opts.Subsystem,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: opts.Namespace,
			Subsystem: opts.Subsystem,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   buckets,
		}, []string{"method", "route", "status"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: opts.Namespace,
			Subsystem: opts.Subsystem,
			Name:      "requests_in_flight",
			Help:      "Current number of HTTP requests being served.",
		}),
	}
}

// Name implements plugin.Plugin.
func (p *Plugin) Name() string { return Name }

// InitExpress implements express.Configurer.
func (p *Plugin) InitExpress(_ context.Context, app *gin.Engine, _ express.StopFunc) error {
	if !p.opts.Enabled {
		return nil
	}
	if err := p.register(); err != nil {
		return err
	}

	app.Use(p.Handler())
	app.GET(p.opts.Path, gin.WrapH(promhttp.HandlerFor(p.gatherer, promhttp.HandlerOpts{})))
	logger.Debugw("Metrics endpoint registered", "path", p.opts.Path)
	return nil
}

// register adds the collectors to the registerer, adopting collectors that
// an earlier instance already registered.
func (p *Plugin) register() error {
	var err error
	if p.requests, err = registerOrExisting(p.reg, p.requests); err != nil {
		return err
	}
	if p.duration, err = registerOrExisting(p.reg, p.duration); err != nil {
		return err
	}
	if p.inFlight, err = registerOrExisting(p.reg, p.inFlight); err != nil {
		return err
	}
	return nil
}

func registerOrExisting[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, fmt.Errorf("register metrics collector: %w", err)
}

// Handler returns the middleware that records request metrics.
func (p *Plugin) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		p.inFlight.Inc()
		defer p.inFlight.Dec()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		status := strconv.Itoa(c.Writer.Status())
		p.requests.WithLabelValues(c.Request.Method, route, status).Inc()
		p.duration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
	}
}
