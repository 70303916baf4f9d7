// Package health provides a sibling plugin that serves liveness and
// readiness probes on the express application.
//
// Readiness fails until every sibling has finished configuring the
// application, so traffic is only routed once routes are in place.
package health

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/heptiolabs/healthcheck"
	"github.com/kart-io/logger"

	healthopts "github.com/kart-io/express-plugin/pkg/options/health"
	"github.com/kart-io/express-plugin/pkg/plugin"
	"github.com/kart-io/express-plugin/pkg/plugin/express"
)

// Name is the plugin name.
const Name = "health"

// ErrNotReady is reported by the readiness probe until the express
// application has been finalized.
var ErrNotReady = errors.New("express application is not finalized")

// Plugin serves the liveness and readiness endpoints.
type Plugin struct {
	plugin.Base

	opts    healthopts.Options
	handler healthcheck.Handler
	ready   atomic.Bool
}

var (
	_ plugin.Plugin      = (*Plugin)(nil)
	_ express.Configurer = (*Plugin)(nil)
	_ express.Finalizer  = (*Plugin)(nil)
)

// New returns a health plugin. A nil opts uses defaults.
func New(opts *healthopts.Options) *Plugin {
	if opts == nil {
		opts = healthopts.NewOptions()
	}
	p := &Plugin{
		opts:    *opts,
		handler: healthcheck.NewHandler(),
	}
	p.handler.AddReadinessCheck("express", p.checkFinalized)
	return p
}

// Name implements plugin.Plugin.
func (p *Plugin) Name() string { return Name }

// AddLivenessCheck registers a check that fails the liveness probe.
func (p *Plugin) AddLivenessCheck(name string, check healthcheck.Check) {
	p.handler.AddLivenessCheck(name, check)
}

// AddReadinessCheck registers a check that fails the readiness probe.
func (p *Plugin) AddReadinessCheck(name string, check healthcheck.Check) {
	p.handler.AddReadinessCheck(name, check)
}

// Ready reports whether the application has been finalized.
func (p *Plugin) Ready() bool { return p.ready.Load() }

// InitExpress implements express.Configurer.
func (p *Plugin) InitExpress(_ context.Context, app *gin.Engine, _ express.StopFunc) error {
	if !p.opts.Enabled {
		return nil
	}
	app.GET(p.opts.LivenessPath, gin.WrapF(p.handler.LiveEndpoint))
	app.GET(p.opts.ReadinessPath, gin.WrapF(p.handler.ReadyEndpoint))
	logger.Debugw("Health endpoints registered",
		"liveness", p.opts.LivenessPath,
		"readiness", p.opts.ReadinessPath,
	)
	return nil
}

// PostInitExpress implements express.Finalizer.
func (p *Plugin) PostInitExpress(context.Context) error {
	p.ready.Store(true)
	return nil
}

func (p *Plugin) checkFinalized() error {
	if !p.ready.Load() {
		return ErrNotReady
	}
	return nil
}
