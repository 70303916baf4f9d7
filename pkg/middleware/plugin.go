// Package middleware provides sibling plugins that install gin middleware
// and routes on the express application.
//
// Each plugin implements express.Configurer. Middleware only applies to
// routes registered after it, so middleware plugins should be registered
// before plugins that add routes.
package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/express-plugin/pkg/plugin"
	"github.com/kart-io/express-plugin/pkg/plugin/express"
)

// Plugin installs a single gin middleware on the express application.
type Plugin struct {
	plugin.Base

	name    string
	handler gin.HandlerFunc
}

var (
	_ plugin.Plugin      = (*Plugin)(nil)
	_ express.Configurer = (*Plugin)(nil)
)

// New returns a plugin named name that installs handler.
func New(name string, handler gin.HandlerFunc) *Plugin {
	return &Plugin{name: name, handler: handler}
}

// Name implements plugin.Plugin.
func (p *Plugin) Name() string { return p.name }

// InitExpress implements express.Configurer.
func (p *Plugin) InitExpress(_ context.Context, app *gin.Engine, _ express.StopFunc) error {
	app.Use(p.handler)
	logger.Debugw("Middleware installed", "middleware", p.name)
	return nil
}
