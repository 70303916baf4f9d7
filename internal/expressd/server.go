package expressd

import (
	"context"
	"fmt"
	"net"

	"github.com/kart-io/logger"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kart-io/express-plugin/pkg/health"
	"github.com/kart-io/express-plugin/pkg/metrics"
	"github.com/kart-io/express-plugin/pkg/middleware"
	"github.com/kart-io/express-plugin/pkg/plugin"
	"github.com/kart-io/express-plugin/pkg/plugin/express"
)

// Server is a running express-server instance.
type Server struct {
	host    *plugin.Host
	express *express.Plugin
	health  *health.Plugin
}

// composePlugins returns the plugins composing the service in host order.
// Middleware plugins precede route plugins, since gin only applies
// middleware to routes registered after it. Extra plugins come last.
func composePlugins(opts *Options, reg prometheus.Registerer, extra ...plugin.Plugin) (*express.Plugin, *health.Plugin, []plugin.Plugin) {
	exp := express.New(opts.Express)
	hp := health.New(opts.Health)

	plugins := []plugin.Plugin{exp}
	mw := opts.Middleware
	if mw.Recovery.Enabled {
		plugins = append(plugins, middleware.NewRecovery(mw.Recovery, nil))
	}
	if mw.RequestID.Enabled {
		plugins = append(plugins, middleware.NewRequestID(mw.RequestID))
	}
	if mw.Logger.Enabled {
		plugins = append(plugins, middleware.NewLogger(mw.Logger))
	}
	plugins = append(plugins,
		metrics.New(opts.Metrics, reg),
		hp,
		middleware.NewVersion(mw.Version),
		&helloPlugin{},
	)
	plugins = append(plugins, extra...)
	return exp, hp, plugins
}

// NewServer composes the plugins and drives them through the host lifecycle.
// When it returns without error the server is listening, unless a plugin
// vetoed the start. Extra plugins are registered after the built-in ones.
func NewServer(ctx context.Context, opts *Options, reg prometheus.Registerer, extra ...plugin.Plugin) (*Server, error) {
	exp, hp, plugins := composePlugins(opts, reg, extra...)

	host, err := plugin.InitPlugins(ctx, plugins...)
	if err != nil {
		_ = host.Shutdown(ctx)
		return nil, fmt.Errorf("failed to start %s: %w", Name, err)
	}

	return &Server{host: host, express: exp, health: hp}, nil
}

// Addr returns the bound address, or nil when the server is not listening.
func (s *Server) Addr() net.Addr { return s.express.Addr() }

// Health returns the health plugin so callers can add checks.
func (s *Server) Health() *health.Plugin { return s.health }

// Done is closed once the HTTP server is stopped.
func (s *Server) Done() <-chan struct{} { return s.express.Done() }

// Shutdown stops every plugin in reverse order.
func (s *Server) Shutdown(ctx context.Context) error {
	logger.Info("Shutting down " + Name)
	return s.host.Shutdown(ctx)
}
