// Package expressd implements express-server, an HTTP service assembled
// from plugins around the express lifecycle adapter.
package expressd

import (
	"context"
	"fmt"

	"github.com/kart-io/logger"
	"github.com/kart-io/version"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kart-io/express-plugin/pkg/app"
	"github.com/kart-io/express-plugin/pkg/plugin"
)

// Name is the name of the application.
const Name = "express-server"

const appDescription = `Express Server

An HTTP service whose server lifecycle is driven by plugins.

The listen port is read from the PORT environment variable
(default 5173). Sibling plugins configure the application before
the server starts listening:
  - Panic recovery, request IDs and access logging
  - Liveness and readiness probes
  - Prometheus metrics
  - Build information

Examples:
  # Start with default configuration
  express-server

  # Listen on port 8080
  PORT=8080 express-server

  # Read the port from another variable
  express-server --express.port-env=HTTP_PORT

  # Use config file
  express-server -c /etc/express-server/express-server.yaml

  # Enable debug logging
  express-server --log.level=debug

Configuration:
  Configuration can be provided via:
  - Command-line flags (highest priority)
  - Environment variables (prefix: EXPRESS_SERVER_)
  - Configuration file (YAML)
  - Default values (lowest priority)`

// NewApp creates a new application instance.
func NewApp() *app.App {
	opts := NewOptions()

	return app.NewApp(
		app.WithName(Name),
		app.WithShortDescription("Plugin-driven HTTP server"),
		app.WithDescription(appDescription),
		app.WithOptions(opts),
		app.WithRunFunc(func(ctx context.Context) error {
			return Run(ctx, opts)
		}),
	)
}

// Run starts the server and blocks until ctx is cancelled or a plugin stops
// the server, then shuts every plugin down. Extra plugins are composed after
// the built-in ones.
func Run(ctx context.Context, opts *Options, extra ...plugin.Plugin) error {
	opts.Log.AddInitialField("service.name", Name)
	opts.Log.AddInitialField("service.version", version.Get().GitVersion)
	if err := opts.Log.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Flush() }()

	logger.Infow("Starting "+Name, "version", version.Get().GitVersion)

	srv, err := NewServer(ctx, opts, prometheus.DefaultRegisterer, extra...)
	if err != nil {
		return err
	}

	select {
	case <-ctx.Done():
		logger.Info("Received shutdown signal")
	case <-srv.Done():
		logger.Info("HTTP server stopped by a plugin")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.Express.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
