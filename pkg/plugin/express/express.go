// Package express adapts the plugin lifecycle to an HTTP server.
//
// During Init the plugin resolves its listen port. During PostInit it builds a
// gin engine, hands it to every sibling implementing Configurer, runs every
// sibling implementing Finalizer, and then starts listening unless a sibling
// called the stop callback.
package express

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	apierrors "github.com/kart-io/express-plugin/pkg/errors"
	expressopts "github.com/kart-io/express-plugin/pkg/options/express"
	"github.com/kart-io/express-plugin/pkg/plugin"
	"github.com/kart-io/express-plugin/pkg/response"
	"github.com/kart-io/logger"
)

// Name identifies the plugin to the host.
const Name = "express"

var (
	// ErrNotInitialized is returned by PostInit when Init has not run.
	ErrNotInitialized = errors.New("express: plugin not initialized")
	// ErrAlreadyStarted is returned by PostInit when it has already run.
	ErrAlreadyStarted = errors.New("express: PostInit already called")
)

type state int

const (
	stateUnconfigured state = iota
	stateInitialized
	stateConfiguring
	stateDone
)

// Plugin is the HTTP server lifecycle adapter.
type Plugin struct {
	opts *expressopts.Options

	mu       sync.Mutex
	state    state
	plugins  []plugin.Plugin
	port     int
	app      *gin.Engine
	server   *http.Server
	listener net.Listener
	stopped  bool
	done     chan struct{}
}

var (
	_ plugin.Plugin     = (*Plugin)(nil)
	_ plugin.Shutdowner = (*Plugin)(nil)
)

// New creates the plugin. A nil opts uses expressopts.NewOptions.
func New(opts *expressopts.Options) *Plugin {
	if opts == nil {
		opts = expressopts.NewOptions()
	}
	return &Plugin{opts: opts, done: make(chan struct{})}
}

// Name returns "express".
func (p *Plugin) Name() string {
	return Name
}

// Port returns the port resolved during Init.
func (p *Plugin) Port() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.port
}

// ExpressApp returns the HTTP application, or nil before PostInit.
func (p *Plugin) ExpressApp() *gin.Engine {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.app
}

// Addr returns the address the server is bound to, or nil when it is not
// listening. It differs from Port when the port is 0.
func (p *Plugin) Addr() net.Addr {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.listener == nil {
		return nil
	}
	return p.listener.Addr()
}

// Stopped reports whether the stop callback or Shutdown has been called.
func (p *Plugin) Stopped() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stopped
}

// Done returns a channel that is closed once the plugin is stopped, either by
// the stop callback or by Shutdown.
func (p *Plugin) Done() <-chan struct{} {
	return p.done
}

// Init records the sibling plugins and resolves the listen port from the
// environment.
func (p *Plugin) Init(_ context.Context, plugins []plugin.Plugin) error {
	port := p.opts.ResolvePort(os.LookupEnv)

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != stateUnconfigured {
		return nil
	}
	p.plugins = append([]plugin.Plugin(nil), plugins...)
	p.port = port
	p.state = stateInitialized

	logger.Debugw("Resolved HTTP port", "port", port, "env", p.opts.PortEnv)
	return nil
}

// PostInit builds the application, runs the sibling hooks and starts the
// server. Errors returned by sibling hooks are returned unchanged.
func (p *Plugin) PostInit(ctx context.Context) error {
	p.mu.Lock()
	switch p.state {
	case stateUnconfigured:
		p.mu.Unlock()
		return ErrNotInitialized
	case stateConfiguring, stateDone:
		p.mu.Unlock()
		return ErrAlreadyStarted
	}
	p.state = stateConfiguring
	app := p.newApp()
	p.app = app
	siblings := p.plugins
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.state = stateDone
		p.mu.Unlock()
	}()

	// Hooks run without the lock held: any of them may call Stop.
	for _, sibling := range siblings {
		c, ok := sibling.(Configurer)
		if !ok {
			continue
		}
		if err := c.InitExpress(ctx, app, p.Stop); err != nil {
			return err
		}
	}

	for _, sibling := range siblings {
		f, ok := sibling.(Finalizer)
		if !ok {
			continue
		}
		if err := f.PostInitExpress(ctx); err != nil {
			return err
		}
	}

	return p.listen()
}

// newApp constructs the gin engine. Callers hold p.mu.
func (p *Plugin) newApp() *gin.Engine {
	gin.SetMode(p.opts.Mode)
	app := gin.New()
	app.NoRoute(func(c *gin.Context) {
		response.Fail(c, apierrors.ErrRouteNotFound)
	})
	return app
}

func (p *Plugin) listen() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		logger.Infow("HTTP server start vetoed by a plugin", "port", p.port)
		return nil
	}

	addr := p.opts.Addr(p.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:      p.app,
		ReadTimeout:  p.opts.ReadTimeout,
		WriteTimeout: p.opts.WriteTimeout,
		IdleTimeout:  p.opts.IdleTimeout,
	}
	p.server = srv
	p.listener = ln

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("HTTP server stopped unexpectedly", "addr", ln.Addr().String(), "error", err)
		}
	}()

	logger.Infow("HTTP server listening", "addr", ln.Addr().String())
	return nil
}

// Stop is the stop callback handed to siblings. It marks the plugin stopped
// and returns without waiting. A listening server stops accepting
// connections and is shut down gracefully in the background within the
// configured shutdown timeout, so a request handler may call Stop and still
// complete its response.
func (p *Plugin) Stop() {
	srv := p.detach()
	if srv == nil {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), p.opts.ShutdownTimeout)
		defer cancel()

		if err := shutdownServer(ctx, srv); err != nil {
			logger.Warnw("HTTP server did not shut down gracefully", "error", err)
		}
	}()
}

// Shutdown marks the plugin stopped and gracefully shuts the server down,
// waiting for in-flight requests. If ctx expires first, remaining
// connections are closed and ctx's error is returned.
func (p *Plugin) Shutdown(ctx context.Context) error {
	srv := p.detach()
	if srv == nil {
		return nil
	}
	return shutdownServer(ctx, srv)
}

// detach marks the plugin stopped and hands over the running server, if any.
// Only the first caller receives the server.
func (p *Plugin) detach() *http.Server {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.stopped {
		p.stopped = true
		close(p.done)
	}
	srv := p.server
	p.server = nil
	p.listener = nil
	return srv
}

func shutdownServer(ctx context.Context, srv *http.Server) error {
	logger.Info("HTTP server shutting down")
	if err := srv.Shutdown(ctx); err != nil {
		_ = srv.Close()
		return err
	}
	return nil
}
