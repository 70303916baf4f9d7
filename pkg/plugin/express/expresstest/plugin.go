// Package expresstest provides a recording sibling plugin for tests of code
// built on the express plugin.
package expresstest

import (
	"context"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/express-plugin/pkg/plugin"
	"github.com/kart-io/express-plugin/pkg/plugin/express"
)

// Recorder collects hook invocations across several test plugins so tests
// can assert on their relative order.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

// Record appends an event.
func (r *Recorder) Record(event string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// Plugin implements express.Configurer and express.Finalizer and records
// what it was given.
type Plugin struct {
	plugin.Base

	name        string
	configure   func(*gin.Engine)
	recorder    *Recorder
	initErr     error
	postInitErr error
	stopOnInit  bool
	stopOnPost  bool

	mu            sync.Mutex
	initCalls     int
	postInitCalls int
	app           *gin.Engine
	stop          express.StopFunc
}

var (
	_ plugin.Plugin      = (*Plugin)(nil)
	_ express.Configurer = (*Plugin)(nil)
	_ express.Finalizer  = (*Plugin)(nil)
)

// Option configures a Plugin.
type Option func(*Plugin)

// WithName sets the plugin name. The default is "express-testing".
func WithName(name string) Option {
	return func(p *Plugin) {
		p.name = name
	}
}

// WithConfigure registers fn to be called with the app during InitExpress.
func WithConfigure(fn func(*gin.Engine)) Option {
	return func(p *Plugin) {
		p.configure = fn
	}
}

// WithRecorder records "<name>:initExpress" and "<name>:postInitExpress"
// events into r.
func WithRecorder(r *Recorder) Option {
	return func(p *Plugin) {
		p.recorder = r
	}
}

// WithInitExpressError makes InitExpress return err.
func WithInitExpressError(err error) Option {
	return func(p *Plugin) {
		p.initErr = err
	}
}

// WithPostInitExpressError makes PostInitExpress return err.
func WithPostInitExpressError(err error) Option {
	return func(p *Plugin) {
		p.postInitErr = err
	}
}

// WithStopOnInit makes InitExpress call the stop callback.
func WithStopOnInit() Option {
	return func(p *Plugin) {
		p.stopOnInit = true
	}
}

// WithStopOnPostInit makes PostInitExpress call the stop callback received
// by InitExpress.
func WithStopOnPostInit() Option {
	return func(p *Plugin) {
		p.stopOnPost = true
	}
}

// New creates a testing plugin.
func New(opts ...Option) *Plugin {
	p := &Plugin{name: "express-testing"}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements plugin.Plugin.
func (p *Plugin) Name() string {
	return p.name
}

// InitExpress implements express.Configurer.
func (p *Plugin) InitExpress(_ context.Context, app *gin.Engine, stop express.StopFunc) error {
	p.mu.Lock()
	p.initCalls++
	p.app = app
	p.stop = stop
	p.mu.Unlock()

	if p.recorder != nil {
		p.recorder.Record(p.name + ":initExpress")
	}
	if p.configure != nil {
		p.configure(app)
	}
	if p.stopOnInit {
		stop()
	}
	return p.initErr
}

// PostInitExpress implements express.Finalizer.
func (p *Plugin) PostInitExpress(context.Context) error {
	p.mu.Lock()
	p.postInitCalls++
	stop := p.stop
	p.mu.Unlock()

	if p.recorder != nil {
		p.recorder.Record(p.name + ":postInitExpress")
	}
	if p.stopOnPost && stop != nil {
		stop()
	}
	return p.postInitErr
}

// InitExpressCalled reports whether InitExpress ran.
func (p *Plugin) InitExpressCalled() bool {
	return p.InitExpressCalls() > 0
}

// InitExpressCalls returns the number of InitExpress calls.
func (p *Plugin) InitExpressCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initCalls
}

// PostInitExpressCalled reports whether PostInitExpress ran.
func (p *Plugin) PostInitExpressCalled() bool {
	return p.PostInitExpressCalls() > 0
}

// PostInitExpressCalls returns the number of PostInitExpress calls.
func (p *Plugin) PostInitExpressCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.postInitCalls
}

// App returns the app received by InitExpress.
func (p *Plugin) App() *gin.Engine {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.app
}

// StopExpressServer returns the stop callback received by InitExpress.
func (p *Plugin) StopExpressServer() express.StopFunc {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stop
}
