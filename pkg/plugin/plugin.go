// Package plugin defines the two-phase plugin lifecycle and the Host that
// drives it.
//
// The host calls Init on every plugin with the full ordered plugin list, then
// PostInit on every plugin in the same order. Plugins discover capabilities
// of their siblings with type assertions against optional interfaces.
package plugin

import "context"

// Plugin is implemented by every component managed by a Host.
type Plugin interface {
	// Name identifies the plugin. Names are unique within a Host.
	Name() string

	// Init receives every registered plugin in host order, including the
	// receiver itself. It should only capture state; siblings may not have
	// been initialized yet.
	Init(ctx context.Context, plugins []Plugin) error

	// PostInit runs after every plugin's Init has returned.
	PostInit(ctx context.Context) error
}

// Shutdowner is implemented by plugins holding resources that must be
// released when the host shuts down.
type Shutdowner interface {
	// Shutdown releases the plugin's resources. The context may carry a
	// deadline.
	Shutdown(ctx context.Context) error
}

// Dependent is implemented by plugins that must be ordered after others.
type Dependent interface {
	// Dependencies returns the names of plugins that must precede this one.
	Dependencies() []string
}

// Base provides no-op lifecycle hooks for embedding.
type Base struct{}

// Init implements Plugin.
func (Base) Init(context.Context, []Plugin) error { return nil }

// PostInit implements Plugin.
func (Base) PostInit(context.Context) error { return nil }
