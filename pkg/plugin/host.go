package plugin

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/kart-io/logger"
)

// ErrHostInitialized is returned when plugins are registered or initialized
// on a host that has already run its lifecycle.
var ErrHostInitialized = errors.New("plugin host already initialized")

// Host drives the Init/PostInit lifecycle over a set of plugins.
type Host struct {
	mu          sync.Mutex
	plugins     []Plugin
	order       []Plugin
	initialized bool
}

// NewHost creates a host with the given plugins registered in order.
// Duplicate names are reported by Init.
func NewHost(plugins ...Plugin) *Host {
	return &Host{plugins: append([]Plugin(nil), plugins...)}
}

// InitPlugins registers plugins on a new host and runs its lifecycle.
// The host is returned even on error so that callers can shut down the
// plugins that did start.
func InitPlugins(ctx context.Context, plugins ...Plugin) (*Host, error) {
	h := NewHost()
	for _, p := range plugins {
		if err := h.Register(p); err != nil {
			return h, err
		}
	}
	return h, h.Init(ctx)
}

// Register appends p to the host.
func (h *Host) Register(p Plugin) error {
	if p == nil {
		return errors.New("plugin cannot be nil")
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.initialized {
		return ErrHostInitialized
	}
	for _, existing := range h.plugins {
		if existing.Name() == p.Name() {
			return fmt.Errorf("plugin %q already registered", p.Name())
		}
	}
	h.plugins = append(h.plugins, p)
	return nil
}

// Plugins returns the plugins in lifecycle order once Init has resolved it,
// or in registration order before.
func (h *Host) Plugins() []Plugin {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.order != nil {
		return append([]Plugin(nil), h.order...)
	}
	return append([]Plugin(nil), h.plugins...)
}

// Init calls Init on every plugin, then PostInit on every plugin, both in
// dependency-resolved order. The first failure aborts the lifecycle.
func (h *Host) Init(ctx context.Context) error {
	h.mu.Lock()
	if h.initialized {
		h.mu.Unlock()
		return ErrHostInitialized
	}
	h.initialized = true
	registered := append([]Plugin(nil), h.plugins...)
	h.mu.Unlock()

	order, err := ResolveDependencies(registered)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.order = order
	h.mu.Unlock()

	for _, p := range order {
		logger.Debugw("Initializing plugin", "plugin", p.Name())
		if err := p.Init(ctx, append([]Plugin(nil), order...)); err != nil {
			return fmt.Errorf("failed to init plugin %s: %w", p.Name(), err)
		}
	}

	for _, p := range order {
		logger.Debugw("Post-initializing plugin", "plugin", p.Name())
		if err := p.PostInit(ctx); err != nil {
			return fmt.Errorf("failed to post-init plugin %s: %w", p.Name(), err)
		}
	}

	logger.Infow("Plugins initialized", "count", len(order))
	return nil
}

// Shutdown calls Shutdown on every plugin implementing Shutdowner, in reverse
// lifecycle order. All plugins are visited; their errors are joined.
func (h *Host) Shutdown(ctx context.Context) error {
	h.mu.Lock()
	order := append([]Plugin(nil), h.order...)
	h.mu.Unlock()

	var errs []error
	for i := len(order) - 1; i >= 0; i-- {
		s, ok := order[i].(Shutdowner)
		if !ok {
			continue
		}
		if err := s.Shutdown(ctx); err != nil {
			logger.Errorw("Error during plugin shutdown", "plugin", order[i].Name(), "error", err)
			errs = append(errs, fmt.Errorf("failed to shut down plugin %s: %w", order[i].Name(), err))
		}
	}
	return errors.Join(errs...)
}
