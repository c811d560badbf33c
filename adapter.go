package sonar

import (
	"context"
	"fmt"
	"sync"
)

// Adapter is the pluggable compiler backend contract. Implementations
// convert normalized stylesheet source into final output text.
type Adapter interface {
	// Name identifies the backend in the registry and in configuration.
	Name() string

	// Compile converts normalized source into output text. The context
	// bounds the work; external backends should honor cancellation.
	Compile(ctx context.Context, source string) (string, error)
}

// Registry maps backend identifiers to adapters. Backends are registered
// and resolved at configuration time, not looked up dynamically per call.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]Adapter)}
}

// Register adds an adapter under its own name. Registering the same name
// twice is an error.
func (r *Registry) Register(a Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := a.Name()
	if _, ok := r.adapters[name]; ok {
		return fmt.Errorf("adapter %q already registered", name)
	}
	r.adapters[name] = a
	return nil
}

// Lookup returns the adapter registered under name.
func (r *Registry) Lookup(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	return a, ok
}

// Names returns the registered backend identifiers.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}

// Unconfigured returns the fallback adapter used when no backend is
// registered. Every compile fails with ErrNoBackend so the system degrades
// gracefully instead of crashing.
func Unconfigured() Adapter {
	return unconfiguredAdapter{}
}

type unconfiguredAdapter struct{}

func (unconfiguredAdapter) Name() string { return "none" }

func (unconfiguredAdapter) Compile(context.Context, string) (string, error) {
	return "", ErrNoBackend
}

// Passthrough is a backend that returns the normalized source unchanged.
// Useful in development and tests when no real compiler is available.
type Passthrough struct{}

// Name implements Adapter.
func (Passthrough) Name() string { return "passthrough" }

// Compile implements Adapter.
func (Passthrough) Compile(_ context.Context, source string) (string, error) {
	return source, nil
}
