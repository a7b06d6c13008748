package music

import (
	"context"
	"sort"
	"sync"
)

// Provider defines the interface all music source implementations satisfy.
// Implementations must be safe for concurrent use.
type Provider interface {
	// Name returns the lowercase provider identifier used in commands
	Name() string

	// DisplayName returns the human-readable source name
	DisplayName() string

	// Search returns tracks matching the keyword. It never returns an
	// error: network failures, non-success status codes and malformed
	// responses are logged and produce an empty slice.
	Search(ctx context.Context, keyword string) []Track
}

// Registry holds the registered providers by name
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

// NewRegistry creates an empty provider registry
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Provider),
	}
}

// Register adds a provider. A provider with the same name is replaced.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Get retrieves a provider by name, nil if not registered
func (r *Registry) Get(name string) Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.providers[name]
}

// Names returns all registered provider names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
