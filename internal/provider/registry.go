package provider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/praxisllmlab/fabsearch/internal/model"
)

// Registry holds the providers available to one process. It is constructed
// at startup and safe for concurrent reads during request handling.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	order     []string
}

// NewRegistry creates a registry from the given providers, preserving
// registration order for listing.
func NewRegistry(providers ...Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(providers))}
	for _, p := range providers {
		r.Register(p)
	}
	return r
}

// Register adds a provider. Registering the same id twice replaces the
// earlier provider but keeps its position.
func (r *Registry) Register(p Provider) {
	id := p.Descriptor().ID
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.providers[id]; !exists {
		r.order = append(r.order, id)
	}
	r.providers[id] = p
}

// Get returns the provider for the given id.
func (r *Registry) Get(id string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("provider not found: %s", id)
	}
	return p, nil
}

// Has reports whether a provider with the given id is registered.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[id]
	return ok
}

// IDs returns all registered provider ids in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// All returns all registered providers in registration order.
func (r *Registry) All() []Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Provider, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.providers[id])
	}
	return out
}

// Descriptors returns every registered descriptor in registration order.
func (r *Registry) Descriptors() []model.ProviderDescriptor {
	all := r.All()
	out := make([]model.ProviderDescriptor, 0, len(all))
	for _, p := range all {
		out = append(out, p.Descriptor())
	}
	return out
}

// SortedIDs returns registered provider ids sorted lexicographically.
func (r *Registry) SortedIDs() []string {
	ids := r.IDs()
	sort.Strings(ids)
	return ids
}

// Defaults builds the standard provider set. opts supplies per-provider
// credentials keyed by provider id; missing entries get zero Options.
func Defaults(opts map[string]Options) *Registry {
	return NewRegistry(
		NewSketchfab(opts["sketchfab"]),
		NewMyMiniFactory(opts["myminifactory"]),
		NewCGTrader(opts["cgtrader"]),
		NewCults(opts["cults"]),
		NewThingiverse(opts["thingiverse"]),
		// Link-only sources: no public search API integrated.
		NewPrintablesLink(),
		NewThangsLink(),
		NewMakerWorldLink(),
		NewTurboSquidLink(),
	)
}
