package store

import (
	"context"
	"sync"

	fedqerrors "github.com/aman-cerp/fedq/internal/errors"
)

// Registry is the Engine's adapter registry, keyed by Kind. It wraps each
// adapter with a circuit breaker so a persistently failing store is
// dropped from planning rather than retried forever. Safe for concurrent
// use; registration is expected at startup, lookups happen per call.
type Registry struct {
	mu       sync.RWMutex
	adapters map[Kind]Adapter
	breakers map[Kind]*fedqerrors.CircuitBreaker
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[Kind]Adapter),
		breakers: make(map[Kind]*fedqerrors.CircuitBreaker),
	}
}

// Register adds an adapter under its own Kind, installing a circuit
// breaker with the package defaults (5 failures, 30s reset).
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[a.Name()] = a
	r.breakers[a.Name()] = fedqerrors.NewCircuitBreaker(string(a.Name()))
}

// Get returns the adapter for kind, if registered.
func (r *Registry) Get(kind Kind) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[kind]
	return a, ok
}

// Breaker returns the circuit breaker guarding kind, if registered.
func (r *Registry) Breaker(kind Kind) (*fedqerrors.CircuitBreaker, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.breakers[kind]
	return b, ok
}

// Available returns the kinds registered and currently allowed to run by
// their circuit breaker, with a Health check on top. The Planner does not
// call it; it filters q.TargetStores through the HealthLookup it is built
// with.
func (r *Registry) Available(ctx context.Context) map[Kind]Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[Kind]Health, len(r.adapters))
	for kind, a := range r.adapters {
		if b, ok := r.breakers[kind]; ok && !b.Allow() {
			out[kind] = Health{Healthy: false}
			continue
		}
		out[kind] = a.Health(ctx)
	}
	return out
}

// RecordSuccess/RecordFailure feed the Coordinator's per-operation outcome
// back into the store's circuit breaker.
func (r *Registry) RecordSuccess(kind Kind) {
	if b, ok := r.Breaker(kind); ok {
		b.RecordSuccess()
	}
}

func (r *Registry) RecordFailure(kind Kind) {
	if b, ok := r.Breaker(kind); ok {
		b.RecordFailure()
	}
}
