// Package errors holds the circuit breaker the store Registry wraps each
// adapter in: a persistently failing backing store should stop being
// planned against rather than retried forever on every query.
package errors

import (
	"sync"
	"time"
)

// State is the circuit breaker's own state, independent of the richer
// per-operation failure kinds in queryerr.OpErrorKind — this package
// only tracks whether a store is currently worth trying.
type State int

const (
	// StateClosed allows operations through; failures are being counted.
	StateClosed State = iota
	// StateOpen rejects operations outright until resetTimeout elapses.
	StateOpen
	// StateHalfOpen lets operations through again to test recovery; the next
	// recorded success closes the breaker and the next failure reopens it.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreaker guards one backing store. The Registry creates one per
// registered adapter, keyed by the store's own Kind (passed in as its
// string form to avoid an import cycle back to internal/store).
type CircuitBreaker struct {
	store        string
	maxFailures  int
	resetTimeout time.Duration

	mu          sync.RWMutex
	state       State
	failures    int
	lastFailure time.Time
}

// CircuitBreakerOption configures a CircuitBreaker at construction.
type CircuitBreakerOption func(*CircuitBreaker)

// WithMaxFailures sets the consecutive-failure count that trips the
// breaker open.
func WithMaxFailures(n int) CircuitBreakerOption {
	return func(cb *CircuitBreaker) { cb.maxFailures = n }
}

// WithResetTimeout sets how long an open breaker waits before allowing a
// half-open probe.
func WithResetTimeout(d time.Duration) CircuitBreakerOption {
	return func(cb *CircuitBreaker) { cb.resetTimeout = d }
}

// NewCircuitBreaker returns a breaker for the named store. Defaults: 5
// consecutive failures trips it open, with a 30 second reset timeout.
func NewCircuitBreaker(store string, opts ...CircuitBreakerOption) *CircuitBreaker {
	cb := &CircuitBreaker{
		store:        store,
		maxFailures:  5,
		resetTimeout: 30 * time.Second,
		state:        StateClosed,
	}
	for _, opt := range opts {
		opt(cb)
	}
	return cb
}

// Store returns the name of the store this breaker guards.
func (cb *CircuitBreaker) Store() string {
	return cb.store
}

// State reports the breaker's current state, resolving a stale Open into
// HalfOpen once resetTimeout has elapsed.
func (cb *CircuitBreaker) State() State {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.currentState()
}

// currentState must be called with at least a read lock held.
func (cb *CircuitBreaker) currentState() State {
	if cb.state == StateOpen && time.Since(cb.lastFailure) > cb.resetTimeout {
		return StateHalfOpen
	}
	return cb.state
}

// Failures returns the current consecutive-failure count.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.failures
}

// Allow reports whether the Planner may still target this store: true
// when Closed (normal) or HalfOpen (every call is allowed through until
// the next recorded outcome), false when Open.
func (cb *CircuitBreaker) Allow() bool {
	cb.mu.RLock()
	defer cb.mu.RUnlock()
	return cb.currentState() != StateOpen
}

// RecordSuccess clears the failure count and closes the breaker. Called
// by the Coordinator after a DatabaseOperation against this store
// succeeds.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures = 0
	cb.state = StateClosed
}

// RecordFailure increments the failure count and trips the breaker open
// once maxFailures is reached. Called by the Coordinator after a
// DatabaseOperation against this store fails.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failures++
	cb.lastFailure = time.Now()
	if cb.failures >= cb.maxFailures {
		cb.state = StateOpen
	}
}
