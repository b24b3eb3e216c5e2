// Package engine wires the Parser, Planner, Coordinator, Runner,
// Aggregator, ResultCache and ErrorHandler into the single façade callers
// use: Execute(query, opts) -> Response.
package engine

import "github.com/aman-cerp/fedq/internal/store"

// Strategy selects how the Coordinator is steered relative to the
// Planner's own parallel/sequential partition.
type Strategy string

const (
	// StrategyHybrid runs the plan exactly as the Planner partitioned it
	// (its own parallel group, then its sequential tail). Default.
	StrategyHybrid Strategy = "hybrid"
	// StrategyParallel forces every operation into the parallel group.
	StrategyParallel Strategy = "parallel"
	// StrategySequential forces every operation into the sequential tail,
	// preserving priority order.
	StrategySequential Strategy = "sequential"
	// StrategySelective restricts the plan to its single highest-priority
	// operation.
	StrategySelective Strategy = "selective"
	// StrategyCached behaves like hybrid but signals intent to the caller
	// that a cache hit was expected; it does not change plan shape.
	StrategyCached Strategy = "cached"
)

// ParseStrategy maps a caller-facing strategy token to a Strategy. ok is
// false for anything unrecognized.
func ParseStrategy(s string) (Strategy, bool) {
	switch Strategy(s) {
	case StrategyHybrid, StrategyParallel, StrategySequential, StrategySelective, StrategyCached:
		return Strategy(s), true
	default:
		return "", false
	}
}

// Options are the per-call knobs exposed at Execute.
type Options struct {
	// Limit bounds the number of ranked items returned; clamped to
	// [1, 100], default 10.
	Limit int
	// Strategy steers plan execution; default hybrid.
	Strategy Strategy
	// UseCache enables the read-through ResultCache; default true.
	UseCache bool
	// Database restricts execution to a single store when non-nil.
	Database *store.Kind
}

// DefaultOptions returns the built-in defaults: limit 10, hybrid strategy,
// cache enabled, no store restriction.
func DefaultOptions() Options {
	return Options{
		Limit:    10,
		Strategy: StrategyHybrid,
		UseCache: true,
	}
}

func (o Options) normalized() Options {
	if o.Limit <= 0 {
		o.Limit = 10
	}
	if o.Limit > 100 {
		o.Limit = 100
	}
	if o.Strategy == "" {
		o.Strategy = StrategyHybrid
	}
	return o
}
