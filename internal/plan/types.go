// Package plan builds an ExecutionPlan from a SemanticQuery: one
// DatabaseOperation per selected store, cost-estimated, ordered by
// per-QueryKind priority, and partitioned into a parallel group and a
// sequential tail within the configured SLA ceiling.
package plan

import (
	"github.com/aman-cerp/fedq/internal/query"
	"github.com/aman-cerp/fedq/internal/store"
)

// ExecutionMode selects how the Coordinator runs an operation relative to
// its siblings.
type ExecutionMode string

const (
	Parallel   ExecutionMode = "PARALLEL"
	Sequential ExecutionMode = "SEQUENTIAL"
)

// DatabaseOperation is one unit of work the Coordinator hands to the
// Runner. Immutable once the Planner produces it.
type DatabaseOperation struct {
	Store           store.Kind
	OpKind          store.OperationKind
	Params          store.Params
	EstimatedCostMs float64
	Mode            ExecutionMode
	Priority        int
	TimeoutMs       int
	Retries         int
}

// ExecutionPlan is the Planner's sole output, consumed once by the
// Coordinator.
type ExecutionPlan struct {
	QueryKind        query.Kind
	Operations       []DatabaseOperation
	ParallelOps      []DatabaseOperation
	SequentialOps    []DatabaseOperation
	EstimatedTotalMs float64
	Notes            []string
}
