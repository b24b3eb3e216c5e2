// Package coordinate drives an ExecutionPlan: fans out the parallel
// group, walks the sequential tail, applies per-operation timeouts, and
// gathers per-operation results and errors.
package coordinate

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aman-cerp/fedq/internal/plan"
	"github.com/aman-cerp/fedq/internal/queryerr"
	"github.com/aman-cerp/fedq/internal/run"
	"github.com/aman-cerp/fedq/internal/store"
)

// OpOutcome pairs a DatabaseOperation with what the Runner returned for
// it, so the Aggregator and ErrorHandler know which store a result or
// error came from.
type OpOutcome struct {
	Op     plan.DatabaseOperation
	Result run.Result
}

// Outcome is the Coordinator's output: every operation's outcome plus
// whether the outer SLA deadline was hit before all operations finished.
type Outcome struct {
	Outcomes       []OpOutcome
	DeadlineExceeded bool
}

// Runner is the capability the Coordinator needs from internal/run; kept
// as an interface so the Coordinator can be tested without a real
// adapter registry.
type Runner interface {
	Run(ctx context.Context, op plan.DatabaseOperation) run.Result
}

// Coordinator executes an ExecutionPlan: the parallel group runs as a
// fan-out/gather (errgroup) of tasks; the sequential tail runs as a chain
// of awaited calls, preserving plan order.
type Coordinator struct {
	Runner   Runner
	Registry *store.Registry
}

func NewCoordinator(runner Runner, registry *store.Registry) *Coordinator {
	return &Coordinator{Runner: runner, Registry: registry}
}

// Execute runs planOut under slaCeiling, an outer deadline covering both
// the parallel group and the sequential tail. On expiry, in-flight
// operations are cancelled and whatever outcomes are already collected
// are returned (partial-success path).
func (c *Coordinator) Execute(ctx context.Context, planOut *plan.ExecutionPlan, slaCeiling time.Duration) Outcome {
	ctx, cancel := context.WithTimeout(ctx, slaCeiling)
	defer cancel()

	var mu sync.Mutex
	var outcomes []OpOutcome
	record := func(op plan.DatabaseOperation, res run.Result) {
		mu.Lock()
		outcomes = append(outcomes, OpOutcome{Op: op, Result: res})
		mu.Unlock()
		if c.Registry != nil {
			if res.Success {
				c.Registry.RecordSuccess(op.Store)
			} else {
				c.Registry.RecordFailure(op.Store)
			}
		}
	}

	if len(planOut.ParallelOps) > 0 {
		group, gctx := errgroup.WithContext(ctx)
		for _, op := range planOut.ParallelOps {
			op := op
			group.Go(func() error {
				res := c.Runner.Run(gctx, op)
				record(op, res)
				return nil
			})
		}
		_ = group.Wait()
	}

	for _, op := range planOut.SequentialOps {
		if ctx.Err() != nil {
			break
		}
		res := c.Runner.Run(ctx, op)
		record(op, res)
	}

	return Outcome{
		Outcomes:         outcomes,
		DeadlineExceeded: ctx.Err() != nil,
	}
}

// OpErrors extracts the OpError values from an Outcome, in the order
// operations completed.
func OpErrors(o Outcome) []*queryerr.OpError {
	var errs []*queryerr.OpError
	for _, outcome := range o.Outcomes {
		if outcome.Result.Error != nil {
			if opErr, ok := outcome.Result.Error.(*queryerr.OpError); ok {
				errs = append(errs, opErr)
			}
		}
	}
	return errs
}
