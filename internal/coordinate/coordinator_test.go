package coordinate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-cerp/fedq/internal/plan"
	"github.com/aman-cerp/fedq/internal/run"
	"github.com/aman-cerp/fedq/internal/store"
)

type fakeRunner struct {
	delay   map[store.Kind]time.Duration
	fail    map[store.Kind]bool
	calls   []store.Kind
}

func (f *fakeRunner) Run(ctx context.Context, op plan.DatabaseOperation) run.Result {
	f.calls = append(f.calls, op.Store)
	if d, ok := f.delay[op.Store]; ok {
		select {
		case <-time.After(d):
		case <-ctx.Done():
			return run.Result{Success: false, Error: ctx.Err()}
		}
	}
	if f.fail[op.Store] {
		return run.Result{Success: false, Error: errors.New("boom")}
	}
	return run.Result{
		Success: true,
		Items:   []run.ResultItem{{ID: string(op.Store), SourceStore: op.Store}},
	}
}

func TestCoordinator_RunsParallelAndSequential(t *testing.T) {
	planOut := &plan.ExecutionPlan{
		ParallelOps: []plan.DatabaseOperation{
			{Store: store.Vector, TimeoutMs: 100},
			{Store: store.Relational, TimeoutMs: 100},
		},
		SequentialOps: []plan.DatabaseOperation{
			{Store: store.KV, TimeoutMs: 100},
		},
	}
	runner := &fakeRunner{}
	registry := store.NewRegistry()
	c := NewCoordinator(runner, registry)

	outcome := c.Execute(context.Background(), planOut, 2*time.Second)

	require.Len(t, outcome.Outcomes, 3)
	assert.False(t, outcome.DeadlineExceeded)

	var sawKV bool
	for _, o := range outcome.Outcomes {
		if o.Op.Store == store.KV {
			sawKV = true
		}
	}
	assert.True(t, sawKV)
}

func TestCoordinator_PartialFailureIsGathered(t *testing.T) {
	planOut := &plan.ExecutionPlan{
		ParallelOps: []plan.DatabaseOperation{
			{Store: store.Vector, TimeoutMs: 100},
			{Store: store.Graph, TimeoutMs: 100},
		},
	}
	runner := &fakeRunner{fail: map[store.Kind]bool{store.Graph: true}}
	c := NewCoordinator(runner, store.NewRegistry())

	outcome := c.Execute(context.Background(), planOut, 2*time.Second)

	require.Len(t, outcome.Outcomes, 2)
	var failed, succeeded int
	for _, o := range outcome.Outcomes {
		if o.Result.Success {
			succeeded++
		} else {
			failed++
		}
	}
	assert.Equal(t, 1, failed)
	assert.Equal(t, 1, succeeded)
}

func TestCoordinator_OuterDeadlineCancelsSlowOps(t *testing.T) {
	planOut := &plan.ExecutionPlan{
		ParallelOps: []plan.DatabaseOperation{
			{Store: store.Vector, TimeoutMs: 500},
		},
	}
	runner := &fakeRunner{delay: map[store.Kind]time.Duration{store.Vector: 200 * time.Millisecond}}
	c := NewCoordinator(runner, store.NewRegistry())

	outcome := c.Execute(context.Background(), planOut, 20*time.Millisecond)

	require.Len(t, outcome.Outcomes, 1)
	assert.False(t, outcome.Outcomes[0].Result.Success)
	assert.True(t, outcome.DeadlineExceeded)
}
