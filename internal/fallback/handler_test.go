package fallback

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-cerp/fedq/internal/coordinate"
	"github.com/aman-cerp/fedq/internal/plan"
	"github.com/aman-cerp/fedq/internal/queryerr"
	"github.com/aman-cerp/fedq/internal/run"
	"github.com/aman-cerp/fedq/internal/store"
)

func TestHandle_AlternativeStoreFallsBackToNextHealthyStore(t *testing.T) {
	registry := store.NewRegistry()
	ra, err := store.NewRelationalAdapter(":memory:")
	require.NoError(t, err)
	registry.Register(ra)

	runner := run.NewRunner(registry)
	handler := NewHandler(runner, registry)

	failedOp := plan.DatabaseOperation{Store: store.Vector, OpKind: store.OpVectorSearch, TimeoutMs: 1000}
	outcome := coordinate.Outcome{
		Outcomes: []coordinate.OpOutcome{
			{
				Op: failedOp,
				Result: run.Result{
					Success: false,
					Error:   queryerr.NewOpError("VECTOR", "VECTOR_SEARCH", queryerr.OpUnavailable, "adapter down", nil),
				},
			},
		},
	}

	items, unresolved := handler.Handle(context.Background(), outcome, true)
	assert.Empty(t, unresolved)
	_ = items
}

func TestHandle_ResourceExhaustedProducesMinimalResponse(t *testing.T) {
	registry := store.NewRegistry()
	handler := NewHandler(run.NewRunner(registry), registry)

	op := plan.DatabaseOperation{Store: store.KV, OpKind: store.OpCacheLookup}
	outcome := coordinate.Outcome{
		Outcomes: []coordinate.OpOutcome{
			{
				Op: op,
				Result: run.Result{
					Success: false,
					Error:   queryerr.NewOpError("KV", "CACHE_LOOKUP", queryerr.OpResourceExhausted, "too many requests", nil),
				},
			},
		},
	}

	items, unresolved := handler.Handle(context.Background(), outcome, false)
	require.Empty(t, unresolved)
	require.Len(t, items, 1)
	assert.Equal(t, store.ResultGeneric, items[0].Kind)
}

func TestHandle_UnknownKindWithoutDatabaseContextGoesSingleStore(t *testing.T) {
	registry := store.NewRegistry()
	handler := NewHandler(run.NewRunner(registry), registry)

	op := plan.DatabaseOperation{Store: store.Graph, OpKind: store.OpGraphQuery}
	outcome := coordinate.Outcome{
		Outcomes: []coordinate.OpOutcome{
			{
				Op: op,
				Result: run.Result{
					Success: false,
					Error:   queryerr.NewOpError("GRAPH", "GRAPH_QUERY", queryerr.OpOther, "mystery failure", nil),
				},
			},
		},
	}

	_, unresolved := handler.Handle(context.Background(), outcome, false)
	require.Len(t, unresolved, 1)
	assert.Equal(t, queryerr.OpOther, unresolved[0].Kind)
}
