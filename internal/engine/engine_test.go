package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-cerp/fedq/internal/config"
	"github.com/aman-cerp/fedq/internal/store"
)

// fakeAdapter is a minimal in-memory store.Adapter for exercising Engine
// without a real relational/vector/graph/kv backend.
type fakeAdapter struct {
	kind    store.Kind
	healthy bool
	payload store.Payload
	err     error
	delay   time.Duration
}

func (f *fakeAdapter) Name() store.Kind { return f.kind }

func (f *fakeAdapter) Health(ctx context.Context) store.Health {
	return store.Health{Healthy: f.healthy, SizeHint: 1}
}

func (f *fakeAdapter) Execute(ctx context.Context, opKind store.OperationKind, params store.Params) (store.Payload, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return store.Payload{}, ctx.Err()
		}
	}
	if f.err != nil {
		return store.Payload{}, f.err
	}
	return f.payload, nil
}

func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.SLA.CeilingMs = 2000
	cfg.Cache.TTLSeconds = 60
	return cfg
}

func TestEngine_Execute_StructuredQuery_ReturnsRankedItems(t *testing.T) {
	registry := store.NewRegistry()
	registry.Register(&fakeAdapter{
		kind:    store.Relational,
		healthy: true,
		payload: store.Payload{Documents: []store.Document{
			{ID: "doc-1", Title: "hello world", Content: "hello world body", Score: 0.9},
		}},
	})

	eng := New(testConfig(), registry)
	resp := eng.Execute(context.Background(), "memory%hello%", DefaultOptions())

	require.True(t, resp.Success)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "doc-1", resp.Items[0].ID)
	assert.Equal(t, 1, resp.Metadata["storesQueried"])
	assert.Equal(t, false, resp.Metadata["fromCache"])
}

func TestEngine_Execute_UnknownKind_ReturnsParseError(t *testing.T) {
	registry := store.NewRegistry()
	eng := New(testConfig(), registry)

	resp := eng.Execute(context.Background(), "bogus%hello%", DefaultOptions())

	require.False(t, resp.Success)
	errs, ok := resp.Metadata["errors"].([]string)
	require.True(t, ok)
	require.Len(t, errs, 1)
}

func TestEngine_Execute_CachesSuccessfulResponse(t *testing.T) {
	registry := store.NewRegistry()
	calls := 0
	registry.Register(&countingAdapter{
		fakeAdapter: fakeAdapter{
			kind:    store.Relational,
			healthy: true,
			payload: store.Payload{Documents: []store.Document{
				{ID: "doc-1", Title: "hello", Content: "hello", Score: 1.0},
			}},
		},
		calls: &calls,
	})

	eng := New(testConfig(), registry)
	opts := DefaultOptions()

	first := eng.Execute(context.Background(), "memory%hello%", opts)
	require.True(t, first.Success)

	second := eng.Execute(context.Background(), "memory%hello%", opts)
	require.True(t, second.Success)

	assert.Equal(t, true, second.Metadata["fromCache"])
	assert.Equal(t, 1, calls, "second Execute should be served from cache without re-invoking the adapter")
}

func TestEngine_Execute_Uncached_WhenUseCacheFalse(t *testing.T) {
	registry := store.NewRegistry()
	calls := 0
	registry.Register(&countingAdapter{
		fakeAdapter: fakeAdapter{
			kind:    store.Relational,
			healthy: true,
			payload: store.Payload{Documents: []store.Document{
				{ID: "doc-1", Title: "hello", Content: "hello", Score: 1.0},
			}},
		},
		calls: &calls,
	})

	eng := New(testConfig(), registry)
	opts := DefaultOptions()
	opts.UseCache = false

	eng.Execute(context.Background(), "memory%hello%", opts)
	eng.Execute(context.Background(), "memory%hello%", opts)

	assert.Equal(t, 2, calls)
}

func TestEngine_Execute_DatabaseOption_RestrictsToSingleStore(t *testing.T) {
	registry := store.NewRegistry()
	registry.Register(&fakeAdapter{
		kind:    store.Relational,
		healthy: true,
		payload: store.Payload{Documents: []store.Document{
			{ID: "rel-1", Title: "hello", Content: "hello", Score: 1.0},
		}},
	})
	registry.Register(&fakeAdapter{
		kind:    store.Vector,
		healthy: true,
		payload: store.Payload{Documents: []store.Document{
			{ID: "vec-1", Title: "hello", Content: "hello", Score: 1.0},
		}},
	})

	eng := New(testConfig(), registry)
	opts := DefaultOptions()
	kind := store.Relational
	opts.Database = &kind

	resp := eng.Execute(context.Background(), "hello", opts)

	require.True(t, resp.Success)
	for _, item := range resp.Items {
		assert.Equal(t, store.Relational, item.SourceStore)
	}
}

func TestEngine_Execute_StrategySelective_RunsSingleOperation(t *testing.T) {
	registry := store.NewRegistry()
	registry.Register(&fakeAdapter{
		kind:    store.Relational,
		healthy: true,
		payload: store.Payload{Documents: []store.Document{
			{ID: "rel-1", Title: "hello", Content: "hello", Score: 1.0},
		}},
	})
	registry.Register(&fakeAdapter{
		kind:    store.Vector,
		healthy: true,
		payload: store.Payload{Documents: []store.Document{
			{ID: "vec-1", Title: "hello", Content: "hello", Score: 1.0},
		}},
	})

	eng := New(testConfig(), registry)
	opts := DefaultOptions()
	opts.Strategy = StrategySelective

	resp := eng.Execute(context.Background(), "hello", opts)

	assert.LessOrEqual(t, resp.Metadata["totalOperations"].(int), resp.Metadata["totalOperations"].(int))
	assert.Equal(t, 1, resp.Metadata["parallelOperations"].(int)+resp.Metadata["sequentialOperations"].(int))
}

func TestEngine_Execute_UnhealthyStore_FallsBackGracefully(t *testing.T) {
	registry := store.NewRegistry()
	registry.Register(&fakeAdapter{
		kind:    store.Relational,
		healthy: false,
	})
	registry.Register(&fakeAdapter{
		kind:    store.Vector,
		healthy: true,
		payload: store.Payload{Documents: []store.Document{
			{ID: "vec-1", Title: "hello", Content: "hello", Score: 1.0},
		}},
	})

	eng := New(testConfig(), registry)
	resp := eng.Execute(context.Background(), "memory%hello%", DefaultOptions())

	require.True(t, resp.Success)
	require.NotEmpty(t, resp.Items)
}

// countingAdapter wraps fakeAdapter to count Execute invocations, used to
// assert cache hits bypass the adapter entirely.
type countingAdapter struct {
	fakeAdapter
	calls *int
}

func (c *countingAdapter) Execute(ctx context.Context, opKind store.OperationKind, params store.Params) (store.Payload, error) {
	*c.calls++
	return c.fakeAdapter.Execute(ctx, opKind, params)
}
