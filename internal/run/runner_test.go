package run

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-cerp/fedq/internal/plan"
	"github.com/aman-cerp/fedq/internal/store"
)

func TestRunner_NormalizesDocuments(t *testing.T) {
	registry := store.NewRegistry()
	va := store.NewVectorAdapter(store.DefaultVectorStoreConfig(16), store.NewHashEmbedder(16))
	require.NoError(t, va.Index("doc1", "Title", "some content about architecture", nil))
	registry.Register(va)

	runner := NewRunner(registry)
	op := plan.DatabaseOperation{
		Store:     store.Vector,
		OpKind:    store.OpVectorSearch,
		Params:    store.Params{OpKind: store.OpVectorSearch, Query: "some content about architecture", K: 5},
		TimeoutMs: 1000,
	}

	res := runner.Run(context.Background(), op)
	require.True(t, res.Success)
	require.NotEmpty(t, res.Items)
	assert.Equal(t, store.ResultDocument, res.Items[0].Kind)
	assert.Equal(t, store.Vector, res.Items[0].SourceStore)
}

func TestRunner_MissingAdapterIsUnavailable(t *testing.T) {
	registry := store.NewRegistry()
	runner := NewRunner(registry)

	op := plan.DatabaseOperation{
		Store:     store.Graph,
		OpKind:    store.OpGraphQuery,
		Params:    store.Params{OpKind: store.OpGraphQuery, StartID: "n1"},
		TimeoutMs: 100,
	}
	res := runner.Run(context.Background(), op)
	assert.False(t, res.Success)
	require.Error(t, res.Error)
}

func TestRunner_ContentHashIsStableUnderCaseAndWhitespace(t *testing.T) {
	h1 := contentHash("  Hello World  ")
	h2 := contentHash("hello world")
	assert.Equal(t, h1, h2)
}
