package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVectorAdapter_IndexAndSearch(t *testing.T) {
	embedder := NewHashEmbedder(32)
	va := NewVectorAdapter(DefaultVectorStoreConfig(32), embedder)

	require.NoError(t, va.Index("doc1", "Architecture Notes", "the system architecture uses microservices", nil))
	require.NoError(t, va.Index("doc2", "Cooking", "a recipe for tomato soup", nil))

	payload, err := va.Execute(context.Background(), OpVectorSearch, Params{
		OpKind: OpVectorSearch,
		Query:  "the system architecture uses microservices",
		K:      2,
	})
	require.NoError(t, err)
	require.NotEmpty(t, payload.Documents)
	assert.Equal(t, "doc1", payload.Documents[0].ID)
}

func TestVectorAdapter_DimensionMismatch(t *testing.T) {
	va := NewVectorAdapter(DefaultVectorStoreConfig(32), NewHashEmbedder(32))
	_, err := va.Execute(context.Background(), OpVectorSearch, Params{
		OpKind:   OpVectorSearch,
		QueryVec: make([]float32, 8),
		K:        1,
	})
	require.Error(t, err)
	var dimErr ErrDimensionMismatch
	require.ErrorAs(t, err, &dimErr)
}

func TestVectorAdapter_Health(t *testing.T) {
	va := NewVectorAdapter(DefaultVectorStoreConfig(32), NewHashEmbedder(32))
	h := va.Health(context.Background())
	assert.True(t, h.Healthy)
	assert.Equal(t, 0, h.SizeHint)
}
