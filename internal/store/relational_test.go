package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelationalAdapter_SearchLikeJoin(t *testing.T) {
	adapter, err := NewRelationalAdapter(":memory:")
	require.NoError(t, err)
	defer adapter.Close()

	ctx := context.Background()
	now := time.Now()
	require.NoError(t, adapter.Insert(ctx, "r1", "Rollback notes", "deployment rollback procedure", []string{"ops"}, "", now))
	require.NoError(t, adapter.Insert(ctx, "r2", "Unrelated", "a recipe for soup", []string{"food"}, "", now.Add(-time.Hour)))

	payload, err := adapter.Execute(ctx, OpSearch, Params{
		OpKind:      OpSearch,
		SearchTerms: []string{"rollback"},
		Limit:       10,
	})
	require.NoError(t, err)
	require.Len(t, payload.Documents, 1)
	assert.Equal(t, "r1", payload.Documents[0].ID)
}

func TestRelationalAdapter_Health(t *testing.T) {
	adapter, err := NewRelationalAdapter(":memory:")
	require.NoError(t, err)
	defer adapter.Close()

	h := adapter.Health(context.Background())
	assert.True(t, h.Healthy)
	assert.Equal(t, 0, h.SizeHint)
}
