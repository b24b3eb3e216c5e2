package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-cerp/fedq/internal/aggregate"
	"github.com/aman-cerp/fedq/internal/response"
)

func TestKey_NormalizesWhitespaceAndCase(t *testing.T) {
	k1 := Key("Memory%Architecture  Notes", 10, "")
	k2 := Key("memory%architecture notes", 10, "")
	assert.Equal(t, k1, k2)
}

func TestKey_DiffersByLimit(t *testing.T) {
	k1 := Key("memory%architecture", 10, "")
	k2 := Key("memory%architecture", 20, "")
	assert.NotEqual(t, k1, k2)
}

func TestResultCache_HitWithinTTLStampsFromCache(t *testing.T) {
	c := NewResultCache(time.Minute)
	key := Key("memory%architecture", 10, "")
	resp := response.Response{
		Success: true,
		Items:   []aggregate.RankedItem{{}},
	}
	c.Put(key, resp)

	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, true, got.Metadata["fromCache"])
}

func TestResultCache_MissAfterTTLExpires(t *testing.T) {
	c := NewResultCache(time.Millisecond)
	key := Key("memory%architecture", 10, "")
	c.Put(key, response.Response{Success: true})

	time.Sleep(5 * time.Millisecond)
	_, ok := c.Get(key)
	assert.False(t, ok)
}

func TestResultCache_EvictsOldestWhenOverCap(t *testing.T) {
	c := NewResultCache(time.Hour)
	c.cap = 5
	for i := 0; i < 6; i++ {
		c.Put(Key("q", i, ""), response.Response{Success: true})
		time.Sleep(time.Millisecond)
	}
	assert.LessOrEqual(t, len(c.entries), 5)
}
