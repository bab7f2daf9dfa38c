package cache

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	Name string
	Size int64
}

func newTestMemory(t *testing.T, lifeWindow time.Duration, maxSizeMB int) *Memory {
	t.Helper()
	c, err := NewMemory(lifeWindow, maxSizeMB)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func TestMemorySetGet(t *testing.T) {
	ctx := context.Background()
	c := newTestMemory(t, time.Minute, 0)

	var got item
	ok, err := c.Get(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "a", item{Name: "a.png", Size: 3}, time.Minute))
	ok, err = c.Get(ctx, "a", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, item{Name: "a.png", Size: 3}, got)
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	c := newTestMemory(t, time.Minute, 0)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "a", item{Name: "a"}, time.Second))
	now = now.Add(2 * time.Second)

	var got item
	ok, err := c.Get(ctx, "a", &got)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryEvictsUnreadEntries(t *testing.T) {
	ctx := context.Background()
	c := newTestMemory(t, time.Second, 0)

	for i := 0; i < 1000; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("asset-%d", i), item{Size: int64(i)}, time.Millisecond))
	}
	require.Equal(t, 1000, c.Len())

	assert.Eventually(t, func() bool {
		return c.Len() == 0
	}, 6*time.Second, 100*time.Millisecond, "expired entries are dropped without being read")
}

func TestMemorySizeCap(t *testing.T) {
	ctx := context.Background()
	c := newTestMemory(t, time.Hour, 1)

	payload := item{Name: strings.Repeat("n", 2048)}
	const writes = 2000
	for i := 0; i < writes; i++ {
		require.NoError(t, c.Set(ctx, fmt.Sprintf("asset-%d", i), payload, 0))
	}
	assert.Less(t, c.Len(), writes)
}

func TestMemoryDelete(t *testing.T) {
	ctx := context.Background()
	c := newTestMemory(t, time.Minute, 0)
	require.NoError(t, c.Set(ctx, "a", item{}, 0))
	require.NoError(t, c.Set(ctx, "b", item{}, 0))

	require.NoError(t, c.Delete(ctx, "a", "b", "c"))
	assert.Equal(t, 0, c.Len())
}
