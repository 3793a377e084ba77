package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryProductCache_SetGet(t *testing.T) {
	c := NewInMemoryProductCache()
	defer c.Stop()
	ctx := context.Background()
	product := testProduct()

	_, found, err := c.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, product, time.Minute))

	got, found, err := c.Get(ctx, product.ID)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, product.Code, got.Code)

	// the returned value is a copy
	got.Name = "changed"
	again, _, _ := c.Get(ctx, product.ID)
	assert.Equal(t, "Notebook", again.Name)

	hits, misses := c.Stats()
	assert.Equal(t, int64(2), hits)
	assert.Equal(t, int64(1), misses)
}

func TestInMemoryProductCache_Expiry(t *testing.T) {
	c := NewInMemoryProductCache()
	defer c.Stop()
	ctx := context.Background()
	product := testProduct()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, product, time.Minute))
	_, found, _ := c.Get(ctx, product.ID)
	assert.True(t, found)

	now = now.Add(2 * time.Minute)
	_, found, _ = c.Get(ctx, product.ID)
	assert.False(t, found)
}

func TestInMemoryProductCache_Sweep(t *testing.T) {
	c := NewInMemoryProductCache()
	defer c.Stop()
	ctx := context.Background()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	stale := testProduct()
	fresh := testProduct()
	fresh.ID = uuid.New()
	require.NoError(t, c.Set(ctx, stale, time.Second))
	require.NoError(t, c.Set(ctx, fresh, time.Hour))

	now = now.Add(time.Minute)
	c.sweep()

	_, ok := c.entries.Load(stale.ID)
	assert.False(t, ok)
	_, ok = c.entries.Load(fresh.ID)
	assert.True(t, ok)
}

func TestInMemoryProductCache_Invalidate(t *testing.T) {
	c := NewInMemoryProductCache()
	defer c.Stop()
	ctx := context.Background()
	product := testProduct()

	require.NoError(t, c.Set(ctx, product, 0))
	require.NoError(t, c.Invalidate(ctx, product.ID))

	_, found, _ := c.Get(ctx, product.ID)
	assert.False(t, found)
}

func TestInMemoryProductCache_StopTwice(t *testing.T) {
	c := NewInMemoryProductCache()
	assert.NotPanics(t, func() {
		c.Stop()
		c.Stop()
	})
}
