package cache

import (
	"context"
	"testing"
	"time"

	"github.com/erp/taxsim/internal/domain/fiscal"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestCachedProductCatalog_ReadThrough(t *testing.T) {
	ctx := context.Background()
	product := testProduct()
	backing := newCountingCatalog(product)
	memory := NewInMemoryProductCache()
	defer memory.Stop()

	catalog := NewCachedProductCatalog(backing, memory, time.Minute, nil)

	for i := 0; i < 3; i++ {
		got, err := catalog.GetProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, product.Code, got.Code)
	}
	assert.Equal(t, 1, backing.callCount())

	require.NoError(t, catalog.Invalidate(ctx, product.ID))
	_, err := catalog.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, backing.callCount())
}

func TestCachedProductCatalog_NotFoundIsNotCached(t *testing.T) {
	ctx := context.Background()
	backing := newCountingCatalog()
	memory := NewInMemoryProductCache()
	defer memory.Stop()

	catalog := NewCachedProductCatalog(backing, memory, time.Minute, nil)
	id := uuid.New()

	_, err := catalog.GetProduct(ctx, id)
	assert.ErrorIs(t, err, fiscal.ErrProductNotFound)
	_, err = catalog.GetProduct(ctx, id)
	assert.ErrorIs(t, err, fiscal.ErrProductNotFound)
	assert.Equal(t, 2, backing.callCount())
}

func TestCachedProductCatalog_CacheFailureFallsThrough(t *testing.T) {
	ctx := context.Background()
	product := testProduct()
	backing := newCountingCatalog(product)
	kv := newFakeKV()
	kv.failGet = true

	core, logs := observer.New(zap.WarnLevel)
	catalog := NewCachedProductCatalog(backing, NewRedisProductCache(kv, ""), 0, zap.New(core))

	got, err := catalog.GetProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, got.ID)
	assert.Equal(t, 1, logs.FilterMessage("product cache read failed").Len())
}
