package cache

import (
	"context"
	"time"

	"github.com/erp/taxsim/internal/domain/fiscal"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CachedProductCatalog is a read-through cache in front of a ProductCatalog.
// Cache failures are logged and never fail a lookup.
type CachedProductCatalog struct {
	next   fiscal.ProductCatalog
	cache  ProductCache
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedProductCatalog wraps next with cache
func NewCachedProductCatalog(next fiscal.ProductCatalog, cache ProductCache, ttl time.Duration, logger *zap.Logger) *CachedProductCatalog {
	if ttl <= 0 {
		ttl = DefaultProductTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedProductCatalog{next: next, cache: cache, ttl: ttl, logger: logger}
}

// GetProduct implements fiscal.ProductCatalog
func (c *CachedProductCatalog) GetProduct(ctx context.Context, id uuid.UUID) (*fiscal.Product, error) {
	product, found, err := c.cache.Get(ctx, id)
	if err != nil {
		c.logger.Warn("product cache read failed", zap.String("product_id", id.String()), zap.Error(err))
	}
	if found {
		return product, nil
	}

	product, err = c.next.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := c.cache.Set(ctx, product, c.ttl); err != nil {
		c.logger.Warn("product cache write failed", zap.String("product_id", id.String()), zap.Error(err))
	}
	return product, nil
}

// Invalidate drops a product from the cache. Call it after writing the
// product to the catalog.
func (c *CachedProductCatalog) Invalidate(ctx context.Context, id uuid.UUID) error {
	return c.cache.Invalidate(ctx, id)
}

var _ fiscal.ProductCatalog = (*CachedProductCatalog)(nil)
