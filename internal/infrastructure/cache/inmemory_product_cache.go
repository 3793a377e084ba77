package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erp/taxsim/internal/domain/fiscal"
	"github.com/google/uuid"
)

const defaultCleanupInterval = 30 * time.Second

// cacheEntry wraps a cached value with expiration time
type cacheEntry[T any] struct {
	value     T
	expiresAt time.Time
}

func (e *cacheEntry[T]) isExpired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// InMemoryProductCache is a process-local ProductCache with expiry.
// Expired entries are dropped lazily on read and by a background sweep.
type InMemoryProductCache struct {
	entries sync.Map // map[uuid.UUID]*cacheEntry[fiscal.Product]
	now     func() time.Time
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

// NewInMemoryProductCache creates the cache and starts its sweeper
func NewInMemoryProductCache() *InMemoryProductCache {
	c := &InMemoryProductCache{
		now:    time.Now,
		stopCh: make(chan struct{}),
	}
	go c.cleanupExpired(defaultCleanupInterval)
	return c
}

// Get implements ProductCache
func (c *InMemoryProductCache) Get(ctx context.Context, id uuid.UUID) (*fiscal.Product, bool, error) {
	raw, ok := c.entries.Load(id)
	if !ok {
		atomic.AddInt64(&c.misses, 1)
		return nil, false, nil
	}
	entry := raw.(*cacheEntry[fiscal.Product])
	if entry.isExpired(c.now()) {
		c.entries.Delete(id)
		atomic.AddInt64(&c.misses, 1)
		return nil, false, nil
	}
	atomic.AddInt64(&c.hits, 1)
	product := entry.value
	return &product, true, nil
}

// Set implements ProductCache
func (c *InMemoryProductCache) Set(ctx context.Context, product *fiscal.Product, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultProductTTL
	}
	c.entries.Store(product.ID, &cacheEntry[fiscal.Product]{
		value:     *product,
		expiresAt: c.now().Add(ttl),
	})
	return nil
}

// Invalidate implements ProductCache
func (c *InMemoryProductCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	c.entries.Delete(id)
	return nil
}

// Stats returns hit and miss counters
func (c *InMemoryProductCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Stop terminates the background sweeper. It is safe to call twice.
func (c *InMemoryProductCache) Stop() {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
}

func (c *InMemoryProductCache) cleanupExpired(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.sweep()
		}
	}
}

func (c *InMemoryProductCache) sweep() {
	now := c.now()
	c.entries.Range(func(key, value any) bool {
		if value.(*cacheEntry[fiscal.Product]).isExpired(now) {
			c.entries.Delete(key)
		}
		return true
	})
}

var _ ProductCache = (*InMemoryProductCache)(nil)
