package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/taxsim/internal/domain/fiscal"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultKeyPrefix = "taxsim:"

// KeyValueClient is the subset of *redis.Client used by RedisProductCache
type KeyValueClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisProductCache keeps serialized products in redis so several
// simulator instances share one warm cache.
type RedisProductCache struct {
	client    KeyValueClient
	keyPrefix string
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisClient connects to redis and verifies the connection
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// NewRedisProductCache creates a cache over an existing client
func NewRedisProductCache(client KeyValueClient, keyPrefix string) *RedisProductCache {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisProductCache{client: client, keyPrefix: keyPrefix}
}

func (c *RedisProductCache) key(id uuid.UUID) string {
	return c.keyPrefix + "product:" + id.String()
}

// Get implements ProductCache
func (c *RedisProductCache) Get(ctx context.Context, id uuid.UUID) (*fiscal.Product, bool, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read cached product: %w", err)
	}
	product, err := decodeProduct(data)
	if err != nil {
		return nil, false, fmt.Errorf("failed to decode cached product: %w", err)
	}
	return product, true, nil
}

// Set implements ProductCache
func (c *RedisProductCache) Set(ctx context.Context, product *fiscal.Product, ttl time.Duration) error {
	data, err := encodeProduct(product)
	if err != nil {
		return fmt.Errorf("failed to encode product: %w", err)
	}
	if err := c.client.Set(ctx, c.key(product.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache product: %w", err)
	}
	return nil
}

// Invalidate implements ProductCache
func (c *RedisProductCache) Invalidate(ctx context.Context, id uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate cached product: %w", err)
	}
	return nil
}

var _ ProductCache = (*RedisProductCache)(nil)
