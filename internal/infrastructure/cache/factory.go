package cache

import (
	"fmt"

	"github.com/erp/taxsim/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ProductCacheFactory creates product caches based on configuration
type ProductCacheFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ProductCacheFactoryOption is a functional option for configuring the factory
type ProductCacheFactoryOption func(*ProductCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ProductCacheFactoryOption {
	return func(f *ProductCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable redis degrades to the
// in-memory cache. Default is true.
func WithInMemoryFallback(allow bool) ProductCacheFactoryOption {
	return func(f *ProductCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewProductCacheFactory creates a new factory
func NewProductCacheFactory(cfg config.RedisConfig, opts ...ProductCacheFactoryOption) *ProductCacheFactory {
	f := &ProductCacheFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateCache returns a redis cache when redis is enabled and reachable,
// otherwise an in-memory cache. The returned client is nil for the
// in-memory case and must be closed by the caller otherwise.
func (f *ProductCacheFactory) CreateCache() (ProductCache, *redis.Client, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("redis disabled, using in-memory product cache")
		return NewInMemoryProductCache(), nil, nil
	}

	client, err := NewRedisClient(RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("using Redis product cache", zap.String("addr", f.redisConfig.Addr()))
		return NewRedisProductCache(client, f.redisConfig.KeyPrefix), client, nil
	}

	if !f.allowInMemoryFallback {
		return nil, nil, fmt.Errorf("redis required for product cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory product cache",
		zap.String("addr", f.redisConfig.Addr()),
		zap.Error(err),
	)
	return NewInMemoryProductCache(), nil, nil
}
