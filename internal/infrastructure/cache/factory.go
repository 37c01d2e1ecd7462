package cache

import (
	"fmt"

	"github.com/qayed/backend/internal/domain/currency"
	"github.com/qayed/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// RateCacheFactory creates rate caches based on configuration
type RateCacheFactory struct {
	cacheConfig config.CacheConfig
	redisConfig config.RedisConfig
	logger      *zap.Logger
}

// RateCacheFactoryOption is a functional option for configuring the factory
type RateCacheFactoryOption func(*RateCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) RateCacheFactoryOption {
	return func(f *RateCacheFactory) {
		f.logger = logger
	}
}

// NewRateCacheFactory creates a new factory
func NewRateCacheFactory(cacheCfg config.CacheConfig, redisCfg config.RedisConfig, opts ...RateCacheFactoryOption) *RateCacheFactory {
	f := &RateCacheFactory{
		cacheConfig: cacheCfg,
		redisConfig: redisCfg,
		logger:      zap.NewNop(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateCache creates a rate cache for the configured backend.
// When Redis is configured but unreachable it falls back to the
// in-memory cache with a warning.
func (f *RateCacheFactory) CreateCache() (currency.RateCache, error) {
	switch f.cacheConfig.Backend {
	case "memory":
		f.logger.Info("using in-memory rate cache")
		return NewInMemoryRateCache(WithInMemoryLogger(f.logger)), nil
	case "redis":
		cache, err := NewRedisRateCache(RedisConfig{
			Host:     f.redisConfig.Host,
			Port:     f.redisConfig.Port,
			Password: f.redisConfig.Password,
			DB:       f.redisConfig.DB,
		}, WithRedisLogger(f.logger))
		if err != nil {
			f.logger.Warn("Redis unavailable, falling back to in-memory rate cache. "+
				"Cached rates will not be shared across instances.",
				zap.Error(err),
			)
			return NewInMemoryRateCache(WithInMemoryLogger(f.logger)), nil
		}
		f.logger.Info("using Redis rate cache")
		return cache, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", f.cacheConfig.Backend)
	}
}
