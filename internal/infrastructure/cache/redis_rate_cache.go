package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/qayed/backend/internal/domain/currency"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisConfig holds Redis connection settings for the rate cache
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// RedisRateCache implements currency.RateCache using Redis so resolved
// rates are shared across instances.
type RedisRateCache struct {
	client    *redis.Client
	keyPrefix string
	logger    *zap.Logger
}

// RedisRateCacheOption is a functional option for configuring the cache
type RedisRateCacheOption func(*RedisRateCache)

// WithRedisLogger sets the logger for the cache
func WithRedisLogger(logger *zap.Logger) RedisRateCacheOption {
	return func(c *RedisRateCache) {
		c.logger = logger
	}
}

// NewRedisRateCache creates a new Redis-backed rate cache
func NewRedisRateCache(cfg RedisConfig, opts ...RedisRateCacheOption) (*RedisRateCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 3,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cache := &RedisRateCache{
		client:    client,
		keyPrefix: "cashflow:",
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache, nil
}

// Get retrieves a resolved rate from Redis
func (c *RedisRateCache) Get(ctx context.Context, from, to string, day time.Time) (*currency.ResolvedRate, error) {
	key := c.keyPrefix + rateCacheKey(from, to, day)

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read rate from Redis: %w", err)
	}

	var rate currency.ResolvedRate
	if err := json.Unmarshal(data, &rate); err != nil {
		// Corrupt entry, drop it and treat as a miss
		c.logger.Warn("dropping unparseable rate cache entry", zap.String("key", key), zap.Error(err))
		c.client.Del(ctx, key)
		return nil, nil
	}
	return &rate, nil
}

// Set stores a resolved rate in Redis
func (c *RedisRateCache) Set(ctx context.Context, from, to string, day time.Time, rate *currency.ResolvedRate, ttl time.Duration) error {
	if rate == nil {
		return nil
	}

	data, err := json.Marshal(rate)
	if err != nil {
		return fmt.Errorf("failed to marshal resolved rate: %w", err)
	}

	key := c.keyPrefix + rateCacheKey(from, to, day)
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write rate to Redis: %w", err)
	}
	return nil
}

// InvalidateAll removes all cached rates
func (c *RedisRateCache) InvalidateAll(ctx context.Context) error {
	var cursor uint64
	pattern := c.keyPrefix + "rate:*"
	for {
		keys, next, err := c.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("failed to scan rate cache keys: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("failed to delete rate cache keys: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	c.logger.Info("invalidated rate cache")
	return nil
}

// Close closes the Redis connection
func (c *RedisRateCache) Close() error {
	return c.client.Close()
}

// Ensure RedisRateCache implements currency.RateCache
var _ currency.RateCache = (*RedisRateCache)(nil)
