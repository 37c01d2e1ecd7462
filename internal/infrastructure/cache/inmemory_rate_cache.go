package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/qayed/backend/internal/domain/currency"
	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

// InMemoryRateCache implements currency.RateCache using in-memory storage.
// Suitable for single-instance deployments; entries expire by TTL.
type InMemoryRateCache struct {
	entries sync.Map // map[string]*rateEntry
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	// Stats for monitoring
	hits   int64
	misses int64
}

type rateEntry struct {
	value     *currency.ResolvedRate
	expiresAt time.Time
}

func (e *rateEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryRateCacheOption is a functional option for configuring the cache
type InMemoryRateCacheOption func(*InMemoryRateCache)

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryRateCacheOption {
	return func(c *InMemoryRateCache) {
		c.logger = logger
	}
}

// NewInMemoryRateCache creates a new in-memory rate cache
func NewInMemoryRateCache(opts ...InMemoryRateCacheOption) *InMemoryRateCache {
	cache := &InMemoryRateCache{
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	go cache.cleanupExpired()

	return cache
}

// rateCacheKey generates the cache key for a currency pair on a day
func rateCacheKey(from, to string, day time.Time) string {
	return "rate:" + from + ":" + to + ":" + day.Format("2006-01-02")
}

// Get retrieves a resolved rate from cache
func (c *InMemoryRateCache) Get(ctx context.Context, from, to string, day time.Time) (*currency.ResolvedRate, error) {
	key := rateCacheKey(from, to, day)

	if value, ok := c.entries.Load(key); ok {
		entry := value.(*rateEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			c.logger.Debug("rate cache hit", zap.String("key", key))
			return entry.value, nil
		}
		c.entries.Delete(key)
	}

	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("rate cache miss", zap.String("key", key))
	return nil, nil
}

// Set stores a resolved rate in cache
func (c *InMemoryRateCache) Set(ctx context.Context, from, to string, day time.Time, rate *currency.ResolvedRate, ttl time.Duration) error {
	if rate == nil {
		return nil
	}

	key := rateCacheKey(from, to, day)
	c.entries.Store(key, &rateEntry{
		value:     rate,
		expiresAt: time.Now().Add(ttl),
	})
	c.logger.Debug("cached resolved rate",
		zap.String("key", key),
		zap.Duration("ttl", ttl))
	return nil
}

// InvalidateAll removes all cached rates
func (c *InMemoryRateCache) InvalidateAll(ctx context.Context) error {
	c.entries.Range(func(key, _ any) bool {
		c.entries.Delete(key)
		return true
	})
	c.logger.Info("invalidated rate cache")
	return nil
}

// Close releases any resources held by the cache
func (c *InMemoryRateCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns cache statistics
func (c *InMemoryRateCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of entries in the cache
func (c *InMemoryRateCache) Count() int {
	count := 0
	c.entries.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

// cleanupExpired periodically removes expired entries from the cache
func (c *InMemoryRateCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			removed := 0
			c.entries.Range(func(key, value any) bool {
				if value.(*rateEntry).isExpired() {
					c.entries.Delete(key)
					removed++
				}
				return true
			})
			if removed > 0 {
				c.logger.Debug("cleaned up expired rate cache entries", zap.Int("removed", removed))
			}
		}
	}
}

// Ensure InMemoryRateCache implements currency.RateCache
var _ currency.RateCache = (*InMemoryRateCache)(nil)
