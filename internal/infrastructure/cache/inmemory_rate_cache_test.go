package cache

import (
	"context"
	"testing"
	"time"

	"github.com/qayed/backend/internal/domain/currency"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRateCache_SetAndGet(t *testing.T) {
	cache := NewInMemoryRateCache()
	defer cache.Close()

	ctx := context.Background()
	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	resolved := &currency.ResolvedRate{
		Rate:          decimal.NewFromInt(50),
		Path:          currency.PathDirect,
		EffectiveDate: day,
	}

	require.NoError(t, cache.Set(ctx, "USD", "EGP", day, resolved, 5*time.Minute))

	got, err := cache.Get(ctx, "USD", "EGP", day)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Rate.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, currency.PathDirect, got.Path)

	hits, misses := cache.GetStats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(0), misses)
}

func TestInMemoryRateCache_MissOnDifferentDay(t *testing.T) {
	cache := NewInMemoryRateCache()
	defer cache.Close()

	ctx := context.Background()
	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	resolved := &currency.ResolvedRate{Rate: decimal.NewFromInt(50), Path: currency.PathDirect, EffectiveDate: day}

	require.NoError(t, cache.Set(ctx, "USD", "EGP", day, resolved, 5*time.Minute))

	got, err := cache.Get(ctx, "USD", "EGP", day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestInMemoryRateCache_ExpiredEntryIsMiss(t *testing.T) {
	cache := NewInMemoryRateCache()
	defer cache.Close()

	ctx := context.Background()
	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	resolved := &currency.ResolvedRate{Rate: decimal.NewFromInt(50), Path: currency.PathDirect, EffectiveDate: day}

	require.NoError(t, cache.Set(ctx, "USD", "EGP", day, resolved, time.Millisecond))
	time.Sleep(5 * time.Millisecond)

	got, err := cache.Get(ctx, "USD", "EGP", day)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.Equal(t, 0, cache.Count())
}

func TestInMemoryRateCache_InvalidateAll(t *testing.T) {
	cache := NewInMemoryRateCache()
	defer cache.Close()

	ctx := context.Background()
	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	resolved := &currency.ResolvedRate{Rate: decimal.NewFromInt(50), Path: currency.PathDirect, EffectiveDate: day}

	require.NoError(t, cache.Set(ctx, "USD", "EGP", day, resolved, 5*time.Minute))
	require.NoError(t, cache.Set(ctx, "EUR", "EGP", day, resolved, 5*time.Minute))
	assert.Equal(t, 2, cache.Count())

	require.NoError(t, cache.InvalidateAll(ctx))
	assert.Equal(t, 0, cache.Count())
}

func TestInMemoryRateCache_CloseIsIdempotent(t *testing.T) {
	cache := NewInMemoryRateCache()
	require.NoError(t, cache.Close())
	require.NoError(t, cache.Close())
}
