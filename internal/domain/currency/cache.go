package currency

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ResolvedRate is a pair resolution held in the rate cache
type ResolvedRate struct {
	Rate          decimal.Decimal `json:"rate"`
	Path          ConversionPath  `json:"path"`
	EffectiveDate time.Time       `json:"effective_date"`
}

// RateCache caches resolved exchange rates per (from, to, day).
// A nil result with nil error means cache miss.
type RateCache interface {
	Get(ctx context.Context, from, to string, day time.Time) (*ResolvedRate, error)
	Set(ctx context.Context, from, to string, day time.Time, rate *ResolvedRate, ttl time.Duration) error
	InvalidateAll(ctx context.Context) error
	Close() error
}
