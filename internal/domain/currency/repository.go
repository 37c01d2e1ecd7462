package currency

import (
	"context"
	"time"

	"github.com/qayed/backend/internal/domain/shared"
)

// Repository provides access to the currency catalog
type Repository interface {
	shared.Repository[Currency]
	FindByCode(ctx context.Context, code string) (*Currency, error)
	FindBase(ctx context.Context) (*Currency, error)
	FindActive(ctx context.Context) ([]Currency, error)
}

// RateRepository provides access to exchange rates
type RateRepository interface {
	shared.Repository[ExchangeRate]
	// FindEffective returns the most recent active rate for the pair whose
	// effective date is on or before asOf, or shared.ErrNotFound.
	FindEffective(ctx context.Context, baseCode, targetCode string, asOf time.Time) (*ExchangeRate, error)
	FindLatestPerPair(ctx context.Context) ([]ExchangeRate, error)
}
