package currency

import (
	"time"

	"github.com/google/uuid"
	"github.com/qayed/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RateSource describes where an exchange rate came from
type RateSource string

const (
	RateSourceManual   RateSource = "MANUAL"
	RateSourceProvider RateSource = "PROVIDER"
	RateSourceImport   RateSource = "IMPORT"
)

// IsValid checks if the rate source is valid
func (s RateSource) IsValid() bool {
	switch s {
	case RateSourceManual, RateSourceProvider, RateSourceImport:
		return true
	}
	return false
}

// ExchangeRate is a dated rate between two currencies.
// The inverse rate is computed once at creation so lookups in the
// opposite direction never divide at read time.
type ExchangeRate struct {
	shared.BaseAggregateRoot
	BaseCurrencyID   uuid.UUID
	TargetCurrencyID uuid.UUID
	BaseCode         string
	TargetCode       string
	Rate             decimal.Decimal
	InverseRate      decimal.Decimal
	EffectiveDate    time.Time
	Source           RateSource
	IsActive         bool
}

// NewExchangeRate creates a new exchange rate with a derived inverse
func NewExchangeRate(base, target *Currency, rate decimal.Decimal, effectiveDate time.Time, source RateSource) (*ExchangeRate, error) {
	if base == nil || target == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "base and target currencies are required")
	}
	if base.ID == target.ID {
		return nil, shared.NewDomainError("INVALID_INPUT", "base and target currencies must differ")
	}
	if !rate.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "exchange rate must be positive")
	}
	if !source.IsValid() {
		source = RateSourceManual
	}

	return &ExchangeRate{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BaseCurrencyID:    base.ID,
		TargetCurrencyID:  target.ID,
		BaseCode:          base.Code,
		TargetCode:        target.Code,
		Rate:              rate,
		InverseRate:       decimal.NewFromInt(1).Div(rate),
		EffectiveDate:     effectiveDate,
		Source:            source,
		IsActive:          true,
	}, nil
}

// UpdateRate replaces the rate value and recomputes the inverse
func (r *ExchangeRate) UpdateRate(rate decimal.Decimal) error {
	if !rate.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "exchange rate must be positive")
	}
	r.Rate = rate
	r.InverseRate = decimal.NewFromInt(1).Div(rate)
	return nil
}

// Deactivate removes the rate from lookup without deleting history
func (r *ExchangeRate) Deactivate() {
	r.IsActive = false
}
