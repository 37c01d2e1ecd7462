package currency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/qayed/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ConversionPath describes how a conversion rate was resolved
type ConversionPath string

const (
	PathIdentity ConversionPath = "IDENTITY"
	PathDirect   ConversionPath = "DIRECT"
	PathInverse  ConversionPath = "INVERSE"
	PathCross    ConversionPath = "CROSS"
)

// Conversion is the result of resolving and applying an exchange rate
type Conversion struct {
	OriginalAmount  decimal.Decimal
	ConvertedAmount decimal.Decimal
	FromCurrency    string
	ToCurrency      string
	ExchangeRate    decimal.Decimal
	Path            ConversionPath
	EffectiveDate   time.Time
}

// BaseCurrencyFinder resolves the reporting base currency
type BaseCurrencyFinder interface {
	FindBase(ctx context.Context) (*Currency, error)
}

// EffectiveRateFinder resolves the rate effective at a point in time
type EffectiveRateFinder interface {
	FindEffective(ctx context.Context, baseCode, targetCode string, asOf time.Time) (*ExchangeRate, error)
}

// Converter resolves exchange rates with a direct, inverse, then
// cross-rate fallback chain. Cross rates pivot through the base currency.
type Converter struct {
	currencies BaseCurrencyFinder
	rates      EffectiveRateFinder
}

// NewConverter creates a conversion resolver
func NewConverter(currencies BaseCurrencyFinder, rates EffectiveRateFinder) *Converter {
	return &Converter{
		currencies: currencies,
		rates:      rates,
	}
}

// Convert expresses amount in the target currency as of the given date
func (c *Converter) Convert(ctx context.Context, amount decimal.Decimal, from, to string, asOf time.Time) (*Conversion, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	if from == "" || to == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "source and target currency codes are required")
	}

	if from == to {
		return &Conversion{
			OriginalAmount:  amount,
			ConvertedAmount: amount,
			FromCurrency:    from,
			ToCurrency:      to,
			ExchangeRate:    decimal.NewFromInt(1),
			Path:            PathIdentity,
			EffectiveDate:   asOf,
		}, nil
	}

	rate, path, effective, err := c.resolvePair(ctx, from, to, asOf)
	if err != nil {
		return nil, err
	}

	return &Conversion{
		OriginalAmount:  amount,
		ConvertedAmount: amount.Mul(rate),
		FromCurrency:    from,
		ToCurrency:      to,
		ExchangeRate:    rate,
		Path:            path,
		EffectiveDate:   effective,
	}, nil
}

// resolvePair tries direct, inverse, then cross via the base currency
func (c *Converter) resolvePair(ctx context.Context, from, to string, asOf time.Time) (decimal.Decimal, ConversionPath, time.Time, error) {
	if rate, effective, ok, err := c.lookupDirect(ctx, from, to, asOf); err != nil {
		return decimal.Zero, "", time.Time{}, err
	} else if ok {
		return rate, PathDirect, effective, nil
	}

	if rate, effective, ok, err := c.lookupInverse(ctx, from, to, asOf); err != nil {
		return decimal.Zero, "", time.Time{}, err
	} else if ok {
		return rate, PathInverse, effective, nil
	}

	rate, effective, ok, err := c.lookupCross(ctx, from, to, asOf)
	if err != nil {
		return decimal.Zero, "", time.Time{}, err
	}
	if ok {
		return rate, PathCross, effective, nil
	}

	return decimal.Zero, "", time.Time{}, shared.NewDomainError(
		"RATE_NOT_FOUND",
		fmt.Sprintf("no exchange rate available from %s to %s", from, to),
	)
}

func (c *Converter) lookupDirect(ctx context.Context, from, to string, asOf time.Time) (decimal.Decimal, time.Time, bool, error) {
	r, err := c.rates.FindEffective(ctx, from, to, asOf)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, time.Time{}, false, nil
		}
		return decimal.Zero, time.Time{}, false, err
	}
	return r.Rate, r.EffectiveDate, true, nil
}

func (c *Converter) lookupInverse(ctx context.Context, from, to string, asOf time.Time) (decimal.Decimal, time.Time, bool, error) {
	r, err := c.rates.FindEffective(ctx, to, from, asOf)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, time.Time{}, false, nil
		}
		return decimal.Zero, time.Time{}, false, err
	}
	inverse := r.InverseRate
	if inverse.IsZero() && !r.Rate.IsZero() {
		inverse = decimal.NewFromInt(1).Div(r.Rate)
	}
	return inverse, r.EffectiveDate, true, nil
}

// lookupCross pivots through the base currency: from -> base -> to.
// Each leg may itself be satisfied by a direct or inverse rate.
func (c *Converter) lookupCross(ctx context.Context, from, to string, asOf time.Time) (decimal.Decimal, time.Time, bool, error) {
	base, err := c.currencies.FindBase(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return decimal.Zero, time.Time{}, false, nil
		}
		return decimal.Zero, time.Time{}, false, err
	}
	if base.Code == from || base.Code == to {
		return decimal.Zero, time.Time{}, false, nil
	}

	toBase, baseEffective, ok, err := c.lookupLeg(ctx, from, base.Code, asOf)
	if err != nil || !ok {
		return decimal.Zero, time.Time{}, false, err
	}
	fromBase, targetEffective, ok, err := c.lookupLeg(ctx, base.Code, to, asOf)
	if err != nil || !ok {
		return decimal.Zero, time.Time{}, false, err
	}

	effective := baseEffective
	if targetEffective.Before(effective) {
		effective = targetEffective
	}
	return toBase.Mul(fromBase), effective, true, nil
}

func (c *Converter) lookupLeg(ctx context.Context, from, to string, asOf time.Time) (decimal.Decimal, time.Time, bool, error) {
	if rate, effective, ok, err := c.lookupDirect(ctx, from, to, asOf); err != nil || ok {
		return rate, effective, ok, err
	}
	return c.lookupInverse(ctx, from, to, asOf)
}
