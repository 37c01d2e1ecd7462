package currency

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/qayed/backend/internal/domain/currency"
	"github.com/qayed/backend/internal/infrastructure/telemetry"
)

// ConversionService resolves currency conversions through the domain
// converter with a per-day rate cache in front of it. Cache failures fall
// back to a direct resolution; the cache is an optimization, never a
// correctness dependency.
type ConversionService struct {
	converter *currency.Converter
	rateCache currency.RateCache
	cacheTTL  time.Duration
	logger    *zap.Logger
}

// ConversionServiceOption configures a ConversionService
type ConversionServiceOption func(*ConversionService)

// WithConversionLogger sets the logger for the conversion service
func WithConversionLogger(logger *zap.Logger) ConversionServiceOption {
	return func(s *ConversionService) {
		s.logger = logger
	}
}

// NewConversionService creates a new ConversionService
func NewConversionService(converter *currency.Converter, rateCache currency.RateCache,
	cacheTTL time.Duration, opts ...ConversionServiceOption) *ConversionService {
	s := &ConversionService{
		converter: converter,
		rateCache: rateCache,
		cacheTTL:  cacheTTL,
		logger:    zap.NewNop(),
	}
	if s.cacheTTL <= 0 {
		s.cacheTTL = 5 * time.Minute
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Convert expresses amount in the target currency as of the given date.
// Resolutions are cached per (from, to, day).
func (s *ConversionService) Convert(ctx context.Context, amount decimal.Decimal, from, to string, asOf time.Time) (*ConversionResponse, error) {
	from = strings.ToUpper(strings.TrimSpace(from))
	to = strings.ToUpper(strings.TrimSpace(to))
	day := asOf.Truncate(24 * time.Hour)

	ctx, span := telemetry.StartSpan(ctx, "currency.convert",
		attribute.String("from_currency", from),
		attribute.String("to_currency", to),
	)
	defer span.End()

	if cached := s.cacheLookup(ctx, from, to, day); cached != nil {
		telemetry.AddEvent(span, "rate_cache_hit")
		response := ToConversionResponse(&currency.Conversion{
			OriginalAmount:  amount,
			ConvertedAmount: amount.Mul(cached.Rate),
			FromCurrency:    from,
			ToCurrency:      to,
			ExchangeRate:    cached.Rate,
			Path:            cached.Path,
			EffectiveDate:   cached.EffectiveDate,
		}, true)
		return &response, nil
	}

	conversion, err := s.converter.Convert(ctx, amount, from, to, asOf)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.cacheStore(ctx, conversion, day)

	response := ToConversionResponse(conversion, false)
	return &response, nil
}

func (s *ConversionService) cacheLookup(ctx context.Context, from, to string, day time.Time) *currency.ResolvedRate {
	if s.rateCache == nil {
		return nil
	}
	resolved, err := s.rateCache.Get(ctx, from, to, day)
	if err != nil {
		s.logger.Warn("Rate cache lookup failed",
			zap.String("from", from),
			zap.String("to", to),
			zap.Error(err))
		return nil
	}
	return resolved
}

func (s *ConversionService) cacheStore(ctx context.Context, conversion *currency.Conversion, day time.Time) {
	if s.rateCache == nil {
		return
	}
	resolved := &currency.ResolvedRate{
		Rate:          conversion.ExchangeRate,
		Path:          conversion.Path,
		EffectiveDate: conversion.EffectiveDate,
	}
	if err := s.rateCache.Set(ctx, conversion.FromCurrency, conversion.ToCurrency, day, resolved, s.cacheTTL); err != nil {
		s.logger.Warn("Rate cache store failed",
			zap.String("from", conversion.FromCurrency),
			zap.String("to", conversion.ToCurrency),
			zap.Error(err))
	}
}
