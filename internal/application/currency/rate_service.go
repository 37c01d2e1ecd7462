package currency

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qayed/backend/internal/domain/currency"
	"github.com/qayed/backend/internal/domain/shared"
)

// RateService handles exchange rate maintenance. Every mutation invalidates
// the rate cache so stale resolutions never outlive a correction.
type RateService struct {
	currencyRepo currency.Repository
	rateRepo     currency.RateRepository
	rateCache    currency.RateCache
	logger       *zap.Logger
}

// RateServiceOption configures a RateService
type RateServiceOption func(*RateService)

// WithRateServiceLogger sets the logger for the rate service
func WithRateServiceLogger(logger *zap.Logger) RateServiceOption {
	return func(s *RateService) {
		s.logger = logger
	}
}

// NewRateService creates a new RateService
func NewRateService(currencyRepo currency.Repository, rateRepo currency.RateRepository,
	rateCache currency.RateCache, opts ...RateServiceOption) *RateService {
	s := &RateService{
		currencyRepo: currencyRepo,
		rateRepo:     rateRepo,
		rateCache:    rateCache,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create records a dated exchange rate between two catalog currencies
func (s *RateService) Create(ctx context.Context, req CreateRateRequest) (*RateResponse, error) {
	base, err := s.currencyRepo.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(req.BaseCode)))
	if err != nil {
		return nil, err
	}
	target, err := s.currencyRepo.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(req.TargetCode)))
	if err != nil {
		return nil, err
	}

	rate, err := currency.NewExchangeRate(base, target, req.Rate, req.EffectiveDate, currency.RateSource(req.Source))
	if err != nil {
		return nil, err
	}

	if err := s.rateRepo.Save(ctx, rate); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)

	response := ToRateResponse(rate)
	return &response, nil
}

// GetByID retrieves a rate by ID
func (s *RateService) GetByID(ctx context.Context, id uuid.UUID) (*RateResponse, error) {
	rate, err := s.rateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToRateResponse(rate)
	return &response, nil
}

// List retrieves rates with pagination
func (s *RateService) List(ctx context.Context, filter shared.Filter) ([]RateResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	rates, err := s.rateRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.rateRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]RateResponse, 0, len(rates))
	for i := range rates {
		responses = append(responses, ToRateResponse(&rates[i]))
	}
	return responses, total, nil
}

// ListLatest returns the newest rate per currency pair
func (s *RateService) ListLatest(ctx context.Context) ([]RateResponse, error) {
	rates, err := s.rateRepo.FindLatestPerPair(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]RateResponse, 0, len(rates))
	for i := range rates {
		responses = append(responses, ToRateResponse(&rates[i]))
	}
	return responses, nil
}

// Update corrects a recorded rate value and recomputes its inverse
func (s *RateService) Update(ctx context.Context, id uuid.UUID, req UpdateRateRequest) (*RateResponse, error) {
	rate, err := s.rateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := rate.UpdateRate(req.Rate); err != nil {
		return nil, err
	}
	if req.IsActive != nil && !*req.IsActive {
		rate.Deactivate()
	}

	if err := s.rateRepo.Save(ctx, rate); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx)

	response := ToRateResponse(rate)
	return &response, nil
}

// Delete deactivates a rate so it no longer resolves, keeping history
func (s *RateService) Delete(ctx context.Context, id uuid.UUID) error {
	rate, err := s.rateRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	rate.Deactivate()
	if err := s.rateRepo.Save(ctx, rate); err != nil {
		return err
	}
	s.invalidateCache(ctx)
	return nil
}

// invalidateCache drops cached resolutions after a rate mutation.
// A cache failure is logged, not propagated; entries expire on TTL anyway.
func (s *RateService) invalidateCache(ctx context.Context) {
	if s.rateCache == nil {
		return
	}
	if err := s.rateCache.InvalidateAll(ctx); err != nil {
		s.logger.Warn("Failed to invalidate rate cache", zap.Error(err))
	}
}
