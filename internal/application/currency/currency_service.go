// Package currency exposes the currency catalog, exchange rates and cached
// conversion as application services.
package currency

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/qayed/backend/internal/domain/currency"
	"github.com/qayed/backend/internal/domain/shared"
)

// CurrencyService handles currency catalog operations
type CurrencyService struct {
	currencyRepo currency.Repository
}

// NewCurrencyService creates a new CurrencyService
func NewCurrencyService(currencyRepo currency.Repository) *CurrencyService {
	return &CurrencyService{
		currencyRepo: currencyRepo,
	}
}

// Create adds a currency to the catalog
func (s *CurrencyService) Create(ctx context.Context, req CreateCurrencyRequest) (*CurrencyResponse, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))

	existing, err := s.currencyRepo.FindByCode(ctx, code)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Currency with this code already exists")
	}

	cur, err := currency.NewCurrency(code, req.Name, req.Symbol, req.DecimalPlaces)
	if err != nil {
		return nil, err
	}

	if req.IsBase {
		if _, err := s.currencyRepo.FindBase(ctx); err == nil {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "A base currency is already configured")
		} else if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		cur.MarkAsBase()
	}

	if err := s.currencyRepo.Save(ctx, cur); err != nil {
		return nil, err
	}

	response := ToCurrencyResponse(cur)
	return &response, nil
}

// GetByID retrieves a currency by ID
func (s *CurrencyService) GetByID(ctx context.Context, id uuid.UUID) (*CurrencyResponse, error) {
	cur, err := s.currencyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToCurrencyResponse(cur)
	return &response, nil
}

// GetByCode retrieves a currency by its ISO code
func (s *CurrencyService) GetByCode(ctx context.Context, code string) (*CurrencyResponse, error) {
	cur, err := s.currencyRepo.FindByCode(ctx, strings.ToUpper(strings.TrimSpace(code)))
	if err != nil {
		return nil, err
	}
	response := ToCurrencyResponse(cur)
	return &response, nil
}

// List retrieves currencies with pagination
func (s *CurrencyService) List(ctx context.Context, filter shared.Filter) ([]CurrencyResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	currencies, err := s.currencyRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.currencyRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]CurrencyResponse, 0, len(currencies))
	for i := range currencies {
		responses = append(responses, ToCurrencyResponse(&currencies[i]))
	}
	return responses, total, nil
}

// Update changes a currency's descriptive fields and active flag
func (s *CurrencyService) Update(ctx context.Context, id uuid.UUID, req UpdateCurrencyRequest) (*CurrencyResponse, error) {
	cur, err := s.currencyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := cur.Update(req.Name, req.Symbol, req.DecimalPlaces); err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		if *req.IsActive {
			cur.Activate()
		} else if err := cur.Deactivate(); err != nil {
			return nil, err
		}
	}

	if err := s.currencyRepo.Save(ctx, cur); err != nil {
		return nil, err
	}

	response := ToCurrencyResponse(cur)
	return &response, nil
}

// Delete deactivates a currency. Catalog entries are never hard-deleted
// because historical rates and statements reference them.
func (s *CurrencyService) Delete(ctx context.Context, id uuid.UUID) error {
	cur, err := s.currencyRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := cur.Deactivate(); err != nil {
		return err
	}
	return s.currencyRepo.Save(ctx, cur)
}
