// Package partner exposes customer and supplier management as application
// services.
package partner

import (
	"context"

	"github.com/google/uuid"

	"github.com/qayed/backend/internal/domain/shared"
)

// record constrains the partner aggregates the generic service can
// manage: a pointer type carrying the shared update lifecycle.
type record[T any] interface {
	*T
	Update(name, country, contactEmail, defaultPaymentTerms string) error
	Activate()
	Deactivate()
}

// service implements the five partner operations once. CustomerService
// and SupplierService bind it to their repository, constructor and
// response mapping.
type service[T any, R record[T]] struct {
	repo       shared.CompanyRepository[T]
	newRecord  func(companyID uuid.UUID, req CreatePartnerRequest) (R, error)
	toResponse func(R) PartnerResponse
}

// Create validates and persists a new partner record.
func (s service[T, R]) Create(ctx context.Context, companyID uuid.UUID, req CreatePartnerRequest) (*PartnerResponse, error) {
	rec, err := s.newRecord(companyID, req)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, rec); err != nil {
		return nil, err
	}
	resp := s.toResponse(rec)
	return &resp, nil
}

// GetByID retrieves one partner within the company scope.
func (s service[T, R]) GetByID(ctx context.Context, companyID, id uuid.UUID) (*PartnerResponse, error) {
	rec, err := s.repo.FindByIDForCompany(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	resp := s.toResponse(rec)
	return &resp, nil
}

// List returns one page of the company's partners with the total count.
func (s service[T, R]) List(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]PartnerResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	records, err := s.repo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.CountForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PartnerResponse, 0, len(records))
	for i := range records {
		responses = append(responses, s.toResponse(R(&records[i])))
	}
	return responses, total, nil
}

// Update changes the partner's descriptive fields and active flag.
func (s service[T, R]) Update(ctx context.Context, companyID, id uuid.UUID, req UpdatePartnerRequest) (*PartnerResponse, error) {
	rec, err := s.repo.FindByIDForCompany(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	r := R(rec)
	if err := r.Update(req.Name, req.Country, req.ContactEmail, req.DefaultPaymentTerms); err != nil {
		return nil, err
	}
	if req.IsActive != nil {
		if *req.IsActive {
			r.Activate()
		} else {
			r.Deactivate()
		}
	}

	if err := s.repo.Save(ctx, rec); err != nil {
		return nil, err
	}
	resp := s.toResponse(r)
	return &resp, nil
}

// Delete deactivates a partner. Records referenced by invoices are
// never hard-deleted.
func (s service[T, R]) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	rec, err := s.repo.FindByIDForCompany(ctx, companyID, id)
	if err != nil {
		return err
	}
	R(rec).Deactivate()
	return s.repo.Save(ctx, rec)
}
