package partner

import (
	"time"

	"github.com/google/uuid"

	"github.com/qayed/backend/internal/domain/partner"
)

// CreatePartnerRequest is the payload for creating a customer or supplier
type CreatePartnerRequest struct {
	Name                string `json:"name" binding:"required"`
	Country             string `json:"country"`
	ContactEmail        string `json:"contact_email" binding:"omitempty,email"`
	DefaultPaymentTerms string `json:"default_payment_terms"`
}

// UpdatePartnerRequest is the payload for updating a customer or supplier
type UpdatePartnerRequest struct {
	Name                string `json:"name" binding:"required"`
	Country             string `json:"country"`
	ContactEmail        string `json:"contact_email" binding:"omitempty,email"`
	DefaultPaymentTerms string `json:"default_payment_terms"`
	IsActive            *bool  `json:"is_active"`
}

// PartnerResponse is the API shape shared by customers and suppliers
type PartnerResponse struct {
	ID                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	Country             string    `json:"country"`
	ContactEmail        string    `json:"contact_email"`
	DefaultPaymentTerms string    `json:"default_payment_terms"`
	IsActive            bool      `json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// ToCustomerResponse maps a domain customer to its API shape
func ToCustomerResponse(c *partner.Customer) PartnerResponse {
	return PartnerResponse{
		ID:                  c.ID,
		Name:                c.Name,
		Country:             c.Country,
		ContactEmail:        c.ContactEmail,
		DefaultPaymentTerms: c.DefaultPaymentTerms,
		IsActive:            c.IsActive,
		CreatedAt:           c.CreatedAt,
		UpdatedAt:           c.UpdatedAt,
	}
}

// ToSupplierResponse maps a domain supplier to its API shape
func ToSupplierResponse(s *partner.Supplier) PartnerResponse {
	return PartnerResponse{
		ID:                  s.ID,
		Name:                s.Name,
		Country:             s.Country,
		ContactEmail:        s.ContactEmail,
		DefaultPaymentTerms: s.DefaultPaymentTerms,
		IsActive:            s.IsActive,
		CreatedAt:           s.CreatedAt,
		UpdatedAt:           s.UpdatedAt,
	}
}
