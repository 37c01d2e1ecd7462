package partner

import (
	"github.com/google/uuid"

	"github.com/qayed/backend/internal/domain/partner"
)

// SupplierService handles supplier operations
type SupplierService struct {
	service[partner.Supplier, *partner.Supplier]
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(supplierRepo partner.SupplierRepository) *SupplierService {
	return &SupplierService{service[partner.Supplier, *partner.Supplier]{
		repo: supplierRepo,
		newRecord: func(companyID uuid.UUID, req CreatePartnerRequest) (*partner.Supplier, error) {
			supplier, err := partner.NewSupplier(companyID, req.Name, req.Country)
			if err != nil {
				return nil, err
			}
			supplier.ContactEmail = req.ContactEmail
			supplier.DefaultPaymentTerms = req.DefaultPaymentTerms
			return supplier, nil
		},
		toResponse: ToSupplierResponse,
	}}
}
