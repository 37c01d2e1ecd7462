package partner

import (
	"github.com/google/uuid"

	"github.com/qayed/backend/internal/domain/partner"
)

// CustomerService handles customer operations
type CustomerService struct {
	service[partner.Customer, *partner.Customer]
}

// NewCustomerService creates a new CustomerService
func NewCustomerService(customerRepo partner.CustomerRepository) *CustomerService {
	return &CustomerService{service[partner.Customer, *partner.Customer]{
		repo: customerRepo,
		newRecord: func(companyID uuid.UUID, req CreatePartnerRequest) (*partner.Customer, error) {
			customer, err := partner.NewCustomer(companyID, req.Name, req.Country)
			if err != nil {
				return nil, err
			}
			customer.ContactEmail = req.ContactEmail
			customer.DefaultPaymentTerms = req.DefaultPaymentTerms
			return customer, nil
		},
		toResponse: ToCustomerResponse,
	}}
}
