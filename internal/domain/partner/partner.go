// Package partner holds the customer and supplier records that invoices
// and transaction matches reference.
package partner

import (
	"strings"

	"github.com/google/uuid"
	"github.com/qayed/backend/internal/domain/shared"
)

// Customer is a party the company issues invoices to
type Customer struct {
	shared.CompanyAggregateRoot
	Name                string
	Country             string
	ContactEmail        string
	DefaultPaymentTerms string
	IsActive            bool
}

// NewCustomer creates a new customer
func NewCustomer(companyID uuid.UUID, name, country string) (*Customer, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "customer name is required")
	}
	return &Customer{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Name:                 strings.TrimSpace(name),
		Country:              country,
		IsActive:             true,
	}, nil
}

// Update changes the customer's descriptive fields
func (c *Customer) Update(name, country, contactEmail, defaultPaymentTerms string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_INPUT", "customer name is required")
	}
	c.Name = strings.TrimSpace(name)
	c.Country = country
	c.ContactEmail = contactEmail
	c.DefaultPaymentTerms = defaultPaymentTerms
	return nil
}

// Deactivate hides the customer from new invoices
func (c *Customer) Deactivate() {
	c.IsActive = false
}

// Activate makes the customer selectable again
func (c *Customer) Activate() {
	c.IsActive = true
}

// Supplier is a party that invoices the company
type Supplier struct {
	shared.CompanyAggregateRoot
	Name                string
	Country             string
	ContactEmail        string
	DefaultPaymentTerms string
	IsActive            bool
}

// NewSupplier creates a new supplier
func NewSupplier(companyID uuid.UUID, name, country string) (*Supplier, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "supplier name is required")
	}
	return &Supplier{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Name:                 strings.TrimSpace(name),
		Country:              country,
		IsActive:             true,
	}, nil
}

// Update changes the supplier's descriptive fields
func (s *Supplier) Update(name, country, contactEmail, defaultPaymentTerms string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_INPUT", "supplier name is required")
	}
	s.Name = strings.TrimSpace(name)
	s.Country = country
	s.ContactEmail = contactEmail
	s.DefaultPaymentTerms = defaultPaymentTerms
	return nil
}

// Deactivate hides the supplier from new invoices
func (s *Supplier) Deactivate() {
	s.IsActive = false
}

// Activate makes the supplier selectable again
func (s *Supplier) Activate() {
	s.IsActive = true
}

// CustomerRepository provides access to customers
type CustomerRepository interface {
	shared.CompanyRepository[Customer]
}

// SupplierRepository provides access to suppliers
type SupplierRepository interface {
	shared.CompanyRepository[Supplier]
}
