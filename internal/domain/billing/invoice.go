// Package billing models customer and supplier invoices and the payment
// terms that drive their projected settlement dates.
package billing

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qayed/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is the settlement state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusOpen      InvoiceStatus = "OPEN"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// IsValid checks if the invoice status is valid
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case InvoiceStatusOpen, InvoiceStatusPaid, InvoiceStatusCancelled:
		return true
	}
	return false
}

// InvoiceDirection distinguishes receivables from payables
type InvoiceDirection string

const (
	DirectionReceivable InvoiceDirection = "RECEIVABLE"
	DirectionPayable    InvoiceDirection = "PAYABLE"
)

// Invoice is an amount owed to or by the company. It references exactly
// one of a customer (receivable) or a supplier (payable).
type Invoice struct {
	shared.CompanyAggregateRoot
	InvoiceNumber string
	TotalAmount   decimal.Decimal
	Currency      string
	InvoiceDate   time.Time
	CustomerID    *uuid.UUID
	SupplierID    *uuid.UUID
	PaymentTerms  PaymentTerms
	Status        InvoiceStatus
}

// NewCustomerInvoice creates a receivable invoice
func NewCustomerInvoice(companyID, customerID uuid.UUID, invoiceNumber string,
	total decimal.Decimal, currencyCode string, invoiceDate time.Time, terms PaymentTerms) (*Invoice, error) {
	inv, err := newInvoice(companyID, invoiceNumber, total, currencyCode, invoiceDate, terms)
	if err != nil {
		return nil, err
	}
	inv.CustomerID = &customerID
	return inv, nil
}

// NewSupplierInvoice creates a payable invoice
func NewSupplierInvoice(companyID, supplierID uuid.UUID, invoiceNumber string,
	total decimal.Decimal, currencyCode string, invoiceDate time.Time, terms PaymentTerms) (*Invoice, error) {
	inv, err := newInvoice(companyID, invoiceNumber, total, currencyCode, invoiceDate, terms)
	if err != nil {
		return nil, err
	}
	inv.SupplierID = &supplierID
	return inv, nil
}

func newInvoice(companyID uuid.UUID, invoiceNumber string, total decimal.Decimal,
	currencyCode string, invoiceDate time.Time, terms PaymentTerms) (*Invoice, error) {
	if strings.TrimSpace(invoiceNumber) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "invoice number is required")
	}
	if !total.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "invoice total must be positive")
	}
	if currencyCode == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "currency code is required")
	}

	return &Invoice{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		InvoiceNumber:        strings.TrimSpace(invoiceNumber),
		TotalAmount:          total,
		Currency:             strings.ToUpper(currencyCode),
		InvoiceDate:          invoiceDate,
		PaymentTerms:         terms,
		Status:               InvoiceStatusOpen,
	}, nil
}

// Direction reports whether the invoice is a receivable or a payable
func (i *Invoice) Direction() InvoiceDirection {
	if i.CustomerID != nil {
		return DirectionReceivable
	}
	return DirectionPayable
}

// DueDate returns the settlement date implied by the payment terms
func (i *Invoice) DueDate() time.Time {
	return i.PaymentTerms.DueDate(i.InvoiceDate)
}

// IsOpen reports whether the invoice still expects settlement
func (i *Invoice) IsOpen() bool {
	return i.Status == InvoiceStatusOpen
}

// MarkPaid settles the invoice
func (i *Invoice) MarkPaid() error {
	if i.Status != InvoiceStatusOpen {
		return shared.NewDomainError("INVALID_STATE", "only open invoices can be marked paid")
	}
	i.Status = InvoiceStatusPaid
	return nil
}

// Cancel voids the invoice
func (i *Invoice) Cancel() error {
	if i.Status == InvoiceStatusPaid {
		return shared.NewDomainError("INVALID_STATE", "paid invoices cannot be cancelled")
	}
	i.Status = InvoiceStatusCancelled
	return nil
}

// Repository provides access to invoices
type Repository interface {
	shared.CompanyRepository[Invoice]
	// FindOpenForCompany returns every open invoice for the company
	FindOpenForCompany(ctx context.Context, companyID uuid.UUID) ([]Invoice, error)
}
