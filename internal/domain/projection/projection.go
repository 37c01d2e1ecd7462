// Package projection models forward-looking cashflow entries derived from
// invoices, recurring payments and bank facility obligations.
package projection

import (
	"time"

	"github.com/google/uuid"
	"github.com/qayed/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Type classifies the origin and direction of a projected cash movement
type Type string

const (
	TypeCustomerReceivable Type = "CUSTOMER_RECEIVABLE"
	TypeSupplierPayable    Type = "SUPPLIER_PAYABLE"
	TypeRecurringInflow    Type = "RECURRING_INFLOW"
	TypeRecurringOutflow   Type = "RECURRING_OUTFLOW"
	TypeBankObligation     Type = "BANK_OBLIGATION"
	TypeLoanPayment        Type = "LOAN_PAYMENT"
)

// IsValid checks if the projection type is valid
func (t Type) IsValid() bool {
	switch t {
	case TypeCustomerReceivable, TypeSupplierPayable, TypeRecurringInflow,
		TypeRecurringOutflow, TypeBankObligation, TypeLoanPayment:
		return true
	}
	return false
}

// IsInflow reports whether the projection type represents incoming cash
func (t Type) IsInflow() bool {
	return t == TypeCustomerReceivable || t == TypeRecurringInflow
}

// Status is the lifecycle state of a projection
type Status string

const (
	StatusProjected Status = "PROJECTED"
	StatusConfirmed Status = "CONFIRMED"
	StatusRealized  Status = "REALIZED"
	StatusCancelled Status = "CANCELLED"
)

// IsValid checks if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusProjected, StatusConfirmed, StatusRealized, StatusCancelled:
		return true
	}
	return false
}

// SourceKind identifies which aggregate a projection was derived from
type SourceKind string

const (
	SourceInvoice          SourceKind = "INVOICE"
	SourceRecurringPayment SourceKind = "RECURRING_PAYMENT"
	SourceBankStatement    SourceKind = "BANK_STATEMENT"
)

// Source is the typed reference to the record a projection was derived
// from. A single kind plus ID replaces one nullable column per source table.
type Source struct {
	Kind SourceKind `json:"kind"`
	ID   uuid.UUID  `json:"id"`
}

// Projection is one expected cash movement on a future date.
// ProjectedAmount is signed: positive for inflows, negative for outflows.
type Projection struct {
	shared.CompanyAggregateRoot
	Type            Type
	ProjectionDate  time.Time
	ProjectedAmount decimal.Decimal
	Currency        string
	Confidence      decimal.Decimal
	Status          Status
	Source          Source
	Description     string
}

// New creates a projection entry. The amount sign must agree with the
// direction implied by the type.
func New(companyID uuid.UUID, projType Type, date time.Time, amount decimal.Decimal,
	currencyCode string, confidence decimal.Decimal, source Source, description string) (*Projection, error) {
	if !projType.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "invalid projection type")
	}
	if source.Kind == "" || source.ID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "projection source is required")
	}
	if confidence.IsNegative() || confidence.GreaterThan(decimal.NewFromInt(1)) {
		return nil, shared.NewDomainError("INVALID_INPUT", "confidence must be between 0 and 1")
	}
	if projType.IsInflow() && amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "inflow projections must carry a non-negative amount")
	}
	if !projType.IsInflow() && amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "outflow projections must carry a non-positive amount")
	}

	return &Projection{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Type:                 projType,
		ProjectionDate:       date,
		ProjectedAmount:      amount,
		Currency:             currencyCode,
		Confidence:           confidence,
		Status:               StatusProjected,
		Source:               source,
		Description:          description,
	}, nil
}

// Reproject replaces the amount on a refresh run. Entries a user has
// confirmed, or that were realized or cancelled, are left untouched; the
// return value reports whether anything changed.
func (p *Projection) Reproject(amount, confidence decimal.Decimal, description string) bool {
	if p.Status != StatusProjected {
		return false
	}
	p.ProjectedAmount = amount
	p.Confidence = confidence
	p.Description = description
	return true
}

// Confirm marks the projection as confirmed by a user
func (p *Projection) Confirm() error {
	if p.Status != StatusProjected {
		return shared.NewDomainError("INVALID_STATE", "only projected entries can be confirmed")
	}
	p.Status = StatusConfirmed
	return nil
}

// Realize marks the projection as matched against actual cash movement
func (p *Projection) Realize() error {
	if p.Status == StatusCancelled {
		return shared.NewDomainError("INVALID_STATE", "cancelled entries cannot be realized")
	}
	p.Status = StatusRealized
	return nil
}

// Cancel removes the projection from the forecast
func (p *Projection) Cancel() error {
	if p.Status == StatusRealized {
		return shared.NewDomainError("INVALID_STATE", "realized entries cannot be cancelled")
	}
	p.Status = StatusCancelled
	return nil
}
