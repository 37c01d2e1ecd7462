package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/qayed/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// PaymentTermsColumn stores billing.PaymentTerms as a jsonb column
type PaymentTermsColumn billing.PaymentTerms

// Value implements driver.Valuer
func (t PaymentTermsColumn) Value() (driver.Value, error) {
	return json.Marshal(billing.PaymentTerms(t))
}

// Scan implements sql.Scanner
func (t *PaymentTermsColumn) Scan(value any) error {
	if value == nil {
		*t = PaymentTermsColumn{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into PaymentTermsColumn", value)
	}
	return json.Unmarshal(data, (*billing.PaymentTerms)(t))
}

// InvoiceModel is the persistence model for invoices
type InvoiceModel struct {
	CompanyAggregateModel
	InvoiceNumber string             `gorm:"type:varchar(100);not null;index"`
	TotalAmount   decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Currency      string             `gorm:"type:varchar(3);not null"`
	InvoiceDate   time.Time          `gorm:"not null;index"`
	CustomerID    *uuid.UUID         `gorm:"type:uuid;index"`
	SupplierID    *uuid.UUID         `gorm:"type:uuid;index"`
	PaymentTerms  PaymentTermsColumn `gorm:"type:jsonb"`
	Status        string             `gorm:"type:varchar(20);not null;default:'OPEN';index"`
}

// TableName returns the table name for InvoiceModel
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts InvoiceModel to domain Invoice
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	inv := &billing.Invoice{
		InvoiceNumber: m.InvoiceNumber,
		TotalAmount:   m.TotalAmount,
		Currency:      m.Currency,
		InvoiceDate:   m.InvoiceDate,
		CustomerID:    m.CustomerID,
		SupplierID:    m.SupplierID,
		PaymentTerms:  billing.PaymentTerms(m.PaymentTerms),
		Status:        billing.InvoiceStatus(m.Status),
	}
	m.PopulateCompanyAggregateRoot(&inv.CompanyAggregateRoot)
	return inv
}

// InvoiceModelFromDomain creates an InvoiceModel from domain Invoice
func InvoiceModelFromDomain(inv *billing.Invoice) *InvoiceModel {
	m := &InvoiceModel{
		InvoiceNumber: inv.InvoiceNumber,
		TotalAmount:   inv.TotalAmount,
		Currency:      inv.Currency,
		InvoiceDate:   inv.InvoiceDate,
		CustomerID:    inv.CustomerID,
		SupplierID:    inv.SupplierID,
		PaymentTerms:  PaymentTermsColumn(inv.PaymentTerms),
		Status:        string(inv.Status),
	}
	m.FromDomainCompanyAggregateRoot(inv.CompanyAggregateRoot)
	return m
}
