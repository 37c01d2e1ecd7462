package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/qayed/backend/internal/domain/billing"
)

// CreateInvoiceRequest is the payload for recording an invoice. Exactly one
// of customer_id or supplier_id must be set.
type CreateInvoiceRequest struct {
	InvoiceNumber string               `json:"invoice_number" binding:"required"`
	TotalAmount   decimal.Decimal      `json:"total_amount" binding:"required"`
	Currency      string               `json:"currency" binding:"required,len=3"`
	InvoiceDate   time.Time            `json:"invoice_date" binding:"required"`
	CustomerID    *uuid.UUID           `json:"customer_id"`
	SupplierID    *uuid.UUID           `json:"supplier_id"`
	PaymentPeriod string               `json:"payment_period"`
	Installments  []InstallmentRequest `json:"installments"`
}

// InstallmentRequest is one slice of the invoice total
type InstallmentRequest struct {
	Percentage float64 `json:"percentage" binding:"required,gt=0,lte=100"`
	DaysOffset int     `json:"days_offset" binding:"gte=0"`
}

// UpdateInvoiceRequest changes an open invoice's terms
type UpdateInvoiceRequest struct {
	PaymentPeriod string               `json:"payment_period"`
	Installments  []InstallmentRequest `json:"installments"`
}

// InvoiceResponse is the API shape of an invoice
type InvoiceResponse struct {
	ID            uuid.UUID       `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	Direction     string          `json:"direction"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Currency      string          `json:"currency"`
	InvoiceDate   time.Time       `json:"invoice_date"`
	DueDate       time.Time       `json:"due_date"`
	CustomerID    *uuid.UUID      `json:"customer_id,omitempty"`
	SupplierID    *uuid.UUID      `json:"supplier_id,omitempty"`
	PaymentPeriod string          `json:"payment_period"`
	Status        string          `json:"status"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToInvoiceResponse maps a domain invoice to its API shape
func ToInvoiceResponse(inv *billing.Invoice) InvoiceResponse {
	return InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		Direction:     string(inv.Direction()),
		TotalAmount:   inv.TotalAmount.Round(2),
		Currency:      inv.Currency,
		InvoiceDate:   inv.InvoiceDate,
		DueDate:       inv.DueDate(),
		CustomerID:    inv.CustomerID,
		SupplierID:    inv.SupplierID,
		PaymentPeriod: inv.PaymentTerms.PaymentPeriod,
		Status:        string(inv.Status),
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

func toPaymentTerms(period string, installments []InstallmentRequest) billing.PaymentTerms {
	terms := billing.PaymentTerms{PaymentPeriod: period}
	for _, ins := range installments {
		terms.Installments = append(terms.Installments, billing.Installment{
			Percentage: ins.Percentage,
			DaysOffset: ins.DaysOffset,
		})
	}
	return terms
}
