package banking

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/qayed/backend/internal/domain/banking"
)

// CreateStatementRequest is the payload for recording a statement manually
type CreateStatementRequest struct {
	BankName        string                     `json:"bank_name" binding:"required"`
	AccountNumber   string                     `json:"account_number" binding:"required"`
	AccountType     *string                    `json:"account_type"`
	AccountCurrency string                     `json:"account_currency" binding:"required,len=3"`
	StartingBalance decimal.Decimal            `json:"starting_balance"`
	EndingBalance   decimal.Decimal            `json:"ending_balance"`
	PeriodStart     time.Time                  `json:"period_start" binding:"required"`
	PeriodEnd       time.Time                  `json:"period_end" binding:"required"`
	TenorMonths     *int                       `json:"tenor_months"`
	InterestRate    *decimal.Decimal           `json:"interest_rate"`
	AvailableLimit  *decimal.Decimal           `json:"available_limit"`
	Transactions    []CreateTransactionRequest `json:"transactions"`
}

// CreateTransactionRequest is one line item on a manual statement
type CreateTransactionRequest struct {
	TransactionDate time.Time        `json:"transaction_date" binding:"required"`
	CreditAmount    *decimal.Decimal `json:"credit_amount"`
	DebitAmount     *decimal.Decimal `json:"debit_amount"`
	Description     string           `json:"description"`
	EntityName      string           `json:"entity_name"`
}

// StatementResponse is the API shape of a bank statement
type StatementResponse struct {
	ID               uuid.UUID        `json:"id"`
	BankName         string           `json:"bank_name"`
	AccountNumber    string           `json:"account_number"`
	AccountType      *string          `json:"account_type"`
	AccountCurrency  string           `json:"account_currency"`
	StartingBalance  decimal.Decimal  `json:"starting_balance"`
	EndingBalance    decimal.Decimal  `json:"ending_balance"`
	PeriodStart      time.Time        `json:"period_start"`
	PeriodEnd        time.Time        `json:"period_end"`
	TenorMonths      *int             `json:"tenor_months,omitempty"`
	InterestRate     *decimal.Decimal `json:"interest_rate,omitempty"`
	AvailableLimit   *decimal.Decimal `json:"available_limit,omitempty"`
	IsFacility       bool             `json:"is_facility"`
	ValidationStatus string           `json:"validation_status"`
	ValidationNotes  string           `json:"validation_notes,omitempty"`
	TransactionCount int              `json:"transaction_count"`
	DocumentKey      string           `json:"document_key,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// ToStatementResponse maps a domain statement to its API shape
func ToStatementResponse(s *banking.Statement) StatementResponse {
	return StatementResponse{
		ID:               s.ID,
		BankName:         s.BankName,
		AccountNumber:    s.AccountNumber,
		AccountType:      s.AccountType,
		AccountCurrency:  s.AccountCurrency,
		StartingBalance:  s.StartingBalance.Round(2),
		EndingBalance:    s.EndingBalance.Round(2),
		PeriodStart:      s.PeriodStart,
		PeriodEnd:        s.PeriodEnd,
		TenorMonths:      s.TenorMonths,
		InterestRate:     s.InterestRate,
		AvailableLimit:   s.AvailableLimit,
		IsFacility:       s.IsFacility(),
		ValidationStatus: string(s.ValidationStatus),
		ValidationNotes:  s.ValidationNotes,
		TransactionCount: len(s.Transactions),
		DocumentKey:      s.DocumentKey,
		CreatedAt:        s.CreatedAt,
		UpdatedAt:        s.UpdatedAt,
	}
}

// ValidationResponse is the API shape of a balance validation run
type ValidationResponse struct {
	StatementID       uuid.UUID       `json:"statement_id"`
	Status            string          `json:"status"`
	CalculatedBalance decimal.Decimal `json:"calculated_balance"`
	Discrepancy       decimal.Decimal `json:"discrepancy"`
	TotalCredits      decimal.Decimal `json:"total_credits"`
	TotalDebits       decimal.Decimal `json:"total_debits"`
	Notes             string          `json:"notes"`
}

// TransactionResponse is the API shape of a statement transaction
type TransactionResponse struct {
	ID              uuid.UUID        `json:"id"`
	StatementID     uuid.UUID        `json:"statement_id"`
	TransactionDate time.Time        `json:"transaction_date"`
	CreditAmount    *decimal.Decimal `json:"credit_amount,omitempty"`
	DebitAmount     *decimal.Decimal `json:"debit_amount,omitempty"`
	Description     string           `json:"description"`
	EntityName      string           `json:"entity_name"`
	Currency        string           `json:"currency"`
	Category        *string          `json:"category,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// ToTransactionResponse maps a domain transaction to its API shape
func ToTransactionResponse(t *banking.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:              t.ID,
		StatementID:     t.StatementID,
		TransactionDate: t.TransactionDate,
		CreditAmount:    t.CreditAmount,
		DebitAmount:     t.DebitAmount,
		Description:     t.Description,
		EntityName:      t.EntityName,
		Currency:        t.Currency,
		Category:        t.Category,
		CreatedAt:       t.CreatedAt,
	}
}

// DocumentURLResponse carries a presigned download link for a statement PDF
type DocumentURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
