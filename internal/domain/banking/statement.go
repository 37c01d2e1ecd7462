// Package banking models parsed bank statements, their transactions and the
// validation and classification rules applied to them.
package banking

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qayed/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ValidationStatus is the outcome of balance validation for a statement
type ValidationStatus string

const (
	ValidationPending ValidationStatus = "PENDING"
	ValidationPassed  ValidationStatus = "PASSED"
	ValidationFailed  ValidationStatus = "FAILED"
)

// Transaction is a single line item on a bank statement.
// Exactly one of CreditAmount and DebitAmount is set; a nil amount is
// treated as zero everywhere.
type Transaction struct {
	shared.BaseEntity
	StatementID              uuid.UUID
	TransactionDate          time.Time
	CreditAmount             *decimal.Decimal
	DebitAmount              *decimal.Decimal
	Description              string
	EntityName               string
	Currency                 string
	Category                 *string
	ClassificationConfidence *decimal.Decimal
}

// Credit returns the credit amount, zero when unset
func (t *Transaction) Credit() decimal.Decimal {
	if t.CreditAmount == nil {
		return decimal.Zero
	}
	return *t.CreditAmount
}

// Debit returns the debit amount, zero when unset
func (t *Transaction) Debit() decimal.Decimal {
	if t.DebitAmount == nil {
		return decimal.Zero
	}
	return *t.DebitAmount
}

// Statement is a parsed bank statement for one account and period
type Statement struct {
	shared.CompanyAggregateRoot
	BankName         string
	AccountNumber    string
	AccountType      *string
	AccountCurrency  string
	StartingBalance  decimal.Decimal
	EndingBalance    decimal.Decimal
	PeriodStart      time.Time
	PeriodEnd        time.Time
	TenorMonths      *int
	InterestRate     *decimal.Decimal
	AvailableLimit   *decimal.Decimal
	ValidationStatus ValidationStatus
	ValidationNotes  string
	DocumentKey      string
	Transactions     []Transaction
}

// NewStatement creates a new bank statement
func NewStatement(companyID uuid.UUID, bankName, accountNumber, accountCurrency string,
	startingBalance, endingBalance decimal.Decimal, periodStart, periodEnd time.Time) (*Statement, error) {
	if strings.TrimSpace(bankName) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "bank name is required")
	}
	if strings.TrimSpace(accountNumber) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "account number is required")
	}
	if accountCurrency == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "account currency is required")
	}
	if periodEnd.Before(periodStart) {
		return nil, shared.NewDomainError("INVALID_INPUT", "statement period end cannot be before period start")
	}

	return &Statement{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		BankName:             strings.TrimSpace(bankName),
		AccountNumber:        strings.TrimSpace(accountNumber),
		AccountCurrency:      strings.ToUpper(accountCurrency),
		StartingBalance:      startingBalance,
		EndingBalance:        endingBalance,
		PeriodStart:          periodStart,
		PeriodEnd:            periodEnd,
		ValidationStatus:     ValidationPending,
	}, nil
}

// AddTransaction appends a line item to the statement
func (s *Statement) AddTransaction(txnDate time.Time, credit, debit *decimal.Decimal, description, entityName string) (*Transaction, error) {
	if credit != nil && debit != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "a transaction cannot be both credit and debit")
	}

	txn := Transaction{
		BaseEntity:      shared.NewBaseEntity(),
		StatementID:     s.ID,
		TransactionDate: txnDate,
		CreditAmount:    credit,
		DebitAmount:     debit,
		Description:     description,
		EntityName:      entityName,
		Currency:        s.AccountCurrency,
	}
	s.Transactions = append(s.Transactions, txn)
	return &s.Transactions[len(s.Transactions)-1], nil
}

// SetFacilityTerms records the loan and facility attributes of the account
func (s *Statement) SetFacilityTerms(tenorMonths *int, interestRate, availableLimit *decimal.Decimal) error {
	if tenorMonths != nil && *tenorMonths <= 0 {
		return shared.NewDomainError("INVALID_INPUT", "tenor must be a positive number of months")
	}
	s.TenorMonths = tenorMonths
	s.InterestRate = interestRate
	s.AvailableLimit = availableLimit
	return nil
}

// Validate runs balance validation over the statement's transactions
// and records the outcome on the aggregate.
func (s *Statement) Validate() ValidationResult {
	result := ValidateBalance(s.StartingBalance, s.EndingBalance, s.Transactions)
	s.ValidationStatus = result.Status
	s.ValidationNotes = result.Notes
	return result
}

// IsFacility applies the account classification rule to this statement
func (s *Statement) IsFacility() bool {
	return IsFacilityAccount(s.AccountType, s.EndingBalance)
}

// OutstandingBalance is the amount owed on a facility account.
// Facility balances are stored as negative ledger balances; the amount
// owed is their magnitude.
func (s *Statement) OutstandingBalance() decimal.Decimal {
	return s.EndingBalance.Abs()
}
