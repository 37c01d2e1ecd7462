package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/qayed/backend/internal/domain/banking"
	"github.com/shopspring/decimal"
)

// StatementModel is the persistence model for bank statements
type StatementModel struct {
	CompanyAggregateModel
	BankName         string             `gorm:"type:varchar(200);not null"`
	AccountNumber    string             `gorm:"type:varchar(64);not null;index"`
	AccountType      *string            `gorm:"type:varchar(100)"`
	AccountCurrency  string             `gorm:"type:varchar(3);not null"`
	StartingBalance  decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	EndingBalance    decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	PeriodStart      time.Time          `gorm:"not null"`
	PeriodEnd        time.Time          `gorm:"not null;index"`
	TenorMonths      *int
	InterestRate     *decimal.Decimal   `gorm:"type:decimal(9,6)"`
	AvailableLimit   *decimal.Decimal   `gorm:"type:decimal(18,4)"`
	ValidationStatus string             `gorm:"type:varchar(10);not null;default:'PENDING'"`
	ValidationNotes  string             `gorm:"type:text"`
	DocumentKey      string             `gorm:"type:varchar(500)"`
	Transactions     []TransactionModel `gorm:"foreignKey:StatementID;constraint:OnDelete:CASCADE"`
}

// TableName returns the table name for StatementModel
func (StatementModel) TableName() string {
	return "bank_statements"
}

// ToDomain converts StatementModel to domain Statement
func (m *StatementModel) ToDomain() *banking.Statement {
	s := &banking.Statement{
		BankName:         m.BankName,
		AccountNumber:    m.AccountNumber,
		AccountType:      m.AccountType,
		AccountCurrency:  m.AccountCurrency,
		StartingBalance:  m.StartingBalance,
		EndingBalance:    m.EndingBalance,
		PeriodStart:      m.PeriodStart,
		PeriodEnd:        m.PeriodEnd,
		TenorMonths:      m.TenorMonths,
		InterestRate:     m.InterestRate,
		AvailableLimit:   m.AvailableLimit,
		ValidationStatus: banking.ValidationStatus(m.ValidationStatus),
		ValidationNotes:  m.ValidationNotes,
		DocumentKey:      m.DocumentKey,
	}
	m.PopulateCompanyAggregateRoot(&s.CompanyAggregateRoot)
	if len(m.Transactions) > 0 {
		s.Transactions = make([]banking.Transaction, len(m.Transactions))
		for i := range m.Transactions {
			s.Transactions[i] = *m.Transactions[i].ToDomain()
		}
	}
	return s
}

// StatementModelFromDomain creates a StatementModel from domain Statement
func StatementModelFromDomain(s *banking.Statement) *StatementModel {
	m := &StatementModel{
		BankName:         s.BankName,
		AccountNumber:    s.AccountNumber,
		AccountType:      s.AccountType,
		AccountCurrency:  s.AccountCurrency,
		StartingBalance:  s.StartingBalance,
		EndingBalance:    s.EndingBalance,
		PeriodStart:      s.PeriodStart,
		PeriodEnd:        s.PeriodEnd,
		TenorMonths:      s.TenorMonths,
		InterestRate:     s.InterestRate,
		AvailableLimit:   s.AvailableLimit,
		ValidationStatus: string(s.ValidationStatus),
		ValidationNotes:  s.ValidationNotes,
		DocumentKey:      s.DocumentKey,
	}
	m.FromDomainCompanyAggregateRoot(s.CompanyAggregateRoot)
	if len(s.Transactions) > 0 {
		m.Transactions = make([]TransactionModel, len(s.Transactions))
		for i := range s.Transactions {
			txn := TransactionModelFromDomain(&s.Transactions[i])
			// transactions carry the company column for direct scoped queries
			txn.CompanyID = s.CompanyID
			m.Transactions[i] = *txn
		}
	}
	return m
}

// TransactionModel is the persistence model for statement transactions
type TransactionModel struct {
	BaseModel
	StatementID              uuid.UUID        `gorm:"type:uuid;not null;index"`
	CompanyID                uuid.UUID        `gorm:"type:uuid;not null;index"`
	TransactionDate          time.Time        `gorm:"not null;index"`
	CreditAmount             *decimal.Decimal `gorm:"type:decimal(18,4)"`
	DebitAmount              *decimal.Decimal `gorm:"type:decimal(18,4)"`
	Description              string           `gorm:"type:text"`
	EntityName               string           `gorm:"type:varchar(300);index"`
	Currency                 string           `gorm:"type:varchar(3);not null"`
	Category                 *string          `gorm:"type:varchar(100)"`
	ClassificationConfidence *decimal.Decimal `gorm:"type:decimal(5,4)"`
}

// TableName returns the table name for TransactionModel
func (TransactionModel) TableName() string {
	return "transactions"
}

// ToDomain converts TransactionModel to domain Transaction
func (m *TransactionModel) ToDomain() *banking.Transaction {
	return &banking.Transaction{
		BaseEntity:               m.BaseModel.ToDomain(),
		StatementID:              m.StatementID,
		TransactionDate:          m.TransactionDate,
		CreditAmount:             m.CreditAmount,
		DebitAmount:              m.DebitAmount,
		Description:              m.Description,
		EntityName:               m.EntityName,
		Currency:                 m.Currency,
		Category:                 m.Category,
		ClassificationConfidence: m.ClassificationConfidence,
	}
}

// TransactionModelFromDomain creates a TransactionModel from domain Transaction
func TransactionModelFromDomain(t *banking.Transaction) *TransactionModel {
	m := &TransactionModel{
		StatementID:              t.StatementID,
		TransactionDate:          t.TransactionDate,
		CreditAmount:             t.CreditAmount,
		DebitAmount:              t.DebitAmount,
		Description:              t.Description,
		EntityName:               t.EntityName,
		Currency:                 t.Currency,
		Category:                 t.Category,
		ClassificationConfidence: t.ClassificationConfidence,
	}
	m.FromDomainBaseEntity(t.BaseEntity)
	return m
}
