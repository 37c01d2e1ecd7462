package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/qayed/backend/internal/domain/matching"
	"github.com/shopspring/decimal"
)

// MatchModel is the persistence model for transaction matches
type MatchModel struct {
	CompanyAggregateModel
	TransactionID uuid.UUID       `gorm:"type:uuid;not null;index"`
	InvoiceID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	MatchScore    decimal.Decimal `gorm:"type:decimal(5,4);not null"`
	MatchReason   string          `gorm:"type:text"`
	Status        string          `gorm:"type:varchar(10);not null;default:'PENDING';index"`
	VerifiedAt    *time.Time
	VerifiedBy    *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for MatchModel
func (MatchModel) TableName() string {
	return "transaction_matches"
}

// ToDomain converts MatchModel to domain Match
func (m *MatchModel) ToDomain() *matching.Match {
	match := &matching.Match{
		TransactionID: m.TransactionID,
		InvoiceID:     m.InvoiceID,
		MatchScore:    m.MatchScore,
		MatchReason:   m.MatchReason,
		Status:        matching.MatchStatus(m.Status),
		VerifiedAt:    m.VerifiedAt,
		VerifiedBy:    m.VerifiedBy,
	}
	m.PopulateCompanyAggregateRoot(&match.CompanyAggregateRoot)
	return match
}

// MatchModelFromDomain creates a MatchModel from domain Match
func MatchModelFromDomain(match *matching.Match) *MatchModel {
	m := &MatchModel{
		TransactionID: match.TransactionID,
		InvoiceID:     match.InvoiceID,
		MatchScore:    match.MatchScore,
		MatchReason:   match.MatchReason,
		Status:        string(match.Status),
		VerifiedAt:    match.VerifiedAt,
		VerifiedBy:    match.VerifiedBy,
	}
	m.FromDomainCompanyAggregateRoot(match.CompanyAggregateRoot)
	return m
}
