// Package matching models suggested links between bank transactions and
// invoices, and the review workflow that confirms or rejects them.
package matching

import (
	"time"

	"github.com/google/uuid"
	"github.com/qayed/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MatchStatus is the review state of a suggested match
type MatchStatus string

const (
	MatchStatusPending  MatchStatus = "PENDING"
	MatchStatusApproved MatchStatus = "APPROVED"
	MatchStatusRejected MatchStatus = "REJECTED"
	MatchStatusDisputed MatchStatus = "DISPUTED"
)

// IsValid checks if the match status is valid
func (s MatchStatus) IsValid() bool {
	switch s {
	case MatchStatusPending, MatchStatusApproved, MatchStatusRejected, MatchStatusDisputed:
		return true
	}
	return false
}

// Event types emitted by the match aggregate
const (
	EventMatchApproved = "matching.match.approved"
	EventMatchRejected = "matching.match.rejected"
	EventMatchDisputed = "matching.match.disputed"
)

// Match is a scored suggestion that a bank transaction settles an invoice.
// Suggestions arrive from the scoring pipeline in PENDING state; a reviewer
// moves each to a terminal state. The only way back to PENDING is the
// administrative bulk reset of rejected matches.
type Match struct {
	shared.CompanyAggregateRoot
	TransactionID uuid.UUID
	InvoiceID     uuid.UUID
	MatchScore    decimal.Decimal
	MatchReason   string
	Status        MatchStatus
	VerifiedAt    *time.Time
	VerifiedBy    *uuid.UUID
}

// NewMatch creates a pending match suggestion
func NewMatch(companyID, transactionID, invoiceID uuid.UUID, score decimal.Decimal, reason string) (*Match, error) {
	if transactionID == uuid.Nil || invoiceID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "transaction and invoice references are required")
	}
	if score.IsNegative() || score.GreaterThan(decimal.NewFromInt(1)) {
		return nil, shared.NewDomainError("INVALID_INPUT", "match score must be between 0 and 1")
	}

	return &Match{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		TransactionID:        transactionID,
		InvoiceID:            invoiceID,
		MatchScore:           score,
		MatchReason:          reason,
		Status:               MatchStatusPending,
	}, nil
}

// Approve confirms the match. Only pending matches can be approved.
func (m *Match) Approve(reviewerID uuid.UUID) error {
	if m.Status != MatchStatusPending {
		return shared.NewDomainError("INVALID_STATE", "only pending matches can be approved")
	}
	m.transition(MatchStatusApproved, reviewerID)
	m.AddDomainEvent(m.event(EventMatchApproved))
	return nil
}

// Reject dismisses the match. Only pending matches can be rejected.
func (m *Match) Reject(reviewerID uuid.UUID) error {
	if m.Status != MatchStatusPending {
		return shared.NewDomainError("INVALID_STATE", "only pending matches can be rejected")
	}
	m.transition(MatchStatusRejected, reviewerID)
	m.AddDomainEvent(m.event(EventMatchRejected))
	return nil
}

// Dispute flags the match for further investigation
func (m *Match) Dispute(reviewerID uuid.UUID) error {
	if m.Status != MatchStatusPending {
		return shared.NewDomainError("INVALID_STATE", "only pending matches can be disputed")
	}
	m.transition(MatchStatusDisputed, reviewerID)
	m.AddDomainEvent(m.event(EventMatchDisputed))
	return nil
}

// ResetToPending reverts a rejected match for re-review. Used only by the
// administrative bulk reset; approved and disputed matches stay terminal.
func (m *Match) ResetToPending() error {
	if m.Status != MatchStatusRejected {
		return shared.NewDomainError("INVALID_STATE", "only rejected matches can be reset to pending")
	}
	m.Status = MatchStatusPending
	m.VerifiedAt = nil
	m.VerifiedBy = nil
	return nil
}

func (m *Match) transition(status MatchStatus, reviewerID uuid.UUID) {
	now := time.Now()
	m.Status = status
	m.VerifiedAt = &now
	if reviewerID != uuid.Nil {
		m.VerifiedBy = &reviewerID
	}
}

func (m *Match) event(eventType string) shared.DomainEvent {
	e := shared.NewBaseDomainEvent(eventType, "TransactionMatch", m.ID, m.CompanyID)
	return &e
}
