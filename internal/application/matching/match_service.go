// Package matching exposes the transaction-invoice match review workflow
// as an application service.
package matching

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/qayed/backend/internal/domain/matching"
	"github.com/qayed/backend/internal/domain/shared"
)

// MatchResponse is the API shape of a transaction match
type MatchResponse struct {
	ID            uuid.UUID       `json:"id"`
	TransactionID uuid.UUID       `json:"transaction_id"`
	InvoiceID     uuid.UUID       `json:"invoice_id"`
	MatchScore    decimal.Decimal `json:"match_score"`
	MatchReason   string          `json:"match_reason"`
	Status        string          `json:"status"`
	VerifiedAt    *time.Time      `json:"verified_at,omitempty"`
	VerifiedBy    *uuid.UUID      `json:"verified_by,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ToMatchResponse maps a domain match to its API shape
func ToMatchResponse(m *matching.Match) MatchResponse {
	return MatchResponse{
		ID:            m.ID,
		TransactionID: m.TransactionID,
		InvoiceID:     m.InvoiceID,
		MatchScore:    m.MatchScore,
		MatchReason:   m.MatchReason,
		Status:        string(m.Status),
		VerifiedAt:    m.VerifiedAt,
		VerifiedBy:    m.VerifiedBy,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

// ResetResponse reports the administrative bulk reset outcome
type ResetResponse struct {
	ResetCount int64 `json:"reset_count"`
}

// StatsResponse summarizes the review queue
type StatsResponse struct {
	Total           int64           `json:"total"`
	Pending         int64           `json:"pending"`
	Approved        int64           `json:"approved"`
	Rejected        int64           `json:"rejected"`
	Disputed        int64           `json:"disputed"`
	AvgPendingScore decimal.Decimal `json:"avg_pending_score"`
}

// MatchService handles the match review workflow
type MatchService struct {
	matchRepo matching.Repository
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// MatchServiceOption configures a MatchService
type MatchServiceOption func(*MatchService)

// WithMatchLogger sets the logger for the match service
func WithMatchLogger(logger *zap.Logger) MatchServiceOption {
	return func(s *MatchService) {
		s.logger = logger
	}
}

// WithEventPublisher wires domain event publication after state changes
func WithEventPublisher(publisher shared.EventPublisher) MatchServiceOption {
	return func(s *MatchService) {
		s.publisher = publisher
	}
}

// NewMatchService creates a new MatchService
func NewMatchService(matchRepo matching.Repository, opts ...MatchServiceOption) *MatchService {
	s := &MatchService{
		matchRepo: matchRepo,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetByID retrieves a match for the company
func (s *MatchService) GetByID(ctx context.Context, companyID, id uuid.UUID) (*MatchResponse, error) {
	m, err := s.matchRepo.FindByIDForCompany(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	response := ToMatchResponse(m)
	return &response, nil
}

// List retrieves the company's matches with pagination. Status filtering
// passes through the generic filter map.
func (s *MatchService) List(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]MatchResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	matches, err := s.matchRepo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.matchRepo.CountForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]MatchResponse, 0, len(matches))
	for i := range matches {
		responses = append(responses, ToMatchResponse(&matches[i]))
	}
	return responses, total, nil
}

// Approve confirms a pending match
func (s *MatchService) Approve(ctx context.Context, companyID, id, reviewerID uuid.UUID) (*MatchResponse, error) {
	return s.transition(ctx, companyID, id, func(m *matching.Match) error {
		return m.Approve(reviewerID)
	})
}

// Reject dismisses a pending match
func (s *MatchService) Reject(ctx context.Context, companyID, id, reviewerID uuid.UUID) (*MatchResponse, error) {
	return s.transition(ctx, companyID, id, func(m *matching.Match) error {
		return m.Reject(reviewerID)
	})
}

// Dispute flags a pending match for investigation
func (s *MatchService) Dispute(ctx context.Context, companyID, id, reviewerID uuid.UUID) (*MatchResponse, error) {
	return s.transition(ctx, companyID, id, func(m *matching.Match) error {
		return m.Dispute(reviewerID)
	})
}

func (s *MatchService) transition(ctx context.Context, companyID, id uuid.UUID,
	apply func(*matching.Match) error) (*MatchResponse, error) {
	m, err := s.matchRepo.FindByIDForCompany(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := apply(m); err != nil {
		return nil, err
	}
	if err := s.matchRepo.SaveWithLock(ctx, m); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, m)

	response := ToMatchResponse(m)
	return &response, nil
}

// ResetRejected bulk-reverts the company's rejected matches to pending
func (s *MatchService) ResetRejected(ctx context.Context, companyID uuid.UUID) (*ResetResponse, error) {
	count, err := s.matchRepo.ResetRejected(ctx, companyID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Reset rejected matches",
		zap.String("company_id", companyID.String()),
		zap.Int64("reset_count", count))
	return &ResetResponse{ResetCount: count}, nil
}

// Stats computes review-queue statistics on demand
func (s *MatchService) Stats(ctx context.Context, companyID uuid.UUID) (*StatsResponse, error) {
	stats, err := s.matchRepo.StatsForCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	return &StatsResponse{
		Total:           stats.Total,
		Pending:         stats.Pending,
		Approved:        stats.Approved,
		Rejected:        stats.Rejected,
		Disputed:        stats.Disputed,
		AvgPendingScore: stats.AvgPendingScore,
	}, nil
}

// publishEvents flushes the aggregate's pending events onto the bus.
// Publication failures are logged; the state change has already committed.
func (s *MatchService) publishEvents(ctx context.Context, m *matching.Match) {
	if s.publisher == nil {
		return
	}
	events := m.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish match events",
			zap.String("match_id", m.ID.String()),
			zap.Error(err))
	}
	m.ClearDomainEvents()
}
