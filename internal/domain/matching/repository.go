package matching

import (
	"context"

	"github.com/google/uuid"
	"github.com/qayed/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Stats summarizes the review queue for a company
type Stats struct {
	Total           int64           `json:"total"`
	Pending         int64           `json:"pending"`
	Approved        int64           `json:"approved"`
	Rejected        int64           `json:"rejected"`
	Disputed        int64           `json:"disputed"`
	AvgPendingScore decimal.Decimal `json:"avg_pending_score"`
}

// Repository provides access to transaction matches
type Repository interface {
	shared.CompanyRepository[Match]
	// ResetRejected reverts every rejected match of the company to pending
	// and returns the number of affected rows.
	ResetRejected(ctx context.Context, companyID uuid.UUID) (int64, error)
	// StatsForCompany computes review-queue statistics on demand
	StatsForCompany(ctx context.Context, companyID uuid.UUID) (*Stats, error)
	SaveWithLock(ctx context.Context, match *Match) error
}
