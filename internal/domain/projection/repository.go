package projection

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/qayed/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// TypeSummary aggregates projected amounts per projection type
type TypeSummary struct {
	Type   Type            `json:"type"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// Repository provides access to cashflow projections
type Repository interface {
	shared.CompanyRepository[Projection]
	// FindInWindow returns non-cancelled projections dated within [from, until]
	FindInWindow(ctx context.Context, companyID uuid.UUID, from, until time.Time) ([]Projection, error)
	// FindBySource returns the projection for a source on a given date, or
	// shared.ErrNotFound. The (type, source, date) triple is unique per company.
	FindBySource(ctx context.Context, companyID uuid.UUID, projType Type, source Source, date time.Time) (*Projection, error)
	// DeleteProjectedInWindow removes PROJECTED entries in the window so a
	// forced refresh can regenerate them from scratch.
	DeleteProjectedInWindow(ctx context.Context, companyID uuid.UUID, from, until time.Time) (int64, error)
	// DeleteBySourceID removes all projections derived from a source record
	DeleteBySourceID(ctx context.Context, companyID uuid.UUID, kind SourceKind, sourceID uuid.UUID) (int64, error)
	// SummarizeByType aggregates amounts per type within the window
	SummarizeByType(ctx context.Context, companyID uuid.UUID, from, until time.Time) ([]TypeSummary, error)
}
