package cashflow

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/qayed/backend/internal/domain/projection"
)

// RefreshRequest is the payload for a manual projection refresh
type RefreshRequest struct {
	WindowStart      time.Time `json:"window_start"`
	WindowEnd        time.Time `json:"window_end"`
	ForceRecalculate bool      `json:"force_recalculate"`
}

// SourceCounts reports how many rows one source kind produced or skipped
type SourceCounts struct {
	Generated int `json:"generated"`
	Skipped   int `json:"skipped"`
}

// RefreshResult summarizes one refresh run per source kind. Skipped rows are
// sources whose amount could not be expressed in the reporting currency.
type RefreshResult struct {
	WindowStart       time.Time    `json:"window_start"`
	WindowEnd         time.Time    `json:"window_end"`
	Invoices          SourceCounts `json:"invoices"`
	RecurringPayments SourceCounts `json:"recurring_payments"`
	BankObligations   SourceCounts `json:"bank_obligations"`
}

// Total returns the number of projection rows the run generated
func (r *RefreshResult) Total() int {
	return r.Invoices.Generated + r.RecurringPayments.Generated + r.BankObligations.Generated
}

// ProjectionResponse is the API shape of a cashflow projection
type ProjectionResponse struct {
	ID              uuid.UUID       `json:"id"`
	Type            string          `json:"type"`
	ProjectionDate  time.Time       `json:"projection_date"`
	ProjectedAmount decimal.Decimal `json:"projected_amount"`
	Currency        string          `json:"currency"`
	Confidence      decimal.Decimal `json:"confidence"`
	Status          string          `json:"status"`
	SourceKind      string          `json:"source_kind"`
	SourceID        uuid.UUID       `json:"source_id"`
	Description     string          `json:"description"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ToProjectionResponse maps a domain projection to its API shape.
// Amounts are rounded to two places at this boundary only.
func ToProjectionResponse(p *projection.Projection) ProjectionResponse {
	return ProjectionResponse{
		ID:              p.ID,
		Type:            string(p.Type),
		ProjectionDate:  p.ProjectionDate,
		ProjectedAmount: p.ProjectedAmount.Round(2),
		Currency:        p.Currency,
		Confidence:      p.Confidence,
		Status:          string(p.Status),
		SourceKind:      string(p.Source.Kind),
		SourceID:        p.Source.ID,
		Description:     p.Description,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// TypeSummaryResponse aggregates projected amounts for one type
type TypeSummaryResponse struct {
	Type   string          `json:"type"`
	Count  int64           `json:"count"`
	Amount decimal.Decimal `json:"amount"`
}

// SummaryResponse is the per-type aggregate over a window
type SummaryResponse struct {
	WindowStart time.Time             `json:"window_start"`
	WindowEnd   time.Time             `json:"window_end"`
	NetAmount   decimal.Decimal       `json:"net_amount"`
	ByType      []TypeSummaryResponse `json:"by_type"`
}

// PositionResponse is the API shape of one day in the cash position forecast
type PositionResponse struct {
	Date           time.Time       `json:"date"`
	OpeningBalance decimal.Decimal `json:"opening_balance"`
	Inflows        decimal.Decimal `json:"inflows"`
	Outflows       decimal.Decimal `json:"outflows"`
	ClosingBalance decimal.Decimal `json:"closing_balance"`
}

// ToPositionResponse maps a daily position, rounding to two places
func ToPositionResponse(p projection.DailyPosition) PositionResponse {
	return PositionResponse{
		Date:           p.Date,
		OpeningBalance: p.OpeningBalance.Round(2),
		Inflows:        p.Inflows.Round(2),
		Outflows:       p.Outflows.Round(2),
		ClosingBalance: p.ClosingBalance.Round(2),
	}
}
