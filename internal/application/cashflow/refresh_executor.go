package cashflow

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/qayed/backend/internal/infrastructure/scheduler"
	"github.com/qayed/backend/internal/infrastructure/telemetry"
)

// RefreshExecutor adapts the projection service to the background scheduler.
// Scheduled runs never force a recalculation; they upsert over the window.
type RefreshExecutor struct {
	service *ProjectionService
}

var _ scheduler.JobExecutor = (*RefreshExecutor)(nil)

// NewRefreshExecutor creates a scheduler executor backed by the service
func NewRefreshExecutor(service *ProjectionService) *RefreshExecutor {
	return &RefreshExecutor{service: service}
}

// Execute runs one projection refresh job
func (e *RefreshExecutor) Execute(ctx context.Context, job *scheduler.Job) error {
	ctx, span := telemetry.StartSpan(ctx, "cashflow.refresh_projection",
		attribute.String("company_id", job.CompanyID.String()),
		attribute.String("job_id", job.ID.String()),
	)
	defer span.End()

	_, err := e.service.Refresh(ctx, job.CompanyID, RefreshRequest{
		WindowStart: job.WindowStart,
		WindowEnd:   job.WindowEnd,
	})
	if err != nil {
		telemetry.RecordError(span, err)
	}
	return err
}
