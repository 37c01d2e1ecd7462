package cashflow

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/qayed/backend/internal/domain/projection"
	"github.com/qayed/backend/internal/domain/recurring"
	"github.com/qayed/backend/internal/domain/shared"
)

// PaymentChangedHandler regenerates projections derived from a recurring
// payment whenever the payment mutates. Stale rows are removed first so a
// shrunk schedule does not leave orphan projections behind.
type PaymentChangedHandler struct {
	service       *ProjectionService
	recurringRepo recurring.Repository
	logger        *zap.Logger
}

// NewPaymentChangedHandler creates the cascade handler
func NewPaymentChangedHandler(service *ProjectionService, recurringRepo recurring.Repository,
	logger *zap.Logger) *PaymentChangedHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentChangedHandler{
		service:       service,
		recurringRepo: recurringRepo,
		logger:        logger,
	}
}

// EventTypes lists the recurring payment events the handler reacts to
func (h *PaymentChangedHandler) EventTypes() []string {
	return []string{
		recurring.EventPaymentCreated,
		recurring.EventPaymentUpdated,
		recurring.EventPaymentActivated,
		recurring.EventPaymentDeactivated,
	}
}

// Handle regenerates the payment's projections over the default window
func (h *PaymentChangedHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*recurring.PaymentChangedEvent)
	if !ok {
		return nil
	}

	companyID := e.CompanyID()
	if _, err := h.service.projectionRepo.DeleteBySourceID(ctx, companyID,
		projection.SourceRecurringPayment, e.PaymentID); err != nil {
		return err
	}

	if event.EventType() == recurring.EventPaymentDeactivated {
		h.logger.Info("Removed projections for deactivated payment",
			zap.String("payment_id", e.PaymentID.String()))
		return nil
	}

	payment, err := h.recurringRepo.FindByIDForCompany(ctx, companyID, e.PaymentID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil
		}
		return err
	}
	if !payment.IsActive {
		return nil
	}

	base, err := h.service.currencyRepo.FindBase(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			h.logger.Warn("No base currency configured, skipping payment cascade",
				zap.String("payment_id", e.PaymentID.String()))
			return nil
		}
		return err
	}

	from, until, err := h.service.resolveWindow(time.Time{}, time.Time{})
	if err != nil {
		return err
	}

	generated, skipped, err := h.service.projectPaymentOccurrences(ctx, payment, base.Code, from, until)
	if err != nil {
		return err
	}
	h.logger.Info("Regenerated projections for payment",
		zap.String("payment_id", e.PaymentID.String()),
		zap.Int("generated", generated),
		zap.Int("skipped", skipped))
	return nil
}
