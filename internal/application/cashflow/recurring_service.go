package cashflow

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/qayed/backend/internal/domain/recurring"
	"github.com/qayed/backend/internal/domain/shared"
)

// CreatePaymentRequest is the payload for creating a recurring payment
type CreatePaymentRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Currency    string          `json:"currency" binding:"required,len=3"`
	Direction   string          `json:"direction" binding:"required,oneof=INFLOW OUTFLOW"`
	Frequency   string          `json:"frequency" binding:"required"`
	StartDate   time.Time       `json:"start_date" binding:"required"`
	EndDate     *time.Time      `json:"end_date"`
	DayOfMonth  *int            `json:"day_of_month"`
	DayOfWeek   *int            `json:"day_of_week"`
}

// UpdatePaymentRequest is the payload for updating a recurring payment
type UpdatePaymentRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Currency    string          `json:"currency"`
	Direction   string          `json:"direction" binding:"required,oneof=INFLOW OUTFLOW"`
	Frequency   string          `json:"frequency" binding:"required"`
	StartDate   time.Time       `json:"start_date" binding:"required"`
	EndDate     *time.Time      `json:"end_date"`
	DayOfMonth  *int            `json:"day_of_month"`
	DayOfWeek   *int            `json:"day_of_week"`
}

// PaymentResponse is the API shape of a recurring payment
type PaymentResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Direction   string          `json:"direction"`
	Frequency   string          `json:"frequency"`
	StartDate   time.Time       `json:"start_date"`
	EndDate     *time.Time      `json:"end_date,omitempty"`
	DayOfMonth  *int            `json:"day_of_month,omitempty"`
	DayOfWeek   *int            `json:"day_of_week,omitempty"`
	NextDueDate time.Time       `json:"next_due_date"`
	IsActive    bool            `json:"is_active"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToPaymentResponse maps a domain payment to its API shape
func ToPaymentResponse(p *recurring.Payment) PaymentResponse {
	return PaymentResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Amount:      p.Amount.Round(2),
		Currency:    p.Currency,
		Direction:   string(p.Direction),
		Frequency:   string(p.Frequency),
		StartDate:   p.StartDate,
		EndDate:     p.EndDate,
		DayOfMonth:  p.DayOfMonth,
		DayOfWeek:   p.DayOfWeek,
		NextDueDate: p.NextDueDate,
		IsActive:    p.IsActive,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// RecurringService manages recurring payments and their schedules
type RecurringService struct {
	recurringRepo recurring.Repository
	publisher     shared.EventPublisher
	now           func() time.Time
	logger        *zap.Logger
}

// RecurringServiceOption configures a RecurringService
type RecurringServiceOption func(*RecurringService)

// WithRecurringLogger sets the logger for the recurring payment service
func WithRecurringLogger(logger *zap.Logger) RecurringServiceOption {
	return func(s *RecurringService) {
		s.logger = logger
	}
}

// WithRecurringPublisher wires domain event publication after state changes
func WithRecurringPublisher(publisher shared.EventPublisher) RecurringServiceOption {
	return func(s *RecurringService) {
		s.publisher = publisher
	}
}

// WithRecurringClock overrides the schedule reference clock
func WithRecurringClock(now func() time.Time) RecurringServiceOption {
	return func(s *RecurringService) {
		s.now = now
	}
}

// NewRecurringService creates a new RecurringService
func NewRecurringService(recurringRepo recurring.Repository, opts ...RecurringServiceOption) *RecurringService {
	s := &RecurringService{
		recurringRepo: recurringRepo,
		now:           time.Now,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create creates a new recurring payment
func (s *RecurringService) Create(ctx context.Context, companyID uuid.UUID, req CreatePaymentRequest) (*PaymentResponse, error) {
	asOf := s.now()
	p, err := recurring.NewPayment(companyID, req.Name, req.Amount, req.Currency,
		recurring.Direction(req.Direction), recurring.Frequency(req.Frequency), req.StartDate, asOf)
	if err != nil {
		return nil, err
	}
	p.Description = req.Description
	if err := p.SetAnchors(req.DayOfMonth, req.DayOfWeek, asOf); err != nil {
		return nil, err
	}
	if err := p.SetEndDate(req.EndDate, asOf); err != nil {
		return nil, err
	}

	if err := s.recurringRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, p)

	s.logger.Info("Recurring payment created",
		zap.String("payment_id", p.ID.String()),
		zap.String("frequency", string(p.Frequency)),
		zap.Time("next_due_date", p.NextDueDate))

	response := ToPaymentResponse(p)
	return &response, nil
}

// GetByID retrieves a recurring payment for the company
func (s *RecurringService) GetByID(ctx context.Context, companyID, id uuid.UUID) (*PaymentResponse, error) {
	p, err := s.recurringRepo.FindByIDForCompany(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	response := ToPaymentResponse(p)
	return &response, nil
}

// List retrieves the company's recurring payments with pagination
func (s *RecurringService) List(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]PaymentResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	payments, err := s.recurringRepo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.recurringRepo.CountForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]PaymentResponse, 0, len(payments))
	for i := range payments {
		responses = append(responses, ToPaymentResponse(&payments[i]))
	}
	return responses, total, nil
}

// Update changes a recurring payment's terms and recomputes its schedule
func (s *RecurringService) Update(ctx context.Context, companyID, id uuid.UUID, req UpdatePaymentRequest) (*PaymentResponse, error) {
	p, err := s.recurringRepo.FindByIDForCompany(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	asOf := s.now()
	if err := p.Update(req.Name, req.Amount, req.Currency,
		recurring.Direction(req.Direction), recurring.Frequency(req.Frequency), req.StartDate, asOf); err != nil {
		return nil, err
	}
	p.Description = req.Description
	if err := p.SetAnchors(req.DayOfMonth, req.DayOfWeek, asOf); err != nil {
		return nil, err
	}
	if err := p.SetEndDate(req.EndDate, asOf); err != nil {
		return nil, err
	}

	if err := s.recurringRepo.SaveWithLock(ctx, p); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, p)

	response := ToPaymentResponse(p)
	return &response, nil
}

// Activate re-enables a recurring payment
func (s *RecurringService) Activate(ctx context.Context, companyID, id uuid.UUID) (*PaymentResponse, error) {
	p, err := s.recurringRepo.FindByIDForCompany(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	p.Activate(s.now())

	if err := s.recurringRepo.SaveWithLock(ctx, p); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, p)

	response := ToPaymentResponse(p)
	return &response, nil
}

// Deactivate stops a recurring payment from producing projections
func (s *RecurringService) Deactivate(ctx context.Context, companyID, id uuid.UUID) (*PaymentResponse, error) {
	p, err := s.recurringRepo.FindByIDForCompany(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	p.Deactivate()

	if err := s.recurringRepo.SaveWithLock(ctx, p); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, p)

	response := ToPaymentResponse(p)
	return &response, nil
}

// Delete removes a recurring payment. The deactivation event is published
// first so dependent projections are cleaned up.
func (s *RecurringService) Delete(ctx context.Context, companyID, id uuid.UUID) error {
	p, err := s.recurringRepo.FindByIDForCompany(ctx, companyID, id)
	if err != nil {
		return err
	}
	p.Deactivate()

	if err := s.recurringRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.publishEvents(ctx, p)
	return nil
}

func (s *RecurringService) publishEvents(ctx context.Context, p *recurring.Payment) {
	if s.publisher == nil {
		return
	}
	events := p.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish recurring payment events",
			zap.String("payment_id", p.ID.String()),
			zap.Error(err))
	}
	p.ClearDomainEvents()
}
