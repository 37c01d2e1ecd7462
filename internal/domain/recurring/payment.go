// Package recurring models scheduled inflows and outflows such as rent,
// payroll and subscription payments, and the due-date schedule they follow.
package recurring

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/qayed/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Direction classifies a recurring payment as cash in or cash out
type Direction string

const (
	DirectionInflow  Direction = "INFLOW"
	DirectionOutflow Direction = "OUTFLOW"
)

// IsValid checks if the direction is valid
func (d Direction) IsValid() bool {
	return d == DirectionInflow || d == DirectionOutflow
}

// Frequency is the recurrence interval of a payment
type Frequency string

const (
	FrequencyDaily        Frequency = "DAILY"
	FrequencyWeekly       Frequency = "WEEKLY"
	FrequencyBiweekly     Frequency = "BIWEEKLY"
	FrequencyMonthly      Frequency = "MONTHLY"
	FrequencyQuarterly    Frequency = "QUARTERLY"
	FrequencySemiannually Frequency = "SEMIANNUALLY"
	FrequencyAnnually     Frequency = "ANNUALLY"
)

// IsValid checks if the frequency is valid
func (f Frequency) IsValid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly,
		FrequencyQuarterly, FrequencySemiannually, FrequencyAnnually:
		return true
	}
	return false
}

// months returns the month step for month-based frequencies, 0 otherwise
func (f Frequency) months() int {
	switch f {
	case FrequencyMonthly:
		return 1
	case FrequencyQuarterly:
		return 3
	case FrequencySemiannually:
		return 6
	case FrequencyAnnually:
		return 12
	}
	return 0
}

// days returns the day step for day-based frequencies, 0 otherwise
func (f Frequency) days() int {
	switch f {
	case FrequencyDaily:
		return 1
	case FrequencyWeekly:
		return 7
	case FrequencyBiweekly:
		return 14
	}
	return 0
}

// Event types emitted by the recurring payment aggregate
const (
	EventPaymentCreated     = "recurring.payment.created"
	EventPaymentUpdated     = "recurring.payment.updated"
	EventPaymentActivated   = "recurring.payment.activated"
	EventPaymentDeactivated = "recurring.payment.deactivated"
)

// PaymentChangedEvent signals that a payment's schedule or amount changed
// and dependent projections must be regenerated.
type PaymentChangedEvent struct {
	shared.BaseDomainEvent
	PaymentID uuid.UUID `json:"payment_id"`
}

func newPaymentEvent(eventType string, p *Payment) *PaymentChangedEvent {
	return &PaymentChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "RecurringPayment", p.ID, p.CompanyID),
		PaymentID:       p.ID,
	}
}

// Payment is a recurring cash movement with a frequency-driven schedule.
// NextDueDate is denormalized for listing and recomputed on every mutation.
type Payment struct {
	shared.CompanyAggregateRoot
	Name        string
	Description string
	Amount      decimal.Decimal
	Currency    string
	Direction   Direction
	Frequency   Frequency
	StartDate   time.Time
	EndDate     *time.Time
	DayOfMonth  *int
	DayOfWeek   *int
	NextDueDate time.Time
	IsActive    bool
}

// NewPayment creates a new recurring payment
func NewPayment(companyID uuid.UUID, name string, amount decimal.Decimal, currencyCode string,
	direction Direction, frequency Frequency, startDate time.Time, asOf time.Time) (*Payment, error) {
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "payment name is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "payment amount must be positive")
	}
	if currencyCode == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "currency code is required")
	}
	if !direction.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "direction must be INFLOW or OUTFLOW")
	}
	if !frequency.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "invalid frequency")
	}

	p := &Payment{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		Name:                 strings.TrimSpace(name),
		Amount:               amount,
		Currency:             strings.ToUpper(currencyCode),
		Direction:            direction,
		Frequency:            frequency,
		StartDate:            startDate,
		IsActive:             true,
	}
	p.NextDueDate = p.Schedule().NextDueDate(asOf)
	p.AddDomainEvent(newPaymentEvent(EventPaymentCreated, p))
	return p, nil
}

// Schedule returns the due-date schedule for this payment
func (p *Payment) Schedule() Schedule {
	return Schedule{
		StartDate:  p.StartDate,
		EndDate:    p.EndDate,
		Frequency:  p.Frequency,
		DayOfMonth: p.DayOfMonth,
		DayOfWeek:  p.DayOfWeek,
	}
}

// SetAnchors sets the optional day-of-month and day-of-week anchors
func (p *Payment) SetAnchors(dayOfMonth, dayOfWeek *int, asOf time.Time) error {
	if dayOfMonth != nil && (*dayOfMonth < 1 || *dayOfMonth > 31) {
		return shared.NewDomainError("INVALID_INPUT", "day of month must be between 1 and 31")
	}
	if dayOfWeek != nil && (*dayOfWeek < 0 || *dayOfWeek > 6) {
		return shared.NewDomainError("INVALID_INPUT", "day of week must be between 0 (Sunday) and 6")
	}
	p.DayOfMonth = dayOfMonth
	p.DayOfWeek = dayOfWeek
	p.Refresh(asOf)
	return nil
}

// SetEndDate bounds the schedule. An end date before the start date is rejected.
func (p *Payment) SetEndDate(endDate *time.Time, asOf time.Time) error {
	if endDate != nil && endDate.Before(p.StartDate) {
		return shared.NewDomainError("INVALID_INPUT", "end date cannot be before start date")
	}
	p.EndDate = endDate
	p.Refresh(asOf)
	return nil
}

// Update changes the payment terms and recomputes the next due date
func (p *Payment) Update(name string, amount decimal.Decimal, currencyCode string,
	direction Direction, frequency Frequency, startDate time.Time, asOf time.Time) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_INPUT", "payment name is required")
	}
	if !amount.IsPositive() {
		return shared.NewDomainError("INVALID_INPUT", "payment amount must be positive")
	}
	if !direction.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "direction must be INFLOW or OUTFLOW")
	}
	if !frequency.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "invalid frequency")
	}

	p.Name = strings.TrimSpace(name)
	p.Amount = amount
	if currencyCode != "" {
		p.Currency = strings.ToUpper(currencyCode)
	}
	p.Direction = direction
	p.Frequency = frequency
	p.StartDate = startDate
	p.Refresh(asOf)
	p.AddDomainEvent(newPaymentEvent(EventPaymentUpdated, p))
	return nil
}

// Refresh recomputes the stored next due date relative to asOf
func (p *Payment) Refresh(asOf time.Time) {
	p.NextDueDate = p.Schedule().NextDueDate(asOf)
}

// Activate re-enables the payment for projection generation
func (p *Payment) Activate(asOf time.Time) {
	if p.IsActive {
		return
	}
	p.IsActive = true
	p.Refresh(asOf)
	p.AddDomainEvent(newPaymentEvent(EventPaymentActivated, p))
}

// Deactivate stops the payment from producing projections
func (p *Payment) Deactivate() {
	if !p.IsActive {
		return
	}
	p.IsActive = false
	p.AddDomainEvent(newPaymentEvent(EventPaymentDeactivated, p))
}
