package cashflow

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qayed/backend/internal/domain/recurring"
	"github.com/qayed/backend/internal/domain/shared"
)

// recurringStore is a persisting fake; the refresh tests use the simpler
// read-only fakeRecurringRepo instead.
type recurringStore struct {
	byID map[uuid.UUID]*recurring.Payment
}

func newRecurringStore() *recurringStore {
	return &recurringStore{byID: make(map[uuid.UUID]*recurring.Payment)}
}

func (r *recurringStore) FindByID(_ context.Context, id uuid.UUID) (*recurring.Payment, error) {
	if p, ok := r.byID[id]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}
func (r *recurringStore) FindAll(_ context.Context, _ shared.Filter) ([]recurring.Payment, error) {
	var out []recurring.Payment
	for _, p := range r.byID {
		out = append(out, *p)
	}
	return out, nil
}
func (r *recurringStore) Save(_ context.Context, p *recurring.Payment) error {
	r.byID[p.ID] = p
	return nil
}
func (r *recurringStore) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}
func (r *recurringStore) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.byID)), nil
}
func (r *recurringStore) CountForCompany(_ context.Context, companyID uuid.UUID, _ shared.Filter) (int64, error) {
	var n int64
	for _, p := range r.byID {
		if p.CompanyID == companyID {
			n++
		}
	}
	return n, nil
}
func (r *recurringStore) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*recurring.Payment, error) {
	p, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.CompanyID != companyID {
		return nil, shared.ErrNotFound
	}
	return p, nil
}
func (r *recurringStore) FindAllForCompany(_ context.Context, companyID uuid.UUID, _ shared.Filter) ([]recurring.Payment, error) {
	var out []recurring.Payment
	for _, p := range r.byID {
		if p.CompanyID == companyID {
			out = append(out, *p)
		}
	}
	return out, nil
}
func (r *recurringStore) FindActiveForCompany(_ context.Context, companyID uuid.UUID) ([]recurring.Payment, error) {
	var out []recurring.Payment
	for _, p := range r.byID {
		if p.CompanyID == companyID && p.IsActive {
			out = append(out, *p)
		}
	}
	return out, nil
}
func (r *recurringStore) SaveWithLock(ctx context.Context, p *recurring.Payment) error {
	return r.Save(ctx, p)
}

type capturingPublisher struct {
	events []shared.DomainEvent
}

func (p *capturingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *capturingPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRecurringService_Create_ComputesNextDueDate(t *testing.T) {
	repo := newRecurringStore()
	pub := &capturingPublisher{}
	asOf := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	svc := NewRecurringService(repo,
		WithRecurringPublisher(pub),
		WithRecurringClock(fixedClock(asOf)))
	companyID := uuid.New()

	day := 5
	resp, err := svc.Create(context.Background(), companyID, CreatePaymentRequest{
		Name:       "Office rent",
		Amount:     decimal.NewFromInt(8000),
		Currency:   "SAR",
		Direction:  "OUTFLOW",
		Frequency:  "MONTHLY",
		StartDate:  time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		DayOfMonth: &day,
	})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 7, 5, 0, 0, 0, 0, time.UTC), resp.NextDueDate)
	assert.True(t, resp.IsActive)
	assert.Contains(t, pub.types(), recurring.EventPaymentCreated)
}

func TestRecurringService_Create_InvalidFrequency(t *testing.T) {
	svc := NewRecurringService(newRecurringStore())

	_, err := svc.Create(context.Background(), uuid.New(), CreatePaymentRequest{
		Name:      "Bad",
		Amount:    decimal.NewFromInt(1),
		Currency:  "SAR",
		Direction: "OUTFLOW",
		Frequency: "FORTNIGHTLY",
		StartDate: time.Now(),
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)
}

func TestRecurringService_Update_PublishesChange(t *testing.T) {
	repo := newRecurringStore()
	pub := &capturingPublisher{}
	asOf := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	svc := NewRecurringService(repo,
		WithRecurringPublisher(pub),
		WithRecurringClock(fixedClock(asOf)))
	companyID := uuid.New()

	created, err := svc.Create(context.Background(), companyID, CreatePaymentRequest{
		Name:      "Payroll",
		Amount:    decimal.NewFromInt(50000),
		Currency:  "SAR",
		Direction: "OUTFLOW",
		Frequency: "MONTHLY",
		StartDate: time.Date(2026, 1, 25, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	pub.events = nil

	updated, err := svc.Update(context.Background(), companyID, created.ID, UpdatePaymentRequest{
		Name:      "Payroll",
		Amount:    decimal.NewFromInt(55000),
		Currency:  "SAR",
		Direction: "OUTFLOW",
		Frequency: "MONTHLY",
		StartDate: time.Date(2026, 1, 25, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.True(t, updated.Amount.Equal(decimal.NewFromInt(55000)))
	assert.Contains(t, pub.types(), recurring.EventPaymentUpdated)
}

func TestRecurringService_DeactivateAndActivate(t *testing.T) {
	repo := newRecurringStore()
	pub := &capturingPublisher{}
	asOf := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)
	svc := NewRecurringService(repo,
		WithRecurringPublisher(pub),
		WithRecurringClock(fixedClock(asOf)))
	companyID := uuid.New()

	created, err := svc.Create(context.Background(), companyID, CreatePaymentRequest{
		Name:      "Hosting",
		Amount:    decimal.NewFromInt(120),
		Currency:  "SAR",
		Direction: "OUTFLOW",
		Frequency: "MONTHLY",
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	pub.events = nil

	deactivated, err := svc.Deactivate(context.Background(), companyID, created.ID)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)
	assert.Contains(t, pub.types(), recurring.EventPaymentDeactivated)

	pub.events = nil
	activated, err := svc.Activate(context.Background(), companyID, created.ID)
	require.NoError(t, err)
	assert.True(t, activated.IsActive)
	assert.Contains(t, pub.types(), recurring.EventPaymentActivated)
}

func TestRecurringService_Delete_EmitsDeactivation(t *testing.T) {
	repo := newRecurringStore()
	pub := &capturingPublisher{}
	svc := NewRecurringService(repo, WithRecurringPublisher(pub))
	companyID := uuid.New()

	created, err := svc.Create(context.Background(), companyID, CreatePaymentRequest{
		Name:      "Insurance",
		Amount:    decimal.NewFromInt(900),
		Currency:  "SAR",
		Direction: "OUTFLOW",
		Frequency: "ANNUALLY",
		StartDate: time.Now(),
	})
	require.NoError(t, err)
	pub.events = nil

	require.NoError(t, svc.Delete(context.Background(), companyID, created.ID))

	_, err = svc.GetByID(context.Background(), companyID, created.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.Contains(t, pub.types(), recurring.EventPaymentDeactivated)
}
