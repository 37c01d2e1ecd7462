package cashflow

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appcurrency "github.com/qayed/backend/internal/application/currency"
	"github.com/qayed/backend/internal/domain/banking"
	"github.com/qayed/backend/internal/domain/billing"
	"github.com/qayed/backend/internal/domain/currency"
	"github.com/qayed/backend/internal/domain/projection"
	"github.com/qayed/backend/internal/domain/recurring"
	"github.com/qayed/backend/internal/domain/shared"
)

// --- fakes -----------------------------------------------------------------

type fakeProjectionRepo struct {
	bySource map[string]*projection.Projection
	saves    int
}

func newFakeProjectionRepo() *fakeProjectionRepo {
	return &fakeProjectionRepo{bySource: make(map[string]*projection.Projection)}
}

func sourceKey(companyID uuid.UUID, t projection.Type, s projection.Source, date time.Time) string {
	return fmt.Sprintf("%s|%s|%s|%s|%s", companyID, t, s.Kind, s.ID, date.Format("2006-01-02"))
}

func (r *fakeProjectionRepo) FindByID(_ context.Context, id uuid.UUID) (*projection.Projection, error) {
	for _, p := range r.bySource {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProjectionRepo) FindAll(_ context.Context, _ shared.Filter) ([]projection.Projection, error) {
	return r.all(), nil
}

func (r *fakeProjectionRepo) Save(_ context.Context, p *projection.Projection) error {
	r.saves++
	r.bySource[sourceKey(p.CompanyID, p.Type, p.Source, p.ProjectionDate)] = p
	return nil
}

func (r *fakeProjectionRepo) Delete(_ context.Context, _ uuid.UUID) error { return nil }

func (r *fakeProjectionRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.bySource)), nil
}

func (r *fakeProjectionRepo) CountForCompany(_ context.Context, _ uuid.UUID, _ shared.Filter) (int64, error) {
	return int64(len(r.bySource)), nil
}

func (r *fakeProjectionRepo) FindByIDForCompany(ctx context.Context, _ uuid.UUID, id uuid.UUID) (*projection.Projection, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeProjectionRepo) FindAllForCompany(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]projection.Projection, error) {
	return r.all(), nil
}

func (r *fakeProjectionRepo) FindInWindow(_ context.Context, _ uuid.UUID, from, until time.Time) ([]projection.Projection, error) {
	var out []projection.Projection
	for _, p := range r.bySource {
		if p.Status == projection.StatusCancelled {
			continue
		}
		if !p.ProjectionDate.Before(from) && !p.ProjectionDate.After(until) {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakeProjectionRepo) FindBySource(_ context.Context, companyID uuid.UUID, t projection.Type,
	s projection.Source, date time.Time) (*projection.Projection, error) {
	if p, ok := r.bySource[sourceKey(companyID, t, s, date)]; ok {
		return p, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProjectionRepo) DeleteProjectedInWindow(_ context.Context, _ uuid.UUID, from, until time.Time) (int64, error) {
	var deleted int64
	for k, p := range r.bySource {
		if p.Status == projection.StatusProjected && !p.ProjectionDate.Before(from) && !p.ProjectionDate.After(until) {
			delete(r.bySource, k)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeProjectionRepo) DeleteBySourceID(_ context.Context, _ uuid.UUID, kind projection.SourceKind, sourceID uuid.UUID) (int64, error) {
	var deleted int64
	for k, p := range r.bySource {
		if p.Source.Kind == kind && p.Source.ID == sourceID {
			delete(r.bySource, k)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeProjectionRepo) SummarizeByType(_ context.Context, _ uuid.UUID, from, until time.Time) ([]projection.TypeSummary, error) {
	byType := make(map[projection.Type]*projection.TypeSummary)
	for _, p := range r.bySource {
		if p.ProjectionDate.Before(from) || p.ProjectionDate.After(until) {
			continue
		}
		sum, ok := byType[p.Type]
		if !ok {
			sum = &projection.TypeSummary{Type: p.Type}
			byType[p.Type] = sum
		}
		sum.Count++
		sum.Amount = sum.Amount.Add(p.ProjectedAmount)
	}
	var out []projection.TypeSummary
	for _, sum := range byType {
		out = append(out, *sum)
	}
	return out, nil
}

func (r *fakeProjectionRepo) all() []projection.Projection {
	var out []projection.Projection
	for _, p := range r.bySource {
		out = append(out, *p)
	}
	return out
}

type fakeInvoiceRepo struct {
	invoices []billing.Invoice
}

func (r *fakeInvoiceRepo) FindByID(_ context.Context, _ uuid.UUID) (*billing.Invoice, error) {
	return nil, shared.ErrNotFound
}
func (r *fakeInvoiceRepo) FindAll(_ context.Context, _ shared.Filter) ([]billing.Invoice, error) {
	return r.invoices, nil
}
func (r *fakeInvoiceRepo) Save(_ context.Context, _ *billing.Invoice) error { return nil }
func (r *fakeInvoiceRepo) Delete(_ context.Context, _ uuid.UUID) error      { return nil }
func (r *fakeInvoiceRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.invoices)), nil
}
func (r *fakeInvoiceRepo) CountForCompany(_ context.Context, _ uuid.UUID, _ shared.Filter) (int64, error) {
	return int64(len(r.invoices)), nil
}
func (r *fakeInvoiceRepo) FindByIDForCompany(_ context.Context, _, _ uuid.UUID) (*billing.Invoice, error) {
	return nil, shared.ErrNotFound
}
func (r *fakeInvoiceRepo) FindAllForCompany(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]billing.Invoice, error) {
	return r.invoices, nil
}
func (r *fakeInvoiceRepo) FindOpenForCompany(_ context.Context, _ uuid.UUID) ([]billing.Invoice, error) {
	var open []billing.Invoice
	for _, inv := range r.invoices {
		if inv.IsOpen() {
			open = append(open, inv)
		}
	}
	return open, nil
}

type fakeRecurringRepo struct {
	payments []recurring.Payment
}

func (r *fakeRecurringRepo) FindByID(_ context.Context, _ uuid.UUID) (*recurring.Payment, error) {
	return nil, shared.ErrNotFound
}
func (r *fakeRecurringRepo) FindAll(_ context.Context, _ shared.Filter) ([]recurring.Payment, error) {
	return r.payments, nil
}
func (r *fakeRecurringRepo) Save(_ context.Context, _ *recurring.Payment) error { return nil }
func (r *fakeRecurringRepo) Delete(_ context.Context, _ uuid.UUID) error        { return nil }
func (r *fakeRecurringRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.payments)), nil
}
func (r *fakeRecurringRepo) CountForCompany(_ context.Context, _ uuid.UUID, _ shared.Filter) (int64, error) {
	return int64(len(r.payments)), nil
}
func (r *fakeRecurringRepo) FindByIDForCompany(_ context.Context, _, id uuid.UUID) (*recurring.Payment, error) {
	for i := range r.payments {
		if r.payments[i].ID == id {
			return &r.payments[i], nil
		}
	}
	return nil, shared.ErrNotFound
}
func (r *fakeRecurringRepo) FindAllForCompany(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]recurring.Payment, error) {
	return r.payments, nil
}
func (r *fakeRecurringRepo) FindActiveForCompany(_ context.Context, _ uuid.UUID) ([]recurring.Payment, error) {
	var active []recurring.Payment
	for _, p := range r.payments {
		if p.IsActive {
			active = append(active, p)
		}
	}
	return active, nil
}
func (r *fakeRecurringRepo) SaveWithLock(_ context.Context, _ *recurring.Payment) error { return nil }

type fakeStatementRepo struct {
	statements []banking.Statement
}

func (r *fakeStatementRepo) FindByID(_ context.Context, _ uuid.UUID) (*banking.Statement, error) {
	return nil, shared.ErrNotFound
}
func (r *fakeStatementRepo) FindAll(_ context.Context, _ shared.Filter) ([]banking.Statement, error) {
	return r.statements, nil
}
func (r *fakeStatementRepo) Save(_ context.Context, _ *banking.Statement) error { return nil }
func (r *fakeStatementRepo) Delete(_ context.Context, _ uuid.UUID) error        { return nil }
func (r *fakeStatementRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.statements)), nil
}
func (r *fakeStatementRepo) CountForCompany(_ context.Context, _ uuid.UUID, _ shared.Filter) (int64, error) {
	return int64(len(r.statements)), nil
}
func (r *fakeStatementRepo) FindByIDForCompany(_ context.Context, _, _ uuid.UUID) (*banking.Statement, error) {
	return nil, shared.ErrNotFound
}
func (r *fakeStatementRepo) FindAllForCompany(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]banking.Statement, error) {
	return r.statements, nil
}
func (r *fakeStatementRepo) FindLatestPerAccount(_ context.Context, _ uuid.UUID) ([]banking.Statement, error) {
	return r.statements, nil
}
func (r *fakeStatementRepo) SaveWithLock(_ context.Context, _ *banking.Statement) error { return nil }

type fakeCurrencyRepo struct {
	base *currency.Currency
}

func (r *fakeCurrencyRepo) FindByID(_ context.Context, _ uuid.UUID) (*currency.Currency, error) {
	return nil, shared.ErrNotFound
}
func (r *fakeCurrencyRepo) FindAll(_ context.Context, _ shared.Filter) ([]currency.Currency, error) {
	return nil, nil
}
func (r *fakeCurrencyRepo) Save(_ context.Context, _ *currency.Currency) error { return nil }
func (r *fakeCurrencyRepo) Delete(_ context.Context, _ uuid.UUID) error        { return nil }
func (r *fakeCurrencyRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return 0, nil
}
func (r *fakeCurrencyRepo) FindByCode(_ context.Context, _ string) (*currency.Currency, error) {
	return nil, shared.ErrNotFound
}
func (r *fakeCurrencyRepo) FindBase(_ context.Context) (*currency.Currency, error) {
	if r.base == nil {
		return nil, shared.ErrNotFound
	}
	return r.base, nil
}
func (r *fakeCurrencyRepo) FindActive(_ context.Context) ([]currency.Currency, error) {
	return nil, nil
}

type fakeRateFinder struct {
	rates map[string]decimal.Decimal
}

func (f *fakeRateFinder) FindEffective(_ context.Context, baseCode, targetCode string, _ time.Time) (*currency.ExchangeRate, error) {
	if rate, ok := f.rates[baseCode+"/"+targetCode]; ok {
		base, _ := currency.NewCurrency(baseCode, baseCode, "", 2)
		target, _ := currency.NewCurrency(targetCode, targetCode, "", 2)
		r, _ := currency.NewExchangeRate(base, target, rate,
			time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), currency.RateSourceManual)
		return r, nil
	}
	return nil, shared.ErrNotFound
}

// --- fixtures --------------------------------------------------------------

func newTestService(t *testing.T, fakes ...func(*fixture)) (*ProjectionService, *fixture) {
	t.Helper()

	f := &fixture{
		companyID:      uuid.New(),
		projectionRepo: newFakeProjectionRepo(),
		invoiceRepo:    &fakeInvoiceRepo{},
		recurringRepo:  &fakeRecurringRepo{},
		statementRepo:  &fakeStatementRepo{},
		rateFinder:     &fakeRateFinder{rates: map[string]decimal.Decimal{}},
	}
	base, err := currency.NewCurrency("SAR", "Saudi Riyal", "SAR", 2)
	require.NoError(t, err)
	base.MarkAsBase()
	f.currencyRepo = &fakeCurrencyRepo{base: base}

	for _, apply := range fakes {
		apply(f)
	}

	conversion := appcurrency.NewConversionService(
		currency.NewConverter(f.currencyRepo, f.rateFinder), nil, time.Minute)

	svc := NewProjectionService(f.projectionRepo, f.invoiceRepo, f.recurringRepo,
		f.statementRepo, f.currencyRepo, conversion, WithDefaultWindowMonths(12))
	return svc, f
}

type fixture struct {
	companyID      uuid.UUID
	projectionRepo *fakeProjectionRepo
	invoiceRepo    *fakeInvoiceRepo
	recurringRepo  *fakeRecurringRepo
	statementRepo  *fakeStatementRepo
	currencyRepo   *fakeCurrencyRepo
	rateFinder     *fakeRateFinder
}

func window() (time.Time, time.Time) {
	return time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)
}

// --- tests -----------------------------------------------------------------

func TestProjectionService_Refresh_Invoices(t *testing.T) {
	from, until := window()
	svc, f := newTestService(t, func(f *fixture) {
		receivable, _ := billing.NewCustomerInvoice(f.companyID, uuid.New(), "INV-001",
			decimal.NewFromInt(1000), "USD", time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC),
			billing.PaymentTerms{PaymentPeriod: "Net 30"})
		payable, _ := billing.NewSupplierInvoice(f.companyID, uuid.New(), "BILL-77",
			decimal.NewFromInt(500), "SAR", time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
			billing.PaymentTerms{PaymentPeriod: "Due on receipt"})
		f.invoiceRepo.invoices = []billing.Invoice{*receivable, *payable}
		f.rateFinder.rates["USD/SAR"] = decimal.NewFromFloat(3.75)
	})

	result, err := svc.Refresh(context.Background(), f.companyID,
		RefreshRequest{WindowStart: from, WindowEnd: until})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Invoices.Generated)
	assert.Equal(t, 0, result.Invoices.Skipped)

	projections := f.projectionRepo.all()
	require.Len(t, projections, 2)
	for _, p := range projections {
		switch p.Type {
		case projection.TypeCustomerReceivable:
			// 1000 USD * 3.75, due 30 days after the invoice date
			assert.True(t, p.ProjectedAmount.Equal(decimal.NewFromInt(3750)))
			assert.Equal(t, time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC), p.ProjectionDate)
		case projection.TypeSupplierPayable:
			assert.True(t, p.ProjectedAmount.Equal(decimal.NewFromInt(-500)))
		default:
			t.Fatalf("unexpected projection type %s", p.Type)
		}
		assert.Equal(t, "SAR", p.Currency)
	}
}

func TestProjectionService_Refresh_SkipsMissingRate(t *testing.T) {
	from, until := window()
	svc, f := newTestService(t, func(f *fixture) {
		inv, _ := billing.NewCustomerInvoice(f.companyID, uuid.New(), "INV-002",
			decimal.NewFromInt(900), "JPY", time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC),
			billing.PaymentTerms{})
		f.invoiceRepo.invoices = []billing.Invoice{*inv}
	})

	result, err := svc.Refresh(context.Background(), f.companyID,
		RefreshRequest{WindowStart: from, WindowEnd: until})
	require.NoError(t, err)

	assert.Equal(t, 0, result.Invoices.Generated)
	assert.Equal(t, 1, result.Invoices.Skipped)
	assert.Empty(t, f.projectionRepo.all())
}

func TestProjectionService_Refresh_RecurringOccurrences(t *testing.T) {
	from, until := window()
	svc, f := newTestService(t, func(f *fixture) {
		rent, err := recurring.NewPayment(f.companyID, "Office rent", decimal.NewFromInt(8000), "SAR",
			recurring.DirectionOutflow, recurring.FrequencyMonthly,
			time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), from)
		require.NoError(t, err)
		f.recurringRepo.payments = []recurring.Payment{*rent}
	})

	result, err := svc.Refresh(context.Background(), f.companyID,
		RefreshRequest{WindowStart: from, WindowEnd: until})
	require.NoError(t, err)

	// monthly on the 5th: Jun 5 .. Nov 5 inside (Jun 1, Dec 1]
	assert.Equal(t, 6, result.RecurringPayments.Generated)
	for _, p := range f.projectionRepo.all() {
		assert.Equal(t, projection.TypeRecurringOutflow, p.Type)
		assert.True(t, p.ProjectedAmount.Equal(decimal.NewFromInt(-8000)))
	}
}

func TestProjectionService_Refresh_FacilityObligation(t *testing.T) {
	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2027, 6, 1, 0, 0, 0, 0, time.UTC)
	svc, f := newTestService(t, func(f *fixture) {
		stmt, err := banking.NewStatement(f.companyID, "Riyad Bank", "FAC-1", "SAR",
			decimal.NewFromInt(-500000), decimal.NewFromInt(-450000),
			time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		accountType := "Term Loan"
		stmt.AccountType = &accountType
		tenor := 6
		require.NoError(t, stmt.SetFacilityTerms(&tenor, nil, nil))
		f.statementRepo.statements = []banking.Statement{*stmt}
	})

	result, err := svc.Refresh(context.Background(), f.companyID,
		RefreshRequest{WindowStart: from, WindowEnd: until})
	require.NoError(t, err)

	assert.Equal(t, 1, result.BankObligations.Generated)
	projections := f.projectionRepo.all()
	require.Len(t, projections, 1)
	assert.Equal(t, projection.TypeBankObligation, projections[0].Type)
	assert.True(t, projections[0].ProjectedAmount.Equal(decimal.NewFromInt(-450000)))
	// period end + 6 month tenor; May 31 + 6 months normalizes to Dec 1
	assert.Equal(t, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), projections[0].ProjectionDate)
}

func TestProjectionService_Refresh_Idempotent(t *testing.T) {
	from, until := window()
	svc, f := newTestService(t, func(f *fixture) {
		inv, _ := billing.NewCustomerInvoice(f.companyID, uuid.New(), "INV-003",
			decimal.NewFromInt(100), "SAR", time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC),
			billing.PaymentTerms{PaymentPeriod: "Net 10"})
		f.invoiceRepo.invoices = []billing.Invoice{*inv}
	})

	req := RefreshRequest{WindowStart: from, WindowEnd: until}
	_, err := svc.Refresh(context.Background(), f.companyID, req)
	require.NoError(t, err)
	_, err = svc.Refresh(context.Background(), f.companyID, req)
	require.NoError(t, err)

	assert.Len(t, f.projectionRepo.all(), 1, "second refresh must update, not duplicate")
}

func TestProjectionService_Refresh_NoBaseCurrency(t *testing.T) {
	svc, f := newTestService(t, func(f *fixture) {
		f.currencyRepo.base = nil
	})

	_, err := svc.Refresh(context.Background(), f.companyID, RefreshRequest{})
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}

func TestProjectionService_DailyPositions(t *testing.T) {
	from := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC)
	svc, f := newTestService(t, func(f *fixture) {
		stmt, _ := banking.NewStatement(f.companyID, "SNB", "CUR-1", "SAR",
			decimal.NewFromInt(90000), decimal.NewFromInt(100000),
			time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
			time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC))
		f.statementRepo.statements = []banking.Statement{*stmt}
	})

	p, err := projection.New(f.companyID, projection.TypeCustomerReceivable,
		time.Date(2026, 6, 2, 0, 0, 0, 0, time.UTC), decimal.NewFromInt(5000), "SAR",
		decimal.NewFromFloat(0.8), projection.Source{Kind: projection.SourceInvoice, ID: uuid.New()}, "INV")
	require.NoError(t, err)
	require.NoError(t, f.projectionRepo.Save(context.Background(), p))

	positions, err := svc.DailyPositions(context.Background(), f.companyID, from, until)
	require.NoError(t, err)
	require.Len(t, positions, 3)

	assert.True(t, positions[0].OpeningBalance.Equal(decimal.NewFromInt(100000)))
	assert.True(t, positions[1].Inflows.Equal(decimal.NewFromInt(5000)))
	assert.True(t, positions[1].ClosingBalance.Equal(decimal.NewFromInt(105000)))
	assert.True(t, positions[2].OpeningBalance.Equal(decimal.NewFromInt(105000)))
}

func TestPaymentChangedHandler_RegeneratesOnUpdate(t *testing.T) {
	from, _ := window()
	svc, f := newTestService(t)

	rent, err := recurring.NewPayment(f.companyID, "Office rent", decimal.NewFromInt(8000), "SAR",
		recurring.DirectionOutflow, recurring.FrequencyMonthly,
		time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC), from)
	require.NoError(t, err)
	f.recurringRepo.payments = []recurring.Payment{*rent}

	handler := NewPaymentChangedHandler(svc, f.recurringRepo, nil)
	events := rent.GetDomainEvents()
	require.NotEmpty(t, events)

	require.NoError(t, handler.Handle(context.Background(), events[0]))
	assert.NotEmpty(t, f.projectionRepo.all())

	// deactivation removes everything derived from the payment
	rent.Deactivate()
	f.recurringRepo.payments = []recurring.Payment{*rent}
	deactivated := rent.GetDomainEvents()
	require.NoError(t, handler.Handle(context.Background(), deactivated[len(deactivated)-1]))
	assert.Empty(t, f.projectionRepo.all())
}
