package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qayed/backend/internal/domain/billing"
	"github.com/qayed/backend/internal/domain/partner"
	"github.com/qayed/backend/internal/domain/shared"
)

type fakeInvoiceRepo struct {
	byID map[uuid.UUID]*billing.Invoice
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{byID: make(map[uuid.UUID]*billing.Invoice)}
}

func (r *fakeInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*billing.Invoice, error) {
	if inv, ok := r.byID[id]; ok {
		return inv, nil
	}
	return nil, shared.ErrNotFound
}
func (r *fakeInvoiceRepo) FindAll(_ context.Context, _ shared.Filter) ([]billing.Invoice, error) {
	var out []billing.Invoice
	for _, inv := range r.byID {
		out = append(out, *inv)
	}
	return out, nil
}
func (r *fakeInvoiceRepo) Save(_ context.Context, inv *billing.Invoice) error {
	r.byID[inv.ID] = inv
	return nil
}
func (r *fakeInvoiceRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.byID, id)
	return nil
}
func (r *fakeInvoiceRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.byID)), nil
}
func (r *fakeInvoiceRepo) CountForCompany(_ context.Context, companyID uuid.UUID, _ shared.Filter) (int64, error) {
	var n int64
	for _, inv := range r.byID {
		if inv.CompanyID == companyID {
			n++
		}
	}
	return n, nil
}
func (r *fakeInvoiceRepo) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*billing.Invoice, error) {
	inv, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv.CompanyID != companyID {
		return nil, shared.ErrNotFound
	}
	return inv, nil
}
func (r *fakeInvoiceRepo) FindAllForCompany(_ context.Context, companyID uuid.UUID, _ shared.Filter) ([]billing.Invoice, error) {
	var out []billing.Invoice
	for _, inv := range r.byID {
		if inv.CompanyID == companyID {
			out = append(out, *inv)
		}
	}
	return out, nil
}
func (r *fakeInvoiceRepo) FindOpenForCompany(_ context.Context, companyID uuid.UUID) ([]billing.Invoice, error) {
	var out []billing.Invoice
	for _, inv := range r.byID {
		if inv.CompanyID == companyID && inv.IsOpen() {
			out = append(out, *inv)
		}
	}
	return out, nil
}

type fakePartnerRepos struct {
	customers *partnerStore[partner.Customer]
	suppliers *partnerStore[partner.Supplier]
}

type partnerStore[T any] struct {
	byID      map[uuid.UUID]*T
	companyOf func(*T) uuid.UUID
}

func (s *partnerStore[T]) FindByID(_ context.Context, id uuid.UUID) (*T, error) {
	if v, ok := s.byID[id]; ok {
		return v, nil
	}
	return nil, shared.ErrNotFound
}
func (s *partnerStore[T]) FindAll(_ context.Context, _ shared.Filter) ([]T, error) { return nil, nil }
func (s *partnerStore[T]) Save(_ context.Context, _ *T) error                      { return nil }
func (s *partnerStore[T]) Delete(_ context.Context, _ uuid.UUID) error             { return nil }
func (s *partnerStore[T]) Count(_ context.Context, _ shared.Filter) (int64, error) { return 0, nil }
func (s *partnerStore[T]) CountForCompany(_ context.Context, _ uuid.UUID, _ shared.Filter) (int64, error) {
	return 0, nil
}
func (s *partnerStore[T]) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*T, error) {
	v, err := s.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.companyOf(v) != companyID {
		return nil, shared.ErrNotFound
	}
	return v, nil
}
func (s *partnerStore[T]) FindAllForCompany(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]T, error) {
	return nil, nil
}

func newTestInvoiceService(t *testing.T, companyID uuid.UUID) (*InvoiceService, uuid.UUID, uuid.UUID) {
	t.Helper()

	customer, err := partner.NewCustomer(companyID, "Red Sea Retail", "SA")
	require.NoError(t, err)
	supplier, err := partner.NewSupplier(companyID, "Jeddah Steel", "SA")
	require.NoError(t, err)

	repos := fakePartnerRepos{
		customers: &partnerStore[partner.Customer]{
			byID:      map[uuid.UUID]*partner.Customer{customer.ID: customer},
			companyOf: func(c *partner.Customer) uuid.UUID { return c.CompanyID },
		},
		suppliers: &partnerStore[partner.Supplier]{
			byID:      map[uuid.UUID]*partner.Supplier{supplier.ID: supplier},
			companyOf: func(s *partner.Supplier) uuid.UUID { return s.CompanyID },
		},
	}
	svc := NewInvoiceService(newFakeInvoiceRepo(), repos.customers, repos.suppliers)
	return svc, customer.ID, supplier.ID
}

func TestInvoiceService_Create_Receivable(t *testing.T) {
	companyID := uuid.New()
	svc, customerID, _ := newTestInvoiceService(t, companyID)

	invoiceDate := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	resp, err := svc.Create(context.Background(), companyID, CreateInvoiceRequest{
		InvoiceNumber: "INV-1001",
		TotalAmount:   decimal.NewFromInt(15000),
		Currency:      "sar",
		InvoiceDate:   invoiceDate,
		CustomerID:    &customerID,
		PaymentPeriod: "Net 45",
	})
	require.NoError(t, err)

	assert.Equal(t, string(billing.DirectionReceivable), resp.Direction)
	assert.Equal(t, "SAR", resp.Currency)
	assert.Equal(t, invoiceDate.AddDate(0, 0, 45), resp.DueDate)
	assert.Equal(t, string(billing.InvoiceStatusOpen), resp.Status)
}

func TestInvoiceService_Create_RequiresOnePartner(t *testing.T) {
	companyID := uuid.New()
	svc, customerID, supplierID := newTestInvoiceService(t, companyID)

	req := CreateInvoiceRequest{
		InvoiceNumber: "INV-1002",
		TotalAmount:   decimal.NewFromInt(100),
		Currency:      "SAR",
		InvoiceDate:   time.Now(),
	}

	_, err := svc.Create(context.Background(), companyID, req)
	require.Error(t, err, "neither partner set")

	req.CustomerID = &customerID
	req.SupplierID = &supplierID
	_, err = svc.Create(context.Background(), companyID, req)
	require.Error(t, err, "both partners set")

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_INPUT", domainErr.Code)
}

func TestInvoiceService_Create_UnknownSupplier(t *testing.T) {
	companyID := uuid.New()
	svc, _, _ := newTestInvoiceService(t, companyID)

	unknown := uuid.New()
	_, err := svc.Create(context.Background(), companyID, CreateInvoiceRequest{
		InvoiceNumber: "INV-1003",
		TotalAmount:   decimal.NewFromInt(100),
		Currency:      "SAR",
		InvoiceDate:   time.Now(),
		SupplierID:    &unknown,
	})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestInvoiceService_MarkPaid_ThenCancelFails(t *testing.T) {
	companyID := uuid.New()
	svc, _, supplierID := newTestInvoiceService(t, companyID)

	created, err := svc.Create(context.Background(), companyID, CreateInvoiceRequest{
		InvoiceNumber: "INV-2001",
		TotalAmount:   decimal.NewFromInt(7500),
		Currency:      "SAR",
		InvoiceDate:   time.Now(),
		SupplierID:    &supplierID,
		PaymentPeriod: "due on receipt",
	})
	require.NoError(t, err)

	paid, err := svc.MarkPaid(context.Background(), companyID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(billing.InvoiceStatusPaid), paid.Status)

	_, err = svc.Cancel(context.Background(), companyID, created.ID)
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)
}
