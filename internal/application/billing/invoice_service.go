// Package billing exposes invoice management as an application service.
package billing

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qayed/backend/internal/domain/billing"
	"github.com/qayed/backend/internal/domain/partner"
	"github.com/qayed/backend/internal/domain/shared"
)

// InvoiceService handles invoice operations
type InvoiceService struct {
	invoiceRepo  billing.Repository
	customerRepo partner.CustomerRepository
	supplierRepo partner.SupplierRepository
	logger       *zap.Logger
}

// InvoiceServiceOption configures an InvoiceService
type InvoiceServiceOption func(*InvoiceService)

// WithInvoiceLogger sets the logger for the invoice service
func WithInvoiceLogger(logger *zap.Logger) InvoiceServiceOption {
	return func(s *InvoiceService) {
		s.logger = logger
	}
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoiceRepo billing.Repository, customerRepo partner.CustomerRepository,
	supplierRepo partner.SupplierRepository, opts ...InvoiceServiceOption) *InvoiceService {
	s := &InvoiceService{
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		supplierRepo: supplierRepo,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create records an invoice against a customer or a supplier
func (s *InvoiceService) Create(ctx context.Context, companyID uuid.UUID, req CreateInvoiceRequest) (*InvoiceResponse, error) {
	if (req.CustomerID == nil) == (req.SupplierID == nil) {
		return nil, shared.NewDomainError("INVALID_INPUT", "exactly one of customer_id or supplier_id is required")
	}

	terms := toPaymentTerms(req.PaymentPeriod, req.Installments)

	var (
		inv *billing.Invoice
		err error
	)
	if req.CustomerID != nil {
		if _, err = s.customerRepo.FindByIDForCompany(ctx, companyID, *req.CustomerID); err != nil {
			return nil, err
		}
		inv, err = billing.NewCustomerInvoice(companyID, *req.CustomerID, req.InvoiceNumber,
			req.TotalAmount, req.Currency, req.InvoiceDate, terms)
	} else {
		if _, err = s.supplierRepo.FindByIDForCompany(ctx, companyID, *req.SupplierID); err != nil {
			return nil, err
		}
		inv, err = billing.NewSupplierInvoice(companyID, *req.SupplierID, req.InvoiceNumber,
			req.TotalAmount, req.Currency, req.InvoiceDate, terms)
	}
	if err != nil {
		return nil, err
	}

	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}

	s.logger.Info("Invoice created",
		zap.String("invoice_id", inv.ID.String()),
		zap.String("invoice_number", inv.InvoiceNumber),
		zap.String("direction", string(inv.Direction())))

	response := ToInvoiceResponse(inv)
	return &response, nil
}

// GetByID retrieves an invoice for the company
func (s *InvoiceService) GetByID(ctx context.Context, companyID, id uuid.UUID) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForCompany(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// List retrieves the company's invoices with pagination
func (s *InvoiceService) List(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]InvoiceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	invoices, err := s.invoiceRepo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.invoiceRepo.CountForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		responses = append(responses, ToInvoiceResponse(&invoices[i]))
	}
	return responses, total, nil
}

// Update changes an open invoice's payment terms
func (s *InvoiceService) Update(ctx context.Context, companyID, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForCompany(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if !inv.IsOpen() {
		return nil, shared.NewDomainError("INVALID_STATE", "only open invoices can be updated")
	}

	inv.PaymentTerms = toPaymentTerms(req.PaymentPeriod, req.Installments)

	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(inv)
	return &response, nil
}

// MarkPaid settles an open invoice
func (s *InvoiceService) MarkPaid(ctx context.Context, companyID, id uuid.UUID) (*InvoiceResponse, error) {
	return s.transition(ctx, companyID, id, (*billing.Invoice).MarkPaid)
}

// Cancel voids an invoice
func (s *InvoiceService) Cancel(ctx context.Context, companyID, id uuid.UUID) (*InvoiceResponse, error) {
	return s.transition(ctx, companyID, id, (*billing.Invoice).Cancel)
}

func (s *InvoiceService) transition(ctx context.Context, companyID, id uuid.UUID,
	apply func(*billing.Invoice) error) (*InvoiceResponse, error) {
	inv, err := s.invoiceRepo.FindByIDForCompany(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := apply(inv); err != nil {
		return nil, err
	}
	if err := s.invoiceRepo.Save(ctx, inv); err != nil {
		return nil, err
	}
	response := ToInvoiceResponse(inv)
	return &response, nil
}
