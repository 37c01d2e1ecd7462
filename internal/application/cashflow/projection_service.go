// Package cashflow builds the forward cash position: it aggregates open
// invoices, recurring payments and facility obligations into dated
// projections expressed in the reporting currency.
package cashflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	appcurrency "github.com/qayed/backend/internal/application/currency"
	"github.com/qayed/backend/internal/domain/banking"
	"github.com/qayed/backend/internal/domain/billing"
	"github.com/qayed/backend/internal/domain/currency"
	"github.com/qayed/backend/internal/domain/projection"
	"github.com/qayed/backend/internal/domain/recurring"
	"github.com/qayed/backend/internal/domain/shared"
)

// Confidence baselines per projection source
var (
	confidenceReceivable = decimal.NewFromFloat(0.8)
	confidencePayable    = decimal.NewFromFloat(0.9)
	confidenceRecurring  = decimal.NewFromFloat(0.95)
	confidenceObligation = decimal.NewFromFloat(0.7)
)

// defaultTenorMonths applies when a facility statement carries no tenor
const defaultTenorMonths = 12

// ProjectionService generates and serves cashflow projections
type ProjectionService struct {
	projectionRepo projection.Repository
	invoiceRepo    billing.Repository
	recurringRepo  recurring.Repository
	statementRepo  banking.StatementRepository
	currencyRepo   currency.Repository
	conversion     *appcurrency.ConversionService
	windowMonths   int
	logger         *zap.Logger
}

// ProjectionServiceOption configures a ProjectionService
type ProjectionServiceOption func(*ProjectionService)

// WithProjectionLogger sets the logger for the projection service
func WithProjectionLogger(logger *zap.Logger) ProjectionServiceOption {
	return func(s *ProjectionService) {
		s.logger = logger
	}
}

// WithDefaultWindowMonths sets the horizon used when a refresh request
// carries no explicit window
func WithDefaultWindowMonths(months int) ProjectionServiceOption {
	return func(s *ProjectionService) {
		if months > 0 {
			s.windowMonths = months
		}
	}
}

// NewProjectionService creates a new ProjectionService
func NewProjectionService(
	projectionRepo projection.Repository,
	invoiceRepo billing.Repository,
	recurringRepo recurring.Repository,
	statementRepo banking.StatementRepository,
	currencyRepo currency.Repository,
	conversion *appcurrency.ConversionService,
	opts ...ProjectionServiceOption,
) *ProjectionService {
	s := &ProjectionService{
		projectionRepo: projectionRepo,
		invoiceRepo:    invoiceRepo,
		recurringRepo:  recurringRepo,
		statementRepo:  statementRepo,
		currencyRepo:   currencyRepo,
		conversion:     conversion,
		windowMonths:   12,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh regenerates the company's projections over the window. With
// forceRecalculate the window's PROJECTED rows are deleted first; otherwise
// existing rows are updated in place. A source whose amount cannot be
// expressed in the reporting currency is logged and skipped, never fatal.
func (s *ProjectionService) Refresh(ctx context.Context, companyID uuid.UUID, req RefreshRequest) (*RefreshResult, error) {
	from, until, err := s.resolveWindow(req.WindowStart, req.WindowEnd)
	if err != nil {
		return nil, err
	}

	base, err := s.currencyRepo.FindBase(ctx)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("INVALID_STATE", "no base currency configured for projections")
		}
		return nil, err
	}

	if req.ForceRecalculate {
		deleted, err := s.projectionRepo.DeleteProjectedInWindow(ctx, companyID, from, until)
		if err != nil {
			return nil, err
		}
		s.logger.Info("Deleted projected rows for forced refresh",
			zap.String("company_id", companyID.String()),
			zap.Int64("deleted", deleted))
	}

	result := &RefreshResult{WindowStart: from, WindowEnd: until}

	if err := s.projectInvoices(ctx, companyID, base.Code, from, until, result); err != nil {
		return nil, err
	}
	if err := s.projectRecurring(ctx, companyID, base.Code, from, until, result); err != nil {
		return nil, err
	}
	if err := s.projectObligations(ctx, companyID, base.Code, from, until, result); err != nil {
		return nil, err
	}

	s.logger.Info("Projection refresh finished",
		zap.String("company_id", companyID.String()),
		zap.Time("window_start", from),
		zap.Time("window_end", until),
		zap.Int("generated", result.Total()),
		zap.Int("skipped", result.Invoices.Skipped+result.RecurringPayments.Skipped+result.BankObligations.Skipped))
	return result, nil
}

// projectInvoices derives one projection per open invoice due in the window
func (s *ProjectionService) projectInvoices(ctx context.Context, companyID uuid.UUID, baseCode string,
	from, until time.Time, result *RefreshResult) error {
	invoices, err := s.invoiceRepo.FindOpenForCompany(ctx, companyID)
	if err != nil {
		return err
	}

	for i := range invoices {
		inv := &invoices[i]
		due := inv.DueDate()
		if due.Before(from) || due.After(until) {
			continue
		}

		amount, ok, err := s.toBase(ctx, inv.TotalAmount, inv.Currency, baseCode, due)
		if err != nil {
			return err
		}
		if !ok {
			result.Invoices.Skipped++
			s.logger.Warn("Skipping invoice projection, no exchange rate",
				zap.String("invoice_id", inv.ID.String()),
				zap.String("currency", inv.Currency),
				zap.String("base_currency", baseCode))
			continue
		}

		projType := projection.TypeCustomerReceivable
		confidence := confidenceReceivable
		if inv.Direction() == billing.DirectionPayable {
			projType = projection.TypeSupplierPayable
			confidence = confidencePayable
			amount = amount.Neg()
		}

		if err := s.upsert(ctx, companyID, projType, due, amount, baseCode, confidence,
			projection.Source{Kind: projection.SourceInvoice, ID: inv.ID},
			fmt.Sprintf("Invoice %s", inv.InvoiceNumber)); err != nil {
			return err
		}
		result.Invoices.Generated++
	}
	return nil
}

// projectRecurring derives one projection per occurrence of each active payment
func (s *ProjectionService) projectRecurring(ctx context.Context, companyID uuid.UUID, baseCode string,
	from, until time.Time, result *RefreshResult) error {
	payments, err := s.recurringRepo.FindActiveForCompany(ctx, companyID)
	if err != nil {
		return err
	}

	for i := range payments {
		p := &payments[i]
		generated, skipped, err := s.projectPaymentOccurrences(ctx, p, baseCode, from, until)
		if err != nil {
			return err
		}
		result.RecurringPayments.Generated += generated
		result.RecurringPayments.Skipped += skipped
	}
	return nil
}

func (s *ProjectionService) projectPaymentOccurrences(ctx context.Context, p *recurring.Payment,
	baseCode string, from, until time.Time) (generated, skipped int, err error) {
	projType := projection.TypeRecurringOutflow
	if p.Direction == recurring.DirectionInflow {
		projType = projection.TypeRecurringInflow
	}

	for _, due := range p.Schedule().Occurrences(from, until) {
		amount, ok, err := s.toBase(ctx, p.Amount, p.Currency, baseCode, due)
		if err != nil {
			return generated, skipped, err
		}
		if !ok {
			skipped++
			s.logger.Warn("Skipping recurring projection, no exchange rate",
				zap.String("payment_id", p.ID.String()),
				zap.String("currency", p.Currency),
				zap.String("base_currency", baseCode))
			continue
		}
		if p.Direction == recurring.DirectionOutflow {
			amount = amount.Neg()
		}

		if err := s.upsert(ctx, p.CompanyID, projType, due, amount, baseCode, confidenceRecurring,
			projection.Source{Kind: projection.SourceRecurringPayment, ID: p.ID}, p.Name); err != nil {
			return generated, skipped, err
		}
		generated++
	}
	return generated, skipped, nil
}

// projectObligations derives a settlement row per facility account with an
// outstanding balance, due tenor months after the statement period.
func (s *ProjectionService) projectObligations(ctx context.Context, companyID uuid.UUID, baseCode string,
	from, until time.Time, result *RefreshResult) error {
	statements, err := s.statementRepo.FindLatestPerAccount(ctx, companyID)
	if err != nil {
		return err
	}

	for i := range statements {
		stmt := &statements[i]
		if !stmt.IsFacility() {
			continue
		}
		outstanding := stmt.OutstandingBalance()
		if !outstanding.IsPositive() {
			continue
		}

		months := defaultTenorMonths
		if stmt.TenorMonths != nil && *stmt.TenorMonths > 0 {
			months = *stmt.TenorMonths
		}
		due := stmt.PeriodEnd.AddDate(0, months, 0)
		if due.Before(from) || due.After(until) {
			continue
		}

		amount, ok, err := s.toBase(ctx, outstanding, stmt.AccountCurrency, baseCode, due)
		if err != nil {
			return err
		}
		if !ok {
			result.BankObligations.Skipped++
			s.logger.Warn("Skipping obligation projection, no exchange rate",
				zap.String("statement_id", stmt.ID.String()),
				zap.String("currency", stmt.AccountCurrency),
				zap.String("base_currency", baseCode))
			continue
		}

		if err := s.upsert(ctx, companyID, projection.TypeBankObligation, due, amount.Neg(), baseCode,
			confidenceObligation,
			projection.Source{Kind: projection.SourceBankStatement, ID: stmt.ID},
			fmt.Sprintf("%s %s settlement", stmt.BankName, stmt.AccountNumber)); err != nil {
			return err
		}
		result.BankObligations.Generated++
	}
	return nil
}

// upsert creates the projection for a source/date or updates the existing
// row, making refresh idempotent over the unique source key.
func (s *ProjectionService) upsert(ctx context.Context, companyID uuid.UUID, projType projection.Type,
	date time.Time, amount decimal.Decimal, currencyCode string, confidence decimal.Decimal,
	source projection.Source, description string) error {
	existing, err := s.projectionRepo.FindBySource(ctx, companyID, projType, source, date)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		p, err := projection.New(companyID, projType, date, amount, currencyCode, confidence, source, description)
		if err != nil {
			return err
		}
		return s.projectionRepo.Save(ctx, p)
	}

	if !existing.Reproject(amount, confidence, description) {
		return nil
	}
	return s.projectionRepo.Save(ctx, existing)
}

// toBase expresses an amount in the reporting currency. The boolean is false
// when no rate chain exists for the pair; other failures propagate.
func (s *ProjectionService) toBase(ctx context.Context, amount decimal.Decimal, from, baseCode string,
	asOf time.Time) (decimal.Decimal, bool, error) {
	conv, err := s.conversion.Convert(ctx, amount, from, baseCode, asOf)
	if err != nil {
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == "RATE_NOT_FOUND" {
			return decimal.Zero, false, nil
		}
		return decimal.Zero, false, err
	}
	return conv.ConvertedAmount, true, nil
}

func (s *ProjectionService) resolveWindow(from, until time.Time) (time.Time, time.Time, error) {
	if from.IsZero() {
		now := time.Now().UTC()
		from = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	if until.IsZero() {
		until = from.AddDate(0, s.windowMonths, 0)
	}
	if !until.After(from) {
		return time.Time{}, time.Time{}, shared.NewDomainError("INVALID_INPUT", "window end must be after window start")
	}
	return from, until, nil
}

// List returns the company's projections with pagination
func (s *ProjectionService) List(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]ProjectionResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	projections, err := s.projectionRepo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.projectionRepo.CountForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ProjectionResponse, 0, len(projections))
	for i := range projections {
		responses = append(responses, ToProjectionResponse(&projections[i]))
	}
	return responses, total, nil
}

// Summary aggregates projected amounts per type over the window
func (s *ProjectionService) Summary(ctx context.Context, companyID uuid.UUID, from, until time.Time) (*SummaryResponse, error) {
	from, until, err := s.resolveWindow(from, until)
	if err != nil {
		return nil, err
	}

	summaries, err := s.projectionRepo.SummarizeByType(ctx, companyID, from, until)
	if err != nil {
		return nil, err
	}

	resp := &SummaryResponse{
		WindowStart: from,
		WindowEnd:   until,
		NetAmount:   decimal.Zero,
		ByType:      make([]TypeSummaryResponse, 0, len(summaries)),
	}
	for _, sum := range summaries {
		resp.NetAmount = resp.NetAmount.Add(sum.Amount)
		resp.ByType = append(resp.ByType, TypeSummaryResponse{
			Type:   string(sum.Type),
			Count:  sum.Count,
			Amount: sum.Amount.Round(2),
		})
	}
	resp.NetAmount = resp.NetAmount.Round(2)
	return resp, nil
}

// DailyPositions rolls the forecast forward day by day. The opening balance
// is the sum of the newest non-facility statement balance per account, zero
// when the company has no statements yet.
func (s *ProjectionService) DailyPositions(ctx context.Context, companyID uuid.UUID, from, until time.Time) ([]PositionResponse, error) {
	from, until, err := s.resolveWindow(from, until)
	if err != nil {
		return nil, err
	}

	statements, err := s.statementRepo.FindLatestPerAccount(ctx, companyID)
	if err != nil {
		return nil, err
	}
	opening := decimal.Zero
	for i := range statements {
		if statements[i].IsFacility() {
			continue
		}
		opening = opening.Add(statements[i].EndingBalance)
	}

	projections, err := s.projectionRepo.FindInWindow(ctx, companyID, from, until)
	if err != nil {
		return nil, err
	}

	positions := projection.DailyPositions(opening, projections, from, until)
	responses := make([]PositionResponse, 0, len(positions))
	for _, p := range positions {
		responses = append(responses, ToPositionResponse(p))
	}
	return responses, nil
}

// Confirm marks a projection as user-confirmed
func (s *ProjectionService) Confirm(ctx context.Context, companyID, id uuid.UUID) (*ProjectionResponse, error) {
	return s.transition(ctx, companyID, id, (*projection.Projection).Confirm)
}

// Cancel removes a projection from the forecast
func (s *ProjectionService) Cancel(ctx context.Context, companyID, id uuid.UUID) (*ProjectionResponse, error) {
	return s.transition(ctx, companyID, id, (*projection.Projection).Cancel)
}

func (s *ProjectionService) transition(ctx context.Context, companyID, id uuid.UUID,
	apply func(*projection.Projection) error) (*ProjectionResponse, error) {
	p, err := s.projectionRepo.FindByIDForCompany(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if err := apply(p); err != nil {
		return nil, err
	}
	if err := s.projectionRepo.Save(ctx, p); err != nil {
		return nil, err
	}
	response := ToProjectionResponse(p)
	return &response, nil
}
