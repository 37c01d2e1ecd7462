// Package banking exposes bank statements, their transactions and balance
// validation as application services.
package banking

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/qayed/backend/internal/domain/banking"
	"github.com/qayed/backend/internal/domain/shared"
)

// StatementService handles bank statement operations
type StatementService struct {
	statementRepo   banking.StatementRepository
	transactionRepo banking.TransactionRepository
	storage         DocumentStorage
	logger          *zap.Logger
}

// StatementServiceOption configures a StatementService
type StatementServiceOption func(*StatementService)

// WithStatementLogger sets the logger for the statement service
func WithStatementLogger(logger *zap.Logger) StatementServiceOption {
	return func(s *StatementService) {
		s.logger = logger
	}
}

// NewStatementService creates a new StatementService
func NewStatementService(statementRepo banking.StatementRepository,
	transactionRepo banking.TransactionRepository, storage DocumentStorage,
	opts ...StatementServiceOption) *StatementService {
	s := &StatementService{
		statementRepo:   statementRepo,
		transactionRepo: transactionRepo,
		storage:         storage,
		logger:          zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create records a statement entered manually, validates its arithmetic and
// persists it with its transactions.
func (s *StatementService) Create(ctx context.Context, companyID uuid.UUID, req CreateStatementRequest) (*StatementResponse, error) {
	stmt, err := banking.NewStatement(companyID, req.BankName, req.AccountNumber, req.AccountCurrency,
		req.StartingBalance, req.EndingBalance, req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}
	stmt.AccountType = req.AccountType
	if err := stmt.SetFacilityTerms(req.TenorMonths, req.InterestRate, req.AvailableLimit); err != nil {
		return nil, err
	}

	for _, txn := range req.Transactions {
		if _, err := stmt.AddTransaction(txn.TransactionDate, txn.CreditAmount, txn.DebitAmount,
			txn.Description, txn.EntityName); err != nil {
			return nil, err
		}
	}
	stmt.Validate()

	if err := s.statementRepo.Save(ctx, stmt); err != nil {
		return nil, err
	}

	s.logger.Info("Statement recorded",
		zap.String("statement_id", stmt.ID.String()),
		zap.String("account_number", stmt.AccountNumber),
		zap.String("validation_status", string(stmt.ValidationStatus)),
		zap.Int("transactions", len(stmt.Transactions)))

	response := ToStatementResponse(stmt)
	return &response, nil
}

// GetByID retrieves a statement for the company
func (s *StatementService) GetByID(ctx context.Context, companyID, id uuid.UUID) (*StatementResponse, error) {
	stmt, err := s.statementRepo.FindByIDForCompany(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	response := ToStatementResponse(stmt)
	return &response, nil
}

// List retrieves the company's statements with pagination
func (s *StatementService) List(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]StatementResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	statements, err := s.statementRepo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.statementRepo.CountForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]StatementResponse, 0, len(statements))
	for i := range statements {
		responses = append(responses, ToStatementResponse(&statements[i]))
	}
	return responses, total, nil
}

// Validate re-runs balance validation over the statement's transactions and
// stores the outcome.
func (s *StatementService) Validate(ctx context.Context, companyID, id uuid.UUID) (*ValidationResponse, error) {
	stmt, err := s.statementRepo.FindByIDForCompany(ctx, companyID, id)
	if err != nil {
		return nil, err
	}

	if len(stmt.Transactions) == 0 {
		txns, err := s.transactionRepo.FindByStatement(ctx, id)
		if err != nil {
			return nil, err
		}
		stmt.Transactions = txns
	}

	result := stmt.Validate()
	if err := s.statementRepo.SaveWithLock(ctx, stmt); err != nil {
		return nil, err
	}

	return &ValidationResponse{
		StatementID:       stmt.ID,
		Status:            string(result.Status),
		CalculatedBalance: result.CalculatedBalance.Round(2),
		Discrepancy:       result.Discrepancy.Round(2),
		TotalCredits:      result.TotalCredits.Round(2),
		TotalDebits:       result.TotalDebits.Round(2),
		Notes:             result.Notes,
	}, nil
}

// ListTransactions retrieves the company's transactions with pagination.
// Filters (statement, date range, entity) pass through the generic filter map.
func (s *StatementService) ListTransactions(ctx context.Context, companyID uuid.UUID, filter shared.Filter) ([]TransactionResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	txns, err := s.transactionRepo.FindAllForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.transactionRepo.CountForCompany(ctx, companyID, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]TransactionResponse, 0, len(txns))
	for i := range txns {
		responses = append(responses, ToTransactionResponse(&txns[i]))
	}
	return responses, total, nil
}

// DocumentURL issues a presigned download link for the statement's source PDF
func (s *StatementService) DocumentURL(ctx context.Context, companyID, id uuid.UUID) (*DocumentURLResponse, error) {
	stmt, err := s.statementRepo.FindByIDForCompany(ctx, companyID, id)
	if err != nil {
		return nil, err
	}
	if stmt.DocumentKey == "" {
		return nil, shared.NewDomainError("NOT_FOUND", "statement has no stored document")
	}

	url, expiresAt, err := s.storage.GenerateDownloadURL(ctx, stmt.DocumentKey, 0)
	if err != nil {
		return nil, err
	}
	return &DocumentURLResponse{URL: url, ExpiresAt: expiresAt}, nil
}
