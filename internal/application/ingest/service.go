// Package ingest orchestrates statement uploads end to end: documents go to
// object storage, extraction runs through the pipeline, and each extracted
// statement is validated and persisted. Progress streams to the caller as
// events; a failed file never aborts the rest of the batch.
package ingest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	appbanking "github.com/qayed/backend/internal/application/banking"
	"github.com/qayed/backend/internal/domain/banking"
	"github.com/qayed/backend/internal/domain/shared"
	"github.com/qayed/backend/internal/infrastructure/config"
	"github.com/qayed/backend/internal/infrastructure/ingest"
)

const documentContentType = "application/pdf"

// Processor runs extraction over a batch of files
type Processor interface {
	Process(ctx context.Context, files []ingest.File, emit ingest.EmitFunc) ([]ingest.FileResult, error)
}

var _ Processor = (*ingest.Pipeline)(nil)

// Service drives the statement ingestion batch
type Service struct {
	processor     Processor
	statementRepo banking.StatementRepository
	storage       appbanking.DocumentStorage
	progressBuf   int
	logger        *zap.Logger
}

// ServiceOption configures a Service
type ServiceOption func(*Service)

// WithServiceLogger sets the logger for the ingestion service
func WithServiceLogger(logger *zap.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a new ingestion Service
func NewService(processor Processor, statementRepo banking.StatementRepository,
	storage appbanking.DocumentStorage, cfg *config.IngestConfig, opts ...ServiceOption) *Service {
	s := &Service{
		processor:     processor,
		statementRepo: statementRepo,
		storage:       storage,
		progressBuf:   64,
		logger:        zap.NewNop(),
	}
	if cfg != nil && cfg.ProgressBufSize > 0 {
		s.progressBuf = cfg.ProgressBufSize
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest starts extraction for the batch and returns the progress stream.
// The channel closes after exactly one terminal complete or error frame.
func (s *Service) Ingest(ctx context.Context, companyID uuid.UUID, files []ingest.File) (<-chan ingest.Event, error) {
	if len(files) == 0 {
		return nil, shared.NewDomainError("INVALID_INPUT", "at least one file is required")
	}
	for _, f := range files {
		if len(f.Data) == 0 {
			return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("file %q is empty", f.Name))
		}
	}

	events := make(chan ingest.Event, s.progressBuf)
	go s.run(ctx, companyID, files, events)
	return events, nil
}

func (s *Service) run(ctx context.Context, companyID uuid.UUID, files []ingest.File, events chan<- ingest.Event) {
	defer close(events)

	emit := func(e ingest.Event) {
		select {
		case events <- e:
		case <-ctx.Done():
		}
	}

	emit(ingest.Event{
		Type:      ingest.EventStatus,
		Message:   fmt.Sprintf("Extracting %d file(s)", len(files)),
		FileCount: len(files),
	})

	results, err := s.processor.Process(ctx, files, emit)
	if err != nil {
		s.logger.Warn("Ingestion batch interrupted",
			zap.String("company_id", companyID.String()),
			zap.Error(err))
		emit(ingest.Event{Type: ingest.EventError, Error: err.Error()})
		return
	}

	saved := 0
	for i := range results {
		result := &results[i]
		if result.Statement == nil {
			continue
		}

		stmt, err := s.persist(ctx, companyID, files[i], result)
		if err != nil {
			s.logger.Warn("Failed to persist extracted statement",
				zap.String("file_name", result.FileName),
				zap.Error(err))
			emit(ingest.Event{
				Type:     ingest.EventStatus,
				FileName: result.FileName,
				Message:  "statement could not be saved",
				Error:    err.Error(),
			})
			continue
		}
		saved++
		emit(ingest.Event{
			Type:        ingest.EventStatus,
			FileName:    result.FileName,
			StatementID: stmt.ID.String(),
			Message:     "statement saved",
		})
	}

	if saved == 0 {
		emit(ingest.Event{
			Type:  ingest.EventError,
			Error: fmt.Sprintf("no statements could be extracted from %d file(s)", len(files)),
		})
		return
	}
	emit(ingest.Event{
		Type:      ingest.EventComplete,
		Message:   fmt.Sprintf("Saved %d of %d statement(s)", saved, len(files)),
		FileCount: len(files),
	})
}

// persist turns one extraction result into a validated, stored statement
func (s *Service) persist(ctx context.Context, companyID uuid.UUID, file ingest.File, result *ingest.FileResult) (*banking.Statement, error) {
	extracted := result.Statement

	periodStart, periodEnd, err := extracted.Period()
	if err != nil {
		return nil, err
	}

	stmt, err := banking.NewStatement(companyID, extracted.BankName, extracted.AccountNumber,
		extracted.Currency, extracted.StartingBalance, extracted.EndingBalance, periodStart, periodEnd)
	if err != nil {
		return nil, err
	}
	stmt.AccountType = extracted.AccountType
	if err := stmt.SetFacilityTerms(extracted.TenorMonths, extracted.InterestRate, extracted.AvailableLimit); err != nil {
		return nil, err
	}

	for i := range result.Transactions {
		txn := &result.Transactions[i]
		if txn.Amount.IsZero() {
			continue
		}
		date, err := txn.ParsedDate()
		if err != nil {
			s.logger.Warn("Skipping transaction with unparseable date",
				zap.String("file_name", file.Name),
				zap.String("date", txn.Date),
				zap.String("description", txn.Description))
			continue
		}
		credit, debit := txn.Amounts()
		added, err := stmt.AddTransaction(date, credit, debit, txn.Description, txn.EntityName)
		if err != nil {
			return nil, err
		}
		added.Category = txn.Category
	}

	stmt.Validate()
	s.uploadDocument(ctx, companyID, stmt, file)

	if err := s.statementRepo.Save(ctx, stmt); err != nil {
		return nil, err
	}

	s.logger.Info("Ingested statement",
		zap.String("statement_id", stmt.ID.String()),
		zap.String("account_number", stmt.AccountNumber),
		zap.String("validation_status", string(stmt.ValidationStatus)),
		zap.Int("transactions", len(stmt.Transactions)))
	return stmt, nil
}

// uploadDocument stores the source PDF. Upload failures leave the statement
// without a document key rather than failing the ingestion.
func (s *Service) uploadDocument(ctx context.Context, companyID uuid.UUID, stmt *banking.Statement, file ingest.File) {
	if s.storage == nil {
		return
	}

	key := fmt.Sprintf("statements/%s/%s/%s", companyID, stmt.ID, sanitizeFileName(file.Name))
	if err := s.storage.Upload(ctx, key, file.Data, documentContentType); err != nil {
		s.logger.Warn("Failed to upload statement document",
			zap.String("statement_id", stmt.ID.String()),
			zap.String("storage_key", key),
			zap.Error(err))
		return
	}
	stmt.DocumentKey = key
}

// sanitizeFileName keeps the base name and replaces characters that are
// awkward in object keys
func sanitizeFileName(name string) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) || base == "" {
		return "statement.pdf"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, base)
}
