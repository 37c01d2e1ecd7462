// Package ai implements bank statement extraction backed by the Gemini API.
// The model receives the raw PDF plus a strict-JSON prompt and returns
// statement metadata and transaction line items; the PDF text itself is never
// parsed locally.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/qayed/backend/internal/infrastructure/config"
)

const (
	// retryBaseDelay is the first backoff interval; it doubles per attempt.
	retryBaseDelay = 1 * time.Second

	pdfMIMEType = "application/pdf"

	dateLayout = "2006-01-02"
)

// ExtractedStatement is the statement-level metadata returned by the model.
type ExtractedStatement struct {
	BankName        string           `json:"bank_name"`
	AccountNumber   string           `json:"account_number"`
	AccountType     *string          `json:"account_type"`
	Currency        string           `json:"currency"`
	StartingBalance decimal.Decimal  `json:"starting_balance"`
	EndingBalance   decimal.Decimal  `json:"ending_balance"`
	PeriodStart     string           `json:"period_start"`
	PeriodEnd       string           `json:"period_end"`
	TenorMonths     *int             `json:"tenor_months"`
	InterestRate    *decimal.Decimal `json:"interest_rate"`
	AvailableLimit  *decimal.Decimal `json:"available_limit"`
}

// Period parses the statement period boundaries
func (s *ExtractedStatement) Period() (start, end time.Time, err error) {
	start, err = time.Parse(dateLayout, s.PeriodStart)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid period start %q: %w", s.PeriodStart, err)
	}
	end, err = time.Parse(dateLayout, s.PeriodEnd)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid period end %q: %w", s.PeriodEnd, err)
	}
	return start, end, nil
}

// ExtractedTransaction is a single line item returned by the model.
// Amount is signed: positive for money in, negative for money out.
type ExtractedTransaction struct {
	Date        string          `json:"date"`
	Description string          `json:"description"`
	EntityName  string          `json:"entity_name"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency"`
	Category    *string         `json:"category"`
}

// ParsedDate parses the transaction date in ISO form
func (t *ExtractedTransaction) ParsedDate() (time.Time, error) {
	d, err := time.Parse(dateLayout, t.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid transaction date %q: %w", t.Date, err)
	}
	return d, nil
}

// Amounts splits the signed amount into the credit/debit pair used by the
// ledger. Exactly one side is non-nil for non-zero amounts.
func (t *ExtractedTransaction) Amounts() (credit, debit *decimal.Decimal) {
	switch {
	case t.Amount.IsPositive():
		v := t.Amount
		return &v, nil
	case t.Amount.IsNegative():
		v := t.Amount.Abs()
		return nil, &v
	default:
		return nil, nil
	}
}

// GeminiExtractor calls the Gemini API to extract statement data from PDFs.
// Calls are retried with doubling backoff up to the configured attempt count.
type GeminiExtractor struct {
	client      *genai.Client
	model       string
	maxAttempts int
	timeout     time.Duration
	logger      *zap.Logger
}

// GeminiExtractorOption configures a GeminiExtractor
type GeminiExtractorOption func(*GeminiExtractor)

// WithLogger sets the logger for the extractor
func WithLogger(logger *zap.Logger) GeminiExtractorOption {
	return func(e *GeminiExtractor) {
		e.logger = logger
	}
}

// NewGeminiExtractor creates an extractor from configuration
func NewGeminiExtractor(ctx context.Context, cfg *config.AIConfig, opts ...GeminiExtractorOption) (*GeminiExtractor, error) {
	if cfg == nil {
		return nil, fmt.Errorf("ai config is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	e := &GeminiExtractor{
		client:      client,
		model:       cfg.Model,
		maxAttempts: cfg.MaxAttempts,
		timeout:     cfg.Timeout,
		logger:      zap.NewNop(),
	}
	if e.model == "" {
		e.model = "gemini-2.0-flash"
	}
	if e.maxAttempts <= 0 {
		e.maxAttempts = 3
	}
	if e.timeout <= 0 {
		e.timeout = 2 * time.Minute
	}

	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// ExtractMetadata asks the model for the statement-level metadata of the
// attached document. The response must be a single JSON object.
func (e *GeminiExtractor) ExtractMetadata(ctx context.Context, pdf []byte) (*ExtractedStatement, error) {
	raw, err := e.generateWithRetry(ctx, metadataPrompt, pdf)
	if err != nil {
		return nil, fmt.Errorf("extract statement metadata: %w", err)
	}
	return parseMetadataResponse(raw)
}

// ExtractTransactions asks the model for the transactions on the given page
// range of the attached document. The response must be a JSON array; an empty
// array means the pages carry no transactions.
func (e *GeminiExtractor) ExtractTransactions(ctx context.Context, pdf []byte, pageStart, pageEnd int) ([]ExtractedTransaction, error) {
	if pageStart < 1 || pageEnd < pageStart {
		return nil, fmt.Errorf("invalid page range %d-%d", pageStart, pageEnd)
	}

	prompt := fmt.Sprintf(transactionsPromptFmt, pageStart, pageEnd)
	raw, err := e.generateWithRetry(ctx, prompt, pdf)
	if err != nil {
		return nil, fmt.Errorf("extract transactions for pages %d-%d: %w", pageStart, pageEnd, err)
	}
	return parseTransactionsResponse(raw)
}

func (e *GeminiExtractor) generateWithRetry(ctx context.Context, prompt string, pdf []byte) (string, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
				{InlineData: &genai.Blob{MIMEType: pdfMIMEType, Data: pdf}},
			},
		},
	}

	delay := retryBaseDelay
	var lastErr error
	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		if attempt > 1 {
			e.logger.Warn("Retrying statement extraction",
				zap.Int("attempt", attempt),
				zap.Duration("backoff", delay),
				zap.Error(lastErr))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		text, err := e.generateOnce(ctx, contents)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d attempts: %w", e.maxAttempts, lastErr)
}

func (e *GeminiExtractor) generateOnce(ctx context.Context, contents []*genai.Content) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resp, err := e.client.Models.GenerateContent(callCtx, e.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty response from model %s", e.model)
	}
	return text, nil
}

func parseMetadataResponse(raw string) (*ExtractedStatement, error) {
	clean := cleanModelJSON(raw, '{', '}')

	var stmt ExtractedStatement
	if err := json.Unmarshal([]byte(clean), &stmt); err != nil {
		return nil, fmt.Errorf("unmarshal statement metadata: %w", err)
	}
	if stmt.BankName == "" || stmt.AccountNumber == "" {
		return nil, fmt.Errorf("model response missing bank name or account number")
	}
	return &stmt, nil
}

func parseTransactionsResponse(raw string) ([]ExtractedTransaction, error) {
	clean := cleanModelJSON(raw, '[', ']')

	var txns []ExtractedTransaction
	if err := json.Unmarshal([]byte(clean), &txns); err != nil {
		return nil, fmt.Errorf("unmarshal transactions: %w", err)
	}
	return txns, nil
}

// cleanModelJSON strips Markdown fences and surrounding prose the model may
// emit despite instructions, keeping only the span from the first open
// delimiter to the last close delimiter.
func cleanModelJSON(raw string, open, closing byte) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}
	s = strings.TrimSpace(s)

	if start := strings.IndexByte(s, open); start != -1 {
		if end := strings.LastIndexByte(s, closing); end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}
	return s
}
