package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qayed/backend/internal/infrastructure/ai"
	"github.com/qayed/backend/internal/infrastructure/config"
)

func TestCountPages(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		expected int
	}{
		{
			name:     "spaced markers",
			data:     "<< /Type /Pages /Count 3 >> << /Type /Page >> << /Type /Page >> << /Type /Page >>",
			expected: 3,
		},
		{
			name:     "compact markers",
			data:     "<</Type/Pages>><</Type/Page>><</Type/Page>>",
			expected: 2,
		},
		{
			name:     "page tree root alone counts as one page",
			data:     "<< /Type /Pages >>",
			expected: 1,
		},
		{
			name:     "no markers treated as single page",
			data:     "plain bytes",
			expected: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CountPages([]byte(tt.data)))
		})
	}
}

func TestPageChunks(t *testing.T) {
	tests := []struct {
		name       string
		totalPages int
		chunkSize  int
		expected   []PageRange
	}{
		{
			name:       "even split",
			totalPages: 10,
			chunkSize:  5,
			expected:   []PageRange{{1, 5}, {6, 10}},
		},
		{
			name:       "short tail chunk",
			totalPages: 7,
			chunkSize:  3,
			expected:   []PageRange{{1, 3}, {4, 6}, {7, 7}},
		},
		{
			name:       "single chunk covers everything",
			totalPages: 4,
			chunkSize:  50,
			expected:   []PageRange{{1, 4}},
		},
		{
			name:       "zero chunk size falls back to one chunk",
			totalPages: 3,
			chunkSize:  0,
			expected:   []PageRange{{1, 3}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, PageChunks(tt.totalPages, tt.chunkSize))
		})
	}
}

// fakeExtractor returns canned metadata and one transaction per requested
// page, failing files and page ranges on demand.
type fakeExtractor struct {
	mu            sync.Mutex
	failMetadata  bool
	failPageStart int // fail chunks starting at this page; 0 disables
	calls         int
}

func (f *fakeExtractor) ExtractMetadata(_ context.Context, _ []byte) (*ai.ExtractedStatement, error) {
	if f.failMetadata {
		return nil, errors.New("model unavailable")
	}
	return &ai.ExtractedStatement{
		BankName:      "Saudi National Bank",
		AccountNumber: "1234567890",
		Currency:      "SAR",
		PeriodStart:   "2026-01-01",
		PeriodEnd:     "2026-01-31",
	}, nil
}

func (f *fakeExtractor) ExtractTransactions(_ context.Context, _ []byte, pageStart, pageEnd int) ([]ai.ExtractedTransaction, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.failPageStart != 0 && pageStart == f.failPageStart {
		return nil, errors.New("model unavailable")
	}

	var txns []ai.ExtractedTransaction
	for page := pageStart; page <= pageEnd; page++ {
		txns = append(txns, ai.ExtractedTransaction{
			Date:        "2026-01-15",
			Description: fmt.Sprintf("txn page %d", page),
			Amount:      decimal.NewFromInt(int64(page * 100)),
			Currency:    "SAR",
		})
	}
	return txns, nil
}

func pdfWithPages(n int) []byte {
	var b strings.Builder
	b.WriteString("<< /Type /Pages >>")
	for i := 0; i < n; i++ {
		b.WriteString("<< /Type /Page >>")
	}
	return []byte(b.String())
}

func newTestPipeline(t *testing.T, extractor Extractor) *Pipeline {
	t.Helper()
	p, err := NewPipeline(extractor, &config.IngestConfig{
		WorkerPoolSize: 1,
		ChunkSize:      2,
		ChunkDelay:     time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(p.Close)
	return p
}

func TestPipeline_Process(t *testing.T) {
	extractor := &fakeExtractor{}
	p := newTestPipeline(t, extractor)

	var events []Event
	results, err := p.Process(context.Background(), []File{
		{Name: "january.pdf", Data: pdfWithPages(4)},
	}, func(e Event) { events = append(events, e) })

	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	require.NotNil(t, results[0].Statement)
	assert.Equal(t, "Saudi National Bank", results[0].Statement.BankName)

	// 4 pages with chunk size 2 give two chunks of two transactions each
	assert.Len(t, results[0].Transactions, 4)
	assert.Equal(t, 2, extractor.calls)

	var types []EventType
	for _, e := range events {
		types = append(types, e.Type)
	}
	assert.Equal(t, []EventType{EventFileStart, EventChunkComplete, EventChunkComplete, EventFileComplete}, types)

	last := events[len(events)-1]
	assert.Equal(t, "january.pdf", last.FileName)
	assert.Equal(t, 4, last.Transactions)
	assert.Empty(t, last.Error)
}

func TestPipeline_Process_FileFailureDoesNotAbortBatch(t *testing.T) {
	extractor := &fakeExtractor{failMetadata: true}
	p := newTestPipeline(t, extractor)

	var events []Event
	results, err := p.Process(context.Background(), []File{
		{Name: "broken.pdf", Data: pdfWithPages(1)},
		{Name: "fine.pdf", Data: pdfWithPages(1)},
	}, func(e Event) { events = append(events, e) })

	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Error(t, results[0].Err)
	assert.Error(t, results[1].Err)

	// Both files produced a file_complete frame despite failing
	completes := 0
	for _, e := range events {
		if e.Type == EventFileComplete {
			completes++
			assert.NotEmpty(t, e.Error)
		}
	}
	assert.Equal(t, 2, completes)
}

func TestPipeline_Process_PartialChunkFailure(t *testing.T) {
	extractor := &fakeExtractor{failPageStart: 3}
	p := newTestPipeline(t, extractor)

	results, err := p.Process(context.Background(), []File{
		{Name: "mixed.pdf", Data: pdfWithPages(6)},
	}, func(Event) {})

	require.NoError(t, err)
	require.Len(t, results, 1)

	// chunks 1-2 and 5-6 succeeded, 3-4 failed; the survivors are kept
	assert.Len(t, results[0].Transactions, 4)
	require.Error(t, results[0].Err)
	assert.Contains(t, results[0].Err.Error(), "pages 3-4")
}

func TestPipeline_Process_ContextCancelled(t *testing.T) {
	extractor := &fakeExtractor{}
	p := newTestPipeline(t, extractor)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := p.Process(ctx, []File{
		{Name: "january.pdf", Data: pdfWithPages(2)},
	}, func(Event) {})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, results)
}

func TestNewPipeline_Validation(t *testing.T) {
	_, err := NewPipeline(nil, &config.IngestConfig{})
	assert.ErrorContains(t, err, "extractor is required")

	_, err = NewPipeline(&fakeExtractor{}, nil)
	assert.ErrorContains(t, err, "ingest config is required")
}
