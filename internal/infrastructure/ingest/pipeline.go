// Package ingest runs statement extraction over uploaded documents through a
// bounded worker pool, reporting progress as a stream of events.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/qayed/backend/internal/infrastructure/ai"
	"github.com/qayed/backend/internal/infrastructure/config"
)

// EventType identifies a progress frame emitted by the pipeline
type EventType string

const (
	EventStatus        EventType = "status"
	EventFileStart     EventType = "file_start"
	EventChunkComplete EventType = "chunk_complete"
	EventFileComplete  EventType = "file_complete"
	EventComplete      EventType = "complete"
	EventError         EventType = "error"
)

// Event is a single progress frame. Frames are serialized to the client as
// SSE data payloads; only fields relevant to the frame type are set.
type Event struct {
	Type         EventType `json:"type"`
	Message      string    `json:"message,omitempty"`
	FileName     string    `json:"file_name,omitempty"`
	FileIndex    int       `json:"file_index,omitempty"`
	FileCount    int       `json:"file_count,omitempty"`
	ChunkIndex   int       `json:"chunk_index,omitempty"`
	ChunkCount   int       `json:"chunk_count,omitempty"`
	Transactions int       `json:"transactions,omitempty"`
	StatementID  string    `json:"statement_id,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// EmitFunc receives progress frames as the pipeline advances
type EmitFunc func(Event)

// File is one uploaded document to extract
type File struct {
	Name string
	Data []byte
}

// FileResult accumulates everything extracted from one file. Err carries the
// failures encountered for the file; a result can hold transactions and an
// error at the same time when only some chunks failed.
type FileResult struct {
	FileName     string
	Statement    *ai.ExtractedStatement
	Transactions []ai.ExtractedTransaction
	Err          error
}

// Extractor is the model-backed extraction client the pipeline drives
type Extractor interface {
	ExtractMetadata(ctx context.Context, pdf []byte) (*ai.ExtractedStatement, error)
	ExtractTransactions(ctx context.Context, pdf []byte, pageStart, pageEnd int) ([]ai.ExtractedTransaction, error)
}

var _ Extractor = (*ai.GeminiExtractor)(nil)

// Pipeline fans statement extraction out over a worker pool. Pool size
// defaults to one worker so chunk calls stay within provider rate limits; a
// fixed delay separates chunk submissions for the same reason.
type Pipeline struct {
	extractor  Extractor
	pool       *ants.Pool
	chunkSize  int
	chunkDelay time.Duration
	logger     *zap.Logger
}

// PipelineOption configures a Pipeline
type PipelineOption func(*Pipeline)

// WithLogger sets the logger for the pipeline
func WithLogger(logger *zap.Logger) PipelineOption {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// NewPipeline creates an extraction pipeline with its own worker pool
func NewPipeline(extractor Extractor, cfg *config.IngestConfig, opts ...PipelineOption) (*Pipeline, error) {
	if extractor == nil {
		return nil, fmt.Errorf("extractor is required")
	}
	if cfg == nil {
		return nil, fmt.Errorf("ingest config is required")
	}

	poolSize := cfg.WorkerPoolSize
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	p := &Pipeline{
		extractor:  extractor,
		pool:       pool,
		chunkSize:  cfg.ChunkSize,
		chunkDelay: cfg.ChunkDelay,
		logger:     zap.NewNop(),
	}
	if p.chunkSize < 1 {
		p.chunkSize = 5
	}

	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Close releases the worker pool
func (p *Pipeline) Close() {
	p.pool.Release()
}

// Running returns the number of busy workers
func (p *Pipeline) Running() int {
	return p.pool.Running()
}

// Process extracts every file in the batch, emitting file_start,
// chunk_complete and file_complete frames as it goes. It always returns one
// result per file: a failed file is recorded on its result and the batch
// continues. The returned error is non-nil only when the context ended before
// the batch finished.
func (p *Pipeline) Process(ctx context.Context, files []File, emit EmitFunc) ([]FileResult, error) {
	results := make([]FileResult, 0, len(files))

	for i, file := range files {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		emit(Event{
			Type:      EventFileStart,
			FileName:  file.Name,
			FileIndex: i + 1,
			FileCount: len(files),
		})

		result := p.processFile(ctx, file, emit)
		results = append(results, result)

		txnCount := len(result.Transactions)
		evt := Event{
			Type:         EventFileComplete,
			FileName:     file.Name,
			FileIndex:    i + 1,
			FileCount:    len(files),
			Transactions: txnCount,
		}
		if result.Err != nil {
			evt.Error = result.Err.Error()
			p.logger.Warn("Statement extraction finished with errors",
				zap.String("file_name", file.Name),
				zap.Int("transactions", txnCount),
				zap.Error(result.Err))
		} else {
			p.logger.Info("Statement extraction finished",
				zap.String("file_name", file.Name),
				zap.Int("transactions", txnCount))
		}
		emit(evt)
	}
	return results, nil
}

func (p *Pipeline) processFile(ctx context.Context, file File, emit EmitFunc) FileResult {
	result := FileResult{FileName: file.Name}

	stmt, err := p.extractor.ExtractMetadata(ctx, file.Data)
	if err != nil {
		result.Err = fmt.Errorf("metadata: %w", err)
		return result
	}
	result.Statement = stmt

	chunks := PageChunks(CountPages(file.Data), p.chunkSize)
	var chunkErrs []error

	for i, chunk := range chunks {
		if i > 0 && p.chunkDelay > 0 {
			select {
			case <-ctx.Done():
				result.Err = errors.Join(append(chunkErrs, ctx.Err())...)
				return result
			case <-time.After(p.chunkDelay):
			}
		}

		txns, err := p.extractChunk(ctx, file.Data, chunk)
		if err != nil {
			chunkErrs = append(chunkErrs, fmt.Errorf("pages %d-%d: %w", chunk.Start, chunk.End, err))
			continue
		}
		result.Transactions = append(result.Transactions, txns...)

		emit(Event{
			Type:         EventChunkComplete,
			FileName:     file.Name,
			ChunkIndex:   i + 1,
			ChunkCount:   len(chunks),
			Transactions: len(txns),
		})
	}

	result.Err = errors.Join(chunkErrs...)
	return result
}

// extractChunk runs one chunk on the worker pool and waits for its outcome
func (p *Pipeline) extractChunk(ctx context.Context, pdf []byte, chunk PageRange) ([]ai.ExtractedTransaction, error) {
	type chunkOutcome struct {
		txns []ai.ExtractedTransaction
		err  error
	}
	resultChan := make(chan chunkOutcome, 1)

	if err := p.pool.Submit(func() {
		txns, err := p.extractor.ExtractTransactions(ctx, pdf, chunk.Start, chunk.End)
		resultChan <- chunkOutcome{txns: txns, err: err}
	}); err != nil {
		return nil, fmt.Errorf("submit to worker pool: %w", err)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case outcome := <-resultChan:
		return outcome.txns, outcome.err
	}
}
