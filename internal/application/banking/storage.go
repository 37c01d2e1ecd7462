package banking

import (
	"context"
	"time"
)

// DocumentStorage stores uploaded bank statement documents
type DocumentStorage interface {
	// Upload stores a document under the given key
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error

	// Download retrieves a stored document
	Download(ctx context.Context, storageKey string) ([]byte, error)

	// GenerateDownloadURL generates a presigned URL for downloading a document
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes a stored document
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if a document exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}
