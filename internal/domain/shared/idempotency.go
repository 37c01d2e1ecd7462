package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers delivered event IDs so a re-published
// event is dispatched to handlers at most once within the TTL window.
type IdempotencyStore interface {
	// MarkProcessed records the event ID, returning false when a live
	// entry already exists (the event was seen before)
	MarkProcessed(ctx context.Context, eventID string, ttl time.Duration) (bool, error)

	IsProcessed(ctx context.Context, eventID string) (bool, error)

	Close() error
}

// IdempotencyConfig controls duplicate suppression on the event bus.
type IdempotencyConfig struct {
	// TTL bounds how long an event ID is remembered; after it lapses
	// the same ID is treated as new again
	TTL time.Duration

	Enabled bool
}

// DefaultIdempotencyConfig remembers events for a day
func DefaultIdempotencyConfig() IdempotencyConfig {
	return IdempotencyConfig{
		TTL:     24 * time.Hour,
		Enabled: true,
	}
}
