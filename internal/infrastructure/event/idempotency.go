package event

import (
	"context"
	"sync"
	"time"

	"github.com/qayed/backend/internal/domain/shared"
)

// InMemoryIdempotencyStore tracks processed event IDs in process memory.
// Entries expire after their TTL; expired entries are swept lazily on
// access so the store needs no background goroutine.
type InMemoryIdempotencyStore struct {
	mu      sync.Mutex
	seen    map[string]time.Time
	now     func() time.Time
	lastGC  time.Time
	gcEvery time.Duration
}

// NewInMemoryIdempotencyStore creates an empty store
func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{
		seen:    make(map[string]time.Time),
		now:     time.Now,
		gcEvery: time.Minute,
	}
}

// MarkProcessed records the event ID and returns true when it was not
// already present (or its previous entry had expired)
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, eventID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	if expiry, ok := s.seen[eventID]; ok && expiry.After(now) {
		return false, nil
	}
	s.seen[eventID] = now.Add(ttl)
	return true, nil
}

// IsProcessed reports whether the event ID has a live entry
func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, eventID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiry, ok := s.seen[eventID]
	return ok && expiry.After(s.now()), nil
}

// Close discards all tracked IDs
func (s *InMemoryIdempotencyStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seen = make(map[string]time.Time)
	return nil
}

// sweep drops expired entries, at most once per gcEvery. Caller holds the lock.
func (s *InMemoryIdempotencyStore) sweep(now time.Time) {
	if now.Sub(s.lastGC) < s.gcEvery {
		return
	}
	s.lastGC = now
	for id, expiry := range s.seen {
		if !expiry.After(now) {
			delete(s.seen, id)
		}
	}
}

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
