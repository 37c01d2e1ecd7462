// Package event provides the in-process event bus that carries domain
// events between application services, e.g. recurring payment changes
// triggering projection refreshes.
package event

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/qayed/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus delivers domain events synchronously to subscribed
// handlers. Duplicate deliveries are suppressed through an idempotency
// store keyed by event ID; aggregates that re-publish on retry (for
// example after an optimistic lock conflict) therefore do not trigger a
// second projection refresh.
type InMemoryEventBus struct {
	mu          sync.RWMutex
	byType      map[string][]shared.EventHandler
	allEvents   []shared.EventHandler
	idempotency shared.IdempotencyStore
	idemCfg     shared.IdempotencyConfig
	logger      *zap.Logger
	running     atomic.Bool
}

// BusOption configures the event bus
type BusOption func(*InMemoryEventBus)

// WithIdempotencyStore enables duplicate suppression for published events
func WithIdempotencyStore(store shared.IdempotencyStore, cfg shared.IdempotencyConfig) BusOption {
	return func(b *InMemoryEventBus) {
		b.idempotency = store
		b.idemCfg = cfg
	}
}

// NewInMemoryEventBus creates a new in-memory event bus
func NewInMemoryEventBus(logger *zap.Logger, opts ...BusOption) *InMemoryEventBus {
	b := &InMemoryEventBus{
		byType:  make(map[string][]shared.EventHandler),
		idemCfg: shared.DefaultIdempotencyConfig(),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish delivers events to all matching handlers. A handler failure is
// logged and does not stop delivery to the remaining handlers.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, evt := range events {
		if b.alreadyProcessed(ctx, evt) {
			continue
		}

		for _, handler := range b.handlersFor(evt.EventType()) {
			if err := b.dispatch(ctx, handler, evt); err != nil {
				b.logger.Error("event handler failed",
					zap.String("event_type", evt.EventType()),
					zap.String("event_id", evt.EventID().String()),
					zap.Error(err),
				)
			}
		}
	}
	return nil
}

// Subscribe registers a handler. Without explicit event types the handler's
// own EventTypes() decide the subscription; an empty result subscribes the
// handler to every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if len(eventTypes) == 0 {
		b.allEvents = append(b.allEvents, handler)
	} else {
		for _, t := range eventTypes {
			b.byType[t] = append(b.byType[t], handler)
		}
	}
	b.logger.Debug("event handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler from every subscription
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.allEvents = without(b.allEvents, handler)
	for t, handlers := range b.byType {
		b.byType[t] = without(handlers, handler)
		if len(b.byType[t]) == 0 {
			delete(b.byType, t)
		}
	}
	b.logger.Debug("event handler unsubscribed")
}

// Start marks the bus as running
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.running.Store(true)
	b.logger.Info("event bus started")
	return nil
}

// Stop stops the event bus and closes the idempotency store
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.running.Store(false)
	if b.idempotency != nil {
		if err := b.idempotency.Close(); err != nil {
			b.logger.Warn("failed to close idempotency store", zap.Error(err))
		}
	}
	b.logger.Info("event bus stopped")
	return nil
}

// alreadyProcessed marks the event in the idempotency store and reports
// whether it was seen before. Store failures fall back to delivering the
// event: a duplicate refresh is cheaper than a lost one.
func (b *InMemoryEventBus) alreadyProcessed(ctx context.Context, evt shared.DomainEvent) bool {
	if b.idempotency == nil || !b.idemCfg.Enabled {
		return false
	}

	fresh, err := b.idempotency.MarkProcessed(ctx, evt.EventID().String(), b.idemCfg.TTL)
	if err != nil {
		b.logger.Warn("idempotency check failed, delivering anyway",
			zap.String("event_id", evt.EventID().String()),
			zap.Error(err),
		)
		return false
	}
	if !fresh {
		b.logger.Debug("duplicate event suppressed",
			zap.String("event_type", evt.EventType()),
			zap.String("event_id", evt.EventID().String()),
		)
	}
	return !fresh
}

func (b *InMemoryEventBus) handlersFor(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	matched := b.byType[eventType]
	out := make([]shared.EventHandler, 0, len(matched)+len(b.allEvents))
	out = append(out, matched...)
	out = append(out, b.allEvents...)
	return out
}

// dispatch isolates handler panics so one misbehaving subscriber cannot
// take down the publisher
func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, evt shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("event handler panicked",
				zap.String("event_type", evt.EventType()),
				zap.Any("panic", r),
			)
		}
	}()

	return handler.Handle(ctx, evt)
}

func without(handlers []shared.EventHandler, target shared.EventHandler) []shared.EventHandler {
	out := handlers[:0:0]
	for _, h := range handlers {
		if h != target {
			out = append(out, h)
		}
	}
	return out
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
