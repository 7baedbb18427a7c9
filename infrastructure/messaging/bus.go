// Package messaging provides the in-process event bus. Batch execution and
// canvas changes publish domain events here; metrics and logging listeners
// subscribe. Delivery is synchronous and best-effort: a failing listener is
// logged, it never fails the operation that raised the event.
package messaging

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"chartfusion-agent/application/ports"
	"chartfusion-agent/domain/events"
	pkgerrors "chartfusion-agent/pkg/errors"
)

// WildcardType subscribes a handler to every event type.
const WildcardType = "*"

// handlerTimeout bounds a single listener invocation so one stuck
// subscriber cannot stall batch completion.
const handlerTimeout = 30 * time.Second

// Bus is a synchronous in-process implementation of EventBus
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]ports.EventHandler
	logger   *zap.Logger
}

var _ ports.EventBus = (*Bus)(nil)

// NewBus creates an event bus
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		handlers: make(map[string][]ports.EventHandler),
		logger:   logger,
	}
}

// Subscribe registers a handler for an event type. Use WildcardType to
// receive every event.
func (b *Bus) Subscribe(eventType string, handler ports.EventHandler) error {
	if handler == nil {
		return pkgerrors.NewValidation("handler cannot be nil")
	}
	if eventType == "" {
		return pkgerrors.NewValidation("event type cannot be empty")
	}
	if !handler.CanHandle(eventType) {
		return pkgerrors.NewConfiguration("handler does not support event type " + eventType)
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	b.logger.Info("Subscribed event handler",
		zap.String("eventType", eventType),
		zap.Int("handlers", len(b.handlers[eventType])),
	)
	return nil
}

// Unsubscribe removes a handler from an event type. Removing a handler
// that was never subscribed is a no-op.
func (b *Bus) Unsubscribe(eventType string, handler ports.EventHandler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	registered := b.handlers[eventType]
	filtered := registered[:0]
	for _, h := range registered {
		if h != handler {
			filtered = append(filtered, h)
		}
	}
	if len(filtered) == 0 {
		delete(b.handlers, eventType)
	} else {
		b.handlers[eventType] = filtered
	}

	b.logger.Info("Unsubscribed event handler", zap.String("eventType", eventType))
	return nil
}

// Publish delivers one event to every matching subscriber. The error is
// non-nil only when every subscriber failed; callers treat it as advisory.
func (b *Bus) Publish(ctx context.Context, event events.DomainEvent) error {
	if event == nil {
		return pkgerrors.NewValidation("event cannot be nil")
	}

	eventType := event.GetEventType()
	subscribers := b.subscribersFor(eventType)
	if len(subscribers) == 0 {
		b.logger.Debug("No subscribers for event", zap.String("eventType", eventType))
		return nil
	}

	var lastErr error
	failed := 0
	for _, handler := range subscribers {
		start := time.Now()
		handlerCtx, cancel := context.WithTimeout(ctx, handlerTimeout)
		err := handler.Handle(handlerCtx, event)
		cancel()

		if err != nil {
			failed++
			lastErr = err
			b.logger.Error("Event handler failed",
				zap.String("eventType", eventType),
				zap.Error(err),
				zap.Duration("duration", time.Since(start)),
			)
			continue
		}
		b.logger.Debug("Event handled",
			zap.String("eventType", eventType),
			zap.Duration("duration", time.Since(start)),
		)
	}

	if failed == len(subscribers) {
		return pkgerrors.Wrap(lastErr, "every subscriber failed for "+eventType)
	}
	return nil
}

// PublishBatch delivers events in order. Failures are counted and logged,
// later events still go out.
func (b *Bus) PublishBatch(ctx context.Context, batch []events.DomainEvent) error {
	if len(batch) == 0 {
		return nil
	}

	var lastErr error
	failed := 0
	for _, event := range batch {
		if err := b.Publish(ctx, event); err != nil {
			failed++
			lastErr = err
		}
	}

	if failed > 0 {
		b.logger.Warn("Batch publish completed with failures",
			zap.Int("total", len(batch)),
			zap.Int("failed", failed),
		)
		return pkgerrors.Wrap(lastErr, "batch publish had failures")
	}
	return nil
}

// subscribersFor snapshots the handlers for a type plus wildcard
// subscribers, so dispatch runs without holding the lock.
func (b *Bus) subscribersFor(eventType string) []ports.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	exact := b.handlers[eventType]
	wild := b.handlers[WildcardType]
	out := make([]ports.EventHandler, 0, len(exact)+len(wild))
	out = append(out, exact...)
	out = append(out, wild...)
	return out
}
