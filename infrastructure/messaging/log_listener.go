package messaging

import (
	"context"

	"go.uber.org/zap"

	"chartfusion-agent/application/ports"
	"chartfusion-agent/domain/events"
)

// LogListener writes every domain event to the structured log. It subscribes
// with WildcardType and is the audit trail of what the agent did to the canvas.
type LogListener struct {
	logger  *zap.Logger
	enabled bool
}

var _ ports.EventHandler = (*LogListener)(nil)

// NewLogListener creates a log listener
func NewLogListener(logger *zap.Logger) *LogListener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogListener{
		logger:  logger,
		enabled: true,
	}
}

// SetEnabled enables or disables the listener
func (l *LogListener) SetEnabled(enabled bool) {
	l.enabled = enabled
	if enabled {
		l.logger.Info("Event log listener enabled")
	} else {
		l.logger.Info("Event log listener disabled")
	}
}

// Handle logs one domain event
func (l *LogListener) Handle(_ context.Context, event events.DomainEvent) error {
	if !l.enabled {
		return nil
	}

	l.logger.Info("Domain event",
		zap.String("eventType", event.GetEventType()),
		zap.String("aggregateId", event.GetAggregateID()),
		zap.Time("occurredAt", event.GetTimestamp()),
	)
	return nil
}

// CanHandle accepts every event type
func (l *LogListener) CanHandle(string) bool {
	return true
}
