package ports

import (
	"context"

	"chartfusion-agent/domain/core/entities"
	"chartfusion-agent/domain/core/valueobjects"
	"chartfusion-agent/domain/events"
)

// CanvasRepository defines the interface for the shared canvas document.
// This is a port in hexagonal architecture - the application doesn't know
// whether the canvas lives in memory or behind a drawing surface.
type CanvasRepository interface {
	// Save persists an element (create or update)
	Save(ctx context.Context, element *entities.CanvasElement) error

	// GetByID retrieves an element by its ID
	GetByID(ctx context.Context, id valueobjects.ElementID) (*entities.CanvasElement, error)

	// GetAll retrieves every element on the canvas
	GetAll(ctx context.Context) ([]*entities.CanvasElement, error)

	// GetByKind retrieves all elements of one kind
	GetByKind(ctx context.Context, kind entities.ElementKind) ([]*entities.CanvasElement, error)

	// Delete removes an element
	Delete(ctx context.Context, id valueobjects.ElementID) error

	// Count returns the number of elements on the canvas
	Count(ctx context.Context) (int, error)

	// ViewportCenter returns the point the user is currently looking at
	ViewportCenter(ctx context.Context) (valueobjects.Position, error)

	// SetViewport updates the visible region of the canvas
	SetViewport(ctx context.Context, bounds valueobjects.Bounds) error
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// EventBus defines the interface for publishing and subscribing to domain events
type EventBus interface {
	EventPublisher

	// Subscribe registers a handler for an event type
	Subscribe(eventType string, handler EventHandler) error

	// Unsubscribe removes a handler
	Unsubscribe(eventType string, handler EventHandler) error
}

// EventHandler defines the interface for handling domain events
type EventHandler interface {
	// Handle processes an event
	Handle(ctx context.Context, event events.DomainEvent) error

	// CanHandle checks if this handler can process the event
	CanHandle(eventType string) bool
}

// Cache defines the interface for caching computed artifacts such as chart insights
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}
