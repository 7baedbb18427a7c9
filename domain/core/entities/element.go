package entities

import (
	"strings"
	"time"

	"chartfusion-agent/domain/core/valueobjects"
	"chartfusion-agent/domain/events"
	pkgerrors "chartfusion-agent/pkg/errors"
)

// CanvasElement is the main entity representing one item on the canvas.
// This is a rich domain model with encapsulated business logic: position
// and payload are mutated only through methods that record domain events.
type CanvasElement struct {
	// Private fields ensure encapsulation
	id        valueobjects.ElementID
	kind      ElementKind
	title     string
	position  valueobjects.Position
	size      valueobjects.Size
	chart     *valueobjects.ChartSpec
	payload   map[string]interface{}
	createdAt time.Time
	updatedAt time.Time
	version   int

	// Domain events that occurred during this aggregate's lifetime
	events []events.DomainEvent
}

// NewElement creates a new canvas element with full business rule validation
func NewElement(kind ElementKind, title string, position valueobjects.Position, size valueobjects.Size) (*CanvasElement, error) {
	if !kind.IsValid() {
		return nil, pkgerrors.NewValidationf("unknown element kind: %q", kind)
	}
	if strings.TrimSpace(title) == "" {
		return nil, pkgerrors.NewValidation("element title cannot be empty")
	}

	now := time.Now()
	el := &CanvasElement{
		id:        valueobjects.NewElementID(),
		kind:      kind,
		title:     title,
		position:  position,
		size:      size,
		payload:   make(map[string]interface{}),
		createdAt: now,
		updatedAt: now,
		version:   1,
		events:    []events.DomainEvent{},
	}

	el.addEvent(events.NewElementCreated(
		el.id.String(),
		kind.String(),
		title,
		position.X(),
		position.Y(),
		now,
	))

	return el, nil
}

// NewChartElement creates a chart element carrying its structural spec
func NewChartElement(spec valueobjects.ChartSpec, position valueobjects.Position, size valueobjects.Size) (*CanvasElement, error) {
	el, err := NewElement(KindChart, spec.Title(), position, size)
	if err != nil {
		return nil, err
	}
	el.chart = &spec
	return el, nil
}

// NewKPIElement creates a KPI card for a single computed metric
func NewKPIElement(title, metric string, value float64, position valueobjects.Position, size valueobjects.Size) (*CanvasElement, error) {
	el, err := NewElement(KindKPI, title, position, size)
	if err != nil {
		return nil, err
	}
	el.payload["metric"] = metric
	el.payload["value"] = value
	return el, nil
}

// ReconstructElement rebuilds an element from stored state with preserved timestamps
func ReconstructElement(
	id valueobjects.ElementID,
	kind ElementKind,
	title string,
	position valueobjects.Position,
	size valueobjects.Size,
	chart *valueobjects.ChartSpec,
	payload map[string]interface{},
	createdAt, updatedAt time.Time,
	version int,
) (*CanvasElement, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidation("element ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, pkgerrors.NewValidationf("unknown element kind: %q", kind)
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}
	return &CanvasElement{
		id:        id,
		kind:      kind,
		title:     title,
		position:  position,
		size:      size,
		chart:     chart,
		payload:   payload,
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   version,
		events:    []events.DomainEvent{},
	}, nil
}

// ID returns the element's unique identifier
func (e *CanvasElement) ID() valueobjects.ElementID {
	return e.id
}

// Kind returns the element kind
func (e *CanvasElement) Kind() ElementKind {
	return e.kind
}

// Title returns the element title
func (e *CanvasElement) Title() string {
	return e.title
}

// Position returns the element's position
func (e *CanvasElement) Position() valueobjects.Position {
	return e.position
}

// Size returns the element's size
func (e *CanvasElement) Size() valueobjects.Size {
	return e.size
}

// Bounds returns the element's bounding box
func (e *CanvasElement) Bounds() valueobjects.Bounds {
	return valueobjects.NewBounds(e.position, e.size)
}

// Version returns the element's version for optimistic locking
func (e *CanvasElement) Version() int {
	return e.version
}

// ChartSpec returns the chart structure if this element carries one
func (e *CanvasElement) ChartSpec() (valueobjects.ChartSpec, bool) {
	if e.chart == nil {
		return valueobjects.ChartSpec{}, false
	}
	return *e.chart, true
}

// IsChart reports whether this element renders a chart figure
func (e *CanvasElement) IsChart() bool {
	return e.kind == KindChart
}

// IsKPI reports whether this element is a metric card
func (e *CanvasElement) IsKPI() bool {
	return e.kind == KindKPI
}

// MoveTo moves the element to a new position
func (e *CanvasElement) MoveTo(position valueobjects.Position) error {
	if position.Equals(e.position) {
		return nil // No movement needed
	}

	oldPosition := e.position
	e.position = position
	e.updatedAt = time.Now()
	e.version++

	e.addEvent(events.NewElementMoved(
		e.id.String(),
		oldPosition.X(), oldPosition.Y(),
		position.X(), position.Y(),
		e.updatedAt,
	))

	return nil
}

// Resize changes the element's size
func (e *CanvasElement) Resize(size valueobjects.Size) error {
	if size.Equals(e.size) {
		return nil
	}

	e.size = size
	e.updatedAt = time.Now()
	e.version++

	e.addEvent(events.NewElementUpdated(e.id.String(), "size", e.updatedAt))

	return nil
}

// Retitle updates the element title
func (e *CanvasElement) Retitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return pkgerrors.NewValidation("element title cannot be empty")
	}
	if title == e.title {
		return nil
	}

	e.title = title
	e.updatedAt = time.Now()
	e.version++

	e.addEvent(events.NewElementUpdated(e.id.String(), "title", e.updatedAt))

	return nil
}

// SetProperty sets a custom property in the semantic payload
func (e *CanvasElement) SetProperty(key string, value interface{}) {
	e.payload[key] = value
	e.updatedAt = time.Now()
}

// GetProperty retrieves a custom property from the semantic payload
func (e *CanvasElement) GetProperty(key string) (interface{}, bool) {
	val, exists := e.payload[key]
	return val, exists
}

// Payload returns a copy of the semantic payload
func (e *CanvasElement) Payload() map[string]interface{} {
	out := make(map[string]interface{}, len(e.payload))
	for k, v := range e.payload {
		out[k] = v
	}
	return out
}

// KPIValue returns the computed metric value for KPI elements
func (e *CanvasElement) KPIValue() (float64, bool) {
	if e.kind != KindKPI {
		return 0, false
	}
	v, ok := e.payload["value"].(float64)
	return v, ok
}

// SearchText returns the text the grouping heuristics match against:
// the title plus any chart field names.
func (e *CanvasElement) SearchText() string {
	parts := []string{strings.ToLower(e.title)}
	if e.chart != nil {
		parts = append(parts, e.chart.Dimensions()...)
		parts = append(parts, e.chart.Measures()...)
	}
	if metric, ok := e.payload["metric"].(string); ok {
		parts = append(parts, strings.ToLower(metric))
	}
	return strings.Join(parts, " ")
}

// CreatedAt returns when the element was created
func (e *CanvasElement) CreatedAt() time.Time {
	return e.createdAt
}

// UpdatedAt returns when the element was last updated
func (e *CanvasElement) UpdatedAt() time.Time {
	return e.updatedAt
}

// GetUncommittedEvents returns all uncommitted domain events
func (e *CanvasElement) GetUncommittedEvents() []events.DomainEvent {
	return e.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (e *CanvasElement) MarkEventsAsCommitted() {
	e.events = []events.DomainEvent{}
}

// addEvent adds a domain event to the uncommitted list
func (e *CanvasElement) addEvent(event events.DomainEvent) {
	e.events = append(e.events, event)
}
