package events

import (
	"time"
)

// ElementCreated is emitted when a new element lands on the canvas
type ElementCreated struct {
	BaseEvent
	ElementID string  `json:"elementId"`
	Kind      string  `json:"kind"`
	Title     string  `json:"title"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// NewElementCreated creates a new element created event
func NewElementCreated(elementID, kind, title string, x, y float64, at time.Time) *ElementCreated {
	return &ElementCreated{
		BaseEvent: BaseEvent{
			AggregateID: elementID,
			EventType:   TypeElementCreated,
			Timestamp:   at,
			Version:     1,
		},
		ElementID: elementID,
		Kind:      kind,
		Title:     title,
		X:         x,
		Y:         y,
	}
}

// ElementMoved is emitted when an element's position changes
type ElementMoved struct {
	BaseEvent
	ElementID string  `json:"elementId"`
	OldX      float64 `json:"oldX"`
	OldY      float64 `json:"oldY"`
	NewX      float64 `json:"newX"`
	NewY      float64 `json:"newY"`
}

// NewElementMoved creates a new element moved event
func NewElementMoved(elementID string, oldX, oldY, newX, newY float64, at time.Time) *ElementMoved {
	return &ElementMoved{
		BaseEvent: BaseEvent{
			AggregateID: elementID,
			EventType:   TypeElementMoved,
			Timestamp:   at,
			Version:     1,
		},
		ElementID: elementID,
		OldX:      oldX,
		OldY:      oldY,
		NewX:      newX,
		NewY:      newY,
	}
}

// ElementUpdated is emitted when an element's payload changes
type ElementUpdated struct {
	BaseEvent
	ElementID string `json:"elementId"`
	Field     string `json:"field"`
}

// NewElementUpdated creates a new element updated event
func NewElementUpdated(elementID, field string, at time.Time) *ElementUpdated {
	return &ElementUpdated{
		BaseEvent: BaseEvent{
			AggregateID: elementID,
			EventType:   TypeElementUpdated,
			Timestamp:   at,
			Version:     1,
		},
		ElementID: elementID,
		Field:     field,
	}
}

// ElementRemoved is emitted when an element leaves the canvas
type ElementRemoved struct {
	BaseEvent
	ElementID string `json:"elementId"`
	Kind      string `json:"kind"`
}

// NewElementRemoved creates a new element removed event
func NewElementRemoved(elementID, kind string, at time.Time) *ElementRemoved {
	return &ElementRemoved{
		BaseEvent: BaseEvent{
			AggregateID: elementID,
			EventType:   TypeElementRemoved,
			Timestamp:   at,
			Version:     1,
		},
		ElementID: elementID,
		Kind:      kind,
	}
}

// CanvasOrganized is emitted after an organize pass repositions elements
type CanvasOrganized struct {
	BaseEvent
	Strategy    string   `json:"strategy"`
	ElementIDs  []string `json:"elementIds"`
	ZoneCount   int      `json:"zoneCount"`
	MovedCount  int      `json:"movedCount"`
	TriggeredBy string   `json:"triggeredBy"`
}

// NewCanvasOrganized creates a new canvas organized event
func NewCanvasOrganized(strategy string, elementIDs []string, zoneCount, movedCount int, triggeredBy string, at time.Time) *CanvasOrganized {
	return &CanvasOrganized{
		BaseEvent: BaseEvent{
			AggregateID: "canvas",
			EventType:   TypeCanvasOrganized,
			Timestamp:   at,
			Version:     1,
		},
		Strategy:    strategy,
		ElementIDs:  elementIDs,
		ZoneCount:   zoneCount,
		MovedCount:  movedCount,
		TriggeredBy: triggeredBy,
	}
}

// ZonesCreated is emitted after a grouping pass tiles elements into zones
type ZonesCreated struct {
	BaseEvent
	Labels       []string `json:"labels"`
	ElementCount int      `json:"elementCount"`
}

// NewZonesCreated creates a new zones created event
func NewZonesCreated(labels []string, elementCount int, at time.Time) *ZonesCreated {
	return &ZonesCreated{
		BaseEvent: BaseEvent{
			AggregateID: "canvas",
			EventType:   TypeZonesCreated,
			Timestamp:   at,
			Version:     1,
		},
		Labels:       labels,
		ElementCount: elementCount,
	}
}

// BatchStarted is emitted when an action batch begins executing
type BatchStarted struct {
	BaseEvent
	BatchID string `json:"batchId"`
	Total   int    `json:"total"`
}

// NewBatchStarted creates a new batch started event
func NewBatchStarted(batchID string, total int, at time.Time) *BatchStarted {
	return &BatchStarted{
		BaseEvent: BaseEvent{
			AggregateID: batchID,
			EventType:   TypeBatchStarted,
			Timestamp:   at,
			Version:     1,
		},
		BatchID: batchID,
		Total:   total,
	}
}

// BatchCompleted is emitted when an action batch finishes
type BatchCompleted struct {
	BaseEvent
	BatchID   string `json:"batchId"`
	Total     int    `json:"total"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}

// NewBatchCompleted creates a new batch completed event
func NewBatchCompleted(batchID string, total, succeeded, failed int, at time.Time) *BatchCompleted {
	return &BatchCompleted{
		BaseEvent: BaseEvent{
			AggregateID: batchID,
			EventType:   TypeBatchCompleted,
			Timestamp:   at,
			Version:     1,
		},
		BatchID:   batchID,
		Total:     total,
		Succeeded: succeeded,
		Failed:    failed,
	}
}

// QuotaExhausted is emitted once when the daily ceiling is first hit
type QuotaExhausted struct {
	BaseEvent
	RequestsToday int `json:"requestsToday"`
	DailyCeiling  int `json:"dailyCeiling"`
}

// NewQuotaExhausted creates a new quota exhausted event
func NewQuotaExhausted(requestsToday, dailyCeiling int, at time.Time) *QuotaExhausted {
	return &QuotaExhausted{
		BaseEvent: BaseEvent{
			AggregateID: "limiter",
			EventType:   TypeQuotaExhausted,
			Timestamp:   at,
			Version:     1,
		},
		RequestsToday: requestsToday,
		DailyCeiling:  dailyCeiling,
	}
}
