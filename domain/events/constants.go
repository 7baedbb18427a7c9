package events

// Event sources - These define where events originate from
const (
	// SourceAgent is the orchestration agent source
	SourceAgent = "chartfusion.agent"
)

// Event types - These define the types of events in the system
const (
	// Element events
	TypeElementCreated = "element.created"
	TypeElementMoved   = "element.moved"
	TypeElementUpdated = "element.updated"
	TypeElementRemoved = "element.removed"

	// Canvas events
	TypeCanvasOrganized = "canvas.organized"
	TypeZonesCreated    = "canvas.zones.created"

	// Batch events
	TypeBatchStarted   = "batch.started"
	TypeBatchCompleted = "batch.completed"

	// Limiter events
	TypeQuotaExhausted = "limiter.quota.exhausted"
)

// Event detail keys - Common keys used in event details
const (
	DetailElementID = "elementId"
	DetailKind      = "kind"
	DetailStrategy  = "strategy"
	DetailBatchSize = "batchSize"
)
