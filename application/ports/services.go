package ports

import (
	"context"
	"encoding/json"
	"time"
)

// ChartArtifact is what the chart rendering backend returns for a new chart:
// an opaque table-to-figure transform result plus identifying metadata.
type ChartArtifact struct {
	RemoteID string
	Title    string
	Table    json.RawMessage
}

// ChartService is the opaque chart-figure rendering backend
type ChartService interface {
	// CreateChart renders a figure for the given field selection
	CreateChart(ctx context.Context, datasetID string, dimensions, measures []string) (*ChartArtifact, error)
}

// AIResult is a response from the AI backend
type AIResult struct {
	Text  string
	Value float64
	Data  map[string]interface{}
}

// AIService is the upstream generative backend. Every call through this port
// counts against the external rate and quota ceilings.
type AIService interface {
	// Query answers a free-form question about the canvas
	Query(ctx context.Context, prompt string, canvasContext string) (*AIResult, error)

	// GenerateInsights produces a narrative summary for one chart
	GenerateInsights(ctx context.Context, chartTitle string, dimensions, measures []string, userContext string) (*AIResult, error)

	// CalculateMetric computes a single KPI value
	CalculateMetric(ctx context.Context, metric string, datasetID string) (float64, error)
}

// LimiterMetrics is a read-only snapshot of admission-control state
type LimiterMetrics struct {
	RequestsThisMinute int
	RequestsToday      int
	PerMinuteCeiling   int
	DailyCeiling       int
	CurrentBackoff     time.Duration
}

// AdmissionController gates API-bound work behind per-minute and per-day
// call ceilings with adaptive backoff. Implementations must serialize all
// admission checks and counter updates.
type AdmissionController interface {
	// ExecuteWithRateLimit waits for admission, runs work, and accounts the
	// outcome. It fails fast without invoking work when the daily quota is
	// spent, and never retries internally.
	ExecuteWithRateLimit(ctx context.Context, kind string, work func(context.Context) error) error

	// Metrics returns a side-effect-free snapshot of the limiter state
	Metrics() LimiterMetrics
}
