package ai

import (
	"context"
	"fmt"
	"hash/fnv"
	"strings"

	"go.uber.org/zap"

	"chartfusion-agent/application/ports"
)

// Stub serves deterministic canned responses when no AI backend is
// configured. It keeps development and scripted runs fully offline; the
// daemon refuses to start in production without a real backend.
type Stub struct {
	logger *zap.Logger
}

var _ ports.AIService = (*Stub)(nil)

// NewStub creates an offline AI service
func NewStub(logger *zap.Logger) *Stub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stub{logger: logger}
}

// Query echoes the question with a canned preamble
func (s *Stub) Query(ctx context.Context, prompt string, canvasContext string) (*ports.AIResult, error) {
	s.logger.Debug("AI stub answering query", zap.String("prompt", prompt))
	return &ports.AIResult{
		Text: fmt.Sprintf("No AI backend is configured. Your question was: %s", prompt),
	}, nil
}

// GenerateInsights produces a fixed-shape narrative from the chart fields
func (s *Stub) GenerateInsights(ctx context.Context, chartTitle string, dimensions, measures []string, userContext string) (*ports.AIResult, error) {
	s.logger.Debug("AI stub generating insights", zap.String("chart", chartTitle))
	return &ports.AIResult{
		Text: fmt.Sprintf("%q plots %s across %s. Connect an AI backend for a real narrative.",
			chartTitle, strings.Join(measures, ", "), strings.Join(dimensions, ", ")),
	}, nil
}

// CalculateMetric returns a stable pseudo-value so repeated runs of the
// same script produce the same canvas.
func (s *Stub) CalculateMetric(ctx context.Context, metric string, datasetID string) (float64, error) {
	h := fnv.New32a()
	h.Write([]byte(metric + ":" + datasetID))
	value := float64(h.Sum32()%1000000) / 100.0
	s.logger.Debug("AI stub computed metric", zap.String("metric", metric), zap.Float64("value", value))
	return value, nil
}
