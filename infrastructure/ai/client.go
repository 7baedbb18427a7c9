// Package ai is the HTTP adapter for the upstream generative backend. All
// traffic passes through a circuit breaker, and upstream statuses map onto
// the application error taxonomy: 429 means throttled, 5xx and transport
// failures mean remote-service, auth rejections mean configuration.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"chartfusion-agent/application/ports"
	pkgerrors "chartfusion-agent/pkg/errors"
)

const tracerName = "chartfusion-agent/infrastructure/ai"

// Config holds the AI backend connection settings
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client calls the generative backend over HTTP
type Client struct {
	httpClient *http.Client
	config     *Config
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

var _ ports.AIService = (*Client)(nil)

// NewClient creates an AI backend client with circuit breaking
func NewClient(cfg *Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ai-backend",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     60 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 5 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			// Throttling is the upstream protecting itself, not an outage;
			// it must not push the breaker open.
			return err == nil || pkgerrors.IsThrottled(err)
		},
	})

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		config:     cfg,
		breaker:    breaker,
		logger:     logger,
	}
}

// Query answers a free-form question grounded in the canvas summary
func (c *Client) Query(ctx context.Context, prompt string, canvasContext string) (*ports.AIResult, error) {
	full := prompt
	if canvasContext != "" {
		full = canvasContext + "\n\nQuestion: " + prompt
	}
	resp, err := c.complete(ctx, "query", full)
	if err != nil {
		return nil, err
	}
	return resp.toResult(), nil
}

// GenerateInsights produces a narrative summary for one chart
func (c *Client) GenerateInsights(ctx context.Context, chartTitle string, dimensions, measures []string, userContext string) (*ports.AIResult, error) {
	prompt := fmt.Sprintf(
		"Summarize the key findings of the chart %q (dimensions: %v, measures: %v) in two or three sentences.",
		chartTitle, dimensions, measures)
	if userContext != "" {
		prompt += " Focus on: " + userContext
	}
	resp, err := c.complete(ctx, "insights", prompt)
	if err != nil {
		return nil, err
	}
	return resp.toResult(), nil
}

// CalculateMetric computes a single KPI value
func (c *Client) CalculateMetric(ctx context.Context, metric string, datasetID string) (float64, error) {
	prompt := fmt.Sprintf("Compute the metric %q over dataset %q and return only the numeric result.", metric, datasetID)
	resp, err := c.complete(ctx, "metric", prompt)
	if err != nil {
		return 0, err
	}
	if resp.Value == nil {
		return 0, pkgerrors.NewRemote("AI backend returned no numeric value for metric "+metric, nil)
	}
	return *resp.Value, nil
}

type completionRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type completionResponse struct {
	Text  string                 `json:"text"`
	Value *float64               `json:"value"`
	Data  map[string]interface{} `json:"data,omitempty"`
}

func (r *completionResponse) toResult() *ports.AIResult {
	result := &ports.AIResult{Text: r.Text, Data: r.Data}
	if r.Value != nil {
		result.Value = *r.Value
	}
	return result
}

// complete performs one completion round trip through the breaker
func (c *Client) complete(ctx context.Context, operation, prompt string) (*completionResponse, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "ai."+operation)
	defer span.End()
	span.SetAttributes(
		attribute.String("ai.operation", operation),
		attribute.Int("ai.prompt_length", len(prompt)),
	)

	raw, err := c.breaker.Execute(func() (interface{}, error) {
		return c.post(ctx, prompt)
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		switch err {
		case gobreaker.ErrOpenState, gobreaker.ErrTooManyRequests:
			return nil, pkgerrors.NewRemote("AI backend circuit open, request rejected locally", err)
		}
		return nil, err
	}

	resp := raw.(*completionResponse)
	span.SetAttributes(attribute.Int("ai.response_length", len(resp.Text)))
	return resp, nil
}

func (c *Client) post(ctx context.Context, prompt string) (*completionResponse, error) {
	body, err := json.Marshal(completionRequest{Model: c.config.Model, Prompt: prompt})
	if err != nil {
		return nil, pkgerrors.NewInternal("encode AI request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/v1/complete", bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.NewInternal("build AI request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.NewRemote("AI backend unreachable", err)
	}
	defer resp.Body.Close()

	if err := statusToError(resp); err != nil {
		return nil, err
	}

	var decoded completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, pkgerrors.NewRemote("AI backend returned malformed response", err)
	}
	return &decoded, nil
}

// statusToError maps an upstream HTTP status onto the error taxonomy
func statusToError(resp *http.Response) error {
	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return pkgerrors.NewThrottled("AI backend throttled the request (429)", nil)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return pkgerrors.NewConfiguration(fmt.Sprintf("AI backend rejected credentials (%d)", resp.StatusCode))
	default:
		detail := readErrorBody(resp.Body)
		return pkgerrors.NewRemote(fmt.Sprintf("AI backend returned %d: %s", resp.StatusCode, detail), nil)
	}
}

func readErrorBody(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 512))
	if err != nil || len(data) == 0 {
		return "no detail"
	}
	return string(data)
}
