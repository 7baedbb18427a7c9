// Package charts is the HTTP adapter for the chart rendering backend.
package charts

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

const tracerName = "chartfusion-agent/infrastructure/charts"

// Config holds the chart backend connection settings
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// Client renders charts through the remote figure backend
type Client struct {
	httpClient *http.Client
	config     *Config
	breaker    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

var _ ports.ChartService = (*Client)(nil)

// NewClient creates a chart backend client with circuit breaking
func NewClient(cfg *Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "chart-backend",
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

type renderRequest struct {
	DatasetID  string   `json:"datasetId"`
	Dimensions []string `json:"dimensions"`
	Measures   []string `json:"measures"`
}

type renderResponse struct {
	ID    string          `json:"id"`
	Title string          `json:"title"`
	Table json.RawMessage `json:"table"`
}

// CreateChart renders a figure for the given field selection
func (c *Client) CreateChart(ctx context.Context, datasetID string, dimensions, measures []string) (*ports.ChartArtifact, error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "charts.create")
	defer span.End()
	span.SetAttributes(
		attribute.String("chart.dataset", datasetID),
		attribute.StringSlice("chart.dimensions", dimensions),
		attribute.StringSlice("chart.measures", measures),
	)

	raw, err := c.breaker.Execute(func() (interface{}, error) {
		return c.post(ctx, renderRequest{DatasetID: datasetID, Dimensions: dimensions, Measures: measures})
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		switch err {
		case gobreaker.ErrOpenState, gobreaker.ErrTooManyRequests:
			return nil, pkgerrors.NewRemote("chart backend circuit open, request rejected locally", err)
		}
		return nil, err
	}

	resp := raw.(*renderResponse)
	return &ports.ChartArtifact{RemoteID: resp.ID, Title: resp.Title, Table: resp.Table}, nil
}

func (c *Client) post(ctx context.Context, payload renderRequest) (*renderResponse, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, pkgerrors.NewInternal("encode chart request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/v1/charts", bytes.NewReader(body))
	if err != nil {
		return nil, pkgerrors.NewInternal("build chart request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, pkgerrors.NewRemote("chart backend unreachable", err)
	}
	defer resp.Body.Close()

	if err := statusToError(resp); err != nil {
		return nil, err
	}

	var decoded renderResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, pkgerrors.NewRemote("chart backend returned malformed response", err)
	}
	if decoded.ID == "" {
		return nil, pkgerrors.NewRemote("chart backend returned no figure id", nil)
	}
	return &decoded, nil
}

func statusToError(resp *http.Response) error {
	switch {
	case resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return pkgerrors.NewThrottled("chart backend throttled the request (429)", nil)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return pkgerrors.NewConfiguration(fmt.Sprintf("chart backend rejected credentials (%d)", resp.StatusCode))
	case resp.StatusCode == http.StatusUnprocessableEntity || resp.StatusCode == http.StatusBadRequest:
		detail := readErrorBody(resp.Body)
		return pkgerrors.NewValidationf("chart backend rejected the field selection: %s", detail)
	default:
		detail := readErrorBody(resp.Body)
		return pkgerrors.NewRemote(fmt.Sprintf("chart backend returned %d: %s", resp.StatusCode, detail), nil)
	}
}

func readErrorBody(body io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(body, 512))
	if err != nil || len(data) == 0 {
		return "no detail"
	}
	return string(data)
}
