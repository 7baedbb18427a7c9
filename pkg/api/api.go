// Package api defines the contracts for the daemon's ops endpoints.
// It decouples the wire structure from the internal domain models.
package api

import (
	"encoding/json"
	"net/http"
)

// HealthResponse reports liveness and readiness
type HealthResponse struct {
	Status   string `json:"status"`
	Elements int    `json:"elements,omitempty"`
}

// LimiterStatus is the read-only admission-control snapshot
type LimiterStatus struct {
	RequestsThisMinute int     `json:"requestsThisMinute"`
	RequestsToday      int     `json:"requestsToday"`
	PerMinuteCeiling   int     `json:"perMinuteCeiling"`
	DailyCeiling       int     `json:"dailyCeiling"`
	QuotaRemaining     int     `json:"quotaRemaining"`
	BackoffSeconds     float64 `json:"backoffSeconds"`
}

// CanvasSummary is the read-only canvas census
type CanvasSummary struct {
	Total  int            `json:"total"`
	ByKind map[string]int `json:"byKind"`
}

// ErrorResponse is a standardized error message for API responses
type ErrorResponse struct {
	Error string `json:"error"`
}

// Success sends a standardized successful HTTP response with optional JSON data.
func Success(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Error sends a standardized error response with consistent JSON format.
func Error(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
