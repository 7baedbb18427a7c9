// Package ops serves the daemon's operator endpoints: liveness, Prometheus
// metrics, and read-only snapshots of the rate limiter and the canvas. It
// is not a public API; nothing here mutates agent state.
package ops

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"chartfusion-agent/application/ports"
	"chartfusion-agent/infrastructure/observability"
	"chartfusion-agent/pkg/api"
)

// Router creates and configures the ops HTTP router
type Router struct {
	admission ports.AdmissionController
	repo      ports.CanvasRepository
	collector *observability.Collector
	logger    *zap.Logger
}

// NewRouter creates a new ops router. The collector may be nil, in which
// case the metrics endpoint is not mounted.
func NewRouter(
	admission ports.AdmissionController,
	repo ports.CanvasRepository,
	collector *observability.Collector,
	logger *zap.Logger,
) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		admission: admission,
		repo:      repo,
		collector: collector,
		logger:    logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(RequestLogger(rt.logger))

	router.Get("/healthz", rt.healthCheck)
	router.Get("/readyz", rt.readinessCheck)
	router.Get("/limiter", rt.limiterStatus)
	router.Get("/canvas", rt.canvasSummary)

	if rt.collector != nil {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(
			rt.collector.GetRegistry(),
			promhttp.HandlerOpts{},
		))
	}

	return router
}

// healthCheck handles liveness probes
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	api.Success(w, http.StatusOK, api.HealthResponse{Status: "healthy"})
}

// readinessCheck reports ready once the canvas store answers
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	count, err := rt.repo.Count(req.Context())
	if err != nil {
		api.Error(w, http.StatusServiceUnavailable, "canvas store unavailable")
		return
	}
	api.Success(w, http.StatusOK, api.HealthResponse{Status: "ready", Elements: count})
}

// limiterStatus exposes the admission-control snapshot
func (rt *Router) limiterStatus(w http.ResponseWriter, req *http.Request) {
	metrics := rt.admission.Metrics()

	remaining := metrics.DailyCeiling - metrics.RequestsToday
	if remaining < 0 {
		remaining = 0
	}

	api.Success(w, http.StatusOK, api.LimiterStatus{
		RequestsThisMinute: metrics.RequestsThisMinute,
		RequestsToday:      metrics.RequestsToday,
		PerMinuteCeiling:   metrics.PerMinuteCeiling,
		DailyCeiling:       metrics.DailyCeiling,
		QuotaRemaining:     remaining,
		BackoffSeconds:     metrics.CurrentBackoff.Seconds(),
	})
}

// canvasSummary reports a census of what is on the canvas
func (rt *Router) canvasSummary(w http.ResponseWriter, req *http.Request) {
	elements, err := rt.repo.GetAll(req.Context())
	if err != nil {
		api.Error(w, http.StatusInternalServerError, "failed to load canvas")
		return
	}

	byKind := make(map[string]int)
	for _, element := range elements {
		byKind[string(element.Kind())]++
	}

	api.Success(w, http.StatusOK, api.CanvasSummary{Total: len(elements), ByKind: byKind})
}
