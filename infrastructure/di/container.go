// Package di wires the agent's components into a container. The injector in
// wire.go is the source of truth for the object graph; wire_gen.go carries
// the generated constructor used by normal builds.
package di

import (
	"context"

	"go.uber.org/zap"

	"chartfusion-agent/application/executor"
	"chartfusion-agent/application/organizer"
	"chartfusion-agent/application/ports"
	"chartfusion-agent/infrastructure/config"
	"chartfusion-agent/infrastructure/messaging"
	"chartfusion-agent/infrastructure/observability"
	"chartfusion-agent/infrastructure/persistence/memory"
	"chartfusion-agent/infrastructure/ratelimit"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	Manager         *config.Manager
	Logger          *zap.Logger
	Clock           ports.Clock
	Repository      ports.CanvasRepository
	Cache           *memory.InsightCache
	EventBus        ports.EventBus
	RateLimiter     *ratelimit.Limiter
	AIService       ports.AIService
	ChartService    ports.ChartService
	Organizer       *organizer.Organizer
	Executor        *executor.Executor
	Collector       *observability.Collector
	MetricsListener *observability.Listener
	LogListener     *messaging.LogListener
	TracerProvider  *observability.TracerProvider
}

// Shutdown releases everything the container owns. Safe to call once after
// the daemon stops accepting work.
func (c *Container) Shutdown(ctx context.Context) error {
	var lastErr error

	if c.TracerProvider != nil {
		if err := c.TracerProvider.Shutdown(ctx); err != nil {
			c.Logger.Error("Tracer provider shutdown failed", zap.Error(err))
			lastErr = err
		}
	}

	if c.Cache != nil {
		c.Cache.Close()
	}

	return lastErr
}

// WireEventListeners subscribes the standing listeners to the event bus.
// This should be called during application startup.
func WireEventListeners(
	bus ports.EventBus,
	logListener *messaging.LogListener,
	metricsListener *observability.Listener,
	logger *zap.Logger,
) error {
	if err := bus.Subscribe(messaging.WildcardType, logListener); err != nil {
		logger.Error("Failed to subscribe log listener", zap.Error(err))
		return err
	}

	if err := bus.Subscribe(messaging.WildcardType, metricsListener); err != nil {
		logger.Error("Failed to subscribe metrics listener", zap.Error(err))
		return err
	}

	logger.Info("Event listeners wired successfully")
	return nil
}
