//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"chartfusion-agent/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideClock,
	ProvideCanvasRepository,
	ProvideInsightCache,
	ProvideCache,
	ProvideEventBus,
	ProvideEventPublisher,
	ProvideRateLimiter,
	ProvideAdmissionController,
	ProvideAIService,
	ProvideChartService,
	ProvideDomainConfig,
	ProvideLayoutEngine,
	ProvideRelationshipDetector,
	ProvideStrategySelector,
	ProvideGrouper,
	ProvideRulesProvider,
	ProvideOrganizer,
	ProvideValidator,
	ProvideClassifier,
	ProvideScheduler,
	ProvideHandlers,
	ProvideExecutorConfig,
	ProvideExecutor,
	ProvideCollector,
	ProvideMetricsListener,
	ProvideLogListener,
	ProvideTracerProvider,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(cfg *config.Config, manager *config.Manager, logger *zap.Logger) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
