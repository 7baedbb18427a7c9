package di

import (
	"time"

	"go.uber.org/zap"

	"chartfusion-agent/application/actions"
	"chartfusion-agent/application/executor"
	"chartfusion-agent/application/organizer"
	"chartfusion-agent/application/ports"
	domainconfig "chartfusion-agent/domain/config"
	"chartfusion-agent/domain/layout"
	"chartfusion-agent/infrastructure/ai"
	"chartfusion-agent/infrastructure/charts"
	"chartfusion-agent/infrastructure/config"
	"chartfusion-agent/infrastructure/messaging"
	"chartfusion-agent/infrastructure/observability"
	"chartfusion-agent/infrastructure/persistence/memory"
	"chartfusion-agent/infrastructure/ratelimit"
)

// metricsNamespace prefixes every exported metric name
const metricsNamespace = "chartfusion"

// ProvideClock provides the wall clock
func ProvideClock() ports.Clock {
	return &ports.RealClock{}
}

// ProvideCanvasRepository creates the in-memory canvas store
func ProvideCanvasRepository() ports.CanvasRepository {
	return memory.NewCanvasStore()
}

// ProvideInsightCache creates the TTL cache for AI insight responses
func ProvideInsightCache(clock ports.Clock) *memory.InsightCache {
	return memory.NewInsightCache(clock)
}

// ProvideCache exposes the insight cache through its port
func ProvideCache(cache *memory.InsightCache) ports.Cache {
	return cache
}

// ProvideEventBus creates the in-process event bus
func ProvideEventBus(logger *zap.Logger) ports.EventBus {
	return messaging.NewBus(logger)
}

// ProvideEventPublisher narrows the bus to its publishing side
func ProvideEventPublisher(bus ports.EventBus) ports.EventPublisher {
	return bus
}

// ProvideRateLimiter creates the admission limiter and binds it to the
// configuration manager so ceiling changes reach it at runtime.
func ProvideRateLimiter(cfg *config.Config, manager *config.Manager, clock ports.Clock, logger *zap.Logger) *ratelimit.Limiter {
	perMinute, perDay := manager.EffectiveLimits()

	limiter := ratelimit.New(&ratelimit.Config{
		RequestsPerMinute: perMinute,
		RequestsPerDay:    perDay,
		Window:            time.Minute,
		BaseBackoff:       cfg.BaseBackoff,
		MaxBackoff:        cfg.MaxBackoff,
	}, clock, logger)

	manager.BindLimiter(limiter)
	return limiter
}

// ProvideAdmissionController exposes the limiter through its port
func ProvideAdmissionController(limiter *ratelimit.Limiter) ports.AdmissionController {
	return limiter
}

// ProvideAIService creates the generative backend client, or the offline
// stub when no key is configured. Validate rejects the keyless combination
// in production before the container is built.
func ProvideAIService(cfg *config.Config, logger *zap.Logger) ports.AIService {
	if cfg.AIAPIKey == "" {
		logger.Warn("AI backend not configured; serving canned responses")
		return ai.NewStub(logger)
	}
	return ai.NewClient(&ai.Config{
		BaseURL: cfg.AIBaseURL,
		APIKey:  cfg.AIAPIKey,
		Model:   cfg.AIModel,
		Timeout: cfg.AITimeout,
	}, logger)
}

// ProvideChartService creates the chart rendering backend client, or the
// offline stub when no key is configured
func ProvideChartService(cfg *config.Config, logger *zap.Logger) ports.ChartService {
	if cfg.ChartAPIKey == "" {
		logger.Warn("Chart backend not configured; serving stub figures")
		return charts.NewStub(logger)
	}
	return charts.NewClient(&charts.Config{
		BaseURL: cfg.ChartBaseURL,
		APIKey:  cfg.ChartAPIKey,
		Timeout: cfg.ChartTimeout,
	}, logger)
}

// ProvideDomainConfig provides the layout business rules
func ProvideDomainConfig() *domainconfig.DomainConfig {
	return domainconfig.DefaultDomainConfig()
}

// ProvideLayoutEngine creates the deterministic placement engine
func ProvideLayoutEngine(domainCfg *domainconfig.DomainConfig) *layout.DefaultEngine {
	return layout.NewDefaultEngine(domainCfg, nil)
}

// ProvideRelationshipDetector creates the chart relationship detector
func ProvideRelationshipDetector() layout.RelationshipDetector {
	return layout.NewDefaultRelationshipDetector(nil)
}

// ProvideStrategySelector creates the layout strategy selector
func ProvideStrategySelector() layout.StrategySelector {
	return layout.NewDefaultStrategySelector(nil)
}

// ProvideGrouper creates the keyword-family grouper
func ProvideGrouper(domainCfg *domainconfig.DomainConfig, engine *layout.DefaultEngine) layout.Grouper {
	return layout.NewDefaultGrouper(domainCfg, engine)
}

// ProvideRulesProvider sources grouping rules from the configuration
// manager, which serves the watched file when one is loaded.
func ProvideRulesProvider(manager *config.Manager) organizer.RulesProvider {
	return manager
}

// ProvideOrganizer creates the canvas organizer
func ProvideOrganizer(
	repo ports.CanvasRepository,
	detector layout.RelationshipDetector,
	selector layout.StrategySelector,
	engine *layout.DefaultEngine,
	grouper layout.Grouper,
	rules organizer.RulesProvider,
	publisher ports.EventPublisher,
	clock ports.Clock,
	logger *zap.Logger,
) *organizer.Organizer {
	return organizer.NewOrganizer(repo, detector, selector, engine, grouper, rules, publisher, clock, logger)
}

// ProvideValidator creates the action batch validator
func ProvideValidator() *actions.Validator {
	return actions.NewValidator()
}

// ProvideClassifier creates the action classifier
func ProvideClassifier() *actions.Classifier {
	return actions.NewClassifier()
}

// ProvideScheduler creates the priority scheduler
func ProvideScheduler(classifier *actions.Classifier) *actions.Scheduler {
	return actions.NewScheduler(classifier)
}

// ProvideHandlers creates the per-kind action handlers
func ProvideHandlers(
	repo ports.CanvasRepository,
	chartService ports.ChartService,
	aiService ports.AIService,
	org *organizer.Organizer,
	admission ports.AdmissionController,
	publisher ports.EventPublisher,
	cache ports.Cache,
	domainCfg *domainconfig.DomainConfig,
	logger *zap.Logger,
) *executor.Handlers {
	return executor.NewHandlers(repo, chartService, aiService, org, admission, publisher, cache, domainCfg, logger)
}

// ProvideExecutorConfig derives the executor bounds from static settings
func ProvideExecutorConfig(cfg *config.Config) *executor.Config {
	return &executor.Config{
		LocalConcurrency: cfg.LocalConcurrency,
		APIConcurrency:   cfg.APIConcurrency,
		PlacementStep:    cfg.PlacementStep,
	}
}

// ProvideExecutor creates the batch executor
func ProvideExecutor(
	validator *actions.Validator,
	scheduler *actions.Scheduler,
	handlers *executor.Handlers,
	admission ports.AdmissionController,
	publisher ports.EventPublisher,
	repo ports.CanvasRepository,
	clock ports.Clock,
	execCfg *executor.Config,
	logger *zap.Logger,
) *executor.Executor {
	return executor.NewExecutor(validator, scheduler, handlers, admission, publisher, repo, clock, execCfg, logger)
}

// ProvideCollector creates the Prometheus metrics collector
func ProvideCollector(admission ports.AdmissionController, repo ports.CanvasRepository) *observability.Collector {
	return observability.NewCollector(metricsNamespace, admission, repo)
}

// ProvideMetricsListener creates the event listener that feeds the collector
func ProvideMetricsListener(collector *observability.Collector) *observability.Listener {
	return observability.NewListener(collector)
}

// ProvideLogListener creates the audit log listener
func ProvideLogListener(logger *zap.Logger) *messaging.LogListener {
	return messaging.NewLogListener(logger)
}

// ProvideTracerProvider initializes tracing when enabled. A nil provider
// means tracing is off; callers must check before use.
func ProvideTracerProvider(cfg *config.Config) (*observability.TracerProvider, error) {
	if !cfg.EnableTracing {
		return nil, nil
	}
	return observability.InitTracing(observability.TracingConfig{
		ServiceName: "chartfusion-agent",
		Environment: cfg.Environment,
	})
}
