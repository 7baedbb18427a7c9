package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"chartfusion-agent/application/actions"
	"chartfusion-agent/application/executor"
	"chartfusion-agent/infrastructure/config"
	"chartfusion-agent/infrastructure/di"
	"chartfusion-agent/infrastructure/observability"
	"chartfusion-agent/interfaces/ops"
)

func main() {
	var (
		batchPath = flag.String("batch", "", "JSON action batch to execute at startup")
		oneShot   = flag.Bool("one-shot", false, "exit after the scripted batch instead of serving")
	)
	flag.Parse()

	if *oneShot && *batchPath == "" {
		log.Fatal("-one-shot requires -batch")
	}

	// Initialize context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Environment, cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Dynamic configuration: grouping rules and rate ceilings hot-reload
	// from the watched file when one exists.
	manager := config.NewManager(cfg, newWatcher(cfg, logger), logger)
	manager.Start()

	// Initialize dependency container
	container, err := di.InitializeContainer(cfg, manager, logger)
	if err != nil {
		logger.Fatal("Failed to initialize container", zap.Error(err))
	}

	// Wire event listeners
	err = di.WireEventListeners(
		container.EventBus,
		container.LogListener,
		container.MetricsListener,
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to wire event listeners", zap.Error(err))
	}

	// Execute the scripted batch, if any
	if *batchPath != "" {
		runScriptedBatch(ctx, container, *batchPath)
	}

	if *oneShot {
		shutdown(container, manager, logger)
		return
	}

	// Ops endpoints: health, metrics, limiter snapshot
	var collector = container.Collector
	if !cfg.EnableMetrics {
		collector = nil
	}
	handler := ops.NewRouter(container.RateLimiter, container.Repository, collector, logger).Setup()

	srv := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting ops listener",
			zap.String("address", cfg.ServerAddress),
			zap.String("environment", cfg.Environment),
		)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Ops listener failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	// Graceful shutdown
	logger.Info("Shutting down agent...")

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ops listener shutdown error", zap.Error(err))
	}

	shutdown(container, manager, logger)
	log.Println("Agent stopped")
}

// newWatcher builds the dynamic config watcher, or returns nil when the
// file is absent so the agent falls back to built-in rules.
func newWatcher(cfg *config.Config, logger *zap.Logger) *config.Watcher {
	if cfg.DynamicConfigPath == "" {
		return nil
	}
	if _, err := os.Stat(cfg.DynamicConfigPath); err != nil {
		logger.Info("No dynamic config file; using built-in grouping rules",
			zap.String("path", cfg.DynamicConfigPath))
		return nil
	}

	watcher, err := config.NewWatcher(cfg.DynamicConfigPath, logger)
	if err != nil {
		logger.Warn("Dynamic config rejected; using built-in grouping rules",
			zap.String("path", cfg.DynamicConfigPath),
			zap.Error(err),
		)
		return nil
	}
	return watcher
}

// runScriptedBatch loads an action batch from disk and executes it
func runScriptedBatch(ctx context.Context, container *di.Container, path string) {
	logger := container.Logger

	batch, err := loadBatch(path)
	if err != nil {
		logger.Fatal("Failed to load action batch", zap.String("path", path), zap.Error(err))
	}

	logger.Info("Executing scripted batch",
		zap.String("path", path),
		zap.Int("actions", len(batch)),
	)

	started := time.Now()
	results := container.Executor.ExecuteBatch(ctx, batch)

	for _, result := range results {
		if result.Success {
			logger.Info("Action completed",
				zap.Int("index", result.Index),
				zap.String("kind", result.Kind.String()),
				zap.Duration("duration", result.Duration),
			)
			continue
		}
		logger.Warn("Action failed",
			zap.Int("index", result.Index),
			zap.String("kind", result.Kind.String()),
			zap.String("error", result.ErrorMessage),
			zap.String("message", result.HumanMessage),
		)
	}

	summary := executor.Summarize("scripted", results, time.Since(started))
	logger.Info("Scripted batch finished",
		zap.Int("total", summary.Total),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", summary.Duration),
	)
}

// loadBatch reads and decodes a JSON action array
func loadBatch(path string) ([]actions.Action, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var batch []actions.Action
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, err
	}
	return batch, nil
}

func shutdown(container *di.Container, manager *config.Manager, logger *zap.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	manager.Stop()
	if err := container.Shutdown(shutdownCtx); err != nil {
		logger.Error("Container shutdown error", zap.Error(err))
	}
}
