// Package observability provides the logging, metrics, and tracing glue:
// a zap logger built for the environment, a prometheus collector fed by
// domain events, and an OpenTelemetry tracer provider for the daemon.
package observability

import (
	"go.uber.org/zap"
)

// NewLogger builds the structured logger for the given environment.
// Production uses JSON sampling output, everything else gets the
// development console encoder.
func NewLogger(environment, level string) (*zap.Logger, error) {
	var config zap.Config

	if environment == "production" {
		config = zap.NewProductionConfig()
	} else {
		config = zap.NewDevelopmentConfig()
	}

	switch level {
	case "debug":
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		config.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	return config.Build()
}
