// Package config loads agent configuration. Static settings come from the
// environment once at startup; grouping keywords and rate ceilings live in a
// watched YAML file and can change while the agent runs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all static agent configuration
type Config struct {
	// Ops listener
	ServerAddress string
	Environment   string

	// AI backend
	AIBaseURL string
	AIAPIKey  string
	AIModel   string
	AITimeout time.Duration

	// Chart rendering backend
	ChartBaseURL string
	ChartAPIKey  string
	ChartTimeout time.Duration

	// Rate limiting
	RequestsPerMinute int
	RequestsPerDay    int
	BaseBackoff       time.Duration
	MaxBackoff        time.Duration

	// Batch execution
	LocalConcurrency int
	APIConcurrency   int
	PlacementStep    float64

	// Logging
	LogLevel string

	// Feature flags
	EnableMetrics bool
	EnableTracing bool

	// Watched YAML with keyword families and runtime limits
	DynamicConfigPath string
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	cfg := &Config{
		ServerAddress: getEnv("SERVER_ADDRESS", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),

		AIBaseURL: getEnv("AI_BASE_URL", "http://localhost:9090"),
		AIAPIKey:  getEnv("AI_API_KEY", ""),
		AIModel:   getEnv("AI_MODEL", "canvas-agent-1"),
		AITimeout: time.Duration(getEnvInt("AI_TIMEOUT_SECONDS", 30)) * time.Second,

		ChartBaseURL: getEnv("CHART_BASE_URL", "http://localhost:9091"),
		ChartAPIKey:  getEnv("CHART_API_KEY", ""),
		ChartTimeout: time.Duration(getEnvInt("CHART_TIMEOUT_SECONDS", 30)) * time.Second,

		RequestsPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 10),
		RequestsPerDay:    getEnvInt("RATE_LIMIT_PER_DAY", 100),
		BaseBackoff:       time.Duration(getEnvInt("BACKOFF_BASE_MS", 1000)) * time.Millisecond,
		MaxBackoff:        time.Duration(getEnvInt("BACKOFF_MAX_MS", 30000)) * time.Millisecond,

		LocalConcurrency: getEnvInt("LOCAL_CONCURRENCY", 4),
		APIConcurrency:   getEnvInt("API_CONCURRENCY", 2),
		PlacementStep:    getEnvFloat("PLACEMENT_STEP", 24),

		LogLevel:      getEnv("LOG_LEVEL", "info"),
		EnableMetrics: getEnvBool("ENABLE_METRICS", true),
		EnableTracing: getEnvBool("ENABLE_TRACING", false),

		DynamicConfigPath: getEnv("DYNAMIC_CONFIG_PATH", "configs/agent.yaml"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Load is an alias for LoadConfig
func Load() (*Config, error) {
	return LoadConfig()
}

// Validate checks if all required configuration is present
func (c *Config) Validate() error {
	if c.RequestsPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	if c.RequestsPerDay <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_DAY must be positive")
	}
	if c.BaseBackoff <= 0 || c.MaxBackoff < c.BaseBackoff {
		return fmt.Errorf("backoff bounds are inconsistent")
	}
	if c.LocalConcurrency < 1 || c.APIConcurrency < 1 {
		return fmt.Errorf("concurrency limits must be at least 1")
	}
	if c.AITimeout <= 0 || c.ChartTimeout <= 0 {
		return fmt.Errorf("backend timeouts must be positive")
	}

	if c.Environment == "production" {
		if c.AIAPIKey == "" {
			return fmt.Errorf("AI_API_KEY is required in production")
		}
		if c.ChartAPIKey == "" {
			return fmt.Errorf("CHART_API_KEY is required in production")
		}
	}

	return nil
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvFloat gets a float environment variable with a default value
func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}
