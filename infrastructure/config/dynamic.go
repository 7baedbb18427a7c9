package config

import (
	"sync"

	"go.uber.org/zap"

	"chartfusion-agent/domain/layout"
)

// CeilingSetter receives updated rate ceilings when the dynamic config
// changes. The rate limiter implements this.
type CeilingSetter interface {
	SetCeilings(requestsPerMinute, requestsPerDay int)
}

// Manager merges static environment configuration with the watched dynamic
// file. It pushes ceiling changes into the limiter and serves the current
// grouping rules to the organizer. A nil watcher means everything stays at
// static defaults.
type Manager struct {
	static  *Config
	watcher *Watcher
	logger  *zap.Logger

	mu      sync.RWMutex
	limiter CeilingSetter
}

// NewManager creates a configuration manager
func NewManager(static *Config, watcher *Watcher, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	m := &Manager{
		static:  static,
		watcher: watcher,
		logger:  logger,
	}

	if watcher != nil {
		watcher.OnChange(func(newConfig *DynamicConfig) {
			m.handleChange(newConfig)
		})
	}

	return m
}

// Start begins watching for configuration changes
func (m *Manager) Start() {
	if m.watcher != nil {
		m.watcher.Start()
	}
	m.logger.Info("Configuration manager started",
		zap.Bool("dynamic", m.watcher != nil),
	)
}

// Stop stops the configuration manager
func (m *Manager) Stop() {
	if m.watcher != nil {
		m.watcher.Stop()
	}
	m.logger.Info("Configuration manager stopped")
}

// BindLimiter attaches the rate limiter and immediately applies the
// current effective ceilings to it.
func (m *Manager) BindLimiter(setter CeilingSetter) {
	m.mu.Lock()
	m.limiter = setter
	m.mu.Unlock()

	perMinute, perDay := m.EffectiveLimits()
	setter.SetCeilings(perMinute, perDay)
}

// EffectiveLimits returns the rate ceilings currently in force: the dynamic
// values when set, the static environment values otherwise.
func (m *Manager) EffectiveLimits() (requestsPerMinute, requestsPerDay int) {
	requestsPerMinute = m.static.RequestsPerMinute
	requestsPerDay = m.static.RequestsPerDay

	if m.watcher == nil {
		return requestsPerMinute, requestsPerDay
	}

	current := m.watcher.GetCurrent()
	if current.Limits.RequestsPerMinute > 0 {
		requestsPerMinute = current.Limits.RequestsPerMinute
	}
	if current.Limits.RequestsPerDay > 0 {
		requestsPerDay = current.Limits.RequestsPerDay
	}
	return requestsPerMinute, requestsPerDay
}

// Rules returns the grouping rules currently in force. Implements the
// organizer's rules provider.
func (m *Manager) Rules() *layout.GroupingRules {
	if m.watcher == nil {
		return layout.DefaultGroupingRules()
	}
	return m.watcher.Rules()
}

// Static returns the environment configuration
func (m *Manager) Static() *Config {
	return m.static
}

// handleChange applies a reloaded dynamic config to live components
func (m *Manager) handleChange(newConfig *DynamicConfig) {
	perMinute, perDay := m.EffectiveLimits()

	m.mu.RLock()
	limiter := m.limiter
	m.mu.RUnlock()

	if limiter != nil {
		limiter.SetCeilings(perMinute, perDay)
		m.logger.Info("Applied rate ceilings from dynamic config",
			zap.Int("requestsPerMinute", perMinute),
			zap.Int("requestsPerDay", perDay),
		)
	}

	if newConfig.Grouping != nil {
		m.logger.Info("Grouping rules updated",
			zap.Int("families", len(newConfig.Grouping.Families)),
		)
	}
}
