package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"chartfusion-agent/domain/layout"
)

// DynamicConfig is the runtime-changeable part of the agent configuration.
// Keyword families drive semantic grouping; limits cap API usage. Edits to
// the file take effect without a restart.
type DynamicConfig struct {
	Grouping *layout.GroupingRules `yaml:"grouping"`
	Limits   DynamicLimits         `yaml:"limits"`
	Metadata ConfigMetadata        `yaml:"metadata"`
}

// DynamicLimits holds hot-reloadable rate ceilings. Zero means "keep the
// static default".
type DynamicLimits struct {
	RequestsPerMinute int `yaml:"requestsPerMinute"`
	RequestsPerDay    int `yaml:"requestsPerDay"`
}

// ConfigMetadata holds metadata about the configuration
type ConfigMetadata struct {
	Version   string    `yaml:"version"`
	UpdatedAt time.Time `yaml:"updatedAt"`
	UpdatedBy string    `yaml:"updatedBy"`
}

// Watcher watches the dynamic configuration file for changes
type Watcher struct {
	path        string
	watcher     *fsnotify.Watcher
	current     *DynamicConfig
	mu          sync.RWMutex
	onChange    []func(*DynamicConfig)
	logger      *zap.Logger
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewWatcher creates a watcher for the given YAML file. The file must exist
// and parse at startup; later invalid writes are logged and skipped.
func NewWatcher(configPath string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	current, err := loadDynamicConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial config: %w", err)
	}
	if err := validateDynamicConfig(current); err != nil {
		return nil, fmt.Errorf("initial config is invalid: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	if err := watcher.Add(configPath); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch config file: %w", err)
	}

	// Watch the directory too: editors and atomic saves replace the file
	// by rename, which drops the file-level watch.
	dir := filepath.Dir(configPath)
	if err := watcher.Add(dir); err != nil {
		logger.Warn("Failed to watch config directory", zap.Error(err))
	}

	return &Watcher{
		path:     configPath,
		watcher:  watcher,
		current:  current,
		onChange: make([]func(*DynamicConfig), 0),
		logger:   logger,
		stopCh:   make(chan struct{}),
	}, nil
}

// Start begins watching for configuration changes
func (w *Watcher) Start() {
	go w.watchLoop()
	w.logger.Info("Configuration watcher started", zap.String("path", w.path))
}

// Stop stops watching for configuration changes
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.watcher.Close()
		w.logger.Info("Configuration watcher stopped")
	})
}

// watchLoop is the main loop that watches for file changes
func (w *Watcher) watchLoop() {
	// Debounce so editors that write in several syscalls trigger one reload
	var debounceTimer *time.Timer
	debounceDuration := 100 * time.Millisecond

	for {
		select {
		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}

			if filepath.Base(event.Name) != filepath.Base(w.path) {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}

				debounceTimer = time.AfterFunc(debounceDuration, func() {
					w.reload()
				})
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("File watcher error", zap.Error(err))
		}
	}
}

// reload re-reads the file, keeping the current config when the new
// content fails to parse or validate.
func (w *Watcher) reload() {
	w.logger.Info("Configuration file changed, reloading", zap.String("path", w.path))

	newConfig, err := loadDynamicConfig(w.path)
	if err != nil {
		w.logger.Error("Failed to reload configuration", zap.Error(err))
		return
	}

	if err := validateDynamicConfig(newConfig); err != nil {
		w.logger.Error("Invalid configuration, keeping current", zap.Error(err))
		return
	}

	w.mu.Lock()
	oldConfig := w.current
	w.current = newConfig
	handlers := make([]func(*DynamicConfig), len(w.onChange))
	copy(handlers, w.onChange)
	w.mu.Unlock()

	w.logConfigChanges(oldConfig, newConfig)

	for _, handler := range handlers {
		go handler(newConfig)
	}

	w.logger.Info("Configuration reloaded successfully",
		zap.String("version", newConfig.Metadata.Version),
	)
}

// logConfigChanges logs the differences between old and new config
func (w *Watcher) logConfigChanges(oldConfig, newConfig *DynamicConfig) {
	changes := []string{}

	oldFamilies := familyNames(oldConfig.Grouping)
	newFamilies := familyNames(newConfig.Grouping)
	if oldFamilies != newFamilies {
		changes = append(changes, fmt.Sprintf("grouping families: [%s] -> [%s]", oldFamilies, newFamilies))
	}

	if oldConfig.Limits.RequestsPerMinute != newConfig.Limits.RequestsPerMinute {
		changes = append(changes, fmt.Sprintf("requestsPerMinute: %d -> %d",
			oldConfig.Limits.RequestsPerMinute, newConfig.Limits.RequestsPerMinute))
	}

	if oldConfig.Limits.RequestsPerDay != newConfig.Limits.RequestsPerDay {
		changes = append(changes, fmt.Sprintf("requestsPerDay: %d -> %d",
			oldConfig.Limits.RequestsPerDay, newConfig.Limits.RequestsPerDay))
	}

	if len(changes) > 0 {
		w.logger.Info("Configuration changes detected", zap.Strings("changes", changes))
	}
}

// OnChange registers a callback for configuration changes
func (w *Watcher) OnChange(handler func(*DynamicConfig)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, handler)
}

// GetCurrent returns the current configuration
func (w *Watcher) GetCurrent() *DynamicConfig {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Rules returns the current keyword families for semantic grouping,
// falling back to the built-in defaults when the file has none.
func (w *Watcher) Rules() *layout.GroupingRules {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.current == nil || w.current.Grouping == nil {
		return layout.DefaultGroupingRules()
	}
	return w.current.Grouping
}

// loadDynamicConfig loads configuration from a YAML file
func loadDynamicConfig(path string) (*DynamicConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config DynamicConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if config.Metadata.Version == "" {
		config.Metadata.Version = "1.0.0"
	}

	return &config, nil
}

// validateDynamicConfig rejects configs that would break grouping or
// disable rate limiting entirely.
func validateDynamicConfig(config *DynamicConfig) error {
	if config.Limits.RequestsPerMinute < 0 {
		return fmt.Errorf("requestsPerMinute cannot be negative")
	}
	if config.Limits.RequestsPerDay < 0 {
		return fmt.Errorf("requestsPerDay cannot be negative")
	}

	if config.Grouping == nil {
		return nil
	}

	seen := make(map[string]bool)
	for i, family := range config.Grouping.Families {
		if strings.TrimSpace(family.Name) == "" {
			return fmt.Errorf("grouping family %d has no name", i)
		}
		if strings.TrimSpace(family.Label) == "" {
			return fmt.Errorf("grouping family %q has no label", family.Name)
		}
		if len(family.Keywords) == 0 {
			return fmt.Errorf("grouping family %q has no keywords", family.Name)
		}
		if seen[family.Name] {
			return fmt.Errorf("grouping family %q is declared twice", family.Name)
		}
		seen[family.Name] = true
	}

	return nil
}

func familyNames(rules *layout.GroupingRules) string {
	if rules == nil {
		return ""
	}
	names := make([]string, 0, len(rules.Families))
	for _, family := range rules.Families {
		names = append(names, family.Name)
	}
	return strings.Join(names, ",")
}
