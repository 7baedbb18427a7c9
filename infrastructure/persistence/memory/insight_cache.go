package memory

import (
	"context"
	"sync"
	"time"

	"chartfusion-agent/application/ports"
)

type cacheEntry struct {
	value     interface{}
	expiresAt time.Time
}

// InsightCache is an in-memory TTL cache for computed artifacts such as chart
// insights. A janitor goroutine sweeps expired entries so reads stay cheap.
type InsightCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	clock   ports.Clock
	stop    chan struct{}
	once    sync.Once
}

var _ ports.Cache = (*InsightCache)(nil)

// NewInsightCache creates a cache and starts its cleanup goroutine
func NewInsightCache(clock ports.Clock) *InsightCache {
	if clock == nil {
		clock = &ports.RealClock{}
	}
	cache := &InsightCache{
		entries: make(map[string]cacheEntry),
		clock:   clock,
		stop:    make(chan struct{}),
	}

	go cache.cleanupRoutine()

	return cache
}

// Get retrieves a value. Expired entries read as misses.
func (c *InsightCache) Get(_ context.Context, key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.entries[key]
	if !exists || c.clock.Now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.value, true
}

// Set stores a value with a TTL in seconds
func (c *InsightCache) Set(_ context.Context, key string, value interface{}, ttl int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		value:     value,
		expiresAt: c.clock.Now().Add(time.Duration(ttl) * time.Second),
	}
	return nil
}

// Delete removes a value
func (c *InsightCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
	return nil
}

// Clear removes all values
func (c *InsightCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]cacheEntry)
	return nil
}

// Close stops the cleanup goroutine
func (c *InsightCache) Close() {
	c.once.Do(func() { close(c.stop) })
}

func (c *InsightCache) cleanupExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.clock.Now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

// cleanupRoutine runs periodically to evict expired entries
func (c *InsightCache) cleanupRoutine() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanupExpired()
		case <-c.stop:
			return
		}
	}
}
