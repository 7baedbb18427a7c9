// Package ratelimit implements admission control for remote API calls: a
// sliding per-minute window that waits, a per-day quota that fails fast,
// and adaptive backoff when the upstream signals throttling.
package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"chartfusion-agent/application/ports"
	pkgerrors "chartfusion-agent/pkg/errors"
)

// Config holds the admission ceilings and backoff tuning
type Config struct {
	// RequestsPerMinute is the sliding-window ceiling. When reached, calls
	// wait for the window to open rather than failing.
	RequestsPerMinute int

	// RequestsPerDay is the hard daily quota. When reached, calls fail
	// fast with a quota error and no network activity.
	RequestsPerDay int

	// Window is the sliding window span
	Window time.Duration

	// BaseBackoff is the first delay applied after an upstream throttle
	BaseBackoff time.Duration

	// MaxBackoff caps the exponential backoff growth
	MaxBackoff time.Duration
}

// DefaultConfig returns the standard admission ceilings
func DefaultConfig() *Config {
	return &Config{
		RequestsPerMinute: 10,
		RequestsPerDay:    100,
		Window:            time.Minute,
		BaseBackoff:       time.Second,
		MaxBackoff:        30 * time.Second,
	}
}

// Limiter serializes admission decisions for all API-bound work. One mutex
// guards the window, the daily counter, and the backoff state; the guarded
// sections never block, and all waiting happens outside the lock through
// the injected clock.
type Limiter struct {
	mu       sync.Mutex
	window   []time.Time
	today    int
	dayStart time.Time

	// streak is the current rung of the exponential backoff ladder;
	// pending is the not-yet-served wait the next admission must absorb
	streak  time.Duration
	pending time.Duration

	config *Config
	clock  ports.Clock
	logger *zap.Logger
}

// New creates a limiter with the given ceilings
func New(cfg *Config, clock ports.Clock, logger *zap.Logger) *Limiter {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if clock == nil {
		clock = &ports.RealClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Limiter{
		window:   make([]time.Time, 0, cfg.RequestsPerMinute),
		dayStart: startOfDay(clock.Now()),
		config:   cfg,
		clock:    clock,
		logger:   logger,
	}
}

// ExecuteWithRateLimit admits one remote call, runs it, and accounts the
// outcome. Admission order: daily quota first (fail fast), then the minute
// window (wait), then any active backoff (wait). The call itself runs
// outside the lock. Throttle failures double the backoff up to the cap;
// successes clear it.
func (l *Limiter) ExecuteWithRateLimit(ctx context.Context, kind string, work func(context.Context) error) error {
	if err := l.admit(ctx, kind); err != nil {
		return err
	}

	err := work(ctx)
	l.account(kind, err)
	return err
}

// Metrics returns a snapshot of the limiter state without side effects
func (l *Limiter) Metrics() ports.LimiterMetrics {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	inWindow := 0
	for _, t := range l.window {
		if now.Sub(t) < l.config.Window {
			inWindow++
		}
	}
	today := l.today
	if !sameDay(l.dayStart, now) {
		today = 0
	}
	return ports.LimiterMetrics{
		RequestsThisMinute: inWindow,
		RequestsToday:      today,
		PerMinuteCeiling:   l.config.RequestsPerMinute,
		DailyCeiling:       l.config.RequestsPerDay,
		CurrentBackoff:     l.streak,
	}
}

// SetCeilings replaces the admission ceilings at runtime. Non-positive
// values are ignored. Calls already admitted are unaffected; the new
// ceilings apply from the next admission decision.
func (l *Limiter) SetCeilings(requestsPerMinute, requestsPerDay int) {
	if requestsPerMinute <= 0 || requestsPerDay <= 0 {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if requestsPerMinute == l.config.RequestsPerMinute && requestsPerDay == l.config.RequestsPerDay {
		return
	}

	// Copy so a caller-held Config is never mutated behind its back.
	updated := *l.config
	updated.RequestsPerMinute = requestsPerMinute
	updated.RequestsPerDay = requestsPerDay
	l.config = &updated

	l.logger.Info("admission ceilings updated",
		zap.Int("requestsPerMinute", requestsPerMinute),
		zap.Int("requestsPerDay", requestsPerDay),
	)
}

// admit blocks until the call may proceed, reserving its window slot and
// daily count, or returns a quota error immediately
func (l *Limiter) admit(ctx context.Context, kind string) error {
	for {
		wait, err := l.tryReserve(kind)
		if err != nil {
			return err
		}
		if wait == 0 {
			return nil
		}
		l.logger.Debug("rate limit wait",
			zap.String("kind", kind),
			zap.Duration("wait", wait),
		)
		if err := l.clock.Sleep(ctx, wait); err != nil {
			return pkgerrors.NewThrottled("admission wait interrupted", err)
		}
	}
}

// tryReserve either books a slot (wait 0), reports how long to wait before
// retrying, or rejects on exhausted daily quota
func (l *Limiter) tryReserve(kind string) (time.Duration, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	l.rollDay(now)

	if l.today >= l.config.RequestsPerDay {
		return 0, pkgerrors.NewQuota(fmt.Sprintf(
			"daily request quota exhausted (%d/%d)", l.today, l.config.RequestsPerDay))
	}

	l.prune(now)
	if len(l.window) >= l.config.RequestsPerMinute {
		oldest := l.window[0]
		wait := oldest.Add(l.config.Window).Sub(now)
		if wait < time.Millisecond {
			wait = time.Millisecond
		}
		return wait, nil
	}

	if l.pending > 0 {
		wait := l.pending
		// This admission absorbs the pending wait; another throttle will
		// re-arm it at the next rung.
		l.pending = 0
		return wait, nil
	}

	l.window = append(l.window, now)
	l.today++
	return 0, nil
}

// account updates backoff state from the call outcome
func (l *Limiter) account(kind string, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case err == nil:
		l.streak = 0
		l.pending = 0
	case pkgerrors.IsThrottled(err):
		l.streak = l.nextBackoff()
		l.pending = l.streak
		l.logger.Warn("upstream throttled, backing off",
			zap.String("kind", kind),
			zap.Duration("backoff", l.streak),
		)
	}
}

// nextBackoff doubles the current ladder rung, starting at base and capped
// at max. Called with the mutex held.
func (l *Limiter) nextBackoff() time.Duration {
	next := l.config.BaseBackoff
	if l.streak > 0 {
		next = l.streak * 2
	}
	if next > l.config.MaxBackoff {
		next = l.config.MaxBackoff
	}
	return next
}

// prune drops window entries older than the window span. Called with the
// mutex held.
func (l *Limiter) prune(now time.Time) {
	cutoff := 0
	for cutoff < len(l.window) && now.Sub(l.window[cutoff]) >= l.config.Window {
		cutoff++
	}
	if cutoff > 0 {
		l.window = append(l.window[:0], l.window[cutoff:]...)
	}
}

// rollDay resets the daily counter when the calendar day changes. Called
// with the mutex held.
func (l *Limiter) rollDay(now time.Time) {
	if sameDay(l.dayStart, now) {
		return
	}
	l.logger.Info("daily quota window rolled over",
		zap.Int("requestsYesterday", l.today),
	)
	l.today = 0
	l.dayStart = startOfDay(now)
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
