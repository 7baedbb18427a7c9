// Package executor runs validated action batches against the canvas: it
// schedules actions into priority tiers, fans each tier out over bounded
// worker slots, and reports one result per submitted action. A batch never
// aborts: every failure is contained to its own action.
package executor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"chartfusion-agent/application/actions"
	"chartfusion-agent/application/ports"
	"chartfusion-agent/domain/core/valueobjects"
	"chartfusion-agent/domain/events"
	pkgerrors "chartfusion-agent/pkg/errors"
)

// Config bounds the executor's fan-out per tier
type Config struct {
	// LocalConcurrency is the worker slot count for in-process actions
	LocalConcurrency int

	// APIConcurrency is the worker slot count for remote-bound actions
	APIConcurrency int

	// PlacementStep is the cascade offset between consecutive creations
	PlacementStep float64
}

// DefaultConfig returns the standard executor bounds
func DefaultConfig() *Config {
	return &Config{
		LocalConcurrency: 4,
		APIConcurrency:   2,
		PlacementStep:    24,
	}
}

// Executor turns an action batch into a result set
type Executor struct {
	validator *actions.Validator
	scheduler *actions.Scheduler
	handlers  *Handlers
	admission ports.AdmissionController
	publisher ports.EventPublisher
	repo      ports.CanvasRepository
	clock     ports.Clock
	config    *Config
	logger    *zap.Logger
}

// NewExecutor wires the executor from its collaborators
func NewExecutor(
	validator *actions.Validator,
	scheduler *actions.Scheduler,
	handlers *Handlers,
	admission ports.AdmissionController,
	publisher ports.EventPublisher,
	repo ports.CanvasRepository,
	clock ports.Clock,
	cfg *Config,
	logger *zap.Logger,
) *Executor {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.LocalConcurrency < 1 {
		cfg.LocalConcurrency = 1
	}
	if cfg.APIConcurrency < 1 {
		cfg.APIConcurrency = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		validator: validator,
		scheduler: scheduler,
		handlers:  handlers,
		admission: admission,
		publisher: publisher,
		repo:      repo,
		clock:     clock,
		config:    cfg,
		logger:    logger,
	}
}

// batchRun is the mutable state of one batch in flight
type batchRun struct {
	id           string
	results      []ExecutionResult
	placer       *Placer
	quotaTripped atomic.Bool
	quotaOnce    sync.Once
}

// ExecuteBatch validates, schedules, and runs a batch. It always returns
// exactly one result per submitted action, in submission order. Invalid
// actions fail individually; the rest of the batch still runs. Once the
// daily quota trips, remaining API-bound actions fail fast without touching
// the network while local actions keep running.
func (e *Executor) ExecuteBatch(ctx context.Context, batch []actions.Action) []ExecutionResult {
	run := &batchRun{
		id:      uuid.New().String(),
		results: make([]ExecutionResult, len(batch)),
	}

	started := e.clock.Now()
	e.publish(ctx, events.NewBatchStarted(run.id, len(batch), started))
	e.logger.Info("executing action batch",
		zap.String("batchId", run.id),
		zap.Int("actions", len(batch)),
	)

	valid := e.validate(batch, run)
	queue, err := e.scheduler.Schedule(valid.actions)
	if err != nil {
		// Unknown kinds were already rejected at validation, so a scheduling
		// failure is a classifier table gap. Fail what remains rather than
		// dropping it silently.
		for _, origIndex := range valid.indexes {
			run.results[origIndex] = failureResult(origIndex, batch[origIndex].Kind, err, 0)
		}
		return e.finish(ctx, run, started)
	}

	run.placer = NewPlacer(e.creationCenter(ctx), e.config.PlacementStep)

	for _, tier := range queue.Tiers {
		e.runTier(ctx, tier, valid.indexes, run)
	}

	return e.finish(ctx, run, started)
}

type validBatch struct {
	actions []actions.Action
	indexes []int
}

// validate fills failure results for invalid actions and returns the rest
// together with their original batch positions
func (e *Executor) validate(batch []actions.Action, run *batchRun) validBatch {
	errs := e.validator.ValidateBatch(batch)
	valid := validBatch{
		actions: make([]actions.Action, 0, len(batch)),
		indexes: make([]int, 0, len(batch)),
	}
	for i, validationErr := range errs {
		if validationErr != nil {
			run.results[i] = failureResult(i, batch[i].Kind, validationErr, 0)
			continue
		}
		valid.actions = append(valid.actions, batch[i])
		valid.indexes = append(valid.indexes, i)
	}
	return valid
}

// runTier drains one priority tier. Local and API-bound streams run side by
// side, each over its own bounded slot pool, and the tier only returns when
// every item in it has finished.
func (e *Executor) runTier(ctx context.Context, tier actions.Tier, indexes []int, run *batchRun) {
	var wg sync.WaitGroup
	localSlots := make(chan struct{}, e.config.LocalConcurrency)
	apiSlots := make(chan struct{}, e.config.APIConcurrency)

	dispatch := func(item actions.QueueItem, slots chan struct{}) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			slots <- struct{}{}
			defer func() { <-slots }()
			e.runItem(ctx, item, indexes[item.Index], run)
		}()
	}

	for _, item := range tier.Local {
		dispatch(item, localSlots)
	}
	for _, item := range tier.APIBound {
		dispatch(item, apiSlots)
	}
	wg.Wait()
}

// runItem executes one action and records its result at the original batch
// position. All panics in handlers surface as internal-error results so a
// single bad action cannot take the batch down.
func (e *Executor) runItem(ctx context.Context, item actions.QueueItem, origIndex int, run *batchRun) {
	if item.Weight.IsAPIBound() && run.quotaTripped.Load() {
		run.results[origIndex] = failureResult(origIndex, item.Action.Kind,
			pkgerrors.NewQuota("daily request quota exhausted"), 0)
		return
	}

	started := e.clock.Now()
	payload, human, err := e.safeHandle(ctx, item, run.placer)
	elapsed := e.clock.Now().Sub(started)

	if err != nil {
		if pkgerrors.IsQuota(err) {
			e.tripQuota(ctx, run)
		}
		e.logger.Warn("action failed",
			zap.String("batchId", run.id),
			zap.String("kind", item.Action.Kind.String()),
			zap.Int("index", origIndex),
			zap.Error(err),
		)
		run.results[origIndex] = failureResult(origIndex, item.Action.Kind, err, elapsed)
		return
	}

	run.results[origIndex] = successResult(origIndex, item.Action.Kind, payload, human, elapsed)
}

func (e *Executor) safeHandle(ctx context.Context, item actions.QueueItem, placer *Placer) (payload map[string]interface{}, human string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = pkgerrors.NewInternal("action handler panicked", nil)
			e.logger.Error("handler panic recovered",
				zap.String("kind", item.Action.Kind.String()),
				zap.Any("panic", r),
			)
		}
	}()
	return e.handlers.Handle(ctx, item, placer)
}

// tripQuota flips the batch into quota short-circuit mode, once
func (e *Executor) tripQuota(ctx context.Context, run *batchRun) {
	run.quotaOnce.Do(func() {
		run.quotaTripped.Store(true)
		metrics := e.admission.Metrics()
		e.logger.Warn("daily quota exhausted, short-circuiting remaining remote actions",
			zap.String("batchId", run.id),
			zap.Int("requestsToday", metrics.RequestsToday),
		)
		e.publish(ctx, events.NewQuotaExhausted(metrics.RequestsToday, metrics.DailyCeiling, e.clock.Now()))
	})
}

// finish publishes the batch summary and returns the completed result set
func (e *Executor) finish(ctx context.Context, run *batchRun, started time.Time) []ExecutionResult {
	elapsed := e.clock.Now().Sub(started)
	summary := Summarize(run.id, run.results, elapsed)
	e.publish(ctx, events.NewBatchCompleted(run.id, summary.Total, summary.Succeeded, summary.Failed, e.clock.Now()))
	e.logger.Info("action batch finished",
		zap.String("batchId", run.id),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", elapsed),
	)
	return run.results
}

// creationCenter resolves where this batch's created elements cascade from
func (e *Executor) creationCenter(ctx context.Context) valueobjects.Position {
	center, err := e.repo.ViewportCenter(ctx)
	if err != nil {
		e.logger.Warn("viewport center unavailable, cascading from origin", zap.Error(err))
		return valueobjects.Position{}
	}
	return center
}

func (e *Executor) publish(ctx context.Context, event events.DomainEvent) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		e.logger.Warn("failed to publish event",
			zap.String("eventType", event.GetEventType()),
			zap.Error(err),
		)
	}
}
