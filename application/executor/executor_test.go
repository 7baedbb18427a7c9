package executor

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"chartfusion-agent/application/actions"
	"chartfusion-agent/application/organizer"
	"chartfusion-agent/application/ports"
	"chartfusion-agent/domain/config"
	"chartfusion-agent/domain/core/entities"
	"chartfusion-agent/domain/core/valueobjects"
	"chartfusion-agent/domain/events"
	"chartfusion-agent/domain/layout"
	pkgerrors "chartfusion-agent/pkg/errors"
)

type memRepo struct {
	mu       sync.Mutex
	elements map[valueobjects.ElementID]*entities.CanvasElement
	order    []valueobjects.ElementID
}

func newMemRepo() *memRepo {
	return &memRepo{elements: make(map[valueobjects.ElementID]*entities.CanvasElement)}
}

func (r *memRepo) Save(_ context.Context, element *entities.CanvasElement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.elements[element.ID()]; !ok {
		r.order = append(r.order, element.ID())
	}
	r.elements[element.ID()] = element
	return nil
}

func (r *memRepo) GetByID(_ context.Context, id valueobjects.ElementID) (*entities.CanvasElement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	element, ok := r.elements[id]
	if !ok {
		return nil, pkgerrors.NewNotFound("element not found: " + id.String())
	}
	return element, nil
}

func (r *memRepo) GetAll(_ context.Context) ([]*entities.CanvasElement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]*entities.CanvasElement, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, r.elements[id])
	}
	return all, nil
}

func (r *memRepo) GetByKind(_ context.Context, kind entities.ElementKind) ([]*entities.CanvasElement, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	matched := make([]*entities.CanvasElement, 0)
	for _, id := range r.order {
		if r.elements[id].Kind() == kind {
			matched = append(matched, r.elements[id])
		}
	}
	return matched, nil
}

func (r *memRepo) Delete(_ context.Context, id valueobjects.ElementID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.elements, id)
	return nil
}

func (r *memRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.elements), nil
}

func (r *memRepo) ViewportCenter(_ context.Context) (valueobjects.Position, error) {
	return valueobjects.Position{}, nil
}

func (r *memRepo) SetViewport(_ context.Context, _ valueobjects.Bounds) error {
	return nil
}

type fakeCharts struct {
	mu     sync.Mutex
	calls  int
	fail   error
	panics bool
}

func (c *fakeCharts) CreateChart(_ context.Context, datasetID string, _, _ []string) (*ports.ChartArtifact, error) {
	if c.panics {
		panic("chart backend exploded")
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail != nil {
		return nil, c.fail
	}
	c.calls++
	return &ports.ChartArtifact{RemoteID: fmt.Sprintf("remote-%s-%d", datasetID, c.calls)}, nil
}

type fakeAI struct {
	mu    sync.Mutex
	calls int
}

func (a *fakeAI) Query(_ context.Context, prompt, _ string) (*ports.AIResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	return &ports.AIResult{Text: "answer to: " + prompt}, nil
}

func (a *fakeAI) GenerateInsights(_ context.Context, chartTitle string, _, _ []string, _ string) (*ports.AIResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	return &ports.AIResult{Text: "insights for " + chartTitle}, nil
}

func (a *fakeAI) CalculateMetric(_ context.Context, metric, _ string) (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	return 42, nil
}

// fakeAdmission admits every call until quotaAfter calls have been made,
// then fails fast with a quota error like the real limiter
type fakeAdmission struct {
	mu         sync.Mutex
	calls      int
	quotaAfter int
}

func (a *fakeAdmission) ExecuteWithRateLimit(ctx context.Context, _ string, work func(context.Context) error) error {
	a.mu.Lock()
	a.calls++
	n := a.calls
	a.mu.Unlock()

	if a.quotaAfter > 0 && n > a.quotaAfter {
		return pkgerrors.NewQuota("daily request quota exhausted")
	}
	return work(ctx)
}

func (a *fakeAdmission) Metrics() ports.LimiterMetrics {
	a.mu.Lock()
	defer a.mu.Unlock()
	return ports.LimiterMetrics{RequestsToday: a.calls, DailyCeiling: a.quotaAfter}
}

func (a *fakeAdmission) callCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]interface{}
	hits    int
}

func (c *fakeCache) Get(_ context.Context, key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	value, ok := c.entries[key]
	if ok {
		c.hits++
	}
	return value, ok
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.entries == nil {
		c.entries = make(map[string]interface{})
	}
	c.entries[key] = value
	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
	return nil
}

func (c *fakeCache) Clear(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]interface{})
	return nil
}

func (c *fakeCache) hitCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits
}

type eventSink struct {
	mu     sync.Mutex
	events []events.DomainEvent
}

func (s *eventSink) Publish(_ context.Context, event events.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *eventSink) PublishBatch(_ context.Context, batch []events.DomainEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, batch...)
	return nil
}

func (s *eventSink) countByType(eventType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, event := range s.events {
		if event.GetEventType() == eventType {
			n++
		}
	}
	return n
}

type testRig struct {
	executor  *Executor
	repo      *memRepo
	charts    *fakeCharts
	ai        *fakeAI
	admission *fakeAdmission
	sink      *eventSink
	cache     *fakeCache
}

func newTestRig() *testRig {
	return newTestRigWithConfig(DefaultConfig())
}

func newTestRigWithConfig(execCfg *Config) *testRig {
	repo := newMemRepo()
	charts := &fakeCharts{}
	ai := &fakeAI{}
	admission := &fakeAdmission{}
	sink := &eventSink{}
	cache := &fakeCache{}
	clock := ports.NewFakeClock(time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC))
	cfg := config.DefaultDomainConfig()
	engine := layout.NewDefaultEngine(cfg, nil)

	org := organizer.NewOrganizer(
		repo,
		layout.NewDefaultRelationshipDetector(nil),
		layout.NewDefaultStrategySelector(nil),
		engine,
		layout.NewDefaultGrouper(cfg, engine),
		organizer.NewStaticRules(nil),
		sink,
		clock,
		zap.NewNop(),
	)
	handlers := NewHandlers(repo, charts, ai, org, admission, sink, cache, cfg, zap.NewNop())
	exec := NewExecutor(
		actions.NewValidator(),
		actions.NewScheduler(actions.NewClassifier()),
		handlers,
		admission,
		sink,
		repo,
		clock,
		execCfg,
		zap.NewNop(),
	)
	return &testRig{executor: exec, repo: repo, charts: charts, ai: ai, admission: admission, sink: sink, cache: cache}
}

func chartAction(dataset string) actions.Action {
	return actions.Action{Kind: actions.KindCreateChart, Params: actions.CreateChartParams{
		DatasetID:  dataset,
		Dimensions: []string{"region"},
		Measures:   []string{"revenue"},
		Title:      "revenue by region (" + dataset + ")",
	}}
}

func TestExecuteBatch_OneResultPerActionInSubmissionOrder(t *testing.T) {
	rig := newTestRig()

	batch := []actions.Action{
		{Kind: actions.KindCreateTextbox, Params: actions.CreateTextboxParams{Text: "summary"}},
		chartAction("sales"),
		{Kind: actions.KindOrganizeCanvas, Params: actions.OrganizeCanvasParams{}},
	}

	results := rig.executor.ExecuteBatch(context.Background(), batch)

	require.Len(t, results, len(batch))
	for i, result := range results {
		assert.Equal(t, i, result.Index, "result %d must keep its submission position", i)
		assert.Equal(t, batch[i].Kind, result.Kind)
		assert.True(t, result.Success, "action %d: %s", i, result.ErrorMessage)
		assert.NotEmpty(t, result.HumanMessage)
	}
}

func TestExecuteBatch_TierOrderingMakesChartsVisibleToOrganize(t *testing.T) {
	rig := newTestRig()

	// Submitted organize-first, but data creation runs in the earlier tier.
	batch := []actions.Action{
		{Kind: actions.KindOrganizeCanvas, Params: actions.OrganizeCanvasParams{}},
		chartAction("alpha"),
		chartAction("beta"),
	}

	results := rig.executor.ExecuteBatch(context.Background(), batch)

	require.Len(t, results, 3)
	organizeResult := results[0]
	require.True(t, organizeResult.Success, organizeResult.ErrorMessage)
	assert.EqualValues(t, 2, organizeResult.Payload["total"],
		"organize must see the charts created earlier in the same batch")
}

func TestExecuteBatch_InvalidActionFailsAloneAndNamesIndex(t *testing.T) {
	rig := newTestRig()

	batch := []actions.Action{
		chartAction("sales"),
		{Kind: actions.Kind("delete_universe"), Params: actions.OrganizeCanvasParams{}},
		{Kind: actions.KindCreateTextbox, Params: actions.CreateTextboxParams{Text: "note"}},
	}

	results := rig.executor.ExecuteBatch(context.Background(), batch)

	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.True(t, results[2].Success)

	bad := results[1]
	assert.False(t, bad.Success)
	assert.Contains(t, bad.ErrorMessage, "[1].kind")
	assert.NotEmpty(t, bad.HumanMessage)

	count, _ := rig.repo.Count(context.Background())
	assert.Equal(t, 2, count, "valid actions still ran")
}

func TestExecuteBatch_FailureDoesNotAbortBatch(t *testing.T) {
	rig := newTestRig()
	rig.charts.fail = pkgerrors.NewRemote("chart backend returned 502", nil)

	batch := []actions.Action{
		chartAction("sales"),
		{Kind: actions.KindCreateTextbox, Params: actions.CreateTextboxParams{Text: "still here"}},
	}

	results := rig.executor.ExecuteBatch(context.Background(), batch)

	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].ErrorMessage, "502")
	assert.Contains(t, results[0].HumanMessage, "upstream service")
	assert.True(t, results[1].Success, "local action unaffected by remote failure")
}

func TestExecuteBatch_QuotaShortCircuitsRemainingAPIActions(t *testing.T) {
	// One API slot makes the limiter interaction sequence deterministic.
	rig := newTestRigWithConfig(&Config{LocalConcurrency: 4, APIConcurrency: 1, PlacementStep: 24})
	rig.admission.quotaAfter = 2

	batch := []actions.Action{
		chartAction("one"),
		chartAction("two"),
		chartAction("three"),
		chartAction("four"),
		{Kind: actions.KindCreateTextbox, Params: actions.CreateTextboxParams{Text: "local survives"}},
	}

	results := rig.executor.ExecuteBatch(context.Background(), batch)

	require.Len(t, results, 5)

	succeeded, quotaFailed := 0, 0
	for _, result := range results[:4] {
		if result.Success {
			succeeded++
		} else {
			quotaFailed++
			assert.Contains(t, result.ErrorMessage, "quota")
			assert.Contains(t, result.HumanMessage, "usage limit")
		}
	}
	assert.Equal(t, 2, succeeded)
	assert.Equal(t, 2, quotaFailed)
	assert.True(t, results[4].Success, "local actions keep working after the quota trips")

	// Two admitted calls plus the one rejected probe that tripped the flag.
	// The fourth chart short-circuits without reaching the limiter.
	assert.Equal(t, 3, rig.admission.callCount())
	assert.Equal(t, 1, rig.sink.countByType(events.TypeQuotaExhausted), "quota event fires exactly once")
}

func TestExecuteBatch_PanicInHandlerIsContained(t *testing.T) {
	rig := newTestRig()
	rig.charts.panics = true

	batch := []actions.Action{
		chartAction("sales"),
		{Kind: actions.KindCreateTextbox, Params: actions.CreateTextboxParams{Text: "note"}},
	}

	results := rig.executor.ExecuteBatch(context.Background(), batch)

	require.Len(t, results, 2)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].ErrorMessage, "panicked")
	assert.True(t, results[1].Success)
}

func TestExecuteBatch_PublishesLifecycleEvents(t *testing.T) {
	rig := newTestRig()

	rig.executor.ExecuteBatch(context.Background(), []actions.Action{
		{Kind: actions.KindCreateTextbox, Params: actions.CreateTextboxParams{Text: "note"}},
	})

	assert.Equal(t, 1, rig.sink.countByType(events.TypeBatchStarted))
	assert.Equal(t, 1, rig.sink.countByType(events.TypeBatchCompleted))
	assert.Equal(t, 1, rig.sink.countByType(events.TypeElementCreated))
}

func TestExecuteBatch_EmptyBatch(t *testing.T) {
	rig := newTestRig()

	results := rig.executor.ExecuteBatch(context.Background(), nil)

	assert.Empty(t, results)
	assert.Equal(t, 1, rig.sink.countByType(events.TypeBatchCompleted))
}

func TestExecuteBatch_KPIWithPrecomputedValueSkipsNetwork(t *testing.T) {
	rig := newTestRig()

	value := 1250000.0
	batch := []actions.Action{
		{Kind: actions.KindCreateKPI, Params: actions.CreateKPIParams{
			Title:  "Total Revenue",
			Metric: "sum(revenue)",
			Value:  &value,
		}},
	}

	results := rig.executor.ExecuteBatch(context.Background(), batch)

	require.Len(t, results, 1)
	require.True(t, results[0].Success, results[0].ErrorMessage)
	assert.EqualValues(t, value, results[0].Payload["value"])
	assert.Zero(t, rig.admission.callCount(), "precomputed KPI makes no remote calls")
	assert.Zero(t, rig.ai.calls)
}

func TestExecuteBatch_InsightsForMissingChart(t *testing.T) {
	rig := newTestRig()

	batch := []actions.Action{
		{Kind: actions.KindGenerateChartInsights, Params: actions.GenerateChartInsightsParams{
			ChartID: "7f9c24e5-2b31-4389-9f5a-6f1d3e6a8b20",
		}},
	}

	results := rig.executor.ExecuteBatch(context.Background(), batch)

	require.Len(t, results, 1)
	assert.False(t, results[0].Success)
	assert.Contains(t, results[0].HumanMessage, "couldn't find")
	assert.Zero(t, rig.ai.calls, "no model call for a chart that does not exist")
}

func TestExecuteBatch_RepeatedInsightsServedFromCache(t *testing.T) {
	rig := newTestRig()
	ctx := context.Background()

	spec, err := valueobjects.NewChartSpec("Revenue by Region", "bar", "ds-1", []string{"region"}, []string{"revenue"})
	require.NoError(t, err)
	pos, err := valueobjects.NewPosition(100, 100)
	require.NoError(t, err)
	size, err := valueobjects.NewSize(400, 300)
	require.NoError(t, err)
	chart, err := entities.NewChartElement(spec, pos, size)
	require.NoError(t, err)
	chart.MarkEventsAsCommitted()
	require.NoError(t, rig.repo.Save(ctx, chart))

	batch := []actions.Action{
		{Kind: actions.KindGenerateChartInsights, Params: actions.GenerateChartInsightsParams{
			ChartID: chart.ID().String(),
		}},
	}

	first := rig.executor.ExecuteBatch(ctx, batch)
	require.Len(t, first, 1)
	require.True(t, first[0].Success, "first run failed: %s", first[0].ErrorMessage)
	assert.Equal(t, 1, rig.ai.calls)
	assert.Equal(t, false, first[0].Payload["cached"])

	second := rig.executor.ExecuteBatch(ctx, batch)
	require.Len(t, second, 1)
	require.True(t, second[0].Success, "second run failed: %s", second[0].ErrorMessage)

	assert.Equal(t, 1, rig.ai.calls, "second request must reuse cached insights")
	assert.Equal(t, 1, rig.admission.callCount(), "cache hits spend no quota")
	assert.Equal(t, 1, rig.cache.hitCount())
	assert.Equal(t, true, second[0].Payload["cached"])

	// Both runs still leave a note on the canvas.
	notes, err := rig.repo.GetByKind(ctx, entities.KindTextbox)
	require.NoError(t, err)
	assert.Len(t, notes, 2)
}

func TestExecuteBatch_CascadedPlacementNeverStacks(t *testing.T) {
	rig := newTestRig()

	batch := []actions.Action{
		{Kind: actions.KindCreateTextbox, Params: actions.CreateTextboxParams{Text: "a"}},
		{Kind: actions.KindCreateTextbox, Params: actions.CreateTextboxParams{Text: "b"}},
		{Kind: actions.KindCreateTextbox, Params: actions.CreateTextboxParams{Text: "c"}},
	}

	results := rig.executor.ExecuteBatch(context.Background(), batch)
	require.Len(t, results, 3)

	all, err := rig.repo.GetAll(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 3)

	seen := make(map[string]bool)
	for _, element := range all {
		key := fmt.Sprintf("%.1f,%.1f", element.Position().X(), element.Position().Y())
		assert.False(t, seen[key], "two elements share position %s", key)
		seen[key] = true
	}
}
