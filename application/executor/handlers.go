package executor

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"chartfusion-agent/application/actions"
	"chartfusion-agent/application/organizer"
	"chartfusion-agent/application/ports"
	"chartfusion-agent/domain/config"
	"chartfusion-agent/domain/core/entities"
	"chartfusion-agent/domain/core/valueobjects"
	"chartfusion-agent/domain/layout"
	pkgerrors "chartfusion-agent/pkg/errors"
)

// insightCacheTTLSeconds bounds how long generated insights stay reusable.
// Underlying chart data can drift, so cached text goes stale after an hour.
const insightCacheTTLSeconds = 3600

// Placer hands out creation positions for one batch. Explicit positions win;
// everything else cascades from the viewport center so consecutive creations
// never stack on the same point.
type Placer struct {
	mu     sync.Mutex
	center valueobjects.Position
	step   float64
	count  int
}

// NewPlacer creates a placer cascading from the given center
func NewPlacer(center valueobjects.Position, step float64) *Placer {
	if step <= 0 {
		step = 24
	}
	return &Placer{center: center, step: step}
}

// Next returns the position for the next created element
func (p *Placer) Next(explicit *actions.PointParam) valueobjects.Position {
	if explicit != nil {
		if pos, err := valueobjects.NewPosition(explicit.X, explicit.Y); err == nil {
			return pos
		}
	}

	p.mu.Lock()
	offset := float64(p.count) * p.step
	p.count++
	p.mu.Unlock()

	pos, err := p.center.Translate(offset, offset)
	if err != nil {
		return p.center
	}
	return pos
}

// Handlers executes individual actions against the canvas and the remote
// backends. One Handlers instance serves all batches; per-batch state such
// as the placer is passed in per call.
type Handlers struct {
	repo      ports.CanvasRepository
	charts    ports.ChartService
	ai        ports.AIService
	organizer *organizer.Organizer
	admission ports.AdmissionController
	publisher ports.EventPublisher
	cache     ports.Cache
	config    *config.DomainConfig
	logger    *zap.Logger
}

// NewHandlers creates the handler set. The cache is optional; without one
// every insights request goes to the AI backend.
func NewHandlers(
	repo ports.CanvasRepository,
	charts ports.ChartService,
	ai ports.AIService,
	org *organizer.Organizer,
	admission ports.AdmissionController,
	publisher ports.EventPublisher,
	cache ports.Cache,
	cfg *config.DomainConfig,
	logger *zap.Logger,
) *Handlers {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		repo:      repo,
		charts:    charts,
		ai:        ai,
		organizer: org,
		admission: admission,
		publisher: publisher,
		cache:     cache,
		config:    cfg,
		logger:    logger,
	}
}

// Handle runs one scheduled action and returns its payload and user-facing
// message. Errors come back typed so the executor can classify them.
func (h *Handlers) Handle(ctx context.Context, item actions.QueueItem, placer *Placer) (map[string]interface{}, string, error) {
	switch params := item.Action.Params.(type) {
	case actions.CreateChartParams:
		return h.createChart(ctx, params, placer)
	case actions.CreateKPIParams:
		return h.createKPI(ctx, params, placer)
	case actions.OrganizeCanvasParams:
		return h.organizeCanvas(ctx, params)
	case actions.ArrangeElementsParams:
		return h.arrangeElements(ctx, params)
	case actions.SemanticGroupingParams:
		return h.semanticGrouping(ctx, params)
	case actions.GenerateChartInsightsParams:
		return h.generateChartInsights(ctx, params)
	case actions.AIQueryParams:
		return h.aiQuery(ctx, params, placer)
	case actions.CreateAnnotationParams:
		return h.createAnnotation(ctx, params, placer)
	case actions.CreateTextboxParams:
		return h.createTextbox(ctx, params, placer)
	default:
		return nil, "", pkgerrors.NewConfiguration(
			fmt.Sprintf("no handler registered for action kind %q", item.Action.Kind))
	}
}

func (h *Handlers) createChart(ctx context.Context, params actions.CreateChartParams, placer *Placer) (map[string]interface{}, string, error) {
	var artifact *ports.ChartArtifact
	err := h.admission.ExecuteWithRateLimit(ctx, actions.KindCreateChart.String(), func(ctx context.Context) error {
		var callErr error
		artifact, callErr = h.charts.CreateChart(ctx, params.DatasetID, params.Dimensions, params.Measures)
		return callErr
	})
	if err != nil {
		return nil, "", err
	}

	title := params.Title
	if title == "" {
		title = artifact.Title
	}
	if title == "" {
		title = fmt.Sprintf("%s by %s", strings.Join(params.Measures, ", "), strings.Join(params.Dimensions, ", "))
	}

	spec, err := valueobjects.NewChartSpec(title, params.ChartType, params.DatasetID, params.Dimensions, params.Measures)
	if err != nil {
		return nil, "", err
	}

	element, err := entities.NewChartElement(spec, placer.Next(params.Position), h.hintSize(entities.KindChart))
	if err != nil {
		return nil, "", err
	}
	element.SetProperty("remoteId", artifact.RemoteID)
	if len(artifact.Table) > 0 {
		element.SetProperty("table", string(artifact.Table))
	}

	if err := h.saveAndPublish(ctx, element); err != nil {
		return nil, "", err
	}

	payload := map[string]interface{}{
		"elementId": element.ID().String(),
		"title":     element.Title(),
		"remoteId":  artifact.RemoteID,
	}
	return payload, fmt.Sprintf("Created chart %q.", element.Title()), nil
}

func (h *Handlers) createKPI(ctx context.Context, params actions.CreateKPIParams, placer *Placer) (map[string]interface{}, string, error) {
	var value float64
	if params.Value != nil {
		// The planner already computed the number; no remote call needed.
		value = *params.Value
	} else {
		err := h.admission.ExecuteWithRateLimit(ctx, actions.KindCreateKPI.String(), func(ctx context.Context) error {
			var callErr error
			value, callErr = h.ai.CalculateMetric(ctx, params.Metric, params.DatasetID)
			return callErr
		})
		if err != nil {
			return nil, "", err
		}
	}

	element, err := entities.NewKPIElement(params.Title, params.Metric, value, placer.Next(params.Position), h.hintSize(entities.KindKPI))
	if err != nil {
		return nil, "", err
	}
	if err := h.saveAndPublish(ctx, element); err != nil {
		return nil, "", err
	}

	payload := map[string]interface{}{
		"elementId": element.ID().String(),
		"title":     element.Title(),
		"value":     value,
	}
	return payload, fmt.Sprintf("Added KPI %q.", element.Title()), nil
}

func (h *Handlers) organizeCanvas(ctx context.Context, params actions.OrganizeCanvasParams) (map[string]interface{}, string, error) {
	report, err := h.organizer.OrganizeNow(ctx, pointToPosition(params.Anchor), "user")
	if err != nil {
		return nil, "", err
	}

	payload := map[string]interface{}{
		"strategy": report.Strategy,
		"total":    report.Total,
		"moved":    report.Moved,
	}
	if report.Total == 0 {
		return payload, "The canvas is empty, so there was nothing to organize.", nil
	}
	return payload, fmt.Sprintf("Organized %d elements using the %s layout.", report.Total, report.Strategy), nil
}

func (h *Handlers) arrangeElements(ctx context.Context, params actions.ArrangeElementsParams) (map[string]interface{}, string, error) {
	ids := make([]valueobjects.ElementID, 0, len(params.ElementIDs))
	for _, raw := range params.ElementIDs {
		id, err := valueobjects.NewElementIDFromString(raw)
		if err != nil {
			return nil, "", err
		}
		ids = append(ids, id)
	}

	report, err := h.organizer.Arrange(ctx, ids, layoutStrategy(params.Strategy), pointToPosition(params.Anchor))
	if err != nil {
		return nil, "", err
	}

	payload := map[string]interface{}{
		"strategy": report.Strategy,
		"total":    report.Total,
		"moved":    report.Moved,
	}
	return payload, fmt.Sprintf("Arranged %d elements with the %s layout.", report.Total, report.Strategy), nil
}

func (h *Handlers) semanticGrouping(ctx context.Context, params actions.SemanticGroupingParams) (map[string]interface{}, string, error) {
	report, err := h.organizer.GroupByKeywords(ctx, params.Intent, pointToPosition(params.Anchor))
	if err != nil {
		return nil, "", err
	}

	labels := make([]string, 0, len(report.Zones))
	for _, zone := range report.Zones {
		labels = append(labels, zone.Label)
	}
	payload := map[string]interface{}{
		"zones": labels,
		"total": report.Total,
		"moved": report.Moved,
	}
	if len(report.Zones) == 0 {
		return payload, "There was nothing on the canvas to group.", nil
	}
	return payload, fmt.Sprintf("Grouped %d elements into %d zones: %s.", report.Total, len(report.Zones), strings.Join(labels, ", ")), nil
}

func (h *Handlers) generateChartInsights(ctx context.Context, params actions.GenerateChartInsightsParams) (map[string]interface{}, string, error) {
	id, err := valueobjects.NewElementIDFromString(params.ChartID)
	if err != nil {
		return nil, "", err
	}
	element, err := h.repo.GetByID(ctx, id)
	if err != nil {
		return nil, "", err
	}
	spec, ok := element.ChartSpec()
	if !ok {
		return nil, "", pkgerrors.NewValidationf("element %s is not a chart", params.ChartID)
	}

	// The cache key includes the element version so edits invalidate old
	// insights. A hit never touches the rate limiter.
	cacheKey := fmt.Sprintf("insights:%s:v%d:%s", element.ID(), element.Version(), params.UserContext)
	text, cached := h.cachedInsights(ctx, cacheKey)
	if !cached {
		var result *ports.AIResult
		err = h.admission.ExecuteWithRateLimit(ctx, actions.KindGenerateChartInsights.String(), func(ctx context.Context) error {
			var callErr error
			result, callErr = h.ai.GenerateInsights(ctx, element.Title(), spec.Dimensions(), spec.Measures(), params.UserContext)
			return callErr
		})
		if err != nil {
			return nil, "", err
		}
		text = result.Text
		if h.cache != nil {
			if cacheErr := h.cache.Set(ctx, cacheKey, text, insightCacheTTLSeconds); cacheErr != nil {
				h.logger.Warn("failed to cache insights", zap.Error(cacheErr))
			}
		}
	}

	// Insights land just right of the chart they describe.
	at, err := element.Position().Translate(element.Size().Width()+h.config.Padding, 0)
	if err != nil {
		at = element.Position()
	}
	note, err := entities.NewElement(entities.KindTextbox, "Insights: "+element.Title(), at, h.hintSize(entities.KindTextbox))
	if err != nil {
		return nil, "", err
	}
	note.SetProperty("text", text)
	note.SetProperty("sourceChartId", element.ID().String())
	if err := h.saveAndPublish(ctx, note); err != nil {
		return nil, "", err
	}

	payload := map[string]interface{}{
		"elementId": note.ID().String(),
		"chartId":   element.ID().String(),
		"insights":  text,
		"cached":    cached,
	}
	return payload, fmt.Sprintf("Wrote insights for %q next to the chart.", element.Title()), nil
}

func (h *Handlers) cachedInsights(ctx context.Context, key string) (string, bool) {
	if h.cache == nil {
		return "", false
	}
	value, ok := h.cache.Get(ctx, key)
	if !ok {
		return "", false
	}
	text, ok := value.(string)
	return text, ok
}

func (h *Handlers) aiQuery(ctx context.Context, params actions.AIQueryParams, placer *Placer) (map[string]interface{}, string, error) {
	canvasContext, err := h.describeCanvas(ctx)
	if err != nil {
		return nil, "", err
	}

	var result *ports.AIResult
	err = h.admission.ExecuteWithRateLimit(ctx, actions.KindAIQuery.String(), func(ctx context.Context) error {
		var callErr error
		result, callErr = h.ai.Query(ctx, params.Prompt, canvasContext)
		return callErr
	})
	if err != nil {
		return nil, "", err
	}

	title := params.Prompt
	if len(title) > 60 {
		title = title[:57] + "..."
	}
	note, err := entities.NewElement(entities.KindTextbox, title, placer.Next(params.Position), h.hintSize(entities.KindTextbox))
	if err != nil {
		return nil, "", err
	}
	note.SetProperty("text", result.Text)
	if err := h.saveAndPublish(ctx, note); err != nil {
		return nil, "", err
	}

	payload := map[string]interface{}{
		"elementId": note.ID().String(),
		"answer":    result.Text,
	}
	return payload, "I've answered your question in a note on the canvas.", nil
}

func (h *Handlers) createAnnotation(ctx context.Context, params actions.CreateAnnotationParams, placer *Placer) (map[string]interface{}, string, error) {
	var at valueobjects.Position
	if params.TargetID != "" {
		id, err := valueobjects.NewElementIDFromString(params.TargetID)
		if err != nil {
			return nil, "", err
		}
		target, err := h.repo.GetByID(ctx, id)
		if err != nil {
			return nil, "", err
		}
		// Annotations sit just below their target.
		below, posErr := target.Position().Translate(0, target.Size().Height()+h.config.Padding)
		if posErr != nil {
			below = target.Position()
		}
		at = below
	} else {
		at = placer.Next(params.Position)
	}

	element, err := entities.NewElement(entities.KindAnnotation, params.Text, at, h.hintSize(entities.KindAnnotation))
	if err != nil {
		return nil, "", err
	}
	element.SetProperty("text", params.Text)
	if params.TargetID != "" {
		element.SetProperty("targetId", params.TargetID)
	}
	if err := h.saveAndPublish(ctx, element); err != nil {
		return nil, "", err
	}

	payload := map[string]interface{}{"elementId": element.ID().String()}
	return payload, "Added your annotation to the canvas.", nil
}

func (h *Handlers) createTextbox(ctx context.Context, params actions.CreateTextboxParams, placer *Placer) (map[string]interface{}, string, error) {
	title := params.Title
	if title == "" {
		title = "Note"
	}

	element, err := entities.NewElement(entities.KindTextbox, title, placer.Next(params.Position), h.hintSize(entities.KindTextbox))
	if err != nil {
		return nil, "", err
	}
	element.SetProperty("text", params.Text)
	if err := h.saveAndPublish(ctx, element); err != nil {
		return nil, "", err
	}

	payload := map[string]interface{}{"elementId": element.ID().String()}
	return payload, fmt.Sprintf("Added text box %q.", title), nil
}

// describeCanvas builds a compact textual summary of what is on the canvas,
// used as grounding context for free-form AI queries
func (h *Handlers) describeCanvas(ctx context.Context) (string, error) {
	elements, err := h.repo.GetAll(ctx)
	if err != nil {
		return "", pkgerrors.Wrap(err, "load canvas")
	}
	if len(elements) == 0 {
		return "The canvas is empty.", nil
	}

	const maxDescribed = 20
	lines := make([]string, 0, len(elements)+1)
	for i, element := range elements {
		if i == maxDescribed {
			lines = append(lines, fmt.Sprintf("...and %d more elements", len(elements)-maxDescribed))
			break
		}
		lines = append(lines, fmt.Sprintf("- %s: %s", element.Kind(), element.Title()))
	}
	return "Canvas contents:\n" + strings.Join(lines, "\n"), nil
}

func (h *Handlers) saveAndPublish(ctx context.Context, element *entities.CanvasElement) error {
	if err := h.repo.Save(ctx, element); err != nil {
		return pkgerrors.Wrap(err, "save element")
	}
	pending := element.GetUncommittedEvents()
	element.MarkEventsAsCommitted()
	if len(pending) == 0 || h.publisher == nil {
		return nil
	}
	if err := h.publisher.PublishBatch(ctx, pending); err != nil {
		h.logger.Warn("failed to publish element events", zap.Error(err))
	}
	return nil
}

func (h *Handlers) hintSize(kind entities.ElementKind) valueobjects.Size {
	hint := h.config.HintFor(string(kind))
	size, err := valueobjects.NewSize(hint.Width, hint.Height)
	if err != nil {
		size, _ = valueobjects.NewSize(400, 300)
	}
	return size
}

func pointToPosition(point *actions.PointParam) *valueobjects.Position {
	if point == nil {
		return nil
	}
	pos, err := valueobjects.NewPosition(point.X, point.Y)
	if err != nil {
		return nil
	}
	return &pos
}

func layoutStrategy(raw string) layout.Strategy {
	return layout.Strategy(raw)
}
