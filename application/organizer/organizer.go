// Package organizer coordinates full-canvas organize passes: relationship
// detection, strategy selection, geometry, and applying the resulting moves
// back to the canvas.
package organizer

import (
	"context"

	"go.uber.org/zap"

	"chartfusion-agent/application/ports"
	"chartfusion-agent/domain/core/entities"
	"chartfusion-agent/domain/core/valueobjects"
	"chartfusion-agent/domain/events"
	"chartfusion-agent/domain/layout"
	pkgerrors "chartfusion-agent/pkg/errors"
)

// RulesProvider yields the current keyword grouping rules. Implementations
// may swap rules at runtime, so callers must re-read on every pass.
type RulesProvider interface {
	Rules() *layout.GroupingRules
}

// StaticRules is a RulesProvider that never changes
type StaticRules struct {
	rules *layout.GroupingRules
}

// NewStaticRules wraps fixed grouping rules
func NewStaticRules(rules *layout.GroupingRules) *StaticRules {
	if rules == nil {
		rules = layout.DefaultGroupingRules()
	}
	return &StaticRules{rules: rules}
}

// Rules returns the wrapped rules
func (s *StaticRules) Rules() *layout.GroupingRules {
	return s.rules
}

// ZoneInfo summarizes one zone created by a grouping pass
type ZoneInfo struct {
	Label   string
	Members int
}

// Report describes what an organize pass did
type Report struct {
	Strategy string
	Total    int
	Moved    int
	Zones    []ZoneInfo
}

// Organizer runs organize and grouping passes over the canvas
type Organizer struct {
	repo      ports.CanvasRepository
	detector  layout.RelationshipDetector
	selector  layout.StrategySelector
	engine    layout.Engine
	grouper   layout.Grouper
	rules     RulesProvider
	publisher ports.EventPublisher
	clock     ports.Clock
	logger    *zap.Logger
}

// NewOrganizer creates an organizer with the given collaborators
func NewOrganizer(
	repo ports.CanvasRepository,
	detector layout.RelationshipDetector,
	selector layout.StrategySelector,
	engine layout.Engine,
	grouper layout.Grouper,
	rules RulesProvider,
	publisher ports.EventPublisher,
	clock ports.Clock,
	logger *zap.Logger,
) *Organizer {
	if rules == nil {
		rules = NewStaticRules(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Organizer{
		repo:      repo,
		detector:  detector,
		selector:  selector,
		engine:    engine,
		grouper:   grouper,
		rules:     rules,
		publisher: publisher,
		clock:     clock,
		logger:    logger,
	}
}

// OrganizeNow runs one full organize pass: detect relationships, pick the
// strategy, compute geometry, and apply the moves. An empty canvas is a
// successful no-op.
func (o *Organizer) OrganizeNow(ctx context.Context, anchor *valueobjects.Position, triggeredBy string) (*Report, error) {
	elements, err := o.repo.GetAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load canvas")
	}
	if len(elements) == 0 {
		o.logger.Debug("organize skipped: canvas is empty")
		return &Report{Strategy: string(layout.StrategyGrid)}, nil
	}

	origin, err := o.resolveAnchor(ctx, anchor)
	if err != nil {
		return nil, err
	}

	relationships := o.detector.Detect(elements)
	strategy := o.selector.Select(elements, relationships)

	placements, err := o.engine.Arrange(elements, strategy, relationships, origin)
	if err != nil {
		return nil, err
	}

	moved, movedIDs, err := o.applyPlacements(ctx, elements, placements)
	if err != nil {
		return nil, err
	}

	o.logger.Info("canvas organized",
		zap.String("strategy", string(strategy)),
		zap.Int("elements", len(elements)),
		zap.Int("moved", moved),
		zap.Int("relationships", len(relationships)),
	)

	o.publishOrganized(ctx, string(strategy), movedIDs, 0, moved, triggeredBy)
	return &Report{Strategy: string(strategy), Total: len(elements), Moved: moved}, nil
}

// Arrange repositions a subset of elements with an explicit strategy. Empty
// ids means the whole canvas; an empty strategy defers to the selector.
func (o *Organizer) Arrange(ctx context.Context, ids []valueobjects.ElementID, strategy layout.Strategy, anchor *valueobjects.Position) (*Report, error) {
	var elements []*entities.CanvasElement
	var err error

	if len(ids) == 0 {
		elements, err = o.repo.GetAll(ctx)
		if err != nil {
			return nil, pkgerrors.Wrap(err, "load canvas")
		}
	} else {
		elements = make([]*entities.CanvasElement, 0, len(ids))
		for _, id := range ids {
			element, err := o.repo.GetByID(ctx, id)
			if err != nil {
				return nil, err
			}
			elements = append(elements, element)
		}
	}

	if len(elements) == 0 {
		return &Report{Strategy: string(layout.StrategyGrid)}, nil
	}

	origin, err := o.resolveAnchor(ctx, anchor)
	if err != nil {
		return nil, err
	}

	relationships := o.detector.Detect(elements)
	if strategy == "" {
		strategy = o.selector.Select(elements, relationships)
	}

	placements, err := o.engine.Arrange(elements, strategy, relationships, origin)
	if err != nil {
		return nil, err
	}

	moved, movedIDs, err := o.applyPlacements(ctx, elements, placements)
	if err != nil {
		return nil, err
	}

	o.publishOrganized(ctx, string(strategy), movedIDs, 0, moved, "arrange")
	return &Report{Strategy: string(strategy), Total: len(elements), Moved: moved}, nil
}

// GroupByKeywords buckets charts and KPIs into labeled zones using the
// current grouping rules, narrowed by the user's stated intent
func (o *Organizer) GroupByKeywords(ctx context.Context, intent string, anchor *valueobjects.Position) (*Report, error) {
	elements, err := o.repo.GetAll(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "load canvas")
	}
	if len(elements) == 0 {
		return &Report{Strategy: "semantic-zones"}, nil
	}

	origin, err := o.resolveAnchor(ctx, anchor)
	if err != nil {
		return nil, err
	}

	result := o.grouper.Group(elements, intent, o.rules.Rules(), origin)

	moved, movedIDs, err := o.applyPlacements(ctx, elements, result.Placements)
	if err != nil {
		return nil, err
	}

	report := &Report{Strategy: "semantic-zones", Total: len(elements), Moved: moved}
	labels := make([]string, 0, len(result.Zones))
	for _, zone := range result.Zones {
		report.Zones = append(report.Zones, ZoneInfo{Label: zone.Label, Members: len(zone.MemberIDs)})
		labels = append(labels, zone.Label)
	}

	o.logger.Info("canvas grouped into zones",
		zap.Int("zones", len(result.Zones)),
		zap.Int("elements", len(elements)),
		zap.Int("moved", moved),
		zap.String("intent", intent),
	)

	now := o.clock.Now()
	o.publish(ctx, events.NewZonesCreated(labels, len(elements), now))
	o.publishOrganized(ctx, "semantic-zones", movedIDs, len(result.Zones), moved, "semantic_grouping")
	return report, nil
}

// resolveAnchor uses the explicit anchor when given, otherwise the point the
// user is looking at
func (o *Organizer) resolveAnchor(ctx context.Context, anchor *valueobjects.Position) (valueobjects.Position, error) {
	if anchor != nil {
		return *anchor, nil
	}
	center, err := o.repo.ViewportCenter(ctx)
	if err != nil {
		return valueobjects.Position{}, pkgerrors.Wrap(err, "resolve viewport center")
	}
	return center, nil
}

// applyPlacements moves and resizes elements to their computed bounds and
// persists the changes. Elements already in place are untouched.
func (o *Organizer) applyPlacements(ctx context.Context, elements []*entities.CanvasElement, placements []layout.PlacedElement) (int, []string, error) {
	byID := make(map[valueobjects.ElementID]*entities.CanvasElement, len(elements))
	for _, element := range elements {
		byID[element.ID()] = element
	}

	moved := 0
	movedIDs := make([]string, 0, len(placements))
	pending := make([]events.DomainEvent, 0, len(placements))

	for _, placement := range placements {
		element, ok := byID[placement.ID]
		if !ok {
			return 0, nil, pkgerrors.NewInternal("placement for unknown element "+placement.ID.String(), nil)
		}

		changed := false
		if !element.Position().Equals(placement.Bounds.Origin()) {
			if err := element.MoveTo(placement.Bounds.Origin()); err != nil {
				return 0, nil, err
			}
			changed = true
		}
		if !element.Size().Equals(placement.Bounds.Size()) {
			if err := element.Resize(placement.Bounds.Size()); err != nil {
				return 0, nil, err
			}
			changed = true
		}
		if !changed {
			continue
		}

		if err := o.repo.Save(ctx, element); err != nil {
			return 0, nil, pkgerrors.Wrap(err, "save element")
		}
		pending = append(pending, element.GetUncommittedEvents()...)
		element.MarkEventsAsCommitted()
		moved++
		movedIDs = append(movedIDs, element.ID().String())
	}

	if len(pending) > 0 && o.publisher != nil {
		if err := o.publisher.PublishBatch(ctx, pending); err != nil {
			o.logger.Warn("failed to publish element events", zap.Error(err))
		}
	}
	return moved, movedIDs, nil
}

func (o *Organizer) publishOrganized(ctx context.Context, strategy string, movedIDs []string, zones, moved int, triggeredBy string) {
	o.publish(ctx, events.NewCanvasOrganized(strategy, movedIDs, zones, moved, triggeredBy, o.clock.Now()))
}

func (o *Organizer) publish(ctx context.Context, event events.DomainEvent) {
	if o.publisher == nil {
		return
	}
	if err := o.publisher.Publish(ctx, event); err != nil {
		o.logger.Warn("failed to publish event",
			zap.String("eventType", event.GetEventType()),
			zap.Error(err),
		)
	}
}
