package layout

import (
	"strings"

	"chartfusion-agent/domain/config"
	"chartfusion-agent/domain/core/entities"
	"chartfusion-agent/domain/core/valueobjects"
)

// Zone is a labeled region of the canvas holding one semantic bucket.
// Transient: discarded once positions are applied.
type Zone struct {
	Label     string
	Bounds    valueobjects.Bounds
	MemberIDs []valueobjects.ElementID
}

// KeywordFamily is one semantic grouping axis: charts whose text matches any
// of the keywords belong to this family's zone.
type KeywordFamily struct {
	Name     string   `yaml:"name"`
	Label    string   `yaml:"label"`
	Keywords []string `yaml:"keywords"`
}

// GroupingRules is the full keyword-matching policy. It is data, not control
// flow: rules load from configuration and can change without code changes.
type GroupingRules struct {
	Families   []KeywordFamily `yaml:"families"`
	OtherLabel string          `yaml:"otherLabel"`
}

// DefaultGroupingRules returns the built-in keyword families
func DefaultGroupingRules() *GroupingRules {
	return &GroupingRules{
		OtherLabel: "Other",
		Families: []KeywordFamily{
			{
				Name:     "funnel-stage",
				Label:    "Funnel Stages",
				Keywords: []string{"funnel", "awareness", "acquisition", "activation", "retention", "conversion", "churn"},
			},
			{
				Name:     "region",
				Label:    "Regions & Locations",
				Keywords: []string{"region", "country", "state", "city", "location", "geo", "territory"},
			},
			{
				Name:     "metric-type",
				Label:    "Key Metrics",
				Keywords: []string{"revenue", "sales", "profit", "cost", "margin", "total", "average", "rate"},
			},
			{
				Name:     "temporal",
				Label:    "Trends Over Time",
				Keywords: []string{"date", "time", "month", "year", "quarter", "week", "trend"},
			},
		},
	}
}

// GroupingResult is the output of one heuristic grouping pass
type GroupingResult struct {
	Zones      []Zone
	Placements []PlacedElement
}

// Grouper buckets elements by keyword families and tiles the buckets as
// labeled zones. The grouper computes geometry only; it never draws.
type Grouper interface {
	Group(elements []*entities.CanvasElement, intent string, rules *GroupingRules, anchor valueobjects.Position) *GroupingResult
}

// DefaultGrouper is the standard grouping implementation
type DefaultGrouper struct {
	config *config.DomainConfig
	engine *DefaultEngine
}

// NewDefaultGrouper creates a grouper with the given layout rules
func NewDefaultGrouper(cfg *config.DomainConfig, engine *DefaultEngine) *DefaultGrouper {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if engine == nil {
		engine = NewDefaultEngine(cfg, nil)
	}
	return &DefaultGrouper{config: cfg, engine: engine}
}

// Group assigns each element to the first active family whose keywords match
// its text. Unmatched elements land in the "Other" bucket; nothing is
// dropped. Buckets become zones tiled row-major in a grid-of-zones.
func (g *DefaultGrouper) Group(elements []*entities.CanvasElement, intent string, rules *GroupingRules, anchor valueobjects.Position) *GroupingResult {
	if rules == nil {
		rules = DefaultGroupingRules()
	}
	if len(elements) == 0 {
		return &GroupingResult{Zones: []Zone{}, Placements: []PlacedElement{}}
	}

	active := activeFamilies(intent, rules)

	// Bucket in family order so output is stable
	buckets := make(map[string][]*entities.CanvasElement)
	order := make([]string, 0, len(active)+1)
	labels := make(map[string]string, len(active)+1)
	for _, fam := range active {
		order = append(order, fam.Name)
		labels[fam.Name] = fam.Label
	}
	otherLabel := rules.OtherLabel
	if otherLabel == "" {
		otherLabel = "Other"
	}
	order = append(order, "other")
	labels["other"] = otherLabel

	for _, el := range elements {
		text := el.SearchText()
		assigned := "other"
		for _, fam := range active {
			if matchesFamily(text, fam) {
				assigned = fam.Name
				break
			}
		}
		buckets[assigned] = append(buckets[assigned], el)
	}

	return g.tileZones(order, labels, buckets, anchor)
}

// tileZones arranges each bucket internally as a grid, then tiles the zones
// themselves row-major in uniform cells sized by the largest zone.
func (g *DefaultGrouper) tileZones(order []string, labels map[string]string, buckets map[string][]*entities.CanvasElement, anchor valueobjects.Position) *GroupingResult {
	type pendingZone struct {
		label      string
		members    []*entities.CanvasElement
		placements []PlacedElement
		width      float64
		height     float64
	}

	pending := make([]pendingZone, 0, len(order))
	labelH := g.config.ZoneLabelHeight
	zonePad := g.config.ZonePadding

	for _, name := range order {
		members := buckets[name]
		if len(members) == 0 {
			continue
		}
		inner := g.engine.gridAt(members, zonePad, labelH, g.engine.gridColumns(len(members)))
		maxX, maxY := 0.0, 0.0
		for _, p := range inner {
			if p.Bounds.MaxX() > maxX {
				maxX = p.Bounds.MaxX()
			}
			if p.Bounds.MaxY() > maxY {
				maxY = p.Bounds.MaxY()
			}
		}
		pending = append(pending, pendingZone{
			label:      labels[name],
			members:    members,
			placements: inner,
			width:      maxX + zonePad,
			height:     maxY + zonePad,
		})
	}

	if len(pending) == 0 {
		return &GroupingResult{Zones: []Zone{}, Placements: []PlacedElement{}}
	}

	// Uniform zone cells so zones can never collide
	cellW, cellH := 0.0, 0.0
	for _, z := range pending {
		if z.width > cellW {
			cellW = z.width
		}
		if z.height > cellH {
			cellH = z.height
		}
	}

	cols := g.engine.gridColumns(len(pending))
	zones := make([]Zone, 0, len(pending))
	placements := make([]PlacedElement, 0)

	for i, z := range pending {
		row := i / cols
		col := i % cols
		originX := anchor.X() + float64(col)*(cellW+zonePad)
		originY := anchor.Y() + float64(row)*(cellH+zonePad)

		memberIDs := make([]valueobjects.ElementID, 0, len(z.members))
		for _, p := range z.placements {
			placements = append(placements, PlacedElement{
				ID:     p.ID,
				Bounds: p.Bounds.Translate(originX, originY),
			})
			memberIDs = append(memberIDs, p.ID)
		}

		zones = append(zones, Zone{
			Label:     z.label,
			Bounds:    boundsAt(originX, originY, z.width, z.height),
			MemberIDs: memberIDs,
		})
	}

	return &GroupingResult{Zones: zones, Placements: placements}
}

// activeFamilies narrows the rule set when the intent names a family or one
// of its keywords; otherwise every family participates.
func activeFamilies(intent string, rules *GroupingRules) []KeywordFamily {
	intent = strings.ToLower(strings.TrimSpace(intent))
	if intent == "" {
		return rules.Families
	}

	matched := make([]KeywordFamily, 0, len(rules.Families))
	for _, fam := range rules.Families {
		if familyNamedIn(intent, fam) {
			matched = append(matched, fam)
		}
	}
	if len(matched) == 0 {
		return rules.Families
	}
	return matched
}

func familyNamedIn(intent string, fam KeywordFamily) bool {
	for _, token := range strings.FieldsFunc(fam.Name, func(r rune) bool { return r == '-' || r == '_' }) {
		if strings.Contains(intent, token) {
			return true
		}
	}
	for _, kw := range fam.Keywords {
		if strings.Contains(intent, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// matchesFamily reports whether the element text contains any family keyword
func matchesFamily(text string, fam KeywordFamily) bool {
	for _, kw := range fam.Keywords {
		if strings.Contains(text, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
