package layout

import (
	"strings"

	"chartfusion-agent/domain/core/entities"
	"chartfusion-agent/domain/core/valueobjects"
)

// RelationshipKind represents the type of structural relationship between charts
type RelationshipKind string

const (
	// RelationSharedDimension means both charts slice by overlapping dimensions
	RelationSharedDimension RelationshipKind = "shared-dimension"

	// RelationSharedMeasure means both charts plot overlapping measures
	RelationSharedMeasure RelationshipKind = "shared-measure"

	// RelationTemporal means both charts carry a time-like dimension
	RelationTemporal RelationshipKind = "temporal"

	// RelationHierarchical means one chart drills one level deeper than the other
	RelationHierarchical RelationshipKind = "hierarchical"

	// RelationComparison means identical shape over different underlying data
	RelationComparison RelationshipKind = "comparison"
)

// IsValid checks if the relationship kind is valid
func (k RelationshipKind) IsValid() bool {
	switch k {
	case RelationSharedDimension, RelationSharedMeasure,
		RelationTemporal, RelationHierarchical, RelationComparison:
		return true
	default:
		return false
	}
}

// String returns the string representation of the relationship kind
func (k RelationshipKind) String() string {
	return string(k)
}

// Relationship is one detected structural link between a pair of elements.
// Derived fresh on every organize call; never persisted.
type Relationship struct {
	SourceID valueobjects.ElementID
	TargetID valueobjects.ElementID
	Kind     RelationshipKind
	Strength float64
}

// Involves reports whether the relationship touches the given element
func (r Relationship) Involves(id valueobjects.ElementID) bool {
	return r.SourceID.Equals(id) || r.TargetID.Equals(id)
}

// Other returns the opposite endpoint of the relationship
func (r Relationship) Other(id valueobjects.ElementID) (valueobjects.ElementID, bool) {
	if r.SourceID.Equals(id) {
		return r.TargetID, true
	}
	if r.TargetID.Equals(id) {
		return r.SourceID, true
	}
	return valueobjects.ElementID{}, false
}

// RelationshipDetector finds pairwise structural relationships between
// chart-bearing canvas elements. This is a domain service: pure analysis,
// no side effects.
type RelationshipDetector interface {
	// Detect analyzes every unordered pair of chart elements
	Detect(elements []*entities.CanvasElement) []Relationship

	// DetectPair analyzes a single pair; a pair may carry several kinds at once
	DetectPair(a, b *entities.CanvasElement) []Relationship
}

// DetectorConfig configures relationship detection
type DetectorConfig struct {
	// TemporalKeywords are dimension-name fragments that mark a time axis
	TemporalKeywords []string

	// TemporalStrength is the fixed strength assigned to temporal links
	TemporalStrength float64
}

// DefaultDetectorConfig returns a balanced default configuration
func DefaultDetectorConfig() *DetectorConfig {
	return &DetectorConfig{
		TemporalKeywords: []string{"date", "time", "month", "year", "quarter", "week", "day"},
		TemporalStrength: 0.5,
	}
}

// DefaultRelationshipDetector is the standard detector implementation
type DefaultRelationshipDetector struct {
	config *DetectorConfig
}

// NewDefaultRelationshipDetector creates a detector with the given config
func NewDefaultRelationshipDetector(config *DetectorConfig) *DefaultRelationshipDetector {
	if config == nil {
		config = DefaultDetectorConfig()
	}
	return &DefaultRelationshipDetector{config: config}
}

// Detect analyzes every unordered pair of chart elements
func (d *DefaultRelationshipDetector) Detect(elements []*entities.CanvasElement) []Relationship {
	charts := make([]*entities.CanvasElement, 0, len(elements))
	for _, el := range elements {
		if _, ok := el.ChartSpec(); ok {
			charts = append(charts, el)
		}
	}

	relationships := make([]Relationship, 0)
	for i := 0; i < len(charts); i++ {
		for j := i + 1; j < len(charts); j++ {
			relationships = append(relationships, d.DetectPair(charts[i], charts[j])...)
		}
	}
	return relationships
}

// DetectPair analyzes a single pair of elements
func (d *DefaultRelationshipDetector) DetectPair(a, b *entities.CanvasElement) []Relationship {
	specA, okA := a.ChartSpec()
	specB, okB := b.ChartSpec()
	if !okA || !okB {
		return nil
	}

	out := make([]Relationship, 0, 2)

	dimsA, dimsB := specA.DimensionSet(), specB.DimensionSet()
	measA, measB := specA.MeasureSet(), specB.MeasureSet()

	if strength := jaccard(dimsA, dimsB); strength > 0 {
		out = append(out, d.relate(a, b, RelationSharedDimension, strength))
	}
	if strength := jaccard(measA, measB); strength > 0 {
		out = append(out, d.relate(a, b, RelationSharedMeasure, strength))
	}
	if d.hasTemporalAxis(specA) && d.hasTemporalAxis(specB) {
		out = append(out, d.relate(a, b, RelationTemporal, d.config.TemporalStrength))
	}
	if isDrillDown(dimsA, dimsB) {
		// Strength falls out of the subset structure: k shared of k+1 total
		out = append(out, d.relate(a, b, RelationHierarchical, jaccard(dimsA, dimsB)))
	}
	if specA.SameShape(specB) && specA.DatasetID() != specB.DatasetID() {
		out = append(out, d.relate(a, b, RelationComparison, 1.0))
	}

	return out
}

func (d *DefaultRelationshipDetector) relate(a, b *entities.CanvasElement, kind RelationshipKind, strength float64) Relationship {
	return Relationship{
		SourceID: a.ID(),
		TargetID: b.ID(),
		Kind:     kind,
		Strength: strength,
	}
}

// hasTemporalAxis reports whether any dimension name contains a temporal keyword
func (d *DefaultRelationshipDetector) hasTemporalAxis(spec valueobjects.ChartSpec) bool {
	for _, dim := range spec.Dimensions() {
		for _, kw := range d.config.TemporalKeywords {
			if strings.Contains(dim, kw) {
				return true
			}
		}
	}
	return false
}

// jaccard computes |intersection| / |union| of two name sets
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// isDrillDown reports whether one dimension set extends the other by exactly one field
func isDrillDown(a, b map[string]bool) bool {
	small, large := a, b
	if len(small) > len(large) {
		small, large = large, small
	}
	if len(large)-len(small) != 1 || len(small) == 0 {
		return false
	}
	for k := range small {
		if !large[k] {
			return false
		}
	}
	return true
}
