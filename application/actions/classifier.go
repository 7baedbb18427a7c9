package actions

import (
	"time"

	pkgerrors "chartfusion-agent/pkg/errors"
)

// Weight buckets an action by the cost of executing it
type Weight string

const (
	// WeightLocal runs entirely in-process against canvas state
	WeightLocal Weight = "local"

	// WeightLightAPI makes one bounded remote call
	WeightLightAPI Weight = "light-api"

	// WeightHeavyAPI makes an expensive model call with a large prompt
	WeightHeavyAPI Weight = "heavy-api"
)

// IsValid checks if the weight is a known bucket
func (w Weight) IsValid() bool {
	switch w {
	case WeightLocal, WeightLightAPI, WeightHeavyAPI:
		return true
	default:
		return false
	}
}

// String returns the string representation of the weight
func (w Weight) String() string {
	return string(w)
}

// IsAPIBound reports whether actions of this weight consume remote quota
func (w Weight) IsAPIBound() bool {
	return w == WeightLightAPI || w == WeightHeavyAPI
}

// Classifier assigns execution weight and priority to actions. The tables
// are total over the closed kind set; an unknown kind reaching this layer
// means the validation boundary was bypassed, reported as a configuration
// error rather than silently defaulted.
type Classifier struct {
	weights    map[Kind]Weight
	priorities map[Kind]int
	costs      map[Weight]time.Duration
}

// NewClassifier builds the classifier with the standard tables
func NewClassifier() *Classifier {
	return &Classifier{
		weights: map[Kind]Weight{
			KindCreateChart:           WeightLightAPI,
			KindCreateKPI:             WeightLightAPI,
			KindOrganizeCanvas:        WeightLocal,
			KindArrangeElements:       WeightLocal,
			KindSemanticGrouping:      WeightLocal,
			KindGenerateChartInsights: WeightHeavyAPI,
			KindAIQuery:               WeightHeavyAPI,
			KindCreateAnnotation:      WeightLocal,
			KindCreateTextbox:         WeightLocal,
		},
		priorities: map[Kind]int{
			KindCreateChart:           PriorityData,
			KindCreateKPI:             PriorityData,
			KindOrganizeCanvas:        PriorityOrganize,
			KindArrangeElements:       PriorityOrganize,
			KindSemanticGrouping:      PriorityOrganize,
			KindGenerateChartInsights: PriorityEnrich,
			KindAIQuery:               PriorityEnrich,
			KindCreateAnnotation:      PriorityAnnotate,
			KindCreateTextbox:         PriorityAnnotate,
		},
		costs: map[Weight]time.Duration{
			WeightLocal:    50 * time.Millisecond,
			WeightLightAPI: 300 * time.Millisecond,
			WeightHeavyAPI: 2 * time.Second,
		},
	}
}

// Priority tiers, executed low to high. Data creation runs first so that
// later organization and enrichment see the complete canvas.
const (
	PriorityData     = 1
	PriorityOrganize = 2
	PriorityEnrich   = 3
	PriorityAnnotate = 4
)

// Classify returns the execution weight for a kind
func (c *Classifier) Classify(kind Kind) (Weight, error) {
	weight, ok := c.weights[kind]
	if !ok {
		return "", pkgerrors.NewConfiguration("no weight classification for action kind: " + kind.String())
	}
	return weight, nil
}

// PriorityFor returns the tier a kind executes in
func (c *Classifier) PriorityFor(kind Kind) (int, error) {
	priority, ok := c.priorities[kind]
	if !ok {
		return 0, pkgerrors.NewConfiguration("no priority tier for action kind: " + kind.String())
	}
	return priority, nil
}

// EstimatedCost returns the nominal wall-clock cost of one action of the
// given weight, used for queue introspection and logging
func (c *Classifier) EstimatedCost(weight Weight) time.Duration {
	return c.costs[weight]
}
