package layout

import (
	"sort"

	"chartfusion-agent/domain/core/entities"
	"chartfusion-agent/domain/core/valueobjects"
)

// Strategy identifies one of the fixed dashboard arrangements
type Strategy string

const (
	// StrategyGrid is the default near-square grid
	StrategyGrid Strategy = "grid"

	// StrategyHero gives one dominant element a large slot
	StrategyHero Strategy = "hero"

	// StrategyFlow lays elements in a single narrative sequence
	StrategyFlow Strategy = "flow"

	// StrategyComparison places exactly two equal slots side by side
	StrategyComparison Strategy = "comparison"

	// StrategyKPIDashboard stacks a KPI strip above a chart grid
	StrategyKPIDashboard Strategy = "kpi-dashboard"
)

// IsValid checks if the strategy is valid
func (s Strategy) IsValid() bool {
	switch s {
	case StrategyGrid, StrategyHero, StrategyFlow, StrategyComparison, StrategyKPIDashboard:
		return true
	default:
		return false
	}
}

// String returns the string representation of the strategy
func (s Strategy) String() string {
	return string(s)
}

// StrategySelector chooses an arrangement for a set of elements.
// The decision table is fixed and evaluated first-match-wins.
type StrategySelector interface {
	Select(elements []*entities.CanvasElement, relationships []Relationship) Strategy
}

// SelectorConfig configures strategy selection thresholds
type SelectorConfig struct {
	// MinKPIsForDashboard is how many KPI cards trigger the dashboard layout
	MinKPIsForDashboard int

	// MinChainLength is the narrative chain length that triggers flow
	MinChainLength int

	// MinChainStrength filters weak relationships out of chain building
	MinChainStrength float64

	// HeroDominanceRatio is how much larger the biggest element must be
	// than the next largest to count as dominant
	HeroDominanceRatio float64
}

// DefaultSelectorConfig returns the standard thresholds
func DefaultSelectorConfig() *SelectorConfig {
	return &SelectorConfig{
		MinKPIsForDashboard: 3,
		MinChainLength:      3,
		MinChainStrength:    0.3,
		HeroDominanceRatio:  2.0,
	}
}

// DefaultStrategySelector is the standard selector implementation
type DefaultStrategySelector struct {
	config *SelectorConfig
}

// NewDefaultStrategySelector creates a selector with the given config
func NewDefaultStrategySelector(config *SelectorConfig) *DefaultStrategySelector {
	if config == nil {
		config = DefaultSelectorConfig()
	}
	return &DefaultStrategySelector{config: config}
}

// Select applies the decision table to the element set
func (s *DefaultStrategySelector) Select(elements []*entities.CanvasElement, relationships []Relationship) Strategy {
	kpis, charts := 0, 0
	for _, el := range elements {
		switch {
		case el.IsKPI():
			kpis++
		case el.IsChart():
			charts++
		}
	}

	if kpis >= s.config.MinKPIsForDashboard && charts >= 1 {
		return StrategyKPIDashboard
	}

	if charts == 2 {
		return StrategyComparison
	}

	ids := make([]valueobjects.ElementID, 0, len(elements))
	for _, el := range elements {
		ids = append(ids, el.ID())
	}
	chain := NarrativeChain(ids, relationships, s.config.MinChainStrength)
	if len(chain) >= s.config.MinChainLength {
		return StrategyFlow
	}

	if hasDominantElement(elements, s.config.HeroDominanceRatio) {
		return StrategyHero
	}

	return StrategyGrid
}

// hasDominantElement reports whether the largest element's area is at least
// ratio times the next largest
func hasDominantElement(elements []*entities.CanvasElement, ratio float64) bool {
	if len(elements) < 2 {
		return false
	}
	areas := make([]float64, 0, len(elements))
	for _, el := range elements {
		areas = append(areas, el.Size().Area())
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(areas)))
	return areas[1] > 0 && areas[0] >= ratio*areas[1]
}

// DominantElement returns the element with the largest area, ties broken by ID
// so the choice is stable across calls.
func DominantElement(elements []*entities.CanvasElement) *entities.CanvasElement {
	var best *entities.CanvasElement
	for _, el := range elements {
		if best == nil {
			best = el
			continue
		}
		if el.Size().Area() > best.Size().Area() ||
			(el.Size().Area() == best.Size().Area() && el.ID().String() < best.ID().String()) {
			best = el
		}
	}
	return best
}

// NarrativeChain builds the longest reading-order sequence of elements linked
// by relationships at or above minStrength. Multiple relationship kinds on the
// same pair collapse to their strongest link. The chain is grown greedily from
// the strongest edge outward; ties break lexicographically by element ID so
// the result is deterministic.
func NarrativeChain(ids []valueobjects.ElementID, relationships []Relationship, minStrength float64) []valueobjects.ElementID {
	present := make(map[string]valueobjects.ElementID, len(ids))
	for _, id := range ids {
		present[id.String()] = id
	}

	// Collapse to one undirected edge per pair, keeping the max strength
	type edge struct {
		a, b     string
		strength float64
	}
	strongest := make(map[[2]string]float64)
	for _, rel := range relationships {
		a, b := rel.SourceID.String(), rel.TargetID.String()
		if _, ok := present[a]; !ok {
			continue
		}
		if _, ok := present[b]; !ok {
			continue
		}
		if rel.Strength < minStrength || a == b {
			continue
		}
		if a > b {
			a, b = b, a
		}
		key := [2]string{a, b}
		if rel.Strength > strongest[key] {
			strongest[key] = rel.Strength
		}
	}
	if len(strongest) == 0 {
		return nil
	}

	edges := make([]edge, 0, len(strongest))
	adjacency := make(map[string][]edge)
	for key, strength := range strongest {
		e := edge{a: key[0], b: key[1], strength: strength}
		edges = append(edges, e)
		adjacency[e.a] = append(adjacency[e.a], e)
		adjacency[e.b] = append(adjacency[e.b], e)
	}

	// Seed with the strongest edge overall
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].strength != edges[j].strength {
			return edges[i].strength > edges[j].strength
		}
		if edges[i].a != edges[j].a {
			return edges[i].a < edges[j].a
		}
		return edges[i].b < edges[j].b
	})
	seed := edges[0]

	chain := []string{seed.a, seed.b}
	inChain := map[string]bool{seed.a: true, seed.b: true}

	// Extend both ends until no qualifying edge remains
	extend := func(from string) (string, bool) {
		bestStrength := 0.0
		bestID := ""
		for _, e := range adjacency[from] {
			next := e.b
			if next == from {
				next = e.a
			}
			if inChain[next] {
				continue
			}
			if e.strength > bestStrength || (e.strength == bestStrength && (bestID == "" || next < bestID)) {
				bestStrength = e.strength
				bestID = next
			}
		}
		if bestID == "" {
			return "", false
		}
		return bestID, true
	}

	for {
		next, ok := extend(chain[len(chain)-1])
		if !ok {
			break
		}
		chain = append(chain, next)
		inChain[next] = true
	}
	for {
		prev, ok := extend(chain[0])
		if !ok {
			break
		}
		chain = append([]string{prev}, chain...)
		inChain[prev] = true
	}

	out := make([]valueobjects.ElementID, 0, len(chain))
	for _, s := range chain {
		out = append(out, present[s])
	}
	return out
}
