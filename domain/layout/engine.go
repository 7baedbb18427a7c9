package layout

import (
	"math"

	"chartfusion-agent/domain/config"
	"chartfusion-agent/domain/core/entities"
	"chartfusion-agent/domain/core/valueobjects"
	pkgerrors "chartfusion-agent/pkg/errors"
)

// PlacedElement pairs an element ID with its computed bounding box
type PlacedElement struct {
	ID     valueobjects.ElementID
	Bounds valueobjects.Bounds
}

// Engine computes non-overlapping absolute positions for a strategy.
// All geometry is pure: the same inputs always yield the same placements.
type Engine interface {
	Arrange(elements []*entities.CanvasElement, strategy Strategy, relationships []Relationship, anchor valueobjects.Position) ([]PlacedElement, error)
}

// DefaultEngine is the standard layout engine implementation
type DefaultEngine struct {
	config   *config.DomainConfig
	selector *SelectorConfig
}

// NewDefaultEngine creates an engine with the given layout rules
func NewDefaultEngine(cfg *config.DomainConfig, selector *SelectorConfig) *DefaultEngine {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	if selector == nil {
		selector = DefaultSelectorConfig()
	}
	return &DefaultEngine{config: cfg, selector: selector}
}

// Arrange computes placements for the elements under the given strategy.
// Placements are offsets from the caller-supplied anchor.
func (e *DefaultEngine) Arrange(elements []*entities.CanvasElement, strategy Strategy, relationships []Relationship, anchor valueobjects.Position) ([]PlacedElement, error) {
	if !strategy.IsValid() {
		return nil, pkgerrors.NewValidationf("unknown layout strategy: %q", strategy)
	}
	if len(elements) == 0 {
		return []PlacedElement{}, nil
	}

	var placed []PlacedElement
	switch strategy {
	case StrategyGrid:
		placed = e.arrangeGrid(elements)
	case StrategyComparison:
		placed = e.arrangeComparison(elements)
	case StrategyKPIDashboard:
		placed = e.arrangeKPIDashboard(elements)
	case StrategyFlow:
		placed = e.arrangeFlow(elements, relationships)
	case StrategyHero:
		placed = e.arrangeHero(elements)
	}

	// Shift everything from the local origin to the anchor
	for i := range placed {
		placed[i].Bounds = placed[i].Bounds.Translate(anchor.X(), anchor.Y())
	}
	return placed, nil
}

// arrangeGrid places elements row-major in a near-square grid of uniform cells
func (e *DefaultEngine) arrangeGrid(elements []*entities.CanvasElement) []PlacedElement {
	return e.gridAt(elements, 0, 0, e.gridColumns(len(elements)))
}

// arrangeComparison places the first two charts side by side in equal slots;
// any remaining elements tile in a grid beneath them.
func (e *DefaultEngine) arrangeComparison(elements []*entities.CanvasElement) []PlacedElement {
	charts := make([]*entities.CanvasElement, 0, 2)
	rest := make([]*entities.CanvasElement, 0, len(elements))
	for _, el := range elements {
		if el.IsChart() && len(charts) < 2 {
			charts = append(charts, el)
		} else {
			rest = append(rest, el)
		}
	}
	if len(charts) < 2 {
		// Not enough charts to compare; degrade to the default grid
		return e.arrangeGrid(elements)
	}

	hint := e.config.HintFor(string(entities.KindChart))
	pad := e.config.Padding

	placed := []PlacedElement{
		{ID: charts[0].ID(), Bounds: boundsAt(0, 0, hint.Width, hint.Height)},
		{ID: charts[1].ID(), Bounds: boundsAt(hint.Width+pad, 0, hint.Width, hint.Height)},
	}
	if len(rest) > 0 {
		below := e.gridAt(rest, 0, hint.Height+pad, e.gridColumns(len(rest)))
		placed = append(placed, below...)
	}
	return placed
}

// arrangeKPIDashboard stacks a KPI strip above a chart grid
func (e *DefaultEngine) arrangeKPIDashboard(elements []*entities.CanvasElement) []PlacedElement {
	kpis := make([]*entities.CanvasElement, 0)
	rest := make([]*entities.CanvasElement, 0)
	for _, el := range elements {
		if el.IsKPI() {
			kpis = append(kpis, el)
		} else {
			rest = append(rest, el)
		}
	}

	placed := make([]PlacedElement, 0, len(elements))
	yCursor := 0.0

	if len(kpis) > 0 {
		cols := e.config.KPIStripColumns
		if cols < 1 {
			cols = len(kpis)
		}
		strip := e.gridAt(kpis, 0, 0, cols)
		placed = append(placed, strip...)
		for _, p := range strip {
			if p.Bounds.MaxY() > yCursor {
				yCursor = p.Bounds.MaxY()
			}
		}
		yCursor += e.config.Padding
	}

	if len(rest) > 0 {
		placed = append(placed, e.gridAt(rest, 0, yCursor, e.gridColumns(len(rest)))...)
	}
	return placed
}

// arrangeFlow lays elements in reading order following the narrative chain.
// Elements outside the chain append after it in submission order.
func (e *DefaultEngine) arrangeFlow(elements []*entities.CanvasElement, relationships []Relationship) []PlacedElement {
	ids := make([]valueobjects.ElementID, 0, len(elements))
	byID := make(map[string]*entities.CanvasElement, len(elements))
	for _, el := range elements {
		ids = append(ids, el.ID())
		byID[el.ID().String()] = el
	}

	chain := NarrativeChain(ids, relationships, e.selector.MinChainStrength)
	ordered := make([]*entities.CanvasElement, 0, len(elements))
	seen := make(map[string]bool, len(chain))
	for _, id := range chain {
		if el, ok := byID[id.String()]; ok {
			ordered = append(ordered, el)
			seen[id.String()] = true
		}
	}
	for _, el := range elements {
		if !seen[el.ID().String()] {
			ordered = append(ordered, el)
		}
	}

	cols := e.config.FlowColumns
	if cols < 1 {
		cols = len(ordered)
	}
	return e.gridAt(ordered, 0, 0, cols)
}

// arrangeHero gives the dominant element a scaled top-left slot, fills the
// column to its right, and tiles whatever is left in a grid below.
func (e *DefaultEngine) arrangeHero(elements []*entities.CanvasElement) []PlacedElement {
	hero := DominantElement(elements)
	if hero == nil {
		return e.arrangeGrid(elements)
	}

	pad := e.config.Padding
	heroHint := e.config.HintFor(string(hero.Kind()))
	heroW := heroHint.Width * e.config.HeroScale
	heroH := heroHint.Height * e.config.HeroScale

	placed := []PlacedElement{
		{ID: hero.ID(), Bounds: boundsAt(0, 0, heroW, heroH)},
	}

	sideX := heroW + pad
	sideY := 0.0
	overflow := make([]*entities.CanvasElement, 0)
	for _, el := range elements {
		if el.ID().Equals(hero.ID()) {
			continue
		}
		hint := e.config.HintFor(string(el.Kind()))
		if sideY+hint.Height <= heroH {
			placed = append(placed, PlacedElement{ID: el.ID(), Bounds: boundsAt(sideX, sideY, hint.Width, hint.Height)})
			sideY += hint.Height + pad
		} else {
			overflow = append(overflow, el)
		}
	}

	if len(overflow) > 0 {
		placed = append(placed, e.gridAt(overflow, 0, heroH+pad, e.gridColumns(len(overflow)))...)
	}
	return placed
}

// gridAt places elements row-major starting at (originX, originY) with the
// given column count. Cells are uniform: the widest and tallest hints among
// the members set the pitch, so boxes can never collide.
func (e *DefaultEngine) gridAt(elements []*entities.CanvasElement, originX, originY float64, cols int) []PlacedElement {
	if len(elements) == 0 {
		return nil
	}
	if cols < 1 {
		cols = 1
	}

	cellW, cellH := 0.0, 0.0
	for _, el := range elements {
		hint := e.config.HintFor(string(el.Kind()))
		if hint.Width > cellW {
			cellW = hint.Width
		}
		if hint.Height > cellH {
			cellH = hint.Height
		}
	}

	pad := e.config.Padding
	placed := make([]PlacedElement, 0, len(elements))
	for i, el := range elements {
		row := i / cols
		col := i % cols
		hint := e.config.HintFor(string(el.Kind()))
		x := originX + float64(col)*(cellW+pad)
		y := originY + float64(row)*(cellH+pad)
		placed = append(placed, PlacedElement{ID: el.ID(), Bounds: boundsAt(x, y, hint.Width, hint.Height)})
	}
	return placed
}

// gridColumns returns ceil(sqrt(n)) for a near-square grid
func (e *DefaultEngine) gridColumns(n int) int {
	if n <= 1 {
		return 1
	}
	return int(math.Ceil(math.Sqrt(float64(n))))
}

// boundsAt builds a bounds value from raw geometry computed by the engine.
// Engine arithmetic only ever adds finite positives, so construction cannot fail.
func boundsAt(x, y, w, h float64) valueobjects.Bounds {
	pos, _ := valueobjects.NewPosition(x, y)
	size, _ := valueobjects.NewSize(w, h)
	return valueobjects.NewBounds(pos, size)
}
