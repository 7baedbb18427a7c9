package layout

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartfusion-agent/domain/config"
	"chartfusion-agent/domain/core/entities"
	"chartfusion-agent/domain/core/valueobjects"
)

func testDomainConfig() *config.DomainConfig {
	return config.DefaultDomainConfig()
}

func TestArrange_UnknownStrategy(t *testing.T) {
	engine := NewDefaultEngine(nil, nil)

	_, err := engine.Arrange(nil, Strategy("spiral"), nil, mustPos(t, 0, 0))

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown layout strategy")
}

func TestArrange_EmptyInput(t *testing.T) {
	engine := NewDefaultEngine(nil, nil)

	placed, err := engine.Arrange(nil, StrategyGrid, nil, mustPos(t, 0, 0))

	require.NoError(t, err)
	assert.Empty(t, placed)
}

func TestArrange_Grid_NoOverlap(t *testing.T) {
	engine := NewDefaultEngine(nil, nil)

	for _, n := range []int{1, 2, 3, 5, 9, 10, 16} {
		t.Run(fmt.Sprintf("%d elements", n), func(t *testing.T) {
			els := make([]*entities.CanvasElement, 0, n)
			for i := 0; i < n; i++ {
				els = append(els, makeChart(t, fmt.Sprintf("chart %d", i), []string{"region"}, []string{"sales"}, "ds-1"))
			}

			placed, err := engine.Arrange(els, StrategyGrid, nil, mustPos(t, 0, 0))
			require.NoError(t, err)
			require.Len(t, placed, n)

			assertNoOverlap(t, placed)
		})
	}
}

func TestArrange_Grid_RowMajorNearSquare(t *testing.T) {
	engine := NewDefaultEngine(nil, nil)

	// 5 elements: cols = ceil(sqrt(5)) = 3, so rows are 3 + 2
	els := make([]*entities.CanvasElement, 0, 5)
	for i := 0; i < 5; i++ {
		els = append(els, makeChart(t, fmt.Sprintf("chart %d", i), []string{"region"}, []string{"sales"}, "ds-1"))
	}

	placed, err := engine.Arrange(els, StrategyGrid, nil, mustPos(t, 0, 0))
	require.NoError(t, err)

	// First three on row 0, next two on row 1
	assert.Equal(t, placed[0].Bounds.Origin().Y(), placed[1].Bounds.Origin().Y())
	assert.Equal(t, placed[1].Bounds.Origin().Y(), placed[2].Bounds.Origin().Y())
	assert.Greater(t, placed[3].Bounds.Origin().Y(), placed[0].Bounds.Origin().Y())
	assert.Equal(t, placed[3].Bounds.Origin().Y(), placed[4].Bounds.Origin().Y())

	// Row-major: x grows along the row
	assert.Greater(t, placed[1].Bounds.Origin().X(), placed[0].Bounds.Origin().X())
	assert.Greater(t, placed[2].Bounds.Origin().X(), placed[1].Bounds.Origin().X())
}

func TestArrange_Deterministic(t *testing.T) {
	engine := NewDefaultEngine(nil, nil)
	detector := NewDefaultRelationshipDetector(nil)

	els := []*entities.CanvasElement{
		makeChart(t, "A", []string{"region"}, []string{"sales"}, "ds-1"),
		makeChart(t, "B", []string{"region", "product"}, []string{"cost"}, "ds-1"),
		makeChart(t, "C", []string{"product"}, []string{"margin"}, "ds-2"),
		makeKPI(t, "Revenue", 10),
	}
	rels := detector.Detect(els)

	for _, strategy := range []Strategy{StrategyGrid, StrategyFlow, StrategyHero, StrategyKPIDashboard} {
		t.Run(strategy.String(), func(t *testing.T) {
			first, err := engine.Arrange(els, strategy, rels, mustPos(t, 100, 200))
			require.NoError(t, err)

			second, err := engine.Arrange(els, strategy, rels, mustPos(t, 100, 200))
			require.NoError(t, err)

			require.Equal(t, len(first), len(second))
			for i := range first {
				assert.True(t, first[i].ID.Equals(second[i].ID))
				assert.True(t, first[i].Bounds.Origin().Equals(second[i].Bounds.Origin()))
				assert.True(t, first[i].Bounds.Size().Equals(second[i].Bounds.Size()))
			}
		})
	}
}

func TestArrange_AnchorShiftsEverything(t *testing.T) {
	engine := NewDefaultEngine(nil, nil)

	els := []*entities.CanvasElement{
		makeChart(t, "A", []string{"region"}, []string{"sales"}, "ds-1"),
		makeChart(t, "B", []string{"month"}, []string{"cost"}, "ds-1"),
		makeChart(t, "C", []string{"product"}, []string{"margin"}, "ds-1"),
	}

	atOrigin, err := engine.Arrange(els, StrategyGrid, nil, mustPos(t, 0, 0))
	require.NoError(t, err)
	shifted, err := engine.Arrange(els, StrategyGrid, nil, mustPos(t, 500, -300))
	require.NoError(t, err)

	for i := range atOrigin {
		assert.InDelta(t, atOrigin[i].Bounds.Origin().X()+500, shifted[i].Bounds.Origin().X(), 1e-9)
		assert.InDelta(t, atOrigin[i].Bounds.Origin().Y()-300, shifted[i].Bounds.Origin().Y(), 1e-9)
	}
}

func TestArrange_Comparison(t *testing.T) {
	engine := NewDefaultEngine(nil, nil)

	a := makeChart(t, "Q1", []string{"region"}, []string{"sales"}, "ds-q1")
	b := makeChart(t, "Q2", []string{"region"}, []string{"sales"}, "ds-q2")

	placed, err := engine.Arrange([]*entities.CanvasElement{a, b}, StrategyComparison, nil, mustPos(t, 0, 0))
	require.NoError(t, err)
	require.Len(t, placed, 2)

	// Equal slots, side by side on the same row
	assert.True(t, placed[0].Bounds.Size().Equals(placed[1].Bounds.Size()))
	assert.Equal(t, placed[0].Bounds.Origin().Y(), placed[1].Bounds.Origin().Y())
	assert.Greater(t, placed[1].Bounds.Origin().X(), placed[0].Bounds.MaxX())

	assertNoOverlap(t, placed)
}

func TestArrange_Comparison_ExtraElementsBelow(t *testing.T) {
	engine := NewDefaultEngine(nil, nil)

	a := makeChart(t, "Q1", []string{"region"}, []string{"sales"}, "ds-q1")
	b := makeChart(t, "Q2", []string{"region"}, []string{"sales"}, "ds-q2")
	note, err := entities.NewElement(entities.KindTextbox, "context", mustPos(t, 0, 0), mustSize(t, 300, 160))
	require.NoError(t, err)

	placed, err := engine.Arrange([]*entities.CanvasElement{a, b, note}, StrategyComparison, nil, mustPos(t, 0, 0))
	require.NoError(t, err)
	require.Len(t, placed, 3)

	byID := placementsByID(placed)
	assert.Greater(t, byID[note.ID().String()].Bounds.Origin().Y(), byID[a.ID().String()].Bounds.MaxY())
	assertNoOverlap(t, placed)
}

func TestArrange_Comparison_FallsBackToGridWithoutTwoCharts(t *testing.T) {
	engine := NewDefaultEngine(nil, nil)

	a := makeChart(t, "Only", []string{"region"}, []string{"sales"}, "ds-1")

	placed, err := engine.Arrange([]*entities.CanvasElement{a}, StrategyComparison, nil, mustPos(t, 0, 0))
	require.NoError(t, err)
	assert.Len(t, placed, 1)
}

func TestArrange_KPIDashboard_StripAboveCharts(t *testing.T) {
	engine := NewDefaultEngine(nil, nil)

	els := []*entities.CanvasElement{
		makeChart(t, "Trend", []string{"month"}, []string{"revenue"}, "ds-1"),
		makeKPI(t, "Revenue", 100),
		makeKPI(t, "Cost", 40),
		makeKPI(t, "Profit", 60),
	}

	placed, err := engine.Arrange(els, StrategyKPIDashboard, nil, mustPos(t, 0, 0))
	require.NoError(t, err)
	require.Len(t, placed, 4)

	byID := placementsByID(placed)
	chartTop := byID[els[0].ID().String()].Bounds.Origin().Y()
	for _, kpi := range els[1:] {
		assert.Less(t, byID[kpi.ID().String()].Bounds.MaxY(), chartTop)
	}
	assertNoOverlap(t, placed)
}

func TestArrange_Flow_FollowsChain(t *testing.T) {
	cfg := testDomainConfig()
	cfg.FlowColumns = 10
	engine := NewDefaultEngine(cfg, nil)
	detector := NewDefaultRelationshipDetector(nil)

	a := makeChart(t, "A", []string{"region"}, []string{"sales"}, "ds-1")
	b := makeChart(t, "B", []string{"region", "product"}, []string{"cost"}, "ds-1")
	c := makeChart(t, "C", []string{"product", "channel"}, []string{"margin"}, "ds-1")
	els := []*entities.CanvasElement{c, a, b} // submission order differs from chain order

	rels := detector.Detect(els)
	placed, err := engine.Arrange(els, StrategyFlow, rels, mustPos(t, 0, 0))
	require.NoError(t, err)
	require.Len(t, placed, 3)

	// Reading order follows the chain: each successive chain member sits
	// further along the row, regardless of submission order
	byID := placementsByID(placed)
	chain := NarrativeChain([]valueobjects.ElementID{a.ID(), b.ID(), c.ID()}, rels, 0.3)
	require.Len(t, chain, 3)
	for i := 0; i < len(chain)-1; i++ {
		assert.Less(t,
			byID[chain[i].String()].Bounds.Origin().X(),
			byID[chain[i+1].String()].Bounds.Origin().X())
	}
	assertNoOverlap(t, placed)
}

func TestArrange_Hero(t *testing.T) {
	engine := NewDefaultEngine(nil, nil)

	big, err := entities.NewElement(entities.KindChart, "Overview", mustPos(t, 0, 0), mustSize(t, 800, 600))
	require.NoError(t, err)
	els := []*entities.CanvasElement{big}
	for i := 0; i < 4; i++ {
		els = append(els, makeChart(t, fmt.Sprintf("detail %d", i), []string{"region"}, []string{"sales"}, "ds-1"))
	}

	placed, err := engine.Arrange(els, StrategyHero, nil, mustPos(t, 0, 0))
	require.NoError(t, err)
	require.Len(t, placed, 5)

	byID := placementsByID(placed)
	heroBounds := byID[big.ID().String()].Bounds

	// Hero sits top-left with the largest slot
	assert.Equal(t, 0.0, heroBounds.Origin().X())
	assert.Equal(t, 0.0, heroBounds.Origin().Y())
	for _, p := range placed {
		if p.ID.Equals(big.ID()) {
			continue
		}
		assert.Less(t, p.Bounds.Size().Area(), heroBounds.Size().Area())
	}
	assertNoOverlap(t, placed)
}

func TestArrange_MixedKindsNoOverlap(t *testing.T) {
	engine := NewDefaultEngine(nil, nil)

	note, err := entities.NewElement(entities.KindTextbox, "note", mustPos(t, 0, 0), mustSize(t, 300, 160))
	require.NoError(t, err)
	table, err := entities.NewElement(entities.KindTable, "raw data", mustPos(t, 0, 0), mustSize(t, 400, 300))
	require.NoError(t, err)

	els := []*entities.CanvasElement{
		makeChart(t, "A", []string{"region"}, []string{"sales"}, "ds-1"),
		makeKPI(t, "Revenue", 10),
		note,
		table,
	}

	placed, err := engine.Arrange(els, StrategyGrid, nil, mustPos(t, 0, 0))
	require.NoError(t, err)
	assertNoOverlap(t, placed)
}

// assertNoOverlap fails if any two placements' bounding boxes intersect
func assertNoOverlap(t *testing.T, placed []PlacedElement) {
	t.Helper()
	for i := 0; i < len(placed); i++ {
		for j := i + 1; j < len(placed); j++ {
			assert.False(t, placed[i].Bounds.Intersects(placed[j].Bounds),
				"elements %d and %d overlap: %v vs %v", i, j, placed[i].Bounds, placed[j].Bounds)
		}
	}
}

func placementsByID(placed []PlacedElement) map[string]PlacedElement {
	out := make(map[string]PlacedElement, len(placed))
	for _, p := range placed {
		out[p.ID.String()] = p
	}
	return out
}
