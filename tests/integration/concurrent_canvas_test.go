package integration

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chartfusion-agent/domain/core/entities"
	"chartfusion-agent/domain/core/valueobjects"
	"chartfusion-agent/infrastructure/persistence/memory"
	"chartfusion-agent/tests/fixtures"
)

func TestCanvasStore_ConcurrentSavesAllLand(t *testing.T) {
	store := memory.NewCanvasStore()
	ctx := context.Background()
	const writers = 40

	elements := make([]*entities.CanvasElement, writers)
	for i := range elements {
		elements[i] = fixtures.NewElementBuilder().
			WithKind(entities.KindTextbox).
			WithTitle(fmt.Sprintf("note-%02d", i)).
			WithPosition(float64(i)*10, float64(i)*10).
			MustBuild()
	}

	var wg sync.WaitGroup
	for _, element := range elements {
		wg.Add(1)
		go func(e *entities.CanvasElement) {
			defer wg.Done()
			assert.NoError(t, store.Save(ctx, e))
		}(element)
	}
	wg.Wait()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, writers, count)

	all, err := store.GetAll(ctx)
	require.NoError(t, err)
	seen := make(map[string]bool, len(all))
	for _, element := range all {
		seen[element.ID().String()] = true
	}
	assert.Len(t, seen, writers, "every concurrent save is retrievable")
}

func TestCanvasStore_ConcurrentMovesNeverLost(t *testing.T) {
	store := memory.NewCanvasStore()
	ctx := context.Background()
	const movers = 40

	ids := make([]valueobjects.ElementID, movers)
	for i := 0; i < movers; i++ {
		element := fixtures.NewElementBuilder().
			WithKind(entities.KindTextbox).
			WithTitle(fmt.Sprintf("note-%02d", i)).
			WithPosition(0, 0).
			MustBuild()
		require.NoError(t, store.Save(ctx, element))
		ids[i] = element.ID()
	}

	target := func(i int) (float64, float64) {
		return float64(i) * 30, float64(i) * 20
	}

	var wg sync.WaitGroup
	for i, id := range ids {
		wg.Add(1)
		go func(i int, id valueobjects.ElementID) {
			defer wg.Done()

			element, err := store.GetByID(ctx, id)
			if !assert.NoError(t, err) {
				return
			}
			x, y := target(i)
			pos, err := valueobjects.NewPosition(x, y)
			if !assert.NoError(t, err) {
				return
			}
			if !assert.NoError(t, element.MoveTo(pos)) {
				return
			}
			assert.NoError(t, store.Save(ctx, element))
		}(i, id)
	}
	wg.Wait()

	for i, id := range ids {
		element, err := store.GetByID(ctx, id)
		require.NoError(t, err)
		x, y := target(i)
		assert.Equal(t, x, element.Position().X(), "element %d X", i)
		assert.Equal(t, y, element.Position().Y(), "element %d Y", i)
	}
}

func TestCanvasStore_ReadersDuringWrites(t *testing.T) {
	store := memory.NewCanvasStore()
	ctx := context.Background()
	const writers = 20

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			element := fixtures.NewElementBuilder().
				WithKind(entities.KindAnnotation).
				WithTitle(fmt.Sprintf("pin-%02d", i)).
				WithPosition(float64(i)*5, 0).
				MustBuild()
			assert.NoError(t, store.Save(ctx, element))
		}(i)

		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.GetAll(ctx); err != nil {
				assert.NoError(t, err)
			}
			if _, err := store.Count(ctx); err != nil {
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, writers, count)
}
