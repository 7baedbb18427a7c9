// Package memory provides the in-process canvas store. The canvas is session
// state: it lives exactly as long as the agent, so a guarded map is the whole
// persistence story.
package memory

import (
	"context"
	"sync"

	"chartfusion-agent/application/ports"
	"chartfusion-agent/domain/core/entities"
	"chartfusion-agent/domain/core/valueobjects"
	pkgerrors "chartfusion-agent/pkg/errors"
)

// CanvasStore is an in-memory implementation of CanvasRepository. Reads
// return elements in insertion order so traversals are deterministic.
type CanvasStore struct {
	mu       sync.RWMutex
	elements map[valueobjects.ElementID]*entities.CanvasElement
	order    []valueobjects.ElementID
	viewport valueobjects.Bounds
}

var _ ports.CanvasRepository = (*CanvasStore)(nil)

// NewCanvasStore creates an empty canvas store
func NewCanvasStore() *CanvasStore {
	origin, _ := valueobjects.NewPosition(0, 0)
	size, _ := valueobjects.NewSize(1920, 1080)
	return &CanvasStore{
		elements: make(map[valueobjects.ElementID]*entities.CanvasElement),
		viewport: valueobjects.NewBounds(origin, size),
	}
}

// Save persists an element, creating or replacing it
func (s *CanvasStore) Save(_ context.Context, element *entities.CanvasElement) error {
	if element == nil {
		return pkgerrors.NewValidation("cannot save a nil element")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.elements[element.ID()]; !exists {
		s.order = append(s.order, element.ID())
	}
	s.elements[element.ID()] = element
	return nil
}

// GetByID retrieves one element
func (s *CanvasStore) GetByID(_ context.Context, id valueobjects.ElementID) (*entities.CanvasElement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	element, exists := s.elements[id]
	if !exists {
		return nil, pkgerrors.NewNotFound("element not found: " + id.String())
	}
	return element, nil
}

// GetAll returns every element in insertion order
func (s *CanvasStore) GetAll(_ context.Context) ([]*entities.CanvasElement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*entities.CanvasElement, 0, len(s.order))
	for _, id := range s.order {
		if element, exists := s.elements[id]; exists {
			all = append(all, element)
		}
	}
	return all, nil
}

// GetByKind returns elements of one kind in insertion order
func (s *CanvasStore) GetByKind(_ context.Context, kind entities.ElementKind) ([]*entities.CanvasElement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]*entities.CanvasElement, 0)
	for _, id := range s.order {
		if element, exists := s.elements[id]; exists && element.Kind() == kind {
			matched = append(matched, element)
		}
	}
	return matched, nil
}

// Delete removes an element. Deleting an absent element is a no-op.
func (s *CanvasStore) Delete(_ context.Context, id valueobjects.ElementID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.elements[id]; !exists {
		return nil
	}
	delete(s.elements, id)
	for i, ordered := range s.order {
		if ordered.Equals(id) {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Count returns the number of stored elements
func (s *CanvasStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.elements), nil
}

// ViewportCenter returns the center of the visible region
func (s *CanvasStore) ViewportCenter(_ context.Context) (valueobjects.Position, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.viewport.Center(), nil
}

// SetViewport updates the visible region
func (s *CanvasStore) SetViewport(_ context.Context, bounds valueobjects.Bounds) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.viewport = bounds
	return nil
}
