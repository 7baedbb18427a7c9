package valueobjects

import (
	"strings"

	"github.com/google/uuid"

	pkgerrors "chartfusion-agent/pkg/errors"
)

// ElementID uniquely identifies a canvas element for the session's lifetime
type ElementID struct {
	value string
}

// NewElementID generates a new unique element ID
func NewElementID() ElementID {
	return ElementID{value: uuid.New().String()}
}

// NewElementIDFromString creates an ElementID from an existing string
func NewElementIDFromString(s string) (ElementID, error) {
	if s == "" {
		return ElementID{}, pkgerrors.NewValidation("element ID cannot be empty")
	}
	if _, err := uuid.Parse(strings.TrimSpace(s)); err != nil {
		return ElementID{}, pkgerrors.NewValidation("element ID must be a valid UUID")
	}
	return ElementID{value: s}, nil
}

// String returns the string representation
func (id ElementID) String() string {
	return id.value
}

// IsZero checks if the ID is uninitialized
func (id ElementID) IsZero() bool {
	return id.value == ""
}

// Equals checks if two element IDs are the same
func (id ElementID) Equals(other ElementID) bool {
	return id.value == other.value
}
