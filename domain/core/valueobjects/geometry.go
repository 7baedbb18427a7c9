package valueobjects

import (
	pkgerrors "chartfusion-agent/pkg/errors"
)

// Size is a value object for element dimensions
type Size struct {
	width  float64
	height float64
}

// NewSize creates a size with validation
func NewSize(width, height float64) (Size, error) {
	if !isValidCoordinate(width) || !isValidCoordinate(height) {
		return Size{}, pkgerrors.NewValidation("invalid size: must be finite numbers")
	}
	if width <= 0 || height <= 0 {
		return Size{}, pkgerrors.NewValidation("invalid size: width and height must be positive")
	}
	return Size{width: width, height: height}, nil
}

// Width returns the width
func (s Size) Width() float64 {
	return s.width
}

// Height returns the height
func (s Size) Height() float64 {
	return s.height
}

// Area returns width * height
func (s Size) Area() float64 {
	return s.width * s.height
}

// Equals checks if two sizes are equal
func (s Size) Equals(other Size) bool {
	return s.width == other.width && s.height == other.height
}

// Bounds is an axis-aligned rectangle on the canvas
type Bounds struct {
	origin Position
	size   Size
}

// NewBounds creates bounds from an origin and a size
func NewBounds(origin Position, size Size) Bounds {
	return Bounds{origin: origin, size: size}
}

// Origin returns the top-left corner
func (b Bounds) Origin() Position {
	return b.origin
}

// Size returns the extent
func (b Bounds) Size() Size {
	return b.size
}

// MaxX returns the right edge
func (b Bounds) MaxX() float64 {
	return b.origin.X() + b.size.Width()
}

// MaxY returns the bottom edge
func (b Bounds) MaxY() float64 {
	return b.origin.Y() + b.size.Height()
}

// Center returns the geometric center
func (b Bounds) Center() Position {
	return Position{
		x: b.origin.X() + b.size.Width()/2,
		y: b.origin.Y() + b.size.Height()/2,
	}
}

// Intersects reports whether two bounds overlap.
// Shared edges do not count as overlap.
func (b Bounds) Intersects(other Bounds) bool {
	if b.MaxX() <= other.origin.X() || other.MaxX() <= b.origin.X() {
		return false
	}
	if b.MaxY() <= other.origin.Y() || other.MaxY() <= b.origin.Y() {
		return false
	}
	return true
}

// Contains reports whether the position lies inside the bounds
func (b Bounds) Contains(p Position) bool {
	return p.X() >= b.origin.X() && p.X() < b.MaxX() &&
		p.Y() >= b.origin.Y() && p.Y() < b.MaxY()
}

// Translate returns the bounds shifted by the given offsets
func (b Bounds) Translate(dx, dy float64) Bounds {
	return Bounds{
		origin: Position{x: b.origin.X() + dx, y: b.origin.Y() + dy},
		size:   b.size,
	}
}

// Union returns the smallest bounds covering both rectangles
func (b Bounds) Union(other Bounds) Bounds {
	minX := b.origin.X()
	if other.origin.X() < minX {
		minX = other.origin.X()
	}
	minY := b.origin.Y()
	if other.origin.Y() < minY {
		minY = other.origin.Y()
	}
	maxX := b.MaxX()
	if other.MaxX() > maxX {
		maxX = other.MaxX()
	}
	maxY := b.MaxY()
	if other.MaxY() > maxY {
		maxY = other.MaxY()
	}
	return Bounds{
		origin: Position{x: minX, y: minY},
		size:   Size{width: maxX - minX, height: maxY - minY},
	}
}
