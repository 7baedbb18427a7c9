package valueobjects

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSize(t *testing.T) {
	tests := []struct {
		name          string
		width, height float64
		wantErr       bool
		errMsg        string
	}{
		{
			name:    "valid size",
			width:   400,
			height:  300,
			wantErr: false,
		},
		{
			name:    "zero width",
			width:   0,
			height:  100,
			wantErr: true,
			errMsg:  "must be positive",
		},
		{
			name:    "negative height",
			width:   100,
			height:  -5,
			wantErr: true,
			errMsg:  "must be positive",
		},
		{
			name:    "NaN width",
			width:   math.NaN(),
			height:  100,
			wantErr: true,
			errMsg:  "finite",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			size, err := NewSize(tt.width, tt.height)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.width, size.Width())
				assert.Equal(t, tt.height, size.Height())
				assert.Equal(t, tt.width*tt.height, size.Area())
			}
		})
	}
}

func TestBounds_Intersects(t *testing.T) {
	tests := []struct {
		name     string
		a        Bounds
		b        Bounds
		expected bool
	}{
		{
			name:     "clearly overlapping",
			a:        mustNewBounds(0, 0, 100, 100),
			b:        mustNewBounds(50, 50, 100, 100),
			expected: true,
		},
		{
			name:     "disjoint horizontally",
			a:        mustNewBounds(0, 0, 100, 100),
			b:        mustNewBounds(200, 0, 100, 100),
			expected: false,
		},
		{
			name:     "disjoint vertically",
			a:        mustNewBounds(0, 0, 100, 100),
			b:        mustNewBounds(0, 200, 100, 100),
			expected: false,
		},
		{
			name:     "touching edges do not overlap",
			a:        mustNewBounds(0, 0, 100, 100),
			b:        mustNewBounds(100, 0, 100, 100),
			expected: false,
		},
		{
			name:     "one contained in the other",
			a:        mustNewBounds(0, 0, 200, 200),
			b:        mustNewBounds(50, 50, 20, 20),
			expected: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.a.Intersects(tt.b))

			// Intersection is symmetric
			assert.Equal(t, tt.expected, tt.b.Intersects(tt.a))
		})
	}
}

func TestBounds_Center(t *testing.T) {
	b := mustNewBounds(10, 20, 100, 60)
	center := b.Center()

	assert.InDelta(t, 60.0, center.X(), 0.0001)
	assert.InDelta(t, 50.0, center.Y(), 0.0001)
}

func TestBounds_Translate(t *testing.T) {
	b := mustNewBounds(10, 10, 50, 50)
	moved := b.Translate(100, -5)

	assert.InDelta(t, 110.0, moved.Origin().X(), 0.0001)
	assert.InDelta(t, 5.0, moved.Origin().Y(), 0.0001)
	assert.True(t, moved.Size().Equals(b.Size()))
}

func TestBounds_Union(t *testing.T) {
	a := mustNewBounds(0, 0, 100, 100)
	b := mustNewBounds(150, 50, 100, 100)

	u := a.Union(b)

	assert.InDelta(t, 0.0, u.Origin().X(), 0.0001)
	assert.InDelta(t, 0.0, u.Origin().Y(), 0.0001)
	assert.InDelta(t, 250.0, u.Size().Width(), 0.0001)
	assert.InDelta(t, 150.0, u.Size().Height(), 0.0001)
}

func TestBounds_Contains(t *testing.T) {
	b := mustNewBounds(0, 0, 100, 100)

	assert.True(t, b.Contains(mustNewPosition(50, 50)))
	assert.True(t, b.Contains(mustNewPosition(0, 0)))
	assert.False(t, b.Contains(mustNewPosition(100, 100)))
	assert.False(t, b.Contains(mustNewPosition(-1, 50)))
}

func mustNewBounds(x, y, w, h float64) Bounds {
	pos, err := NewPosition(x, y)
	if err != nil {
		panic(err)
	}
	size, err := NewSize(w, h)
	if err != nil {
		panic(err)
	}
	return NewBounds(pos, size)
}
