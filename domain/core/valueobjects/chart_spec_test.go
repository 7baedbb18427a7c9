package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewChartSpec(t *testing.T) {
	tests := []struct {
		name       string
		title      string
		dimensions []string
		measures   []string
		wantErr    bool
		errMsg     string
	}{
		{
			name:       "valid spec",
			title:      "Sales by Region",
			dimensions: []string{"Region"},
			measures:   []string{"Sales"},
			wantErr:    false,
		},
		{
			name:       "empty title",
			title:      "   ",
			dimensions: []string{"region"},
			measures:   []string{"sales"},
			wantErr:    true,
			errMsg:     "title cannot be empty",
		},
		{
			name:       "no fields at all",
			title:      "Empty",
			dimensions: nil,
			measures:   nil,
			wantErr:    true,
			errMsg:     "at least one dimension or measure",
		},
		{
			name:       "measures only is allowed",
			title:      "Total Revenue",
			dimensions: nil,
			measures:   []string{"revenue"},
			wantErr:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := NewChartSpec(tt.title, "bar", "ds-1", tt.dimensions, tt.measures)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.title, spec.Title())
			}
		})
	}
}

func TestChartSpec_NormalizesFieldNames(t *testing.T) {
	spec, err := NewChartSpec("Mixed Case", "bar", "ds-1",
		[]string{" Region ", "MONTH", ""},
		[]string{"Sales"})
	require.NoError(t, err)

	assert.Equal(t, []string{"region", "month"}, spec.Dimensions())
	assert.Equal(t, []string{"sales"}, spec.Measures())
	assert.True(t, spec.DimensionSet()["region"])
	assert.True(t, spec.MeasureSet()["sales"])
}

func TestChartSpec_Signature(t *testing.T) {
	a, err := NewChartSpec("A", "bar", "ds-1", []string{"region", "month"}, []string{"sales"})
	require.NoError(t, err)
	b, err := NewChartSpec("B", "line", "ds-2", []string{"month", "region"}, []string{"sales"})
	require.NoError(t, err)
	c, err := NewChartSpec("C", "bar", "ds-1", []string{"region"}, []string{"sales"})
	require.NoError(t, err)

	// Field ordering must not affect the signature
	assert.Equal(t, a.Signature(), b.Signature())
	assert.True(t, a.SameShape(b))
	assert.False(t, a.SameShape(c))
}

func TestChartSpec_ReturnsCopies(t *testing.T) {
	spec, err := NewChartSpec("A", "bar", "ds-1", []string{"region"}, []string{"sales"})
	require.NoError(t, err)

	dims := spec.Dimensions()
	dims[0] = "mutated"

	assert.Equal(t, []string{"region"}, spec.Dimensions())
}
