package valueobjects

import (
	"sort"
	"strings"

	pkgerrors "chartfusion-agent/pkg/errors"
)

// ChartSpec is a value object describing the structure of a chart:
// which dimensions it is sliced by, which measures it plots, and
// which dataset it draws from. It carries no rendered figure.
type ChartSpec struct {
	title      string
	chartType  string
	datasetID  string
	dimensions []string
	measures   []string
}

// NewChartSpec creates a chart spec with validation
func NewChartSpec(title, chartType, datasetID string, dimensions, measures []string) (ChartSpec, error) {
	if strings.TrimSpace(title) == "" {
		return ChartSpec{}, pkgerrors.NewValidation("chart title cannot be empty")
	}
	if len(dimensions) == 0 && len(measures) == 0 {
		return ChartSpec{}, pkgerrors.NewValidation("chart must declare at least one dimension or measure")
	}
	return ChartSpec{
		title:      title,
		chartType:  chartType,
		datasetID:  datasetID,
		dimensions: normalizeFields(dimensions),
		measures:   normalizeFields(measures),
	}, nil
}

// Title returns the chart title
func (c ChartSpec) Title() string {
	return c.title
}

// ChartType returns the mark type (bar, line, scatter, ...)
func (c ChartSpec) ChartType() string {
	return c.chartType
}

// DatasetID identifies the underlying data source
func (c ChartSpec) DatasetID() string {
	return c.datasetID
}

// Dimensions returns a copy of the dimension field names
func (c ChartSpec) Dimensions() []string {
	out := make([]string, len(c.dimensions))
	copy(out, c.dimensions)
	return out
}

// Measures returns a copy of the measure field names
func (c ChartSpec) Measures() []string {
	out := make([]string, len(c.measures))
	copy(out, c.measures)
	return out
}

// DimensionSet returns the dimensions as a lookup set
func (c ChartSpec) DimensionSet() map[string]bool {
	return fieldSet(c.dimensions)
}

// MeasureSet returns the measures as a lookup set
func (c ChartSpec) MeasureSet() map[string]bool {
	return fieldSet(c.measures)
}

// Signature returns a canonical encoding of the dimension/measure shape,
// stable regardless of field ordering in the source spec.
func (c ChartSpec) Signature() string {
	dims := append([]string{}, c.dimensions...)
	meas := append([]string{}, c.measures...)
	sort.Strings(dims)
	sort.Strings(meas)
	return "d:" + strings.Join(dims, ",") + "|m:" + strings.Join(meas, ",")
}

// SameShape reports whether two charts slice and measure identically
func (c ChartSpec) SameShape(other ChartSpec) bool {
	return c.Signature() == other.Signature()
}

// normalizeFields lowercases and trims field names, dropping empties
func normalizeFields(fields []string) []string {
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" {
			out = append(out, f)
		}
	}
	return out
}

func fieldSet(fields []string) map[string]bool {
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}
