package entities

// ElementKind represents the type of a canvas element
type ElementKind string

const (
	// KindChart represents a rendered chart figure
	KindChart ElementKind = "chart"

	// KindKPI represents a single-number metric card
	KindKPI ElementKind = "kpi"

	// KindTable represents a tabular data view
	KindTable ElementKind = "table"

	// KindTextbox represents a free-form text block
	KindTextbox ElementKind = "textbox"

	// KindAnnotation represents a drawn annotation (arrow, highlight, note)
	KindAnnotation ElementKind = "annotation"
)

// IsValid checks if the element kind is valid
func (k ElementKind) IsValid() bool {
	switch k {
	case KindChart, KindKPI, KindTable, KindTextbox, KindAnnotation:
		return true
	default:
		return false
	}
}

// String returns the string representation of the element kind
func (k ElementKind) String() string {
	return string(k)
}
