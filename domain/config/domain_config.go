package config

// SizeHint is the preferred footprint for an element kind
type SizeHint struct {
	Width  float64
	Height float64
}

// DomainConfig carries the layout business rules: paddings, per-kind size
// hints, and arrangement shape parameters. Pure data; no behavior.
type DomainConfig struct {
	// Padding is the gap between neighboring elements in an arrangement
	Padding float64

	// ZonePadding is the gap between zones in a grid-of-zones
	ZonePadding float64

	// ZoneLabelHeight is the vertical space reserved for a zone's label
	ZoneLabelHeight float64

	// KPIStripColumns caps how many KPI cards sit in one strip row
	KPIStripColumns int

	// FlowColumns caps how many elements sit in one flow reading row
	FlowColumns int

	// HeroScale multiplies the dominant element's size hint in hero layouts
	HeroScale float64

	// SizeHints maps element kind names to their preferred footprint
	SizeHints map[string]SizeHint
}

// DefaultDomainConfig returns the standard layout rules
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		Padding:         24,
		ZonePadding:     48,
		ZoneLabelHeight: 40,
		KPIStripColumns: 4,
		FlowColumns:     3,
		HeroScale:       2.0,
		SizeHints: map[string]SizeHint{
			"chart":      {Width: 400, Height: 300},
			"kpi":        {Width: 200, Height: 120},
			"table":      {Width: 400, Height: 300},
			"textbox":    {Width: 300, Height: 160},
			"annotation": {Width: 200, Height: 100},
		},
	}
}

// HintFor returns the size hint for a kind, falling back to the chart hint
func (c *DomainConfig) HintFor(kind string) SizeHint {
	if hint, ok := c.SizeHints[kind]; ok {
		return hint
	}
	return SizeHint{Width: 400, Height: 300}
}
