package actions

import (
	"encoding/json"
	"fmt"

	pkgerrors "chartfusion-agent/pkg/errors"
)

// Kind identifies one planner-issued command over the closed action set
type Kind string

const (
	// KindCreateChart renders a new chart through the chart backend
	KindCreateChart Kind = "create_chart"

	// KindCreateKPI computes and places a single-number metric card
	KindCreateKPI Kind = "create_kpi"

	// KindOrganizeCanvas runs a one-shot organize pass over the canvas
	KindOrganizeCanvas Kind = "organize_canvas"

	// KindArrangeElements rearranges a subset with an explicit strategy
	KindArrangeElements Kind = "arrange_elements"

	// KindSemanticGrouping groups charts into labeled zones by keywords
	KindSemanticGrouping Kind = "semantic_grouping"

	// KindGenerateChartInsights asks the AI backend to narrate one chart
	KindGenerateChartInsights Kind = "generate_chart_insights"

	// KindAIQuery answers a free-form question about the canvas
	KindAIQuery Kind = "ai_query"

	// KindCreateAnnotation draws an annotation primitive
	KindCreateAnnotation Kind = "create_annotation"

	// KindCreateTextbox places a free-form text block
	KindCreateTextbox Kind = "create_textbox"
)

// IsValid checks if the kind belongs to the closed action set
func (k Kind) IsValid() bool {
	switch k {
	case KindCreateChart, KindCreateKPI, KindOrganizeCanvas, KindArrangeElements,
		KindSemanticGrouping, KindGenerateChartInsights, KindAIQuery,
		KindCreateAnnotation, KindCreateTextbox:
		return true
	default:
		return false
	}
}

// String returns the string representation of the kind
func (k Kind) String() string {
	return string(k)
}

// Params is the closed union of kind-specific parameter records
type Params interface {
	isParams()
}

// PointParam is an optional explicit placement for created elements
type PointParam struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// CreateChartParams describes a chart to render
type CreateChartParams struct {
	DatasetID  string      `json:"datasetId" validate:"required"`
	Dimensions []string    `json:"dimensions" validate:"required,min=1,dive,required"`
	Measures   []string    `json:"measures" validate:"required,min=1,dive,required"`
	Title      string      `json:"title"`
	ChartType  string      `json:"chartType"`
	Position   *PointParam `json:"position"`
}

func (CreateChartParams) isParams() {}

// CreateKPIParams describes a metric card. When the planner already computed
// the value, Value is set and the handler skips the network call.
type CreateKPIParams struct {
	Title     string      `json:"title" validate:"required"`
	Metric    string      `json:"metric" validate:"required"`
	DatasetID string      `json:"datasetId"`
	Value     *float64    `json:"value"`
	Position  *PointParam `json:"position"`
}

func (CreateKPIParams) isParams() {}

// OrganizeCanvasParams triggers a full organize pass
type OrganizeCanvasParams struct {
	Anchor *PointParam `json:"anchor"`
}

func (OrganizeCanvasParams) isParams() {}

// ArrangeElementsParams rearranges the named elements, or the whole canvas
// when no IDs are given
type ArrangeElementsParams struct {
	ElementIDs []string    `json:"elementIds" validate:"omitempty,dive,uuid"`
	Strategy   string      `json:"strategy" validate:"omitempty,oneof=grid hero flow comparison kpi-dashboard"`
	Anchor     *PointParam `json:"anchor"`
}

func (ArrangeElementsParams) isParams() {}

// SemanticGroupingParams groups charts into keyword-family zones
type SemanticGroupingParams struct {
	Intent string      `json:"intent"`
	Anchor *PointParam `json:"anchor"`
}

func (SemanticGroupingParams) isParams() {}

// GenerateChartInsightsParams narrates an existing chart
type GenerateChartInsightsParams struct {
	ChartID     string `json:"chartId" validate:"required,uuid"`
	UserContext string `json:"userContext"`
}

func (GenerateChartInsightsParams) isParams() {}

// AIQueryParams answers a free-form question; the answer lands at the
// viewport center unless the planner placed it
type AIQueryParams struct {
	Prompt   string      `json:"prompt" validate:"required"`
	Position *PointParam `json:"position"`
}

func (AIQueryParams) isParams() {}

// CreateAnnotationParams draws an annotation near a target element
type CreateAnnotationParams struct {
	Text     string      `json:"text" validate:"required"`
	TargetID string      `json:"targetId" validate:"omitempty,uuid"`
	Position *PointParam `json:"position"`
}

func (CreateAnnotationParams) isParams() {}

// CreateTextboxParams places a text block
type CreateTextboxParams struct {
	Text     string      `json:"text" validate:"required"`
	Title    string      `json:"title"`
	Position *PointParam `json:"position"`
}

func (CreateTextboxParams) isParams() {}

// Action is one planner-issued command. Immutable once scheduled: derived
// priority and weight live on the queue item, never on the action itself.
type Action struct {
	Kind   Kind   `json:"kind"`
	Params Params `json:"params"`
}

// NewAction pairs a kind with its parameter record, rejecting mismatches
func NewAction(kind Kind, params Params) (Action, error) {
	if !kind.IsValid() {
		return Action{}, pkgerrors.NewValidationf("unknown action kind: %q", kind)
	}
	if !paramsMatchKind(kind, params) {
		return Action{}, pkgerrors.NewValidationf("parameters do not match kind %q", kind)
	}
	return Action{Kind: kind, Params: params}, nil
}

// UnmarshalJSON decodes the kind first, then the matching parameter record.
// Unknown kinds surface as validation errors at this boundary, so everything
// past it works over the closed set.
func (a *Action) UnmarshalJSON(data []byte) error {
	var envelope struct {
		Kind   Kind            `json:"kind"`
		Params json.RawMessage `json:"params"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return pkgerrors.NewValidationf("malformed action: %v", err)
	}

	params, err := decodeParams(envelope.Kind, envelope.Params)
	if err != nil {
		return err
	}

	a.Kind = envelope.Kind
	a.Params = params
	return nil
}

// MarshalJSON encodes the action back into its envelope form
func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Kind   Kind   `json:"kind"`
		Params Params `json:"params"`
	}{Kind: a.Kind, Params: a.Params})
}

func decodeParams(kind Kind, raw json.RawMessage) (Params, error) {
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}

	unmarshal := func(dst interface{}) error {
		if err := json.Unmarshal(raw, dst); err != nil {
			return pkgerrors.NewValidationf("malformed %s parameters: %v", kind, err)
		}
		return nil
	}

	switch kind {
	case KindCreateChart:
		var p CreateChartParams
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	case KindCreateKPI:
		var p CreateKPIParams
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	case KindOrganizeCanvas:
		var p OrganizeCanvasParams
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	case KindArrangeElements:
		var p ArrangeElementsParams
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	case KindSemanticGrouping:
		var p SemanticGroupingParams
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	case KindGenerateChartInsights:
		var p GenerateChartInsightsParams
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	case KindAIQuery:
		var p AIQueryParams
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	case KindCreateAnnotation:
		var p CreateAnnotationParams
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	case KindCreateTextbox:
		var p CreateTextboxParams
		if err := unmarshal(&p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, pkgerrors.NewValidationf("unknown action kind: %q", kind)
	}
}

func paramsMatchKind(kind Kind, params Params) bool {
	switch params.(type) {
	case CreateChartParams:
		return kind == KindCreateChart
	case CreateKPIParams:
		return kind == KindCreateKPI
	case OrganizeCanvasParams:
		return kind == KindOrganizeCanvas
	case ArrangeElementsParams:
		return kind == KindArrangeElements
	case SemanticGroupingParams:
		return kind == KindSemanticGrouping
	case GenerateChartInsightsParams:
		return kind == KindGenerateChartInsights
	case AIQueryParams:
		return kind == KindAIQuery
	case CreateAnnotationParams:
		return kind == KindCreateAnnotation
	case CreateTextboxParams:
		return kind == KindCreateTextbox
	default:
		return false
	}
}

// String renders a short human-readable form for logs
func (a Action) String() string {
	return fmt.Sprintf("action(%s)", a.Kind)
}
