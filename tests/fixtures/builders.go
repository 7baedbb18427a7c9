// Package fixtures provides builders for test canvas state and action
// batches, so integration tests read as scenarios instead of setup code.
package fixtures

import (
	"chartfusion-agent/application/actions"
	"chartfusion-agent/domain/core/entities"
	"chartfusion-agent/domain/core/valueobjects"
)

// ElementBuilder helps create test elements with default values
type ElementBuilder struct {
	kind       entities.ElementKind
	title      string
	x, y       float64
	width      float64
	height     float64
	datasetID  string
	chartType  string
	dimensions []string
	measures   []string
	properties map[string]interface{}
}

// NewElementBuilder starts a chart element at the origin
func NewElementBuilder() *ElementBuilder {
	return &ElementBuilder{
		kind:       entities.KindChart,
		title:      "Revenue by Region",
		width:      400,
		height:     300,
		datasetID:  "sales-2025",
		chartType:  "bar",
		dimensions: []string{"region"},
		measures:   []string{"revenue"},
		properties: make(map[string]interface{}),
	}
}

func (b *ElementBuilder) WithKind(kind entities.ElementKind) *ElementBuilder {
	b.kind = kind
	return b
}

func (b *ElementBuilder) WithTitle(title string) *ElementBuilder {
	b.title = title
	return b
}

func (b *ElementBuilder) WithPosition(x, y float64) *ElementBuilder {
	b.x, b.y = x, y
	return b
}

func (b *ElementBuilder) WithSize(width, height float64) *ElementBuilder {
	b.width, b.height = width, height
	return b
}

func (b *ElementBuilder) WithChartFields(datasetID string, dimensions, measures []string) *ElementBuilder {
	b.datasetID = datasetID
	b.dimensions = dimensions
	b.measures = measures
	return b
}

func (b *ElementBuilder) WithChartType(chartType string) *ElementBuilder {
	b.chartType = chartType
	return b
}

func (b *ElementBuilder) WithProperty(key string, value interface{}) *ElementBuilder {
	b.properties[key] = value
	return b
}

// Build creates the element. Charts get a full chart spec; other kinds are
// plain elements of the requested kind.
func (b *ElementBuilder) Build() (*entities.CanvasElement, error) {
	position, err := valueobjects.NewPosition(b.x, b.y)
	if err != nil {
		return nil, err
	}
	size, err := valueobjects.NewSize(b.width, b.height)
	if err != nil {
		return nil, err
	}

	var element *entities.CanvasElement
	if b.kind == entities.KindChart {
		spec, err := valueobjects.NewChartSpec(b.title, b.chartType, b.datasetID, b.dimensions, b.measures)
		if err != nil {
			return nil, err
		}
		element, err = entities.NewChartElement(spec, position, size)
		if err != nil {
			return nil, err
		}
	} else {
		element, err = entities.NewElement(b.kind, b.title, position, size)
		if err != nil {
			return nil, err
		}
	}

	for key, value := range b.properties {
		element.SetProperty(key, value)
	}
	return element, nil
}

// MustBuild panics on invalid fixtures and commits creation events so tests
// only observe the events their scenario produces.
func (b *ElementBuilder) MustBuild() *entities.CanvasElement {
	element, err := b.Build()
	if err != nil {
		panic(err)
	}
	element.MarkEventsAsCommitted()
	return element
}

// CreateChartAction returns a valid create_chart action
func CreateChartAction(title, datasetID string, dimensions, measures []string) actions.Action {
	return mustAction(actions.KindCreateChart, actions.CreateChartParams{
		DatasetID:  datasetID,
		Dimensions: dimensions,
		Measures:   measures,
		Title:      title,
		ChartType:  "bar",
	})
}

// CreateKPIAction returns a create_kpi action that needs a metric call
func CreateKPIAction(title, metric, datasetID string) actions.Action {
	return mustAction(actions.KindCreateKPI, actions.CreateKPIParams{
		Title:     title,
		Metric:    metric,
		DatasetID: datasetID,
	})
}

// CreateTextboxAction returns a create_textbox action
func CreateTextboxAction(title, text string) actions.Action {
	return mustAction(actions.KindCreateTextbox, actions.CreateTextboxParams{
		Title: title,
		Text:  text,
	})
}

// OrganizeAction returns an organize_canvas action
func OrganizeAction() actions.Action {
	return mustAction(actions.KindOrganizeCanvas, actions.OrganizeCanvasParams{})
}

// SemanticGroupingAction returns a semantic_grouping action
func SemanticGroupingAction(intent string) actions.Action {
	return mustAction(actions.KindSemanticGrouping, actions.SemanticGroupingParams{Intent: intent})
}

// InsightsAction returns a generate_chart_insights action for a chart
func InsightsAction(chartID string) actions.Action {
	return mustAction(actions.KindGenerateChartInsights, actions.GenerateChartInsightsParams{ChartID: chartID})
}

// QueryAction returns an ai_query action
func QueryAction(prompt string) actions.Action {
	return mustAction(actions.KindAIQuery, actions.AIQueryParams{Prompt: prompt})
}

func mustAction(kind actions.Kind, params actions.Params) actions.Action {
	action, err := actions.NewAction(kind, params)
	if err != nil {
		panic(err)
	}
	return action
}
