package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "chartfusion-agent/pkg/errors"
)

func TestValidator_ValidateAction(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name        string
		index       int
		action      Action
		wantErr     bool
		errContains string
	}{
		{
			name:  "valid create_chart passes",
			index: 0,
			action: Action{Kind: KindCreateChart, Params: CreateChartParams{
				DatasetID:  "sales",
				Dimensions: []string{"region"},
				Measures:   []string{"revenue"},
			}},
		},
		{
			name:        "missing dataset names field with index",
			index:       2,
			action:      Action{Kind: KindCreateChart, Params: CreateChartParams{Dimensions: []string{"d"}, Measures: []string{"m"}}},
			wantErr:     true,
			errContains: "[2].datasetId",
		},
		{
			name:        "empty dimensions rejected",
			index:       0,
			action:      Action{Kind: KindCreateChart, Params: CreateChartParams{DatasetID: "sales", Dimensions: []string{}, Measures: []string{"m"}}},
			wantErr:     true,
			errContains: "[0].dimensions",
		},
		{
			name:        "unknown kind names the kind field",
			index:       4,
			action:      Action{Kind: Kind("delete_universe"), Params: OrganizeCanvasParams{}},
			wantErr:     true,
			errContains: "[4].kind",
		},
		{
			name:        "nil params rejected",
			index:       1,
			action:      Action{Kind: KindAIQuery},
			wantErr:     true,
			errContains: "[1].params",
		},
		{
			name:        "insights require a valid chart id",
			index:       3,
			action:      Action{Kind: KindGenerateChartInsights, Params: GenerateChartInsightsParams{ChartID: "not-a-uuid"}},
			wantErr:     true,
			errContains: "[3].chartId",
		},
		{
			name:        "arrange strategy restricted to known strategies",
			index:       0,
			action:      Action{Kind: KindArrangeElements, Params: ArrangeElementsParams{Strategy: "spiral"}},
			wantErr:     true,
			errContains: "[0].strategy",
		},
		{
			name:   "arrange with no ids and no strategy is fine",
			index:  0,
			action: Action{Kind: KindArrangeElements, Params: ArrangeElementsParams{}},
		},
		{
			name:        "textbox requires text",
			index:       7,
			action:      Action{Kind: KindCreateTextbox, Params: CreateTextboxParams{Title: "notes"}},
			wantErr:     true,
			errContains: "[7].text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateAction(tt.index, tt.action)

			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err))
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestValidator_ValidateBatch(t *testing.T) {
	v := NewValidator()

	batch := []Action{
		{Kind: KindCreateChart, Params: CreateChartParams{DatasetID: "sales", Dimensions: []string{"region"}, Measures: []string{"revenue"}}},
		{Kind: Kind("delete_universe"), Params: OrganizeCanvasParams{}},
		{Kind: KindCreateTextbox, Params: CreateTextboxParams{Text: "summary"}},
		{Kind: KindCreateKPI, Params: CreateKPIParams{Title: "Revenue"}},
	}

	errs := v.ValidateBatch(batch)

	require.Len(t, errs, len(batch), "one slot per submitted action")
	assert.NoError(t, errs[0])
	assert.NoError(t, errs[2])

	require.Error(t, errs[1])
	assert.Contains(t, errs[1].Error(), "[1].kind")

	require.Error(t, errs[3])
	assert.Contains(t, errs[3].Error(), "[3].metric")
}

func TestValidator_ValidateBatch_Empty(t *testing.T) {
	v := NewValidator()

	assert.Empty(t, v.ValidateBatch(nil))
	assert.Empty(t, v.ValidateBatch([]Action{}))
}

func BenchmarkValidator_ValidateAction(b *testing.B) {
	v := NewValidator()
	action := Action{Kind: KindCreateChart, Params: CreateChartParams{
		DatasetID:  "sales",
		Dimensions: []string{"region", "quarter"},
		Measures:   []string{"revenue"},
	}}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = v.ValidateAction(0, action)
	}
}
