package actions

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "chartfusion-agent/pkg/errors"
)

func TestKind_IsValid(t *testing.T) {
	valid := []Kind{
		KindCreateChart, KindCreateKPI, KindOrganizeCanvas, KindArrangeElements,
		KindSemanticGrouping, KindGenerateChartInsights, KindAIQuery,
		KindCreateAnnotation, KindCreateTextbox,
	}
	for _, kind := range valid {
		assert.True(t, kind.IsValid(), "expected %s to be valid", kind)
	}

	assert.False(t, Kind("delete_universe").IsValid())
	assert.False(t, Kind("").IsValid())
	assert.False(t, Kind("CREATE_CHART").IsValid())
}

func TestNewAction(t *testing.T) {
	t.Run("pairs kind with matching params", func(t *testing.T) {
		action, err := NewAction(KindCreateChart, CreateChartParams{
			DatasetID:  "sales",
			Dimensions: []string{"region"},
			Measures:   []string{"revenue"},
		})

		require.NoError(t, err)
		assert.Equal(t, KindCreateChart, action.Kind)
		assert.IsType(t, CreateChartParams{}, action.Params)
	})

	t.Run("rejects unknown kind", func(t *testing.T) {
		_, err := NewAction(Kind("teleport"), OrganizeCanvasParams{})

		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidation(err))
	})

	t.Run("rejects mismatched params", func(t *testing.T) {
		_, err := NewAction(KindCreateChart, AIQueryParams{Prompt: "hi"})

		require.Error(t, err)
		assert.True(t, pkgerrors.IsValidation(err))
	})
}

func TestAction_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantKind   Kind
		wantParams Params
		wantErr    bool
	}{
		{
			name:     "create_chart decodes typed params",
			payload:  `{"kind":"create_chart","params":{"datasetId":"sales","dimensions":["region"],"measures":["revenue"],"title":"Revenue by Region"}}`,
			wantKind: KindCreateChart,
			wantParams: CreateChartParams{
				DatasetID:  "sales",
				Dimensions: []string{"region"},
				Measures:   []string{"revenue"},
				Title:      "Revenue by Region",
			},
		},
		{
			name:     "create_kpi with precomputed value",
			payload:  `{"kind":"create_kpi","params":{"title":"Total Revenue","metric":"sum(revenue)","value":1250000}}`,
			wantKind: KindCreateKPI,
			wantParams: CreateKPIParams{
				Title:  "Total Revenue",
				Metric: "sum(revenue)",
				Value:  float64Ptr(1250000),
			},
		},
		{
			name:       "organize_canvas tolerates absent params",
			payload:    `{"kind":"organize_canvas"}`,
			wantKind:   KindOrganizeCanvas,
			wantParams: OrganizeCanvasParams{},
		},
		{
			name:     "ai_query with position",
			payload:  `{"kind":"ai_query","params":{"prompt":"what changed this week?","position":{"x":120,"y":-40}}}`,
			wantKind: KindAIQuery,
			wantParams: AIQueryParams{
				Prompt:   "what changed this week?",
				Position: &PointParam{X: 120, Y: -40},
			},
		},
		{
			name:    "unknown kind is rejected",
			payload: `{"kind":"delete_universe","params":{}}`,
			wantErr: true,
		},
		{
			name:    "malformed params are rejected",
			payload: `{"kind":"create_chart","params":{"dimensions":"not-a-list"}}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var action Action
			err := json.Unmarshal([]byte(tt.payload), &action)

			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsValidation(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, action.Kind)
			assert.Equal(t, tt.wantParams, action.Params)
		})
	}
}

func TestAction_MarshalRoundTrip(t *testing.T) {
	original, err := NewAction(KindCreateAnnotation, CreateAnnotationParams{
		Text:     "spike caused by promo",
		TargetID: "7f9c24e5-2b31-4389-9f5a-6f1d3e6a8b20",
	})
	require.NoError(t, err)

	data, err := json.Marshal(original)
	require.NoError(t, err)

	var decoded Action
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, original, decoded)
}

func float64Ptr(v float64) *float64 {
	return &v
}
