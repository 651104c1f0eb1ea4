package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/skyviz/vizflow/core"
	"github.com/skyviz/vizflow/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plannerJSON = `{
  "intent": {"type": "comparison", "confidence": 0.92, "description": "compare regions"},
  "data_requirements": {"dimensions": ["region"], "metrics": ["flights"]},
  "visualization_plan": [
    {"chart_type": "bar", "rationale": "categorical comparison", "confidence": 0.9, "rank": 1},
    {"chart_type": "line", "rationale": "alternative", "confidence": 0.6, "rank": 2}
  ]
}`

func TestPlanner_ModelClassification(t *testing.T) {
	m := model.NewMockModel("planner")
	m.AddResponse("Compare flights", "Here is the plan:\n"+plannerJSON)

	p := NewPlanner(m)
	state := core.NewState("Compare flights across regions", 3)
	require.NoError(t, p.Execute(context.Background(), state))

	require.NotNil(t, state.Intent)
	assert.Equal(t, core.TaskComparison, state.Intent.Type)
	assert.InDelta(t, 0.92, state.Intent.Confidence, 1e-9)
	top, ok := state.Intent.TopChart()
	require.True(t, ok)
	assert.Equal(t, core.ChartBar, top)

	entries := p.Log().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "intent classified", entries[0].Action)
	assert.Equal(t, "comparison", entries[0].Details["task_type"])
	assert.Equal(t, "bar", entries[0].Details["top_chart"])
}

func TestPlanner_FallbackOnModelError(t *testing.T) {
	m := model.NewMockModel("planner")
	m.FailWith(errors.New("provider unavailable"))

	p := NewPlanner(m)
	state := core.NewState("Show flight trend in Shenzhen", 3)
	require.NoError(t, p.Execute(context.Background(), state))

	require.NotNil(t, state.Intent)
	assert.Equal(t, core.TaskTrend, state.Intent.Type)
	assert.InDelta(t, 0.8, state.Intent.Confidence, 1e-9)
	assert.Equal(t, 1, m.Calls(), "a single failure triggers the fallback, no retries")
}

func TestPlanner_FallbackOnUnparsableResponse(t *testing.T) {
	m := model.NewMockModel("planner")
	m.AddResponse("", "I would suggest a bar chart, probably.")

	p := NewPlanner(m)
	state := core.NewState("compare Shenzhen and Guangzhou", 3)
	require.NoError(t, p.Execute(context.Background(), state))

	require.NotNil(t, state.Intent)
	assert.Equal(t, core.TaskComparison, state.Intent.Type)
}

func TestKeywordFallback_Rules(t *testing.T) {
	tests := []struct {
		query          string
		wantTask       core.TaskType
		wantConfidence float64
	}{
		{"Show flight trend in Shenzhen", core.TaskTrend, 0.8},
		{"how did volume change last year", core.TaskTrend, 0.8},
		{"compare drone and eVTOL usage", core.TaskComparison, 0.8},
		{"proportion of logistics flights", core.TaskDistribution, 0.7},
		{"tell me about the dataset", core.TaskExploration, 0.6},
		{"", core.TaskExploration, 0.6},
		// trend has priority over comparison when both match
		{"compare the trend across regions", core.TaskTrend, 0.8},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			intent := keywordFallback(tt.query)
			assert.Equal(t, tt.wantTask, intent.Type)
			assert.InDelta(t, tt.wantConfidence, intent.Confidence, 1e-9)
			require.Len(t, intent.Plan, 1)
			assert.Equal(t, 1, intent.Plan[0].Rank)
		})
	}
}

func TestPlanner_NilModelUsesFallback(t *testing.T) {
	p := NewPlanner(nil)
	state := core.NewState("distribution of purposes", 1)
	require.NoError(t, p.Execute(context.Background(), state))
	assert.Equal(t, core.TaskDistribution, state.Intent.Type)
}
