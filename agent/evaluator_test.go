package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/skyviz/vizflow/core"
	"github.com/skyviz/vizflow/sandbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecutor counts invocations and returns a canned result.
type fakeExecutor struct {
	result sandbox.Result
	calls  int
}

func (f *fakeExecutor) Execute(_ context.Context, _ string) sandbox.Result {
	f.calls++
	return f.result
}

type failingAssessor struct{}

func (failingAssessor) Assess(context.Context, *core.State) (core.VisualFeedback, error) {
	return core.VisualFeedback{}, errors.New("assessor offline")
}

func trendState(code string) *core.State {
	state := core.NewState("flight trend over the years", 3)
	state.Intent = &core.Intent{
		Type: core.TaskTrend,
		Plan: []core.ChartProposal{{ChartType: core.ChartLine, Rank: 1}},
	}
	state.GeneratedCode = code
	return state
}

func TestEvaluator_EmptyCodeSkipsExecutor(t *testing.T) {
	exec := &fakeExecutor{result: sandbox.Result{Success: true}}
	e := NewEvaluator(exec)

	state := core.NewState("anything", 3)
	require.NoError(t, e.Execute(context.Background(), state))

	assert.Zero(t, exec.calls, "the sandbox must not run without code")
	require.NotNil(t, state.ExecutionResult)
	assert.False(t, state.ExecutionResult.Success)
	assert.Equal(t, "No code generated", state.ExecutionResult.Error)
	assert.Equal(t, 0.0, state.ExecutionResult.OverallScore)
	assert.Nil(t, state.VisualFeedback)

	entries := e.Log().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "evaluation skipped", entries[0].Action)
}

func TestEvaluator_FullDepthSuccess(t *testing.T) {
	exec := &fakeExecutor{result: sandbox.Result{Success: true, Artifact: "<html>chart</html>"}}
	e := NewEvaluator(exec)

	state := trendState(chartTemplates[core.ChartLine])
	require.NoError(t, e.Execute(context.Background(), state))

	assert.Equal(t, 1, exec.calls)
	result := state.ExecutionResult
	require.NotNil(t, result)
	assert.True(t, result.Success)
	assert.Equal(t, "<html>chart</html>", result.Artifact)
	assert.Equal(t, 1.0, result.CodeQuality.Score)
	assert.Equal(t, 1.0, result.IntentAlignment.Score)
	assert.ElementsMatch(t, []string{"flight", "trend"}, result.IntentAlignment.MatchedKeywords)
	assert.Equal(t, 1.0, result.OverallScore)

	require.NotNil(t, state.VisualFeedback)
	assert.Equal(t, 0.83, state.VisualFeedback.OverallScore)
	assert.Equal(t, "evaluation complete", e.Log().Entries()[0].Action)
}

func TestEvaluator_ExecutionFailureZeroesScore(t *testing.T) {
	exec := &fakeExecutor{result: sandbox.Result{Success: false, Error: "ReferenceError: boom"}}
	e := NewEvaluator(exec)

	state := trendState(chartTemplates[core.ChartLine])
	state.VisualFeedback = &core.VisualFeedback{OverallScore: 0.9} // stale from a prior pass

	require.NoError(t, e.Execute(context.Background(), state))

	result := state.ExecutionResult
	require.NotNil(t, result)
	assert.False(t, result.Success)
	assert.Equal(t, "ReferenceError: boom", result.Error)
	assert.Equal(t, 0.0, result.OverallScore)
	assert.Nil(t, state.VisualFeedback, "stale feedback must be cleared on failure")
	assert.Equal(t, "evaluation failed", e.Log().Entries()[0].Action)
}

func TestEvaluator_SimpleDepthBlendsVisualScore(t *testing.T) {
	exec := &fakeExecutor{result: sandbox.Result{Success: true, Artifact: "<html/>"}}
	e := NewEvaluator(exec, func(o *EvaluatorOptions) { o.Depth = DepthSimple })

	state := trendState(chartTemplates[core.ChartLine])
	require.NoError(t, e.Execute(context.Background(), state))

	result := state.ExecutionResult
	require.NotNil(t, result)
	// 0.7 + 0.3 * 0.83 visual, rounded.
	assert.Equal(t, 0.95, result.OverallScore)
	// Simple depth never computes the structural sub-scores.
	assert.Zero(t, result.CodeQuality.Score)
	assert.Zero(t, result.IntentAlignment.Score)
}

func TestEvaluator_AssessorFailureUsesNeutralFeedback(t *testing.T) {
	exec := &fakeExecutor{result: sandbox.Result{Success: true}}
	e := NewEvaluator(exec, func(o *EvaluatorOptions) { o.Visual = failingAssessor{} })

	state := trendState(chartTemplates[core.ChartLine])
	require.NoError(t, e.Execute(context.Background(), state), "assessment problems never block the pipeline")

	require.NotNil(t, state.VisualFeedback)
	assert.Equal(t, 0.7, state.VisualFeedback.OverallScore)
	assert.True(t, state.ExecutionResult.Success)
}

func TestScoreCodeQuality(t *testing.T) {
	tests := []struct {
		name      string
		code      string
		wantScore float64
		wantNotes int
	}{
		{
			name:      "template scores full marks",
			code:      chartTemplates[core.ChartLine],
			wantScore: 1.0,
		},
		{
			name:      "bare one liner",
			code:      `var chart = charts.line();`,
			wantScore: 0.6, // no title, no axis binding, under five lines
			wantNotes: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoreCodeQuality(tt.code)
			assert.InDelta(t, tt.wantScore, got.Score, 1e-9)
			assert.Len(t, got.Notes, tt.wantNotes)
		})
	}
}

func TestScoreIntentAlignment_ChartTypeMismatch(t *testing.T) {
	state := core.NewState("totally unrelated words", 3)
	state.Intent = &core.Intent{
		Type: core.TaskComparison,
		Plan: []core.ChartProposal{{ChartType: core.ChartBar, Rank: 1}},
	}
	state.GeneratedCode = chartTemplates[core.ChartLine]

	got := scoreIntentAlignment(state)
	assert.InDelta(t, 0.7, got.Score, 1e-9, "wrong chart type costs 0.1 from the 0.8 base")
	assert.Empty(t, got.MatchedKeywords)
}
