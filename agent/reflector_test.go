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

func failedState(errMsg string) *core.State {
	state := core.NewState("flight trend", 3)
	state.IterationCount = 1
	state.GeneratedCode = "var chart = oops();"
	state.ExecutionResult = &core.ExecutionResult{Success: false, Error: errMsg}
	return state
}

func TestReflector_SuccessAboveThresholdStops(t *testing.T) {
	r := NewReflector(nil)

	state := core.NewState("flight trend", 3)
	state.IterationCount = 1
	state.ExecutionResult = &core.ExecutionResult{Success: true, OverallScore: 0.9}
	require.NoError(t, r.Execute(context.Background(), state))

	assert.Empty(t, state.History, "a passing iteration never appends analysis")
	entries := r.Log().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "iteration complete", entries[0].Action)
	assert.Equal(t, 0.9, entries[0].Details["score"])
}

func TestReflector_ScoreAtThresholdStops(t *testing.T) {
	r := NewReflector(nil)

	state := core.NewState("flight trend", 3)
	state.IterationCount = 1
	state.ExecutionResult = &core.ExecutionResult{Success: true, OverallScore: core.QualityThreshold}
	require.NoError(t, r.Execute(context.Background(), state))

	assert.Equal(t, "iteration complete", r.Log().Entries()[0].Action)
}

func TestReflector_BudgetExhaustedSkipsAnalysis(t *testing.T) {
	m := model.NewMockModel("reflector")
	r := NewReflector(m)

	state := failedState("something odd happened")
	state.IterationCount = 3

	require.NoError(t, r.Execute(context.Background(), state))

	assert.Empty(t, state.History)
	assert.Zero(t, m.Calls(), "no analysis once the budget is spent")
	assert.Equal(t, "iteration budget exhausted", r.Log().Entries()[0].Action)
}

func TestReflector_PatternTableClassification(t *testing.T) {
	tests := []struct {
		errMsg    string
		wantClass core.FailureClass
	}{
		{"SyntaxError: unexpected token", core.FailureSyntax},
		{"ReferenceError: foo is not defined", core.FailureSyntax},
		{"TypeError: x.bold is not a function", core.FailureLogic},
		{"Dangerous pattern detected: import os", core.FailureDesign},
		{"no chart object found in executed code", core.FailureLogic},
		{"empty chart: no data series bound", core.FailureData},
		{"execution budget exceeded", core.FailureLogic},
	}

	for _, tt := range tests {
		t.Run(tt.errMsg, func(t *testing.T) {
			r := NewReflector(nil)
			state := failedState(tt.errMsg)
			require.NoError(t, r.Execute(context.Background(), state))

			require.Len(t, state.History, 1)
			entry := state.History[0]
			assert.Equal(t, 1, entry.Iteration)
			assert.Equal(t, tt.wantClass, entry.Analysis.Classification)
			assert.NotEmpty(t, entry.Analysis.FixStrategy)

			logged := r.Log().Entries()
			require.Len(t, logged, 1)
			assert.Equal(t, "failure analyzed", logged[0].Action)
		})
	}
}

func TestReflector_ModelAnalysisForUnknownErrors(t *testing.T) {
	m := model.NewMockModel("reflector")
	m.AddResponse("Error: the dataset vanished", `{
  "error_classification": "DATA",
  "root_cause": "the referenced column does not exist",
  "fix_strategy": "use only schema columns",
  "specific_suggestions": ["bind flights or duration_minutes"]
}`)

	r := NewReflector(m)
	state := failedState("the dataset vanished")
	require.NoError(t, r.Execute(context.Background(), state))

	require.Len(t, state.History, 1)
	analysis := state.History[0].Analysis
	assert.Equal(t, core.FailureData, analysis.Classification)
	assert.Equal(t, "use only schema columns", analysis.FixStrategy)
	assert.Equal(t, []string{"bind flights or duration_minutes"}, analysis.Suggestions)
}

func TestReflector_UnknownClassIsNormalized(t *testing.T) {
	m := model.NewMockModel("reflector")
	m.AddResponse("", `{"error_classification": "COSMIC_RAYS", "root_cause": "?", "fix_strategy": "retry"}`)

	r := NewReflector(m)
	state := failedState("mystifying output")
	require.NoError(t, r.Execute(context.Background(), state))

	require.Len(t, state.History, 1)
	assert.Equal(t, core.FailureUnknown, state.History[0].Analysis.Classification)
}

func TestReflector_ModelFailureFallsBackToGeneric(t *testing.T) {
	m := model.NewMockModel("reflector")
	m.FailWith(errors.New("provider down"))

	r := NewReflector(m)
	state := failedState("mystifying output")
	require.NoError(t, r.Execute(context.Background(), state))

	require.Len(t, state.History, 1)
	analysis := state.History[0].Analysis
	assert.Equal(t, core.FailureUnknown, analysis.Classification)
	assert.Equal(t, "simplify the chart code on the next attempt", analysis.FixStrategy)
}

func TestReflector_SimpleDepthSkipsAnalysis(t *testing.T) {
	m := model.NewMockModel("reflector")
	r := NewReflector(m, func(o *ReflectorOptions) { o.Depth = DepthSimple })

	state := failedState("SyntaxError: unexpected token")
	require.NoError(t, r.Execute(context.Background(), state))

	assert.Empty(t, state.History, "simple depth retries without analysis")
	assert.Zero(t, m.Calls())
	assert.Equal(t, "retry needed", r.Log().Entries()[0].Action)
}

func TestReflector_LowScoreSuccessStillAnalyzed(t *testing.T) {
	r := NewReflector(nil)

	state := core.NewState("flight trend", 3)
	state.IterationCount = 1
	state.GeneratedCode = "var chart = charts.line();"
	state.ExecutionResult = &core.ExecutionResult{Success: true, OverallScore: 0.5}
	require.NoError(t, r.Execute(context.Background(), state))

	require.Len(t, state.History, 1, "a below-threshold success is still a failed pass")
	assert.Equal(t, core.FailureUnknown, state.History[0].Analysis.Classification)
}
