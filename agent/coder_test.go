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

func TestCoder_TemplateFirstInConservativeMode(t *testing.T) {
	m := model.NewMockModel("coder")
	c := NewCoder(m)

	state := core.NewState("compare regions", 3)
	state.Intent = &core.Intent{
		Type: core.TaskComparison,
		Plan: []core.ChartProposal{{ChartType: core.ChartBar, Rank: 1}},
	}
	require.NoError(t, c.Execute(context.Background(), state))

	assert.Equal(t, chartTemplates[core.ChartBar], state.GeneratedCode)
	assert.Zero(t, m.Calls(), "conservative mode never reaches the model when a template exists")

	entries := c.Log().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "code generated", entries[0].Action)
	assert.Equal(t, "template", entries[0].Details["strategy"])
}

func TestCoder_CreativeModeAsksModelFirst(t *testing.T) {
	generated := "var chart = charts.bar()\n    .title(\"Flights by region\")\n    .x([\"a\", \"b\"])\n    .series(\"flights\", [1, 2]);"
	m := model.NewMockModel("coder")
	m.AddResponse("Target chart type: bar", "```javascript\n"+generated+"\n```")

	c := NewCoder(m, func(o *CoderOptions) { o.Mode = ModeCreative })
	state := core.NewState("compare regions", 3)
	state.Intent = &core.Intent{
		Type: core.TaskComparison,
		Plan: []core.ChartProposal{{ChartType: core.ChartBar, Rank: 1}},
	}
	require.NoError(t, c.Execute(context.Background(), state))

	assert.Equal(t, generated, state.GeneratedCode)
	assert.Equal(t, 1, m.Calls())
	assert.Equal(t, "llm_with_context", c.Log().Entries()[0].Details["strategy"])
}

func TestCoder_CreativeFallsBackToTemplate(t *testing.T) {
	m := model.NewMockModel("coder")
	m.FailWith(errors.New("provider down"))

	c := NewCoder(m, func(o *CoderOptions) { o.Mode = ModeCreative })
	state := core.NewState("show the trend", 3)
	state.Intent = &core.Intent{
		Type: core.TaskTrend,
		Plan: []core.ChartProposal{{ChartType: core.ChartLine, Rank: 1}},
	}
	require.NoError(t, c.Execute(context.Background(), state))

	assert.Equal(t, chartTemplates[core.ChartLine], state.GeneratedCode)
	assert.Equal(t, "template", c.Log().Entries()[0].Details["strategy"])
}

func TestCoder_FallbackSnippetWhenEverythingFails(t *testing.T) {
	// No template exists for heatmap and the model keeps producing invalid
	// output, so the fixed snippet must be substituted.
	m := model.NewMockModel("coder")
	m.AddResponse("", "sorry, I cannot help with that")

	c := NewCoder(m)
	state := core.NewState("density heatmap", 3)
	state.Intent = &core.Intent{
		Type: core.TaskExploration,
		Plan: []core.ChartProposal{{ChartType: core.ChartHeatmap, Rank: 1}},
	}
	require.NoError(t, c.Execute(context.Background(), state))

	assert.Equal(t, fallbackSnippet, state.GeneratedCode)
	ok, _ := ValidateCandidate(state.GeneratedCode)
	assert.True(t, ok, "the fallback snippet itself must pass validation")

	entries := c.Log().Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "fallback snippet used", entries[0].Action)
	failures := entries[0].Details["failures"].(map[string]string)
	assert.Contains(t, failures, "template")
	assert.Contains(t, failures, "llm_with_context")
	assert.Contains(t, failures, "llm_basic")
}

func TestCoder_NilIntentDefaultsToLine(t *testing.T) {
	c := NewCoder(nil)
	state := core.NewState("anything", 3)
	require.NoError(t, c.Execute(context.Background(), state))
	assert.Equal(t, chartTemplates[core.ChartLine], state.GeneratedCode)
}

func TestValidateCandidate(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		wantOK     bool
		wantReason string
	}{
		{
			name:   "valid template",
			code:   chartTemplates[core.ChartPie],
			wantOK: true,
		},
		{
			name:       "too short",
			code:       "charts.line()",
			wantOK:     false,
			wantReason: "code too short (13 bytes)",
		},
		{
			name:       "no charts namespace",
			code:       "var x = 1; var y = 2; var z = x + y; var w = z * 2; var v = w;",
			wantOK:     false,
			wantReason: "code does not reference the charts namespace",
		},
		{
			name:       "dangerous pattern",
			code:       "var chart = charts.line().x([1,2,3]); import os\n// padding padding",
			wantOK:     false,
			wantReason: "Dangerous pattern detected: import os",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, reason := ValidateCandidate(tt.code)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantReason, reason)
		})
	}
}

func TestExtractCode(t *testing.T) {
	body := "var chart = charts.line().x([1]);"

	tests := []struct {
		name string
		resp string
		want string
	}{
		{"tagged fence", "Here you go:\n```javascript\n" + body + "\n```", body},
		{"js tag", "```js\n" + body + "\n```", body},
		{"untagged fence", "```\n" + body + "\n```", body},
		{"bare response", "  " + body + "  ", body},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractCode(tt.resp))
		})
	}
}
