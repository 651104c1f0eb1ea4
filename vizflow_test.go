package vizflow

import (
	"context"
	"encoding/json"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyviz/vizflow/agent"
	"github.com/skyviz/vizflow/artifact"
	"github.com/skyviz/vizflow/model"
)

func TestProcess_EndToEndWithMockModel(t *testing.T) {
	store := artifact.NewInMemoryStore()
	o := New(func(opts *Options) {
		opts.Model = model.NewMockModel("mock")
		opts.ArtifactStore = store
	})

	result, err := o.Process(context.Background(), "Show flight trend in Shenzhen")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Iterations, "the template pass clears the bar first try")
	assert.NotEmpty(t, result.InvocationID)
	assert.NotEmpty(t, result.ChartCode)
	assert.Contains(t, result.ChartHTML, "echarts")
	require.NotNil(t, result.Execution)
	assert.GreaterOrEqual(t, result.Execution.OverallScore, 0.7)
	require.NotNil(t, result.VisualFeedback)

	// every agent contributed to the trace
	agents := map[string]bool{}
	for _, e := range result.AgentTrace {
		agents[e.Agent] = true
	}
	for _, name := range []string{"Planner", "Retriever", "Coder", "Evaluator", "Reflector"} {
		assert.True(t, agents[name], "missing trace entries for %s", name)
	}

	// the rendered chart was persisted under the invocation ID
	ids, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{result.InvocationID}, ids)

	saved, err := store.Get(context.Background(), result.InvocationID)
	require.NoError(t, err)
	assert.Equal(t, result.ChartHTML, saved.HTML)
}

func TestProcess_SingleIterationBudget(t *testing.T) {
	o := New(func(opts *Options) {
		opts.Model = model.NewMockModel("mock")
		opts.MaxIterations = 1
	})

	result, err := o.Process(context.Background(), "compare regions by flights")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Iterations)
}

func TestProcess_IterationsNeverNegativeOrZero(t *testing.T) {
	o := New(func(opts *Options) {
		opts.MaxIterations = -2
	})

	result, err := o.Process(context.Background(), "distribution of purposes")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Iterations, "invalid budgets clamp to one pass")
}

func TestProcess_NoModelRunsOnFallbacks(t *testing.T) {
	o := New()

	result, err := o.Process(context.Background(), "Show flight trend over the years")
	require.NoError(t, err)
	assert.True(t, result.Success, "templates and keyword rules need no model")
}

func resultKeys(t *testing.T, result *Result) []string {
	t.Helper()
	raw, err := json.Marshal(result)
	require.NoError(t, err)
	var m map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &m))
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestProcess_DepthsShareResultShape(t *testing.T) {
	query := "Show flight trend in Shenzhen"

	full := New(func(opts *Options) { opts.Depth = agent.DepthFull })
	simple := New(func(opts *Options) { opts.Depth = agent.DepthSimple })

	fullResult, err := full.Process(context.Background(), query)
	require.NoError(t, err)
	simpleResult, err := simple.Process(context.Background(), query)
	require.NoError(t, err)

	assert.Equal(t, resultKeys(t, fullResult), resultKeys(t, simpleResult),
		"consumers must be able to swap depths without schema changes")
}

func TestProcess_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := New()
	_, err := o.Process(ctx, "anything")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
