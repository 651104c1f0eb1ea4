package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/skyviz/vizflow/core"
	"github.com/skyviz/vizflow/logging"
	"github.com/skyviz/vizflow/model"
)

const reflectorSystemPrompt = `You analyze failed chart generation attempts.
Classify the failure and respond with a single JSON object:
{"error_classification": "SYNTAX|LOGIC|DESIGN|DATA",
 "root_cause": "...", "fix_strategy": "...",
 "specific_suggestions": ["..."], "modified_requirements": "..."}`

// failurePatterns maps known error substrings to fixed analyses. Checked in
// order before any model call.
var failurePatterns = []struct {
	substr   string
	analysis core.FailureAnalysis
}{
	{"SyntaxError", core.FailureAnalysis{
		Classification: core.FailureSyntax,
		RootCause:      "generated script is not valid syntax",
		FixStrategy:    "regenerate with simpler, single-statement builder chaining",
		Suggestions:    []string{"keep the whole chart in one chained expression"},
	}},
	{"ReferenceError", core.FailureAnalysis{
		Classification: core.FailureSyntax,
		RootCause:      "script references an undefined name",
		FixStrategy:    "use only the bound charts namespace",
		Suggestions:    []string{"start from charts.<type>() and chain builder methods"},
	}},
	{"is not a function", core.FailureAnalysis{
		Classification: core.FailureLogic,
		RootCause:      "script called a method the chart builder does not have",
		FixStrategy:    "restrict calls to the documented builder methods",
		Suggestions:    []string{"valid methods: title, subtitle, theme, x, y, series, label"},
	}},
	{"TypeError", core.FailureAnalysis{
		Classification: core.FailureLogic,
		RootCause:      "script passed a wrongly typed value to the builder",
		FixStrategy:    "pass arrays to x/series and strings to title/theme",
	}},
	{"Dangerous pattern detected", core.FailureAnalysis{
		Classification: core.FailureDesign,
		RootCause:      "script used a blocked capability",
		FixStrategy:    "generate pure chart-building code with no host access",
	}},
	{"no chart object found", core.FailureAnalysis{
		Classification: core.FailureLogic,
		RootCause:      "script never assigned the chart builder to a variable",
		FixStrategy:    "assign the finished builder to a variable named chart",
		Suggestions:    []string{`end with: var chart = charts.<type>()...;`},
	}},
	{"empty chart", core.FailureAnalysis{
		Classification: core.FailureData,
		RootCause:      "no data series was bound to the chart",
		FixStrategy:    "bind x-axis categories and at least one series",
	}},
	{"missing axis", core.FailureAnalysis{
		Classification: core.FailureData,
		RootCause:      "axis data binding incomplete",
		FixStrategy:    "bind both x-axis categories and series values",
	}},
	{"execution budget exceeded", core.FailureAnalysis{
		Classification: core.FailureLogic,
		RootCause:      "script ran past the wall-clock budget",
		FixStrategy:    "remove loops; chart data should be inline literals",
	}},
}

// Reflector inspects a failed or low-scoring pass, classifies the failure
// and appends a structured suggestion payload to the execution history. It
// never retries execution itself.
type Reflector struct {
	Base
	model model.Model
	depth Depth
}

// ReflectorOptions configures the Reflector.
type ReflectorOptions struct {
	Depth  Depth
	Clock  clockwork.Clock
	Logger logging.Logger
}

// NewReflector constructs a Reflector. A nil model limits analysis to the
// fixed pattern table.
func NewReflector(m model.Model, optFns ...func(o *ReflectorOptions)) *Reflector {
	opts := ReflectorOptions{Depth: DepthFull}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Reflector{
		Base:  NewBase("Reflector", opts.Clock, opts.Logger),
		model: m,
		depth: opts.Depth,
	}
}

// Execute implements core.Agent, appending to state.History when the pass
// will be retried.
func (r *Reflector) Execute(ctx context.Context, state *core.State) error {
	if state.ExecutionResult != nil && state.ExecutionResult.Success &&
		state.ExecutionResult.OverallScore >= core.QualityThreshold {
		r.log.Append("iteration complete", map[string]any{
			"score": state.ExecutionResult.OverallScore,
		})
		return nil
	}
	if state.IterationCount >= state.MaxIterations {
		r.log.Append("iteration budget exhausted", map[string]any{
			"iterations": state.IterationCount,
		})
		return nil
	}

	if r.depth == DepthSimple {
		r.log.Append("retry needed", map[string]any{"iteration": state.IterationCount})
		return nil
	}

	analysis := r.analyze(ctx, state)
	state.History = append(state.History, core.HistoryEntry{
		Iteration: state.IterationCount,
		Analysis:  analysis,
	})
	r.log.Append("failure analyzed", map[string]any{
		"classification": string(analysis.Classification),
		"iteration":      state.IterationCount,
	})
	return nil
}

func (r *Reflector) analyze(ctx context.Context, state *core.State) core.FailureAnalysis {
	errMsg := ""
	if state.ExecutionResult != nil {
		errMsg = state.ExecutionResult.Error
	}

	for _, p := range failurePatterns {
		if errMsg != "" && strings.Contains(errMsg, p.substr) {
			return p.analysis
		}
	}
	return r.modelAnalyze(ctx, state, errMsg)
}

func (r *Reflector) modelAnalyze(ctx context.Context, state *core.State, errMsg string) core.FailureAnalysis {
	if r.model == nil {
		return genericAnalysis()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "User query: %s\n", state.UserQuery)
	if state.Intent != nil {
		fmt.Fprintf(&sb, "Planned task: %s\n", state.Intent.Type)
	}
	fmt.Fprintf(&sb, "Error: %s\n\nGenerated code:\n%s", errMsg, state.GeneratedCode)

	resp, err := r.model.Generate(ctx, model.Request{
		System:      reflectorSystemPrompt,
		User:        sb.String(),
		Temperature: 0.2,
	})
	if err != nil {
		r.logger.Warn("reflector model call failed", "error", err.Error())
		return genericAnalysis()
	}

	raw, ok := extractJSON(resp)
	if !ok {
		return genericAnalysis()
	}
	var analysis core.FailureAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		return genericAnalysis()
	}
	switch analysis.Classification {
	case core.FailureSyntax, core.FailureLogic, core.FailureDesign, core.FailureData:
	default:
		analysis.Classification = core.FailureUnknown
	}
	return analysis
}

func genericAnalysis() core.FailureAnalysis {
	return core.FailureAnalysis{
		Classification: core.FailureUnknown,
		RootCause:      "failure cause could not be determined",
		FixStrategy:    "simplify the chart code on the next attempt",
	}
}
