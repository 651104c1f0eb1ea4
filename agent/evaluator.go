package agent

import (
	"context"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/skyviz/vizflow/core"
	"github.com/skyviz/vizflow/logging"
	"github.com/skyviz/vizflow/sandbox"
)

// CodeExecutor is the sandboxed runner consumed by the Evaluator.
// sandbox.Executor is the production implementation.
type CodeExecutor interface {
	Execute(ctx context.Context, code string) sandbox.Result
}

// Evaluator runs generated code in the sandbox, scores code quality and
// intent alignment, and combines them with execution success into a single
// overall score. On success it additionally collects visual feedback.
//
// At DepthFull the overall score is the weighted heuristic sum; at
// DepthSimple it is the cruder 0.7*execution + 0.3*visual blend.
type Evaluator struct {
	Base
	exec   CodeExecutor
	visual VisualAssessor
	depth  Depth
}

// EvaluatorOptions configures the Evaluator.
type EvaluatorOptions struct {
	Visual VisualAssessor
	Depth  Depth
	Clock  clockwork.Clock
	Logger logging.Logger
}

// NewEvaluator constructs an Evaluator around the given executor.
func NewEvaluator(exec CodeExecutor, optFns ...func(o *EvaluatorOptions)) *Evaluator {
	opts := EvaluatorOptions{
		Visual: HeuristicAssessor{},
		Depth:  DepthFull,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Evaluator{
		Base:   NewBase("Evaluator", opts.Clock, opts.Logger),
		exec:   exec,
		visual: opts.Visual,
		depth:  opts.Depth,
	}
}

// Execute implements core.Agent, populating state.ExecutionResult and, on
// success, state.VisualFeedback.
func (e *Evaluator) Execute(ctx context.Context, state *core.State) error {
	state.VisualFeedback = nil

	if state.GeneratedCode == "" {
		state.ExecutionResult = &core.ExecutionResult{
			Success:      false,
			Error:        "No code generated",
			OverallScore: 0.0,
		}
		e.log.Append("evaluation skipped", map[string]any{"reason": "no code"})
		return nil
	}

	res := e.exec.Execute(ctx, state.GeneratedCode)

	result := &core.ExecutionResult{
		Success:  res.Success,
		Error:    res.Error,
		Artifact: res.Artifact,
	}
	if e.depth == DepthFull {
		result.CodeQuality = scoreCodeQuality(state.GeneratedCode)
		result.IntentAlignment = scoreIntentAlignment(state)
	}

	if !res.Success {
		result.OverallScore = 0.0
		state.ExecutionResult = result
		e.log.Append("evaluation failed", map[string]any{"error": res.Error})
		return nil
	}

	fb, err := e.visual.Assess(ctx, state)
	if err != nil {
		e.logger.Warn("visual assessment failed, using neutral default", "error", err.Error())
		fb = neutralFeedback()
	}
	state.VisualFeedback = &fb

	switch e.depth {
	case DepthSimple:
		result.OverallScore = round2(0.7 + 0.3*fb.OverallScore)
	default:
		result.OverallScore = round2(0.4 + 0.3*result.CodeQuality.Score + 0.3*result.IntentAlignment.Score)
	}
	state.ExecutionResult = result

	e.log.Append("evaluation complete", map[string]any{
		"overall_score": result.OverallScore,
		"visual_score":  fb.OverallScore,
	})
	return nil
}

// scoreCodeQuality applies additive structural heuristics starting from 1.0.
func scoreCodeQuality(code string) core.CodeQuality {
	score := 1.0
	var notes []string

	if strings.Contains(code, ".title(") || strings.Contains(code, ".theme(") {
		score += 0.1
	} else {
		score -= 0.1
		notes = append(notes, "no title or theme configuration")
	}

	if strings.Contains(code, ".x(") && strings.Contains(code, ".series(") {
		score += 0.1
	} else {
		score -= 0.2
		notes = append(notes, "missing axis data binding")
	}

	if strings.Contains(code, "function") && !strings.Contains(code, "chart") {
		score -= 0.1
		notes = append(notes, "function definition without a chart reference")
	}

	lines := strings.Count(strings.TrimSpace(code), "\n") + 1
	if lines < 5 {
		score -= 0.1
		notes = append(notes, "code too trivial")
	} else if lines > 100 {
		score -= 0.1
		notes = append(notes, "code too complex")
	}

	return core.CodeQuality{Score: clamp01(score), Notes: notes}
}

// scoreIntentAlignment starts at 0.8 and rewards chart-type and query
// keyword matches in the code.
func scoreIntentAlignment(state *core.State) core.IntentAlignment {
	score := 0.8
	lower := strings.ToLower(state.GeneratedCode)

	if top, ok := state.Intent.TopChart(); ok {
		if strings.Contains(lower, strings.ToLower(string(top))) {
			score += 0.1
		} else {
			score -= 0.1
		}
	}

	var matched []string
	for _, tok := range strings.Fields(strings.ToLower(state.UserQuery)) {
		tok = strings.Trim(tok, ".,;:!?\"'()")
		if len(tok) <= 3 {
			continue
		}
		if strings.Contains(lower, tok) {
			matched = append(matched, tok)
			score += 0.05
			if len(matched) == 2 {
				break
			}
		}
	}

	return core.IntentAlignment{Score: clamp01(score), MatchedKeywords: matched}
}
