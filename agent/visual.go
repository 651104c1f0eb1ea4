package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/skyviz/vizflow/core"
	"github.com/skyviz/vizflow/model"
)

// VisualAssessor scores the visual quality of successfully executed chart
// code against a multi-axis rubric.
type VisualAssessor interface {
	Assess(ctx context.Context, state *core.State) (core.VisualFeedback, error)
}

// HeuristicAssessor derives the rubric from code structure alone: titles and
// labels feed readability, themes feed aesthetics, axis bindings feed data
// encoding, and the chart-type/task-type match feeds appropriateness.
type HeuristicAssessor struct{}

// Assess implements VisualAssessor.
func (HeuristicAssessor) Assess(_ context.Context, state *core.State) (core.VisualFeedback, error) {
	code := state.GeneratedCode
	var fb core.VisualFeedback

	fb.Readability = 0.6
	if strings.Contains(code, ".title(") {
		fb.Readability += 0.2
	} else {
		fb.Issues = append(fb.Issues, "chart has no title")
		fb.Suggestions = append(fb.Suggestions, "add a descriptive title")
	}
	if strings.Contains(code, ".subtitle(") {
		fb.Readability += 0.1
	}
	if strings.Contains(code, ".label(") {
		fb.Readability += 0.1
	}

	fb.Aesthetics = 0.6
	if strings.Contains(code, ".theme(") {
		fb.Aesthetics += 0.2
	} else {
		fb.Suggestions = append(fb.Suggestions, "consider applying a theme")
	}
	if strings.Contains(code, ".label(") {
		fb.Aesthetics += 0.1
	}

	fb.DataEncoding = 0.5
	if strings.Contains(code, ".x(") && strings.Contains(code, ".series(") {
		fb.DataEncoding += 0.2
	} else {
		fb.Issues = append(fb.Issues, "axis data binding incomplete")
	}
	if strings.Count(code, ".series(") > 1 {
		fb.DataEncoding += 0.1
	}

	fb.Appropriateness = 0.6
	if state.Intent != nil {
		if top, ok := state.Intent.TopChart(); ok {
			for _, suited := range chartsForTask(state.Intent.Type) {
				if suited == top {
					fb.Appropriateness += 0.3
					break
				}
			}
		}
	}

	fb.Readability = clamp01(fb.Readability)
	fb.Aesthetics = clamp01(fb.Aesthetics)
	fb.DataEncoding = clamp01(fb.DataEncoding)
	fb.Appropriateness = clamp01(fb.Appropriateness)
	fb.OverallScore = round2((fb.Readability + fb.Aesthetics + fb.DataEncoding + fb.Appropriateness) / 4)
	return fb, nil
}

const assessorSystemPrompt = `You review chart code for visual quality.
Score each axis in [0,1] and respond with a single JSON object:
{"overall_score": n, "readability": n, "aesthetics": n, "data_encoding": n,
 "appropriateness": n, "suggestions": ["..."], "issues": ["..."]}`

// ModelAssessor augments the rubric with an LLM call. Parse or provider
// failures surface as errors; the evaluator substitutes a neutral default.
type ModelAssessor struct {
	model model.Model
}

// NewModelAssessor constructs a ModelAssessor.
func NewModelAssessor(m model.Model) *ModelAssessor {
	return &ModelAssessor{model: m}
}

// Assess implements VisualAssessor.
func (a *ModelAssessor) Assess(ctx context.Context, state *core.State) (core.VisualFeedback, error) {
	var fb core.VisualFeedback
	if a.model == nil {
		return fb, fmt.Errorf("no model configured")
	}

	user := fmt.Sprintf("User query: %s\n\nChart code:\n%s", state.UserQuery, state.GeneratedCode)
	resp, err := a.model.Generate(ctx, model.Request{
		System:      assessorSystemPrompt,
		User:        user,
		Temperature: 0.2,
	})
	if err != nil {
		return fb, err
	}

	raw, ok := extractJSON(resp)
	if !ok {
		return fb, fmt.Errorf("no JSON object in assessor response")
	}
	if err := json.Unmarshal([]byte(raw), &fb); err != nil {
		return fb, fmt.Errorf("decode assessor response: %w", err)
	}

	fb.OverallScore = clamp01(fb.OverallScore)
	fb.Readability = clamp01(fb.Readability)
	fb.Aesthetics = clamp01(fb.Aesthetics)
	fb.DataEncoding = clamp01(fb.DataEncoding)
	fb.Appropriateness = clamp01(fb.Appropriateness)
	return fb, nil
}

// neutralFeedback is substituted when the assessor itself fails; assessment
// problems must never block the pipeline.
func neutralFeedback() core.VisualFeedback {
	return core.VisualFeedback{
		OverallScore:    0.7,
		Readability:     0.7,
		Aesthetics:      0.7,
		DataEncoding:    0.7,
		Appropriateness: 0.7,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
