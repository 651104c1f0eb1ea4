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

const plannerTemperature = 0.2

const plannerSystemPrompt = `You are a visualization planner for a low altitude economy flight dataset.
Classify the user's analytical intent and propose ranked chart types using the design space below.

%s
Respond with a single JSON object and nothing else:
{
  "intent": {"type": "<task type>", "confidence": <0..1>, "description": "<one sentence>"},
  "data_requirements": {"dimensions": ["..."], "metrics": ["..."]},
  "visualization_plan": [
    {"chart_type": "<line|bar|pie|scatter|heatmap>", "rationale": "...", "confidence": <0..1>, "rank": 1}
  ]
}`

// Planner classifies user intent and proposes a ranked chart plan. On any
// model or parse failure it falls back to a deterministic keyword rule; a
// single provider failure triggers the fallback immediately, no retries.
type Planner struct {
	Base
	model model.Model
}

// PlannerOptions configures the Planner.
type PlannerOptions struct {
	Clock  clockwork.Clock
	Logger logging.Logger
}

// NewPlanner constructs a Planner around the given model. A nil model always
// uses the keyword fallback.
func NewPlanner(m model.Model, optFns ...func(o *PlannerOptions)) *Planner {
	opts := PlannerOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Planner{
		Base:  NewBase("Planner", opts.Clock, opts.Logger),
		model: m,
	}
}

// Execute implements core.Agent, populating state.Intent.
func (p *Planner) Execute(ctx context.Context, state *core.State) error {
	intent := p.classify(ctx, state.UserQuery)
	state.Intent = intent

	details := map[string]any{
		"task_type":  string(intent.Type),
		"confidence": intent.Confidence,
	}
	if top, ok := intent.TopChart(); ok {
		details["top_chart"] = string(top)
	}
	p.log.Append("intent classified", details)
	return nil
}

func (p *Planner) classify(ctx context.Context, query string) *core.Intent {
	if p.model == nil {
		return keywordFallback(query)
	}

	user := fmt.Sprintf("User query: %s", query)
	resp, err := p.model.Generate(ctx, model.Request{
		System:      fmt.Sprintf(plannerSystemPrompt, designSpacePrompt()),
		User:        user,
		Temperature: plannerTemperature,
	})
	if err != nil {
		p.logger.Warn("planner model call failed, using keyword fallback", "error", err.Error())
		return keywordFallback(query)
	}

	intent, err := parsePlannerResponse(resp)
	if err != nil {
		p.logger.Warn("planner response unparsable, using keyword fallback", "error", err.Error())
		return keywordFallback(query)
	}
	return intent
}

// plannerResponse mirrors the JSON contract imposed on the model.
type plannerResponse struct {
	Intent struct {
		Type        string  `json:"type"`
		Confidence  float64 `json:"confidence"`
		Description string  `json:"description"`
	} `json:"intent"`
	DataRequirements core.DataRequirements `json:"data_requirements"`
	Plan             []core.ChartProposal  `json:"visualization_plan"`
}

func parsePlannerResponse(text string) (*core.Intent, error) {
	raw, ok := extractJSON(text)
	if !ok {
		return nil, fmt.Errorf("no JSON object in response")
	}
	var pr plannerResponse
	if err := json.Unmarshal([]byte(raw), &pr); err != nil {
		return nil, fmt.Errorf("decode planner response: %w", err)
	}

	taskType := core.TaskType(pr.Intent.Type)
	if !taskType.Valid() {
		return nil, fmt.Errorf("unknown task type %q", pr.Intent.Type)
	}
	if len(pr.Plan) == 0 {
		return nil, fmt.Errorf("empty visualization plan")
	}

	return &core.Intent{
		Type:             taskType,
		Confidence:       clamp01(pr.Intent.Confidence),
		Description:      pr.Intent.Description,
		DataRequirements: pr.DataRequirements,
		Plan:             pr.Plan,
	}, nil
}

// Keyword rules checked in priority order: trend before comparison before
// distribution.
var fallbackRules = []struct {
	task       core.TaskType
	confidence float64
	keywords   []string
}{
	{core.TaskTrend, 0.8, []string{"trend", "over time", "change", "growth", "趋势", "变化"}},
	{core.TaskComparison, 0.8, []string{"compare", "comparison", "versus", " vs ", "对比", "比较"}},
	{core.TaskDistribution, 0.7, []string{"distribution", "proportion", "share", "percentage", "分布", "占比"}},
}

// keywordFallback is the deterministic rule applied when the model is
// unavailable or its response is unparsable. Unmatched queries default to a
// generic exploration plan.
func keywordFallback(query string) *core.Intent {
	lower := strings.ToLower(query)

	task := core.TaskExploration
	confidence := 0.6
	for _, rule := range fallbackRules {
		matched := false
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				matched = true
				break
			}
		}
		if matched {
			task = rule.task
			confidence = rule.confidence
			break
		}
	}

	chart := chartsForTask(task)[0]
	return &core.Intent{
		Type:        task,
		Confidence:  confidence,
		Description: fmt.Sprintf("keyword fallback classified query as %s", task),
		Plan: []core.ChartProposal{{
			ChartType:  chart,
			Rationale:  fmt.Sprintf("default chart for %s tasks", task),
			Confidence: confidence,
			Rank:       1,
		}},
	}
}
