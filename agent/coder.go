package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/skyviz/vizflow/core"
	"github.com/skyviz/vizflow/logging"
	"github.com/skyviz/vizflow/model"
	"github.com/skyviz/vizflow/sandbox"
)

// GenerationMode selects the strategy priority order for code generation.
type GenerationMode string

const (
	// ModeConservative prefers the deterministic template first.
	ModeConservative GenerationMode = "conservative"
	// ModeCreative asks the model first, template second.
	ModeCreative GenerationMode = "creative"
	// ModeAdaptive currently shares the conservative ordering.
	ModeAdaptive GenerationMode = "adaptive"
)

// minCodeLength is the shortest candidate the coder will accept.
const minCodeLength = 50

const coderSystemPrompt = `You write chart scripts for a sandboxed charts DSL.
Available: charts.line(), charts.bar(), charts.pie(), charts.scatter(), charts.heatmap().
Builder methods: .title(s) .subtitle(s) .theme(s) .x([...]) .y([...]) .series(name, [...]) .label(bool).
Assign the finished builder to a variable named chart.
Use realistic data for the low altitude economy flight dataset.
Respond with one fenced code block and nothing else.`

// Coder generates candidate visualization code using a prioritized strategy
// sequence, validating every candidate before acceptance. Execute always
// leaves non-empty code in state.GeneratedCode: if every strategy fails, a
// fixed fallback snippet is substituted.
type Coder struct {
	Base
	model model.Model
	mode  GenerationMode
}

// CoderOptions configures the Coder.
type CoderOptions struct {
	Mode   GenerationMode
	Clock  clockwork.Clock
	Logger logging.Logger
}

// NewCoder constructs a Coder. A nil model disables the LLM strategies.
func NewCoder(m model.Model, optFns ...func(o *CoderOptions)) *Coder {
	opts := CoderOptions{Mode: ModeConservative}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Coder{
		Base:  NewBase("Coder", opts.Clock, opts.Logger),
		model: m,
		mode:  opts.Mode,
	}
}

type codeStrategy struct {
	name string
	fn   func(ctx context.Context, state *core.State, chartType core.ChartType) (string, error)
}

// Execute implements core.Agent, populating state.GeneratedCode.
func (c *Coder) Execute(ctx context.Context, state *core.State) error {
	chartType := core.ChartLine
	if top, ok := state.Intent.TopChart(); ok {
		chartType = top
	}

	failures := map[string]string{}
	for _, strat := range c.strategies() {
		code, err := strat.fn(ctx, state, chartType)
		if err != nil {
			failures[strat.name] = err.Error()
			continue
		}
		if ok, reason := ValidateCandidate(code); !ok {
			failures[strat.name] = reason
			continue
		}
		state.GeneratedCode = code
		c.log.Append("code generated", map[string]any{
			"strategy":   strat.name,
			"chart_type": string(chartType),
			"code_bytes": len(code),
		})
		return nil
	}

	state.GeneratedCode = fallbackSnippet
	c.log.Append("fallback snippet used", map[string]any{
		"chart_type": string(chartType),
		"failures":   failures,
	})
	return nil
}

func (c *Coder) strategies() []codeStrategy {
	template := codeStrategy{name: "template", fn: c.templateStrategy}
	withContext := codeStrategy{name: "llm_with_context", fn: c.llmWithContextStrategy}
	basic := codeStrategy{name: "llm_basic", fn: c.llmBasicStrategy}

	switch c.mode {
	case ModeCreative:
		return []codeStrategy{withContext, template, basic}
	default: // conservative and adaptive share the template-first ordering
		return []codeStrategy{template, withContext, basic}
	}
}

func (c *Coder) templateStrategy(_ context.Context, _ *core.State, chartType core.ChartType) (string, error) {
	tpl, ok := templateFor(chartType)
	if !ok {
		return "", fmt.Errorf("no template for chart type %q", chartType)
	}
	return tpl, nil
}

func (c *Coder) llmWithContextStrategy(ctx context.Context, state *core.State, chartType core.ChartType) (string, error) {
	return c.llmGenerate(ctx, state, chartType, true)
}

func (c *Coder) llmBasicStrategy(ctx context.Context, state *core.State, chartType core.ChartType) (string, error) {
	return c.llmGenerate(ctx, state, chartType, false)
}

func (c *Coder) llmGenerate(ctx context.Context, state *core.State, chartType core.ChartType, withContext bool) (string, error) {
	if c.model == nil {
		return "", fmt.Errorf("no model configured")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Target chart type: %s\n", chartType)
	fmt.Fprintf(&sb, "User query: %s\n", state.UserQuery)
	if withContext && len(state.RetrievedContext) > 0 {
		serialized, err := json.Marshal(state.RetrievedContext)
		if err != nil {
			return "", fmt.Errorf("serialize context: %w", err)
		}
		fmt.Fprintf(&sb, "Retrieved context:\n%s\n", serialized)
	}
	if state.Intent != nil {
		fmt.Fprintf(&sb, "Intent: %s task, %s\n", state.Intent.Type, truncate(state.Intent.Description, 200))
	}

	temperature := 0.5
	if c.mode == ModeConservative {
		temperature = 0.3
	}

	resp, err := c.model.Generate(ctx, model.Request{
		System:      coderSystemPrompt,
		User:        sb.String(),
		Temperature: temperature,
	})
	if err != nil {
		return "", err
	}
	return ExtractCode(resp), nil
}

// ValidateCandidate applies the coder's acceptance checks: minimum length,
// a reference to the charts root namespace, and the sandbox blocklist.
func ValidateCandidate(code string) (bool, string) {
	if len(code) < minCodeLength {
		return false, fmt.Sprintf("code too short (%d bytes)", len(code))
	}
	if !strings.Contains(code, "charts.") {
		return false, "code does not reference the charts namespace"
	}
	for _, p := range sandbox.DangerousPatterns {
		if strings.Contains(code, p) {
			return false, fmt.Sprintf("Dangerous pattern detected: %s", p)
		}
	}
	return true, ""
}

var (
	taggedFence   = regexp.MustCompile("(?s)```(?:javascript|js)\\s*\n(.*?)```")
	untaggedFence = regexp.MustCompile("(?s)```\\s*\n(.*?)```")
)

// ExtractCode pulls the script out of a model response: a language-tagged
// fence first, then any fence, else the whole response.
func ExtractCode(resp string) string {
	if m := taggedFence.FindStringSubmatch(resp); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := untaggedFence.FindStringSubmatch(resp); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(resp)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
