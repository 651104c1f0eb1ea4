package agent

import (
	"encoding/json"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/skyviz/vizflow/core"
	"github.com/skyviz/vizflow/logging"
)

// Depth selects between the full and the simplified behavior of the
// Evaluator and Reflector. Variant behavior is a data parameter rather than
// a separate implementation so the pipeline stays single-sourced.
type Depth string

const (
	// DepthFull enables heuristic sub-scores and structured failure analysis.
	DepthFull Depth = "full"
	// DepthSimple uses the cruder combined score and skips failure
	// classification, relying on loop iteration alone to retry.
	DepthSimple Depth = "simple"
)

// Base bundles the identity, action log and logger shared by all agents.
// Embed it and supply Execute to satisfy core.Agent.
type Base struct {
	name   string
	log    *core.ActionLog
	logger logging.Logger
}

// NewBase constructs the shared agent plumbing. A nil clock falls back to
// the real clock; a nil logger to NoOp.
func NewBase(name string, clock clockwork.Clock, logger logging.Logger) Base {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}
	return Base{
		name:   name,
		log:    core.NewActionLog(name, clock),
		logger: logger,
	}
}

// Name returns the agent's name.
func (b *Base) Name() string { return b.name }

// Log returns the agent's append-only action log.
func (b *Base) Log() *core.ActionLog { return b.log }

// extractJSON pulls the outermost JSON object out of a model response that
// may carry prose or code fences around it.
func extractJSON(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", false
	}
	candidate := text[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return "", false
	}
	return candidate, true
}

// clamp01 bounds a score to [0,1].
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
