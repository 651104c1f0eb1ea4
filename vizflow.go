// Package vizflow provides a high-level façade over the agent pipeline,
// sandbox and stores enabling natural-language chart generation against the
// low altitude economy flight dataset. Most applications interact with this
// package by:
//  1. Creating an Orchestrator via New() (optionally overriding defaults)
//  2. Calling Process() with a natural-language query
//  3. Reading the rendered chart HTML and agent trace from the Result
//
// The façade delegates looping to pipeline.Pipeline while keeping setup and
// usage ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply a real model, a durable
// artifact store and a structured logger.
package vizflow

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/skyviz/vizflow/agent"
	"github.com/skyviz/vizflow/artifact"
	"github.com/skyviz/vizflow/core"
	"github.com/skyviz/vizflow/knowledge"
	"github.com/skyviz/vizflow/logging"
	"github.com/skyviz/vizflow/model"
	"github.com/skyviz/vizflow/pipeline"
	"github.com/skyviz/vizflow/sandbox"
)

// Options configures the Orchestrator.
type Options struct {
	// Model drives the planner, coder and reflector. Nil is valid: every
	// agent falls back to its deterministic strategy.
	Model model.Model

	// MaxIterations bounds the reflection loop. Values below 1 clamp to 1.
	MaxIterations int

	// Mode selects the coder's strategy priority order.
	Mode agent.GenerationMode

	// Depth selects full or simplified evaluation and reflection.
	Depth agent.Depth

	// TopK is the number of knowledge base snippets retrieved per query.
	TopK int

	// ExecBudget is the sandbox wall-clock limit per execution.
	ExecBudget time.Duration

	// LLMTimeout is the per-call deadline applied to the model. Zero
	// disables the decorator.
	LLMTimeout time.Duration

	// Collaborators (default to seeded in-memory implementations if not
	// provided)
	KnowledgeBase  core.KnowledgeBase
	GraphStore     core.GraphStore
	SchemaProvider core.SchemaProvider
	ArtifactStore  core.ArtifactStore

	Clock  clockwork.Clock
	Logger logging.Logger
}

// Result is the public summary of one Process call.
type Result struct {
	InvocationID   string               `json:"invocation_id"`
	Success        bool                 `json:"success"`
	Query          string               `json:"query"`
	ChartCode      string               `json:"chart_code,omitempty"`
	ChartHTML      string               `json:"chart_html,omitempty"`
	Execution      *core.ExecutionResult `json:"execution,omitempty"`
	VisualFeedback *core.VisualFeedback  `json:"visual_feedback,omitempty"`
	Iterations     int                  `json:"iterations"`
	Error          string               `json:"error,omitempty"`
	AgentTrace     []core.LogEntry      `json:"agent_trace"`
}

// Orchestrator is the high-level façade aggregating the pipeline, sandbox
// and stores.
//
// Each Process call builds a fresh agent set and pipeline, so concurrent
// calls on one Orchestrator are safe: no per-request state is shared.
type Orchestrator struct {
	opts  Options
	model model.Model
}

// New creates a new Orchestrator with optional overrides. Any unset
// collaborator is initialized with a seeded in-memory implementation.
func New(optFns ...func(o *Options)) *Orchestrator {
	opts := Options{
		MaxIterations: 3,
		Mode:          agent.ModeConservative,
		Depth:         agent.DepthFull,
		TopK:          3,
		ExecBudget:    5 * time.Second,
		LLMTimeout:    60 * time.Second,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.KnowledgeBase == nil {
		opts.KnowledgeBase = knowledge.SeedLowAltitudeKB()
	}
	if opts.GraphStore == nil {
		opts.GraphStore = knowledge.SeedLowAltitudeGraph()
	}
	if opts.SchemaProvider == nil {
		opts.SchemaProvider = knowledge.NewStaticSchemaProvider("")
	}
	if opts.ArtifactStore == nil {
		opts.ArtifactStore = artifact.NewInMemoryStore()
	}
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NoOpLogger{}
	}

	m := opts.Model
	if m != nil && opts.LLMTimeout > 0 {
		m = model.WithTimeout(m, opts.LLMTimeout)
	}

	return &Orchestrator{opts: opts, model: m}
}

// Process runs the full pipeline for one query and returns its summary.
// The error return covers pipeline-level failures only; a query that merely
// produced a poor chart is reported through Result.Success and Result.Error.
func (o *Orchestrator) Process(ctx context.Context, query string) (*Result, error) {
	invocationID := uuid.NewString()
	o.opts.Logger.Info("processing query", "invocation_id", invocationID, "query", query)

	p := pipeline.New(o.buildAgents(), func(po *pipeline.Options) {
		po.Logger = o.opts.Logger
	})

	state := core.NewState(query, o.opts.MaxIterations)
	if err := p.Run(ctx, state); err != nil {
		return nil, fmt.Errorf("pipeline run: %w", err)
	}

	result := &Result{
		InvocationID:   invocationID,
		Query:          query,
		Iterations:     state.IterationCount,
		VisualFeedback: state.VisualFeedback,
		AgentTrace:     p.Trace(),
	}
	if state.ExecutionResult != nil {
		result.Execution = state.ExecutionResult
		result.Success = state.ExecutionResult.Success
		result.Error = state.ExecutionResult.Error
	}
	if result.Success {
		result.ChartCode = state.GeneratedCode
		result.ChartHTML = state.ExecutionResult.Artifact
		o.saveArtifact(ctx, invocationID, state)
	}

	o.opts.Logger.Info("query processed",
		"invocation_id", invocationID,
		"success", result.Success,
		"iterations", result.Iterations)
	return result, nil
}

// buildAgents assembles a fresh agent set in pipeline order.
func (o *Orchestrator) buildAgents() []core.Agent {
	planner := agent.NewPlanner(o.model, func(po *agent.PlannerOptions) {
		po.Clock = o.opts.Clock
		po.Logger = o.opts.Logger
	})
	retriever := agent.NewRetriever(func(ro *agent.RetrieverOptions) {
		ro.KnowledgeBase = o.opts.KnowledgeBase
		ro.GraphStore = o.opts.GraphStore
		ro.SchemaProvider = o.opts.SchemaProvider
		ro.TopK = o.opts.TopK
		ro.Clock = o.opts.Clock
		ro.Logger = o.opts.Logger
	})
	coder := agent.NewCoder(o.model, func(co *agent.CoderOptions) {
		co.Mode = o.opts.Mode
		co.Clock = o.opts.Clock
		co.Logger = o.opts.Logger
	})
	executor := sandbox.NewExecutor(func(so *sandbox.Options) {
		so.Budget = o.opts.ExecBudget
		so.Logger = o.opts.Logger
	})
	evaluator := agent.NewEvaluator(executor, func(eo *agent.EvaluatorOptions) {
		eo.Depth = o.opts.Depth
		eo.Clock = o.opts.Clock
		eo.Logger = o.opts.Logger
	})
	reflector := agent.NewReflector(o.model, func(ro *agent.ReflectorOptions) {
		ro.Depth = o.opts.Depth
		ro.Clock = o.opts.Clock
		ro.Logger = o.opts.Logger
	})
	return []core.Agent{planner, retriever, coder, evaluator, reflector}
}

// saveArtifact persists the rendered chart best-effort; storage problems are
// logged, never surfaced to the caller.
func (o *Orchestrator) saveArtifact(ctx context.Context, invocationID string, state *core.State) {
	a := core.Artifact{
		InvocationID: invocationID,
		Query:        state.UserQuery,
		Code:         state.GeneratedCode,
		HTML:         state.ExecutionResult.Artifact,
		CreatedAt:    o.opts.Clock.Now(),
	}
	if err := o.opts.ArtifactStore.Save(ctx, a); err != nil {
		o.opts.Logger.Warn("artifact save failed",
			"invocation_id", invocationID, "error", err.Error())
	}
}
