package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonboulle/clockwork"
	"github.com/skyviz/vizflow/core"
	"github.com/skyviz/vizflow/knowledge"
	"github.com/skyviz/vizflow/logging"
)

// graphBlockLimit caps entities and relationships rendered into the graph
// context block.
const graphBlockLimit = 8

// Retriever assembles generation grounding from up to four sources, in fixed
// order: vector knowledge base, graph-expanded entities, dataset schema, and
// the planner's intent. Every stage is best-effort: a failing stage is
// skipped with its error recorded, never propagated.
type Retriever struct {
	Base
	kb     core.KnowledgeBase
	graph  core.GraphStore
	schema core.SchemaProvider
	topK   int
}

// RetrieverOptions configures the Retriever. KnowledgeBase, GraphStore and
// SchemaProvider are all optional.
type RetrieverOptions struct {
	KnowledgeBase  core.KnowledgeBase
	GraphStore     core.GraphStore
	SchemaProvider core.SchemaProvider
	TopK           int
	Clock          clockwork.Clock
	Logger         logging.Logger
}

// NewRetriever constructs a Retriever.
func NewRetriever(optFns ...func(o *RetrieverOptions)) *Retriever {
	opts := RetrieverOptions{TopK: 3}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Retriever{
		Base:   NewBase("Retriever", opts.Clock, opts.Logger),
		kb:     opts.KnowledgeBase,
		graph:  opts.GraphStore,
		schema: opts.SchemaProvider,
		topK:   opts.TopK,
	}
}

// stageResult makes each sub-stage's outcome inspectable instead of silently
// swallowed: a stage either produced a block, was skipped, or failed.
type stageResult struct {
	name    string
	block   core.ContextBlock
	ok      bool
	skipped string
	err     error
}

// Execute implements core.Agent, populating state.RetrievedContext.
func (r *Retriever) Execute(ctx context.Context, state *core.State) error {
	stages := []func(context.Context, *core.State) stageResult{
		r.vectorStage,
		r.graphStage,
		r.schemaStage,
		r.intentStage,
	}

	blocks := make([]core.ContextBlock, 0, len(stages))
	details := map[string]any{}
	for _, stage := range stages {
		res := stage(ctx, state)
		switch {
		case res.err != nil:
			r.logger.Warn("retrieval stage failed", "stage", res.name, "error", res.err.Error())
			details[res.name] = fmt.Sprintf("error: %s", res.err)
		case !res.ok:
			details[res.name] = res.skipped
		default:
			blocks = append(blocks, res.block)
			details[res.name] = "ok"
		}
	}

	state.RetrievedContext = blocks
	details["blocks"] = len(blocks)
	r.log.Append("context assembled", details)
	return nil
}

func (r *Retriever) vectorStage(ctx context.Context, state *core.State) stageResult {
	res := stageResult{name: "vector_kb"}
	if r.kb == nil {
		res.skipped = "no knowledge base configured"
		return res
	}
	results, err := r.kb.ContextForQuery(ctx, state.UserQuery, r.topK)
	if err != nil {
		res.err = err
		return res
	}
	if len(results) == 0 {
		res.skipped = "no results"
		return res
	}

	var sb strings.Builder
	for _, item := range results {
		fmt.Fprintf(&sb, "- %s\n", item.Content)
	}
	res.block = core.ContextBlock{Source: core.SourceVectorKB, Content: sb.String()}
	res.ok = true
	return res
}

func (r *Retriever) graphStage(ctx context.Context, state *core.State) stageResult {
	res := stageResult{name: "graph_rag"}
	entities := extractEntities(state.UserQuery)
	if len(entities) == 0 {
		res.skipped = "no entities in query"
		return res
	}
	if r.graph == nil {
		res.skipped = "no graph store configured"
		return res
	}

	expanded, err := r.graph.QueryExpansion(ctx, entities)
	if err != nil {
		res.err = err
		return res
	}
	gc, err := r.graph.EntityContext(ctx, expanded)
	if err != nil {
		res.err = err
		return res
	}

	res.block = core.ContextBlock{
		Source:   core.SourceGraphRAG,
		Content:  formatGraphContext(gc),
		Entities: expanded,
	}
	res.ok = true
	return res
}

func (r *Retriever) schemaStage(ctx context.Context, _ *core.State) stageResult {
	res := stageResult{name: "data_schema"}
	description := knowledge.DatasetSchema
	if r.schema != nil {
		fetched, err := r.schema.SchemaDescription(ctx)
		if err != nil {
			r.logger.Warn("schema fetch failed, using fallback", "error", err.Error())
		} else {
			description = fetched
		}
	}
	res.block = core.ContextBlock{Source: core.SourceSchema, Content: description}
	res.ok = true
	return res
}

func (r *Retriever) intentStage(_ context.Context, state *core.State) stageResult {
	res := stageResult{name: "intent"}
	if state.Intent == nil {
		res.skipped = "no intent set"
		return res
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Task type: %s\n", state.Intent.Type)
	if state.Intent.Description != "" {
		fmt.Fprintf(&sb, "Interpretation: %s\n", state.Intent.Description)
	}
	if dims := state.Intent.DataRequirements.Dimensions; len(dims) > 0 {
		fmt.Fprintf(&sb, "Required dimensions: %s\n", strings.Join(dims, ", "))
	}
	if metrics := state.Intent.DataRequirements.Metrics; len(metrics) > 0 {
		fmt.Fprintf(&sb, "Required metrics: %s\n", strings.Join(metrics, ", "))
	}
	for i, proposal := range state.Intent.Plan {
		if i == 3 {
			break
		}
		fmt.Fprintf(&sb, "Chart option %d: %s (%s)\n", i+1, proposal.ChartType, proposal.Rationale)
	}

	res.block = core.ContextBlock{Source: core.SourceIntent, Content: sb.String()}
	res.ok = true
	return res
}

// formatGraphContext renders entities and deduplicated relationships into a
// human-readable block, capped at graphBlockLimit each.
func formatGraphContext(gc core.GraphContext) string {
	var sb strings.Builder

	sb.WriteString("Related entities:\n")
	for i, e := range gc.Entities {
		if i == graphBlockLimit {
			break
		}
		fmt.Fprintf(&sb, "- %s (%s): %s\n", e.Name, e.Kind, e.Description)
	}

	sb.WriteString("Relationships:\n")
	seen := make(map[string]bool)
	count := 0
	for _, r := range gc.Relationships {
		key := fmt.Sprintf("%s|%s|%s", r.Source, r.Relation, r.Target)
		if seen[key] {
			continue
		}
		seen[key] = true
		fmt.Fprintf(&sb, "- %s %s %s\n", r.Source, r.Relation, r.Target)
		count++
		if count == graphBlockLimit {
			break
		}
	}

	return sb.String()
}
