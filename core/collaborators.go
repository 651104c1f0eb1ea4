package core

import "context"

// SearchResult represents a retrieved knowledge snippet with a relevance
// score and arbitrary metadata.
type SearchResult struct {
	ID       string
	Content  string
	Score    float64
	Metadata map[string]any
}

// KnowledgeBase is the optional free-text similarity search collaborator.
// Absence is tolerated by the retriever (treated as "no vector context").
type KnowledgeBase interface {
	// ContextForQuery returns up to k snippets ranked by relevance.
	ContextForQuery(ctx context.Context, query string, k int) ([]SearchResult, error)
}

// GraphEntity is a node in the domain knowledge graph.
type GraphEntity struct {
	Name        string
	Kind        string
	Description string
}

// GraphRelation is one directed edge between two named entities.
type GraphRelation struct {
	Source   string
	Relation string
	Target   string
}

// GraphContext bundles the entities and relationships returned for an entity
// lookup.
type GraphContext struct {
	Entities      []GraphEntity
	Relationships []GraphRelation
}

// GraphStore is the optional domain knowledge graph collaborator. Absence is
// tolerated by the retriever (graph stage skipped).
type GraphStore interface {
	// QueryExpansion broadens query-extracted entities into a richer
	// related-entity set via multi-hop lookup.
	QueryExpansion(ctx context.Context, entities []string) ([]string, error)

	// EntityContext returns graph context for the named entities.
	EntityContext(ctx context.Context, entities []string) (GraphContext, error)
}

// SchemaProvider exposes a canonical description of the dataset schema. On
// failure the retriever substitutes a hardcoded fallback description.
type SchemaProvider interface {
	SchemaDescription(ctx context.Context) (string, error)
}
