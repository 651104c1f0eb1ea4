package knowledge

import (
	"context"
	"strings"
	"sync"

	"github.com/skyviz/vizflow/core"
)

// InMemoryGraph is a process-local core.GraphStore holding a small domain
// knowledge graph. Expansion is one hop: the input entities plus every
// directly related entity, deduplicated, original order first.
type InMemoryGraph struct {
	mu        sync.RWMutex
	entities  map[string]core.GraphEntity // lowercased name -> entity
	relations []core.GraphRelation
}

// NewInMemoryGraph constructs an empty graph store.
func NewInMemoryGraph() *InMemoryGraph {
	return &InMemoryGraph{entities: make(map[string]core.GraphEntity)}
}

// AddEntity registers a node. Names are matched case-insensitively.
func (g *InMemoryGraph) AddEntity(e core.GraphEntity) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entities[strings.ToLower(e.Name)] = e
}

// AddRelation registers a directed edge between two named entities.
func (g *InMemoryGraph) AddRelation(source, relation, target string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.relations = append(g.relations, core.GraphRelation{Source: source, Relation: relation, Target: target})
}

// QueryExpansion implements core.GraphStore with a one-hop neighborhood
// lookup. Unknown input entities pass through unchanged.
func (g *InMemoryGraph) QueryExpansion(ctx context.Context, entities []string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	seen := make(map[string]bool, len(entities))
	out := make([]string, 0, len(entities))
	add := func(name string) {
		key := strings.ToLower(name)
		if !seen[key] {
			seen[key] = true
			out = append(out, name)
		}
	}

	for _, e := range entities {
		add(e)
	}
	for _, e := range entities {
		key := strings.ToLower(e)
		for _, r := range g.relations {
			switch {
			case strings.ToLower(r.Source) == key:
				add(r.Target)
			case strings.ToLower(r.Target) == key:
				add(r.Source)
			}
		}
	}
	return out, nil
}

// EntityContext implements core.GraphStore, returning known entities among
// the requested names plus every relation touching any of them.
func (g *InMemoryGraph) EntityContext(ctx context.Context, names []string) (core.GraphContext, error) {
	if err := ctx.Err(); err != nil {
		return core.GraphContext{}, err
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	requested := make(map[string]bool, len(names))
	var gc core.GraphContext
	for _, n := range names {
		key := strings.ToLower(n)
		requested[key] = true
		if e, ok := g.entities[key]; ok {
			gc.Entities = append(gc.Entities, e)
		}
	}
	for _, r := range g.relations {
		if requested[strings.ToLower(r.Source)] || requested[strings.ToLower(r.Target)] {
			gc.Relationships = append(gc.Relationships, r)
		}
	}
	return gc, nil
}
