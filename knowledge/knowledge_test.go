package knowledge

import (
	"context"
	"testing"

	"github.com/skyviz/vizflow/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryKB_RankedRetrieval(t *testing.T) {
	kb := SeedLowAltitudeKB()
	defer kb.Close()

	results, err := kb.ContextForQuery(context.Background(), "drone flight trend in Shenzhen", 3)
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.LessOrEqual(t, len(results), 3)
	assert.Equal(t, "kb_trend_shenzhen", results[0].ID, "most relevant snippet ranks first")
	for i := 1; i < len(results); i++ {
		assert.LessOrEqual(t, results[i].Score, results[i-1].Score)
	}
}

func TestInMemoryKB_NoMatches(t *testing.T) {
	kb := NewInMemoryKB()
	defer kb.Close()
	kb.Add(Snippet{Content: "unrelated snippet about nothing in particular"})

	results, err := kb.ContextForQuery(context.Background(), "quantum blockchain weather", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestInMemoryKB_CachedResults(t *testing.T) {
	kb := SeedLowAltitudeKB()
	defer kb.Close()

	first, err := kb.ContextForQuery(context.Background(), "logistics share", 2)
	require.NoError(t, err)
	second, err := kb.ContextForQuery(context.Background(), "logistics share", 2)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Snapshots must be detached from the cached slice.
	if len(second) > 0 {
		second[0].ID = "mutated"
		third, err := kb.ContextForQuery(context.Background(), "logistics share", 2)
		require.NoError(t, err)
		assert.NotEqual(t, "mutated", third[0].ID)
	}
}

func TestInMemoryGraph_QueryExpansion(t *testing.T) {
	g := SeedLowAltitudeGraph()

	expanded, err := g.QueryExpansion(context.Background(), []string{"Shenzhen"})
	require.NoError(t, err)
	assert.Equal(t, "Shenzhen", expanded[0], "input entities come first")
	assert.Contains(t, expanded, "logistics")
	assert.Contains(t, expanded, "drone")

	// Dedup: expanding an entity together with its neighbor must not repeat it.
	expanded, err = g.QueryExpansion(context.Background(), []string{"Shenzhen", "drone"})
	require.NoError(t, err)
	counts := map[string]int{}
	for _, e := range expanded {
		counts[e]++
	}
	for name, n := range counts {
		assert.Equal(t, 1, n, "entity %q duplicated", name)
	}
}

func TestInMemoryGraph_EntityContext(t *testing.T) {
	g := SeedLowAltitudeGraph()

	gc, err := g.EntityContext(context.Background(), []string{"shenzhen", "unknown entity"})
	require.NoError(t, err)
	require.Len(t, gc.Entities, 1)
	assert.Equal(t, "Shenzhen", gc.Entities[0].Name, "lookup is case-insensitive")
	assert.NotEmpty(t, gc.Relationships)
	for _, r := range gc.Relationships {
		touches := r.Source == "Shenzhen" || r.Target == "Shenzhen"
		assert.True(t, touches, "relation %v does not touch requested entities", r)
	}
}

func TestStaticSchemaProvider(t *testing.T) {
	p := NewStaticSchemaProvider("")
	desc, err := p.SchemaDescription(context.Background())
	require.NoError(t, err)
	assert.Contains(t, desc, "aircraft_type")

	custom := NewStaticSchemaProvider("my schema")
	desc, err = custom.SchemaDescription(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "my schema", desc)
}

var _ core.KnowledgeBase = (*InMemoryKB)(nil)
var _ core.GraphStore = (*InMemoryGraph)(nil)
var _ core.SchemaProvider = (*StaticSchemaProvider)(nil)
