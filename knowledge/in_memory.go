package knowledge

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/skyviz/vizflow/core"
)

// Snippet is one stored knowledge fragment.
type Snippet struct {
	ID      string
	Content string
	Tags    []string
}

// InMemoryKB is a process-local core.KnowledgeBase. Ranking is keyword
// overlap between the lowercased query tokens and snippet content/tags;
// results for a (query, k) pair are cached with a TTL so repeated pipeline
// iterations do not rescan the corpus.
type InMemoryKB struct {
	mu       sync.RWMutex
	snippets []Snippet
	cache    *ttlcache.Cache[string, []core.SearchResult]
}

// KBOptions configures the in-memory knowledge base.
type KBOptions struct {
	// CacheTTL bounds how long ranked results for a query are reused.
	CacheTTL time.Duration
}

// NewInMemoryKB constructs an empty knowledge base with a 5 minute cache TTL.
func NewInMemoryKB(optFns ...func(o *KBOptions)) *InMemoryKB {
	opts := KBOptions{CacheTTL: 5 * time.Minute}
	for _, fn := range optFns {
		fn(&opts)
	}
	cache := ttlcache.New[string, []core.SearchResult](
		ttlcache.WithTTL[string, []core.SearchResult](opts.CacheTTL),
	)
	go cache.Start()
	return &InMemoryKB{cache: cache}
}

// Add appends a snippet to the corpus and drops any cached rankings.
func (kb *InMemoryKB) Add(s Snippet) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	if s.ID == "" {
		s.ID = fmt.Sprintf("kb_%d", len(kb.snippets))
	}
	kb.snippets = append(kb.snippets, s)
	kb.cache.DeleteAll()
}

// ContextForQuery implements core.KnowledgeBase.
func (kb *InMemoryKB) ContextForQuery(ctx context.Context, query string, k int) ([]core.SearchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if k <= 0 {
		return []core.SearchResult{}, nil
	}

	cacheKey := fmt.Sprintf("%d|%s", k, strings.ToLower(query))
	if item := kb.cache.Get(cacheKey); item != nil {
		return cloneResults(item.Value()), nil
	}

	tokens := tokenize(query)

	kb.mu.RLock()
	scored := make([]core.SearchResult, 0, len(kb.snippets))
	for _, s := range kb.snippets {
		score := overlapScore(tokens, s)
		if score <= 0 {
			continue
		}
		scored = append(scored, core.SearchResult{
			ID:      s.ID,
			Content: s.Content,
			Score:   score,
			Metadata: map[string]any{
				"tags": append([]string(nil), s.Tags...),
			},
		})
	}
	kb.mu.RUnlock()

	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if len(scored) > k {
		scored = scored[:k]
	}

	kb.cache.Set(cacheKey, scored, ttlcache.DefaultTTL)
	return cloneResults(scored), nil
}

// Close stops the cache's expiration loop.
func (kb *InMemoryKB) Close() { kb.cache.Stop() }

func cloneResults(in []core.SearchResult) []core.SearchResult {
	out := make([]core.SearchResult, len(in))
	copy(out, in)
	return out
}

func tokenize(s string) []string {
	fields := strings.Fields(strings.ToLower(s))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,;:!?\"'()[]")
		if len(f) > 2 {
			out = append(out, f)
		}
	}
	return out
}

// overlapScore counts query tokens present in content (weight 1) or tags
// (weight 2), normalized by token count.
func overlapScore(tokens []string, s Snippet) float64 {
	if len(tokens) == 0 {
		return 0
	}
	content := strings.ToLower(s.Content)
	var hits float64
	for _, tok := range tokens {
		if strings.Contains(content, tok) {
			hits++
			continue
		}
		for _, tag := range s.Tags {
			if strings.Contains(strings.ToLower(tag), tok) {
				hits += 2
				break
			}
		}
	}
	return hits / float64(len(tokens))
}
