package artifact

import (
	"context"
	"sort"
	"sync"

	"github.com/skyviz/vizflow/core"
)

// InMemoryStore is a trivial in-process ArtifactStore implementation useful
// for tests, examples and single-process prototypes. It keeps all artifacts
// in a map guarded by an RWMutex; values are copied on save and retrieval so
// callers cannot mutate stored state through shared references.
//
// This implementation is intentionally minimal; it does not enforce
// retention limits, size quotas, or eviction. For durability across process
// restarts, prefer the S3 backed store.
type InMemoryStore struct {
	mu        sync.RWMutex
	artifacts map[string]core.Artifact
}

// NewInMemoryStore returns an empty in-memory artifact store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{artifacts: make(map[string]core.Artifact)}
}

// Save stores (or overwrites) the artifact under its invocation ID.
func (s *InMemoryStore) Save(ctx context.Context, a core.Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.artifacts[a.InvocationID] = a
	return nil
}

// Get returns the stored artifact or ErrNotFound.
func (s *InMemoryStore) Get(ctx context.Context, invocationID string) (core.Artifact, error) {
	if err := ctx.Err(); err != nil {
		return core.Artifact{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.artifacts[invocationID]
	if !ok {
		return core.Artifact{}, ErrNotFound
	}
	return a, nil
}

// List returns the stored invocation IDs in lexical order. The slice is a
// snapshot and safe for caller mutation.
func (s *InMemoryStore) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.artifacts))
	for id := range s.artifacts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

// Delete removes the artifact if present or returns ErrNotFound.
func (s *InMemoryStore) Delete(ctx context.Context, invocationID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.artifacts[invocationID]; !ok {
		return ErrNotFound
	}
	delete(s.artifacts, invocationID)
	return nil
}
