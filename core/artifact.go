package core

import (
	"context"
	"time"
)

// Artifact is one rendered chart: the HTML document plus the script and
// query that produced it.
type Artifact struct {
	InvocationID string    `json:"invocation_id"`
	Query        string    `json:"query"`
	Code         string    `json:"code"`
	HTML         string    `json:"html"`
	CreatedAt    time.Time `json:"created_at"`
}

// ArtifactStore persists rendered charts keyed by invocation ID. The
// canonical interface lives here so implementation packages (in-memory,
// object stores) can be swapped without touching calling code.
type ArtifactStore interface {
	Save(ctx context.Context, artifact Artifact) error
	Get(ctx context.Context, invocationID string) (Artifact, error)
	List(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, invocationID string) error
}
