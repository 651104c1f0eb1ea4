package core

import (
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// LogEntry is one observability record emitted by an agent. Entries are never
// consumed by control flow; they exist for tracing and debugging output.
type LogEntry struct {
	Timestamp time.Time      `json:"timestamp"`
	Agent     string         `json:"agent"`
	Action    string         `json:"action"`
	Details   map[string]any `json:"details,omitempty"`
}

// ActionLog is an append-only per-agent action trail. Appends are mutex
// guarded because the log is instance-owned rather than request-owned:
// sharing one orchestrator across concurrent Process calls interleaves
// entries, but must not corrupt the slice.
type ActionLog struct {
	mu      sync.Mutex
	clock   clockwork.Clock
	agent   string
	entries []LogEntry
}

// NewActionLog constructs an empty log for the named agent. A nil clock
// defaults to the real one; tests inject a fake clock for deterministic
// timestamps.
func NewActionLog(agent string, clock clockwork.Clock) *ActionLog {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ActionLog{clock: clock, agent: agent}
}

// Append records one action with optional details.
func (l *ActionLog) Append(action string, details map[string]any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{
		Timestamp: l.clock.Now(),
		Agent:     l.agent,
		Action:    action,
		Details:   details,
	})
}

// Entries returns a snapshot copy safe for caller mutation.
func (l *ActionLog) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// MergeLogs concatenates the given logs and sorts the combined entries by
// timestamp, yielding an interleaved chronological trace across agents. The
// sort is stable so same-timestamp entries keep their per-agent append order.
func MergeLogs(logs ...*ActionLog) []LogEntry {
	var merged []LogEntry
	for _, l := range logs {
		if l == nil {
			continue
		}
		merged = append(merged, l.Entries()...)
	}
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.Before(merged[j].Timestamp)
	})
	return merged
}
