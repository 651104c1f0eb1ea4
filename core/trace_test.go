package core

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionLog_AppendAndSnapshot(t *testing.T) {
	clock := clockwork.NewFakeClock()
	log := NewActionLog("Planner", clock)

	log.Append("intent classified", map[string]any{"task_type": "trend"})
	clock.Advance(time.Second)
	log.Append("fallback used", nil)

	entries := log.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "Planner", entries[0].Agent)
	assert.Equal(t, "intent classified", entries[0].Action)
	assert.Equal(t, "trend", entries[0].Details["task_type"])
	assert.True(t, entries[0].Timestamp.Before(entries[1].Timestamp))

	// The snapshot must be detached from the internal slice.
	entries[0].Action = "mutated"
	assert.Equal(t, "intent classified", log.Entries()[0].Action)
}

func TestMergeLogs_ChronologicalInterleave(t *testing.T) {
	clock := clockwork.NewFakeClock()
	planner := NewActionLog("Planner", clock)
	coder := NewActionLog("Coder", clock)

	planner.Append("first", nil)
	clock.Advance(time.Second)
	coder.Append("second", nil)
	clock.Advance(time.Second)
	planner.Append("third", nil)

	merged := MergeLogs(planner, coder, nil)
	require.Len(t, merged, 3)
	assert.Equal(t, []string{"first", "second", "third"}, []string{
		merged[0].Action, merged[1].Action, merged[2].Action,
	})
	assert.Equal(t, "Coder", merged[1].Agent)
}

func TestMergeLogs_StableForEqualTimestamps(t *testing.T) {
	clock := clockwork.NewFakeClock()
	a := NewActionLog("A", clock)
	b := NewActionLog("B", clock)

	a.Append("a1", nil)
	a.Append("a2", nil)
	b.Append("b1", nil)

	merged := MergeLogs(a, b)
	require.Len(t, merged, 3)
	// All timestamps equal: per-log append order must be preserved.
	assert.Equal(t, "a1", merged[0].Action)
	assert.Equal(t, "a2", merged[1].Action)
	assert.Equal(t, "b1", merged[2].Action)
}
