package core

// QualityThreshold is the single authoritative "good enough" bar consulted by
// both the pipeline stop predicate and the reflector's early exit. The two
// call sites deliberately share one constant so the loop cannot disagree with
// itself about when a result is acceptable.
const QualityThreshold = 0.7

// State is the single mutable record threaded through every pipeline stage.
// Each agent reads and writes only its documented fields; ordering is
// guaranteed by the pipeline's strictly sequential execution, so State
// carries no internal synchronization.
//
// A State is exclusively owned by one Process call. It is created fresh per
// request, lives for the duration of the pipeline run, and is discarded after
// the orchestrator extracts its public summary.
type State struct {
	UserQuery        string
	Intent           *Intent
	RetrievedContext []ContextBlock
	GeneratedCode    string
	ExecutionResult  *ExecutionResult
	VisualFeedback   *VisualFeedback

	// IterationCount is 1-based and incremented at the top of each pass.
	// It never exceeds MaxIterations.
	IterationCount int
	MaxIterations  int

	// History is appended by the reflector each time a pass does not
	// terminate the loop.
	History []HistoryEntry
}

// NewState constructs a fresh State with only the query set. maxIterations
// values below 1 are clamped to 1.
func NewState(query string, maxIterations int) *State {
	if maxIterations < 1 {
		maxIterations = 1
	}
	return &State{UserQuery: query, MaxIterations: maxIterations}
}

// ShouldStop is the pipeline stop predicate, checked once per full pass.
// The loop stops when execution succeeded and either no visual feedback was
// collected or the feedback clears QualityThreshold.
func (s *State) ShouldStop() bool {
	if s.ExecutionResult == nil || !s.ExecutionResult.Success {
		return false
	}
	if s.VisualFeedback == nil {
		return true
	}
	return s.VisualFeedback.OverallScore >= QualityThreshold
}
