package core

// CodeQuality is the evaluator's heuristic score for structural quality of
// generated chart code. Notes records which heuristics fired.
type CodeQuality struct {
	Score float64  `json:"score"`
	Notes []string `json:"notes,omitempty"`
}

// IntentAlignment scores how well generated code matches the planned chart
// type and the query vocabulary.
type IntentAlignment struct {
	Score           float64  `json:"score"`
	MatchedKeywords []string `json:"matched_keywords,omitempty"`
}

// ExecutionResult captures the evaluator's verdict on one coder output:
// sandbox outcome, heuristic sub-scores and the combined overall score.
//
// OverallScore is always within [0,1] and is 0.0 whenever Success is false.
type ExecutionResult struct {
	Success         bool            `json:"success"`
	Error           string          `json:"error,omitempty"`
	CodeQuality     CodeQuality     `json:"code_quality"`
	IntentAlignment IntentAlignment `json:"intent_alignment"`
	OverallScore    float64         `json:"overall_score"`
	Artifact        string          `json:"artifact,omitempty"`
}

// VisualFeedback is the multi-axis visual quality rubric. All scores are
// within [0,1]. Populated only when execution succeeded.
type VisualFeedback struct {
	OverallScore    float64  `json:"overall_score"`
	Readability     float64  `json:"readability"`
	Aesthetics      float64  `json:"aesthetics"`
	DataEncoding    float64  `json:"data_encoding"`
	Appropriateness float64  `json:"appropriateness"`
	Suggestions     []string `json:"suggestions,omitempty"`
	Issues          []string `json:"issues,omitempty"`
}

// FailureClass buckets a failed pass into a coarse error category.
type FailureClass string

// Failure classifications produced by the reflector.
const (
	FailureSyntax  FailureClass = "SYNTAX"
	FailureLogic   FailureClass = "LOGIC"
	FailureDesign  FailureClass = "DESIGN"
	FailureData    FailureClass = "DATA"
	FailureUnknown FailureClass = "UNKNOWN"
)

// FailureAnalysis is the reflector's structured suggestion payload for the
// next coder attempt.
type FailureAnalysis struct {
	Classification       FailureClass `json:"error_classification"`
	RootCause            string       `json:"root_cause"`
	FixStrategy          string       `json:"fix_strategy"`
	Suggestions          []string     `json:"specific_suggestions,omitempty"`
	ModifiedRequirements string       `json:"modified_requirements,omitempty"`
}

// HistoryEntry associates a failure analysis with the pass that produced it.
type HistoryEntry struct {
	Iteration int             `json:"iteration"`
	Analysis  FailureAnalysis `json:"analysis"`
}
