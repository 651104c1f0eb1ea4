package core

// TaskType classifies the analytical intent behind a user query.
type TaskType string

// Task types recognized by the planner's design space.
const (
	TaskExploration  TaskType = "exploration"
	TaskComparison   TaskType = "comparison"
	TaskTrend        TaskType = "trend"
	TaskDistribution TaskType = "distribution"
	TaskCorrelation  TaskType = "correlation"
	TaskAnomaly      TaskType = "anomaly"
)

// Valid reports whether t is one of the recognized task types.
func (t TaskType) Valid() bool {
	switch t {
	case TaskExploration, TaskComparison, TaskTrend, TaskDistribution, TaskCorrelation, TaskAnomaly:
		return true
	}
	return false
}

// ChartType identifies a chart family supported by the sandbox's chart DSL.
type ChartType string

// Chart types the coder can target.
const (
	ChartLine    ChartType = "line"
	ChartBar     ChartType = "bar"
	ChartPie     ChartType = "pie"
	ChartScatter ChartType = "scatter"
	ChartHeatmap ChartType = "heatmap"
)

// ChartProposal is one ranked entry in the planner's visualization plan.
type ChartProposal struct {
	ChartType  ChartType `json:"chart_type"`
	Rationale  string    `json:"rationale"`
	Confidence float64   `json:"confidence"`
	Rank       int       `json:"rank"`
}

// DataRequirements names the dataset dimensions and metrics the planner
// expects a chart to bind.
type DataRequirements struct {
	Dimensions []string `json:"dimensions,omitempty"`
	Metrics    []string `json:"metrics,omitempty"`
}

// Intent is the planner's structured interpretation of a user query: a task
// classification plus an ordered list of chart proposals (rank ascending).
type Intent struct {
	Type             TaskType         `json:"type"`
	Confidence       float64          `json:"confidence"`
	Description      string           `json:"description"`
	DataRequirements DataRequirements `json:"data_requirements"`
	Plan             []ChartProposal  `json:"visualization_plan"`
}

// TopChart returns the highest-ranked proposed chart type, or false when the
// plan is empty.
func (i *Intent) TopChart() (ChartType, bool) {
	if i == nil || len(i.Plan) == 0 {
		return "", false
	}
	return i.Plan[0].ChartType, true
}
