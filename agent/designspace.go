package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/skyviz/vizflow/core"
)

// dataDimensions is the fixed design-space taxonomy of dataset dimension
// categories embedded into the planner prompt.
var dataDimensions = map[string][]string{
	"temporal":    {"year", "quarter", "month", "date"},
	"spatial":     {"region", "district"},
	"categorical": {"aircraft_type", "purpose"},
	"numerical":   {"flights", "duration_minutes", "distance_km"},
}

// taskCharts maps each task type to its suitable chart types, best first.
var taskCharts = map[core.TaskType][]core.ChartType{
	core.TaskExploration:  {core.ChartLine, core.ChartBar},
	core.TaskComparison:   {core.ChartBar, core.ChartLine},
	core.TaskTrend:        {core.ChartLine, core.ChartBar},
	core.TaskDistribution: {core.ChartPie, core.ChartBar},
	core.TaskCorrelation:  {core.ChartScatter, core.ChartHeatmap},
	core.TaskAnomaly:      {core.ChartScatter, core.ChartLine},
}

// designSpacePrompt renders the taxonomy as a stable text block for the
// planner's system prompt.
func designSpacePrompt() string {
	var sb strings.Builder

	sb.WriteString("Data dimension categories:\n")
	dims := make([]string, 0, len(dataDimensions))
	for k := range dataDimensions {
		dims = append(dims, k)
	}
	sort.Strings(dims)
	for _, d := range dims {
		fmt.Fprintf(&sb, "  - %s: %s\n", d, strings.Join(dataDimensions[d], ", "))
	}

	sb.WriteString("Task types and suitable chart types:\n")
	tasks := make([]string, 0, len(taskCharts))
	for k := range taskCharts {
		tasks = append(tasks, string(k))
	}
	sort.Strings(tasks)
	for _, t := range tasks {
		charts := taskCharts[core.TaskType(t)]
		names := make([]string, len(charts))
		for i, c := range charts {
			names[i] = string(c)
		}
		fmt.Fprintf(&sb, "  - %s: %s\n", t, strings.Join(names, ", "))
	}

	return sb.String()
}

// chartsForTask returns the ranked chart types for a task, defaulting to the
// exploration list for unknown tasks.
func chartsForTask(t core.TaskType) []core.ChartType {
	if charts, ok := taskCharts[t]; ok {
		return charts
	}
	return taskCharts[core.TaskExploration]
}
