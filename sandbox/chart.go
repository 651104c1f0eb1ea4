package sandbox

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/skyviz/vizflow/core"
)

// Factory is the "charts" root namespace bound into the interpreter. Method
// names appear lowercased in script code (charts.line(), charts.bar(), ...)
// via the runtime's field name mapper.
type Factory struct{}

// Line starts a line chart builder.
func (Factory) Line() *Chart { return newChart(core.ChartLine) }

// Bar starts a bar chart builder.
func (Factory) Bar() *Chart { return newChart(core.ChartBar) }

// Pie starts a pie chart builder.
func (Factory) Pie() *Chart { return newChart(core.ChartPie) }

// Scatter starts a scatter chart builder.
func (Factory) Scatter() *Chart { return newChart(core.ChartScatter) }

// Heatmap starts a heatmap chart builder.
func (Factory) Heatmap() *Chart { return newChart(core.ChartHeatmap) }

type seriesData struct {
	name   string
	values []any
}

// Chart is the script-facing chart builder. Every method returns the
// receiver so script code can chain calls. Rendering happens on the Go side
// after execution; script code never touches the renderer.
type Chart struct {
	kind       core.ChartType
	titleText  string
	subText    string
	themeName  string
	xAxis      []any
	yAxis      []any
	series     []seriesData
	showLabels bool
}

func newChart(kind core.ChartType) *Chart { return &Chart{kind: kind} }

// Kind returns the chart family name.
func (c *Chart) Kind() string { return string(c.kind) }

// Title sets the chart title.
func (c *Chart) Title(s string) *Chart { c.titleText = s; return c }

// Subtitle sets the chart subtitle.
func (c *Chart) Subtitle(s string) *Chart { c.subText = s; return c }

// Theme selects a rendering theme by name.
func (c *Chart) Theme(s string) *Chart { c.themeName = s; return c }

// X sets the x-axis category values.
func (c *Chart) X(values []any) *Chart { c.xAxis = values; return c }

// Y sets the y-axis category values (heatmaps only; ignored elsewhere).
func (c *Chart) Y(values []any) *Chart { c.yAxis = values; return c }

// Series appends one named data series.
func (c *Chart) Series(name string, values []any) *Chart {
	c.series = append(c.series, seriesData{name: name, values: values})
	return c
}

// Label toggles on-point value labels.
func (c *Chart) Label(show bool) *Chart { c.showLabels = show; return c }

type renderable interface {
	Render(w io.Writer) error
}

// render materializes the builder into a go-echarts chart and writes the
// embeddable HTML representation.
func (c *Chart) render(w io.Writer) error {
	if len(c.series) == 0 {
		return fmt.Errorf("empty chart: no data series bound")
	}

	var chart renderable
	switch c.kind {
	case core.ChartLine:
		chart = c.buildLine()
	case core.ChartBar:
		chart = c.buildBar()
	case core.ChartPie:
		chart = c.buildPie()
	case core.ChartScatter:
		chart = c.buildScatter()
	case core.ChartHeatmap:
		chart = c.buildHeatmap()
	default:
		return fmt.Errorf("unsupported chart type %q", c.kind)
	}
	return chart.Render(w)
}

func (c *Chart) globalOpts() []charts.GlobalOpts {
	out := []charts.GlobalOpts{
		charts.WithTitleOpts(opts.Title{Title: c.titleText, Subtitle: c.subText}),
	}
	if c.themeName != "" {
		out = append(out, charts.WithInitializationOpts(opts.Initialization{Theme: c.themeName}))
	}
	return out
}

func (c *Chart) buildLine() renderable {
	line := charts.NewLine()
	line.SetGlobalOptions(c.globalOpts()...)
	line.SetXAxis(toStrings(c.xAxis))
	for _, s := range c.series {
		data := make([]opts.LineData, len(s.values))
		for i, v := range s.values {
			data[i] = opts.LineData{Value: toFloat(v)}
		}
		line.AddSeries(s.name, data)
	}
	if c.showLabels {
		line.SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}))
	}
	return line
}

func (c *Chart) buildBar() renderable {
	bar := charts.NewBar()
	bar.SetGlobalOptions(c.globalOpts()...)
	bar.SetXAxis(toStrings(c.xAxis))
	for _, s := range c.series {
		data := make([]opts.BarData, len(s.values))
		for i, v := range s.values {
			data[i] = opts.BarData{Value: toFloat(v)}
		}
		bar.AddSeries(s.name, data)
	}
	if c.showLabels {
		bar.SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}))
	}
	return bar
}

// buildPie zips x values (slice names) with the first series' values.
func (c *Chart) buildPie() renderable {
	pie := charts.NewPie()
	pie.SetGlobalOptions(c.globalOpts()...)
	names := toStrings(c.xAxis)
	s := c.series[0]
	data := make([]opts.PieData, len(s.values))
	for i, v := range s.values {
		name := fmt.Sprintf("item %d", i+1)
		if i < len(names) {
			name = names[i]
		}
		data[i] = opts.PieData{Name: name, Value: toFloat(v)}
	}
	pie.AddSeries(s.name, data)
	if c.showLabels {
		pie.SetSeriesOptions(charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}))
	}
	return pie
}

func (c *Chart) buildScatter() renderable {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(c.globalOpts()...)
	scatter.SetXAxis(toStrings(c.xAxis))
	for _, s := range c.series {
		data := make([]opts.ScatterData, len(s.values))
		for i, v := range s.values {
			data[i] = opts.ScatterData{Value: toFloat(v)}
		}
		scatter.AddSeries(s.name, data)
	}
	return scatter
}

// buildHeatmap expects series values shaped [x, y, value].
func (c *Chart) buildHeatmap() renderable {
	hm := charts.NewHeatMap()
	global := c.globalOpts()
	global = append(global, charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: c.yAxis}))
	hm.SetGlobalOptions(global...)
	hm.SetXAxis(toStrings(c.xAxis))
	for _, s := range c.series {
		data := make([]opts.HeatMapData, len(s.values))
		for i, v := range s.values {
			data[i] = opts.HeatMapData{Value: v}
		}
		hm.AddSeries(s.name, data)
	}
	return hm
}

func toStrings(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprint(v)
	}
	return out
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	case int:
		return float64(n)
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	default:
		return 0
	}
}
