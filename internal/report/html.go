package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/pathtrack/internal/metrics"
)

// RenderHTML writes an interactive page with the plan-view scatter and the
// error profile line chart.
func RenderHTML(w io.Writer, samples []r3.Vec, series *metrics.Series, best []float64) error {
	page := components.NewPage()
	page.PageTitle = "Path tracking run"
	page.AddCharts(planChart(samples, series), errorChart(best))

	if err := page.Render(w); err != nil {
		return fmt.Errorf("render html report: %w", err)
	}
	return nil
}

func planChart(samples []r3.Vec, series *metrics.Series) *charts.Scatter {
	n := 0
	if series != nil {
		n = series.Len()
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "700px"}),
		charts.WithTitleOpts(opts.Title{Title: "Path vs agent", Subtitle: fmt.Sprintf("samples=%d captures=%d", len(samples), n)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "X (m)", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Y (m)", NameLocation: "middle", NameGap: 30}),
	)
	scatter.AddSeries("path", scatterData(samples), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
	if n > 0 {
		scatter.AddSeries("agent", scatterData(series.Position), charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 6}))
	}
	return scatter
}

func errorChart(best []float64) *charts.Line {
	x := make([]int, len(best))
	y := make([]opts.LineData, len(best))
	for i, d := range best {
		x[i] = i
		y[i] = opts.LineData{Value: d}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Best tracking error", Subtitle: fmt.Sprintf("samples=%d", len(best))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Sample"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Distance (m)"}),
	)
	line.SetXAxis(x).AddSeries("best distance", y)
	return line
}

func scatterData(vs []r3.Vec) []opts.ScatterData {
	data := make([]opts.ScatterData, len(vs))
	for i, v := range vs {
		data[i] = opts.ScatterData{Value: []interface{}{v.X, v.Y}}
	}
	return data
}
