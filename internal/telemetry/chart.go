package telemetry

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

type series struct {
	name  string
	value func(Record) float64
}

func lineChart(title string, ticks []int, records []Record, ss ...series) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "1200px", Height: "360px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "10%"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "tick", NameLocation: "middle", NameGap: 25}),
	)
	line.SetXAxis(ticks)
	for _, s := range ss {
		data := make([]opts.LineData, len(records))
		for i, r := range records {
			data[i] = opts.LineData{Value: s.value(r)}
		}
		line.AddSeries(s.name, data, charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}))
	}
	return line
}

func trajectoryChart(records []Record) *charts.Scatter {
	data := make([]opts.ScatterData, len(records))
	for i, r := range records {
		data[i] = opts.ScatterData{Value: []interface{}{r.X, r.Y, r.Velocity}}
	}
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "900px"}),
		charts.WithTitleOpts(opts.Title{Title: "Trajectory", Subtitle: fmt.Sprintf("points=%d, colour is velocity", len(records))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x", NameLocation: "middle", NameGap: 25, Min: "dataMin", Max: "dataMax"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "y", NameLocation: "middle", NameGap: 30, Min: "dataMin", Max: "dataMax"}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Dimension:  "2",
			Min:        0,
			Max:        float32(maxVelocity(records)),
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#3e4989", "#26828e", "#35b779", "#fde725"}},
		}),
	)
	scatter.AddSeries("position", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 3}))
	return scatter
}

func maxVelocity(records []Record) float64 {
	m := 1.0
	for _, r := range records {
		m = max(m, r.Velocity)
	}
	return m
}

// Render writes an HTML page charting a run: trajectory, speeds, commands, curvature
// terms and penalties.
func Render(w io.Writer, title string, records []Record) error {
	ticks := make([]int, len(records))
	for i := range ticks {
		ticks[i] = i
	}

	page := components.NewPage()
	page.PageTitle = title
	page.AddCharts(
		trajectoryChart(records),
		lineChart("Speed", ticks, records,
			series{"velocity", func(r Record) float64 { return r.Velocity }},
			series{"target_velocity", func(r Record) float64 { return r.TargetVelocity }},
		),
		lineChart("Commands", ticks, records,
			series{"throttle", func(r Record) float64 { return r.Throttle }},
			series{"steer", func(r Record) float64 { return r.Steer }},
		),
		lineChart("Curvature", ticks, records,
			series{"upcoming_angle", func(r Record) float64 { return r.UpcomingAngle }},
			series{"max_angle", func(r Record) float64 { return r.MaxAngle }},
			series{"breakmultiplier", func(r Record) float64 { return r.BreakMultiplier }},
		),
		lineChart("Penalties", ticks, records,
			series{"free_track_speed", func(r Record) float64 { return r.FreeTrackSpeed }},
			series{"break_reduction", func(r Record) float64 { return r.BreakReduction }},
			series{"path_dis", func(r Record) float64 { return r.PathDis }},
		),
	)
	if err := page.Render(w); err != nil {
		return fmt.Errorf("render telemetry charts: %w", err)
	}
	return nil
}
