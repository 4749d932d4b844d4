package render

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"vmreport/internal/core"
)

// maxChartSeries caps the number of user lines on the chart so a large
// tenant list stays readable. Rows arrive sorted by total descending,
// so the cap keeps the heaviest users.
const maxChartSeries = 10

// BuildChart builds a line chart of per-user monthly instance counts
// over the report window.
func BuildChart(payload core.ReportPayload) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: "Instances created per user",
			Width:     "1100px",
			Height:    "550px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Instances created per user",
			Subtitle: windowSubtitle(payload.Window),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Month"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Instances"}),
	)
	line.SetXAxis(payload.Window)

	rows := payload.Rows
	if len(rows) > maxChartSeries {
		rows = rows[:maxChartSeries]
	}

	for _, row := range rows {
		data := make([]opts.LineData, len(row.Months))
		for i, entry := range row.Months {
			data[i] = opts.LineData{Value: entry.Count}
		}
		line.AddSeries(row.Username, data,
			charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}),
		)
	}

	return line
}

// WriteChart renders the chart page HTML to w.
func WriteChart(w io.Writer, payload core.ReportPayload) error {
	if err := BuildChart(payload).Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func windowSubtitle(window []string) string {
	if len(window) == 0 {
		return ""
	}
	return fmt.Sprintf("%s to %s", window[0], window[len(window)-1])
}
