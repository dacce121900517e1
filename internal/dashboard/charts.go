package dashboard

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/event"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/chalkline-data/performance.report/internal/crossfilter"
	"github.com/chalkline-data/performance.report/internal/dataset"
	"github.com/chalkline-data/performance.report/internal/httputil"
	"github.com/chalkline-data/performance.report/internal/session"
	"github.com/chalkline-data/performance.report/internal/timeutil"
)

// echartsAssetsPrefix is where chart pages load echarts.min.js from.
// Point it at a local mirror to run without internet access.
const echartsAssetsPrefix = "https://go-echarts.github.io/go-echarts-assets/assets/"

// gradePalette fixes each letter grade's color across every view, so a
// slice keeps its color when filters reshuffle the data.
var gradePalette = map[string]string{
	"A": "#2ecc71",
	"B": "#3498db",
	"C": "#f1c40f",
	"D": "#e67e22",
	"F": "#e74c3c",
}

// handleChartPage renders one dimension's chart as a standalone HTML
// page, meant to be framed by the shell. The chart's own filter is
// excluded, so every selectable category stays visible; a selected
// quarter renders its month breakdown instead when drill-down is on.
func (ws *WebServer) handleChartPage(w http.ResponseWriter, r *http.Request) {
	sess, ok := ws.resolveSession(w, r)
	if !ok {
		return
	}
	dimension := r.PathValue("dimension")
	dim, err := ws.sessions.Registry().Lookup(dimension)
	if err != nil {
		httputil.WriteJSONError(w, http.StatusNotFound, fmt.Sprintf("no chart for dimension %q", dimension))
		return
	}

	view, version, err := ws.comp.Chart(sess, dimension)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to compute chart: %v", err))
		return
	}
	if view.NoData {
		ws.renderNoData(w, view.Label)
		return
	}

	if ws.cfg.GetEnableDrilldown() && dim.SourceField == dataset.FieldYearQuarter && view.Selected != "" {
		ws.renderQuarterDrilldown(w, sess, dim, view, version)
		return
	}

	switch dim.SourceField {
	case dataset.FieldGradeLevel, dataset.FieldAssessmentGrade:
		ws.writeChart(w, donutChart(view, version, clickListener(dim.Name)))
	default:
		kpis, _ := ws.comp.KPIs(sess)
		ws.writeChart(w, barChart(dim, view, version, kpis, clickListener(dim.Name)))
	}
}

// renderQuarterDrilldown charts the selected quarter's months over the
// fully-filtered subset: months in chronological order, zero-filled,
// aggregated the same way the quarter dimension is.
func (ws *WebServer) renderQuarterDrilldown(w http.ResponseWriter, sess *session.Session, dim crossfilter.Dimension, view session.ChartView, version uint64) {
	months, err := timeutil.MonthsOfQuarter(view.Selected)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to expand quarter %q: %v", view.Selected, err))
		return
	}
	monthDim := crossfilter.Dimension{
		Name:        dim.Name,
		Label:       fmt.Sprintf("%s by month", view.Selected),
		SourceField: dataset.FieldYearMonth,
		Kind:        crossfilter.KindOrdinal,
		Categories:  months,
		Agg:         dim.Agg,
	}

	subset, _ := ws.comp.Subset(sess)
	data := crossfilter.Aggregate(subset, monthDim)
	if data.NoData {
		ws.renderNoData(w, monthDim.Label)
		return
	}

	records := make([]crossfilter.AggregateRecord, len(data.Records))
	for i, rec := range data.Records {
		records[i] = crossfilter.AggregateRecord{
			Category: timeutil.MonthName(rec.Category),
			Value:    rec.Value,
		}
	}
	monthView := session.ChartView{
		Dimension: view.Dimension,
		Label:     monthDim.Label,
		Kind:      crossfilter.KindOrdinal,
		Records:   records,
	}

	kpis, _ := ws.comp.KPIs(sess)
	ws.writeChart(w, barChart(monthDim, monthView, version, kpis, drilldownListener(dim.Name, view.Selected)))
}

// donutChart renders categorical counts as a donut. Letter grades get
// their fixed palette; everything else keeps the theme's colors.
func donutChart(view session.ChartView, version uint64, onClick event.Listener) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:  view.Label,
			Theme:      "dark",
			Width:      "100%",
			Height:     "360px",
			AssetsHost: echartsAssetsPrefix,
		}),
		charts.WithTitleOpts(opts.Title{Title: view.Label, Subtitle: chartSubtitle(view, version)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithEventListeners(onClick),
	)

	data := make([]opts.PieData, 0, len(view.Records))
	for _, rec := range view.Records {
		d := opts.PieData{Name: rec.Category, Value: rec.Value}
		style := &opts.ItemStyle{Opacity: opts.Float(categoryOpacity(view, rec.Category))}
		if color, ok := gradePalette[rec.Category]; ok {
			style.Color = color
		}
		d.ItemStyle = style
		data = append(data, d)
	}

	pie.AddSeries(view.Dimension, data,
		charts.WithPieChartOpts(opts.PieChart{Radius: []string{"45%", "72%"}}),
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}),
	)
	return pie
}

// barChart renders per-category metrics as vertical bars. Mean-valued
// charts carry a dashed markLine at the fully-filtered overall mean.
func barChart(dim crossfilter.Dimension, view session.ChartView, version uint64, overall crossfilter.KPISnapshot, onClick event.Listener) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle:  view.Label,
			Theme:      "dark",
			Width:      "100%",
			Height:     "360px",
			AssetsHost: echartsAssetsPrefix,
		}),
		charts.WithTitleOpts(opts.Title{Title: view.Label, Subtitle: chartSubtitle(view, version)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Name: metricLabel(dim)}),
		charts.WithEventListeners(onClick),
	)

	x := make([]string, 0, len(view.Records))
	y := make([]opts.BarData, 0, len(view.Records))
	for _, rec := range view.Records {
		x = append(x, rec.Category)
		style := &opts.ItemStyle{Opacity: opts.Float(categoryOpacity(view, rec.Category))}
		if color, ok := gradePalette[rec.Category]; ok {
			style.Color = color
		}
		y = append(y, opts.BarData{Value: rec.Value, ItemStyle: style})
	}

	series := []charts.SeriesOpts{
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
	}
	if dim.Agg.Kind == crossfilter.AggMean && !overall.NoData {
		series = append(series,
			charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{Name: "overall mean", YAxis: overall.Mean}),
			charts.WithMarkLineStyleOpts(opts.MarkLineStyle{
				LineStyle: &opts.LineStyle{Type: "dashed", Color: "#9a94c8"},
			}),
		)
	}

	bar.SetXAxis(x).AddSeries(view.Dimension, y, series...)
	return bar
}

// clickListener reports chart clicks to the parent shell, which relays
// them to the interactions API. The clicked slice or bar's name is the
// category to toggle.
func clickListener(dimension string) event.Listener {
	return event.Listener{
		EventName: "click",
		Handler: types.FuncStr(fmt.Sprintf(
			`function (params) { window.parent.postMessage({dimension: %q, category: params.name}, "*"); }`,
			dimension)),
	}
}

// drilldownListener posts the quarter that is already selected, so any
// click on the month breakdown toggles it off and returns the frame to
// the quarter view.
func drilldownListener(dimension, selected string) event.Listener {
	return event.Listener{
		EventName: "click",
		Handler: types.FuncStr(fmt.Sprintf(
			`function (params) { window.parent.postMessage({dimension: %q, category: %q}, "*"); }`,
			dimension, selected)),
	}
}

// categoryOpacity dims the categories outside the active selection so
// the clicked one stands out without leaving the chart.
func categoryOpacity(view session.ChartView, category string) float32 {
	if view.Selected == "" || view.Selected == category {
		return 1
	}
	return 0.45
}

// chartSubtitle carries the state version (and selection, if any) into
// the rendered page for debugging stale frames.
func chartSubtitle(view session.ChartView, version uint64) string {
	if view.Selected != "" {
		return fmt.Sprintf("selected=%s v=%d", view.Selected, version)
	}
	return fmt.Sprintf("v=%d", version)
}

// metricLabel names the measure a dimension aggregates, for axis labels.
func metricLabel(dim crossfilter.Dimension) string {
	switch dim.Agg.Kind {
	case crossfilter.AggDistinctCount:
		return "Students"
	case crossfilter.AggMean:
		return "Mean score"
	default:
		return "Scores"
	}
}

// noDataHTML replaces a chart when the filtered subset is empty; an
// empty chart would look like a render bug rather than a filter result.
const noDataHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
  body { margin: 0; display: flex; align-items: center; justify-content: center; height: 100vh; background: #100c2a; color: #9a94c8; font-family: sans-serif; font-size: 14px; }
</style>
</head>
<body><p>%s: no rows match the current filters</p></body>
</html>
`

func (ws *WebServer) renderNoData(w http.ResponseWriter, label string) {
	safeLabel := html.EscapeString(label)
	doc := fmt.Sprintf(noDataHTML, safeLabel, safeLabel)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(doc))
}

type renderable interface {
	Render(w io.Writer) error
}

func (ws *WebServer) writeChart(w http.ResponseWriter, chart renderable) {
	var buf bytes.Buffer
	if err := chart.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
