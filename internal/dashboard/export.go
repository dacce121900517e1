package dashboard

import (
	"fmt"
	"image/color"
	"net/http"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/chalkline-data/performance.report/internal/httputil"
)

// handleChartPNG renders a dimension's current chart as a PNG download,
// for dropping into slides or reports. The same filters apply as the
// live page; an empty subset is a 404 rather than a blank image.
func (ws *WebServer) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	sess, ok := ws.resolveSession(w, r)
	if !ok {
		return
	}
	file := r.PathValue("file")
	dimension, ok := chartDimension(file)
	if !ok {
		httputil.NotFound(w, fmt.Sprintf("no export %q", file))
		return
	}
	dim, err := ws.sessions.Registry().Lookup(dimension)
	if err != nil {
		httputil.NotFound(w, fmt.Sprintf("no chart for dimension %q", dimension))
		return
	}

	view, _, err := ws.comp.Chart(sess, dimension)
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to compute chart: %v", err))
		return
	}
	if view.NoData {
		httputil.NotFound(w, fmt.Sprintf("no rows match the current filters for %q", dimension))
		return
	}

	p := plot.New()
	p.Title.Text = view.Label
	p.Y.Label.Text = metricLabel(dim)

	vals := make(plotter.Values, len(view.Records))
	labels := make([]string, len(view.Records))
	for i, rec := range view.Records {
		vals[i] = rec.Value
		labels[i] = rec.Category
	}

	bars, err := plotter.NewBarChart(vals, vg.Points(28))
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to build chart: %v", err))
		return
	}
	bars.LineStyle.Width = vg.Length(0)
	bars.Color = color.RGBA{R: 0x34, G: 0x98, B: 0xdb, A: 255}
	p.Add(bars)
	p.NominalX(labels...)

	wt, err := p.WriterTo(8*vg.Inch, 4*vg.Inch, "png")
	if err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render png: %v", err))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file))
	_, _ = wt.WriteTo(w)
}
