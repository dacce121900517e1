package api

import (
	"net/http"

	"github.com/chalkline-data/performance.report/internal/crossfilter"
	"github.com/chalkline-data/performance.report/internal/httputil"
	"github.com/chalkline-data/performance.report/internal/version"
)

func (s *Server) showBoard(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.resolveSession(w, r)
	if !ok {
		return
	}

	board, err := s.comp.Board(sess)
	if err != nil {
		s.writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, board)
}

func (s *Server) showChart(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.resolveSession(w, r)
	if !ok {
		return
	}

	chart, chartVersion, err := s.comp.Chart(sess, r.PathValue("dimension"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"version": chartVersion,
		"chart":   chart,
	})
}

func (s *Server) showKPIs(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.resolveSession(w, r)
	if !ok {
		return
	}

	kpis, kpiVersion := s.comp.KPIs(sess)
	httputil.WriteJSONOK(w, map[string]interface{}{
		"version": kpiVersion,
		"kpis":    kpis,
		"display": s.kpiDisplay(kpis),
	})
}

// kpiDisplay renders the KPI values with the configured precision. An
// empty subset renders the configured no-data markers, never NaN.
func (s *Server) kpiDisplay(k crossfilter.KPISnapshot) map[string]string {
	if k.NoData {
		return map[string]string{
			"mean":          s.cfg.EmptyScoreDisplay(),
			"weighted_mean": s.cfg.EmptyScoreDisplay(),
			"pass_rate":     s.cfg.EmptyRateDisplay(),
			"perfect_rate":  s.cfg.EmptyRateDisplay(),
		}
	}
	return map[string]string{
		"mean":          s.cfg.FormatScore(k.Mean),
		"weighted_mean": s.cfg.FormatScore(k.WeightedMean),
		"pass_rate":     s.cfg.FormatRate(k.PassRate),
		"perfect_rate":  s.cfg.FormatRate(k.PerfectRate),
	}
}

func (s *Server) showStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.resolveSession(w, r)
	if !ok {
		return
	}

	status, statusVersion := s.comp.Status(sess)
	httputil.WriteJSONOK(w, map[string]interface{}{
		"version": statusVersion,
		"status":  status,
	})
}

func (s *Server) showDimensions(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]interface{}{
		"dimensions": s.sessions.Registry().Dimensions(),
	})
}

func (s *Server) showConfig(w http.ResponseWriter, r *http.Request) {
	cfg := map[string]interface{}{
		"grade_cuts": map[string]float64{
			"A": s.cfg.GetGradeCutA(),
			"B": s.cfg.GetGradeCutB(),
			"C": s.cfg.GetGradeCutC(),
			"D": s.cfg.GetGradeCutD(),
		},
		"grade_comparison": s.cfg.GetGradeComparison(),
		"pass_threshold":   s.cfg.GetPassThreshold(),
		"pass_comparison":  s.cfg.GetPassComparison(),
		"perfect_target":   s.cfg.GetPerfectTarget(),
		"score_decimals":   s.cfg.GetScoreDecimals(),
		"rate_decimals":    s.cfg.GetRateDecimals(),
		"empty_display":    s.cfg.GetEmptyDisplay(),
		"use_weights":      s.cfg.GetUseWeights(),
	}

	httputil.WriteJSONOK(w, cfg)
}

func (s *Server) showVersion(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]string{
		"version":    version.Version,
		"git_sha":    version.GitSHA,
		"build_time": version.BuildTime,
	})
}
