package dataset

import (
	"github.com/chalkline-data/performance.report/internal/config"
	"github.com/chalkline-data/performance.report/internal/crossfilter"
	"github.com/chalkline-data/performance.report/internal/timeutil"
)

// ApplyScoring fills each row's AssessmentGrade from its score using the
// configured grade cuts. Rows are updated in place; the slice is
// returned for chaining.
func ApplyScoring(rows []Row, cfg *config.ScoringConfig) []Row {
	for i := range rows {
		rows[i].AssessmentGrade = cfg.AssessmentGrade(rows[i].Score)
	}
	return rows
}

// ApplyPeriods fills each row's YearQuarter and YearMonth labels from
// its date. Rows with a zero date are left blank.
func ApplyPeriods(rows []Row) []Row {
	for i := range rows {
		if rows[i].Date.IsZero() {
			continue
		}
		rows[i].YearQuarter = timeutil.QuarterLabel(rows[i].Date)
		rows[i].YearMonth = timeutil.MonthLabel(rows[i].Date)
	}
	return rows
}

// ScoringKPIParams maps the scoring configuration onto the KPI reduction
// parameters. An empty weight field means the weighted average falls back
// to the plain mean.
func ScoringKPIParams(cfg *config.ScoringConfig) crossfilter.KPIParams {
	weightField := ""
	if cfg.GetUseWeights() {
		weightField = FieldWeight
	}
	return crossfilter.KPIParams{
		ScoreField:    FieldScore,
		WeightField:   weightField,
		PassThreshold: cfg.GetPassThreshold(),
		PassInclusive: cfg.GetPassComparison() == config.CompareGreaterOrEqual,
		PerfectTarget: cfg.GetPerfectTarget(),
	}
}
