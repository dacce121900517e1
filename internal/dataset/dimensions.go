package dataset

import (
	"fmt"

	"github.com/chalkline-data/performance.report/internal/config"
	"github.com/chalkline-data/performance.report/internal/crossfilter"
)

// Dimension names used in interaction payloads and chart URLs.
const (
	DimGrade      = "grade"
	DimAssessment = "assessment"
	DimSubject    = "subject"
	DimQuarter    = "quarter"
)

// Dimensions declares the dashboard's filterable facets over a table:
// grade level (unique students per level), the fixed assessment scale
// (row counts), subject (mean score) and quarter (mean score over the
// quarters present in the data). The quarter dimension is omitted when
// the table carries no dated rows, since an ordinal dimension needs a
// category order.
func Dimensions(t *Table) []crossfilter.Dimension {
	dims := []crossfilter.Dimension{
		{
			Name:        DimGrade,
			Label:       "Grade Level",
			SourceField: FieldGradeLevel,
			Kind:        crossfilter.KindNominal,
			Agg:         crossfilter.DistinctCountOf(FieldStudentID),
		},
		{
			Name:        DimAssessment,
			Label:       "Assessment Grade",
			SourceField: FieldAssessmentGrade,
			Kind:        crossfilter.KindOrdinal,
			Categories:  config.GradeOrder(),
			Agg:         crossfilter.Count(),
		},
		{
			Name:        DimSubject,
			Label:       "Subject",
			SourceField: FieldSubjectName,
			Kind:        crossfilter.KindNominal,
			Agg:         crossfilter.MeanOf(FieldScore),
		},
	}
	if quarters := t.Quarters(); len(quarters) > 0 {
		dims = append(dims, crossfilter.Dimension{
			Name:        DimQuarter,
			Label:       "Quarter",
			SourceField: FieldYearQuarter,
			Kind:        crossfilter.KindOrdinal,
			Categories:  quarters,
			Agg:         crossfilter.MeanOf(FieldScore),
		})
	}
	return dims
}

// NewRegistry builds the engine registry for a table.
func NewRegistry(t *Table) (*crossfilter.Registry, error) {
	reg, err := crossfilter.NewRegistry(Dimensions(t))
	if err != nil {
		return nil, fmt.Errorf("failed to build dimension registry: %w", err)
	}
	return reg, nil
}
