// Package dataset holds the joined, immutable score table the engine
// filters and aggregates: one row per recorded score, already denormalized
// with its student, subject and period attributes. Rows implement the
// engine's record interface so the table can be handed to the filter
// pipeline without copying.
package dataset

import (
	"strconv"
	"time"
)

// Field names used by dimension declarations and record accessors.
const (
	FieldStudentID       = "StudentID"
	FieldStudentName     = "StudentName"
	FieldGradeLevel      = "GradeLevel"
	FieldSubjectName     = "SubjectName"
	FieldAssessmentGrade = "AssessmentGrade"
	FieldYearQuarter     = "YearQuarter"
	FieldYearMonth       = "YearMonth"
	FieldScore           = "Score"
	FieldWeight          = "Weight"
)

// Row is one denormalized score record.
type Row struct {
	StudentID   int
	StudentName string
	GradeLevel  string
	SubjectName string
	Date        time.Time
	Score       float64
	Weight      float64

	// Derived fields, populated by ApplyScoring and ApplyPeriods.
	AssessmentGrade string
	YearQuarter     string
	YearMonth       string
}

// Category returns the row's value for a categorical field. Student IDs
// are exposed categorically so distinct-count aggregations can group on
// them.
func (r Row) Category(field string) (string, bool) {
	switch field {
	case FieldStudentID:
		return strconv.Itoa(r.StudentID), true
	case FieldStudentName:
		return r.StudentName, true
	case FieldGradeLevel:
		return r.GradeLevel, true
	case FieldSubjectName:
		return r.SubjectName, true
	case FieldAssessmentGrade:
		return r.AssessmentGrade, true
	case FieldYearQuarter:
		return r.YearQuarter, true
	case FieldYearMonth:
		return r.YearMonth, true
	default:
		return "", false
	}
}

// Numeric returns the row's value for a numeric field.
func (r Row) Numeric(field string) (float64, bool) {
	switch field {
	case FieldScore:
		return r.Score, true
	case FieldWeight:
		return r.Weight, true
	default:
		return 0, false
	}
}
