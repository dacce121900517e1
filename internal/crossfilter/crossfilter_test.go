package crossfilter

import "testing"

// testRow is a map-backed Record for engine tests.
type testRow struct {
	cats map[string]string
	nums map[string]float64
}

func (r testRow) Category(field string) (string, bool) {
	v, ok := r.cats[field]
	return v, ok
}

func (r testRow) Numeric(field string) (float64, bool) {
	v, ok := r.nums[field]
	return v, ok
}

// scoreRow builds one row in the shape of the joined scores table.
func scoreRow(student, grade, subject, assessment string, score float64) Record {
	return testRow{
		cats: map[string]string{
			"StudentID":       student,
			"GradeLevel":      grade,
			"SubjectName":     subject,
			"AssessmentGrade": assessment,
		},
		nums: map[string]float64{
			"Score":  score,
			"Weight": 1,
		},
	}
}

// testRegistry mirrors the dashboard's dimension set: an ordinal
// assessment scale plus two nominal facets.
func testRegistry(t *testing.T) *Registry {
	t.Helper()
	reg, err := NewRegistry([]Dimension{
		{
			Name:        "assessment",
			Label:       "Assessment Grade",
			SourceField: "AssessmentGrade",
			Kind:        KindOrdinal,
			Categories:  []string{"A", "B", "C", "D", "F"},
			Agg:         Count(),
		},
		{
			Name:        "grade",
			Label:       "Grade Level",
			SourceField: "GradeLevel",
			Kind:        KindNominal,
			Agg:         DistinctCountOf("StudentID"),
		},
		{
			Name:        "subject",
			Label:       "Subject",
			SourceField: "SubjectName",
			Kind:        KindNominal,
			Agg:         MeanOf("Score"),
		},
	})
	if err != nil {
		t.Fatalf("building test registry: %v", err)
	}
	return reg
}

// threeRows is the canonical small dataset: one A, one D, one F.
func threeRows() []Record {
	return []Record{
		scoreRow("1001", "9", "Math", "A", 90),
		scoreRow("1002", "10", "Math", "D", 60),
		scoreRow("1003", "9", "Science", "F", 40),
	}
}

func testKPIParams() KPIParams {
	return KPIParams{
		ScoreField:    "Score",
		WeightField:   "Weight",
		PassThreshold: 55,
		PassInclusive: true,
		PerfectTarget: 100,
	}
}
