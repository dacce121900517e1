package dataset

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/chalkline-data/performance.report/internal/config"
	"github.com/chalkline-data/performance.report/internal/fsutil"
)

func sampleRows() []Row {
	return []Row{
		{
			StudentID: 1001, StudentName: "Student 1001", GradeLevel: "9",
			SubjectName: "Math", Date: time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC),
			Score: 91.5, Weight: 1,
		},
		{
			StudentID: 1002, StudentName: "Student 1002", GradeLevel: "10",
			SubjectName: "Science", Date: time.Date(2023, 7, 4, 0, 0, 0, 0, time.UTC),
			Score: 58, Weight: 1,
		},
		{
			StudentID: 1001, StudentName: "Student 1001", GradeLevel: "9",
			SubjectName: "History", Date: time.Date(2023, 11, 20, 0, 0, 0, 0, time.UTC),
			Score: 43.25, Weight: 2,
		},
	}
}

func TestRowCategoryAccessors(t *testing.T) {
	r := sampleRows()[0]
	r.AssessmentGrade = "A"
	r.YearQuarter = "2023-Q1"
	r.YearMonth = "2023-02"

	tests := []struct {
		field string
		want  string
	}{
		{FieldStudentID, "1001"},
		{FieldStudentName, "Student 1001"},
		{FieldGradeLevel, "9"},
		{FieldSubjectName, "Math"},
		{FieldAssessmentGrade, "A"},
		{FieldYearQuarter, "2023-Q1"},
		{FieldYearMonth, "2023-02"},
	}
	for _, tt := range tests {
		got, ok := r.Category(tt.field)
		if !ok {
			t.Errorf("Category(%q) reported missing", tt.field)
		}
		if got != tt.want {
			t.Errorf("Category(%q) = %q, want %q", tt.field, got, tt.want)
		}
	}

	if _, ok := r.Category("Homeroom"); ok {
		t.Error("Category() reported a value for an unknown field")
	}
}

func TestRowNumericAccessors(t *testing.T) {
	r := sampleRows()[2]

	if v, ok := r.Numeric(FieldScore); !ok || v != 43.25 {
		t.Errorf("Numeric(Score) = %v, %v; want 43.25, true", v, ok)
	}
	if v, ok := r.Numeric(FieldWeight); !ok || v != 2 {
		t.Errorf("Numeric(Weight) = %v, %v; want 2, true", v, ok)
	}
	if _, ok := r.Numeric(FieldStudentName); ok {
		t.Error("Numeric() reported a value for a non-numeric field")
	}
}

func TestApplyScoring(t *testing.T) {
	cfg := config.EmptyScoringConfig() // defaults: gt cuts at 84/74/64/54
	rows := ApplyScoring(sampleRows(), cfg)

	want := []string{"A", "D", "F"}
	for i, w := range want {
		if rows[i].AssessmentGrade != w {
			t.Errorf("row %d: AssessmentGrade = %q, want %q (score %v)",
				i, rows[i].AssessmentGrade, w, rows[i].Score)
		}
	}
}

func TestApplyPeriods(t *testing.T) {
	rows := ApplyPeriods(sampleRows())

	if rows[0].YearQuarter != "2023-Q1" || rows[0].YearMonth != "2023-02" {
		t.Errorf("row 0 periods = %q/%q, want 2023-Q1/2023-02",
			rows[0].YearQuarter, rows[0].YearMonth)
	}
	if rows[1].YearQuarter != "2023-Q3" {
		t.Errorf("row 1 quarter = %q, want 2023-Q3", rows[1].YearQuarter)
	}
	if rows[2].YearQuarter != "2023-Q4" || rows[2].YearMonth != "2023-11" {
		t.Errorf("row 2 periods = %q/%q, want 2023-Q4/2023-11",
			rows[2].YearQuarter, rows[2].YearMonth)
	}

	// Zero dates are left unlabeled.
	blank := ApplyPeriods([]Row{{StudentID: 1}})
	if blank[0].YearQuarter != "" || blank[0].YearMonth != "" {
		t.Error("zero date should leave period labels blank")
	}
}

func TestNewTable(t *testing.T) {
	rows := ApplyPeriods(sampleRows())
	table := NewTable(rows)

	if table.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", table.Len())
	}
	if len(table.Records()) != 3 {
		t.Fatalf("Records() len = %d, want 3", len(table.Records()))
	}

	wantQuarters := []string{"2023-Q1", "2023-Q3", "2023-Q4"}
	if !reflect.DeepEqual(table.Quarters(), wantQuarters) {
		t.Errorf("Quarters() = %v, want %v", table.Quarters(), wantQuarters)
	}
	wantMonths := []string{"2023-02", "2023-07", "2023-11"}
	if !reflect.DeepEqual(table.Months(), wantMonths) {
		t.Errorf("Months() = %v, want %v", table.Months(), wantMonths)
	}

	// The table copies its input; later mutation of the source slice
	// must not show through.
	rows[0].SubjectName = "Tampered"
	if got, _ := table.Records()[0].Category(FieldSubjectName); got != "Math" {
		t.Errorf("table row changed after input mutation: %q", got)
	}
}

func TestTableRecordsMatchRows(t *testing.T) {
	table := NewTable(ApplyScoring(sampleRows(), config.EmptyScoringConfig()))

	for i, rec := range table.Records() {
		wantScore := table.Rows()[i].Score
		if got, ok := rec.Numeric(FieldScore); !ok || got != wantScore {
			t.Errorf("record %d score = %v, want %v", i, got, wantScore)
		}
	}
}

func TestCSVRoundTrip(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	rows := sampleRows()

	if err := WriteCSV(fs, "scores.csv", rows); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	got, err := ReadCSV(fs, "scores.csv")
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	if len(got) != len(rows) {
		t.Fatalf("round trip returned %d rows, want %d", len(got), len(rows))
	}
	for i := range rows {
		if got[i].StudentID != rows[i].StudentID {
			t.Errorf("row %d: StudentID = %d, want %d", i, got[i].StudentID, rows[i].StudentID)
		}
		if got[i].SubjectName != rows[i].SubjectName {
			t.Errorf("row %d: SubjectName = %q, want %q", i, got[i].SubjectName, rows[i].SubjectName)
		}
		if !got[i].Date.Equal(rows[i].Date) {
			t.Errorf("row %d: Date = %v, want %v", i, got[i].Date, rows[i].Date)
		}
		if got[i].Score != rows[i].Score {
			t.Errorf("row %d: Score = %v, want %v", i, got[i].Score, rows[i].Score)
		}
		if got[i].Weight != rows[i].Weight {
			t.Errorf("row %d: Weight = %v, want %v", i, got[i].Weight, rows[i].Weight)
		}
	}
}

func TestReadCSVWithoutWeightColumn(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	data := strings.Join([]string{
		"student_id,student_name,grade_level,subject,date,score",
		"1001,Student 1001,9,Math,2023-02-10,91.50",
		"1002,Student 1002,10,Science,2023-07-04,58.00",
	}, "\n")
	if err := fs.WriteFile("scores.csv", []byte(data), 0644); err != nil {
		t.Fatalf("seeding file: %v", err)
	}

	rows, err := ReadCSV(fs, "scores.csv")
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	for i, r := range rows {
		if r.Weight != 1 {
			t.Errorf("row %d: Weight = %v, want default 1", i, r.Weight)
		}
	}
}

func TestReadCSVHeaderReordered(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	data := strings.Join([]string{
		"score,subject,student_name,student_id,grade_level,date",
		"77.5,English,Student 1005,1005,11,2023-05-01",
	}, "\n")
	if err := fs.WriteFile("scores.csv", []byte(data), 0644); err != nil {
		t.Fatalf("seeding file: %v", err)
	}

	rows, err := ReadCSV(fs, "scores.csv")
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if rows[0].StudentID != 1005 || rows[0].Score != 77.5 || rows[0].SubjectName != "English" {
		t.Errorf("reordered header misparsed: %+v", rows[0])
	}
}

func TestReadCSVErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			"missing required column",
			"student_id,student_name,grade_level,subject,date\n1001,S,9,Math,2023-01-01",
		},
		{
			"bad student id",
			"student_id,student_name,grade_level,subject,date,score\nxx,S,9,Math,2023-01-01,80",
		},
		{
			"bad date",
			"student_id,student_name,grade_level,subject,date,score\n1001,S,9,Math,01/02/2023,80",
		},
		{
			"bad score",
			"student_id,student_name,grade_level,subject,date,score\n1001,S,9,Math,2023-01-01,eighty",
		},
		{
			"bad weight",
			"student_id,student_name,grade_level,subject,date,score,weight\n1001,S,9,Math,2023-01-01,80,heavy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := fsutil.NewMemoryFileSystem()
			if err := fs.WriteFile("bad.csv", []byte(tt.data), 0644); err != nil {
				t.Fatalf("seeding file: %v", err)
			}
			if _, err := ReadCSV(fs, "bad.csv"); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestReadCSVMissingFile(t *testing.T) {
	fs := fsutil.NewMemoryFileSystem()
	if _, err := ReadCSV(fs, "absent.csv"); err == nil {
		t.Error("Expected error for missing file, got nil")
	}
}

func TestSynthesizeDeterministic(t *testing.T) {
	a := Synthesize(100, 42)
	b := Synthesize(100, 42)
	if !reflect.DeepEqual(a, b) {
		t.Error("same seed should produce identical rows")
	}

	c := Synthesize(100, 43)
	if reflect.DeepEqual(a, c) {
		t.Error("different seeds should produce different rows")
	}
}

func TestSynthesizeShape(t *testing.T) {
	rows := Synthesize(500, 42)
	if len(rows) != 500 {
		t.Fatalf("got %d rows, want 500", len(rows))
	}

	subjects := map[string]bool{"Math": true, "Science": true, "English": true, "History": true}
	grades := map[string]bool{"9": true, "10": true, "11": true, "12": true}
	yearStart := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, r := range rows {
		if r.Score < 0 || r.Score > 100 {
			t.Errorf("row %d: score %v out of range", i, r.Score)
		}
		if r.StudentID < 1000 || r.StudentID > 2000 {
			t.Errorf("row %d: student id %d out of range", i, r.StudentID)
		}
		if !subjects[r.SubjectName] {
			t.Errorf("row %d: unexpected subject %q", i, r.SubjectName)
		}
		if !grades[r.GradeLevel] {
			t.Errorf("row %d: unexpected grade level %q", i, r.GradeLevel)
		}
		if r.Date.Before(yearStart) || !r.Date.Before(yearEnd) {
			t.Errorf("row %d: date %v outside the generation year", i, r.Date)
		}
		if r.Weight != 1 {
			t.Errorf("row %d: weight %v, want 1", i, r.Weight)
		}
	}
}
