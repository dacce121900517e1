package db

import (
	"os"
	"testing"
	"time"

	"github.com/chalkline-data/performance.report/internal/dataset"
	"github.com/chalkline-data/performance.report/internal/testutil"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(testutil.TempDBPath(t))
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testScoreRows() []dataset.Row {
	return []dataset.Row{
		{
			StudentID:   1001,
			StudentName: "Ada Lovelace",
			GradeLevel:  "9",
			SubjectName: "Math",
			Date:        time.Date(2023, 2, 10, 0, 0, 0, 0, time.UTC),
			Score:       91.5,
			Weight:      1,
		},
		{
			StudentID:   1002,
			StudentName: "Grace Hopper",
			GradeLevel:  "10",
			SubjectName: "Science",
			Date:        time.Date(2023, 7, 4, 0, 0, 0, 0, time.UTC),
			Score:       58,
			Weight:      1,
		},
		{
			StudentID:   1001,
			StudentName: "Ada Lovelace",
			GradeLevel:  "9",
			SubjectName: "History",
			Date:        time.Date(2023, 11, 20, 0, 0, 0, 0, time.UTC),
			Score:       43.25,
			Weight:      2,
		},
	}
}

// TestPragmasApplied verifies that essential PRAGMAs are set on all databases
func TestPragmasApplied(t *testing.T) {
	testDB := t.TempDir() + "/test_pragmas.db"
	defer os.Remove(testDB)

	db, err := New(testDB)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	// Verify journal_mode is WAL
	var journalMode string
	err = db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("Failed to query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("Expected journal_mode=wal, got %s", journalMode)
	}

	// Verify busy_timeout is 5000
	var busyTimeout int
	err = db.QueryRow("PRAGMA busy_timeout").Scan(&busyTimeout)
	if err != nil {
		t.Fatalf("Failed to query busy_timeout: %v", err)
	}
	if busyTimeout != 5000 {
		t.Errorf("Expected busy_timeout=5000, got %d", busyTimeout)
	}

	// Verify synchronous is NORMAL (1)
	var synchronous int
	err = db.QueryRow("PRAGMA synchronous").Scan(&synchronous)
	if err != nil {
		t.Fatalf("Failed to query synchronous: %v", err)
	}
	if synchronous != 1 { // 1 = NORMAL
		t.Errorf("Expected synchronous=1 (NORMAL), got %d", synchronous)
	}

	// Verify temp_store is MEMORY (2)
	var tempStore int
	err = db.QueryRow("PRAGMA temp_store").Scan(&tempStore)
	if err != nil {
		t.Fatalf("Failed to query temp_store: %v", err)
	}
	if tempStore != 2 { // 2 = MEMORY
		t.Errorf("Expected temp_store=2 (MEMORY), got %d", tempStore)
	}

	// Verify foreign_keys is enforced (1)
	var foreignKeys int
	err = db.QueryRow("PRAGMA foreign_keys").Scan(&foreignKeys)
	if err != nil {
		t.Fatalf("Failed to query foreign_keys: %v", err)
	}
	if foreignKeys != 1 {
		t.Errorf("Expected foreign_keys=1, got %d", foreignKeys)
	}
}

// TestPragmasAppliedToExistingDB verifies PRAGMAs are set when opening existing databases
func TestPragmasAppliedToExistingDB(t *testing.T) {
	testDB := t.TempDir() + "/test_pragmas_existing.db"
	defer os.Remove(testDB)

	// Create database
	db1, err := New(testDB)
	if err != nil {
		t.Fatalf("Failed to create database: %v", err)
	}
	db1.Close()

	// Reopen database - PRAGMAs should still be applied
	db2, err := Open(testDB)
	if err != nil {
		t.Fatalf("Failed to reopen database: %v", err)
	}
	defer db2.Close()

	// Verify journal_mode is still WAL
	var journalMode string
	err = db2.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("Failed to query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("Expected journal_mode=wal after reopening, got %s", journalMode)
	}
}

func TestNewRunsMigrations(t *testing.T) {
	db := newTestDB(t)

	migFS, err := MigrationsFS()
	if err != nil {
		t.Fatalf("Failed to get migrations filesystem: %v", err)
	}

	version, dirty, err := db.MigrateVersion(migFS)
	if err != nil {
		t.Fatalf("Failed to get migration version: %v", err)
	}
	if dirty {
		t.Error("Expected clean migration state")
	}

	latest, err := GetLatestMigrationVersion(migFS)
	if err != nil {
		t.Fatalf("Failed to get latest migration version: %v", err)
	}
	if version != latest {
		t.Errorf("Expected version %d after New, got %d", latest, version)
	}

	if err := db.CheckMigrations(migFS); err != nil {
		t.Errorf("Expected CheckMigrations to pass on fresh database: %v", err)
	}
}

func TestInsertScoresRoundTrip(t *testing.T) {
	db := newTestDB(t)
	rows := testScoreRows()

	if err := db.InsertScores(rows); err != nil {
		t.Fatalf("Failed to insert scores: %v", err)
	}

	got, err := db.WideRows()
	if err != nil {
		t.Fatalf("Failed to read rows back: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("Expected %d rows, got %d", len(rows), len(got))
	}

	wantQuarters := []string{"2023-Q1", "2023-Q3", "2023-Q4"}
	wantMonths := []string{"2023-02", "2023-07", "2023-11"}

	for i, want := range rows {
		r := got[i]
		if r.StudentID != want.StudentID {
			t.Errorf("row %d: student_id = %d, want %d", i, r.StudentID, want.StudentID)
		}
		if r.StudentName != want.StudentName {
			t.Errorf("row %d: student_name = %q, want %q", i, r.StudentName, want.StudentName)
		}
		if r.GradeLevel != want.GradeLevel {
			t.Errorf("row %d: grade_level = %q, want %q", i, r.GradeLevel, want.GradeLevel)
		}
		if r.SubjectName != want.SubjectName {
			t.Errorf("row %d: subject = %q, want %q", i, r.SubjectName, want.SubjectName)
		}
		if !r.Date.Equal(want.Date) {
			t.Errorf("row %d: date = %v, want %v", i, r.Date, want.Date)
		}
		if r.Score != want.Score {
			t.Errorf("row %d: score = %v, want %v", i, r.Score, want.Score)
		}
		if r.Weight != want.Weight {
			t.Errorf("row %d: weight = %v, want %v", i, r.Weight, want.Weight)
		}
		if r.YearQuarter != wantQuarters[i] {
			t.Errorf("row %d: year_quarter = %q, want %q", i, r.YearQuarter, wantQuarters[i])
		}
		if r.YearMonth != wantMonths[i] {
			t.Errorf("row %d: year_month = %q, want %q", i, r.YearMonth, wantMonths[i])
		}
		// Letter grades depend on the scoring config and are derived at
		// load time, never stored.
		if r.AssessmentGrade != "" {
			t.Errorf("row %d: assessment grade should not be stored, got %q", i, r.AssessmentGrade)
		}
	}
}

func TestInsertScoresSharedDimensions(t *testing.T) {
	db := newTestDB(t)

	if err := db.InsertScores(testScoreRows()); err != nil {
		t.Fatalf("Failed to insert scores: %v", err)
	}

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}
	if stats.Scores != 3 {
		t.Errorf("Expected 3 score rows, got %d", stats.Scores)
	}
	if stats.Students != 2 {
		t.Errorf("Expected 2 students, got %d", stats.Students)
	}
	if stats.Subjects != 3 {
		t.Errorf("Expected 3 subjects, got %d", stats.Subjects)
	}
	if stats.Dates != 3 {
		t.Errorf("Expected 3 dates, got %d", stats.Dates)
	}
}

func TestInsertScoresUpsertsStudent(t *testing.T) {
	db := newTestDB(t)
	rows := testScoreRows()

	if err := db.InsertScores(rows[:1]); err != nil {
		t.Fatalf("Failed to insert first batch: %v", err)
	}

	// Same student, updated details: the dimension row must follow.
	updated := rows[2]
	updated.StudentName = "Ada King"
	updated.GradeLevel = "10"
	if err := db.InsertScores([]dataset.Row{updated}); err != nil {
		t.Fatalf("Failed to insert second batch: %v", err)
	}

	got, err := db.WideRows()
	if err != nil {
		t.Fatalf("Failed to read rows back: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(got))
	}
	for i, r := range got {
		if r.StudentName != "Ada King" {
			t.Errorf("row %d: student_name = %q, want %q", i, r.StudentName, "Ada King")
		}
		if r.GradeLevel != "10" {
			t.Errorf("row %d: grade_level = %q, want %q", i, r.GradeLevel, "10")
		}
	}

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}
	if stats.Students != 1 {
		t.Errorf("Expected 1 student after upsert, got %d", stats.Students)
	}
}

func TestInsertScoresDefaultsWeight(t *testing.T) {
	db := newTestDB(t)

	row := testScoreRows()[0]
	row.Weight = 0
	if err := db.InsertScores([]dataset.Row{row}); err != nil {
		t.Fatalf("Failed to insert score: %v", err)
	}

	got, err := db.WideRows()
	if err != nil {
		t.Fatalf("Failed to read rows back: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(got))
	}
	if got[0].Weight != 1 {
		t.Errorf("Expected unweighted rows to default to weight 1, got %v", got[0].Weight)
	}
}

func TestInsertScoresEmpty(t *testing.T) {
	db := newTestDB(t)

	if err := db.InsertScores(nil); err != nil {
		t.Fatalf("Inserting no rows should succeed: %v", err)
	}

	stats, err := db.Stats()
	if err != nil {
		t.Fatalf("Failed to get stats: %v", err)
	}
	if stats.Scores != 0 {
		t.Errorf("Expected empty fact table, got %d rows", stats.Scores)
	}
}

func TestOpenBadPath(t *testing.T) {
	_, err := Open(t.TempDir() + "/missing/subdir/test.db")
	if err == nil {
		t.Fatal("Expected error opening database in missing directory")
	}
}
