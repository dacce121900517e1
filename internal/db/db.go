// Package db stores score records in a SQLite star schema: three lookup
// dimensions (students, subjects, dates) and one fact table, joined back
// into the wide in-memory table the engine filters. Schema changes go
// through versioned migrations, never inline DDL.
package db

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/chalkline-data/performance.report/internal/dataset"
	"github.com/chalkline-data/performance.report/internal/timeutil"
)

// DB wraps the SQLite handle with schema-aware operations.
type DB struct {
	*sql.DB
	path string
}

// dateLayout is the canonical date encoding in dim_dates.
const dateLayout = "2006-01-02"

// Open opens the database and applies connection pragmas, without
// touching the schema. Use New to open and migrate in one step.
func Open(path string) (*DB, error) {
	handle, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := applyPragmas(handle); err != nil {
		handle.Close()
		return nil, err
	}
	return &DB{DB: handle, path: path}, nil
}

// New opens the database and migrates it to the latest schema version.
func New(path string) (*DB, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	migFS, err := getMigrationsFS()
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := db.MigrateUp(migFS); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// applyPragmas sets the connection pragmas every handle needs: WAL for
// concurrent readers, a busy timeout so writers queue instead of
// failing, and foreign keys on because the star schema relies on them.
func applyPragmas(handle *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := handle.Exec(p); err != nil {
			return fmt.Errorf("failed to apply %s: %w", p, err)
		}
	}
	return nil
}

// InsertScores loads rows into the star schema in one transaction:
// dimension rows are upserted, fact rows reference them by lookup. A
// failed load leaves the database unchanged.
func (db *DB) InsertScores(rows []dataset.Row) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	insertStudent, err := tx.Prepare(`
		INSERT INTO dim_students (student_id, student_name, grade_level)
		VALUES (?, ?, ?)
		ON CONFLICT(student_id) DO UPDATE SET
			student_name = excluded.student_name,
			grade_level = excluded.grade_level`)
	if err != nil {
		return fmt.Errorf("failed to prepare student insert: %w", err)
	}
	defer insertStudent.Close()

	insertSubject, err := tx.Prepare(
		`INSERT OR IGNORE INTO dim_subjects (subject_name) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare subject insert: %w", err)
	}
	defer insertSubject.Close()

	insertDate, err := tx.Prepare(
		`INSERT OR IGNORE INTO dim_dates (date, year_quarter, year_month) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare date insert: %w", err)
	}
	defer insertDate.Close()

	insertFact, err := tx.Prepare(`
		INSERT INTO fact_scores (student_id, subject_id, date_id, score, weight)
		VALUES (?,
			(SELECT subject_id FROM dim_subjects WHERE subject_name = ?),
			(SELECT date_id FROM dim_dates WHERE date = ?),
			?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare fact insert: %w", err)
	}
	defer insertFact.Close()

	for i, r := range rows {
		date := r.Date.Format(dateLayout)
		if _, err := insertStudent.Exec(r.StudentID, r.StudentName, r.GradeLevel); err != nil {
			return fmt.Errorf("row %d: failed to upsert student: %w", i, err)
		}
		if _, err := insertSubject.Exec(r.SubjectName); err != nil {
			return fmt.Errorf("row %d: failed to upsert subject: %w", i, err)
		}
		if _, err := insertDate.Exec(date, timeutil.QuarterLabel(r.Date), timeutil.MonthLabel(r.Date)); err != nil {
			return fmt.Errorf("row %d: failed to upsert date: %w", i, err)
		}
		weight := r.Weight
		if weight == 0 {
			weight = 1
		}
		if _, err := insertFact.Exec(r.StudentID, r.SubjectName, date, r.Score, weight); err != nil {
			return fmt.Errorf("row %d: failed to insert score: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit score load: %w", err)
	}
	return nil
}

// WideRows joins the star schema back into the denormalized rows the
// engine consumes. Assessment grades are not stored; they depend on the
// scoring configuration and are derived after loading.
func (db *DB) WideRows() ([]dataset.Row, error) {
	rows, err := db.Query(`
		SELECT s.student_id, s.student_name, s.grade_level,
		       subj.subject_name, d.date, d.year_quarter, d.year_month,
		       f.score, f.weight
		FROM fact_scores f
		JOIN dim_students s ON s.student_id = f.student_id
		JOIN dim_subjects subj ON subj.subject_id = f.subject_id
		JOIN dim_dates d ON d.date_id = f.date_id
		ORDER BY f.id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	var out []dataset.Row
	for rows.Next() {
		var r dataset.Row
		var date string
		if err := rows.Scan(
			&r.StudentID, &r.StudentName, &r.GradeLevel,
			&r.SubjectName, &date, &r.YearQuarter, &r.YearMonth,
			&r.Score, &r.Weight,
		); err != nil {
			return nil, fmt.Errorf("failed to scan score row: %w", err)
		}
		if r.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("failed to parse stored date %q: %w", date, err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read score rows: %w", err)
	}
	return out, nil
}

// Stats summarizes table sizes for startup logging and the status API.
type Stats struct {
	Scores   int `json:"scores"`
	Students int `json:"students"`
	Subjects int `json:"subjects"`
	Dates    int `json:"dates"`
}

// Stats returns row counts for every table in the star schema.
func (db *DB) Stats() (Stats, error) {
	var s Stats
	counts := []struct {
		table string
		dst   *int
	}{
		{"fact_scores", &s.Scores},
		{"dim_students", &s.Students},
		{"dim_subjects", &s.Subjects},
		{"dim_dates", &s.Dates},
	}
	for _, c := range counts {
		if err := db.QueryRow("SELECT COUNT(*) FROM " + c.table).Scan(c.dst); err != nil {
			return Stats{}, fmt.Errorf("failed to count %s: %w", c.table, err)
		}
	}
	return s, nil
}
