package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chalkline-data/performance.report/internal/fsutil"
)

// Canonical CSV column order for score files. The weight column is
// optional on read; rows without it default to weight 1.
var csvHeader = []string{"student_id", "student_name", "grade_level", "subject", "date", "score", "weight"}

// csvDateLayout is the date format in score files.
const csvDateLayout = "2006-01-02"

// ReadCSV loads score rows from a CSV file. The header row is required
// and matched by name, so column order is free. Malformed data rows are
// an error, not skipped: an import must either load completely or not
// at all.
func ReadCSV(fs fsutil.FileSystem, path string) ([]Row, error) {
	f, err := fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.ToLower(h))] = i
	}
	for _, required := range csvHeader[:6] {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("CSV header missing required column %q", required)
		}
	}

	field := func(record []string, name string) string {
		return strings.TrimSpace(record[col[name]])
	}

	var rows []Row
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}

		id, err := strconv.Atoi(field(record, "student_id"))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid student_id: %w", line, err)
		}
		date, err := time.Parse(csvDateLayout, field(record, "date"))
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid date: %w", line, err)
		}
		score, err := strconv.ParseFloat(field(record, "score"), 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid score: %w", line, err)
		}

		weight := 1.0
		if i, ok := col["weight"]; ok && i < len(record) && strings.TrimSpace(record[i]) != "" {
			weight, err = strconv.ParseFloat(strings.TrimSpace(record[i]), 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid weight: %w", line, err)
			}
		}

		rows = append(rows, Row{
			StudentID:   id,
			StudentName: field(record, "student_name"),
			GradeLevel:  field(record, "grade_level"),
			SubjectName: field(record, "subject"),
			Date:        date,
			Score:       score,
			Weight:      weight,
		})
	}
	return rows, nil
}

// WriteCSV writes score rows in the canonical column order.
func WriteCSV(fs fsutil.FileSystem, path string, rows []Row) error {
	f, err := fs.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.StudentID),
			r.StudentName,
			r.GradeLevel,
			r.SubjectName,
			r.Date.Format(csvDateLayout),
			strconv.FormatFloat(r.Score, 'f', 2, 64),
			strconv.FormatFloat(r.Weight, 'f', 2, 64),
		}
		if err := w.Write(record); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
