package dataset

import (
	"sort"

	"github.com/chalkline-data/performance.report/internal/crossfilter"
)

// Table is the immutable joined dataset for one engine lifetime. It
// precomputes the record adapter and the distinct period labels so
// dimension registries can declare chronological category orders.
type Table struct {
	rows     []Row
	records  []crossfilter.Record
	quarters []string
	months   []string
}

// NewTable copies rows into an immutable table.
func NewTable(rows []Row) *Table {
	t := &Table{rows: append([]Row(nil), rows...)}

	t.records = make([]crossfilter.Record, len(t.rows))
	quarterSet := make(map[string]struct{})
	monthSet := make(map[string]struct{})
	for i, r := range t.rows {
		t.records[i] = r
		if r.YearQuarter != "" {
			quarterSet[r.YearQuarter] = struct{}{}
		}
		if r.YearMonth != "" {
			monthSet[r.YearMonth] = struct{}{}
		}
	}

	// Period labels are zero-padded, so a lexical sort is chronological.
	for q := range quarterSet {
		t.quarters = append(t.quarters, q)
	}
	sort.Strings(t.quarters)
	for m := range monthSet {
		t.months = append(t.months, m)
	}
	sort.Strings(t.months)

	return t
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Rows returns the underlying rows. Callers must treat the slice as
// read-only.
func (t *Table) Rows() []Row {
	return t.rows
}

// Records returns the rows as engine records. The slice is built once
// at construction and must be treated as read-only.
func (t *Table) Records() []crossfilter.Record {
	return t.records
}

// Quarters returns the distinct quarter labels in chronological order.
func (t *Table) Quarters() []string {
	return t.quarters
}

// Months returns the distinct month labels in chronological order.
func (t *Table) Months() []string {
	return t.months
}
