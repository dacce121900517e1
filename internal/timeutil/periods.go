package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// QuarterLabel returns the reporting label for the quarter containing t,
// e.g. "2023-Q1". Labels of the same form sort chronologically as strings.
func QuarterLabel(t time.Time) string {
	q := (int(t.Month())-1)/3 + 1
	return fmt.Sprintf("%04d-Q%d", t.Year(), q)
}

// MonthLabel returns the reporting label for the month containing t,
// e.g. "2023-01". Labels of the same form sort chronologically as strings.
func MonthLabel(t time.Time) string {
	return fmt.Sprintf("%04d-%02d", t.Year(), int(t.Month()))
}

// ParseQuarter splits a quarter label into its year and quarter number.
func ParseQuarter(label string) (year, quarter int, err error) {
	parts := strings.SplitN(label, "-Q", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid quarter label %q", label)
	}
	year, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid quarter label %q: %w", label, err)
	}
	quarter, err = strconv.Atoi(parts[1])
	if err != nil || quarter < 1 || quarter > 4 {
		return 0, 0, fmt.Errorf("invalid quarter label %q", label)
	}
	return year, quarter, nil
}

// MonthsOfQuarter returns the three month labels inside a quarter label,
// in chronological order. Used for drill-down from a selected quarter.
func MonthsOfQuarter(label string) ([]string, error) {
	year, quarter, err := ParseQuarter(label)
	if err != nil {
		return nil, err
	}
	first := (quarter-1)*3 + 1
	months := make([]string, 0, 3)
	for m := first; m < first+3; m++ {
		months = append(months, fmt.Sprintf("%04d-%02d", year, m))
	}
	return months, nil
}

// MonthName returns a short human label for a month label, e.g.
// "2023-01" becomes "Jan 2023". Falls back to the input when unparseable.
func MonthName(label string) string {
	t, err := time.Parse("2006-01", label)
	if err != nil {
		return label
	}
	return t.Format("Jan 2006")
}
