// Package crossfilter implements the coordination engine behind the
// dashboard's linked charts. It maintains one selection per filterable
// dimension, interprets click and reset events with toggle semantics
// (select on first click, deselect on repeat click), filters the dataset
// with self-exclusion so each chart stays clickable while reacting to
// every other dimension, and reduces the filtered rows into per-category
// aggregates and headline KPIs.
//
// The engine is deliberately split into a small mutable core (Store) and
// pure functions over immutable data (Filter, Aggregate, ComputeKPIs).
// Only the Store mutates filter state; everything downstream reads a
// snapshot and can run concurrently.
package crossfilter

import "errors"

// ErrUnknownDimension is returned when a toggle or exclusion request
// names a dimension absent from the registry. Dimensions are fixed at
// construction time, so this always indicates a wiring bug in the
// caller rather than user input noise.
var ErrUnknownDimension = errors.New("unknown dimension")

// Record is one row of the immutable dataset. Fields are accessed by
// name; the second return reports whether the row carries the field.
// Implementations must be safe for concurrent reads.
type Record interface {
	// Category returns the row's value for a categorical field.
	Category(field string) (string, bool)
	// Numeric returns the row's value for a numeric field.
	Numeric(field string) (float64, bool)
}
