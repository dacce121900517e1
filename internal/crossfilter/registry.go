package crossfilter

import "fmt"

// Kind classifies a dimension's category domain.
type Kind string

const (
	// KindNominal dimensions have no inherent order; charts show only
	// the categories present in the data, sorted by metric.
	KindNominal Kind = "nominal"
	// KindOrdinal dimensions have a fixed, declared category order;
	// charts always show every declared category, zero-filled.
	KindOrdinal Kind = "ordinal"
)

// AggKind selects the reduction applied per category.
type AggKind string

const (
	AggCount         AggKind = "count"
	AggDistinctCount AggKind = "distinct_count"
	AggMean          AggKind = "mean"
)

// AggOp is a dimension's per-category aggregation: the kind plus the
// source field it reads, where one is needed.
type AggOp struct {
	Kind  AggKind `json:"kind"`
	Field string  `json:"field,omitempty"`
}

// Count aggregates by counting matching rows.
func Count() AggOp { return AggOp{Kind: AggCount} }

// DistinctCountOf aggregates by counting distinct values of field
// within each category, e.g. unique students rather than raw rows.
func DistinctCountOf(field string) AggOp {
	return AggOp{Kind: AggDistinctCount, Field: field}
}

// MeanOf aggregates by averaging a numeric field within each category.
func MeanOf(field string) AggOp {
	return AggOp{Kind: AggMean, Field: field}
}

// Dimension declares one filterable facet of the dataset. Declared once
// at engine construction; immutable thereafter.
type Dimension struct {
	// Name is the stable identifier used in interactions and URLs.
	Name string `json:"name"`
	// Label is the human-readable form used in chart titles and the
	// filter status line.
	Label string `json:"label"`
	// SourceField is the record field this dimension filters on.
	SourceField string `json:"source_field"`
	Kind        Kind   `json:"kind"`
	// Categories is the declared order for ordinal dimensions; empty
	// for nominal ones.
	Categories []string `json:"categories,omitempty"`
	Agg        AggOp    `json:"agg"`
}

// Registry is the static set of declared dimensions. It is immutable
// after construction and safe for concurrent use.
type Registry struct {
	dims  []Dimension
	index map[string]int
}

// NewRegistry validates and indexes the declared dimensions.
func NewRegistry(dims []Dimension) (*Registry, error) {
	if len(dims) == 0 {
		return nil, fmt.Errorf("registry requires at least one dimension")
	}
	index := make(map[string]int, len(dims))
	for i, d := range dims {
		if d.Name == "" {
			return nil, fmt.Errorf("dimension %d has empty name", i)
		}
		if _, dup := index[d.Name]; dup {
			return nil, fmt.Errorf("duplicate dimension name %q", d.Name)
		}
		if d.SourceField == "" {
			return nil, fmt.Errorf("dimension %q has empty source field", d.Name)
		}
		switch d.Kind {
		case KindNominal:
			if len(d.Categories) > 0 {
				return nil, fmt.Errorf("nominal dimension %q must not declare categories", d.Name)
			}
		case KindOrdinal:
			if len(d.Categories) == 0 {
				return nil, fmt.Errorf("ordinal dimension %q must declare its category order", d.Name)
			}
			seen := make(map[string]bool, len(d.Categories))
			for _, c := range d.Categories {
				if seen[c] {
					return nil, fmt.Errorf("ordinal dimension %q declares category %q twice", d.Name, c)
				}
				seen[c] = true
			}
		default:
			return nil, fmt.Errorf("dimension %q has invalid kind %q", d.Name, d.Kind)
		}
		switch d.Agg.Kind {
		case AggCount:
			// no field needed
		case AggDistinctCount, AggMean:
			if d.Agg.Field == "" {
				return nil, fmt.Errorf("dimension %q aggregation %q requires a field", d.Name, d.Agg.Kind)
			}
		default:
			return nil, fmt.Errorf("dimension %q has invalid aggregation %q", d.Name, d.Agg.Kind)
		}
		index[d.Name] = i
	}
	return &Registry{dims: append([]Dimension(nil), dims...), index: index}, nil
}

// Dimensions returns the declared dimensions in declaration order.
// The returned slice is a copy.
func (r *Registry) Dimensions() []Dimension {
	return append([]Dimension(nil), r.dims...)
}

// Names returns the dimension names in declaration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.dims))
	for i, d := range r.dims {
		names[i] = d.Name
	}
	return names
}

// Lookup returns the named dimension or ErrUnknownDimension.
func (r *Registry) Lookup(name string) (Dimension, error) {
	i, ok := r.index[name]
	if !ok {
		return Dimension{}, fmt.Errorf("%w: %q", ErrUnknownDimension, name)
	}
	return r.dims[i], nil
}

// Has reports whether name is a declared dimension.
func (r *Registry) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Len returns the number of declared dimensions.
func (r *Registry) Len() int {
	return len(r.dims)
}
