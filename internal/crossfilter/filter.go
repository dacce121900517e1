package crossfilter

import "fmt"

// Filter returns the rows matching every active selection in state,
// except the dimension named by exclude, which is ignored regardless of
// its selection. Pass exclude="" to apply every filter (the KPI path).
//
// Matching is equality on the dimension's source field; a row that
// lacks the field cannot match. Unconstrained dimensions impose no
// constraint; multiple active selections combine with AND. The function
// is pure: it depends only on its arguments and runs in one pass over
// rows.
func Filter(rows []Record, reg *Registry, state State, exclude string) ([]Record, error) {
	if exclude != "" && !reg.Has(exclude) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, exclude)
	}

	// Collect the constraints that actually apply.
	type constraint struct {
		field string
		value string
	}
	var active []constraint
	for _, d := range reg.Dimensions() {
		if d.Name == exclude {
			continue
		}
		sel := state[d.Name]
		if sel.Active {
			active = append(active, constraint{field: d.SourceField, value: sel.Value})
		}
	}
	if len(active) == 0 {
		return rows, nil
	}

	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		match := true
		for _, c := range active {
			v, ok := row.Category(c.field)
			if !ok || v != c.value {
				match = false
				break
			}
		}
		if match {
			out = append(out, row)
		}
	}
	return out, nil
}
