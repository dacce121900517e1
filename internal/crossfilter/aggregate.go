package crossfilter

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// AggregateRecord is one category/metric pair in a chart's dataset.
type AggregateRecord struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
}

// ChartData is the aggregation result for one dimension. NoData marks
// an empty input subset so renderers can distinguish "zero in every
// category" from "nothing matched the filters".
type ChartData struct {
	Records []AggregateRecord `json:"records"`
	NoData  bool              `json:"no_data"`
}

// Aggregate reduces a filtered subset into per-category records for one
// dimension.
//
// Ordinal dimensions produce one record per declared category in
// declared order, zero-filled for categories with no matching rows.
// Nominal dimensions produce only the categories present, ordered by
// metric descending with ties broken by category name. An empty subset
// produces the no-data marker rather than an empty sequence.
func Aggregate(subset []Record, dim Dimension) ChartData {
	if len(subset) == 0 {
		return ChartData{NoData: true}
	}

	groups := make(map[string][]Record)
	for _, row := range subset {
		cat, ok := row.Category(dim.SourceField)
		if !ok {
			continue
		}
		groups[cat] = append(groups[cat], row)
	}

	if dim.Kind == KindOrdinal {
		records := make([]AggregateRecord, 0, len(dim.Categories))
		for _, cat := range dim.Categories {
			records = append(records, AggregateRecord{
				Category: cat,
				Value:    reduce(groups[cat], dim.Agg),
			})
		}
		return ChartData{Records: records}
	}

	records := make([]AggregateRecord, 0, len(groups))
	for cat, rows := range groups {
		records = append(records, AggregateRecord{
			Category: cat,
			Value:    reduce(rows, dim.Agg),
		})
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].Value != records[j].Value {
			return records[i].Value > records[j].Value
		}
		return records[i].Category < records[j].Category
	})
	return ChartData{Records: records}
}

// reduce applies the aggregation op to one category's rows. Empty or
// all-missing groups reduce to 0 rather than NaN.
func reduce(rows []Record, op AggOp) float64 {
	if len(rows) == 0 {
		return 0
	}
	switch op.Kind {
	case AggCount:
		return float64(len(rows))
	case AggDistinctCount:
		seen := make(map[string]struct{}, len(rows))
		for _, row := range rows {
			if v, ok := row.Category(op.Field); ok {
				seen[v] = struct{}{}
			}
		}
		return float64(len(seen))
	case AggMean:
		xs := make([]float64, 0, len(rows))
		for _, row := range rows {
			if v, ok := row.Numeric(op.Field); ok {
				xs = append(xs, v)
			}
		}
		if len(xs) == 0 {
			return 0
		}
		return stat.Mean(xs, nil)
	default:
		return 0
	}
}
