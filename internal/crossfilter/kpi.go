package crossfilter

import "gonum.org/v1/gonum/stat"

// KPIParams configure the KPI reduction. Thresholds and comparison
// direction are configuration because the charting variants this
// replaces did not agree on them.
type KPIParams struct {
	// ScoreField is the numeric field all four metrics read.
	ScoreField string
	// WeightField is the optional per-row weight; empty disables the
	// weighted mean (it then mirrors the plain mean).
	WeightField string
	// PassThreshold and PassInclusive define the passing test:
	// score >= threshold when inclusive, score > threshold otherwise.
	PassThreshold float64
	PassInclusive bool
	// PerfectTarget is the exact score counted as perfect.
	PerfectTarget float64
}

// KPISnapshot holds the four headline metrics for the fully filtered
// subset. Values are exact; display rounding happens at the render
// layer so tests can check arithmetic. NoData marks an empty subset —
// the snapshot is then all-zero, never NaN, and must render as an
// explicit no-data indicator rather than numbers.
type KPISnapshot struct {
	Mean         float64 `json:"mean"`
	WeightedMean float64 `json:"weighted_mean"`
	// PassRate and PerfectRate are percentages in [0, 100].
	PassRate    float64 `json:"pass_rate"`
	PerfectRate float64 `json:"perfect_rate"`
	NoData      bool    `json:"no_data"`
}

// ComputeKPIs reduces the fully filtered subset into a KPISnapshot.
// A subset with no usable score values yields the no-data snapshot;
// partial snapshots are never produced.
func ComputeKPIs(subset []Record, p KPIParams) KPISnapshot {
	scores := make([]float64, 0, len(subset))
	weights := make([]float64, 0, len(subset))
	weightSum := 0.0
	for _, row := range subset {
		score, ok := row.Numeric(p.ScoreField)
		if !ok {
			continue
		}
		scores = append(scores, score)
		if p.WeightField != "" {
			w, ok := row.Numeric(p.WeightField)
			if !ok {
				w = 0
			}
			weights = append(weights, w)
			weightSum += w
		}
	}
	if len(scores) == 0 {
		return KPISnapshot{NoData: true}
	}

	mean := stat.Mean(scores, nil)
	weighted := mean
	if p.WeightField != "" && weightSum > 0 {
		weighted = stat.Mean(scores, weights)
	}

	passed := 0
	perfect := 0
	for _, s := range scores {
		if (p.PassInclusive && s >= p.PassThreshold) || (!p.PassInclusive && s > p.PassThreshold) {
			passed++
		}
		if s == p.PerfectTarget {
			perfect++
		}
	}
	n := float64(len(scores))

	return KPISnapshot{
		Mean:         mean,
		WeightedMean: weighted,
		PassRate:     100 * float64(passed) / n,
		PerfectRate:  100 * float64(perfect) / n,
	}
}
