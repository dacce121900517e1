package crossfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestClickThroughPipeline walks one full interaction through the
// engine: toggle a category, recompute the dimension's own chart with
// self-exclusion, and recompute KPIs from the fully filtered subset.
func TestClickThroughPipeline(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)
	store := NewStore(reg)
	rows := threeRows()

	state, _, err := store.Apply(Interaction{Dimension: "assessment", Category: "A"})
	require.NoError(t, err)

	// KPIs read the fully filtered subset: only the A row remains, so
	// the mean is exactly its score.
	full, err := Filter(rows, reg, state, "")
	require.NoError(t, err)
	snap := ComputeKPIs(full, testKPIParams())
	require.False(t, snap.NoData)
	assert.Equal(t, 90.0, snap.Mean)

	// The assessment chart excludes its own filter, so it still shows
	// the complete scale with every row counted.
	sub, err := Filter(rows, reg, state, "assessment")
	require.NoError(t, err)
	dim, err := reg.Lookup("assessment")
	require.NoError(t, err)
	chart := Aggregate(sub, dim)
	want := []AggregateRecord{
		{Category: "A", Value: 1},
		{Category: "B", Value: 0},
		{Category: "C", Value: 0},
		{Category: "D", Value: 1},
		{Category: "F", Value: 1},
	}
	assert.Equal(t, want, chart.Records)

	assert.Equal(t, "Filters: Assessment Grade='A'", Summary(reg, state))
}

// TestSelfExclusionInvariant checks that a dimension's own chart data
// never depends on that dimension's selection, whatever the other
// dimensions are doing.
func TestSelfExclusionInvariant(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)
	rows := threeRows()
	dim, err := reg.Lookup("assessment")
	require.NoError(t, err)

	others := []State{
		NewState(reg),
		func() State {
			s := NewState(reg)
			s["subject"] = Selected("Math")
			return s
		}(),
		func() State {
			s := NewState(reg)
			s["subject"] = Selected("Math")
			s["grade"] = Selected("9")
			return s
		}(),
	}

	ownSelections := []Selection{
		Unconstrained,
		Selected("A"),
		Selected("F"),
		Selected("B"), // a category with no rows at all
	}

	for _, base := range others {
		var baseline *ChartData
		for _, own := range ownSelections {
			state := base.Clone()
			state["assessment"] = own

			sub, err := Filter(rows, reg, state, "assessment")
			require.NoError(t, err)
			chart := Aggregate(sub, dim)

			if baseline == nil {
				c := chart
				baseline = &c
				continue
			}
			assert.Equal(t, *baseline, chart,
				"chart data changed when only its own selection changed")
		}
	}
}

// TestFullyFilteredEmptySubset drives the engine into a combination
// with no matching rows and checks the no-data path end to end.
func TestFullyFilteredEmptySubset(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)
	rows := threeRows()

	// Science rows never carry assessment A.
	state := NewState(reg)
	state["subject"] = Selected("Science")
	state["assessment"] = Selected("A")

	full, err := Filter(rows, reg, state, "")
	require.NoError(t, err)
	assert.Empty(t, full)

	snap := ComputeKPIs(full, testKPIParams())
	assert.True(t, snap.NoData)

	// A chart for a third dimension sees the same empty subset and
	// reports no data rather than a zero-filled series.
	gradeDim, err := reg.Lookup("grade")
	require.NoError(t, err)
	sub, err := Filter(rows, reg, state, "grade")
	require.NoError(t, err)
	assert.Empty(t, sub)
	assert.True(t, Aggregate(sub, gradeDim).NoData)
}
