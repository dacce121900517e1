package crossfilter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummaryNoFilters(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	got := Summary(reg, NewState(reg))
	assert.Equal(t, "Filters: None (showing all data)", got)
}

func TestSummarySingleFilter(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	state := NewState(reg)
	state["subject"] = Selected("Math")
	assert.Equal(t, "Filters: Subject='Math'", Summary(reg, state))
}

func TestSummaryMultipleFiltersInRegistryOrder(t *testing.T) {
	t.Parallel()
	reg := testRegistry(t)

	state := NewState(reg)
	state["subject"] = Selected("Math")
	state["assessment"] = Selected("B")

	// Order follows dimension declaration, not selection order.
	got := Summary(reg, state)
	assert.Equal(t, "Filters: Assessment Grade='B' | Subject='Math'", got)
}
