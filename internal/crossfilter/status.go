package crossfilter

import (
	"fmt"
	"strings"
)

// Summary renders the active filters as a human-readable status line,
// one dimension=value pair per active selection in registry declaration
// order, or an explicit all-data marker when nothing is selected.
func Summary(reg *Registry, state State) string {
	var parts []string
	for _, d := range reg.Dimensions() {
		sel := state[d.Name]
		if sel.Active {
			parts = append(parts, fmt.Sprintf("%s='%s'", d.Label, sel.Value))
		}
	}
	if len(parts) == 0 {
		return "Filters: None (showing all data)"
	}
	return "Filters: " + strings.Join(parts, " | ")
}
