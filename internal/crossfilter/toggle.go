package crossfilter

import "fmt"

// Interaction is a normalized user event against one dimension: either
// a category click or an explicit clear (empty-space click). Transport
// layers normalize raw UI payloads into this shape before it reaches
// the engine, so the core never branches on payload shape. Payloads too
// malformed to normalize never become Interactions at all.
type Interaction struct {
	Dimension string
	// Category is the clicked value. Ignored when Clear is set.
	Category string
	// Clear requests an unconditional deselect for the dimension.
	Clear bool
}

// toggle is the pure transition for one dimension's selection.
func toggle(current Selection, in Interaction) Selection {
	switch {
	case in.Clear:
		return Unconstrained
	case current.Active && current.Value == in.Category:
		// Second click on the selected category deselects it.
		return Unconstrained
	default:
		return Selected(in.Category)
	}
}

// Apply runs one interaction through the toggle interpreter and returns
// the resulting state snapshot and version. Interactions are serialized
// under the store's lock; other dimensions are never touched. An
// unknown dimension is a hard error and leaves state unchanged.
func (st *Store) Apply(in Interaction) (State, uint64, error) {
	if !st.reg.Has(in.Dimension) {
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownDimension, in.Dimension)
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	next := st.state.Clone()
	next[in.Dimension] = toggle(st.state[in.Dimension], in)
	state, version := st.replace(next)
	return state, version, nil
}

// Reset sets every dimension to unconstrained. Idempotent: resetting an
// already-clear state does not bump the version.
func (st *Store) Reset() (State, uint64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.replace(NewState(st.reg))
}
