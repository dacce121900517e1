package crossfilter

import "sync"

// Selection is one dimension's current filter. The zero value means
// unconstrained; there is no separate null or empty-string encoding
// once an interaction has passed the interpreter.
type Selection struct {
	Active bool   `json:"active"`
	Value  string `json:"value,omitempty"`
}

// Selected returns an active selection for value.
func Selected(value string) Selection {
	return Selection{Active: true, Value: value}
}

// Unconstrained is the no-filter selection.
var Unconstrained = Selection{}

// State maps each declared dimension to its selection. A State always
// carries exactly one entry per registered dimension.
type State map[string]Selection

// NewState returns an all-unconstrained state for the registry.
func NewState(reg *Registry) State {
	s := make(State, reg.Len())
	for _, name := range reg.Names() {
		s[name] = Unconstrained
	}
	return s
}

// Clone returns an independent copy of the state.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Equal reports whether two states carry identical selections.
func (s State) Equal(other State) bool {
	if len(s) != len(other) {
		return false
	}
	for k, v := range s {
		if other[k] != v {
			return false
		}
	}
	return true
}

// ActiveCount returns the number of dimensions with an active selection.
func (s State) ActiveCount() int {
	n := 0
	for _, sel := range s {
		if sel.Active {
			n++
		}
	}
	return n
}

// Store owns a session's filter state. All writes go through Apply and
// Reset so transitions are serialized and downstream readers only ever
// see complete states. The version increments on every state change,
// letting offloaded recomputes detect that their snapshot went stale.
type Store struct {
	reg *Registry

	mu      sync.RWMutex
	state   State
	version uint64
}

// NewStore returns a store with every dimension unconstrained.
func NewStore(reg *Registry) *Store {
	return &Store{reg: reg, state: NewState(reg)}
}

// Registry returns the store's dimension registry.
func (st *Store) Registry() *Registry {
	return st.reg
}

// Current returns a snapshot of the state and its version. The snapshot
// is a copy; callers may hold it across an offloaded recompute and
// compare versions afterwards.
func (st *Store) Current() (State, uint64) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.state.Clone(), st.version
}

// Version returns the current state version.
func (st *Store) Version() uint64 {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.version
}

// replace installs a new state under the write lock, bumping the
// version only when the state actually changed.
func (st *Store) replace(next State) (State, uint64) {
	if !st.state.Equal(next) {
		st.state = next
		st.version++
	}
	return st.state.Clone(), st.version
}
