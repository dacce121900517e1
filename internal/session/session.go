package session

import (
	"time"

	"github.com/chalkline-data/performance.report/internal/crossfilter"
)

// Session is one viewer's private selection state. All cross-filter
// state lives in the embedded store; the surrounding fields only track
// lifecycle.
type Session struct {
	// ID is the opaque session identifier handed to the client.
	ID string

	// CreatedAt is when the session was opened.
	CreatedAt time.Time

	store *crossfilter.Store

	// lastSeen is guarded by the owning manager's mutex.
	lastSeen time.Time
}

// Store returns the session's selection store.
func (s *Session) Store() *crossfilter.Store {
	return s.store
}
