// Package session tracks per-viewer selection state for the dashboard.
// Every browser session gets its own cross-filter store, so two people
// looking at the same data never see each other's filters. A janitor
// loop expires sessions that have gone quiet.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chalkline-data/performance.report/internal/crossfilter"
	"github.com/chalkline-data/performance.report/internal/monitoring"
	"github.com/chalkline-data/performance.report/internal/timeutil"
)

const (
	// DefaultTTL is how long an idle session survives. Any request that
	// resolves the session refreshes the clock.
	DefaultTTL = 30 * time.Minute

	// DefaultMaxSessions caps concurrent sessions. New sessions are
	// refused once the cap is hit and no expired session can be evicted.
	DefaultMaxSessions = 1000

	// janitorInterval is how often the background sweep runs.
	janitorInterval = time.Minute
)

var (
	// ErrSessionNotFound means the ID is unknown or the session expired.
	ErrSessionNotFound = errors.New("session not found")

	// ErrTooManySessions means the session cap is reached.
	ErrTooManySessions = errors.New("too many active sessions")
)

// ManagerConfig carries the tunables for a session manager. Zero values
// select the defaults; a negative TTL disables expiry.
type ManagerConfig struct {
	TTL         time.Duration
	MaxSessions int
	Clock       timeutil.Clock
}

// Manager owns the live sessions. All map access and lastSeen updates
// happen under mu.
type Manager struct {
	reg   *crossfilter.Registry
	clock timeutil.Clock
	ttl   time.Duration
	max   int

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager issuing sessions over reg.
func NewManager(reg *crossfilter.Registry, cfg ManagerConfig) *Manager {
	if cfg.TTL == 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxSessions == 0 {
		cfg.MaxSessions = DefaultMaxSessions
	}
	if cfg.Clock == nil {
		cfg.Clock = timeutil.RealClock{}
	}
	return &Manager{
		reg:      reg,
		clock:    cfg.Clock,
		ttl:      cfg.TTL,
		max:      cfg.MaxSessions,
		sessions: make(map[string]*Session),
	}
}

// Registry returns the dimension registry sessions are issued over.
func (m *Manager) Registry() *crossfilter.Registry {
	return m.reg
}

// Create opens a new session with no active filters.
func (m *Manager) Create() (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.max {
		m.evictExpiredLocked()
	}
	if len(m.sessions) >= m.max {
		return nil, ErrTooManySessions
	}

	now := m.clock.Now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		store:     crossfilter.NewStore(m.reg),
		lastSeen:  now,
	}
	m.sessions[s.ID] = s
	monitoring.Debugf("session %s created (%d active)", s.ID, len(m.sessions))
	return s, nil
}

// Get resolves a session by ID and refreshes its idle clock. Expired
// sessions are dropped on access and reported as not found.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if m.expiredLocked(s) {
		delete(m.sessions, id)
		monitoring.Debugf("session %s expired on access", id)
		return nil, ErrSessionNotFound
	}
	s.lastSeen = m.clock.Now()
	return s, nil
}

// Delete ends a session. It reports whether the session existed.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return false
	}
	delete(m.sessions, id)
	return true
}

// Len returns the number of live sessions, expired ones included until
// the next sweep.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Sweep removes all expired sessions and returns how many were dropped.
func (m *Manager) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.evictExpiredLocked()
}

// Run drives the expiry janitor until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) {
	ticker := m.clock.NewTicker(janitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if n := m.Sweep(); n > 0 {
				monitoring.Logf("Session janitor removed %d expired sessions (%d active)", n, m.Len())
			}
		}
	}
}

func (m *Manager) expiredLocked(s *Session) bool {
	if m.ttl < 0 {
		return false
	}
	return m.clock.Since(s.lastSeen) > m.ttl
}

func (m *Manager) evictExpiredLocked() int {
	removed := 0
	for id, s := range m.sessions {
		if m.expiredLocked(s) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}
