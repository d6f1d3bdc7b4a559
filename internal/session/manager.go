// Package session keeps one UI controller per browser session.
package session

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/leafscan/backend/internal/controller"
	"github.com/leafscan/backend/internal/logging"
)

// DefaultMaxSessions limits concurrent UI sessions to bound memory.
const DefaultMaxSessions = 1000

// Factory creates the controller of a new session.
type Factory func() *controller.Controller

// Manager handles active UI sessions.
type Manager struct {
	sessions    map[string]*SessionState
	mu          sync.RWMutex
	factory     Factory
	maxSessions int
}

// SessionState holds a session's controller and its last use.
type SessionState struct {
	ID           string
	Controller   *controller.Controller
	CreatedAt    time.Time
	LastAccessed time.Time
}

// NewManager creates a session manager. maxSessions <= 0 uses DefaultMaxSessions.
func NewManager(factory Factory, maxSessions int) *Manager {
	if maxSessions <= 0 {
		maxSessions = DefaultMaxSessions
	}
	return &Manager{
		sessions:    make(map[string]*SessionState),
		factory:     factory,
		maxSessions: maxSessions,
	}
}

// GetOrCreate returns the session for id, creating a new one (with a fresh
// id) when id is empty or unknown. The bool reports whether it was created.
func (m *Manager) GetOrCreate(id string) (*SessionState, bool) {
	if id != "" {
		if s, ok := m.Touch(id); ok {
			return s, false
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.sessions) >= m.maxSessions {
		m.evictOldestLocked()
	}

	now := time.Now()
	s := &SessionState{
		ID:           uuid.New().String(),
		Controller:   m.factory(),
		CreatedAt:    now,
		LastAccessed: now,
	}
	m.sessions[s.ID] = s
	logging.Component("Session", s.ID).Debugf("created (%d active)", len(m.sessions))
	return s, true
}

// Get returns the session without touching it.
func (m *Manager) Get(id string) (*SessionState, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Touch marks the session as used.
func (m *Manager) Touch(id string) (*SessionState, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if ok {
		s.LastAccessed = time.Now()
	}
	return s, ok
}

// Delete closes and removes a session.
func (m *Manager) Delete(id string) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Controller.Close()
	}
	return ok
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupOldSessions closes sessions idle for longer than maxAge.
func (m *Manager) CleanupOldSessions(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	m.mu.Lock()
	var expired []*SessionState
	for id, s := range m.sessions {
		if s.LastAccessed.Before(cutoff) {
			expired = append(expired, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range expired {
		s.Controller.Close()
	}
	if len(expired) > 0 {
		logging.Infof("[Session] cleaned up %d idle sessions", len(expired))
	}
	return len(expired)
}

// CloseAll closes every session. Used on shutdown.
func (m *Manager) CloseAll() {
	m.mu.Lock()
	all := make([]*SessionState, 0, len(m.sessions))
	for id, s := range m.sessions {
		all = append(all, s)
		delete(m.sessions, id)
	}
	m.mu.Unlock()

	for _, s := range all {
		s.Controller.Close()
	}
}

// evictOldestLocked drops the least recently used tenth of the sessions.
func (m *Manager) evictOldestLocked() {
	all := make([]*SessionState, 0, len(m.sessions))
	for _, s := range m.sessions {
		all = append(all, s)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].LastAccessed.Before(all[j].LastAccessed)
	})
	n := len(all)/10 + 1
	for _, s := range all[:n] {
		delete(m.sessions, s.ID)
		s.Controller.Close()
	}
	logging.Warnf("[Session] limit %d reached, evicted %d sessions", m.maxSessions, n)
}
