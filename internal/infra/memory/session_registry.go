package memory

import (
	"sync"
	"time"

	"ecoquiz-service/internal/app"
)

// SessionRegistry is the in-memory implementation of app.SessionRegistry.
// Sessions are never shared across connections; the registry exists so the
// reaper can find abandoned ones.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*app.Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*app.Session),
	}
}

func (r *SessionRegistry) Put(session *app.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID()] = session
}

func (r *SessionRegistry) Get(id string) (*app.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	return session, ok
}

func (r *SessionRegistry) Delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// Idle returns sessions whose last activity is older than the given age,
// including terminal ones that were never cleaned up.
func (r *SessionRegistry) Idle(olderThan time.Duration) []*app.Session {
	cutoff := time.Now().Add(-olderThan)

	r.mu.RLock()
	defer r.mu.RUnlock()
	var stale []*app.Session
	for _, session := range r.sessions {
		if session.LastActivity().Before(cutoff) || session.Terminal() {
			stale = append(stale, session)
		}
	}
	return stale
}

// Len reports the number of tracked sessions.
func (r *SessionRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
