package repositories

import (
	"sync"

	"github.com/google/uuid"

	"schemadesigner/internal/models"
)

// SessionRepository holds live design sessions in memory. Sessions are
// working state, not durable data; snapshots cover recovery.
type SessionRepository struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*models.Session
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{sessions: make(map[uuid.UUID]*models.Session)}
}

func (r *SessionRepository) Save(session *models.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
}

// Get returns nil when the session does not exist.
func (r *SessionRepository) Get(id uuid.UUID) *models.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

func (r *SessionRepository) Delete(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *SessionRepository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
