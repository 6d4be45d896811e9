package relay

import (
	"sync"

	"github.com/voxhire/voxhire/server/domain/entities"
)

// Registry tracks live interview sessions by session ID.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*entities.InterviewSession
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*entities.InterviewSession)}
}

func (r *Registry) Register(session *entities.InterviewSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID()] = session
}

func (r *Registry) Get(id string) (*entities.InterviewSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	return session, ok
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

// List returns a snapshot of every live session.
func (r *Registry) List() []entities.SessionSnapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]entities.SessionSnapshot, 0, len(r.sessions))
	for _, session := range r.sessions {
		out = append(out, session.Snapshot())
	}
	return out
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
