package server

import (
	"sync"

	"github.com/google/uuid"

	"github.com/checkam/scanverifier/internal/scan"
)

// registry tracks live scan sessions by ID. Sessions are dropped once
// resolved or dismissed; each scan attempt gets a fresh one.
type registry struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*scan.Session
}

func newRegistry() *registry {
	return &registry{sessions: make(map[uuid.UUID]*scan.Session)}
}

func (r *registry) add(s *scan.Session) {
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
}

func (r *registry) get(id uuid.UUID) (*scan.Session, bool) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	r.mu.Unlock()
	return s, ok
}

func (r *registry) remove(id uuid.UUID) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}
