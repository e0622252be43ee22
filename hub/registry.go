package hub

import (
	"sync"

	"github.com/google/uuid"

	"snake-relay-server/domain"
)

// Registry assigns player identifiers to live connections. A connection is
// registered on its first room-management request, not on transport
// connect, and keeps the same identifier for its whole lifetime.
type Registry struct {
	mu      sync.RWMutex
	players map[domain.Connection]string
}

func NewRegistry() *Registry {
	return &Registry{players: make(map[domain.Connection]string)}
}

func (r *Registry) Register(conn domain.Connection) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.players[conn]; ok {
		return id
	}
	id := uuid.New().String()
	r.players[conn] = id
	return id
}

func (r *Registry) Resolve(conn domain.Connection) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.players[conn]
	return id, ok
}

func (r *Registry) Unregister(conn domain.Connection) {
	r.mu.Lock()
	delete(r.players, conn)
	r.mu.Unlock()
}
