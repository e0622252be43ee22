package hub

import (
	"sync"

	"snake-relay-server/domain"
)

type Status string

const (
	// StatusWaiting means the room has fewer than the minimum players.
	StatusWaiting Status = "waiting"
	// StatusReady means enough players are present to start.
	StatusReady Status = "ready"
	// StatusInProgress means a start signal has been broadcast.
	StatusInProgress Status = "in_progress"
)

// Room is a bounded set of player->connection pairs sharing one broadcast
// scope. Membership, status, and broadcast are serialized under one mutex
// so capacity checks and status transitions never interleave.
type Room struct {
	id         string
	minPlayers int
	maxPlayers int

	mu      sync.RWMutex
	members map[string]domain.Connection
	order   []string // join order, oldest first
	status  Status
}

func newRoom(id string, minPlayers, maxPlayers int) *Room {
	return &Room{
		id:         id,
		minPlayers: minPlayers,
		maxPlayers: maxPlayers,
		members:    make(map[string]domain.Connection),
		status:     StatusWaiting,
	}
}

func (r *Room) ID() string { return r.id }

func (r *Room) MinPlayers() int { return r.minPlayers }

func (r *Room) Size() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.members)
}

func (r *Room) Status() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.status
}

// AddPlayer inserts the pair and recomputes status. It reports false, with
// no mutation, when the room is already at capacity.
func (r *Room) AddPlayer(playerID string, conn domain.Connection) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.members) >= r.maxPlayers {
		return false
	}

	if _, exists := r.members[playerID]; !exists {
		r.order = append(r.order, playerID)
	}
	r.members[playerID] = conn
	r.recomputeStatus()
	return true
}

// RemovePlayer is idempotent; removing an absent player is a no-op.
func (r *Room) RemovePlayer(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.members[playerID]; !exists {
		return
	}
	delete(r.members, playerID)
	for i, id := range r.order {
		if id == playerID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.recomputeStatus()
}

// Start marks the explicit start signal. It only fires from READY.
func (r *Room) Start() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != StatusReady {
		return false
	}
	r.status = StatusInProgress
	return true
}

// Broadcast sends data to every member except excludeID. Pass "" to reach
// everyone. Delivery is best-effort per connection; a failed send never
// aborts delivery to the rest, and the dead peer is reaped by its own
// transport close event.
func (r *Room) Broadcast(data []byte, excludeID string) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, conn := range r.members {
		if id == excludeID {
			continue
		}
		_ = conn.Send(data)
	}
}

// Member returns the connection of a current member.
func (r *Room) Member(playerID string) (domain.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.members[playerID]
	return conn, ok
}

// Oldest returns the longest-present member other than excludeID.
func (r *Room) Oldest(excludeID string) (string, domain.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, id := range r.order {
		if id == excludeID {
			continue
		}
		return id, r.members[id], true
	}
	return "", nil, false
}

// recomputeStatus holds r.mu. Dropping below the minimum pauses the
// session rather than ending it: the vacated slot can be refilled and the
// snapshot handshake brings the newcomer up to speed.
func (r *Room) recomputeStatus() {
	if len(r.members) < r.minPlayers {
		r.status = StatusWaiting
		return
	}
	if r.status != StatusInProgress {
		r.status = StatusReady
	}
}
