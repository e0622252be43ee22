package hub

import (
	"crypto/rand"
	"log/slog"
	"sync"
)

const (
	DefaultMinPlayers = 2
	DefaultMaxPlayers = 2
)

const (
	roomCodeLength = 6
	roomCodeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// Directory owns every live room and the player->room index used to
// resolve a sender's room in O(1). The index never names a player absent
// from the referenced room's member set.
type Directory struct {
	minPlayers int
	maxPlayers int
	logger     *slog.Logger

	mu         sync.RWMutex
	rooms      map[string]*Room
	playerRoom map[string]string
}

func NewDirectory(minPlayers, maxPlayers int, logger *slog.Logger) *Directory {
	return &Directory{
		minPlayers: minPlayers,
		maxPlayers: maxPlayers,
		logger:     logger,
		rooms:      make(map[string]*Room),
		playerRoom: make(map[string]string),
	}
}

// CreateRoom inserts a new empty room under a code that is unique among
// currently-live rooms. Generation and insert share one critical section
// so concurrent creates cannot race into the same code.
func (d *Directory) CreateRoom() *Room {
	d.mu.Lock()
	defer d.mu.Unlock()

	id := generateRoomCode()
	for {
		if _, taken := d.rooms[id]; !taken {
			break
		}
		id = generateRoomCode()
	}

	room := newRoom(id, d.minPlayers, d.maxPlayers)
	d.rooms[id] = room
	d.logger.Info("room created", "roomId", id)
	return room
}

func (d *Directory) Room(roomID string) (*Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	room, ok := d.rooms[roomID]
	return room, ok
}

// Bind records which room a player belongs to.
func (d *Directory) Bind(playerID, roomID string) {
	d.mu.Lock()
	d.playerRoom[playerID] = roomID
	d.mu.Unlock()
}

// RoomFor resolves a player's current room via the index.
func (d *Directory) RoomFor(playerID string) (*Room, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	roomID, ok := d.playerRoom[playerID]
	if !ok {
		return nil, false
	}
	room, ok := d.rooms[roomID]
	return room, ok
}

// Leave removes the player from its room, drops the index entry, and
// deletes the room the moment it empties. It reports false if the player
// had no room.
func (d *Directory) Leave(playerID string) (*Room, bool) {
	d.mu.Lock()
	roomID, ok := d.playerRoom[playerID]
	if !ok {
		d.mu.Unlock()
		return nil, false
	}
	delete(d.playerRoom, playerID)
	room := d.rooms[roomID]
	d.mu.Unlock()

	if room == nil {
		return nil, false
	}

	room.RemovePlayer(playerID)

	if room.Size() == 0 {
		d.mu.Lock()
		if live, ok := d.rooms[roomID]; ok && live.Size() == 0 {
			delete(d.rooms, roomID)
			d.logger.Info("room removed", "roomId", roomID)
		}
		d.mu.Unlock()
	}
	return room, true
}

func (d *Directory) Stats() (rooms, players int) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms), len(d.playerRoom)
}

func generateRoomCode() string {
	b := make([]byte, roomCodeLength)
	_, _ = rand.Read(b)
	for i := range b {
		b[i] = roomCodeChars[int(b[i])%len(roomCodeChars)]
	}
	return string(b)
}
