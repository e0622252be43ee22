package hub

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDirectory(minPlayers, maxPlayers int) *Directory {
	return NewDirectory(minPlayers, maxPlayers, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestDirectory_CreateRoomUniqueIDs(t *testing.T) {
	d := testDirectory(2, 2)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		room := d.CreateRoom()
		require.Len(t, room.ID(), roomCodeLength)
		require.False(t, seen[room.ID()], "duplicate room id %s", room.ID())
		seen[room.ID()] = true

		assert.Equal(t, StatusWaiting, room.Status())
		assert.Equal(t, 0, room.Size())
	}
}

func TestDirectory_RoomLookup(t *testing.T) {
	d := testDirectory(2, 2)
	room := d.CreateRoom()

	got, ok := d.Room(room.ID())
	require.True(t, ok)
	assert.Same(t, room, got)

	_, ok = d.Room("nonexistent")
	assert.False(t, ok)
}

func TestDirectory_BindAndRoomFor(t *testing.T) {
	d := testDirectory(2, 2)
	room := d.CreateRoom()
	room.AddPlayer("p1", &mockConn{})
	d.Bind("p1", room.ID())

	got, ok := d.RoomFor("p1")
	require.True(t, ok)
	assert.Same(t, room, got)

	_, ok = d.RoomFor("stranger")
	assert.False(t, ok)
}

func TestDirectory_Leave(t *testing.T) {
	d := testDirectory(2, 2)
	room := d.CreateRoom()
	room.AddPlayer("p1", &mockConn{})
	room.AddPlayer("p2", &mockConn{})
	d.Bind("p1", room.ID())
	d.Bind("p2", room.ID())

	left, ok := d.Leave("p1")
	require.True(t, ok)
	assert.Same(t, room, left)
	assert.Equal(t, 1, room.Size())
	assert.Equal(t, StatusWaiting, room.Status())

	_, ok = d.RoomFor("p1")
	assert.False(t, ok, "index entry must be gone")

	_, ok = d.Room(room.ID())
	assert.True(t, ok, "non-empty room stays in the directory")

	_, ok = d.Leave("p1")
	assert.False(t, ok, "leave is a no-op for an unbound player")

	_, ok = d.Leave("p2")
	require.True(t, ok)
	_, ok = d.Room(room.ID())
	assert.False(t, ok, "empty room is removed immediately")
}

func TestDirectory_Stats(t *testing.T) {
	d := testDirectory(2, 2)

	rooms, players := d.Stats()
	assert.Equal(t, 0, rooms)
	assert.Equal(t, 0, players)

	r1 := d.CreateRoom()
	r1.AddPlayer("p1", &mockConn{})
	d.Bind("p1", r1.ID())
	r2 := d.CreateRoom()
	r2.AddPlayer("p2", &mockConn{})
	r2.AddPlayer("p3", &mockConn{})
	d.Bind("p2", r2.ID())
	d.Bind("p3", r2.ID())

	rooms, players = d.Stats()
	assert.Equal(t, 2, rooms)
	assert.Equal(t, 3, players)
}
