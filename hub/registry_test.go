package hub

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	c1, c2 := &mockConn{}, &mockConn{}

	id1 := r.Register(c1)
	id2 := r.Register(c2)
	require.NotEmpty(t, id1)
	assert.NotEqual(t, id1, id2)

	assert.Equal(t, id1, r.Register(c1), "re-registering keeps the identifier")
}

func TestRegistry_ResolveUnregister(t *testing.T) {
	r := NewRegistry()
	conn := &mockConn{}

	_, ok := r.Resolve(conn)
	assert.False(t, ok)

	id := r.Register(conn)
	got, ok := r.Resolve(conn)
	require.True(t, ok)
	assert.Equal(t, id, got)

	r.Unregister(conn)
	_, ok = r.Resolve(conn)
	assert.False(t, ok)

	r.Unregister(conn) // no-op
}
