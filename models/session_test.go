package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionTouchFrame(t *testing.T) {
	session := NewSession()
	require.NotEqual(t, [16]byte{}, [16]byte(session.ID))

	session.TouchFrame(1, "mercator")
	session.TouchFrame(7, "globe")

	require.Equal(t, uint64(7), session.LastSeq())
	require.Equal(t, uint64(2), session.Frames())
	require.Equal(t, "globe", session.Projection())
}

func TestSessionStore(t *testing.T) {
	var store SessionStore

	a := NewSession()
	b := NewSession()
	store.Add(a)
	store.Add(b)
	require.Equal(t, 2, store.Len())

	got, ok := store.Get(a.ID)
	require.True(t, ok)
	require.Equal(t, a, got)

	store.Remove(a.ID)
	require.Equal(t, 1, store.Len())
	_, ok = store.Get(a.ID)
	require.False(t, ok)
}
