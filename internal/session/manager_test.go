package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_GetCreatesOncePerID(t *testing.T) {
	created := 0
	m := NewManager(func() *Coordinator {
		created++
		c, _ := newCoordinator(&countingStore{})
		return c
	})

	a := m.Get("a")
	assert.Same(t, a, m.Get("a"))
	assert.NotSame(t, a, m.Get("b"))
	assert.Equal(t, 2, created)
	assert.Equal(t, 2, m.Len())
}

func TestManager_Sweep(t *testing.T) {
	m := NewManager(func() *Coordinator {
		c, _ := newCoordinator(&countingStore{})
		return c
	})

	old := m.Get("old")
	require.NoError(t, old.SwitchTab(context.Background(), TabMap))
	old.mu.Lock()
	old.lastSeen = time.Now().Add(-2 * time.Hour)
	old.mu.Unlock()
	m.Get("fresh")

	assert.Equal(t, 1, m.Sweep(time.Hour))
	assert.Equal(t, 1, m.Len())

	_, err := old.Scene()
	assert.Error(t, err, "swept sessions release their map")
}

func TestNewID(t *testing.T) {
	assert.NotEqual(t, NewID(), NewID())
	assert.Len(t, NewID(), 36)
}
