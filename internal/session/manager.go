package session

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager hands out one Coordinator per browser session
type Manager struct {
	mu           sync.Mutex
	coordinators map[string]*Coordinator
	create       func() *Coordinator
}

// NewManager creates a manager that builds coordinators with create
func NewManager(create func() *Coordinator) *Manager {
	return &Manager{
		coordinators: make(map[string]*Coordinator),
		create:       create,
	}
}

// NewID returns a fresh session id
func NewID() string {
	return uuid.New().String()
}

// Get returns the coordinator for id, creating it on first use
func (m *Manager) Get(id string) *Coordinator {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.coordinators[id]; ok {
		return c
	}
	c := m.create()
	m.coordinators[id] = c
	return c
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.coordinators)
}

// Sweep closes and forgets coordinators idle for longer than maxIdle
func (m *Manager) Sweep(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)

	m.mu.Lock()
	var stale []*Coordinator
	for id, c := range m.coordinators {
		if c.idleSince().Before(cutoff) {
			stale = append(stale, c)
			delete(m.coordinators, id)
		}
	}
	m.mu.Unlock()

	for _, c := range stale {
		c.Close()
	}
	return len(stale)
}

// RunJanitor sweeps idle sessions every interval until ctx is done
func (m *Manager) RunJanitor(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(maxIdle); n > 0 {
				log.Printf("Closed %d idle sessions", n)
			}
		}
	}
}

// Close releases every coordinator
func (m *Manager) Close() {
	m.mu.Lock()
	coordinators := m.coordinators
	m.coordinators = make(map[string]*Coordinator)
	m.mu.Unlock()

	for _, c := range coordinators {
		c.Close()
	}
}
