package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// Manager owns the live seat selections, keyed by a random UUID.
type Manager struct {
	taken TakenSeatsSource

	mu       sync.RWMutex
	sessions map[string]*SeatSelection
}

func NewManager(taken TakenSeatsSource) *Manager {
	return &Manager{taken: taken, sessions: make(map[string]*SeatSelection)}
}

func (m *Manager) Create() *SeatSelection {
	s := NewSeatSelection(uuid.NewString(), m.taken)
	m.mu.Lock()
	m.sessions[s.ID()] = s
	m.mu.Unlock()
	return s
}

func (m *Manager) Get(id string) (*SeatSelection, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove drops the session. It reports whether it existed.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	return ok
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
