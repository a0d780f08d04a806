package session

import (
	"context"
	"sync"
	"time"

	"github.com/bibliobot/bibliobot-server/internal/domain"
)

// MemoryStore keeps sessions in process memory. Sessions are lost on restart.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]domain.Session)}
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, userID string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(&s), nil
}

// Set implements Store.
func (m *MemoryStore) Set(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[s.UserID] = *clone(s)
	return nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, userID)
	return nil
}

// Sweep implements Store.
func (m *MemoryStore) Sweep(_ context.Context, idleBefore time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, s := range m.sessions {
		if s.UpdatedAt.Before(idleBefore) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of stored sessions.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// clone copies s so callers never share slices or pointers with the store.
func clone(s *domain.Session) *domain.Session {
	c := *s
	if s.LastSearch != nil {
		ls := *s.LastSearch
		c.LastSearch = &ls
	}
	if s.PageKeys != nil {
		c.PageKeys = append([]string(nil), s.PageKeys...)
	}
	return &c
}
