package session

import (
	"context"
	"sync"
	"time"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

type memoryEntry struct {
	session   domain.CallSession
	expiresAt time.Time
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]memoryEntry
}

// NewMemoryStore builds a store; ttl <= 0 disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, sessions: map[string]memoryEntry{}}
}

func (m *MemoryStore) Save(_ context.Context, s *domain.CallSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := memoryEntry{session: *s}
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}
	m.sessions[s.ID] = entry
	return nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*domain.CallSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.live(id)
	if !ok {
		return nil, ErrNotFound
	}
	s := entry.session
	return &s, nil
}

func (m *MemoryStore) Transition(_ context.Context, id string, from, to domain.SessionState) (*domain.CallSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.live(id)
	if !ok {
		return nil, ErrNotFound
	}
	if entry.session.State != from {
		s := entry.session
		return &s, ErrStateMismatch
	}
	entry.session.State = to
	m.sessions[id] = entry
	s := entry.session
	return &s, nil
}

func (m *MemoryStore) live(id string) (memoryEntry, bool) {
	entry, ok := m.sessions[id]
	if !ok {
		return memoryEntry{}, false
	}
	if !entry.expiresAt.IsZero() && m.now().After(entry.expiresAt) {
		delete(m.sessions, id)
		return memoryEntry{}, false
	}
	return entry, true
}
