package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore keeps sessions in a map. It is the default when no database path is configured.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]SessionRecord
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]SessionRecord)}
}

// CreateSession inserts rec, replacing any record with the same id.
func (m *MemoryStore) CreateSession(_ context.Context, rec *SessionRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	m.mu.Lock()
	m.sessions[rec.ID] = *rec
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) GetSession(_ context.Context, id string) (*SessionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (m *MemoryStore) MarkChatReady(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.sessions[id]
	if !ok {
		return ErrNotFound
	}
	rec.ChatReady = true
	m.sessions[id] = rec
	return nil
}

func (m *MemoryStore) DeleteSession(_ context.Context, id string) (*SessionRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(m.sessions, id)
	return &rec, nil
}

// ListSessions returns all sessions, oldest first.
func (m *MemoryStore) ListSessions(_ context.Context) ([]*SessionRecord, error) {
	m.mu.RLock()
	out := make([]*SessionRecord, 0, len(m.sessions))
	for _, rec := range m.sessions {
		r := rec
		out = append(out, &r)
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) Stats(_ context.Context) (Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var s Stats
	for _, rec := range m.sessions {
		s.Uploaded++
		if rec.ChatReady {
			s.ChatReady++
		}
	}
	return s, nil
}

func (m *MemoryStore) Close() error { return nil }
