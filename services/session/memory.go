package session

import (
	"context"
	"sort"
	"sync"
	"time"

	"moveline/models"
)

type memoryEntry struct {
	mu      sync.Mutex
	s       *models.Session
	removed bool
}

// MemoryStore keeps sessions in process memory with one lock per session.
// Values are copied on the way in and out.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry)}
}

func (m *MemoryStore) Create(_ context.Context, s *models.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[s.ID]; ok && !e.removed {
		return ErrSessionExists
	}
	m.entries[s.ID] = &memoryEntry{s: s.Clone()}
	return nil
}

func (m *MemoryStore) entry(id string) (*memoryEntry, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	return e, ok
}

func (m *MemoryStore) Get(_ context.Context, id string) (*models.Session, error) {
	e, ok := m.entry(id)
	if !ok {
		return nil, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, ErrNotFound
	}
	return e.s.Clone(), nil
}

func (m *MemoryStore) Update(_ context.Context, id string, fn Mutator) (*models.Session, error) {
	e, ok := m.entry(id)
	if !ok {
		return nil, ErrNotFound
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, ErrNotFound
	}

	next := e.s.Clone()
	if err := fn(next); err != nil {
		return nil, err
	}
	next.ID = id
	next.Version = e.s.Version + 1
	e.s = next
	return next.Clone(), nil
}

func (m *MemoryStore) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	e, ok := m.entries[id]
	delete(m.entries, id)
	m.mu.Unlock()
	if ok {
		e.mu.Lock()
		e.removed = true
		e.mu.Unlock()
	}
	return nil
}

func (m *MemoryStore) Idle(_ context.Context, before time.Time) ([]string, error) {
	var ids []string
	for _, s := range m.snapshot() {
		if s.LastActivityAt.Before(before) {
			ids = append(ids, s.ID)
		}
	}
	return ids, nil
}

func (m *MemoryStore) List(_ context.Context) ([]*models.Session, error) {
	out := m.snapshot()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *MemoryStore) snapshot() []*models.Session {
	m.mu.RLock()
	entries := make([]*memoryEntry, 0, len(m.entries))
	for _, e := range m.entries {
		entries = append(entries, e)
	}
	m.mu.RUnlock()

	out := make([]*models.Session, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.removed {
			out = append(out, e.s.Clone())
		}
		e.mu.Unlock()
	}
	return out
}
