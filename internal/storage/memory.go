package storage

import (
	"fmt"
	"sync"

	"github.com/starford/marknote/internal/apperr"
	"github.com/starford/marknote/internal/models"
)

// Memory implements NoteStore with a map guarded by a RWMutex.
// Notes are copied on the way in and out so callers never share state with the store.
type Memory struct {
	mu    sync.RWMutex
	notes map[string]*models.Note
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{notes: make(map[string]*models.Note)}
}

// Create implements NoteStore.
func (m *Memory) Create(n *models.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[n.ID]; ok {
		return fmt.Errorf("storage: note %s: %w", n.ID, apperr.ErrAlreadyExists)
	}
	m.notes[n.ID] = clone(n)
	return nil
}

// Get implements NoteStore.
func (m *Memory) Get(id string) (*models.Note, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	n, ok := m.notes[id]
	if !ok {
		return nil, fmt.Errorf("storage: note %s: %w", id, apperr.ErrNotFound)
	}
	return clone(n), nil
}

// Update implements NoteStore.
func (m *Memory) Update(id string, fn func(n *models.Note) error) (*models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.notes[id]
	if !ok {
		return nil, fmt.Errorf("storage: note %s: %w", id, apperr.ErrNotFound)
	}
	next := clone(cur)
	if err := fn(next); err != nil {
		return nil, err
	}
	next.ID = id
	m.notes[id] = next
	return clone(next), nil
}

// Delete implements NoteStore.
func (m *Memory) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.notes[id]; !ok {
		return fmt.Errorf("storage: note %s: %w", id, apperr.ErrNotFound)
	}
	delete(m.notes, id)
	return nil
}

// List implements NoteStore.
func (m *Memory) List() []*models.Note {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Note, 0, len(m.notes))
	for _, n := range m.notes {
		out = append(out, clone(n))
	}
	return out
}

// Len returns the number of stored notes.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.notes)
}

func clone(n *models.Note) *models.Note {
	c := *n
	if n.Tags != nil {
		c.Tags = append([]string(nil), n.Tags...)
	}
	return &c
}
