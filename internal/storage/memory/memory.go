// Package memory provides an in-memory entry store. It is safe for
// concurrent use and is primarily intended for tests and local development.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/quillhub/journal/internal/domain/entry"
	"github.com/quillhub/journal/internal/storage"
)

// Store is an in-memory implementation of storage.EntryStore.
type Store struct {
	mu      sync.RWMutex
	nextID  int
	entries map[int]entry.Entry

	// Now lets tests control the creation timestamp. Defaults to time.Now.
	Now func() time.Time
}

var _ storage.EntryStore = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{
		nextID:  1,
		entries: make(map[int]entry.Entry),
		Now:     time.Now,
	}
}

func (s *Store) Create(_ context.Context, title, text string) (entry.Entry, error) {
	if err := entry.Validate(title, text); err != nil {
		return entry.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e := entry.Entry{
		ID:      s.nextID,
		Title:   title,
		Text:    text,
		Created: s.Now().UTC(),
	}
	s.nextID++
	s.entries[e.ID] = e
	return e, nil
}

func (s *Store) List(_ context.Context) ([]entry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]entry.Entry, 0, len(s.entries))
	for _, e := range s.entries {
		result = append(result, e)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Created.Equal(result[j].Created) {
			return result[i].Created.After(result[j].Created)
		}
		return result[i].ID > result[j].ID
	})
	return result, nil
}

func (s *Store) Get(_ context.Context, id int) (entry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return entry.Entry{}, storage.ErrNotFound
	}
	return e, nil
}

func (s *Store) Update(_ context.Context, id int, title, text string) (entry.Entry, error) {
	if err := entry.Validate(title, text); err != nil {
		return entry.Entry{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return entry.Entry{}, storage.ErrNotFound
	}
	e.Title = title
	e.Text = text
	s.entries[id] = e
	return e, nil
}

// Len reports the number of stored entries.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
