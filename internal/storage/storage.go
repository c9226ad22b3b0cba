// Package storage defines the persistence interface for journal entries.
package storage

import (
	"context"
	"errors"

	"github.com/quillhub/journal/internal/domain/entry"
)

// ErrNotFound is returned when no entry exists with the requested id.
var ErrNotFound = errors.New("entry not found")

// EntryStore persists journal entries. Implementations stamp Created in UTC
// on create and never modify it afterwards. List returns entries ordered by
// creation time descending, newest insertion first on ties.
type EntryStore interface {
	Create(ctx context.Context, title, text string) (entry.Entry, error)
	List(ctx context.Context) ([]entry.Entry, error)
	Get(ctx context.Context, id int) (entry.Entry, error)
	Update(ctx context.Context, id int, title, text string) (entry.Entry, error)
}

type contextKey struct{}

// NewContext returns a context carrying the store bound to the current
// request. The request lifecycle middleware installs a transaction-scoped
// store here; handlers must not hold it beyond the request.
func NewContext(ctx context.Context, store EntryStore) context.Context {
	return context.WithValue(ctx, contextKey{}, store)
}

// FromContext returns the request-scoped store, or nil if none is installed.
func FromContext(ctx context.Context) EntryStore {
	store, _ := ctx.Value(contextKey{}).(EntryStore)
	return store
}
