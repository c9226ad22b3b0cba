// Package postgres implements the entry store against PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/quillhub/journal/internal/domain/entry"
	"github.com/quillhub/journal/internal/storage"
)

// Querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// The request lifecycle hands the store its per-request transaction through
// this seam, so every operation joins the enclosing request transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements storage.EntryStore backed by PostgreSQL.
type Store struct {
	q Querier
}

var _ storage.EntryStore = (*Store)(nil)

// New creates a Store using the provided database handle or transaction.
func New(q Querier) *Store {
	return &Store{q: q}
}

func (s *Store) Create(ctx context.Context, title, text string) (entry.Entry, error) {
	if err := entry.Validate(title, text); err != nil {
		return entry.Entry{}, err
	}

	e := entry.Entry{
		Title:   title,
		Text:    text,
		Created: time.Now().UTC(),
	}

	err := s.q.QueryRowContext(ctx, `
		INSERT INTO entries (title, text, created)
		VALUES ($1, $2, $3)
		RETURNING id
	`, e.Title, e.Text, e.Created).Scan(&e.ID)
	if err != nil {
		return entry.Entry{}, mapError(err)
	}
	return e, nil
}

func (s *Store) List(ctx context.Context) ([]entry.Entry, error) {
	rows, err := s.q.QueryContext(ctx, `
		SELECT id, title, text, created
		FROM entries
		ORDER BY created DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []entry.Entry{}
	for rows.Next() {
		var e entry.Entry
		if err := rows.Scan(&e.ID, &e.Title, &e.Text, &e.Created); err != nil {
			return nil, err
		}
		e.Created = e.Created.UTC()
		result = append(result, e)
	}
	return result, rows.Err()
}

func (s *Store) Get(ctx context.Context, id int) (entry.Entry, error) {
	row := s.q.QueryRowContext(ctx, `
		SELECT id, title, text, created
		FROM entries
		WHERE id = $1
	`, id)

	var e entry.Entry
	if err := row.Scan(&e.ID, &e.Title, &e.Text, &e.Created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return entry.Entry{}, storage.ErrNotFound
		}
		return entry.Entry{}, err
	}
	e.Created = e.Created.UTC()
	return e, nil
}

func (s *Store) Update(ctx context.Context, id int, title, text string) (entry.Entry, error) {
	if err := entry.Validate(title, text); err != nil {
		return entry.Entry{}, err
	}

	existing, err := s.Get(ctx, id)
	if err != nil {
		return entry.Entry{}, err
	}

	result, err := s.q.ExecContext(ctx, `
		UPDATE entries
		SET title = $2, text = $3
		WHERE id = $1
	`, id, title, text)
	if err != nil {
		return entry.Entry{}, mapError(err)
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return entry.Entry{}, storage.ErrNotFound
	}

	existing.Title = title
	existing.Text = text
	return existing, nil
}

// mapError converts constraint violations (class 23) and data faults such as
// value truncation (class 22) into the validation error kind, so writes that
// bypass handler validation still surface the right failure.
func mapError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		class := pqErr.Code.Class()
		if class == "22" || class == "23" {
			return &entry.ValidationError{Field: "entry", Reason: fmt.Sprintf("rejected by database: %s", pqErr.Message)}
		}
	}
	return err
}
