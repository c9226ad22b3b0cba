// Package migrations applies the database schema.
package migrations

import (
	"context"
	"database/sql"
	"fmt"
)

// statements run in order on startup. Each must be idempotent; Apply will
// not update existing table definitions.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS entries (
		id serial PRIMARY KEY,
		title VARCHAR (127) NOT NULL,
		text TEXT NOT NULL,
		created TIMESTAMP NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS entries_created_idx ON entries (created DESC, id DESC)`,
}

// Apply executes all schema statements against the database.
func Apply(ctx context.Context, db *sql.DB) error {
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %d: %w", i+1, err)
		}
	}
	return nil
}
