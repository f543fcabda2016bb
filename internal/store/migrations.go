package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for all console tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS sessions (
		id           TEXT PRIMARY KEY,
		token        TEXT NOT NULL,
		user_profile TEXT NOT NULL,
		created_at   TEXT NOT NULL
	)`,
}

// migrate applies the schema statements in order.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
