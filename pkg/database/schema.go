package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema holds the idempotent DDL for the glossary tables. Term name uniqueness
// is enforced here; the service-level existence check only improves the error.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS categories (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS terms (
		id BIGSERIAL PRIMARY KEY,
		name VARCHAR(100) NOT NULL UNIQUE,
		category_id BIGINT NOT NULL REFERENCES categories(id),
		definition TEXT NOT NULL,
		alt1 TEXT NOT NULL DEFAULT '',
		alt2 TEXT NOT NULL DEFAULT '',
		alt3 TEXT NOT NULL DEFAULT '',
		inquiz BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE INDEX IF NOT EXISTS idx_terms_category_id ON terms (category_id)`,
	`CREATE INDEX IF NOT EXISTS idx_terms_lower_name ON terms (LOWER(name) text_pattern_ops)`,
	`CREATE TABLE IF NOT EXISTS admins (
		id BIGSERIAL PRIMARY KEY,
		username VARCHAR(100) NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
}

// Migrate applies the schema statements in order.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
