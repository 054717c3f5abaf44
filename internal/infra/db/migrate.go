package db

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS blogs (
    id          BIGSERIAL PRIMARY KEY,
    slug        TEXT NOT NULL UNIQUE,
    title       TEXT NOT NULL,
    excerpt     TEXT NOT NULL,
    content     TEXT NOT NULL,
    author      TEXT NOT NULL,
    category    TEXT NOT NULL,
    tags        JSONB NOT NULL DEFAULT '[]'::jsonb,
    image_url   TEXT NOT NULL DEFAULT '',
    published   BOOLEAN NOT NULL DEFAULT FALSE,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	`CREATE TABLE IF NOT EXISTS enrollments (
    id              BIGSERIAL PRIMARY KEY,
    kind            VARCHAR(16) NOT NULL CHECK (kind IN ('course', 'demo')),
    name            TEXT NOT NULL,
    email           TEXT NOT NULL,
    phone           TEXT NOT NULL,
    course          TEXT NOT NULL DEFAULT '',
    preferred_date  TEXT NOT NULL DEFAULT '',
    message         TEXT NOT NULL DEFAULT '',
    source          TEXT NOT NULL DEFAULT '',
    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
)`,
	// public listing: WHERE published ORDER BY created_at DESC
	`CREATE INDEX IF NOT EXISTS idx_blogs_published_created_at ON blogs(published, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_blogs_category ON blogs(category)`,
	// dashboard aggregates and admin listing
	`CREATE INDEX IF NOT EXISTS idx_enrollments_created_at ON enrollments(created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_enrollments_kind ON enrollments(kind)`,
}

// MigrateUp creates the tables and indexes if they do not exist.
// Every statement is idempotent, so it runs on each startup.
func MigrateUp(ctx context.Context, db *sql.DB) error {
	for i, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate step %d: %w", i+1, err)
		}
	}
	return nil
}
