// Package postgres implements store.Store on top of PostgreSQL, following
// the connection-pool and migration conventions of the teacher's
// internal/database package (pgxpool.Pool, a Connect + Migrate pair).
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect creates a connection pool to PostgreSQL.
func Connect(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	if dsn == "" {
		return nil, fmt.Errorf("DATABASE_URL not set")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}

// Migrate creates the group/face/file tables if they do not already exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS face_groups (
			user_id            TEXT NOT NULL,
			group_id           TEXT NOT NULL,
			interview_id       TEXT NOT NULL DEFAULT '',
			face_ids           TEXT[] NOT NULL DEFAULT '{}',
			file_ids           TEXT[] NOT NULL DEFAULT '{}',
			face_count         INTEGER NOT NULL DEFAULT 0,
			leader_face_id     TEXT NOT NULL DEFAULT '',
			leader_file_id     TEXT NOT NULL DEFAULT '',
			leader_bbox        DOUBLE PRECISION[] NOT NULL DEFAULT '{}',
			status             TEXT NOT NULL DEFAULT 'unreviewed',
			group_name         TEXT NOT NULL DEFAULT '',
			person_name        TEXT NOT NULL DEFAULT '',
			merged_from        TEXT[] NOT NULL DEFAULT '{}',
			created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, group_id)
		)`,
		`CREATE INDEX IF NOT EXISTS face_groups_face_ids_idx ON face_groups USING GIN (face_ids)`,
		`CREATE INDEX IF NOT EXISTS face_groups_updated_at_idx ON face_groups (user_id, updated_at DESC)`,
		`CREATE TABLE IF NOT EXISTS faces (
			user_id     TEXT NOT NULL,
			face_id     TEXT NOT NULL,
			group_id    TEXT NOT NULL DEFAULT '',
			file_id     TEXT NOT NULL DEFAULT '',
			bbox_left   DOUBLE PRECISION NOT NULL DEFAULT 0,
			bbox_top    DOUBLE PRECISION NOT NULL DEFAULT 0,
			bbox_width  DOUBLE PRECISION NOT NULL DEFAULT 0,
			bbox_height DOUBLE PRECISION NOT NULL DEFAULT 0,
			has_bbox    BOOLEAN NOT NULL DEFAULT FALSE,
			confidence  DOUBLE PRECISION NOT NULL DEFAULT 0,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, face_id)
		)`,
		`CREATE INDEX IF NOT EXISTS faces_group_id_idx ON faces (user_id, group_id)`,
		`CREATE TABLE IF NOT EXISTS files (
			user_id                  TEXT NOT NULL,
			file_id                  TEXT NOT NULL,
			url                      TEXT NOT NULL DEFAULT '',
			extracted_faces          JSONB NOT NULL DEFAULT '[]',
			deleted_faces            JSONB NOT NULL DEFAULT '[]',
			face_group_mapping       JSONB NOT NULL DEFAULT '{}',
			face_groups_processed_at TIMESTAMPTZ,
			PRIMARY KEY (user_id, file_id)
		)`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
