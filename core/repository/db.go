package repository

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// DB wraps the Postgres connection used by the repositories
type DB struct {
	*sql.DB
}

// NewDB opens and verifies a Postgres connection
func NewDB(dsn string) (*DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// EnsureSchema creates the tables the repositories depend on
func (db *DB) EnsureSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS stage_invocations (
			id UUID PRIMARY KEY,
			stage TEXT NOT NULL,
			operation TEXT NOT NULL,
			job_name TEXT NOT NULL DEFAULT '',
			debug BOOLEAN NOT NULL DEFAULT FALSE,
			outcome TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			duration_ms BIGINT NOT NULL DEFAULT 0,
			meta_json TEXT NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_stage_invocations_stage
			ON stage_invocations (stage, created_at DESC);
	`

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
