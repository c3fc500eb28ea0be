package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

// EnsureSchema creates the tables the service depends on when they are
// missing. The datasets table carries no uniqueness index on
// (course_id, sem); the one-dataset-per-pair invariant is enforced by the
// merge flow at the application level.
func EnsureSchema(db *sqlx.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS courses (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL DEFAULT '',
			code        TEXT NOT NULL DEFAULT '',
			assessments JSONB NOT NULL DEFAULT '[]'::jsonb,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS datasets (
			id             TEXT PRIMARY KEY,
			course_id      TEXT NOT NULL,
			sem            TEXT NOT NULL,
			academic_years JSONB NOT NULL DEFAULT '[]'::jsonb,
			columns        JSONB NOT NULL DEFAULT '[]'::jsonb,
			data           JSONB NOT NULL DEFAULT '[]'::jsonb,
			created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_datasets_course_sem ON datasets (course_id, sem)`,
	}

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
