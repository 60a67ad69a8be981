package store

import (
	"context"
	"database/sql"
)

// schema contains the DDL for all trialq tables.
// Each statement uses IF NOT EXISTS for idempotency.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id           TEXT PRIMARY KEY,
		mode         TEXT NOT NULL,
		stats        TEXT NOT NULL DEFAULT '{}',
		started_at   TEXT NOT NULL,
		completed_at TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS run_trials (
		run_id   TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		path     TEXT NOT NULL,
		outcome  TEXT NOT NULL,
		message  TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (run_id, position)
	)`,

	`CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at)`,
	`CREATE INDEX IF NOT EXISTS idx_run_trials_run_id ON run_trials(run_id)`,
	`CREATE INDEX IF NOT EXISTS idx_run_trials_outcome ON run_trials(outcome)`,
}

// migrate executes all schema DDL statements.
func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
