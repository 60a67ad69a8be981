package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/me/trialq/pkg/model"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite database at dbPath and returns
// a Store. Use ":memory:" for an in-memory database (useful in tests).
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}

	// WAL keeps concurrent history/serve reads cheap.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma wal: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("pragma fk: %w", err)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.With("component", "store"),
	}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Migrate creates all required tables and indexes.
func (s *SQLiteStore) Migrate(ctx context.Context) error {
	s.logger.Debug("sql", "op", "migrate")
	return migrate(ctx, s.db)
}

// CreateRun inserts the run record and its per-trial outcomes in one
// transaction.
func (s *SQLiteStore) CreateRun(ctx context.Context, run *model.Run) error {
	s.logger.Debug("sql", "op", "insert", "table", "runs", "id", run.ID)

	statsJSON, err := json.Marshal(run.Stats)
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, mode, stats, started_at, completed_at)
		 VALUES (?, ?, ?, ?, ?)`,
		run.ID, string(run.Mode), string(statsJSON),
		run.StartedAt.Format(time.RFC3339Nano), run.CompletedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return err
	}

	for i, tr := range run.Trials {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_trials (run_id, position, path, outcome, message)
			 VALUES (?, ?, ?, ?, ?)`,
			run.ID, i, tr.Path, string(tr.Outcome), tr.Message,
		)
		if err != nil {
			return fmt.Errorf("insert trial %s: %w", tr.Path, err)
		}
	}

	return tx.Commit()
}

// GetRun loads one run with its trial outcomes. Returns nil when the id is
// unknown.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	s.logger.Debug("sql", "op", "select", "table", "runs", "id", id)

	var run model.Run
	var statsJSON, startedAt, completedAt string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, mode, stats, started_at, completed_at FROM runs WHERE id = ?`, id,
	).Scan(&run.ID, (*string)(&run.Mode), &statsJSON, &startedAt, &completedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(statsJSON), &run.Stats); err != nil {
		return nil, fmt.Errorf("unmarshal stats: %w", err)
	}
	run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
	run.CompletedAt, _ = time.Parse(time.RFC3339Nano, completedAt)

	rows, err := s.db.QueryContext(ctx,
		`SELECT path, outcome, message FROM run_trials WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var tr model.TrialResult
		if err := rows.Scan(&tr.Path, (*string)(&tr.Outcome), &tr.Message); err != nil {
			return nil, err
		}
		run.Trials = append(run.Trials, tr)
	}
	return &run, rows.Err()
}

// ListRuns returns runs ordered newest first, without their trial lists,
// plus the total count.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit, offset int) ([]*model.Run, int, error) {
	s.logger.Debug("sql", "op", "list", "table", "runs", "limit", limit, "offset", offset)

	if limit <= 0 || limit > 500 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM runs`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, mode, stats, started_at, completed_at
		 FROM runs ORDER BY started_at DESC LIMIT ? OFFSET ?`,
		limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		var run model.Run
		var statsJSON, startedAt, completedAt string

		if err := rows.Scan(&run.ID, (*string)(&run.Mode), &statsJSON, &startedAt, &completedAt); err != nil {
			return nil, 0, err
		}
		if err := json.Unmarshal([]byte(statsJSON), &run.Stats); err != nil {
			return nil, 0, fmt.Errorf("unmarshal stats: %w", err)
		}
		run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		run.CompletedAt, _ = time.Parse(time.RFC3339Nano, completedAt)

		runs = append(runs, &run)
	}
	return runs, total, rows.Err()
}
