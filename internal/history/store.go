// Package history persists build run summaries in a SQLite database so
// long-lived watch processes keep an inspectable record of past runs.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// BuildRecord is one completed run.
type BuildRecord struct {
	BuildID   string
	StartedAt time.Time
	Duration  time.Duration
	Pages     int
	Assets    int
	Failures  []FailureRecord
}

// FailureRecord is one per-file failure within a run.
type FailureRecord struct {
	Path   string
	Reason string
}

// Store is a SQLite-backed build history store.
// Use ":memory:" for an in-memory database, or a file path for persistence.
type Store struct {
	db *sql.DB
}

// Open opens (and initializes) the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS builds (
		build_id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		assets INTEGER NOT NULL,
		failures INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS build_failures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		build_id TEXT NOT NULL REFERENCES builds(build_id),
		path TEXT NOT NULL,
		reason TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_failures_build_id ON build_failures(build_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends one build run and its failures.
func (s *Store) Record(ctx context.Context, rec BuildRecord) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO builds (build_id, started_at, duration_ms, pages, assets, failures) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.BuildID, rec.StartedAt.Unix(), rec.Duration.Milliseconds(), rec.Pages, rec.Assets, len(rec.Failures))
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}

	for _, f := range rec.Failures {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO build_failures (build_id, path, reason) VALUES (?, ?, ?)`,
			rec.BuildID, f.Path, f.Reason); err != nil {
			return fmt.Errorf("insert failure: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Recent returns up to limit build records, newest first, failures included.
func (s *Store) Recent(ctx context.Context, limit int) ([]BuildRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT build_id, started_at, duration_ms, pages, assets FROM builds ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var records []BuildRecord
	for rows.Next() {
		var rec BuildRecord
		var started, durationMS int64
		if err := rows.Scan(&rec.BuildID, &started, &durationMS, &rec.Pages, &rec.Assets); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		rec.StartedAt = time.Unix(started, 0)
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range records {
		failures, err := s.failuresFor(ctx, records[i].BuildID)
		if err != nil {
			return nil, err
		}
		records[i].Failures = failures
	}
	return records, nil
}

func (s *Store) failuresFor(ctx context.Context, buildID string) ([]FailureRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, reason FROM build_failures WHERE build_id = ? ORDER BY id`, buildID)
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()

	var failures []FailureRecord
	for rows.Next() {
		var f FailureRecord
		if err := rows.Scan(&f.Path, &f.Reason); err != nil {
			return nil, fmt.Errorf("scan failure: %w", err)
		}
		failures = append(failures, f)
	}
	return failures, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }
