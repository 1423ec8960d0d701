// Package store persists computed Fibonacci terms and batch run history in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fibcalc/internal/logging"

	_ "modernc.org/sqlite"
)

// TermKey identifies a cached term. Width is 0 for arbitrary precision.
type TermKey struct {
	Mode  string
	Width int
	N     int64
}

// Run is the summary of one batch evaluation.
type Run struct {
	ID         string
	Source     string
	Evaluator  string
	Count      int
	Failed     int
	CacheHits  int
	StartedAt  time.Time
	FinishedAt time.Time
}

// TermStore is a SQLite-backed cache of terms.
type TermStore struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// NewTermStore opens (or creates) the database at path.
func NewTermStore(path string) (*TermStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps :memory: databases coherent and serialises writers.
	db.SetMaxOpenConns(1)

	s := &TermStore{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	logging.Store("Term store opened: %s", path)
	return s, nil
}

// initialize creates the required tables.
func (s *TermStore) initialize() error {
	termsTable := `
	CREATE TABLE IF NOT EXISTS terms (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		mode TEXT NOT NULL,
		width INTEGER NOT NULL,
		n INTEGER NOT NULL,
		value TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(mode, width, n)
	);
	CREATE INDEX IF NOT EXISTS idx_terms_lookup ON terms(mode, width, n);
	`

	runsTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		source TEXT,
		count INTEGER NOT NULL,
		failed INTEGER NOT NULL,
		started_at DATETIME NOT NULL,
		finished_at DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`

	for _, table := range []string{termsTable, runsTable} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return RunMigrations(s.db)
}

// Close closes the database connection.
func (s *TermStore) Close() error {
	return s.db.Close()
}

// Path returns the database location.
func (s *TermStore) Path() string { return s.dbPath }

// Get looks up a cached term.
func (s *TermStore) Get(ctx context.Context, key TermKey) (*big.Int, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var text string
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM terms WHERE mode = ? AND width = ? AND n = ?",
		key.Mode, key.Width, key.N,
	).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read term %d: %w", key.N, err)
	}

	v, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, false, fmt.Errorf("corrupt cached value for term %d: %q", key.N, text)
	}
	return v, true, nil
}

// Put stores a term, replacing any previous value for the key.
func (s *TermStore) Put(ctx context.Context, key TermKey, value *big.Int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO terms (mode, width, n, value) VALUES (?, ?, ?, ?)",
		key.Mode, key.Width, key.N, value.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to store term %d: %w", key.N, err)
	}
	logging.StoreDebug("Stored term %s/%d n=%d", key.Mode, key.Width, key.N)
	return nil
}

// Count returns the number of cached terms.
func (s *TermStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM terms").Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// RecordRun persists a batch run summary.
func (s *TermStore) RecordRun(ctx context.Context, r Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, source, evaluator, count, failed, cache_hits, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Source, r.Evaluator, r.Count, r.Failed, r.CacheHits,
		r.StartedAt.UTC(), r.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to record run %s: %w", r.ID, err)
	}
	logging.Store("Recorded run %s (%d terms, %d failed)", r.ID, r.Count, r.Failed)
	return nil
}

// RecentRuns returns the most recent runs, newest first.
func (s *TermStore) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, COALESCE(source, ''), evaluator, count, failed, cache_hits, started_at, finished_at
		 FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.Source, &r.Evaluator, &r.Count, &r.Failed, &r.CacheHits, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
