// Package history provides an optional SQLite-backed store of past review
// runs. The report itself is deterministic and carries no identity; run
// metadata with identity (IDs, timestamps, durations) lives here instead.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/reviewkitio/reviewkit/pkg/compress"
	rkerrors "github.com/reviewkitio/reviewkit/pkg/errors"
	"github.com/reviewkitio/reviewkit/pkg/review"
)

// Store records one row per review run, with the full report JSON kept as
// a zstd-compressed blob.
type Store struct {
	db         *sql.DB
	compressor *compress.Compressor
}

// Entry is one recorded run.
type Entry struct {
	ID              string
	CreatedAt       time.Time
	Verdict         review.Verdict
	Tier            review.Tier
	Coverage        *float64
	FilesChecked    int
	ChecksPerformed int
	Blocking        int
	Warnings        int
	Nitpicks        int
	DurationMs      int64
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	const op = "history.Open"

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, rkerrors.Storage(op, "create history directory", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, rkerrors.Storage(op, "open history database", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, rkerrors.Storage(op, "set pragma", err)
		}
	}
	s := &Store{db: db, compressor: compress.New(compress.LevelDefault)}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		verdict TEXT NOT NULL,
		tier TEXT NOT NULL,
		coverage REAL,
		files_checked INTEGER NOT NULL,
		checks_performed INTEGER NOT NULL,
		blocking INTEGER NOT NULL,
		warnings INTEGER NOT NULL,
		nitpicks INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		report BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return rkerrors.Storage("history.initSchema", "create schema", err)
	}
	return nil
}

// Record stores a finalized report and returns the new run ID.
func (s *Store) Record(ctx context.Context, r *review.Report, duration time.Duration) (string, error) {
	const op = "history.Record"

	raw, err := json.Marshal(r)
	if err != nil {
		return "", rkerrors.Storage(op, "marshal report", err)
	}
	blob, err := s.compressor.Compress(raw)
	if err != nil {
		return "", rkerrors.Storage(op, "compress report", err)
	}

	id := uuid.New().String()
	var coverage any
	if r.CoveragePercentage != nil {
		coverage = *r.CoveragePercentage
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (
			id, created_at, verdict, tier, coverage,
			files_checked, checks_performed,
			blocking, warnings, nitpicks,
			duration_ms, report
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		time.Now().Unix(),
		string(r.Verdict),
		string(r.QualityTier),
		coverage,
		r.FilesChecked,
		r.ChecksPerformed,
		r.CountsBySeverity[review.SeverityBlocking],
		r.CountsBySeverity[review.SeverityWarning],
		r.CountsBySeverity[review.SeverityNitpick],
		duration.Milliseconds(),
		blob,
	)
	if err != nil {
		return "", rkerrors.Storage(op, "insert run", err)
	}
	return id, nil
}

// Recent returns the most recent entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	const op = "history.Recent"

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, verdict, tier, coverage,
		       files_checked, checks_performed,
		       blocking, warnings, nitpicks, duration_ms
		FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, rkerrors.Storage(op, "query runs", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		var created int64
		var coverage sql.NullFloat64
		if err := rows.Scan(
			&e.ID, &created, &e.Verdict, &e.Tier, &coverage,
			&e.FilesChecked, &e.ChecksPerformed,
			&e.Blocking, &e.Warnings, &e.Nitpicks, &e.DurationMs,
		); err != nil {
			return nil, rkerrors.Storage(op, "scan run", err)
		}
		e.CreatedAt = time.Unix(created, 0).UTC()
		if coverage.Valid {
			e.Coverage = &coverage.Float64
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Report loads and decompresses the stored report for a run ID.
func (s *Store) Report(ctx context.Context, id string) (*review.Report, error) {
	const op = "history.Report"

	var blob []byte
	err := s.db.QueryRowContext(ctx, `SELECT report FROM runs WHERE id = ?`, id).Scan(&blob)
	if err != nil {
		return nil, rkerrors.Storage(op, "load run "+id, err)
	}
	raw, err := s.compressor.Decompress(blob)
	if err != nil {
		return nil, rkerrors.Storage(op, "decompress report", err)
	}
	var r review.Report
	if err := json.Unmarshal(raw, &r); err != nil {
		return nil, rkerrors.Storage(op, "unmarshal report", err)
	}
	return &r, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
