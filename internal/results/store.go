// Package results records benchmark run history in a SQLite database so
// throughput can be compared across codecs, configurations, and time.
package results

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/arkilian/codecbench/internal/bench"
	"github.com/arkilian/codecbench/internal/config"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id      TEXT PRIMARY KEY,
	codec       TEXT NOT NULL,
	mode        TEXT NOT NULL,
	chunk_size  INTEGER NOT NULL,
	table_log   INTEGER NOT NULL,
	iterations  INTEGER NOT NULL,
	created_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS run_files (
	run_id          TEXT NOT NULL REFERENCES runs(run_id),
	name            TEXT NOT NULL,
	benched_size    INTEGER NOT NULL,
	compressed_size INTEGER NOT NULL,
	ratio           REAL NOT NULL,
	compress_ns     INTEGER NOT NULL,
	decompress_ns   INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_run_files_run ON run_files(run_id);
`

// Run is one recorded benchmark invocation.
type Run struct {
	ID         string
	Codec      string
	Mode       string
	ChunkSize  int
	TableLog   int
	Iterations int
	CreatedAt  time.Time
}

// FileRecord is one file's measurements within a run.
type FileRecord struct {
	RunID             string
	Name              string
	BenchedSize       int64
	CompressedSize    int64
	Ratio             float64
	FastestCompress   time.Duration
	FastestDecompress time.Duration
}

// Store persists run history. A single connection in WAL mode is plenty:
// the harness writes one run at a time and reads are occasional.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed initializes) the history database at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("results: failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("results: failed to initialize schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun stores one invocation and its per-file results atomically,
// returning the generated run ID.
func (s *Store) RecordRun(ctx context.Context, cfg *config.Config, files []*bench.FileResult) (string, error) {
	runID := uuid.NewString()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("results: failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (run_id, codec, mode, chunk_size, table_log, iterations, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		runID, cfg.Codec, string(cfg.Mode), cfg.ChunkSize, cfg.TableLog, cfg.Iterations,
		time.Now().Unix())
	if err != nil {
		return "", fmt.Errorf("results: failed to insert run: %w", err)
	}

	for _, f := range files {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_files (run_id, name, benched_size, compressed_size, ratio, compress_ns, decompress_ns)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			runID, f.Name, f.BenchedSize, f.CompressedSize, f.Ratio,
			f.FastestCompress.Nanoseconds(), f.FastestDecompress.Nanoseconds())
		if err != nil {
			return "", fmt.Errorf("results: failed to insert file result: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("results: failed to commit: %w", err)
	}
	return runID, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, codec, mode, chunk_size, table_log, iterations, created_at
		 FROM runs ORDER BY created_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("results: failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var r Run
		var createdAt int64
		if err := rows.Scan(&r.ID, &r.Codec, &r.Mode, &r.ChunkSize, &r.TableLog, &r.Iterations, &createdAt); err != nil {
			return nil, fmt.Errorf("results: failed to scan run: %w", err)
		}
		r.CreatedAt = time.Unix(createdAt, 0)
		runs = append(runs, &r)
	}
	return runs, rows.Err()
}

// RunFiles returns the per-file measurements of one run.
func (s *Store) RunFiles(ctx context.Context, runID string) ([]*FileRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, name, benched_size, compressed_size, ratio, compress_ns, decompress_ns
		 FROM run_files WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("results: failed to query run files: %w", err)
	}
	defer rows.Close()

	var files []*FileRecord
	for rows.Next() {
		var f FileRecord
		var compressNs, decompressNs int64
		if err := rows.Scan(&f.RunID, &f.Name, &f.BenchedSize, &f.CompressedSize, &f.Ratio,
			&compressNs, &decompressNs); err != nil {
			return nil, fmt.Errorf("results: failed to scan file result: %w", err)
		}
		f.FastestCompress = time.Duration(compressNs)
		f.FastestDecompress = time.Duration(decompressNs)
		files = append(files, &f)
	}
	return files, rows.Err()
}
