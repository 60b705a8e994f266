// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists the embedding cache and digest run history in a
// single SQLite database.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-digest/pkg/types"
)

// Store manages the SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path, creating parent directories
// and the schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS embeddings (
			model TEXT NOT NULL,
			hash TEXT NOT NULL,
			vector TEXT NOT NULL,
			created_at TEXT NOT NULL,
			PRIMARY KEY (model, hash)
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			query TEXT,
			candidates INTEGER,
			corpus_size INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS results (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			rank INTEGER NOT NULL,
			paper_id TEXT NOT NULL,
			score REAL NOT NULL,
			tldr TEXT,
			truncated INTEGER NOT NULL DEFAULT 0,
			extract_error TEXT,
			summary_error TEXT,
			PRIMARY KEY (run_id, rank)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_paper_id ON results(paper_id)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// LookupEmbeddings returns the cached vectors among hashes for model.
// Hashes with no cached vector are absent from the result.
func (s *Store) LookupEmbeddings(ctx context.Context, model string, hashes []string) (map[string][]float32, error) {
	out := make(map[string][]float32, len(hashes))
	// SQLite caps bound parameters; query in chunks.
	const chunk = 500
	for lo := 0; lo < len(hashes); lo += chunk {
		hi := min(lo+chunk, len(hashes))
		batch := hashes[lo:hi]

		args := make([]any, 0, len(batch)+1)
		args = append(args, model)
		for _, h := range batch {
			args = append(args, h)
		}
		query := `SELECT hash, vector FROM embeddings WHERE model = ? AND hash IN (` +
			strings.TrimSuffix(strings.Repeat("?,", len(batch)), ",") + `)`

		rows, err := s.db.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, fmt.Errorf("querying embeddings: %w", err)
		}
		for rows.Next() {
			var hash, raw string
			if err := rows.Scan(&hash, &raw); err != nil {
				rows.Close()
				return nil, fmt.Errorf("scanning embedding: %w", err)
			}
			var vec []float32
			if err := json.Unmarshal([]byte(raw), &vec); err != nil {
				rows.Close()
				return nil, fmt.Errorf("decoding embedding %s: %w", hash, err)
			}
			out[hash] = vec
		}
		err = rows.Err()
		rows.Close()
		if err != nil {
			return nil, fmt.Errorf("iterating embeddings: %w", err)
		}
	}
	return out, nil
}

// StoreEmbeddings upserts vectors for model in one transaction.
func (s *Store) StoreEmbeddings(ctx context.Context, model string, vectors map[string][]float32) error {
	if len(vectors) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO embeddings (model, hash, vector, created_at) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for hash, vec := range vectors {
		raw, err := json.Marshal(vec)
		if err != nil {
			return fmt.Errorf("encoding embedding %s: %w", hash, err)
		}
		if _, err := stmt.ExecContext(ctx, model, hash, string(raw), now); err != nil {
			return fmt.Errorf("inserting embedding %s: %w", hash, err)
		}
	}
	return tx.Commit()
}

// Run describes one digest run.
type Run struct {
	ID         string    `json:"id" yaml:"id"`
	StartedAt  time.Time `json:"started_at" yaml:"started_at"`
	Query      string    `json:"query" yaml:"query"`
	Candidates int       `json:"candidates" yaml:"candidates"`
	CorpusSize int       `json:"corpus_size" yaml:"corpus_size"`
}

// NewRun returns a Run with a fresh ID, started now.
func NewRun(query string, candidates, corpusSize int) Run {
	return Run{
		ID:         uuid.NewString(),
		StartedAt:  time.Now().UTC().Truncate(time.Second),
		Query:      query,
		Candidates: candidates,
		CorpusSize: corpusSize,
	}
}

// SaveRun records a run and its results, in rank order, in one
// transaction.
func (s *Store) SaveRun(ctx context.Context, run Run, results []types.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, query, candidates, corpus_size) VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UTC().Format(time.RFC3339), run.Query, run.Candidates, run.CorpusSize,
	); err != nil {
		return fmt.Errorf("inserting run %s: %w", run.ID, err)
	}

	for i, r := range results {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO results (run_id, rank, paper_id, score, tldr, truncated, extract_error, summary_error)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID, i+1, r.PaperID, r.Score, r.TLDR, r.Truncated, r.ExtractErr, r.SummaryErr,
		); err != nil {
			return fmt.Errorf("inserting result %s: %w", r.PaperID, err)
		}
	}
	return tx.Commit()
}

// Runs returns the most recent runs, newest first. limit <= 0 returns all.
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, started_at, query, candidates, corpus_size FROM runs ORDER BY started_at DESC, rowid DESC`
	var args []any
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r       Run
			started string
		)
		if err := rows.Scan(&r.ID, &started, &r.Query, &r.Candidates, &r.CorpusSize); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt, err = time.Parse(time.RFC3339, started)
		if err != nil {
			return nil, fmt.Errorf("parsing run time: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Results returns the results of a run in rank order.
func (s *Store) Results(ctx context.Context, runID string) ([]types.Result, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT paper_id, score, tldr, truncated, extract_error, summary_error
		 FROM results WHERE run_id = ? ORDER BY rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying results: %w", err)
	}
	defer rows.Close()

	var results []types.Result
	for rows.Next() {
		var r types.Result
		if err := rows.Scan(&r.PaperID, &r.Score, &r.TLDR, &r.Truncated, &r.ExtractErr, &r.SummaryErr); err != nil {
			return nil, fmt.Errorf("scanning result: %w", err)
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Seen reports whether paperID appeared in any earlier run.
func (s *Store) Seen(ctx context.Context, paperID string) (bool, error) {
	var n int
	if err := s.db.QueryRowContext(ctx,
		`SELECT count(*) FROM results WHERE paper_id = ?`, paperID,
	).Scan(&n); err != nil {
		return false, fmt.Errorf("querying results: %w", err)
	}
	return n > 0, nil
}
