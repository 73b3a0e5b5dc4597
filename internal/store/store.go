// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists evaluation runs in a SQLite database so their
// metrics can be listed, recomputed and exported later.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/pdiddy/citation-eval/internal/logging"
	"github.com/pdiddy/citation-eval/pkg/types"
)

const (
	dbFile = "runs.db"

	// timeLayout has a fixed width so created_at sorts as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// ErrRunNotFound is returned when no run has the requested ID.
var ErrRunNotFound = errors.New("run not found")

// Store manages the run database.
type Store struct {
	db         *sql.DB
	maxResults int
	log        *zap.SugaredLogger
}

// NewStore opens or creates the run database at cfg.Dir/runs.db and
// creates the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := newStore(db, cfg.MaxResults)
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	s.log.Debugw("store opened", "path", dbPath)
	return s, nil
}

func newStore(db *sql.DB, maxResults int) *Store {
	if maxResults <= 0 {
		maxResults = 20
	}
	return &Store{db: db, maxResults: maxResults, log: logging.New("store")}
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			dataset TEXT NOT NULL,
			split_attr TEXT NOT NULL,
			created_at TEXT NOT NULL,
			total INTEGER NOT NULL,
			outcomes TEXT NOT NULL,
			correct INTEGER NOT NULL,
			gt INTEGER NOT NULL,
			test INTEGER NOT NULL,
			unassigned INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS run_documents (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			doc TEXT NOT NULL,
			correct INTEGER NOT NULL,
			gt INTEGER NOT NULL,
			test INTEGER NOT NULL,
			PRIMARY KEY (run_id, doc)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveRun stores run and its per-document counts in one transaction. An
// empty run.ID is replaced by a new UUID; a zero CreatedAt by the current
// time.
func (s *Store) SaveRun(ctx context.Context, run *types.Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	outcomes, err := json.Marshal(run.Outcomes)
	if err != nil {
		return fmt.Errorf("encoding outcomes: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, dataset, split_attr, created_at, total, outcomes, correct, gt, test, unassigned)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Dataset, string(run.SplitAttr), run.CreatedAt.UTC().Format(timeLayout),
		run.Total, string(outcomes), run.Links.Correct, run.Links.GT, run.Links.Test, run.Unassigned,
	)
	if err != nil {
		return fmt.Errorf("inserting run: %w", err)
	}

	if len(run.Documents) > 0 {
		stmt, err := tx.PrepareContext(ctx,
			`INSERT INTO run_documents (run_id, doc, correct, gt, test) VALUES (?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()

		for _, d := range run.Documents {
			if _, err := stmt.ExecContext(ctx, run.ID, d.Doc, d.Correct, d.GT, d.Test); err != nil {
				return fmt.Errorf("inserting document %s: %w", d.Doc, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing run: %w", err)
	}
	s.log.Infow("run saved", "id", run.ID, "dataset", run.Dataset, "documents", len(run.Documents))
	return nil
}

const runColumns = `id, dataset, split_attr, created_at, total, outcomes, correct, gt, test, unassigned`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (types.Run, error) {
	var (
		run       types.Run
		splitAttr string
		createdAt string
		outcomes  string
	)
	err := row.Scan(&run.ID, &run.Dataset, &splitAttr, &createdAt, &run.Total, &outcomes,
		&run.Links.Correct, &run.Links.GT, &run.Links.Test, &run.Unassigned)
	if err != nil {
		return run, err
	}
	run.SplitAttr = types.Attr(splitAttr)
	if run.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return run, fmt.Errorf("parsing created_at of run %s: %w", run.ID, err)
	}
	if err := json.Unmarshal([]byte(outcomes), &run.Outcomes); err != nil {
		return run, fmt.Errorf("decoding outcomes of run %s: %w", run.ID, err)
	}
	return run, nil
}

// GetRun returns the run with the given ID including its per-document
// counts sorted by document key.
func (s *Store) GetRun(ctx context.Context, id string) (types.Run, error) {
	run, err := scanRun(s.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return types.Run{}, fmt.Errorf("querying run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT doc, correct, gt, test FROM run_documents WHERE run_id = ? ORDER BY doc`, id)
	if err != nil {
		return types.Run{}, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var d types.DocumentCounts
		if err := rows.Scan(&d.Doc, &d.Correct, &d.GT, &d.Test); err != nil {
			return types.Run{}, fmt.Errorf("scanning document: %w", err)
		}
		run.Documents = append(run.Documents, d)
	}
	if err := rows.Err(); err != nil {
		return types.Run{}, fmt.Errorf("iterating documents: %w", err)
	}
	return run, nil
}

// ListRuns returns up to limit runs, newest first, without their
// per-document counts. A non-positive limit uses the configured default.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]types.Run, error) {
	if limit <= 0 {
		limit = s.maxResults
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// DeleteRun removes the run with the given ID and its per-document counts.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM run_documents WHERE run_id = ?`, id); err != nil {
		return fmt.Errorf("deleting documents: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	s.log.Infow("run deleted", "id", id)
	return nil
}
