// Package storage persists pricing runs and their quotes in SQLite.
//
// Each run is written in a single transaction together with its quotes, so a
// run is either fully stored or absent. Old runs are rotated out once the
// configured maximum is exceeded, oldest first, taking their quotes with them.
//
// Durations are stored as integer nanoseconds and instants as unix
// nanoseconds, so both round-trip exactly.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rewired-gh/optionpricer/internal/models"
	"github.com/rewired-gh/optionpricer/internal/pricing"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a run does not exist
var ErrNotFound = errors.New("not found")

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	started_at  INTEGER NOT NULL,
	steps       INTEGER NOT NULL,
	exercise    TEXT NOT NULL,
	scenarios   INTEGER NOT NULL,
	duration_ns INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS quotes (
	id          TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	scenario_id TEXT NOT NULL,
	name        TEXT NOT NULL,
	kind        TEXT NOT NULL,
	spot        REAL NOT NULL,
	strike      REAL NOT NULL,
	rate        REAL NOT NULL,
	volatility  REAL NOT NULL,
	maturity    REAL NOT NULL,
	model       TEXT NOT NULL,
	price       REAL NOT NULL,
	runtime_ns  INTEGER NOT NULL,
	priced_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_quotes_run ON quotes(run_id, position);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

// Storage is a SQLite-backed run store. It is safe for concurrent use.
type Storage struct {
	db      *sql.DB
	maxRuns int
	path    string
}

// New opens (or creates) the database at dbPath and applies the schema.
// If dbPath is empty, uses OS-appropriate tmp directory. ":memory:" opens a
// private in-memory database.
func New(dbPath string, maxRuns int) (*Storage, error) {
	if dbPath == "" {
		dbPath = filepath.Join(os.TempDir(), "option-pricer", "runs.db")
	}
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases coherent and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Storage{db: db, maxRuns: maxRuns, path: dbPath}, nil
}

// Path returns the database location
func (s *Storage) Path() string {
	return s.path
}

// Close releases the database
func (s *Storage) Close() error {
	return s.db.Close()
}

// SaveRun stores run and its quotes atomically
func (s *Storage) SaveRun(ctx context.Context, run *models.Run, quotes []models.Quote) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("invalid run: %w", err)
	}
	for i := range quotes {
		if err := quotes[i].Validate(); err != nil {
			return fmt.Errorf("invalid quote %s: %w", quotes[i].ID, err)
		}
		if quotes[i].RunID != run.ID {
			return fmt.Errorf("quote %s belongs to run %s, not %s", quotes[i].ID, quotes[i].RunID, run.ID)
		}
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, steps, exercise, scenarios, duration_ns) VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.StartedAt.UnixNano(), run.Steps, run.Exercise, run.Scenarios, int64(run.Duration))
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO quotes
		(id, run_id, position, scenario_id, name, kind, spot, strike, rate, volatility, maturity, model, price, runtime_ns, priced_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare quote insert: %w", err)
	}
	defer stmt.Close()

	for i, q := range quotes {
		sc := q.Scenario
		if _, err := stmt.ExecContext(ctx, q.ID, run.ID, i, sc.ID, sc.Name, string(sc.Kind),
			sc.Spot, sc.Strike, sc.Rate, sc.Volatility, sc.Maturity,
			q.Model, q.Price, int64(q.Runtime), q.PricedAt.UnixNano()); err != nil {
			return fmt.Errorf("failed to insert quote %s: %w", q.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID
func (s *Storage) GetRun(ctx context.Context, id string) (*models.Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, started_at, steps, exercise, scenarios, duration_ns FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read run: %w", err)
	}
	return run, nil
}

// ListRuns returns up to limit runs, newest first. A limit <= 0 returns all runs.
func (s *Storage) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	query := `SELECT id, started_at, steps, exercise, scenarios, duration_ns FROM runs ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := []models.Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to read run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

// GetQuotes returns the quotes of a run in the order they were saved
func (s *Storage) GetQuotes(ctx context.Context, runID string) ([]models.Quote, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT
		id, run_id, scenario_id, name, kind, spot, strike, rate, volatility, maturity, model, price, runtime_ns, priced_at
		FROM quotes WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quotes: %w", err)
	}
	defer rows.Close()

	quotes := []models.Quote{}
	for rows.Next() {
		var (
			q         models.Quote
			kind      string
			runtimeNs int64
			pricedAt  int64
		)
		if err := rows.Scan(&q.ID, &q.RunID, &q.Scenario.ID, &q.Scenario.Name, &kind,
			&q.Scenario.Spot, &q.Scenario.Strike, &q.Scenario.Rate, &q.Scenario.Volatility, &q.Scenario.Maturity,
			&q.Model, &q.Price, &runtimeNs, &pricedAt); err != nil {
			return nil, fmt.Errorf("failed to read quote: %w", err)
		}
		q.Scenario.Kind = pricing.OptionKind(kind)
		q.Runtime = time.Duration(runtimeNs)
		q.PricedAt = time.Unix(0, pricedAt)
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// RotateRuns removes the oldest runs exceeding the max limit and returns how many were removed
func (s *Storage) RotateRuns(ctx context.Context) (int, error) {
	if s.maxRuns <= 0 {
		return 0, nil
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id IN (
		SELECT id FROM runs ORDER BY started_at DESC, id DESC LIMIT -1 OFFSET ?)`, s.maxRuns)
	if err != nil {
		return 0, fmt.Errorf("failed to rotate runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count rotated runs: %w", err)
	}
	return int(n), nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*models.Run, error) {
	var (
		run        models.Run
		startedAt  int64
		durationNs int64
	)
	if err := row.Scan(&run.ID, &startedAt, &run.Steps, &run.Exercise, &run.Scenarios, &durationNs); err != nil {
		return nil, err
	}
	run.StartedAt = time.Unix(0, startedAt)
	run.Duration = time.Duration(durationNs)
	return &run, nil
}
