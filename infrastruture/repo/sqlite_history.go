package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-maze/game"
	"github.com/beka-birhanu/vinom-maze/service/i"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

var _ i.HistoryRepo = &SQLiteHistoryRepo{}

// SQLiteHistoryRepo stores finished maze runs in a local SQLite database.
type SQLiteHistoryRepo struct {
	db *sql.DB
}

// NewSQLiteHistoryRepo opens the database at path. Use ":memory:" for a throwaway store.
func NewSQLiteHistoryRepo(path string) (*SQLiteHistoryRepo, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &SQLiteHistoryRepo{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteHistoryRepo) Close() error {
	return s.db.Close()
}

// Migrate creates the results table and its indexes.
func (s *SQLiteHistoryRepo) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS results (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			player_name TEXT NOT NULL,
			width INTEGER NOT NULL,
			height INTEGER NOT NULL,
			algorithm TEXT NOT NULL,
			moves INTEGER NOT NULL,
			optimal_moves INTEGER NOT NULL,
			score INTEGER NOT NULL,
			duration_ms INTEGER NOT NULL,
			finished_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_results_finished_at ON results(finished_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_results_player ON results(player_name)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Save inserts or replaces a result, keyed by its ID.
func (s *SQLiteHistoryRepo) Save(ctx context.Context, result *game.Result) error {
	query := `INSERT OR REPLACE INTO results (
		id, session_id, player_name, width, height, algorithm,
		moves, optimal_moves, score, duration_ms, finished_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := s.db.ExecContext(ctx, query,
		result.ID.String(), result.SessionID.String(), result.PlayerName,
		result.Width, result.Height, result.Algorithm,
		result.Moves, result.OptimalMoves, result.Score, result.DurationMs,
		result.FinishedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("saving result %s: %w", result.ID, err)
	}
	return nil
}

const selectResults = `SELECT id, session_id, player_name, width, height, algorithm,
	moves, optimal_moves, score, duration_ms, finished_at FROM results`

// ByID retrieves a result by its ID.
func (s *SQLiteHistoryRepo) ByID(ctx context.Context, id uuid.UUID) (*game.Result, error) {
	row := s.db.QueryRowContext(ctx, selectResults+` WHERE id = ?`, id.String())
	result, err := scanResult(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, i.ErrResultNotFound
		}
		return nil, fmt.Errorf("finding result %s: %w", id, err)
	}
	return result, nil
}

// Recent returns up to limit results, most recently finished first.
func (s *SQLiteHistoryRepo) Recent(ctx context.Context, limit int) ([]*game.Result, error) {
	results := []*game.Result{}
	if limit <= 0 {
		return results, nil
	}

	rows, err := s.db.QueryContext(ctx, selectResults+` ORDER BY finished_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing results: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (*game.Result, error) {
	var (
		r                game.Result
		id, sessionID    string
		finishedAtMillis int64
	)
	err := row.Scan(&id, &sessionID, &r.PlayerName, &r.Width, &r.Height, &r.Algorithm,
		&r.Moves, &r.OptimalMoves, &r.Score, &r.DurationMs, &finishedAtMillis)
	if err != nil {
		return nil, err
	}

	if r.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("corrupt result id %q: %w", id, err)
	}
	if r.SessionID, err = uuid.Parse(sessionID); err != nil {
		return nil, fmt.Errorf("corrupt session id %q: %w", sessionID, err)
	}
	r.FinishedAt = time.UnixMilli(finishedAtMillis).UTC()
	return &r, nil
}
