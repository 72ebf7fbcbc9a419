// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/verte-zerg/flashrecall/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for attempts and notes.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS attempts (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			started_at TEXT NOT NULL,
			scored_at TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			granularity TEXT NOT NULL,
			interval_ms INTEGER NOT NULL,
			sentences INTEGER NOT NULL,
			last_n INTEGER NOT NULL,
			strategy TEXT NOT NULL,
			matched INTEGER NOT NULL,
			total INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS attempt_discrepancies (
			attempt_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			position INTEGER NOT NULL,
			kind TEXT NOT NULL,
			expected TEXT NOT NULL,
			actual TEXT NOT NULL,
			PRIMARY KEY (attempt_id, seq)
		);`,
		`CREATE TABLE IF NOT EXISTS note_categories (
			position INTEGER NOT NULL,
			name TEXT PRIMARY KEY
		);`,
		`CREATE TABLE IF NOT EXISTS notes (
			category TEXT NOT NULL,
			position INTEGER NOT NULL,
			word TEXT NOT NULL,
			description TEXT NOT NULL,
			PRIMARY KEY (category, position)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_attempts_scored_at ON attempts(scored_at);`,
		`CREATE INDEX IF NOT EXISTS idx_attempt_discrepancies_expected ON attempt_discrepancies(expected);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertAttempt stores a scored attempt and its discrepancies. An empty ID is
// replaced with a new UUID, which is returned.
func (s *Store) InsertAttempt(ctx context.Context, stats model.AttemptStats) (id string, err error) {
	id = stats.ID
	if id == "" {
		id = uuid.NewString()
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO attempts (id, session_id, started_at, scored_at, difficulty, granularity, interval_ms, sentences, last_n, strategy, matched, total)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		stats.SessionID,
		formatTime(stats.StartedAt),
		formatTime(stats.ScoredAt),
		string(stats.Difficulty),
		string(stats.Granularity),
		stats.IntervalMs,
		stats.Sentences,
		stats.LastN,
		stats.Strategy,
		stats.Report.Matched,
		stats.Report.Total,
	)
	if err != nil {
		return "", err
	}

	if len(stats.Report.Discrepancies) > 0 {
		stmt, perr := tx.PrepareContext(ctx,
			`INSERT INTO attempt_discrepancies (attempt_id, seq, position, kind, expected, actual)
			 VALUES (?, ?, ?, ?, ?, ?)`)
		if perr != nil {
			err = perr
			return "", err
		}
		defer func() {
			if cerr := stmt.Close(); cerr != nil {
				// Best-effort statement close.
				_ = cerr
			}
		}()
		for i, d := range stats.Report.Discrepancies {
			if _, err = stmt.ExecContext(ctx, id, i, d.Position, string(d.Kind), d.Expected, d.Actual); err != nil {
				return "", err
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// ListAttempts returns attempt aggregates filtered by stats config, oldest
// first.
func (s *Store) ListAttempts(ctx context.Context, cfg model.StatsConfig) ([]model.AttemptAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Difficulty != "" {
		clauses = append(clauses, "difficulty = ?")
		args = append(args, cfg.Difficulty)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "scored_at >= ?")
		args = append(args, formatTime(*cfg.Since))
	}
	query := fmt.Sprintf(`SELECT id, scored_at, matched, total, last_n
		FROM attempts
		WHERE %s
		ORDER BY scored_at ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var attempts []model.AttemptAggregate
	for rows.Next() {
		var agg model.AttemptAggregate
		var scoredAt string
		if err := rows.Scan(&agg.AttemptID, &scoredAt, &agg.Matched, &agg.Total, &agg.LastN); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(timeLayout, scoredAt)
		if err != nil {
			return nil, err
		}
		agg.ScoredAt = parsed
		attempts = append(attempts, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return attempts, nil
}

// ListWordAggregates counts missing and substituted reference words across
// the given attempts.
func (s *Store) ListWordAggregates(ctx context.Context, attemptIDs []string) ([]model.WordAggregate, error) {
	if len(attemptIDs) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(attemptIDs))
	args := make([]any, len(attemptIDs))
	for i, id := range attemptIDs {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT expected,
		SUM(CASE WHEN kind = 'missing' THEN 1 ELSE 0 END) AS missing,
		SUM(CASE WHEN kind = 'substitution' THEN 1 ELSE 0 END) AS substitutions
		FROM attempt_discrepancies
		WHERE attempt_id IN (%s) AND expected != ''
		GROUP BY expected`, strings.Join(placeholders, ","))
	return s.queryWordAggregates(ctx, query, args...)
}

// GetWeakWords aggregates missed words over the most recent attempts.
func (s *Store) GetWeakWords(ctx context.Context, window int, difficulty string) ([]model.WordAggregate, error) {
	if window <= 0 {
		return nil, nil
	}
	query := `WITH recent_attempts AS (
		SELECT id FROM attempts
		WHERE (? = '' OR difficulty = ?)
		ORDER BY scored_at DESC
		LIMIT ?
	)
	SELECT d.expected,
		SUM(CASE WHEN d.kind = 'missing' THEN 1 ELSE 0 END) AS missing,
		SUM(CASE WHEN d.kind = 'substitution' THEN 1 ELSE 0 END) AS substitutions
	FROM attempt_discrepancies d
	JOIN recent_attempts r ON r.id = d.attempt_id
	WHERE d.expected != ''
	GROUP BY d.expected`
	return s.queryWordAggregates(ctx, query, difficulty, difficulty, window)
}

func (s *Store) queryWordAggregates(ctx context.Context, query string, args ...any) ([]model.WordAggregate, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var result []model.WordAggregate
	for rows.Next() {
		var agg model.WordAggregate
		if err := rows.Scan(&agg.Word, &agg.Missing, &agg.Substitutions); err != nil {
			return nil, err
		}
		result = append(result, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// LoadNotes returns all note categories in stored order.
func (s *Store) LoadNotes(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM note_categories ORDER BY position ASC`)
	if err != nil {
		return nil, err
	}
	var categories []model.Category
	index := map[string]int{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			_ = rows.Close()
			return nil, err
		}
		index[name] = len(categories)
		categories = append(categories, model.Category{Name: name})
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	noteRows, err := s.db.QueryContext(ctx, `SELECT category, word, description FROM notes ORDER BY category, position ASC`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := noteRows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()
	for noteRows.Next() {
		var category string
		var note model.Note
		if err := noteRows.Scan(&category, &note.Word, &note.Desc); err != nil {
			return nil, err
		}
		i, ok := index[category]
		if !ok {
			continue
		}
		categories[i].Notes = append(categories[i].Notes, note)
	}
	if err := noteRows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

// SaveNotes replaces all stored notes with categories.
func (s *Store) SaveNotes(ctx context.Context, categories []model.Category) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				// Best-effort rollback.
				_ = rerr
			}
		}
	}()

	for _, stmt := range []string{`DELETE FROM notes`, `DELETE FROM note_categories`} {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	for i, c := range categories {
		if _, err = tx.ExecContext(ctx, `INSERT INTO note_categories (position, name) VALUES (?, ?)`, i, c.Name); err != nil {
			return err
		}
		for j, n := range c.Notes {
			if _, err = tx.ExecContext(ctx, `INSERT INTO notes (category, position, word, description) VALUES (?, ?, ?, ?)`, c.Name, j, n.Word, n.Desc); err != nil {
				return err
			}
		}
	}
	return tx.Commit()
}

// timeLayout keeps a fixed-width fraction so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
