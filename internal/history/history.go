// internal/history/history.go
//
// SQLite-backed attempt log.
// Responsibilities:
//   - Opening the database with safe defaults (WAL, busy timeout, foreign keys).
//   - Applying embedded migrations (idempotent, recorded in _migrations).
//   - Recording finished solve attempts and answering stats queries.
//
// The CLI runs without a database unless --db is given; callers that want
// that behavior use Discard, which satisfies Recorder and drops everything.

package history

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Attempt is one finished solve attempt.
type Attempt struct {
	ID         string    `json:"id"`
	Mode       string    `json:"mode"`
	Target     string    `json:"target,omitempty"`
	Outcome    string    `json:"outcome"`
	Guesses    int       `json:"guesses"`
	Rejected   int       `json:"rejected"`
	DurationMS int64     `json:"durationMs"`
	StartedAt  time.Time `json:"startedAt"`
}

// Stats aggregates the attempt log.
type Stats struct {
	Played       int         `json:"played"`
	Solved       int         `json:"solved"`
	SolveRate    float64     `json:"solveRate"`
	AvgGuesses   float64     `json:"avgGuesses"` // over solved attempts
	Distribution map[int]int `json:"distribution"`
}

// Recorder is the write side of the attempt log. The HTTP server and the
// CLI both talk to this; Discard is the no-database implementation.
type Recorder interface {
	RecordAttempt(ctx context.Context, a Attempt) error
}

// Discard is a Recorder that drops every attempt.
type Discard struct{}

func (Discard) RecordAttempt(context.Context, Attempt) error { return nil }

// DB wraps the SQLite handle with the attempt-log queries.
type DB struct {
	db *sql.DB
}

// Open opens (and creates if missing) the SQLite database at dsn and
// applies pending migrations.
//
//   - Ensures the parent directory exists for relative DSNs (./data/solver.db).
//   - Configures busy timeout and WAL journaling mode.
//   - Enforces foreign keys.
func Open(dsn string) (*DB, error) {
	// Ensure directory exists for ./data/solver.db, etc.
	if !strings.HasPrefix(dsn, "file:") && dsn != ":memory:" {
		dir := filepath.Dir(dsn)
		if dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dsn+"?_busy_timeout=5000&_journal_mode=WAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA journal_mode = WAL;`); err != nil {
		return nil, fmt.Errorf("set pragmas: %w", err)
	}

	if err := migrate(db); err != nil {
		return nil, err
	}
	return &DB{db: db}, nil
}

// Close releases the underlying handle.
func (d *DB) Close() error { return d.db.Close() }

// migrate applies the embedded *.sql files in lexical order, tracking
// applied names in a _migrations table so reruns are no-ops.
func migrate(db *sql.DB) error {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS _migrations (name TEXT PRIMARY KEY);`); err != nil {
		return fmt.Errorf("create _migrations: %w", err)
	}

	entries, err := migrationFS.ReadDir("migrations")
	if err != nil {
		return fmt.Errorf("read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	for _, name := range names {
		var done int
		err := db.QueryRow(`SELECT 1 FROM _migrations WHERE name=?`, name).Scan(&done)
		if err == nil {
			log.Debug().Str("migration", name).Msg("already applied")
			continue
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("query _migrations: %w", err)
		}

		sqlText, err := migrationFS.ReadFile("migrations/" + name)
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}

		tx, err := db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(string(sqlText)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply %s: %w", name, err)
		}
		if _, err := tx.Exec(`INSERT INTO _migrations(name) VALUES (?)`, name); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit %s: %w", name, err)
		}
		log.Info().Str("migration", name).Msg("applied")
	}
	return nil
}

// RecordAttempt inserts one finished attempt. A missing ID gets a fresh
// uuid; a zero StartedAt gets the current time.
func (d *DB) RecordAttempt(ctx context.Context, a Attempt) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.StartedAt.IsZero() {
		a.StartedAt = time.Now().UTC()
	}
	_, err := d.db.ExecContext(ctx, `
        INSERT INTO attempts (id, mode, target, outcome, guesses, rejected, duration_ms, started_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Mode, a.Target, a.Outcome, a.Guesses, a.Rejected, a.DurationMS,
		a.StartedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

// Stats aggregates the whole attempt log: attempts played, solved count,
// solve rate, average guesses over solved attempts, and the guess
// distribution of solved attempts.
func (d *DB) Stats(ctx context.Context) (Stats, error) {
	s := Stats{Distribution: make(map[int]int)}

	row := d.db.QueryRowContext(ctx, `
        SELECT COUNT(1),
               COALESCE(SUM(CASE WHEN outcome='solved' THEN 1 ELSE 0 END), 0)
        FROM attempts`)
	if err := row.Scan(&s.Played, &s.Solved); err != nil {
		return s, fmt.Errorf("count attempts: %w", err)
	}
	if s.Played > 0 {
		s.SolveRate = float64(s.Solved) / float64(s.Played)
	}

	rows, err := d.db.QueryContext(ctx, `
        SELECT guesses, COUNT(1) FROM attempts
        WHERE outcome='solved' GROUP BY guesses`)
	if err != nil {
		return s, fmt.Errorf("guess distribution: %w", err)
	}
	defer rows.Close()

	total := 0
	for rows.Next() {
		var g, n int
		if err := rows.Scan(&g, &n); err != nil {
			return s, err
		}
		s.Distribution[g] = n
		total += g * n
	}
	if err := rows.Err(); err != nil {
		return s, err
	}
	if s.Solved > 0 {
		s.AvgGuesses = float64(total) / float64(s.Solved)
	}
	return s, nil
}

// Recent returns the latest attempts, newest first. Limit defaults to 20.
func (d *DB) Recent(ctx context.Context, limit int) ([]Attempt, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := d.db.QueryContext(ctx, `
        SELECT id, mode, target, outcome, guesses, rejected, duration_ms, started_at
        FROM attempts
        ORDER BY started_at DESC, id
        LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("recent attempts: %w", err)
	}
	defer rows.Close()

	out := make([]Attempt, 0, limit)
	for rows.Next() {
		var a Attempt
		var started string
		if err := rows.Scan(&a.ID, &a.Mode, &a.Target, &a.Outcome, &a.Guesses,
			&a.Rejected, &a.DurationMS, &started); err != nil {
			return nil, err
		}
		a.StartedAt, _ = time.Parse(time.RFC3339, started)
		out = append(out, a)
	}
	return out, rows.Err()
}
