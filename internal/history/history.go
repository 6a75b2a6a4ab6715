// Package history journals context switches in a SQLite database under the
// root's state directory.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver with database/sql

	"github.com/go-ports/shopctl/internal/env"
	"github.com/go-ports/shopctl/internal/models"
)

// ErrEmpty is returned by Previous when nothing has been journaled yet.
var ErrEmpty = errors.New("no previous context")

// Entry is one journaled switch.
type Entry struct {
	ID   int64                 `json:"id"`
	At   time.Time             `json:"at"`
	Op   string                `json:"op"`
	From models.ContextPointer `json:"from"`
	To   models.ContextPointer `json:"to"`
}

// DB wraps a *sql.DB with the path it was opened from.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the journal at path.
func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("history.Open: %w", err)
	}
	sqldb, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("history.Open: %w", err)
	}
	d := &DB{db: sqldb, path: path}
	if err := d.createSchema(); err != nil {
		_ = sqldb.Close()
		return nil, fmt.Errorf("history.Open createSchema: %w", err)
	}
	return d, nil
}

// Path returns the database file path.
func (d *DB) Path() string { return d.path }

// Close closes the underlying database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// ---------------------------------------------------------------------------
// Schema
// ---------------------------------------------------------------------------

func (d *DB) createSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS switches (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			at             TEXT NOT NULL,
			op             TEXT NOT NULL,
			from_account   TEXT NOT NULL DEFAULT '',
			from_cluster   TEXT NOT NULL DEFAULT '',
			from_namespace TEXT NOT NULL DEFAULT '',
			to_account     TEXT NOT NULL DEFAULT '',
			to_cluster     TEXT NOT NULL DEFAULT '',
			to_namespace   TEXT NOT NULL DEFAULT ''
		)`,
		`CREATE INDEX IF NOT EXISTS switches_at ON switches(at)`,
	}
	for _, s := range stmts {
		if _, err := d.db.Exec(s); err != nil {
			return fmt.Errorf("createSchema exec: %w\nSQL: %s", err, s)
		}
	}
	return nil
}

// ---------------------------------------------------------------------------
// Journal
// ---------------------------------------------------------------------------

// Record appends a switch from one pointer to another.
func (d *DB) Record(ctx context.Context, op string, from, to models.ContextPointer) (int64, error) {
	res, err := d.db.ExecContext(ctx,
		`INSERT INTO switches (at, op, from_account, from_cluster, from_namespace,
			to_account, to_cluster, to_namespace) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339Nano), op,
		from.Account, from.Cluster, from.Namespace,
		to.Account, to.Cluster, to.Namespace,
	)
	if err != nil {
		return 0, fmt.Errorf("history.Record: %w", err)
	}
	return res.LastInsertId()
}

// Recent returns up to limit entries, newest first. limit <= 0 means all.
func (d *DB) Recent(ctx context.Context, limit int) ([]Entry, error) {
	q := `SELECT id, at, op, from_account, from_cluster, from_namespace,
		to_account, to_cluster, to_namespace FROM switches ORDER BY id DESC`
	var args []any
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := d.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("history.Recent: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("history.Recent: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Previous returns the pointer that was current before the latest switch.
func (d *DB) Previous(ctx context.Context) (models.ContextPointer, error) {
	entries, err := d.Recent(ctx, 1)
	if err != nil {
		return models.ContextPointer{}, err
	}
	if len(entries) == 0 {
		return models.ContextPointer{}, ErrEmpty
	}
	return entries[0].From, nil
}

// Track runs a switch against e and journals the pointer change. The entry is
// written whenever the persisted pointer moved, including when the new
// pointer does not resolve. Journal failures are logged, not returned.
func (d *DB) Track(ctx context.Context, op string, e *env.Env, fn func() (models.EnvContext, error)) (models.EnvContext, error) {
	from := e.Pointer()
	res, err := fn()
	if to := e.Pointer(); to != from {
		if _, rerr := d.Record(ctx, op, from, to); rerr != nil {
			slog.Warn("could not journal context switch", "op", op, "error", rerr)
		}
	}
	return res, err
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e  Entry
		at string
	)
	if err := rows.Scan(&e.ID, &at, &e.Op,
		&e.From.Account, &e.From.Cluster, &e.From.Namespace,
		&e.To.Account, &e.To.Cluster, &e.To.Namespace,
	); err != nil {
		return e, err
	}
	t, err := time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return e, fmt.Errorf("parse time %q: %w", at, err)
	}
	e.At = t
	return e, nil
}
