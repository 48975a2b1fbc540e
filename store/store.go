// Package store keeps finished research runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/m-mizutani/autoresearch"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultListLimit is the number of runs List returns when limit is not positive.
const DefaultListLimit = 20

const (
	schemaQuery = `CREATE TABLE IF NOT EXISTS research_runs (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	topic TEXT NOT NULL,
	report TEXT,
	queries TEXT,
	created_at TEXT DEFAULT (datetime('now'))
)`

	insertQuery = `INSERT INTO research_runs (topic, report, queries) VALUES (?, ?, ?)`

	listQuery = `SELECT id, topic, report, queries, created_at FROM research_runs ORDER BY created_at DESC, id DESC LIMIT ?`
)

// Entry is a stored research run.
type Entry struct {
	ID        int64    `json:"id"`
	Topic     string   `json:"topic"`
	Report    string   `json:"report"`
	Queries   []string `json:"queries"`
	CreatedAt string   `json:"created_at"`
}

type row struct {
	ID        int64          `db:"id"`
	Topic     string         `db:"topic"`
	Report    sql.NullString `db:"report"`
	Queries   sql.NullString `db:"queries"`
	CreatedAt sql.NullString `db:"created_at"`
}

// Store implements autoresearch.Archiver on top of a SQL database.
type Store struct {
	db *sqlx.DB
}

var _ autoresearch.Archiver = (*Store)(nil)

// Open connects to the SQLite database at path, creating the file if needed,
// and applies the schema.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqlx.ConnectContext(ctx, "sqlite3", path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open history database", goerr.V("path", path))
	}

	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	ctxlog.From(ctx).Info("history database initialized", slog.String("path", path))
	return s, nil
}

// New wraps an existing connection. The caller is responsible for Migrate.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the research_runs table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schemaQuery); err != nil {
		return goerr.Wrap(err, "failed to create research_runs table")
	}
	return nil
}

// Save implements autoresearch.Archiver. Queries are stored as a JSON array.
func (s *Store) Save(ctx context.Context, run autoresearch.Run) (int64, error) {
	queries := run.Queries
	if queries == nil {
		queries = []string{}
	}
	raw, err := json.Marshal(queries)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to encode queries")
	}

	res, err := s.db.ExecContext(ctx, insertQuery, run.Topic, run.Report, string(raw))
	if err != nil {
		return 0, goerr.Wrap(err, "failed to insert research run", goerr.V("topic", run.Topic))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, goerr.Wrap(err, "failed to get research run id")
	}
	return id, nil
}

// List returns up to limit runs, most recent first.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}

	var rows []row
	if err := s.db.SelectContext(ctx, &rows, listQuery, limit); err != nil {
		return nil, goerr.Wrap(err, "failed to list research runs", goerr.V("limit", limit))
	}

	entries := make([]Entry, 0, len(rows))
	for _, r := range rows {
		entry := Entry{
			ID:        r.ID,
			Topic:     r.Topic,
			Report:    r.Report.String,
			Queries:   []string{},
			CreatedAt: r.CreatedAt.String,
		}
		if r.Queries.Valid && r.Queries.String != "" {
			if err := json.Unmarshal([]byte(r.Queries.String), &entry.Queries); err != nil {
				ctxlog.From(ctx).Warn("broken queries column",
					slog.Int64("id", r.ID), slog.Any("error", err))
				entry.Queries = []string{}
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
