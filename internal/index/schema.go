// Package index provides the SQLite-backed record index: projection of domain
// entities into records, the note mention graph, and hybrid FTS5/substring search.
package index

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS records (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	kind       TEXT NOT NULL,
	source     TEXT NOT NULL,
	source_id  TEXT NOT NULL,
	title      TEXT NOT NULL,
	content    TEXT,
	url        TEXT,
	category   TEXT,
	tags       TEXT,
	metadata   TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(source, source_id)
);

CREATE INDEX IF NOT EXISTS idx_records_title ON records(title);
CREATE INDEX IF NOT EXISTS idx_records_updated ON records(updated_at DESC);

CREATE TABLE IF NOT EXISTS record_links (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	source_id INTEGER NOT NULL REFERENCES records(id) ON DELETE CASCADE,
	target_id INTEGER NOT NULL REFERENCES records(id) ON DELETE CASCADE,
	label     TEXT,
	UNIQUE(source_id, target_id),
	CHECK(source_id <> target_id)
);

CREATE INDEX IF NOT EXISTS idx_record_links_target ON record_links(target_id);

CREATE TABLE IF NOT EXISTS vault_files (
	path     TEXT PRIMARY KEY,
	checksum TEXT NOT NULL
);
`

// Default result caps for SearchRecords.
const (
	DefaultResultLimit = 25
	DefaultQueryLimit  = 50
)

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn        *sql.DB
	now         func() time.Time
	resultLimit int
	queryLimit  int
}

// Option configures a DB.
type Option func(*DB)

// WithClock overrides the clock used for created_at/updated_at.
func WithClock(now func() time.Time) Option {
	return func(db *DB) { db.now = now }
}

// WithLimits overrides the search result cap and the per-strategy row cap.
// Non-positive values keep the defaults.
func WithLimits(result, query int) Option {
	return func(db *DB) {
		if result > 0 {
			db.resultLimit = result
		}
		if query > 0 {
			db.queryLimit = query
		}
	}
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string, opts ...Option) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on&_txlock=immediate")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}

	db := &DB{
		conn:        conn,
		now:         time.Now,
		resultLimit: DefaultResultLimit,
		queryLimit:  DefaultQueryLimit,
	}
	for _, opt := range opts {
		opt(db)
	}
	return db, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping reports whether the database is reachable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}
