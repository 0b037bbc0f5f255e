//go:build sqlite_fts5

package index

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/achntj/lab/internal/models"
)

// FTSAvailable reports whether the binary was built with FTS5 support.
const FTSAvailable = true

// record_search is an external-content table over records; the triggers keep
// it in step with every insert, update and delete on records.
func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS record_search USING fts5(
			title,
			content,
			url,
			category,
			tags,
			metadata,
			content = 'records',
			content_rowid = 'id',
			tokenize = 'unicode61 remove_diacritics 2'
		);

		CREATE TRIGGER IF NOT EXISTS records_ai AFTER INSERT ON records BEGIN
			INSERT INTO record_search(rowid, title, content, url, category, tags, metadata)
			VALUES (new.id, new.title, new.content, new.url, new.category, new.tags, new.metadata);
		END;

		CREATE TRIGGER IF NOT EXISTS records_ad AFTER DELETE ON records BEGIN
			INSERT INTO record_search(record_search, rowid, title, content, url, category, tags, metadata)
			VALUES ('delete', old.id, old.title, old.content, old.url, old.category, old.tags, old.metadata);
		END;

		CREATE TRIGGER IF NOT EXISTS records_au AFTER UPDATE ON records BEGIN
			INSERT INTO record_search(record_search, rowid, title, content, url, category, tags, metadata)
			VALUES ('delete', old.id, old.title, old.content, old.url, old.category, old.tags, old.metadata);
			INSERT INTO record_search(rowid, title, content, url, category, tags, metadata)
			VALUES (new.id, new.title, new.content, new.url, new.category, new.tags, new.metadata);
		END;
	`)
	return err
}

// ftsSearch runs the prefix-matching full-text pass, most relevant first.
func (db *DB) ftsSearch(ctx context.Context, tokens []string, limit int) ([]models.SearchResult, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT r.id, r.kind, r.title, r.content, r.url, r.category, r.source, r.source_id
		FROM record_search
		JOIN records r ON r.id = record_search.rowid
		WHERE record_search MATCH ?
		ORDER BY bm25(record_search) ASC, r.updated_at DESC
		LIMIT ?
	`, matchExpression(tokens), limit)
	if err != nil {
		return nil, fmt.Errorf("index: fts search: %w", err)
	}
	return scanResults(rows)
}

// RebuildFTS regenerates the full-text index from the records table.
func (db *DB) RebuildFTS(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `INSERT INTO record_search(record_search) VALUES ('rebuild')`); err != nil {
		return fmt.Errorf("index: rebuild fts: %w", err)
	}
	return nil
}
