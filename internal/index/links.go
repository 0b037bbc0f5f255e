package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/achntj/lab/internal/models"
	"github.com/achntj/lab/internal/parser"
)

// SyncNoteLinks replaces the outgoing mention edges of the note record keyed
// by ("note", noteID) with edges to every record whose title is mentioned as
// [[Title]] in content. A missing note record is a no-op.
func (db *DB) SyncNoteLinks(ctx context.Context, noteID, content string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if err := syncLinks(ctx, tx, models.SourceNote, noteID, content); err != nil {
		return err
	}
	return tx.Commit()
}

func syncLinks(ctx context.Context, tx *sql.Tx, source, sourceID, content string) error {
	mentions := parser.ExtractMentions(content)

	var noteRecordID int64
	err := tx.QueryRowContext(ctx,
		`SELECT id FROM records WHERE source = ? AND source_id = ?`, source, sourceID).Scan(&noteRecordID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("index: resolve note: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM record_links WHERE source_id = ?`, noteRecordID); err != nil {
		return fmt.Errorf("index: clear links: %w", err)
	}
	if len(mentions) == 0 {
		return nil
	}

	targets, err := resolveTitles(ctx, tx, mentions)
	if err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO record_links (source_id, target_id) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("index: prepare link insert: %w", err)
	}
	defer stmt.Close()

	for _, title := range mentions {
		target, ok := targets[title]
		if !ok || target == noteRecordID {
			continue
		}
		if _, err := stmt.ExecContext(ctx, noteRecordID, target); err != nil {
			return fmt.Errorf("index: insert link: %w", err)
		}
	}
	return nil
}

// resolveTitles maps each exactly-matching title to a record id. When several
// records share a title the lowest id wins.
func resolveTitles(ctx context.Context, tx *sql.Tx, titles []string) (map[string]int64, error) {
	args := make([]any, len(titles))
	for i, t := range titles {
		args[i] = t
	}
	rows, err := tx.QueryContext(ctx,
		`SELECT title, MIN(id) FROM records WHERE title IN (`+placeholders(len(titles))+`) GROUP BY title`, args...)
	if err != nil {
		return nil, fmt.Errorf("index: resolve titles: %w", err)
	}
	defer rows.Close()

	out := make(map[string]int64, len(titles))
	for rows.Next() {
		var (
			title string
			id    int64
		)
		if err := rows.Scan(&title, &id); err != nil {
			return nil, fmt.Errorf("index: scan title: %w", err)
		}
		out[title] = id
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// OutgoingLinks returns the records the given record mentions, by title.
func (db *DB) OutgoingLinks(ctx context.Context, recordID int64) ([]models.LinkedRecord, error) {
	return db.linked(ctx, `
		SELECT r.id, r.kind, r.source, r.source_id, r.title
		FROM record_links l JOIN records r ON r.id = l.target_id
		WHERE l.source_id = ?
		ORDER BY r.title, r.id`, recordID)
}

// Backlinks returns the records that mention the given record.
func (db *DB) Backlinks(ctx context.Context, recordID int64) ([]models.LinkedRecord, error) {
	return db.linked(ctx, `
		SELECT r.id, r.kind, r.source, r.source_id, r.title
		FROM record_links l JOIN records r ON r.id = l.source_id
		WHERE l.target_id = ?
		ORDER BY r.title, r.id`, recordID)
}

func (db *DB) linked(ctx context.Context, q string, recordID int64) ([]models.LinkedRecord, error) {
	rows, err := db.conn.QueryContext(ctx, q, recordID)
	if err != nil {
		return nil, fmt.Errorf("index: linked records: %w", err)
	}
	defer rows.Close()

	out := []models.LinkedRecord{}
	for rows.Next() {
		var lr models.LinkedRecord
		if err := rows.Scan(&lr.ID, &lr.Kind, &lr.Source, &lr.SourceID, &lr.Title); err != nil {
			return nil, fmt.Errorf("index: scan linked record: %w", err)
		}
		out = append(out, lr)
	}
	return out, rows.Err()
}

// NoteLinks returns both edge directions for the note keyed by noteID, or
// apperr.ErrNotFound when no such note record exists.
func (db *DB) NoteLinks(ctx context.Context, noteID string) (*models.NoteLinks, error) {
	rec, err := db.GetRecord(ctx, models.SourceNote, noteID)
	if err != nil {
		return nil, err
	}
	out, err := db.OutgoingLinks(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	back, err := db.Backlinks(ctx, rec.ID)
	if err != nil {
		return nil, err
	}
	return &models.NoteLinks{Outgoing: out, Backlinks: back}, nil
}

// Graph returns every record that takes part in an edge, plus all edges.
func (db *DB) Graph(ctx context.Context) ([]models.GraphNode, []models.GraphLink, error) {
	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, kind, title FROM records
		WHERE id IN (SELECT source_id FROM record_links UNION SELECT target_id FROM record_links)
		ORDER BY id`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph nodes: %w", err)
	}
	defer rows.Close()

	nodes := []models.GraphNode{}
	for rows.Next() {
		var n models.GraphNode
		if err := rows.Scan(&n.ID, &n.Kind, &n.Title); err != nil {
			return nil, nil, fmt.Errorf("index: scan graph node: %w", err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	lrows, err := db.conn.QueryContext(ctx, `SELECT source_id, target_id FROM record_links ORDER BY id`)
	if err != nil {
		return nil, nil, fmt.Errorf("index: graph links: %w", err)
	}
	defer lrows.Close()

	links := []models.GraphLink{}
	for lrows.Next() {
		var l models.GraphLink
		if err := lrows.Scan(&l.Source, &l.Target); err != nil {
			return nil, nil, fmt.Errorf("index: scan graph link: %w", err)
		}
		links = append(links, l)
	}
	return nodes, links, lrows.Err()
}
