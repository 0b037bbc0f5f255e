package index

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/achntj/lab/internal/apperr"
	"github.com/achntj/lab/internal/models"
)

// Import loads an Export in one transaction. Records whose (source, sourceId)
// already exists are skipped and keep their local row; edges are remapped
// from the exported ids to local ones and skipped when already present.
// Metadata is stored as exported, including its date tokens.
func (db *DB) Import(ctx context.Context, exp *models.Export) (*models.ImportSummary, error) {
	if exp == nil {
		return nil, fmt.Errorf("%w: empty import", apperr.ErrInvalidInput)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	sum := &models.ImportSummary{}
	ids := make(map[int64]int64, len(exp.Records))

	for i, r := range exp.Records {
		if r.Kind == "" || r.Source == "" || r.SourceID == "" || r.Title == "" {
			return nil, fmt.Errorf("%w: record %d: kind, source, sourceId and title are required",
				apperr.ErrInvalidInput, i)
		}

		var local int64
		err := tx.QueryRowContext(ctx,
			`SELECT id FROM records WHERE source = ? AND source_id = ?`, r.Source, r.SourceID).Scan(&local)
		switch {
		case err == nil:
			ids[r.ID] = local
			sum.SkippedRecords++
			continue
		case !errors.Is(err, sql.ErrNoRows):
			return nil, fmt.Errorf("index: import lookup: %w", err)
		}

		created, updated := r.CreatedAt, r.UpdatedAt
		if created.IsZero() {
			created = db.now()
		}
		if updated.IsZero() {
			updated = created
		}
		res, err := tx.ExecContext(ctx, `
			INSERT INTO records (kind, source, source_id, title, content, url, category, tags, metadata, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, r.Kind, r.Source, r.SourceID, r.Title, r.Content, r.URL, r.Category, r.Tags, r.Metadata,
			created.UTC(), updated.UTC())
		if err != nil {
			return nil, fmt.Errorf("index: import record: %w", err)
		}
		if local, err = res.LastInsertId(); err != nil {
			return nil, fmt.Errorf("index: import record id: %w", err)
		}
		ids[r.ID] = local
		sum.Records++
	}

	for _, l := range exp.RecordLinks {
		from, okFrom := ids[l.SourceID]
		to, okTo := ids[l.TargetID]
		if !okFrom || !okTo || from == to {
			sum.SkippedLinks++
			continue
		}
		res, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO record_links (source_id, target_id, label) VALUES (?, ?, ?)`, from, to, l.Label)
		if err != nil {
			return nil, fmt.Errorf("index: import link: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			sum.SkippedLinks++
			continue
		}
		sum.Links++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("index: import commit: %w", err)
	}
	return sum, nil
}
