package index

import (
	"context"
	"fmt"

	"github.com/achntj/lab/internal/models"
)

// Export dumps every record and edge ordered by id.
func (db *DB) Export(ctx context.Context) (*models.Export, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+recordColumns+` FROM records ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("index: export records: %w", err)
	}
	defer rows.Close()

	out := &models.Export{
		GeneratedAt: db.now().UTC(),
		Records:     []models.Record{},
		RecordLinks: []models.RecordLink{},
	}
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("index: scan record: %w", err)
		}
		out.Records = append(out.Records, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	lrows, err := db.conn.QueryContext(ctx, `SELECT id, source_id, target_id, label FROM record_links ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("index: export links: %w", err)
	}
	defer lrows.Close()

	for lrows.Next() {
		var l models.RecordLink
		if err := lrows.Scan(&l.ID, &l.SourceID, &l.TargetID, &l.Label); err != nil {
			return nil, fmt.Errorf("index: scan link: %w", err)
		}
		out.RecordLinks = append(out.RecordLinks, l)
	}
	return out, lrows.Err()
}
