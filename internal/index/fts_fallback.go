//go:build !sqlite_fts5

package index

import (
	"context"
	"database/sql"

	"github.com/achntj/lab/internal/models"
)

// FTSAvailable reports whether the binary was built with FTS5 support.
const FTSAvailable = false

func initFTS(_ *sql.DB) error {
	// FTS5 not compiled in; SearchRecords relies on the substring pass.
	return nil
}

func (db *DB) ftsSearch(_ context.Context, _ []string, _ int) ([]models.SearchResult, error) {
	return nil, nil
}

// RebuildFTS is a no-op without FTS5.
func (db *DB) RebuildFTS(_ context.Context) error { return nil }
