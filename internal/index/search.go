package index

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/achntj/lab/internal/models"
	"github.com/achntj/lab/internal/query"
)

// likeColumns are the fields scanned by the substring pass.
var likeColumns = []string{"title", "content", "url", "category", "tags", "metadata"}

// SearchRecords runs the hybrid search: a prefix full-text pass when FTS5 is
// compiled in, topped up by a case-insensitive substring pass over every
// text column. An empty query returns an empty slice without touching the
// store.
func (db *DB) SearchRecords(ctx context.Context, raw string) ([]models.SearchResult, error) {
	parsed := query.Parse(raw)
	plan := planSearch(parsed, db.resultLimit)
	if plan.skip {
		return []models.SearchResult{}, nil
	}

	var ftsHits []models.SearchResult
	if plan.runFTS {
		hits, err := db.ftsSearch(ctx, parsed.FTSTokens, db.queryLimit)
		if err != nil {
			return nil, err
		}
		ftsHits = hits
	}
	if !plan.needsFallback(len(ftsHits)) || len(parsed.LikePatterns) == 0 {
		return mergeResults(plan.resultLimit, ftsHits), nil
	}

	likeHits, err := db.likeSearch(ctx, parsed.LikePatterns, db.queryLimit)
	if err != nil {
		return nil, err
	}
	return mergeResults(plan.resultLimit, ftsHits, likeHits), nil
}

// likeSearch requires every pattern to occur in at least one column.
func (db *DB) likeSearch(ctx context.Context, patterns []string, limit int) ([]models.SearchResult, error) {
	clauses := make([]string, 0, len(patterns))
	args := make([]any, 0, len(patterns)*len(likeColumns)+1)

	for _, p := range patterns {
		ors := make([]string, 0, len(likeColumns))
		needle := "%" + escapeLike(strings.ToLower(p)) + "%"
		for _, col := range likeColumns {
			ors = append(ors, fmt.Sprintf(`lower(coalesce(r.%s, '')) LIKE ? ESCAPE '\'`, col))
			args = append(args, needle)
		}
		clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
	}
	args = append(args, limit)

	rows, err := db.conn.QueryContext(ctx, `
		SELECT r.id, r.kind, r.title, r.content, r.url, r.category, r.source, r.source_id
		FROM records r
		WHERE `+strings.Join(clauses, " AND ")+`
		ORDER BY r.updated_at DESC, r.id DESC
		LIMIT ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("index: like search: %w", err)
	}
	return scanResults(rows)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func scanResults(rows *sql.Rows) ([]models.SearchResult, error) {
	defer rows.Close()

	var out []models.SearchResult
	for rows.Next() {
		var r models.SearchResult
		if err := rows.Scan(&r.ID, &r.Kind, &r.Title, &r.Content, &r.URL, &r.Category, &r.Source, &r.SourceID); err != nil {
			return nil, fmt.Errorf("index: scan result: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("index: iterate results: %w", err)
	}
	return out, nil
}
