package index

import (
	"strings"

	"github.com/achntj/lab/internal/models"
	"github.com/achntj/lab/internal/query"
)

// searchPlan decides which strategies a parsed query runs.
type searchPlan struct {
	skip        bool
	runFTS      bool
	resultLimit int
}

func planSearch(p query.Parsed, resultLimit int) searchPlan {
	return searchPlan{
		skip:        p.Empty(),
		runFTS:      FTSAvailable && len(p.FTSTokens) > 0,
		resultLimit: resultLimit,
	}
}

// needsFallback reports whether the substring pass must run after the
// full-text pass produced ftsHits results.
func (sp searchPlan) needsFallback(ftsHits int) bool {
	return !sp.runFTS || ftsHits < sp.resultLimit
}

// mergeResults concatenates lists in order, keeps the first occurrence of
// each record id and truncates to limit. The result is never nil.
func mergeResults(limit int, lists ...[]models.SearchResult) []models.SearchResult {
	out := make([]models.SearchResult, 0, limit)
	seen := make(map[int64]struct{})
	for _, list := range lists {
		for _, r := range list {
			if len(out) >= limit {
				return out
			}
			if _, dup := seen[r.ID]; dup {
				continue
			}
			seen[r.ID] = struct{}{}
			out = append(out, r)
		}
	}
	return out
}

// matchExpression builds an FTS5 query requiring every token as a prefix.
// Tokens are quoted so punctuation such as '-' is never parsed as syntax.
func matchExpression(tokens []string) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		parts = append(parts, `"`+strings.ReplaceAll(t, `"`, `""`)+`"*`)
	}
	return strings.Join(parts, " AND ")
}
