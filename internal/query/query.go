// Package query turns raw search input into full-text tokens and substring
// patterns, expanding date fragments ("dec 12", "2025 12 01", "2025-12-12")
// into the same shapes the indexer stores.
package query

import (
	"regexp"
	"strings"

	"github.com/achntj/lab/internal/dates"
)

var (
	yearRe     = regexp.MustCompile(`^\d{4}$`)
	dayMonthRe = regexp.MustCompile(`^\d{1,2}$`)
	isoRe      = regexp.MustCompile(`^(\d{4})(?:[-/](\d{1,2})(?:[-/](\d{1,2}))?)?$`)
	nonLetter  = regexp.MustCompile(`[^a-z]`)
	nonAlnum   = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// Parsed is the two parallel representations of one query.
type Parsed struct {
	// FTSTokens are lowercase terms eligible for prefix matching.
	FTSTokens []string
	// LikePatterns are lowercase substrings matched case-insensitively.
	LikePatterns []string
}

// Empty reports whether nothing searchable survived parsing.
func (p Parsed) Empty() bool {
	return len(p.FTSTokens) == 0 && len(p.LikePatterns) == 0
}

type builder struct {
	fts   []string
	likes []string
}

func (b *builder) tok(v ...string)  { b.fts = append(b.fts, v...) }
func (b *builder) like(v ...string) { b.likes = append(b.likes, v...) }

// Parse splits raw on whitespace and processes parts left to right with a
// lookahead of two. Numeric parts consumed by a compound date are not skipped:
// they are processed again on their own turn.
func Parse(raw string) Parsed {
	parts := strings.Fields(raw)
	if len(parts) == 0 {
		return Parsed{FTSTokens: []string{}, LikePatterns: []string{}}
	}

	b := &builder{}
	at := func(i int) string {
		if i < len(parts) {
			return parts[i]
		}
		return ""
	}

	for i, part := range parts {
		switch {
		case yearRe.MatchString(part):
			b.year(part, at(i+1), at(i+2))
		case isoRe.MatchString(part):
			b.iso(part)
		default:
			alpha := nonLetter.ReplaceAllString(strings.ToLower(part), "")
			if num, ok := dates.MonthNumber(alpha); ok {
				b.month(alpha, num, at(i+1), at(i+2))
				continue
			}
			cleaned := strings.ToLower(nonAlnum.ReplaceAllString(part, ""))
			if len(cleaned) >= 2 {
				b.tok(cleaned)
				b.like(cleaned)
			}
		}
	}

	return Parsed{
		FTSTokens:    dedupe(b.fts),
		LikePatterns: dedupe(b.likes),
	}
}

// year handles "2025", "2025 12" and "2025 12 01".
func (b *builder) year(y, next, after string) {
	b.tok(y)
	b.like(y)
	if !dayMonthRe.MatchString(next) {
		return
	}
	m := dates.Pad2(next)
	b.tok(y+"-"+m, y+m, m)
	b.like(y+"-"+m, m)
	if !dayMonthRe.MatchString(after) {
		return
	}
	d := dates.Pad2(after)
	b.tok(y+"-"+m+"-"+d, y+m+d, d)
	b.like(y+"-"+m+"-"+d, d)
}

// iso handles "2025-12", "2025/12/01" and friends as a single part.
func (b *builder) iso(part string) {
	g := isoRe.FindStringSubmatch(part)
	y, m, d := g[1], g[2], g[3]
	b.tok(y)
	b.like(y)
	if m != "" {
		m = dates.Pad2(m)
		b.tok(y+"-"+m, y+m, m)
		b.like(y+"-"+m, m)
		if d != "" {
			d = dates.Pad2(d)
			b.tok(y+"-"+m+"-"+d, y+m+d, d)
			b.like(y+"-"+m+"-"+d, d)
		}
	}
	b.like(strings.ToLower(part))
}

// month handles "dec", "dec 12", "dec 2025" and "dec 2025 12".
func (b *builder) month(name, num, next, after string) {
	b.tok(num, name)
	b.like(name, num)

	if dayMonthRe.MatchString(next) {
		d := dates.Pad2(next)
		b.tok(num+"-"+d, num+d, d, name+d)
		b.like(num+"-"+d, d, name+d)
	}

	if yearRe.MatchString(next) {
		y := next
		b.tok(y, y+"-"+num, y+num)
		b.like(y, y+"-"+num)
		if dayMonthRe.MatchString(after) {
			d := dates.Pad2(after)
			b.tok(y+"-"+num+"-"+d, y+num+d, d)
			b.like(y+"-"+num+"-"+d, d)
		}
	}
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
