// Package parser extracts [[mentions]], frontmatter and tags from note text.
package parser

import (
	"bytes"
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

var tagRe = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)

// Result holds the output of parsing a Markdown note.
type Result struct {
	Frontmatter map[string]any
	Body        string
	Mentions    []string
	Tags        []string
	Title       string
}

// Parse extracts frontmatter, body, mentions and tags from raw Markdown bytes.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	return &Result{
		Frontmatter: fm,
		Body:        body,
		Mentions:    ExtractMentions(body),
		Tags:        extractTags(body, fm),
		Title:       deriveTitle(fm, body),
	}, nil
}

// ExtractMentions returns the distinct [[Title]] mentions in content, in order
// of first appearance. A mention is the text between "[[" and the next "]]"
// provided it contains no '[' or ']'; titles are trimmed and empty ones
// dropped. Comparison is exact and case-sensitive.
func ExtractMentions(content string) []string {
	var out []string
	seen := make(map[string]struct{})

	for i := 0; ; {
		start := strings.Index(content[i:], "[[")
		if start < 0 {
			return out
		}
		p := i + start
		open := p + 2

		end := open
		for end < len(content) && content[end] != '[' && content[end] != ']' {
			end++
		}
		if end == open || !strings.HasPrefix(content[end:], "]]") {
			// No mention starts at p; "[[[B]]" still yields B from p+1.
			i = p + 1
			continue
		}

		i = end + 2
		title := strings.TrimSpace(content[open:end])
		if title == "" {
			continue
		}
		if _, dup := seen[title]; dup {
			continue
		}
		seen[title] = struct{}{}
		out = append(out, title)
	}
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. If no frontmatter is found the entire content is body.
func splitFrontmatter(data []byte) (map[string]any, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data), nil
	}

	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(rest[:idx], &fm); err != nil {
		// Invalid YAML is kept as body.
		return nil, string(data), nil
	}

	for k, v := range fm {
		fm[k] = normalize(v)
	}
	return fm, body, nil
}

// normalize rewrites nested YAML mappings with non-string keys, such as
// "1: good", into map[string]any so the tree stays JSON-encodable.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = normalize(item)
		}
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, item := range t {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []any:
		for i, item := range t {
			t[i] = normalize(item)
		}
		return t
	default:
		return v
	}
}

// extractTags collects tags from the frontmatter "tags" list and inline #tags.
func extractTags(body string, fm map[string]any) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(s string) {
		s = strings.TrimSpace(s)
		if s == "" {
			return
		}
		if _, dup := seen[s]; dup {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	if raw, ok := fm["tags"].([]any); ok {
		for _, item := range raw {
			if s, ok := item.(string); ok {
				add(s)
			}
		}
	}
	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	return out
}

// deriveTitle returns the frontmatter "title" if present, otherwise the first
// H1 heading, otherwise empty string.
func deriveTitle(fm map[string]any, body string) string {
	if s, ok := fm["title"].(string); ok && s != "" {
		return s
	}
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}
