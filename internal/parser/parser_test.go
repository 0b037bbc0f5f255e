package parser

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestParse_FrontmatterAndBody(t *testing.T) {
	input := []byte("---\ntitle: Hello\ntags:\n  - go\n  - lab\ncreated: 2025-01-20\n---\n# Hello\nSee [[World]].\n")
	r, err := Parse(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Title != "Hello" {
		t.Errorf("title = %q, want %q", r.Title, "Hello")
	}
	if !reflect.DeepEqual(r.Tags, []string{"go", "lab"}) {
		t.Errorf("tags = %v, want [go lab]", r.Tags)
	}
	if r.Body != "# Hello\nSee [[World]].\n" {
		t.Errorf("body = %q", r.Body)
	}
	if !reflect.DeepEqual(r.Mentions, []string{"World"}) {
		t.Errorf("mentions = %v", r.Mentions)
	}
	if r.Frontmatter["created"] == nil {
		t.Error("created missing from frontmatter")
	}
}

func TestParse_NoFrontmatter(t *testing.T) {
	r, err := Parse([]byte("# Just a heading\nSome text.\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter, got %v", r.Frontmatter)
	}
	if r.Title != "Just a heading" {
		t.Errorf("title = %q, want %q", r.Title, "Just a heading")
	}
}

func TestParse_InvalidYAMLFallback(t *testing.T) {
	r, err := Parse([]byte("---\n: invalid: yaml: {{{\n---\nBody\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Frontmatter != nil {
		t.Errorf("expected nil frontmatter on invalid YAML")
	}
}

func TestExtractMentions(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"basic", "See [[Note A]] and [[Note B]].", []string{"Note A", "Note B"}},
		{"trim and dedupe", "[[ Note A ]] then [[Note A]] and [[note a]]", []string{"Note A", "note a"}},
		{"empty spans", "see [[ ]] and [[]]", nil},
		{"unterminated", "see [[Note A", nil},
		{"single close", "see [[Note A] and more", nil},
		{"extra open bracket", "see [[[Note B]]", []string{"Note B"}},
		{"nested bracket aborts", "[[a [b] c]] then [[C]]", []string{"C"}},
		{"pipe kept verbatim", "[[Target|alias]]", []string{"Target|alias"}},
		{"multiline title", "[[two\nlines]]", []string{"two\nlines"}},
		{"adjacent", "[[A]][[B]]", []string{"A", "B"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ExtractMentions(tc.in)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ExtractMentions(%q) = %#v, want %#v", tc.in, got, tc.want)
			}
		})
	}
}

func TestExtractTags_InlineAndFrontmatter(t *testing.T) {
	fm := map[string]any{"tags": []any{"alpha"}}
	tags := extractTags("Some text #beta and #alpha again.", fm)
	if !reflect.DeepEqual(tags, []string{"alpha", "beta"}) {
		t.Errorf("tags = %v, want [alpha beta]", tags)
	}
}

func TestDeriveTitle_FrontmatterOverH1(t *testing.T) {
	if title := deriveTitle(map[string]any{"title": "FM Title"}, "# H1 Title\ntext"); title != "FM Title" {
		t.Errorf("title = %q, want %q", title, "FM Title")
	}
}

func TestDeriveTitle_H1Fallback(t *testing.T) {
	if title := deriveTitle(nil, "some text\n# My Heading\nmore"); title != "My Heading" {
		t.Errorf("title = %q, want %q", title, "My Heading")
	}
}

func TestParse_NormalizesNonStringKeys(t *testing.T) {
	r, err := Parse([]byte("---\nratings:\n  1: good\n  true: [x, {2: y}]\n---\nBody\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]any{
		"1":    "good",
		"true": []any{"x", map[string]any{"2": "y"}},
	}
	if !reflect.DeepEqual(r.Frontmatter["ratings"], want) {
		t.Errorf("ratings = %#v, want %#v", r.Frontmatter["ratings"], want)
	}
	if _, err := json.Marshal(r.Frontmatter); err != nil {
		t.Errorf("frontmatter not JSON-encodable: %v", err)
	}
}
