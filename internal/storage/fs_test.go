package storage

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/achntj/lab/internal/checksum"
)

func tempVault(t *testing.T) (*FS, string) {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs, dir
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestRead(t *testing.T) {
	s, root := tempVault(t)
	writeFile(t, root, "note.md", "# Hello\nWorld\n")

	got, err := s.Read("note.md")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "# Hello\nWorld\n" {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestListSkipsHiddenAndNonMarkdown(t *testing.T) {
	s, root := tempVault(t)
	writeFile(t, root, "a.md", "a")
	writeFile(t, root, "sub/b.md", "b")
	writeFile(t, root, "sub/image.png", "png")
	writeFile(t, root, ".obsidian/c.md", "hidden")
	writeFile(t, root, ".draft.md", "hidden")

	metas, err := s.List("")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var paths []string
	for _, m := range metas {
		paths = append(paths, m.Path)
	}
	sort.Strings(paths)
	if len(paths) != 2 || paths[0] != "a.md" || paths[1] != "sub/b.md" {
		t.Fatalf("paths = %v, want [a.md sub/b.md]", paths)
	}
	for _, m := range metas {
		if m.Path == "a.md" && m.Checksum != checksum.Sum([]byte("a")) {
			t.Errorf("checksum mismatch for a.md")
		}
	}
}

func TestPathTraversal(t *testing.T) {
	s, _ := tempVault(t)
	if _, err := s.Read("../../etc/passwd"); err == nil {
		t.Error("expected error for path traversal")
	}
	if _, err := s.List("../"); err == nil {
		t.Error("expected error for list traversal")
	}
}

func TestAbsolutePathRejected(t *testing.T) {
	s, _ := tempVault(t)
	if _, err := s.Read("/etc/passwd"); err == nil {
		t.Error("expected error for absolute path")
	}
}

func TestRel(t *testing.T) {
	s, root := tempVault(t)
	rel, err := s.Rel(filepath.Join(s.Root(), "x", "y.md"))
	if err != nil {
		t.Fatalf("Rel: %v", err)
	}
	if rel != "x/y.md" {
		t.Errorf("rel = %q, want x/y.md", rel)
	}
	if _, err := s.Rel(filepath.Dir(root)); err == nil {
		t.Error("expected error for path outside vault")
	}
}

func TestNewFSRejectsFile(t *testing.T) {
	_, root := tempVault(t)
	writeFile(t, root, "f.md", "x")
	if _, err := NewFS(filepath.Join(root, "f.md")); err == nil {
		t.Error("expected error for non-directory root")
	}
}
