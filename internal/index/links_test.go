package index

import (
	"context"
	"errors"
	"testing"

	"github.com/achntj/lab/internal/apperr"
	"github.com/achntj/lab/internal/models"
)

func linkTitles(lr []models.LinkedRecord) []string {
	out := make([]string, len(lr))
	for i, r := range lr {
		out[i] = r.Title
	}
	return out
}

func TestSyncNoteLinks_CreateAndRemove(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	mustUpsert(t, db, noteInput("a", "A", "see [[B]]"))
	b := mustUpsert(t, db, noteInput("b", "B", ""))

	if err := db.SyncNoteLinks(ctx, "a", "see [[B]]"); err != nil {
		t.Fatalf("SyncNoteLinks: %v", err)
	}
	links, err := db.NoteLinks(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(links.Outgoing) != 1 || links.Outgoing[0].ID != b.ID {
		t.Fatalf("outgoing = %v, want [B]", linkTitles(links.Outgoing))
	}
	back, err := db.NoteLinks(ctx, "b")
	if err != nil {
		t.Fatal(err)
	}
	if len(back.Backlinks) != 1 || back.Backlinks[0].Title != "A" {
		t.Fatalf("backlinks of B = %v, want [A]", linkTitles(back.Backlinks))
	}

	if err := db.SyncNoteLinks(ctx, "a", "no mentions now"); err != nil {
		t.Fatal(err)
	}
	links, _ = db.NoteLinks(ctx, "a")
	if len(links.Outgoing) != 0 {
		t.Errorf("outgoing after removal = %v", linkTitles(links.Outgoing))
	}
}

func TestSyncNoteLinks_ReplacesWholesale(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	mustUpsert(t, db, noteInput("a", "A", ""))
	mustUpsert(t, db, noteInput("b", "B", ""))
	mustUpsert(t, db, noteInput("c", "C", ""))

	_ = db.SyncNoteLinks(ctx, "a", "[[B]] [[C]]")
	_ = db.SyncNoteLinks(ctx, "a", "[[C]] [[C]]")

	links, _ := db.NoteLinks(ctx, "a")
	if got := linkTitles(links.Outgoing); len(got) != 1 || got[0] != "C" {
		t.Errorf("outgoing = %v, want [C]", got)
	}
}

func TestSyncNoteLinks_LinksAnyKind(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	mustUpsert(t, db, noteInput("a", "A", ""))
	task := mustUpsert(t, db, models.Task{ID: 9, Title: "File taxes", Status: "open"}.Record())

	_ = db.SyncNoteLinks(ctx, "a", "remember [[File taxes]] and [[Nothing Here]]")
	links, _ := db.NoteLinks(ctx, "a")
	if len(links.Outgoing) != 1 || links.Outgoing[0].ID != task.ID || links.Outgoing[0].Kind != "task" {
		t.Errorf("outgoing = %+v", links.Outgoing)
	}
}

func TestSyncNoteLinks_NoSelfLoop(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	mustUpsert(t, db, noteInput("a", "A", ""))

	if err := db.SyncNoteLinks(ctx, "a", "I am [[A]]"); err != nil {
		t.Fatal(err)
	}
	var n int
	_ = db.conn.QueryRow(`SELECT count(*) FROM record_links`).Scan(&n)
	if n != 0 {
		t.Errorf("links = %d, want 0", n)
	}
}

func TestSyncNoteLinks_DuplicateTitleLowestIDWins(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	first := mustUpsert(t, db, models.RecordInput{Kind: "task", Source: "task", SourceID: "1", Title: "Dup"})
	mustUpsert(t, db, models.RecordInput{Kind: "link", Source: "bookmark", SourceID: "1", Title: "Dup"})
	mustUpsert(t, db, noteInput("a", "A", ""))

	_ = db.SyncNoteLinks(ctx, "a", "[[Dup]]")
	links, _ := db.NoteLinks(ctx, "a")
	if len(links.Outgoing) != 1 || links.Outgoing[0].ID != first.ID {
		t.Errorf("outgoing = %+v, want record %d", links.Outgoing, first.ID)
	}
}

func TestSyncNoteLinks_CaseSensitiveTitles(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	mustUpsert(t, db, noteInput("a", "A", ""))
	mustUpsert(t, db, noteInput("b", "Budget", ""))

	_ = db.SyncNoteLinks(ctx, "a", "[[budget]]")
	links, _ := db.NoteLinks(ctx, "a")
	if len(links.Outgoing) != 0 {
		t.Errorf("outgoing = %v, want none", linkTitles(links.Outgoing))
	}
}

func TestSyncNoteLinks_MissingNoteIsNoop(t *testing.T) {
	db := testDB(t)
	if err := db.SyncNoteLinks(context.Background(), "ghost", "[[Anything]]"); err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
}

func TestNoteLinks_NotFound(t *testing.T) {
	db := testDB(t)
	if _, err := db.NoteLinks(context.Background(), "ghost"); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteRecord_CascadesLinks(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	mustUpsert(t, db, noteInput("a", "A", ""))
	mustUpsert(t, db, noteInput("b", "B", ""))
	_ = db.SyncNoteLinks(ctx, "a", "[[B]]")
	_ = db.SyncNoteLinks(ctx, "b", "[[A]]")

	if err := db.DeleteRecord(ctx, models.SourceNote, "b"); err != nil {
		t.Fatal(err)
	}
	var n int
	_ = db.conn.QueryRow(`SELECT count(*) FROM record_links`).Scan(&n)
	if n != 0 {
		t.Errorf("links after delete = %d, want 0", n)
	}
}

func TestGraphAndExport(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	a := mustUpsert(t, db, noteInput("a", "A", ""))
	b := mustUpsert(t, db, noteInput("b", "B", ""))
	mustUpsert(t, db, noteInput("c", "Lonely", ""))
	_ = db.SyncNoteLinks(ctx, "a", "[[B]]")

	nodes, links, err := db.Graph(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(nodes) != 2 || nodes[0].ID != a.ID || nodes[1].ID != b.ID {
		t.Errorf("nodes = %+v", nodes)
	}
	if len(links) != 1 || links[0].Source != a.ID || links[0].Target != b.ID {
		t.Errorf("links = %+v", links)
	}

	exp, err := db.Export(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(exp.Records) != 3 || len(exp.RecordLinks) != 1 {
		t.Errorf("export = %d records, %d links", len(exp.Records), len(exp.RecordLinks))
	}
	if exp.Records[0].ID != a.ID {
		t.Errorf("export not ordered by id")
	}
}
