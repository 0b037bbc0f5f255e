package index

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/achntj/lab/internal/models"
)

func resultIDs(rs []models.SearchResult) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Source + "/" + r.SourceID
	}
	return out
}

func containsResult(rs []models.SearchResult, source, sourceID string) bool {
	for _, r := range rs {
		if r.Source == source && r.SourceID == sourceID {
			return true
		}
	}
	return false
}

func TestSearchRecords_EmptyQuerySkipsStore(t *testing.T) {
	f, err := os.CreateTemp("", "lab-closed-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	defer os.Remove(f.Name())

	db, err := Open(f.Name())
	if err != nil {
		t.Fatal(err)
	}
	db.Close()

	for _, q := range []string{"", "   ", "! ?", "a"} {
		got, err := db.SearchRecords(context.Background(), q)
		if err != nil {
			t.Fatalf("SearchRecords(%q): %v", q, err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("SearchRecords(%q) = %v, want empty non-nil slice", q, got)
		}
	}
}

func TestSearchRecords_RenewalDateExample(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, models.Subscription{
		ID: 1, Name: "Netflix", Amount: 15.49, RenewalDate: "2025-12-15", Cadence: "monthly",
	}.Record())
	mustUpsert(t, db, models.Subscription{
		ID: 2, Name: "Spotify", Amount: 9.99, RenewalDate: "2025-03-02", Cadence: "monthly",
	}.Record())

	for _, q := range []string{"dec 15", "2025-12-15", "15", "december", "netflix dec"} {
		got, err := db.SearchRecords(context.Background(), q)
		if err != nil {
			t.Fatalf("SearchRecords(%q): %v", q, err)
		}
		if !containsResult(got, "subscription", "1") {
			t.Errorf("SearchRecords(%q) = %v, want subscription/1", q, resultIDs(got))
		}
		if containsResult(got, "subscription", "2") {
			t.Errorf("SearchRecords(%q) unexpectedly matched subscription/2", q)
		}
	}
}

func TestSearchRecords_SubstringFallbackFindsMidWord(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, models.RecordInput{Kind: "task", Source: "task", SourceID: "1", Title: "Groceries run"})

	got, err := db.SearchRecords(context.Background(), "OCER")
	if err != nil {
		t.Fatal(err)
	}
	if !containsResult(got, "task", "1") {
		t.Errorf("mid-word substring not found: %v", resultIDs(got))
	}
}

func TestSearchRecords_AllPatternsMustMatch(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, models.RecordInput{Kind: "task", Source: "task", SourceID: "1", Title: "milk and bread"})
	mustUpsert(t, db, models.RecordInput{Kind: "task", Source: "task", SourceID: "2", Title: "milk only"})

	got, err := db.SearchRecords(context.Background(), "milk bread")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].SourceID != "1" {
		t.Errorf("got %v, want [task/1]", resultIDs(got))
	}
}

func TestSearchRecords_MatchesAnyColumn(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, models.Bookmark{ID: 4, Title: "Docs", URL: "https://pkg.go.dev", Category: "reference"}.Record())

	ctx := context.Background()
	for _, q := range []string{"pkg", "reference", "docs"} {
		got, err := db.SearchRecords(ctx, q)
		if err != nil {
			t.Fatal(err)
		}
		if !containsResult(got, "bookmark", "4") {
			t.Errorf("SearchRecords(%q) = %v", q, resultIDs(got))
		}
	}
}

func TestSearchRecords_NoDuplicates(t *testing.T) {
	db := testDB(t)
	mustUpsert(t, db, models.RecordInput{Kind: "task", Source: "task", SourceID: "1", Title: "milk"})

	got, err := db.SearchRecords(context.Background(), "milk")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("got %v, want exactly one hit", resultIDs(got))
	}
}

func TestSearchRecords_SubstringOrderedByRecency(t *testing.T) {
	db := testDB(t, WithClock(tickingClock()))
	for i := 1; i <= 3; i++ {
		mustUpsert(t, db, models.RecordInput{
			Kind: "task", Source: "task", SourceID: fmt.Sprint(i), Title: fmt.Sprintf("alpha %d", i),
		})
	}

	got, err := db.SearchRecords(context.Background(), "lph")
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"task/3", "task/2", "task/1"}
	if fmt.Sprint(resultIDs(got)) != fmt.Sprint(want) {
		t.Errorf("order = %v, want %v", resultIDs(got), want)
	}
}

func TestSearchRecords_ResultCap(t *testing.T) {
	db := testDB(t)
	for i := 0; i < 30; i++ {
		mustUpsert(t, db, models.RecordInput{
			Kind: "task", Source: "task", SourceID: fmt.Sprint(i), Title: fmt.Sprintf("item %d", i),
		})
	}

	got, err := db.SearchRecords(context.Background(), "item")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != DefaultResultLimit {
		t.Errorf("len = %d, want %d", len(got), DefaultResultLimit)
	}

	small := testDB(t, WithLimits(5, 10))
	for i := 0; i < 8; i++ {
		mustUpsert(t, small, models.RecordInput{
			Kind: "task", Source: "task", SourceID: fmt.Sprint(i), Title: fmt.Sprintf("item %d", i),
		})
	}
	got, err = small.SearchRecords(context.Background(), "item")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 5 {
		t.Errorf("len = %d, want 5", len(got))
	}
}
