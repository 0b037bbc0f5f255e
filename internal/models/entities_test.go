package models

import (
	"testing"
	"time"
)

func TestProjections(t *testing.T) {
	due := time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)
	cases := []struct {
		name   string
		p      Projector
		kind   string
		source string
		id     string
		title  string
	}{
		{"task", Task{ID: 7, Title: "Pay rent", Priority: "high", DueDate: &due}, "task", "task", "7", "Pay rent"},
		{"note", Note{ID: "3", Title: "Ideas", Content: "[[Pay rent]]"}, "note", "note", "3", "Ideas"},
		{"bookmark", Bookmark{ID: 2, Title: "Go", URL: "https://go.dev"}, "link", "bookmark", "2", "Go"},
		{"timer", Timer{ID: 4, Label: "Tea", DurationMinutes: 5}, "timer", "timer", "4", "Tea"},
		{"finance", FinanceEntry{ID: 5, Kind: "expense", Category: "food"}, "finance", "finance", "5", "expense food"},
		{"subscription", Subscription{ID: 6, Name: "Netflix", Cadence: "monthly"}, "subscription", "subscription", "6", "Netflix"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := tc.p.Record()
			if in.Kind != tc.kind || in.Source != tc.source || in.SourceID != tc.id || in.Title != tc.title {
				t.Errorf("got %+v", in)
			}
		})
	}
}

func TestTimerContent(t *testing.T) {
	in := Timer{ID: 1, Label: "Focus", DurationMinutes: 25}.Record()
	if in.Content == nil || *in.Content != "25 minutes" {
		t.Errorf("content = %v", in.Content)
	}
}

func TestBookmarkEmptyCategoryIsNull(t *testing.T) {
	in := Bookmark{ID: 1, Title: "x", URL: "https://x"}.Record()
	if in.Category != nil {
		t.Errorf("category = %q, want nil", *in.Category)
	}
}
