// Package models defines the search index types and the per-kind projections
// that feed it.
package models

import "time"

// RecordInput is the payload the domain layer hands to the projector.
// Metadata may be a string (stored verbatim) or any JSON-encodable value.
type RecordInput struct {
	Kind     string  `json:"kind"`
	Source   string  `json:"source"`
	SourceID string  `json:"sourceId"`
	Title    string  `json:"title"`
	Content  *string `json:"content,omitempty"`
	URL      *string `json:"url,omitempty"`
	Category *string `json:"category,omitempty"`
	Tags     *string `json:"tags,omitempty"`
	Metadata any     `json:"metadata,omitempty"`
}

// Record is one row of the denormalized search index.
type Record struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Source    string    `json:"source"`
	SourceID  string    `json:"sourceId"`
	Title     string    `json:"title"`
	Content   *string   `json:"content"`
	URL       *string   `json:"url"`
	Category  *string   `json:"category"`
	Tags      *string   `json:"tags"`
	Metadata  *string   `json:"metadata"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RecordLink is a directed mention edge between two records.
type RecordLink struct {
	ID       int64   `json:"id"`
	SourceID int64   `json:"sourceId"`
	TargetID int64   `json:"targetId"`
	Label    *string `json:"label"`
}

// SearchResult is one hit returned by the search executor.
type SearchResult struct {
	ID       int64   `json:"id"`
	Kind     string  `json:"kind"`
	Title    string  `json:"title"`
	Content  *string `json:"content"`
	URL      *string `json:"url"`
	Category *string `json:"category"`
	Source   string  `json:"source"`
	SourceID string  `json:"sourceId"`
}

// LinkedRecord is the far end of an edge as seen from one record.
type LinkedRecord struct {
	ID       int64  `json:"id"`
	Kind     string `json:"kind"`
	Source   string `json:"source"`
	SourceID string `json:"sourceId"`
	Title    string `json:"title"`
}

// NoteLinks groups a note's outgoing mentions and incoming backlinks.
type NoteLinks struct {
	Outgoing  []LinkedRecord `json:"outgoing"`
	Backlinks []LinkedRecord `json:"backlinks"`
}

// GraphNode is a record that participates in at least one edge.
type GraphNode struct {
	ID    int64  `json:"id"`
	Kind  string `json:"kind"`
	Title string `json:"title"`
}

// GraphLink is an edge between two graph nodes.
type GraphLink struct {
	Source int64 `json:"source"`
	Target int64 `json:"target"`
}

// Export is a full dump of the index.
type Export struct {
	GeneratedAt time.Time    `json:"generatedAt"`
	Records     []Record     `json:"records"`
	RecordLinks []RecordLink `json:"recordLinks"`
}

// StringPtr returns nil for an empty string, otherwise a pointer to s.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// ImportSummary counts what an import wrote and what it skipped because the
// record or edge already existed.
type ImportSummary struct {
	Records        int `json:"records"`
	SkippedRecords int `json:"skippedRecords"`
	Links          int `json:"links"`
	SkippedLinks   int `json:"skippedLinks"`
}
