package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/achntj/lab/internal/models"
	"github.com/achntj/lab/internal/recordservice"
)

// RecordRequest is the body of PUT /records/{source}/{sourceId}.
type RecordRequest struct {
	Kind     string  `json:"kind" example:"task" validate:"required"`
	Title    string  `json:"title" example:"Buy milk" validate:"required"`
	Content  *string `json:"content,omitempty"`
	URL      *string `json:"url,omitempty"`
	Category *string `json:"category,omitempty"`
	Tags     *string `json:"tags,omitempty"`
	// Metadata is either a JSON string stored verbatim or any JSON value.
	Metadata any `json:"metadata,omitempty"`
}

// Validate checks the required fields.
func (r RecordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Kind, validation.Required),
		validation.Field(&r.Title, validation.Required),
	)
}

func (r RecordRequest) input(source, sourceID string) models.RecordInput {
	return models.RecordInput{
		Kind:     r.Kind,
		Source:   source,
		SourceID: sourceID,
		Title:    r.Title,
		Content:  r.Content,
		URL:      r.URL,
		Category: r.Category,
		Tags:     r.Tags,
		Metadata: r.Metadata,
	}
}

// NoteRequest is the body of PUT /notes/{noteId}.
type NoteRequest struct {
	Title   string `json:"title" example:"Weekly plan" validate:"required"`
	Content string `json:"content" example:"See [[Budget]]"`
}

// Validate checks the required fields.
func (r NoteRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required),
	)
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []models.SearchResult `json:"results" validate:"required"`
}

// GraphResponse wraps the linked-records graph.
type GraphResponse = recordservice.Graph
