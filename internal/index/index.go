package index

import (
	"context"

	"github.com/achntj/lab/internal/models"
)

// RecordIndex defines the record index operations used by the service layer.
// Consumers should depend on this interface rather than the concrete *DB type
// to facilitate testing with mocks.
type RecordIndex interface {
	UpsertRecord(ctx context.Context, in models.RecordInput) error
	DeleteRecord(ctx context.Context, source, sourceID string) error
	GetRecord(ctx context.Context, source, sourceID string) (*models.Record, error)
	SyncNoteLinks(ctx context.Context, noteID, content string) error
	NoteLinks(ctx context.Context, noteID string) (*models.NoteLinks, error)
	SearchRecords(ctx context.Context, raw string) ([]models.SearchResult, error)
	Graph(ctx context.Context) ([]models.GraphNode, []models.GraphLink, error)
	Export(ctx context.Context) (*models.Export, error)
	Import(ctx context.Context, exp *models.Export) (*models.ImportSummary, error)
	Ping(ctx context.Context) error
	Close() error
}

// Verify *DB satisfies RecordIndex at compile time.
var _ RecordIndex = (*DB)(nil)
