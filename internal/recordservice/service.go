// Package recordservice coordinates index writes with link maintenance and
// change notifications.
package recordservice

import (
	"context"

	"github.com/achntj/lab/internal/index"
	"github.com/achntj/lab/internal/models"
)

// EventFunc receives record change notifications (see the index Event kinds).
type EventFunc func(kind, source, sourceID string)

// Graph is the linked-records view.
type Graph struct {
	Nodes []models.GraphNode `json:"nodes"`
	Links []models.GraphLink `json:"links"`
}

// Service wraps a RecordIndex. It is safe for concurrent use.
type Service struct {
	db      index.RecordIndex
	onEvent EventFunc
}

// NewService creates a service. onEvent may be nil.
func NewService(db index.RecordIndex, onEvent EventFunc) *Service {
	return &Service{db: db, onEvent: onEvent}
}

func (s *Service) emit(kind, source, sourceID string) {
	if s.onEvent != nil {
		s.onEvent(kind, source, sourceID)
	}
}

// UpsertRecord projects in and returns the stored record.
func (s *Service) UpsertRecord(ctx context.Context, in models.RecordInput) (*models.Record, error) {
	if err := s.db.UpsertRecord(ctx, in); err != nil {
		return nil, err
	}
	s.emit(index.EventUpserted, in.Source, in.SourceID)
	return s.db.GetRecord(ctx, in.Source, in.SourceID)
}

// Project upserts the record of any domain entity.
func (s *Service) Project(ctx context.Context, p models.Projector) (*models.Record, error) {
	return s.UpsertRecord(ctx, p.Record())
}

// DeleteRecord removes a record and, through the store, its edges.
func (s *Service) DeleteRecord(ctx context.Context, source, sourceID string) error {
	if err := s.db.DeleteRecord(ctx, source, sourceID); err != nil {
		return err
	}
	s.emit(index.EventDeleted, source, sourceID)
	return nil
}

// GetRecord returns one record or apperr.ErrNotFound.
func (s *Service) GetRecord(ctx context.Context, source, sourceID string) (*models.Record, error) {
	return s.db.GetRecord(ctx, source, sourceID)
}

// SaveNote upserts the note record, replaces its mention edges and returns
// the resulting link view.
func (s *Service) SaveNote(ctx context.Context, n models.Note) (*models.NoteLinks, error) {
	if _, err := s.UpsertRecord(ctx, n.Record()); err != nil {
		return nil, err
	}
	if err := s.db.SyncNoteLinks(ctx, n.ID, n.Content); err != nil {
		return nil, err
	}
	s.emit(index.EventLinksSynced, models.SourceNote, n.ID)
	return s.db.NoteLinks(ctx, n.ID)
}

// NoteLinks returns the outgoing mentions and backlinks of a note.
func (s *Service) NoteLinks(ctx context.Context, noteID string) (*models.NoteLinks, error) {
	return s.db.NoteLinks(ctx, noteID)
}

// Search runs the hybrid record search.
func (s *Service) Search(ctx context.Context, q string) ([]models.SearchResult, error) {
	return s.db.SearchRecords(ctx, q)
}

// Graph returns all linked records and their edges.
func (s *Service) Graph(ctx context.Context) (*Graph, error) {
	nodes, links, err := s.db.Graph(ctx)
	if err != nil {
		return nil, err
	}
	return &Graph{Nodes: nodes, Links: links}, nil
}

// Export dumps the whole index.
func (s *Service) Export(ctx context.Context) (*models.Export, error) {
	return s.db.Export(ctx)
}

// Import loads an export, skipping records and edges that already exist.
func (s *Service) Import(ctx context.Context, exp *models.Export) (*models.ImportSummary, error) {
	sum, err := s.db.Import(ctx, exp)
	if err != nil {
		return nil, err
	}
	if sum.Records > 0 || sum.Links > 0 {
		for _, r := range exp.Records {
			s.emit(index.EventUpserted, r.Source, r.SourceID)
		}
	}
	return sum, nil
}

// Ready reports whether the store is reachable.
func (s *Service) Ready(ctx context.Context) error {
	return s.db.Ping(ctx)
}
