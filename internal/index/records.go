package index

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/achntj/lab/internal/apperr"
	"github.com/achntj/lab/internal/dates"
	"github.com/achntj/lab/internal/models"
)

// SearchDatesKey is the metadata key holding the extracted date tokens.
const SearchDatesKey = "__searchDates"

const recordColumns = `id, kind, source, source_id, title, content, url, category, tags, metadata, created_at, updated_at`

// UpsertRecord inserts or overwrites the record keyed by (source, sourceId).
// The row id of an existing record is preserved.
func (db *DB) UpsertRecord(ctx context.Context, in models.RecordInput) error {
	return db.upsertRecord(ctx, db.conn, in)
}

func (db *DB) upsertRecord(ctx context.Context, ex execer, in models.RecordInput) error {
	if err := validateInput(in); err != nil {
		return err
	}
	metadata, err := encodeMetadata(in.Metadata)
	if err != nil {
		return fmt.Errorf("%w: metadata: %v", apperr.ErrInvalidInput, err)
	}

	now := db.now().UTC()
	_, err = ex.ExecContext(ctx, `
		INSERT INTO records (kind, source, source_id, title, content, url, category, tags, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source, source_id) DO UPDATE SET
			kind       = excluded.kind,
			title      = excluded.title,
			content    = excluded.content,
			url        = excluded.url,
			category   = excluded.category,
			tags       = excluded.tags,
			metadata   = excluded.metadata,
			updated_at = excluded.updated_at
	`, in.Kind, in.Source, in.SourceID, in.Title, in.Content, in.URL, in.Category, in.Tags, metadata, now, now)
	if err != nil {
		return fmt.Errorf("index: upsert record: %w", err)
	}
	return nil
}

// DeleteRecord removes every record keyed by (source, sourceId). Deleting a
// missing record is not an error. Edges touching the record cascade. For a
// note mirrored from the vault the stored checksum goes too, so the next
// Sync re-indexes the file if it still exists.
func (db *DB) DeleteRecord(ctx context.Context, source, sourceID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if err := deleteRecord(ctx, tx, source, sourceID); err != nil {
		return err
	}
	return tx.Commit()
}

func deleteRecord(ctx context.Context, ex execer, source, sourceID string) error {
	if _, err := ex.ExecContext(ctx, `DELETE FROM records WHERE source = ? AND source_id = ?`, source, sourceID); err != nil {
		return fmt.Errorf("index: delete record: %w", err)
	}
	if source != models.SourceNote {
		return nil
	}
	if _, err := ex.ExecContext(ctx, `DELETE FROM vault_files WHERE path = ?`, sourceID); err != nil {
		return fmt.Errorf("index: delete vault file: %w", err)
	}
	return nil
}

// GetRecord returns the record keyed by (source, sourceId).
func (db *DB) GetRecord(ctx context.Context, source, sourceID string) (*models.Record, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE source = ? AND source_id = ?`, source, sourceID)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("index: get record: %w", err)
	}
	return r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(s scanner) (*models.Record, error) {
	var r models.Record
	err := s.Scan(&r.ID, &r.Kind, &r.Source, &r.SourceID, &r.Title,
		&r.Content, &r.URL, &r.Category, &r.Tags, &r.Metadata, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func validateInput(in models.RecordInput) error {
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Kind, validation.Required),
		validation.Field(&in.Source, validation.Required),
		validation.Field(&in.SourceID, validation.Required),
		validation.Field(&in.Title, validation.Required),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	return nil
}

// encodeMetadata serializes metadata for storage. Strings are stored as given.
// Anything else is JSON-encoded; when it is an object containing date-like
// values the extracted tokens are added under SearchDatesKey.
func encodeMetadata(v any) (*string, error) {
	if v == nil {
		return nil, nil
	}
	if s, ok := v.(string); ok {
		return models.StringPtr(s), nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var tree any
	if err := dec.Decode(&tree); err != nil {
		return nil, err
	}

	if obj, ok := tree.(map[string]any); ok {
		if tokens := dates.Extract(obj); len(tokens) > 0 {
			obj[SearchDatesKey] = strings.Join(tokens, " ")
			if raw, err = json.Marshal(obj); err != nil {
				return nil, err
			}
		}
	}

	out := string(raw)
	return &out, nil
}
