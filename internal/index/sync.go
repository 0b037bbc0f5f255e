package index

import (
	"context"
	"log/slog"
	"path"
	"strings"

	"github.com/achntj/lab/internal/checksum"
	"github.com/achntj/lab/internal/models"
	"github.com/achntj/lab/internal/parser"
	"github.com/achntj/lab/internal/storage"
)

// Event kinds reported through EventCallback.
const (
	EventUpserted    = "record.upserted"
	EventDeleted     = "record.deleted"
	EventLinksSynced = "links.synced"
)

// EventCallback is called after an index change made on behalf of the vault.
type EventCallback func(kind, source, sourceID string)

func (cb EventCallback) emit(kind, sourceID string) {
	if cb != nil {
		cb(kind, models.SourceNote, sourceID)
	}
}

// Sync brings the note records mirrored from the vault up to date:
//   - new/changed files are parsed and upserted
//   - their mentions are synced once every upsert has landed
//   - files removed from disk have their records deleted
func Sync(ctx context.Context, db *DB, store storage.Provider, logger *slog.Logger, cb EventCallback) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}
	checksums, err := db.VaultChecksums(ctx)
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	bodies := make(map[string]string)
	var order []string
	for _, m := range metas {
		disk[m.Path] = struct{}{}
		if checksums[m.Path] == m.Checksum {
			continue
		}
		body, err := indexFile(ctx, db, store, m.Path)
		if err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: indexed", slog.String("path", m.Path))
		cb.emit(EventUpserted, m.Path)
		bodies[m.Path] = body
		order = append(order, m.Path)
	}

	for p := range checksums {
		if _, ok := disk[p]; ok {
			continue
		}
		if err := db.DeleteVaultNote(ctx, p); err != nil {
			logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		logger.Debug("sync: removed stale", slog.String("path", p))
		cb.emit(EventDeleted, p)
	}

	for _, p := range order {
		if err := db.SyncNoteLinks(ctx, p, bodies[p]); err != nil {
			logger.Warn("sync: link sync failed", slog.String("path", p), slog.String("error", err.Error()))
			continue
		}
		cb.emit(EventLinksSynced, p)
	}
	return nil
}

// indexFile reads, parses and upserts one vault file, returning its body
// for the mention pass.
func indexFile(ctx context.Context, db *DB, store storage.Provider, p string) (string, error) {
	data, err := store.Read(p)
	if err != nil {
		return "", err
	}
	res, err := parser.Parse(data)
	if err != nil {
		return "", err
	}
	if err := db.IndexVaultNote(ctx, p, checksum.Sum(data), vaultRecord(p, res)); err != nil {
		return "", err
	}
	return res.Body, nil
}

// indexAndLink indexes a single file and immediately syncs its mentions.
func indexAndLink(ctx context.Context, db *DB, store storage.Provider, p string, cb EventCallback) error {
	body, err := indexFile(ctx, db, store, p)
	if err != nil {
		return err
	}
	cb.emit(EventUpserted, p)
	if err := db.SyncNoteLinks(ctx, p, body); err != nil {
		return err
	}
	cb.emit(EventLinksSynced, p)
	return nil
}

// vaultRecord projects a parsed vault file into a note record keyed by path.
func vaultRecord(p string, res *parser.Result) models.RecordInput {
	title := res.Title
	if title == "" {
		title = strings.TrimSuffix(path.Base(p), path.Ext(p))
	}
	in := models.RecordInput{
		Kind:     models.SourceNote,
		Source:   models.SourceNote,
		SourceID: p,
		Title:    title,
		Content:  models.StringPtr(res.Body),
		Tags:     models.StringPtr(strings.Join(res.Tags, " ")),
	}
	if len(res.Frontmatter) > 0 {
		in.Metadata = res.Frontmatter
	}
	return in
}
