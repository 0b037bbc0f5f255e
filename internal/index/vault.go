package index

import (
	"context"
	"fmt"

	"github.com/achntj/lab/internal/models"
)

// VaultChecksums returns the stored checksum of every mirrored vault file.
func (db *DB) VaultChecksums(ctx context.Context) (map[string]string, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT path, checksum FROM vault_files`)
	if err != nil {
		return nil, fmt.Errorf("index: vault checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var p, cs string
		if err := rows.Scan(&p, &cs); err != nil {
			return nil, err
		}
		out[p] = cs
	}
	return out, rows.Err()
}

// IndexVaultNote upserts the note record projected from a vault file and
// records its checksum. Mentions are synced separately so that notes created
// in the same pass can resolve each other.
func (db *DB) IndexVaultNote(ctx context.Context, path, checksum string, in models.RecordInput) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if err := db.upsertRecord(ctx, tx, in); err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO vault_files (path, checksum) VALUES (?, ?)
		ON CONFLICT(path) DO UPDATE SET checksum = excluded.checksum
	`, path, checksum)
	if err != nil {
		return fmt.Errorf("index: upsert vault file: %w", err)
	}
	return tx.Commit()
}

// DeleteVaultNote removes a vault file's record, its edges and its checksum.
func (db *DB) DeleteVaultNote(ctx context.Context, path string) error {
	return db.DeleteRecord(ctx, models.SourceNote, path)
}

// ResetVaultChecksums forgets every stored checksum so the next Sync
// re-parses all vault files.
func (db *DB) ResetVaultChecksums(ctx context.Context) error {
	if _, err := db.conn.ExecContext(ctx, `UPDATE vault_files SET checksum = ''`); err != nil {
		return fmt.Errorf("index: reset vault checksums: %w", err)
	}
	return nil
}
