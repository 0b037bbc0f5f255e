// Package storage reads the markdown vault mirrored into the record index.
package storage

import "time"

// FileMeta describes one markdown file in the vault.
type FileMeta struct {
	// Path is relative to the vault root and always uses forward slashes.
	Path     string
	Checksum string
	ModTime  time.Time
}

// Provider is the read side of a vault. The index never writes files back.
type Provider interface {
	// List returns metadata for every .md file under dir (relative to vault root).
	List(dir string) ([]FileMeta, error)
	// Read returns the raw bytes of the file at path (relative to vault root).
	Read(path string) ([]byte, error)
	// Root returns the absolute vault directory.
	Root() string
}
