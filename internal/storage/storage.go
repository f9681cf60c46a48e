// Package storage adapts logical vault paths to a physical backend. Keys are
// slash-separated paths relative to the storage root, e.g.
// "<ownerID>/private/reports/q1.pdf"; backends never see database ids.
package storage

import (
	"context"
	"io"
)

// Store is the physical storage surface the services depend on.
type Store interface {
	// Exists reports whether a file or directory exists at the path.
	Exists(ctx context.Context, path string) (bool, error)

	// MkdirAll ensures the directory at path exists, creating parents as
	// needed. A no-op on backends without real directories.
	MkdirAll(ctx context.Context, path string) error

	// Save writes the reader's content to the path, replacing nothing:
	// callers are responsible for duplicate checks. Returns bytes written.
	Save(ctx context.Context, path string, r io.Reader) (int64, error)

	// Move renames a file or directory tree from oldPath to newPath.
	Move(ctx context.Context, oldPath, newPath string) error

	// Remove deletes a single file. Removing a missing file is not an error.
	Remove(ctx context.Context, path string) error

	// RemoveAll deletes the directory tree at path. Removing a missing tree
	// is not an error.
	RemoveAll(ctx context.Context, path string) error

	// Open returns a reader over the file's content.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}
