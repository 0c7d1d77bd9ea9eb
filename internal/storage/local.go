// Package storage persists uploaded file blobs on the local filesystem.
// Metadata lives in the database; the blob path is derived from the file
// type and stored name, so the two stay coordinated through the service
// layer.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Local stores blobs under root, one subdirectory per file type.
type Local struct {
	root string
}

// NewLocal ensures root exists and returns a store rooted there.
func NewLocal(root string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("storage: creating upload root %q: %w", root, err)
	}
	return &Local{root: root}, nil
}

// Save writes the blob to <root>/<fileType>/<name>, creating the type
// directory on first use. The name must already be sanitized by the caller.
func (l *Local) Save(fileType, name string, r io.Reader) error {
	dir := filepath.Join(l.root, fileType)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("storage: creating %q: %w", dir, err)
	}

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("storage: creating blob %q: %w", name, err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(dst.Name())
		return fmt.Errorf("storage: writing blob %q: %w", name, err)
	}
	return nil
}

// Path returns the filesystem path for a stored blob.
func (l *Local) Path(fileType, name string) string {
	return filepath.Join(l.root, fileType, name)
}

// Remove deletes a stored blob. Removing a blob that is already gone is
// not an error, so record deletion can be retried.
func (l *Local) Remove(fileType, name string) error {
	err := os.Remove(l.Path(fileType, name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: removing blob %q: %w", name, err)
	}
	return nil
}
