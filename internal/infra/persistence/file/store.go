// Package file stores the document as a JSON file on the local filesystem.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"sigco/internal/infra/persistence"
)

// DefaultPath matches the historical db.json location.
const DefaultPath = "db.json"

// Backend writes the document through a sibling temp file that is fsynced and
// renamed over the primary, so readers only ever see a complete document.
type Backend struct {
	path string
	// beforeRename runs after the temp file is durable and before it replaces
	// the primary. Tests use it to simulate a crash at that point.
	beforeRename func(tmpPath string) error
}

// NewBackend returns a file backend for path, creating its directory.
func NewBackend(path string) (*Backend, error) {
	if path == "" {
		path = DefaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	return &Backend{path: path}, nil
}

// NewStore returns a document store backed by the file at path.
func NewStore(path string) (*persistence.DocumentStore, error) {
	b, err := NewBackend(path)
	if err != nil {
		return nil, err
	}
	return persistence.NewDocumentStore(b), nil
}

// Path returns the primary file path.
func (b *Backend) Path() string { return b.path }

// Read returns the primary file content. Leftover temp files are never read.
func (b *Backend) Read(_ context.Context) ([]byte, error) {
	// #nosec G304 -- path is operator configuration
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, persistence.ErrNoDocument
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Replace writes data to a temp file in the same directory and renames it over
// the primary. Removing the temp file afterwards is best effort.
func (b *Backend) Replace(_ context.Context, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(b.path), "."+filepath.Base(b.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() { _ = os.Remove(tmpPath) }()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if b.beforeRename != nil {
		if err := b.beforeRename(tmpPath); err != nil {
			return err
		}
	}
	if err := os.Rename(tmpPath, b.path); err != nil {
		return fmt.Errorf("rename temp: %w", err)
	}
	return nil
}
