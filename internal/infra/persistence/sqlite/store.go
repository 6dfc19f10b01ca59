// Package sqlite stores the document as a single row in an embedded SQLite
// database using the pure Go modernc driver.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"sigco/internal/infra/persistence"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// DefaultPath is used when no database path is configured.
const DefaultPath = "sigco.db"

const documentName = "main"

// Backend keeps the encoded document in the documents table.
type Backend struct {
	db   *sql.DB
	path string
}

// NewBackend opens (or creates) the database at path and ensures the schema.
func NewBackend(path string) (*Backend, error) {
	if path == "" {
		path = DefaultPath
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection keeps :memory: databases shared and writes serialized
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		name TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &Backend{db: db, path: path}, nil
}

// NewStore returns a document store backed by SQLite at path.
func NewStore(path string) (*persistence.DocumentStore, error) {
	b, err := NewBackend(path)
	if err != nil {
		return nil, err
	}
	return persistence.NewDocumentStore(b), nil
}

// Read returns the stored payload.
func (b *Backend) Read(ctx context.Context) ([]byte, error) {
	var payload []byte
	err := b.db.QueryRowContext(ctx, `SELECT payload FROM documents WHERE name = ?`, documentName).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, persistence.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("select document: %w", err)
	}
	return payload, nil
}

// Replace upserts the payload inside one SQL transaction.
func (b *Backend) Replace(ctx context.Context, data []byte) (retErr error) {
	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if retErr != nil {
			_ = tx.Rollback()
		}
	}()
	if _, err := tx.ExecContext(ctx, `INSERT INTO documents(name,payload) VALUES(?,?) ON CONFLICT(name) DO UPDATE SET payload=excluded.payload`, documentName, data); err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (b *Backend) DB() *sql.DB { return b.db }

// Path returns the configured database path.
func (b *Backend) Path() string { return b.path }

// Close closes the database.
func (b *Backend) Close() error { return b.db.Close() }
