// Package persistence turns a raw byte backend into a domain.DocumentStore.
// Backends only move opaque bytes; decoding, shape normalization and
// first-access initialization live here so every driver behaves the same.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"sigco/pkg/domain"
)

// ErrNoDocument is returned by a Backend when no document has been written yet.
var ErrNoDocument = errors.New("persistence: no document stored")

// Backend reads and atomically replaces the encoded document.
type Backend interface {
	Read(ctx context.Context) ([]byte, error)
	// Replace must either make data durable as a whole or leave the previous
	// content untouched.
	Replace(ctx context.Context, data []byte) error
}

// DocumentStore adapts a Backend to domain.DocumentStore.
type DocumentStore struct {
	backend Backend
	mu      sync.Mutex
}

var _ domain.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore wraps backend.
func NewDocumentStore(backend Backend) *DocumentStore {
	return &DocumentStore{backend: backend}
}

// Backend exposes the wrapped backend for tests and diagnostics.
func (s *DocumentStore) Backend() Backend { return s.backend }

// Load returns the normalized document, initializing storage on first access.
func (s *DocumentStore) Load(ctx context.Context) (domain.Document, error) {
	data, err := s.backend.Read(ctx)
	if errors.Is(err, ErrNoDocument) {
		return s.initialize(ctx)
	}
	if err != nil {
		return domain.Document{}, fmt.Errorf("read document: %w", err)
	}
	return domain.DecodeDocument(data)
}

// initialize re-reads under the write lock so a first-access reader racing a
// committed save never overwrites it with an empty document.
func (s *DocumentStore) initialize(ctx context.Context) (domain.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := s.backend.Read(ctx)
	switch {
	case err == nil:
		return domain.DecodeDocument(data)
	case !errors.Is(err, ErrNoDocument):
		return domain.Document{}, fmt.Errorf("read document: %w", err)
	}
	doc := domain.NewDocument()
	if err := s.write(ctx, doc); err != nil {
		return domain.Document{}, err
	}
	return doc, nil
}

// Save normalizes, encodes and replaces the stored document.
func (s *DocumentStore) Save(ctx context.Context, doc domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.write(ctx, doc)
}

func (s *DocumentStore) write(ctx context.Context, doc domain.Document) error {
	data, err := domain.EncodeDocument(doc)
	if err != nil {
		return err
	}
	if err := s.backend.Replace(ctx, data); err != nil {
		return fmt.Errorf("replace document: %w", err)
	}
	return nil
}

// Close releases the backend when it holds a connection.
func (s *DocumentStore) Close() error {
	if c, ok := s.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
