// Package memory keeps the encoded document in process memory. It backs tests
// and ephemeral runs.
package memory

import (
	"context"
	"sync"

	"sigco/internal/infra/persistence"
)

// Backend holds the last replaced bytes.
type Backend struct {
	mu     sync.RWMutex
	data   []byte
	writes int
	// FailReplace, when set, is returned by Replace instead of storing data.
	FailReplace error
}

// NewBackend returns an empty in-memory backend.
func NewBackend() *Backend { return &Backend{} }

// NewStore returns a document store over a fresh in-memory backend.
func NewStore() *persistence.DocumentStore {
	return persistence.NewDocumentStore(NewBackend())
}

// Read returns a copy of the stored bytes.
func (b *Backend) Read(_ context.Context) ([]byte, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.data == nil {
		return nil, persistence.ErrNoDocument
	}
	return append([]byte(nil), b.data...), nil
}

// Replace swaps the stored bytes.
func (b *Backend) Replace(_ context.Context, data []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.FailReplace != nil {
		return b.FailReplace
	}
	b.data = append([]byte(nil), data...)
	b.writes++
	return nil
}

// Writes reports how many replacements succeeded.
func (b *Backend) Writes() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.writes
}

// SetFailReplace installs or clears the replace failure under the lock.
func (b *Backend) SetFailReplace(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.FailReplace = err
}
