package domain

import "context"

// DocumentStore loads and atomically replaces the durable document.
//
// Load always returns a structurally complete document: missing state is
// initialized and persisted, partial state is normalized. Save either makes
// the whole new document durable or leaves the previous one intact.
type DocumentStore interface {
	Load(ctx context.Context) (Document, error)
	Save(ctx context.Context, doc Document) error
}
