// Package redis stores the document under a single Redis key using go-redis.
package redis

import (
	"context"
	"errors"
	"fmt"

	goredis "github.com/go-redis/redis/v8"

	"sigco/internal/infra/persistence"
)

// DefaultKey is the key used when none is configured.
const DefaultKey = "sigco:db"

// Config holds connection parameters.
type Config struct {
	Addr     string
	Password string
	DB       int
	Key      string
}

// Backend writes the document to <key>.tmp and renames it over <key> inside
// one MULTI/EXEC block. RENAME is atomic, so readers never see a partial value.
type Backend struct {
	client *goredis.Client
	key    string
	owned  bool
}

// NewBackend connects to Redis and verifies the connection with PING.
func NewBackend(ctx context.Context, cfg Config) (*Backend, error) {
	addr := cfg.Addr
	if addr == "" {
		addr = "localhost:6379"
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	b := NewBackendFromClient(client, cfg.Key)
	b.owned = true
	return b, nil
}

// NewBackendFromClient wraps an existing client. Close leaves it open.
func NewBackendFromClient(client *goredis.Client, key string) *Backend {
	if key == "" {
		key = DefaultKey
	}
	return &Backend{client: client, key: key}
}

// NewStore returns a document store backed by Redis.
func NewStore(ctx context.Context, cfg Config) (*persistence.DocumentStore, error) {
	b, err := NewBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return persistence.NewDocumentStore(b), nil
}

// Key returns the primary key.
func (b *Backend) Key() string { return b.key }

// Read returns the stored value.
func (b *Backend) Read(ctx context.Context) ([]byte, error) {
	data, err := b.client.Get(ctx, b.key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, persistence.ErrNoDocument
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", b.key, err)
	}
	return data, nil
}

// Replace sets the temp key and renames it over the primary.
func (b *Backend) Replace(ctx context.Context, data []byte) error {
	tmp := b.key + ".tmp"
	_, err := b.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, tmp, data, 0)
		pipe.Rename(ctx, tmp, b.key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("replace %s: %w", b.key, err)
	}
	return nil
}

// Close closes the client when the backend created it.
func (b *Backend) Close() error {
	if !b.owned {
		return nil
	}
	return b.client.Close()
}
