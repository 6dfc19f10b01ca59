package core

import (
	"context"
	"fmt"

	"sigco/internal/config"
	"sigco/internal/infra/persistence"
	"sigco/internal/infra/persistence/file"
	"sigco/internal/infra/persistence/memory"
	"sigco/internal/infra/persistence/postgres"
	"sigco/internal/infra/persistence/redis"
	"sigco/internal/infra/persistence/s3"
	"sigco/internal/infra/persistence/sqlite"
)

// StorageDriver identifies a concrete document backend.
type StorageDriver string

const (
	StorageFile     StorageDriver = "file"     // JSON file replaced by rename
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
	StorageS3       StorageDriver = "s3"       // S3-compatible bucket
	StorageRedis    StorageDriver = "redis"    // single Redis key
)

// OpenDocumentStore selects a backend from cfg. The caller closes the store.
func OpenDocumentStore(ctx context.Context, cfg config.Config) (*persistence.DocumentStore, error) {
	switch StorageDriver(cfg.StorageDriver) {
	case StorageFile, "":
		return file.NewStore(cfg.DBPath)
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		return sqlite.NewStore(cfg.SQLitePath)
	case StoragePostgres:
		return postgres.NewStore(ctx, cfg.PostgresDSN)
	case StorageS3:
		return s3.NewStore(ctx, s3.Config{
			Region:    cfg.S3.Region,
			Bucket:    cfg.S3.Bucket,
			Endpoint:  cfg.S3.Endpoint,
			Key:       cfg.S3.Key,
			PathStyle: cfg.S3.PathStyle,
		})
	case StorageRedis:
		return redis.NewStore(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Key:      cfg.Redis.Key,
		})
	default:
		return nil, fmt.Errorf("unknown storage driver %s", cfg.StorageDriver)
	}
}
