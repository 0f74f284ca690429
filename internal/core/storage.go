package core

import (
	"context"
	"fmt"

	"canvascore/internal/blob"
	"canvascore/internal/config"
	"canvascore/internal/infra/persistence/memory"
	"canvascore/internal/infra/persistence/postgres"
	"canvascore/internal/infra/persistence/sqlite"
)

// StorageDriver identifies a concrete persistent storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenPersistentStore selects a backend from the storage configuration.
// An empty driver defaults to sqlite.
func OpenPersistentStore(cfg config.Storage, engine *RulesEngine) (PersistentStore, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = string(StorageSQLite)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(engine), nil
	case StorageSQLite:
		return sqlite.NewStore(cfg.SQLitePath, engine)
	case StoragePostgres:
		return postgres.NewStore(cfg.PostgresDSN, engine)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

// OpenBlobStore maps the blob configuration onto a blob driver and opens it.
func OpenBlobStore(ctx context.Context, cfg config.Blob) (blob.Store, error) {
	return blob.Open(ctx, blob.Options{
		Driver:      blob.Driver(cfg.Driver),
		FSRoot:      cfg.FSRoot,
		S3Bucket:    cfg.S3Bucket,
		S3Region:    cfg.S3Region,
		S3Endpoint:  cfg.S3Endpoint,
		S3PathStyle: cfg.S3PathStyle,
	})
}
