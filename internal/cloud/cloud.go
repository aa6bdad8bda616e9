// Package cloud provides the document persistence adapter: an opaque
// key-value store holding one colony document per owner identity. Backends
// range from an in-memory map for tests to S3, Postgres, and a local SQLite
// copy.
package cloud

import (
	"context"
	"fmt"
	"os"

	"mousecolony/pkg/colony"
)

// Driver identifies a concrete document store implementation.
type Driver string

const (
	// DriverMemory is the in-memory implementation used in tests. It is the
	// seeding variant: the first load for an owner creates an empty default
	// document instead of reporting absence.
	DriverMemory Driver = "memory"
	// DriverS3 stores one JSON object per owner in an S3-compatible bucket.
	DriverS3 Driver = "s3"
	// DriverPostgres stores documents in a Postgres table.
	DriverPostgres Driver = "postgres"
	// DriverSQLite is the local persisted copy (default, dev). Cleared on
	// logout.
	DriverSQLite Driver = "sqlite"
)

// Store is the persistence adapter contract. Save upserts the single
// document for the identity; Load reports absence through the boolean, not
// an error; Delete removes the document, returning whether it existed.
type Store interface {
	Save(ctx context.Context, owner string, doc colony.Document) error
	Load(ctx context.Context, owner string) (colony.Document, bool, error)
	Delete(ctx context.Context, owner string) (bool, error)
	Driver() Driver
}

// Open selects a Store implementation using environment variables.
//
//	MOUSECOLONY_CLOUD_DRIVER: memory|s3|postgres|sqlite (default sqlite)
//	MOUSECOLONY_SQLITE_PATH: path to sqlite file when driver=sqlite
//	MOUSECOLONY_POSTGRES_DSN: postgres DSN when driver=postgres
//	(S3 specific variables documented in s3.go)
func Open(ctx context.Context) (Store, error) {
	driver := os.Getenv("MOUSECOLONY_CLOUD_DRIVER")
	if driver == "" {
		driver = string(DriverSQLite)
	}
	switch Driver(driver) {
	case DriverMemory:
		return NewMemory(), nil
	case DriverS3:
		return OpenS3FromEnv(ctx)
	case DriverPostgres:
		return NewPostgres(ctx, os.Getenv("MOUSECOLONY_POSTGRES_DSN"))
	case DriverSQLite:
		return NewSQLite(os.Getenv("MOUSECOLONY_SQLITE_PATH"))
	default:
		return nil, fmt.Errorf("unknown cloud driver %s", driver)
	}
}
