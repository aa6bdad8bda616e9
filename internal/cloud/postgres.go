package cloud

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"mousecolony/pkg/colony"
)

const defaultPostgresDSN = "postgres://localhost/mousecolony?sslmode=disable"

// PostgresStore persists one document row per owner in Postgres.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres opens a Postgres-backed store using the provided DSN (falls
// back to a local default) and ensures the documents table exists.
func NewPostgres(ctx context.Context, dsn string) (*PostgresStore, error) {
	if dsn == "" {
		dsn = defaultPostgresDSN
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	ddl := `CREATE TABLE IF NOT EXISTS documents (
		owner TEXT PRIMARY KEY,
		payload JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("ensure documents table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Driver returns the driver identifier.
func (s *PostgresStore) Driver() Driver { return DriverPostgres }

// Save upserts the owner's document.
func (s *PostgresStore) Save(ctx context.Context, owner string, doc colony.Document) error {
	payload, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents(owner,payload,updated_at) VALUES($1,$2,now())
		 ON CONFLICT(owner) DO UPDATE SET payload=EXCLUDED.payload, updated_at=now()`,
		owner, payload)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// Load fetches the owner's document; a missing row is absence, not an error.
func (s *PostgresStore) Load(ctx context.Context, owner string) (colony.Document, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM documents WHERE owner=$1`, owner).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return colony.Document{}, false, nil
	}
	if err != nil {
		return colony.Document{}, false, fmt.Errorf("select document: %w", err)
	}
	doc, err := colony.DecodeDocument(payload)
	if err != nil {
		return colony.Document{}, false, fmt.Errorf("decode document for %s: %w", owner, err)
	}
	return doc, true, nil
}

// Delete removes the owner's document row.
func (s *PostgresStore) Delete(ctx context.Context, owner string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE owner=$1`, owner)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *PostgresStore) DB() *sql.DB { return s.db }
