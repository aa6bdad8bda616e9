package cloud

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // pure go sqlite driver

	"mousecolony/pkg/colony"
)

// SQLiteStore is the local persisted copy of the colony document: the same
// table shape as the Postgres backend in an embedded file. Logout clears it.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLite opens (or creates) the local document database.
func NewSQLite(path string) (*SQLiteStore, error) {
	if path == "" {
		path = "mousecolony.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS documents (
		owner TEXT PRIMARY KEY,
		payload BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create documents table: %w", err)
	}
	return &SQLiteStore{db: db, path: path}, nil
}

// Driver returns the driver identifier.
func (s *SQLiteStore) Driver() Driver { return DriverSQLite }

// Save upserts the owner's document.
func (s *SQLiteStore) Save(ctx context.Context, owner string, doc colony.Document) error {
	payload, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents(owner,payload) VALUES(?,?)
		 ON CONFLICT(owner) DO UPDATE SET payload=excluded.payload`,
		owner, payload)
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	return nil
}

// Load fetches the owner's document; a missing row is absence, not an error.
func (s *SQLiteStore) Load(ctx context.Context, owner string) (colony.Document, bool, error) {
	var payload []byte
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM documents WHERE owner=?`, owner).Scan(&payload)
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

// Delete removes the owner's local copy.
func (s *SQLiteStore) Delete(ctx context.Context, owner string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE owner=?`, owner)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Path returns the configured database path.
func (s *SQLiteStore) Path() string { return s.path }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *SQLiteStore) DB() *sql.DB { return s.db }
