package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

// SQLiteCredentials persists credentials in the same embedded database
// the local document copy uses.
type SQLiteCredentials struct {
	db *sql.DB
}

// NewSQLiteCredentials creates the credentials table on an open database.
// Sharing the document store's handle keeps everything in one file.
func NewSQLiteCredentials(db *sql.DB) (*SQLiteCredentials, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS credentials (
		owner TEXT PRIMARY KEY,
		hash BLOB NOT NULL
	)`); err != nil {
		return nil, fmt.Errorf("create credentials table: %w", err)
	}
	return &SQLiteCredentials{db: db}, nil
}

func (s *SQLiteCredentials) Put(ctx context.Context, owner string, hash []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO credentials(owner,hash) VALUES(?,?)
		 ON CONFLICT(owner) DO UPDATE SET hash=excluded.hash`,
		owner, hash)
	if err != nil {
		return fmt.Errorf("upsert credentials: %w", err)
	}
	return nil
}

func (s *SQLiteCredentials) Get(ctx context.Context, owner string) ([]byte, bool, error) {
	var hash []byte
	err := s.db.QueryRowContext(ctx, `SELECT hash FROM credentials WHERE owner=?`, owner).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select credentials: %w", err)
	}
	return hash, true, nil
}
