package query

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// SnapshotStore persists the last known good payload per query key in an
// embedded SQLite database, so best-effort reads survive restarts when the
// server is unreachable.
type SnapshotStore struct {
	db *sqlx.DB
}

const snapshotSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	key        TEXT PRIMARY KEY,
	payload    BLOB NOT NULL,
	fetched_at TIMESTAMP NOT NULL
);`

// OpenSnapshots opens (creating if needed) the snapshot database at path.
func OpenSnapshots(path string) (*SnapshotStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("create snapshot dir: %w", err)
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	// SQLite serializes writers; a second connection would just contend.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(snapshotSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init snapshot schema: %w", err)
	}

	return &SnapshotStore{db: db}, nil
}

// NewSnapshotStore wraps an existing connection. Used by tests.
func NewSnapshotStore(db *sqlx.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// Get returns the persisted payload and fetch time for key.
func (s *SnapshotStore) Get(ctx context.Context, key string) ([]byte, time.Time, error) {
	var row struct {
		Payload   []byte    `db:"payload"`
		FetchedAt time.Time `db:"fetched_at"`
	}
	err := s.db.GetContext(ctx, &row, `SELECT payload, fetched_at FROM snapshots WHERE key = ?`, key)
	if err == sql.ErrNoRows {
		return nil, time.Time{}, fmt.Errorf("no snapshot for %q", key)
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("load snapshot: %w", err)
	}
	return row.Payload, row.FetchedAt, nil
}

// Put upserts the payload for key.
func (s *SnapshotStore) Put(ctx context.Context, key string, payload []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO snapshots (key, payload, fetched_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at`,
		key, payload, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store snapshot: %w", err)
	}
	return nil
}

// Prune removes snapshots older than maxAge and returns how many were dropped.
func (s *SnapshotStore) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE fetched_at < ?`,
		time.Now().UTC().Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return res.RowsAffected()
}

// Close closes the underlying database.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}
