// Package store provides the durable persistence boundary: an opaque
// key/blob contract plus the queue snapshot codec layered on top of it.
package store

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "crest"
	dbFileName = "crest.db"
)

// Blob defines the key/blob store contract for dependency injection and
// testing. A missing key reads as (nil, nil), not an error.
type Blob interface {
	ReadBlob(key string) ([]byte, error)
	WriteBlob(key string, data []byte) error
	DeleteBlob(key string) error
	Close() error
}

// SQLite is the Blob implementation backed by a SQLite database.
type SQLite struct {
	mu sync.Mutex
	db *sql.DB
}

// Open opens the store at the default XDG data location.
func Open() (*SQLite, error) {
	path, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	return OpenPath(path)
}

// OpenPath opens the store at an explicit path. ":memory:" works for tests.
func OpenPath(path string) (*SQLite, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS blobs (
			key TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			updated_at INTEGER NOT NULL
		)
	`)
	return err
}

// ReadBlob returns the blob stored under key, or nil if absent.
func (s *SQLite) ReadBlob(key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data []byte
	row := s.db.QueryRow(`SELECT data FROM blobs WHERE key = ?`, key)
	err := row.Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

// WriteBlob stores data under key, replacing any previous value.
func (s *SQLite) WriteBlob(key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO blobs (key, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`, key, data, time.Now().Unix())
	return err
}

// DeleteBlob removes the blob stored under key. Deleting a missing key is
// not an error.
func (s *SQLite) DeleteBlob(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM blobs WHERE key = ?`, key)
	return err
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// Verify SQLite implements Blob at compile time.
var _ Blob = (*SQLite)(nil)
