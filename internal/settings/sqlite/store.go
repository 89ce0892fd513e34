// Package sqlite is a settings store kept in a SQLite database.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS settings (
	key   TEXT NOT NULL,
	name  TEXT NOT NULL,
	value TEXT NOT NULL,
	PRIMARY KEY (key, name)
)`

// Store is a SQLite settings store.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path. ":memory:" opens a private
// in-memory database.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlite settings path is empty")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("create settings directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One connection keeps ":memory:" databases shared and writes serial.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("init settings schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Load returns the stored value or def.
func (s *Store) Load(key, name, def string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ? AND name = ?`, key, name).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return "", fmt.Errorf("load setting %s %s: %w", key, name, err)
	}
	return value, nil
}

// Save stores a value.
func (s *Store) Save(key, name, value string) error {
	_, err := s.db.Exec(`INSERT INTO settings (key, name, value) VALUES (?, ?, ?)
ON CONFLICT(key, name) DO UPDATE SET value = excluded.value`, key, name, value)
	if err != nil {
		return fmt.Errorf("save setting %s %s: %w", key, name, err)
	}
	return nil
}

// Keys returns the distinct keys that have settings.
func (s *Store) Keys() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT key FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list setting keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
