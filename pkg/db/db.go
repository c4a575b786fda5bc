// Package db persists the assistant's state in SQLite: crawled and manual
// documents, calendar events, leads, conversation logs and crawl runs.
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

const DefaultDBName = "schoolbot.db"

// ErrNotFound is returned when a row addressed by id does not exist.
var ErrNotFound = errors.New("not found")

type DB struct {
	*sql.DB
	path string
}

// openDB opens a SQLite database at the given path
func openDB(dbPath string) (*sql.DB, error) {
	sqlDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite has a single writer, and an in-memory database exists only on
	// the connection that created it.
	sqlDB.SetMaxOpenConns(1)

	// Enable foreign keys
	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = sqlDB.Close() // Close error less important than PRAGMA error
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return sqlDB, nil
}

// Open opens or creates the SQLite database at path. An empty path uses
// DefaultDBName in the working directory.
func Open(path string) (*DB, error) {
	if path == "" {
		path = DefaultDBName
	}
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	sqlDB, err := openDB(path)
	if err != nil {
		return nil, err
	}

	db := &DB{
		DB:   sqlDB,
		path: path,
	}

	if err := db.InitSchema(); err != nil {
		_ = db.Close() // Close error less important than schema error
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// InitSchema creates any missing tables. It is safe to call repeatedly.
func (db *DB) InitSchema() error {
	_, err := db.Exec(schema)
	return err
}

// Timestamps are stored as RFC 3339 text so they sort and compare as strings.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
