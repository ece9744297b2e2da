// Package state persists everything the player remembers between
// sessions: per-track progress, the bounded play history, album
// ratings, unlocked albums and user preferences. Backing store is a
// single SQLite database; writes are fire-and-forget read-modify-write
// with no cross-process coordination (last write wins).
package state

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // SQLite driver
)

const schemaVersion = 1

// Store is the SQLite-backed persistent state.
type Store struct {
	db *sql.DB
}

// Open opens or creates the state database at the given path.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening state db: %w", err)
	}

	// SQLite works best with a single writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating state db: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	var version int
	err := s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}
	if version >= schemaVersion {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmts := []string{
		`CREATE TABLE IF NOT EXISTS progress (
			album_id  TEXT    NOT NULL,
			track_id  INTEGER NOT NULL,
			position  REAL    NOT NULL DEFAULT 0,
			completed INTEGER NOT NULL DEFAULT 0,
			saved_at  INTEGER NOT NULL,
			PRIMARY KEY (album_id, track_id)
		)`,
		`CREATE TABLE IF NOT EXISTS history (
			album_id  TEXT    NOT NULL,
			track_id  INTEGER NOT NULL,
			played_at INTEGER NOT NULL,
			PRIMARY KEY (album_id, track_id)
		)`,
		`CREATE TABLE IF NOT EXISTS ratings (
			album_id TEXT PRIMARY KEY,
			rating   INTEGER NOT NULL,
			rated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS unlocked (
			album_id    TEXT PRIMARY KEY,
			unlocked_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS prefs (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}

	if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
		return fmt.Errorf("setting schema version: %w", err)
	}
	return tx.Commit()
}
