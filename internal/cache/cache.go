// Package cache keeps local SQLite snapshots of fetched records so lookups
// can run offline and summaries survive between sessions.
package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/aidanlsb/magpie/internal/record"
)

// schemaVersion is bumped on incompatible schema changes; an old snapshot
// database is dropped and recreated, never migrated. Snapshots are a cache,
// losing them costs one refetch.
const schemaVersion = 1

// ErrNotCached indicates the requested record has no local snapshot.
var ErrNotCached = errors.New("record not in local cache")

// Store is the snapshot database handle.
type Store struct {
	db *sql.DB
}

// Open opens or creates the snapshot database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}

	var current string
	err := s.db.QueryRow(`SELECT value FROM meta WHERE key = 'schema_version'`).Scan(&current)
	switch {
	case err == sql.ErrNoRows:
		// Fresh database.
	case err != nil:
		return fmt.Errorf("failed to read cache version: %w", err)
	case current != fmt.Sprint(schemaVersion):
		if _, err := s.db.Exec(`DROP TABLE IF EXISTS records`); err != nil {
			return fmt.Errorf("failed to reset cache: %w", err)
		}
	}

	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS records (
		kind       TEXT NOT NULL,
		id         INTEGER NOT NULL,
		name       TEXT NOT NULL,
		fields     TEXT NOT NULL,
		fetched_at TEXT NOT NULL,
		PRIMARY KEY (kind, id)
	)`); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	if _, err := s.db.Exec(`CREATE INDEX IF NOT EXISTS idx_records_name ON records(kind, name)`); err != nil {
		return fmt.Errorf("failed to initialize cache: %w", err)
	}
	if _, err := s.db.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES ('schema_version', ?)`,
		fmt.Sprint(schemaVersion)); err != nil {
		return fmt.Errorf("failed to write cache version: %w", err)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// Put stores or replaces the snapshot for a record.
func (s *Store) Put(rec *record.Record) error {
	fields, err := json.Marshal(rec.Fields)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", rec.DisplayName(), err)
	}
	_, err = s.db.Exec(`INSERT OR REPLACE INTO records (kind, id, name, fields, fetched_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.Kind, rec.ID, rec.Name, string(fields), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to cache record %s: %w", rec.DisplayName(), err)
	}
	return nil
}

func scanRecord(row interface{ Scan(...any) error }) (*record.Record, error) {
	var rec record.Record
	var fields string
	if err := row.Scan(&rec.Kind, &rec.ID, &rec.Name, &fields); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(fields), &rec.Fields); err != nil {
		return nil, fmt.Errorf("corrupt cache entry for %s: %w", rec.DisplayName(), err)
	}
	if rec.Fields == nil {
		rec.Fields = map[string]any{}
	}
	return &rec, nil
}

// Get returns the snapshot for (kind, id), or ErrNotCached.
func (s *Store) Get(kind string, id int) (*record.Record, error) {
	row := s.db.QueryRow(`SELECT kind, id, name, fields FROM records WHERE kind = ? AND id = ?`, kind, id)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotCached
	}
	return rec, err
}

// GetByName returns the snapshot with an exactly matching name, or ErrNotCached.
func (s *Store) GetByName(kind, name string) (*record.Record, error) {
	row := s.db.QueryRow(`SELECT kind, id, name, fields FROM records WHERE kind = ? AND name = ?`, kind, name)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotCached
	}
	return rec, err
}

// List returns every snapshot of a kind, ordered by name then id.
func (s *Store) List(kind string) ([]*record.Record, error) {
	rows, err := s.db.Query(`SELECT kind, id, name, fields FROM records
		WHERE kind = ? ORDER BY name COLLATE NOCASE, id`, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list cache: %w", err)
	}
	defer rows.Close()

	var recs []*record.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// Remove drops the snapshot for (kind, id). Removing a missing snapshot is
// not an error.
func (s *Store) Remove(kind string, id int) error {
	if _, err := s.db.Exec(`DELETE FROM records WHERE kind = ? AND id = ?`, kind, id); err != nil {
		return fmt.Errorf("failed to remove cache entry: %w", err)
	}
	return nil
}
