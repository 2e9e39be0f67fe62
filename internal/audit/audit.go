// Package audit provides an append-only log of record mutations.
package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one logged mutation. Entries from the same pipeline run share a
// Batch id.
type Entry struct {
	Timestamp time.Time `json:"ts"`
	Batch     string    `json:"batch"`
	Operation string    `json:"op"` // create, update, delete
	Kind      string    `json:"kind"`
	RecordID  int       `json:"record_id,omitempty"`
	Name      string    `json:"name,omitempty"`
	Changes   []string  `json:"changes,omitempty"` // path=value assignments as given
	Error     string    `json:"error,omitempty"`   // set when the mutation failed
}

// Logger appends entries to a JSONL file. A disabled logger is a no-op.
type Logger struct {
	path    string
	batch   string
	enabled bool
	mu      sync.Mutex
}

// New creates a logger writing to path. Every entry it writes carries the
// same freshly generated batch id.
func New(path string, enabled bool) *Logger {
	if !enabled {
		return &Logger{}
	}
	return &Logger{path: path, batch: uuid.NewString(), enabled: true}
}

// Enabled reports whether entries will be written.
func (l *Logger) Enabled() bool { return l.enabled }

// Batch returns this run's batch id, or "" when disabled.
func (l *Logger) Batch() string { return l.batch }

// Log appends one entry.
func (l *Logger) Log(entry Entry) error {
	if !l.enabled {
		return nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	entry.Batch = l.batch

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal audit entry: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write audit entry: %w", err)
	}
	return nil
}

// Read returns every entry in the log at path. Malformed lines are skipped.
func Read(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, scanner.Err()
}

// ReadSince returns entries at or after the given time.
func ReadSince(path string, since time.Time) ([]Entry, error) {
	all, err := Read(path)
	if err != nil {
		return nil, err
	}
	var filtered []Entry
	for _, entry := range all {
		if !entry.Timestamp.Before(since) {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}

// ReadForRecord returns entries touching a specific (kind, id).
func ReadForRecord(path, kind string, id int) ([]Entry, error) {
	all, err := Read(path)
	if err != nil {
		return nil, err
	}
	var filtered []Entry
	for _, entry := range all {
		if entry.Kind == kind && entry.RecordID == id {
			filtered = append(filtered, entry)
		}
	}
	return filtered, nil
}
