package cache

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/aidanlsb/magpie/internal/record"
)

// ErrOffline is returned for mutations attempted against the cache.
var ErrOffline = errors.New("operation requires a server connection")

// Source is a read-only pipeline source backed by local snapshots, used by
// --cached lookups. Mutations fail with ErrOffline.
type Source struct {
	Store *Store
	Kind  string
}

// FindByName looks a snapshot up by exact name. Missing is (nil, nil).
func (s *Source) FindByName(name string) (*record.Record, error) {
	rec, err := s.Store.GetByName(s.Kind, name)
	if errors.Is(err, ErrNotCached) {
		return nil, nil
	}
	return rec, err
}

// FindByID looks a snapshot up by id. Missing is (nil, nil).
func (s *Source) FindByID(id int) (*record.Record, error) {
	rec, err := s.Store.Get(s.Kind, id)
	if errors.Is(err, ErrNotCached) {
		return nil, nil
	}
	return rec, err
}

// FindByRegex matches snapshot names against pattern.
func (s *Source) FindByRegex(pattern string) ([]*record.Record, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad name pattern %q: %w", pattern, err)
	}
	all, err := s.Store.List(s.Kind)
	if err != nil {
		return nil, err
	}
	var recs []*record.Record
	for _, rec := range all {
		if re.MatchString(rec.Name) {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

// Create is unavailable offline.
func (s *Source) Create(string) (*record.Record, error) { return nil, ErrOffline }

// Save is unavailable offline.
func (s *Source) Save(*record.Record) error { return ErrOffline }

// Delete is unavailable offline.
func (s *Source) Delete(*record.Record) error { return ErrOffline }

// Refresh is unavailable offline.
func (s *Source) Refresh(*record.Record) (*record.Record, error) { return nil, ErrOffline }

// Less orders snapshots by case-insensitive name, then id.
func (s *Source) Less(a, b *record.Record) bool { return a.Less(b) }
