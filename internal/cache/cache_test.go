package cache

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/aidanlsb/magpie/internal/record"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPutGet(t *testing.T) {
	s := openTestStore(t)

	rec := &record.Record{
		Kind: "policies",
		ID:   1,
		Name: "Install Zoom",
		Fields: map[string]any{
			"general": map[string]any{"enabled": true, "category": "Apps"},
		},
	}
	if err := s.Put(rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.Get("policies", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "Install Zoom" || got.Kind != "policies" {
		t.Fatalf("unexpected record: %+v", got)
	}
	general, _ := got.Fields["general"].(map[string]any)
	if general["enabled"] != true || general["category"] != "Apps" {
		t.Errorf("fields did not round-trip: %+v", got.Fields)
	}
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Get("policies", 99); !errors.Is(err, ErrNotCached) {
		t.Errorf("expected ErrNotCached, got %v", err)
	}
	if _, err := s.GetByName("policies", "Nope"); !errors.Is(err, ErrNotCached) {
		t.Errorf("expected ErrNotCached, got %v", err)
	}
}

func TestPutReplaces(t *testing.T) {
	s := openTestStore(t)

	rec := &record.Record{Kind: "policies", ID: 1, Name: "Old Name", Fields: map[string]any{"v": 1}}
	if err := s.Put(rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rec.Name = "New Name"
	rec.Fields = map[string]any{"v": 2}
	if err := s.Put(rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := s.Get("policies", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Name != "New Name" {
		t.Errorf("snapshot not replaced: %+v", got)
	}
}

func TestListOrderAndKindIsolation(t *testing.T) {
	s := openTestStore(t)

	for _, rec := range []*record.Record{
		{Kind: "policies", ID: 2, Name: "bravo", Fields: map[string]any{}},
		{Kind: "policies", ID: 1, Name: "Alpha", Fields: map[string]any{}},
		{Kind: "profiles", ID: 1, Name: "Other Kind", Fields: map[string]any{}},
	} {
		if err := s.Put(rec); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	recs, err := s.List("policies")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 policies, got %d", len(recs))
	}
	if recs[0].Name != "Alpha" || recs[1].Name != "bravo" {
		t.Errorf("expected case-insensitive name order, got %q then %q", recs[0].Name, recs[1].Name)
	}
}

func TestRemove(t *testing.T) {
	s := openTestStore(t)

	rec := &record.Record{Kind: "policies", ID: 1, Name: "X", Fields: map[string]any{}}
	if err := s.Put(rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Remove("policies", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := s.Get("policies", 1); !errors.Is(err, ErrNotCached) {
		t.Errorf("expected ErrNotCached after remove, got %v", err)
	}
	// Removing a missing snapshot is fine.
	if err := s.Remove("policies", 1); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestReopenKeepsSnapshots(t *testing.T) {
	path := filepath.Join(t.TempDir(), "snapshots.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := s.Put(&record.Record{Kind: "policies", ID: 1, Name: "X", Fields: map[string]any{}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s.Close()

	s, err = Open(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Close()
	if _, err := s.Get("policies", 1); err != nil {
		t.Errorf("snapshot lost across reopen: %v", err)
	}
}

func TestSource(t *testing.T) {
	s := openTestStore(t)
	for _, rec := range []*record.Record{
		{Kind: "policies", ID: 1, Name: "Install Zoom", Fields: map[string]any{}},
		{Kind: "policies", ID: 2, Name: "Install Slack", Fields: map[string]any{}},
	} {
		if err := s.Put(rec); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	src := &Source{Store: s, Kind: "policies"}

	t.Run("lookups", func(t *testing.T) {
		rec, err := src.FindByName("Install Zoom")
		if err != nil || rec == nil || rec.ID != 1 {
			t.Fatalf("FindByName = %+v, %v", rec, err)
		}
		rec, err = src.FindByID(2)
		if err != nil || rec == nil || rec.Name != "Install Slack" {
			t.Fatalf("FindByID = %+v, %v", rec, err)
		}
		missing, err := src.FindByName("Nope")
		if err != nil || missing != nil {
			t.Fatalf("expected (nil, nil), got %+v, %v", missing, err)
		}
	})

	t.Run("regex", func(t *testing.T) {
		recs, err := src.FindByRegex("^Install")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(recs) != 2 {
			t.Errorf("expected 2 matches, got %d", len(recs))
		}
	})

	t.Run("mutations are offline", func(t *testing.T) {
		rec := &record.Record{Kind: "policies", ID: 1}
		if _, err := src.Create("x"); !errors.Is(err, ErrOffline) {
			t.Errorf("Create: expected ErrOffline, got %v", err)
		}
		if err := src.Save(rec); !errors.Is(err, ErrOffline) {
			t.Errorf("Save: expected ErrOffline, got %v", err)
		}
		if err := src.Delete(rec); !errors.Is(err, ErrOffline) {
			t.Errorf("Delete: expected ErrOffline, got %v", err)
		}
		if _, err := src.Refresh(rec); !errors.Is(err, ErrOffline) {
			t.Errorf("Refresh: expected ErrOffline, got %v", err)
		}
	})
}
