package record

import (
	"sort"
	"strings"
	"testing"
)

func TestDisplayName(t *testing.T) {
	named := &Record{ID: 7, Name: "Install Zoom"}
	if got := named.DisplayName(); got != "Install Zoom" {
		t.Errorf("expected name, got %q", got)
	}
	anonymous := &Record{ID: 7}
	if got := anonymous.DisplayName(); got != "#7" {
		t.Errorf("expected '#7', got %q", got)
	}
}

func TestLess(t *testing.T) {
	recs := []*Record{
		{ID: 3, Name: "charlie"},
		{ID: 1, Name: "Alpha"},
		{ID: 2, Name: "bravo"},
		{ID: 4, Name: "bravo"},
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Less(recs[j]) })

	wantNames := []string{"Alpha", "bravo", "bravo", "charlie"}
	for i, want := range wantNames {
		if recs[i].Name != want {
			t.Fatalf("position %d: expected %q, got %q", i, want, recs[i].Name)
		}
	}
	// Equal names fall back to id order.
	if recs[1].ID != 2 || recs[2].ID != 4 {
		t.Errorf("id tiebreak broken: %d then %d", recs[1].ID, recs[2].ID)
	}
}

func TestYAML(t *testing.T) {
	rec := &Record{
		Kind: "policies",
		ID:   42,
		Name: "Install Zoom",
		Fields: map[string]any{
			"general": map[string]any{"enabled": true},
		},
	}
	doc, err := rec.YAML()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, fragment := range []string{"kind: policies", "id: 42", "name: Install Zoom", "enabled: true"} {
		if !strings.Contains(doc, fragment) {
			t.Errorf("rendered document missing %q:\n%s", fragment, doc)
		}
	}
}
