package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/aidanlsb/magpie/internal/record"
)

// newTestServer serves a tiny in-memory policies collection over the wire
// protocol the client speaks.
func newTestServer(t *testing.T) (*httptest.Server, map[int]*wireRecord) {
	t.Helper()
	store := map[int]*wireRecord{
		1: {ID: 1, Name: "Install Zoom", Fields: map[string]any{"general": map[string]any{"enabled": true}}},
		2: {ID: 2, Name: "Install Slack", Fields: map[string]any{"general": map[string]any{"enabled": false}}},
	}
	nextID := 3

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/policies", func(w http.ResponseWriter, r *http.Request) {
		var summaries []wireSummary
		for _, rec := range store {
			summaries = append(summaries, wireSummary{ID: rec.ID, Name: rec.Name})
		}
		json.NewEncoder(w).Encode(summaries)
	})
	mux.HandleFunc("POST /api/v1/policies", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name string `json:"name"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		rec := &wireRecord{ID: nextID, Name: body.Name, Fields: map[string]any{}}
		store[nextID] = rec
		nextID++
		json.NewEncoder(w).Encode(rec)
	})
	mux.HandleFunc("GET /api/v1/policies/name/{name}", func(w http.ResponseWriter, r *http.Request) {
		for _, rec := range store {
			if rec.Name == r.PathValue("name") {
				json.NewEncoder(w).Encode(rec)
				return
			}
		}
		http.Error(w, "not found", http.StatusNotFound)
	})
	mux.HandleFunc("GET /api/v1/policies/id/{id}", func(w http.ResponseWriter, r *http.Request) {
		for _, rec := range store {
			if r.PathValue("id") == strconv.Itoa(rec.ID) {
				json.NewEncoder(w).Encode(rec)
				return
			}
		}
		http.Error(w, "not found", http.StatusNotFound)
	})
	mux.HandleFunc("PUT /api/v1/policies/id/{id}", func(w http.ResponseWriter, r *http.Request) {
		var body wireRecord
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		if _, ok := store[body.ID]; !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		store[body.ID] = &body
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("DELETE /api/v1/policies/id/{id}", func(w http.ResponseWriter, r *http.Request) {
		for id, rec := range store {
			if r.PathValue("id") == strconv.Itoa(rec.ID) {
				delete(store, id)
				w.WriteHeader(http.StatusNoContent)
				return
			}
		}
		http.Error(w, "not found", http.StatusNotFound)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, store
}

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := New(srv.URL, "test-token", "policies")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return c
}

func TestNew(t *testing.T) {
	cases := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"https", "https://mdm.example.com", false},
		{"http", "http://localhost:8080", false},
		{"empty", "", true},
		{"no scheme", "mdm.example.com", true},
		{"wrong scheme", "ftp://mdm.example.com", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.baseURL, "", "policies")
			if (err != nil) != tc.wantErr {
				t.Errorf("New(%q) error = %v, wantErr %v", tc.baseURL, err, tc.wantErr)
			}
		})
	}
}

func TestFindByName(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newTestClient(t, srv)

	t.Run("found", func(t *testing.T) {
		rec, err := c.FindByName("Install Zoom")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec == nil || rec.ID != 1 || rec.Kind != "policies" {
			t.Fatalf("unexpected record: %+v", rec)
		}
	})

	t.Run("missing is nil, not an error", func(t *testing.T) {
		rec, err := c.FindByName("Nope")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec != nil {
			t.Errorf("expected nil, got %+v", rec)
		}
	})
}

func TestFindByID(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newTestClient(t, srv)

	rec, err := c.FindByID(2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec == nil || rec.Name != "Install Slack" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	missing, err := c.FindByID(99)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing id, got %+v", missing)
	}
}

func TestFindByRegex(t *testing.T) {
	srv, _ := newTestServer(t)
	c := newTestClient(t, srv)

	t.Run("matches fetch full records", func(t *testing.T) {
		recs, err := c.FindByRegex("Zoom")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(recs) != 1 || recs[0].Name != "Install Zoom" {
			t.Fatalf("unexpected records: %+v", recs)
		}
		if recs[0].Fields == nil {
			t.Error("expected full record fields, got summary only")
		}
	})

	t.Run("empty pattern matches all", func(t *testing.T) {
		recs, err := c.FindByRegex("")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(recs) != 2 {
			t.Errorf("expected 2 records, got %d", len(recs))
		}
	})

	t.Run("bad pattern", func(t *testing.T) {
		if _, err := c.FindByRegex("["); err == nil {
			t.Error("expected an error for a bad pattern")
		}
	})
}

func TestCreateSaveDelete(t *testing.T) {
	srv, store := newTestServer(t)
	c := newTestClient(t, srv)

	rec, err := c.Create("New Policy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID == 0 || rec.Name != "New Policy" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	rec.Fields["general"] = map[string]any{"enabled": true}
	if err := c.Save(rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	saved := store[rec.ID]
	if saved == nil {
		t.Fatal("record not persisted")
	}
	general, _ := saved.Fields["general"].(map[string]any)
	if general["enabled"] != true {
		t.Errorf("saved fields not round-tripped: %+v", saved.Fields)
	}

	if err := c.Delete(rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := store[rec.ID]; ok {
		t.Error("record still present after delete")
	}
}

func TestRefresh(t *testing.T) {
	srv, store := newTestServer(t)
	c := newTestClient(t, srv)

	local := &record.Record{Kind: "policies", ID: 1, Name: "Install Zoom", Fields: map[string]any{}}
	store[1].Fields = map[string]any{"general": map[string]any{"enabled": false}}

	fresh, err := c.Refresh(local)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	general, _ := fresh.Fields["general"].(map[string]any)
	if general["enabled"] != false {
		t.Errorf("refresh did not pick up server state: %+v", fresh.Fields)
	}

	delete(store, 1)
	if _, err := c.Refresh(local); err == nil {
		t.Error("expected an error refreshing a deleted record")
	}
}

func TestStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal failure", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(t, srv)

	_, err := c.FindByName("anything")
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if se.Code != http.StatusInternalServerError || !strings.Contains(se.Error(), "internal failure") {
		t.Errorf("unexpected status error: %v", se)
	}
}

func TestAuthorizationHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		http.Error(w, "not found", http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)
	c := newTestClient(t, srv)

	if _, err := c.FindByName("x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("expected bearer token header, got %q", gotAuth)
	}
}
