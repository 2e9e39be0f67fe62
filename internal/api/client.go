// Package api implements the pipeline's record source against the
// management server's REST API.
package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/aidanlsb/magpie/internal/record"
)

// DefaultTimeout bounds each request; the pipeline is sequential, so one
// hung call would stall the whole batch.
const DefaultTimeout = 30 * time.Second

// StatusError is a non-2xx response from the server.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("server returned %d: %s", e.Code, e.Body)
	}
	return fmt.Sprintf("server returned %d", e.Code)
}

// Client talks to one record collection (kind) on one server. It satisfies
// pipeline.Source.
type Client struct {
	baseURL *url.URL
	token   string
	kind    string
	httpc   *http.Client
}

// New builds a client for the given server and record kind.
func New(baseURL, token, kind string) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("server URL is empty")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid server URL %q: expected http or https", baseURL)
	}
	return &Client{
		baseURL: u,
		token:   token,
		kind:    kind,
		httpc:   &http.Client{Timeout: DefaultTimeout},
	}, nil
}

// Kind returns the record collection this client addresses.
func (c *Client) Kind() string { return c.kind }

// SetHTTPClient overrides the underlying HTTP client (tests, custom TLS).
func (c *Client) SetHTTPClient(httpc *http.Client) { c.httpc = httpc }

// wireRecord is the server's representation of a record.
type wireRecord struct {
	ID     int            `json:"id"`
	Name   string         `json:"name"`
	Fields map[string]any `json:"fields"`
}

// wireSummary is one entry of a collection listing: identity only.
type wireSummary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (c *Client) endpoint(parts ...string) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + "/api/v1/" + strings.Join(parts, "/")
	return u.String()
}

func (c *Client) do(method, endpoint string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, endpoint, reader)
	if err != nil {
		return err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) toRecord(w wireRecord) *record.Record {
	fields := w.Fields
	if fields == nil {
		fields = map[string]any{}
	}
	return &record.Record{Kind: c.kind, ID: w.ID, Name: w.Name, Fields: fields}
}

// isNotFound reports whether err is a 404 from the server.
func isNotFound(err error) bool {
	se, ok := err.(*StatusError)
	return ok && se.Code == http.StatusNotFound
}

// FindByName fetches the record with an exactly matching name.
// A missing record is (nil, nil), not an error.
func (c *Client) FindByName(name string) (*record.Record, error) {
	var w wireRecord
	err := c.do(http.MethodGet, c.endpoint(c.kind, "name", url.PathEscape(name)), nil, &w)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c.toRecord(w), nil
}

// FindByID fetches the record with the given id. Missing is (nil, nil).
func (c *Client) FindByID(id int) (*record.Record, error) {
	var w wireRecord
	err := c.do(http.MethodGet, c.endpoint(c.kind, "id", fmt.Sprint(id)), nil, &w)
	if isNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c.toRecord(w), nil
}

// FindByRegex lists the collection, matches names against pattern, and
// fetches each match in full. The listing carries identities only, so one
// extra GET per match is unavoidable.
func (c *Client) FindByRegex(pattern string) ([]*record.Record, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad name pattern %q: %w", pattern, err)
	}
	var summaries []wireSummary
	if err := c.do(http.MethodGet, c.endpoint(c.kind), nil, &summaries); err != nil {
		return nil, err
	}
	var recs []*record.Record
	for _, s := range summaries {
		if !re.MatchString(s.Name) {
			continue
		}
		rec, err := c.FindByID(s.ID)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			recs = append(recs, rec)
		}
	}
	return recs, nil
}

// Create makes a new, empty record with the given name.
func (c *Client) Create(name string) (*record.Record, error) {
	var w wireRecord
	if err := c.do(http.MethodPost, c.endpoint(c.kind), map[string]any{"name": name}, &w); err != nil {
		return nil, err
	}
	return c.toRecord(w), nil
}

// Save persists the record's current in-memory fields.
func (c *Client) Save(rec *record.Record) error {
	body := wireRecord{ID: rec.ID, Name: rec.Name, Fields: rec.Fields}
	return c.do(http.MethodPut, c.endpoint(c.kind, "id", fmt.Sprint(rec.ID)), body, nil)
}

// Delete removes the record from the server.
func (c *Client) Delete(rec *record.Record) error {
	return c.do(http.MethodDelete, c.endpoint(c.kind, "id", fmt.Sprint(rec.ID)), nil, nil)
}

// Refresh re-fetches the record to confirm its persisted state.
func (c *Client) Refresh(rec *record.Record) (*record.Record, error) {
	fresh, err := c.FindByID(rec.ID)
	if err != nil {
		return nil, err
	}
	if fresh == nil {
		return nil, fmt.Errorf("record %s no longer exists", rec.DisplayName())
	}
	return fresh, nil
}

// Less orders records by case-insensitive name, then id.
func (c *Client) Less(a, b *record.Record) bool { return a.Less(b) }
