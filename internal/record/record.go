// Package record defines the nested record model shared by the pipeline,
// the API client, and the CLI.
package record

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Record is a single entity managed by the server: an identity plus an
// opaque tree of mappings, sequences, and scalars.
type Record struct {
	Kind   string         `json:"kind" yaml:"kind"`
	ID     int            `json:"id" yaml:"id"`
	Name   string         `json:"name" yaml:"name"`
	Fields map[string]any `json:"fields" yaml:"fields"`
}

// DisplayName returns a human label for error messages and summaries.
func (r *Record) DisplayName() string {
	if r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("#%d", r.ID)
}

// Less orders records by case-insensitive name, then by id. This is the
// natural ordering used to keep batch output and side effects deterministic.
func (r *Record) Less(other *Record) bool {
	a, b := strings.ToLower(r.Name), strings.ToLower(other.Name)
	if a != b {
		return a < b
	}
	return r.ID < other.ID
}

// YAML renders the record as a YAML document for human output and export.
func (r *Record) YAML() (string, error) {
	data, err := yaml.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("failed to render record %s: %w", r.DisplayName(), err)
	}
	return string(data), nil
}
