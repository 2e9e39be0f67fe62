// Package export writes records to disk as YAML documents, one file per
// record.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/magpie/internal/atomicfile"
	"github.com/aidanlsb/magpie/internal/record"
)

// Filename derives a filesystem-safe name for a record. Names that slug to
// nothing (or collide after slugging) stay unique through the id suffix.
func Filename(rec *record.Record) string {
	s := slug.Make(rec.Name)
	if s == "" {
		return fmt.Sprintf("%s-%d.yaml", rec.Kind, rec.ID)
	}
	return fmt.Sprintf("%s-%d.yaml", s, rec.ID)
}

// Write dumps each record into dir and returns the written paths, in input
// order. Files are written atomically; the first failure aborts the export.
func Write(dir string, recs []*record.Record) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	paths := make([]string, 0, len(recs))
	for _, rec := range recs {
		data, err := yaml.Marshal(rec)
		if err != nil {
			return paths, fmt.Errorf("failed to encode %s: %w", rec.DisplayName(), err)
		}
		path := filepath.Join(dir, Filename(rec))
		if err := atomicfile.WriteFile(path, data, 0644); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
