package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/aidanlsb/magpie/internal/atomicfile"
)

// persistedConfig mirrors Config with omitempty pointers so a saved file
// only carries the settings the operator actually set.
type persistedConfig struct {
	DefaultServer *string              `toml:"default_server,omitempty"`
	Servers       map[string]Server    `toml:"servers,omitempty"`
	CachePath     *string              `toml:"cache_path,omitempty"`
	AuditLog      *bool                `toml:"audit_log,omitempty"`
	UI            *persistedUISettings `toml:"ui,omitempty"`
}

type persistedUISettings struct {
	Accent *string `toml:"accent,omitempty"`
}

func nonEmptyPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// Save writes the global config to the default config path.
func Save(cfg *Config) error {
	return SaveTo(DefaultPath(), cfg)
}

// SaveTo writes the global config to a specific path atomically.
func SaveTo(path string, cfg *Config) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("config path is required")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	out := persistedConfig{
		DefaultServer: nonEmptyPtr(cfg.DefaultServer),
		CachePath:     nonEmptyPtr(cfg.CachePath),
		AuditLog:      cfg.AuditLog,
	}
	if len(cfg.Servers) > 0 {
		out.Servers = cfg.Servers
	}
	if accent := nonEmptyPtr(cfg.UI.Accent); accent != nil {
		out.UI = &persistedUISettings{Accent: accent}
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(out); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := atomicfile.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config %s: %w", path, err)
	}
	return nil
}
