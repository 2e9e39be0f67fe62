// Package config handles global Magpie configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the global configuration, loaded from config.toml.
type Config struct {
	// DefaultServer is the name of the server used when --server is absent.
	DefaultServer string `toml:"default_server"`

	// Servers maps server names to their connection settings.
	Servers map[string]Server `toml:"servers"`

	// CachePath overrides the snapshot cache location.
	CachePath string `toml:"cache_path"`

	// AuditLog enables the append-only mutation log (default on).
	AuditLog *bool `toml:"audit_log"`

	// UI controls optional CLI theming preferences.
	UI UIConfig `toml:"ui"`
}

// Server is one management server endpoint.
type Server struct {
	// URL is the server base URL, e.g. "https://mdm.example.com".
	URL string `toml:"url"`

	// Token is the bearer token used for API auth.
	Token string `toml:"token"`
}

// UIConfig holds CLI theming preferences.
type UIConfig struct {
	// Accent is an optional accent color: an ANSI code ("0" to "255") or a
	// hex color ("#RRGGBB").
	Accent string `toml:"accent"`
}

// GetServer returns the named server, or the default when name is empty.
func (c *Config) GetServer(name string) (Server, error) {
	if name == "" {
		name = c.DefaultServer
	}
	if name == "" {
		return Server{}, fmt.Errorf("no server specified\n\nEither pass --server <name> or set default_server in %s", DefaultPath())
	}
	if c.Servers != nil {
		if srv, ok := c.Servers[name]; ok {
			return srv, nil
		}
	}
	return Server{}, fmt.Errorf("server '%s' not found in config", name)
}

// IsAuditEnabled reports whether mutations are logged. Unset means enabled.
func (c *Config) IsAuditEnabled() bool {
	return c.AuditLog == nil || *c.AuditLog
}

// Load loads the configuration from the default location. A missing file
// yields an empty config, not an error.
func Load() (*Config, error) {
	path := DefaultPath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return &Config{}, nil
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from a specific path.
func LoadFrom(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return &cfg, nil
}

// ResolvePath returns the explicit path when given, else the default.
func ResolvePath(explicit string) string {
	if strings.TrimSpace(explicit) != "" {
		return explicit
	}
	return DefaultPath()
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(configDir(), "config.toml")
}

// DefaultCachePath returns the snapshot cache location, honoring any
// override in the config.
func (c *Config) DefaultCachePath() string {
	if strings.TrimSpace(c.CachePath) != "" {
		return c.CachePath
	}
	return filepath.Join(configDir(), "cache.db")
}

// DefaultAuditPath returns the audit log location.
func DefaultAuditPath() string {
	return filepath.Join(configDir(), "audit.log")
}

func configDir() string {
	if dir := os.Getenv("MAGPIE_CONFIG_DIR"); dir != "" {
		return dir
	}
	base, err := os.UserConfigDir()
	if err != nil {
		home, _ := os.UserHomeDir()
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "magpie")
}
