// Package daemon wires the candid core into a long-running HTTP service:
// configuration, store setup, and graceful lifecycle.
package daemon

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the daemon configuration, loaded from a TOML file.
type Config struct {
	API           APIConfig           `toml:"api"`
	Store         StoreConfig         `toml:"store"`
	Metrics       MetricsConfig       `toml:"metrics"`
	Notifications NotificationsConfig `toml:"notifications"`
}

// APIConfig configures the HTTP listener.
type APIConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// StoreConfig configures the SQLite store.
type StoreConfig struct {
	Path string `toml:"path"`
}

// MetricsConfig configures the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool `toml:"enabled"`
}

// NotificationsConfig configures the in-process notification hub.
type NotificationsConfig struct {
	Enabled    bool `toml:"enabled"`
	BufferSize int  `toml:"buffer_size"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Config{
		API: APIConfig{
			Host: "127.0.0.1",
			Port: 8861,
		},
		Store: StoreConfig{
			Path: filepath.Join(home, ".candid", "candid.db"),
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		Notifications: NotificationsConfig{
			Enabled:    true,
			BufferSize: 64,
		},
	}
}

// LoadConfig loads configuration from the given TOML file, falling back
// to defaults for missing keys. A missing file is not an error: the
// defaults are returned unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("invalid api.port %d", c.API.Port)
	}
	if c.Store.Path == "" {
		return fmt.Errorf("store.path cannot be empty")
	}
	if c.Notifications.BufferSize < 1 {
		return fmt.Errorf("notifications.buffer_size must be positive")
	}
	return nil
}

// Addr returns the host:port listen address.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
