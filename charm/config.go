// ABOUTME: Configuration for the Charm KV backend connection
// ABOUTME: Handles server host, auto-sync and the local data directory
package charm

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/charm/kv"
)

const (
	// DefaultCharmHost is the self-hosted 2389 research server.
	DefaultCharmHost = "charm.2389.dev"

	// AppName names the Charm KV database and the xdg directories.
	AppName = "immo"

	// KeyPrefix namespaces every collection key stored in the KV.
	KeyPrefix = "immo/"

	// ConfigFileName is where sync preferences are stored.
	ConfigFileName = "config.json"
)

// Config holds charm connection settings.
type Config struct {
	// Host is the charm server hostname.
	Host string `json:"host,omitempty"`

	// AutoSync pushes to the server after every write.
	AutoSync bool `json:"auto_sync"`

	// StaleThreshold is how old local data may get before a sync is forced.
	StaleThreshold time.Duration `json:"stale_threshold,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		Host:           DefaultCharmHost,
		AutoSync:       true,
		StaleThreshold: kv.DefaultStaleThreshold,
	}
}

func configPath() (string, error) {
	dir := filepath.Join(xdg.ConfigHome, AppName)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", err
	}
	return filepath.Join(dir, ConfigFileName), nil
}

// LoadConfig reads the sync config, falling back to defaults when it is missing or unreadable.
func LoadConfig() (*Config, error) {
	path, err := configPath()
	if err != nil {
		return DefaultConfig(), nil //nolint:nilerr // defaults when the config dir is unavailable
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), nil //nolint:nilerr // a broken file is replaced on next save
	}
	if cfg.Host == "" {
		cfg.Host = DefaultCharmHost
	}
	if cfg.StaleThreshold == 0 {
		cfg.StaleThreshold = kv.DefaultStaleThreshold
	}
	return &cfg, nil
}

func (c *Config) Save() error {
	path, err := configPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

func (c *Config) SetAutoSync(enabled bool) error {
	c.AutoSync = enabled
	return c.Save()
}

func (c *Config) SetHost(host string) error {
	c.Host = host
	return c.Save()
}
