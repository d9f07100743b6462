// ABOUTME: KV client used as the CRM persistence backend, cloud-synced or local-only
// ABOUTME: Cloud mode wraps charm/kv; local mode talks to badger directly
package charm

import (
	"fmt"
	"os"
	"sync"

	"github.com/charmbracelet/charm/client"
	"github.com/charmbracelet/charm/kv"
	"github.com/charmbracelet/log"

	"github.com/harperreed/immo/store"
)

// backend is the subset of charm/kv.KV the client relies on.
type backend interface {
	Get(key []byte) ([]byte, error)
	Set(key, value []byte) error
	Delete(key []byte) error
	Keys() ([][]byte, error)
	Sync() error
	Reset() error
}

var (
	globalClient *Client
	clientOnce   sync.Once
	clientErr    error
)

// Client serialises access to the KV and syncs after writes when enabled.
type Client struct {
	db     backend
	config *Config
	cloud  bool
	closer func() error
	mu     sync.RWMutex
}

// GetClient opens the cloud-synced client once per process; charm/kv cannot be opened twice.
func GetClient() (*Client, error) {
	clientOnce.Do(func() {
		cfg, err := LoadConfig()
		if err != nil {
			clientErr = fmt.Errorf("failed to load config: %w", err)
			return
		}
		globalClient, clientErr = Open(cfg)
	})
	return globalClient, clientErr
}

// Open connects to charm cloud with cfg. Prefer GetClient outside tests.
func Open(cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	_ = os.Setenv("CHARM_HOST", cfg.Host)

	db, err := kv.OpenWithDefaults(AppName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}

	c := &Client{db: db, config: cfg, cloud: true}
	if cfg.AutoSync {
		if err := db.Sync(); err != nil {
			log.Warn("initial sync failed, working offline", "err", err)
		}
	}
	return c, nil
}

// OpenLocal opens a badger database in dir without any server.
func OpenLocal(dir string) (*Client, error) {
	db, err := openLocalKV(dir)
	if err != nil {
		return nil, err
	}
	return &Client{
		db:     db,
		config: &Config{Host: "local", AutoSync: false},
		closer: db.Close,
	}, nil
}

// Storage exposes the client as the store persistence collaborator.
func (c *Client) Storage() *store.KVStorage {
	return store.NewKVStorage(c, KeyPrefix)
}

func (c *Client) Config() *Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

// IsCloud reports whether writes are replicated to a charm server.
func (c *Client) IsCloud() bool {
	return c.cloud
}

// ID returns the charm account id of this device.
func (c *Client) ID() (string, error) {
	if !c.cloud {
		return "", fmt.Errorf("local storage has no charm account")
	}
	cc, err := client.NewClientWithDefaults()
	if err != nil {
		return "", fmt.Errorf("failed to create charm client: %w", err)
	}
	return cc.ID()
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closer != nil {
		return c.closer()
	}
	return nil
}

func (c *Client) Sync() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.Sync()
}

func (c *Client) Get(key []byte) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db.Get(key)
}

// Set stores a value and syncs while still holding the lock when auto-sync is on.
func (c *Client) Set(key, value []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.db.Set(key, value); err != nil {
		return err
	}
	if c.config.AutoSync {
		if err := c.db.Sync(); err != nil {
			log.Warn("sync after write failed", "key", string(key), "err", err)
		}
	}
	return nil
}

func (c *Client) Delete(key []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.db.Delete(key); err != nil {
		return err
	}
	if c.config.AutoSync {
		_ = c.db.Sync()
	}
	return nil
}

func (c *Client) Keys() ([][]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.db.Keys()
}

// KeysWithPrefix returns all keys starting with prefix.
func (c *Client) KeysWithPrefix(prefix []byte) ([][]byte, error) {
	all, err := c.Keys()
	if err != nil {
		return nil, err
	}
	var matched [][]byte
	for _, k := range all {
		if len(k) >= len(prefix) && string(k[:len(prefix)]) == string(prefix) {
			matched = append(matched, k)
		}
	}
	return matched, nil
}

// Reset wipes every key from the store.
func (c *Client) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.db.Reset()
}
