// ABOUTME: Opens the configured storage backend and builds the CRM workspace
// ABOUTME: Charm cloud, local badger, SQLite snapshots or memory, selected by IMMO_BACKEND
package cli

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/harperreed/immo/charm"
	"github.com/harperreed/immo/config"
	"github.com/harperreed/immo/crm"
	"github.com/harperreed/immo/db"
	"github.com/harperreed/immo/store"
)

// Backend owns the workspace and whatever handles back its storage.
type Backend struct {
	Workspace *crm.Workspace
	cfg       *config.Config
	database  *sql.DB
	closers   []func() error
}

// OpenBackend opens storage for cfg.Backend and loads every collection.
func OpenBackend(cfg *config.Config) (*Backend, error) {
	ids, err := store.NewIDGenerator(cfg.IDFormat)
	if err != nil {
		return nil, err
	}

	b := &Backend{cfg: cfg}
	var storage store.Storage
	switch cfg.Backend {
	case config.BackendCharm:
		client, err := charm.GetClient()
		if err != nil {
			return nil, fmt.Errorf("failed to open charm backend: %w", err)
		}
		b.closers = append(b.closers, client.Close)
		storage = client.Storage()
	case config.BackendLocal:
		client, err := charm.OpenLocal(cfg.LocalDir())
		if err != nil {
			return nil, fmt.Errorf("failed to open local backend: %w", err)
		}
		b.closers = append(b.closers, client.Close)
		storage = client.Storage()
	case config.BackendSQLite:
		database, err := b.Database()
		if err != nil {
			return nil, err
		}
		storage = db.NewSnapshotStore(database)
	case config.BackendMemory:
		storage = store.NewMemoryStorage()
	default:
		return nil, fmt.Errorf("%w: unknown backend %q", config.ErrInvalidConfig, cfg.Backend)
	}

	ws, err := crm.Open(store.Deps{Storage: storage, IDs: ids})
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("failed to load CRM data: %w", err)
	}
	b.Workspace = ws
	log.Debug("backend opened", "backend", cfg.Backend)
	return b, nil
}

// Database opens the SQLite file on first use. It holds the import log for every backend.
func (b *Backend) Database() (*sql.DB, error) {
	if b.database != nil {
		return b.database, nil
	}
	database, err := db.OpenDatabase(b.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	b.database = database
	b.closers = append(b.closers, database.Close)
	return database, nil
}

// Config returns the configuration the backend was opened with.
func (b *Backend) Config() *config.Config {
	return b.cfg
}

func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		errs = append(errs, b.closers[i]())
	}
	b.closers = nil
	b.database = nil
	return errors.Join(errs...)
}
