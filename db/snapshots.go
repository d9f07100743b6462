// ABOUTME: SQLite implementation of the store persistence collaborator
// ABOUTME: Each collection is one row holding its latest JSON snapshot
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/harperreed/immo/store"
)

// SnapshotStore saves whole-collection snapshots into the snapshots table.
type SnapshotStore struct {
	db  *sql.DB
	now store.Clock
}

func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db, now: store.SystemClock}
}

func (s *SnapshotStore) Load(key string) ([]byte, bool, error) {
	var payload []byte
	err := s.db.QueryRow(`SELECT payload FROM snapshots WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load snapshot %s: %w", key, err)
	}
	return payload, true, nil
}

func (s *SnapshotStore) Save(key string, data []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO snapshots (key, schema_version, payload, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			schema_version = excluded.schema_version,
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, key, store.SnapshotVersion(data), data, s.now())
	if err != nil {
		return fmt.Errorf("failed to save snapshot %s: %w", key, err)
	}
	return nil
}

// SnapshotInfo describes one stored row without its payload.
type SnapshotInfo struct {
	Key           string
	SchemaVersion int
	Size          int
	UpdatedAt     time.Time
}

// List returns metadata for every stored snapshot, ordered by key.
func (s *SnapshotStore) List() ([]SnapshotInfo, error) {
	rows, err := s.db.Query(`
		SELECT key, schema_version, length(payload), updated_at
		FROM snapshots
		ORDER BY key
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var infos []SnapshotInfo
	for rows.Next() {
		var info SnapshotInfo
		if err := rows.Scan(&info.Key, &info.SchemaVersion, &info.Size, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}
