// ABOUTME: Bookkeeping for Google imports: per-service sync state and imported-source log
// ABOUTME: Lets importers skip records they already turned into contacts or tasks
package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SyncState is the last known sync outcome for a service.
type SyncState struct {
	Service       string
	LastSyncTime  *time.Time
	LastSyncToken *string
	Status        string
	ErrorMessage  *string
	UpdatedAt     time.Time
}

// SyncLog records imports into the sync_state and sync_log tables.
type SyncLog struct {
	db *sql.DB
}

func NewSyncLog(db *sql.DB) *SyncLog {
	return &SyncLog{db: db}
}

// State returns nil when the service has never synced.
func (l *SyncLog) State(service string) (*SyncState, error) {
	row := l.db.QueryRow(`
		SELECT service, last_sync_time, last_sync_token, status, error_message, updated_at
		FROM sync_state
		WHERE service = ?
	`, service)
	state, err := scanState(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync state: %w", err)
	}
	return state, nil
}

// States lists every service that has synced, ordered by name.
func (l *SyncLog) States() ([]SyncState, error) {
	rows, err := l.db.Query(`
		SELECT service, last_sync_time, last_sync_token, status, error_message, updated_at
		FROM sync_state
		ORDER BY service
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync states: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var states []SyncState
	for rows.Next() {
		state, err := scanState(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync state: %w", err)
		}
		states = append(states, *state)
	}
	return states, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanState(s scanner) (*SyncState, error) {
	var state SyncState
	var lastSync sql.NullTime
	var token, errMsg sql.NullString
	if err := s.Scan(&state.Service, &lastSync, &token, &state.Status, &errMsg, &state.UpdatedAt); err != nil {
		return nil, err
	}
	if lastSync.Valid {
		state.LastSyncTime = &lastSync.Time
	}
	if token.Valid {
		state.LastSyncToken = &token.String
	}
	if errMsg.Valid {
		state.ErrorMessage = &errMsg.String
	}
	return &state, nil
}

// SetStatus marks a service idle, syncing or error. errMsg is cleared when empty.
func (l *SyncLog) SetStatus(service, status, errMsg string) error {
	var msg sql.NullString
	if errMsg != "" {
		msg = sql.NullString{String: errMsg, Valid: true}
	}
	_, err := l.db.Exec(`
		INSERT INTO sync_state (service, status, error_message, created_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(service) DO UPDATE SET
			status = excluded.status,
			error_message = excluded.error_message,
			updated_at = CURRENT_TIMESTAMP
	`, service, status, msg)
	if err != nil {
		return fmt.Errorf("failed to update sync status: %w", err)
	}
	return nil
}

// Finish records a successful run and the token to resume from.
func (l *SyncLog) Finish(service, token string) error {
	_, err := l.db.Exec(`
		INSERT INTO sync_state (service, last_sync_time, last_sync_token, status, created_at, updated_at)
		VALUES (?, CURRENT_TIMESTAMP, ?, 'idle', CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
		ON CONFLICT(service) DO UPDATE SET
			last_sync_time = CURRENT_TIMESTAMP,
			last_sync_token = excluded.last_sync_token,
			status = 'idle',
			error_message = NULL,
			updated_at = CURRENT_TIMESTAMP
	`, service, token)
	if err != nil {
		return fmt.Errorf("failed to update sync token: %w", err)
	}
	return nil
}

// Imported reports whether the source record was already imported.
func (l *SyncLog) Imported(service, sourceID string) (bool, error) {
	var count int
	err := l.db.QueryRow(`
		SELECT COUNT(*) FROM sync_log WHERE source_service = ? AND source_id = ?
	`, service, sourceID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check sync log: %w", err)
	}
	return count > 0, nil
}

// Record links a source record to the entity created from it.
func (l *SyncLog) Record(service, sourceID, entityType, entityID string) error {
	_, err := l.db.Exec(`
		INSERT INTO sync_log (source_service, source_id, entity_type, entity_id, imported_at)
		VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(source_service, source_id) DO UPDATE SET
			entity_type = excluded.entity_type,
			entity_id = excluded.entity_id
	`, service, sourceID, entityType, entityID)
	if err != nil {
		return fmt.Errorf("failed to create sync log: %w", err)
	}
	return nil
}
