// ABOUTME: Versioned JSON envelope for persisted collections
// ABOUTME: Reads legacy bare arrays/objects written before the envelope existed
package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// SchemaVersion tags every snapshot this build writes.
const SchemaVersion = 1

var (
	ErrCorruptSnapshot    = errors.New("corrupt snapshot")
	ErrUnsupportedVersion = errors.New("unsupported snapshot schema version")
)

type envelope struct {
	SchemaVersion int             `json:"schemaVersion"`
	Data          json.RawMessage `json:"data"`
}

func encodeSnapshot(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return json.Marshal(envelope{SchemaVersion: SchemaVersion, Data: data})
}

// decodeSnapshot fills v from an enveloped or legacy snapshot. Empty input leaves v untouched.
func decodeSnapshot(data []byte, v any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil
	}

	if trimmed[0] == '{' {
		var env envelope
		if err := json.Unmarshal(trimmed, &env); err == nil && env.SchemaVersion > 0 {
			if env.SchemaVersion > SchemaVersion {
				return fmt.Errorf("%w: %d", ErrUnsupportedVersion, env.SchemaVersion)
			}
			if len(env.Data) == 0 {
				return nil
			}
			if err := json.Unmarshal(env.Data, v); err != nil {
				return fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
			}
			return nil
		}
	}

	if err := json.Unmarshal(trimmed, v); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return nil
}

// SnapshotVersion reports the schema version of raw snapshot data; legacy data reports 0.
func SnapshotVersion(data []byte) int {
	var env envelope
	if err := json.Unmarshal(bytes.TrimSpace(data), &env); err != nil {
		return 0
	}
	return env.SchemaVersion
}
