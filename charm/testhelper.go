// ABOUTME: Test utilities for creating isolated KV clients
// ABOUTME: Uses a temporary badger directory so tests never touch a charm server
package charm

import (
	"path/filepath"
	"testing"
)

// NewTestClient opens a local client in a temp directory.
// The returned cleanup closes the database; t.TempDir removes the files.
func NewTestClient(t *testing.T) (*Client, func()) {
	t.Helper()

	c, err := OpenLocal(filepath.Join(t.TempDir(), AppName))
	if err != nil {
		t.Fatalf("Failed to open test client: %v", err)
	}

	cleanup := func() {
		if err := c.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	}
	return c, cleanup
}
