// pkg/testutil/testutil.go
//
// Shared helpers for package tests.

package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/CodeMonkeyCybersecurity/steward/pkg/steward_io"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// TestRuntimeContext returns a RuntimeContext wired to the test logger.
func TestRuntimeContext(t *testing.T) *steward_io.RuntimeContext {
	t.Helper()
	rc := steward_io.NewContext(context.Background(), "test")
	rc.Log = zaptest.NewLogger(t)
	return rc
}

// TempConfigDir creates a temporary directory laid out like a Consul config
// dir and returns its path.
func TempConfigDir(t *testing.T) string {
	t.Helper()
	return t.TempDir()
}

// WriteFile writes content under dir, creating parents, and fails the test
// on error.
func WriteFile(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, content, 0644))
	return path
}
