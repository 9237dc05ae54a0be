package paths_test

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/balkashynov/tempo/internal/paths"
)

func TestLocationsLiveInDataDir(t *testing.T) {
	dir := t.TempDir()

	assert.Equal(t, filepath.Join(dir, "tempo.db"), paths.DatabasePath(dir))
	if runtime.GOOS != "windows" {
		assert.Equal(t, filepath.Join(dir, "tempo.sock"), paths.SocketPath(dir))
	}
}

func TestEnsureDataDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "tempo")
	require.NoError(t, paths.EnsureDataDir(dir))
	require.DirExists(t, dir)

	// Idempotent.
	require.NoError(t, paths.EnsureDataDir(dir))
}
