package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveUsesExistingRuntimeDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o700))
	t.Setenv("XDG_RUNTIME_DIR", dir)

	rc, err := Resolve(false)
	require.NoError(t, err)
	assert.Equal(t, dir, rc.RuntimeDir)
	assert.False(t, rc.OwnedTempDir)
}

func TestResolveRejectsWorldWritableRuntimeDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Chmod(dir, 0o777))
	t.Setenv("XDG_RUNTIME_DIR", dir)

	_, err := Resolve(false)
	assert.Error(t, err)
}

func TestResolveFallsBackToTempDir(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "")

	rc, err := Resolve(true)
	require.NoError(t, err)
	require.True(t, rc.OwnedTempDir)
	defer rc.Cleanup()

	info, err := os.Stat(rc.RuntimeDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
	assert.Equal(t, os.FileMode(0o700), info.Mode().Perm())
}

func TestSocketPath(t *testing.T) {
	rc := &RuntimeConfig{RuntimeDir: "/tmp/termui-1"}
	assert.Equal(t, filepath.Join("/tmp/termui-1", "termui-3"), rc.SocketPath("termui-3"))
}
