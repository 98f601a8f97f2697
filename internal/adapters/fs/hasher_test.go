package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.forge.sh/esy/internal/adapters/fs"
)

func TestHasher_ComputeFileHash_Deterministic(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "patch.diff")
	require.NoError(t, os.WriteFile(path, []byte("--- a\n+++ b\n"), 0o600))

	hasher := fs.NewHasher()

	h1, err := hasher.ComputeFileHash(path)
	require.NoError(t, err)
	h2, err := hasher.ComputeFileHash(path)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
}

func TestHasher_ComputeFileHash_ChangesWithContent(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "patch.diff")
	hasher := fs.NewHasher()

	require.NoError(t, os.WriteFile(path, []byte("v1"), 0o600))
	h1, err := hasher.ComputeFileHash(path)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o600))
	h2, err := hasher.ComputeFileHash(path)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestHasher_ComputeFileHash_MissingFile(t *testing.T) {
	hasher := fs.NewHasher()
	_, err := hasher.ComputeFileHash(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
}
