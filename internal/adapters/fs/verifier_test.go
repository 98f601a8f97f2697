package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.forge.sh/esy/internal/adapters/fs"
)

func TestVerifier_Exists(t *testing.T) {
	tmpDir := t.TempDir()
	verifier := fs.NewVerifier()

	installPath := filepath.Join(tmpDir, "install")
	require.NoError(t, os.WriteFile(installPath, []byte("content"), 0o600))

	exists, err := verifier.Exists(installPath)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = verifier.Exists(filepath.Join(tmpDir, "missing"))
	require.NoError(t, err)
	assert.False(t, exists)
}
