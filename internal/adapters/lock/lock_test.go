package lock_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.forge.sh/esy/internal/adapters/lock"
	"go.forge.sh/esy/internal/core/domain"
)

func TestFileLocker_Acquire_GrantsAndReleases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.lock")
	l := lock.New()

	release, err := l.Acquire(context.Background(), path)
	require.NoError(t, err)
	assert.FileExists(t, path)

	release()
	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestFileLocker_Acquire_ContendedLockEventuallyFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.lock")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	l := lock.New()
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := l.Acquire(ctx, path)
	require.Error(t, err)
}

func TestFileLocker_Acquire_ExhaustsRetriesReturnsLockContention(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.lock")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	l := lock.New()
	_, err := l.Acquire(context.Background(), path)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrLockContention)
}

func TestFileLocker_Acquire_CancelledContextStopsWaiting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.lock")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	l := lock.New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := l.Acquire(ctx, path)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
