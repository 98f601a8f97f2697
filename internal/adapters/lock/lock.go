// Package lock implements an advisory, exclusive file lock (§6's
// `b/<id>.lock`) with the bounded exponential backoff §7 assigns to
// LockContention.
package lock

import (
	"context"
	"os"
	"time"

	"go.forge.sh/esy/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	maxAttempts  = 5
	initialDelay = 50 * time.Millisecond
)

// FileLocker implements ports.Locker with O_CREATE|O_EXCL lock files.
type FileLocker struct{}

// New creates a FileLocker.
func New() *FileLocker {
	return &FileLocker{}
}

// Acquire tries up to five times, waiting an exponentially increasing delay
// after each failed attempt, before giving up with ErrLockContention.
func (l *FileLocker) Acquire(ctx context.Context, path string) (func(), error) {
	delay := initialDelay

	for attempt := 0; attempt < maxAttempts; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644) //nolint:gosec // advisory lock path is derived from a planned BuildTask
		if err == nil {
			_ = f.Close()
			return func() { _ = os.Remove(path) }, nil
		}
		if !os.IsExist(err) {
			return nil, zerr.Wrap(err, "creating lock file")
		}

		select {
		case <-ctx.Done():
			return nil, zerr.Wrap(ctx.Err(), "waiting for lock")
		case <-time.After(delay):
		}
		delay *= 2
	}

	return nil, zerr.With(domain.ErrLockContention, "path", path)
}
