package ports

import "context"

// Locker takes an advisory, exclusive lock on a path for the duration of a
// build step, so two invocations racing to build the same task id don't
// clobber each other's working directory (§6's `b/<id>.lock`).
//
//go:generate go run go.uber.org/mock/mockgen -source=locker.go -destination=mocks/mock_locker.go -package=mocks
type Locker interface {
	// Acquire blocks (with bounded retry) until path is locked or ctx is
	// done, returning a release function to call when the caller is done.
	Acquire(ctx context.Context, path string) (release func(), err error)
}
