package domain

import "go.trai.ch/zerr"

// Sentinel errors for the build orchestration core. Each is wrapped with
// zerr.With/zerr.Wrap at the call site to stack the per-operation context
// that makes the rendered error chain useful on stderr.
var (
	// ErrManifestMissing is returned when an explicitly hinted manifest file
	// does not exist on disk.
	ErrManifestMissing = zerr.New("manifest missing")

	// ErrManifestParse is returned when an esy manifest is malformed JSON or
	// holds a command list of the wrong shape, or when an unknown manifest
	// kind is requested. The opam parser skips lines it does not recognise
	// and does not return it.
	ErrManifestParse = zerr.New("manifest parse error")

	// ErrCyclicDependency is returned when the package graph contains a cycle.
	ErrCyclicDependency = zerr.New("cyclic dependency")

	// ErrPackageAlreadyExists is returned when a package with the same id is
	// added to a Graph twice.
	ErrPackageAlreadyExists = zerr.New("package already exists")

	// ErrPackageNotFound is returned when a requested package id is absent
	// from a Graph.
	ErrPackageNotFound = zerr.New("package not found")

	// ErrMissingDependency is returned when a package references a
	// dependency id that is absent from the graph.
	ErrMissingDependency = zerr.New("missing dependency")

	// ErrUnknownEnvRef is returned when an environment binding references a
	// name that is not present anywhere earlier in the closure.
	ErrUnknownEnvRef = zerr.New("unknown environment reference")

	// ErrBuildFailed names the build-failure error kind. The Scheduler does
	// not return it: it wraps the adapter's own error with the message
	// "build failed" and a task_id key.
	ErrBuildFailed = zerr.New("build failed")

	// ErrCancelled names the cancellation error kind. The Scheduler does not
	// return it: it returns scheduler.ErrCancelled when an external
	// cancellation stops a run, and the first build failure when a failure
	// cancels the remaining work.
	ErrCancelled = zerr.New("cancelled")

	// ErrCacheIOError marks a non-fatal cache read/write failure; callers
	// degrade to full recomputation rather than propagating this error.
	ErrCacheIOError = zerr.New("cache io error")

	// ErrLockContention is returned after exhausting the bounded retry
	// policy for an advisory store lock.
	ErrLockContention = zerr.New("lock contention")

	// ErrUnsupportedMode names the unsupported-builder-mode error kind.
	// ShellAdapter does not return it: it reports an unknown mode as an
	// AdapterError of category spawn.
	ErrUnsupportedMode = zerr.New("unsupported builder mode")
)
