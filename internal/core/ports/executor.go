// Package ports defines the core interfaces the build orchestration core
// consumes from the outside world.
package ports

import (
	"context"

	"go.forge.sh/esy/internal/core/domain"
)

// BuildMode selects what a BuilderAdapter invocation does with a BuildTask
// (§4.8).
type BuildMode int

const (
	// ModeBuild runs the task's full build/install command sequence and, on
	// success, renames stagePath to installPath.
	ModeBuild BuildMode = iota
	// ModeBuildShell drops the caller into an interactive shell inside the
	// task's build environment instead of running its commands.
	ModeBuildShell
	// ModeExec runs a single caller-supplied command inside the task's
	// command environment.
	ModeExec
)

// AdapterErrorCategory classifies a BuilderAdapter failure (§4.8).
type AdapterErrorCategory string

const (
	// CategoryExitNonZero marks a spawned command that exited non-zero.
	CategoryExitNonZero AdapterErrorCategory = "exit-non-zero"
	// CategorySpawn marks a failure to start a command at all.
	CategorySpawn AdapterErrorCategory = "spawn"
	// CategorySandbox marks a failure preparing the build/stage directories.
	CategorySandbox AdapterErrorCategory = "sandbox"
	// CategoryPatch marks a failure applying a patch.
	CategoryPatch AdapterErrorCategory = "patch"
	// CategorySubst marks a failure applying a template substitution.
	CategorySubst AdapterErrorCategory = "subst"
)

// AdapterError is the detailed failure a BuilderAdapter reports.
type AdapterError struct {
	Category AdapterErrorCategory
	Detail   string
}

func (e *AdapterError) Error() string {
	return string(e.Category) + ": " + e.Detail
}

// BuilderAdapter invokes a single package's build plan. It is opaque to the
// Scheduler: the low-level sandboxed process spawner is an external
// collaborator (§1); the adapter is the only seam the core defines.
//
//go:generate go run go.uber.org/mock/mockgen -source=executor.go -destination=mocks/mock_executor.go -package=mocks
type BuilderAdapter interface {
	// Execute runs task under mode. command is only meaningful for
	// ModeExec. Returns an *AdapterError on failure.
	Execute(ctx context.Context, cfg *domain.Config, task *domain.BuildTask, mode BuildMode, command domain.Command) error
}
