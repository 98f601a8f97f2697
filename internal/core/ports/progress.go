package ports

import "go.forge.sh/esy/internal/core/domain"

// Progress is the Scheduler's side-channel for reporting per-node lifecycle
// events (§4.6), independent of any terminal rendering (out of scope, §1).
//
//go:generate go run go.uber.org/mock/mockgen -source=progress.go -destination=mocks/mock_progress.go -package=mocks
type Progress interface {
	// Started reports that task's build has begun.
	Started(task *domain.BuildTask)
	// Succeeded reports that task's build finished, noting whether it was
	// served from cache rather than actually executed.
	Succeeded(task *domain.BuildTask, fromCache bool)
	// Failed reports that task's build failed with err.
	Failed(task *domain.BuildTask, err error)
}
