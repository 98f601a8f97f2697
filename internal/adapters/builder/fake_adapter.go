package builder

import (
	"context"
	"sync"

	"go.forge.sh/esy/internal/core/domain"
	"go.forge.sh/esy/internal/core/ports"
)

// Invocation records one FakeAdapter.Execute call.
type Invocation struct {
	TaskID      domain.TaskID
	Mode        ports.BuildMode
	Command     domain.Command
	InstallPath string
}

// FakeAdapter is a hand-written recording fake for the Builder Adapter
// contract (§4.8: "testing uses a fake that records invocations and returns
// pre-programmed outcomes").
type FakeAdapter struct {
	mu          sync.Mutex
	invocations []Invocation
	outcomes    map[domain.TaskID]error
}

// NewFakeAdapter creates a FakeAdapter with no pre-programmed outcomes;
// every Execute call succeeds unless Fail has been called for that task id.
func NewFakeAdapter() *FakeAdapter {
	return &FakeAdapter{outcomes: make(map[domain.TaskID]error)}
}

var _ ports.BuilderAdapter = (*FakeAdapter)(nil)

// Fail pre-programs Execute to return err for the given task id.
func (f *FakeAdapter) Fail(id domain.TaskID, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.outcomes[id] = err
}

// Execute implements ports.BuilderAdapter.
func (f *FakeAdapter) Execute(_ context.Context, _ *domain.Config, task *domain.BuildTask, mode ports.BuildMode, command domain.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invocations = append(f.invocations, Invocation{TaskID: task.ID, Mode: mode, Command: command, InstallPath: task.InstallPath})
	return f.outcomes[task.ID]
}

// Invocations returns a copy of the recorded invocations in call order.
func (f *FakeAdapter) Invocations() []Invocation {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Invocation(nil), f.invocations...)
}
