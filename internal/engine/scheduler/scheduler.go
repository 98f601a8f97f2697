// Package scheduler runs a planned BuildTask graph to completion with a
// bounded concurrency, honoring force/buildOnly policy and first-failure-
// cancels-siblings semantics (§4.6).
package scheduler

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/semaphore"

	"go.forge.sh/esy/internal/core/domain"
	"go.forge.sh/esy/internal/core/ports"
	"go.trai.ch/zerr"
)

// Force selects how aggressively the Scheduler rebuilds nodes (§4.6).
type Force int

const (
	// ForceNo rebuilds only nodes the ordinary rebuild decision selects.
	ForceNo Force = iota
	// ForceForRoot rebuilds the root node unconditionally.
	ForceForRoot
	// ForceYes rebuilds every node unconditionally.
	ForceYes
)

// BuildOnly selects whether the root node's install phase is skipped
// (§4.6); dependencies always install regardless of this setting.
type BuildOnly int

const (
	// BuildOnlyNo runs the full build+install sequence for the root.
	BuildOnlyNo BuildOnly = iota
	// BuildOnlyForRoot runs the root's build commands but skips staging its
	// artifacts into installPath.
	BuildOnlyForRoot
)

// ErrCancelled is surfaced when an external cancellation stops the run
// before every node finishes (§4.6's Cancellation clause).
var ErrCancelled = zerr.New("build cancelled")

// Scheduler executes a planned BuildTask DAG via a BuilderAdapter.
type Scheduler struct {
	adapter  ports.BuilderAdapter
	verifier ports.Verifier
	progress ports.Progress
}

// New creates a Scheduler.
func New(adapter ports.BuilderAdapter, verifier ports.Verifier, progress ports.Progress) *Scheduler {
	return &Scheduler{adapter: adapter, verifier: verifier, progress: progress}
}

// Run executes root and its full dependency closure. Run parameters are
// never stored on the Scheduler itself (§9 Design Note: force/buildOnly/
// concurrency are per-invocation, not process-wide).
func (s *Scheduler) Run(ctx context.Context, cfg *domain.Config, root *domain.BuildTask, force Force, buildOnly BuildOnly, concurrency int) error {
	state := s.newRunState(ctx, cfg, root, force, buildOnly, concurrency)
	return state.run()
}

type runResult struct {
	taskID domain.TaskID
	err    error
}

type runState struct {
	s           *Scheduler
	ctx         context.Context
	cancel      context.CancelFunc
	cfg         *domain.Config
	root        *domain.BuildTask
	force       Force
	buildOnly   BuildOnly
	sem         *semaphore.Weighted

	all        map[domain.TaskID]*domain.BuildTask
	inDegree   map[domain.TaskID]int
	dependents map[domain.TaskID][]domain.TaskID

	mu      sync.Mutex
	ready   []domain.TaskID
	active  int
	resultsCh chan runResult
	firstErr  error
	stopped   bool
}

func (s *Scheduler) newRunState(ctx context.Context, cfg *domain.Config, root *domain.BuildTask, force Force, buildOnly BuildOnly, concurrency int) *runState {
	cctx, cancel := context.WithCancel(ctx)

	all := make(map[domain.TaskID]*domain.BuildTask)
	inDegree := make(map[domain.TaskID]int)
	dependents := make(map[domain.TaskID][]domain.TaskID)
	collectTasks(root, all, inDegree, dependents)

	var ready []domain.TaskID
	for id, degree := range inDegree {
		if degree == 0 {
			ready = append(ready, id)
		}
	}
	sortByPackageName(ready, all)

	return &runState{
		s: s, ctx: cctx, cancel: cancel, cfg: cfg, root: root, force: force, buildOnly: buildOnly,
		sem: semaphore.NewWeighted(int64(concurrency)),
		all: all, inDegree: inDegree, dependents: dependents,
		ready: ready, resultsCh: make(chan runResult, max(concurrency, 1)),
	}
}

// collectTasks walks the dependency DAG rooted at root, populating the
// in-degree and dependents indices the ready-queue needs.
func collectTasks(task *domain.BuildTask, all map[domain.TaskID]*domain.BuildTask, inDegree map[domain.TaskID]int, dependents map[domain.TaskID][]domain.TaskID) {
	if _, ok := all[task.ID]; ok {
		return
	}
	all[task.ID] = task
	inDegree[task.ID] = len(task.Dependencies)
	for _, dep := range task.Dependencies {
		dependents[dep.ID] = append(dependents[dep.ID], task.ID)
		collectTasks(dep, all, inDegree, dependents)
	}
}

func sortByPackageName(ids []domain.TaskID, all map[domain.TaskID]*domain.BuildTask) {
	sort.Slice(ids, func(i, j int) bool {
		return all[ids[i]].PackageName < all[ids[j]].PackageName
	})
}

func (state *runState) run() error {
	defer state.cancel()

	for {
		state.dispatch()

		state.mu.Lock()
		done := state.active == 0 && (len(state.ready) == 0 || state.ctx.Err() != nil)
		state.mu.Unlock()
		if done {
			break
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-state.ctx.Done():
			state.mu.Lock()
			stillActive := state.active > 0
			state.mu.Unlock()
			if stillActive {
				res := <-state.resultsCh
				state.handleResult(res)
			}
		}
	}

	if state.firstErr != nil {
		return state.firstErr
	}
	if state.ctx.Err() != nil {
		return ErrCancelled
	}
	return nil
}

func (state *runState) dispatch() {
	for {
		state.mu.Lock()
		if state.stopped || len(state.ready) == 0 || state.ctx.Err() != nil {
			state.mu.Unlock()
			return
		}
		if !state.sem.TryAcquire(1) {
			state.mu.Unlock()
			return
		}
		id := state.ready[0]
		state.ready = state.ready[1:]
		state.active++
		state.mu.Unlock()

		task := state.all[id]
		go func() {
			err := state.execute(task)
			state.sem.Release(1)
			state.resultsCh <- runResult{taskID: id, err: err}
		}()
	}
}

func (state *runState) execute(task *domain.BuildTask) error {
	isRoot := task.ID == state.root.ID
	decision := state.rebuildDecision(task, isRoot)

	state.s.progress.Started(task)

	if decision == decisionSkip {
		state.s.progress.Succeeded(task, true)
		return nil
	}

	buildTask := task
	if isRoot && state.buildOnly == BuildOnlyForRoot {
		buildTask = withoutInstallPath(task)
	}

	if err := state.s.adapter.Execute(state.ctx, state.cfg, buildTask, ports.ModeBuild, nil); err != nil {
		state.s.progress.Failed(task, err)
		return err
	}

	state.s.progress.Succeeded(task, false)
	return nil
}

// withoutInstallPath returns a shallow copy of task with InstallPath
// cleared, so the Builder Adapter's stage-rename step is a no-op for a
// buildOnly=ForRoot root (§4.6: "commands still fully run; the scheduler
// only affects whether staged artifacts are moved to installPath").
func withoutInstallPath(task *domain.BuildTask) *domain.BuildTask {
	out := *task
	out.InstallPath = ""
	return &out
}

type rebuildDecision int

const (
	decisionRebuild rebuildDecision = iota
	decisionSkip
)

// rebuildDecision implements §4.6's per-node rebuild rule.
func (state *runState) rebuildDecision(task *domain.BuildTask, isRoot bool) rebuildDecision {
	if state.force == ForceYes {
		return decisionRebuild
	}
	if state.force == ForceForRoot && isRoot {
		return decisionRebuild
	}

	installed, err := state.s.verifier.Exists(task.InstallPath)
	if err != nil || !installed {
		return decisionRebuild
	}

	switch task.SourceType {
	case domain.SourceTransient, domain.SourceImmutableWithTransient:
		return decisionRebuild
	default:
		return decisionSkip
	}
}

func (state *runState) handleResult(res runResult) {
	state.mu.Lock()
	state.active--

	if res.err != nil {
		wrapped := zerr.With(zerr.Wrap(res.err, "build failed"), "task_id", string(res.taskID))
		if state.firstErr == nil {
			state.firstErr = wrapped
		}
		state.stopped = true
		state.cancel()
		state.mu.Unlock()
		return
	}

	var newlyEligible []domain.TaskID
	for _, dependentID := range state.dependents[res.taskID] {
		state.inDegree[dependentID]--
		if state.inDegree[dependentID] == 0 {
			newlyEligible = append(newlyEligible, dependentID)
		}
	}
	sortByPackageName(newlyEligible, state.all)
	state.ready = append(state.ready, newlyEligible...)
	state.mu.Unlock()
}
