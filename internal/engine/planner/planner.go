// Package planner computes memoized BuildTasks from resolved Packages
// (§4.4): exported-env closure, three-environment composition, content-
// addressed task id, store-relative path derivation, and build/install
// command selection.
//
// A Planner is constructed per-sandbox by internal/app and scoped to one
// Graph; it is not a graft node, since its lifetime and memo are tied to a
// single build invocation rather than to the process.
package planner

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"go.forge.sh/esy/internal/core/domain"
	"go.forge.sh/esy/internal/core/ports"
	"go.forge.sh/esy/internal/engine/override"
)

// nonDevMask is the set of edge kinds a package's ordinary dependency
// closure traverses; EdgeDev is excluded except for the dev build-command
// substitution itself (Open Question 1 in DESIGN.md).
const nonDevMask = domain.EdgeRuntime | domain.EdgeBuild

// Planner plans BuildTasks for a Package graph. One Planner instance owns
// its own memo; it is never a package-level global (§9 Design Note).
type Planner struct {
	graph  *domain.Graph
	config *domain.Config
	hasher ports.FileHasher
	dev    bool

	mu       sync.Mutex
	tasks    map[domain.PackageID]*domain.BuildTask
	exposure map[domain.PackageID]envExposure
	inflight map[domain.PackageID]chan struct{}

	sandboxOnce sync.Once
	sandboxEnv  []string

	Warnings []string
}

// New creates a Planner. dev resolves Open Question 1: when true, every
// package's BuildDev commands replace Build commands sandbox-wide.
func New(graph *domain.Graph, config *domain.Config, hasher ports.FileHasher, dev bool) *Planner {
	return &Planner{
		graph:    graph,
		config:   config,
		hasher:   hasher,
		dev:      dev,
		tasks:    make(map[domain.PackageID]*domain.BuildTask),
		exposure: make(map[domain.PackageID]envExposure),
		inflight: make(map[domain.PackageID]chan struct{}),
	}
}

// Plan returns the memoized BuildTask for pkg, planning its dependencies
// first (§4.4 step 1).
func (p *Planner) Plan(ctx context.Context, pkg *domain.Package) (*domain.BuildTask, error) {
	id := pkg.ID()

	p.mu.Lock()
	if t, ok := p.tasks[id]; ok {
		p.mu.Unlock()
		return t, nil
	}
	if wait, ok := p.inflight[id]; ok {
		p.mu.Unlock()
		<-wait
		p.mu.Lock()
		t := p.tasks[id]
		p.mu.Unlock()
		return t, nil
	}
	done := make(chan struct{})
	p.inflight[id] = done
	p.mu.Unlock()

	task, err := p.planLocked(ctx, pkg)

	p.mu.Lock()
	if err == nil {
		p.tasks[id] = task
	}
	delete(p.inflight, id)
	p.mu.Unlock()
	close(done)

	return task, err
}

func (p *Planner) planLocked(ctx context.Context, pkg *domain.Package) (*domain.BuildTask, error) {
	deps, err := p.graph.IterDependencies(pkg, nonDevMask)
	if err != nil {
		return nil, err
	}

	depTasks := make([]*domain.BuildTask, len(deps))
	group, gctx := errgroup.WithContext(ctx)
	for i, d := range deps {
		i, d := i, d
		group.Go(func() error {
			t, err := p.Plan(gctx, d.Package)
			if err != nil {
				return err
			}
			depTasks[i] = t
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	manifest := override.FoldAll(pkg.Manifest, pkg.Overrides)

	exposure := p.closeExportedEnv(pkg, deps)
	p.mu.Lock()
	p.exposure[pkg.ID()] = exposure
	p.mu.Unlock()

	id, err := p.computeTaskID(pkg, manifest, depTasks)
	if err != nil {
		return nil, err
	}

	task := &domain.BuildTask{
		ID:             id,
		PackageName:    pkg.Name,
		PackageVersion: pkg.Version,
		SourceType:     pkg.SourceType,
		Patches:        manifest.Patches,
		Substs:         manifest.Substs,
		Dependencies:   depTasks,
	}
	p.derivePaths(task, pkg, id)
	p.selectCommands(task, manifest)

	env, err := p.composeEnvs(pkg, manifest, deps, depTasks, task)
	if err != nil {
		return nil, err
	}
	task.Env = env

	return task, nil
}

// sortedDepIDs returns dependency task ids sorted ascending, used by
// computeTaskID and the cur__depends build-env variable.
func sortedDepIDs(depTasks []*domain.BuildTask) []string {
	ids := make([]string, len(depTasks))
	for i, t := range depTasks {
		ids[i] = string(t.ID)
	}
	sort.Strings(ids)
	return ids
}
