// Package app wires the build orchestration core's components into the
// three operations a CLI surface drives: building a sandbox's root
// package, dropping into its build environment's interactive shell, and
// running a single command inside that environment (§4.8's three
// BuilderAdapter modes).
package app

import (
	"context"

	"go.forge.sh/esy/internal/core/domain"
	"go.forge.sh/esy/internal/core/ports"
	"go.forge.sh/esy/internal/engine/planner"
	"go.forge.sh/esy/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// App ties the Config loader, Manifest loader, Task Planner, Sandbox-Info
// Cache, and Scheduler together into the operations a CLI entrypoint calls.
type App struct {
	configLoader   ports.ConfigLoader
	manifestLoader ports.ManifestLoader
	hasher         ports.FileHasher
	cache          ports.SandboxCache
	scheduler      *scheduler.Scheduler
	builder        ports.BuilderAdapter
	tracer         ports.Tracer
}

// New creates an App from its constituent ports.
func New(
	configLoader ports.ConfigLoader,
	manifestLoader ports.ManifestLoader,
	hasher ports.FileHasher,
	cache ports.SandboxCache,
	sched *scheduler.Scheduler,
	builder ports.BuilderAdapter,
	tracer ports.Tracer,
) *App {
	return &App{
		configLoader:   configLoader,
		manifestLoader: manifestLoader,
		hasher:         hasher,
		cache:          cache,
		scheduler:      sched,
		builder:        builder,
		tracer:         tracer,
	}
}

// resolve loads Config and the root BuildTask for the sandbox rooted at
// cwd, reusing a cached SandboxInfo when its manifest witnesses are still
// fresh (§4.7) and replanning from scratch otherwise.
func (a *App) resolve(ctx context.Context, cwd string, dev bool) (*domain.Config, *domain.BuildTask, error) {
	cfg, err := a.configLoader.Load(cwd)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "loading configuration")
	}

	if info, ok := a.cache.Read(cfg); ok && info.Sandbox.Dev == dev {
		return cfg, info.RootTask, nil
	}

	manifest, witnesses, err := a.manifestLoader.LoadFromPath(cfg.SandboxPath, nil)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "loading manifest")
	}
	if manifest == nil {
		return nil, nil, zerr.With(domain.ErrManifestMissing, "dir", cfg.SandboxPath)
	}

	root := &domain.Package{
		Name:       manifest.Name,
		Version:    manifest.Version,
		SourceType: domain.SourceImmutable,
		SourcePath: cfg.SandboxPath,
		Manifest:   manifest,
	}

	graph := domain.NewGraph()
	if err := graph.AddPackage(root); err != nil {
		return nil, nil, zerr.Wrap(err, "building package graph")
	}

	plan := planner.New(graph, cfg, a.hasher, dev)
	task, err := plan.Plan(ctx, root)
	if err != nil {
		return nil, nil, zerr.Wrap(err, "planning root build task")
	}

	info := &domain.SandboxInfo{
		Sandbox:  &domain.Sandbox{RootPackage: root, Graph: graph, Dev: dev},
		RootTask: task,
	}
	for path, mtime := range witnesses {
		info.ManifestInfo = append(info.ManifestInfo, domain.ManifestWitness{Path: path, MTime: mtime})
	}
	// CacheIOError is non-fatal (§7); Store.Write already logs and
	// swallows its own write failures, so the build proceeds either way.
	_ = a.cache.Write(cfg, info)

	return cfg, task, nil
}

// Build plans and schedules the sandbox rooted at cwd, honoring force and
// buildOnly exactly as the Scheduler specifies them.
func (a *App) Build(ctx context.Context, cwd string, dev bool, force scheduler.Force, buildOnly scheduler.BuildOnly, concurrency int) error {
	ctx, span := a.tracer.Start(ctx, "app.Build")
	defer span.End()

	cfg, task, err := a.resolve(ctx, cwd, dev)
	if err != nil {
		span.RecordError(err)
		return err
	}

	if err := a.scheduler.Run(ctx, cfg, task, force, buildOnly, concurrency); err != nil {
		span.RecordError(err)
		return zerr.Wrap(err, "build execution failed")
	}
	return nil
}

// Shell runs the sandbox's root task in its build environment's
// interactive shell (§4.8's ModeBuildShell). It does not build the root
// task or its dependencies first.
func (a *App) Shell(ctx context.Context, cwd string, dev bool) error {
	cfg, task, err := a.resolve(ctx, cwd, dev)
	if err != nil {
		return err
	}
	return a.builder.Execute(ctx, cfg, task, ports.ModeBuildShell, nil)
}

// Exec runs command inside the sandbox's root task's command environment
// (§4.8's ModeExec).
func (a *App) Exec(ctx context.Context, cwd string, dev bool, command domain.Command) error {
	cfg, task, err := a.resolve(ctx, cwd, dev)
	if err != nil {
		return err
	}
	return a.builder.Execute(ctx, cfg, task, ports.ModeExec, command)
}
