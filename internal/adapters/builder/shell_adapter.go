// Package builder provides BuilderAdapter implementations: ShellAdapter runs
// a BuildTask's commands via os/exec, and FakeAdapter records invocations for
// tests (§4.8).
package builder

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.forge.sh/esy/internal/adapters/patch"
	"go.forge.sh/esy/internal/core/domain"
	"go.forge.sh/esy/internal/core/ports"
	"go.trai.ch/zerr"
)

// ShellAdapter implements ports.BuilderAdapter using os/exec, grounded on
// the teacher's shell executor's environment-merge and PATH-cons idiom.
type ShellAdapter struct {
	logger  ports.Logger
	patcher *patch.Applier
	locker  ports.Locker
}

// NewShellAdapter creates a new ShellAdapter.
func NewShellAdapter(logger ports.Logger, patcher *patch.Applier, locker ports.Locker) *ShellAdapter {
	return &ShellAdapter{logger: logger, patcher: patcher, locker: locker}
}

var _ ports.BuilderAdapter = (*ShellAdapter)(nil)

// Execute implements ports.BuilderAdapter (§4.8's "materialize source into
// buildPath, apply patches and substs, run build, run install, rename
// stagePath to installPath" contract).
func (a *ShellAdapter) Execute(ctx context.Context, cfg *domain.Config, task *domain.BuildTask, mode ports.BuildMode, command domain.Command) error {
	switch mode {
	case ports.ModeExec:
		return a.runCommand(ctx, command, task.BuildPath, task.Env.Command)
	case ports.ModeBuildShell:
		shell := shellCommand()
		return a.runCommand(ctx, shell, task.BuildPath, task.Env.Build)
	case ports.ModeBuild:
		return a.build(ctx, task)
	default:
		return &ports.AdapterError{Category: ports.CategorySpawn, Detail: "unknown build mode"}
	}
}

func (a *ShellAdapter) build(ctx context.Context, task *domain.BuildTask) error {
	if a.locker != nil && task.BuildPath != "" {
		release, err := a.locker.Acquire(ctx, task.BuildPath+".lock")
		if err != nil {
			return &ports.AdapterError{Category: ports.CategorySandbox, Detail: err.Error()}
		}
		defer release()
	}

	if err := a.materialize(task); err != nil {
		return &ports.AdapterError{Category: ports.CategorySandbox, Detail: err.Error()}
	}

	if err := a.patcher.ApplyPatches(task.BuildPath, task.SourcePath, task.Patches); err != nil {
		return &ports.AdapterError{Category: ports.CategoryPatch, Detail: err.Error()}
	}

	if err := a.patcher.ApplySubsts(task.BuildPath, task.Substs, envMap(task.Env.Build)); err != nil {
		return &ports.AdapterError{Category: ports.CategorySubst, Detail: err.Error()}
	}

	for _, cmd := range task.Plan.Build {
		if err := a.runCommand(ctx, cmd, task.BuildPath, task.Env.Build); err != nil {
			return err
		}
	}

	if len(task.Plan.Install) > 0 {
		if err := os.MkdirAll(task.StagePath, 0o755); err != nil {
			return &ports.AdapterError{Category: ports.CategorySandbox, Detail: err.Error()}
		}
		for _, cmd := range task.Plan.Install {
			if err := a.runCommand(ctx, cmd, task.BuildPath, task.Env.Build); err != nil {
				return err
			}
		}
	}

	if task.StagePath == "" || task.InstallPath == "" {
		return nil
	}
	if _, err := os.Stat(task.StagePath); os.IsNotExist(err) {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(task.InstallPath), 0o755); err != nil {
		return &ports.AdapterError{Category: ports.CategorySandbox, Detail: err.Error()}
	}
	if err := os.Rename(task.StagePath, task.InstallPath); err != nil {
		return &ports.AdapterError{Category: ports.CategorySandbox, Detail: err.Error()}
	}
	return nil
}

// materialize copies SourcePath into BuildPath unless BuildPath is empty or
// equal to SourcePath. The manifest's build type is not consulted, so
// in-source builds also run against the copy in BuildPath.
func (a *ShellAdapter) materialize(task *domain.BuildTask) error {
	if task.BuildPath == "" || task.BuildPath == task.SourcePath {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(task.BuildPath), 0o755); err != nil {
		return err
	}
	return os.CopyFS(task.BuildPath, os.DirFS(task.SourcePath))
}

func (a *ShellAdapter) runCommand(ctx context.Context, command domain.Command, dir string, env []string) error {
	if len(command) == 0 {
		return nil
	}

	name := command[0]
	args := command[1:]

	executable := name
	if !filepath.IsAbs(name) {
		if lp, err := lookPath(name, env); err == nil {
			executable = lp
		}
	}

	//nolint:gosec // command originates from a resolved, planned BuildTask
	cmd := exec.CommandContext(ctx, executable, args...)
	if len(cmd.Args) > 0 {
		cmd.Args[0] = name
	}
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdout = &logWriter{logger: a.logger, isError: false}
	cmd.Stderr = &logWriter{logger: a.logger, isError: true}

	if err := cmd.Run(); err != nil {
		exitCode := -1
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
		category := ports.CategoryExitNonZero
		if exitCode < 0 {
			category = ports.CategorySpawn
		}
		return &ports.AdapterError{Category: category, Detail: zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitCode).Error()}
	}
	return nil
}

type logWriter struct {
	logger  ports.Logger
	isError bool
}

func (w *logWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimSuffix(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}
		if w.isError {
			w.logger.Error(zerr.New(line))
		} else {
			w.logger.Info(line)
		}
	}
	return len(p), nil
}

func envMap(env []string) map[string]string {
	out := make(map[string]string, len(env))
	for _, e := range env {
		if k, v, ok := strings.Cut(e, "="); ok {
			out[k] = v
		}
	}
	return out
}

func lookPath(file string, env []string) (string, error) {
	var path string
	for _, e := range env {
		if rest, ok := strings.CutPrefix(e, "PATH="); ok {
			path = rest
			break
		}
	}
	if path == "" {
		return "", exec.ErrNotFound
	}
	for _, dir := range filepath.SplitList(path) {
		if dir == "" {
			dir = "."
		}
		candidate := filepath.Join(dir, file)
		if isExecutable(candidate) {
			return candidate, nil
		}
	}
	return "", exec.ErrNotFound
}

func isExecutable(path string) bool {
	d, err := os.Stat(path)
	if err != nil {
		return false
	}
	m := d.Mode()
	return !m.IsDir() && m&0o111 != 0
}

func shellCommand() domain.Command {
	if sh := os.Getenv("SHELL"); sh != "" {
		return domain.Command{sh}
	}
	return domain.Command{"/bin/sh"}
}
