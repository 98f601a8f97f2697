package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.forge.sh/esy/internal/core/domain"
)

// envBinding is one exported-env value together with the bookkeeping the
// collision rule needs: global-over-local, then deepest-package wins, then
// lexicographic-by-package-name (§4.4 step 2, Open Question 2).
type envBinding struct {
	Value       string
	Scope       domain.EnvScope
	Depth       int
	PackageName string
}

// envExposure is what a planned package contributes to its dependents.
// Direct is visible to direct dependents only (both local and global
// entries); Transitive holds only the global entries, which keep
// propagating to dependents of dependents.
type envExposure struct {
	Direct     map[string]envBinding
	Transitive map[string]envBinding
}

// closeExportedEnv implements §4.4 step 2.
func (p *Planner) closeExportedEnv(pkg *domain.Package, deps []domain.DependencyEdge) envExposure {
	direct := make(map[string]envBinding, len(pkg.Manifest.ExportedEnv))
	for name, entry := range pkg.Manifest.ExportedEnv {
		p.mergeBinding(direct, name, envBinding{
			Value: entry.Value, Scope: entry.Scope, Depth: 0, PackageName: pkg.Name,
		})
	}

	for _, d := range deps {
		depExposure := p.exposure[d.Package.ID()]
		for name, b := range depExposure.Transitive {
			b.Depth++
			p.mergeBinding(direct, name, b)
		}
	}

	transitive := make(map[string]envBinding, len(direct))
	for name, b := range direct {
		if b.Scope == domain.ScopeGlobal {
			transitive[name] = b
		}
	}

	return envExposure{Direct: direct, Transitive: transitive}
}

// mergeBinding resolves a collision in place, recording a warning (never an
// error, per §4.4 step 2) when an existing binding is replaced or kept over
// a conflicting candidate.
func (p *Planner) mergeBinding(into map[string]envBinding, name string, candidate envBinding) {
	existing, ok := into[name]
	if !ok {
		into[name] = candidate
		return
	}
	winner := existing
	if candidate.Scope != existing.Scope {
		if candidate.Scope == domain.ScopeGlobal {
			winner = candidate
		}
	} else if candidate.Depth != existing.Depth {
		if candidate.Depth > existing.Depth {
			winner = candidate
		}
	} else if candidate.PackageName < existing.PackageName {
		winner = candidate
	}
	if winner != existing {
		p.Warnings = append(p.Warnings, fmt.Sprintf(
			"exported-env collision on %q: %s (depth %d) over %s (depth %d)",
			name, winner.PackageName, winner.Depth, existing.PackageName, existing.Depth))
	}
	into[name] = winner
}

// sandboxGlobalEnv computes the sandbox-wide global exported-env set §4.4
// step 3 names: the platform-minimal environment plus every global-scope
// exported-env entry from every package in the full build, not just the
// planned package's own dependency subtree. It is computed once per
// Planner and shared by every task's sandbox-env.
func (p *Planner) sandboxGlobalEnv() []string {
	p.sandboxOnce.Do(func() {
		globals := make(map[string]envBinding)
		for _, pkg := range p.graph.Packages() {
			for name, entry := range pkg.Manifest.ExportedEnv {
				if entry.Scope != domain.ScopeGlobal {
					continue
				}
				p.mergeBinding(globals, name, envBinding{
					Value: entry.Value, Scope: entry.Scope, PackageName: pkg.Name,
				})
			}
		}

		env := platformMinimal()
		for _, b := range sortedBindings(globals) {
			env = setEnv(env, b.name, b.binding.Value)
		}
		p.sandboxEnv = env
	})
	return p.sandboxEnv
}

// composeEnvs implements §4.4 step 3. task must already have its paths
// derived (derivePaths), since the build-only cur__* variables reference
// BuildPath/StagePath/InstallPath.
func (p *Planner) composeEnvs(pkg *domain.Package, manifest *domain.BuildManifest, deps []domain.DependencyEdge, depTasks []*domain.BuildTask, task *domain.BuildTask) (domain.Environments, error) {
	sandbox := append([]string(nil), p.sandboxGlobalEnv()...)

	command := append([]string(nil), sandbox...)
	for k, v := range manifest.BuildEnv {
		command = setEnv(command, k, v)
	}
	for _, d := range deps {
		depExposure := p.exposure[d.Package.ID()]
		for _, b := range sortedBindings(depExposure.Direct) {
			command = setEnv(command, b.name, b.binding.Value)
		}
	}

	build := append([]string(nil), command...)
	vars := p.buildOnlyVars(pkg, depTasks, task)
	for _, name := range buildOnlyVarOrder {
		build = setEnv(build, name, vars[name])
	}

	return domain.Environments{Sandbox: sandbox, Command: command, Build: build}, nil
}

// buildOnlyVarOrder fixes the order buildOnlyVars' entries are applied in,
// so Build's slice layout is deterministic across runs.
var buildOnlyVarOrder = []string{
	"cur__name", "cur__version", "cur__depends",
	"cur__root", "cur__toplevel", "cur__target_dir", "cur__install", "cur__stage",
	"cur__bin", "cur__sbin", "cur__lib", "cur__man", "cur__doc", "cur__share", "cur__etc",
}

// buildOnlyVars computes the cur__* variables §4.4 step 3 names: identity,
// the dependency closure, and the store paths task was just assigned by
// derivePaths, plus the conventional install subdirectories built from
// installPath.
func (p *Planner) buildOnlyVars(pkg *domain.Package, depTasks []*domain.BuildTask, task *domain.BuildTask) map[string]string {
	return map[string]string{
		"cur__name":       pkg.Name,
		"cur__version":    pkg.Version,
		"cur__depends":    strings.Join(sortedDepIDs(depTasks), " "),
		"cur__root":       pkg.SourcePath,
		"cur__toplevel":   p.config.SandboxPath,
		"cur__target_dir": task.BuildPath,
		"cur__install":    task.InstallPath,
		"cur__stage":      task.StagePath,
		"cur__bin":        filepath.Join(task.InstallPath, "bin"),
		"cur__sbin":       filepath.Join(task.InstallPath, "sbin"),
		"cur__lib":        filepath.Join(task.InstallPath, "lib"),
		"cur__man":        filepath.Join(task.InstallPath, "man"),
		"cur__doc":        filepath.Join(task.InstallPath, "doc"),
		"cur__share":      filepath.Join(task.InstallPath, "share"),
		"cur__etc":        filepath.Join(task.InstallPath, "etc"),
	}
}

func platformMinimal() []string {
	var env []string
	for _, name := range []string{"PATH", "SHELL", "HOME"} {
		if v, ok := os.LookupEnv(name); ok {
			env = append(env, name+"="+v)
		}
	}
	return env
}

// setEnv assigns name=value in env, with PATH cons (prepend) semantics
// (§4.5) rather than outright replacement.
func setEnv(env []string, name, value string) []string {
	prefix := name + "="
	for i, e := range env {
		if strings.HasPrefix(e, prefix) {
			if name == "PATH" {
				existing := strings.TrimPrefix(e, prefix)
				env[i] = prefix + value + string(os.PathListSeparator) + existing
			} else {
				env[i] = prefix + value
			}
			return env
		}
	}
	return append(env, prefix+value)
}

type namedBinding struct {
	name    string
	binding envBinding
}

func sortedBindings(m map[string]envBinding) []namedBinding {
	out := make([]namedBinding, 0, len(m))
	for k, v := range m {
		out = append(out, namedBinding{name: k, binding: v})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}
