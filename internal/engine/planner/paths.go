package planner

import (
	"path/filepath"

	"go.forge.sh/esy/internal/core/domain"
)

// derivePaths implements §4.4 step 5: buildPath/stagePath/installPath are
// derived from the task's own id under the store root appropriate for the
// package's source type; Transient sources use localStorePath.
func (p *Planner) derivePaths(task *domain.BuildTask, pkg *domain.Package, id domain.TaskID) {
	root := p.config.StoreRootFor(pkg.SourceType)
	task.SourcePath = pkg.SourcePath
	task.BuildPath = filepath.Join(root, "b", string(id))
	task.StagePath = filepath.Join(root, "s", string(id))
	task.InstallPath = filepath.Join(root, "i", string(id))
}

// selectCommands implements §4.4 step 6: build-dev replaces build only when
// the Planner was constructed with dev=true and the manifest carries a
// non-empty BuildDev list.
func (p *Planner) selectCommands(task *domain.BuildTask, manifest *domain.BuildManifest) {
	build := manifest.Build
	if p.dev && !manifest.BuildDev.IsEmpty() {
		build = manifest.BuildDev
	}

	task.Plan.Build = build.Commands
	task.Plan.Install = manifest.Install.Commands
}
