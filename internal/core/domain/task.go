package domain

// Environments bundles the three environment layers a BuildTask carries
// (§3, §4.4 step 3): sandbox-env is the platform minimum plus the global
// exported-env closure, command-env adds the package's own build-env and
// its direct dependencies' exported-env, and build-env adds the cur__*
// build-only variables.
type Environments struct {
	Sandbox []string
	Command []string
	Build   []string
}

// BuildTask is the planned, content-addressed unit of work for one Package
// (§3). Its Dependencies are the already-planned tasks of its dependencies,
// in (name, version) order; ID folds in their ids sorted ascending instead.
type BuildTask struct {
	ID TaskID

	PackageName    string
	PackageVersion string
	SourceType     SourceType

	Plan struct {
		Build   []Command
		Install []Command
	}

	Patches []PatchEntry
	Substs  []string

	SourcePath  string
	BuildPath   string
	StagePath   string
	InstallPath string

	Env Environments

	Dependencies []*BuildTask
}

// TaskID is a hex digest uniquely identifying a BuildTask's reproducible
// input (§3's BuildTask.id invariant).
type TaskID string

// Config holds the path and versioning configuration that the Task Planner
// and Scheduler need (§3).
type Config struct {
	PrefixPath     string
	StorePath      string
	LocalStorePath string
	SandboxPath    string
	EsyVersion     string
	StoreVersion   string
	StorePadding   int
}

// StoreRootFor returns the store subtree a package's build artifacts live
// under: LocalStorePath for Transient sources, StorePath otherwise (§4.4
// step 5).
func (c *Config) StoreRootFor(st SourceType) string {
	if st == SourceTransient {
		return c.LocalStorePath
	}
	return c.StorePath
}
