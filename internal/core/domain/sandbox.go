package domain

import "time"

// Sandbox is the resolved project root: its manifest plus its already
// installed dependency graph (§2, §Glossary).
type Sandbox struct {
	RootPackage *Package
	Graph       *Graph
	Dev         bool
}

// ManifestWitness is one (path, mtime-at-read) pair recorded while loading
// a manifest, used by the Sandbox-Info Cache to detect staleness (§4.7).
type ManifestWitness struct {
	Path  string
	MTime time.Time
}

// SandboxInfo is the on-disk-cacheable result of resolving a Sandbox and
// planning its root BuildTask (§3, §4.7).
type SandboxInfo struct {
	Sandbox      *Sandbox
	RootTask     *BuildTask
	CommandEnv   []string
	SandboxEnv   []string
	ManifestInfo []ManifestWitness
}
