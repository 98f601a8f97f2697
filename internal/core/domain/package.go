// Package domain contains the core domain models for the build orchestration
// core: packages, manifests, the dependency graph, build tasks, and
// environments.
package domain

import "fmt"

// SourceType classifies how a package's installed source behaves across
// invocations, which drives the Scheduler's rebuild decision (§4.6).
type SourceType string

const (
	// SourceImmutable packages are never rebuilt once installed.
	SourceImmutable SourceType = "immutable"
	// SourceImmutableWithTransient packages are rebuilt on every request,
	// like SourceTransient ones.
	SourceImmutableWithTransient SourceType = "immutable-with-transient"
	// SourceTransient packages are rebuilt on every request.
	SourceTransient SourceType = "transient"
)

// EdgeKind distinguishes the three dependency relationships a Package may
// have with another Package.
type EdgeKind int

const (
	// EdgeRuntime is a regular runtime dependency.
	EdgeRuntime EdgeKind = 1 << iota
	// EdgeBuild is a build-time-only dependency.
	EdgeBuild
	// EdgeDev is a development-only dependency, present only when building
	// the root package in dev mode.
	EdgeDev
)

// EdgeAll matches every edge kind; used as the default IterDependencies mask.
const EdgeAll = EdgeRuntime | EdgeBuild | EdgeDev

// PackageID identifies a Package uniquely within a single planning
// invocation. It is derived from (name, version, source-digest).
type PackageID string

// Edge is one typed dependency pointer from a Package to another.
type Edge struct {
	Kind EdgeKind
	To   PackageID
}

// Package is a fully resolved package as produced by the (out of scope)
// installer/resolver: identity, source location, the override stack to
// apply to its manifest, and its typed dependency edges.
type Package struct {
	Name         string
	Version      string
	SourceDigest string
	SourceType   SourceType
	SourcePath   string
	Overrides    []BuildOverride
	Manifest     *BuildManifest
	Edges        []Edge
}

// ID returns the package's stable identity string.
func (p *Package) ID() PackageID {
	return PackageID(fmt.Sprintf("%s@%s#%s", p.Name, p.Version, p.SourceDigest))
}

// DependencyIDs returns the target ids of every edge matching mask, in
// graph-insertion order (callers wanting the deterministic (name, version)
// order specified by §4.3 should use Graph.IterDependencies instead, which
// resolves ids to Packages and sorts).
func (p *Package) DependencyIDs(mask EdgeKind) []PackageID {
	var ids []PackageID
	for _, e := range p.Edges {
		if e.Kind&mask != 0 {
			ids = append(ids, e.To)
		}
	}
	return ids
}
