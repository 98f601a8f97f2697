// Package domain contains the core domain models and business logic for the
// package dependency graph, build manifests, and build tasks.
package domain

import (
	"bytes"
	"encoding/gob"
	"iter"
	"sort"

	"go.trai.ch/zerr"
)

// Graph is an in-memory DAG of resolved Packages keyed by PackageID, with
// typed dependency edges (§4.3).
type Graph struct {
	packages       map[PackageID]*Package
	executionOrder []PackageID
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		packages: make(map[PackageID]*Package),
	}
}

// AddPackage adds a package to the graph. It returns an error if a package
// with the same id already exists.
func (g *Graph) AddPackage(p *Package) error {
	id := p.ID()
	if _, exists := g.packages[id]; exists {
		return zerr.With(ErrPackageAlreadyExists, "package_id", string(id))
	}
	g.packages[id] = p
	return nil
}

// Package looks up a package by id.
func (g *Graph) Package(id PackageID) (*Package, error) {
	p, ok := g.packages[id]
	if !ok {
		return nil, zerr.With(ErrPackageNotFound, "package_id", string(id))
	}
	return p, nil
}

// PackageCount returns the number of packages in the graph.
func (g *Graph) PackageCount() int {
	return len(g.packages)
}

// Packages returns every package in the graph, in no particular order. Used
// by the Task Planner to compute sandbox-wide state (the global exported-env
// closure) that spans the whole build rather than one package's own
// dependency subtree.
func (g *Graph) Packages() []*Package {
	out := make([]*Package, 0, len(g.packages))
	for _, p := range g.packages {
		out = append(out, p)
	}
	return out
}

// IterDependencies returns the (edge kind, package) pairs for pkg's
// dependencies matching mask, sorted by (name, version) ascending as
// required by §4.3.
func (g *Graph) IterDependencies(pkg *Package, mask EdgeKind) ([]DependencyEdge, error) {
	edges := make([]DependencyEdge, 0, len(pkg.Edges))
	for _, e := range pkg.Edges {
		if e.Kind&mask == 0 {
			continue
		}
		dep, err := g.Package(e.To)
		if err != nil {
			return nil, err
		}
		edges = append(edges, DependencyEdge{Kind: e.Kind, Package: dep})
	}
	sort.Slice(edges, func(i, j int) bool {
		a, b := edges[i].Package, edges[j].Package
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.Version < b.Version
	})
	return edges, nil
}

// DependencyEdge is one resolved (edge kind, package) pair.
type DependencyEdge struct {
	Kind    EdgeKind
	Package *Package
}

// Validate checks for cycles using a three-color DFS and, on success,
// populates the deterministic post-order walk used by Walk.
func (g *Graph) Validate() error {
	g.executionOrder = make([]PackageID, 0, len(g.packages))
	visited := make(map[PackageID]int) // 0: unvisited, 1: visiting, 2: visited
	var path []PackageID

	var visit func(u PackageID) error
	visit = func(u PackageID) error {
		visited[u] = 1
		path = append(path, u)

		pkg, exists := g.packages[u]
		if !exists {
			return zerr.With(ErrMissingDependency, "dependency", string(u))
		}

		for _, e := range pkg.Edges {
			if visited[e.To] == 1 {
				return g.buildCycleError(path, e.To)
			}
			if visited[e.To] == 0 {
				if err := visit(e.To); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, u)
		return nil
	}

	ids := make([]PackageID, 0, len(g.packages))
	for id := range g.packages {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		if visited[id] == 0 {
			if err := visit(id); err != nil {
				return err
			}
		}
	}

	return nil
}

// buildCycleError constructs an error with the discovery-chain metadata
// required by §4.3's CyclicDependency(path).
func (g *Graph) buildCycleError(path []PackageID, dep PackageID) error {
	cyclePath := ""
	startIdx := -1
	for i, node := range path {
		if node == dep {
			startIdx = i
			break
		}
	}
	for i := startIdx; i < len(path); i++ {
		cyclePath += string(path[i]) + " -> "
	}
	cyclePath += string(dep)
	return zerr.With(ErrCyclicDependency, "cycle", cyclePath)
}

// Walk returns an iterator yielding packages in dependency (post) order.
// It assumes Validate has already returned nil.
func (g *Graph) Walk() iter.Seq[*Package] {
	return func(yield func(*Package) bool) {
		for _, id := range g.executionOrder {
			if !yield(g.packages[id]) {
				return
			}
		}
	}
}

// GobEncode implements gob.GobEncoder, serializing only the packages
// themselves; executionOrder is derived, not stored, and is rebuilt by
// GobDecode via Validate.
func (g *Graph) GobEncode() ([]byte, error) {
	pkgs := make([]*Package, 0, len(g.packages))
	for _, p := range g.packages {
		pkgs = append(pkgs, p)
	}
	sort.Slice(pkgs, func(i, j int) bool { return pkgs[i].ID() < pkgs[j].ID() })

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(pkgs); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (g *Graph) GobDecode(data []byte) error {
	var pkgs []*Package
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&pkgs); err != nil {
		return err
	}

	*g = *NewGraph()
	for _, p := range pkgs {
		if err := g.AddPackage(p); err != nil {
			return err
		}
	}
	return g.Validate()
}
