// Package manifest loads BuildManifests from esy.json, package.json, and
// opam-format source trees (§4.1).
package manifest

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"go.forge.sh/esy/internal/core/domain"
	"go.forge.sh/esy/internal/core/ports"
	"go.trai.ch/zerr"
)

// Loader implements ports.ManifestLoader.
type Loader struct{}

// New creates a new Loader.
func New() *Loader {
	return &Loader{}
}

var _ ports.ManifestLoader = (*Loader)(nil)

// LoadFromPath implements ports.ManifestLoader.
func (l *Loader) LoadFromPath(dir string, hint *ports.ManifestHint) (*domain.BuildManifest, map[string]time.Time, error) {
	if hint != nil {
		return l.loadHinted(dir, *hint)
	}

	esyPath := filepath.Join(dir, "esy.json")
	if mtime, ok := statMTime(esyPath); ok {
		m, err := l.loadFile(ports.KindEsy, esyPath, filepath.Base(dir))
		if err != nil {
			return nil, nil, err
		}
		return m, map[string]time.Time{esyPath: mtime}, nil
	}

	pkgPath := filepath.Join(dir, "package.json")
	if mtime, ok := statMTime(pkgPath); ok {
		m, err := l.loadFile(ports.KindEsy, pkgPath, filepath.Base(dir))
		if err != nil {
			return nil, nil, err
		}
		return m, map[string]time.Time{pkgPath: mtime}, nil
	}

	// Neither esy.json nor package.json is present: an unhinted probe's
	// final absence is not an error (§4.1), unlike an explicitly-hinted
	// path that doesn't exist (see loadHinted).
	return nil, nil, nil
}

func (l *Loader) loadHinted(dir string, hint ports.ManifestHint) (*domain.BuildManifest, map[string]time.Time, error) {
	path := hint.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, path)
	}
	mtime, ok := statMTime(path)
	if !ok {
		return nil, nil, zerr.With(domain.ErrManifestMissing, "path", path)
	}
	m, err := l.loadFile(hint.Kind, path, filepath.Base(dir))
	if err != nil {
		return nil, nil, err
	}
	return m, map[string]time.Time{path: mtime}, nil
}

func (l *Loader) loadFile(kind ports.ManifestKind, path, nameFallback string) (*domain.BuildManifest, error) {
	//nolint:gosec // path is derived from a probed package source directory
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "manifest read failed"), "path", path)
	}
	m, err := l.LoadFromData(kind, data, nameFallback)
	if err != nil {
		return nil, zerr.With(err, "path", path)
	}
	return m, nil
}

// LoadFromData implements ports.ManifestLoader.
func (l *Loader) LoadFromData(kind ports.ManifestKind, data []byte, nameFallback string) (*domain.BuildManifest, error) {
	switch kind {
	case ports.KindEsy:
		return parseEsy(data, nameFallback)
	case ports.KindOpam:
		return parseOpam(data, nameFallback)
	default:
		return nil, zerr.With(domain.ErrManifestParse, "kind", int(kind))
	}
}

func statMTime(path string) (time.Time, bool) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// esyDoc mirrors the subset of esy.json/package.json this core consumes.
// package.json carries the same shape nested under an "esy" key.
type esyDoc struct {
	Name      string              `json:"name"`
	Version   string              `json:"version"`
	Esy       *esyDoc             `json:"esy"`
	BuildType json.RawMessage     `json:"buildsInSource"`
	Build     json.RawMessage     `json:"build"`
	Install   json.RawMessage     `json:"install"`
	BuildDev  json.RawMessage     `json:"buildDev"`
	ExportedEnv map[string]esyEnvEntry `json:"exportedEnv"`
	BuildEnv    map[string]string      `json:"buildEnv"`
	Patches     []esyPatchEntry        `json:"patches"`
	Substs      []string               `json:"substs"`
}

type esyEnvEntry struct {
	Val   string `json:"val"`
	Scope string `json:"scope"`
}

type esyPatchEntry struct {
	Path   string `json:"path"`
	Filter string `json:"filter"`
}

func parseEsy(data []byte, nameFallback string) (*domain.BuildManifest, error) {
	var doc esyDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, zerr.With(zerr.With(domain.ErrManifestParse, "error", err.Error()), "error_category", "parse")
	}

	// package.json nests esy config under "esy"; prefer it when present.
	effective := doc
	if doc.Esy != nil {
		effective = *doc.Esy
		if effective.Name == "" {
			effective.Name = doc.Name
		}
		if effective.Version == "" {
			effective.Version = doc.Version
		}
	}

	name := effective.Name
	if name == "" {
		name = nameFallback
	}

	build, err := parseCommandList(effective.Build, domain.OriginEsy)
	if err != nil {
		return nil, err
	}
	install, err := parseCommandList(effective.Install, domain.OriginEsy)
	if err != nil {
		return nil, err
	}
	buildDev, err := parseCommandList(effective.BuildDev, domain.OriginEsy)
	if err != nil {
		return nil, err
	}

	m := &domain.BuildManifest{
		Name:      name,
		Version:   effective.Version,
		BuildType: resolveBuildType(effective.BuildType),
		Build:     build,
		Install:   install,
		BuildDev:  buildDev,
		Substs:    append([]string(nil), effective.Substs...),
	}

	if len(effective.ExportedEnv) > 0 {
		m.ExportedEnv = make(map[string]domain.ExportedEnvEntry, len(effective.ExportedEnv))
		for k, v := range effective.ExportedEnv {
			scope := domain.ScopeLocal
			if v.Scope == string(domain.ScopeGlobal) {
				scope = domain.ScopeGlobal
			}
			m.ExportedEnv[k] = domain.ExportedEnvEntry{Value: v.Val, Scope: scope}
		}
	}
	if len(effective.BuildEnv) > 0 {
		m.BuildEnv = make(map[string]string, len(effective.BuildEnv))
		for k, v := range effective.BuildEnv {
			m.BuildEnv[k] = v
		}
	}
	for _, p := range effective.Patches {
		m.Patches = append(m.Patches, domain.PatchEntry{Path: p.Path, Filter: p.Filter})
	}

	return m, nil
}

// resolveBuildType interprets esy.json's "buildsInSource" field, which is a
// boolean in the common case and the strings "_build" or "unsafe" for
// dune/jbuilder and sandbox-escaping builds respectively. A missing field
// defaults to out-of-source, esy's own default (§4.1).
func resolveBuildType(raw json.RawMessage) domain.BuildType {
	if len(raw) == 0 {
		return domain.BuildOutOfSource
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if b {
			return domain.BuildInSource
		}
		return domain.BuildOutOfSource
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch s {
		case "_build":
			return domain.BuildJbuilderLike
		case "unsafe":
			return domain.BuildUnsafe
		}
	}

	return domain.BuildOutOfSource
}

// parseCommandList accepts either a single command (`["tok", ...]`) or a
// list of commands (`[["tok", ...], ...]`), matching esy.json's shorthand.
func parseCommandList(raw json.RawMessage, origin domain.CommandOrigin) (domain.CommandList, error) {
	if len(raw) == 0 {
		return domain.CommandList{}, nil
	}

	var multi [][]string
	if err := json.Unmarshal(raw, &multi); err == nil {
		cl := domain.CommandList{Origin: origin}
		for _, c := range multi {
			cl.Commands = append(cl.Commands, domain.Command(c))
		}
		return cl, nil
	}

	var single []string
	if err := json.Unmarshal(raw, &single); err == nil {
		return domain.CommandList{Origin: origin, Commands: []domain.Command{single}}, nil
	}

	return domain.CommandList{}, zerr.With(domain.ErrManifestParse, "field", "command list")
}
