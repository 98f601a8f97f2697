package ports

import (
	"time"

	"go.forge.sh/esy/internal/core/domain"
)

// ManifestKind tags which on-disk format a manifest hint refers to (§4.1).
type ManifestKind int

const (
	// KindEsy is the esy.json/package.json "esy" subobject JSON format.
	KindEsy ManifestKind = iota
	// KindOpam is opam-format text.
	KindOpam
)

// ManifestHint pins the format and path to load, bypassing the default
// esy.json-then-package.json probe order.
type ManifestHint struct {
	Kind ManifestKind
	Path string
}

// ManifestLoader loads a BuildManifest from a package's source directory
// (§4.1).
//
//go:generate go run go.uber.org/mock/mockgen -source=manifest_loader.go -destination=mocks/mock_manifest_loader.go -package=mocks
type ManifestLoader interface {
	// LoadFromPath loads the manifest for the package rooted at dir. When
	// hint is nil, it probes esy.json then package.json. The returned map
	// is the set of paths that contributed to the result, each paired with
	// the mtime observed at read time — the first
	// layer of a SandboxInfo's ManifestInfo witnesses.
	LoadFromPath(dir string, hint *ManifestHint) (*domain.BuildManifest, map[string]time.Time, error)

	// LoadFromData parses raw manifest bytes of the given kind. nameFallback
	// is used when the manifest itself carries no name.
	LoadFromData(kind ManifestKind, data []byte, nameFallback string) (*domain.BuildManifest, error)
}
