package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.forge.sh/esy/internal/adapters/manifest"
	"go.forge.sh/esy/internal/core/domain"
	"go.forge.sh/esy/internal/core/ports"
)

const esyJSON = `{
  "name": "my-pkg",
  "version": "1.0.0",
  "esy": {
    "build": [["dune", "build"]],
    "install": ["dune", "install"],
    "exportedEnv": {
      "MY_PKG_LIB": {"val": "#{self.lib}", "scope": "global"}
    },
    "buildEnv": {"CUR_VERSION": "1.0.0"},
    "substs": ["config.ml"]
  }
}`

func TestLoadFromPath_ProbesEsyJSONFirst(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "esy.json"), []byte(esyJSON), 0o644))

	loader := manifest.New()
	m, witnesses, err := loader.LoadFromPath(dir, nil)
	require.NoError(t, err)

	assert.Equal(t, "my-pkg", m.Name)
	assert.Equal(t, "1.0.0", m.Version)
	assert.Len(t, m.Build.Commands, 1)
	assert.Equal(t, domain.Command{"dune", "build"}, m.Build.Commands[0])
	assert.Equal(t, domain.Command{"dune", "install"}, m.Install.Commands[0])
	assert.Equal(t, domain.ScopeGlobal, m.ExportedEnv["MY_PKG_LIB"].Scope)
	assert.Equal(t, "1.0.0", m.BuildEnv["CUR_VERSION"])
	assert.Equal(t, domain.BuildOutOfSource, m.BuildType)
	assert.Len(t, witnesses, 1)
}

func TestLoadFromPath_UnhintedMissingReturnsNoError(t *testing.T) {
	loader := manifest.New()
	m, witnesses, err := loader.LoadFromPath(t.TempDir(), nil)
	require.NoError(t, err)
	assert.Nil(t, m)
	assert.Empty(t, witnesses)
}

func TestLoadFromPath_HintedMissingReturnsError(t *testing.T) {
	loader := manifest.New()
	_, _, err := loader.LoadFromPath(t.TempDir(), &ports.ManifestHint{Kind: ports.KindEsy, Path: "esy.json"})
	assert.ErrorIs(t, err, domain.ErrManifestMissing)
}

func TestLoadFromData_BuildsInSourceTruthiness(t *testing.T) {
	loader := manifest.New()

	m, err := loader.LoadFromData(ports.KindEsy, []byte(`{"name":"p","esy":{"buildsInSource":true}}`), "p")
	require.NoError(t, err)
	assert.Equal(t, domain.BuildInSource, m.BuildType)

	m, err = loader.LoadFromData(ports.KindEsy, []byte(`{"name":"p","esy":{"buildsInSource":false}}`), "p")
	require.NoError(t, err)
	assert.Equal(t, domain.BuildOutOfSource, m.BuildType)

	m, err = loader.LoadFromData(ports.KindEsy, []byte(`{"name":"p","esy":{"buildsInSource":"_build"}}`), "p")
	require.NoError(t, err)
	assert.Equal(t, domain.BuildJbuilderLike, m.BuildType)
}

func TestLoadFromPath_HonorsHint(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "custom.json")
	require.NoError(t, os.WriteFile(custom, []byte(esyJSON), 0o644))

	loader := manifest.New()
	m, _, err := loader.LoadFromPath(dir, &ports.ManifestHint{Kind: ports.KindEsy, Path: "custom.json"})
	require.NoError(t, err)
	assert.Equal(t, "my-pkg", m.Name)
}

func TestLoadFromData_Opam(t *testing.T) {
	opam := `opam-version: "2.0"
name: "lwt"
version: "5.6.1"
build: [
  ["dune" "build" "-p" name]
]
install: ["dune" "install"]
patches: [
  "fix-build.patch" {os = "linux"}
]
substs: ["src/lwt_config.ml"]
`
	loader := manifest.New()
	m, err := loader.LoadFromData(ports.KindOpam, []byte(opam), "lwt")
	require.NoError(t, err)

	assert.Equal(t, "@opam/lwt", m.Name)
	assert.Equal(t, "5.6.1", m.Version)
	require.Len(t, m.Build.Commands, 1)
	assert.Equal(t, domain.Command{"dune", "build", "-p", "name"}, m.Build.Commands[0])
	require.Len(t, m.Patches, 1)
	assert.Equal(t, "fix-build.patch", m.Patches[0].Path)
	assert.Equal(t, "os = \"linux\"", m.Patches[0].Filter)
	assert.Equal(t, []string{"src/lwt_config.ml"}, m.Substs)
}
