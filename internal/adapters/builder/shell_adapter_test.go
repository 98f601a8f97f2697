package builder_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.forge.sh/esy/internal/adapters/builder"
	"go.forge.sh/esy/internal/adapters/fs"
	"go.forge.sh/esy/internal/adapters/lock"
	"go.forge.sh/esy/internal/adapters/logger"
	"go.forge.sh/esy/internal/adapters/patch"
	"go.forge.sh/esy/internal/core/domain"
	"go.forge.sh/esy/internal/core/ports"
)

func TestShellAdapter_ModeExec_RunsCommand(t *testing.T) {
	dir := t.TempDir()
	adapter := builder.NewShellAdapter(logger.New(), patch.NewApplier(fs.NewHasher()), lock.New())

	task := &domain.BuildTask{ID: "t", BuildPath: dir}
	err := adapter.Execute(context.Background(), &domain.Config{}, task, ports.ModeExec, domain.Command{"true"})
	require.NoError(t, err)
}

func TestShellAdapter_ModeExec_NonZeroExit(t *testing.T) {
	adapter := builder.NewShellAdapter(logger.New(), patch.NewApplier(fs.NewHasher()), lock.New())
	task := &domain.BuildTask{ID: "t", BuildPath: t.TempDir()}

	err := adapter.Execute(context.Background(), &domain.Config{}, task, ports.ModeExec, domain.Command{"false"})
	require.Error(t, err)

	adapterErr, ok := err.(*ports.AdapterError)
	require.True(t, ok)
	assert.Equal(t, ports.CategoryExitNonZero, adapterErr.Category)
}

func TestShellAdapter_ModeBuild_RunsBuildAndInstallThenStages(t *testing.T) {
	sourcePath := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(sourcePath, "marker"), []byte("x"), 0o644))

	buildPath := filepath.Join(t.TempDir(), "build")
	stagePath := filepath.Join(t.TempDir(), "stage")
	installPath := filepath.Join(t.TempDir(), "parent", "install")

	task := &domain.BuildTask{
		ID:          "t",
		SourcePath:  sourcePath,
		BuildPath:   buildPath,
		StagePath:   stagePath,
		InstallPath: installPath,
	}
	task.Plan.Build = []domain.Command{{"true"}}
	task.Plan.Install = []domain.Command{{"sh", "-c", "mkdir -p \"$cur__install\""}}
	task.Env.Build = []string{"cur__install=" + stagePath, "PATH=" + os.Getenv("PATH")}

	adapter := builder.NewShellAdapter(logger.New(), patch.NewApplier(fs.NewHasher()), lock.New())
	err := adapter.Execute(context.Background(), &domain.Config{}, task, ports.ModeBuild, nil)
	require.NoError(t, err)

	_, statErr := os.Stat(installPath)
	assert.NoError(t, statErr, "expected stagePath to be renamed to installPath")

	_, buildMarker := os.Stat(filepath.Join(buildPath, "marker"))
	assert.NoError(t, buildMarker, "expected source to be materialized into buildPath")
}

func TestShellAdapter_ModeBuild_ContendedLockSurfacesAsSandboxError(t *testing.T) {
	buildPath := filepath.Join(t.TempDir(), "build")
	require.NoError(t, os.MkdirAll(filepath.Dir(buildPath), 0o755))
	require.NoError(t, os.WriteFile(buildPath+".lock", nil, 0o644))

	task := &domain.BuildTask{ID: "t", SourcePath: t.TempDir(), BuildPath: buildPath}

	adapter := builder.NewShellAdapter(logger.New(), patch.NewApplier(fs.NewHasher()), lock.New())
	err := adapter.Execute(context.Background(), &domain.Config{}, task, ports.ModeBuild, nil)
	require.Error(t, err)

	adapterErr, ok := err.(*ports.AdapterError)
	require.True(t, ok)
	assert.Equal(t, ports.CategorySandbox, adapterErr.Category)
}
