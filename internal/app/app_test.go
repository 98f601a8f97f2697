package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.forge.sh/esy/internal/app"
	"go.forge.sh/esy/internal/core/domain"
	"go.forge.sh/esy/internal/core/ports"
	"go.forge.sh/esy/internal/engine/scheduler"
)

type fakeConfigLoader struct {
	cfg *domain.Config
	err error
}

func (f *fakeConfigLoader) Load(cwd string) (*domain.Config, error) {
	if f.err != nil {
		return nil, f.err
	}
	cfg := *f.cfg
	cfg.SandboxPath = cwd
	return &cfg, nil
}

type fakeManifestLoader struct {
	manifest *domain.BuildManifest
	err      error
}

func (f *fakeManifestLoader) LoadFromPath(string, *ports.ManifestHint) (*domain.BuildManifest, map[string]time.Time, error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.manifest, map[string]time.Time{}, nil
}

func (f *fakeManifestLoader) LoadFromData(ports.ManifestKind, []byte, string) (*domain.BuildManifest, error) {
	return f.manifest, f.err
}

type fakeCache struct{}

func (fakeCache) Read(*domain.Config) (*domain.SandboxInfo, bool) { return nil, false }
func (fakeCache) Write(*domain.Config, *domain.SandboxInfo) error { return nil }

type fakeBuilder struct {
	calls []ports.BuildMode
	err   error
}

func (f *fakeBuilder) Execute(_ context.Context, _ *domain.Config, _ *domain.BuildTask, mode ports.BuildMode, _ domain.Command) error {
	f.calls = append(f.calls, mode)
	return f.err
}

type fakeVerifier struct{}

func (fakeVerifier) Exists(string) (bool, error) { return false, nil }

type noopTracer struct{}

func (noopTracer) Start(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
	return ctx, noopSpan{}
}
func (noopTracer) EmitPlan(context.Context, []string) {}

type noopSpan struct{}

func (noopSpan) Write(p []byte) (int, error) { return len(p), nil }
func (noopSpan) End()                        {}
func (noopSpan) RecordError(error)           {}
func (noopSpan) SetAttribute(string, any)    {}

func newTestApp(t *testing.T, builder ports.BuilderAdapter, manifestErr, configErr error) *app.App {
	t.Helper()
	loader := &fakeConfigLoader{cfg: &domain.Config{StorePath: "/store"}, err: configErr}
	manifests := &fakeManifestLoader{manifest: &domain.BuildManifest{Name: "root", Version: "1.0.0"}, err: manifestErr}
	sched := scheduler.New(builder, fakeVerifier{}, noopProgress{})
	return app.New(loader, manifests, fakeHasher{}, fakeCache{}, sched, builder, noopTracer{})
}

type fakeHasher struct{}

func (fakeHasher) ComputeFileHash(string) (uint64, error) { return 1, nil }

type noopProgress struct{}

func (noopProgress) Started(*domain.BuildTask)         {}
func (noopProgress) Succeeded(*domain.BuildTask, bool) {}
func (noopProgress) Failed(*domain.BuildTask, error)   {}

func TestApp_Build_Succeeds(t *testing.T) {
	builder := &fakeBuilder{}
	a := newTestApp(t, builder, nil, nil)

	err := a.Build(context.Background(), t.TempDir(), false, scheduler.ForceNo, scheduler.BuildOnlyNo, 1)
	require.NoError(t, err)
}

func TestApp_Build_ConfigLoaderError(t *testing.T) {
	builder := &fakeBuilder{}
	a := newTestApp(t, builder, nil, errors.New("config load error"))

	err := a.Build(context.Background(), t.TempDir(), false, scheduler.ForceNo, scheduler.BuildOnlyNo, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading configuration")
}

func TestApp_Build_ManifestLoaderError(t *testing.T) {
	builder := &fakeBuilder{}
	a := newTestApp(t, builder, errors.New("manifest parse error"), nil)

	err := a.Build(context.Background(), t.TempDir(), false, scheduler.ForceNo, scheduler.BuildOnlyNo, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading manifest")
}

func TestApp_Build_BuildExecutionFailed(t *testing.T) {
	builder := &fakeBuilder{err: errors.New("command failed")}
	a := newTestApp(t, builder, nil, nil)

	err := a.Build(context.Background(), t.TempDir(), false, scheduler.ForceNo, scheduler.BuildOnlyNo, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build execution failed")
}

func TestApp_Shell_RunsBuildShellMode(t *testing.T) {
	builder := &fakeBuilder{}
	a := newTestApp(t, builder, nil, nil)

	err := a.Shell(context.Background(), t.TempDir(), false)
	require.NoError(t, err)
	require.Len(t, builder.calls, 1)
	assert.Equal(t, ports.ModeBuildShell, builder.calls[0])
}

func TestApp_Exec_RunsExecMode(t *testing.T) {
	builder := &fakeBuilder{}
	a := newTestApp(t, builder, nil, nil)

	err := a.Exec(context.Background(), t.TempDir(), false, domain.Command{"true"})
	require.NoError(t, err)
	require.Len(t, builder.calls, 1)
	assert.Equal(t, ports.ModeExec, builder.calls[0])
}
