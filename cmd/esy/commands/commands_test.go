package commands_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.forge.sh/esy/cmd/esy/commands"
	"go.forge.sh/esy/internal/app"
	"go.forge.sh/esy/internal/core/domain"
	"go.forge.sh/esy/internal/core/ports"
	"go.forge.sh/esy/internal/engine/scheduler"
)

type fakeConfigLoader struct{}

func (fakeConfigLoader) Load(cwd string) (*domain.Config, error) {
	return &domain.Config{StorePath: "/store", SandboxPath: cwd}, nil
}

type fakeManifestLoader struct{}

func (fakeManifestLoader) LoadFromPath(string, *ports.ManifestHint) (*domain.BuildManifest, map[string]time.Time, error) {
	return &domain.BuildManifest{Name: "root", Version: "1.0.0"}, map[string]time.Time{}, nil
}

func (fakeManifestLoader) LoadFromData(ports.ManifestKind, []byte, string) (*domain.BuildManifest, error) {
	return &domain.BuildManifest{Name: "root", Version: "1.0.0"}, nil
}

type fakeCache struct{}

func (fakeCache) Read(*domain.Config) (*domain.SandboxInfo, bool) { return nil, false }
func (fakeCache) Write(*domain.Config, *domain.SandboxInfo) error { return nil }

type fakeBuilder struct {
	calls []ports.BuildMode
}

func (f *fakeBuilder) Execute(_ context.Context, _ *domain.Config, _ *domain.BuildTask, mode ports.BuildMode, _ domain.Command) error {
	f.calls = append(f.calls, mode)
	return nil
}

type fakeVerifier struct{}

func (fakeVerifier) Exists(string) (bool, error) { return false, nil }

type fakeHasher struct{}

func (fakeHasher) ComputeFileHash(string) (uint64, error) { return 1, nil }

type noopProgress struct{}

func (noopProgress) Started(*domain.BuildTask)         {}
func (noopProgress) Succeeded(*domain.BuildTask, bool) {}
func (noopProgress) Failed(*domain.BuildTask, error)   {}

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

func newTestCLI(builder *fakeBuilder) *commands.CLI {
	sched := scheduler.New(builder, fakeVerifier{}, noopProgress{})
	a := app.New(fakeConfigLoader{}, fakeManifestLoader{}, fakeHasher{}, fakeCache{}, sched, builder, noopTracer{})
	return commands.New(a)
}

func TestBuildCmd_RunsBuild(t *testing.T) {
	builder := &fakeBuilder{}
	cli := newTestCLI(builder)
	cli.SetArgs([]string{"build"})

	err := cli.Execute(context.Background())
	require.NoError(t, err)
}

func TestShellCmd_RunsBuildShellMode(t *testing.T) {
	builder := &fakeBuilder{}
	cli := newTestCLI(builder)
	cli.SetArgs([]string{"shell"})

	err := cli.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, builder.calls, 1)
	assert.Equal(t, ports.ModeBuildShell, builder.calls[0])
}

func TestExecCmd_RunsExecMode(t *testing.T) {
	builder := &fakeBuilder{}
	cli := newTestCLI(builder)
	cli.SetArgs([]string{"exec", "--", "true"})

	err := cli.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, builder.calls, 1)
	assert.Equal(t, ports.ModeExec, builder.calls[0])
}

func TestVersionCmd_PrintsVersion(t *testing.T) {
	cli := newTestCLI(&fakeBuilder{})
	cli.SetArgs([]string{"version"})

	err := cli.Execute(context.Background())
	require.NoError(t, err)
}
