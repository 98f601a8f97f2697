package builder_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.forge.sh/esy/internal/adapters/builder"
	"go.forge.sh/esy/internal/core/domain"
	"go.forge.sh/esy/internal/core/ports"
)

func TestFakeAdapter_RecordsInvocations(t *testing.T) {
	fake := builder.NewFakeAdapter()
	task := &domain.BuildTask{ID: "task-a"}

	require.NoError(t, fake.Execute(context.Background(), &domain.Config{}, task, ports.ModeBuild, nil))
	require.NoError(t, fake.Execute(context.Background(), &domain.Config{}, task, ports.ModeExec, domain.Command{"echo", "hi"}))

	invocations := fake.Invocations()
	require.Len(t, invocations, 2)
	assert.Equal(t, ports.ModeBuild, invocations[0].Mode)
	assert.Equal(t, ports.ModeExec, invocations[1].Mode)
	assert.Equal(t, domain.Command{"echo", "hi"}, invocations[1].Command)
}

func TestFakeAdapter_ReturnsProgrammedFailure(t *testing.T) {
	fake := builder.NewFakeAdapter()
	task := &domain.BuildTask{ID: "task-b"}
	boom := &ports.AdapterError{Category: ports.CategoryExitNonZero, Detail: "nonzero exit"}
	fake.Fail(task.ID, boom)

	err := fake.Execute(context.Background(), &domain.Config{}, task, ports.ModeBuild, nil)
	assert.Same(t, error(boom), err)
}
