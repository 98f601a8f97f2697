package builder

import (
	"context"

	"github.com/grindlemire/graft"
	"go.forge.sh/esy/internal/adapters/lock"
	"go.forge.sh/esy/internal/adapters/logger"
	"go.forge.sh/esy/internal/adapters/patch"
	"go.forge.sh/esy/internal/core/ports"
)

// NodeID identifies the ShellAdapter BuilderAdapter in the dependency graph.
const NodeID graft.ID = "adapter.builder"

func init() {
	graft.Register(graft.Node[ports.BuilderAdapter]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID, patch.NodeID, lock.NodeID},
		Run: func(ctx context.Context) (ports.BuilderAdapter, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			applier, err := graft.Dep[*patch.Applier](ctx)
			if err != nil {
				return nil, err
			}
			locker, err := graft.Dep[ports.Locker](ctx)
			if err != nil {
				return nil, err
			}
			return NewShellAdapter(log, applier, locker), nil
		},
	})
}
