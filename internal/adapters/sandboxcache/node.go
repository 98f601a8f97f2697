package sandboxcache

import (
	"context"

	"github.com/grindlemire/graft"
	"go.forge.sh/esy/internal/adapters/logger" //nolint:depguard // wired in app layer
	"go.forge.sh/esy/internal/core/ports"
)

// NodeID is the unique identifier for the sandbox cache Graft node.
const NodeID graft.ID = "adapter.sandbox_cache"

func init() {
	graft.Register(graft.Node[ports.SandboxCache]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.SandboxCache, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewStore(log), nil
		},
	})
}
