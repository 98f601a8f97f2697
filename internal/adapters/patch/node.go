package patch

import (
	"context"

	"github.com/grindlemire/graft"
	"go.forge.sh/esy/internal/adapters/fs"
	"go.forge.sh/esy/internal/core/ports"
)

// NodeID identifies the patch Applier in the dependency graph.
const NodeID graft.ID = "adapter.patch"

func init() {
	graft.Register(graft.Node[*Applier]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{fs.HasherNodeID},
		Run: func(ctx context.Context) (*Applier, error) {
			hasher, err := graft.Dep[ports.FileHasher](ctx)
			if err != nil {
				return nil, err
			}
			return NewApplier(hasher), nil
		},
	})
}
