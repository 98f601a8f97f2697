package manifest

import (
	"context"

	"github.com/grindlemire/graft"
	"go.forge.sh/esy/internal/core/ports"
)

// NodeID identifies the manifest Loader in the dependency graph.
const NodeID graft.ID = "adapter.manifest"

func init() {
	graft.Register(graft.Node[ports.ManifestLoader]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.ManifestLoader, error) {
			return New(), nil
		},
	})
}
