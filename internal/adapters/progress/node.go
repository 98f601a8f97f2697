package progress

import (
	"context"

	"github.com/grindlemire/graft"

	"go.forge.sh/esy/internal/core/ports"
)

// NodeID is the unique identifier for the progress adapter node.
const NodeID graft.ID = "adapter.progress"

func init() {
	graft.Register(graft.Node[ports.Progress]{
		ID:        NodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Progress, error) {
			return New(), nil
		},
	})
}
