package scheduler

import (
	"context"

	"github.com/grindlemire/graft"

	"go.forge.sh/esy/internal/adapters/builder"  //nolint:depguard // Wired in engine wiring
	"go.forge.sh/esy/internal/adapters/fs"       //nolint:depguard // Wired in engine wiring
	"go.forge.sh/esy/internal/adapters/progress" //nolint:depguard // Wired in engine wiring
	"go.forge.sh/esy/internal/core/ports"
)

// NodeID is the unique identifier for the scheduler Graft node.
const NodeID graft.ID = "engine.scheduler"

func init() {
	graft.Register(graft.Node[*Scheduler]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{builder.NodeID, fs.VerifierNodeID, progress.NodeID},
		Run: func(ctx context.Context) (*Scheduler, error) {
			adapter, err := graft.Dep[ports.BuilderAdapter](ctx)
			if err != nil {
				return nil, err
			}

			verifier, err := graft.Dep[ports.Verifier](ctx)
			if err != nil {
				return nil, err
			}

			prog, err := graft.Dep[ports.Progress](ctx)
			if err != nil {
				return nil, err
			}

			return New(adapter, verifier, prog), nil
		},
	})
}
