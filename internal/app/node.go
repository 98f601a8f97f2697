package app

import (
	"context"

	"github.com/grindlemire/graft"

	"go.forge.sh/esy/internal/adapters/builder"      //nolint:depguard // wired in app layer
	"go.forge.sh/esy/internal/adapters/config"       //nolint:depguard // wired in app layer
	"go.forge.sh/esy/internal/adapters/fs"           //nolint:depguard // wired in app layer
	"go.forge.sh/esy/internal/adapters/logger"       //nolint:depguard // wired in app layer
	"go.forge.sh/esy/internal/adapters/manifest"     //nolint:depguard // wired in app layer
	"go.forge.sh/esy/internal/adapters/sandboxcache" //nolint:depguard // wired in app layer
	"go.forge.sh/esy/internal/adapters/telemetry"    //nolint:depguard // wired in app layer
	"go.forge.sh/esy/internal/core/ports"
	"go.forge.sh/esy/internal/engine/scheduler"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			manifest.NodeID,
			fs.HasherNodeID,
			sandboxcache.NodeID,
			scheduler.NodeID,
			builder.NodeID,
			telemetry.TracerNodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{AppNodeID, logger.NodeID},
		Run:       runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	cfgLoader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	manifestLoader, err := graft.Dep[ports.ManifestLoader](ctx)
	if err != nil {
		return nil, err
	}

	hasher, err := graft.Dep[ports.FileHasher](ctx)
	if err != nil {
		return nil, err
	}

	cache, err := graft.Dep[ports.SandboxCache](ctx)
	if err != nil {
		return nil, err
	}

	sched, err := graft.Dep[*scheduler.Scheduler](ctx)
	if err != nil {
		return nil, err
	}

	adapter, err := graft.Dep[ports.BuilderAdapter](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	return New(cfgLoader, manifestLoader, hasher, cache, sched, adapter, tracer), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	a, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{App: a, Logger: log}, nil
}
