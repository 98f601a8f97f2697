// Package wiring registers all Graft nodes for the application.
package wiring

import (
	// Register adapter nodes.
	_ "go.forge.sh/esy/internal/adapters/builder"
	_ "go.forge.sh/esy/internal/adapters/config"
	_ "go.forge.sh/esy/internal/adapters/fs"
	_ "go.forge.sh/esy/internal/adapters/lock"
	_ "go.forge.sh/esy/internal/adapters/logger"
	_ "go.forge.sh/esy/internal/adapters/manifest"
	_ "go.forge.sh/esy/internal/adapters/patch"
	_ "go.forge.sh/esy/internal/adapters/progress"
	_ "go.forge.sh/esy/internal/adapters/sandboxcache"
	_ "go.forge.sh/esy/internal/adapters/telemetry"
	// Register app and engine nodes.
	_ "go.forge.sh/esy/internal/app"
	_ "go.forge.sh/esy/internal/engine/scheduler"
)
