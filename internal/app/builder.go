package app

import "go.forge.sh/esy/internal/core/ports"

// Components is the fully wired set of dependencies cmd/esy needs: the App
// itself plus the Logger, so a top-level error still has somewhere to go
// if something downstream of App construction fails.
type Components struct {
	App    *App
	Logger ports.Logger
}
