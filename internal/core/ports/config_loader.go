package ports

import "go.forge.sh/esy/internal/core/domain"

// ConfigLoader resolves the prefix/store/sandbox path configuration (§3's
// Config) from the process environment.
//
//go:generate go run go.uber.org/mock/mockgen -source=config_loader.go -destination=mocks/mock_config_loader.go -package=mocks
type ConfigLoader interface {
	// Load builds a Config for the sandbox rooted at cwd.
	Load(cwd string) (*domain.Config, error)
}
