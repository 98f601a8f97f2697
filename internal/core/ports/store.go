package ports

import "go.forge.sh/esy/internal/core/domain"

// SandboxCache persists and retrieves a planned SandboxInfo keyed by
// configuration identity (§4.7).
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type SandboxCache interface {
	// Read loads the cached SandboxInfo for cfg. The second return value is
	// false whenever the cache is absent, malformed, version-mismatched, or
	// invalidated by a stale manifest witness — never an error.
	Read(cfg *domain.Config) (*domain.SandboxInfo, bool)

	// Write persists info for cfg. I/O failures are logged and swallowed.
	Write(cfg *domain.Config, info *domain.SandboxInfo) error
}
