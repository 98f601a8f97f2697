// Package config resolves the prefix/store/sandbox path configuration
// (§3's Config) from the process environment.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"go.forge.sh/esy/internal/core/domain"
	"go.forge.sh/esy/internal/core/ports"
	"go.trai.ch/zerr"
)

// esyVersion and storeVersion are baked in at build time. storeVersion
// changes only when the on-disk store layout or task id algorithm changes
// incompatibly; esyVersion tracks the binary's own release.
const (
	esyVersion   = "0.1.0"
	storeVersion = "3"

	// storePadding is the fixed total length a storePath is padded out to
	// with trailing underscores, so that relocating a prefix never changes
	// the length of paths baked into installed artifacts.
	storePadding = 100

	defaultPrefixDir = ".esy"
)

// Loader implements ports.ConfigLoader by reading ESY__PREFIX and
// ESY__SANDBOX, falling back to $HOME/.esy and cwd respectively.
type Loader struct {
	log ports.Logger
}

// NewLoader constructs a Loader.
func NewLoader(log ports.Logger) *Loader {
	return &Loader{log: log}
}

// Load builds a Config for the sandbox rooted at cwd.
func (l *Loader) Load(cwd string) (*domain.Config, error) {
	sandboxPath := cwd
	if v, ok := os.LookupEnv("ESY__SANDBOX"); ok && v != "" {
		sandboxPath = v
	}
	sandboxPath, err := filepath.Abs(sandboxPath)
	if err != nil {
		return nil, zerr.Wrap(err, "resolving sandbox path")
	}

	prefixPath, ok := os.LookupEnv("ESY__PREFIX")
	if !ok || prefixPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, zerr.Wrap(err, "resolving default prefix path")
		}
		prefixPath = filepath.Join(home, defaultPrefixDir)
	}
	prefixPath, err = filepath.Abs(prefixPath)
	if err != nil {
		return nil, zerr.Wrap(err, "resolving prefix path")
	}

	cfg := &domain.Config{
		PrefixPath:     prefixPath,
		StorePath:      paddedStorePath(prefixPath),
		LocalStorePath: filepath.Join(sandboxPath, "node_modules", ".cache", "_esy", "store"),
		SandboxPath:    sandboxPath,
		EsyVersion:     esyVersion,
		StoreVersion:   storeVersion,
		StorePadding:   storePadding,
	}

	if l.log != nil {
		l.log.Info("resolved config", "prefixPath", cfg.PrefixPath, "storePath", cfg.StorePath, "sandboxPath", cfg.SandboxPath)
	}

	return cfg, nil
}

// paddedStorePath joins prefixPath with storeVersion and pads the result
// with trailing underscores up to storePadding characters, so a store
// moved to a prefix of a different length can still have its old path
// rewritten in place inside installed binaries.
func paddedStorePath(prefixPath string) string {
	base := filepath.Join(prefixPath, storeVersion)
	pad := storePadding - len(base)
	if pad <= 0 {
		return base
	}
	return base + strings.Repeat("_", pad)
}
