// Package sandboxcache persists a planned SandboxInfo on disk, keyed by
// configuration identity, invalidated by the modification times of the
// manifest files that contributed to it (§4.7).
package sandboxcache

import (
	"bytes"
	"encoding/binary"
	"encoding/gob"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
	"go.forge.sh/esy/internal/core/domain"
	"go.forge.sh/esy/internal/core/ports"
	"go.trai.ch/zerr"
)

// magic identifies a sandbox cache blob; schemaVersion is bumped whenever
// domain.SandboxInfo's gob-encoded shape changes incompatibly.
const (
	magic         = "ESYSB"
	schemaVersion = uint32(1)
)

var _ ports.SandboxCache = (*Store)(nil)

// Store implements ports.SandboxCache using the binary format specified by
// §4.7/§6: a magic + version header followed by a gob-encoded SandboxInfo.
type Store struct {
	logger ports.Logger
}

// NewStore creates a new Store.
func NewStore(logger ports.Logger) *Store {
	return &Store{logger: logger}
}

// cachePath returns sandboxPath/node_modules/.cache/_esy/sandbox-<H> where H
// is the hex xxhash of the config's identity string (§4.7).
func cachePath(cfg *domain.Config) string {
	h := xxhash.Sum64String(cfg.StorePath + "$$" + cfg.LocalStorePath + "$$" + cfg.SandboxPath + "$$" + cfg.EsyVersion)
	return filepath.Join(cfg.SandboxPath, "node_modules", ".cache", "_esy", fmt.Sprintf("sandbox-%016x", h))
}

// Read loads the cached SandboxInfo for cfg, returning (nil, false) on any
// absence, corruption, version mismatch, or stale manifest witness — never
// an error (§4.7's "I/O errors on read -> None").
func (s *Store) Read(cfg *domain.Config) (*domain.SandboxInfo, bool) {
	path := cachePath(cfg)

	//nolint:gosec // path is derived from trusted config, not user input
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("sandbox cache read failed", "path", path, "error", err)
		}
		return nil, false
	}

	info, ok := decode(data)
	if !ok {
		return nil, false
	}

	for _, witness := range info.ManifestInfo {
		stat, err := os.Stat(witness.Path)
		if err != nil {
			return nil, false
		}
		if stat.ModTime().After(witness.MTime) {
			return nil, false
		}
	}

	return info, true
}

// Write persists info for cfg. I/O failures are logged and swallowed (§4.7).
func (s *Store) Write(cfg *domain.Config, info *domain.SandboxInfo) error {
	path := cachePath(cfg)

	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		s.logger.Warn("sandbox cache directory creation failed", "path", path, "error", err)
		return nil
	}

	data, err := encode(info)
	if err != nil {
		s.logger.Warn("sandbox cache encode failed", "path", path, "error", err)
		return nil
	}

	//nolint:gosec // path is derived from trusted config, not user input
	if err := os.WriteFile(path, data, 0o644); err != nil {
		s.logger.Warn("sandbox cache write failed", "path", path, "error", err)
		return nil
	}

	return nil
}

func encode(info *domain.SandboxInfo) ([]byte, error) {
	var payload bytes.Buffer
	if err := gob.NewEncoder(&payload).Encode(info); err != nil {
		return nil, zerr.Wrap(err, "failed to gob-encode sandbox info")
	}

	var out bytes.Buffer
	out.WriteString(magic)
	if err := binary.Write(&out, binary.LittleEndian, schemaVersion); err != nil {
		return nil, zerr.Wrap(err, "failed to write schema version")
	}
	out.Write(payload.Bytes())
	return out.Bytes(), nil
}

func decode(data []byte) (*domain.SandboxInfo, bool) {
	if len(data) < len(magic)+4 {
		return nil, false
	}
	if string(data[:len(magic)]) != magic {
		return nil, false
	}
	version := binary.LittleEndian.Uint32(data[len(magic) : len(magic)+4])
	if version != schemaVersion {
		return nil, false
	}

	var info domain.SandboxInfo
	if err := gob.NewDecoder(bytes.NewReader(data[len(magic)+4:])).Decode(&info); err != nil {
		return nil, false
	}
	return &info, true
}
