// Package patch applies a BuildManifest's ordered patches and substs before
// a build's commands run (§4.8's "materialize source, apply patches and
// substs" step; the mechanism itself is left unspecified by §4, so this is
// a supplemented, narrowly-scoped adapter).
package patch

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"go.forge.sh/esy/internal/core/domain"
	"go.forge.sh/esy/internal/core/ports"
	"go.trai.ch/zerr"
)

// Applier applies patches and substs to a build working directory.
type Applier struct {
	hasher ports.FileHasher
}

// NewApplier creates a new Applier.
func NewApplier(hasher ports.FileHasher) *Applier {
	return &Applier{hasher: hasher}
}

// ApplyPatches applies manifest.Patches, in order, against buildPath using
// the system patch(1) tool. patchRoot is the directory patch paths are
// relative to (the package's source directory).
func (a *Applier) ApplyPatches(buildPath, patchRoot string, patches []domain.PatchEntry) error {
	for _, p := range patches {
		if filepath.IsAbs(p.Path) {
			return zerr.With(zerr.New("patch path must be relative"), "path", p.Path)
		}

		full := filepath.Join(patchRoot, p.Path)
		if _, err := a.hasher.ComputeFileHash(full); err != nil {
			return zerr.With(zerr.Wrap(err, "patch file unreadable"), "path", full)
		}

		//nolint:gosec // patch path originates from a resolved manifest, not raw user input
		cmd := exec.Command("patch", "-p1", "-d", buildPath, "-i", full)
		var stderr bytes.Buffer
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			return zerr.With(zerr.Wrap(err, "patch apply failed"), "path", p.Path).(*zerr.Error).With("stderr", stderr.String())
		}
	}
	return nil
}

// ApplySubsts rewrites each path in substs (relative to buildPath),
// expanding %{name}%-style tokens against env.
func (a *Applier) ApplySubsts(buildPath string, substs []string, env map[string]string) error {
	for _, rel := range substs {
		if filepath.IsAbs(rel) {
			return zerr.With(zerr.New("subst path must be relative"), "path", rel)
		}

		full := filepath.Join(buildPath, rel)
		//nolint:gosec // path is joined under buildPath, not attacker controlled
		data, err := os.ReadFile(full)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "subst source unreadable"), "path", full)
		}

		expanded := expandTokens(string(data), env)

		//nolint:gosec // path is joined under buildPath, not attacker controlled
		if err := os.WriteFile(full, []byte(expanded), 0o644); err != nil {
			return zerr.With(zerr.Wrap(err, "subst write failed"), "path", full)
		}
	}
	return nil
}

// expandTokens replaces every %{name}% occurrence in s with env[name],
// leaving unknown tokens untouched.
func expandTokens(s string, env map[string]string) string {
	var out strings.Builder
	scanner := bufio.NewScanner(strings.NewReader(s))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	first := true
	for scanner.Scan() {
		if !first {
			out.WriteByte('\n')
		}
		first = false
		out.WriteString(expandLine(scanner.Text(), env))
	}
	if strings.HasSuffix(s, "\n") {
		out.WriteByte('\n')
	}
	return out.String()
}

func expandLine(line string, env map[string]string) string {
	var out strings.Builder
	for {
		start := strings.Index(line, "%{")
		if start < 0 {
			out.WriteString(line)
			break
		}
		end := strings.Index(line[start:], "}%")
		if end < 0 {
			out.WriteString(line)
			break
		}
		end += start

		out.WriteString(line[:start])
		name := line[start+2 : end]
		if v, ok := env[name]; ok {
			out.WriteString(v)
		} else {
			out.WriteString(fmt.Sprintf("%%{%s}%%", name))
		}
		line = line[end+2:]
	}
	return out.String()
}
