package planner

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"go.forge.sh/esy/internal/core/domain"
	"go.trai.ch/zerr"
)

// computeTaskID implements §4.4 step 4 / §3's BuildTask.id invariant: a
// digest over package name, version, normalized manifest, sorted dependency
// ids, patch content digests in listed order, store version, and build
// type. Decomposed into small private methods mirroring the teacher's
// Hasher.ComputeInputHash idiom, so each contributing input is individually
// testable.
func (p *Planner) computeTaskID(pkg *domain.Package, manifest *domain.BuildManifest, depTasks []*domain.BuildTask) (domain.TaskID, error) {
	d := xxhash.New()

	p.hashIdentity(d, pkg)
	p.hashManifest(d, manifest)
	p.hashDependencyIDs(d, depTasks)
	if err := p.hashPatchDigests(d, pkg, manifest); err != nil {
		return "", err
	}
	p.hashConfigAndBuildType(d, manifest)

	return domain.TaskID(fmt.Sprintf("%016x", d.Sum64())), nil
}

func (p *Planner) hashIdentity(d *xxhash.Digest, pkg *domain.Package) {
	_, _ = d.WriteString(pkg.Name)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(pkg.Version)
	_, _ = d.WriteString("\x00")
}

func (p *Planner) hashManifest(d *xxhash.Digest, manifest *domain.BuildManifest) {
	_, _ = d.WriteString(normalizeCommandList(manifest.Build))
	_, _ = d.WriteString(normalizeCommandList(manifest.Install))
	_, _ = d.WriteString(normalizeCommandList(manifest.BuildDev))
	_, _ = d.WriteString(normalizeStringMap(manifest.BuildEnv))
	_, _ = d.WriteString(normalizeExportedEnv(manifest.ExportedEnv))
}

func (p *Planner) hashDependencyIDs(d *xxhash.Digest, depTasks []*domain.BuildTask) {
	for _, id := range sortedDepIDs(depTasks) {
		_, _ = d.WriteString(id)
		_, _ = d.WriteString("\x00")
	}
}

func (p *Planner) hashPatchDigests(d *xxhash.Digest, pkg *domain.Package, manifest *domain.BuildManifest) error {
	for _, patchEntry := range manifest.Patches {
		full := pkg.SourcePath + "/" + patchEntry.Path
		digest, err := p.hasher.ComputeFileHash(full)
		if err != nil {
			return zerr.With(zerr.Wrap(err, "patch content digest failed"), "path", full)
		}
		_, _ = fmt.Fprintf(d, "%016x\x00", digest)
	}
	return nil
}

func (p *Planner) hashConfigAndBuildType(d *xxhash.Digest, manifest *domain.BuildManifest) {
	_, _ = d.WriteString(p.config.StoreVersion)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(string(manifest.BuildType))
}

func normalizeCommandList(c domain.CommandList) string {
	var b strings.Builder
	for _, cmd := range c.Commands {
		b.WriteString(strings.Join(cmd, "\x1f"))
		b.WriteByte('\x1e')
	}
	return b.String()
}

func normalizeStringMap(m map[string]string) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(m[k])
		b.WriteByte('\x1e')
	}
	return b.String()
}

func normalizeExportedEnv(m map[string]domain.ExportedEnvEntry) string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for _, k := range keys {
		v := m[k]
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v.Value)
		b.WriteByte(':')
		b.WriteString(string(v.Scope))
		b.WriteByte('\x1e')
	}
	return b.String()
}
