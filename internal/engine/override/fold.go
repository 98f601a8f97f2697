// Package override implements the build manifest override fold (§4.2):
// applying a single layered patch to a normalized manifest, and folding an
// ordered stack of them left-to-right.
package override

import "go.forge.sh/esy/internal/core/domain"

// Apply returns a new manifest with override applied on top of manifest. It
// is a total, pure function: every field of override is optional and an
// absent field leaves the corresponding manifest field untouched.
func Apply(manifest *domain.BuildManifest, ov domain.BuildOverride) *domain.BuildManifest {
	out := manifest.Clone()

	if ov.BuildType != nil {
		out.BuildType = *ov.BuildType
	}
	if ov.Build != nil {
		out.Build = domain.CommandList{Origin: domain.OriginEsy, Commands: ov.Build}
	}
	if ov.Install != nil {
		out.Install = domain.CommandList{Origin: domain.OriginEsy, Commands: ov.Install}
	}
	if ov.ExportedEnv != nil {
		out.ExportedEnv = cloneExportedEnv(*ov.ExportedEnv)
	}
	if ov.BuildEnv != nil {
		out.BuildEnv = cloneStringMap(*ov.BuildEnv)
	}
	if ov.ExportedEnvOverride != nil {
		out.ExportedEnv = applyExportedEnvDiff(out.ExportedEnv, *ov.ExportedEnvOverride)
	}
	if ov.BuildEnvOverride != nil {
		out.BuildEnv = applyEnvDiff(out.BuildEnv, *ov.BuildEnvOverride)
	}

	return out
}

// FoldAll applies overrides left-to-right over manifest. Because each
// override is pushed in discovery order and replaces/diffs on top of the
// previous result, the outermost (last) override wins on any field it sets.
func FoldAll(manifest *domain.BuildManifest, overrides []domain.BuildOverride) *domain.BuildManifest {
	out := manifest
	for _, ov := range overrides {
		out = Apply(out, ov)
	}
	return out
}

// applyEnvDiff applies a remove -> add -> update diff to a plain string map,
// in that fixed order (§4.2).
func applyEnvDiff(env map[string]string, diff domain.EnvDiff) map[string]string {
	out := cloneStringMap(env)
	if out == nil {
		out = make(map[string]string)
	}
	for _, k := range diff.Remove {
		delete(out, k)
	}
	for k, v := range diff.Add {
		out[k] = v
	}
	for k, v := range diff.Update {
		out[k] = v
	}
	return out
}

// applyExportedEnvDiff applies the same remove -> add -> update diff to an
// exported-env map. Added and updated entries default to local scope, since
// the diff's add/update values are plain strings, not (value, scope) pairs.
func applyExportedEnvDiff(env map[string]domain.ExportedEnvEntry, diff domain.EnvDiff) map[string]domain.ExportedEnvEntry {
	out := cloneExportedEnv(env)
	if out == nil {
		out = make(map[string]domain.ExportedEnvEntry)
	}
	for _, k := range diff.Remove {
		delete(out, k)
	}
	for k, v := range diff.Add {
		out[k] = domain.ExportedEnvEntry{Value: v, Scope: domain.ScopeLocal}
	}
	for k, v := range diff.Update {
		entry := out[k]
		entry.Value = v
		out[k] = entry
	}
	return out
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneExportedEnv(m map[string]domain.ExportedEnvEntry) map[string]domain.ExportedEnvEntry {
	if m == nil {
		return nil
	}
	out := make(map[string]domain.ExportedEnvEntry, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
