package domain

// EnvDiff is a three-operation diff applied to an environment map: remove,
// then add, then update, in that order (§4.2).
type EnvDiff struct {
	Remove []string
	Add    map[string]string
	Update map[string]string
}

// IsZero reports whether the diff has no operations at all.
func (d *EnvDiff) IsZero() bool {
	return d == nil || (len(d.Remove) == 0 && len(d.Add) == 0 && len(d.Update) == 0)
}

// BuildOverride is a layered patch over a BuildManifest's fields, applied in
// discovery order by the Override Fold (§4.2). Every field is optional;
// absent fields leave the corresponding manifest field untouched.
type BuildOverride struct {
	BuildType *BuildType
	Build     []Command
	Install   []Command

	ExportedEnv *map[string]ExportedEnvEntry
	BuildEnv    *map[string]string

	ExportedEnvOverride *EnvDiff
	BuildEnvOverride    *EnvDiff
}
