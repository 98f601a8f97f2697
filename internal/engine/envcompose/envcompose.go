// Package envcompose expands symbolic environment-variable references
// against a list of bindings collected in insertion order, and renders the
// closed result as shell-source or JSON (§4.5). Adapted from the teacher's
// nix.EnvFactory/ParseNixDevEnv environment-variable handling style,
// reworked from resolving Nix tool specs (out of scope) to expanding
// references in an already-collected binding list.
package envcompose

import (
	"encoding/json"
	"strings"

	"go.trai.ch/zerr"

	"go.forge.sh/esy/internal/core/domain"
)

// Binding is one (name, value) pair, where value may reference earlier
// bindings via $NAME or ${NAME}.
type Binding struct {
	Name  string
	Value string
}

// ClosedEnv is the result of expanding a binding list: every value has been
// resolved against bindings that preceded it.
type ClosedEnv struct {
	order  []string
	values map[string]string
}

// RenderFormat selects ClosedEnv.Render's output shape.
type RenderFormat int

const (
	// RenderShell renders a header comment followed by shell-quoted
	// `export NAME=value` lines.
	RenderShell RenderFormat = iota
	// RenderJSON renders a pretty-printed {name: value} object.
	RenderJSON
)

// Compose expands bindings in insertion order, giving PATH cons (prepend)
// semantics to any binding named PATH and returning domain.ErrUnknownEnvRef
// on an unresolved reference. The result is order-preserving and idempotent:
// composing an already-closed environment's bindings again yields the same
// values.
func Compose(bindings []Binding) (ClosedEnv, error) {
	env := ClosedEnv{values: make(map[string]string, len(bindings))}

	for _, b := range bindings {
		expanded, err := expand(b.Value, env.values)
		if err != nil {
			return ClosedEnv{}, zerr.With(err, "binding", b.Name)
		}

		if b.Name == "PATH" {
			if existing, ok := env.values["PATH"]; ok && existing != "" {
				expanded = expanded + ":" + existing
			}
		}

		if _, ok := env.values[b.Name]; !ok {
			env.order = append(env.order, b.Name)
		}
		env.values[b.Name] = expanded
	}

	return env, nil
}

// Get returns the expanded value for name.
func (e ClosedEnv) Get(name string) (string, bool) {
	v, ok := e.values[name]
	return v, ok
}

// Names returns the bound variable names in insertion order.
func (e ClosedEnv) Names() []string {
	return append([]string(nil), e.order...)
}

// Render serializes the closed environment as shell-source or JSON.
func (e ClosedEnv) Render(format RenderFormat) ([]byte, error) {
	switch format {
	case RenderShell:
		return e.renderShell(), nil
	case RenderJSON:
		return e.renderJSON()
	default:
		return nil, zerr.With(zerr.New("unknown render format"), "format", int(format))
	}
}

func (e ClosedEnv) renderShell() []byte {
	var b strings.Builder
	b.WriteString("# generated by esy, do not edit\n")
	for _, name := range e.order {
		b.WriteString("export ")
		b.WriteString(name)
		b.WriteString("=")
		b.WriteString(shellQuote(e.values[name]))
		b.WriteString("\n")
	}
	return []byte(b.String())
}

func (e ClosedEnv) renderJSON() ([]byte, error) {
	ordered := make(map[string]string, len(e.values))
	for k, v := range e.values {
		ordered[k] = v
	}
	data, err := json.MarshalIndent(ordered, "", "  ")
	if err != nil {
		return nil, zerr.Wrap(err, "render json failed")
	}
	return data, nil
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// expand substitutes every $NAME or ${NAME} reference in value against
// resolved, returning domain.ErrUnknownEnvRef for the first name not found.
func expand(value string, resolved map[string]string) (string, error) {
	var b strings.Builder
	i := 0
	for i < len(value) {
		if value[i] != '$' {
			b.WriteByte(value[i])
			i++
			continue
		}

		name, width, braced := readRef(value[i+1:])
		if name == "" {
			b.WriteByte(value[i])
			i++
			continue
		}

		v, ok := resolved[name]
		if !ok {
			return "", zerr.With(domain.ErrUnknownEnvRef, "ref", name)
		}
		b.WriteString(v)
		i += 1 + width
		_ = braced
	}
	return b.String(), nil
}

// readRef reads a $NAME or ${NAME} reference starting right after the '$',
// returning the referenced name and how many bytes (excluding the leading
// '$') it consumed.
func readRef(rest string) (name string, width int, braced bool) {
	if strings.HasPrefix(rest, "{") {
		end := strings.IndexByte(rest, '}')
		if end < 0 {
			return "", 0, false
		}
		return rest[1:end], end + 1, true
	}

	end := 0
	for end < len(rest) && isNameByte(rest[end]) {
		end++
	}
	return rest[:end], end, false
}

func isNameByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}
