package manifest

import (
	"bufio"
	"strings"

	"go.forge.sh/esy/internal/core/domain"
	"go.trai.ch/zerr"
)

// parseOpam parses the subset of the opam file format this core cares
// about: build:, install:, patches:, substs:, version:, name: fields, each
// holding an S-expression-like `[...]` list. There is no opam-parsing
// library in the retrieved corpus, so this hand-rolled, line-oriented
// parser only recognizes the fields the spec names and ignores the rest.
func parseOpam(data []byte, nameFallback string) (*domain.BuildManifest, error) {
	m := &domain.BuildManifest{
		Name:      nameFallback,
		BuildType: domain.BuildInSource,
	}

	scanner := bufio.NewScanner(strings.NewReader(string(data)))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		field, rest, ok := splitField(line)
		if !ok {
			continue
		}

		switch field {
		case "name":
			if v, ok := unquote(rest); ok {
				m.Name = v
			}
		case "version":
			if v, ok := unquote(rest); ok {
				m.Version = v
			}
		case "build":
			cmds, err := parseOpamCommandBlock(scanner, rest)
			if err != nil {
				return nil, err
			}
			m.Build = domain.CommandList{Origin: domain.OriginOpam, Commands: cmds}
		case "install":
			cmds, err := parseOpamCommandBlock(scanner, rest)
			if err != nil {
				return nil, err
			}
			m.Install = domain.CommandList{Origin: domain.OriginOpam, Commands: cmds}
		case "patches":
			entries, err := parsePatchBlock(scanner, rest)
			if err != nil {
				return nil, err
			}
			m.Patches = entries
		case "substs":
			paths, err := parseStringListBlock(scanner, rest)
			if err != nil {
				return nil, err
			}
			m.Substs = paths
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "opam scan failed"), "error_category", "parse")
	}

	if !strings.HasPrefix(m.Name, "@opam/") {
		m.Name = "@opam/" + m.Name
	}

	return m, nil
}

// splitField splits "name: rest" into ("name", "rest"). rest may be empty
// when the value spans subsequent lines up to the closing bracket.
func splitField(line string) (field, rest string, ok bool) {
	idx := strings.Index(line, ":")
	if idx < 0 {
		return "", "", false
	}
	field = strings.TrimSpace(line[:idx])
	if field == "" {
		return "", "", false
	}
	rest = strings.TrimSpace(line[idx+1:])
	return field, rest, true
}

// collectBlock gathers the full bracketed value for a field, starting with
// first (the remainder of the field's own line), reading further lines from
// scanner until brackets balance.
func collectBlock(scanner *bufio.Scanner, first string) (string, error) {
	var b strings.Builder
	b.WriteString(first)
	depth := strings.Count(first, "[") - strings.Count(first, "]")
	for depth > 0 && scanner.Scan() {
		line := scanner.Text()
		b.WriteByte('\n')
		b.WriteString(line)
		depth += strings.Count(line, "[") - strings.Count(line, "]")
	}
	return b.String(), nil
}

// parseOpamCommandBlock parses a `[ ["tok" "tok"] ["tok"] ]` or single
// `["tok" "tok"]` command block into individual Commands.
func parseOpamCommandBlock(scanner *bufio.Scanner, first string) ([]domain.Command, error) {
	block, err := collectBlock(scanner, first)
	if err != nil {
		return nil, err
	}

	inner, ok := bracketed(block)
	if !ok {
		return nil, nil
	}

	var commands []domain.Command
	for _, sub := range splitTopLevelBrackets(inner) {
		toks := tokenize(sub)
		if len(toks) > 0 {
			commands = append(commands, domain.Command(toks))
		}
	}
	if len(commands) == 0 {
		// A command list can be a single flat command, not a list of lists.
		if toks := tokenize(inner); len(toks) > 0 {
			commands = append(commands, domain.Command(toks))
		}
	}
	return commands, nil
}

// parsePatchBlock parses `[ "a.patch" {filter} "b.patch" ]` entries.
func parsePatchBlock(scanner *bufio.Scanner, first string) ([]domain.PatchEntry, error) {
	block, err := collectBlock(scanner, first)
	if err != nil {
		return nil, err
	}
	inner, ok := bracketed(block)
	if !ok {
		return nil, nil
	}

	var entries []domain.PatchEntry
	toks := tokenize(inner)
	for i := 0; i < len(toks); i++ {
		tok := toks[i]
		if strings.HasPrefix(tok, "{") {
			continue
		}
		entry := domain.PatchEntry{Path: tok}
		if i+1 < len(toks) && strings.HasPrefix(toks[i+1], "{") {
			entry.Filter = strings.Trim(toks[i+1], "{}")
			i++
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseStringListBlock(scanner *bufio.Scanner, first string) ([]string, error) {
	block, err := collectBlock(scanner, first)
	if err != nil {
		return nil, err
	}
	inner, ok := bracketed(block)
	if !ok {
		if v, ok := unquote(first); ok {
			return []string{v}, nil
		}
		return nil, nil
	}
	return tokenize(inner), nil
}

// bracketed strips one layer of enclosing [ ... ], returning its inner text.
func bracketed(s string) (string, bool) {
	s = strings.TrimSpace(s)
	start := strings.Index(s, "[")
	end := strings.LastIndex(s, "]")
	if start < 0 || end < 0 || end < start {
		return "", false
	}
	return s[start+1 : end], true
}

// splitTopLevelBrackets splits a string like `["a" "b"] ["c"]` into its
// top-level bracketed segments.
func splitTopLevelBrackets(s string) []string {
	var segments []string
	depth := 0
	var cur strings.Builder
	for _, r := range s {
		switch r {
		case '[':
			depth++
			if depth == 1 {
				cur.Reset()
				continue
			}
		case ']':
			depth--
			if depth == 0 {
				segments = append(segments, cur.String())
				continue
			}
		}
		if depth >= 1 {
			cur.WriteRune(r)
		}
	}
	return segments
}

// tokenize splits quoted and bare tokens, ignoring brackets and filter
// braces so callers can re-detect them by prefix.
func tokenize(s string) []string {
	var toks []string
	var cur strings.Builder
	inQuote := false
	inBrace := false
	flush := func() {
		if cur.Len() > 0 {
			toks = append(toks, cur.String())
			cur.Reset()
		}
	}
	for _, r := range s {
		switch {
		case r == '"' && !inBrace:
			if inQuote {
				flush()
			}
			inQuote = !inQuote
		case inQuote:
			cur.WriteRune(r)
		case r == '{':
			flush()
			inBrace = true
			cur.WriteRune(r)
		case r == '}':
			cur.WriteRune(r)
			flush()
			inBrace = false
		case inBrace:
			cur.WriteRune(r)
		case r == '[' || r == ']':
			flush()
		case r == ' ' || r == '\n' || r == '\t':
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return toks
}

func unquote(s string) (string, bool) {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"")
	if s == "" {
		return "", false
	}
	return s, true
}
