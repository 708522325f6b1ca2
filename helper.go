// File: lixenwraith/proptree/helper.go
package proptree

import (
	"slices"
	"strings"
)

// ValidPath reports whether every segment of a dotted path is a bare key:
// ASCII letters, digits, underscores and dashes.
func ValidPath(path string) bool {
	if path == "" {
		return false
	}
	for _, segment := range strings.Split(path, PathSeparator) {
		if !isValidKeySegment(segment) {
			return false
		}
	}
	return true
}

// isValidKeySegment checks if a single path segment is a valid TOML bare key.
func isValidKeySegment(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		isLetter := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
		isDigit := r >= '0' && r <= '9'
		if !(isLetter || isDigit || r == '_' || r == '-') {
			return false
		}
	}
	return true
}

// relativePath returns the dotted path of p below root, without root's name.
// ok is false when root is not an ancestor of p.
func relativePath(root *Group, p Property) (string, bool) {
	var names []string
	found := false
	walkUp(p, func(n Property) {
		if found {
			return
		}
		if g, isGroup := n.(*Group); isGroup && g == root {
			found = true
			return
		}
		names = append(names, n.Name())
	})
	if !found || len(names) == 0 {
		return "", false
	}
	slices.Reverse(names)
	return strings.Join(names, PathSeparator), true
}

// leaves returns every value leaf below g with its path relative to g.
func leaves(g *Group) map[string]Valuer {
	out := make(map[string]Valuer)
	for _, p := range AllProperties(g) {
		v, ok := p.(Valuer)
		if !ok {
			continue
		}
		if rel, ok := relativePath(g, v); ok {
			if _, dup := out[rel]; !dup {
				out[rel] = v
			}
		}
	}
	return out
}
