// FILE: lixenwraith/proptree/path.go
package proptree

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// PathSeparator separates segments of a path.
const PathSeparator = "."

// Wildcard matches every item at one level of a pattern.
const Wildcard = "*"

// FindByPath resolves a dot-separated path below g, e.g. "Video.Resolution.Width".
// Each segment matches the first item with that exact name; every segment
// but the last must resolve to a group. It returns nil when nothing matches.
func FindByPath(g *Group, path string) Property {
	if g == nil || path == "" {
		return nil
	}
	return findByParts(g, strings.Split(path, PathSeparator), 0, make(map[*Group]struct{}))
}

// visited holds the groups on the current descent only, so that a group
// reachable from itself ends the branch instead of looping.
func findByParts(g *Group, parts []string, i int, visited map[*Group]struct{}) Property {
	if i >= len(parts) {
		return nil
	}
	if _, seen := visited[g]; seen {
		return nil
	}
	visited[g] = struct{}{}
	defer delete(visited, g)

	for _, item := range g.items {
		if item.Name() != parts[i] {
			continue
		}
		if i == len(parts)-1 {
			return item
		}
		sub, ok := item.(*Group)
		if !ok {
			return nil
		}
		return findByParts(sub, parts, i+1, visited)
	}
	return nil
}

// GetByPath is FindByPath failing with ErrPathNotFound instead of returning nil.
func GetByPath(g *Group, path string) (Property, error) {
	p := FindByPath(g, path)
	if p == nil {
		return nil, fmt.Errorf("%w: %s", ErrPathNotFound, path)
	}
	return p, nil
}

// FindByPathAs resolves path and returns the node as a T. ok is false when
// nothing lives at the path or the node is of another kind.
func FindByPathAs[T Property](g *Group, path string) (T, bool) {
	t, ok := FindByPath(g, path).(T)
	return t, ok
}

// GetByPathAs resolves path and returns the node as a T, failing with
// ErrPathNotFound or ErrTypeMismatch.
func GetByPathAs[T Property](g *Group, path string) (T, error) {
	var zero T
	p, err := GetByPath(g, path)
	if err != nil {
		return zero, err
	}
	t, ok := p.(T)
	if !ok {
		return zero, fmt.Errorf("%w: property at path %q is %s, not %s",
			ErrTypeMismatch, path, kindName(p), reflect.TypeFor[T]())
	}
	return t, nil
}

// FindByPattern collects every node matching a dotted pattern whose segments
// are names or the wildcard "*", e.g. "Enemies.*.Health".
func FindByPattern(g *Group, pattern string) []Property {
	var results []Property
	if g == nil || pattern == "" {
		return results
	}
	collectByPattern(g, strings.Split(pattern, PathSeparator), 0, &results, make(map[*Group]struct{}))
	return results
}

func collectByPattern(g *Group, parts []string, i int, results *[]Property, visited map[*Group]struct{}) {
	if i >= len(parts) {
		return
	}
	if _, seen := visited[g]; seen {
		return
	}
	visited[g] = struct{}{}
	defer delete(visited, g)

	last := i == len(parts)-1
	for _, item := range g.items {
		if parts[i] != Wildcard && item.Name() != parts[i] {
			continue
		}
		if last {
			*results = append(*results, item)
		} else if sub, ok := item.(*Group); ok {
			collectByPattern(sub, parts, i+1, results, visited)
		}
	}
}

// FindByPrefix returns every descendant of g whose full path starts with
// prefix. The match is a plain string prefix: "Game.Combat" also matches
// "Game.CombatZone". Use FindBySegmentPrefix to match whole segments.
func FindByPrefix(g *Group, prefix string) []Property {
	if g == nil || prefix == "" {
		return nil
	}
	all := AllProperties(g)
	results := all[:0]
	for _, p := range all {
		if strings.HasPrefix(FullPath(p), prefix) {
			results = append(results, p)
		}
	}
	return results
}

// FindBySegmentPrefix returns every descendant of g whose full path equals
// prefix or continues it with a separator.
func FindBySegmentPrefix(g *Group, prefix string) []Property {
	if g == nil || prefix == "" {
		return nil
	}
	prefix = strings.TrimSuffix(prefix, PathSeparator)
	var results []Property
	for _, p := range AllProperties(g) {
		path := FullPath(p)
		if path == prefix || strings.HasPrefix(path, prefix+PathSeparator) {
			results = append(results, p)
		}
	}
	return results
}

// AllProperties flattens g depth-first in pre-order, g itself excluded.
func AllProperties(g *Group) []Property {
	var results []Property
	if g == nil {
		return results
	}
	collectAll(g, &results, make(map[*Group]struct{}))
	return results
}

func collectAll(g *Group, results *[]Property, visited map[*Group]struct{}) {
	if _, seen := visited[g]; seen {
		return
	}
	visited[g] = struct{}{}
	defer delete(visited, g)

	for _, item := range g.items {
		*results = append(*results, item)
		if sub, ok := item.(*Group); ok {
			collectAll(sub, results, visited)
		}
	}
}

// FullPath joins the names from the root down to p, e.g. "Root.Video.Width".
// A detached node yields its own name and nil yields "".
func FullPath(p Property) string {
	if isNil(p) {
		return ""
	}
	var names []string
	walkUp(p, func(n Property) {
		names = append(names, n.Name())
	})
	slices.Reverse(names)
	return strings.Join(names, PathSeparator)
}

// Depth counts parent hops up to the root: 0 for a root, -1 for nil.
func Depth(p Property) int {
	if isNil(p) {
		return -1
	}
	depth := -1
	walkUp(p, func(Property) { depth++ })
	return depth
}

// IsAtLevel reports whether p sits at the given depth.
func IsAtLevel(p Property, level int) bool {
	return Depth(p) == level
}

// ParentChain returns the ancestors of p from the root down to its parent.
func ParentChain(p Property) []*Group {
	chain := []*Group{}
	if isNil(p) {
		return chain
	}
	walkUp(p, func(n Property) {
		if g, ok := n.(*Group); ok && n != p {
			chain = append(chain, g)
		}
	})
	slices.Reverse(chain)
	return chain
}

// walkUp calls fn on p and each ancestor, stopping at the root or at the
// first ancestor already seen on a cyclic parent chain.
func walkUp(p Property, fn func(n Property)) {
	seen := make(map[Property]struct{})
	cur := p
	for {
		if _, ok := seen[cur]; ok {
			return
		}
		seen[cur] = struct{}{}
		fn(cur)
		parent := cur.Parent()
		if parent == nil {
			return
		}
		cur = parent
	}
}
