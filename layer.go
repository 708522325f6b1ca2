// FILE: lixenwraith/proptree/layer.go
package proptree

import (
	"errors"
	"fmt"
	"os"
)

// Overlay layers source onto target in place, recursively. Where both sides
// hold a group of the same name the overlay descends into it; where the
// target holds a value leaf, the source leaf's value is assigned to it so the
// target keeps its type, range and subscribers. With addMissing, items absent
// from target are attached by reference and a kind mismatch is resolved in
// favor of source. It returns the number of leaves assigned or added.
func Overlay(target, source *Group, addMissing bool) (int, error) {
	if target == nil || source == nil {
		return 0, ErrNilGroup
	}
	visited := make(map[*Group]bool)
	return overlay(target, source, addMissing, visited)
}

func overlay(target, source *Group, addMissing bool, visited map[*Group]bool) (int, error) {
	if visited[source] {
		return 0, nil
	}
	visited[source] = true

	count := 0
	var errs []error
	for _, sp := range source.Items() {
		tp := target.FindByName(sp.Name())
		if tp == nil {
			if addMissing {
				target.Add(sp)
				count++
			}
			continue
		}

		switch t := tp.(type) {
		case *Group:
			if sg, ok := sp.(*Group); ok {
				n, err := overlay(t, sg, addMissing, visited)
				count += n
				if err != nil {
					errs = append(errs, err)
				}
				continue
			}
		case Valuer:
			if sv, ok := sp.(Valuer); ok {
				if err := t.Assign(sv.Interface()); err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", FullPath(t), err))
					continue
				}
				count++
				continue
			}
		}

		if addMissing {
			target.Remove(tp)
			target.Add(sp)
			count++
		} else {
			errs = append(errs, fmt.Errorf("%w: %s is %s, source item is %s",
				ErrTypeMismatch, FullPath(tp), kindName(tp), kindName(sp)))
		}
	}
	return count, errors.Join(errs...)
}

// Apply assigns flat dotted-path values onto the leaves of tree, converting
// each value to the leaf's type. Keys that do not resolve to a value leaf are
// skipped. It returns the number of assigned leaves; conversion failures are
// collected into the returned error.
func Apply(tree *Group, values map[string]string) (int, error) {
	if tree == nil {
		return 0, ErrNilGroup
	}
	count := 0
	var errs []error
	for _, key := range sortedKeys(values) {
		if !ValidPath(key) {
			continue
		}
		v, ok := FindByPath(tree, key).(Valuer)
		if !ok {
			continue
		}
		if err := v.Assign(values[key]); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		count++
	}
	return count, errors.Join(errs...)
}

// ApplyEnv assigns environment variables onto the leaves of tree. The
// variable for a leaf is EnvName(prefix, path) with path relative to tree.
func ApplyEnv(tree *Group, prefix string) (int, error) {
	if tree == nil {
		return 0, ErrNilGroup
	}
	values := make(map[string]string)
	for rel := range leaves(tree) {
		if value, ok := os.LookupEnv(EnvName(prefix, rel)); ok {
			values[rel] = value
		}
	}
	return Apply(tree, values)
}
