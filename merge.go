// FILE: lixenwraith/proptree/merge.go
package proptree

import (
	"fmt"
	"strconv"
	"strings"
)

// MergeStrategy decides what happens when a source item's name is already
// taken in the target.
type MergeStrategy int

const (
	// Overwrite removes the target item and appends the source item.
	Overwrite MergeStrategy = iota
	// Skip keeps the target item and drops the source item.
	Skip
	// Throw fails with ErrPropertyExists.
	Throw
	// Rename appends a copy of the source item named name_1, name_2, ...
	Rename
)

// String returns the strategy name.
func (s MergeStrategy) String() string {
	switch s {
	case Overwrite:
		return "overwrite"
	case Skip:
		return "skip"
	case Throw:
		return "throw"
	case Rename:
		return "rename"
	default:
		return "unknown"
	}
}

// ParseMergeStrategy parses a strategy name, case-insensitively.
func ParseMergeStrategy(s string) (MergeStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "overwrite", "":
		return Overwrite, nil
	case "skip":
		return Skip, nil
	case "throw":
		return Throw, nil
	case "rename":
		return Rename, nil
	default:
		return Overwrite, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}

// Merge adds source's items to target in order. Items without a name conflict
// are appended by reference, so the same node ends up parented to target.
// Conflicts are resolved by strategy. It returns how many source items were
// added or overwrote an existing item.
func Merge(target, source *Group, strategy MergeStrategy) (int, error) {
	if target == nil || source == nil {
		return 0, ErrNilGroup
	}

	merged := 0
	for _, p := range source.Items() {
		ok, err := mergeItem(target, p, strategy)
		if err != nil {
			return merged, err
		}
		if ok {
			merged++
		}
	}
	return merged, nil
}

// MergeAll merges each source into target in order and sums the counts.
// Under Overwrite, later sources win over earlier ones.
func MergeAll(target *Group, sources []*Group, strategy MergeStrategy) (int, error) {
	if target == nil {
		return 0, ErrNilGroup
	}
	total := 0
	for i, src := range sources {
		n, err := Merge(target, src, strategy)
		total += n
		if err != nil {
			return total, fmt.Errorf("merging source %d: %w", i, err)
		}
	}
	return total, nil
}

// MergeToNew merges all sources, in order, into a new empty group.
// The sources' item lists are left unchanged.
func MergeToNew(name string, strategy MergeStrategy, sources ...*Group) (*Group, error) {
	result := NewGroup(name)
	if _, err := MergeAll(result, sources, strategy); err != nil {
		return nil, err
	}
	return result, nil
}

func mergeItem(target *Group, p Property, strategy MergeStrategy) (bool, error) {
	existing := target.FindByName(p.Name())
	if existing == nil {
		target.Add(p)
		return true, nil
	}

	switch strategy {
	case Overwrite:
		target.Remove(existing)
		target.Add(p)
		return true, nil
	case Skip:
		return false, nil
	case Throw:
		return false, fmt.Errorf("%w: %q", ErrPropertyExists, p.Name())
	case Rename:
		renamed, err := p.duplicate(uniqueName(target, p.Name()))
		if err != nil {
			return false, err
		}
		target.Add(renamed)
		return true, nil
	default:
		return false, fmt.Errorf("%w: %d", ErrUnknownStrategy, int(strategy))
	}
}

// uniqueName probes name_1, name_2, ... until one is free in g.
func uniqueName(g *Group, name string) string {
	for i := 1; ; i++ {
		candidate := name + "_" + strconv.Itoa(i)
		if !g.HasProperty(candidate) {
			return candidate
		}
	}
}

// LeftMerge keeps target's key set: every target item that has a same-named
// item in source is replaced by that source item (by reference). Items only
// in source are never added. It returns the number of replaced items.
func LeftMerge(target, source *Group) (int, error) {
	if target == nil || source == nil {
		return 0, ErrNilGroup
	}

	updated := 0
	for _, p := range target.Items() {
		replacement := source.FindByName(p.Name())
		if replacement == nil {
			continue
		}
		target.Remove(p)
		target.Add(replacement)
		updated++
	}
	return updated, nil
}

// LeftMergeAll left-merges each source into target in order.
func LeftMergeAll(target *Group, sources []*Group) (int, error) {
	if target == nil {
		return 0, ErrNilGroup
	}
	total := 0
	for i, src := range sources {
		n, err := LeftMerge(target, src)
		total += n
		if err != nil {
			return total, fmt.Errorf("left-merging source %d: %w", i, err)
		}
	}
	return total, nil
}

// LeftMergeToNew copies target's items into a new group and left-merges the
// sources into the copy. target's item list is left unchanged.
func LeftMergeToNew(name string, target *Group, sources ...*Group) (*Group, error) {
	if target == nil {
		return nil, ErrNilGroup
	}
	result := NewGroup(name)
	if _, err := Merge(result, target, Overwrite); err != nil {
		return nil, err
	}
	if _, err := LeftMergeAll(result, sources); err != nil {
		return nil, err
	}
	return result, nil
}
