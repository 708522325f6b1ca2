// FILE: lixenwraith/proptree/group.go
package proptree

import (
	"fmt"
	"reflect"
)

// Group is an ordered, name-addressable list of child nodes.
// Order is insertion order and only matters for positional access.
// Names need not be unique; name lookups return the first match.
type Group struct {
	node
	items []Property

	added   handlerSet
	removed handlerSet
}

// NewGroup creates a group and attaches the given items in order.
func NewGroup(name string, items ...Property) *Group {
	g := &Group{}
	g.init(name, g)
	g.AddRange(items...)
	return g
}

// OnAdded subscribes to nodes being attached to the group.
func (g *Group) OnAdded(fn Handler) *Subscription {
	return g.added.add(fn)
}

// OnRemoved subscribes to nodes being detached from the group.
func (g *Group) OnRemoved(fn Handler) *Subscription {
	return g.removed.add(fn)
}

// Add attaches p as the last item. Nil nodes are ignored.
func (g *Group) Add(p Property) {
	if isNil(p) {
		return
	}
	p.asNode().setParent(g)
	g.items = append(g.items, p)
	g.added.fire(p)
}

// AddRange adds every node in order, one added event per node.
func (g *Group) AddRange(items ...Property) {
	for _, p := range items {
		g.Add(p)
	}
}

// Remove detaches the first reference to p. It reports whether p was an item;
// removing an absent node changes nothing and fires no event.
func (g *Group) Remove(p Property) bool {
	idx := g.indexOf(p)
	if idx < 0 {
		return false
	}
	g.items = append(g.items[:idx:idx], g.items[idx+1:]...)
	if n := p.asNode(); n.parent == g {
		n.setParent(nil)
	}
	g.removed.fire(p)
	return true
}

// ClearAll detaches every item, firing removed for each, and empties the group.
func (g *Group) ClearAll() {
	items := g.items
	g.items = nil
	for _, p := range items {
		if n := p.asNode(); n.parent == g {
			n.setParent(nil)
		}
		g.removed.fire(p)
	}
}

// Len returns the number of items.
func (g *Group) Len() int {
	if g == nil {
		return 0
	}
	return len(g.items)
}

// Items returns a copy of the item list.
func (g *Group) Items() []Property {
	if g == nil {
		return nil
	}
	out := make([]Property, len(g.items))
	copy(out, g.items)
	return out
}

// At returns the item at position i.
func (g *Group) At(i int) (Property, error) {
	if g == nil {
		return nil, ErrNilGroup
	}
	if i < 0 || i >= len(g.items) {
		return nil, fmt.Errorf("%w: %d not in [0, %d) of group %q", ErrIndexOutOfRange, i, len(g.items), g.name)
	}
	return g.items[i], nil
}

// ItemAt returns the item at position i as a T.
func ItemAt[T Property](g *Group, i int) (T, error) {
	var zero T
	p, err := g.At(i)
	if err != nil {
		return zero, err
	}
	t, ok := p.(T)
	if !ok {
		return zero, fmt.Errorf("%w: item %d of group %q is %s, not %s",
			ErrTypeMismatch, i, g.name, kindName(p), reflect.TypeFor[T]())
	}
	return t, nil
}

// FindByName returns the first item called name, or nil.
func (g *Group) FindByName(name string) Property {
	if g == nil {
		return nil
	}
	for _, p := range g.items {
		if p.Name() == name {
			return p
		}
	}
	return nil
}

// HasProperty reports whether an item called name exists.
func (g *Group) HasProperty(name string) bool {
	return g.FindByName(name) != nil
}

func (g *Group) indexOf(p Property) int {
	if isNil(p) {
		return -1
	}
	for i, item := range g.items {
		if item == p {
			return i
		}
	}
	return -1
}

// duplicate wraps the same item references in a new group. The items are
// re-parented to the wrapper, as with any reference-sharing merge.
func (g *Group) duplicate(name string) (Property, error) {
	return NewGroup(name, g.items...), nil
}
