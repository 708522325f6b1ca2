// FILE: lixenwraith/proptree/property.go
package proptree

import (
	"fmt"
	"reflect"
)

// Property is a node of the tree: a Group, a Value, an Adapter or an Action.
// The set of implementations is closed to this package so that every node
// kind has a known duplication rule for the Rename merge strategy.
type Property interface {
	// Name returns the node name. It never changes after construction.
	Name() string

	// Parent returns the group currently holding the node, or nil.
	Parent() *Group

	// OnUpdated subscribes to changes of the node's own value.
	OnUpdated(fn Handler) *Subscription

	// OnChildUpdated subscribes to changes bubbling up from descendants.
	// The handler receives the direct child the notification came through.
	OnChildUpdated(fn Handler) *Subscription

	asNode() *node
	duplicate(name string) (Property, error)
}

// Handler receives the node an event is about.
type Handler func(p Property)

// node carries identity, the parent link and the two Property events.
// Every node kind embeds it.
type node struct {
	name   string
	parent *Group

	// this is the embedding value, passed to handlers
	this Property

	updated      handlerSet
	childUpdated handlerSet

	// notifying marks a node whose childUpdated event is being raised.
	// A pass never re-enters a marked node, which bounds bubbling on cyclic parent chains.
	notifying bool
}

func (n *node) init(name string, this Property) {
	n.name = name
	n.this = this
}

// Name returns the node name.
func (n *node) Name() string {
	return n.name
}

// Parent returns the owning group, nil for detached nodes.
func (n *node) Parent() *Group {
	return n.parent
}

// OnUpdated registers fn for the node's own change events.
func (n *node) OnUpdated(fn Handler) *Subscription {
	return n.updated.add(fn)
}

// OnChildUpdated registers fn for change events bubbling up from descendants.
func (n *node) OnChildUpdated(fn Handler) *Subscription {
	return n.childUpdated.add(fn)
}

func (n *node) asNode() *node {
	return n
}

// setParent is only called by Group. A change of parent is a structural change
// and bubbles up the new parent's chain, or the old one's on detach.
func (n *node) setParent(g *Group) {
	if n.parent == g {
		return
	}
	old := n.parent
	n.parent = g
	if g != nil {
		notifyChildUpdated(g, n.this)
	} else {
		notifyChildUpdated(old, n.this)
	}
}

// raiseUpdated fires updated(self) and bubbles the change to the parent.
func (n *node) raiseUpdated() {
	n.updated.fire(n.this)
	if n.parent != nil {
		notifyChildUpdated(n.parent, n.this)
	}
}

// notifyChildUpdated raises childUpdated(child) on parent and continues with
// the parent's own parent. The notifying mark is cleared on the way out,
// including when a handler panics.
func notifyChildUpdated(parent *Group, child Property) {
	if parent == nil {
		return
	}
	pn := &parent.node
	if pn.notifying {
		return
	}
	pn.notifying = true
	defer func() { pn.notifying = false }()

	pn.childUpdated.fire(child)
	if pn.parent != nil {
		notifyChildUpdated(pn.parent, parent)
	}
}

// Subscription is the handle returned when registering a Handler.
type Subscription struct {
	id  uint64
	set *handlerSet
}

// Unsubscribe removes the handler. Calling it more than once is harmless.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.set == nil {
		return
	}
	s.set.remove(s.id)
	s.set = nil
}

type handlerEntry struct {
	id uint64
	fn Handler
}

// handlerSet keeps handlers in registration order.
type handlerSet struct {
	nextID  uint64
	entries []handlerEntry
}

func (h *handlerSet) add(fn Handler) *Subscription {
	if fn == nil {
		return &Subscription{}
	}
	h.nextID++
	h.entries = append(h.entries, handlerEntry{id: h.nextID, fn: fn})
	return &Subscription{id: h.nextID, set: h}
}

func (h *handlerSet) remove(id uint64) {
	for i, e := range h.entries {
		if e.id == id {
			h.entries = append(h.entries[:i:i], h.entries[i+1:]...)
			return
		}
	}
}

// fire calls a snapshot of the handlers so that handlers may (un)subscribe while running.
func (h *handlerSet) fire(p Property) {
	if len(h.entries) == 0 {
		return
	}
	snapshot := make([]handlerEntry, len(h.entries))
	copy(snapshot, h.entries)
	for _, e := range snapshot {
		e.fn(p)
	}
}

// isNil reports whether p is nil or a typed nil pointer.
func isNil(p Property) bool {
	if p == nil {
		return true
	}
	v := reflect.ValueOf(p)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// kindName names the concrete kind of p for error messages.
func kindName(p Property) string {
	if isNil(p) {
		return "<nil>"
	}
	return fmt.Sprintf("%T", p)
}
