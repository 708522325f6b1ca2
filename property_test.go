// FILE: lixenwraith/proptree/property_test.go
package proptree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEventBubbling tests updated and child-updated propagation
func TestEventBubbling(t *testing.T) {
	t.Run("LeafChangeBubblesToEveryAncestor", func(t *testing.T) {
		width := Int("Width", 1920)
		resolution := NewGroup("Resolution", width)
		video := NewGroup("Video", resolution)
		root := NewGroup("Root", video)

		var order []string
		width.OnUpdated(func(p Property) { order = append(order, "updated:"+p.Name()) })
		resolution.OnChildUpdated(func(p Property) { order = append(order, "Resolution<-"+p.Name()) })
		video.OnChildUpdated(func(p Property) { order = append(order, "Video<-"+p.Name()) })
		root.OnChildUpdated(func(p Property) { order = append(order, "Root<-"+p.Name()) })

		width.Set(2560)

		assert.Equal(t, []string{
			"updated:Width",
			"Resolution<-Width",
			"Video<-Resolution",
			"Root<-Video",
		}, order)
	})

	t.Run("UnchangedValueDoesNotBubble", func(t *testing.T) {
		v := String("name", "Alice")
		g := NewGroup("g", v)

		fired := 0
		g.OnChildUpdated(func(Property) { fired++ })
		v.Set("Alice")
		assert.Equal(t, 0, fired)
	})

	t.Run("AttachNotifiesNewParentChain", func(t *testing.T) {
		inner := NewGroup("inner")
		outer := NewGroup("outer", inner)

		var got []Property
		outer.OnChildUpdated(func(p Property) { got = append(got, p) })

		leaf := Bool("flag", true)
		inner.Add(leaf)

		require.Len(t, got, 1)
		assert.Same(t, inner, got[0])
	})

	t.Run("DetachNotifiesOldParentChain", func(t *testing.T) {
		leaf := Bool("flag", true)
		inner := NewGroup("inner", leaf)
		outer := NewGroup("outer", inner)

		var innerGot, outerGot []Property
		inner.OnChildUpdated(func(p Property) { innerGot = append(innerGot, p) })
		outer.OnChildUpdated(func(p Property) { outerGot = append(outerGot, p) })

		require.True(t, inner.Remove(leaf))
		require.Len(t, innerGot, 1)
		assert.Same(t, leaf, innerGot[0])
		require.Len(t, outerGot, 1)
		assert.Same(t, inner, outerGot[0])
	})

	t.Run("ActionAlwaysFires", func(t *testing.T) {
		calls := 0
		a := NewAction("reset", func() { calls++ })
		g := NewGroup("g", a)

		bubbled := 0
		g.OnChildUpdated(func(Property) { bubbled++ })
		a.Execute()
		a.Execute()

		assert.Equal(t, 2, calls)
		assert.Equal(t, 2, bubbled)
	})
}

// TestSubscription tests handler registration and removal
func TestSubscription(t *testing.T) {
	t.Run("Unsubscribe", func(t *testing.T) {
		v := Int("n", 0)
		fired := 0
		sub := v.OnUpdated(func(Property) { fired++ })

		v.Set(1)
		sub.Unsubscribe()
		sub.Unsubscribe()
		v.Set(2)

		assert.Equal(t, 1, fired)
	})

	t.Run("HandlerUnsubscribingDuringFire", func(t *testing.T) {
		v := Int("n", 0)
		var first, second int
		var sub *Subscription
		sub = v.OnUpdated(func(Property) {
			first++
			sub.Unsubscribe()
		})
		v.OnUpdated(func(Property) { second++ })

		v.Set(1)
		v.Set(2)

		assert.Equal(t, 1, first)
		assert.Equal(t, 2, second)
	})

	t.Run("NilHandler", func(t *testing.T) {
		v := Int("n", 0)
		sub := v.OnUpdated(nil)
		require.NotNil(t, sub)
		assert.NotPanics(t, func() {
			v.Set(3)
			sub.Unsubscribe()
		})
	})

	t.Run("HandlerReceivesEmbeddingValue", func(t *testing.T) {
		v := String("s", "a")
		var got Property
		v.OnUpdated(func(p Property) { got = p })
		v.Set("b")
		assert.Same(t, v, got)
	})
}

// buildCycle returns a -> b -> c with a leaf under c and a forced back edge
// c -> a, in both the item lists and the parent links.
func buildCycle() (a, b, c *Group, leaf *Value[int]) {
	leaf = Int("leaf", 1)
	c = NewGroup("c", leaf)
	b = NewGroup("b", c)
	a = NewGroup("a", b)
	c.items = append(c.items, a)
	a.parent = c
	return a, b, c, leaf
}

// TestCycleSafety tests that a parent cycle bounds every traversal
func TestCycleSafety(t *testing.T) {
	t.Run("BubblingVisitsEachAncestorOnce", func(t *testing.T) {
		a, b, c, leaf := buildCycle()

		counts := map[string]int{}
		for _, g := range []*Group{a, b, c} {
			g.OnChildUpdated(func(Property) { counts[g.Name()]++ })
		}

		leaf.Set(2)
		assert.Equal(t, map[string]int{"a": 1, "b": 1, "c": 1}, counts)

		// guards are cleared after the pass
		leaf.Set(3)
		assert.Equal(t, map[string]int{"a": 2, "b": 2, "c": 2}, counts)
	})

	t.Run("GuardClearedAfterPanic", func(t *testing.T) {
		leaf := Int("leaf", 0)
		g := NewGroup("g", leaf)
		shouldPanic := true
		fired := 0
		g.OnChildUpdated(func(Property) {
			fired++
			if shouldPanic {
				panic("handler failure")
			}
		})

		assert.Panics(t, func() { leaf.Set(1) })
		shouldPanic = false
		leaf.Set(2)
		assert.Equal(t, 2, fired)
	})

	t.Run("Flattening", func(t *testing.T) {
		a, b, c, leaf := buildCycle()
		all := AllProperties(a)
		assert.Equal(t, []Property{b, c, leaf, a}, all)
	})

	t.Run("Pattern", func(t *testing.T) {
		a, b, _, _ := buildCycle()
		assert.Equal(t, []Property{b}, FindByPattern(a, "*"))
		assert.Len(t, FindByPattern(a, "b.c.*"), 2)
	})

	t.Run("PathThroughCycle", func(t *testing.T) {
		a, _, _, _ := buildCycle()
		assert.Nil(t, FindByPath(a, "b.c.a.b"))
		assert.NotNil(t, FindByPath(a, "b.c.leaf"))
	})

	t.Run("Ancestry", func(t *testing.T) {
		a, b, c, leaf := buildCycle()
		assert.Equal(t, "a.b.c.leaf", FullPath(leaf))
		assert.Equal(t, 3, Depth(leaf))
		assert.Equal(t, []*Group{a, b, c}, ParentChain(leaf))
	})

	t.Run("FindByPrefix", func(t *testing.T) {
		a, _, _, leaf := buildCycle()
		assert.Contains(t, FindByPrefix(a, "a.b.c"), Property(leaf))
	})
}
