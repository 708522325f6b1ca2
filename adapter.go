// FILE: lixenwraith/proptree/adapter.go
package proptree

import "fmt"

// Adapter exposes an external getter/setter pair as a leaf. It satisfies
// ValueProperty and Valuer, so it can stand anywhere a Value can, except as
// the conflicting side of a Rename merge.
type Adapter[T comparable] struct {
	node
	get         func() T
	set         func(T)
	initialized bool
	bounds      bounds[T]
}

// NewAdapter creates an adapter over get and set. Either may be nil.
func NewAdapter[T comparable](name string, get func() T, set func(T)) *Adapter[T] {
	a := &Adapter[T]{get: get, set: set}
	a.init(name, a)
	return a
}

// NewRangedAdapter creates an adapter clamping assigned values into [lo, hi].
func NewRangedAdapter[T Number](name string, lo, hi T, get func() T, set func(T)) *Adapter[T] {
	a := NewAdapter(name, get, set)
	a.bounds = newBounds(lo, hi)
	return a
}

// AdapterFor exposes an existing value leaf through an adapter of the same
// name and range. Writes go through v.Set, so v raises its own events too.
func AdapterFor[T comparable](v *Value[T]) *Adapter[T] {
	a := NewAdapter(v.Name(), v.Get, v.Set)
	a.bounds = v.bounds
	return a
}

// Get reads the external value.
func (a *Adapter[T]) Get() T {
	if a.get == nil {
		var zero T
		return zero
	}
	return a.get()
}

// Set clamps x, writes it through the setter and fires updated on the first
// write or when x differs from the value read before writing.
func (a *Adapter[T]) Set(x T) {
	x = a.bounds.apply(x)
	old := a.Get()
	if a.set != nil {
		a.set(x)
	}
	if !a.initialized || !same(old, x) {
		a.initialized = true
		a.raiseUpdated()
	}
}

// Range returns the clamp range; ok is false for unranged adapters.
func (a *Adapter[T]) Range() (lo, hi T, ok bool) {
	return a.bounds.min, a.bounds.max, a.bounds.clamp != nil
}

// Interface returns the external value as any.
func (a *Adapter[T]) Interface() any {
	return a.Get()
}

// Assign converts x to T with weak typing and writes it.
func (a *Adapter[T]) Assign(x any) error {
	if typed, ok := x.(T); ok {
		a.Set(typed)
		return nil
	}
	var out T
	if err := weakDecode(x, &out); err != nil {
		return fmt.Errorf("cannot assign %v (%T) to %q: %w", x, x, a.name, err)
	}
	a.Set(out)
	return nil
}

func (a *Adapter[T]) duplicate(string) (Property, error) {
	return nil, fmt.Errorf("%w: %s %q", ErrRenameUnsupported, kindName(a), a.name)
}
