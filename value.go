// FILE: lixenwraith/proptree/value.go
package proptree

import (
	"fmt"
	"math"
)

// ValueProperty is the contract shared by native leaves and adapters.
type ValueProperty[T comparable] interface {
	Property
	Get() T
	Set(v T)
}

// Valuer gives untyped access to a leaf, used by loaders, Scan and Dump.
type Valuer interface {
	Property
	// Interface returns the current value.
	Interface() any
	// Assign converts x to the leaf's type and sets it.
	Assign(x any) error
}

// Ranged is implemented by leaves carrying a [min, max] clamp range.
type Ranged[T comparable] interface {
	Range() (min, max T, ok bool)
}

// Number is the set of types a range can clamp.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// bounds is an optional clamp range. The zero value does not clamp.
type bounds[T comparable] struct {
	min, max T
	clamp    func(T) T
}

func newBounds[T Number](lo, hi T) bounds[T] {
	return bounds[T]{
		min: lo,
		max: hi,
		clamp: func(v T) T {
			if v < lo {
				return lo
			}
			if v > hi {
				return hi
			}
			return v
		},
	}
}

func (b bounds[T]) apply(v T) T {
	if b.clamp == nil {
		return v
	}
	return b.clamp(v)
}

// Value is a leaf holding one T.
type Value[T comparable] struct {
	node
	value       T
	initialized bool
	bounds      bounds[T]
}

// NewValue creates a leaf holding initial. The constructor assignment counts
// as the first set, so setting the same value again fires nothing.
func NewValue[T comparable](name string, initial T) *Value[T] {
	v := DeclareValue[T](name)
	v.Set(initial)
	return v
}

// DeclareValue creates a leaf with no assigned value yet. Its first Set fires
// updated even if the value equals the zero value of T.
func DeclareValue[T comparable](name string) *Value[T] {
	v := &Value[T]{}
	v.init(name, v)
	return v
}

// NewRanged creates a leaf that clamps every value, initial included, into [lo, hi].
func NewRanged[T Number](name string, initial, lo, hi T) *Value[T] {
	v := DeclareValue[T](name)
	v.bounds = newBounds(lo, hi)
	v.Set(initial)
	return v
}

// String creates a string leaf.
func String(name, initial string) *Value[string] {
	return NewValue(name, initial)
}

// Bool creates a bool leaf.
func Bool(name string, initial bool) *Value[bool] {
	return NewValue(name, initial)
}

// Int creates an int leaf ranging over the whole int domain.
func Int(name string, initial int) *Value[int] {
	return NewRanged(name, initial, math.MinInt, math.MaxInt)
}

// IntRange creates an int leaf clamped to [lo, hi].
func IntRange(name string, initial, lo, hi int) *Value[int] {
	return NewRanged(name, initial, lo, hi)
}

// Float creates a float64 leaf ranging over all finite float64 values.
func Float(name string, initial float64) *Value[float64] {
	return NewRanged(name, initial, -math.MaxFloat64, math.MaxFloat64)
}

// FloatRange creates a float64 leaf clamped to [lo, hi].
func FloatRange(name string, initial, lo, hi float64) *Value[float64] {
	return NewRanged(name, initial, lo, hi)
}

// Enum creates a leaf for a named enumeration type.
func Enum[T comparable](name string, initial T) *Value[T] {
	return NewValue(name, initial)
}

// Get returns the stored value.
func (v *Value[T]) Get() T {
	return v.value
}

// Set clamps x, stores it and fires updated on the first assignment or when
// the clamped value differs from the stored one.
func (v *Value[T]) Set(x T) {
	x = v.bounds.apply(x)
	old := v.value
	v.value = x
	if !v.initialized || !same(old, x) {
		v.initialized = true
		v.raiseUpdated()
	}
}

// same compares like ==, except that two NaNs are equal.
func same[T comparable](a, b T) bool {
	return a == b || (a != a && b != b)
}

// Range returns the clamp range; ok is false for unranged leaves.
func (v *Value[T]) Range() (lo, hi T, ok bool) {
	return v.bounds.min, v.bounds.max, v.bounds.clamp != nil
}

// Initialized reports whether the leaf has been assigned at least once.
func (v *Value[T]) Initialized() bool {
	return v.initialized
}

// Interface returns the value as any.
func (v *Value[T]) Interface() any {
	return v.value
}

// Assign converts x to T with weak typing ("42" into an int leaf) and sets it.
func (v *Value[T]) Assign(x any) error {
	if typed, ok := x.(T); ok {
		v.Set(typed)
		return nil
	}
	var out T
	if err := weakDecode(x, &out); err != nil {
		return fmt.Errorf("cannot assign %v (%T) to %q: %w", x, x, v.name, err)
	}
	v.Set(out)
	return nil
}

// String implements fmt.Stringer.
func (v *Value[T]) String() string {
	return fmt.Sprintf("%s=%v", v.name, v.value)
}

func (v *Value[T]) duplicate(name string) (Property, error) {
	d := DeclareValue[T](name)
	d.bounds = v.bounds
	d.Set(v.value)
	return d, nil
}
