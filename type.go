// File: lixenwraith/proptree/type.go
package proptree

import "fmt"

// ValueAt reads the leaf at path as a T. A leaf already of type T is read
// directly; any other value leaf is converted with weak typing, so a string
// leaf "8080" reads as int 8080.
func ValueAt[T any](g *Group, path string) (T, error) {
	var out T
	p, err := GetByPath(g, path)
	if err != nil {
		return out, err
	}

	v, ok := p.(Valuer)
	if !ok {
		return out, fmt.Errorf("%w: property at path %q is %s, not a value", ErrTypeMismatch, path, kindName(p))
	}
	if typed, ok := v.Interface().(T); ok {
		return typed, nil
	}
	if err := weakDecode(v.Interface(), &out); err != nil {
		return out, fmt.Errorf("cannot convert %T to %T for path %s: %w", v.Interface(), out, path, err)
	}
	return out, nil
}

// SetAt assigns x to the leaf at path, converting it to the leaf's type.
func SetAt(g *Group, path string, x any) error {
	p, err := GetByPath(g, path)
	if err != nil {
		return err
	}
	v, ok := p.(Valuer)
	if !ok {
		return fmt.Errorf("%w: property at path %q is %s, not a value", ErrTypeMismatch, path, kindName(p))
	}
	return v.Assign(x)
}
