// FILE: lixenwraith/proptree/struct.go
package proptree

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"time"
)

var (
	durationType = reflect.TypeOf(time.Duration(0))
	timeType     = reflect.TypeOf(time.Time{})
	stringerType = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
)

// FromStruct builds a group from a struct, using its field values as leaf
// values. Nested structs become groups and field names come from the "toml"
// tag. It is the usual way to declare a tree of defaults.
func FromStruct(name string, v any) (*Group, error) {
	return FromStructWithTag(name, v, DefaultTagName)
}

// FromStructWithTag is FromStruct reading field names from tagName.
func FromStructWithTag(name string, v any, tagName string) (*Group, error) {
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return nil, fmt.Errorf("FromStruct requires non-nil struct, got nil %T", v)
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil, fmt.Errorf("FromStruct requires a struct, got %T", v)
	}

	g := NewGroup(name)
	var errs []error
	addFields(g, rv, tagName, "", &errs)
	if len(errs) > 0 {
		return nil, fmt.Errorf("failed to build group %q: %w", name, errors.Join(errs...))
	}
	return g, nil
}

func addFields(g *Group, v reflect.Value, tagName, fieldPath string, errs *[]error) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		fieldValue := v.Field(i)

		if !field.IsExported() {
			continue
		}

		tag := field.Tag.Get(tagName)
		if tag == "-" {
			continue
		}
		key := field.Name
		if tag != "" {
			if parts := strings.Split(tag, ","); parts[0] != "" {
				key = parts[0]
			}
		}

		if !isValidKeySegment(key) {
			*errs = append(*errs, fmt.Errorf("field %s%s: invalid key %q", fieldPath, field.Name, key))
			continue
		}

		p, ok := propertyFor(key, fieldValue, tagName, fieldPath+field.Name+".", errs)
		if ok {
			g.Add(p)
		}
	}
}

// propertyFor maps a field value to a node. ok is false for nil pointers,
// whose paths have no defined default.
func propertyFor(key string, v reflect.Value, tagName, fieldPath string, errs *[]error) (Property, bool) {
	if v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return nil, false
		}
		return propertyFor(key, v.Elem(), tagName, fieldPath, errs)
	}

	switch {
	case v.Type() == durationType:
		return NewValue(key, time.Duration(v.Int())), true
	case v.Type() == timeType:
		return NewValue(key, v.Interface().(time.Time)), true
	case (v.Kind() == reflect.Struct || v.Kind() == reflect.Slice) && implementsStringer(v):
		// url.URL, net.IP and the like read better as their text form
		return String(key, stringOf(v)), true
	}

	switch v.Kind() {
	case reflect.Struct:
		sub := NewGroup(key)
		addFields(sub, v, tagName, fieldPath, errs)
		return sub, true
	case reflect.Map:
		if v.Type().Key().Kind() != reflect.String {
			return String(key, fmt.Sprint(v.Interface())), true
		}
		sub := NewGroup(key)
		keys := v.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		for _, k := range keys {
			if p, ok := propertyFor(k.String(), v.MapIndex(k), tagName, fieldPath+k.String()+".", errs); ok {
				sub.Add(p)
			}
		}
		return sub, true
	case reflect.String:
		return String(key, v.String()), true
	case reflect.Bool:
		return Bool(key, v.Bool()), true
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(key, int(v.Int())), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return Int(key, int(v.Uint())), true
	case reflect.Float32, reflect.Float64:
		return Float(key, v.Float()), true
	case reflect.Slice, reflect.Array:
		parts := make([]string, v.Len())
		for i := range parts {
			parts[i] = fmt.Sprint(v.Index(i).Interface())
		}
		return String(key, strings.Join(parts, ",")), true
	default:
		return String(key, fmt.Sprint(v.Interface())), true
	}
}

func implementsStringer(v reflect.Value) bool {
	return v.Type().Implements(stringerType) || reflect.PointerTo(v.Type()).Implements(stringerType)
}

func stringOf(v reflect.Value) string {
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	if v.CanAddr() {
		if s, ok := v.Addr().Interface().(fmt.Stringer); ok {
			return s.String()
		}
	}
	ptr := reflect.New(v.Type())
	ptr.Elem().Set(v)
	return ptr.Interface().(fmt.Stringer).String()
}
