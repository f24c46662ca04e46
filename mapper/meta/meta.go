// Package meta navigates property paths such as "filter.tags[2].name" into
// maps, structs, slices and pointers.
package meta

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-openapi/inflect"
)

// ErrNoProperty is returned when a struct has no field matching a segment.
var ErrNoProperty = errors.New("pager/meta: no such property")

// Segment is one step of a property path: a name with an optional index.
type Segment struct {
	Name  string
	Index string // empty when the segment has no [index]
}

// Split tokenizes a property path.
//
//	Split("items[0].sku") == []Segment{{Name: "items", Index: "0"}, {Name: "sku"}}
func Split(path string) []Segment {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, ".")
	segs := make([]Segment, 0, len(parts))
	for _, p := range parts {
		s := Segment{Name: p}
		if i := strings.IndexByte(p, '['); i >= 0 && strings.HasSuffix(p, "]") {
			s.Name, s.Index = p[:i], p[i+1:len(p)-1]
		}
		segs = append(segs, s)
	}
	return segs
}

// Head returns the first segment name of a path and the remainder, which
// starts with '.' or '[' when not empty.
//
//	Head("__frch_ids_0.name") == ("__frch_ids_0", ".name")
func Head(path string) (string, string) {
	if i := strings.IndexAny(path, ".["); i >= 0 {
		return path[:i], path[i:]
	}
	return path, ""
}

// Get returns the value at path inside v. Nil intermediate values and
// missing map keys yield nil; unknown struct fields yield ErrNoProperty.
func Get(v any, path string) (any, error) {
	path = strings.TrimPrefix(path, ".")
	if strings.HasPrefix(path, "[") {
		// An index applied to v itself, as in "[1].name".
		path = "_" + path
		return get(reflect.ValueOf(v), path, true)
	}
	return get(reflect.ValueOf(v), path, false)
}

func get(rv reflect.Value, path string, selfIndexed bool) (any, error) {
	for i, seg := range Split(path) {
		var err error
		if !(selfIndexed && i == 0) {
			if rv, err = field(rv, seg.Name); err != nil {
				return nil, fmt.Errorf("%w: %q in %q", err, seg.Name, path)
			}
		}
		if seg.Index != "" {
			if rv, err = index(rv, seg.Index); err != nil {
				return nil, fmt.Errorf("pager/meta: %q: %w", path, err)
			}
		}
		if !rv.IsValid() {
			return nil, nil
		}
	}
	if !rv.IsValid() {
		return nil, nil
	}
	return rv.Interface(), nil
}

// Elements returns the elements of a slice or array value. A nil value
// yields no elements.
func Elements(v any) ([]any, error) {
	rv := indirect(reflect.ValueOf(v))
	if !rv.IsValid() {
		return nil, nil
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = rv.Index(i).Interface()
		}
		return out, nil
	}
	return nil, fmt.Errorf("pager/meta: cannot iterate over %s", rv.Type())
}

func indirect(rv reflect.Value) reflect.Value {
	for rv.IsValid() && (rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface) {
		if rv.IsNil() {
			return reflect.Value{}
		}
		rv = rv.Elem()
	}
	return rv
}

func field(rv reflect.Value, name string) (reflect.Value, error) {
	rv = indirect(rv)
	if !rv.IsValid() {
		return rv, nil
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return reflect.Value{}, fmt.Errorf("pager/meta: map key type %s is not a string", rv.Type().Key())
		}
		mv := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		return mv, nil
	case reflect.Struct:
		idx, ok := fieldIndex(rv.Type(), name)
		if !ok {
			return reflect.Value{}, ErrNoProperty
		}
		return rv.FieldByIndex(idx), nil
	}
	return reflect.Value{}, ErrNoProperty
}

func index(rv reflect.Value, idx string) (reflect.Value, error) {
	rv = indirect(rv)
	if !rv.IsValid() {
		return rv, nil
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		i, err := strconv.Atoi(idx)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid index %q", idx)
		}
		if i < 0 || i >= rv.Len() {
			return reflect.Value{}, fmt.Errorf("index %d out of range [0:%d]", i, rv.Len())
		}
		return rv.Index(i), nil
	case reflect.Map:
		return field(rv, idx)
	}
	return reflect.Value{}, fmt.Errorf("cannot index %s", rv.Type())
}

type fieldKey struct {
	t    reflect.Type
	name string
}

// fields caches resolved struct field indexes.
var fields sync.Map // fieldKey -> []int

// fieldIndex resolves a property name to an exported struct field: a
// matching db tag first, then the exact field name, then the camelized
// name ("created_at" and "createdAt" both match CreatedAt).
func fieldIndex(t reflect.Type, name string) ([]int, bool) {
	key := fieldKey{t, name}
	if v, ok := fields.Load(key); ok {
		idx, _ := v.([]int)
		return idx, idx != nil
	}
	idx := lookupField(t, name)
	fields.Store(key, idx)
	return idx, idx != nil
}

func lookupField(t reflect.Type, name string) []int {
	visible := reflect.VisibleFields(t)
	for _, f := range visible {
		if !f.IsExported() {
			continue
		}
		if tag, _, _ := strings.Cut(f.Tag.Get("db"), ","); tag == name {
			return f.Index
		}
	}
	camel := inflect.Camelize(name)
	for _, want := range []string{name, camel} {
		for _, f := range visible {
			if f.IsExported() && !f.Anonymous && f.Name == want {
				return f.Index
			}
		}
	}
	for _, f := range visible {
		if f.IsExported() && !f.Anonymous && strings.EqualFold(f.Name, camel) {
			return f.Index
		}
	}
	return nil
}
