// Package convert provides the converters used to turn parameter values
// into database/sql driver arguments.
package convert

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Converter turns a parameter value into a driver argument.
type Converter interface {
	Convert(v any) (any, error)
}

// Func is an adapter to allow the use of ordinary functions as Converter.
type Func func(v any) (any, error)

// Convert calls f(v).
func (f Func) Convert(v any) (any, error) { return f(v) }

// Default converts values the way database/sql does: driver.Valuer first,
// then driver.DefaultParameterConverter.
var Default Converter = Func(func(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if vr, ok := v.(driver.Valuer); ok {
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return nil, nil
		}
		return vr.Value()
	}
	dv, err := driver.DefaultParameterConverter.ConvertValue(v)
	if err != nil {
		return nil, fmt.Errorf("pager/convert: %w", err)
	}
	return dv, nil
})

// UnixTime converts a time.Time into seconds since the epoch.
var UnixTime Converter = Func(func(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return t.Unix(), nil
	case *time.Time:
		if t == nil {
			return nil, nil
		}
		return t.Unix(), nil
	}
	return nil, fmt.Errorf("pager/convert: unixtime: unexpected type %T", v)
})

// UUID converts a uuid.UUID or its textual form into the canonical string.
var UUID Converter = Func(func(v any) (any, error) {
	switch u := v.(type) {
	case nil:
		return nil, nil
	case uuid.UUID:
		return u.String(), nil
	case string:
		id, err := uuid.Parse(u)
		if err != nil {
			return nil, fmt.Errorf("pager/convert: uuid: %w", err)
		}
		return id.String(), nil
	}
	return nil, fmt.Errorf("pager/convert: uuid: unexpected type %T", v)
})

// Registry holds converters keyed by exact Go type and by name.
// It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]Converter
	byName map[string]Converter
}

// NewRegistry returns a registry with converters for the scalar kinds,
// []byte, time.Time and uuid.UUID, and the named converters "default",
// "unixtime" and "uuid".
func NewRegistry() *Registry {
	r := &Registry{
		byType: make(map[reflect.Type]Converter),
		byName: make(map[string]Converter),
	}
	for _, v := range []any{
		false, "", []byte(nil),
		int(0), int8(0), int16(0), int32(0), int64(0),
		uint(0), uint8(0), uint16(0), uint32(0), uint64(0),
		float32(0), float64(0),
		time.Time{},
	} {
		r.byType[reflect.TypeOf(v)] = Default
	}
	r.byType[reflect.TypeOf(uuid.UUID{})] = UUID
	r.byName["default"] = Default
	r.byName["unixtime"] = UnixTime
	r.byName["uuid"] = UUID
	return r
}

// Register sets the converter used for values of exactly type t.
func (r *Registry) Register(t reflect.Type, c Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType[t] = c
}

// RegisterName sets the converter referenced by name in statement templates.
func (r *Registry) RegisterName(name string, c Converter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[name] = c
}

// Lookup returns the converter registered for exactly type t.
func (r *Registry) Lookup(t reflect.Type) (Converter, bool) {
	if r == nil || t == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byType[t]
	return c, ok
}

// Has reports whether a converter is registered for exactly type t.
func (r *Registry) Has(t reflect.Type) bool {
	_, ok := r.Lookup(t)
	return ok
}

// Named returns the converter registered under name.
func (r *Registry) Named(name string) (Converter, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byName[name]
	return c, ok
}

// Register is a generic helper for Registry.Register.
//
//	convert.Register[Money](reg, convert.Func(func(v any) (any, error) {
//	    return v.(Money).Cents, nil
//	}))
func Register[T any](r *Registry, c Converter) {
	r.Register(reflect.TypeFor[T](), c)
}
