package mapper

import (
	"fmt"
	"maps"
	"reflect"
	"strings"

	"github.com/syssam/pager"
	"github.com/syssam/pager/convert"
	"github.com/syssam/pager/mapper/meta"
)

// BoundSQL is a statement rendered for one parameter object: the SQL text,
// its parameter mappings and the auxiliary bindings created while
// rendering.
type BoundSQL struct {
	sql        string
	mappings   []ParameterMapping
	param      any
	additional map[string]any
}

// NewBoundSQL returns a BoundSQL without auxiliary bindings.
func NewBoundSQL(sql string, mappings []ParameterMapping, param any) *BoundSQL {
	return &BoundSQL{sql: sql, mappings: mappings, param: param}
}

// SQL returns the SQL text.
func (b *BoundSQL) SQL() string { return b.sql }

// SetSQL replaces the SQL text. Mappings are left untouched.
func (b *BoundSQL) SetSQL(sql string) { b.sql = sql }

// Mappings returns the parameter mappings in placeholder order.
func (b *BoundSQL) Mappings() []ParameterMapping { return b.mappings }

// Param returns the parameter object.
func (b *BoundSQL) Param() any { return b.param }

// HasAdditionalParam reports whether an auxiliary binding exists for name.
func (b *BoundSQL) HasAdditionalParam(name string) bool {
	_, ok := b.additional[name]
	return ok
}

// AdditionalParam returns the auxiliary binding for name.
func (b *BoundSQL) AdditionalParam(name string) any {
	return b.additional[name]
}

// SetAdditionalParam sets an auxiliary binding.
func (b *BoundSQL) SetAdditionalParam(name string, v any) {
	if b.additional == nil {
		b.additional = make(map[string]any)
	}
	b.additional[name] = v
}

// AdditionalParams returns a copy of the auxiliary bindings.
func (b *BoundSQL) AdditionalParams() map[string]any {
	return maps.Clone(b.additional)
}

// Args resolves the driver arguments of every non-output mapping, in
// placeholder order. For each property the first match wins:
//
//  1. the parameter object itself, when types has a converter for its type
//  2. an auxiliary binding with exactly that name
//  3. for "__frch_" properties, the auxiliary element named by the first
//     path segment, navigated with the rest of the path
//  4. the property path navigated into the parameter object
func (b *BoundSQL) Args(types *convert.Registry, statementID string) ([]any, error) {
	args := make([]any, 0, len(b.mappings))
	for _, m := range b.mappings {
		if m.Mode == ModeOut {
			continue
		}
		value, err := b.value(types, m.Property)
		if err != nil {
			return nil, fmt.Errorf("pager/mapper: statement %s: parameter %s: %w", statementID, m.Property, err)
		}
		if m.Converter == nil {
			return nil, pager.NewMissingTypeHandlerError(m.Property, statementID)
		}
		arg, err := m.Converter.Convert(value)
		if err != nil {
			return nil, fmt.Errorf("pager/mapper: statement %s: parameter %s: %w", statementID, m.Property, err)
		}
		args = append(args, arg)
	}
	return args, nil
}

func (b *BoundSQL) value(types *convert.Registry, property string) (any, error) {
	head, rest := meta.Head(property)
	switch {
	case b.param == nil:
		return nil, nil
	case types.Has(reflect.TypeOf(b.param)):
		return b.param, nil
	case b.HasAdditionalParam(property):
		return b.additional[property], nil
	case strings.HasPrefix(property, ItemPrefix) && b.HasAdditionalParam(head):
		elem := b.additional[head]
		if elem == nil {
			return nil, nil
		}
		return meta.Get(elem, rest)
	default:
		return meta.Get(b.param, property)
	}
}
