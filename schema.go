package silo

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/rotisserie/eris"
)

// Field is one entry of a component schema: a Primitive, a FixedList or a
// nested Schema.
type Field interface {
	field()
}

// Primitive is a single column of the given type.
type Primitive struct {
	Type Type
}

// FixedList is Length parallel columns of the given type.
type FixedList struct {
	Type   Type
	Length int
}

// Schema maps field names to fields. A Schema is itself a Field, which is how
// components nest.
type Schema map[string]Field

func (Primitive) field() {}
func (FixedList) field() {}
func (Schema) field()    {}

func Prim(t Type) Primitive {
	return Primitive{Type: t}
}

func List(t Type, n int) FixedList {
	return FixedList{Type: t, Length: n}
}

// Keys returns the field names in the order stores are built.
func (s Schema) Keys() []string {
	return sortedKeys(s)
}

// ParseSchema decodes a dynamically typed schema: a string is a primitive
// tag, a two element list of tag and length is a fixed list, and a map is a
// nested schema. Tags are not validated here; building a store does that.
func ParseSchema(raw map[string]any) (Schema, error) {
	schema := make(Schema, len(raw))
	for _, key := range sortedKeys(raw) {
		f, err := parseField(raw[key])
		if err != nil {
			return nil, eris.Wrapf(err, "field %q", key)
		}
		schema[key] = f
	}
	return schema, nil
}

func parseField(v any) (Field, error) {
	switch val := v.(type) {
	case string:
		return Prim(Type(val)), nil
	case Type:
		return Prim(val), nil
	case []any:
		if len(val) != 2 {
			return nil, InvalidFieldError{Value: v}
		}
		tag, ok := val[0].(string)
		if !ok {
			return nil, InvalidFieldError{Value: v}
		}
		n, ok := toLength(val[1])
		if !ok {
			return nil, InvalidFieldError{Value: v}
		}
		return List(Type(tag), n), nil
	case map[string]any:
		return ParseSchema(val)
	}
	return nil, InvalidFieldError{Value: v}
}

func toLength(v any) (int, bool) {
	var n int
	switch val := v.(type) {
	case int:
		n = val
	case float64:
		if val != float64(int(val)) {
			return 0, false
		}
		n = int(val)
	case json.Number:
		i, err := val.Int64()
		if err != nil {
			return 0, false
		}
		n = int(i)
	default:
		return 0, false
	}
	return n, n > 0
}

// UnmarshalJSON accepts the same shapes as ParseSchema.
func (s *Schema) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode schema: %w", err)
	}
	parsed, err := ParseSchema(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
