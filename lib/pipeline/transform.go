package pipeline

import (
	"fmt"
	"strings"
)

// Transform optionally reshapes a validated payload before it is
// persisted. A nil Transform leaves the payload untouched.
type Transform func(payload any) (any, error)

// SelectFields projects each payload object down to the named fields.
// A field is a dotted path, optionally prefixed with an output alias:
// "city=address.city" keeps address.city under the key "city". Without
// an alias the last path segment is the key. Applied to a list it
// projects every element; applied to a single object it projects that
// object.
func SelectFields(fields ...string) Transform {
	return func(payload any) (any, error) {
		switch value := payload.(type) {
		case []any:
			out := make([]any, len(value))
			for i, element := range value {
				projected, err := project(element, fields)
				if err != nil {
					return nil, fmt.Errorf("element %d: %w", i, err)
				}
				out[i] = projected
			}
			return out, nil
		default:
			return project(payload, fields)
		}
	}
}

func project(element any, fields []string) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for _, field := range fields {
		key, path := SplitFieldSpec(field)
		value, ok := lookup(element, path)
		if !ok {
			return nil, fmt.Errorf("missing field %q", path)
		}
		out[key] = value
	}
	return out, nil
}

// SplitFieldSpec splits an "alias=dotted.path" field spec into its
// output key and lookup path.
func SplitFieldSpec(field string) (key string, path string) {
	if alias, rest, found := strings.Cut(field, "="); found {
		return alias, rest
	}
	if idx := strings.LastIndexByte(field, '.'); idx >= 0 {
		return field[idx+1:], field
	}
	return field, field
}
