package tools

import (
	"fmt"
	"math"
)

// ParamType is the wire type of one tool parameter.
type ParamType string

const (
	TypeString  ParamType = "string"
	TypeNumber  ParamType = "number"
	TypeInteger ParamType = "integer"
	TypeBoolean ParamType = "boolean"
	TypeObject  ParamType = "object"
)

// Param describes one named tool parameter.
type Param struct {
	Type        ParamType `json:"type"`
	Description string    `json:"description,omitempty"`
	Required    bool      `json:"required,omitempty"`
	Enum        []string  `json:"enum,omitempty"`
	Default     any       `json:"default,omitempty"`
}

// Descriptor is the immutable capability contract for one tool. The full
// descriptor set is advertised both to the generative model and to the
// administrative listing endpoint.
type Descriptor struct {
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Params      map[string]Param `json:"parameters"`

	// Administrative marks raw-query style tools whose arguments are
	// screened for mutating keywords before dispatch.
	Administrative bool `json:"administrative,omitempty"`
}

// validateArgs checks an argument mapping against the descriptor schema and
// fills in declared defaults for absent optional parameters. The returned
// mapping is a copy; the caller's map is not modified.
func (d Descriptor) validateArgs(args map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(d.Params))

	for name, p := range d.Params {
		v, present := args[name]
		if !present {
			if p.Required {
				return nil, fmt.Errorf("missing required parameter %q", name)
			}
			if p.Default != nil {
				out[name] = p.Default
			}
			continue
		}

		coerced, err := coerce(name, p, v)
		if err != nil {
			return nil, err
		}
		out[name] = coerced
	}

	for name := range args {
		if _, known := d.Params[name]; !known {
			return nil, fmt.Errorf("unknown parameter %q", name)
		}
	}

	return out, nil
}

// coerce checks a single value against its declared type. JSON decoding and
// model function-call args both deliver numbers as float64, so integer
// parameters accept whole-valued floats.
func coerce(name string, p Param, v any) (any, error) {
	switch p.Type {
	case TypeString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("parameter %q must be a string", name)
		}
		if len(p.Enum) > 0 && !contains(p.Enum, s) {
			return nil, fmt.Errorf("parameter %q must be one of %v", name, p.Enum)
		}
		return s, nil

	case TypeNumber:
		f, ok := asFloat(v)
		if !ok {
			return nil, fmt.Errorf("parameter %q must be a number", name)
		}
		return f, nil

	case TypeInteger:
		f, ok := asFloat(v)
		if !ok || f != math.Trunc(f) {
			return nil, fmt.Errorf("parameter %q must be an integer", name)
		}
		return int(f), nil

	case TypeBoolean:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("parameter %q must be a boolean", name)
		}
		return b, nil

	case TypeObject:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("parameter %q must be an object", name)
		}
		return m, nil

	default:
		return nil, fmt.Errorf("parameter %q has unsupported type %q", name, p.Type)
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

func contains(set []string, s string) bool {
	for _, e := range set {
		if e == s {
			return true
		}
	}
	return false
}
