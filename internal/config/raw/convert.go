package raw

import (
	"fmt"
	"math"
	"sort"
)

// UnsupportedTypeError is returned by From for values that have no
// configuration representation (dates, binary data, custom structs).
type UnsupportedTypeError struct {
	Path  string
	Value any
}

// Error implements the error interface.
func (e *UnsupportedTypeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("unsupported configuration value of type %T", e.Value)
	}
	return fmt.Sprintf("%s: unsupported configuration value of type %T", e.Path, e.Value)
}

// From converts a decoded document (as produced by go-toml, yaml.v3 or
// encoding/json into an any) into a Value tree.
// Null entries inside mappings are dropped so that they fall through to
// lower precedence sources.
func From(v any) (Value, error) {
	return from("", v)
}

func from(path string, v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Value{}, nil
	case Value:
		return val, nil
	case string:
		return String(val), nil
	case bool:
		return Bool(val), nil
	case float64:
		return number(path, val)
	case float32:
		return number(path, float64(val))
	case int:
		return Number(float64(val)), nil
	case int8:
		return Number(float64(val)), nil
	case int16:
		return Number(float64(val)), nil
	case int32:
		return Number(float64(val)), nil
	case int64:
		return Number(float64(val)), nil
	case uint:
		return Number(float64(val)), nil
	case uint8:
		return Number(float64(val)), nil
	case uint16:
		return Number(float64(val)), nil
	case uint32:
		return Number(float64(val)), nil
	case uint64:
		return Number(float64(val)), nil
	case []any:
		items := make([]Value, 0, len(val))
		for i, item := range val {
			converted, err := from(indexPath(path, i), item)
			if err != nil {
				return Value{}, err
			}
			items = append(items, converted)
		}
		return Value{kind: KindList, list: items}, nil
	case []map[string]any:
		items := make([]Value, 0, len(val))
		for i, item := range val {
			converted, err := from(indexPath(path, i), item)
			if err != nil {
				return Value{}, err
			}
			items = append(items, converted)
		}
		return Value{kind: KindList, list: items}, nil
	case []string:
		items := make([]Value, len(val))
		for i, s := range val {
			items[i] = String(s)
		}
		return Value{kind: KindList, list: items}, nil
	case []float64:
		items := make([]Value, len(val))
		for i, n := range val {
			items[i] = Number(n)
		}
		return Value{kind: KindList, list: items}, nil
	case map[string]any:
		m := make(map[string]Value, len(val))
		for k, item := range val {
			if item == nil {
				continue
			}
			converted, err := from(joinPath(path, k), item)
			if err != nil {
				return Value{}, err
			}
			m[k] = converted
		}
		return Value{kind: KindMap, m: m}, nil
	case map[any]any:
		m := make(map[string]Value, len(val))
		for k, item := range val {
			if item == nil {
				continue
			}
			key := fmt.Sprint(k)
			converted, err := from(joinPath(path, key), item)
			if err != nil {
				return Value{}, err
			}
			m[key] = converted
		}
		return Value{kind: KindMap, m: m}, nil
	default:
		return Value{}, &UnsupportedTypeError{Path: path, Value: v}
	}
}

func number(path string, n float64) (Value, error) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return Value{}, &UnsupportedTypeError{Path: path, Value: n}
	}
	return Number(n), nil
}

// Any converts v back into plain Go values: string, float64, bool, []any
// and map[string]any. Integral numbers are returned as int64 so that
// encoders print them without a fractional part.
func (v Value) Any() any {
	switch v.kind {
	case KindString:
		return v.str
	case KindNumber:
		if i, ok := v.AsInteger(); ok {
			return i
		}
		return v.num
	case KindBool:
		return v.b
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Any()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, item := range v.m {
			out[k] = item.Any()
		}
		return out
	default:
		return nil
	}
}

// Paths returns the dot-separated paths of every leaf under v, sorted.
// Sequences are leaves.
func (v Value) Paths() []string {
	var out []string
	v.collectPaths("", &out)
	sort.Strings(out)
	return out
}

func (v Value) collectPaths(prefix string, out *[]string) {
	if v.kind != KindMap {
		if prefix != "" {
			*out = append(*out, prefix)
		}
		return
	}
	for k, child := range v.m {
		child.collectPaths(joinPath(prefix, k), out)
	}
}

func joinPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}

func indexPath(base string, i int) string {
	return fmt.Sprintf("%s[%d]", base, i)
}
