// Package raw provides the untyped configuration tree shared by every
// configuration source.
//
// Readers (TOML and YAML files, command-line flags, interactive edits) all
// produce a Value. Values are merged by the layer package and narrowed into
// typed records by the schema package, which is the only place that
// interprets them.
//
// A Value is immutable once built. Constructors copy their inputs and no
// method mutates the receiver, so values may be shared freely between layers
// and goroutines.
package raw

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind uint8

const (
	// KindNull is the zero Value. It never appears inside a tree built by From.
	KindNull Kind = iota
	// KindString holds a string.
	KindString
	// KindNumber holds a float64. Integers are widened.
	KindNumber
	// KindBool holds a boolean.
	KindBool
	// KindList holds an ordered sequence of values.
	KindList
	// KindMap holds a string-keyed mapping of values.
	KindMap
)

// String returns the kind name used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBool:
		return "boolean"
	case KindList:
		return "sequence"
	case KindMap:
		return "table"
	default:
		return "unknown"
	}
}

// Value is a node of a configuration tree.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	list []Value
	m    map[string]Value
}

// String returns a string value.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Number returns a numeric value.
func Number(n float64) Value {
	return Value{kind: KindNumber, num: n}
}

// Bool returns a boolean value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// List returns a sequence value holding a copy of items.
func List(items ...Value) Value {
	list := make([]Value, len(items))
	copy(list, items)
	return Value{kind: KindList, list: list}
}

// Map returns a mapping value holding a copy of entries.
func Map(entries map[string]Value) Value {
	m := make(map[string]Value, len(entries))
	for k, v := range entries {
		m[k] = v
	}
	return Value{kind: KindMap, m: m}
}

// EmptyMap returns a mapping with no entries.
func EmptyMap() Value {
	return Value{kind: KindMap, m: map[string]Value{}}
}

// Kind reports the variant held by v.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is the zero Value.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// AsString returns the string held by v.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsNumber returns the number held by v.
func (v Value) AsNumber() (float64, bool) {
	return v.num, v.kind == KindNumber
}

// MaxExactInteger is the largest magnitude at which every integer has an
// exact float64 representation.
const MaxExactInteger = 1 << 53

// AsInteger returns the number held by v when it is a whole number of
// magnitude at most MaxExactInteger.
func (v Value) AsInteger() (int64, bool) {
	if v.kind != KindNumber || math.Trunc(v.num) != v.num || math.Abs(v.num) > MaxExactInteger {
		return 0, false
	}
	return int64(v.num), true
}

// AsBool returns the boolean held by v.
func (v Value) AsBool() (bool, bool) {
	return v.b, v.kind == KindBool
}

// Items returns a copy of the elements of a sequence, or nil.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	out := make([]Value, len(v.list))
	copy(out, v.list)
	return out
}

// Len returns the number of elements of a sequence or entries of a mapping.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindMap:
		return len(v.m)
	default:
		return 0
	}
}

// Keys returns the keys of a mapping in sorted order.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Field returns the entry stored under key in a mapping.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	val, ok := v.m[key]
	return val, ok
}

// Lookup retrieves a value using a dot-separated path.
// The empty path returns v itself.
func (v Value) Lookup(path string) (Value, bool) {
	if path == "" {
		return v, true
	}

	current := v
	for _, part := range strings.Split(path, ".") {
		next, ok := current.Field(part)
		if !ok {
			return Value{}, false
		}
		current = next
	}
	return current, true
}

// With returns a copy of v with val stored at the dot-separated path.
// Intermediate mappings are created as needed; a non-mapping value found
// on the way is replaced by a mapping.
func (v Value) With(path string, val Value) Value {
	if path == "" {
		return val
	}
	return v.with(strings.Split(path, "."), val)
}

func (v Value) with(parts []string, val Value) Value {
	out := EmptyMap()
	if v.kind == KindMap {
		out = Map(v.m)
	}

	head := parts[0]
	if len(parts) == 1 {
		out.m[head] = val
		return out
	}

	child := out.m[head]
	out.m[head] = child.with(parts[1:], val)
	return out
}

// Without returns a copy of v with the entry at path removed.
func (v Value) Without(path string) Value {
	if v.kind != KindMap || path == "" {
		return v
	}

	parts := strings.SplitN(path, ".", 2)
	child, ok := v.m[parts[0]]
	if !ok {
		return v
	}

	out := Map(v.m)
	if len(parts) == 1 {
		delete(out.m, parts[0])
	} else {
		out.m[parts[0]] = child.Without(parts[1])
	}
	return out
}

// String renders v as a TOML-like literal for diagnostics.
func (v Value) String() string {
	var sb strings.Builder
	v.format(&sb)
	return sb.String()
}

func (v Value) format(sb *strings.Builder) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindString:
		sb.WriteString(strconv.Quote(v.str))
	case KindNumber:
		sb.WriteString(strconv.FormatFloat(v.num, 'g', -1, 64))
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.b))
	case KindList:
		sb.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				sb.WriteString(", ")
			}
			item.format(sb)
		}
		sb.WriteByte(']')
	case KindMap:
		sb.WriteByte('{')
		for i, k := range v.Keys() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(k)
			sb.WriteString(" = ")
			v.m[k].format(sb)
		}
		sb.WriteByte('}')
	}
}

// GoString implements fmt.GoStringer.
func (v Value) GoString() string {
	return fmt.Sprintf("raw.Value(%s)", v.String())
}
