package schema

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"

	"github.com/sudomakeinstall/cardio/internal/config/raw"
)

// Check validates v against the descriptor f and returns v normalized:
// absent optional fields take their defaults and hex colors become
// [r, g, b] arrays.
//
// Validation stops at the first violation. Within a table the declared
// fields are checked in declaration order, then undeclared keys in sorted
// order, then the table's rules. Sequence elements are checked in order
// before the sequence's rules.
func Check(path string, f *Field, v raw.Value) (raw.Value, error) {
	out, verr := check(path, f, v)
	if verr != nil {
		return raw.Value{}, verr
	}
	return out, nil
}

func check(path string, f *Field, v raw.Value) (raw.Value, *ValidationError) {
	switch f.Type {
	case TypeString:
		return checkString(path, f, v)
	case TypeNumber:
		return checkNumber(path, f, v, false)
	case TypeInteger:
		return checkNumber(path, f, v, true)
	case TypeBool:
		if v.Kind() != raw.KindBool {
			return raw.Value{}, NewTypeError(path, f.Type, v)
		}
		return v, nil
	case TypeColor:
		return checkColor(path, f, v)
	case TypeList:
		return checkList(path, f, v)
	case TypeTable:
		return checkTable(path, f, v)
	case TypeMap:
		return checkMap(path, f, v)
	default:
		return raw.Value{}, NewConstraintError(path, v, fmt.Sprintf("a known field type (descriptor has %d)", f.Type))
	}
}

func checkString(path string, f *Field, v raw.Value) (raw.Value, *ValidationError) {
	s, ok := v.AsString()
	if !ok {
		return raw.Value{}, NewTypeError(path, f.Type, v)
	}

	if len(s) < f.MinLength {
		return raw.Value{}, NewConstraintError(path, v, "a non-empty string")
	}

	if len(f.Enum) > 0 {
		found := false
		for _, allowed := range f.Enum {
			if s == allowed {
				found = true
				break
			}
		}
		if !found {
			return raw.Value{}, NewEnumError(path, v, f.Enum)
		}
	}

	if f.Pattern != nil && !f.Pattern.MatchString(s) {
		return raw.Value{}, NewPatternError(path, v, f.Pattern.String())
	}

	return v, nil
}

func checkNumber(path string, f *Field, v raw.Value, requireInt bool) (raw.Value, *ValidationError) {
	n, ok := v.AsNumber()
	if !ok {
		return raw.Value{}, NewTypeError(path, f.Type, v)
	}
	if requireInt {
		if math.Trunc(n) != n {
			return raw.Value{}, NewTypeError(path, f.Type, v)
		}
		if math.Abs(n) > raw.MaxExactInteger {
			return raw.Value{}, NewConstraintError(path, v, "an integer between -2^53 and 2^53")
		}
	}

	if f.Minimum != nil {
		if n < *f.Minimum || (f.ExclusiveMinimum && n == *f.Minimum) {
			return raw.Value{}, NewRangeError(path, v, f)
		}
	}
	if f.Maximum != nil && n > *f.Maximum {
		return raw.Value{}, NewRangeError(path, v, f)
	}

	return v, nil
}

func checkColor(path string, f *Field, v raw.Value) (raw.Value, *ValidationError) {
	if s, ok := v.AsString(); ok {
		c, err := colorful.Hex(s)
		if err != nil {
			return raw.Value{}, NewConstraintError(path, v, `a color as [r, g, b] or "#rrggbb"`)
		}
		return raw.List(raw.Number(c.R), raw.Number(c.G), raw.Number(c.B)), nil
	}

	if v.Kind() != raw.KindList {
		return raw.Value{}, NewTypeError(path, f.Type, v)
	}
	items := v.Items()
	if len(items) != 3 {
		return raw.Value{}, NewConstraintError(path, v, "exactly 3 channels [r, g, b]")
	}
	for i, item := range items {
		n, ok := item.AsNumber()
		if !ok || n < 0 || n > 1 {
			return raw.Value{}, NewConstraintError(indexPath(path, i), item, "a channel value between 0 and 1")
		}
	}
	return v, nil
}

func checkList(path string, f *Field, v raw.Value) (raw.Value, *ValidationError) {
	if v.Kind() != raw.KindList {
		return raw.Value{}, NewTypeError(path, f.Type, v)
	}

	items := v.Items()
	if len(items) < f.MinItems {
		return raw.Value{}, NewConstraintError(path, v, fmt.Sprintf("at least %d item(s)", f.MinItems))
	}

	out := make([]raw.Value, len(items))
	for i, item := range items {
		norm, err := check(indexPath(path, i), f.Items, item)
		if err != nil {
			return raw.Value{}, err
		}
		out[i] = norm
	}

	result := raw.List(out...)
	return result, runRules(path, f, result)
}

func checkTable(path string, f *Field, v raw.Value) (raw.Value, *ValidationError) {
	if v.Kind() != raw.KindMap {
		return raw.Value{}, NewTypeError(path, f.Type, v)
	}

	entries := make(map[string]raw.Value, len(f.Fields))
	for i := range f.Fields {
		child := &f.Fields[i]
		childPath := joinPath(path, child.Name)

		val, present := v.Field(child.Name)
		if !present {
			switch {
			case child.Required:
				return raw.Value{}, NewRequiredError(childPath)
			case !child.Default.IsNull():
				val = child.Default
			case child.Type == TypeTable:
				// Fill the defaults of an omitted sub-table.
				val = raw.EmptyMap()
			default:
				continue
			}
		}

		norm, err := check(childPath, child, val)
		if err != nil {
			return raw.Value{}, err
		}
		entries[child.Name] = norm
	}

	for _, key := range v.Keys() {
		if _, declared := f.Lookup(key); !declared {
			val, _ := v.Field(key)
			return raw.Value{}, NewUnknownFieldError(joinPath(path, key), val)
		}
	}

	result := raw.Map(entries)
	return result, runRules(path, f, result)
}

func checkMap(path string, f *Field, v raw.Value) (raw.Value, *ValidationError) {
	if v.Kind() != raw.KindMap {
		return raw.Value{}, NewTypeError(path, f.Type, v)
	}

	entries := make(map[string]raw.Value, v.Len())
	for _, key := range v.Keys() {
		val, _ := v.Field(key)
		childPath := joinPath(path, key)
		if f.KeyPattern != nil && !f.KeyPattern.MatchString(key) {
			return raw.Value{}, NewConstraintError(childPath, val, fmt.Sprintf("a key matching %s", f.KeyPattern))
		}
		norm, err := check(childPath, f.Values, val)
		if err != nil {
			return raw.Value{}, err
		}
		entries[key] = norm
	}

	result := raw.Map(entries)
	return result, runRules(path, f, result)
}

func runRules(path string, f *Field, v raw.Value) *ValidationError {
	for _, rule := range f.Rules {
		if err := rule(path, v); err != nil {
			return err
		}
	}
	return nil
}

// Defaults returns the tree of every default declared under f.
// Sequences contribute their default as a whole; tables without any
// defaulted descendant are omitted.
func Defaults(f *Field) raw.Value {
	out := raw.EmptyMap()
	for i := range f.Fields {
		child := &f.Fields[i]
		switch {
		case !child.Default.IsNull():
			out = out.With(child.Name, child.Default)
		case child.Type == TypeTable:
			if sub := Defaults(child); sub.Len() > 0 {
				out = out.With(child.Name, sub)
			}
		}
	}
	return out
}

// joinPath joins path segments with dots.
func joinPath(base, name string) string {
	if base == "" {
		return name
	}
	return base + "." + name
}

func indexPath(base string, i int) string {
	return fmt.Sprintf("%s[%d]", base, i)
}

func numberAt(v raw.Value, path string) float64 {
	val, ok := v.Lookup(path)
	if !ok {
		return math.NaN()
	}
	n, _ := val.AsNumber()
	return n
}
