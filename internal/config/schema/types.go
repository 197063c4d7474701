package schema

import (
	"regexp"

	"github.com/sudomakeinstall/cardio/internal/config/raw"
)

// Type is the primitive type of a field.
type Type uint8

const (
	// TypeString accepts a string.
	TypeString Type = iota
	// TypeNumber accepts any finite number.
	TypeNumber
	// TypeInteger accepts a number without a fractional part.
	TypeInteger
	// TypeBool accepts a boolean.
	TypeBool
	// TypeColor accepts [r, g, b] with channels in [0, 1] or a "#rrggbb"
	// string. Hex strings are normalized to the array form.
	TypeColor
	// TypeList accepts a sequence whose elements match Items.
	TypeList
	// TypeTable accepts a mapping with the declared Fields.
	TypeTable
	// TypeMap accepts a mapping with arbitrary keys whose values match Values.
	TypeMap
)

// String returns the type name used in diagnostics.
func (t Type) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeInteger:
		return "integer"
	case TypeBool:
		return "boolean"
	case TypeColor:
		return "color"
	case TypeList:
		return "sequence"
	case TypeTable, TypeMap:
		return "table"
	default:
		return "unknown"
	}
}

// Rule is a cross-field constraint evaluated on a table or sequence after
// all of its children validated. v is the normalized value at path.
type Rule func(path string, v raw.Value) *ValidationError

// Field describes one configuration field: its type, whether it must be
// supplied, its default, and its constraints.
type Field struct {
	Name        string
	Type        Type
	Description string

	Required bool
	Default  raw.Value

	// Numeric constraints.
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum bool

	// String constraints.
	Enum      []string
	Pattern   *regexp.Regexp
	MinLength int

	// Sequence constraints.
	MinItems int
	Items    *Field

	// Table fields, in declaration order.
	Fields []Field

	// Map constraints.
	KeyPattern *regexp.Regexp
	Values     *Field

	// Rules run after the children of a table or sequence validated.
	Rules []Rule
}

// Lookup returns the descriptor of a direct child field.
func (f *Field) Lookup(name string) (*Field, bool) {
	for i := range f.Fields {
		if f.Fields[i].Name == name {
			return &f.Fields[i], true
		}
	}
	return nil, false
}

// Builder provides a fluent API for constructing field descriptors.
type Builder struct {
	field Field
}

func newBuilder(name string, typ Type) *Builder {
	return &Builder{field: Field{Name: name, Type: typ}}
}

// String starts a string field.
func String(name string) *Builder { return newBuilder(name, TypeString) }

// Number starts a number field.
func Number(name string) *Builder { return newBuilder(name, TypeNumber) }

// Integer starts an integer field.
func Integer(name string) *Builder { return newBuilder(name, TypeInteger) }

// Bool starts a boolean field.
func Bool(name string) *Builder { return newBuilder(name, TypeBool) }

// Color starts a color field.
func Color(name string) *Builder { return newBuilder(name, TypeColor) }

// List starts a sequence field whose elements match items.
func List(name string, items *Builder) *Builder {
	b := newBuilder(name, TypeList)
	item := items.Build()
	b.field.Items = &item
	return b
}

// Table starts a table field with the given children.
func Table(name string, fields ...*Builder) *Builder {
	b := newBuilder(name, TypeTable)
	for _, f := range fields {
		b.field.Fields = append(b.field.Fields, f.Build())
	}
	return b
}

// Map starts a table field with free-form keys whose values match values.
func Map(name string, values *Builder) *Builder {
	b := newBuilder(name, TypeMap)
	v := values.Build()
	b.field.Values = &v
	return b
}

// Build returns the constructed field.
func (b *Builder) Build() Field {
	return b.field
}

// Description sets the field description.
func (b *Builder) Description(desc string) *Builder {
	b.field.Description = desc
	return b
}

// Required marks the field as mandatory.
func (b *Builder) Required() *Builder {
	b.field.Required = true
	return b
}

// Default sets the value used when the field is absent.
func (b *Builder) Default(v raw.Value) *Builder {
	b.field.Default = v
	return b
}

// Minimum sets the inclusive minimum for numbers.
func (b *Builder) Minimum(min float64) *Builder {
	b.field.Minimum = &min
	return b
}

// Maximum sets the inclusive maximum for numbers.
func (b *Builder) Maximum(max float64) *Builder {
	b.field.Maximum = &max
	return b
}

// ExclusiveMinimum sets an exclusive minimum for numbers.
func (b *Builder) ExclusiveMinimum(min float64) *Builder {
	b.field.Minimum = &min
	b.field.ExclusiveMinimum = true
	return b
}

// Range sets an inclusive range for numbers.
func (b *Builder) Range(min, max float64) *Builder {
	return b.Minimum(min).Maximum(max)
}

// Enum sets the allowed string values.
func (b *Builder) Enum(values ...string) *Builder {
	b.field.Enum = values
	return b
}

// Pattern sets a regular expression strings must match.
func (b *Builder) Pattern(pattern string) *Builder {
	b.field.Pattern = regexp.MustCompile(pattern)
	return b
}

// NonEmpty requires a string of at least one character.
func (b *Builder) NonEmpty() *Builder {
	b.field.MinLength = 1
	return b
}

// MinItems sets the minimum sequence length.
func (b *Builder) MinItems(n int) *Builder {
	b.field.MinItems = n
	return b
}

// KeyPattern sets a regular expression map keys must match.
func (b *Builder) KeyPattern(pattern string) *Builder {
	b.field.KeyPattern = regexp.MustCompile(pattern)
	return b
}

// Rule adds a cross-field rule.
func (b *Builder) Rule(r Rule) *Builder {
	b.field.Rules = append(b.field.Rules, r)
	return b
}
