// Package registry indexes the configuration schema by path.
//
// Every leaf of the schema's field tree becomes a Setting carrying its
// type, default, constraints and documentation. Lists of tables are
// settings themselves and also contribute their element fields, written
// with "[]" after the list name (e.g., "volumes[].label").
package registry

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sudomakeinstall/cardio/internal/config/raw"
	"github.com/sudomakeinstall/cardio/internal/config/schema"
)

// Setting describes one configuration setting.
type Setting struct {
	// Path is the dot-separated path (e.g., "transfer_function.lighting.ambient").
	Path string

	// Type is the setting's data type.
	Type schema.Type

	// Default is the default value, null if the setting has none.
	Default raw.Value

	// Description is human-readable documentation.
	Description string

	// Required marks settings that must be supplied.
	Required bool

	// Enum lists allowed values for string settings.
	Enum []string

	// Minimum for numeric types (nil means no minimum).
	Minimum *float64

	// Maximum for numeric types (nil means no maximum).
	Maximum *float64

	// ExclusiveMinimum makes Minimum a strict bound.
	ExclusiveMinimum bool

	// Pattern for string validation (regex source).
	Pattern string

	field *schema.Field
}

func newSetting(path string, f *schema.Field) *Setting {
	s := &Setting{
		Path:             path,
		Type:             f.Type,
		Default:          f.Default,
		Description:      f.Description,
		Required:         f.Required,
		Enum:             append([]string(nil), f.Enum...),
		Minimum:          f.Minimum,
		Maximum:          f.Maximum,
		ExclusiveMinimum: f.ExclusiveMinimum,
		field:            f,
	}
	if f.Pattern != nil {
		s.Pattern = f.Pattern.String()
	}
	return s
}

// Section returns the top-level table the setting belongs to.
func (s *Setting) Section() string {
	return extractSection(s.Path)
}

// HasDefault reports whether the setting has a default value.
func (s *Setting) HasDefault() bool {
	return !s.Default.IsNull()
}

// Validate checks value against the setting's descriptor and returns
// it normalized. On failure the error is a *schema.ValidationError.
func (s *Setting) Validate(value raw.Value) (raw.Value, error) {
	return schema.Check(s.Path, s.field, value)
}

// Constraint summarizes the setting's constraints, empty if it has none.
func (s *Setting) Constraint() string {
	var parts []string
	if s.Required {
		parts = append(parts, "required")
	}
	if len(s.Enum) > 0 {
		parts = append(parts, "one of "+strings.Join(s.Enum, ", "))
	}
	if r := s.rangeText(); r != "" {
		parts = append(parts, r)
	}
	if s.Pattern != "" {
		parts = append(parts, "matches "+s.Pattern)
	}
	return strings.Join(parts, "; ")
}

func (s *Setting) rangeText() string {
	lower := ">= "
	if s.ExclusiveMinimum {
		lower = "> "
	}

	switch {
	case s.Minimum != nil && s.Maximum != nil:
		if s.ExclusiveMinimum {
			return fmt.Sprintf("> %s and <= %s", formatFloat(*s.Minimum), formatFloat(*s.Maximum))
		}
		return fmt.Sprintf("between %s and %s", formatFloat(*s.Minimum), formatFloat(*s.Maximum))
	case s.Minimum != nil:
		return lower + formatFloat(*s.Minimum)
	case s.Maximum != nil:
		return "<= " + formatFloat(*s.Maximum)
	default:
		return ""
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
