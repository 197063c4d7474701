package registry

import (
	"sort"
	"strings"
	"sync"

	"github.com/sudomakeinstall/cardio/internal/config/raw"
	"github.com/sudomakeinstall/cardio/internal/config/schema"
)

// Registry indexes the settings of a schema. A Registry is immutable
// once built and safe for concurrent use.
type Registry struct {
	settings map[string]*Setting
	order    []*Setting            // Declaration order
	sections map[string][]*Setting // Settings grouped by section
	names    []string              // Section names in declaration order
}

// New builds a registry from the root table of a schema.
func New(root *schema.Field) *Registry {
	r := &Registry{
		settings: make(map[string]*Setting),
		sections: make(map[string][]*Setting),
	}
	for i := range root.Fields {
		r.walk(root.Fields[i].Name, &root.Fields[i])
	}
	return r
}

var (
	builtinOnce sync.Once
	builtin     *Registry
)

// Builtin returns the registry of the viewer configuration schema.
func Builtin() *Registry {
	builtinOnce.Do(func() {
		builtin = New(schema.ConfigSchema())
	})
	return builtin
}

func (r *Registry) walk(path string, f *schema.Field) {
	switch {
	case f.Type == schema.TypeTable:
		for i := range f.Fields {
			r.walk(path+"."+f.Fields[i].Name, &f.Fields[i])
		}
	case f.Type == schema.TypeList && f.Items != nil && f.Items.Type == schema.TypeTable:
		r.add(newSetting(path, f))
		r.walk(path+"[]", f.Items)
	default:
		r.add(newSetting(path, f))
	}
}

func (r *Registry) add(s *Setting) {
	r.settings[s.Path] = s
	r.order = append(r.order, s)

	section := s.Section()
	if _, ok := r.sections[section]; !ok {
		r.names = append(r.names, section)
	}
	r.sections[section] = append(r.sections[section], s)
}

// Get returns the setting for the given path.
// Returns nil if no such setting exists.
func (r *Registry) Get(path string) *Setting {
	return r.settings[path]
}

// Has checks if a setting exists.
func (r *Registry) Has(path string) bool {
	_, exists := r.settings[path]
	return exists
}

// Len returns the number of settings.
func (r *Registry) Len() int {
	return len(r.order)
}

// All returns all settings in declaration order.
func (r *Registry) All() []*Setting {
	result := make([]*Setting, len(r.order))
	copy(result, r.order)
	return result
}

// Section returns all settings in a given section (e.g., "viewer").
func (r *Registry) Section(name string) []*Setting {
	settings := r.sections[name]
	result := make([]*Setting, len(settings))
	copy(result, settings)
	return result
}

// Sections returns all section names in declaration order.
func (r *Registry) Sections() []string {
	result := make([]string, len(r.names))
	copy(result, r.names)
	return result
}

// Search finds settings whose path or description contains query,
// ignoring case. Results are sorted by path.
func (r *Registry) Search(query string) []*Setting {
	query = strings.ToLower(query)
	var result []*Setting

	for _, s := range r.order {
		if matchesSetting(s, query) {
			result = append(result, s)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Path < result[j].Path
	})

	return result
}

// Default returns the default value for a setting.
// Returns a null value if the setting does not exist or has no default.
func (r *Registry) Default(path string) raw.Value {
	if s, ok := r.settings[path]; ok {
		return s.Default
	}
	return raw.Value{}
}

func extractSection(path string) string {
	section, _, _ := strings.Cut(path, ".")
	return strings.TrimSuffix(section, "[]")
}

func matchesSetting(s *Setting, query string) bool {
	if strings.Contains(strings.ToLower(s.Path), query) {
		return true
	}
	return strings.Contains(strings.ToLower(s.Description), query)
}
