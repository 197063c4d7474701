package loader

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/pflag"

	"github.com/sudomakeinstall/cardio/internal/config/raw"
)

// FlagKind is the value type of a bound flag.
type FlagKind uint8

const (
	// FlagString is a string flag.
	FlagString FlagKind = iota
	// FlagFloat is a float64 flag.
	FlagFloat
	// FlagInt is an int flag.
	FlagInt
	// FlagBool is a boolean flag.
	FlagBool
	// FlagSources is a repeatable "label=directory" flag that builds a
	// list of data source tables.
	FlagSources
)

// Flag binds a command-line flag to a configuration path.
type Flag struct {
	// Name is the flag name without dashes.
	Name string

	// Path is the dot-separated configuration path the flag overrides.
	Path string

	// Kind is the flag's value type.
	Kind FlagKind

	// Usage is the help text.
	Usage string
}

// SetFlag is the name of the repeatable generic override flag.
const SetFlag = "set"

// DefaultFlags returns the flag table of the cardio command line.
func DefaultFlags() []Flag {
	return []Flag{
		{Name: "preset", Path: "transfer_function.preset", Kind: FlagString, Usage: "transfer-function preset name"},
		{Name: "blend-mode", Path: "transfer_function.blend_mode", Kind: FlagString, Usage: "volume blend mode (composite, maximum, minimum, average, additive)"},
		{Name: "shade", Path: "transfer_function.shade", Kind: FlagBool, Usage: "apply lighting to the volume"},
		{Name: "unit-distance", Path: "transfer_function.unit_distance", Kind: FlagFloat, Usage: "distance over which stop opacities apply"},
		{Name: "sample-count", Path: "transfer_function.sample_count", Kind: FlagInt, Usage: "lookup table resolution"},
		{Name: "lighting.ambient", Path: "transfer_function.lighting.ambient", Kind: FlagFloat, Usage: "ambient lighting coefficient"},
		{Name: "lighting.diffuse", Path: "transfer_function.lighting.diffuse", Kind: FlagFloat, Usage: "diffuse lighting coefficient"},
		{Name: "lighting.specular", Path: "transfer_function.lighting.specular", Kind: FlagFloat, Usage: "specular lighting coefficient"},
		{Name: "lighting.specular-power", Path: "transfer_function.lighting.specular_power", Kind: FlagFloat, Usage: "specular exponent"},
		{Name: "title", Path: "viewer.title", Kind: FlagString, Usage: "viewer title"},
		{Name: "current-frame", Path: "viewer.current_frame", Kind: FlagInt, Usage: "initial frame"},
		{Name: "rotation-factor", Path: "viewer.rotation_factor", Kind: FlagFloat, Usage: "rotation speed factor"},
		{Name: "window-level", Path: "viewer.window_level", Kind: FlagString, Usage: "window/level preset"},
		{Name: "screenshot-directory", Path: "viewer.screenshot_directory", Kind: FlagString, Usage: "screenshot output directory"},
		{Name: "volume", Path: "volumes", Kind: FlagSources, Usage: "volume source as label=directory (repeatable)"},
		{Name: "mesh", Path: "meshes", Kind: FlagSources, Usage: "mesh source as label=directory (repeatable)"},
		{Name: "segmentation", Path: "segmentations", Kind: FlagSources, Usage: "segmentation source as label=directory (repeatable)"},
	}
}

// ArgError reports a malformed command-line value.
type ArgError struct {
	Flag    string
	Value   string
	Message string
}

// Error implements the error interface.
func (e *ArgError) Error() string {
	return fmt.Sprintf("invalid value %q for --%s: %s", e.Value, e.Flag, e.Message)
}

// Args reads the command-line source.
// Only flags the user set explicitly contribute to the fragment, so unset
// flags fall through to lower precedence sources.
type Args struct {
	flags []Flag
}

// NewArgs creates an argument reader for the given flag table.
func NewArgs(flags ...Flag) *Args {
	return &Args{flags: flags}
}

// Flags returns the bound flag table.
func (a *Args) Flags() []Flag {
	out := make([]Flag, len(a.flags))
	copy(out, a.flags)
	return out
}

// Bind registers the flag table and the --set flag on fs.
// Flags carry zero defaults; the real defaults live in the defaults layer.
func (a *Args) Bind(fs *pflag.FlagSet) {
	for _, f := range a.flags {
		switch f.Kind {
		case FlagString:
			fs.String(f.Name, "", f.Usage)
		case FlagFloat:
			fs.Float64(f.Name, 0, f.Usage)
		case FlagInt:
			fs.Int(f.Name, 0, f.Usage)
		case FlagBool:
			fs.Bool(f.Name, false, f.Usage)
		case FlagSources:
			fs.StringArray(f.Name, nil, f.Usage)
		}
	}
	fs.StringArray(SetFlag, nil, "override any configuration field as path=value (repeatable)")
}

// Fragment builds the command-line fragment from the explicitly changed
// flags of fs. Table flags are applied in declaration order, then --set
// overrides in the order given.
func (a *Args) Fragment(fs *pflag.FlagSet) (raw.Value, error) {
	out := raw.EmptyMap()

	for _, f := range a.flags {
		if !fs.Changed(f.Name) {
			continue
		}

		val, err := flagValue(fs, f)
		if err != nil {
			return raw.Value{}, err
		}
		out = out.With(f.Path, val)
	}

	if fs.Lookup(SetFlag) != nil && fs.Changed(SetFlag) {
		sets, err := fs.GetStringArray(SetFlag)
		if err != nil {
			return raw.Value{}, err
		}
		for _, s := range sets {
			path, val, err := ParseSet(s)
			if err != nil {
				return raw.Value{}, err
			}
			out = out.With(path, val)
		}
	}

	return out, nil
}

func flagValue(fs *pflag.FlagSet, f Flag) (raw.Value, error) {
	switch f.Kind {
	case FlagString:
		s, err := fs.GetString(f.Name)
		return raw.String(s), err
	case FlagFloat:
		n, err := fs.GetFloat64(f.Name)
		return raw.Number(n), err
	case FlagInt:
		n, err := fs.GetInt(f.Name)
		return raw.Number(float64(n)), err
	case FlagBool:
		b, err := fs.GetBool(f.Name)
		return raw.Bool(b), err
	case FlagSources:
		entries, err := fs.GetStringArray(f.Name)
		if err != nil {
			return raw.Value{}, err
		}
		return sourceList(f.Name, entries)
	default:
		return raw.Value{}, fmt.Errorf("flag --%s has unknown kind %d", f.Name, f.Kind)
	}
}

func sourceList(flag string, entries []string) (raw.Value, error) {
	items := make([]raw.Value, 0, len(entries))
	for _, entry := range entries {
		label, dir, ok := strings.Cut(entry, "=")
		if !ok || label == "" || dir == "" {
			return raw.Value{}, &ArgError{Flag: flag, Value: entry, Message: "expected label=directory"}
		}
		items = append(items, raw.Map(map[string]raw.Value{
			"label":     raw.String(label),
			"directory": raw.String(dir),
		}))
	}
	return raw.List(items...), nil
}

var setPathPattern = regexp.MustCompile(`^[A-Za-z0-9_]+(\.[A-Za-z0-9_]+)*$`)

// ParseSet parses a "path=value" override. The value is read as a TOML
// value (number, boolean, array, inline table, quoted string); anything
// that is not valid TOML is taken as a bare string.
func ParseSet(s string) (string, raw.Value, error) {
	path, value, ok := strings.Cut(s, "=")
	path = strings.TrimSpace(path)
	if !ok || !setPathPattern.MatchString(path) {
		return "", raw.Value{}, &ArgError{Flag: SetFlag, Value: s, Message: "expected path=value"}
	}

	value = strings.TrimSpace(value)
	var doc map[string]any
	if err := toml.Unmarshal([]byte("v = "+value), &doc); err != nil {
		return path, raw.String(value), nil
	}

	v, err := raw.From(doc["v"])
	if err != nil {
		return "", raw.Value{}, &ArgError{Flag: SetFlag, Value: s, Message: err.Error()}
	}
	return path, v, nil
}
