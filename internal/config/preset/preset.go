// Package preset provides the catalog of named transfer-function presets
// bundled with cardio.
//
// Each preset is one TOML file under assets/, named after the preset
// (assets/soft-tissue.toml is the preset "soft-tissue"). Every asset is
// validated when the registry is built; a broken asset aborts construction
// with a *MalformedPresetAssetError. A built registry is immutable and safe
// for concurrent use.
package preset

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/sudomakeinstall/cardio/internal/config/loader"
	"github.com/sudomakeinstall/cardio/internal/config/raw"
	"github.com/sudomakeinstall/cardio/internal/config/schema"
)

//go:embed assets/*.toml
var assets embed.FS

const (
	assetDir = "assets"
	assetExt = ".toml"
)

// Preset is a validated, named set of stops and lighting coefficients.
type Preset schema.Preset

// Fragment returns the preset as a configuration fragment shaped like the
// transfer_function section, ready to be used as a merge layer. The
// fragment always sets layers, so a preset without layers clears any
// layers below it.
func (p Preset) Fragment() raw.Value {
	layers := make([]raw.Value, len(p.Layers))
	for i, stops := range p.Layers {
		layers[i] = raw.Map(map[string]raw.Value{"stops": stopsValue(stops)})
	}

	lighting := raw.Map(map[string]raw.Value{
		"ambient":        raw.Number(p.Lighting.Ambient),
		"diffuse":        raw.Number(p.Lighting.Diffuse),
		"specular":       raw.Number(p.Lighting.Specular),
		"specular_power": raw.Number(p.Lighting.SpecularPower),
	})

	return raw.Map(map[string]raw.Value{
		"transfer_function": raw.Map(map[string]raw.Value{
			"stops":    stopsValue(p.Stops),
			"layers":   raw.List(layers...),
			"lighting": lighting,
		}),
	})
}

func stopsValue(stops []schema.Stop) raw.Value {
	items := make([]raw.Value, len(stops))
	for i, s := range stops {
		items[i] = raw.Map(map[string]raw.Value{
			"intensity": raw.Number(s.Intensity),
			"color":     raw.List(raw.Number(s.Color.R), raw.Number(s.Color.G), raw.Number(s.Color.B)),
			"opacity":   raw.Number(s.Opacity),
		})
	}
	return raw.List(items...)
}

func (p Preset) clone() Preset {
	out := p
	out.Stops = append([]schema.Stop(nil), p.Stops...)
	if p.Layers != nil {
		out.Layers = make([][]schema.Stop, len(p.Layers))
		for i, stops := range p.Layers {
			out.Layers[i] = append([]schema.Stop(nil), stops...)
		}
	}
	return out
}

// Registry maps preset names to presets.
type Registry struct {
	presets map[string]Preset
	names   []string
}

// Load builds a registry from every *.toml file in dir of fsys.
// Files with other extensions are ignored.
func Load(fsys fs.FS, dir string) (*Registry, error) {
	files, err := fs.Glob(fsys, path.Join(dir, "*"+assetExt))
	if err != nil {
		return nil, fmt.Errorf("listing presets in %s: %w", dir, err)
	}
	sort.Strings(files)

	r := &Registry{presets: make(map[string]Preset, len(files))}
	for _, file := range files {
		p, err := loadAsset(fsys, file)
		if err != nil {
			return nil, err
		}
		name := strings.TrimSuffix(path.Base(file), assetExt)
		r.presets[name] = p
		r.names = append(r.names, name)
	}
	return r, nil
}

func loadAsset(fsys fs.FS, file string) (Preset, error) {
	data, err := fs.ReadFile(fsys, file)
	if err != nil {
		return Preset{}, &MalformedPresetAssetError{Path: file, Err: err}
	}

	tree, err := loader.ParseTOML(file, data)
	if err != nil {
		return Preset{}, &MalformedPresetAssetError{Path: file, Err: err}
	}

	p, err := schema.ValidatePreset(tree)
	if err != nil {
		return Preset{}, &MalformedPresetAssetError{Path: file, Err: err}
	}
	return Preset(p), nil
}

var (
	builtinOnce     sync.Once
	builtinRegistry *Registry
	builtinErr      error
)

// Builtin returns the registry of presets bundled with the binary.
// The assets are parsed once; later calls return the same registry.
func Builtin() (*Registry, error) {
	builtinOnce.Do(func() {
		builtinRegistry, builtinErr = Load(assets, assetDir)
	})
	return builtinRegistry, builtinErr
}

// Lookup returns the preset with the given name. The returned preset is a
// copy; changing it does not affect the registry.
func (r *Registry) Lookup(name string) (Preset, error) {
	p, ok := r.presets[name]
	if !ok {
		return Preset{}, &UnknownPresetError{Name: name, Available: r.Names()}
	}
	return p.clone(), nil
}

// Names returns the preset names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// List returns the description of every preset keyed by name.
func (r *Registry) List() map[string]string {
	out := make(map[string]string, len(r.presets))
	for name, p := range r.presets {
		out[name] = p.Description
	}
	return out
}

// Len returns the number of presets.
func (r *Registry) Len() int {
	return len(r.presets)
}
