package config

import (
	"errors"
	"reflect"
	"testing"
	"testing/fstest"

	"github.com/spf13/pflag"

	"github.com/sudomakeinstall/cardio/internal/config/layer"
	"github.com/sudomakeinstall/cardio/internal/config/loader"
	"github.com/sudomakeinstall/cardio/internal/config/preset"
	"github.com/sudomakeinstall/cardio/internal/config/raw"
	"github.com/sudomakeinstall/cardio/internal/config/schema"
)

const softTissueAsset = `
name = "Soft Tissue"
description = "Test soft tissue"

[lighting]
ambient = 0.2
diffuse = 0.9
specular = 0.3
specular_power = 12.0

[[stops]]
intensity = -220
color = [0.55, 0.25, 0.15]
opacity = 0.0

[[stops]]
intensity = 217
color = [0.88, 0.6, 0.29]
opacity = 0.68

[[stops]]
intensity = 420
color = [1.0, 0.94, 0.95]
opacity = 0.83
`

func testRegistry(t *testing.T) *preset.Registry {
	t.Helper()
	r, err := preset.Load(fstest.MapFS{
		"assets/soft-tissue.toml": {Data: []byte(softTissueAsset)},
	}, "assets")
	if err != nil {
		t.Fatalf("preset.Load() error = %v", err)
	}
	return r
}

func tree(t *testing.T, v map[string]any) raw.Value {
	t.Helper()
	out, err := raw.From(v)
	if err != nil {
		t.Fatalf("raw.From() error = %v", err)
	}
	return out
}

func fileLayer(t *testing.T, v map[string]any) layer.Layer {
	return layer.File("cardio.toml", tree(t, v))
}

func argsLayer(t *testing.T, v map[string]any) layer.Layer {
	return layer.Args(tree(t, v))
}

func lighting(fields map[string]any) map[string]any {
	return map[string]any{"transfer_function": map[string]any{"lighting": fields}}
}

func TestResolveDefaults(t *testing.T) {
	r := NewResolver(testRegistry(t))

	cfg, err := r.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	want, err := schema.Validate(raw.EmptyMap())
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if !reflect.DeepEqual(cfg, want) {
		t.Errorf("Resolve() = %+v, want schema defaults %+v", cfg, want)
	}
}

func TestResolvePrecedence(t *testing.T) {
	tests := []struct {
		name   string
		layers func(t *testing.T) []layer.Layer
		check  func(t *testing.T, cfg *schema.Config)
	}{
		{
			name: "arguments override file",
			layers: func(t *testing.T) []layer.Layer {
				return []layer.Layer{
					fileLayer(t, lighting(map[string]any{"ambient": 0.4, "diffuse": 0.1})),
					argsLayer(t, lighting(map[string]any{"ambient": 0.6})),
				}
			},
			check: func(t *testing.T, cfg *schema.Config) {
				if got := cfg.TransferFunction.Lighting.Ambient; got != 0.6 {
					t.Errorf("Ambient = %v, want 0.6", got)
				}
				if got := cfg.TransferFunction.Lighting.Diffuse; got != 0.1 {
					t.Errorf("Diffuse = %v, want 0.1 from file", got)
				}
			},
		},
		{
			name: "layer order does not matter",
			layers: func(t *testing.T) []layer.Layer {
				return []layer.Layer{
					argsLayer(t, lighting(map[string]any{"ambient": 0.6})),
					fileLayer(t, lighting(map[string]any{"ambient": 0.4})),
				}
			},
			check: func(t *testing.T, cfg *schema.Config) {
				if got := cfg.TransferFunction.Lighting.Ambient; got != 0.6 {
					t.Errorf("Ambient = %v, want 0.6", got)
				}
			},
		},
		{
			name: "preset value survives when file and arguments are silent",
			layers: func(t *testing.T) []layer.Layer {
				return []layer.Layer{
					fileLayer(t, map[string]any{"transfer_function": map[string]any{"preset": "soft-tissue"}}),
				}
			},
			check: func(t *testing.T, cfg *schema.Config) {
				if got := cfg.TransferFunction.Lighting.SpecularPower; got != 12 {
					t.Errorf("SpecularPower = %v, want 12 from preset", got)
				}
				if got := cfg.TransferFunction.Preset; got != "soft-tissue" {
					t.Errorf("Preset = %q, want soft-tissue", got)
				}
			},
		},
		{
			name: "file overrides preset",
			layers: func(t *testing.T) []layer.Layer {
				return []layer.Layer{
					fileLayer(t, map[string]any{"transfer_function": map[string]any{
						"preset":   "soft-tissue",
						"lighting": map[string]any{"diffuse": 0.5},
					}}),
				}
			},
			check: func(t *testing.T, cfg *schema.Config) {
				l := cfg.TransferFunction.Lighting
				if l.Diffuse != 0.5 || l.Ambient != 0.2 {
					t.Errorf("Lighting = %+v, want diffuse 0.5 from file and ambient 0.2 from preset", l)
				}
			},
		},
		{
			name: "session overrides arguments",
			layers: func(t *testing.T) []layer.Layer {
				return []layer.Layer{
					argsLayer(t, lighting(map[string]any{"ambient": 0.6})),
					layer.Session(tree(t, lighting(map[string]any{"ambient": 0.9}))),
				}
			},
			check: func(t *testing.T, cfg *schema.Config) {
				if got := cfg.TransferFunction.Lighting.Ambient; got != 0.9 {
					t.Errorf("Ambient = %v, want 0.9", got)
				}
			},
		},
		{
			name: "file stops replace preset stops wholesale",
			layers: func(t *testing.T) []layer.Layer {
				return []layer.Layer{
					fileLayer(t, map[string]any{"transfer_function": map[string]any{
						"preset": "soft-tissue",
						"stops": []any{
							map[string]any{"intensity": 0, "color": []any{0, 0, 0}, "opacity": 0},
							map[string]any{"intensity": 50, "color": []any{1, 1, 1}, "opacity": 1},
						},
					}}),
				}
			},
			check: func(t *testing.T, cfg *schema.Config) {
				want := []schema.Stop{
					{Intensity: 0, Color: schema.RGB{}, Opacity: 0},
					{Intensity: 50, Color: schema.RGB{R: 1, G: 1, B: 1}, Opacity: 1},
				}
				if !reflect.DeepEqual(cfg.TransferFunction.Stops, want) {
					t.Errorf("Stops = %v, want %v", cfg.TransferFunction.Stops, want)
				}
				if got := cfg.TransferFunction.Lighting.Ambient; got != 0.2 {
					t.Errorf("Ambient = %v, want 0.2 from preset", got)
				}
			},
		},
	}

	r := NewResolver(testRegistry(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := r.Resolve(tt.layers(t)...)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			tt.check(t, cfg)
		})
	}
}

func TestResolveEndToEnd(t *testing.T) {
	presets := testRegistry(t)
	softTissue, err := presets.Lookup("soft-tissue")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}

	defaults := layer.Builtin(tree(t, map[string]any{
		"transfer_function": map[string]any{
			"lighting": map[string]any{"ambient": 0.3},
			"stops": []any{
				map[string]any{"intensity": -1000, "color": []any{1, 1, 1}, "opacity": 1.0},
				map[string]any{"intensity": 1000, "color": []any{1, 1, 1}, "opacity": 1.0},
			},
		},
	}))
	file := fileLayer(t, map[string]any{"transfer_function": map[string]any{"preset": "soft-tissue"}})

	args := loader.NewArgs(loader.DefaultFlags()...)
	fs := pflag.NewFlagSet("cardio", pflag.ContinueOnError)
	args.Bind(fs)
	if err := fs.Parse([]string{"--lighting.ambient=0.5"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	argTree, err := args.Fragment(fs)
	if err != nil {
		t.Fatalf("Fragment() error = %v", err)
	}

	cfg, err := NewResolver(presets).Resolve(defaults, file, layer.Args(argTree))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if got := cfg.TransferFunction.Lighting.Ambient; got != 0.5 {
		t.Errorf("Ambient = %v, want 0.5", got)
	}
	if !reflect.DeepEqual(cfg.TransferFunction.Stops, softTissue.Stops) {
		t.Errorf("Stops = %v, want soft-tissue stops %v", cfg.TransferFunction.Stops, softTissue.Stops)
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	r := NewResolver(testRegistry(t))
	layers := []layer.Layer{
		fileLayer(t, map[string]any{
			"viewer":            map[string]any{"title": "Study 42", "window_level": "Lung"},
			"transfer_function": map[string]any{"preset": "soft-tissue"},
			"volumes":           []any{map[string]any{"label": "ct", "directory": "/data/ct"}},
		}),
		argsLayer(t, lighting(map[string]any{"specular": 0.7})),
	}

	first, err := r.Resolve(layers...)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := r.Resolve(layers...)
		if err != nil {
			t.Fatalf("Resolve() error = %v", err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Resolve() run %d = %+v, want %+v", i, again, first)
		}
	}
}

func TestResolveUnknownPreset(t *testing.T) {
	r := NewResolver(testRegistry(t))

	_, err := r.Resolve(argsLayer(t, map[string]any{"transfer_function": map[string]any{"preset": "nonexistent"}}))
	var unknown *preset.UnknownPresetError
	if !errors.As(err, &unknown) {
		t.Fatalf("Resolve() error = %v, want *preset.UnknownPresetError", err)
	}
	if unknown.Name != "nonexistent" {
		t.Errorf("Name = %q, want nonexistent", unknown.Name)
	}
	if !reflect.DeepEqual(unknown.Available, []string{"soft-tissue"}) {
		t.Errorf("Available = %v, want [soft-tissue]", unknown.Available)
	}

	_, err = NewResolver(nil).Resolve(argsLayer(t, map[string]any{"transfer_function": map[string]any{"preset": "bone"}}))
	if !errors.As(err, &unknown) {
		t.Errorf("Resolve() with nil registry error = %v, want *preset.UnknownPresetError", err)
	}
}

func TestResolveRejectsPresetLayer(t *testing.T) {
	r := NewResolver(testRegistry(t))

	_, err := r.Resolve(layer.Preset("soft-tissue", raw.EmptyMap()))
	if !errors.Is(err, ErrPresetLayer) {
		t.Errorf("Resolve() error = %v, want ErrPresetLayer", err)
	}
}

func TestResolveValidationErrors(t *testing.T) {
	tests := []struct {
		name     string
		layer    map[string]any
		wantPath string
	}{
		{"out of range", lighting(map[string]any{"ambient": 2}), "transfer_function.lighting.ambient"},
		{"preset of wrong type", map[string]any{"transfer_function": map[string]any{"preset": 7}}, "transfer_function.preset"},
		{"empty preset", map[string]any{"transfer_function": map[string]any{"preset": ""}}, "transfer_function.preset"},
		{"unknown section", map[string]any{"render": map[string]any{}}, "render"},
	}

	r := NewResolver(testRegistry(t))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Resolve(fileLayer(t, tt.layer))
			var verr *schema.ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Resolve() error = %v, want *schema.ValidationError", err)
			}
			if verr.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", verr.Path, tt.wantPath)
			}
		})
	}
}

func TestResolvePresetIsDetached(t *testing.T) {
	presets := testRegistry(t)
	r := NewResolver(presets)

	cfg, err := r.Resolve(fileLayer(t, map[string]any{"transfer_function": map[string]any{"preset": "soft-tissue"}}))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	cfg.TransferFunction.Stops[0].Opacity = 0.99

	p, _ := presets.Lookup("soft-tissue")
	if p.Stops[0].Opacity != 0 {
		t.Errorf("registry preset changed: opacity = %v", p.Stops[0].Opacity)
	}
}

func TestResolverStack(t *testing.T) {
	r := NewResolver(testRegistry(t))

	stack, err := r.Stack(fileLayer(t, map[string]any{"transfer_function": map[string]any{
		"preset":   "soft-tissue",
		"lighting": map[string]any{"diffuse": 0.5},
	}}))
	if err != nil {
		t.Fatalf("Stack() error = %v", err)
	}

	if stack.Len() != 3 {
		t.Fatalf("Len() = %d, want 3 (defaults, preset, file)", stack.Len())
	}

	tests := []struct {
		path string
		want string
	}{
		{"transfer_function.stops", "preset:soft-tissue"},
		{"transfer_function.lighting.ambient", "preset:soft-tissue"},
		{"transfer_function.lighting.diffuse", "file"},
		{"transfer_function.preset", "file"},
		{"viewer.title", "defaults"},
	}
	for _, tt := range tests {
		if got := stack.Which(tt.path); got != tt.want {
			t.Errorf("Which(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestResolveLayersReplaceWholesale(t *testing.T) {
	presets, err := preset.Builtin()
	if err != nil {
		t.Fatalf("preset.Builtin() error = %v", err)
	}
	r := NewResolver(presets)
	selected := map[string]any{"transfer_function": map[string]any{"preset": "vascular-open"}}

	cfg, err := r.Resolve(fileLayer(t, selected))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	p, _ := presets.Lookup("vascular-open")
	if !reflect.DeepEqual(cfg.TransferFunction.Layers, p.Layers) {
		t.Errorf("Layers = %v, want the preset layers %v", cfg.TransferFunction.Layers, p.Layers)
	}

	cleared := map[string]any{"transfer_function": map[string]any{"layers": []any{}}}
	cfg, err = r.Resolve(fileLayer(t, selected), argsLayer(t, cleared))
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if len(cfg.TransferFunction.Layers) != 0 {
		t.Errorf("Layers = %v, want none after the override", cfg.TransferFunction.Layers)
	}
	if !reflect.DeepEqual(cfg.TransferFunction.Stops, p.Stops) {
		t.Errorf("Stops = %v, want the preset stops", cfg.TransferFunction.Stops)
	}
}
