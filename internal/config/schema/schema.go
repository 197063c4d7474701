// Package schema defines the typed configuration of the cardio viewer and
// validates raw configuration trees against it.
//
// Every field is described by a Field descriptor (type, default, range,
// enum, pattern and cross-field rules) in a single table. One generic
// routine walks that table, so adding a setting means adding a descriptor,
// not writing new validation code. Validation fails fast: the first
// violation in declaration order is returned as a *ValidationError carrying
// the field path, the value received and the constraint.
package schema

import (
	"strconv"

	"github.com/sudomakeinstall/cardio/internal/config/raw"
)

// Validate checks a merged configuration tree and decodes it into a Config.
// On failure the error is a *ValidationError.
func Validate(v raw.Value) (*Config, error) {
	if v.IsNull() {
		v = raw.EmptyMap()
	}

	norm, err := Check("", ConfigSchema(), v)
	if err != nil {
		return nil, err
	}

	cfg := decodeConfig(norm)
	cfg.tree = norm
	return cfg, nil
}

// ValidatePreset checks a preset asset and decodes it into a Preset.
// On failure the error is a *ValidationError.
func ValidatePreset(v raw.Value) (Preset, error) {
	norm, err := Check("", PresetSchema(), v)
	if err != nil {
		return Preset{}, err
	}

	field := func(key string) raw.Value {
		val, _ := norm.Field(key)
		return val
	}
	return Preset{
		Name:        str(field("name")),
		Description: str(field("description")),
		Lighting:    decodeLighting(field("lighting")),
		Stops:       decodeStops(field("stops")),
		Layers:      decodeStopSets(field("layers")),
	}, nil
}

// ConfigDefaults returns the built-in defaults of the configuration tree.
func ConfigDefaults() raw.Value {
	return Defaults(ConfigSchema())
}

func decodeConfig(v raw.Value) *Config {
	cfg := &Config{
		Viewer:           decodeViewer(get(v, "viewer")),
		TransferFunction: decodeTransferFunction(get(v, "transfer_function")),
	}

	for _, item := range get(v, "volumes").Items() {
		cfg.Volumes = append(cfg.Volumes, Volume{Source: decodeSource(item)})
	}
	for _, item := range get(v, "meshes").Items() {
		cfg.Meshes = append(cfg.Meshes, decodeMesh(item))
	}
	for _, item := range get(v, "segmentations").Items() {
		cfg.Segmentations = append(cfg.Segmentations, decodeSegmentation(item))
	}

	return cfg
}

func decodeViewer(v raw.Value) Viewer {
	wl, _ := LookupWindowLevel(str(get(v, "window_level")))
	return Viewer{
		Title:          str(get(v, "title")),
		CurrentFrame:   integer(get(v, "current_frame")),
		RotationFactor: num(get(v, "rotation_factor")),
		WindowLevel:    wl,
		Background: Background{
			Light: color(get(v, "background.light")),
			Dark:  color(get(v, "background.dark")),
		},
		ScreenshotDirectory:          str(get(v, "screenshot_directory")),
		ScreenshotSubdirectoryFormat: str(get(v, "screenshot_subdirectory_format")),
	}
}

func decodeTransferFunction(v raw.Value) TransferFunction {
	return TransferFunction{
		Preset: str(get(v, "preset")),
		ScalarRange: ScalarRange{
			Min: num(get(v, "scalar_range.min")),
			Max: num(get(v, "scalar_range.max")),
		},
		Stops:        decodeStops(get(v, "stops")),
		Layers:       decodeStopSets(get(v, "layers")),
		Lighting:     decodeLighting(get(v, "lighting")),
		Shade:        boolean(get(v, "shade")),
		BlendMode:    BlendMode(str(get(v, "blend_mode"))),
		UnitDistance: num(get(v, "unit_distance")),
		SampleCount:  integer(get(v, "sample_count")),
	}
}

func decodeStops(v raw.Value) []Stop {
	items := v.Items()
	stops := make([]Stop, len(items))
	for i, item := range items {
		stops[i] = Stop{
			Intensity: num(get(item, "intensity")),
			Color:     color(get(item, "color")),
			Opacity:   num(get(item, "opacity")),
		}
	}
	return stops
}

func decodeStopSets(v raw.Value) [][]Stop {
	var sets [][]Stop
	for _, item := range v.Items() {
		sets = append(sets, decodeStops(get(item, "stops")))
	}
	return sets
}

func decodeLighting(v raw.Value) Lighting {
	return Lighting{
		Ambient:       num(get(v, "ambient")),
		Diffuse:       num(get(v, "diffuse")),
		Specular:      num(get(v, "specular")),
		SpecularPower: num(get(v, "specular_power")),
	}
}

func decodeSource(v raw.Value) Source {
	s := Source{
		Label:           str(get(v, "label")),
		Directory:       str(get(v, "directory")),
		Pattern:         str(get(v, "pattern")),
		Visible:         boolean(get(v, "visible")),
		ClippingEnabled: boolean(get(v, "clipping_enabled")),
	}
	for _, p := range get(v, "file_paths").Items() {
		s.FilePaths = append(s.FilePaths, str(p))
	}
	return s
}

func decodeMesh(v raw.Value) Mesh {
	return Mesh{
		Source:                    decodeSource(v),
		LoopSubdivisionIterations: integer(get(v, "loop_subdivision_iterations")),
		SurfaceType:               str(get(v, "surface_type")),
		CTFMin:                    num(get(v, "ctf_min")),
		CTFMax:                    num(get(v, "ctf_max")),
		Property: MeshProperty{
			Representation:   str(get(v, "property.representation")),
			Color:            color(get(v, "property.color")),
			EdgeVisibility:   boolean(get(v, "property.edge_visibility")),
			VertexVisibility: boolean(get(v, "property.vertex_visibility")),
			Shading:          boolean(get(v, "property.shading")),
			Interpolation:    str(get(v, "property.interpolation")),
			Opacity:          num(get(v, "property.opacity")),
		},
	}
}

func decodeSegmentation(v raw.Value) Segmentation {
	s := Segmentation{Source: decodeSource(v)}
	for _, l := range get(v, "include_labels").Items() {
		s.IncludeLabels = append(s.IncludeLabels, integer(l))
	}

	colors := get(v, "label_colors")
	if colors.Len() > 0 {
		s.LabelColors = make(map[int]RGB, colors.Len())
		for _, key := range colors.Keys() {
			label, _ := strconv.Atoi(key)
			val, _ := colors.Field(key)
			s.LabelColors[label] = color(val)
		}
	}
	return s
}

// The accessors below read values that already passed validation.

func get(v raw.Value, path string) raw.Value {
	val, _ := v.Lookup(path)
	return val
}

func str(v raw.Value) string {
	s, _ := v.AsString()
	return s
}

func num(v raw.Value) float64 {
	n, _ := v.AsNumber()
	return n
}

func integer(v raw.Value) int {
	i, _ := v.AsInteger()
	return int(i)
}

func boolean(v raw.Value) bool {
	b, _ := v.AsBool()
	return b
}

func color(v raw.Value) RGB {
	items := v.Items()
	if len(items) != 3 {
		return RGB{}
	}
	return RGB{R: num(items[0]), G: num(items[1]), B: num(items[2])}
}
