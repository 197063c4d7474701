package schema

import (
	"fmt"
	"math"
	"strings"

	"github.com/sudomakeinstall/cardio/internal/config/raw"
)

const (
	labelPattern     = `^[a-zA-Z0-9_]+$`
	patternCharset   = `^[a-zA-Z0-9_\-.${}]+$`
	framePlaceholder = "${frame}"
)

var (
	configSchema = buildConfigSchema()
	presetSchema = buildPresetSchema()
)

// ConfigSchema returns the descriptor of the whole configuration tree.
func ConfigSchema() *Field {
	return &configSchema
}

// PresetSchema returns the descriptor of a preset asset.
func PresetSchema() *Field {
	return &presetSchema
}

func rgb(r, g, b float64) raw.Value {
	return raw.List(raw.Number(r), raw.Number(g), raw.Number(b))
}

func stopValue(intensity float64, color raw.Value, opacity float64) raw.Value {
	return raw.Map(map[string]raw.Value{
		"intensity": raw.Number(intensity),
		"color":     color,
		"opacity":   raw.Number(opacity),
	})
}

func buildConfigSchema() Field {
	return Table("",
		Table("viewer",
			String("title").Default(raw.String("Cardio")).Description("window title"),
			Integer("current_frame").Minimum(0).Default(raw.Number(0)),
			Number("rotation_factor").ExclusiveMinimum(0).Default(raw.Number(3)),
			String("window_level").Enum(windowLevelNames()...).Default(raw.String("Abdomen")),
			Table("background",
				Color("light").Default(rgb(1, 1, 1)),
				Color("dark").Default(rgb(0, 0, 0)),
			),
			String("screenshot_directory").NonEmpty().Default(raw.String("screenshots")),
			String("screenshot_subdirectory_format").NonEmpty().Default(raw.String("%Y-%m-%d-%H-%M-%S")),
		),
		transferFunctionTable(),
		List("volumes", Table("", sourceFields("${frame}.nii.gz")...).Rule(framePatternRule)).
			Default(raw.List()).
			Rule(uniqueLabels),
		List("meshes", Table("", meshFields()...).
			Rule(framePatternRule).
			Rule(orderedPair("ctf_min", "ctf_max"))).
			Default(raw.List()).
			Rule(uniqueLabels),
		List("segmentations", Table("", segmentationFields()...).Rule(framePatternRule)).
			Default(raw.List()).
			Rule(uniqueLabels),
	).Build()
}

func transferFunctionTable() *Builder {
	return Table("transfer_function",
		String("preset").NonEmpty().Description("name of a bundled preset used as the base of this section"),
		Table("scalar_range",
			Number("min").Default(raw.Number(-3024)),
			Number("max").Default(raw.Number(3071)),
		).Rule(orderedPair("min", "max")),
		stopsList().Default(raw.List(
			stopValue(-1000, rgb(0, 0, 0), 0),
			stopValue(1000, rgb(1, 1, 1), 1),
		)),
		stopLayersList(),
		lightingTable(false),
		Bool("shade").Default(raw.Bool(true)),
		String("blend_mode").Enum(BlendModes()...).Default(raw.String(string(BlendComposite))),
		Number("unit_distance").ExclusiveMinimum(0).Default(raw.Number(1)),
		Integer("sample_count").Range(2, 65536).Default(raw.Number(512)),
	).Rule(stopsInScalarRange)
}

func stopsList() *Builder {
	return List("stops", Table("",
		Number("intensity").Required(),
		Color("color").Required(),
		Number("opacity").Range(0, 1).Required(),
	)).MinItems(1).Rule(stopsStrictlyIncreasing)
}

// stopLayersList declares further stop sets that are blended with stops.
func stopLayersList() *Builder {
	return List("layers", Table("", stopsList().Required())).
		Default(raw.List()).
		Description("additional stop sets blended with stops by emission and absorption")
}

func lightingTable(required bool) *Builder {
	coefficient := func(name string, def float64) *Builder {
		b := Number(name).Range(0, 1)
		if required {
			return b.Required()
		}
		return b.Default(raw.Number(def))
	}

	t := Table("lighting",
		coefficient("ambient", 0.3),
		coefficient("diffuse", 0.6),
		coefficient("specular", 0.2),
		Number("specular_power").ExclusiveMinimum(0).Maximum(128).Default(raw.Number(10)),
	)
	if required {
		t.Required()
	}
	return t
}

func sourceFields(defaultPattern string) []*Builder {
	return []*Builder{
		String("label").Required().Pattern(labelPattern),
		String("directory").Required().NonEmpty(),
		String("pattern").Pattern(patternCharset).Default(raw.String(defaultPattern)),
		List("file_paths", String("").NonEmpty()),
		Bool("visible").Default(raw.Bool(true)),
		Bool("clipping_enabled").Default(raw.Bool(false)),
	}
}

func meshFields() []*Builder {
	return append(sourceFields("${frame}.obj"),
		Integer("loop_subdivision_iterations").Range(0, 5).Default(raw.Number(0)),
		String("surface_type").Enum("solid", "squeez").Default(raw.String("solid")),
		Number("ctf_min").Minimum(0).Default(raw.Number(0.7)),
		Number("ctf_max").Minimum(0).Default(raw.Number(1.3)),
		Table("property",
			String("representation").Enum("points", "wireframe", "surface").Default(raw.String("surface")),
			Color("color").Default(rgb(1, 1, 1)),
			Bool("edge_visibility").Default(raw.Bool(false)),
			Bool("vertex_visibility").Default(raw.Bool(false)),
			Bool("shading").Default(raw.Bool(true)),
			String("interpolation").Enum("flat", "gouraud", "phong", "pbr").Default(raw.String("gouraud")),
			Number("opacity").Range(0, 1).Default(raw.Number(1)),
		),
	)
}

func segmentationFields() []*Builder {
	return append(sourceFields("${frame}.nii.gz"),
		List("include_labels", Integer("").Minimum(0)),
		Map("label_colors", Color("")).KeyPattern(`^[0-9]+$`),
	)
}

func buildPresetSchema() Field {
	return Table("",
		String("name").Required().NonEmpty(),
		String("description").Required(),
		lightingTable(true),
		stopsList().Required(),
		stopLayersList(),
	).Build()
}

// stopsStrictlyIncreasing requires stop intensities to increase strictly.
func stopsStrictlyIncreasing(path string, v raw.Value) *ValidationError {
	items := v.Items()
	for i := 1; i < len(items); i++ {
		prev := numberAt(items[i-1], "intensity")
		cur := numberAt(items[i], "intensity")
		if cur <= prev {
			val, _ := items[i].Field("intensity")
			return NewConstraintError(
				indexPath(path, i)+".intensity", val,
				fmt.Sprintf("greater than %s.intensity (%v)", indexPath(path, i-1), prev),
			)
		}
	}
	return nil
}

// stopsInScalarRange requires every stop, in stops and in each of the
// layers, to lie inside the scalar range.
func stopsInScalarRange(path string, v raw.Value) *ValidationError {
	lo := numberAt(v, "scalar_range.min")
	hi := numberAt(v, "scalar_range.max")
	if math.IsNaN(lo) || math.IsNaN(hi) {
		return nil
	}
	rangePath := joinPath(path, "scalar_range")

	stops, _ := v.Field("stops")
	if err := stopsWithin(joinPath(path, "stops"), stops, lo, hi, rangePath); err != nil {
		return err
	}

	layers, _ := v.Field("layers")
	for i, layer := range layers.Items() {
		stops, _ := layer.Field("stops")
		if err := stopsWithin(indexPath(joinPath(path, "layers"), i)+".stops", stops, lo, hi, rangePath); err != nil {
			return err
		}
	}
	return nil
}

func stopsWithin(path string, stops raw.Value, lo, hi float64, rangePath string) *ValidationError {
	for i, s := range stops.Items() {
		x := numberAt(s, "intensity")
		if x < lo || x > hi {
			val, _ := s.Field("intensity")
			return NewConstraintError(
				indexPath(path, i)+".intensity", val,
				fmt.Sprintf("within %s [%v, %v]", rangePath, lo, hi),
			)
		}
	}
	return nil
}

// orderedPair requires table[lo] < table[hi].
func orderedPair(lo, hi string) Rule {
	return func(path string, v raw.Value) *ValidationError {
		a := numberAt(v, lo)
		b := numberAt(v, hi)
		if math.IsNaN(a) || math.IsNaN(b) || a < b {
			return nil
		}
		val, _ := v.Field(hi)
		return NewConstraintError(joinPath(path, hi), val,
			fmt.Sprintf("greater than %s (%v)", joinPath(path, lo), a))
	}
}

// uniqueLabels requires the label of every source in a list to be unique.
func uniqueLabels(path string, v raw.Value) *ValidationError {
	seen := make(map[string]int)
	for i, item := range v.Items() {
		val, _ := item.Field("label")
		label, _ := val.AsString()
		if j, dup := seen[label]; dup {
			return NewConstraintError(indexPath(path, i)+".label", val,
				fmt.Sprintf("a label not already used by %s", indexPath(path, j)))
		}
		seen[label] = i
	}
	return nil
}

// framePatternRule requires a source file pattern to reference the frame.
func framePatternRule(path string, v raw.Value) *ValidationError {
	val, ok := v.Field("pattern")
	if !ok {
		return nil
	}
	s, _ := val.AsString()
	if !strings.Contains(s, framePlaceholder) {
		return NewConstraintError(joinPath(path, "pattern"), val,
			fmt.Sprintf("a pattern containing %s", framePlaceholder))
	}
	return nil
}
