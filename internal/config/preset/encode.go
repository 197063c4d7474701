package preset

import (
	"github.com/pelletier/go-toml/v2"

	"github.com/sudomakeinstall/cardio/internal/config/schema"
)

type document struct {
	Name        string      `toml:"name"`
	Description string      `toml:"description"`
	Lighting    lightingDoc `toml:"lighting"`
	Stops       []stopDoc   `toml:"stops"`
	Layers      []layerDoc  `toml:"layers,omitempty"`
}

type layerDoc struct {
	Stops []stopDoc `toml:"stops"`
}

type lightingDoc struct {
	Ambient       float64 `toml:"ambient"`
	Diffuse       float64 `toml:"diffuse"`
	Specular      float64 `toml:"specular"`
	SpecularPower float64 `toml:"specular_power"`
}

type stopDoc struct {
	Intensity float64    `toml:"intensity"`
	Color     [3]float64 `toml:"color"`
	Opacity   float64    `toml:"opacity"`
}

// Encode serializes p in the asset file format. Loading the output yields
// a preset equal to p.
func Encode(p Preset) ([]byte, error) {
	doc := document{
		Name:        p.Name,
		Description: p.Description,
		Lighting: lightingDoc{
			Ambient:       p.Lighting.Ambient,
			Diffuse:       p.Lighting.Diffuse,
			Specular:      p.Lighting.Specular,
			SpecularPower: p.Lighting.SpecularPower,
		},
		Stops: encodeStops(p.Stops),
	}
	for _, stops := range p.Layers {
		doc.Layers = append(doc.Layers, layerDoc{Stops: encodeStops(stops)})
	}
	return toml.Marshal(doc)
}

func encodeStops(stops []schema.Stop) []stopDoc {
	out := make([]stopDoc, len(stops))
	for i, s := range stops {
		out[i] = stopDoc{
			Intensity: s.Intensity,
			Color:     [3]float64{s.Color.R, s.Color.G, s.Color.B},
			Opacity:   s.Opacity,
		}
	}
	return out
}
