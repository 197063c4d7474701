package schema

import (
	"github.com/sudomakeinstall/cardio/internal/config/raw"
)

// RGB is a color with channels in [0, 1].
type RGB struct {
	R, G, B float64
}

// Scale returns c with every channel multiplied by f.
func (c RGB) Scale(f float64) RGB {
	return RGB{R: c.R * f, G: c.G * f, B: c.B * f}
}

// Add returns the channel-wise sum of c and o.
func (c RGB) Add(o RGB) RGB {
	return RGB{R: c.R + o.R, G: c.G + o.G, B: c.B + o.B}
}

// Clamp limits every channel to [0, 1].
func (c RGB) Clamp() RGB {
	return RGB{R: clamp01(c.R), G: clamp01(c.G), B: clamp01(c.B)}
}

func clamp01(x float64) float64 {
	switch {
	case x < 0:
		return 0
	case x > 1:
		return 1
	default:
		return x
	}
}

// Stop is a control point of a transfer function.
type Stop struct {
	Intensity float64
	Color     RGB
	Opacity   float64
}

// Lighting holds the local illumination coefficients of the volume.
type Lighting struct {
	Ambient       float64
	Diffuse       float64
	Specular      float64
	SpecularPower float64
}

// BlendMode selects how the renderer combines samples along a ray.
type BlendMode string

// Blend modes.
const (
	BlendComposite BlendMode = "composite"
	BlendMaximum   BlendMode = "maximum"
	BlendMinimum   BlendMode = "minimum"
	BlendAverage   BlendMode = "average"
	BlendAdditive  BlendMode = "additive"
)

// BlendModes lists the accepted blend modes.
func BlendModes() []string {
	return []string{
		string(BlendComposite),
		string(BlendMaximum),
		string(BlendMinimum),
		string(BlendAverage),
		string(BlendAdditive),
	}
}

// ScalarRange is the intensity domain of the volume data.
type ScalarRange struct {
	Min, Max float64
}

// TransferFunction is the resolved transfer-function section.
type TransferFunction struct {
	// Preset names the preset the section was based on, if any.
	Preset string

	ScalarRange ScalarRange
	Stops       []Stop

	// Layers holds further stop sets. When present they are blended
	// with Stops into a single function.
	Layers [][]Stop

	Lighting     Lighting
	Shade        bool
	BlendMode    BlendMode
	UnitDistance float64
	SampleCount  int
}

// Background holds the viewer background colors for each theme.
type Background struct {
	Light RGB
	Dark  RGB
}

// Viewer holds window and interaction settings.
type Viewer struct {
	Title                        string
	CurrentFrame                 int
	RotationFactor               float64
	WindowLevel                  WindowLevel
	Background                   Background
	ScreenshotDirectory          string
	ScreenshotSubdirectoryFormat string
}

// Source describes a sequence of data files, one per frame.
type Source struct {
	Label     string
	Directory string
	// Pattern is the file name template; ${frame} is replaced by the frame index.
	Pattern         string
	FilePaths       []string
	Visible         bool
	ClippingEnabled bool
}

// Volume is a grayscale image sequence rendered with the transfer function.
type Volume struct {
	Source
}

// MeshProperty holds surface appearance settings.
type MeshProperty struct {
	Representation   string
	Color            RGB
	EdgeVisibility   bool
	VertexVisibility bool
	Shading          bool
	Interpolation    string
	Opacity          float64
}

// Mesh is a surface mesh sequence.
type Mesh struct {
	Source
	LoopSubdivisionIterations int
	SurfaceType               string
	CTFMin                    float64
	CTFMax                    float64
	Property                  MeshProperty
}

// Segmentation is a label map sequence rendered as surfaces.
type Segmentation struct {
	Source
	IncludeLabels []int
	LabelColors   map[int]RGB
}

// Config is the fully validated viewer configuration.
type Config struct {
	Viewer           Viewer
	TransferFunction TransferFunction
	Volumes          []Volume
	Meshes           []Mesh
	Segmentations    []Segmentation

	tree raw.Value
}

// Tree returns the normalized configuration tree the Config was decoded
// from, with every default filled in.
func (c *Config) Tree() raw.Value {
	return c.tree
}

// Preset is a named, bundled transfer function and lighting.
type Preset struct {
	Name        string
	Description string
	Lighting    Lighting
	Stops       []Stop
	Layers      [][]Stop
}
