// Package transfer compiles a resolved transfer-function section into a
// function from scalar intensity to color and opacity.
//
// Color channels and opacity are piecewise linear between stops and
// constant beyond the first and last stop. Opacities are defined per unit
// distance; OpacityForStep corrects them for the sampling step, so front to
// back compositing with an Accumulator converges to the same result at any
// sampling rate.
//
// A compiled Function is immutable and safe for concurrent use.
package transfer

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"

	"github.com/sudomakeinstall/cardio/internal/config/schema"
)

// Sample is the transfer function evaluated at one intensity.
type Sample struct {
	Intensity float64
	Color     schema.RGB
	Opacity   float64
}

// Function is a compiled transfer function.
type Function struct {
	ramp
	layers int

	domain       schema.ScalarRange
	lighting     schema.Lighting
	shade        bool
	blend        schema.BlendMode
	unitDistance float64
	sampleCount  int
}

// Compile builds the Function for tf.
//
// The stops must be non-empty and strictly increasing in intensity. The
// schema guarantees both for any validated configuration, so a violation
// here is an internal fault and is reported as a *Fault.
//
// When tf has layers, the stops and every layer are blended into one stop
// set of tf.SampleCount samples over the scalar range; see Blend.
func Compile(tf schema.TransferFunction) (*Function, error) {
	if err := checkStops(tf.Stops); err != nil {
		return nil, err
	}

	stops := tf.Stops
	if len(tf.Layers) > 0 {
		n := tf.SampleCount
		if n < 2 {
			n = DefaultBlendSamples
		}
		sets := append([][]schema.Stop{tf.Stops}, tf.Layers...)
		blended, err := Blend(sets, tf.ScalarRange, n)
		if err != nil {
			return nil, err
		}
		stops = blended
	}

	f := &Function{
		ramp:         newRamp(stops),
		layers:       len(tf.Layers),
		domain:       tf.ScalarRange,
		lighting:     tf.Lighting,
		shade:        tf.Shade,
		blend:        tf.BlendMode,
		unitDistance: tf.UnitDistance,
		sampleCount:  tf.SampleCount,
	}
	if f.unitDistance <= 0 {
		f.unitDistance = 1
	}
	return f, nil
}

// MustCompile is like Compile but panics on a fault.
func MustCompile(tf schema.TransferFunction) *Function {
	f, err := Compile(tf)
	if err != nil {
		panic(err)
	}
	return f
}

// ramp interpolates color and opacity linearly between stops.
type ramp struct {
	stops []schema.Stop

	// Interpolants for stops with two or more entries; nil for a single stop.
	red, green, blue, alpha *interp.PiecewiseLinear
}

// newRamp fits stops, which must already have passed checkStops.
func newRamp(stops []schema.Stop) ramp {
	r := ramp{stops: append([]schema.Stop(nil), stops...)}
	if len(stops) < 2 {
		return r
	}

	n := len(stops)
	xs := make([]float64, n)
	red, green, blue, alpha := make([]float64, n), make([]float64, n), make([]float64, n), make([]float64, n)
	for i, s := range stops {
		xs[i] = s.Intensity
		red[i], green[i], blue[i] = s.Color.R, s.Color.G, s.Color.B
		alpha[i] = s.Opacity
	}
	r.red = fit(xs, red)
	r.green = fit(xs, green)
	r.blue = fit(xs, blue)
	r.alpha = fit(xs, alpha)
	return r
}

func fit(xs, ys []float64) *interp.PiecewiseLinear {
	var pl interp.PiecewiseLinear
	if err := pl.Fit(xs, ys); err != nil {
		// checkStops admits only inputs Fit accepts.
		panic(&Fault{Reason: err.Error()})
	}
	return &pl
}

func checkStops(stops []schema.Stop) error {
	if len(stops) == 0 {
		return &Fault{Reason: "no stops", Index: -1}
	}
	for i := 1; i < len(stops); i++ {
		prev, cur := stops[i-1].Intensity, stops[i].Intensity
		if !(cur > prev) {
			return &Fault{
				Reason:    "stop intensities not strictly increasing",
				Index:     i,
				Intensity: cur,
				Previous:  prev,
			}
		}
	}
	return nil
}

// Color returns the unshaded color at intensity x.
func (r *ramp) Color(x float64) schema.RGB {
	if r.red == nil {
		return r.stops[0].Color
	}
	return schema.RGB{R: r.red.Predict(x), G: r.green.Predict(x), B: r.blue.Predict(x)}
}

// Opacity returns the opacity per unit distance at intensity x.
func (r *ramp) Opacity(x float64) float64 {
	if r.alpha == nil {
		return r.stops[0].Opacity
	}
	return r.alpha.Predict(x)
}

// OpacityForStep returns the opacity of a sample at intensity x covering a
// ray segment of length step: 1 - (1 - a)^(step / unit distance).
func (f *Function) OpacityForStep(x, step float64) float64 {
	return correctOpacity(f.Opacity(x), step/f.unitDistance)
}

// Sample evaluates color and opacity at x.
func (f *Function) Sample(x float64) Sample {
	return Sample{Intensity: x, Color: f.Color(x), Opacity: f.Opacity(x)}
}

// Table samples the function at n evenly spaced intensities spanning the
// scalar range, both ends included. n less than 2 yields nil.
func (f *Function) Table(n int) []Sample {
	if n < 2 {
		return nil
	}
	xs := floats.Span(make([]float64, n), f.domain.Min, f.domain.Max)
	out := make([]Sample, n)
	for i, x := range xs {
		out[i] = f.Sample(x)
	}
	return out
}

// Stops returns a copy of the stops the function interpolates. For a
// function compiled with layers these are the blended samples.
func (f *Function) Stops() []schema.Stop {
	return append([]schema.Stop(nil), f.stops...)
}

// Layers returns the number of layers blended into the function.
func (f *Function) Layers() int { return f.layers }

// Domain returns the scalar range of the volume data.
func (f *Function) Domain() schema.ScalarRange { return f.domain }

// Lighting returns the illumination coefficients.
func (f *Function) Lighting() schema.Lighting { return f.lighting }

// Shaded reports whether samples are lit.
func (f *Function) Shaded() bool { return f.shade }

// BlendMode returns how samples along a ray are combined.
func (f *Function) BlendMode() schema.BlendMode { return f.blend }

// UnitDistance returns the ray length over which opacities are defined.
func (f *Function) UnitDistance() float64 { return f.unitDistance }

// SampleCount returns the default lookup table size.
func (f *Function) SampleCount() int { return f.sampleCount }
