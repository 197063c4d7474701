package transfer

import (
	"math"

	"github.com/sudomakeinstall/cardio/internal/config/schema"
)

// Accumulator composites samples front to back with the emission-absorption
// model. The zero value is an empty, fully transparent ray.
type Accumulator struct {
	color   schema.RGB
	opacity float64
}

// Add composites a sample behind everything added so far:
//
//	C += T * alpha * c
//	T *= 1 - alpha
//
// where T is the transmittance of the samples in front. alpha is the
// step-corrected opacity of the sample.
func (a *Accumulator) Add(c schema.RGB, alpha float64) {
	alpha = clamp01(alpha)
	w := (1 - a.opacity) * alpha
	a.color = a.color.Add(c.Scale(w))
	a.opacity += w
}

// Composite returns the accumulated color and opacity.
func (a *Accumulator) Composite() (schema.RGB, float64) {
	return a.color, a.opacity
}

// Transmittance returns the fraction of light passing through every sample
// added so far.
func (a *Accumulator) Transmittance() float64 {
	return 1 - a.opacity
}

// Saturated reports whether the transmittance dropped below epsilon, at
// which point later samples no longer contribute visibly.
func (a *Accumulator) Saturated(epsilon float64) bool {
	return a.Transmittance() < epsilon
}

// Reset empties the accumulator.
func (a *Accumulator) Reset() {
	*a = Accumulator{}
}

// Integrate combines the intensities sampled along a ray at a fixed step
// according to the function's blend mode and returns the pixel color and
// opacity. Samples are ordered front to back. Colors are unshaded.
func (f *Function) Integrate(intensities []float64, step float64) (schema.RGB, float64) {
	if len(intensities) == 0 {
		return schema.RGB{}, 0
	}

	switch f.blend {
	case schema.BlendMaximum:
		return f.project(intensities, func(x, best float64) bool { return x > best })
	case schema.BlendMinimum:
		return f.project(intensities, func(x, best float64) bool { return x < best })
	case schema.BlendAverage:
		var sum float64
		for _, x := range intensities {
			sum += x
		}
		mean := sum / float64(len(intensities))
		return f.Color(mean), f.Opacity(mean)
	case schema.BlendAdditive:
		var c schema.RGB
		var alpha float64
		for _, x := range intensities {
			a := f.OpacityForStep(x, step)
			c = c.Add(f.Color(x).Scale(a))
			alpha += a
		}
		return c.Clamp(), math.Min(alpha, 1)
	default:
		var acc Accumulator
		for _, x := range intensities {
			acc.Add(f.Color(x), f.OpacityForStep(x, step))
		}
		return acc.Composite()
	}
}

func (f *Function) project(intensities []float64, better func(x, best float64) bool) (schema.RGB, float64) {
	best := intensities[0]
	for _, x := range intensities[1:] {
		if better(x, best) {
			best = x
		}
	}
	return f.Color(best), f.Opacity(best)
}

func correctOpacity(alpha, ratio float64) float64 {
	switch {
	case alpha <= 0 || ratio <= 0:
		return 0
	case alpha >= 1:
		return 1
	}
	return 1 - math.Pow(1-alpha, ratio)
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
