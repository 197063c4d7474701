package transfer

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/sudomakeinstall/cardio/internal/config/schema"
)

// DefaultBlendSamples is the number of samples Compile blends layers into
// when the section does not set a sample count.
const DefaultBlendSamples = 512

// blendEpsilon is the absorption below which a blended sample is black.
const blendEpsilon = 0.001

// Blend combines stop sets into one with the emission-absorption model,
// sampled at n evenly spaced intensities spanning domain.
//
// At each intensity every set emits its color weighted by its opacity and
// absorbs its opacity. Emission channels and total absorption are capped
// at 1, and the blended color is the emission divided by the absorption,
// or black where the absorption is negligible. The blended opacity is the
// total absorption.
//
// A single set is returned unchanged.
func Blend(sets [][]schema.Stop, domain schema.ScalarRange, n int) ([]schema.Stop, error) {
	switch {
	case len(sets) == 0:
		return nil, &Fault{Reason: "no stop sets to blend", Index: -1}
	case len(sets) == 1:
		return sets[0], nil
	case n < 2:
		return nil, &Fault{Reason: "fewer than two blend samples", Index: -1}
	case !(domain.Min < domain.Max):
		return nil, &Fault{Reason: "empty scalar range", Index: -1}
	}

	ramps := make([]ramp, len(sets))
	for i, stops := range sets {
		if err := checkStops(stops); err != nil {
			err.(*Fault).Set = i
			return nil, err
		}
		ramps[i] = newRamp(stops)
	}

	xs := floats.Span(make([]float64, n), domain.Min, domain.Max)
	out := make([]schema.Stop, n)
	for i, x := range xs {
		var emission schema.RGB
		var absorption float64
		for j := range ramps {
			alpha := ramps[j].Opacity(x)
			emission = emission.Add(ramps[j].Color(x).Scale(alpha))
			absorption += alpha
		}
		emission = emission.Clamp()
		absorption = math.Min(absorption, 1)

		var color schema.RGB
		if absorption > blendEpsilon {
			color = emission.Scale(1 / absorption).Clamp()
		}
		out[i] = schema.Stop{Intensity: x, Color: color, Opacity: absorption}
	}
	return out, nil
}
