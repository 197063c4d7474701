package transfer

import (
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sudomakeinstall/cardio/internal/config/schema"
)

// Shade applies local Phong illumination to c:
//
//	c * (ambient + diffuse*max(0, N·L) + specular*max(0, R·V)^power)
//
// normal is the intensity gradient at the sample, light points from the
// sample toward the light and view from the sample toward the eye. None
// needs to be normalized. The result is clamped to [0, 1].
//
// c is returned unchanged when shading is off or the gradient vanishes.
func (f *Function) Shade(c schema.RGB, normal, light, view r3.Vec) schema.RGB {
	if !f.shade {
		return c
	}
	if r3.Norm(normal) == 0 || r3.Norm(light) == 0 || r3.Norm(view) == 0 {
		return c
	}
	return c.Scale(f.intensity(r3.Unit(normal), r3.Unit(light), r3.Unit(view))).Clamp()
}

// ShadedSample evaluates the function at x and lights the color.
func (f *Function) ShadedSample(x float64, normal, light, view r3.Vec) Sample {
	s := f.Sample(x)
	s.Color = f.Shade(s.Color, normal, light, view)
	return s
}

func (f *Function) intensity(n, l, v r3.Vec) float64 {
	k := f.lighting
	ndotl := r3.Dot(n, l)
	out := k.Ambient + k.Diffuse*math.Max(0, ndotl)
	if ndotl <= 0 {
		return out
	}

	// Reflection of the light direction about the normal.
	r := r3.Sub(r3.Scale(2*ndotl, n), l)
	if rdotv := r3.Dot(r, v); rdotv > 0 {
		out += k.Specular * math.Pow(rdotv, k.SpecularPower)
	}
	return out
}
