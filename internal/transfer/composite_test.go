package transfer

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/sudomakeinstall/cardio/internal/config/schema"
)

func TestAccumulator(t *testing.T) {
	var acc Accumulator
	if c, a := acc.Composite(); c != (schema.RGB{}) || a != 0 {
		t.Errorf("empty Composite() = %+v, %v, want black, 0", c, a)
	}
	if acc.Transmittance() != 1 {
		t.Errorf("empty Transmittance() = %v, want 1", acc.Transmittance())
	}

	acc.Add(red, 0.5)
	acc.Add(blue, 0.5)

	c, a := acc.Composite()
	if !nearRGB(c, schema.RGB{R: 0.5, B: 0.25}, tolerance) {
		t.Errorf("Composite() color = %+v, want {0.5 0 0.25}", c)
	}
	if !near(a, 0.75, tolerance) {
		t.Errorf("Composite() opacity = %v, want 0.75", a)
	}
	if acc.Saturated(0.1) {
		t.Error("Saturated(0.1) = true with transmittance 0.25")
	}

	acc.Add(white, 1)
	if !acc.Saturated(1e-9) {
		t.Error("Saturated() = false after an opaque sample")
	}
	before, _ := acc.Composite()
	acc.Add(red, 1)
	if after, _ := acc.Composite(); after != before {
		t.Errorf("sample behind an opaque one changed the color: %+v -> %+v", before, after)
	}

	acc.Reset()
	if acc.Transmittance() != 1 {
		t.Error("Reset() did not empty the accumulator")
	}
}

func TestIntegrateIsIndependentOfStepForConstantField(t *testing.T) {
	color := schema.RGB{R: 0.8, G: 0.4, B: 0.2}
	f := MustCompile(section(schema.Stop{Intensity: 0, Color: color, Opacity: 0.3}))

	const length = 10.0
	wantAlpha := 1 - math.Pow(0.7, length)
	wantColor := color.Scale(wantAlpha)

	for _, step := range []float64{2, 1, 0.5, 0.1, 0.01} {
		n := int(math.Round(length / step))
		ray := make([]float64, n)

		c, a := f.Integrate(ray, step)
		if !near(a, wantAlpha, 1e-9) {
			t.Errorf("step %v: opacity = %v, want %v", step, a, wantAlpha)
		}
		if !nearRGB(c, wantColor, 1e-9) {
			t.Errorf("step %v: color = %+v, want %+v", step, c, wantColor)
		}
	}
}

func TestIntegrateConvergesForRamp(t *testing.T) {
	f := MustCompile(section(
		schema.Stop{Intensity: 0, Color: red, Opacity: 0},
		schema.Stop{Intensity: 100, Color: blue, Opacity: 0.5},
	))

	// A ray of length 4 crossing intensities 0 to 100 linearly.
	march := func(step float64) (schema.RGB, float64) {
		n := int(math.Round(4 / step))
		ray := make([]float64, n)
		for i := range ray {
			ray[i] = 100 * (float64(i) + 0.5) / float64(n)
		}
		return f.Integrate(ray, step)
	}

	fineColor, fineAlpha := march(0.0005)
	for _, step := range []float64{0.01, 0.005} {
		c, a := march(step)
		if !near(a, fineAlpha, 1e-3) {
			t.Errorf("step %v: opacity = %v, want about %v", step, a, fineAlpha)
		}
		if !nearRGB(c, fineColor, 1e-3) {
			t.Errorf("step %v: color = %+v, want about %+v", step, c, fineColor)
		}
	}
}

func TestIntegrateBlendModes(t *testing.T) {
	ray := []float64{10, 90, 40}

	tests := []struct {
		mode        schema.BlendMode
		wantColor   schema.RGB
		wantOpacity float64
	}{
		{schema.BlendMaximum, schema.RGB{R: 0.1, B: 0.9}, 0.9},
		{schema.BlendMinimum, schema.RGB{R: 0.9, B: 0.1}, 0.1},
		{schema.BlendAverage, schema.RGB{R: 0.5333333333333333, B: 0.4666666666666667}, 0.4666666666666667},
		{schema.BlendAdditive, schema.RGB{R: 0.09 + 0.09 + 0.24, B: 0.01 + 0.81 + 0.16}, 1},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			tf := section(
				schema.Stop{Intensity: 0, Color: red, Opacity: 0},
				schema.Stop{Intensity: 100, Color: blue, Opacity: 1},
			)
			tf.BlendMode = tt.mode
			f := MustCompile(tf)

			c, a := f.Integrate(ray, 1)
			if !nearRGB(c, tt.wantColor, 1e-9) {
				t.Errorf("color = %+v, want %+v", c, tt.wantColor)
			}
			if !near(a, tt.wantOpacity, 1e-9) {
				t.Errorf("opacity = %v, want %v", a, tt.wantOpacity)
			}
		})
	}

	if c, a := MustCompile(section(schema.Stop{Color: white, Opacity: 1})).Integrate(nil, 1); c != (schema.RGB{}) || a != 0 {
		t.Errorf("empty ray = %+v, %v, want black, 0", c, a)
	}
}

func TestShade(t *testing.T) {
	gray := schema.RGB{R: 0.5, G: 0.5, B: 0.5}
	up := r3.Vec{Z: 1}

	tests := []struct {
		name   string
		shade  bool
		color  schema.RGB
		normal r3.Vec
		light  r3.Vec
		view   r3.Vec
		want   schema.RGB
	}{
		{
			name: "head on", shade: true, color: gray,
			normal: up, light: up, view: up,
			// 0.1 + 0.6 + 0.3
			want: gray,
		},
		{
			name: "vectors need not be unit", shade: true, color: gray,
			normal: r3.Vec{Z: 5}, light: r3.Vec{Z: 0.2}, view: r3.Vec{Z: 3},
			want: gray,
		},
		{
			name: "grazing light", shade: true, color: gray,
			normal: up, light: r3.Vec{X: 1}, view: up,
			want: gray.Scale(0.1),
		},
		{
			name: "light behind surface", shade: true, color: gray,
			normal: up, light: r3.Vec{Z: -1}, view: up,
			want: gray.Scale(0.1),
		},
		{
			name: "diffuse only when reflection misses the eye", shade: true, color: gray,
			normal: up, light: up, view: r3.Vec{X: 1},
			want: gray.Scale(0.7),
		},
		{
			name: "clamped", shade: true, color: white,
			normal: up, light: up, view: up,
			want: white,
		},
		{
			name: "shading off", shade: false, color: gray,
			normal: up, light: r3.Vec{X: 1}, view: up,
			want: gray,
		},
		{
			name: "vanishing gradient", shade: true, color: gray,
			normal: r3.Vec{}, light: up, view: up,
			want: gray,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tf := section(schema.Stop{Intensity: 0, Color: tt.color, Opacity: 1})
			tf.Shade = tt.shade
			f := MustCompile(tf)

			if got := f.Shade(tt.color, tt.normal, tt.light, tt.view); !nearRGB(got, tt.want, tolerance) {
				t.Errorf("Shade() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestShadedSample(t *testing.T) {
	f := MustCompile(section(schema.Stop{Intensity: 0, Color: white, Opacity: 0.5}))
	up := r3.Vec{Z: 1}

	s := f.ShadedSample(0, up, r3.Vec{X: 1}, up)
	if !nearRGB(s.Color, white.Scale(0.1), tolerance) {
		t.Errorf("Color = %+v, want ambient only", s.Color)
	}
	if s.Opacity != 0.5 {
		t.Errorf("Opacity = %v, want 0.5", s.Opacity)
	}
}
