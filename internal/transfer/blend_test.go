package transfer

import (
	"errors"
	"strings"
	"testing"

	"github.com/sudomakeinstall/cardio/internal/config/schema"
)

var wide = schema.ScalarRange{Min: -1000, Max: 1000}

// peak is a tent of one color whose opacity is zero at both ends of wide
// and top at 0.
func peak(c schema.RGB, top float64) []schema.Stop {
	return []schema.Stop{
		{Intensity: -1000, Color: c, Opacity: 0},
		{Intensity: 0, Color: c, Opacity: top},
		{Intensity: 1000, Color: c, Opacity: 0},
	}
}

func flat(c schema.RGB, opacity float64) []schema.Stop {
	return []schema.Stop{
		{Intensity: -1000, Color: c, Opacity: opacity},
		{Intensity: 1000, Color: c, Opacity: opacity},
	}
}

func TestBlendSingleSetUnchanged(t *testing.T) {
	stops := []schema.Stop{
		{Intensity: -1000, Color: red, Opacity: 0},
		{Intensity: 0, Color: schema.RGB{G: 1}, Opacity: 0.8},
		{Intensity: 1000, Color: blue, Opacity: 0},
	}

	got, err := Blend([][]schema.Stop{stops}, wide, 512)
	if err != nil {
		t.Fatalf("Blend() error = %v", err)
	}
	if len(got) != len(stops) || &got[0] != &stops[0] {
		t.Errorf("Blend() = %v, want the input set itself", got)
	}
}

func TestBlendTwoSets(t *testing.T) {
	// 201 samples over [-1000, 1000] put sample 100 exactly at 0.
	got, err := Blend([][]schema.Stop{peak(red, 0.5), peak(blue, 0.3)}, wide, 201)
	if err != nil {
		t.Fatalf("Blend() error = %v", err)
	}

	s := got[100]
	if s.Intensity != 0 {
		t.Fatalf("sample 100 at %v, want 0", s.Intensity)
	}
	if !near(s.Opacity, 0.8, tolerance) {
		t.Errorf("Opacity = %v, want 0.8", s.Opacity)
	}
	if want := (schema.RGB{R: 0.625, B: 0.375}); !nearRGB(s.Color, want, tolerance) {
		t.Errorf("Color = %v, want %v", s.Color, want)
	}
	for _, s := range got {
		c := s.Color
		if c.R < 0 || c.R > 1 || c.G < 0 || c.G > 1 || c.B < 0 || c.B > 1 {
			t.Fatalf("Color(%v) = %v, outside [0, 1]", s.Intensity, c)
		}
	}
}

func TestBlendCapsOpacity(t *testing.T) {
	got, err := Blend([][]schema.Stop{flat(red, 0.7), flat(blue, 0.7)}, wide, 16)
	if err != nil {
		t.Fatalf("Blend() error = %v", err)
	}
	for _, s := range got {
		if s.Opacity != 1 {
			t.Fatalf("Opacity(%v) = %v, want 1", s.Intensity, s.Opacity)
		}
		if want := (schema.RGB{R: 0.7, B: 0.7}); !nearRGB(s.Color, want, tolerance) {
			t.Fatalf("Color(%v) = %v, want %v", s.Intensity, s.Color, want)
		}
	}
}

func TestBlendTransparentIsBlack(t *testing.T) {
	got, err := Blend([][]schema.Stop{flat(white, 0), flat(red, 0.0005)}, wide, 8)
	if err != nil {
		t.Fatalf("Blend() error = %v", err)
	}
	for _, s := range got {
		if s.Color != (schema.RGB{}) {
			t.Errorf("Color(%v) = %v, want black", s.Intensity, s.Color)
		}
	}
}

func TestBlendSampleCount(t *testing.T) {
	for _, n := range []int{64, 256, 1024} {
		got, err := Blend([][]schema.Stop{peak(red, 0.6), peak(blue, 0.2)}, schema.ScalarRange{Min: -100, Max: 100}, n)
		if err != nil {
			t.Fatalf("Blend(n=%d) error = %v", n, err)
		}
		if len(got) != n {
			t.Errorf("len(Blend(n=%d)) = %d", n, len(got))
		}
		if got[0].Intensity != -100 || got[n-1].Intensity != 100 {
			t.Errorf("n=%d spans [%v, %v], want [-100, 100]", n, got[0].Intensity, got[n-1].Intensity)
		}
	}
}

func TestBlendFaults(t *testing.T) {
	unsorted := []schema.Stop{{Intensity: 10}, {Intensity: 5}}

	tests := []struct {
		name    string
		sets    [][]schema.Stop
		domain  schema.ScalarRange
		n       int
		wantSet int
		wantMsg string
	}{
		{"no sets", nil, wide, 8, 0, "no stop sets"},
		{"one sample", [][]schema.Stop{flat(red, 1), flat(blue, 1)}, wide, 1, 0, "two blend samples"},
		{"empty range", [][]schema.Stop{flat(red, 1), flat(blue, 1)}, schema.ScalarRange{Min: 5, Max: 5}, 8, 0, "empty scalar range"},
		{"unsorted layer", [][]schema.Stop{flat(red, 1), unsorted}, wide, 8, 1, "in layer 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Blend(tt.sets, tt.domain, tt.n)
			var fault *Fault
			if !errors.As(err, &fault) {
				t.Fatalf("Blend() error = %v, want *Fault", err)
			}
			if fault.Set != tt.wantSet {
				t.Errorf("Set = %d, want %d", fault.Set, tt.wantSet)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("Error() = %q, want it to contain %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestCompileBlendsLayers(t *testing.T) {
	tf := section(peak(red, 0.5)...)
	tf.ScalarRange = wide
	tf.SampleCount = 201
	tf.Layers = [][]schema.Stop{peak(blue, 0.3)}

	f, err := Compile(tf)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if f.Layers() != 1 {
		t.Errorf("Layers() = %d, want 1", f.Layers())
	}
	if n := len(f.Stops()); n != 201 {
		t.Errorf("len(Stops()) = %d, want 201 blended samples", n)
	}
	if got := f.Opacity(0); !near(got, 0.8, tolerance) {
		t.Errorf("Opacity(0) = %v, want 0.8", got)
	}
	if got := f.Color(0); !nearRGB(got, schema.RGB{R: 0.625, B: 0.375}, tolerance) {
		t.Errorf("Color(0) = %v, want purple", got)
	}

	plain := MustCompile(section(peak(red, 0.5)...))
	if plain.Layers() != 0 || len(plain.Stops()) != 3 {
		t.Errorf("without layers: Layers() = %d, len(Stops()) = %d, want 0, 3", plain.Layers(), len(plain.Stops()))
	}
}
