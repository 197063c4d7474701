package loader

import (
	"errors"
	"testing"

	"github.com/spf13/pflag"

	"github.com/sudomakeinstall/cardio/internal/config/raw"
)

func parseArgs(t *testing.T, args ...string) (raw.Value, error) {
	t.Helper()
	a := NewArgs(DefaultFlags()...)
	fs := pflag.NewFlagSet("cardio", pflag.ContinueOnError)
	a.Bind(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("Parse(%v) error = %v", args, err)
	}
	return a.Fragment(fs)
}

func TestArgsFragment(t *testing.T) {
	v, err := parseArgs(t,
		"--preset", "bone",
		"--lighting.ambient=0.5",
		"--current-frame", "4",
		"--shade=false",
	)
	if err != nil {
		t.Fatalf("Fragment() error = %v", err)
	}

	if got := lookupString(t, v, "transfer_function.preset"); got != "bone" {
		t.Errorf("preset = %q, want bone", got)
	}
	if got := lookupNumber(t, v, "transfer_function.lighting.ambient"); got != 0.5 {
		t.Errorf("ambient = %v, want 0.5", got)
	}
	if got := lookupNumber(t, v, "viewer.current_frame"); got != 4 {
		t.Errorf("current_frame = %v, want 4", got)
	}
	shade, ok := v.Lookup("transfer_function.shade")
	if b, isBool := shade.AsBool(); !ok || !isBool || b {
		t.Errorf("shade = %v, want false", shade)
	}
}

func TestArgsFragmentOnlyChangedFlags(t *testing.T) {
	v, err := parseArgs(t)
	if err != nil {
		t.Fatalf("Fragment() error = %v", err)
	}
	if v.Len() != 0 {
		t.Errorf("fragment = %v, want empty", v)
	}

	v, err = parseArgs(t, "--lighting.diffuse", "0.9")
	if err != nil {
		t.Fatalf("Fragment() error = %v", err)
	}
	if _, ok := v.Lookup("transfer_function.lighting.ambient"); ok {
		t.Error("unset flag must not appear in fragment")
	}
	if want := []string{"transfer_function.lighting.diffuse"}; len(v.Paths()) != 1 || v.Paths()[0] != want[0] {
		t.Errorf("Paths() = %v, want %v", v.Paths(), want)
	}
}

func TestArgsSources(t *testing.T) {
	v, err := parseArgs(t, "--volume", "ct=/data/ct", "--volume", "mr=/data/mr")
	if err != nil {
		t.Fatalf("Fragment() error = %v", err)
	}

	vols, ok := v.Lookup("volumes")
	if !ok || vols.Len() != 2 {
		t.Fatalf("volumes = %v, want 2 entries", vols)
	}
	if got := lookupString(t, vols.Items()[1], "directory"); got != "/data/mr" {
		t.Errorf("volumes[1].directory = %q, want /data/mr", got)
	}

	_, err = parseArgs(t, "--mesh", "nolabel")
	var argErr *ArgError
	if !errors.As(err, &argErr) {
		t.Fatalf("error = %v, want *ArgError", err)
	}
	if argErr.Flag != "mesh" {
		t.Errorf("Flag = %q, want mesh", argErr.Flag)
	}
}

func TestArgsSetOverridesTableFlags(t *testing.T) {
	v, err := parseArgs(t,
		"--lighting.ambient", "0.5",
		"--set", "transfer_function.lighting.ambient=0.7",
		"--set", `transfer_function.stops=[{intensity = 0, color = [1, 0, 0], opacity = 0.2}]`,
	)
	if err != nil {
		t.Fatalf("Fragment() error = %v", err)
	}

	if got := lookupNumber(t, v, "transfer_function.lighting.ambient"); got != 0.7 {
		t.Errorf("ambient = %v, want 0.7", got)
	}
	stops, _ := v.Lookup("transfer_function.stops")
	if stops.Len() != 1 {
		t.Fatalf("stops = %v, want 1 entry", stops)
	}
	if got := lookupNumber(t, stops.Items()[0], "opacity"); got != 0.2 {
		t.Errorf("stops[0].opacity = %v, want 0.2", got)
	}
}

func TestParseSet(t *testing.T) {
	tests := []struct {
		input    string
		wantPath string
		want     raw.Value
		wantErr  bool
	}{
		{"viewer.title=Cardio CT", "viewer.title", raw.String("Cardio CT"), false},
		{`viewer.title="quoted"`, "viewer.title", raw.String("quoted"), false},
		{"transfer_function.lighting.ambient=0.5", "transfer_function.lighting.ambient", raw.Number(0.5), false},
		{"transfer_function.shade=true", "transfer_function.shade", raw.Bool(true), false},
		{"viewer.background.light=[1, 0.5, 0]", "viewer.background.light", raw.List(raw.Number(1), raw.Number(0.5), raw.Number(0)), false},
		{"transfer_function.preset=soft-tissue", "transfer_function.preset", raw.String("soft-tissue"), false},
		{"noequals", "", raw.Value{}, true},
		{"bad path=1", "", raw.Value{}, true},
		{"=1", "", raw.Value{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			path, v, err := ParseSet(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseSet(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseSet(%q) error = %v", tt.input, err)
			}
			if path != tt.wantPath {
				t.Errorf("path = %q, want %q", path, tt.wantPath)
			}
			if !raw.Equal(v, tt.want) {
				t.Errorf("value = %v, want %v", v, tt.want)
			}
		})
	}
}
