package loader

import (
	"errors"
	"io/fs"
	"testing"
	"time"

	"github.com/sudomakeinstall/cardio/internal/config/raw"
)

// MemFS is an in-memory file system for testing.
type MemFS struct {
	files map[string][]byte
}

func NewMemFS() *MemFS {
	return &MemFS{files: make(map[string][]byte)}
}

func (m *MemFS) AddFile(path string, content string) {
	m.files[path] = []byte(content)
}

func (m *MemFS) Open(name string) (fs.File, error) {
	return nil, fs.ErrNotExist
}

func (m *MemFS) ReadFile(path string) ([]byte, error) {
	data, ok := m.files[path]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return data, nil
}

func (m *MemFS) Stat(path string) (fs.FileInfo, error) {
	if _, ok := m.files[path]; ok {
		return &memFileInfo{name: path}, nil
	}
	return nil, fs.ErrNotExist
}

type memFileInfo struct {
	name string
}

func (f *memFileInfo) Name() string       { return f.name }
func (f *memFileInfo) Size() int64        { return 0 }
func (f *memFileInfo) Mode() fs.FileMode  { return 0644 }
func (f *memFileInfo) ModTime() time.Time { return time.Time{} }
func (f *memFileInfo) IsDir() bool        { return false }
func (f *memFileInfo) Sys() any           { return nil }

func lookupNumber(t *testing.T, v raw.Value, path string) float64 {
	t.Helper()
	got, ok := v.Lookup(path)
	if !ok {
		t.Fatalf("%s not found in %v", path, v)
	}
	n, ok := got.AsNumber()
	if !ok {
		t.Fatalf("%s = %v, not a number", path, got)
	}
	return n
}

func lookupString(t *testing.T, v raw.Value, path string) string {
	t.Helper()
	got, ok := v.Lookup(path)
	if !ok {
		t.Fatalf("%s not found in %v", path, v)
	}
	s, ok := got.AsString()
	if !ok {
		t.Fatalf("%s = %v, not a string", path, got)
	}
	return s
}

const sampleTOML = `
[viewer]
title = "Cine CT"
current_frame = 3

[transfer_function]
preset = "soft-tissue"

[transfer_function.lighting]
ambient = 0.25

[[transfer_function.stops]]
intensity = 0
color = [0.0, 0.0, 0.0]
opacity = 0.0

[[transfer_function.stops]]
intensity = 255
color = "#ffffff"
opacity = 1.0
`

func TestTOMLLoader_Load(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/cardio.toml", sampleTOML)

	v, err := NewTOMLLoader(memfs).LoadFrom("/cardio.toml")
	if err != nil {
		t.Fatalf("LoadFrom() error = %v", err)
	}

	if got := lookupString(t, v, "viewer.title"); got != "Cine CT" {
		t.Errorf("viewer.title = %q, want 'Cine CT'", got)
	}
	if got := lookupNumber(t, v, "viewer.current_frame"); got != 3 {
		t.Errorf("viewer.current_frame = %v, want 3", got)
	}
	if got := lookupString(t, v, "transfer_function.preset"); got != "soft-tissue" {
		t.Errorf("preset = %q, want soft-tissue", got)
	}
	if got := lookupNumber(t, v, "transfer_function.lighting.ambient"); got != 0.25 {
		t.Errorf("ambient = %v, want 0.25", got)
	}

	stops, _ := v.Lookup("transfer_function.stops")
	if stops.Kind() != raw.KindList || stops.Len() != 2 {
		t.Fatalf("stops = %v, want a list of 2", stops)
	}
	if got := lookupNumber(t, stops.Items()[1], "intensity"); got != 255 {
		t.Errorf("stops[1].intensity = %v, want 255", got)
	}
}

func TestTOMLLoader_LoadNonExistent(t *testing.T) {
	memfs := NewMemFS()
	loader := NewTOMLLoader(memfs)

	v, err := loader.LoadFrom("/nonexistent.toml")
	if err != nil {
		t.Fatalf("expected no error for non-existent file, got: %v", err)
	}
	if !v.IsNull() {
		t.Error("expected null value for non-existent file")
	}
}

func TestTOMLLoader_LoadInvalid(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/invalid.toml", `
[viewer
title = "x"
`)

	loader := NewTOMLLoader(memfs)
	_, err := loader.LoadFrom("/invalid.toml")
	if err == nil {
		t.Fatal("expected parse error")
	}

	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if parseErr.Path != "/invalid.toml" {
		t.Errorf("Path = %q, want '/invalid.toml'", parseErr.Path)
	}
	if parseErr.Line < 1 {
		t.Errorf("Line = %d, want a line number", parseErr.Line)
	}
}

func TestTOMLLoader_RejectsDates(t *testing.T) {
	_, err := ParseTOML("dates.toml", []byte("when = 2024-01-01\n"))
	if err == nil {
		t.Fatal("expected error for date value")
	}
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
}

func TestParseTOML(t *testing.T) {
	v, err := ParseTOML("inline.toml", []byte(`
[transfer_function.lighting]
specular_power = 12
`))
	if err != nil {
		t.Fatalf("ParseTOML() error = %v", err)
	}
	if got := lookupNumber(t, v, "transfer_function.lighting.specular_power"); got != 12 {
		t.Errorf("specular_power = %v, want 12", got)
	}
}

func TestTOMLLoader_Empty(t *testing.T) {
	v, err := ParseTOML("empty.toml", nil)
	if err != nil {
		t.Fatalf("ParseTOML() error = %v", err)
	}
	if v.Kind() != raw.KindMap || v.Len() != 0 {
		t.Errorf("empty document = %v, want empty table", v)
	}
}

func TestLoad(t *testing.T) {
	memfs := NewMemFS()
	memfs.AddFile("/cardio.toml", sampleTOML)
	memfs.AddFile("/cardio.yaml", "viewer:\n  title: From YAML\n")

	tests := []struct {
		name      string
		path      string
		wantTitle string
		wantErr   error
	}{
		{name: "toml", path: "/cardio.toml", wantTitle: "Cine CT"},
		{name: "yaml", path: "/cardio.yaml", wantTitle: "From YAML"},
		{name: "missing", path: "/missing.toml", wantErr: fs.ErrNotExist},
		{name: "unknown extension", path: "/cardio.ini", wantErr: ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Load(memfs, tt.path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Load() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if got := lookupString(t, v, "viewer.title"); got != tt.wantTitle {
				t.Errorf("viewer.title = %q, want %q", got, tt.wantTitle)
			}
		})
	}
}
