// Package layer provides configuration layers for cardio.
//
// Each configuration source (built-in defaults, the selected preset, the
// declarative file, command-line arguments, interactive edits) becomes one
// Layer. A Stack merges its layers lowest priority first, so values from a
// higher priority layer override those below it.
package layer

import (
	"github.com/sudomakeinstall/cardio/internal/config/raw"
)

// Layer represents a single configuration layer.
type Layer struct {
	// Name identifies the layer (e.g., "defaults", "file", "arguments").
	Name string

	// Priority determines merge order (higher overrides lower).
	Priority int

	// Source indicates where this layer came from.
	Source Source

	// Path is the file path (if loaded from file).
	Path string

	// Data holds the layer's configuration fragment.
	Data raw.Value
}

// New creates a layer for source with its standard name and priority.
func New(source Source, data raw.Value) Layer {
	return Layer{
		Name:     StandardLayerName(source),
		Source:   source,
		Priority: DefaultPriority(source),
		Data:     data,
	}
}

// Builtin creates the built-in defaults layer.
func Builtin(data raw.Value) Layer {
	return New(SourceBuiltin, data)
}

// Preset creates the layer holding a resolved preset fragment.
func Preset(name string, data raw.Value) Layer {
	l := New(SourcePreset, data)
	l.Name = "preset:" + name
	return l
}

// File creates the layer for a declarative configuration file.
func File(path string, data raw.Value) Layer {
	l := New(SourceFile, data)
	l.Path = path
	return l
}

// Args creates the command-line arguments layer.
func Args(data raw.Value) Layer {
	return New(SourceArgs, data)
}

// Session creates the layer holding interactive edits.
func Session(data raw.Value) Layer {
	return New(SourceSession, data)
}

// IsEmpty reports whether the layer contributes no values.
func (l Layer) IsEmpty() bool {
	return l.Data.Len() == 0
}

// Source indicates where a configuration layer came from.
type Source uint8

const (
	// SourceBuiltin represents built-in default configuration.
	SourceBuiltin Source = iota
	// SourcePreset represents a named transfer-function preset.
	SourcePreset
	// SourceFile represents the declarative configuration file.
	SourceFile
	// SourceArgs represents command-line arguments.
	SourceArgs
	// SourceSession represents in-memory interactive edits.
	SourceSession
)

// String returns a human-readable name for the source.
func (s Source) String() string {
	switch s {
	case SourceBuiltin:
		return "builtin"
	case SourcePreset:
		return "preset"
	case SourceFile:
		return "file"
	case SourceArgs:
		return "arguments"
	case SourceSession:
		return "session"
	default:
		return "unknown"
	}
}
