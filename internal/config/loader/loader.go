// Package loader provides the configuration source readers for cardio.
//
// The loader package turns the declarative configuration file (TOML or
// YAML) and the command line into raw configuration fragments. Readers do
// no validation beyond syntax: every fragment is checked later, after
// merging, by the schema package.
package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sudomakeinstall/cardio/internal/config/raw"
)

// ErrUnsupportedFormat is returned for configuration files whose extension
// does not name a known format.
var ErrUnsupportedFormat = errors.New("unsupported configuration format")

// FileLoader reads one declarative file format.
type FileLoader interface {
	// LoadFrom reads configuration from path.
	// Returns a null value and no error if the file doesn't exist.
	LoadFrom(path string) (raw.Value, error)
}

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	fs.FS
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
	// Stat returns file info for path.
	Stat(path string) (fs.FileInfo, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// Open implements fs.FS.
func (OSFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Stat returns file info for path.
func (OSFS) Stat(path string) (fs.FileInfo, error) {
	return os.Stat(path)
}

// DefaultFS returns the default file system (OS).
func DefaultFS() FileSystem {
	return OSFS{}
}

// Format identifies a declarative file format.
type Format string

const (
	// FormatTOML is the primary configuration format.
	FormatTOML Format = "toml"
	// FormatYAML is accepted for .yaml and .yml files.
	FormatYAML Format = "yaml"
)

// FormatFor returns the format implied by the file extension of path.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// ForPath returns the file loader matching the extension of path.
func ForPath(fsys FileSystem, path string) (FileLoader, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}

	switch format {
	case FormatYAML:
		return NewYAMLLoader(fsys), nil
	default:
		return NewTOMLLoader(fsys), nil
	}
}

// Load reads the declarative configuration file at path.
// Unlike the individual loaders, a missing file is an error: the path was
// named explicitly by the user.
func Load(fsys FileSystem, path string) (raw.Value, error) {
	l, err := ForPath(fsys, path)
	if err != nil {
		return raw.Value{}, err
	}

	if _, err := fsys.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return raw.Value{}, fmt.Errorf("config file %s: %w", path, fs.ErrNotExist)
		}
		return raw.Value{}, fmt.Errorf("config file %s: %w", path, err)
	}

	return l.LoadFrom(path)
}
