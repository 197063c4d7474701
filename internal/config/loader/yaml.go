package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/sudomakeinstall/cardio/internal/config/raw"
)

// YAMLLoader loads configuration from YAML files.
// It accepts the same field tree as the TOML format.
type YAMLLoader struct {
	fs FileSystem
}

// NewYAMLLoader creates a YAML loader reading from fsys.
func NewYAMLLoader(fsys FileSystem) *YAMLLoader {
	return &YAMLLoader{fs: fsys}
}

// LoadFrom reads configuration from a specific path.
func (l *YAMLLoader) LoadFrom(path string) (raw.Value, error) {
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return raw.Value{}, nil
		}
		return raw.Value{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	return ParseYAML(path, data)
}

var yamlLinePattern = regexp.MustCompile(`line (\d+)`)

// ParseYAML parses a YAML document into a fragment.
func ParseYAML(source string, data []byte) (raw.Value, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		perr := &ParseError{
			Path:    source,
			Message: err.Error(),
			Err:     err,
		}
		if m := yamlLinePattern.FindStringSubmatch(err.Error()); m != nil {
			perr.Line, _ = strconv.Atoi(m[1])
		}
		return raw.Value{}, perr
	}

	v, err := raw.From(doc)
	if err != nil {
		return raw.Value{}, &ParseError{Path: source, Message: err.Error(), Err: err}
	}
	if v.IsNull() {
		return raw.EmptyMap(), nil
	}
	return v, nil
}
