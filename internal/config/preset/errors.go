package preset

import (
	"fmt"
	"strings"
)

// UnknownPresetError is returned when a preset name has no registry entry.
type UnknownPresetError struct {
	Name      string
	Available []string
}

// Error implements the error interface.
func (e *UnknownPresetError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("unknown preset %q (no presets available)", e.Name)
	}
	return fmt.Sprintf("unknown preset %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

// MalformedPresetAssetError reports a bundled preset file that does not
// parse or validate. It indicates a broken build, not bad user input.
type MalformedPresetAssetError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *MalformedPresetAssetError) Error() string {
	return fmt.Sprintf("malformed preset asset %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *MalformedPresetAssetError) Unwrap() error {
	return e.Err
}
