package config

import (
	"errors"
)

// Errors returned by configuration resolution.
var (
	// ErrPresetLayer indicates the caller supplied a preset layer. Preset
	// layers are derived from transfer_function.preset by the Resolver.
	ErrPresetLayer = errors.New("preset layers are derived, not supplied")
)
