// Package app runs the cardio configuration pipeline: it owns the
// session that turns edit events and file reloads into published
// configuration snapshots, and maps pipeline errors to exit codes.
package app

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/google/uuid"

	"github.com/sudomakeinstall/cardio/internal/config/loader"
	"github.com/sudomakeinstall/cardio/internal/config/preset"
	"github.com/sudomakeinstall/cardio/internal/config/schema"
)

// Session errors.
var (
	// ErrEmptyEdit indicates an edit without a fragment to apply.
	ErrEmptyEdit = errors.New("edit has no fragment")

	// ErrNotFileLayer indicates Reload was given a layer that is not the
	// declarative file.
	ErrNotFileLayer = errors.New("reload needs a file layer")
)

// Process exit codes.
const (
	ExitOK       = 0 // Success
	ExitFailure  = 1 // Usage or runtime error
	ExitConfig   = 2 // The user's configuration is invalid
	ExitInternal = 3 // A bundled preset asset is broken
)

// ExitCode maps an error from the pipeline to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	// Checked first: a malformed asset wraps parse and validation errors.
	var assetErr *preset.MalformedPresetAssetError
	if errors.As(err, &assetErr) {
		return ExitInternal
	}

	var (
		validationErr *schema.ValidationError
		unknownErr    *preset.UnknownPresetError
		parseErr      *loader.ParseError
		argErr        *loader.ArgError
	)
	switch {
	case errors.As(err, &validationErr),
		errors.As(err, &unknownErr),
		errors.As(err, &parseErr),
		errors.As(err, &argErr),
		errors.Is(err, loader.ErrUnsupportedFormat),
		errors.Is(err, fs.ErrNotExist):
		return ExitConfig
	default:
		return ExitFailure
	}
}

// EditError reports an edit or reload the session rejected.
type EditError struct {
	Op   string    // "apply" or "reload"
	Edit uuid.UUID // Edit that failed, nil for reloads
	Err  error     // Underlying error
}

func (e *EditError) Error() string {
	if e == nil {
		return ""
	}
	if e.Edit != uuid.Nil {
		return fmt.Sprintf("%s edit %s: %v", e.Op, e.Edit, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *EditError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
