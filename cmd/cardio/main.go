// Package main is the entry point for the cardio configuration tool.
//
// cardio resolves the viewer configuration from the built-in defaults, the
// selected transfer-function preset, an optional declarative file and the
// command line, compiles the transfer function and reports the result.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/sudomakeinstall/cardio/internal/app"
)

// Version information (set via ldflags during build).
var (
	version = "2025.9.0"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
// Failures are reported as a single "Error:" line on stderr.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCommand(stdin, stdout, stderr)
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return app.ExitCode(err)
	}
	return app.ExitOK
}
