package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sudomakeinstall/cardio/internal/app"
	"github.com/sudomakeinstall/cardio/internal/config"
	"github.com/sudomakeinstall/cardio/internal/config/layer"
	"github.com/sudomakeinstall/cardio/internal/config/loader"
	"github.com/sudomakeinstall/cardio/internal/config/preset"
)

// errWatchNeedsConfig is returned for --watch without --config.
var errWatchNeedsConfig = errors.New("--watch needs --config")

// options holds the flags shared by every command.
type options struct {
	configPath string
	logLevel   string
	logFormat  string
	watch      bool

	args *loader.Args

	stdin          io.Reader
	stdout, stderr io.Writer
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{
		args:   loader.NewArgs(loader.DefaultFlags()...),
		stdin:  stdin,
		stdout: stdout,
		stderr: stderr,
	}

	cmd := &cobra.Command{
		Use:   "cardio",
		Short: "Resolve and inspect the cardio viewer configuration",
		Long: "cardio merges the built-in defaults, the selected transfer-function preset,\n" +
			"an optional TOML or YAML file and command-line overrides (in that order of\n" +
			"precedence), validates the result and compiles the transfer function.",
		Version: version,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRoot(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate(fmt.Sprintf("cardio {{.Version}}\ncommit: %s\nbuilt: %s\n", commit, date))

	f := cmd.PersistentFlags()
	f.StringVarP(&opts.configPath, "config", "c", "", "path to a TOML or YAML configuration file")
	f.StringVar(&opts.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	f.StringVar(&opts.logFormat, "log-format", app.LogFormatConsole, "log format (console, json)")
	opts.args.Bind(f)

	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false,
		"reload the configuration file when it changes and apply path=value edits read from stdin")

	cmd.AddCommand(
		newPresetsCommand(opts),
		newFieldsCommand(opts),
		newDumpCommand(opts),
		newLUTCommand(opts),
	)
	return cmd
}

// runRoot resolves the configuration and prints a summary. With --watch it
// keeps the session open until interrupted.
func runRoot(cmd *cobra.Command, opts *options) error {
	if opts.watch && opts.configPath == "" {
		return errWatchNeedsConfig
	}

	logger, err := app.NewLoggerTo(opts.stderr, opts.logLevel, opts.logFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	session, err := openSession(cmd, opts, logger)
	if err != nil {
		return err
	}
	defer session.Close()

	printSummary(opts.stdout, session.Current())
	if !opts.watch {
		return nil
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return watch(ctx, session, opts, logger)
}

// openSession builds the layers named on the command line and resolves
// the first snapshot.
func openSession(cmd *cobra.Command, opts *options, logger *zap.Logger) (*app.Session, error) {
	presets, err := preset.Builtin()
	if err != nil {
		return nil, err
	}
	resolver := config.NewResolver(presets, config.WithLogger(logger))

	var layers []layer.Layer
	if opts.configPath != "" {
		data, err := loader.Load(loader.DefaultFS(), opts.configPath)
		if err != nil {
			return nil, err
		}
		layers = append(layers, layer.File(opts.configPath, data))
	}

	fragment, err := opts.args.Fragment(cmd.Flags())
	if err != nil {
		return nil, err
	}
	if args := layer.Args(fragment); !args.IsEmpty() {
		layers = append(layers, args)
	}

	logger.Debug("resolving configuration",
		zap.String("config", opts.configPath),
		zap.Strings("overrides", fragment.Paths()),
	)
	return app.NewSession(resolver, layers, app.WithLogger(logger))
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
