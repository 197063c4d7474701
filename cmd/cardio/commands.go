package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sudomakeinstall/cardio/internal/app"
	"github.com/sudomakeinstall/cardio/internal/config/preset"
	"github.com/sudomakeinstall/cardio/internal/config/raw"
)

func newPresetsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "presets [name]",
		Short: "List the bundled transfer-function presets, or print one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			presets, err := preset.Builtin()
			if err != nil {
				return err
			}

			if len(args) == 1 {
				p, err := presets.Lookup(args[0])
				if err != nil {
					return err
				}
				out, err := preset.Encode(p)
				if err != nil {
					return err
				}
				_, err = opts.stdout.Write(out)
				return err
			}

			descriptions := presets.List()
			for _, name := range presets.Names() {
				printf(opts.stdout, "%s: %s\n", name, descriptions[name])
			}
			return nil
		},
	}
}

// Dump output formats.
const (
	formatTOML = "toml"
	formatYAML = "yaml"
)

func newDumpCommand(opts *options) *cobra.Command {
	var (
		format  string
		sources bool
	)

	cmd := &cobra.Command{
		Use:   "dump",
		Short: "Print the resolved configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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
			snap := session.Current()

			if sources {
				tree := snap.Config.Tree()
				for _, path := range tree.Paths() {
					printf(opts.stdout, "%s = %s  # %s\n", path, lookup(tree, path), sourceOf(snap.Stack.Which(path)))
				}
				return nil
			}

			out, err := encodeTree(snap.Config.Tree(), format)
			if err != nil {
				return err
			}
			_, err = opts.stdout.Write(out)
			return err
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTOML, "output format (toml, yaml)")
	cmd.Flags().BoolVar(&sources, "sources", false, "print one field per line with the layer that set it")
	return cmd
}

// encodeTree renders a configuration tree as TOML or YAML.
func encodeTree(tree raw.Value, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case formatTOML:
		return toml.Marshal(tree.Any())
	case formatYAML:
		return yaml.Marshal(tree.Any())
	default:
		return nil, fmt.Errorf("unknown format %q (want %s or %s)", format, formatTOML, formatYAML)
	}
}

func lookup(tree raw.Value, path string) raw.Value {
	v, _ := tree.Lookup(path)
	return v
}

// sourceOf names the layer behind a value; fields no layer sets come
// from the schema defaults.
func sourceOf(layerName string) string {
	if layerName == "" {
		return "defaults"
	}
	return layerName
}

func newLUTCommand(opts *options) *cobra.Command {
	var samples int

	cmd := &cobra.Command{
		Use:   "lut",
		Short: "Print the compiled transfer function as a lookup table",
		Long: "Samples the compiled transfer function at evenly spaced intensities across\n" +
			"the scalar range and prints intensity, red, green, blue and opacity per line.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
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

			fn := session.Current().Transfer
			n := fn.SampleCount()
			if cmd.Flags().Changed("samples") {
				if samples < 2 {
					return fmt.Errorf("--samples must be at least 2, got %d", samples)
				}
				n = samples
			}
			logger.Debug("sampling lookup table", zap.Int("samples", n))

			printf(opts.stdout, "# intensity\tred\tgreen\tblue\topacity\n")
			for _, s := range fn.Table(n) {
				printf(opts.stdout, "%s\t%s\t%s\t%s\t%s\n",
					formatFloat(s.Intensity),
					formatFloat(s.Color.R), formatFloat(s.Color.G), formatFloat(s.Color.B),
					formatFloat(s.Opacity))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&samples, "samples", "n", 0, "number of samples (default: transfer_function.sample_count)")
	return cmd
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', 6, 64)
}
