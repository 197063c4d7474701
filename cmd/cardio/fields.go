package main

import (
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sudomakeinstall/cardio/internal/config/registry"
)

func newFieldsCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fields [query]",
		Short: "List the configuration fields with their types, defaults and constraints",
		Long: `List the configuration fields grouped by section.

A query naming a field exactly describes that field; any other query
lists the fields whose path or description contains it.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			reg := registry.Builtin()
			if len(args) == 0 {
				return printSections(opts.stdout, reg)
			}
			if reg.Has(args[0]) {
				printField(opts.stdout, reg, args[0])
				return nil
			}

			tw := tabwriter.NewWriter(opts.stdout, 0, 4, 2, ' ', 0)
			printFieldHeader(tw)
			printFieldRows(tw, reg.Search(args[0]))
			return tw.Flush()
		},
	}
}

// printSections lists every setting, one block per top-level section.
func printSections(w io.Writer, reg *registry.Registry) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	printFieldHeader(tw)
	for _, name := range reg.Sections() {
		printf(tw, "[%s]\n", name)
		printFieldRows(tw, reg.Section(name))
	}
	return tw.Flush()
}

func printFieldHeader(w io.Writer) {
	printf(w, "FIELD\tTYPE\tDEFAULT\tCONSTRAINT\n")
}

func printFieldRows(w io.Writer, settings []*registry.Setting) {
	for _, s := range settings {
		def := "-"
		if s.HasDefault() {
			def = s.Default.String()
		}
		printf(w, "%s\t%s\t%s\t%s\n", s.Path, s.Type, def, orDash(s.Constraint()))
	}
}

// printField describes the setting at path.
func printField(w io.Writer, reg *registry.Registry, path string) {
	s := reg.Get(path)
	def := "-"
	if v := reg.Default(path); !v.IsNull() {
		def = v.String()
	}

	printf(w, "field:       %s\n", s.Path)
	printf(w, "section:     %s\n", s.Section())
	printf(w, "type:        %s\n", s.Type)
	printf(w, "default:     %s\n", def)
	printf(w, "constraint:  %s\n", orDash(s.Constraint()))
	printf(w, "description: %s\n", orDash(s.Description))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
