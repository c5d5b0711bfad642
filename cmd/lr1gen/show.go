package main

import (
	"os"
	"strings"

	"github.com/nihei9/lr1gen/export"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// exportFormat implements pflag.Value.
type exportFormat string

const (
	formatText = exportFormat("text")
	formatCSV  = exportFormat("csv")
	formatDot  = exportFormat("dot")
)

func (f *exportFormat) String() string {
	return string(*f)
}

func (f *exportFormat) Set(v string) error {
	switch format := exportFormat(strings.ToLower(v)); format {
	case formatText, formatCSV, formatDot:
		*f = format
		return nil
	}
	return errors.Errorf("format must be one of %v, %v, or %v: %q", formatText, formatCSV, formatDot, v)
}

func (f *exportFormat) Type() string {
	return "format"
}

var showFlags = struct {
	source sourceFlags
	format exportFormat
}{
	format: formatText,
}

func init() {
	cmd := &cobra.Command{
		Use:   "show [grammar file path]",
		Short: "Print a parsing table as a grid or its automaton as a graph",
		Example: `  lr1gen show expr.grammar
  lr1gen show expr.grammar --format dot | dot -Tsvg > expr.svg`,
		Args: cobra.MaximumNArgs(1),
		RunE: runShow,
	}
	showFlags.source.register(cmd.Flags())
	cmd.Flags().VarP(&showFlags.format, "format", "f", "output format: text, csv, or dot")
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	src, err := readSource(cmd, args, &showFlags.source)
	if err != nil {
		return err
	}
	root, err := src.parse()
	if err != nil {
		return err
	}
	res, err := src.generate(root, false)
	if err != nil {
		return err
	}
	printConflicts(os.Stderr, res.Table)

	switch showFlags.format {
	case formatCSV:
		return export.WriteCSV(os.Stdout, res.Compiled)
	case formatDot:
		return export.WriteDot(os.Stdout, res.Compiled, func(state int) []string {
			items, _ := res.Table.StateItems(state)
			return items
		})
	}
	return export.WriteText(os.Stdout, res.Compiled)
}
