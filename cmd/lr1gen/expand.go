package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/nihei9/lr1gen/spec"
	"github.com/spf13/cobra"
)

var expandFlags = struct {
	source sourceFlags
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "expand [grammar file path]",
		Short:   "Expand EBNF shorthands into plain productions",
		Example: `  lr1gen expand list.ebnf > list.grammar`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runExpand,
	}
	expandFlags.source.register(cmd.Flags())
	rootCmd.AddCommand(cmd)
}

func runExpand(cmd *cobra.Command, args []string) error {
	src, err := readSource(cmd, args, &expandFlags.source)
	if err != nil {
		return err
	}
	root, err := spec.ExpandEBNF(bytes.NewReader(src.data))
	if err != nil {
		return src.locate(err)
	}
	fmt.Fprint(os.Stdout, root.String())
	return nil
}
