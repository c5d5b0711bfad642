package main

import (
	"fmt"
	"os"

	"github.com/nihei9/lr1gen/tester"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var testFlags = struct {
	source sourceFlags
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "test <grammar file path> <test file path>|<test directory path>",
		Short:   "Test a grammar",
		Example: `  lr1gen test expr.grammar test`,
		Args:    cobra.ExactArgs(2),
		RunE:    runTest,
	}
	testFlags.source.register(cmd.Flags())
	rootCmd.AddCommand(cmd)
}

func runTest(cmd *cobra.Command, args []string) error {
	src, err := readSource(cmd, args[:1], &testFlags.source)
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

	cases := tester.LoadCases(args[1])
	rs := (&tester.Tester{
		Grammar: res.Compiled,
	}).Run(cases)
	testFailed := false
	for _, r := range rs {
		fmt.Fprintln(os.Stdout, r)
		if !r.Passed() {
			testFailed = true
		}
	}
	if testFailed {
		return errors.New("test failed")
	}
	return nil
}
