package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var rootFlags = struct {
	verbose *bool
}{}

// logger is ready once a command starts running.
var logger = zap.NewNop()

var rootCmd = &cobra.Command{
	Use:   "lr1gen",
	Short: "Generate a canonical LR(1) parsing table from a grammar",
	Long: `lr1gen provides the following features:
- Compiles a grammar into a portable canonical LR(1) parsing table.
- Prints the table as a grid or the automaton behind it as a graph.
- Explores the table interactively.`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if *rootFlags.verbose {
			logger, err = zap.NewDevelopment()
		} else {
			logger, err = zap.NewProduction()
		}
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	rootFlags.verbose = rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print debug logs")
}

func Execute() error {
	return rootCmd.Execute()
}
