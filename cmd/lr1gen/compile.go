package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nihei9/lr1gen/cache"
	"github.com/nihei9/lr1gen/config"
	"github.com/nihei9/lr1gen/generator"
	gspec "github.com/nihei9/lr1gen/spec/grammar"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var compileFlags = struct {
	source sourceFlags
	output *string
	report *bool
	cache  *string
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "compile [grammar file path]",
		Short: "Compile a grammar into a parsing table",
		Example: `  lr1gen compile expr.grammar -o expr.json
  lr1gen compile -p lr1gen.toml --report`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompile,
	}
	compileFlags.source.register(cmd.Flags())
	compileFlags.output = cmd.Flags().StringP("output", "o", "", "output file path (default stdout)")
	compileFlags.report = cmd.Flags().Bool("report", false, "also write a report next to the output")
	compileFlags.cache = cmd.Flags().String("cache", "", "cache database path (default the project's one, none without a project)")
	rootCmd.AddCommand(cmd)
}

func runCompile(cmd *cobra.Command, args []string) error {
	src, err := readSource(cmd, args, &compileFlags.source)
	if err != nil {
		return err
	}

	root, err := src.parse()
	if err != nil {
		return err
	}

	cachePath := src.project.CachePath()
	if cmd.Flags().Changed("cache") {
		cachePath = *compileFlags.cache
	}
	var st *cache.Store
	var key string
	if cachePath != "" {
		st, err = cache.Open(cachePath)
		if err != nil {
			return err
		}
		defer st.Close()

		key, err = cache.Key(src.declaration(root), generator.Productions(root))
		if err != nil {
			return err
		}
	}

	ctx := context.Background()

	// Only a table compiled in the overwrite mode without a state limit can be reused. The other
	// settings have to see the conflicts or the limit again.
	if st != nil && !*compileFlags.report && src.project.Table.Conflicts == config.ConflictOverwrite && src.project.Table.MaxStates == 0 {
		cg, err := st.Get(ctx, key)
		if err == nil {
			logger.Info("cache hit", zap.String("key", key), zap.String("path", cachePath))
			if src.name != "" {
				cg.Name = src.name
			}
			return writeCompiledGrammar(cg, nil, *compileFlags.output)
		}
		if !errors.Is(err, cache.ErrNotFound) {
			return err
		}
	}

	res, err := src.generate(root, *compileFlags.report)
	if err != nil {
		return err
	}
	printConflicts(os.Stderr, res.Table)

	if st != nil {
		entry, err := st.Put(ctx, key, res.Compiled)
		if err != nil {
			return err
		}
		logger.Info("table cached", zap.String("key", key), zap.Stringer("id", entry.ID))
	}

	err = writeCompiledGrammar(res.Compiled, res.Report, *compileFlags.output)
	if err != nil {
		return errors.Wrap(err, "cannot write output files")
	}

	return nil
}

// writeCompiledGrammar writes a compiled grammar to a file, or to stdout when path is empty. A
// non-nil report goes to <grammar-name>-report.json in the same directory as the compiled grammar,
// or in the current directory when the grammar goes to stdout.
func writeCompiledGrammar(cg *gspec.CompiledGrammar, report *gspec.Report, path string) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	err := writeJSON(w, cg)
	if err != nil {
		return err
	}

	if report == nil {
		return nil
	}

	reportPath := filepath.Join(filepath.Dir(path), cg.Name+"-report.json")
	f, err := os.OpenFile(reportPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}
	defer f.Close()
	return writeJSON(f, report)
}

func writeJSON(w io.Writer, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%v\n", string(b))
	return err
}
