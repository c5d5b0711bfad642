package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/nihei9/lr1gen/config"
	verr "github.com/nihei9/lr1gen/error"
	"github.com/nihei9/lr1gen/generator"
	"github.com/nihei9/lr1gen/grammar"
	"github.com/nihei9/lr1gen/spec"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

// sourceFlags are the flags of the commands reading a grammar. They override the project file.
type sourceFlags struct {
	project   string
	ebnf      bool
	start     string
	conflicts config.ConflictMode
	maxStates int
}

func (f *sourceFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.project, "project", "p", "", "project file path")
	fs.BoolVar(&f.ebnf, "ebnf", false, "expand EBNF shorthands before compiling")
	fs.StringVar(&f.start, "start", "", "start symbol (default the left-hand side of the first production)")
	fs.Var(&f.conflicts, "conflicts", "what to do about conflicts: overwrite, detect, or error")
	fs.IntVar(&f.maxStates, "max-states", 0, "maximum number of states (default no limit)")
}

// source is a grammar description read from a file or stdin, with the project settings applied to
// it.
type source struct {
	project *config.Project
	path    string
	name    string
	data    []byte
}

func readSource(cmd *cobra.Command, args []string, flags *sourceFlags) (*source, error) {
	p := &config.Project{
		Table: config.Table{
			Conflicts: config.ConflictOverwrite,
		},
	}
	if flags.project != "" {
		var err error
		p, err = config.Load(flags.project)
		if err != nil {
			return nil, err
		}
	}

	fs := cmd.Flags()
	if fs.Changed("ebnf") {
		p.EBNF = flags.ebnf
	}
	if fs.Changed("start") {
		p.Start = flags.start
	}
	if fs.Changed("conflicts") {
		p.Table.Conflicts = flags.conflicts
	}
	if fs.Changed("max-states") {
		if flags.maxStates < 0 {
			return nil, errors.Errorf("--max-states must be 0 or greater: %v", flags.maxStates)
		}
		p.Table.MaxStates = flags.maxStates
	}

	src := &source{
		project: p,
	}
	switch {
	case len(args) > 0:
		src.path = args[0]
	case p.Grammar != "":
		src.path = p.GrammarPath()
	}

	var err error
	if src.path != "" {
		src.data, err = os.ReadFile(src.path)
		if err != nil {
			return nil, errors.Wrapf(err, "cannot read the grammar file %s", src.path)
		}
	} else {
		src.data, err = io.ReadAll(os.Stdin)
		if err != nil {
			return nil, errors.Wrap(err, "cannot read a grammar from stdin")
		}
	}

	src.name = p.Name
	if src.name == "" && src.path != "" {
		base := filepath.Base(src.path)
		src.name = strings.TrimSuffix(base, filepath.Ext(base))
	}

	return src, nil
}

func (s *source) options(reporting bool) []generator.Option {
	opts := []generator.Option{
		generator.WithStart(s.project.Start),
		generator.WithCompileOptions(s.project.CompileOptions()...),
		generator.WithLogger(logger),
	}
	if s.name != "" {
		opts = append(opts, generator.WithName(s.name))
	}
	if s.project.EBNF {
		opts = append(opts, generator.EBNF())
	}
	if reporting {
		opts = append(opts, generator.EnableReporting())
	}
	return opts
}

func (s *source) parse() (*spec.RootNode, error) {
	root, err := generator.Parse(bytes.NewReader(s.data), s.options(false)...)
	if err != nil {
		return nil, s.locate(err)
	}
	return root, nil
}

// declaration returns the declaration of the project, inferring it from root when the project
// declares no symbols.
func (s *source) declaration(root *spec.RootNode) *spec.Declaration {
	if decl := s.project.Declaration(); decl != nil {
		return decl
	}
	return spec.InferDeclaration(root, s.project.Start)
}

func (s *source) generate(root *spec.RootNode, reporting bool) (*generator.Result, error) {
	res, err := generator.GenerateFromAST(root, s.declaration(root), s.options(reporting)...)
	if err != nil {
		return nil, s.locate(err)
	}
	return res, nil
}

// locate attaches the source to located errors so that they print the offending line.
func (s *source) locate(err error) error {
	var specErrs verr.SpecErrors
	if !errors.As(err, &specErrs) {
		return err
	}
	for _, e := range specErrs {
		if s.path != "" {
			e.FilePath = s.path
			e.SourceName = s.path
		} else {
			e.SourceName = "stdin"
		}
	}
	return specErrs
}

func printConflicts(w io.Writer, tab *grammar.ParseTable) {
	conflicts := tab.Conflicts()
	if len(conflicts) == 0 {
		return
	}
	for _, c := range conflicts {
		logger.Warn("conflict", zap.Stringer("conflict", c))
	}
	if len(conflicts) == 1 {
		fmt.Fprintf(w, "1 conflict\n")
	} else {
		fmt.Fprintf(w, "%v conflicts\n", len(conflicts))
	}
}
