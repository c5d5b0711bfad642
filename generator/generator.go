// Package generator drives the whole pipeline from a grammar description to a parse table.
package generator

import (
	"io"

	"github.com/nihei9/lr1gen/grammar"
	"github.com/nihei9/lr1gen/spec"
	gspec "github.com/nihei9/lr1gen/spec/grammar"
	"go.uber.org/zap"
)

type config struct {
	name        string
	start       string
	ebnf        bool
	reporting   bool
	compileOpts []grammar.CompileOption
	logger      *zap.Logger
}

type Option func(config *config)

// WithName names the grammar and the compiled artifact.
func WithName(name string) Option {
	return func(config *config) {
		config.name = name
	}
}

// WithStart sets the start symbol used when the declaration is inferred.
func WithStart(start string) Option {
	return func(config *config) {
		config.start = start
	}
}

// EBNF makes Generate expand the EBNF shorthands before building the grammar.
func EBNF() Option {
	return func(config *config) {
		config.ebnf = true
	}
}

// EnableReporting makes Generate produce a report.
func EnableReporting() Option {
	return func(config *config) {
		config.reporting = true
	}
}

func WithCompileOptions(opts ...grammar.CompileOption) Option {
	return func(config *config) {
		config.compileOpts = append(config.compileOpts, opts...)
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(config *config) {
		config.logger = logger
	}
}

type Result struct {
	Declaration *spec.Declaration
	AST         *spec.RootNode
	Grammar     *grammar.Grammar
	Table       *grammar.ParseTable
	Compiled    *gspec.CompiledGrammar

	// Report is nil unless reporting is enabled.
	Report *gspec.Report
}

// Productions returns the productions of the description in the plain format, one string per
// production. Together with the declaration they identify the grammar.
func (r *Result) Productions() []string {
	return Productions(r.AST)
}

func Productions(root *spec.RootNode) []string {
	prods := make([]string, len(root.Productions))
	for i, prod := range root.Productions {
		prods[i] = prod.String()
	}
	return prods
}

// Parse reads a description in the plain or, with EBNF, the EBNF format.
func Parse(src io.Reader, opts ...Option) (*spec.RootNode, error) {
	config := newConfig(opts)
	if config.ebnf {
		return spec.ExpandEBNF(src)
	}
	return spec.Parse(src)
}

// Generate parses a description, builds its grammar, and compiles the grammar into a parse table.
// When decl is nil, the declaration is inferred from the description.
func Generate(src io.Reader, decl *spec.Declaration, opts ...Option) (*Result, error) {
	config := newConfig(opts)

	root, err := Parse(src, opts...)
	if err != nil {
		return nil, err
	}
	return generate(root, decl, config)
}

// GenerateFromAST is Generate for an already parsed description.
func GenerateFromAST(root *spec.RootNode, decl *spec.Declaration, opts ...Option) (*Result, error) {
	return generate(root, decl, newConfig(opts))
}

func newConfig(opts []Option) *config {
	config := &config{
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(config)
	}
	return config
}

func generate(root *spec.RootNode, decl *spec.Declaration, config *config) (*Result, error) {
	if decl == nil {
		decl = spec.InferDeclaration(root, config.start)
		config.logger.Debug("declaration inferred",
			zap.Strings("terminals", decl.Terminals),
			zap.Strings("non-terminals", decl.NonTerminals),
			zap.String("start", decl.Start))
	}

	gramOpts := []grammar.GrammarOption{
		grammar.WithGrammarLogger(config.logger),
	}
	if config.name != "" {
		gramOpts = append(gramOpts, grammar.WithGrammarName(config.name))
	}
	b := &grammar.GrammarBuilder{
		Decl: decl,
		AST:  root,
	}
	gram, err := b.Build(gramOpts...)
	if err != nil {
		return nil, err
	}

	compileOpts := append([]grammar.CompileOption{grammar.WithLogger(config.logger)}, config.compileOpts...)
	if config.reporting {
		compileOpts = append(compileOpts, grammar.EnableReporting())
	}
	tab, report, err := grammar.Compile(gram, compileOpts...)
	if err != nil {
		return nil, err
	}

	cg, err := tab.CompiledGrammar()
	if err != nil {
		return nil, err
	}

	return &Result{
		Declaration: decl,
		AST:         root,
		Grammar:     gram,
		Table:       tab,
		Compiled:    cg,
		Report:      report,
	}, nil
}
