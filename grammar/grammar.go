package grammar

import (
	"errors"
	"fmt"

	verr "github.com/nihei9/lr1gen/error"
	"github.com/nihei9/lr1gen/grammar/symbol"
	"github.com/nihei9/lr1gen/spec"
	gspec "github.com/nihei9/lr1gen/spec/grammar"
	"go.uber.org/zap"
)

const defaultGrammarName = "grammar"

// Grammar is an augmented context-free grammar. It is immutable once built, so a single Grammar can
// be compiled and analyzed any number of times.
type Grammar struct {
	name                 string
	symbolTable          *symbol.SymbolTable
	startSymbol          symbol.Symbol
	augmentedStartSymbol symbol.Symbol
	productionSet        *productionSet
	logger               *zap.Logger
}

type grammarConfig struct {
	name   string
	logger *zap.Logger
}

type GrammarOption func(config *grammarConfig)

// WithGrammarName names the grammar. The name is carried into compiled artifacts.
func WithGrammarName(name string) GrammarOption {
	return func(config *grammarConfig) {
		config.name = name
	}
}

func WithGrammarLogger(logger *zap.Logger) GrammarOption {
	return func(config *grammarConfig) {
		config.logger = logger
	}
}

// NewGrammar builds a grammar from a declaration and production strings written as
// `LHS ::= SYM1 SYM2 ... SYMn`. The row of an error points at the index of the offending string
// counted from 1.
func NewGrammar(decl *spec.Declaration, prods []string, opts ...GrammarOption) (*Grammar, error) {
	root := &spec.RootNode{}
	var errs verr.SpecErrors
	for i, src := range prods {
		prod, err := spec.ParseProduction(src)
		if err != nil {
			var specErr *verr.SpecError
			if errors.As(err, &specErr) {
				specErr.Row = i + 1
				errs = append(errs, specErr)
				continue
			}
			return nil, err
		}
		prod.Pos.Row = i + 1
		prod.LHS.Pos.Row = i + 1
		for _, sym := range prod.RHS {
			sym.Pos.Row = i + 1
		}
		root.Productions = append(root.Productions, prod)
	}
	if len(errs) > 0 {
		return nil, errs
	}

	b := &GrammarBuilder{
		Decl: decl,
		AST:  root,
	}
	return b.Build(opts...)
}

// GrammarBuilder builds a grammar from an already parsed description.
type GrammarBuilder struct {
	Decl *spec.Declaration
	AST  *spec.RootNode

	errs verr.SpecErrors
}

func (b *GrammarBuilder) Build(opts ...GrammarOption) (*Grammar, error) {
	config := &grammarConfig{
		name:   defaultGrammarName,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(config)
	}

	if b.Decl == nil {
		return nil, fmt.Errorf("a grammar needs a declaration")
	}
	if b.AST == nil || len(b.AST.Productions) == 0 {
		return nil, verr.SpecErrors{
			{
				Cause: semErrNoProduction,
			},
		}
	}

	symTab, startSym := b.genSymbolTable(b.Decl)
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	prods, augStartSym, err := b.genProductionSet(symTab, startSym, config.logger)
	if err != nil {
		return nil, err
	}
	if len(b.errs) > 0 {
		return nil, b.errs
	}

	config.logger.Debug("grammar built",
		zap.String("name", config.name),
		zap.Int("terminals", symTab.Reader().TerminalCount()),
		zap.Int("non-terminals", symTab.Reader().NonTerminalCount()),
		zap.Int("productions", prods.count()))

	return &Grammar{
		name:                 config.name,
		symbolTable:          symTab,
		startSymbol:          startSym,
		augmentedStartSymbol: augStartSym,
		productionSet:        prods,
		logger:               config.logger,
	}, nil
}

// genSymbolTable registers the declared terminals first and then the declared non-terminals, and
// resolves the start symbol.
func (b *GrammarBuilder) genSymbolTable(decl *spec.Declaration) (*symbol.SymbolTable, symbol.Symbol) {
	symTab := symbol.NewSymbolTable()
	w := symTab.Writer()

	register := func(text string, f func(string) (symbol.Symbol, error)) {
		_, err := f(text)
		switch {
		case err == nil:
		case errors.Is(err, symbol.ErrReservedName):
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrReservedName,
				Detail: text,
			})
		case errors.Is(err, symbol.ErrDuplicateName):
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrDuplicateName,
				Detail: text,
			})
		default:
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  err,
				Detail: text,
			})
		}
	}
	for _, text := range decl.Terminals {
		register(text, w.RegisterTerminalSymbol)
	}
	for _, text := range decl.NonTerminals {
		register(text, w.RegisterNonTerminalSymbol)
	}

	startSym, err := symTab.Reader().NonTerminal(decl.Start)
	if err != nil || startSym.IsReserved() {
		b.errs = append(b.errs, &verr.SpecError{
			Cause:  semErrInvalidStart,
			Detail: decl.Start,
		})
		return symTab, symbol.SymbolNil
	}

	return symTab, startSym
}

// genProductionSet resolves every production through the symbol table and then augments the
// grammar: `_S -> S` becomes the production 0 and the remaining ones follow in source order.
func (b *GrammarBuilder) genProductionSet(symTab *symbol.SymbolTable, startSym symbol.Symbol, logger *zap.Logger) (*productionSet, symbol.Symbol, error) {
	r := symTab.Reader()

	var userProds []*production
	var userNodes []*spec.ProductionNode
	for _, node := range b.AST.Productions {
		lhsSym, ok := r.ToSymbol(node.LHS.Name)
		if !ok {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrUndefinedSym,
				Detail: node.LHS.Name,
				Row:    node.LHS.Pos.Row,
				Col:    node.LHS.Pos.Col,
			})
			continue
		}
		if !lhsSym.IsNonTerminal() {
			b.errs = append(b.errs, &verr.SpecError{
				Cause:  semErrTerminalLHS,
				Detail: node.LHS.Name,
				Row:    node.LHS.Pos.Row,
				Col:    node.LHS.Pos.Col,
			})
			continue
		}

		rhs := make([]symbol.Symbol, 0, len(node.RHS))
		ok = true
		for _, elem := range node.RHS {
			sym, found := r.ToSymbol(elem.Name)
			if !found {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrUndefinedSym,
					Detail: elem.Name,
					Row:    elem.Pos.Row,
					Col:    elem.Pos.Col,
				})
				ok = false
				continue
			}
			if sym.IsEOF() {
				b.errs = append(b.errs, &verr.SpecError{
					Cause:  semErrReservedSymInRHS,
					Detail: elem.Name,
					Row:    elem.Pos.Row,
					Col:    elem.Pos.Col,
				})
				ok = false
				continue
			}
			rhs = append(rhs, sym)
		}
		if !ok {
			continue
		}

		prod, err := newProduction(lhsSym, rhs)
		if err != nil {
			return nil, symbol.SymbolNil, err
		}
		userProds = append(userProds, prod)
		userNodes = append(userNodes, node)
	}
	if len(b.errs) > 0 {
		return nil, symbol.SymbolNil, nil
	}

	augStartSym, err := symTab.Writer().RegisterAugmentedStartSymbol()
	if err != nil {
		return nil, symbol.SymbolNil, err
	}
	startProd, err := newProduction(augStartSym, []symbol.Symbol{startSym})
	if err != nil {
		return nil, symbol.SymbolNil, err
	}

	prods := newProductionSet()
	prods.append(startProd)
	for i, prod := range userProds {
		if !prods.append(prod) {
			logger.Warn(semErrDuplicateProduction.Error(),
				zap.String("production", userNodes[i].String()),
				zap.Int("row", userNodes[i].Pos.Row))
		}
	}

	return prods, augStartSym, nil
}

// Name returns the name of the grammar.
func (g *Grammar) Name() string {
	return g.name
}

// StartSymbol returns the name of the declared start symbol, not the augmented one.
func (g *Grammar) StartSymbol() string {
	text, _ := g.symbolTable.Reader().ToText(g.startSymbol)
	return text
}

func (g *Grammar) SymbolTable() *symbol.SymbolTableReader {
	return g.symbolTable.Reader()
}

// ProductionCount returns the number of productions including the augmented one and duplicates.
func (g *Grammar) ProductionCount() int {
	return g.productionSet.count()
}

// Production returns the symbol names of a production. An empty right-hand side is reported as an
// empty slice.
func (g *Grammar) Production(num int) (string, []string, bool) {
	prod, ok := g.productionSet.findByNum(productionNum(num))
	if !ok {
		return "", nil, false
	}
	r := g.symbolTable.Reader()
	lhs, _ := r.ToText(prod.lhs)
	if prod.isEmpty() {
		return lhs, []string{}, true
	}
	rhs := make([]string, prod.rhsLen)
	for i, sym := range prod.rhs {
		rhs[i], _ = r.ToText(sym)
	}
	return lhs, rhs, true
}

type compileConfig struct {
	isReportingEnabled bool
	detectConflicts    bool
	failOnConflict     bool
	maxStates          int
	logger             *zap.Logger
}

type CompileOption func(config *compileConfig)

func EnableReporting() CompileOption {
	return func(config *compileConfig) {
		config.isReportingEnabled = true
	}
}

// DetectConflicts makes the table builder record every overwritten entry. The table itself is
// the same as without the option.
func DetectConflicts() CompileOption {
	return func(config *compileConfig) {
		config.detectConflicts = true
	}
}

// FailOnConflict makes Compile fail with a *ConflictError when the table has a conflict.
func FailOnConflict() CompileOption {
	return func(config *compileConfig) {
		config.detectConflicts = true
		config.failOnConflict = true
	}
}

// MaxStates bounds the number of states of the automaton. Zero or less means no bound.
func MaxStates(n int) CompileOption {
	return func(config *compileConfig) {
		config.maxStates = n
	}
}

func WithLogger(logger *zap.Logger) CompileOption {
	return func(config *compileConfig) {
		config.logger = logger
	}
}

// Compile builds the canonical LR(1) automaton of a grammar and its parse table.
func Compile(gram *Grammar, opts ...CompileOption) (*ParseTable, *gspec.Report, error) {
	config := &compileConfig{
		logger: gram.logger,
	}
	for _, opt := range opts {
		opt(config)
	}
	if config.logger == nil {
		config.logger = zap.NewNop()
	}

	analysis, err := gram.Analyze()
	if err != nil {
		return nil, nil, err
	}

	lr1, err := genLR1Automaton(gram, analysis, config.logger, config.maxStates)
	if err != nil {
		return nil, nil, err
	}

	b := &lrTableBuilder{
		automaton:       lr1,
		prods:           gram.productionSet,
		symTab:          gram.symbolTable.Reader(),
		detectConflicts: config.detectConflicts,
		logger:          config.logger,
	}
	tab, err := b.build()
	if err != nil {
		return nil, nil, err
	}
	tab.grammar = gram
	tab.analysis = analysis

	if config.failOnConflict && len(b.conflicts) > 0 {
		return nil, nil, &ConflictError{
			Conflicts: b.conflicts,
		}
	}

	var report *gspec.Report
	if config.isReportingEnabled {
		report, err = b.genReport(tab, gram, analysis)
		if err != nil {
			return nil, nil, err
		}
	}

	return tab, report, nil
}
