package grammar

import (
	"errors"
	"strings"
	"testing"

	verr "github.com/nihei9/lr1gen/error"
	"github.com/nihei9/lr1gen/grammar/symbol"
	"github.com/nihei9/lr1gen/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewGrammar(t *testing.T) {
	exprDecl := func() *spec.Declaration {
		return &spec.Declaration{
			Terminals:    []string{"PLUS", "NUM"},
			NonTerminals: []string{"<E>", "<T>"},
			Start:        "<E>",
		}
	}

	tests := []struct {
		caption string
		decl    *spec.Declaration
		prods   []string
		errs    []*SemanticError
	}{
		{
			caption: "a grammar can be built from a declaration and production strings",
			decl:    exprDecl(),
			prods: []string{
				"<E> ::= <T> PLUS <E>",
				"<E> ::= <T>",
				"<T> ::= NUM",
			},
		},
		{
			caption: "`null` and `ε` are available without being declared",
			decl: &spec.Declaration{
				NonTerminals: []string{"<A>", "<B>"},
				Start:        "<A>",
			},
			prods: []string{
				"<A> ::= <B> <B>",
				"<B> ::= null",
				"<B> ::= ε",
			},
		},
		{
			caption: "a reserved name cannot be declared as a terminal",
			decl: &spec.Declaration{
				Terminals:    []string{"EOF"},
				NonTerminals: []string{"<S>"},
				Start:        "<S>",
			},
			prods: []string{"<S> ::= null"},
			errs:  []*SemanticError{semErrReservedName},
		},
		{
			caption: "a reserved name cannot be declared as a non-terminal",
			decl: &spec.Declaration{
				NonTerminals: []string{"<S>", "_S"},
				Start:        "<S>",
			},
			prods: []string{"<S> ::= null"},
			errs:  []*SemanticError{semErrReservedName},
		},
		{
			caption: "a name cannot be both a terminal and a non-terminal",
			decl: &spec.Declaration{
				Terminals:    []string{"a"},
				NonTerminals: []string{"<S>", "a"},
				Start:        "<S>",
			},
			prods: []string{"<S> ::= a"},
			errs:  []*SemanticError{semErrDuplicateName},
		},
		{
			caption: "the start symbol must be a declared non-terminal",
			decl: &spec.Declaration{
				Terminals:    []string{"a"},
				NonTerminals: []string{"<S>"},
				Start:        "<X>",
			},
			prods: []string{"<S> ::= a"},
			errs:  []*SemanticError{semErrInvalidStart},
		},
		{
			caption: "a terminal cannot be the start symbol",
			decl: &spec.Declaration{
				Terminals:    []string{"a"},
				NonTerminals: []string{"<S>"},
				Start:        "a",
			},
			prods: []string{"<S> ::= a"},
			errs:  []*SemanticError{semErrInvalidStart},
		},
		{
			caption: "every symbol of a production must be declared",
			decl:    exprDecl(),
			prods: []string{
				"<E> ::= <T> MINUS <E>",
				"<T> ::= NUM",
				"<U> ::= NUM",
			},
			errs: []*SemanticError{semErrUndefinedSym, semErrUndefinedSym},
		},
		{
			caption: "the left-hand side must be a non-terminal",
			decl:    exprDecl(),
			prods: []string{
				"<E> ::= NUM",
				"NUM ::= PLUS",
			},
			errs: []*SemanticError{semErrTerminalLHS},
		},
		{
			caption: "a right-hand side cannot refer to EOF",
			decl:    exprDecl(),
			prods: []string{
				"<E> ::= NUM EOF",
			},
			errs: []*SemanticError{semErrReservedSymInRHS},
		},
		{
			caption: "a right-hand side cannot refer to the augmented start symbol",
			decl:    exprDecl(),
			prods: []string{
				"<E> ::= _S",
			},
			errs: []*SemanticError{semErrUndefinedSym},
		},
		{
			caption: "a grammar needs at least one production",
			decl:    exprDecl(),
			errs:    []*SemanticError{semErrNoProduction},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			gram, err := NewGrammar(tt.decl, tt.prods)
			if len(tt.errs) > 0 {
				require.Error(t, err)
				require.Nil(t, gram)
				var specErrs verr.SpecErrors
				require.True(t, errors.As(err, &specErrs), "unexpected error type: %T: %v", err, err)
				require.Len(t, specErrs, len(tt.errs))
				for i, e := range specErrs {
					assert.ErrorIs(t, e, tt.errs[i])
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.decl.Start, gram.StartSymbol())
			assert.Equal(t, len(tt.prods)+1, gram.ProductionCount())
		})
	}
}

func TestNewGrammar_SyntaxErrorRow(t *testing.T) {
	decl := &spec.Declaration{
		Terminals:    []string{"a"},
		NonTerminals: []string{"<S>"},
		Start:        "<S>",
	}
	_, err := NewGrammar(decl, []string{
		"<S> ::= a",
		"<S> a",
	})
	require.Error(t, err)
	var specErrs verr.SpecErrors
	require.True(t, errors.As(err, &specErrs))
	require.Len(t, specErrs, 1)
	assert.Equal(t, 2, specErrs[0].Row)
}

func TestGrammarBuilder_ErrorPosition(t *testing.T) {
	root, err := spec.Parse(strings.NewReader(`<S> ::= a
<S> ::= a b`))
	require.NoError(t, err)
	b := &GrammarBuilder{
		Decl: &spec.Declaration{
			Terminals:    []string{"a"},
			NonTerminals: []string{"<S>"},
			Start:        "<S>",
		},
		AST: root,
	}
	_, err = b.Build()
	require.Error(t, err)
	var specErrs verr.SpecErrors
	require.True(t, errors.As(err, &specErrs))
	require.Len(t, specErrs, 1)
	assert.ErrorIs(t, specErrs[0], semErrUndefinedSym)
	assert.Equal(t, "b", specErrs[0].Detail)
	assert.Equal(t, 2, specErrs[0].Row)
	assert.Equal(t, 11, specErrs[0].Col)
}

func TestGrammar_Augmentation(t *testing.T) {
	gram := genTestGrammar(t, `
<E> ::= <E> PLUS <T>
<E> ::= <T>
<T> ::= NUM
<T> ::= null
`)
	genSym := newTestSymbolGenerator(t, gram.SymbolTable())

	augStart, ok := gram.SymbolTable().AugmentedStartSymbol()
	require.True(t, ok)
	assert.Equal(t, augStart, gram.augmentedStartSymbol)

	// The augmented production comes first and derives the declared start symbol.
	prods := gram.productionSet.getAllProductions()
	require.Len(t, prods, 5)
	assert.Equal(t, productionNumStart, prods[0].num)
	assert.Equal(t, augStart, prods[0].lhs)
	assert.Equal(t, []symbol.Symbol{genSym("<E>")}, prods[0].rhs)
	startProds, ok := gram.productionSet.findByLHS(augStart)
	require.True(t, ok)
	assert.Len(t, startProds, 1)

	// The augmented start symbol never appears on a right-hand side.
	for _, prod := range prods {
		for _, sym := range prod.rhs {
			assert.False(t, sym.IsAugmentedStart(), "production: %v", prod.num)
		}
	}

	// Productions keep the source order after the augmented one.
	for i, prod := range prods {
		assert.Equal(t, productionNum(i), prod.num)
	}

	// An empty right-hand side is stored as NULL.
	assert.Equal(t, []symbol.Symbol{symbol.SymbolNull}, prods[4].rhs)
	assert.True(t, prods[4].isEmpty())

	lhs, rhs, ok := gram.Production(4)
	require.True(t, ok)
	assert.Equal(t, "<T>", lhs)
	assert.Empty(t, rhs)

	lhs, rhs, ok = gram.Production(0)
	require.True(t, ok)
	assert.Equal(t, "_S", lhs)
	assert.Equal(t, []string{"<E>"}, rhs)

	_, _, ok = gram.Production(5)
	assert.False(t, ok)
}

func TestGrammar_DuplicateProductions(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	gram := genTestGrammar(t, `
<S> ::= a <S>
<S> ::= null
<S> ::= a <S>
`, WithGrammarLogger(zap.New(core)))

	genSym := newTestSymbolGenerator(t, gram.SymbolTable())
	genProd := newTestProductionGenerator(t, gram, genSym)

	// The duplicate keeps its place in the ordered list but is indexed once, as its first
	// occurrence.
	assert.Equal(t, 4, gram.ProductionCount())
	prods, ok := gram.productionSet.findByLHS(genSym("<S>"))
	require.True(t, ok)
	assert.Len(t, prods, 2)
	assert.Equal(t, productionNum(1), genProd("<S>", "a", "<S>").num)

	warnings := logs.FilterMessage(semErrDuplicateProduction.Error()).All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "<S> ::= a <S>", warnings[0].ContextMap()["production"])
}

func TestNewProduction(t *testing.T) {
	symTab := symbol.NewSymbolTable()
	w := symTab.Writer()
	s, err := w.RegisterNonTerminalSymbol("<S>")
	require.NoError(t, err)
	a, err := w.RegisterTerminalSymbol("a")
	require.NoError(t, err)

	prod, err := newProduction(s, nil)
	require.NoError(t, err)
	assert.True(t, prod.isEmpty())

	p1, err := newProduction(s, []symbol.Symbol{a, s})
	require.NoError(t, err)
	p2, err := newProduction(s, []symbol.Symbol{a, s})
	require.NoError(t, err)
	assert.True(t, p1.equals(p2))
	assert.False(t, p1.equals(prod))

	_, err = newProduction(a, []symbol.Symbol{s})
	assert.Error(t, err)
	_, err = newProduction(s, []symbol.Symbol{a, symbol.SymbolNull})
	assert.Error(t, err)
	_, err = newProduction(s, []symbol.Symbol{symbol.SymbolNil})
	assert.Error(t, err)
}
