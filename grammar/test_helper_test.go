package grammar

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nihei9/lr1gen/grammar/symbol"
	"github.com/nihei9/lr1gen/spec"
)

type testSymbolGenerator func(text string) symbol.Symbol

func newTestSymbolGenerator(t *testing.T, symTab *symbol.SymbolTableReader) testSymbolGenerator {
	return func(text string) symbol.Symbol {
		t.Helper()

		sym, ok := symTab.ToSymbol(text)
		if !ok {
			t.Fatalf("symbol was not found: %v", text)
		}
		return sym
	}
}

type testProductionGenerator func(lhs string, rhs ...string) *production

// newTestProductionGenerator returns a generator looking up productions of a grammar, so the
// productions it returns carry their numbers.
func newTestProductionGenerator(t *testing.T, gram *Grammar, genSym testSymbolGenerator) testProductionGenerator {
	return func(lhs string, rhs ...string) *production {
		t.Helper()

		rhsSym := []symbol.Symbol{}
		for _, text := range rhs {
			rhsSym = append(rhsSym, genSym(text))
		}
		p, err := newProduction(genSym(lhs), rhsSym)
		if err != nil {
			t.Fatalf("failed to create a production: %v", err)
		}
		prod, ok := gram.productionSet.findByID(p.id)
		if !ok {
			t.Fatalf("production was not found: %v → %v", lhs, rhs)
		}

		return prod
	}
}

type testLR1ItemGenerator func(lhs string, dot int, lookAhead string, rhs ...string) *lrItem

func newTestLR1ItemGenerator(t *testing.T, genSym testSymbolGenerator, genProd testProductionGenerator) testLR1ItemGenerator {
	return func(lhs string, dot int, lookAhead string, rhs ...string) *lrItem {
		t.Helper()

		prod := genProd(lhs, rhs...)
		item, err := newLR1Item(prod, dot, genSym(lookAhead))
		if err != nil {
			t.Fatalf("failed to create a LR1 item: %v", err)
		}

		return item
	}
}

// genTestGrammar builds a grammar from a description whose symbols are inferred. The first
// left-hand side is the start symbol.
func genTestGrammar(t *testing.T, src string, opts ...GrammarOption) *Grammar {
	t.Helper()

	root, err := spec.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("failed to parse a grammar: %v", err)
	}
	b := &GrammarBuilder{
		Decl: spec.InferDeclaration(root, ""),
		AST:  root,
	}
	gram, err := b.Build(opts...)
	if err != nil {
		t.Fatalf("failed to build a grammar: %v", err)
	}
	return gram
}

func genTestParseTable(t *testing.T, src string, opts ...CompileOption) *ParseTable {
	t.Helper()

	gram := genTestGrammar(t, src)
	tab, _, err := Compile(gram, opts...)
	if err != nil {
		t.Fatalf("failed to compile a grammar: %v", err)
	}
	return tab
}

// testParse drives a table over a sequence of terminal names the way an LR parser does and reports
// whether the input is accepted.
func testParse(tab *ParseTable, input ...string) (bool, error) {
	symTab := tab.Grammar().SymbolTable()
	var syms []symbol.Symbol
	for _, text := range input {
		sym, err := symTab.Terminal(text)
		if err != nil {
			return false, err
		}
		syms = append(syms, sym)
	}
	syms = append(syms, symbol.SymbolEOF)

	stack := []int{tab.InitialState()}
	pos := 0
	for {
		state := stack[len(stack)-1]
		sym := syms[pos]
		if tab.IsAccept(state, sym) {
			return true, nil
		}

		tran, ok := tab.Lookup(state, sym)
		if !ok {
			return false, nil
		}
		switch tran.Type {
		case TransitionTypeShift:
			stack = append(stack, tran.Target)
			pos++
		case TransitionTypeReduce:
			lhs, n, ok := tab.Production(tran.Target)
			if !ok {
				return false, fmt.Errorf("production not found: %v", tran.Target)
			}
			if len(stack) <= n {
				return false, fmt.Errorf("stack underflow: state %v, production %v", state, tran.Target)
			}
			stack = stack[:len(stack)-n]
			g, ok := tab.Lookup(stack[len(stack)-1], lhs)
			if !ok || g.Type != TransitionTypeGoTo {
				return false, fmt.Errorf("no goto: state %v, symbol %v", stack[len(stack)-1], lhs)
			}
			stack = append(stack, g.Target)
		default:
			return false, fmt.Errorf("unexpected transition: %v", tran)
		}
	}
}
