package driver

import (
	"github.com/nihei9/lr1gen/grammar/symbol"
	gspec "github.com/nihei9/lr1gen/spec/grammar"
)

// Grammar is what the parser needs to know about a parsing table.
type Grammar interface {
	InitialState() int

	// AcceptState returns the state accepting the input on EOF. The acceptance does not depend on
	// the entry the table holds at that cell.
	AcceptState() int

	// Action returns the shift or reduce entry of a state on a terminal.
	Action(state int, terminal string) (*gspec.Entry, bool)

	// GoTo returns the next state of a state on a non-terminal.
	GoTo(state int, nonTerminal string) (int, bool)

	AlternativeSymbolCount(prod int) int
	LHS(prod int) string
	EOF() string

	// Terminals returns the terminals a token may name. NULL and EOF are not among them.
	Terminals() []string
}

var _ Grammar = &grammarImpl{}

type grammarImpl struct {
	g *gspec.CompiledGrammar
}

func NewGrammar(g *gspec.CompiledGrammar) *grammarImpl {
	return &grammarImpl{
		g: g,
	}
}

func (g *grammarImpl) InitialState() int {
	return g.g.ParsingTable.InitialState
}

func (g *grammarImpl) AcceptState() int {
	return g.g.ParsingTable.AcceptState
}

func (g *grammarImpl) Action(state int, terminal string) (*gspec.Entry, bool) {
	e, ok := g.g.ParsingTable.Lookup(state, terminal)
	if !ok || e.Action == gspec.ActionGoTo {
		return nil, false
	}
	return e, true
}

func (g *grammarImpl) GoTo(state int, nonTerminal string) (int, bool) {
	e, ok := g.g.ParsingTable.Lookup(state, nonTerminal)
	if !ok || e.Action != gspec.ActionGoTo {
		return 0, false
	}
	return e.Target, true
}

func (g *grammarImpl) AlternativeSymbolCount(prod int) int {
	return g.g.ParsingTable.Productions[prod].RHSLen
}

func (g *grammarImpl) LHS(prod int) string {
	return g.g.ParsingTable.Productions[prod].LHS
}

func (g *grammarImpl) EOF() string {
	return g.g.ParsingTable.EOFSymbol
}

func (g *grammarImpl) Terminals() []string {
	var terms []string
	for _, t := range g.g.ParsingTable.Terminals {
		if t == "" || t == symbol.NameNull || t == g.EOF() {
			continue
		}
		terms = append(terms, t)
	}
	return terms
}
