package grammar

import (
	"fmt"

	"github.com/nihei9/lr1gen/grammar/symbol"
	gspec "github.com/nihei9/lr1gen/spec/grammar"
	"go.uber.org/zap"
)

type TransitionType string

const (
	TransitionTypeShift  = TransitionType("shift")
	TransitionTypeGoTo   = TransitionType("goto")
	TransitionTypeReduce = TransitionType("reduce")
)

// Transition is an entry of a parse table. Target is a state number for a shift and a goto, and a
// production number for a reduce.
type Transition struct {
	Type   TransitionType
	Target int
}

// String returns `sN` for a shift and a goto and `rN` for a reduce.
func (t Transition) String() string {
	if t.Type == TransitionTypeReduce {
		return fmt.Sprintf("r%v", t.Target)
	}
	return fmt.Sprintf("s%v", t.Target)
}

// ParseTable is the canonical LR(1) parse table of a grammar. It is read-only.
type ParseTable struct {
	rows         []map[symbol.Symbol]Transition
	initialState stateNum
	acceptState  stateNum
	conflicts    []*Conflict
	grammar      *Grammar
	analysis     *Analysis
	automaton    *lr1Automaton
}

// Lookup returns the entry of a state on a symbol.
func (t *ParseTable) Lookup(state int, sym symbol.Symbol) (Transition, bool) {
	if state < 0 || state >= len(t.rows) {
		return Transition{}, false
	}
	tran, ok := t.rows[state][sym]
	return tran, ok
}

// LookupByName returns the entry of a state on a symbol given by name. An unknown name is an error.
func (t *ParseTable) LookupByName(state int, name string) (Transition, bool, error) {
	sym, ok := t.grammar.symbolTable.Reader().ToSymbol(name)
	if !ok {
		return Transition{}, false, fmt.Errorf("%w: %v", symbol.ErrSymbolNotFound, name)
	}
	tran, ok := t.Lookup(state, sym)
	return tran, ok, nil
}

func (t *ParseTable) InitialState() int {
	return t.initialState.Int()
}

func (t *ParseTable) AcceptState() int {
	return t.acceptState.Int()
}

// IsAccept reports whether a parser in the state accepts the input on the symbol.
func (t *ParseTable) IsAccept(state int, sym symbol.Symbol) bool {
	return state == t.acceptState.Int() && sym.IsEOF()
}

func (t *ParseTable) StateCount() int {
	return len(t.rows)
}

// Conflicts returns the overwritten entries. It is empty unless conflict detection was enabled.
func (t *ParseTable) Conflicts() []*Conflict {
	return t.conflicts
}

// Production returns the LHS and the length of the RHS a reduce by the production pops. The length
// of a production deriving the empty string is 0.
func (t *ParseTable) Production(num int) (symbol.Symbol, int, bool) {
	prod, ok := t.grammar.productionSet.findByNum(productionNum(num))
	if !ok {
		return symbol.SymbolNil, 0, false
	}
	if prod.isEmpty() {
		return prod.lhs, 0, true
	}
	return prod.lhs, prod.rhsLen, true
}

func (t *ParseTable) Grammar() *Grammar {
	return t.grammar
}

func (t *ParseTable) Analysis() *Analysis {
	return t.analysis
}

// StateItems returns the items of a state in the `A → α ・ β, a` notation, in closure order.
func (t *ParseTable) StateItems(state int) ([]string, bool) {
	if state < 0 || state >= len(t.automaton.states) {
		return nil, false
	}
	symTab := t.grammar.symbolTable.Reader()
	s := t.automaton.states[state]
	items := make([]string, len(s.items))
	for i, item := range s.items {
		items[i] = item.format(symTab)
	}
	return items, true
}

// CompiledGrammar converts the table to its portable form.
func (t *ParseTable) CompiledGrammar() (*gspec.CompiledGrammar, error) {
	symTab := t.grammar.symbolTable.Reader()

	var prods []*gspec.Production
	for _, p := range t.grammar.productionSet.getAllProductions() {
		lhs, ok := symTab.ToText(p.lhs)
		if !ok {
			return nil, fmt.Errorf("%w: %v", symbol.ErrSymbolNotFound, p.lhs)
		}
		prod := &gspec.Production{
			LHS: lhs,
			RHS: []string{},
		}
		if !p.isEmpty() {
			for _, sym := range p.rhs {
				text, ok := symTab.ToText(sym)
				if !ok {
					return nil, fmt.Errorf("%w: %v", symbol.ErrSymbolNotFound, sym)
				}
				prod.RHS = append(prod.RHS, text)
			}
			prod.RHSLen = p.rhsLen
		}
		prods = append(prods, prod)
	}

	var entries []*gspec.Entry
	for state, row := range t.rows {
		for _, sym := range sortedKeys(row) {
			tran := row[sym]
			text, ok := symTab.ToText(sym)
			if !ok {
				return nil, fmt.Errorf("%w: %v", symbol.ErrSymbolNotFound, sym)
			}
			entries = append(entries, &gspec.Entry{
				State:  state,
				Symbol: text,
				Action: gspec.Action(tran.Type),
				Target: tran.Target,
			})
		}
	}

	return &gspec.CompiledGrammar{
		Name: t.grammar.name,
		ParsingTable: &gspec.ParsingTable{
			Terminals:    symTab.TerminalTexts(),
			NonTerminals: symTab.NonTerminalTexts(),
			Productions:  prods,
			StateCount:   len(t.rows),
			InitialState: t.initialState.Int(),
			AcceptState:  t.acceptState.Int(),
			EOFSymbol:    symbol.NameEOF,
			Entries:      entries,
		},
	}, nil
}

func sortedKeys(row map[symbol.Symbol]Transition) []symbol.Symbol {
	set := symbolSet{}
	for sym := range row {
		set.add(sym)
	}
	return set.sorted()
}

type lrTableBuilder struct {
	automaton       *lr1Automaton
	prods           *productionSet
	symTab          *symbol.SymbolTableReader
	detectConflicts bool
	logger          *zap.Logger

	conflicts []*Conflict
}

// build writes the entries of every state in a fixed order: first the reduces of the ended items in
// closure order, and then the shifts and gotos in ascending symbol order. A later write replaces an
// earlier one on the same cell, so a shift wins over a reduce, and of two reduces the one coming
// later in closure order wins.
func (b *lrTableBuilder) build() (*ParseTable, error) {
	tab := &ParseTable{
		rows:         make([]map[symbol.Symbol]Transition, len(b.automaton.states)),
		initialState: b.automaton.initialState,
		acceptState:  b.automaton.acceptState,
		automaton:    b.automaton,
	}
	for _, state := range b.automaton.states {
		tab.rows[state.num] = map[symbol.Symbol]Transition{}

		for _, item := range state.reducible {
			b.write(tab, state.num, item.lookAhead, Transition{
				Type:   TransitionTypeReduce,
				Target: item.prod.num.Int(),
			})
		}

		for _, sym := range state.nextSyms {
			if sym.IsAugmentedStart() {
				continue
			}
			typ := TransitionTypeGoTo
			if sym.IsTerminal() {
				typ = TransitionTypeShift
			}
			b.write(tab, state.num, sym, Transition{
				Type:   typ,
				Target: state.next[sym].Int(),
			})
		}
	}
	tab.conflicts = b.conflicts

	return tab, nil
}

func (b *lrTableBuilder) write(tab *ParseTable, state stateNum, sym symbol.Symbol, tran Transition) {
	row := tab.rows[state]
	if old, ok := row[sym]; ok && old != tran && b.detectConflicts {
		text, _ := b.symTab.ToText(sym)
		c := &Conflict{
			State:       state.Int(),
			Symbol:      text,
			Kind:        conflictKindOf(old, tran),
			Overwritten: old,
			Adopted:     tran,
		}
		b.conflicts = append(b.conflicts, c)
		b.logger.Warn("conflict",
			zap.Int("state", c.State),
			zap.String("symbol", c.Symbol),
			zap.String("kind", string(c.Kind)),
			zap.Stringer("overwritten", c.Overwritten),
			zap.Stringer("adopted", c.Adopted))
	}
	row[sym] = tran
}
