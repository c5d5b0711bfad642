package grammar

import (
	"fmt"
	"sort"

	"github.com/nihei9/lr1gen/grammar/symbol"
)

type symbolSet map[symbol.Symbol]struct{}

func (s symbolSet) add(sym symbol.Symbol) bool {
	if _, ok := s[sym]; ok {
		return false
	}
	s[sym] = struct{}{}
	return true
}

func (s symbolSet) has(sym symbol.Symbol) bool {
	_, ok := s[sym]
	return ok
}

// sorted returns the members in the order of symbol.Symbol.Less so that callers iterating over a set
// behave the same way on every run.
func (s symbolSet) sorted() []symbol.Symbol {
	syms := make([]symbol.Symbol, 0, len(s))
	for sym := range s {
		syms = append(syms, sym)
	}
	sort.Slice(syms, func(i, j int) bool {
		return syms[i].Less(syms[j])
	})
	return syms
}

// Analysis holds the nullability and FIRST sets of a grammar. It is computed once and never
// modified afterwards.
type Analysis struct {
	nullable symbolSet
	first    map[symbol.Symbol]symbolSet
	symTab   *symbol.SymbolTableReader
}

// Analyze computes the nullable non-terminals and the FIRST sets of the grammar.
func (g *Grammar) Analyze() (*Analysis, error) {
	nullable := genNullableSet(g.productionSet)
	first, err := genFirstSet(g.productionSet, nullable)
	if err != nil {
		return nil, err
	}
	return &Analysis{
		nullable: nullable,
		first:    first,
		symTab:   g.symbolTable.Reader(),
	}, nil
}

// genNullableSet finds the symbols deriving the empty string. The set starts with NULL and each
// round adds every non-terminal that has a production consisting only of symbols already known
// to be nullable, until a round adds nothing.
func genNullableSet(prods *productionSet) symbolSet {
	nullable := symbolSet{
		symbol.SymbolNull: {},
	}
	for {
		var added []symbol.Symbol
		for _, prod := range prods.getAllProductions() {
			if nullable.has(prod.lhs) {
				continue
			}
			allNullable := true
			for _, sym := range prod.rhs {
				if !nullable.has(sym) {
					allNullable = false
					break
				}
			}
			if allNullable {
				nullable.add(prod.lhs)
				added = append(added, prod.lhs)
			}
		}
		if len(added) == 0 {
			break
		}
	}
	return nullable
}

// genFirstSet computes FIRST of every non-terminal. Each production A -> X1 X2 ... Xk contributes
// the leading terminal directly and records an edge Xi -> A for every non-terminal Xi it can see
// through a nullable prefix. The terminals are then pushed along the edges until nothing changes.
// Finally NULL joins FIRST of every nullable non-terminal, so nullability must be complete
// beforehand.
func genFirstSet(prods *productionSet, nullable symbolSet) (map[symbol.Symbol]symbolSet, error) {
	first := map[symbol.Symbol]symbolSet{}
	deps := map[symbol.Symbol][]symbol.Symbol{}
	depKnown := map[[2]symbol.Symbol]struct{}{}
	for _, prod := range prods.getAllProductions() {
		if _, ok := first[prod.lhs]; !ok {
			first[prod.lhs] = symbolSet{}
		}
		for _, sym := range prod.rhs {
			if sym.IsNull() {
				break
			}
			if sym.IsTerminal() {
				first[prod.lhs].add(sym)
				break
			}
			if !sym.IsNonTerminal() {
				return nil, fmt.Errorf("a production has an invalid symbol: %v", sym)
			}
			edge := [2]symbol.Symbol{sym, prod.lhs}
			if _, ok := depKnown[edge]; !ok {
				depKnown[edge] = struct{}{}
				deps[sym] = append(deps[sym], prod.lhs)
			}
			if !nullable.has(sym) {
				break
			}
		}
	}

	var queue []symbol.Symbol
	queued := symbolSet{}
	for _, prod := range prods.getAllProductions() {
		if len(first[prod.lhs]) > 0 && queued.add(prod.lhs) {
			queue = append(queue, prod.lhs)
		}
	}
	for len(queue) > 0 {
		sym := queue[0]
		queue = queue[1:]
		delete(queued, sym)

		for _, lhs := range deps[sym] {
			changed := false
			for t := range first[sym] {
				if first[lhs].add(t) {
					changed = true
				}
			}
			if changed && queued.add(lhs) {
				queue = append(queue, lhs)
			}
		}
	}

	for sym := range first {
		if nullable.has(sym) {
			first[sym].add(symbol.SymbolNull)
		}
	}

	return first, nil
}

// Nullable reports whether a symbol derives the empty string. NULL is nullable and the other
// terminals are not.
func (a *Analysis) Nullable(sym symbol.Symbol) bool {
	return a.nullable.has(sym)
}

// First returns FIRST of a symbol in ascending order. FIRST of a terminal is the terminal itself,
// and FIRST of a nullable non-terminal includes NULL.
func (a *Analysis) First(sym symbol.Symbol) []symbol.Symbol {
	if sym.IsTerminal() {
		return []symbol.Symbol{sym}
	}
	set, ok := a.first[sym]
	if !ok {
		return nil
	}
	return set.sorted()
}

// NullableByName is Nullable for a symbol given by name.
func (a *Analysis) NullableByName(name string) (bool, error) {
	sym, ok := a.symTab.ToSymbol(name)
	if !ok {
		return false, fmt.Errorf("%w: %v", symbol.ErrSymbolNotFound, name)
	}
	return a.Nullable(sym), nil
}

// FirstByName is First for a symbol given by name, and it returns names.
func (a *Analysis) FirstByName(name string) ([]string, error) {
	sym, ok := a.symTab.ToSymbol(name)
	if !ok {
		return nil, fmt.Errorf("%w: %v", symbol.ErrSymbolNotFound, name)
	}
	return a.texts(a.First(sym)), nil
}

func (a *Analysis) texts(syms []symbol.Symbol) []string {
	texts := make([]string, len(syms))
	for i, sym := range syms {
		texts[i], _ = a.symTab.ToText(sym)
	}
	return texts
}

// headSet computes the lookaheads an item `A -> α · B β, a` gives to the productions of B, that is,
// FIRST(β a) without NULL. The scan over β stops at the first symbol that is not nullable; the
// lookahead a joins only when all of β is nullable.
func (a *Analysis) headSet(beta []symbol.Symbol, lookAhead symbol.Symbol) []symbol.Symbol {
	heads := symbolSet{}
	allNullable := true
	for _, sym := range beta {
		if sym.IsNull() {
			continue
		}
		if sym.IsTerminal() {
			heads.add(sym)
			allNullable = false
			break
		}
		for t := range a.first[sym] {
			if t.IsNull() {
				continue
			}
			heads.add(t)
		}
		if !a.nullable.has(sym) {
			allNullable = false
			break
		}
	}
	if allNullable {
		heads.add(lookAhead)
	}
	return heads.sorted()
}
