package grammar

import (
	"fmt"
	"sort"

	"github.com/nihei9/lr1gen/grammar/symbol"
	gspec "github.com/nihei9/lr1gen/spec/grammar"
)

func (b *lrTableBuilder) genReport(tab *ParseTable, gram *Grammar, analysis *Analysis) (*gspec.Report, error) {
	var terms []*gspec.Terminal
	{
		termSyms := b.symTab.TerminalSymbols()
		terms = make([]*gspec.Terminal, len(termSyms)+1)

		for _, sym := range termSyms {
			name, ok := b.symTab.ToText(sym)
			if !ok {
				return nil, fmt.Errorf("failed to generate terminals: symbol not found: %v", sym)
			}

			terms[sym.Num()] = &gspec.Terminal{
				Number: sym.Num().Int(),
				Name:   name,
			}
		}
	}

	var nonTerms []*gspec.NonTerminal
	{
		nonTermSyms := b.symTab.NonTerminalSymbols()
		nonTerms = make([]*gspec.NonTerminal, len(nonTermSyms)+1)
		for _, sym := range nonTermSyms {
			name, ok := b.symTab.ToText(sym)
			if !ok {
				return nil, fmt.Errorf("failed to generate non-terminals: symbol not found: %v", sym)
			}

			var first []int
			for _, t := range analysis.First(sym) {
				first = append(first, t.Num().Int())
			}

			nonTerms[sym.Num()] = &gspec.NonTerminal{
				Number:   sym.Num().Int(),
				Name:     name,
				Nullable: analysis.Nullable(sym),
				First:    first,
			}
		}
	}

	var prods []*gspec.ReportProduction
	{
		ps := gram.productionSet.getAllProductions()
		prods = make([]*gspec.ReportProduction, len(ps))
		for _, p := range ps {
			rhs := []int{}
			if !p.isEmpty() {
				for _, e := range p.rhs {
					rhs = append(rhs, signedNum(e))
				}
			}

			prods[p.num.Int()] = &gspec.ReportProduction{
				Number: p.num.Int(),
				LHS:    p.lhs.Num().Int(),
				RHS:    rhs,
			}
		}
	}

	var states []*gspec.State
	{
		conflicts := map[int][]*gspec.Conflict{}
		for _, c := range b.conflicts {
			conflicts[c.State] = append(conflicts[c.State], &gspec.Conflict{
				Symbol:      c.Symbol,
				Kind:        string(c.Kind),
				Overwritten: c.Overwritten.String(),
				Adopted:     c.Adopted.String(),
			})
		}

		states = make([]*gspec.State, len(b.automaton.states))
		for _, s := range b.automaton.states {
			items := make([]*gspec.Item, len(s.items))
			for i, item := range s.items {
				items[i] = &gspec.Item{
					Production: item.prod.num.Int(),
					Dot:        item.dot,
					LookAhead:  item.lookAhead.Num().Int(),
				}
			}

			var shift []*gspec.Transition
			var goTo []*gspec.Transition
			var reduce []*gspec.Reduce
			prod2Reduce := map[int]*gspec.Reduce{}
			for _, sym := range sortedKeys(tab.rows[s.num]) {
				tran := tab.rows[s.num][sym]
				switch tran.Type {
				case TransitionTypeShift:
					shift = append(shift, &gspec.Transition{
						Symbol: sym.Num().Int(),
						State:  tran.Target,
					})
				case TransitionTypeGoTo:
					goTo = append(goTo, &gspec.Transition{
						Symbol: sym.Num().Int(),
						State:  tran.Target,
					})
				case TransitionTypeReduce:
					if r, ok := prod2Reduce[tran.Target]; ok {
						r.LookAhead = append(r.LookAhead, sym.Num().Int())
						continue
					}
					r := &gspec.Reduce{
						LookAhead:  []int{sym.Num().Int()},
						Production: tran.Target,
					}
					prod2Reduce[tran.Target] = r
					reduce = append(reduce, r)
				}
			}
			sort.Slice(reduce, func(i, j int) bool {
				return reduce[i].Production < reduce[j].Production
			})

			states[s.num] = &gspec.State{
				Number:    s.num.Int(),
				Items:     items,
				Shift:     shift,
				Reduce:    reduce,
				GoTo:      goTo,
				Accept:    s.num == tab.acceptState,
				Conflicts: conflicts[s.num.Int()],
			}
		}
	}

	return &gspec.Report{
		Terminals:    terms,
		NonTerminals: nonTerms,
		Productions:  prods,
		States:       states,
		AcceptState:  tab.acceptState.Int(),
	}, nil
}

// signedNum encodes a symbol for a report: a terminal as its number and a non-terminal as its
// negated number.
func signedNum(sym symbol.Symbol) int {
	if sym.IsTerminal() {
		return sym.Num().Int()
	}
	return sym.Num().Int() * -1
}
