package grammar

import (
	"fmt"
	"sort"

	"github.com/nihei9/lr1gen/grammar/symbol"
	"go.uber.org/zap"
)

type stateNum int

const stateNumInitial = stateNum(0)

func (n stateNum) Int() int {
	return int(n)
}

func (n stateNum) String() string {
	return fmt.Sprintf("%v", int(n))
}

type lrState struct {
	key   stateKey
	num   stateNum
	items []*lrItem

	// next maps the symbols following a dot to the states reached over them. nextSyms holds the same
	// symbols in ascending order.
	next     map[symbol.Symbol]stateNum
	nextSyms []symbol.Symbol

	// reducible holds the ended items in closure order.
	reducible []*lrItem
}

type lr1Automaton struct {
	initialState stateNum
	acceptState  stateNum
	hasAccept    bool
	states       []*lrState
	key2Num      map[stateKey]stateNum
}

// genLR1Automaton builds the canonical collection of LR(1) item sets. State 0 is the closure of
// `_S -> ・S, EOF`; each state is expanded in the order it was found, and the states it reaches are
// appended unless a state with the same content key already exists.
func genLR1Automaton(gram *Grammar, analysis *Analysis, logger *zap.Logger, maxStates int) (*lr1Automaton, error) {
	prods := gram.productionSet
	startProds, ok := prods.findByLHS(gram.augmentedStartSymbol)
	if !ok || len(startProds) != 1 {
		return nil, fmt.Errorf("the augmented start symbol must have exactly one production")
	}
	initialItem, err := newLR1Item(startProds[0], 0, symbol.SymbolEOF)
	if err != nil {
		return nil, err
	}

	automaton := &lr1Automaton{
		initialState: stateNumInitial,
		key2Num:      map[stateKey]stateNum{},
	}

	addState := func(seed []*lrItem) (stateNum, error) {
		items, err := genLR1Closure(seed, prods, analysis)
		if err != nil {
			return 0, err
		}
		key := genStateKey(items)
		if num, ok := automaton.key2Num[key]; ok {
			return num, nil
		}
		if maxStates > 0 && len(automaton.states) >= maxStates {
			return 0, fmt.Errorf("%w: %v", semErrTooManyStates, maxStates)
		}
		num := stateNum(len(automaton.states))
		automaton.states = append(automaton.states, &lrState{
			key:   key,
			num:   num,
			items: items,
			next:  map[symbol.Symbol]stateNum{},
		})
		automaton.key2Num[key] = num
		logger.Debug("state found",
			zap.Stringer("state", num),
			zap.Stringer("key", key),
			zap.Int("items", len(items)))
		return num, nil
	}

	if _, err := addState([]*lrItem{initialItem}); err != nil {
		return nil, err
	}

	for i := 0; i < len(automaton.states); i++ {
		state := automaton.states[i]

		groups := map[symbol.Symbol][]*lrItem{}
		for _, item := range state.items {
			if item.ended {
				state.reducible = append(state.reducible, item)
				if item.prod.num == productionNumStart && item.lookAhead.IsEOF() {
					automaton.acceptState = state.num
					automaton.hasAccept = true
				}
				continue
			}
			advanced, err := item.advance()
			if err != nil {
				return nil, err
			}
			if _, ok := groups[item.dottedSymbol]; !ok {
				state.nextSyms = append(state.nextSyms, item.dottedSymbol)
			}
			groups[item.dottedSymbol] = append(groups[item.dottedSymbol], advanced)
		}
		sort.Slice(state.nextSyms, func(i, j int) bool {
			return state.nextSyms[i].Less(state.nextSyms[j])
		})

		for _, sym := range state.nextSyms {
			num, err := addState(groups[sym])
			if err != nil {
				return nil, err
			}
			state.next[sym] = num
		}
	}

	if !automaton.hasAccept {
		return nil, fmt.Errorf("no accept state was found")
	}

	logger.Info("automaton built",
		zap.String("grammar", gram.name),
		zap.Int("states", len(automaton.states)))

	return automaton, nil
}
