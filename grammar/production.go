package grammar

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/nihei9/lr1gen/grammar/symbol"
)

type productionID [32]byte

func (id productionID) String() string {
	return hex.EncodeToString(id[:])
}

func genProductionID(lhs symbol.Symbol, rhs []symbol.Symbol) productionID {
	seq := lhs.Byte()
	for _, sym := range rhs {
		seq = append(seq, sym.Byte()...)
	}
	return productionID(sha256.Sum256(seq))
}

// productionNum is the position of a production in the ordered production list. The augmented start
// production is always the first one.
type productionNum uint16

const productionNumStart = productionNum(0)

func (n productionNum) Int() int {
	return int(n)
}

type production struct {
	id     productionID
	num    productionNum
	lhs    symbol.Symbol
	rhs    []symbol.Symbol
	rhsLen int
}

// newProduction makes a production. An empty right-hand side is stored as the single symbol NULL, and
// NULL cannot be mixed with other symbols.
func newProduction(lhs symbol.Symbol, rhs []symbol.Symbol) (*production, error) {
	if lhs.IsNil() || !lhs.IsNonTerminal() {
		return nil, fmt.Errorf("LHS must be a non-terminal symbol; LHS: %v, RHS: %v", lhs, rhs)
	}
	if len(rhs) == 0 {
		rhs = []symbol.Symbol{symbol.SymbolNull}
	}
	for _, sym := range rhs {
		if sym.IsNil() {
			return nil, fmt.Errorf("a symbol of RHS must be a non-nil symbol; LHS: %v, RHS: %v", lhs, rhs)
		}
		if sym.IsNull() && len(rhs) > 1 {
			return nil, fmt.Errorf("NULL must be the only symbol of RHS; LHS: %v, RHS: %v", lhs, rhs)
		}
	}

	return &production{
		id:     genProductionID(lhs, rhs),
		lhs:    lhs,
		rhs:    rhs,
		rhsLen: len(rhs),
	}, nil
}

func (p *production) equals(q *production) bool {
	return q.id == p.id
}

// isEmpty reports whether the production derives the empty string.
func (p *production) isEmpty() bool {
	return p.rhsLen == 1 && p.rhs[0].IsNull()
}

// productionSet keeps productions in the order they were appended and indexes them by their LHS. The
// index holds each distinct production once; a duplicate keeps its place in the ordered list but the
// first occurrence represents it everywhere else.
type productionSet struct {
	prods     []*production
	lhs2Prods map[symbol.Symbol][]*production
	id2Prod   map[productionID]*production
}

func newProductionSet() *productionSet {
	return &productionSet{
		lhs2Prods: map[symbol.Symbol][]*production{},
		id2Prod:   map[productionID]*production{},
	}
}

// append numbers a production by its position and reports false when the same production is already
// in the set.
func (ps *productionSet) append(prod *production) bool {
	prod.num = productionNum(len(ps.prods))
	ps.prods = append(ps.prods, prod)
	if _, ok := ps.id2Prod[prod.id]; ok {
		return false
	}
	ps.id2Prod[prod.id] = prod
	ps.lhs2Prods[prod.lhs] = append(ps.lhs2Prods[prod.lhs], prod)
	return true
}

func (ps *productionSet) findByID(id productionID) (*production, bool) {
	prod, ok := ps.id2Prod[id]
	return prod, ok
}

func (ps *productionSet) findByNum(num productionNum) (*production, bool) {
	if num.Int() < 0 || num.Int() >= len(ps.prods) {
		return nil, false
	}
	return ps.prods[num], true
}

func (ps *productionSet) findByLHS(lhs symbol.Symbol) ([]*production, bool) {
	if lhs.IsNil() {
		return nil, false
	}

	prods, ok := ps.lhs2Prods[lhs]
	return prods, ok
}

// getAllProductions returns the productions in order, duplicates included.
func (ps *productionSet) getAllProductions() []*production {
	return ps.prods
}

func (ps *productionSet) count() int {
	return len(ps.prods)
}
