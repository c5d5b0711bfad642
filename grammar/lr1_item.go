package grammar

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"

	"github.com/nihei9/lr1gen/grammar/symbol"
)

type lrItemID [32]byte

func (id lrItemID) String() string {
	return fmt.Sprintf("%x", id.num())
}

func (id lrItemID) num() uint32 {
	return binary.LittleEndian.Uint32(id[:])
}

type lrItem struct {
	id   lrItemID
	prod *production

	// E → E + T
	//
	// Dot | Dotted Symbol | Item
	// ----+---------------+------------
	// 0   | E             | E →・E + T
	// 1   | +             | E → E・+ T
	// 2   | T             | E → E +・T
	// 3   | Nil           | E → E + T・
	dot          int
	dottedSymbol symbol.Symbol

	lookAhead symbol.Symbol

	// When ended is true, the item looks like E → E + T・ or E → ・ε and reduces its production.
	ended bool
}

func newLR1Item(prod *production, dot int, lookAhead symbol.Symbol) (*lrItem, error) {
	if prod == nil {
		return nil, fmt.Errorf("production must be non-nil")
	}

	if dot < 0 || dot > prod.rhsLen {
		return nil, fmt.Errorf("dot must be between 0 and %v", prod.rhsLen)
	}

	if !lookAhead.IsTerminal() || lookAhead.IsNull() {
		return nil, fmt.Errorf("a look-ahead symbol must be a terminal other than NULL: %v", lookAhead)
	}

	var id lrItemID
	{
		b := []byte{}
		b = append(b, prod.id[:]...)
		bDot := make([]byte, 8)
		binary.LittleEndian.PutUint64(bDot, uint64(dot))
		b = append(b, bDot...)
		b = append(b, lookAhead.Byte()...)
		id = sha256.Sum256(b)
	}

	ended := dot == prod.rhsLen || prod.isEmpty()

	dottedSymbol := symbol.SymbolNil
	if !ended {
		dottedSymbol = prod.rhs[dot]
	}

	return &lrItem{
		id:           id,
		prod:         prod,
		dot:          dot,
		dottedSymbol: dottedSymbol,
		lookAhead:    lookAhead,
		ended:        ended,
	}, nil
}

// advance returns the item whose dot is moved over the dotted symbol.
func (i *lrItem) advance() (*lrItem, error) {
	if i.ended {
		return nil, fmt.Errorf("an ended item cannot be advanced")
	}
	return newLR1Item(i.prod, i.dot+1, i.lookAhead)
}

// rest returns the symbols following the dotted symbol.
func (i *lrItem) rest() []symbol.Symbol {
	if i.ended {
		return nil
	}
	return i.prod.rhs[i.dot+1:]
}

func (i *lrItem) format(symTab *symbol.SymbolTableReader) string {
	var b strings.Builder
	lhs, _ := symTab.ToText(i.prod.lhs)
	fmt.Fprintf(&b, "%v →", lhs)
	for n, sym := range i.prod.rhs {
		if n == i.dot && !i.prod.isEmpty() {
			b.WriteString(" ・")
		}
		text, _ := symTab.ToText(sym)
		fmt.Fprintf(&b, " %v", text)
	}
	if i.ended {
		b.WriteString(" ・")
	}
	la, _ := symTab.ToText(i.lookAhead)
	fmt.Fprintf(&b, ", %v", la)
	return b.String()
}

// stateKey identifies a state by its content. Two item sets holding the same items have the same key
// whatever order the items were found in.
type stateKey [32]byte

func (k stateKey) String() string {
	return fmt.Sprintf("%x", binary.LittleEndian.Uint32(k[:]))
}

func genStateKey(items []*lrItem) stateKey {
	ids := make([]lrItemID, len(items))
	for i, item := range items {
		ids[i] = item.id
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})

	b := make([]byte, 0, len(ids)*len(lrItemID{}))
	for _, id := range ids {
		b = append(b, id[:]...)
	}
	return stateKey(sha256.Sum256(b))
}
