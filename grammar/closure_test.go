package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenLR1Closure(t *testing.T) {
	gram := genTestGrammar(t, `
<E> ::= <E> PLUS <E>
<E> ::= NUM
`)
	genSym := newTestSymbolGenerator(t, gram.SymbolTable())
	genProd := newTestProductionGenerator(t, gram, genSym)
	genItem := newTestLR1ItemGenerator(t, genSym, genProd)
	analysis, err := gram.Analyze()
	require.NoError(t, err)

	items, err := genLR1Closure([]*lrItem{
		genItem("_S", 0, "EOF", "<E>"),
	}, gram.productionSet, analysis)
	require.NoError(t, err)

	expected := []*lrItem{
		genItem("_S", 0, "EOF", "<E>"),
		genItem("<E>", 0, "EOF", "<E>", "PLUS", "<E>"),
		genItem("<E>", 0, "EOF", "NUM"),
		genItem("<E>", 0, "PLUS", "<E>", "PLUS", "<E>"),
		genItem("<E>", 0, "PLUS", "NUM"),
	}
	require.Len(t, items, len(expected))
	for i, item := range items {
		assert.Equal(t, expected[i].id, item.id, "#%v: want: %v, got: %v", i, expected[i].format(gram.SymbolTable()), item.format(gram.SymbolTable()))
	}
}

func TestGenLR1Closure_Idempotent(t *testing.T) {
	gram := genTestGrammar(t, `
<S> ::= <A> <B> c
<A> ::= a <A>
<A> ::= null
<B> ::= <B> b
<B> ::= null
`)
	genSym := newTestSymbolGenerator(t, gram.SymbolTable())
	genProd := newTestProductionGenerator(t, gram, genSym)
	genItem := newTestLR1ItemGenerator(t, genSym, genProd)
	analysis, err := gram.Analyze()
	require.NoError(t, err)

	seed := []*lrItem{
		genItem("_S", 0, "EOF", "<S>"),
	}
	once, err := genLR1Closure(seed, gram.productionSet, analysis)
	require.NoError(t, err)
	twice, err := genLR1Closure(once, gram.productionSet, analysis)
	require.NoError(t, err)
	assert.Equal(t, genStateKey(once), genStateKey(twice))
	assert.Len(t, twice, len(once))

	// The closure does not depend on the order of the seed items.
	reversed := make([]*lrItem, len(once))
	for i, item := range once {
		reversed[len(once)-1-i] = item
	}
	fromReversed, err := genLR1Closure(reversed, gram.productionSet, analysis)
	require.NoError(t, err)
	assert.Equal(t, genStateKey(once), genStateKey(fromReversed))

	for _, item := range once {
		assert.False(t, item.lookAhead.IsNull(), "NULL cannot be a look-ahead: %v", item.format(gram.SymbolTable()))
	}
}

func TestLR1Item(t *testing.T) {
	gram := genTestGrammar(t, `
<S> ::= a <S>
<S> ::= null
`)
	genSym := newTestSymbolGenerator(t, gram.SymbolTable())
	genProd := newTestProductionGenerator(t, gram, genSym)
	genItem := newTestLR1ItemGenerator(t, genSym, genProd)

	item := genItem("<S>", 0, "EOF", "a", "<S>")
	assert.False(t, item.ended)
	assert.Equal(t, genSym("a"), item.dottedSymbol)

	item, err := item.advance()
	require.NoError(t, err)
	item, err = item.advance()
	require.NoError(t, err)
	assert.True(t, item.ended)
	assert.True(t, item.dottedSymbol.IsNil())
	_, err = item.advance()
	assert.Error(t, err)

	empty := genItem("<S>", 0, "EOF", "null")
	assert.True(t, empty.ended)
	assert.Equal(t, "<S> → null ・, EOF", empty.format(gram.SymbolTable()))

	// Items differing only in the look-ahead are different items.
	assert.NotEqual(t, genItem("<S>", 0, "EOF", "a", "<S>").id, genItem("<S>", 0, "a", "a", "<S>").id)

	_, err = newLR1Item(genProd("<S>", "a", "<S>"), 3, genSym("EOF"))
	assert.Error(t, err)
	_, err = newLR1Item(genProd("<S>", "a", "<S>"), 0, genSym("null"))
	assert.Error(t, err)
	_, err = newLR1Item(genProd("<S>", "a", "<S>"), 0, genSym("<S>"))
	assert.Error(t, err)
}
