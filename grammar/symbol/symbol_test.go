package symbol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSymbol(t *testing.T) {
	tab := NewSymbolTable()
	w := tab.Writer()
	_, _ = w.RegisterNonTerminalSymbol("<E>")
	_, _ = w.RegisterNonTerminalSymbol("<T>")
	_, _ = w.RegisterTerminalSymbol("PLUS")
	_, _ = w.RegisterTerminalSymbol("NUM")
	_, _ = w.RegisterAugmentedStartSymbol()

	nonTermTexts := []string{
		"", // Nil
		NameAugmentedStart,
		"<E>",
		"<T>",
	}

	termTexts := []string{
		"",       // Nil
		NameEOF,  // EOF
		NameNull, // NULL
		"PLUS",
		"NUM",
	}

	tests := []struct {
		text             string
		isAugmentedStart bool
		isEOF            bool
		isNull           bool
		isNonTerminal    bool
		isTerminal       bool
	}{
		{
			text:             NameAugmentedStart,
			isAugmentedStart: true,
			isNonTerminal:    true,
		},
		{
			text:          "<E>",
			isNonTerminal: true,
		},
		{
			text:          "<T>",
			isNonTerminal: true,
		},
		{
			text:       "PLUS",
			isTerminal: true,
		},
		{
			text:       "NUM",
			isTerminal: true,
		},
		{
			text:       NameEOF,
			isEOF:      true,
			isTerminal: true,
		},
		{
			text:       NameNull,
			isNull:     true,
			isTerminal: true,
		},
		{
			text:       NameNullAlias,
			isNull:     true,
			isTerminal: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			r := tab.Reader()
			sym, ok := r.ToSymbol(tt.text)
			require.True(t, ok, "symbol was not found")
			assert.False(t, sym.IsNil())
			assert.Equal(t, tt.isAugmentedStart, sym.IsAugmentedStart())
			assert.Equal(t, tt.isEOF, sym.IsEOF())
			assert.Equal(t, tt.isNull, sym.IsNull())
			assert.Equal(t, tt.isNonTerminal, sym.IsNonTerminal())
			assert.Equal(t, tt.isTerminal, sym.IsTerminal())
			assert.Equal(t, tt.isAugmentedStart || tt.isEOF || tt.isNull, sym.IsReserved())

			text, ok := r.ToText(sym)
			require.True(t, ok, "text was not found")
			if tt.text == NameNullAlias {
				assert.Equal(t, NameNull, text)
			} else {
				assert.Equal(t, tt.text, text)
			}
		})
	}

	t.Run("texts", func(t *testing.T) {
		r := tab.Reader()
		assert.Equal(t, nonTermTexts, r.NonTerminalTexts())
		assert.Equal(t, termTexts, r.TerminalTexts())
		assert.Equal(t, len(termTexts), r.TerminalCount())
		assert.Equal(t, len(nonTermTexts), r.NonTerminalCount())
	})

	t.Run("symbols are sorted by number", func(t *testing.T) {
		r := tab.Reader()
		terms := r.TerminalSymbols()
		require.Len(t, terms, 4)
		assert.Equal(t, SymbolEOF, terms[0])
		assert.Equal(t, SymbolNull, terms[1])
		nonTerms := r.NonTerminalSymbols()
		require.Len(t, nonTerms, 3)
		assert.True(t, nonTerms[0].IsAugmentedStart())
	})
}

func TestSymbolTable_Registration(t *testing.T) {
	tests := []struct {
		caption  string
		register func(w *SymbolTableWriter) error
		err      error
	}{
		{
			caption: "a terminal can be registered twice",
			register: func(w *SymbolTableWriter) error {
				a1, err := w.RegisterTerminalSymbol("a")
				if err != nil {
					return err
				}
				a2, err := w.RegisterTerminalSymbol("a")
				if err != nil {
					return err
				}
				if a1 != a2 {
					t.Fatalf("registering the same name twice minted two symbols: %v, %v", a1, a2)
				}
				return nil
			},
		},
		{
			caption: "a terminal cannot use the name of the NULL marker",
			register: func(w *SymbolTableWriter) error {
				_, err := w.RegisterTerminalSymbol(NameNull)
				return err
			},
			err: ErrReservedName,
		},
		{
			caption: "a terminal cannot use the alias of the NULL marker",
			register: func(w *SymbolTableWriter) error {
				_, err := w.RegisterTerminalSymbol(NameNullAlias)
				return err
			},
			err: ErrReservedName,
		},
		{
			caption: "a terminal cannot use the name of the END marker",
			register: func(w *SymbolTableWriter) error {
				_, err := w.RegisterTerminalSymbol(NameEOF)
				return err
			},
			err: ErrReservedName,
		},
		{
			caption: "a non-terminal cannot use the name of the augmented start symbol",
			register: func(w *SymbolTableWriter) error {
				_, err := w.RegisterNonTerminalSymbol(NameAugmentedStart)
				return err
			},
			err: ErrReservedName,
		},
		{
			caption: "a name cannot be a terminal and a non-terminal",
			register: func(w *SymbolTableWriter) error {
				_, err := w.RegisterTerminalSymbol("a")
				if err != nil {
					return err
				}
				_, err = w.RegisterNonTerminalSymbol("a")
				return err
			},
			err: ErrDuplicateName,
		},
		{
			caption: "the augmented start symbol can be registered only once",
			register: func(w *SymbolTableWriter) error {
				_, err := w.RegisterAugmentedStartSymbol()
				if err != nil {
					return err
				}
				_, err = w.RegisterAugmentedStartSymbol()
				return err
			},
			err: ErrAugmentedStartRegistered,
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			err := tt.register(NewSymbolTable().Writer())
			if tt.err == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestSymbolTableReader_Lookup(t *testing.T) {
	tab := NewSymbolTable()
	w := tab.Writer()
	_, _ = w.RegisterTerminalSymbol("a")
	_, _ = w.RegisterNonTerminalSymbol("<A>")
	r := tab.Reader()

	_, err := r.Terminal("a")
	assert.NoError(t, err)
	_, err = r.NonTerminal("<A>")
	assert.NoError(t, err)

	_, err = r.Terminal("<A>")
	assert.ErrorIs(t, err, ErrSymbolNotFound)
	_, err = r.NonTerminal("a")
	assert.ErrorIs(t, err, ErrSymbolNotFound)
	_, err = r.Terminal("b")
	assert.ErrorIs(t, err, ErrSymbolNotFound)

	_, ok := r.AugmentedStartSymbol()
	assert.False(t, ok)
}

func TestSymbol_Less(t *testing.T) {
	tab := NewSymbolTable()
	w := tab.Writer()
	e, err := w.RegisterNonTerminalSymbol("<E>")
	require.NoError(t, err)
	plus, err := w.RegisterTerminalSymbol("PLUS")
	require.NoError(t, err)
	num, err := w.RegisterTerminalSymbol("NUM")
	require.NoError(t, err)
	start, err := w.RegisterAugmentedStartSymbol()
	require.NoError(t, err)

	// The terminal bit is the highest bit, so comparing the raw values would put every
	// non-terminal first.
	ordered := []Symbol{SymbolEOF, SymbolNull, plus, num, start, e}
	for i, s := range ordered {
		for j, u := range ordered {
			assert.Equal(t, i < j, s.Less(u), "%v < %v", s, u)
		}
	}
}
