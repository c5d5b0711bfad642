package generator

import (
	"errors"
	"strings"
	"testing"

	verr "github.com/nihei9/lr1gen/error"
	"github.com/nihei9/lr1gen/grammar"
	"github.com/nihei9/lr1gen/spec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cell struct {
	state  int
	symbol string
}

func TestGenerate(t *testing.T) {
	tests := []struct {
		caption    string
		src        string
		decl       *spec.Declaration
		opts       []Option
		stateCount int
		cells      map[cell]string
	}{
		{
			caption:    "a single production yields three states",
			src:        `<S> ::= A`,
			stateCount: 3,
			cells: map[cell]string{
				{0, "A"}:   "s1",
				{0, "<S>"}: "s2",
				{1, "EOF"}: "r1",
				{2, "EOF"}: "acc",
			},
		},
		{
			caption: "an explicit declaration is used as it is",
			src:     `S ::= A`,
			decl: &spec.Declaration{
				Terminals:    []string{"A", "B"},
				NonTerminals: []string{"S"},
				Start:        "S",
			},
			stateCount: 3,
			cells: map[cell]string{
				{0, "A"}: "s1",
				{0, "B"}: "",
			},
		},
		{
			caption:    "EBNF is expanded before building the grammar",
			src:        `<L> ::= x*`,
			opts:       []Option{EBNF()},
			stateCount: 5,
			cells: map[cell]string{
				{0, "EOF"}: "r3",
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			res, err := Generate(strings.NewReader(tt.src), tt.decl, tt.opts...)
			require.NoError(t, err)
			assert.Equal(t, tt.stateCount, res.Table.StateCount())
			assert.Nil(t, res.Report)

			pt := res.Compiled.ParsingTable
			for c, expected := range tt.cells {
				assert.Equal(t, expected, pt.Cell(c.state, c.symbol), "state %v on %v", c.state, c.symbol)
			}
		})
	}
}

func TestGenerate_Options(t *testing.T) {
	res, err := Generate(strings.NewReader(`
<E> ::= <E> PLUS <E>
<E> ::= NUM
`), nil, WithName("expr"), EnableReporting(), WithCompileOptions(grammar.DetectConflicts()))
	require.NoError(t, err)
	assert.Equal(t, "expr", res.Compiled.Name)
	require.NotNil(t, res.Report)
	assert.Len(t, res.Table.Conflicts(), 1)
	assert.Equal(t, []string{
		"<E> ::= <E> PLUS <E>",
		"<E> ::= NUM",
	}, res.Productions())

	_, err = Generate(strings.NewReader(`
<E> ::= <E> PLUS <E>
<E> ::= NUM
`), nil, WithCompileOptions(grammar.FailOnConflict()))
	var conflictErr *grammar.ConflictError
	assert.True(t, errors.As(err, &conflictErr))
}

func TestGenerate_Errors(t *testing.T) {
	_, err := Generate(strings.NewReader(`<S> ::=`), nil)
	var specErr *verr.SpecError
	assert.True(t, errors.As(err, &specErr), "unexpected error: %v", err)

	_, err = Generate(strings.NewReader(`<S> ::= A`), nil, WithStart("<T>"))
	var specErrs verr.SpecErrors
	assert.True(t, errors.As(err, &specErrs), "unexpected error: %v", err)
}
