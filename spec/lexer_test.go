package spec

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexer_Run(t *testing.T) {
	symTok := func(text string) *token {
		return newSymbolToken(text, Position{})
	}
	opTok := func(kind tokenKind) *token {
		return newOperatorToken(kind, Position{})
	}
	eofTok := func() *token {
		return newEOFToken(Position{})
	}
	invalidTok := func(text string) *token {
		return newInvalidToken(text, Position{})
	}

	tests := []struct {
		caption string
		mode    lexMode
		src     string
		tokens  []*token
	}{
		{
			caption: "the lexer can recognize a production",
			src:     `<E> ::= <T> PLUS <E>`,
			tokens: []*token{
				symTok("<E>"),
				opTok(tokenKindDerives),
				symTok("<T>"),
				symTok("PLUS"),
				symTok("<E>"),
				eofTok(),
			},
		},
		{
			caption: "'::=' needs no surrounding spaces",
			src:     `<A>::=b`,
			tokens: []*token{
				symTok("<A>"),
				opTok(tokenKindDerives),
				symTok("b"),
				eofTok(),
			},
		},
		{
			caption: "the lexer can recognize the epsilon marker",
			src:     `<A> ::= ε`,
			tokens: []*token{
				symTok("<A>"),
				opTok(tokenKindDerives),
				symTok("ε"),
				eofTok(),
			},
		},
		{
			caption: "symbols may contain operator characters of EBNF in the plain mode",
			src:     `<A> ::= + * ( ) | ?`,
			tokens: []*token{
				symTok("<A>"),
				opTok(tokenKindDerives),
				symTok("+"),
				symTok("*"),
				symTok("("),
				symTok(")"),
				symTok("|"),
				symTok("?"),
				eofTok(),
			},
		},
		{
			caption: "the lexer recognizes newlines and ignores line comments",
			src: "// comment\n" +
				"<A> ::= a // trailing comment\r\n" +
				"\n" +
				"<A> ::= b",
			tokens: []*token{
				opTok(tokenKindNewline),
				symTok("<A>"),
				opTok(tokenKindDerives),
				symTok("a"),
				opTok(tokenKindNewline),
				opTok(tokenKindNewline),
				symTok("<A>"),
				opTok(tokenKindDerives),
				symTok("b"),
				eofTok(),
			},
		},
		{
			caption: "a comment may follow a symbol without a blank",
			src:     `<A> ::= B//note`,
			tokens: []*token{
				symTok("<A>"),
				opTok(tokenKindDerives),
				symTok("B"),
				eofTok(),
			},
		},
		{
			caption: "a single slash may appear in a symbol or be a symbol",
			src:     `<A> ::= a/b / /c`,
			tokens: []*token{
				symTok("<A>"),
				opTok(tokenKindDerives),
				symTok("a/b"),
				symTok("/"),
				symTok("/c"),
				eofTok(),
			},
		},
		{
			caption: "a colon alone is an invalid token without the blanks following it",
			src:     `<A> : a`,
			tokens: []*token{
				symTok("<A>"),
				invalidTok(":"),
			},
		},
		{
			caption: "the EBNF mode recognizes operators",
			mode:    lexModeEBNF,
			src:     `<A> ::= (a | b)* c+ d?`,
			tokens: []*token{
				symTok("<A>"),
				opTok(tokenKindDerives),
				opTok(tokenKindLParen),
				symTok("a"),
				opTok(tokenKindOr),
				symTok("b"),
				opTok(tokenKindRParen),
				opTok(tokenKindStar),
				symTok("c"),
				opTok(tokenKindPlus),
				symTok("d"),
				opTok(tokenKindQuestion),
				eofTok(),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.caption, func(t *testing.T) {
			l, err := newLexer(strings.NewReader(tt.src), tt.mode)
			require.NoError(t, err)
			n := 0
			for {
				tok, err := l.next()
				require.NoError(t, err)
				require.Less(t, n, len(tt.tokens), "unexpected token: %+v", tok)
				expected := tt.tokens[n]
				assert.Equal(t, expected.kind, tok.kind)
				assert.Equal(t, expected.text, tok.text)
				n++
				if tok.kind == tokenKindEOF || tok.kind == tokenKindInvalid {
					break
				}
			}
			assert.Equal(t, len(tt.tokens), n)
		})
	}
}

func TestLexer_Position(t *testing.T) {
	l, err := newLexer(strings.NewReader("<A> ::= a\n  <B> ::= b"), lexModePlain)
	require.NoError(t, err)

	var positions []Position
	for {
		tok, err := l.next()
		require.NoError(t, err)
		if tok.kind == tokenKindEOF {
			break
		}
		if tok.kind == tokenKindSymbol {
			positions = append(positions, tok.pos)
		}
	}
	assert.Equal(t, []Position{
		newPosition(1, 1),
		newPosition(1, 9),
		newPosition(2, 3),
		newPosition(2, 11),
	}, positions)
}
