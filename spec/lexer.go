package spec

import (
	"fmt"
	"io"
	"strings"
	"sync"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
)

type tokenKind string

const (
	tokenKindSymbol   = tokenKind("symbol")
	tokenKindDerives  = tokenKind("::=")
	tokenKindOr       = tokenKind("|")
	tokenKindLParen   = tokenKind("(")
	tokenKindRParen   = tokenKind(")")
	tokenKindStar     = tokenKind("*")
	tokenKindPlus     = tokenKind("+")
	tokenKindQuestion = tokenKind("?")
	tokenKindNewline  = tokenKind("newline")
	tokenKindEOF      = tokenKind("eof")
	tokenKindInvalid  = tokenKind("invalid")
)

type Position struct {
	Row int
	Col int
}

func newPosition(row, col int) Position {
	return Position{
		Row: row,
		Col: col,
	}
}

type token struct {
	kind tokenKind
	text string
	pos  Position
}

func newSymbolToken(text string, pos Position) *token {
	return &token{
		kind: tokenKindSymbol,
		text: text,
		pos:  pos,
	}
}

func newOperatorToken(kind tokenKind, pos Position) *token {
	return &token{
		kind: kind,
		text: string(kind),
		pos:  pos,
	}
}

func newEOFToken(pos Position) *token {
	return &token{
		kind: tokenKindEOF,
		pos:  pos,
	}
}

func newInvalidToken(text string, pos Position) *token {
	return &token{
		kind: tokenKindInvalid,
		text: text,
		pos:  pos,
	}
}

type lexMode int

const (
	// lexModePlain reads `LHS ::= SYM...` lines. Only `::=` is an operator, so symbol names may
	// contain any character except blanks and colons. A name contains no `//` and does not end with
	// `/`, so a comment needs no blank before it.
	lexModePlain lexMode = iota

	// lexModeEBNF additionally treats `|`, `(`, `)`, `*`, `+`, and `?` as operators.
	lexModeEBNF
)

const (
	patWhiteSpace  = `[\u{0009}\u{0020}]+`
	patNewline     = `\u{000A}|\u{000D}\u{000A}`
	patLineComment = `//[^\u{000A}]*`
	patDerives     = `::=`

	// \u{002F} is a slash and \u{003A} is a colon. A slash is either a whole name or followed by
	// another character of the name.
	patPlainSymbol = `([^\u{0009}\u{000A}\u{000D}\u{0020}\u{002F}\u{003A}]|\u{002F}[^\u{0009}\u{000A}\u{000D}\u{0020}\u{002F}\u{003A}])+|\u{002F}`

	// \u{0028} (, \u{0029} ), \u{002A} *, \u{002B} +, \u{003F} ?, \u{007C} |
	patEBNFSymbol = `([^\u{0009}\u{000A}\u{000D}\u{0020}\u{002F}\u{003A}\u{0028}\u{0029}\u{002A}\u{002B}\u{003F}\u{007C}]|\u{002F}[^\u{0009}\u{000A}\u{000D}\u{0020}\u{002F}\u{003A}\u{0028}\u{0029}\u{002A}\u{002B}\u{003F}\u{007C}])+|\u{002F}`
)

func genLexSpec(mode lexMode) *mlspec.LexSpec {
	// When two patterns match a lexeme of the same length, the entry defined earlier wins. Thus
	// `line_comment` and `derives` precede `symbol`.
	entries := []*mlspec.LexEntry{
		{Kind: mlspec.LexKindName("white_space"), Pattern: mlspec.LexPattern(patWhiteSpace)},
		{Kind: mlspec.LexKindName("newline"), Pattern: mlspec.LexPattern(patNewline)},
		{Kind: mlspec.LexKindName("line_comment"), Pattern: mlspec.LexPattern(patLineComment)},
		{Kind: mlspec.LexKindName("derives"), Pattern: mlspec.LexPattern(patDerives)},
	}
	name := "lr1gen_plain"
	symPat := patPlainSymbol
	if mode == lexModeEBNF {
		name = "lr1gen_ebnf"
		symPat = patEBNFSymbol
		entries = append(entries,
			&mlspec.LexEntry{Kind: mlspec.LexKindName("or"), Pattern: mlspec.LexPattern(`\u{007C}`)},
			&mlspec.LexEntry{Kind: mlspec.LexKindName("l_paren"), Pattern: mlspec.LexPattern(`\u{0028}`)},
			&mlspec.LexEntry{Kind: mlspec.LexKindName("r_paren"), Pattern: mlspec.LexPattern(`\u{0029}`)},
			&mlspec.LexEntry{Kind: mlspec.LexKindName("star"), Pattern: mlspec.LexPattern(`\u{002A}`)},
			&mlspec.LexEntry{Kind: mlspec.LexKindName("plus"), Pattern: mlspec.LexPattern(`\u{002B}`)},
			&mlspec.LexEntry{Kind: mlspec.LexKindName("question"), Pattern: mlspec.LexPattern(`\u{003F}`)},
		)
	}
	entries = append(entries, &mlspec.LexEntry{
		Kind:    mlspec.LexKindName("symbol"),
		Pattern: mlspec.LexPattern(symPat),
	})

	return &mlspec.LexSpec{
		Name:    name,
		Entries: entries,
	}
}

// compiledLexSpec compiles a lexical specification on first use. The result is never modified
// afterwards, so every lexer shares it.
type compiledLexSpec struct {
	mode lexMode
	once sync.Once
	spec *mlspec.CompiledLexSpec
	err  error
}

func (c *compiledLexSpec) get() (*mlspec.CompiledLexSpec, error) {
	c.once.Do(func() {
		clspec, err, cErrs := mlcompiler.Compile(genLexSpec(c.mode), mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
		if err != nil {
			if len(cErrs) > 0 {
				var b strings.Builder
				for i, cerr := range cErrs {
					if i > 0 {
						fmt.Fprintf(&b, "\n")
					}
					fmt.Fprintf(&b, "%v: %v", cerr.Kind, cerr.Cause)
					if cerr.Detail != "" {
						fmt.Fprintf(&b, ": %v", cerr.Detail)
					}
				}
				c.err = fmt.Errorf("failed to compile the lexical specification: %v", b.String())
				return
			}
			c.err = err
			return
		}
		c.spec = clspec
	})
	return c.spec, c.err
}

var (
	plainLexSpec = &compiledLexSpec{mode: lexModePlain}
	ebnfLexSpec  = &compiledLexSpec{mode: lexModeEBNF}
)

type lexer struct {
	s    *mlspec.CompiledLexSpec
	d    *mldriver.Lexer
	mode lexMode
}

func newLexer(src io.Reader, mode lexMode) (*lexer, error) {
	cs := plainLexSpec
	if mode == lexModeEBNF {
		cs = ebnfLexSpec
	}
	s, err := cs.get()
	if err != nil {
		return nil, err
	}
	d, err := mldriver.NewLexer(mldriver.NewLexSpec(s), src)
	if err != nil {
		return nil, err
	}
	return &lexer{
		s:    s,
		d:    d,
		mode: mode,
	}, nil
}

// next returns the next token skipping white spaces and comments. Newlines are returned because
// the plain format is line-oriented.
func (l *lexer) next() (*token, error) {
	var tok *mldriver.Token
	for {
		var err error
		tok, err = l.d.Next()
		if err != nil {
			return nil, err
		}
		pos := newPosition(tok.Row+1, tok.Col+1)
		if tok.Invalid {
			return newInvalidToken(invalidText(tok.Lexeme), pos), nil
		}
		if tok.EOF {
			return newEOFToken(pos), nil
		}
		switch l.s.KindNames[tok.KindID] {
		case "white_space":
			continue
		case "line_comment":
			continue
		}

		break
	}

	pos := newPosition(tok.Row+1, tok.Col+1)
	switch l.s.KindNames[tok.KindID] {
	case "newline":
		return newOperatorToken(tokenKindNewline, pos), nil
	case "derives":
		return newOperatorToken(tokenKindDerives, pos), nil
	case "symbol":
		return newSymbolToken(string(tok.Lexeme), pos), nil
	case "or":
		return newOperatorToken(tokenKindOr, pos), nil
	case "l_paren":
		return newOperatorToken(tokenKindLParen, pos), nil
	case "r_paren":
		return newOperatorToken(tokenKindRParen, pos), nil
	case "star":
		return newOperatorToken(tokenKindStar, pos), nil
	case "plus":
		return newOperatorToken(tokenKindPlus, pos), nil
	case "question":
		return newOperatorToken(tokenKindQuestion, pos), nil
	default:
		return newInvalidToken(invalidText(tok.Lexeme), pos), nil
	}
}

// invalidText drops the blanks maleeni joins to an invalid lexeme.
func invalidText(lexeme []byte) string {
	return strings.TrimRight(string(lexeme), " \t\r\n")
}
