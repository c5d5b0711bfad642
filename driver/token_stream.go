package driver

import (
	"fmt"
	"io"
	"strings"
	"sync"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
)

type VToken interface {
	// Terminal returns the name of the terminal the token stands for. It is empty for EOF.
	Terminal() string

	Lexeme() []byte
	EOF() bool

	// Invalid reports whether the token names no terminal of the grammar.
	Invalid() bool

	// Position returns the 1-based row and column of the token.
	Position() (int, int)
}

type TokenStream interface {
	Next() (VToken, error)
}

type vToken struct {
	terminal string
	invalid  bool
	tok      *mldriver.Token
}

func (t *vToken) Terminal() string {
	return t.terminal
}

func (t *vToken) Lexeme() []byte {
	return t.tok.Lexeme
}

func (t *vToken) EOF() bool {
	return t.tok.EOF
}

func (t *vToken) Invalid() bool {
	return t.invalid
}

func (t *vToken) Position() (int, int) {
	return t.tok.Row + 1, t.tok.Col + 1
}

var (
	wordLexSpecOnce sync.Once
	wordLexSpec     *mlspec.CompiledLexSpec
	wordLexSpecErr  error
)

// compileWordLexSpec compiles the lexical specification of token sequences: terminal names
// separated by blanks or newlines, with `//` line comments. A comment may follow a name directly.
func compileWordLexSpec() (*mlspec.CompiledLexSpec, error) {
	wordLexSpecOnce.Do(func() {
		ls := &mlspec.LexSpec{
			Name: "lr1gen_tokens",
			Entries: []*mlspec.LexEntry{
				{Kind: mlspec.LexKindName("white_space"), Pattern: mlspec.LexPattern(`[\u{0009}\u{000A}\u{000D}\u{0020}]+`)},
				{Kind: mlspec.LexKindName("line_comment"), Pattern: mlspec.LexPattern(`//[^\u{000A}]*`)},
				{Kind: mlspec.LexKindName("word"), Pattern: mlspec.LexPattern(`([^\u{0009}\u{000A}\u{000D}\u{0020}\u{002F}]|\u{002F}[^\u{0009}\u{000A}\u{000D}\u{0020}\u{002F}])+|\u{002F}`)},
			},
		}
		clspec, err, cErrs := mlcompiler.Compile(ls, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
		if err != nil {
			if len(cErrs) > 0 {
				var b strings.Builder
				for _, cerr := range cErrs {
					fmt.Fprintf(&b, "\n%v: %v", cerr.Kind, cerr.Cause)
				}
				wordLexSpecErr = fmt.Errorf("failed to compile the lexical specification of tokens: %v", b.String())
				return
			}
			wordLexSpecErr = err
			return
		}
		wordLexSpec = clspec
	})
	return wordLexSpec, wordLexSpecErr
}

type tokenStream struct {
	lex   *mldriver.Lexer
	kinds []mlspec.LexKindName
	terms map[string]struct{}
}

// NewTokenStream reads a sequence of terminal names of a grammar. Each name becomes one token whose
// lexeme is the name itself.
func NewTokenStream(gram Grammar, src io.Reader) (TokenStream, error) {
	s, err := compileWordLexSpec()
	if err != nil {
		return nil, err
	}
	lex, err := mldriver.NewLexer(mldriver.NewLexSpec(s), src)
	if err != nil {
		return nil, err
	}

	terms := map[string]struct{}{}
	for _, t := range gram.Terminals() {
		terms[t] = struct{}{}
	}

	return &tokenStream{
		lex:   lex,
		kinds: s.KindNames,
		terms: terms,
	}, nil
}

func (l *tokenStream) Next() (VToken, error) {
	for {
		tok, err := l.lex.Next()
		if err != nil {
			return nil, err
		}
		if tok.EOF {
			return &vToken{
				tok: tok,
			}, nil
		}
		if tok.Invalid {
			return &vToken{
				invalid: true,
				tok:     tok,
			}, nil
		}
		if l.kinds[tok.KindID] != "word" {
			continue
		}

		name := string(tok.Lexeme)
		_, ok := l.terms[name]
		return &vToken{
			terminal: name,
			invalid:  !ok,
			tok:      tok,
		}, nil
	}
}
