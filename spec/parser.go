package spec

import (
	"bytes"
	"io"
	"strings"

	verr "github.com/nihei9/lr1gen/error"
	"golang.org/x/text/unicode/norm"
)

const (
	nullName      = "null"
	nullAliasName = "ε"
)

// IsNullName reports whether a token denotes an empty right-hand side.
func IsNullName(text string) bool {
	return text == nullName || text == nullAliasName
}

type RootNode struct {
	Productions []*ProductionNode

	// Generated lists the non-terminals an EBNF expansion introduced, in the order they were created.
	Generated []string
}

type ProductionNode struct {
	LHS *SymbolNode
	RHS []*SymbolNode
	Pos Position
}

// IsEmpty reports whether the production derives the empty string, that is, its right-hand side is
// just `null` or `ε`.
func (n *ProductionNode) IsEmpty() bool {
	return len(n.RHS) == 1 && IsNullName(n.RHS[0].Name)
}

func (n *ProductionNode) String() string {
	var b strings.Builder
	b.WriteString(n.LHS.Name)
	b.WriteString(" ::=")
	for _, sym := range n.RHS {
		b.WriteString(" ")
		b.WriteString(sym.Name)
	}
	return b.String()
}

type SymbolNode struct {
	Name string
	Pos  Position
}

func raiseSyntaxError(synErr *SyntaxError, detail string, pos Position) {
	panic(&verr.SpecError{
		Cause:  synErr,
		Detail: detail,
		Row:    pos.Row,
		Col:    pos.Col,
	})
}

// normalize converts a source text to NFC so that visually identical symbol names written with
// different code point sequences denote the same symbol.
func normalize(src io.Reader) (io.Reader, error) {
	b, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(norm.NFC.Bytes(b)), nil
}

// Parse reads a line-oriented grammar description. Each non-blank line that is not a `//` comment
// holds one production `LHS ::= SYM1 SYM2 ... SYMn`.
func Parse(src io.Reader) (*RootNode, error) {
	p, err := newParser(src, lexModePlain)
	if err != nil {
		return nil, err
	}
	return p.parse()
}

// ParseProduction parses a single production such as `<E> ::= <T> PLUS <E>`.
func ParseProduction(src string) (*ProductionNode, error) {
	root, err := Parse(strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	if len(root.Productions) != 1 {
		return nil, &verr.SpecError{
			Cause:  synErrTooManyProductions,
			Detail: src,
		}
	}
	return root.Productions[0], nil
}

type parser struct {
	lex       *lexer
	peekedTok *token
	lastTok   *token
}

func newParser(src io.Reader, mode lexMode) (*parser, error) {
	src, err := normalize(src)
	if err != nil {
		return nil, err
	}
	lex, err := newLexer(src, mode)
	if err != nil {
		return nil, err
	}
	return &parser{
		lex: lex,
	}, nil
}

func (p *parser) parse() (root *RootNode, retErr error) {
	defer func() {
		err := recover()
		if err != nil {
			specErr, ok := err.(*verr.SpecError)
			if !ok {
				panic(err)
			}
			retErr = specErr
			return
		}
	}()
	return p.parseRoot(), nil
}

func (p *parser) parseRoot() *RootNode {
	root := &RootNode{}
	for {
		prod := p.parseProduction()
		if prod == nil {
			break
		}
		root.Productions = append(root.Productions, prod)
	}
	if len(root.Productions) == 0 {
		raiseSyntaxError(synErrNoProduction, "", p.lastPos())
	}
	return root
}

// parseProduction reads the next non-blank line. It returns nil at the end of the input.
func (p *parser) parseProduction() *ProductionNode {
	for p.consume(tokenKindNewline) {
	}
	if p.consume(tokenKindEOF) {
		return nil
	}

	var lhs []*token
	var rhs []*token
	var derives *token
	first := p.peek()
	for {
		tok := p.read()
		switch tok.kind {
		case tokenKindNewline, tokenKindEOF:
			p.peekedTok = tok
			return p.genProduction(first, lhs, derives, rhs)
		case tokenKindDerives:
			if derives != nil {
				raiseSyntaxError(synErrMultipleDerives, "", tok.pos)
			}
			derives = tok
		case tokenKindSymbol:
			if derives == nil {
				lhs = append(lhs, tok)
			} else {
				rhs = append(rhs, tok)
			}
		default:
			raiseSyntaxError(synErrUnexpectedToken, tok.text, tok.pos)
		}
	}
}

func (p *parser) genProduction(first *token, lhs []*token, derives *token, rhs []*token) *ProductionNode {
	if derives == nil {
		raiseSyntaxError(synErrNoDerives, "", first.pos)
	}
	if len(lhs) == 0 {
		raiseSyntaxError(synErrNoLHS, "", derives.pos)
	}
	if len(lhs) > 1 {
		raiseSyntaxError(synErrMultiSymbolLHS, lhs[1].text, lhs[1].pos)
	}
	if len(rhs) == 0 {
		raiseSyntaxError(synErrEmptyRHS, "", derives.pos)
	}
	if len(rhs) > 1 {
		for _, tok := range rhs {
			if IsNullName(tok.text) {
				raiseSyntaxError(synErrNullMustStandAlone, tok.text, tok.pos)
			}
		}
	}

	prod := &ProductionNode{
		LHS: &SymbolNode{
			Name: lhs[0].text,
			Pos:  lhs[0].pos,
		},
		Pos: lhs[0].pos,
	}
	for _, tok := range rhs {
		prod.RHS = append(prod.RHS, &SymbolNode{
			Name: tok.text,
			Pos:  tok.pos,
		})
	}
	return prod
}

func (p *parser) peek() *token {
	tok := p.read()
	p.peekedTok = tok
	return tok
}

func (p *parser) read() *token {
	var tok *token
	if p.peekedTok != nil {
		tok = p.peekedTok
		p.peekedTok = nil
	} else {
		var err error
		tok, err = p.lex.next()
		if err != nil {
			panic(&verr.SpecError{
				Cause: err,
			})
		}
	}
	if tok.kind == tokenKindInvalid {
		raiseSyntaxError(synErrInvalidToken, tok.text, tok.pos)
	}
	p.lastTok = tok
	return tok
}

func (p *parser) consume(expected tokenKind) bool {
	tok := p.read()
	if tok.kind == expected {
		return true
	}
	p.peekedTok = tok
	return false
}

func (p *parser) lastPos() Position {
	if p.lastTok == nil {
		return Position{}
	}
	return p.lastTok.pos
}
