package spec

import (
	"fmt"
	"io"
	"strings"

	verr "github.com/nihei9/lr1gen/error"
)

// Prefixes of the non-terminals an EBNF expansion generates.
const (
	GeneratedKleenePrefix   = "_KLEENE_"
	GeneratedManyPrefix     = "_MANY_"
	GeneratedOptionalPrefix = "_OPT_"
	GeneratedGroupPrefix    = "_GROUP_"
)

type ebnfTerm struct {
	sym   *token
	group [][]*ebnfTerm
	ops   []tokenKind
	pos   Position
}

func (t *ebnfTerm) isNull() bool {
	return t.sym != nil && IsNullName(t.sym.text)
}

type ebnfRule struct {
	lhs  *token
	alts [][]*ebnfTerm
}

// ExpandEBNF reads rules written with the EBNF shorthands `X*`, `X+`, `X?`, `( ... )`, and `|`, and
// rewrites them into plain productions. A rule starts at `LHS ::=` and may span several lines.
//
// The expansion introduces the following non-terminals:
//
//	X*        <_KLEENE_n> ::= X <_KLEENE_n> | null
//	X+        <_MANY_n>   ::= X <_MANY_n> | X
//	X?        <_OPT_n>    ::= X | null
//	( a | b ) <_GROUP_n>  ::= a | b
//
// The productions of the written rules keep their order and precede the generated ones.
func ExpandEBNF(src io.Reader) (*RootNode, error) {
	p, err := newParser(src, lexModeEBNF)
	if err != nil {
		return nil, err
	}
	return p.parseEBNF()
}

func (p *parser) parseEBNF() (root *RootNode, retErr error) {
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

	var toks []*token
	for {
		tok := p.read()
		if tok.kind == tokenKindNewline {
			continue
		}
		toks = append(toks, tok)
		if tok.kind == tokenKindEOF {
			break
		}
	}

	ep := &ebnfParser{
		toks: toks,
	}
	rules := ep.parseRules()
	if len(rules) == 0 {
		raiseSyntaxError(synErrNoProduction, "", toks[len(toks)-1].pos)
	}

	x := &ebnfExpander{}
	return x.expand(rules), nil
}

type ebnfParser struct {
	toks []*token
	pos  int
}

func (p *ebnfParser) peek() *token {
	return p.toks[p.pos]
}

func (p *ebnfParser) peekAt(offset int) *token {
	if p.pos+offset >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+offset]
}

func (p *ebnfParser) next() *token {
	tok := p.toks[p.pos]
	if tok.kind != tokenKindEOF {
		p.pos++
	}
	return tok
}

// atRuleHead reports whether the next two tokens are `LHS ::=`.
func (p *ebnfParser) atRuleHead() bool {
	return p.peek().kind == tokenKindSymbol && p.peekAt(1).kind == tokenKindDerives
}

func (p *ebnfParser) parseRules() []*ebnfRule {
	var rules []*ebnfRule
	for p.peek().kind != tokenKindEOF {
		tok := p.peek()
		switch {
		case p.atRuleHead():
		case tok.kind == tokenKindDerives:
			raiseSyntaxError(synErrNoLHS, "", tok.pos)
		case tok.kind == tokenKindSymbol && p.peekAt(1).kind == tokenKindSymbol:
			raiseSyntaxError(synErrMultiSymbolLHS, p.peekAt(1).text, p.peekAt(1).pos)
		default:
			raiseSyntaxError(synErrNoDerives, tok.text, tok.pos)
		}
		lhs := p.next()
		derives := p.next()
		if strings.HasPrefix(lhs.text, "<_") {
			raiseSyntaxError(synErrReservedGeneratedID, lhs.text, lhs.pos)
		}
		alts := p.parseAlternatives(derives.pos, false)
		rules = append(rules, &ebnfRule{
			lhs:  lhs,
			alts: alts,
		})
	}
	return rules
}

func (p *ebnfParser) parseAlternatives(pos Position, inGroup bool) [][]*ebnfTerm {
	alts := [][]*ebnfTerm{p.parseSequence(pos, inGroup)}
	for p.peek().kind == tokenKindOr {
		or := p.next()
		alts = append(alts, p.parseSequence(or.pos, inGroup))
	}
	return alts
}

func (p *ebnfParser) parseSequence(pos Position, inGroup bool) []*ebnfTerm {
	var seq []*ebnfTerm
	for {
		tok := p.peek()
		var term *ebnfTerm
		switch tok.kind {
		case tokenKindSymbol:
			if !inGroup && p.atRuleHead() {
				break
			}
			p.next()
			if strings.HasPrefix(tok.text, "<_") {
				raiseSyntaxError(synErrReservedGeneratedID, tok.text, tok.pos)
			}
			term = &ebnfTerm{
				sym: tok,
				pos: tok.pos,
			}
		case tokenKindLParen:
			p.next()
			alts := p.parseAlternatives(tok.pos, true)
			if p.peek().kind != tokenKindRParen {
				raiseSyntaxError(synErrUnclosedGroup, "", tok.pos)
			}
			p.next()
			term = &ebnfTerm{
				group: alts,
				pos:   tok.pos,
			}
		case tokenKindStar, tokenKindPlus, tokenKindQuestion:
			raiseSyntaxError(synErrOperatorNoOperand, tok.text, tok.pos)
		case tokenKindDerives:
			raiseSyntaxError(synErrMultipleDerives, "", tok.pos)
		}
		if term == nil {
			break
		}

		for {
			op := p.peek()
			if op.kind != tokenKindStar && op.kind != tokenKindPlus && op.kind != tokenKindQuestion {
				break
			}
			p.next()
			if term.isNull() {
				raiseSyntaxError(synErrNullWithOperator, op.text, op.pos)
			}
			term.ops = append(term.ops, op.kind)
		}
		seq = append(seq, term)
	}

	if len(seq) == 0 {
		raiseSyntaxError(synErrEmptyRHS, "", pos)
	}
	if len(seq) > 1 {
		for _, term := range seq {
			if term.isNull() {
				raiseSyntaxError(synErrNullMustStandAlone, term.sym.text, term.pos)
			}
		}
	}
	return seq
}

type ebnfExpander struct {
	nextID    int
	generated []*ProductionNode
	names     []string
}

func (x *ebnfExpander) expand(rules []*ebnfRule) *RootNode {
	root := &RootNode{}
	for _, rule := range rules {
		lhs := &SymbolNode{
			Name: rule.lhs.text,
			Pos:  rule.lhs.pos,
		}
		for _, alt := range rule.alts {
			root.Productions = append(root.Productions, &ProductionNode{
				LHS: lhs,
				RHS: x.expandSequence(alt),
				Pos: lhs.Pos,
			})
		}
	}
	root.Productions = append(root.Productions, x.generated...)
	root.Generated = x.names
	return root
}

func (x *ebnfExpander) expandSequence(seq []*ebnfTerm) []*SymbolNode {
	var syms []*SymbolNode
	for _, term := range seq {
		syms = append(syms, x.expandTerm(term))
	}
	return syms
}

func (x *ebnfExpander) expandTerm(term *ebnfTerm) *SymbolNode {
	if term.sym != nil && len(term.ops) == 0 {
		return &SymbolNode{
			Name: term.sym.text,
			Pos:  term.pos,
		}
	}

	var body [][]*SymbolNode
	if term.sym != nil {
		body = [][]*SymbolNode{
			{
				{Name: term.sym.text, Pos: term.pos},
			},
		}
	} else {
		for _, alt := range term.group {
			body = append(body, x.expandSequence(alt))
		}
		// A single-alternative group under an operator needs no group non-terminal of its own.
		if len(term.ops) == 0 || len(body) > 1 {
			sym := x.newNonTerminal(GeneratedGroupPrefix, term.pos)
			for _, rhs := range body {
				x.addProduction(sym, rhs)
			}
			body = [][]*SymbolNode{{sym}}
		}
	}

	var sym *SymbolNode
	for _, op := range term.ops {
		switch op {
		case tokenKindStar:
			sym = x.newNonTerminal(GeneratedKleenePrefix, term.pos)
			for _, rhs := range body {
				if isNullSequence(rhs) {
					continue
				}
				x.addProduction(sym, append(copySymbols(rhs), sym))
			}
			x.addProduction(sym, []*SymbolNode{{Name: nullName, Pos: term.pos}})
		case tokenKindPlus:
			sym = x.newNonTerminal(GeneratedManyPrefix, term.pos)
			for _, rhs := range body {
				if isNullSequence(rhs) {
					continue
				}
				x.addProduction(sym, append(copySymbols(rhs), sym))
			}
			for _, rhs := range body {
				x.addProduction(sym, copySymbols(rhs))
			}
		case tokenKindQuestion:
			sym = x.newNonTerminal(GeneratedOptionalPrefix, term.pos)
			hasNull := false
			for _, rhs := range body {
				if isNullSequence(rhs) {
					hasNull = true
				}
				x.addProduction(sym, copySymbols(rhs))
			}
			if !hasNull {
				x.addProduction(sym, []*SymbolNode{{Name: nullName, Pos: term.pos}})
			}
		}
		body = [][]*SymbolNode{{sym}}
	}
	return body[0][0]
}

func (x *ebnfExpander) newNonTerminal(prefix string, pos Position) *SymbolNode {
	x.nextID++
	name := fmt.Sprintf("<%v%v>", prefix, x.nextID)
	x.names = append(x.names, name)
	return &SymbolNode{
		Name: name,
		Pos:  pos,
	}
}

func (x *ebnfExpander) addProduction(lhs *SymbolNode, rhs []*SymbolNode) {
	x.generated = append(x.generated, &ProductionNode{
		LHS: lhs,
		RHS: rhs,
		Pos: lhs.Pos,
	})
}

func isNullSequence(syms []*SymbolNode) bool {
	return len(syms) == 1 && IsNullName(syms[0].Name)
}

func copySymbols(syms []*SymbolNode) []*SymbolNode {
	c := make([]*SymbolNode, len(syms))
	copy(c, syms)
	return c
}

// String renders the productions in the plain format, one per line.
func (n *RootNode) String() string {
	var b strings.Builder
	for _, prod := range n.Productions {
		fmt.Fprintln(&b, prod.String())
	}
	return b.String()
}
