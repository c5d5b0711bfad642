// Package driver runs compiled parsing tables. It drives a table over a token sequence and reports
// syntax errors or, through a semantic action set, builds a concrete syntax tree.
package driver

import (
	"fmt"

	gspec "github.com/nihei9/lr1gen/spec/grammar"
)

type SyntaxError struct {
	Row               int
	Col               int
	Message           string
	Token             VToken
	ExpectedTerminals []string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%v:%v: %v: %q", e.Row, e.Col, e.Message, string(e.Token.Lexeme()))
}

type ParserOption func(p *Parser) error

func SemanticAction(semAct SemanticActionSet) ParserOption {
	return func(p *Parser) error {
		p.semAct = semAct
		return nil
	}
}

type Parser struct {
	toks       TokenStream
	gram       Grammar
	stateStack *stateStack
	semAct     SemanticActionSet
	synErrs    []*SyntaxError
}

func NewParser(toks TokenStream, gram Grammar, opts ...ParserOption) (*Parser, error) {
	p := &Parser{
		toks:       toks,
		gram:       gram,
		stateStack: &stateStack{},
	}

	for _, opt := range opts {
		err := opt(p)
		if err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Parse reads tokens until the input is accepted or a syntax error occurs. The input is accepted
// when EOF arrives in the accept state. A syntax error is not an error of Parse; it is reported by
// SyntaxErrors. Tables carry no error symbol, so the parser stops at the first syntax error.
func (p *Parser) Parse() error {
	p.stateStack.push(p.gram.InitialState())
	tok, err := p.nextToken()
	if err != nil {
		return err
	}

	for {
		if p.stateStack.top() == p.gram.AcceptState() && tok.EOF() {
			if p.semAct != nil {
				p.semAct.Accept()
			}
			return nil
		}

		act, ok := p.lookupAction(tok)
		if !ok {
			row, col := tok.Position()
			msg := "unexpected token"
			if tok.Invalid() {
				msg = "unknown terminal"
			}
			p.synErrs = append(p.synErrs, &SyntaxError{
				Row:               row,
				Col:               col,
				Message:           msg,
				Token:             tok,
				ExpectedTerminals: p.searchLookahead(p.stateStack.top()),
			})
			if p.semAct != nil {
				p.semAct.MissError(tok)
			}
			return nil
		}

		switch act.Action {
		case gspec.ActionShift:
			p.stateStack.push(act.Target)
			if p.semAct != nil {
				p.semAct.Shift(tok)
			}

			tok, err = p.nextToken()
			if err != nil {
				return err
			}
		case gspec.ActionReduce:
			prodNum := act.Target

			err := p.reduce(prodNum)
			if err != nil {
				return err
			}

			if p.semAct != nil {
				p.semAct.Reduce(prodNum)
			}
		default:
			return fmt.Errorf("invalid entry: state: %v, symbol: %v, entry: %v", act.State, act.Symbol, act)
		}
	}
}

func (p *Parser) nextToken() (VToken, error) {
	return p.toks.Next()
}

func (p *Parser) tokenToTerminal(tok VToken) string {
	if tok.EOF() {
		return p.gram.EOF()
	}

	return tok.Terminal()
}

func (p *Parser) lookupAction(tok VToken) (*gspec.Entry, bool) {
	if tok.Invalid() {
		return nil, false
	}
	return p.gram.Action(p.stateStack.top(), p.tokenToTerminal(tok))
}

func (p *Parser) reduce(prodNum int) error {
	lhs := p.gram.LHS(prodNum)
	n := p.gram.AlternativeSymbolCount(prodNum)
	p.stateStack.pop(n)
	nextState, ok := p.gram.GoTo(p.stateStack.top(), lhs)
	if !ok {
		return fmt.Errorf("a goto entry is missing: state: %v, symbol: %v", p.stateStack.top(), lhs)
	}
	p.stateStack.push(nextState)
	return nil
}

func (p *Parser) SyntaxErrors() []*SyntaxError {
	return p.synErrs
}

func (p *Parser) searchLookahead(state int) []string {
	terms := []string{}
	for _, term := range append(p.gram.Terminals(), p.gram.EOF()) {
		if _, ok := p.gram.Action(state, term); !ok {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

type stateStack struct {
	items []int
}

func (s *stateStack) top() int {
	return s.items[len(s.items)-1]
}

func (s *stateStack) push(state int) {
	s.items = append(s.items, state)
}

func (s *stateStack) pop(n int) {
	s.items = s.items[:len(s.items)-n]
}
