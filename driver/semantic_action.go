package driver

import (
	"fmt"
	"io"
)

type SemanticActionSet interface {
	// Shift runs when the driver shifts a symbol onto the state stack. `tok` is a token corresponding to
	// the symbol.
	Shift(tok VToken)

	// Reduce runs when the driver reduces an RHS of a production to its LHS. `prodNum` is a number of
	// the production.
	Reduce(prodNum int)

	// Accept runs when the driver accepts an input.
	Accept()

	// MissError runs when the driver stops at a syntax error. `cause` is a token that caused the
	// syntax error.
	MissError(cause VToken)
}

var _ SemanticActionSet = &SyntaxTreeActionSet{}

type Node struct {
	KindName string
	Text     string
	Row      int
	Col      int
	Children []*Node
}

func PrintTree(w io.Writer, node *Node) {
	printTree(w, node, "", "")
}

func printTree(w io.Writer, node *Node, ruledLine string, childRuledLinePrefix string) {
	if node == nil {
		return
	}

	if node.Text != "" {
		fmt.Fprintf(w, "%v%v %#v\n", ruledLine, node.KindName, node.Text)
	} else {
		fmt.Fprintf(w, "%v%v\n", ruledLine, node.KindName)
	}

	num := len(node.Children)
	for i, child := range node.Children {
		var line string
		if num > 1 && i < num-1 {
			line = "├─ "
		} else {
			line = "└─ "
		}

		var prefix string
		if i >= num-1 {
			prefix = "   "
		} else {
			prefix = "│  "
		}

		printTree(w, child, childRuledLinePrefix+line, childRuledLinePrefix+prefix)
	}
}

// SyntaxTreeActionSet builds a concrete syntax tree. A production deriving the empty string
// becomes a node without children.
type SyntaxTreeActionSet struct {
	gram     Grammar
	cst      *Node
	semStack *semanticStack
}

func NewSyntaxTreeActionSet(gram Grammar) *SyntaxTreeActionSet {
	return &SyntaxTreeActionSet{
		gram:     gram,
		semStack: newSemanticStack(),
	}
}

func (a *SyntaxTreeActionSet) Shift(tok VToken) {
	row, col := tok.Position()
	a.semStack.push(&Node{
		KindName: tok.Terminal(),
		Text:     string(tok.Lexeme()),
		Row:      row,
		Col:      col,
	})
}

func (a *SyntaxTreeActionSet) Reduce(prodNum int) {
	// When an alternative is empty, `n` will be 0, and `handle` will be empty slice.
	n := a.gram.AlternativeSymbolCount(prodNum)
	handle := a.semStack.pop(n)

	children := make([]*Node, len(handle))
	copy(children, handle)

	a.semStack.push(&Node{
		KindName: a.gram.LHS(prodNum),
		Children: children,
	})
}

func (a *SyntaxTreeActionSet) Accept() {
	top := a.semStack.pop(1)
	a.cst = top[0]
}

func (a *SyntaxTreeActionSet) MissError(cause VToken) {
}

func (a *SyntaxTreeActionSet) CST() *Node {
	return a.cst
}

type semanticStack struct {
	frames []*Node
}

func newSemanticStack() *semanticStack {
	return &semanticStack{}
}

func (s *semanticStack) push(f *Node) {
	s.frames = append(s.frames, f)
}

func (s *semanticStack) pop(n int) []*Node {
	fs := s.frames[len(s.frames)-n:]
	s.frames = s.frames[:len(s.frames)-n]

	return fs
}
