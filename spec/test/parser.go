// Package test reads test cases of grammars. A test case consists of three parts separated by lines
// of dashes: a description, a sequence of terminal names, and the syntax tree the sequence is
// expected to produce, written as an S-expression:
//
//	A list of two elements
//	---
//	A A
//	---
//	(<S> (A) (<S> (A) (<S>)))
//
// The third part may be the word `reject` instead of a tree. Then the sequence is expected to be
// rejected.
package test

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"
	"sync"

	mlcompiler "github.com/nihei9/maleeni/compiler"
	mldriver "github.com/nihei9/maleeni/driver"
	mlspec "github.com/nihei9/maleeni/spec"
)

const rejectMark = "reject"

type TestCase struct {
	Description string
	Source      []byte

	// Output is nil when Reject is true.
	Output *Tree
	Reject bool
}

func ParseTestCase(r io.Reader) (*TestCase, error) {
	parts, err := splitIntoParts(r)
	if err != nil {
		return nil, err
	}
	if len(parts) != 3 {
		return nil, fmt.Errorf("too many or too few part delimiters: a test case consists of just three parts: %v parts found", len(parts))
	}

	if strings.TrimSpace(string(parts[2].buf)) == rejectMark {
		return &TestCase{
			Description: string(parts[0].buf),
			Source:      parts[1].buf,
			Reject:      true,
		}, nil
	}

	tp := &treeParser{
		lineOffset: parts[0].lineCount + parts[1].lineCount + 2,
	}
	tree, err := tp.parseTree(bytes.NewReader(parts[2].buf))
	if err != nil {
		return nil, err
	}

	return &TestCase{
		Description: string(parts[0].buf),
		Source:      parts[1].buf,
		Output:      tree,
	}, nil
}

type testCasePart struct {
	buf       []byte
	lineCount int
}

func splitIntoParts(r io.Reader) ([]*testCasePart, error) {
	var bufs []*testCasePart
	s := bufio.NewScanner(r)
	for {
		buf, lineCount, err := readPart(s)
		if err != nil {
			return nil, err
		}
		if buf == nil {
			break
		}
		bufs = append(bufs, &testCasePart{
			buf:       buf,
			lineCount: lineCount,
		})
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	return bufs, nil
}

var reDelim = regexp.MustCompile(`^\s*---+\s*$`)

func readPart(s *bufio.Scanner) ([]byte, int, error) {
	if !s.Scan() {
		return nil, 0, s.Err()
	}
	buf := &bytes.Buffer{}
	line := s.Bytes()
	if reDelim.Match(line) {
		// Return an empty slice because (*bytes.Buffer).Bytes() returns nil if we have never written data.
		return []byte{}, 0, nil
	}
	buf.Write(line)
	lineCount := 1
	for s.Scan() {
		line := s.Bytes()
		if reDelim.Match(line) {
			return buf.Bytes(), lineCount, nil
		}
		buf.WriteString("\n")
		buf.Write(line)
		lineCount++
	}
	if err := s.Err(); err != nil {
		return nil, 0, err
	}
	return buf.Bytes(), lineCount, nil
}

var (
	treeLexSpecOnce sync.Once
	treeLexSpec     *mlspec.CompiledLexSpec
	treeLexSpecErr  error
)

func compileTreeLexSpec() (*mlspec.CompiledLexSpec, error) {
	treeLexSpecOnce.Do(func() {
		ls := &mlspec.LexSpec{
			Name: "lr1gen_tree",
			Entries: []*mlspec.LexEntry{
				{Kind: mlspec.LexKindName("white_space"), Pattern: mlspec.LexPattern(`[\u{0009}\u{000A}\u{000D}\u{0020}]+`)},
				{Kind: mlspec.LexKindName("l_paren"), Pattern: mlspec.LexPattern(`\u{0028}`)},
				{Kind: mlspec.LexKindName("r_paren"), Pattern: mlspec.LexPattern(`\u{0029}`)},
				{Kind: mlspec.LexKindName("kind"), Pattern: mlspec.LexPattern(`[^\u{0009}\u{000A}\u{000D}\u{0020}\u{0028}\u{0029}]+`)},
			},
		}
		clspec, err, cErrs := mlcompiler.Compile(ls, mlcompiler.CompressionLevel(mlcompiler.CompressionLevelMax))
		if err != nil {
			if len(cErrs) > 0 {
				var b strings.Builder
				for _, cerr := range cErrs {
					fmt.Fprintf(&b, "\n%v: %v", cerr.Kind, cerr.Cause)
				}
				treeLexSpecErr = fmt.Errorf("failed to compile the lexical specification of trees: %v", b.String())
				return
			}
			treeLexSpecErr = err
			return
		}
		treeLexSpec = clspec
	})
	return treeLexSpec, treeLexSpecErr
}

type treeToken struct {
	kind    mlspec.LexKindName
	text    string
	row     int
	col     int
	eof     bool
	invalid bool
}

type treeParser struct {
	lineOffset int
	lex        *mldriver.Lexer
	kinds      []mlspec.LexKindName
	peeked     *treeToken
}

func (tp *treeParser) parseTree(src io.Reader) (*Tree, error) {
	s, err := compileTreeLexSpec()
	if err != nil {
		return nil, err
	}
	tp.lex, err = mldriver.NewLexer(mldriver.NewLexSpec(s), src)
	if err != nil {
		return nil, err
	}
	tp.kinds = s.KindNames

	t, err := tp.parseNode()
	if err != nil {
		return nil, err
	}
	tok, err := tp.next()
	if err != nil {
		return nil, err
	}
	if !tok.eof {
		return nil, tp.errorf(tok, "unexpected token after the tree: %v", tok.text)
	}
	return t.Fill(), nil
}

// parseNode reads `(KIND NODE...)`.
func (tp *treeParser) parseNode() (*Tree, error) {
	tok, err := tp.next()
	if err != nil {
		return nil, err
	}
	if tok.kind != "l_paren" {
		return nil, tp.errorf(tok, "a node must start with '('")
	}
	tok, err = tp.next()
	if err != nil {
		return nil, err
	}
	if tok.kind != "kind" {
		return nil, tp.errorf(tok, "a node needs a kind")
	}
	t := NewTree(tok.text)
	for {
		tok, err := tp.peek()
		if err != nil {
			return nil, err
		}
		if tok.kind == "r_paren" {
			tp.next()
			return t, nil
		}
		if tok.eof {
			return nil, tp.errorf(tok, "unclosed node: %v", t.Kind)
		}
		child, err := tp.parseNode()
		if err != nil {
			return nil, err
		}
		t.Children = append(t.Children, child)
	}
}

func (tp *treeParser) peek() (*treeToken, error) {
	if tp.peeked != nil {
		return tp.peeked, nil
	}
	tok, err := tp.next()
	if err != nil {
		return nil, err
	}
	tp.peeked = tok
	return tok, nil
}

func (tp *treeParser) next() (*treeToken, error) {
	if tp.peeked != nil {
		tok := tp.peeked
		tp.peeked = nil
		return tok, nil
	}
	for {
		tok, err := tp.lex.Next()
		if err != nil {
			return nil, err
		}
		t := &treeToken{
			text:   string(tok.Lexeme),
			row:    tok.Row,
			col:    tok.Col,
			eof:    tok.EOF,
			invalid: tok.Invalid,
		}
		if !tok.EOF && !tok.Invalid {
			t.kind = tp.kinds[tok.KindID]
			if t.kind == "white_space" {
				continue
			}
		}
		return t, nil
	}
}

func (tp *treeParser) errorf(tok *treeToken, format string, a ...interface{}) error {
	return fmt.Errorf("%v:%v: %v", tp.lineOffset+tok.row+1, tok.col+1, fmt.Sprintf(format, a...))
}
