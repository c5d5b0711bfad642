// Package tester checks a compiled grammar against test cases. A case gives a sequence of terminal
// names and either the syntax tree the sequence must produce or the word `reject`, meaning the
// table must reject the sequence.
package tester

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/nihei9/lr1gen/driver"
	gspec "github.com/nihei9/lr1gen/spec/grammar"
	tspec "github.com/nihei9/lr1gen/spec/test"
	"github.com/pkg/errors"
)

var (
	ErrUnexpectedAccept = errors.New("the table accepted a sequence expected to be rejected")
	ErrUnexpectedReject = errors.New("the table rejected the sequence")
	ErrTreeMismatch     = errors.New("the syntax tree differs from the expected one")
)

// Case is a test case read from a file. Err holds the reason the file could not be read as a case.
type Case struct {
	Path     string
	TestCase *tspec.TestCase
	Err      error
}

// LoadCases reads a test case file, or every regular file under a directory in lexical order.
func LoadCases(path string) []*Case {
	var cases []*Case
	err := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			cases = append(cases, &Case{
				Path: p,
				Err:  err,
			})
			return nil
		}
		if d.IsDir() {
			return nil
		}
		cases = append(cases, loadCase(p))
		return nil
	})
	if err != nil {
		cases = append(cases, &Case{
			Path: path,
			Err:  err,
		})
	}
	return cases
}

func loadCase(path string) *Case {
	c := &Case{
		Path: path,
	}
	f, err := os.Open(path)
	if err != nil {
		c.Err = err
		return c
	}
	defer f.Close()
	c.TestCase, c.Err = tspec.ParseTestCase(f)
	return c
}

// Result is the outcome of a case. The case passed when Err is nil.
type Result struct {
	Path string

	// Accepted reports whether the table accepted the sequence. SyntaxError tells where a rejected
	// sequence stopped the parser and which terminals the table expected there.
	Accepted    bool
	SyntaxError *driver.SyntaxError

	Diffs []*tspec.TreeDiff
	Err   error
}

func (r *Result) Passed() bool {
	return r.Err == nil
}

func (r *Result) String() string {
	verdict := "accepted"
	if !r.Accepted {
		verdict = "rejected"
	}
	if r.Err == nil {
		return fmt.Sprintf("PASS %v (%v)", r.Path, verdict)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "FAIL %v: %v", r.Path, r.Err)
	if e := r.SyntaxError; e != nil && !errors.Is(r.Err, ErrUnexpectedAccept) {
		fmt.Fprintf(&b, "\n    %v:%v: %v; expected: %v", e.Row, e.Col, e.Message, strings.Join(e.ExpectedTerminals, ", "))
	}
	for _, d := range r.Diffs {
		fmt.Fprintf(&b, "\n    %v\n        expected: %v\n        actual:   %v", d.Message, d.ExpectedPath, d.ActualPath)
	}
	return b.String()
}

// Tester runs cases against one compiled grammar.
type Tester struct {
	Grammar *gspec.CompiledGrammar
}

// Run runs the cases in order and returns one result per case.
func (t *Tester) Run(cases []*Case) []*Result {
	gram := driver.NewGrammar(t.Grammar)
	rs := make([]*Result, len(cases))
	for i, c := range cases {
		rs[i] = run(gram, c)
	}
	return rs
}

func run(gram driver.Grammar, c *Case) *Result {
	r := &Result{
		Path: c.Path,
	}
	if c.Err != nil {
		r.Err = c.Err
		return r
	}

	cst, synErr, err := parse(gram, c.TestCase.Source)
	if err != nil {
		r.Err = err
		return r
	}
	r.Accepted = synErr == nil
	r.SyntaxError = synErr

	switch {
	case c.TestCase.Reject:
		if r.Accepted {
			r.Err = ErrUnexpectedAccept
		}
	case !r.Accepted:
		r.Err = errors.Wrapf(ErrUnexpectedReject, "%v", synErr.Message)
	default:
		r.Diffs = tspec.DiffTree(c.TestCase.Output, toTree(cst).Fill())
		if len(r.Diffs) > 0 {
			r.Err = ErrTreeMismatch
		}
	}
	return r
}

// parse runs the table over a sequence. It returns the syntax tree of an accepted sequence, or the
// syntax error that stopped the parser.
func parse(gram driver.Grammar, src []byte) (*driver.Node, *driver.SyntaxError, error) {
	toks, err := driver.NewTokenStream(gram, bytes.NewReader(src))
	if err != nil {
		return nil, nil, err
	}
	semAct := driver.NewSyntaxTreeActionSet(gram)
	p, err := driver.NewParser(toks, gram, driver.SemanticAction(semAct))
	if err != nil {
		return nil, nil, err
	}
	err = p.Parse()
	if err != nil {
		return nil, nil, err
	}
	if synErrs := p.SyntaxErrors(); len(synErrs) > 0 {
		return nil, synErrs[0], nil
	}
	return semAct.CST(), nil, nil
}

func toTree(n *driver.Node) *tspec.Tree {
	children := make([]*tspec.Tree, len(n.Children))
	for i, c := range n.Children {
		children[i] = toTree(c)
	}
	return tspec.NewTree(n.KindName, children...)
}
