package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/nihei9/lr1gen/driver"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var parseFlags = struct {
	source sourceFlags
	input  *string
	onlyOK *bool
}{}

func init() {
	cmd := &cobra.Command{
		Use:   "parse <grammar file path>",
		Short: "Parse a sequence of terminal names and print its syntax tree",
		Example: `  echo "ID PLUS ID" | lr1gen parse expr.grammar
  lr1gen parse -p lr1gen.toml -i tokens.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: runParse,
	}
	parseFlags.source.register(cmd.Flags())
	parseFlags.input = cmd.Flags().StringP("input", "i", "", "token file path (default stdin)")
	parseFlags.onlyOK = cmd.Flags().Bool("only-ok", false, "print only whether the input is accepted")
	rootCmd.AddCommand(cmd)
}

func runParse(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && parseFlags.source.project == "" {
		return errors.New("parse reads tokens from stdin, so a grammar must be given as a file or a project")
	}
	src, err := readSource(cmd, args, &parseFlags.source)
	if err != nil {
		return err
	}
	root, err := src.parse()
	if err != nil {
		return err
	}
	res, err := src.generate(root, false)
	if err != nil {
		return err
	}

	var r io.Reader = os.Stdin
	if *parseFlags.input != "" {
		f, err := os.Open(*parseFlags.input)
		if err != nil {
			return errors.Wrapf(err, "cannot open the token file %s", *parseFlags.input)
		}
		defer f.Close()
		r = f
	}

	gram := driver.NewGrammar(res.Compiled)
	toks, err := driver.NewTokenStream(gram, r)
	if err != nil {
		return err
	}
	semAct := driver.NewSyntaxTreeActionSet(gram)
	p, err := driver.NewParser(toks, gram, driver.SemanticAction(semAct))
	if err != nil {
		return err
	}
	err = p.Parse()
	if err != nil {
		return err
	}

	synErrs := p.SyntaxErrors()
	for _, synErr := range synErrs {
		tok := synErr.Token
		var msg string
		if tok.EOF() {
			msg = "<eof>"
		} else {
			msg = fmt.Sprintf("%q", string(tok.Lexeme()))
		}
		fmt.Fprintf(os.Stderr, "%v:%v: %v: %v; expected: %v\n", synErr.Row, synErr.Col, synErr.Message, msg, strings.Join(synErr.ExpectedTerminals, ", "))
	}
	if len(synErrs) > 0 {
		return errors.New("the input was rejected")
	}

	if *parseFlags.onlyOK {
		fmt.Fprintln(os.Stdout, "accepted")
		return nil
	}
	driver.PrintTree(os.Stdout, semAct.CST())
	return nil
}
