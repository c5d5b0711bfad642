package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/dekarrin/rosed"
	"github.com/nihei9/lr1gen/generator"
	"github.com/nihei9/lr1gen/grammar/symbol"
	"github.com/pkg/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var replFlags = struct {
	source sourceFlags
}{}

func init() {
	cmd := &cobra.Command{
		Use:     "repl [grammar file path]",
		Short:   "Explore a parsing table interactively",
		Example: `  lr1gen repl expr.grammar`,
		Args:    cobra.MaximumNArgs(1),
		RunE:    runREPL,
	}
	replFlags.source.register(cmd.Flags())
	rootCmd.AddCommand(cmd)
}

func runREPL(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && replFlags.source.project == "" {
		return errors.New("the REPL reads commands from stdin, so a grammar must be given as a file or a project")
	}
	src, err := readSource(cmd, args, &replFlags.source)
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

	rl, err := readline.New("lr1gen> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	initDisplay()
	pterm.Info.Println(fmt.Sprintf("%v: %v states, accept state %v", res.Compiled.Name, res.Table.StateCount(), res.Table.AcceptState()))
	printConflicts(os.Stdout, res.Table)
	pterm.Info.Println(`Type "help" for commands; quit with "quit" or <ctrl>D`)

	intp := &interpreter{
		res: res,
		out: rl.Stdout(),
	}
	for {
		line, err := rl.Readline()
		if err != nil { // io.EOF or readline.ErrInterrupt
			break
		}
		quit, err := intp.eval(line)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if quit {
			break
		}
	}
	return nil
}

func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  "  >>",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  "  Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

const replHelp = `action <state> <symbol>  print the entry of a state on a symbol
state <state>            print the items and the entries of a state
first <symbol>           print FIRST of a symbol
nullable <symbol>        print whether a symbol derives the empty string
accept                   print the accept state
productions              print the productions
help                     print this help
quit                     quit`

// interpreter evaluates REPL commands against a generated table.
type interpreter struct {
	res *generator.Result
	out io.Writer
}

func (intp *interpreter) eval(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := fields[0], fields[1:]

	arity := map[string]int{
		"action":      2,
		"state":       1,
		"first":       1,
		"nullable":    1,
		"accept":      0,
		"productions": 0,
		"help":        0,
		"quit":        0,
		"exit":        0,
	}
	n, ok := arity[cmd]
	if !ok {
		return false, errors.Errorf("unknown command: %v", cmd)
	}
	if len(args) != n {
		return false, errors.Errorf("%v takes %v arguments", cmd, n)
	}

	tab := intp.res.Table
	switch cmd {
	case "action":
		state, err := intp.state(args[0])
		if err != nil {
			return false, err
		}
		_, _, err = tab.LookupByName(state, args[1])
		if err != nil {
			return false, err
		}
		cell := intp.res.Compiled.ParsingTable.Cell(state, args[1])
		if cell == "" {
			cell = "error"
		}
		fmt.Fprintln(intp.out, cell)
	case "state":
		state, err := intp.state(args[0])
		if err != nil {
			return false, err
		}
		items, _ := tab.StateItems(state)
		for _, item := range items {
			fmt.Fprintln(intp.out, item)
		}
		intp.printRow(state)
	case "first":
		first, err := tab.Analysis().FirstByName(args[0])
		if err != nil {
			return false, err
		}
		fmt.Fprintf(intp.out, "{%v}\n", strings.Join(first, ", "))
	case "nullable":
		nullable, err := tab.Analysis().NullableByName(args[0])
		if err != nil {
			return false, err
		}
		fmt.Fprintln(intp.out, nullable)
	case "accept":
		fmt.Fprintln(intp.out, tab.AcceptState())
	case "productions":
		gram := tab.Grammar()
		for num := 0; num < gram.ProductionCount(); num++ {
			lhs, rhs, _ := gram.Production(num)
			if len(rhs) == 0 {
				rhs = []string{"ε"}
			}
			fmt.Fprintf(intp.out, "%4v %v → %v\n", num, lhs, strings.Join(rhs, " "))
		}
	case "help":
		fmt.Fprintln(intp.out, replHelp)
	case "quit", "exit":
		return true, nil
	}
	return false, nil
}

func (intp *interpreter) state(arg string) (int, error) {
	state, err := strconv.Atoi(arg)
	if err != nil {
		return 0, errors.Errorf("a state must be a number: %v", arg)
	}
	if state < 0 || state >= intp.res.Table.StateCount() {
		return 0, errors.Errorf("state %v does not exist; the table has %v states", state, intp.res.Table.StateCount())
	}
	return state, nil
}

// printRow draws the non-empty entries of a state as a table.
func (intp *interpreter) printRow(state int) {
	pt := intp.res.Compiled.ParsingTable
	data := [][]string{
		{"Symbol", "Entry"},
	}
	for _, sym := range pt.Columns(symbol.NameNull, symbol.NameAugmentedStart) {
		cell := pt.Cell(state, sym)
		if cell == "" {
			continue
		}
		data = append(data, []string{sym, cell})
	}
	if len(data) == 1 {
		return
	}
	fmt.Fprintln(intp.out, rosed.Edit("").
		InsertTableOpts(0, data, 80, rosed.Options{
			TableHeaders:             true,
			TableBorders:             true,
			NoTrailingLineSeparators: true,
		}).
		String())
}
