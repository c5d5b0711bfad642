// Package export renders a compiled grammar as a CSV grid, a text table, or a GraphViz graph.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dekarrin/rosed"
	"github.com/emirpasic/gods/lists/arraylist"
	"github.com/emirpasic/gods/sets/treeset"
	"github.com/emirpasic/gods/utils"
	"github.com/nihei9/lr1gen/grammar/symbol"
	gspec "github.com/nihei9/lr1gen/spec/grammar"
)

const stateHeader = "State"

// grid lays the table out as rows: a header row of the symbols and one row per state. The terminals
// including EOF come before the non-terminals.
func grid(cg *gspec.CompiledGrammar) [][]string {
	pt := cg.ParsingTable
	cols := pt.Columns(symbol.NameNull, symbol.NameAugmentedStart)

	data := make([][]string, 0, pt.StateCount+1)
	data = append(data, append([]string{stateHeader}, cols...))
	for state := 0; state < pt.StateCount; state++ {
		row := make([]string, 0, len(cols)+1)
		row = append(row, strconv.Itoa(state))
		for _, col := range cols {
			row = append(row, pt.Cell(state, col))
		}
		data = append(data, row)
	}
	return data
}

// WriteCSV writes the table as CSV.
func WriteCSV(w io.Writer, cg *gspec.CompiledGrammar) error {
	cw := csv.NewWriter(w)
	err := cw.WriteAll(grid(cg))
	if err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// WriteText writes the table as a text table with borders.
func WriteText(w io.Writer, cg *gspec.CompiledGrammar) error {
	text := rosed.Edit("").
		InsertTableOpts(0, grid(cg), 80, rosed.Options{
			TableHeaders:             true,
			TableBorders:             true,
			NoTrailingLineSeparators: true,
		}).
		String()
	_, err := fmt.Fprintln(w, text)
	return err
}

type dotState struct {
	num   int
	items []string
}

func dotStateComparator(s1, s2 interface{}) int {
	return utils.IntComparator(s1.(*dotState).num, s2.(*dotState).num)
}

type dotEdge struct {
	from  int
	to    int
	label string
}

// WriteDot writes the automaton behind the table in the GraphViz format. Shifts and gotos become
// edges and the accept state is filled gray. When items is non-nil, it gives the items shown in each
// state.
func WriteDot(w io.Writer, cg *gspec.CompiledGrammar, items func(state int) []string) error {
	pt := cg.ParsingTable

	states := treeset.NewWith(dotStateComparator)
	for state := 0; state < pt.StateCount; state++ {
		s := &dotState{
			num: state,
		}
		if items != nil {
			s.items = items(state)
		}
		states.Add(s)
	}
	edges := arraylist.New()
	for _, e := range pt.Entries {
		if e.Action == gspec.ActionReduce {
			continue
		}
		edges.Add(&dotEdge{
			from:  e.State,
			to:    e.Target,
			label: e.Symbol,
		})
	}

	var b strings.Builder
	b.WriteString(`digraph {
graph [splines=true, fontname=Helvetica, fontsize=10];
node [shape=Mrecord, style=filled, fontname=Helvetica, fontsize=10];
edge [fontname=Helvetica, fontsize=10];

`)
	for _, x := range states.Values() {
		s := x.(*dotState)
		fillColor := "white"
		if s.num == pt.AcceptState {
			fillColor = "lightgray"
		}
		fmt.Fprintf(&b, "s%03d [fillcolor=%s label=\"{%03d | %s}\"]\n", s.num, fillColor, s.num, escapeDot(s.items))
	}
	it := edges.Iterator()
	for it.Next() {
		e := it.Value().(*dotEdge)
		fmt.Fprintf(&b, "s%03d -> s%03d [label=\"%s\"]\n", e.from, e.to, escapeDot([]string{e.label}))
	}
	b.WriteString("}\n")

	_, err := io.WriteString(w, b.String())
	return err
}

var dotReplacer = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`<`, `\<`,
	`>`, `\>`,
	`{`, `\{`,
	`}`, `\}`,
	`|`, `\|`,
)

// escapeDot joins lines of a record label, escaping the characters GraphViz treats specially.
func escapeDot(lines []string) string {
	escaped := make([]string, len(lines))
	for i, l := range lines {
		escaped[i] = dotReplacer.Replace(l)
	}
	return strings.Join(escaped, `\l`)
}
