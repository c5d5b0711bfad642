package grammar

import (
	"fmt"
	"sync"

	"github.com/dekarrin/rezi"
)

// CompiledGrammar is the portable form of a parse table. External drivers read it as JSON.
type CompiledGrammar struct {
	Name         string        `json:"name"`
	ParsingTable *ParsingTable `json:"parsing_table"`
}

type Action string

const (
	ActionShift  = Action("shift")
	ActionGoTo   = Action("goto")
	ActionReduce = Action("reduce")
)

// Entry is a non-empty cell of a parsing table.
type Entry struct {
	State  int    `json:"state"`
	Symbol string `json:"symbol"`
	Action Action `json:"action"`
	Target int    `json:"target"`
}

// String returns `sN` for a shift or a goto and `rN` for a reduce.
func (e *Entry) String() string {
	if e.Action == ActionReduce {
		return fmt.Sprintf("r%v", e.Target)
	}
	return fmt.Sprintf("s%v", e.Target)
}

type Production struct {
	LHS string   `json:"lhs"`
	RHS []string `json:"rhs"`

	// RHSLen is the number of symbols a reduce pops. It is 0 for a production deriving the empty
	// string.
	RHSLen int `json:"rhs_len"`
}

type ParsingTable struct {
	// Terminals and NonTerminals are indexed by symbol number. The index 0 is unused.
	Terminals    []string      `json:"terminals"`
	NonTerminals []string      `json:"non_terminals"`
	Productions  []*Production `json:"productions"`
	StateCount   int           `json:"state_count"`
	InitialState int           `json:"initial_state"`
	AcceptState  int           `json:"accept_state"`
	EOFSymbol    string        `json:"eof_symbol"`
	Entries      []*Entry      `json:"entries"`

	indexOnce sync.Once
	index     map[int]map[string]*Entry
}

// Lookup returns the entry of a cell. The index behind it is built on the first call and is safe to
// share between goroutines.
func (t *ParsingTable) Lookup(state int, symbol string) (*Entry, bool) {
	t.indexOnce.Do(func() {
		t.index = map[int]map[string]*Entry{}
		for _, e := range t.Entries {
			row, ok := t.index[e.State]
			if !ok {
				row = map[string]*Entry{}
				t.index[e.State] = row
			}
			row[e.Symbol] = e
		}
	})
	e, ok := t.index[state][symbol]
	return e, ok
}

// Cell renders a cell of the grid view of the table: an empty string, `sN`, `rN`, or `acc` at the
// accept state on EOF.
func (t *ParsingTable) Cell(state int, symbol string) string {
	if state == t.AcceptState && symbol == t.EOFSymbol {
		return "acc"
	}
	e, ok := t.Lookup(state, symbol)
	if !ok {
		return ""
	}
	return e.String()
}

// Columns returns the symbols of the grid view: the terminals including EOF, then the
// non-terminals. NULL and the augmented start symbol never label a cell and are left out.
func (t *ParsingTable) Columns(null, augmentedStart string) []string {
	var cols []string
	for _, s := range t.Terminals {
		if s == "" || s == null {
			continue
		}
		cols = append(cols, s)
	}
	for _, s := range t.NonTerminals {
		if s == "" || s == augmentedStart {
			continue
		}
		cols = append(cols, s)
	}
	return cols
}

func (g *CompiledGrammar) MarshalBinary() ([]byte, error) {
	var data []byte
	data = append(data, rezi.EncString(g.Name)...)
	data = append(data, rezi.EncBinary(g.ParsingTable)...)
	return data, nil
}

func (g *CompiledGrammar) UnmarshalBinary(data []byte) error {
	var err error
	var n int

	g.Name, n, err = rezi.DecString(data)
	if err != nil {
		return fmt.Errorf("name: %w", err)
	}
	data = data[n:]

	g.ParsingTable = &ParsingTable{}
	_, err = rezi.DecBinary(data, g.ParsingTable)
	if err != nil {
		return fmt.Errorf("parsing table: %w", err)
	}

	return nil
}

func (t *ParsingTable) MarshalBinary() ([]byte, error) {
	var data []byte
	data = append(data, encStrings(t.Terminals)...)
	data = append(data, encStrings(t.NonTerminals)...)

	data = append(data, rezi.EncInt(len(t.Productions))...)
	for _, p := range t.Productions {
		data = append(data, rezi.EncString(p.LHS)...)
		data = append(data, encStrings(p.RHS)...)
		data = append(data, rezi.EncInt(p.RHSLen)...)
	}

	data = append(data, rezi.EncInt(t.StateCount)...)
	data = append(data, rezi.EncInt(t.InitialState)...)
	data = append(data, rezi.EncInt(t.AcceptState)...)
	data = append(data, rezi.EncString(t.EOFSymbol)...)

	data = append(data, rezi.EncInt(len(t.Entries))...)
	for _, e := range t.Entries {
		data = append(data, rezi.EncInt(e.State)...)
		data = append(data, rezi.EncString(e.Symbol)...)
		data = append(data, rezi.EncString(string(e.Action))...)
		data = append(data, rezi.EncInt(e.Target)...)
	}

	return data, nil
}

func (t *ParsingTable) UnmarshalBinary(data []byte) error {
	d := &decoder{
		data: data,
	}

	t.Terminals = d.strings("terminals")
	t.NonTerminals = d.strings("non-terminals")

	prodCount := d.int("production count")
	t.Productions = nil
	for i := 0; i < prodCount && d.err == nil; i++ {
		t.Productions = append(t.Productions, &Production{
			LHS:    d.string("production LHS"),
			RHS:    d.strings("production RHS"),
			RHSLen: d.int("production RHS length"),
		})
	}

	t.StateCount = d.int("state count")
	t.InitialState = d.int("initial state")
	t.AcceptState = d.int("accept state")
	t.EOFSymbol = d.string("EOF symbol")

	entryCount := d.int("entry count")
	t.Entries = nil
	for i := 0; i < entryCount && d.err == nil; i++ {
		t.Entries = append(t.Entries, &Entry{
			State:  d.int("entry state"),
			Symbol: d.string("entry symbol"),
			Action: Action(d.string("entry action")),
			Target: d.int("entry target"),
		})
	}

	return d.err
}

func encStrings(ss []string) []byte {
	data := rezi.EncInt(len(ss))
	for _, s := range ss {
		data = append(data, rezi.EncString(s)...)
	}
	return data
}

// decoder reads values in sequence and keeps the first error. Once an error occurs, every later
// read returns a zero value.
type decoder struct {
	data []byte
	err  error
}

func (d *decoder) int(what string) int {
	if d.err != nil {
		return 0
	}
	v, n, err := rezi.DecInt(d.data)
	if err != nil {
		d.err = fmt.Errorf("%v: %w", what, err)
		return 0
	}
	d.data = d.data[n:]
	return v
}

func (d *decoder) string(what string) string {
	if d.err != nil {
		return ""
	}
	v, n, err := rezi.DecString(d.data)
	if err != nil {
		d.err = fmt.Errorf("%v: %w", what, err)
		return ""
	}
	d.data = d.data[n:]
	return v
}

func (d *decoder) strings(what string) []string {
	count := d.int(what)
	if d.err != nil {
		return nil
	}
	ss := make([]string, 0, count)
	for i := 0; i < count; i++ {
		s := d.string(what)
		if d.err != nil {
			return nil
		}
		ss = append(ss, s)
	}
	return ss
}
