package grammar

type Terminal struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

type NonTerminal struct {
	Number   int    `json:"number"`
	Name     string `json:"name"`
	Nullable bool   `json:"nullable"`

	// First holds terminal numbers. The number of NULL appears when the non-terminal is nullable.
	First []int `json:"first"`
}

// ReportProduction is a production of a report. RHS holds terminal numbers as they are and
// non-terminal numbers negated. An empty RHS means the production derives the empty string.
type ReportProduction struct {
	Number int   `json:"number"`
	LHS    int   `json:"lhs"`
	RHS    []int `json:"rhs"`
}

type Item struct {
	Production int `json:"production"`
	Dot        int `json:"dot"`
	LookAhead  int `json:"look_ahead"`
}

type Transition struct {
	Symbol int `json:"symbol"`
	State  int `json:"state"`
}

type Reduce struct {
	LookAhead  []int `json:"look_ahead"`
	Production int   `json:"production"`
}

// Conflict describes a table entry written twice with different actions. Overwritten and Adopted
// are the entries in the `sN` and `rN` notation; the table holds Adopted.
type Conflict struct {
	Symbol      string `json:"symbol"`
	Kind        string `json:"kind"`
	Overwritten string `json:"overwritten"`
	Adopted     string `json:"adopted"`
}

type State struct {
	Number    int           `json:"number"`
	Items     []*Item       `json:"items"`
	Shift     []*Transition `json:"shift"`
	Reduce    []*Reduce     `json:"reduce"`
	GoTo      []*Transition `json:"goto"`
	Accept    bool          `json:"accept"`
	Conflicts []*Conflict   `json:"conflicts"`
}

type Report struct {
	Terminals    []*Terminal         `json:"terminals"`
	NonTerminals []*NonTerminal      `json:"non_terminals"`
	Productions  []*ReportProduction `json:"productions"`
	States       []*State            `json:"states"`
	AcceptState  int                 `json:"accept_state"`
}
