package grammar

import (
	"fmt"
	"strings"
)

type ConflictKind string

const (
	ConflictKindShiftReduce  = ConflictKind("shift/reduce")
	ConflictKindReduceReduce = ConflictKind("reduce/reduce")
)

// Conflict is a table entry written twice with different transitions. The table holds Adopted.
type Conflict struct {
	State       int
	Symbol      string
	Kind        ConflictKind
	Overwritten Transition
	Adopted     Transition
}

func (c *Conflict) String() string {
	return fmt.Sprintf("%v conflict in state %v on %v: %v overwritten by %v", c.Kind, c.State, c.Symbol, c.Overwritten, c.Adopted)
}

// conflictKindOf classifies two transitions on the same cell. Reduces are written before shifts in
// a state, so a cell holding two different non-reduce transitions cannot occur.
func conflictKindOf(overwritten, adopted Transition) ConflictKind {
	if overwritten.Type == TransitionTypeReduce && adopted.Type == TransitionTypeReduce {
		return ConflictKindReduceReduce
	}
	return ConflictKindShiftReduce
}

// ConflictError is returned by Compile with FailOnConflict when the table has a conflict.
type ConflictError struct {
	Conflicts []*Conflict
}

func (e *ConflictError) Error() string {
	var b strings.Builder
	if len(e.Conflicts) == 1 {
		fmt.Fprintf(&b, "1 conflict was detected")
	} else {
		fmt.Fprintf(&b, "%v conflicts were detected", len(e.Conflicts))
	}
	for _, c := range e.Conflicts {
		fmt.Fprintf(&b, "\n%v", c)
	}
	return b.String()
}
