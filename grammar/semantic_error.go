package grammar

type SemanticError struct {
	message string
}

func newSemanticError(message string) *SemanticError {
	return &SemanticError{
		message: message,
	}
}

func (e *SemanticError) Error() string {
	return e.message
}

var (
	semErrNoProduction        = newSemanticError("a grammar needs at least one production")
	semErrUndefinedSym        = newSemanticError("undefined symbol")
	semErrReservedName        = newSemanticError("reserved names cannot be declared")
	semErrDuplicateName       = newSemanticError("duplicate names are not allowed between terminals and non-terminals")
	semErrInvalidStart        = newSemanticError("the start symbol must be a declared non-terminal")
	semErrTerminalLHS         = newSemanticError("the left-hand side of a production must be a non-terminal")
	semErrReservedSymInRHS    = newSemanticError("a right-hand side cannot refer to a reserved symbol")
	semErrDuplicateProduction = newSemanticError("duplicate production")
	semErrTooManyStates       = newSemanticError("the automaton exceeds the state limit")
)
