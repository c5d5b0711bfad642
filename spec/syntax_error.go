package spec

import "fmt"

type SyntaxError struct {
	message string
}

func newSyntaxError(message string) *SyntaxError {
	return &SyntaxError{
		message: message,
	}
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %s", e.message)
}

var (
	// lexical errors
	synErrInvalidToken = newSyntaxError("invalid token")

	// malformed productions
	synErrNoProduction        = newSyntaxError("a grammar must have at least one production")
	synErrTooManyProductions  = newSyntaxError("a single production was expected")
	synErrNoDerives           = newSyntaxError("a production needs '::='")
	synErrMultipleDerives     = newSyntaxError("a production can have only one '::='")
	synErrNoLHS               = newSyntaxError("a production needs a left-hand side symbol")
	synErrMultiSymbolLHS      = newSyntaxError("the left-hand side of a production must be a single symbol")
	synErrEmptyRHS            = newSyntaxError("the right-hand side of a production is empty; use 'null' or 'ε' for an empty derivation")
	synErrNullMustStandAlone  = newSyntaxError("'null' and 'ε' must be the only symbol of a right-hand side")
	synErrUnexpectedToken     = newSyntaxError("unexpected token")
	synErrUnclosedGroup       = newSyntaxError("unclosed group")
	synErrOperatorNoOperand   = newSyntaxError("an operator needs a preceding symbol or group")
	synErrNullWithOperator    = newSyntaxError("'null' and 'ε' cannot take an operator")
	synErrReservedGeneratedID = newSyntaxError("names starting with '<_' are reserved for generated non-terminals")
)
