package lazo

import (
	"errors"
	"fmt"
)

// SyntaxError reports a malformed token stream or a malformed expression shape.
// Incomplete is set when the input simply ended too early (an open paren or quote),
// which lets interactive callers ask for more lines instead of failing.
type SyntaxError struct {
	Msg        string
	Incomplete bool
}

func (e *SyntaxError) Error() string {
	return "Syntax Error! " + e.Msg
}

// RuntimeError is a built-in's explicit domain failure.
type RuntimeError struct {
	Msg string
}

func (e *RuntimeError) Error() string {
	return "Runtime Error! " + e.Msg
}

// FunctionArityError carries the supplied and expected argument counts.
type FunctionArityError struct {
	Got  int
	Want int
}

func (e *FunctionArityError) Error() string {
	return fmt.Sprintf("Function Error! the passed arguments length %d is different to expected length %d of the function's arguments", e.Got, e.Want)
}

func syntaxErrorf(format string, args ...any) error {
	return &SyntaxError{Msg: fmt.Sprintf(format, args...)}
}

func runtimeErrorf(format string, args ...any) error {
	return &RuntimeError{Msg: fmt.Sprintf(format, args...)}
}

func arityError(got, want int) error {
	return &FunctionArityError{Got: got, Want: want}
}

// IsIncomplete reports whether err is a SyntaxError caused by input that ended
// inside a parenthesized form or a string literal.
func IsIncomplete(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se) && se.Incomplete
}
