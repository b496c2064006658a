package lang

import (
	"errors"
	"fmt"

	"github.com/jcorbin/stacklang/internal/fileinput"
)

// Location re-exports the source location type carried by ops and errors.
type Location = fileinput.Location

var (
	// ErrDivideByZero is wrapped by the ArithmeticError from divmod by zero.
	ErrDivideByZero = errors.New("division by zero")

	// ErrStepLimit indicates that execution ran out of its step budget.
	ErrStepLimit = errors.New("step limit exceeded")

	// ErrDepthLimit indicates that procedure, branch or loop nesting exceeded
	// the configured bound, during either type checking or execution.
	ErrDepthLimit = errors.New("nesting depth limit exceeded")

	// ErrTypeDump is wrapped by the TypeError that a "???" op raises after
	// dumping the type stack.
	ErrTypeDump = errors.New("dumped all the types on the stack")
)

// SyntaxError reports malformed source text: unexpected characters,
// mismatched delimiters, or invalid names.
type SyntaxError struct {
	Loc  Location
	Msg  string
	Open *Location // where an unclosed construct was opened

	// Incomplete is set when the source ended inside an open construct, so
	// that more input could complete it.
	Incomplete bool
}

func (err *SyntaxError) Error() string {
	msg := fmt.Sprintf("%v: syntax error: %v", err.Loc, err.Msg)
	if err.Open != nil {
		msg += fmt.Sprintf(" (opened at %v)", *err.Open)
	}
	return msg
}

// IsIncomplete returns true if err is a SyntaxError caused by premature end
// of input.
func IsIncomplete(err error) bool {
	var se *SyntaxError
	return errors.As(err, &se) && se.Incomplete
}

// TypeError reports a stack-effect violation found by the type checker, or a
// name resolution failure found while parsing.
type TypeError struct {
	Loc   Location
	Op    string
	Msg   string
	Stack []Type
	Err   error
}

func (err *TypeError) Error() string {
	msg := err.Msg
	if msg == "" && err.Err != nil {
		msg = err.Err.Error()
	}
	if err.Op != "" {
		msg = fmt.Sprintf("%v: %v", err.Op, msg)
	}
	if err.Loc.IsZero() {
		return "type error: " + msg
	}
	return fmt.Sprintf("%v: type error: %v", err.Loc, msg)
}

func (err *TypeError) Unwrap() error { return err.Err }

// ArithmeticError is the one recoverable runtime failure: division or modulo
// by zero, which type checking cannot rule out.
type ArithmeticError struct {
	Loc Location
	Err error
}

func (err *ArithmeticError) Error() string {
	if err.Loc.IsZero() {
		return fmt.Sprintf("arithmetic error: %v", err.Err)
	}
	return fmt.Sprintf("%v: arithmetic error: %v", err.Loc, err.Err)
}

func (err *ArithmeticError) Unwrap() error { return err.Err }

// InternalError reports a broken executor invariant: these are unreachable
// for programs that passed type checking.
type InternalError struct {
	Loc   Location
	Msg   string
	Err   error
	Stack string
}

// Faultf panics with an InternalError; the executor recovers it at its
// boundary.
func Faultf(mess string, args ...interface{}) {
	panic(&InternalError{Msg: fmt.Sprintf(mess, args...)})
}

func (err *InternalError) Error() string { return fmt.Sprint(err) }

func (err *InternalError) Format(f fmt.State, c rune) {
	head := "internal invariant violation"
	if !err.Loc.IsZero() {
		head = fmt.Sprintf("%v: %v", err.Loc, head)
	}
	switch {
	case err.Msg != "":
		fmt.Fprintf(f, "%v: %v", head, err.Msg)
	case err.Err != nil:
		fmt.Fprintf(f, "%v: %v", head, err.Err)
	default:
		fmt.Fprint(f, head)
	}
	if c == 'v' && f.Flag('+') && err.Stack != "" {
		fmt.Fprintf(f, "\nPanic stack: %s", err.Stack)
	}
}

func (err *InternalError) Unwrap() error { return err.Err }

// StoreError reports storing a value of the wrong type into a cell.
type StoreError struct {
	Elem, Got Type
}

func (err StoreError) Error() string {
	return fmt.Sprintf("cannot store %v into %v", err.Got, RefType(err.Elem))
}
