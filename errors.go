package abacus

import (
	"errors"
	"math/big"
	"strconv"
)

// ErrorKind classifies the errors produced while computing an expression.
type ErrorKind int8

const (
	// KindNone is the kind of nil errors and errors from outside the package.
	KindNone ErrorKind = iota
	// KindScan marks ill-formed tokens.
	KindScan
	// KindSyntax marks input that does not follow the grammar.
	KindSyntax
	// KindSemantic marks references to missing names, calls with the wrong
	// number of arguments, and operands of the wrong shape.
	KindSemantic
	// KindArithmetic marks failures of the arithmetic itself, like division
	// by zero or arguments outside a function's domain.
	KindArithmetic
	// KindInternal marks broken invariants.
	KindInternal
)

func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "unknown"
	case KindScan:
		return "scan"
	case KindSyntax:
		return "syntax"
	case KindSemantic:
		return "semantic"
	case KindArithmetic:
		return "arithmetic"
	case KindInternal:
		return "internal"
	default:
		return "ErrorKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// KindOf returns the kind of the first error in err's chain that has one.
func KindOf(err error) ErrorKind {
	var k interface{ Kind() ErrorKind }
	if errors.As(err, &k) {
		return k.Kind()
	}
	return KindNone
}

// Message formats err the way it is delivered to an ErrorSink, prefixed with
// its kind.
func Message(err error) string {
	k := KindOf(err)
	if k == KindNone {
		return err.Error()
	}
	return k.String() + " error: " + err.Error()
}

// InputError is an error with position information. Every error resulting from
// invalid input implements InputError.
type InputError interface {
	error
	// Pos returns the position of the token that caused the error.
	Pos() Pos
}

// errpos is a shortcut to create an error message with a position.
func errpos(pos Pos, msg string) string {
	if !pos.IsValid() {
		return msg
	}
	return pos.String() + ": " + msg
}

// LexError is an error from an ill-formed token.
type LexError struct {
	// Text is the text of the token.
	Text string
	// What is the kind of token that was being scanned, like "number", if
	// known.
	What string
	// At is the position of the start of the token.
	At Pos
}

func (err *LexError) Error() string {
	s := "invalid token "
	if err.What != "" {
		s = "invalid " + err.What + " token "
	}
	return errpos(err.At, s+strconv.Quote(err.Text))
}

func (err *LexError) Pos() Pos { return err.At }
func (err *LexError) Kind() ErrorKind { return KindScan }

// SyntaxError is an error from input which does not follow the grammar.
type SyntaxError struct {
	// At is the position of the offending token.
	At Pos
	// Msg describes the problem.
	Msg string
}

func (err *SyntaxError) Error() string { return errpos(err.At, err.Msg) }
func (err *SyntaxError) Pos() Pos { return err.At }
func (err *SyntaxError) Kind() ErrorKind { return KindSyntax }
func (err *SyntaxError) setPos(pos Pos) { err.At = pos }
func (err *SyntaxError) hasPos() bool { return err.At.IsValid() }

// NameError is an error from a lookup for a constant that is missing from the
// constant set.
type NameError struct {
	// Name is the name that was missing.
	Name string
	// At is the position of the reference.
	At Pos
}

func (err *NameError) Error() string {
	return errpos(err.At, "undefined constant "+strconv.Quote(err.Name))
}

func (err *NameError) Pos() Pos { return err.At }
func (err *NameError) Kind() ErrorKind { return KindSemantic }

// FuncError is an error from a call to a function that does not exist.
type FuncError struct {
	// Name is the function name.
	Name string
	// At is the position of the call.
	At Pos
}

func (err *FuncError) Error() string {
	return errpos(err.At, "unknown function "+strconv.Quote(err.Name))
}

func (err *FuncError) Pos() Pos { return err.At }
func (err *FuncError) Kind() ErrorKind { return KindSemantic }

// ArityError is an error from a call with the wrong number of arguments.
type ArityError struct {
	// Func is the function name.
	Func string
	// Got is the number of arguments given.
	Got int
	// Want describes the number of arguments the function accepts.
	Want Arity
	// At is the position of the call.
	At Pos
}

func (err *ArityError) Error() string {
	v := " are given"
	if err.Got == 1 {
		v = " is given"
	}
	return errpos(err.At, "function "+strconv.Quote(err.Func)+" requires "+err.Want.String()+", but "+strconv.Itoa(err.Got)+v)
}

func (err *ArityError) Pos() Pos { return err.At }
func (err *ArityError) Kind() ErrorKind { return KindSemantic }

// TypeError is an error from operands that cannot be combined, like a vector
// and a scalar or vectors of different lengths.
type TypeError struct {
	// Op is the operator or function.
	Op string
	// Msg describes the mismatch.
	Msg string
	// At is the position of the operation.
	At Pos
}

func (err *TypeError) Error() string {
	return errpos(err.At, "invalid operands to "+err.Op+": "+err.Msg)
}

func (err *TypeError) Pos() Pos { return err.At }
func (err *TypeError) Kind() ErrorKind { return KindSemantic }
func (err *TypeError) setPos(pos Pos) { err.At = pos }
func (err *TypeError) hasPos() bool { return err.At.IsValid() }

// ArithmeticError is an error from an operation with no result, like division
// by zero.
type ArithmeticError struct {
	// Op is the operator or function.
	Op string
	// Msg describes the failure.
	Msg string
	// At is the position of the operation.
	At Pos
}

func (err *ArithmeticError) Error() string {
	if err.Op == "" {
		return errpos(err.At, err.Msg)
	}
	return errpos(err.At, err.Msg+" in "+err.Op)
}

func (err *ArithmeticError) Pos() Pos { return err.At }
func (err *ArithmeticError) Kind() ErrorKind { return KindArithmetic }
func (err *ArithmeticError) setPos(pos Pos) { err.At = pos }
func (err *ArithmeticError) hasPos() bool { return err.At.IsValid() }

// DomainError is an error from a function argument outside the function's
// domain, like the logarithm of a negative number.
type DomainError struct {
	// X is the argument value.
	X *big.Float
	// Func is the name of the function or operator.
	Func string
	// At is the position of the call.
	At Pos
}

func (err *DomainError) Error() string {
	x := "argument"
	if err.X != nil {
		x = err.X.Text('g', 10)
	}
	return errpos(err.At, x+" is outside the domain of "+err.Func)
}

func (err *DomainError) Pos() Pos { return err.At }
func (err *DomainError) Kind() ErrorKind { return KindArithmetic }
func (err *DomainError) setPos(pos Pos) { err.At = pos }
func (err *DomainError) hasPos() bool { return err.At.IsValid() }

// InternalError indicates a broken invariant, like an inconsistent stack.
type InternalError struct {
	Msg string
}

func (err *InternalError) Error() string { return err.Msg }
func (err *InternalError) Kind() ErrorKind { return KindInternal }

// positioner is implemented by errors which are created without a position
// and located later by the evaluator.
type positioner interface {
	setPos(Pos)
	hasPos() bool
}

// locate gives err the position pos if it has none yet.
func locate(err error, pos Pos) error {
	if p, ok := err.(positioner); ok && !p.hasPos() {
		p.setPos(pos)
	}
	return err
}

var (
	_ InputError = (*LexError)(nil)
	_ InputError = (*SyntaxError)(nil)
	_ InputError = (*NameError)(nil)
	_ InputError = (*FuncError)(nil)
	_ InputError = (*ArityError)(nil)
	_ InputError = (*TypeError)(nil)
	_ InputError = (*ArithmeticError)(nil)
	_ InputError = (*DomainError)(nil)
)
