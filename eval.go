package abacus

import (
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"
)

// Computer evaluates expressions with an explicit value stack. A Computer can
// be reused for many evaluations, but it is not safe to use concurrently.
type Computer struct {
	// Funcs holds functions which extend or replace the builtin ones. A nil
	// entry hides the builtin function of that name.
	Funcs map[string]Func

	stack  []Value
	consts *Constants
	digits int
	bits   uint
}

// Eval evaluates an expression against a constant set and returns the result.
// Definitions in the expression are written to c. If c is nil, a new set
// holding only the standard constants is used. The precision is read once
// when evaluation starts.
func (comp *Computer) Eval(e *Expr, c *Constants) (v Value, err error) {
	if len(comp.stack) != 0 {
		panic("abacus: Eval during Eval")
	}
	if c == nil {
		c = NewConstants()
	}
	comp.consts = c
	comp.digits = Precision()
	comp.bits = precBits(comp.digits)
	defer func() {
		comp.consts = nil
		comp.stack = comp.stack[:0]
		if r := recover(); r != nil {
			v, err = Value{}, &InternalError{Msg: fmt.Sprint("evaluation panicked: ", r)}
		}
	}()
	if err := comp.eval(e.n); err != nil {
		return Value{}, err
	}
	if len(comp.stack) != 1 {
		return Value{}, &InternalError{Msg: "inconsistent stack: " + strconv.Itoa(len(comp.stack)) + " items"}
	}
	return comp.stack[0], nil
}

// Digits returns the number of significant decimal digits used by the most
// recent evaluation.
func (comp *Computer) Digits() int {
	return comp.digits
}

// Prec returns the mantissa size in bits used by the most recent evaluation.
func (comp *Computer) Prec() uint {
	return comp.bits
}

// Constants returns the constant set of the evaluation in progress. Functions
// may but generally should not use it.
func (comp *Computer) Constants() *Constants {
	return comp.consts
}

func (comp *Computer) push(v Value) {
	comp.stack = append(comp.stack, v)
}

// pop removes the top from the stack and returns it.
func (comp *Computer) pop() (Value, error) {
	if len(comp.stack) == 0 {
		return Value{}, &InternalError{Msg: "stack underflow"}
	}
	v := comp.stack[len(comp.stack)-1]
	comp.stack = comp.stack[:len(comp.stack)-1]
	return v, nil
}

// top returns the top of the stack without removing it.
func (comp *Computer) top() (Value, error) {
	if len(comp.stack) == 0 {
		return Value{}, &InternalError{Msg: "stack underflow"}
	}
	return comp.stack[len(comp.stack)-1], nil
}

// eval pushes the node's value to the stack.
func (comp *Computer) eval(n Node) error {
	switch n := n.(type) {
	case *LiteralExpr:
		v, err := parseNumber(n.Value, n.Float, comp.bits)
		if err != nil {
			return locate(err, n.At)
		}
		comp.push(v)
	case *IdentExpr:
		text, ok := comp.consts.Lookup(n.Name)
		if !ok {
			return &NameError{Name: n.Name, At: n.At}
		}
		v, err := parseValue(text, comp.bits)
		if err != nil {
			return locate(err, n.At)
		}
		comp.push(v)
	case *UnaryExpr:
		if err := comp.eval(n.X); err != nil {
			return err
		}
		if n.Op == UnaryKeep {
			return nil
		}
		x, err := comp.pop()
		if err != nil {
			return err
		}
		r, err := unary(n.Op, x, comp.bits)
		if err != nil {
			return locate(err, n.At)
		}
		comp.push(r)
	case *BinaryExpr:
		if err := comp.eval(n.L); err != nil {
			return err
		}
		if err := comp.eval(n.R); err != nil {
			return err
		}
		y, err := comp.pop()
		if err != nil {
			return err
		}
		x, err := comp.pop()
		if err != nil {
			return err
		}
		r, err := binary(n.Op, x, y, comp.bits)
		if err != nil {
			return locate(err, n.At)
		}
		comp.push(r)
	case *FuncExpr:
		return comp.call(n)
	case *FoldExpr:
		return comp.fold(n)
	case *VectorExpr:
		k := len(comp.stack)
		for _, e := range n.Elems {
			if err := comp.eval(e); err != nil {
				return err
			}
		}
		elems := append([]Value(nil), comp.stack[k:]...)
		comp.stack = comp.stack[:k]
		comp.push(VectorValue(elems...))
	case *DefExpr:
		if err := comp.eval(n.X); err != nil {
			return err
		}
		v, err := comp.top()
		if err != nil {
			return err
		}
		comp.consts.Set(n.Name, Beautify(v.Text(comp.digits)))
	default:
		return &InternalError{Msg: fmt.Sprintf("invalid AST node %T", n)}
	}
	return nil
}

// call evaluates a function call. The function and its arity are checked
// before any argument is evaluated.
func (comp *Computer) call(n *FuncExpr) error {
	f, ok := comp.Funcs[n.Name]
	if !ok {
		f = builtins[n.Name]
	}
	if f == nil {
		return &FuncError{Name: n.Name, At: n.At}
	}
	if a := f.Arity(); !a.Allows(len(n.Args)) {
		return &ArityError{Func: n.Name, Got: len(n.Args), Want: a, At: n.At}
	}
	k := len(comp.stack)
	for _, a := range n.Args {
		if err := comp.eval(a); err != nil {
			return err
		}
	}
	args := comp.stack[k:len(comp.stack):len(comp.stack)]
	r, err := f.Call(comp, args)
	if err != nil {
		switch err := err.(type) {
		case *DomainError:
			if err.Func == "" {
				err.Func = n.Name
			}
		case *TypeError:
			if err.Op == "" {
				err.Op = n.Name
			}
		}
		return locate(err, n.At)
	}
	comp.stack = comp.stack[:k]
	comp.push(r)
	return nil
}

// fold evaluates a sum or product. The index is bound in the constant set for
// each evaluation of the body, and its previous binding is restored after.
func (comp *Computer) fold(n *FoldExpr) error {
	init, err := comp.foldBound(n.Init, n.Kind)
	if err != nil {
		return err
	}
	limit, err := comp.foldBound(n.Limit, n.Kind)
	if err != nil {
		return err
	}
	if id, ok := n.Body.(*IdentExpr); ok && n.Kind == FoldSum && id.Name == n.Index && init.Sign() > 0 {
		comp.push(IntValue(triangular(init, limit)))
		return nil
	}
	prev, had := comp.consts.Lookup(n.Index)
	defer func() {
		if had {
			comp.consts.Set(n.Index, prev)
		} else {
			comp.consts.Delete(n.Index)
		}
	}()
	op, acc := BinaryAdd, Int64Value(0)
	if n.Kind == FoldProduct {
		op, acc = BinaryMul, Int64Value(1)
	}
	for i := new(big.Int).Set(init); i.Cmp(limit) <= 0; i.Add(i, one) {
		comp.consts.Set(n.Index, i.String())
		if err := comp.eval(n.Body); err != nil {
			return err
		}
		v, err := comp.pop()
		if err != nil {
			return err
		}
		acc, err = binary(op, acc, v, comp.bits)
		if err != nil {
			return locate(err, n.At)
		}
	}
	comp.push(acc)
	return nil
}

// foldBound evaluates a fold bound to an integer.
func (comp *Computer) foldBound(n Node, kind FoldKind) (*big.Int, error) {
	if err := comp.eval(n); err != nil {
		return nil, err
	}
	v, err := comp.pop()
	if err != nil {
		return nil, err
	}
	i, err := toInt(v, kind.String())
	if err != nil {
		return nil, locate(err, n.Pos())
	}
	return i, nil
}

// triangular computes init + (init+1) + ... + limit for init >= 1.
func triangular(init, limit *big.Int) *big.Int {
	if limit.Cmp(init) < 0 {
		return new(big.Int)
	}
	// limit(limit+1)/2 - (init-1)init/2
	a := new(big.Int).Add(limit, one)
	a.Mul(a, limit)
	b := new(big.Int).Sub(init, one)
	b.Mul(b, init)
	a.Sub(a, b)
	return a.Rsh(a, 1)
}

// Evaluate is a shortcut to evaluate an expression with a new Computer.
func Evaluate(e *Expr, c *Constants) (Value, error) {
	var comp Computer
	return comp.Eval(e, c)
}

// Eval is a shortcut to evaluate an expression with a constant set.
func (e *Expr) Eval(c *Constants) (Value, error) {
	return Evaluate(e, c)
}

// EvalFrom is a shortcut to parse an expression and return its result.
func EvalFrom(src io.RuneScanner, c *Constants) (Value, error) {
	e, err := Parse(src)
	if err != nil {
		return Value{}, err
	}
	return Evaluate(e, c)
}

// EvalString is a shortcut to parse and evaluate a string expression.
func EvalString(src string, c *Constants) (Value, error) {
	return EvalFrom(strings.NewReader(src), c)
}
