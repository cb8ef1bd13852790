package abacus

import (
	"crypto/rand"
	"math/big"
	"sort"
	"strconv"

	"github.com/zephyrtronium/bigfloat"
)

// Func is a builtin function.
type Func interface {
	// Call evaluates the function. args has a length allowed by the function's
	// arity. Call must not modify the values in args.
	Call(c *Computer, args []Value) (Value, error)

	// Arity returns the numbers of arguments the function accepts.
	Arity() Arity
}

// Arity is a range of argument counts. A negative Max means there is no
// upper bound.
type Arity struct {
	Min, Max int
}

// Allows returns whether a call with n arguments is allowed.
func (a Arity) Allows(n int) bool {
	return n >= a.Min && (a.Max < 0 || n <= a.Max)
}

func (a Arity) String() string {
	switch {
	case a.Max < 0:
		return "at least " + plural(a.Min)
	case a.Min == a.Max:
		return plural(a.Min)
	case a.Max == a.Min+1:
		return strconv.Itoa(a.Min) + " or " + plural(a.Max)
	default:
		return strconv.Itoa(a.Min) + " to " + plural(a.Max)
	}
}

func plural(n int) string {
	if n == 1 {
		return "1 argument"
	}
	return strconv.Itoa(n) + " arguments"
}

var builtins = map[string]Func{
	"sin":   Monadic(sin),
	"cos":   Monadic(cos),
	"tan":   Monadic(tan),
	"asin":  Monadic(asin),
	"acos":  Monadic(acos),
	"atan":  Monadic(atan),
	"sinh":  Monadic(sinh),
	"cosh":  Monadic(cosh),
	"tanh":  Monadic(tanh),
	"asinh": Monadic(asinh),
	"acosh": Monadic(acosh),
	"atanh": Monadic(atanh),

	"sqrt":  Monadic((*big.Float).Sqrt),
	"exp":   Monadic(bigfloat.Exp),
	"ln":    Monadic(ln),
	"log10": Monadic(log10),
	"log":   FuncOf(Arity{1, 2}, logb),

	"abs":   FuncOf(Arity{1, 1}, abs),
	"ceil":  FuncOf(Arity{1, 1}, ceil),
	"floor": FuncOf(Arity{1, 1}, floor),
	"round": FuncOf(Arity{1, 1}, round),

	"atan2": FuncOf(Arity{2, 2}, atan2f),
	"pow":   FuncOf(Arity{2, 2}, powf),
	"min":   FuncOf(Arity{1, -1}, extremum(-1)),
	"max":   FuncOf(Arity{1, -1}, extremum(1)),

	"rand": Niladic(random),
}

// Builtins returns the names of the builtin functions in sorted order.
func Builtins() []string {
	r := make([]string, 0, len(builtins))
	for k := range builtins {
		r = append(r, k)
	}
	sort.Strings(r)
	return r
}

// IsBuiltin returns whether name is a builtin function.
func IsBuiltin(name string) bool {
	_, ok := builtins[name]
	return ok
}

type monadic struct {
	f func(out, in *big.Float) *big.Float
}

func (m monadic) Call(c *Computer, args []Value) (Value, error) {
	if args[0].kind == ValueVector {
		return Value{}, &TypeError{Msg: "expected a scalar, got a vector"}
	}
	in := newFloat(c.bits).Set(toFloat(args[0], c.bits))
	r, err := guard("", in, func() *big.Float {
		return m.f(newFloat(c.bits), in)
	})
	if err != nil {
		return Value{}, err
	}
	return FloatValue(r), nil
}

func (m monadic) Arity() Arity {
	return Arity{1, 1}
}

// Monadic wraps a function of one real variable into a Func. f must set out
// to its result, to the precision of out, and return it. If f is called on an
// argument outside its domain, it should panic with big.ErrNaN or a
// *DomainError.
func Monadic(f func(out, in *big.Float) *big.Float) Func {
	return monadic{f}
}

type niladic struct {
	f func(out *big.Float) *big.Float
}

func (n niladic) Call(c *Computer, args []Value) (Value, error) {
	return FloatValue(n.f(newFloat(c.bits))), nil
}

func (n niladic) Arity() Arity {
	return Arity{0, 0}
}

// Niladic wraps a function of zero variables into a Func. f must set out to
// its result and return it. Unlike Monadic, the wrapped function is expected
// never to panic.
func Niladic(f func(out *big.Float) *big.Float) Func {
	return niladic{f}
}

type funcOf struct {
	arity Arity
	f     func(c *Computer, args []Value) (Value, error)
}

func (f funcOf) Call(c *Computer, args []Value) (Value, error) {
	return f.f(c, args)
}

func (f funcOf) Arity() Arity {
	return f.arity
}

// FuncOf creates a Func from a function on values.
func FuncOf(arity Arity, f func(c *Computer, args []Value) (Value, error)) Func {
	return funcOf{arity, f}
}

// scalars converts arguments to floats, rejecting vectors.
func scalars(c *Computer, args []Value) ([]*big.Float, error) {
	r := make([]*big.Float, len(args))
	for i, a := range args {
		if a.kind == ValueVector {
			return nil, &TypeError{Msg: "argument " + strconv.Itoa(i+1) + " is a vector"}
		}
		r[i] = newFloat(c.bits).Set(toFloat(a, c.bits))
	}
	return r, nil
}

func ln(out, in *big.Float) *big.Float {
	if in.Sign() <= 0 {
		panic(&DomainError{X: in})
	}
	return bigfloat.Log(out, in)
}

func log10(out, in *big.Float) *big.Float {
	ten := new(big.Float).SetPrec(out.Prec()).SetInt64(10)
	return logBase(out, in, ten)
}

func logBase(out, in, base *big.Float) *big.Float {
	if base.Sign() <= 0 || base.Cmp(big.NewFloat(1)) == 0 {
		panic(&DomainError{X: base})
	}
	ln(out, in)
	d := ln(new(big.Float).SetPrec(out.Prec()), base)
	return out.Quo(out, d)
}

// logb is log(x), the natural logarithm, or log(x, b), the logarithm of x to
// base b.
func logb(c *Computer, args []Value) (Value, error) {
	xs, err := scalars(c, args)
	if err != nil {
		return Value{}, err
	}
	r, err := guard("", xs[0], func() *big.Float {
		if len(xs) == 1 {
			return ln(newFloat(c.bits), xs[0])
		}
		return logBase(newFloat(c.bits), xs[0], xs[1])
	})
	if err != nil {
		return Value{}, err
	}
	return FloatValue(r), nil
}

func abs(c *Computer, args []Value) (Value, error) {
	return norm(args[0], c.bits)
}

// integral applies a rounding rule to a float argument. The result is an
// integer. Integer arguments are returned unchanged.
func integral(x Value, name string, adjust func(t *big.Int, x *big.Float, acc big.Accuracy)) (Value, error) {
	switch x.kind {
	case ValueInt:
		return x, nil
	case ValueVector:
		return Value{}, &TypeError{Op: name, Msg: "expected a scalar, got a vector"}
	}
	if x.f.IsInf() {
		return Value{}, &ArithmeticError{Op: name, Msg: "infinite operand"}
	}
	t, acc := x.f.Int(nil)
	adjust(t, x.f, acc)
	return IntValue(t), nil
}

var one = big.NewInt(1)

func floor(c *Computer, args []Value) (Value, error) {
	return integral(args[0], "floor", func(t *big.Int, x *big.Float, acc big.Accuracy) {
		// Int truncates toward zero, which is above x for negative x.
		if acc == big.Above {
			t.Sub(t, one)
		}
	})
}

func ceil(c *Computer, args []Value) (Value, error) {
	return integral(args[0], "ceil", func(t *big.Int, x *big.Float, acc big.Accuracy) {
		if acc == big.Below {
			t.Add(t, one)
		}
	})
}

// round rounds half away from zero.
func round(c *Computer, args []Value) (Value, error) {
	return integral(args[0], "round", func(t *big.Int, x *big.Float, acc big.Accuracy) {
		if acc == big.Exact {
			return
		}
		frac := new(big.Float).SetPrec(x.Prec()).SetInt(t)
		frac.Sub(x, frac)
		frac.Abs(frac)
		if frac.Cmp(big.NewFloat(0.5)) >= 0 {
			if x.Sign() < 0 {
				t.Sub(t, one)
			} else {
				t.Add(t, one)
			}
		}
	})
}

func atan2f(c *Computer, args []Value) (Value, error) {
	xs, err := scalars(c, args)
	if err != nil {
		return Value{}, err
	}
	return FloatValue(atan2(newFloat(c.bits), xs[0], xs[1])), nil
}

func powf(c *Computer, args []Value) (Value, error) {
	return binary(BinaryPow, args[0], args[1], c.bits)
}

// extremum returns a function selecting the least argument when sign is -1 or
// the greatest when sign is 1. The selected argument is returned unchanged.
func extremum(sign int) func(c *Computer, args []Value) (Value, error) {
	return func(c *Computer, args []Value) (Value, error) {
		r := args[0]
		if r.kind == ValueVector {
			return Value{}, &TypeError{Msg: "vectors are not ordered"}
		}
		for _, a := range args[1:] {
			k, err := compare(a, r, c.bits)
			if err != nil {
				return Value{}, err
			}
			if k == sign {
				r = a
			}
		}
		return r, nil
	}
}

// random sets out to a uniformly distributed number in [0, 1) with every bit
// of out's mantissa random.
func random(out *big.Float) *big.Float {
	bits := int(out.Prec())
	limit := new(big.Int).Lsh(one, uint(bits))
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		// crypto/rand.Reader never returns an error on supported platforms.
		panic(err)
	}
	out.SetInt(n)
	return out.SetMantExp(out, -bits)
}
