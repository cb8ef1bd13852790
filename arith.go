package abacus

import (
	"math/big"
	"strconv"

	"github.com/zephyrtronium/bigfloat"
)

// maxShift is the largest shift count accepted by << and >>.
const maxShift = 1 << 24

// maxFactorial is the largest operand accepted by !.
const maxFactorial = 1 << 20

// maxPowBits is the approximate largest size in bits of an integer power.
const maxPowBits = 1 << 24

// maxIntPow is the largest exponent magnitude computed by repeated squaring.
const maxIntPow = 1 << 20

// binary applies a binary operator. Vectors combine element by element and
// must have the same length. A vector cannot be combined with a scalar.
func binary(op BinaryOp, x, y Value, prec uint) (Value, error) {
	if x.kind == ValueVector || y.kind == ValueVector {
		if x.kind != y.kind {
			return Value{}, &TypeError{Op: op.String(), Msg: x.kind.String() + " and " + y.kind.String()}
		}
		if len(x.v) != len(y.v) {
			return Value{}, &TypeError{Op: op.String(), Msg: "vector lengths " + strconv.Itoa(len(x.v)) + " and " + strconv.Itoa(len(y.v)) + " differ"}
		}
		r := make([]Value, len(x.v))
		for i := range x.v {
			var err error
			r[i], err = binary(op, x.v[i], y.v[i], prec)
			if err != nil {
				return Value{}, err
			}
		}
		return VectorValue(r...), nil
	}
	switch op {
	case BinaryAdd:
		if x.kind == ValueInt && y.kind == ValueInt {
			return IntValue(new(big.Int).Add(x.i, y.i)), nil
		}
		fx, fy := toFloat(x, prec), toFloat(y, prec)
		return floatOp("+", fy, func() *big.Float { return newFloat(prec).Add(fx, fy) })
	case BinarySub:
		if x.kind == ValueInt && y.kind == ValueInt {
			return IntValue(new(big.Int).Sub(x.i, y.i)), nil
		}
		fx, fy := toFloat(x, prec), toFloat(y, prec)
		return floatOp("-", fy, func() *big.Float { return newFloat(prec).Sub(fx, fy) })
	case BinaryMul:
		if x.kind == ValueInt && y.kind == ValueInt {
			return IntValue(new(big.Int).Mul(x.i, y.i)), nil
		}
		fx, fy := toFloat(x, prec), toFloat(y, prec)
		return floatOp("*", fy, func() *big.Float { return newFloat(prec).Mul(fx, fy) })
	case BinaryDiv:
		fx, fy := toFloat(x, prec), toFloat(y, prec)
		if fy.Sign() == 0 {
			return Value{}, &ArithmeticError{Op: "/", Msg: "division by zero"}
		}
		if fx.IsInf() && fy.IsInf() {
			return Value{}, &DomainError{X: fy, Func: "/"}
		}
		return FloatValue(newFloat(prec).Quo(fx, fy)), nil
	case BinaryMod:
		return mod(x, y)
	case BinaryPow:
		return pow(x, y, prec)
	case BinaryLshift, BinaryRshift:
		return shift(op, x, y)
	default:
		return Value{}, &InternalError{Msg: "unknown binary operator " + strconv.Itoa(int(op))}
	}
}

// unary applies a unary operator. Negation and factorial apply to each element
// of a vector. The norm of a vector is its Euclidean length.
func unary(op UnaryOp, x Value, prec uint) (Value, error) {
	switch op {
	case UnaryKeep:
		return x, nil
	case UnaryNorm:
		return norm(x, prec)
	}
	if x.kind == ValueVector {
		r := make([]Value, len(x.v))
		for i, e := range x.v {
			var err error
			r[i], err = unary(op, e, prec)
			if err != nil {
				return Value{}, err
			}
		}
		return VectorValue(r...), nil
	}
	switch op {
	case UnaryNegate:
		if x.kind == ValueInt {
			return IntValue(new(big.Int).Neg(x.i)), nil
		}
		return FloatValue(newFloat(prec).Neg(x.f)), nil
	case UnaryFactorial:
		return factorial(x)
	default:
		return Value{}, &InternalError{Msg: "unknown unary operator " + strconv.Itoa(int(op))}
	}
}

func newFloat(prec uint) *big.Float {
	return new(big.Float).SetPrec(prec)
}

// toFloat converts a scalar to a float with the given precision. Floats
// already at that precision are returned as is and must not be modified.
func toFloat(x Value, prec uint) *big.Float {
	switch x.kind {
	case ValueInt:
		return newFloat(prec).SetInt(x.i)
	case ValueFloat:
		if x.f.Prec() == prec {
			return x.f
		}
		return newFloat(prec).Set(x.f)
	default:
		panic("abacus: toFloat of " + x.kind.String())
	}
}

// toInt converts a scalar to an integer, truncating floats toward zero.
func toInt(x Value, op string) (*big.Int, error) {
	switch x.kind {
	case ValueInt:
		return x.i, nil
	case ValueFloat:
		if x.f.IsInf() {
			return nil, &ArithmeticError{Op: op, Msg: "infinite operand"}
		}
		r, _ := x.f.Int(nil)
		return r, nil
	default:
		return nil, &TypeError{Op: op, Msg: "expected a scalar, got a vector"}
	}
}

// mod computes the remainder of x / y adjusted by one divisor toward the
// sign of the divisor.
func mod(x, y Value) (Value, error) {
	a, err := toInt(x, "mod")
	if err != nil {
		return Value{}, err
	}
	b, err := toInt(y, "mod")
	if err != nil {
		return Value{}, err
	}
	if b.Sign() == 0 {
		return Value{}, &ArithmeticError{Op: "mod", Msg: "division by zero"}
	}
	r := new(big.Int).Rem(a, b)
	if r.Sign() < 0 {
		r.Add(r, b)
	}
	return IntValue(r), nil
}

func shift(op BinaryOp, x, y Value) (Value, error) {
	a, err := toInt(x, op.String())
	if err != nil {
		return Value{}, err
	}
	n, err := toInt(y, op.String())
	if err != nil {
		return Value{}, err
	}
	if n.Sign() < 0 {
		return Value{}, &ArithmeticError{Op: op.String(), Msg: "negative shift count"}
	}
	if !n.IsInt64() || n.Int64() > maxShift {
		return Value{}, &ArithmeticError{Op: op.String(), Msg: "shift count too large"}
	}
	if op == BinaryLshift {
		return IntValue(new(big.Int).Lsh(a, uint(n.Int64()))), nil
	}
	return IntValue(new(big.Int).Rsh(a, uint(n.Int64()))), nil
}

// factorial computes |x|! with the sign of x.
func factorial(x Value) (Value, error) {
	n, err := toInt(x, "!")
	if err != nil {
		return Value{}, err
	}
	if !n.IsInt64() || n.Int64() > maxFactorial || n.Int64() < -maxFactorial {
		return Value{}, &ArithmeticError{Op: "!", Msg: "operand too large"}
	}
	k := n.Int64()
	neg := k < 0
	if neg {
		k = -k
	}
	r := new(big.Int).MulRange(1, k)
	if neg {
		r.Neg(r)
	}
	return IntValue(r), nil
}

// pow computes x^y. Integer powers of integers are exact. A negative integer
// exponent produces a float.
func pow(x, y Value, prec uint) (Value, error) {
	if x.kind == ValueInt && y.kind == ValueInt && y.i.Sign() >= 0 {
		if x.i.CmpAbs(one) > 0 && !powFits(x.i, y.i) {
			return Value{}, &ArithmeticError{Op: "^", Msg: "exponent too large"}
		}
		return IntValue(new(big.Int).Exp(x.i, y.i, nil)), nil
	}
	r, err := powFloat(toFloat(x, prec), toFloat(y, prec), prec)
	if err != nil {
		return Value{}, err
	}
	return FloatValue(r), nil
}

// powFits reports whether |x|^y has at most about maxPowBits bits, given
// |x| > 1 and y >= 0.
func powFits(x, y *big.Int) bool {
	if !y.IsInt64() {
		return false
	}
	// x has at least BitLen-1 bits of magnitude beyond 1, so the result has
	// at least y*(BitLen-1) bits.
	b := int64(x.BitLen() - 1)
	if b == 0 {
		b = 1
	}
	return y.Int64() <= maxPowBits/b
}

func powFloat(x, y *big.Float, prec uint) (*big.Float, error) {
	switch {
	case x.Sign() == 0:
		switch y.Sign() {
		case 0:
			return newFloat(prec).SetInt64(1), nil
		case 1:
			return newFloat(prec), nil
		default:
			return nil, &ArithmeticError{Op: "^", Msg: "division by zero"}
		}
	case y.Sign() == 0:
		return newFloat(prec).SetInt64(1), nil
	}
	if n, acc := y.Int64(); acc == big.Exact && n >= -maxIntPow && n <= maxIntPow {
		return powInt(x, n, prec), nil
	}
	switch {
	case x.Sign() < 0:
		if !y.IsInt() {
			return nil, &DomainError{X: x, Func: "^"}
		}
		r, err := guard("^", y, func() *big.Float {
			return bigfloat.Pow(newFloat(prec), newFloat(prec).Neg(x), y)
		})
		if err != nil {
			return nil, err
		}
		if odd(y) {
			r.Neg(r)
		}
		return r, nil
	}
	return guard("^", x, func() *big.Float {
		return bigfloat.Pow(newFloat(prec), x, y)
	})
}

// powInt computes x^n by repeated squaring.
func powInt(x *big.Float, n int64, prec uint) *big.Float {
	wp := prec + guardBits
	neg := n < 0
	if neg {
		n = -n
	}
	r := newFloat(wp).SetInt64(1)
	b := newFloat(wp).Set(x)
	for n > 0 {
		if n&1 != 0 {
			r.Mul(r, b)
		}
		b.Mul(b, b)
		n >>= 1
	}
	if neg {
		r.Quo(newFloat(wp).SetInt64(1), r)
	}
	return newFloat(prec).Set(r)
}

// floatOp calls f and converts a NaN panic into a DomainError for x.
func floatOp(op string, x *big.Float, f func() *big.Float) (Value, error) {
	r, err := guard(op, x, f)
	if err != nil {
		return Value{}, err
	}
	return FloatValue(r), nil
}

// odd reports whether an integral float is odd.
func odd(y *big.Float) bool {
	i, _ := y.Int(nil)
	return i.Bit(0) == 1
}

// guard calls f and converts a NaN panic into a DomainError for x.
func guard(name string, x *big.Float, f func() *big.Float) (r *big.Float, err error) {
	defer func() {
		if v := recover(); v != nil {
			switch v := v.(type) {
			case big.ErrNaN:
				err = &DomainError{X: x, Func: name}
			case *DomainError:
				err = v
			default:
				panic(v)
			}
			r = nil
		}
	}()
	return f(), nil
}

// norm computes the absolute value of a scalar, which keeps its kind, or the
// Euclidean norm of a vector, which is a float.
func norm(x Value, prec uint) (Value, error) {
	switch x.kind {
	case ValueInt:
		return IntValue(new(big.Int).Abs(x.i)), nil
	case ValueFloat:
		return FloatValue(newFloat(prec).Abs(x.f)), nil
	default:
		return floatOp("norm", nil, func() *big.Float {
			return newFloat(prec).Sqrt(sumSquares(x, prec))
		})
	}
}

// sumSquares computes the sum of squares of all scalars in a vector, nested
// vectors included.
func sumSquares(x Value, prec uint) *big.Float {
	s := newFloat(prec)
	for _, e := range x.v {
		if e.kind == ValueVector {
			s.Add(s, sumSquares(e, prec))
			continue
		}
		f := toFloat(e, prec)
		s.Add(s, newFloat(prec).Mul(f, f))
	}
	return s
}

// compare compares two scalars.
func compare(x, y Value, prec uint) (int, error) {
	if x.kind == ValueVector || y.kind == ValueVector {
		return 0, &TypeError{Op: "comparison", Msg: "vectors are not ordered"}
	}
	if x.kind == ValueInt && y.kind == ValueInt {
		return x.i.Cmp(y.i), nil
	}
	return toFloat(x, prec).Cmp(toFloat(y, prec)), nil
}
