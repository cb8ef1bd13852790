package abacus

import (
	"math/big"
	"strconv"
	"strings"
)

// ValueKind is the shape of a Value.
type ValueKind int8

const (
	// ValueInt is an exact integer of unbounded size.
	ValueInt ValueKind = iota
	// ValueFloat is a floating-point number with the working precision.
	ValueFloat
	// ValueVector is an ordered list of values.
	ValueVector
)

func (k ValueKind) String() string {
	switch k {
	case ValueInt:
		return "integer"
	case ValueFloat:
		return "float"
	case ValueVector:
		return "vector"
	default:
		return "ValueKind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is the result of evaluating an expression. Values are immutable;
// operations always produce new values.
type Value struct {
	kind ValueKind
	i    *big.Int
	f    *big.Float
	v    []Value
}

// IntValue creates an integer value. x must not be modified afterward.
func IntValue(x *big.Int) Value {
	return Value{kind: ValueInt, i: x}
}

// FloatValue creates a floating-point value. x must not be modified
// afterward.
func FloatValue(x *big.Float) Value {
	return Value{kind: ValueFloat, f: x}
}

// VectorValue creates a vector of values.
func VectorValue(elems ...Value) Value {
	return Value{kind: ValueVector, v: elems}
}

// Int64Value is a shortcut to create an integer value.
func Int64Value(x int64) Value {
	return IntValue(big.NewInt(x))
}

// Kind returns the shape of the value.
func (x Value) Kind() ValueKind {
	return x.kind
}

// Int returns a copy of an integer value. It returns nil for other kinds.
func (x Value) Int() *big.Int {
	if x.kind != ValueInt {
		return nil
	}
	return new(big.Int).Set(x.i)
}

// Float returns a copy of a scalar value as a float. Integers are converted
// with enough precision to be exact. It returns nil for vectors.
func (x Value) Float() *big.Float {
	switch x.kind {
	case ValueInt:
		prec := uint(x.i.BitLen())
		if prec < 64 {
			prec = 64
		}
		return new(big.Float).SetPrec(prec).SetInt(x.i)
	case ValueFloat:
		return new(big.Float).Copy(x.f)
	default:
		return nil
	}
}

// Elems returns the elements of a vector. It returns nil for scalars.
func (x Value) Elems() []Value {
	if x.kind != ValueVector {
		return nil
	}
	return append([]Value(nil), x.v...)
}

// Len returns the number of elements of a vector, or 0 for scalars.
func (x Value) Len() int {
	return len(x.v)
}

// String formats the value using the current precision.
func (x Value) String() string {
	return x.Text(Precision())
}

// Text formats the value in canonical form. Integers are written in decimal.
// Floats are written as a mantissa with at most digits significant digits and
// no trailing zeros, followed by E and a decimal exponent, e.g. 1.5E3. Vectors
// are written as [a, b, c]. Beautify turns this form into the usual one.
func (x Value) Text(digits int) string {
	switch x.kind {
	case ValueInt:
		return x.i.String()
	case ValueFloat:
		return floatText(x.f, digits)
	case ValueVector:
		var b strings.Builder
		b.WriteByte('[')
		for i, e := range x.v {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(e.Text(digits))
		}
		b.WriteByte(']')
		return b.String()
	default:
		return "<invalid value>"
	}
}

func floatText(f *big.Float, digits int) string {
	if f.IsInf() {
		if f.Signbit() {
			return "-Inf"
		}
		return "+Inf"
	}
	if f.Sign() == 0 {
		return "0E0"
	}
	if digits < 1 {
		digits = 1
	}
	s := f.Text('e', digits-1)
	mant, exp, _ := strings.Cut(s, "e")
	if strings.Contains(mant, ".") {
		mant = strings.TrimRight(mant, "0")
		mant = strings.TrimSuffix(mant, ".")
	}
	e, err := strconv.Atoi(exp)
	if err != nil {
		return mant + "E" + exp
	}
	return mant + "E" + strconv.Itoa(e)
}

// ParseValue parses the text of a value as produced by Text or Beautify.
// Text containing a decimal point or an exponent is a float at the current
// precision. Otherwise it is an integer.
func ParseValue(text string) (Value, error) {
	return parseValue(text, precBits(Precision()))
}

func parseValue(text string, prec uint) (Value, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "[") {
		if !strings.HasSuffix(text, "]") {
			return Value{}, &ArithmeticError{Msg: "malformed vector " + strconv.Quote(text)}
		}
		parts := splitTop(text[1 : len(text)-1])
		elems := make([]Value, 0, len(parts))
		for _, p := range parts {
			e, err := parseValue(p, prec)
			if err != nil {
				return Value{}, err
			}
			elems = append(elems, e)
		}
		return VectorValue(elems...), nil
	}
	s := strings.ReplaceAll(text, " ", "")
	s = strings.Replace(s, "*10^", "E", 1)
	return parseNumber(s, strings.ContainsAny(s, ".Ee") || strings.HasSuffix(s, "Inf"), prec)
}

// splitTop splits s at commas which are not inside brackets. The result is
// empty if s contains only spaces.
func splitTop(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var r []string
	depth, start := 0, 0
	for i, c := range s {
		switch c {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				r = append(r, s[start:i])
				start = i + 1
			}
		}
	}
	return append(r, s[start:])
}

// parseNumber converts numeric text to a value.
func parseNumber(s string, float bool, prec uint) (Value, error) {
	if !float {
		x, ok := new(big.Int).SetString(s, 10)
		if !ok {
			return Value{}, &ArithmeticError{Msg: "malformed integer " + strconv.Quote(s)}
		}
		return IntValue(x), nil
	}
	switch s {
	case "+Inf", "Inf":
		return FloatValue(new(big.Float).SetPrec(prec).SetInf(false)), nil
	case "-Inf":
		return FloatValue(new(big.Float).SetPrec(prec).SetInf(true)), nil
	}
	x, _, err := new(big.Float).SetPrec(prec).Parse(s, 10)
	if err != nil {
		return Value{}, &ArithmeticError{Msg: "malformed number " + strconv.Quote(s)}
	}
	return FloatValue(x), nil
}
