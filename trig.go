package abacus

import (
	"math/big"
	"sync"

	"github.com/zephyrtronium/bigfloat"
)

// guardBits is the number of extra bits carried through series evaluations.
const guardBits = 32

var piCache struct {
	sync.Mutex
	pi *big.Float
}

// pi returns π with at least prec bits. The result must not be modified.
func pi(prec uint) *big.Float {
	piCache.Lock()
	defer piCache.Unlock()
	if piCache.pi == nil || piCache.pi.Prec() < prec {
		piCache.pi = bigfloat.Pi(new(big.Float).SetPrec(prec))
	}
	return piCache.pi
}

// halfPi returns π/2 with prec bits.
func halfPi(prec uint) *big.Float {
	r := new(big.Float).SetPrec(prec).Set(pi(prec))
	return r.SetMantExp(r, -1)
}

// precOf returns the precision for the result of f(z, x).
func precOf(z, x *big.Float) uint {
	if p := z.Prec(); p != 0 {
		return p
	}
	if p := x.Prec(); p != 0 {
		return p
	}
	return 64
}

// small reports whether term no longer affects sum at prec bits.
func small(term, sum *big.Float, prec uint) bool {
	if term.Sign() == 0 {
		return true
	}
	if sum.Sign() == 0 {
		return false
	}
	return term.MantExp(nil) < sum.MantExp(nil)-int(prec)
}

// reduce writes x as r + q·π/2 with |r| <= π/4 and q in [0, 4). The working
// precision grows with the magnitude of x.
func reduce(x *big.Float, prec uint) (r *big.Float, q int, wp uint) {
	wp = prec + guardBits
	if e := x.MantExp(nil); e > 0 {
		wp += uint(e)
	}
	hp := halfPi(wp)
	k := new(big.Float).SetPrec(wp).Quo(x, hp)
	// Round to the nearest integer.
	if k.Sign() < 0 {
		k.Sub(k, big.NewFloat(0.5))
	} else {
		k.Add(k, big.NewFloat(0.5))
	}
	ki, _ := k.Int(nil)
	r = new(big.Float).SetPrec(wp).SetInt(ki)
	r.Mul(r, hp)
	r.Sub(new(big.Float).SetPrec(wp).Set(x), r)
	q = int(new(big.Int).Mod(ki, big.NewInt(4)).Int64())
	return r, q, wp
}

// sinSeries evaluates the Taylor series of sin at r.
func sinSeries(r *big.Float, prec uint) *big.Float {
	sum := new(big.Float).SetPrec(prec).Set(r)
	if r.Sign() == 0 {
		return sum
	}
	term := new(big.Float).SetPrec(prec).Set(r)
	r2 := new(big.Float).SetPrec(prec).Mul(r, r)
	d := new(big.Float).SetPrec(prec)
	for n := int64(1); ; n++ {
		term.Mul(term, r2)
		term.Quo(term, d.SetInt64(2*n*(2*n+1)))
		term.Neg(term)
		sum.Add(sum, term)
		if small(term, sum, prec) {
			return sum
		}
	}
}

// cosSeries evaluates the Taylor series of cos at r.
func cosSeries(r *big.Float, prec uint) *big.Float {
	sum := new(big.Float).SetPrec(prec).SetInt64(1)
	term := new(big.Float).SetPrec(prec).SetInt64(1)
	r2 := new(big.Float).SetPrec(prec).Mul(r, r)
	d := new(big.Float).SetPrec(prec)
	for n := int64(1); ; n++ {
		term.Mul(term, r2)
		term.Quo(term, d.SetInt64((2*n-1)*(2*n)))
		term.Neg(term)
		sum.Add(sum, term)
		if small(term, sum, prec) {
			return sum
		}
	}
}

// sinQuadrant computes sin(r + q·π/2).
func sinQuadrant(r *big.Float, q int, wp uint) *big.Float {
	switch q & 3 {
	case 0:
		return sinSeries(r, wp)
	case 1:
		return cosSeries(r, wp)
	case 2:
		s := sinSeries(r, wp)
		return s.Neg(s)
	default:
		c := cosSeries(r, wp)
		return c.Neg(c)
	}
}

func finite(x *big.Float) {
	if x.IsInf() {
		panic(&DomainError{X: x})
	}
}

func sin(z, x *big.Float) *big.Float {
	finite(x)
	p := precOf(z, x)
	r, q, wp := reduce(x, p)
	return z.SetPrec(p).Set(sinQuadrant(r, q, wp))
}

func cos(z, x *big.Float) *big.Float {
	finite(x)
	p := precOf(z, x)
	r, q, wp := reduce(x, p)
	return z.SetPrec(p).Set(sinQuadrant(r, q+1, wp))
}

func tan(z, x *big.Float) *big.Float {
	finite(x)
	p := precOf(z, x)
	r, q, wp := reduce(x, p)
	s := sinQuadrant(r, q, wp)
	c := sinQuadrant(r, q+1, wp)
	if c.Sign() == 0 {
		panic(&DomainError{X: x})
	}
	return z.SetPrec(p).Quo(s, c)
}

// atanSeries evaluates atan for 0 <= a <= 1 by halving the argument until
// the Taylor series converges quickly.
func atanSeries(a *big.Float, prec uint) *big.Float {
	a = new(big.Float).SetPrec(prec).Set(a)
	one := new(big.Float).SetPrec(prec).SetInt64(1)
	k := 0
	t := new(big.Float).SetPrec(prec)
	for a.Sign() != 0 && a.MantExp(nil) > -4 {
		// atan(a) = 2·atan(a / (1 + sqrt(1 + a²)))
		t.Mul(a, a)
		t.Add(t, one)
		t.Sqrt(t)
		t.Add(t, one)
		a.Quo(a, t)
		k++
	}
	sum := new(big.Float).SetPrec(prec).Set(a)
	if a.Sign() == 0 {
		return sum
	}
	power := new(big.Float).SetPrec(prec).Set(a)
	a2 := new(big.Float).SetPrec(prec).Mul(a, a)
	term := new(big.Float).SetPrec(prec)
	d := new(big.Float).SetPrec(prec)
	for n := int64(3); ; n += 2 {
		power.Mul(power, a2)
		power.Neg(power)
		term.Quo(power, d.SetInt64(n))
		sum.Add(sum, term)
		if small(term, sum, prec) {
			break
		}
	}
	return sum.SetMantExp(sum, k)
}

// atanWork computes atan(x) at working precision wp.
func atanWork(x *big.Float, wp uint) *big.Float {
	if x.IsInf() {
		r := halfPi(wp)
		if x.Signbit() {
			r.Neg(r)
		}
		return r
	}
	a := new(big.Float).SetPrec(wp).Abs(x)
	var r *big.Float
	if a.Cmp(big.NewFloat(1)) > 0 {
		// atan(a) = π/2 - atan(1/a)
		a.Quo(new(big.Float).SetPrec(wp).SetInt64(1), a)
		r = halfPi(wp)
		r.Sub(r, atanSeries(a, wp))
	} else {
		r = atanSeries(a, wp)
	}
	if x.Sign() < 0 {
		r.Neg(r)
	}
	return r
}

func atan(z, x *big.Float) *big.Float {
	p := precOf(z, x)
	return z.SetPrec(p).Set(atanWork(x, p+guardBits))
}

// asinWork computes asin(x) at working precision wp.
func asinWork(x *big.Float, wp uint) *big.Float {
	one := new(big.Float).SetPrec(wp).SetInt64(1)
	a := new(big.Float).SetPrec(wp).Abs(x)
	switch a.Cmp(one) {
	case 1:
		panic(&DomainError{X: x})
	case 0:
		r := halfPi(wp)
		if x.Sign() < 0 {
			r.Neg(r)
		}
		return r
	}
	// asin(x) = atan(x / sqrt(1 - x²))
	t := new(big.Float).SetPrec(wp).Mul(x, x)
	t.Sub(one, t)
	t.Sqrt(t)
	t.Quo(x, t)
	return atanWork(t, wp)
}

func asin(z, x *big.Float) *big.Float {
	p := precOf(z, x)
	return z.SetPrec(p).Set(asinWork(x, p+guardBits))
}

func acos(z, x *big.Float) *big.Float {
	p := precOf(z, x)
	wp := p + guardBits
	r := halfPi(wp)
	r.Sub(r, asinWork(x, wp))
	return z.SetPrec(p).Set(r)
}

// atan2 computes the angle of the point (x, y) in (-π, π].
func atan2(z, y, x *big.Float) *big.Float {
	p := precOf(z, y)
	wp := p + guardBits
	switch x.Sign() {
	case 0:
		switch y.Sign() {
		case 0:
			return z.SetPrec(p).SetInt64(0)
		case 1:
			return z.SetPrec(p).Set(halfPi(wp))
		default:
			return z.SetPrec(p).Neg(halfPi(wp))
		}
	case 1:
		t := new(big.Float).SetPrec(wp).Quo(y, x)
		return z.SetPrec(p).Set(atanWork(t, wp))
	default:
		t := new(big.Float).SetPrec(wp).Quo(y, x)
		r := atanWork(t, wp)
		if y.Sign() < 0 {
			r.Sub(r, pi(wp))
		} else {
			r.Add(r, pi(wp))
		}
		return z.SetPrec(p).Set(r)
	}
}

// smallBits returns extra precision for arguments near zero, where the
// hyperbolic formulas lose bits to cancellation.
func smallBits(x *big.Float) uint {
	if x.Sign() == 0 {
		return 0
	}
	if e := x.MantExp(nil); e < 0 {
		return uint(-e)
	}
	return 0
}

// expPair returns e^x and e^-x.
func expPair(x *big.Float, wp uint) (*big.Float, *big.Float) {
	ex := bigfloat.Exp(new(big.Float).SetPrec(wp), new(big.Float).SetPrec(wp).Set(x))
	inv := new(big.Float).SetPrec(wp).SetInt64(1)
	inv.Quo(inv, ex)
	return ex, inv
}

func sinh(z, x *big.Float) *big.Float {
	p := precOf(z, x)
	if x.Sign() == 0 || x.IsInf() {
		return z.SetPrec(p).Set(x)
	}
	ex, inv := expPair(x, p+guardBits+smallBits(x))
	ex.Sub(ex, inv)
	return z.SetPrec(p).SetMantExp(ex, -1)
}

func cosh(z, x *big.Float) *big.Float {
	p := precOf(z, x)
	if x.IsInf() {
		return z.SetPrec(p).SetInf(false)
	}
	ex, inv := expPair(x, p+guardBits)
	ex.Add(ex, inv)
	return z.SetPrec(p).SetMantExp(ex, -1)
}

func tanh(z, x *big.Float) *big.Float {
	p := precOf(z, x)
	if x.Sign() == 0 {
		return z.SetPrec(p).Set(x)
	}
	if x.IsInf() {
		z.SetPrec(p).SetInt64(1)
		if x.Signbit() {
			z.Neg(z)
		}
		return z
	}
	ex, inv := expPair(x, p+guardBits+smallBits(x))
	num := new(big.Float).SetPrec(ex.Prec()).Sub(ex, inv)
	ex.Add(ex, inv)
	return z.SetPrec(p).Quo(num, ex)
}

func asinh(z, x *big.Float) *big.Float {
	p := precOf(z, x)
	if x.Sign() == 0 || x.IsInf() {
		return z.SetPrec(p).Set(x)
	}
	wp := p + guardBits + smallBits(x)
	// asinh(x) = ln(|x| + sqrt(x² + 1)) with the sign of x
	a := new(big.Float).SetPrec(wp).Abs(x)
	t := new(big.Float).SetPrec(wp).Mul(a, a)
	t.Add(t, new(big.Float).SetInt64(1))
	t.Sqrt(t)
	t.Add(t, a)
	r := bigfloat.Log(new(big.Float).SetPrec(wp), t)
	if x.Sign() < 0 {
		r.Neg(r)
	}
	return z.SetPrec(p).Set(r)
}

func acosh(z, x *big.Float) *big.Float {
	p := precOf(z, x)
	if x.Cmp(big.NewFloat(1)) < 0 {
		panic(&DomainError{X: x})
	}
	if x.IsInf() {
		return z.SetPrec(p).Set(x)
	}
	wp := p + guardBits
	// acosh(x) = ln(x + sqrt(x² - 1))
	t := new(big.Float).SetPrec(wp).Mul(x, x)
	t.Sub(t, new(big.Float).SetInt64(1))
	t.Sqrt(t)
	t.Add(t, x)
	return z.SetPrec(p).Set(bigfloat.Log(new(big.Float).SetPrec(wp), t))
}

func atanh(z, x *big.Float) *big.Float {
	p := precOf(z, x)
	a := new(big.Float).Abs(x)
	if a.Cmp(big.NewFloat(1)) >= 0 {
		panic(&DomainError{X: x})
	}
	if x.Sign() == 0 {
		return z.SetPrec(p).Set(x)
	}
	wp := p + guardBits + smallBits(x)
	// atanh(x) = ln((1 + x) / (1 - x)) / 2
	one := new(big.Float).SetPrec(wp).SetInt64(1)
	num := new(big.Float).SetPrec(wp).Add(one, x)
	den := new(big.Float).SetPrec(wp).Sub(one, x)
	num.Quo(num, den)
	r := bigfloat.Log(new(big.Float).SetPrec(wp), num)
	return z.SetPrec(p).SetMantExp(r, -1)
}
