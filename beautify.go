package abacus

import (
	"strconv"
	"strings"
)

// MaxExp is the largest exponent magnitude which Beautify writes out in
// positional notation.
const MaxExp = 20

// Beautify rewrites canonical value text for display. A leading + is
// dropped. A number with a short exponent below MaxExp in magnitude is
// written without an exponent, so 1.5E3 becomes 1500 and 2.5E-2 becomes
// 0.025. Any other exponent is written as " * 10^", so 1E40 becomes
// 1 * 10^40. Vectors are rewritten element by element. Text without an
// exponent is returned unchanged.
func Beautify(s string) string {
	return BeautifyExp(s, MaxExp)
}

// BeautifyExp is Beautify with a custom exponent threshold.
func BeautifyExp(s string, maxExp int) string {
	if strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]") {
		parts := splitTop(s[1 : len(s)-1])
		for i, p := range parts {
			parts[i] = BeautifyExp(strings.TrimSpace(p), maxExp)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
	s = strings.TrimPrefix(s, "+")
	k := strings.IndexAny(s, "Ee")
	if k < 0 {
		return s
	}
	mant, exp := s[:k], strings.TrimPrefix(s[k+1:], "+")
	if len(exp) < 4 {
		if e, err := strconv.Atoi(exp); err == nil && e < maxExp && -e < maxExp {
			return shiftPoint(mant, e)
		}
	}
	return mant + " * 10^" + exp
}

// shiftPoint moves the decimal point of mant by exp places.
func shiftPoint(mant string, exp int) string {
	sign := ""
	switch {
	case strings.HasPrefix(mant, "-"):
		sign, mant = "-", mant[1:]
	case strings.HasPrefix(mant, "+"):
		mant = mant[1:]
	}
	whole, frac, _ := strings.Cut(mant, ".")
	digits := whole + frac
	point := len(whole) + exp
	for len(digits) > 1 && digits[0] == '0' {
		digits = digits[1:]
		point--
	}
	switch {
	case digits == "0":
		return "0"
	case point <= 0:
		return sign + "0." + strings.Repeat("0", -point) + digits
	case point >= len(digits):
		return sign + digits + strings.Repeat("0", point-len(digits))
	default:
		return sign + digits[:point] + "." + digits[point:]
	}
}
