// Package abacus implements an arbitrary-precision calculator.
//
// The syntax of expressions is intended to be similar to math you'd write in
// your notes. "2^3^2" is 2^(3^2). "sqrt 16" calls sqrt with one argument, so
// parentheses are only needed for several arguments, as in "atan2(1, 2)".
// "|x|" is the absolute value of x or the length of a vector. "[1, 2, 3]" is a
// vector, and arithmetic on vectors of the same length works element by
// element. "sum[i=1,10](i^2)" and "product[i=1,5](i)" fold their body over a
// range of integers.
//
// Integers are exact and may be arbitrarily large. Division and most
// functions produce floating-point numbers, which carry the number of decimal
// digits given by SetPrecision.
//
// A Constants holds named values as text. "x = 7" defines x for later
// expressions evaluated with the same Constants. Compute and ComputeWith
// parse, evaluate, and format in one step, reporting errors to an ErrorSink
// rather than returning them.
package abacus
