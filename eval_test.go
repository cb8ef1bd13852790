package abacus_test

import (
	"math"
	"regexp"
	"strconv"
	"testing"

	"github.com/zephyrtronium/abacus"
)

func TestEval(t *testing.T) {
	cases := []struct {
		name string
		src  string
		kind abacus.ValueKind
		want string
	}{
		{"int", "1", abacus.ValueInt, "1"},
		{"float", "1.5", abacus.ValueFloat, "1.5E0"},
		{"add", "4+5+6", abacus.ValueInt, "15"},
		{"big", "99999999999999999999 + 1", abacus.ValueInt, "100000000000000000000"},
		{"mul", "4*5*6", abacus.ValueInt, "120"},
		{"times", "4×5", abacus.ValueInt, "20"},
		{"divides", "9÷2", abacus.ValueFloat, "4.5E0"},
		{"pow", "4^3^2", abacus.ValueInt, "262144"},
		{"pow-neg", "2^-2", abacus.ValueFloat, "2.5E-1"},
		{"mod", "-7 mod 3", abacus.ValueInt, "2"},
		{"fact", "5!", abacus.ValueInt, "120"},
		{"shift", "2 << 10", abacus.ValueInt, "2048"},
		{"rshift", "2048 >> 3", abacus.ValueInt, "256"},
		{"implicit", "sqrt 16", abacus.ValueFloat, "4E0"},
		{"vector", "[1, 2] * [3, 4]", abacus.ValueVector, "[3, 8]"},
		{"vector-empty", "[]", abacus.ValueVector, "[]"},
		{"norm", "|[3, 4]|", abacus.ValueFloat, "5E0"},
		{"abs", "|3---8|", abacus.ValueInt, "5"},
		{"def", "x = 7", abacus.ValueInt, "7"},
		{"def-use", "(x = 3) + x", abacus.ValueInt, "6"},
		{"sum", "sum[i=1,1000](i)", abacus.ValueInt, "500500"},
		{"sum-squares", "sum[i=1,10](i^2)", abacus.ValueInt, "385"},
		{"sum-zero", "sum[i=0,4](i)", abacus.ValueInt, "10"},
		{"sum-empty", "sum[i=5,1](i)", abacus.ValueInt, "0"},
		{"product", "product[i=1,5](i)", abacus.ValueInt, "120"},
		{"product-empty", "product[i=5,1](i)", abacus.ValueInt, "1"},
		{"nested-fold", "sum[i=1,3](product[j=1,i](j))", abacus.ValueInt, "9"},
		{"floor", "floor(-2.5)", abacus.ValueInt, "-3"},
		{"ceil", "ceil(2.1)", abacus.ValueInt, "3"},
		{"round", "round(2.5)", abacus.ValueInt, "3"},
		{"round-neg", "round(-2.5)", abacus.ValueInt, "-3"},
		{"min", "min(3, 1, 2)", abacus.ValueInt, "1"},
		{"max", "max(3, 1, 2.5)", abacus.ValueInt, "3"},
		{"pow-func", "pow(2, 8)", abacus.ValueInt, "256"},
		{"sin", "sin(0)", abacus.ValueFloat, "0E0"},
		{"cos", "cos(0)", abacus.ValueFloat, "1E0"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, err := abacus.EvalString(c.src, nil)
			if err != nil {
				t.Fatalf("%q: %v", c.src, err)
			}
			if v.Kind() != c.kind {
				t.Errorf("%q: want %v, got %v", c.src, c.kind, v.Kind())
			}
			if got := v.Text(abacus.DefaultPrecision); got != c.want {
				t.Errorf("%q: want %q, got %q", c.src, c.want, got)
			}
		})
	}
}

func TestEvalFuncs(t *testing.T) {
	cases := []struct {
		src  string
		want float64
	}{
		{"sin(1)", math.Sin(1)},
		{"sin(-100)", math.Sin(-100)},
		{"cos(2.5)", math.Cos(2.5)},
		{"tan(0.5)", math.Tan(0.5)},
		{"asin(0.5)", math.Asin(0.5)},
		{"acos(-0.25)", math.Acos(-0.25)},
		{"atan(3)", math.Atan(3)},
		{"atan(-0.1)", math.Atan(-0.1)},
		{"atan2(1, -1)", math.Atan2(1, -1)},
		{"atan2(-2, 0)", math.Atan2(-2, 0)},
		{"sinh(1.5)", math.Sinh(1.5)},
		{"cosh(-1)", math.Cosh(-1)},
		{"tanh(0.3)", math.Tanh(0.3)},
		{"asinh(2)", math.Asinh(2)},
		{"acosh(3)", math.Acosh(3)},
		{"atanh(0.5)", math.Atanh(0.5)},
		{"exp(1)", math.E},
		{"ln(10)", math.Log(10)},
		{"log10(1000)", 3},
		{"log(1000)", math.Log(1000)},
		{"log(e)", 1},
		{"log(8, 2)", 3},
		{"sqrt(2)", math.Sqrt2},
		{"pi", math.Pi},
		{"e", math.E},
		{"2^0.5", math.Sqrt2},
		{"(-8)^3.0", -512},
		{"7 / 2", 3.5},
	}
	for _, c := range cases {
		t.Run(c.src, func(t *testing.T) {
			v, err := abacus.EvalString(c.src, nil)
			if err != nil {
				t.Fatalf("%q: %v", c.src, err)
			}
			got, _ := v.Float().Float64()
			if math.Abs(got-c.want) > 1e-12*math.Max(1, math.Abs(c.want)) {
				t.Errorf("%q: want %v, got %v", c.src, c.want, got)
			}
		})
	}
}

func TestEvalRand(t *testing.T) {
	for i := 0; i < 16; i++ {
		v, err := abacus.EvalString("rand()", nil)
		if err != nil {
			t.Fatal(err)
		}
		f, _ := v.Float().Float64()
		if f < 0 || f >= 1 {
			t.Errorf("rand() = %v out of range", f)
		}
	}
}

func TestEvalErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		kind abacus.ErrorKind
		msg  string
	}{
		{"undefined", "x + 1", abacus.KindSemantic, `^1:1: undefined constant "x"$`},
		{"unknown-func", "foo(1)", abacus.KindSemantic, `^1:1: unknown function "foo"$`},
		{"arity", "atan2(1)", abacus.KindSemantic, `^1:1: function "atan2" requires 2 arguments, but 1 is given$`},
		{"arity-min", "min()", abacus.KindSemantic, `requires at least 1 argument`},
		{"vector-scalar", "[1,2]*2", abacus.KindSemantic, `^1:6: invalid operands to \*`},
		{"vector-length", "[1,2]+[1]", abacus.KindSemantic, `vector lengths 2 and 1 differ`},
		{"vector-arg", "sqrt([1])", abacus.KindSemantic, `invalid operands to sqrt`},
		{"div-zero", "1/0", abacus.KindArithmetic, `^1:2: division by zero in /$`},
		{"mod-zero", "5 mod 0", abacus.KindArithmetic, `division by zero in mod`},
		{"sqrt", "sqrt(-1)", abacus.KindArithmetic, `outside the domain of sqrt`},
		{"ln", "ln(0)", abacus.KindArithmetic, `outside the domain of ln`},
		{"asin", "asin(2)", abacus.KindArithmetic, `outside the domain of asin`},
		{"pow-domain", "(-8)^0.5", abacus.KindArithmetic, `outside the domain of \^`},
		{"neg-shift", "1 << -1", abacus.KindArithmetic, `negative shift count`},
		{"pow-large", "3^4294967295", abacus.KindArithmetic, `^1:2: exponent too large in \^$`},
		{"pow-huge", "7^(2^70)", abacus.KindArithmetic, `exponent too large`},
		{"log", "log(-1)", abacus.KindArithmetic, `outside the domain of log`},
		{"log-base", "log(8, 1)", abacus.KindArithmetic, `outside the domain of log`},
		{"fold-body", "sum[i=1,3](y)", abacus.KindSemantic, `undefined constant "y"`},
		{"syntax", "1 +", abacus.KindSyntax, `^1:4: unexpected end of input$`},
		{"scan", "1 $ 2", abacus.KindScan, `^1:3: invalid token "\$"$`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			v, err := abacus.EvalString(c.src, nil)
			if err == nil {
				t.Fatalf("%q: expected error, got %v", c.src, v)
			}
			if k := abacus.KindOf(err); k != c.kind {
				t.Errorf("%q: want %v error, got %v: %v", c.src, c.kind, k, err)
			}
			if !regexp.MustCompile(c.msg).MatchString(err.Error()) {
				t.Errorf("%q: error %q does not match %q", c.src, err.Error(), c.msg)
			}
		})
	}
}

func TestEvalInfinity(t *testing.T) {
	c := abacus.NewConstants(abacus.WithConstant("inf", "Inf"))
	cases := []struct {
		src string
		msg string
	}{
		{"inf - inf", `^1:5: \+Inf is outside the domain of -$`},
		{"inf + -inf", `outside the domain of \+`},
		{"inf * 0", `outside the domain of \*`},
		{"0 * inf", `outside the domain of \*`},
		{"[inf] - [inf]", `outside the domain of -`},
	}
	for _, cs := range cases {
		t.Run(cs.src, func(t *testing.T) {
			v, err := abacus.EvalString(cs.src, c)
			if err == nil {
				t.Fatalf("%q: expected error, got %v", cs.src, v)
			}
			if k := abacus.KindOf(err); k != abacus.KindArithmetic {
				t.Errorf("%q: want %v error, got %v: %v", cs.src, abacus.KindArithmetic, k, err)
			}
			if !regexp.MustCompile(cs.msg).MatchString(err.Error()) {
				t.Errorf("%q: error %q does not match %q", cs.src, err.Error(), cs.msg)
			}
		})
	}
	for _, src := range []string{"inf + inf", "inf * 2", "|inf|", "|[inf, 1]|", "abs(-inf)"} {
		if _, err := abacus.EvalString(src, c); err != nil {
			t.Errorf("%q: unexpected error %v", src, err)
		}
	}
}

// TestEvalUserErrorKinds checks that mistakes in input are never reported as
// broken invariants.
func TestEvalUserErrorKinds(t *testing.T) {
	c := abacus.NewConstants(abacus.WithConstant("inf", "Inf"))
	srcs := []string{
		"", "1 +", "(1", "1)", "1 2", "$", "x", "foo(1)", "atan2(1)",
		"[1]*2", "[1,2]+[1]", "1/0", "0^-1", "sqrt(-1)", "ln(0)", "log(0, 2)",
		"1 << -1", "1 << 2^40", "3^4294967295", "(-8)^0.5", "inf - inf",
		"floor(inf)", "min([1], 2)", "sum[i=1,3](y)", "sum[i=[1],3](i)",
		"x = = 1", "(2^70)!",
	}
	for _, src := range srcs {
		_, err := abacus.EvalString(src, c)
		if err == nil {
			t.Errorf("%q: expected error", src)
			continue
		}
		if abacus.KindOf(err) == abacus.KindInternal {
			t.Errorf("%q: input mistake reported as internal error: %v", src, err)
		}
	}
}

func TestEvalDefs(t *testing.T) {
	c := abacus.NewConstants()
	e, err := abacus.ParseString("y = x * 2")
	if err != nil {
		t.Fatal(err)
	}
	for i, x := range []string{"1", "2.5", "-3"} {
		c.Set("x", x)
		if _, err := e.Eval(c); err != nil {
			t.Fatalf("eval %d: %v", i, err)
		}
	}
	if got, _ := c.Lookup("y"); got != "-6" {
		t.Errorf("y: want %q, got %q", "-6", got)
	}
}

func TestEvalFoldRestores(t *testing.T) {
	c := abacus.NewConstants(abacus.WithConstant("i", "42"))
	if _, err := abacus.EvalString("sum[i=1,3](i*2)", c); err != nil {
		t.Fatal(err)
	}
	if got, _ := c.Lookup("i"); got != "42" {
		t.Errorf("i after sum: want 42, got %q", got)
	}
	if _, err := abacus.EvalString("product[k=1,3](k)", c); err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Lookup("k"); ok {
		t.Error("k still defined after product")
	}
}

func TestEvalSumIndex(t *testing.T) {
	cases := []struct {
		init, limit int
	}{
		{1, 1},
		{1, 2},
		{1, 1000},
		{3, 5},
		{5, 1},
		{7, 7},
		{100, 99},
		{2, 5000},
		{4096, 8191},
		{0, 10},
		{-5, 5},
	}
	for _, c := range cases {
		bounds := strconv.Itoa(c.init) + "," + strconv.Itoa(c.limit)
		t.Run(bounds, func(t *testing.T) {
			fast, err := abacus.EvalString("sum[i="+bounds+"](i)", nil)
			if err != nil {
				t.Fatal(err)
			}
			slow, err := abacus.EvalString("sum[i="+bounds+"](i+0)", nil)
			if err != nil {
				t.Fatal(err)
			}
			if fast.Kind() != slow.Kind() || fast.Text(50) != slow.Text(50) {
				t.Errorf("sum of i gave %v %s, sum of i+0 gave %v %s", fast.Kind(), fast.Text(50), slow.Kind(), slow.Text(50))
			}
		})
	}
}

func TestComputerFuncs(t *testing.T) {
	comp := abacus.Computer{Funcs: map[string]abacus.Func{
		"double": abacus.FuncOf(abacus.Arity{Min: 1, Max: 1}, func(c *abacus.Computer, args []abacus.Value) (abacus.Value, error) {
			x := args[0].Int()
			return abacus.IntValue(x.Lsh(x, 1)), nil
		}),
		"sqrt": nil,
	}}
	e, err := abacus.ParseString("double(3)")
	if err != nil {
		t.Fatal(err)
	}
	v, err := comp.Eval(e, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := v.String(); got != "6" {
		t.Errorf("double(3): want 6, got %q", got)
	}
	e, err = abacus.ParseString("sqrt(4)")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := comp.Eval(e, nil); abacus.KindOf(err) != abacus.KindSemantic {
		t.Errorf("hidden sqrt: want semantic error, got %v", err)
	}
}

func TestPrecision(t *testing.T) {
	t.Cleanup(func() { abacus.SetPrecision(abacus.DefaultPrecision) })
	abacus.SetPrecision(10)
	if got := abacus.Precision(); got != 10 {
		t.Fatalf("want precision 10, got %d", got)
	}
	cases := []struct {
		src, want string
	}{
		{"pi", "3.141592654"},
		{"1/3", "0.3333333333"},
		{"2/3", "0.6666666667"},
	}
	for _, c := range cases {
		if got := abacus.Compute(c.src, nil); got != c.want {
			t.Errorf("%q at 10 digits: want %q, got %q", c.src, c.want, got)
		}
	}
	abacus.SetPrecision(-5)
	if got := abacus.Precision(); got != 1 {
		t.Errorf("want precision clamped to 1, got %d", got)
	}
}

func BenchmarkFold(b *testing.B) {
	cases := []struct {
		name string
		src  string
	}{
		{"triangular", "sum[i=1,100000](i)"},
		{"sum", "sum[i=1,1000](i*2)"},
		{"product", "product[i=1,200](i)"},
	}
	for _, c := range cases {
		e, err := abacus.ParseString(c.src)
		if err != nil {
			b.Fatal(err)
		}
		b.Run(c.name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := abacus.Evaluate(e, nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
