package abacus

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"testing"
)

func TestParseTrees(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"int", "1", "(1)"},
		{"float", "1.5", "(1.5)"},
		{"ident", "x", "(x)"},
		{"add-mul", "1+2*3", "([1] + [(2) * (3)])"},
		{"sub-right", "10-2-3", "([10] - [(2) - (3)])"},
		{"pow-right", "2^3^2", "([2] ^ [(3) ^ (2)])"},
		{"sub-add", "1-2+3", "([(1) - (2)] + [3])"},
		{"div-mul", "6/2*3", "([(6) / (2)] * [3])"},
		{"mod", "5 mod 3", "([5] mod [3])"},
		{"mod-div", "8/4 mod 3", "([8] / [(4) mod (3)])"},
		{"shift", "1 << 2", "([1] << [2])"},
		{"shift-pow", "2^1<<3", "([2] ^ [(1) << (3)])"},
		{"times", "2×3", "([2] * [3])"},
		{"neg-pow", "-2^2", "([-(2)] ^ [2])"},
		{"neg-neg", "--2", "(-[-(2)])"},
		{"keep", "+x", "(+[x])"},
		{"fact", "3!", "([3]!)"},
		{"fact-fact", "3!!", "([(3)!]!)"},
		{"fact-pow", "2^3!", "([2] ^ [(3)!])"},
		{"norm", "|x|", "(|[x]|)"},
		{"norm-sub", "|3---8|", "(|[(3) - (-[-(8)])]|)"},
		{"norm-mul", "|a|*|b|", "([|(a)|] * [|(b)|])"},
		{"paren", "(1+2)*3", "([(1) + (2)] * [3])"},
		{"call", "f(1, 2)", "(f[(1), (2)])"},
		{"call-empty", "rand()", "(rand[])"},
		{"call-nested", "f(g(x))", "(f[(g[(x)])])"},
		{"implicit", "sin x * 2", "(sin[([x] * [2])])"},
		{"implicit-add", "sqrt 16 + 9", "([sqrt([16])] + [9])"},
		{"implicit-num", "ln 2.5", "(ln[(2.5)])"},
		{"vector", "[1, 2]", "([(1), (2)])"},
		{"vector-empty", "[]", "([])"},
		{"vector-nested", "[[1], 2]", "([([(1)]), (2)])"},
		{"def", "x = 1 + 2", "(x = [(1) + (2)])"},
		{"def-chain", "y = z = 2", "(y = [z = (2)])"},
		{"sum", "sum[i=1,10](i)", "(sum i = [1] .. [10] of [i])"},
		{"product", "product[k = 1, n](k + 1)", "(product k = [1] .. [n] of [(k) + (1)])"},
		{"sum-call", "sum(1)", "(sum[(1)])"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e, err := ParseString(c.src)
			if err != nil {
				t.Fatalf("%q failed to parse: %v", c.src, err)
			}
			if got := Format(e.Root()); got != c.want {
				t.Errorf("%q parsed wrong: want %s, got %s", c.src, c.want, got)
			}
		})
	}
}

func TestExprString(t *testing.T) {
	e, err := ParseString("2*3/4")
	if err != nil {
		t.Fatal(err)
	}
	if want, got := "([2] × [(3) ÷ (4)])", e.String(); got != want {
		t.Errorf("want %s, got %s", want, got)
	}
}

func TestParseVars(t *testing.T) {
	cases := []struct {
		src  string
		want []string
	}{
		{"1", nil},
		{"x + y*x", []string{"x", "y"}},
		{"sum[i=1,n](i*x)", []string{"n", "x"}},
		{"sum[i=1,i](i)", []string{"i"}},
		{"f(a)", []string{"a"}},
		{"a = b", []string{"b"}},
		{"[p, q]", []string{"p", "q"}},
	}
	for _, c := range cases {
		e, err := ParseString(c.src)
		if err != nil {
			t.Errorf("%q failed to parse: %v", c.src, err)
			continue
		}
		if got := e.Vars(); !reflect.DeepEqual(got, c.want) {
			t.Errorf("%q gave wrong names: want %q, got %q", c.src, c.want, got)
		}
	}
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		kind ErrorKind
		pos  Pos
		msg  string
	}{
		{"empty", "", KindSyntax, Pos{1, 1}, `no expression`},
		{"spaces", "   ", KindSyntax, Pos{1, 4}, `no expression`},
		{"trailing-op", "1 +", KindSyntax, Pos{1, 4}, `end of input`},
		{"unclosed", "(1", KindSyntax, Pos{1, 3}, `expected "\)"`},
		{"unopened", "1)", KindSyntax, Pos{1, 2}, `unexpected "\)"`},
		{"juxtaposed", "1 2", KindSyntax, Pos{1, 3}, `unexpected "2"`},
		{"bad-token", "1 + $", KindScan, Pos{1, 5}, `invalid token "\$"`},
		{"bad-number", "1.2.3", KindScan, Pos{1, 1}, `invalid number`},
		{"ident-number", "2x", KindScan, Pos{1, 1}, `"2x"`},
		{"fold-index", "sum[1=1,2](1)", KindSyntax, Pos{1, 5}, `index must be a name`},
		{"fold-comma", "sum[i=1](i)", KindSyntax, Pos{1, 8}, `expected ","`},
		{"norm", "|1", KindSyntax, Pos{1, 3}, `expected "\|"`},
		{"vector", "[1,2", KindSyntax, Pos{1, 5}, `expected "\]"`},
		{"arg", "f(1,)", KindSyntax, Pos{1, 5}, `unexpected "\)"`},
		{"def", "x = ", KindSyntax, Pos{1, 5}, `end of input`},
		{"binary-start", "*3", KindSyntax, Pos{1, 1}, `unexpected "\*"`},
		{"line", "1 +\n)", KindSyntax, Pos{2, 1}, `unexpected "\)"`},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			e, err := ParseString(c.src)
			if err == nil {
				t.Fatalf("%q parsed without error to %v", c.src, e)
			}
			if e != nil {
				t.Errorf("%q gave non-nil expression %v with error", c.src, e)
			}
			if k := KindOf(err); k != c.kind {
				t.Errorf("%q gave wrong kind of error: want %v, got %v (%v)", c.src, c.kind, k, err)
			}
			var ierr InputError
			if !errors.As(err, &ierr) {
				t.Fatalf("%q gave error %v without position", c.src, err)
			}
			if ierr.Pos() != c.pos {
				t.Errorf("%q gave error at wrong position: want %v, got %v", c.src, c.pos, ierr.Pos())
			}
			if !regexp.MustCompile(c.msg).MatchString(err.Error()) {
				t.Errorf("%q gave error %q, which does not match %q", c.src, err.Error(), c.msg)
			}
		})
	}
}

func TestStartAt(t *testing.T) {
	_, err := ParseString(" 1 +", StartAt(Pos{Line: 1, Col: 3}))
	var ierr InputError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected an InputError, got %v", err)
	}
	if want := (Pos{Line: 1, Col: 7}); ierr.Pos() != want {
		t.Errorf("wrong position: want %v, got %v", want, ierr.Pos())
	}
}

func TestWalk(t *testing.T) {
	e, err := ParseString("f(1, [x, 2]) + sum[i=1,3](i*y)")
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	Walk(e.Root(), func(n Node) bool {
		if id, ok := n.(*IdentExpr); ok {
			names = append(names, id.Name)
		}
		return true
	})
	if want := []string{"x", "i", "y"}; !reflect.DeepEqual(names, want) {
		t.Errorf("wrong walk: want %q, got %q", want, names)
	}
}

func TestBuildTreeMismatch(t *testing.T) {
	lit := func(s string) Node { return &LiteralExpr{Value: s} }
	plus := lexToken{text: "+"}
	cases := []struct {
		name  string
		exprs []Node
		ops   []lexToken
	}{
		{"empty", nil, nil},
		{"no-ops", []Node{lit("1"), lit("2")}, nil},
		{"extra-op", []Node{lit("1"), lit("2")}, []lexToken{plus, plus}},
		{"ops-only", nil, []lexToken{plus}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n, err := buildTree(c.exprs, c.ops)
			if err == nil {
				t.Fatalf("expected error, got %s", Format(n))
			}
			if k := KindOf(err); k != KindInternal {
				t.Errorf("want %v error, got %v: %v", KindInternal, k, err)
			}
			var ierr *InternalError
			if !errors.As(err, &ierr) {
				t.Errorf("want *InternalError, got %T", err)
			}
		})
	}
}

func BenchmarkParse(b *testing.B) {
	src := strings.Repeat("sin(x)^2 + cos(x)^2 * [1, 2] - ", 20) + "1"
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		ParseString(src)
	}
}
