package abacus

import (
	"strings"
)

// Node is a node in the abstract syntax tree of an expression. The set of
// node types is closed: *UnaryExpr, *BinaryExpr, *LiteralExpr, *IdentExpr,
// *FuncExpr, *FoldExpr, *VectorExpr, and *DefExpr.
type Node interface {
	// Pos returns the position of the token which introduced the node.
	Pos() Pos

	fmt(b *strings.Builder, square, alt bool)
	node()
}

// UnaryOp is a prefix or postfix operator.
type UnaryOp int8

const (
	UnaryNone UnaryOp = iota
	// UnaryNegate is prefix -.
	UnaryNegate
	// UnaryFactorial is postfix !.
	UnaryFactorial
	// UnaryNorm is |x|, the absolute value of a scalar or the Euclidean norm
	// of a vector.
	UnaryNorm
	// UnaryKeep is prefix +, which leaves its operand unchanged.
	UnaryKeep
)

// BinaryOp is an infix operator.
type BinaryOp int8

const (
	BinaryNone BinaryOp = iota
	BinaryAdd
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryMod
	BinaryPow
	BinaryLshift
	BinaryRshift
)

var binaryText = [...]string{
	BinaryNone:   "?",
	BinaryAdd:    "+",
	BinarySub:    "-",
	BinaryMul:    "*",
	BinaryDiv:    "/",
	BinaryMod:    "mod",
	BinaryPow:    "^",
	BinaryLshift: "<<",
	BinaryRshift: ">>",
}

func (op BinaryOp) String() string {
	if op < 0 || int(op) >= len(binaryText) {
		return "?"
	}
	return binaryText[op]
}

// binop returns the operator spelled s, or BinaryNone if there is none.
func binop(s string) BinaryOp {
	switch s {
	case "×":
		return BinaryMul
	case "÷":
		return BinaryDiv
	}
	for op, t := range binaryText {
		if op != int(BinaryNone) && t == s {
			return BinaryOp(op)
		}
	}
	return BinaryNone
}

// FoldKind selects the reduction a FoldExpr performs.
type FoldKind int8

const (
	FoldSum FoldKind = iota
	FoldProduct
)

func (k FoldKind) String() string {
	if k == FoldProduct {
		return "product"
	}
	return "sum"
}

// UnaryExpr applies a unary operator to X.
type UnaryExpr struct {
	At Pos
	Op UnaryOp
	X  Node
}

// BinaryExpr applies a binary operator to L and R.
type BinaryExpr struct {
	At   Pos
	Op   BinaryOp
	L, R Node
}

// LiteralExpr is a numeric literal. Float is whether the literal has a
// decimal point.
type LiteralExpr struct {
	At    Pos
	Value string
	Float bool
}

// IdentExpr is a reference to a constant.
type IdentExpr struct {
	At   Pos
	Name string
}

// FuncExpr is a call to a builtin function.
type FuncExpr struct {
	At   Pos
	Name string
	Args []Node
}

// FoldExpr is sum[i = init, limit](body) or product[i = init, limit](body).
// The body is evaluated once for each integer value of the index from Init
// to Limit inclusive.
type FoldExpr struct {
	At          Pos
	Kind        FoldKind
	Index       string
	Init, Limit Node
	Body        Node
}

// VectorExpr is a vector literal.
type VectorExpr struct {
	At    Pos
	Elems []Node
}

// DefExpr binds Name to the value of X and evaluates to that value.
type DefExpr struct {
	At   Pos
	Name string
	X    Node
}

func (n *UnaryExpr) Pos() Pos   { return n.At }
func (n *BinaryExpr) Pos() Pos  { return n.At }
func (n *LiteralExpr) Pos() Pos { return n.At }
func (n *IdentExpr) Pos() Pos   { return n.At }
func (n *FuncExpr) Pos() Pos    { return n.At }
func (n *FoldExpr) Pos() Pos    { return n.At }
func (n *VectorExpr) Pos() Pos  { return n.At }
func (n *DefExpr) Pos() Pos     { return n.At }

func (*UnaryExpr) node()   {}
func (*BinaryExpr) node()  {}
func (*LiteralExpr) node() {}
func (*IdentExpr) node()   {}
func (*FuncExpr) node()    {}
func (*FoldExpr) node()    {}
func (*VectorExpr) node()  {}
func (*DefExpr) node()     {}

// brackets returns the bracket pair for a nesting level.
func brackets(square bool) (l, r byte) {
	if square {
		return '[', ']'
	}
	return '(', ')'
}

func (n *UnaryExpr) fmt(b *strings.Builder, square, alt bool) {
	l, r := brackets(square)
	b.WriteByte(l)
	defer b.WriteByte(r)
	switch n.Op {
	case UnaryNegate:
		b.WriteByte('-')
		n.X.fmt(b, !square, alt)
	case UnaryKeep:
		b.WriteByte('+')
		n.X.fmt(b, !square, alt)
	case UnaryFactorial:
		n.X.fmt(b, !square, alt)
		b.WriteByte('!')
	case UnaryNorm:
		b.WriteByte('|')
		n.X.fmt(b, !square, alt)
		b.WriteByte('|')
	default:
		// Invalid nodes use invalid characters.
		b.WriteByte('$')
		n.X.fmt(b, !square, alt)
		b.WriteByte('$')
	}
}

func (n *BinaryExpr) fmt(b *strings.Builder, square, alt bool) {
	l, r := brackets(square)
	b.WriteByte(l)
	defer b.WriteByte(r)
	n.L.fmt(b, !square, alt)
	switch {
	case alt && n.Op == BinaryMul:
		b.WriteString(" × ")
	case alt && n.Op == BinaryDiv:
		b.WriteString(" ÷ ")
	default:
		b.WriteByte(' ')
		b.WriteString(n.Op.String())
		b.WriteByte(' ')
	}
	n.R.fmt(b, !square, alt)
}

func (n *LiteralExpr) fmt(b *strings.Builder, square, alt bool) {
	l, r := brackets(square)
	b.WriteByte(l)
	b.WriteString(n.Value)
	b.WriteByte(r)
}

func (n *IdentExpr) fmt(b *strings.Builder, square, alt bool) {
	l, r := brackets(square)
	b.WriteByte(l)
	b.WriteString(n.Name)
	b.WriteByte(r)
}

func (n *FuncExpr) fmt(b *strings.Builder, square, alt bool) {
	l, r := brackets(square)
	b.WriteByte(l)
	b.WriteString(n.Name)
	fmtlist(b, n.Args, !square, alt)
	b.WriteByte(r)
}

func (n *FoldExpr) fmt(b *strings.Builder, square, alt bool) {
	l, r := brackets(square)
	b.WriteByte(l)
	defer b.WriteByte(r)
	b.WriteString(n.Kind.String())
	b.WriteByte(' ')
	b.WriteString(n.Index)
	b.WriteString(" = ")
	n.Init.fmt(b, !square, alt)
	b.WriteString(" .. ")
	n.Limit.fmt(b, !square, alt)
	b.WriteString(" of ")
	n.Body.fmt(b, !square, alt)
}

func (n *VectorExpr) fmt(b *strings.Builder, square, alt bool) {
	l, r := brackets(square)
	b.WriteByte(l)
	fmtlist(b, n.Elems, !square, alt)
	b.WriteByte(r)
}

func (n *DefExpr) fmt(b *strings.Builder, square, alt bool) {
	l, r := brackets(square)
	b.WriteByte(l)
	defer b.WriteByte(r)
	b.WriteString(n.Name)
	b.WriteString(" = ")
	n.X.fmt(b, !square, alt)
}

// fmtlist writes a bracketed, comma-separated list of nodes. Each element is
// written with the opposite brackets of the list itself.
func fmtlist(b *strings.Builder, ns []Node, square, alt bool) {
	l, r := brackets(square)
	b.WriteByte(l)
	defer b.WriteByte(r)
	for i, n := range ns {
		if i > 0 {
			b.WriteString(", ")
		}
		n.fmt(b, !square, alt)
	}
}

// Format returns a fully bracketed rendering of n, with brackets alternating
// between parentheses and square brackets at each level.
func Format(n Node) string {
	var b strings.Builder
	n.fmt(&b, false, false)
	return b.String()
}

// Walk calls f for n and each of its descendants in depth-first order. If f
// returns false, Walk does not visit the node's children.
func Walk(n Node, f func(Node) bool) {
	if n == nil || !f(n) {
		return
	}
	switch n := n.(type) {
	case *UnaryExpr:
		Walk(n.X, f)
	case *BinaryExpr:
		Walk(n.L, f)
		Walk(n.R, f)
	case *FuncExpr:
		for _, a := range n.Args {
			Walk(a, f)
		}
	case *FoldExpr:
		Walk(n.Init, f)
		Walk(n.Limit, f)
		Walk(n.Body, f)
	case *VectorExpr:
		for _, e := range n.Elems {
			Walk(e, f)
		}
	case *DefExpr:
		Walk(n.X, f)
	}
}
