package abacus

import (
	"io"
	"sort"
	"strconv"
	"strings"
)

// Expr        = AddExpr
// AddExpr     = SubExpr { '+' SubExpr }
// SubExpr     = MulExpr { '-' MulExpr }
// MulExpr     = DivExpr { ('*' | '×') DivExpr }
// DivExpr     = PowExpr { ('/' | '÷' | 'mod') PowExpr }
// PowExpr     = ShiftExpr { '^' ShiftExpr }
// ShiftExpr   = FactExpr { ('<<' | '>>') FactExpr }
// FactExpr    = Value { '!' }
// Value       = num | '(' Expr ')' | '[' [ Expr { ',' Expr } ] ']'
//             | '-' Value | '+' Value | '|' Expr '|' | IdentExpr
// IdentExpr   = Fold | name '=' Expr | name '(' [ Expr { ',' Expr } ] ')'
//             | name MulExpr | name
// Fold        = ('sum' | 'product') '[' name '=' Expr ',' Expr ']' '(' Expr ')'
//
// An identifier directly followed by another identifier or a number is an
// implicit call whose single argument is a MulExpr. Operators on one level
// group to the right: a op b op c is a op (b op c).

// Expr is a parsed expression that can be evaluated with a constant set.
type Expr struct {
	// n is the root node of the expression.
	n Node
	// names is the list of constant names referenced in the expression.
	names []string
}

// ParseOption is an option for parsing.
type ParseOption interface {
	parseOption(parsectx) parsectx
}

// parsectx holds general data for parsing.
type parsectx struct {
	// names is the set of constant names that have been seen this parse.
	names map[string]bool
	// bound is the stack of fold indices in scope.
	bound []string
	// start is the position of the first rune of the input.
	start Pos
}

type startopt Pos

func (o startopt) parseOption(p parsectx) parsectx {
	p.start = Pos(o)
	return p
}

// StartAt sets the position of the first rune of the input, for parsing text
// that was cut from a larger source.
func StartAt(pos Pos) ParseOption {
	return startopt(pos)
}

// Parse parses an expression so it can be evaluated. The given options are
// applied in order.
func Parse(src io.RuneScanner, opts ...ParseOption) (*Expr, error) {
	p := parsectx{
		names: make(map[string]bool),
		start: Pos{Line: 1, Col: 1},
	}
	for _, opt := range opts {
		p = opt.parseOption(p)
	}
	ps := parser{scan: lexAt(src, p.start), ctx: &p}
	if err := ps.advance(); err != nil {
		return nil, err
	}
	if ps.tok.kind == tokenEOF {
		return nil, &SyntaxError{At: ps.tok.pos, Msg: "no expression"}
	}
	n, err := ps.expr()
	if err != nil {
		return nil, err
	}
	if ps.tok.kind != tokenEOF {
		return nil, ps.unexpected()
	}
	ex := Expr{
		n:     n,
		names: make([]string, 0, len(p.names)),
	}
	for k := range p.names {
		ex.names = append(ex.names, k)
	}
	sort.Strings(ex.names)
	return &ex, nil
}

// ParseString is a shortcut to parse an expression from a string.
func ParseString(src string, opts ...ParseOption) (*Expr, error) {
	return Parse(strings.NewReader(src), opts...)
}

// Root returns the root node of the expression.
func (e *Expr) Root() Node {
	return e.n
}

// Vars returns the constant names referenced when evaluating the expression,
// not counting fold indices.
func (e *Expr) Vars() []string {
	return append(([]string)(nil), e.names...)
}

// String creates a string representation of the parsed expression, with
// alternating round and square brackets grouping each term.
func (e *Expr) String() string {
	var b strings.Builder
	e.n.fmt(&b, false, true)
	return b.String()
}

// parser is a recursive descent parser with one token of lookahead.
type parser struct {
	scan *lexer
	ctx  *parsectx
	tok  lexToken
}

// advance scans the next token into p.tok.
func (p *parser) advance() error {
	tok, err := p.scan.next()
	if err != nil {
		return err
	}
	p.tok = tok
	return nil
}

// expect consumes a token with the given kind and text.
func (p *parser) expect(kind tokenKind, text string) error {
	if !p.tok.is(kind, text) {
		if p.tok.kind == tokenEOF {
			return &SyntaxError{At: p.tok.pos, Msg: "expected " + strconv.Quote(text) + " before end of input"}
		}
		return &SyntaxError{At: p.tok.pos, Msg: "expected " + strconv.Quote(text) + ", found " + strconv.Quote(p.tok.text)}
	}
	return p.advance()
}

// unexpected creates an error for the current token.
func (p *parser) unexpected() error {
	if p.tok.kind == tokenEOF {
		return &SyntaxError{At: p.tok.pos, Msg: "unexpected end of input"}
	}
	return &SyntaxError{At: p.tok.pos, Msg: "unexpected " + strconv.Quote(p.tok.text)}
}

func (p *parser) expr() (Node, error) {
	return p.addExpr()
}

func (p *parser) addExpr() (Node, error) { return p.binary(p.subExpr, "+") }
func (p *parser) subExpr() (Node, error) { return p.binary(p.mulExpr, "-") }
func (p *parser) mulExpr() (Node, error) { return p.binary(p.divExpr, "*", "×") }
func (p *parser) divExpr() (Node, error) { return p.binary(p.powExpr, "/", "÷", "mod") }
func (p *parser) powExpr() (Node, error) { return p.binary(p.shiftExpr, "^") }
func (p *parser) shiftExpr() (Node, error) { return p.binary(p.factExpr, "<<", ">>") }

// binary parses one precedence level: operands from next separated by any of
// ops. The operands and operators are collected first and then grouped by
// buildTree.
func (p *parser) binary(next func() (Node, error), ops ...string) (Node, error) {
	x, err := next()
	if err != nil {
		return nil, err
	}
	exprs := []Node{x}
	var opToks []lexToken
	for p.tok.kind == tokenOp && contains(ops, p.tok.text) {
		opToks = append(opToks, p.tok)
		if err := p.advance(); err != nil {
			return nil, err
		}
		y, err := next()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, y)
	}
	return buildTree(exprs, opToks)
}

// buildTree combines operands with the operators between them, grouping to
// the right.
func buildTree(exprs []Node, ops []lexToken) (Node, error) {
	if len(exprs) == 0 {
		return nil, &InternalError{Msg: "binary expression with no operands"}
	}
	if len(exprs) != len(ops)+1 {
		return nil, &InternalError{Msg: "binary expression with " + strconv.Itoa(len(exprs)) + " operands and " + strconv.Itoa(len(ops)) + " operators"}
	}
	r := exprs[len(exprs)-1]
	for i := len(ops) - 1; i >= 0; i-- {
		op := binop(ops[i].text)
		if op == BinaryNone {
			return nil, &SyntaxError{At: ops[i].pos, Msg: "unknown binary operator " + strconv.Quote(ops[i].text)}
		}
		r = &BinaryExpr{At: ops[i].pos, Op: op, L: exprs[i], R: r}
	}
	return r, nil
}

func contains(ops []string, s string) bool {
	for _, op := range ops {
		if op == s {
			return true
		}
	}
	return false
}

func (p *parser) factExpr() (Node, error) {
	x, err := p.value()
	if err != nil {
		return nil, err
	}
	for p.tok.is(tokenOp, "!") {
		x = &UnaryExpr{At: p.tok.pos, Op: UnaryFactorial, X: x}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	return x, nil
}

func (p *parser) value() (Node, error) {
	tok := p.tok
	switch tok.kind {
	case tokenInt, tokenFloat:
		if err := p.advance(); err != nil {
			return nil, err
		}
		return &LiteralExpr{At: tok.pos, Value: tok.text, Float: tok.kind == tokenFloat}, nil
	case tokenIdent:
		return p.ident()
	case tokenOpen:
		if err := p.advance(); err != nil {
			return nil, err
		}
		if tok.text == "[" {
			elems, err := p.list("]")
			if err != nil {
				return nil, err
			}
			return &VectorExpr{At: tok.pos, Elems: elems}, nil
		}
		x, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokenClose, ")"); err != nil {
			return nil, err
		}
		return x, nil
	case tokenOp:
		var op UnaryOp
		switch tok.text {
		case "-":
			op = UnaryNegate
		case "+":
			op = UnaryKeep
		case "|":
			if err := p.advance(); err != nil {
				return nil, err
			}
			x, err := p.expr()
			if err != nil {
				return nil, err
			}
			if err := p.expect(tokenOp, "|"); err != nil {
				return nil, err
			}
			return &UnaryExpr{At: tok.pos, Op: UnaryNorm, X: x}, nil
		default:
			return nil, p.unexpected()
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.value()
		if err != nil {
			return nil, err
		}
		return &UnaryExpr{At: tok.pos, Op: op, X: x}, nil
	default:
		return nil, p.unexpected()
	}
}

// list parses a possibly empty comma-separated list of expressions through
// the closing bracket.
func (p *parser) list(close string) ([]Node, error) {
	var r []Node
	if p.tok.is(tokenClose, close) {
		return r, p.advance()
	}
	for {
		x, err := p.expr()
		if err != nil {
			return nil, err
		}
		r = append(r, x)
		if p.tok.kind != tokenComma {
			break
		}
		if err := p.advance(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(tokenClose, close); err != nil {
		return nil, err
	}
	return r, nil
}

// ident parses everything that starts with an identifier.
func (p *parser) ident() (Node, error) {
	tok := p.tok
	if err := p.advance(); err != nil {
		return nil, err
	}
	switch {
	case (tok.text == "sum" || tok.text == "product") && p.tok.is(tokenOpen, "["):
		return p.fold(tok)
	case p.tok.is(tokenOp, "="):
		if err := p.advance(); err != nil {
			return nil, err
		}
		x, err := p.expr()
		if err != nil {
			return nil, err
		}
		return &DefExpr{At: tok.pos, Name: tok.text, X: x}, nil
	case p.tok.is(tokenOpen, "("):
		if err := p.advance(); err != nil {
			return nil, err
		}
		args, err := p.list(")")
		if err != nil {
			return nil, err
		}
		return &FuncExpr{At: tok.pos, Name: tok.text, Args: args}, nil
	case p.tok.kind == tokenIdent, p.tok.kind == tokenInt, p.tok.kind == tokenFloat:
		arg, err := p.mulExpr()
		if err != nil {
			return nil, err
		}
		return &FuncExpr{At: tok.pos, Name: tok.text, Args: []Node{arg}}, nil
	default:
		if !p.isBound(tok.text) {
			p.ctx.names[tok.text] = true
		}
		return &IdentExpr{At: tok.pos, Name: tok.text}, nil
	}
}

// fold parses a sum or product after its keyword.
func (p *parser) fold(kw lexToken) (Node, error) {
	n := FoldExpr{At: kw.pos, Kind: FoldSum}
	if kw.text == "product" {
		n.Kind = FoldProduct
	}
	if err := p.expect(tokenOpen, "["); err != nil {
		return nil, err
	}
	if p.tok.kind != tokenIdent {
		return nil, &SyntaxError{At: p.tok.pos, Msg: kw.text + " index must be a name"}
	}
	n.Index = p.tok.text
	if err := p.advance(); err != nil {
		return nil, err
	}
	if err := p.expect(tokenOp, "="); err != nil {
		return nil, err
	}
	var err error
	if n.Init, err = p.expr(); err != nil {
		return nil, err
	}
	if err := p.expect(tokenComma, ","); err != nil {
		return nil, err
	}
	if n.Limit, err = p.expr(); err != nil {
		return nil, err
	}
	if err := p.expect(tokenClose, "]"); err != nil {
		return nil, err
	}
	if err := p.expect(tokenOpen, "("); err != nil {
		return nil, err
	}
	p.ctx.bound = append(p.ctx.bound, n.Index)
	n.Body, err = p.expr()
	p.ctx.bound = p.ctx.bound[:len(p.ctx.bound)-1]
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokenClose, ")"); err != nil {
		return nil, err
	}
	return &n, nil
}

func (p *parser) isBound(name string) bool {
	for _, b := range p.ctx.bound {
		if b == name {
			return true
		}
	}
	return false
}
