package abacus

import (
	"errors"
	"io"
	"strconv"
	"strings"
	"unicode"
)

// Pos is a position in source text. Lines and columns count runes and start
// at 1.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Col)
}

// IsValid reports whether p refers to an actual position.
func (p Pos) IsValid() bool {
	return p.Line > 0
}

// advance returns the position following r.
func (p Pos) advance(r rune) Pos {
	if r == '\n' {
		return Pos{Line: p.Line + 1, Col: 1}
	}
	return Pos{Line: p.Line, Col: p.Col + 1}
}

type lexToken struct {
	text string
	kind tokenKind
	pos  Pos
}

func (t lexToken) String() string {
	return t.kind.String() + ":" + t.text + "@" + t.pos.String()
}

// is reports whether t has the given kind and spelling.
func (t lexToken) is(kind tokenKind, text string) bool {
	return t.kind == kind && t.text == text
}

type tokenKind int

const (
	tokenNone tokenKind = iota
	// tokenEOF indicates the end of the input.
	tokenEOF
	// tokenIdent is a constant or function name.
	tokenIdent
	// tokenInt is an integer literal.
	tokenInt
	// tokenFloat is a literal with a decimal point.
	tokenFloat
	// tokenOpen is an open bracket, ( or [.
	tokenOpen
	// tokenClose is a close bracket, ) or ].
	tokenClose
	// tokenComma separates arguments and vector elements.
	tokenComma
	// tokenOp is an operator, including the spelled operator mod.
	tokenOp
	// tokenBad is an ill-formed token. The lexer returns a LexError with it.
	tokenBad
)

var tokenNames = [...]string{
	tokenNone:  "None",
	tokenEOF:   "EOF",
	tokenIdent: "Ident",
	tokenInt:   "Int",
	tokenFloat: "Float",
	tokenOpen:  "Open",
	tokenClose: "Close",
	tokenComma: "Comma",
	tokenOp:    "Op",
	tokenBad:   "Bad",
}

func (k tokenKind) String() string {
	if k < 0 || int(k) >= len(tokenNames) {
		return "tokenKind(" + strconv.Itoa(int(k)) + ")"
	}
	return tokenNames[k]
}

// Operators contains the single-rune operators. × and ÷ are the same as *
// and /. The shift operators << and >> and the spelled operator mod are
// recognized separately.
const Operators = "+-*/^!|=×÷"

// OpenBrackets and CloseBrackets contain the runes which group expressions,
// argument lists, vectors, and fold headers.
const (
	OpenBrackets  = "(["
	CloseBrackets = ")]"
)

type lexer struct {
	src  io.RuneScanner
	buf  strings.Builder
	pos  Pos
	last Pos
}

func lex(src io.RuneScanner) *lexer {
	return lexAt(src, Pos{Line: 1, Col: 1})
}

// lexAt creates a lexer whose first rune is at start.
func lexAt(src io.RuneScanner, start Pos) *lexer {
	return &lexer{src: src, pos: start}
}

// readRune reads a rune from the src and updates the lexer's position info.
func (l *lexer) readRune() (rune, error) {
	r, sz, err := l.src.ReadRune()
	if sz > 0 {
		l.last = l.pos
		l.pos = l.pos.advance(r)
	}
	return r, err
}

// unreadRune unreads the last rune read. Panics if unreading returns an
// error, which only happens when unreading twice.
func (l *lexer) unreadRune() {
	if err := l.src.UnreadRune(); err != nil {
		panic(err)
	}
	l.pos = l.last
}

// next scans the next token from the input. Once the input is exhausted,
// every call returns an EOF token. An ill-formed token is returned with kind
// tokenBad along with a *LexError describing it.
func (l *lexer) next() (lexToken, error) {
	l.buf.Reset()
	for {
		tok := lexToken{pos: l.pos}
		r, err := l.readRune()
		if err != nil {
			if errors.Is(err, io.EOF) {
				tok.kind = tokenEOF
				return tok, nil
			}
			tok.kind = tokenBad
			return tok, err
		}
		switch {
		case unicode.IsSpace(r):
			continue
		case '0' <= r && r <= '9', r == '.':
			l.unreadRune()
			return l.scanNum(tok)
		case r == '_', unicode.IsLetter(r):
			l.unreadRune()
			l.scanIdent()
			tok.text = l.buf.String()
			tok.kind = tokenIdent
			// mod looks like an identifier, so check for it here.
			if tok.text == "mod" {
				tok.kind = tokenOp
			}
			return tok, nil
		case r == '<', r == '>':
			l.buf.WriteRune(r)
			s, err := l.readRune()
			if err == nil && s == r {
				l.buf.WriteRune(s)
				tok.text = l.buf.String()
				tok.kind = tokenOp
				return tok, nil
			}
			if err == nil {
				l.unreadRune()
			}
			return l.bad(tok, "operator")
		case r == ',':
			tok.text = ","
			tok.kind = tokenComma
			return tok, nil
		case strings.ContainsRune(Operators, r):
			tok.text = string(r)
			tok.kind = tokenOp
			return tok, nil
		case strings.ContainsRune(OpenBrackets, r):
			tok.text = string(r)
			tok.kind = tokenOpen
			return tok, nil
		case strings.ContainsRune(CloseBrackets, r):
			tok.text = string(r)
			tok.kind = tokenClose
			return tok, nil
		default:
			// Write the rune so that it shows up in the error message.
			l.buf.WriteRune(r)
			return l.bad(tok, "")
		}
	}
}

// scanNum scans an integer or float literal. A literal runs until the first
// rune that is neither a digit nor a dot. Letters directly following the
// digits make the whole run ill-formed.
func (l *lexer) scanNum(tok lexToken) (lexToken, error) {
	dots, digits := 0, 0
	for {
		r, err := l.readRune()
		if err != nil {
			break
		}
		switch {
		case '0' <= r && r <= '9':
			digits++
		case r == '.':
			dots++
		case r == '_', unicode.IsLetter(r):
			// Consume the rest of the run so that it appears in the message
			// and the lexer resumes after it.
			l.buf.WriteRune(r)
			l.scanIdent()
			return l.bad(tok, "number")
		default:
			l.unreadRune()
			goto done
		}
		l.buf.WriteRune(r)
	}
done:
	tok.text = l.buf.String()
	switch {
	case digits == 0, dots > 1:
		return l.bad(tok, "number")
	case dots == 1:
		tok.kind = tokenFloat
	default:
		tok.kind = tokenInt
	}
	return tok, nil
}

// scanIdent scans the remainder of an identifier into the buffer.
func (l *lexer) scanIdent() {
	for {
		r, err := l.readRune()
		if err != nil {
			return
		}
		switch {
		case r == '_', unicode.IsLetter(r), unicode.IsDigit(r):
			l.buf.WriteRune(r)
		default:
			l.unreadRune()
			return
		}
	}
}

// bad finishes an ill-formed token.
func (l *lexer) bad(tok lexToken, what string) (lexToken, error) {
	tok.text = l.buf.String()
	tok.kind = tokenBad
	return tok, &LexError{Text: tok.text, What: what, At: tok.pos}
}
