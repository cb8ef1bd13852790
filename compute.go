package abacus

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ErrorSink receives error messages from ParseExpression and Compute.
type ErrorSink interface {
	Error(msg string)
}

// ErrorFunc adapts a function to an ErrorSink.
type ErrorFunc func(msg string)

func (f ErrorFunc) Error(msg string) { f(msg) }

// ErrorCollector is an ErrorSink which keeps every message.
type ErrorCollector struct {
	Messages []string
}

func (c *ErrorCollector) Error(msg string) {
	c.Messages = append(c.Messages, msg)
}

// HasErrors returns whether any message was collected.
func (c *ErrorCollector) HasErrors() bool {
	return len(c.Messages) > 0
}

// Reset discards all messages.
func (c *ErrorCollector) Reset() {
	c.Messages = c.Messages[:0]
}

func report(sink ErrorSink, err error) {
	if sink != nil {
		sink.Error(Message(err))
	}
}

// ParseExpression parses text. On failure, the message goes to sink and the
// result is nil.
func ParseExpression(text string, sink ErrorSink) *Expr {
	e, err := ParseString(text)
	if err != nil {
		report(sink, err)
		return nil
	}
	return e
}

// Compute evaluates text with a fresh constant set holding pi and e and
// returns the beautified result.
func Compute(text string, sink ErrorSink) string {
	return ComputeWith(text, NewConstants(), sink)
}

// ComputeWith evaluates text with the constant set c and returns the
// beautified result. If the text has the form name = expr at the top level,
// the result is also stored as name. If name is not a valid identifier, that
// is reported and the result is still returned. On failure, exactly one
// message goes to sink and the result is empty. ComputeWith never panics.
func ComputeWith(text string, c *Constants, sink ErrorSink) (result string) {
	defer func() {
		if r := recover(); r != nil {
			report(sink, &InternalError{Msg: fmt.Sprint("computation panicked: ", r)})
			result = ""
		}
	}()
	if c == nil {
		c = NewConstants()
	}
	target, rhs, start, assign := splitAssign(text)
	if assign && !ValidIdent(target) {
		report(sink, &SyntaxError{At: Pos{Line: 1, Col: 1}, Msg: "invalid identifier " + strconv.Quote(target)})
		assign = false
	}
	e, err := ParseString(rhs, StartAt(start))
	if err != nil {
		report(sink, err)
		return ""
	}
	var comp Computer
	v, err := comp.Eval(e, c)
	if err != nil {
		report(sink, err)
		return ""
	}
	result = Beautify(v.Text(comp.Digits()))
	if assign {
		c.Set(target, result)
	}
	return result
}

// splitAssign splits text at its first = outside any brackets and norm bars.
// If there is none, rhs is all of text and assign is false. start is the
// position of the first rune of rhs.
func splitAssign(text string) (target, rhs string, start Pos, assign bool) {
	depth, bars := 0, 0
	pos := Pos{Line: 1, Col: 1}
	for i, r := range text {
		switch r {
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case '|':
			bars++
		case '=':
			if depth == 0 && bars%2 == 0 {
				return strings.TrimSpace(text[:i]), text[i+1:], pos.advance(r), true
			}
		}
		pos = pos.advance(r)
	}
	return "", text, Pos{Line: 1, Col: 1}, false
}

// ValidIdent returns whether s can name a constant: a letter or underscore
// followed by letters, digits, and underscores, and not an operator word.
func ValidIdent(s string) bool {
	if s == "" || s == "mod" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
