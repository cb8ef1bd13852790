package cli

import (
	"log/slog"
	"strings"
)

// Error is a command error carrying attributes for structured logging.
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError creates an error with a message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func (e *Error) Error() string {
	part := make([]string, 0, 2)
	if e.msg != "" {
		part = append(part, e.msg)
	}
	if e.err != nil {
		part = append(part, e.err.Error())
	}
	return strings.Join(part, ": ")
}

func (e *Error) Unwrap() error { return e.err }

func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)
	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}
	if e.err != nil {
		attrs = append(attrs, slog.String("cause", e.err.Error()))
	}
	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap creates a new Error wrapping err.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// With creates a new Error with additional attributes.
func (e *Error) With(attrs ...slog.Attr) *Error {
	a := make([]slog.Attr, 0, len(e.attrs)+len(attrs))
	a = append(a, e.attrs...)
	a = append(a, attrs...)
	return &Error{msg: e.msg, err: e.err, attrs: a}
}

var (
	ErrSettings  = NewError("load settings")
	ErrPrecision = NewError("precision must be positive")
	ErrGiven     = NewError("invalid definition")
	ErrInput     = NewError("read input")
	ErrFailed    = NewError("computation failed")
	ErrExists    = NewError("file exists (use --force to overwrite)")
	ErrWrite     = NewError("write settings file")
)
