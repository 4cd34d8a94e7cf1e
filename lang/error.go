package lang

import (
	"log/slog"
	"slices"

	"github.com/ardnew/cose/lang/arena"
	"github.com/ardnew/cose/lang/syntax"
)

var (
	ErrReadInput     = NewError("read source")
	ErrOpenSource    = NewError("open source")
	ErrQueryCompile  = NewError("compile filter")
	ErrQueryEvaluate = NewError("evaluate filter")
	ErrQueryResult   = NewError("filter result is not boolean")
)

// Error is a document failure carrying structured attributes for logging.
// Values derived from a sentinel with [Error.Wrap] or [Error.With] match it
// with [errors.Is].
type Error struct {
	msg   string
	err   error
	attrs []slog.Attr
}

// NewError returns a sentinel error with the given message.
func NewError(msg string) *Error {
	return &Error{msg: msg}
}

func (e *Error) Error() string {
	switch {
	case e.err == nil:
		return e.msg
	case e.msg == "":
		return e.err.Error()
	default:
		return e.msg + ": " + e.err.Error()
	}
}

func (e *Error) Unwrap() error { return e.err }

// Is matches any Error derived from the same sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)

	return ok && t.err == nil && t.msg != "" && t.msg == e.msg
}

// LogValue implements [slog.LogValuer].
func (e *Error) LogValue() slog.Value {
	attrs := make([]slog.Attr, 0, len(e.attrs)+2)

	if e.msg != "" {
		attrs = append(attrs, slog.String("error", e.msg))
	}

	if e.err != nil {
		attrs = append(attrs, slog.Any("cause", e.err))
	}

	return slog.GroupValue(append(attrs, e.attrs...)...)
}

// Wrap returns a copy of e with err as its cause.
func (e *Error) Wrap(err error) *Error {
	return &Error{msg: e.msg, err: err, attrs: e.attrs}
}

// With returns a copy of e with attrs appended.
func (e *Error) With(attrs ...slog.Attr) *Error {
	return &Error{msg: e.msg, err: e.err, attrs: slices.Concat(e.attrs, attrs)}
}

// ContractError is the panic value raised by [Builder] when a parse tree has
// a shape the grammar never produces. It signals a bug, not bad input.
type ContractError struct {
	Tag  syntax.Tag
	Span arena.Span
	Rule string // construct the builder was expecting
}

func contractViolation(n *syntax.Node, rule string) *ContractError {
	return &ContractError{Tag: n.Tag, Span: n.Span, Rule: rule}
}

// Error implements the error interface.
func (e *ContractError) Error() string {
	return "contract violation: unexpected " + e.Tag.String() +
		" node at " + e.Span.String() + " while building " + e.Rule
}

// LogValue implements slog.LogValuer.
func (e *ContractError) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("error", "contract violation"),
		slog.String("tag", e.Tag.String()),
		slog.String("span", e.Span.String()),
		slog.String("rule", e.Rule),
	)
}
