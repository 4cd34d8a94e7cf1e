package syntax

import (
	"log/slog"
	"slices"
	"strconv"
	"strings"
)

// Position identifies a location in source text. Line and Column are
// 1-based; Column counts runes.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String formats the position as "line:column".
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Error reports source text that does not conform to the grammar.
type Error struct {
	Pos      Position
	Rule     string   // grammar rule being parsed when the error was found
	Expected []string // tokens that would have been accepted
	Message  string   // optional detail when Expected is not meaningful
	Source   string   // the unit's source text, used for snippets
}

// Error implements the error interface.
func (e *Error) Error() string {
	var buf strings.Builder

	buf.WriteString("syntax error at line ")
	buf.WriteString(strconv.Itoa(e.Pos.Line))
	buf.WriteString(", column ")
	buf.WriteString(strconv.Itoa(e.Pos.Column))

	if e.Rule != "" {
		buf.WriteString(" in ")
		buf.WriteString(e.Rule)
	}

	if e.Message != "" {
		buf.WriteString(": ")
		buf.WriteString(e.Message)
	}

	if exp := e.expected(); len(exp) > 0 {
		buf.WriteString(": expected ")
		buf.WriteString(strings.Join(exp, ", "))
	}

	return buf.String()
}

// Snippet returns the offending source line with a caret under the error
// column, or "" if the position is outside the source.
func (e *Error) Snippet() string {
	lines := strings.Split(e.Source, "\n")
	if e.Pos.Line < 1 || e.Pos.Line > len(lines) {
		return ""
	}

	var src strings.Builder

	line := lines[e.Pos.Line-1]

	src.WriteString("  ")
	src.WriteString(strconv.Itoa(e.Pos.Line))
	src.WriteString(" | ")
	src.WriteString(line)
	src.WriteRune('\n')

	// +5 accounts for: 2 leading spaces + " | " (3 chars)
	padding := strings.Repeat(" ", len(strconv.Itoa(e.Pos.Line))+5)
	if e.Pos.Column > 0 {
		padding += strings.Repeat(" ", e.Pos.Column-1)
	}

	src.WriteString(padding + "^\n")

	return src.String()
}

// LogValue implements slog.LogValuer.
func (e *Error) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("error", "syntax error"),
		slog.Int("line", e.Pos.Line),
		slog.Int("column", e.Pos.Column),
		slog.Int("offset", e.Pos.Offset),
	}

	if e.Rule != "" {
		attrs = append(attrs, slog.String("rule", e.Rule))
	}

	if e.Message != "" {
		attrs = append(attrs, slog.String("detail", e.Message))
	}

	if exp := e.expected(); len(exp) > 0 {
		attrs = append(attrs, slog.String("expected", strings.Join(exp, ", ")))
	}

	return slog.GroupValue(attrs...)
}

func (e *Error) expected() []string {
	exp := make([]string, 0, len(e.Expected))
	for _, s := range e.Expected {
		exp = append(exp, strconv.Quote(s))
	}

	slices.Sort(exp)

	return slices.Compact(exp)
}
