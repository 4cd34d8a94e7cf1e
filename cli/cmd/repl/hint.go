package repl

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ardnew/cose/lang/syntax"
)

// inputHint describes how the pending build-mode input would parse.
type inputHint struct {
	err          *syntax.Error
	associations int
	references   int
	texts        int
	markers      int
	groupDepth   int // unclosed '(' before the cursor
}

// hintFor parses input and counts what it would allocate. cursor bounds the
// group depth scan.
func hintFor(input string, cursor int) inputHint {
	var h inputHint

	h.groupDepth = openGroups(input, cursor)

	tree, err := syntax.Parse(input)
	if err != nil {
		var synErr *syntax.Error
		if errors.As(err, &synErr) {
			h.err = synErr
		}

		return h
	}

	for n := range tree.Walk() {
		switch n.Tag {
		case syntax.TagAssociation:
			h.associations++
		case syntax.TagReference:
			h.references++
		case syntax.TagText:
			h.texts++
		case syntax.TagMarker:
			h.markers++
		}
	}

	return h
}

// openGroups returns the number of groups still open at cursor, ignoring
// parentheses inside quotes, comments and escapes.
func openGroups(input string, cursor int) int {
	cursor = min(max(cursor, 0), len(input))

	var (
		depth   int
		quoted  bool
		escaped bool
	)

	for _, r := range input[:cursor] {
		switch {
		case escaped:
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			quoted = !quoted
		case quoted:
		case r == '#':
			return depth
		case r == '(':
			depth++
		case r == ')' && depth > 0:
			depth--
		}
	}

	return depth
}

// render formats the hint for the completion line.
func (h inputHint) render() string {
	var parts []string

	if h.groupDepth > 0 {
		parts = append(parts, hintStyle.Render(fmt.Sprintf("( ×%d", h.groupDepth)))
	}

	if h.err != nil {
		msg := h.err.Message
		if msg == "" {
			msg = strings.TrimPrefix(h.err.Error(), "syntax error at ")
		}

		parts = append(parts, errorStyle.Render(fmt.Sprintf("col %d: %s", h.err.Pos.Column, msg)))

		return strings.Join(parts, " ")
	}

	count := func(n int, what string) {
		if n > 0 {
			parts = append(parts, hintStyle.Render(fmt.Sprintf("%d %s", n, what)))
		}
	}

	count(h.associations, "assoc")
	count(h.references, "ref")
	count(h.texts, "text")
	count(h.markers, "marker")

	return strings.Join(parts, " ")
}
