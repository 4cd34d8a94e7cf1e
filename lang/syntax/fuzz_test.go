package syntax

import (
	"errors"
	"testing"
	"unicode/utf8"
)

func FuzzParse(f *testing.F) {
	// Seed corpus with known valid inputs
	f.Add("a: b")
	f.Add("a, b: c, d")
	f.Add("a:\n  b: c\n  d")
	f.Add("a>b>c")
	f.Add(">a>b")
	f.Add("a>(>x y)")
	f.Add("(a b)>c: @")
	f.Add(`"quoted \"x\"": y`)
	f.Add(`a\:b # comment`)
	f.Add("a: (b,\n c)")
	f.Add("a:\n    b\n  c")

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		// Parse should not panic on any input
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("Parse panicked on input %q: %v", input, r)
			}
		}()

		tree, err := Parse(input)
		if err != nil {
			var se *Error
			if !errors.As(err, &se) {
				t.Errorf("Parse(%q) error %T, want *Error", input, err)
			}

			return
		}

		if tree.Root.Span.Start != 0 || tree.Root.Span.End != len(input) {
			t.Errorf("root span %v, want [0, %d)", tree.Root.Span, len(input))
		}

		checkContained(t, input, tree.Root)
	})
}

// checkContained reports any child whose span leaves its parent's span.
func checkContained(t *testing.T, input string, n *Node) {
	t.Helper()

	for _, c := range n.Children {
		if c.Span.Start < n.Span.Start || c.Span.End > n.Span.End {
			t.Errorf("%q: %s %v outside %s %v", input, c.Tag, c.Span, n.Tag, n.Span)
		}

		checkContained(t, input, c)
	}
}
