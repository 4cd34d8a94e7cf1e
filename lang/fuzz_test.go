package lang

import (
	"context"
	"testing"
	"unicode/utf8"

	"github.com/ardnew/cose/lang/arena"
)

func FuzzBuild(f *testing.F) {
	// Seed corpus with known valid inputs
	f.Add("a: b")
	f.Add("a: b: c")
	f.Add("x, ((a b) c): @")
	f.Add("a:\n  b: c\n  d: >e>f")
	f.Add("a>b>c>d")
	f.Add("a>>b")
	f.Add("a>(>x y)")
	f.Add(">(>x, y)")
	f.Add("(a): >b>c")
	f.Add("a\\:b \"x\\\"y\": (c,\n d)")

	f.Fuzz(func(t *testing.T, input string) {
		if !utf8.ValidString(input) {
			t.Skip("invalid UTF-8")
		}

		// Building should not panic on any input the parser accepts
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("build panicked on input %q: %v", input, r)
			}
		}()

		doc := NewDocument(WithCache(false))
		if _, err := doc.ParseString(context.Background(), "fuzz", input); err != nil {
			return
		}

		for i, n := range doc.All() {
			if _, open := n.(openAssociation); open {
				t.Errorf("%q: node %d left as placeholder", input, i)
			}

			if p, set := doc.Scope(i).Index(); set && p >= i {
				t.Errorf("%q: node %d scoped to later node %d", input, i, p)
			}

			outer := doc.Span(i)
			for _, c := range Children(n) {
				if inner := doc.Span(c); inner.Start < outer.Start || inner.End > outer.End {
					t.Errorf("%q: child %d %v outside node %d %v", input, c, inner, i, outer)
				}
			}

			if assoc, ok := n.(Association); ok {
				checkAssociationScopes(t, doc, i, assoc)
			}
		}

		checkBounds(t, doc)

		for pos := range len(input) + 1 {
			if i, ok := doc.Enclosing(pos); ok {
				if s := doc.Span(i); pos < s.Start || pos >= s.End {
					t.Errorf("%q: Enclosing(%d) = %d spanning %v", input, pos, i, s)
				}
			}
		}
	})
}

// checkAssociationScopes reports keys not sharing the association's scope and
// values not scoped to the association itself.
func checkAssociationScopes(t *testing.T, doc *Document, i arena.Index, assoc Association) {
	t.Helper()

	for _, k := range assoc.Keys {
		if got := doc.Scope(k); got != assoc.Parent {
			t.Errorf("key %d of %d scoped to %v, want %v", k, i, got, assoc.Parent)
		}
	}

	for _, v := range assoc.Values {
		if got := doc.Scope(v); got != ScopeAt(i) {
			t.Errorf("value %d of %d scoped to %v, want %v", v, i, got, ScopeAt(i))
		}
	}
}

// checkBounds reports start and end events that are not well nested or that
// do not cover every node exactly once.
func checkBounds(t *testing.T, doc *Document) {
	t.Helper()

	var (
		open   []arena.Index
		starts int
	)

	for b := range doc.Bounds() {
		if b.Start {
			starts++
			open = append(open, b.Index)

			continue
		}

		if len(open) == 0 || open[len(open)-1] != b.Index {
			t.Errorf("end of %d does not close the innermost open node", b.Index)

			return
		}

		open = open[:len(open)-1]
	}

	if starts != doc.Len() || len(open) != 0 {
		t.Errorf("%d start events, %d left open, want %d and 0", starts, len(open), doc.Len())
	}
}
