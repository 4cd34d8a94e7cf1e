package syntax

//go:generate go tool stringer --type Tag --trimprefix Tag --output tag_string.go

import (
	"iter"

	"github.com/ardnew/cose/lang/arena"
)

// Tag labels a node of the concrete parse tree.
type Tag int

const (
	// TagFile is the root of a parsed unit. Its children are entries.
	TagFile Tag = iota

	// TagAssociation binds a key list to a value list. It has exactly two
	// children: a [TagKeys] node and a [TagValues] node.
	TagAssociation

	// TagKeys holds the expressions left of an association's colon.
	TagKeys

	// TagValues holds the expressions right of an association's colon,
	// including any indented block beneath it.
	TagValues

	// TagReference wraps exactly one [TagPrefix] or [TagChain] node.
	TagReference

	// TagPrefix is a shorthand reference ">X". It has exactly one
	// [TagSegment] child holding the operand.
	TagPrefix

	// TagChain is a chained reference "A>B>C". It has two or more
	// [TagSegment] children.
	TagChain

	// TagSegment is one step of a reference. Its only child is either a
	// [TagPrefix] or a primary expression.
	TagSegment

	// TagGroup is a parenthesized list. It is a transparent wrapper: its
	// children stand in place of the group itself.
	TagGroup

	// TagMarker is the distinguished literal "@".
	TagMarker

	// TagText is a literal text. Its children are [TagChar] and [TagEscape]
	// leaves in source order.
	TagText

	// TagChar is one raw source character of a text.
	TagChar

	// TagEscape is one escape sequence of a text: a backslash followed by the
	// escaped character.
	TagEscape
)

// Node is a node of the concrete parse tree.
type Node struct {
	Tag      Tag
	Span     arena.Span
	Text     string // raw lexeme of TagChar and TagEscape leaves
	Children []*Node
}

// Tree is the concrete parse tree of one source unit.
type Tree struct {
	Source string
	Root   *Node
}

// Walk returns an iterator over every node of the tree in pre-order.
func (t *Tree) Walk() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		if t == nil || t.Root == nil {
			return
		}

		t.Root.walk(yield)
	}
}

func (n *Node) walk(yield func(*Node) bool) bool {
	if !yield(n) {
		return false
	}

	for _, c := range n.Children {
		if !c.walk(yield) {
			return false
		}
	}

	return true
}

// Lexeme returns the source text covered by n.
func (t *Tree) Lexeme(n *Node) string {
	if n.Span.End > len(t.Source) || n.Span.Start > n.Span.End {
		return ""
	}

	return t.Source[n.Span.Start:n.Span.End]
}
