package lang

import (
	"log/slog"
	"unicode/utf8"

	"github.com/ardnew/cose/lang/arena"
	"github.com/ardnew/cose/lang/syntax"
	"github.com/ardnew/cose/log"
)

// Builder turns a concrete parse tree into semantic nodes stored in an arena.
//
// Every node is scoped to its lexical parent, and chained or prefixed
// references are expanded into nested [Reference] and [PrefixReference]
// nodes. A Builder is single-threaded; Build runs to completion.
//
// Example:
//
//	a := arena.New[lang.Node]()
//	tree, err := syntax.Parse("a: b")
//	if err != nil {
//	    return err
//	}
//	top := lang.NewBuilder(a).Build(tree, lang.NoScope)
type Builder struct {
	arena      *arena.Arena[Node]
	logger     log.Logger
	onAllocate func(arena.Index, Scope)
	origin     int
}

// BuilderOption configures a [Builder].
type BuilderOption func(*Builder)

// WithOrigin shifts every recorded span by offset, so units accumulated into
// one arena occupy disjoint ranges.
func WithOrigin(offset int) BuilderOption {
	return func(b *Builder) {
		b.origin = offset
	}
}

// WithBuilderLogger sets the logger used to trace allocations.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithBuilderLogger(logger log.Logger) BuilderOption {
	return func(b *Builder) {
		b.logger = logger
	}
}

// OnAllocate registers fn to be called with the index and lexical scope of
// every node the builder allocates.
func OnAllocate(fn func(arena.Index, Scope)) BuilderOption {
	return func(b *Builder) {
		b.onAllocate = fn
	}
}

// NewBuilder returns a builder that appends nodes to a.
func NewBuilder(a *arena.Arena[Node], opts ...BuilderOption) *Builder {
	b := &Builder{arena: a}

	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}

	return b
}

// Build appends the semantic nodes of tree to the arena, scoping the
// top-level expressions to parent, and returns their indices in source
// order.
//
// A tree that violates the shape guaranteed by [syntax.Parse] panics with a
// *[ContractError].
func (b *Builder) Build(tree *syntax.Tree, parent Scope) []arena.Index {
	if tree == nil || tree.Root == nil {
		return nil
	}

	if tree.Root.Tag != syntax.TagFile {
		panic(contractViolation(tree.Root, "file"))
	}

	start := b.arena.Len()
	top := b.expressions(tree.Root.Children, parent)

	b.logger.Trace(
		"unit built",
		slog.Int("origin", b.origin),
		slog.Int("top_level", len(top)),
		slog.Int("allocated", b.arena.Len()-start),
	)

	return top
}

// expressions builds nodes in order, substituting the children of every
// group in its place.
func (b *Builder) expressions(nodes []*syntax.Node, parent Scope) []arena.Index {
	var out []arena.Index

	for _, n := range ungroup(nodes) {
		out = append(out, b.expression(n, parent))
	}

	return out
}

func (b *Builder) expression(n *syntax.Node, parent Scope) arena.Index {
	switch n.Tag {
	case syntax.TagAssociation:
		return b.association(n, parent)
	case syntax.TagReference:
		return b.reference(n, parent)
	case syntax.TagMarker:
		return b.allocate(n.Span, Marker{}, parent)
	case syntax.TagText:
		return b.text(n, parent)
	default:
		panic(contractViolation(n, "expression"))
	}
}

// association allocates its slot before building children so the values can
// be scoped to it. Keys stay in the enclosing scope.
func (b *Builder) association(n *syntax.Node, parent Scope) arena.Index {
	if len(n.Children) != 2 ||
		n.Children[0].Tag != syntax.TagKeys ||
		n.Children[1].Tag != syntax.TagValues {
		panic(contractViolation(n, "association"))
	}

	idx := b.allocate(n.Span, openAssociation{Parent: parent}, parent)

	keys := b.expressions(n.Children[0].Children, parent)
	values := b.expressions(n.Children[1].Children, ScopeAt(idx))

	b.arena.Set(idx, Association{
		Parent: parent,
		Keys:   keys,
		Values: values,
	})

	return idx
}

func (b *Builder) reference(n *syntax.Node, parent Scope) arena.Index {
	if len(n.Children) != 1 {
		panic(contractViolation(n, "reference"))
	}

	switch inner := n.Children[0]; inner.Tag {
	case syntax.TagPrefix:
		return b.prefix(inner, parent)
	case syntax.TagChain:
		return b.chain(inner, parent)
	default:
		panic(contractViolation(inner, "reference"))
	}
}

func (b *Builder) prefix(n *syntax.Node, parent Scope) arena.Index {
	keys := b.referenceable(segmentOf(n, 0), parent)

	return b.allocate(n.Span, PrefixReference{Parent: parent, Keys: keys}, parent)
}

// chain folds the segments left to right. Each segment after the first
// allocates a Reference covering the chain from its start through that
// segment, whose associations are the result of the previous step.
func (b *Builder) chain(n *syntax.Node, parent Scope) arena.Index {
	if len(n.Children) < 2 {
		panic(contractViolation(n, "chain"))
	}

	associations := b.referenceable(segmentOf(n, 0), parent)

	var last arena.Index

	for i := 1; i < len(n.Children); i++ {
		keys := b.referenceable(segmentOf(n, i), parent)
		span := arena.Span{Start: n.Span.Start, End: n.Children[i].Span.End}

		last = b.allocate(span, Reference{
			Parent:       parent,
			Associations: associations,
			Keys:         keys,
		}, parent)

		associations = []arena.Index{last}
	}

	return last
}

// referenceable builds the elements of one reference segment. A segment
// whose first element is a prefix yields that prefix alone; its siblings are
// never built.
func (b *Builder) referenceable(nodes []*syntax.Node, parent Scope) []arena.Index {
	flat := ungroup(nodes)

	if len(flat) > 0 {
		if pre, ok := prefixOf(flat[0]); ok {
			return []arena.Index{b.prefix(pre, parent)}
		}
	}

	return b.expressions(flat, parent)
}

// prefixOf returns the prefix n denotes: n itself directly after a '>', or
// the only child of the reference wrapping a prefix entry inside a group.
func prefixOf(n *syntax.Node) (*syntax.Node, bool) {
	switch {
	case n.Tag == syntax.TagPrefix:
		return n, true
	case n.Tag == syntax.TagReference && len(n.Children) == 1 &&
		n.Children[0].Tag == syntax.TagPrefix:
		return n.Children[0], true
	default:
		return nil, false
	}
}

func (b *Builder) text(n *syntax.Node, parent Scope) arena.Index {
	value := make([]byte, 0, n.Span.Len())

	for _, unit := range n.Children {
		switch unit.Tag {
		case syntax.TagChar:
			value = append(value, unit.Text...)
		case syntax.TagEscape:
			// The escaped character follows the backslash.
			r, size := utf8.DecodeRuneInString(unit.Text[min(1, len(unit.Text)):])
			if size == 0 {
				panic(contractViolation(unit, "escape"))
			}

			value = utf8.AppendRune(value, r)
		default:
			panic(contractViolation(unit, "text"))
		}
	}

	return b.allocate(n.Span, Text{Value: string(value)}, parent)
}

func (b *Builder) allocate(span arena.Span, n Node, parent Scope) arena.Index {
	idx := b.arena.InsertSurrounding(span.Start+b.origin, span.End+b.origin, n)

	b.logger.Trace(
		"allocate",
		slog.Int("index", int(idx)),
		slog.String("kind", n.Kind().String()),
		slog.String("span", b.arena.Span(idx).String()),
		slog.String("scope", parent.String()),
	)

	if b.onAllocate != nil {
		b.onAllocate(idx, parent)
	}

	return idx
}

// segmentOf returns the elements of the i-th segment child of n.
func segmentOf(n *syntax.Node, i int) []*syntax.Node {
	if i >= len(n.Children) {
		panic(contractViolation(n, "segment"))
	}

	seg := n.Children[i]
	if seg.Tag != syntax.TagSegment || len(seg.Children) != 1 {
		panic(contractViolation(seg, "segment"))
	}

	return seg.Children
}

// ungroup substitutes the children of every group, recursively, in place of
// the group.
func ungroup(nodes []*syntax.Node) []*syntax.Node {
	grouped := false

	for _, n := range nodes {
		if n.Tag == syntax.TagGroup {
			grouped = true

			break
		}
	}

	if !grouped {
		return nodes
	}

	flat := make([]*syntax.Node, 0, len(nodes))

	for _, n := range nodes {
		if n.Tag == syntax.TagGroup {
			flat = append(flat, ungroup(n.Children)...)
		} else {
			flat = append(flat, n)
		}
	}

	return flat
}
