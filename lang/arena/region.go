package arena

import (
	"cmp"
	"fmt"
	"iter"
	"slices"

	"github.com/sirkon/rbtree"
)

// region is a node of the containment index. Sibling regions are disjoint
// and ordered by an RB-tree; regions nested inside one another hang off the
// children tree of their innermost container.
type region struct {
	span     Span
	index    Index
	children *rbtree.Tree[*region]
}

// Cmp orders regions as "disjoint by position":
//   - -1 if r ends at or before o starts,
//   - 1 if r starts at or after o ends,
//   - 0 if they overlap in any way (including containment).
//
// Ranges are half-open, so adjacent regions compare as disjoint.
func (r *region) Cmp(o *region) int {
	if r.span.End <= o.span.Start {
		return -1
	}

	if r.span.Start >= o.span.End {
		return 1
	}

	return 0
}

// regionIndex answers enclosure queries over every entry of an arena.
type regionIndex struct {
	roots *rbtree.Tree[*region]
}

// documentOrder sorts entries so every container precedes what it contains:
// by start ascending, then end descending, then the later insertion first
// (a later insertion surrounds an earlier one with an identical range).
func documentOrder[T any](entries []entry[T]) []Index {
	order := make([]Index, len(entries))
	for i := range order {
		order[i] = Index(i)
	}

	slices.SortFunc(order, func(a, b Index) int {
		sa, sb := entries[a].span, entries[b].span

		return cmp.Or(
			cmp.Compare(sa.Start, sb.Start),
			cmp.Compare(sb.End, sa.End),
			cmp.Compare(b, a),
		)
	})

	return order
}

// buildIndex inserts every region outermost first, so each insertion is
// either a new sibling or lands inside an existing region.
func buildIndex[T any](entries []entry[T]) *regionIndex {
	idx := &regionIndex{roots: rbtree.New[*region]()}

	for _, i := range documentOrder(entries) {
		idx.attach(idx.roots, &region{span: entries[i].span, index: i})
	}

	return idx
}

func (x *regionIndex) attach(t *rbtree.Tree[*region], r *region) {
	for {
		// Empty regions cover no position and can never be returned by an
		// enclosure query.
		if r.span.Len() == 0 {
			return
		}

		found := t.InsertReturn(r)
		if found == r {
			return
		}

		if !found.span.Contains(r.span) {
			panic(fmt.Sprintf(
				"arena: range %s of entry %d partially overlaps range %s of entry %d",
				r.span, r.index, found.span, found.index,
			))
		}

		if found.children == nil {
			found.children = rbtree.New[*region]()
		}

		t = found.children
	}
}

func (x *regionIndex) enclosing(pos int) (Index, bool) {
	at := &region{span: Span{Start: pos, End: pos + 1}}

	var (
		inner Index
		ok    bool
	)

	for t := x.roots; t != nil; {
		r := t.Search(at)
		if r == nil {
			break
		}

		inner, ok = r.index, true
		t = r.children
	}

	return inner, ok
}

// Enclosing returns the innermost entry whose range covers pos.
func (a *Arena[T]) Enclosing(pos int) (Index, bool) {
	if a.index == nil {
		a.index = buildIndex(a.entries)
	}

	return a.index.enclosing(pos)
}

// Bound is one event of the ordered traversal produced by [Arena.Bounds].
type Bound struct {
	// Index is the entry the event belongs to.
	Index Index
	// Pos is the byte offset of the event: the entry's start for a start
	// event, its end for an end event.
	Pos int
	// Start is true for "starts at" events and false for "ends at" events.
	Start bool
}

// Bounds returns an iterator over start and end events of every entry in
// document order. Events are well nested: an entry's end event precedes the
// end event of every entry that contains it.
func (a *Arena[T]) Bounds() iter.Seq[Bound] {
	return func(yield func(Bound) bool) {
		open := make([]Index, 0, 8)

		closeUntil := func(pos int, all bool) bool {
			for len(open) > 0 {
				top := open[len(open)-1]

				end := a.entries[top].span.End
				if !all && end > pos {
					return true
				}

				open = open[:len(open)-1]
				if !yield(Bound{Index: top, Pos: end}) {
					return false
				}
			}

			return true
		}

		for _, i := range documentOrder(a.entries) {
			span := a.entries[i].span
			if !closeUntil(span.Start, false) {
				return
			}

			if !yield(Bound{Index: i, Pos: span.Start, Start: true}) {
				return
			}

			open = append(open, i)
		}

		closeUntil(0, true)
	}
}
