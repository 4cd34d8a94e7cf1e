// Package arena provides an append-only store that addresses values by a
// stable integer index and keeps, for every value, the half-open byte range
// of source text it was built from.
//
// Ranges are expected to form a forest: any two ranges are either disjoint or
// one contains the other. Entries are typically inserted bottom-up (children
// before the range that surrounds them), which is why the insertion method is
// named [Arena.InsertSurrounding].
//
// Besides random access by index, the arena answers two ordered queries:
//
//   - [Arena.Bounds] yields "starts at" / "ends at" events in document order.
//   - [Arena.Enclosing] returns the innermost entry covering a position.
package arena

import (
	"fmt"
	"iter"
	"strconv"
)

// Index identifies an entry in an [Arena]. Indices are assigned in insertion
// order starting at zero and are never reused.
type Index int

// String returns the decimal representation of the index.
func (i Index) String() string { return strconv.Itoa(int(i)) }

// Span is a half-open byte range [Start, End).
type Span struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end"   yaml:"end"`
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Contains reports whether s covers every byte of o.
func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

// Covers reports whether pos lies inside s.
func (s Span) Covers(pos int) bool {
	return s.Start <= pos && pos < s.End
}

// String formats the span as "[start,end)".
func (s Span) String() string {
	return "[" + strconv.Itoa(s.Start) + "," + strconv.Itoa(s.End) + ")"
}

type entry[T any] struct {
	value T
	span  Span
}

// Arena is an append-only, index-addressed store of range-annotated values.
//
// The zero value is ready to use. An Arena is not safe for concurrent
// mutation.
type Arena[T any] struct {
	entries []entry[T]
	index   *regionIndex
}

// New returns an empty arena.
func New[T any]() *Arena[T] {
	return &Arena[T]{}
}

// InsertSurrounding stores v over the range [start, end) and returns its
// fresh index.
//
// The range may surround any number of previously inserted ranges. It must
// not partially overlap one of them; that is reported when the ordered
// queries next rebuild their index.
func (a *Arena[T]) InsertSurrounding(start, end int, v T) Index {
	if start < 0 || end < start {
		panic(fmt.Sprintf("arena: invalid range [%d,%d)", start, end))
	}

	a.entries = append(a.entries, entry[T]{
		value: v,
		span:  Span{Start: start, End: end},
	})
	a.index = nil

	return Index(len(a.entries) - 1)
}

// Get returns the value stored at i. It panics if i is out of range.
func (a *Arena[T]) Get(i Index) T {
	return a.entries[a.check(i)].value
}

// Set replaces the value stored at i, keeping its range. It panics if i is
// out of range.
func (a *Arena[T]) Set(i Index, v T) {
	a.entries[a.check(i)].value = v
}

// Span returns the range of the entry at i. It panics if i is out of range.
func (a *Arena[T]) Span(i Index) Span {
	return a.entries[a.check(i)].span
}

// Len returns the number of entries.
func (a *Arena[T]) Len() int { return len(a.entries) }

// Valid reports whether i addresses an entry.
func (a *Arena[T]) Valid(i Index) bool {
	return i >= 0 && int(i) < len(a.entries)
}

// Extent returns the greatest end offset of any entry, or zero for an empty
// arena.
func (a *Arena[T]) Extent() int {
	extent := 0
	for _, e := range a.entries {
		extent = max(extent, e.span.End)
	}

	return extent
}

// All returns an iterator over every entry in index order.
func (a *Arena[T]) All() iter.Seq2[Index, T] {
	return func(yield func(Index, T) bool) {
		for i, e := range a.entries {
			if !yield(Index(i), e.value) {
				return
			}
		}
	}
}

func (a *Arena[T]) check(i Index) int {
	if !a.Valid(i) {
		panic(fmt.Sprintf("arena: index %d out of range [0,%d)", i, len(a.entries)))
	}

	return int(i)
}
