package arena

import (
	"reflect"
	"testing"

	"github.com/sirkon/deepequal"
)

func TestArena_InsertSurrounding_AssignsStableIndices(t *testing.T) {
	a := New[string]()

	first := a.InsertSurrounding(0, 1, "a")
	second := a.InsertSurrounding(3, 4, "b")
	outer := a.InsertSurrounding(0, 4, "a: b")

	if first != 0 || second != 1 || outer != 2 {
		t.Fatalf("indices = %d, %d, %d; want 0, 1, 2", first, second, outer)
	}

	if a.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", a.Len())
	}

	for i, want := range []string{"a", "b", "a: b"} {
		if got := a.Get(Index(i)); got != want {
			t.Errorf("Get(%d) = %q, want %q", i, got, want)
		}
	}

	if got := a.Span(outer); got != (Span{Start: 0, End: 4}) {
		t.Errorf("Span(%d) = %v, want [0,4)", outer, got)
	}
}

func TestArena_Set_KeepsSpan(t *testing.T) {
	a := New[int]()
	i := a.InsertSurrounding(2, 7, 1)

	a.Set(i, 42)

	if got := a.Get(i); got != 42 {
		t.Errorf("Get() = %d, want 42", got)
	}

	if got := a.Span(i); got != (Span{Start: 2, End: 7}) {
		t.Errorf("Span() = %v, want [2,7)", got)
	}
}

func TestArena_InvalidAccess_Panics(t *testing.T) {
	tests := []struct {
		name string
		fn   func(a *Arena[int])
	}{
		{"negative start", func(a *Arena[int]) { a.InsertSurrounding(-1, 2, 0) }},
		{"end before start", func(a *Arena[int]) { a.InsertSurrounding(4, 2, 0) }},
		{"get out of range", func(a *Arena[int]) { a.Get(3) }},
		{"set out of range", func(a *Arena[int]) { a.Set(-1, 0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()

			tt.fn(New[int]())
		})
	}
}

func TestArena_Bounds_DocumentOrder(t *testing.T) {
	// Mirrors the layout produced for "a>b>c": three texts, the inner
	// reference [0,3) and the outer reference [0,5).
	a := New[string]()
	a.InsertSurrounding(0, 1, "a")
	a.InsertSurrounding(2, 3, "b")
	a.InsertSurrounding(0, 3, "a>b")
	a.InsertSurrounding(4, 5, "c")
	a.InsertSurrounding(0, 5, "a>b>c")

	var got []Bound
	for b := range a.Bounds() {
		got = append(got, b)
	}

	want := []Bound{
		{Index: 4, Pos: 0, Start: true},
		{Index: 2, Pos: 0, Start: true},
		{Index: 0, Pos: 0, Start: true},
		{Index: 0, Pos: 1},
		{Index: 1, Pos: 2, Start: true},
		{Index: 1, Pos: 3},
		{Index: 2, Pos: 3},
		{Index: 3, Pos: 4, Start: true},
		{Index: 3, Pos: 5},
		{Index: 4, Pos: 5},
	}

	if !reflect.DeepEqual(want, got) {
		deepequal.SideBySide(t, "bounds", want, got)
	}
}

func TestArena_Bounds_IdenticalSpansLaterIsOuter(t *testing.T) {
	a := New[string]()
	a.InsertSurrounding(0, 2, "inner")
	a.InsertSurrounding(0, 2, "outer")

	var got []Bound
	for b := range a.Bounds() {
		got = append(got, b)
	}

	want := []Bound{
		{Index: 1, Pos: 0, Start: true},
		{Index: 0, Pos: 0, Start: true},
		{Index: 0, Pos: 2},
		{Index: 1, Pos: 2},
	}

	if !reflect.DeepEqual(want, got) {
		deepequal.SideBySide(t, "bounds", want, got)
	}
}

func TestArena_Bounds_StopsEarly(t *testing.T) {
	a := New[int]()
	a.InsertSurrounding(0, 1, 0)
	a.InsertSurrounding(1, 2, 0)

	count := 0
	for range a.Bounds() {
		count++
		if count == 3 {
			break
		}
	}

	if count != 3 {
		t.Errorf("iterated %d events, want 3", count)
	}
}

func TestArena_Enclosing_ReturnsInnermost(t *testing.T) {
	a := New[string]()
	key := a.InsertSurrounding(0, 1, "a")
	inner := a.InsertSurrounding(6, 7, "c")
	innerAssoc := a.InsertSurrounding(5, 9, "b: c")
	outer := a.InsertSurrounding(0, 9, "a: b: c")

	tests := []struct {
		pos  int
		want Index
		ok   bool
	}{
		{pos: 0, want: key, ok: true},
		{pos: 2, want: outer, ok: true},
		{pos: 5, want: innerAssoc, ok: true},
		{pos: 6, want: inner, ok: true},
		{pos: 8, want: innerAssoc, ok: true},
		{pos: 9, ok: false},
		{pos: 42, ok: false},
	}

	for _, tt := range tests {
		got, ok := a.Enclosing(tt.pos)
		if ok != tt.ok {
			t.Errorf("Enclosing(%d) ok = %v, want %v", tt.pos, ok, tt.ok)

			continue
		}

		if ok && got != tt.want {
			t.Errorf("Enclosing(%d) = %d, want %d", tt.pos, got, tt.want)
		}
	}
}

func TestArena_Enclosing_RebuildsAfterInsert(t *testing.T) {
	a := New[string]()
	a.InsertSurrounding(0, 1, "a")

	if got, ok := a.Enclosing(0); !ok || got != 0 {
		t.Fatalf("Enclosing(0) = %d, %v; want 0, true", got, ok)
	}

	a.InsertSurrounding(10, 12, "b")

	if got, ok := a.Enclosing(11); !ok || got != 1 {
		t.Errorf("Enclosing(11) = %d, %v; want 1, true", got, ok)
	}
}

func TestArena_Enclosing_PartialOverlapPanics(t *testing.T) {
	a := New[string]()
	a.InsertSurrounding(0, 4, "left")
	a.InsertSurrounding(2, 6, "right")

	defer func() {
		if recover() == nil {
			t.Error("expected panic for partially overlapping ranges")
		}
	}()

	a.Enclosing(3)
}

func TestArena_Extent(t *testing.T) {
	a := New[int]()
	if a.Extent() != 0 {
		t.Errorf("empty Extent() = %d, want 0", a.Extent())
	}

	a.InsertSurrounding(3, 9, 0)
	a.InsertSurrounding(0, 2, 0)

	if a.Extent() != 9 {
		t.Errorf("Extent() = %d, want 9", a.Extent())
	}
}

func TestSpan(t *testing.T) {
	s := Span{Start: 2, End: 5}

	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3", s.Len())
	}

	if !s.Covers(2) || !s.Covers(4) || s.Covers(5) {
		t.Error("Covers must treat the span as half-open")
	}

	if !s.Contains(Span{Start: 3, End: 5}) || s.Contains(Span{Start: 1, End: 3}) {
		t.Error("Contains mismatch")
	}

	if s.String() != "[2,5)" {
		t.Errorf("String() = %q", s.String())
	}
}
