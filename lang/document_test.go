package lang

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/sirkon/deepequal"

	"github.com/ardnew/cose/lang/arena"
	"github.com/ardnew/cose/lang/syntax"
)

func TestDocument_ParseString_AccumulatesUnits(t *testing.T) {
	ctx := context.Background()
	doc := NewDocument()

	first, err := doc.ParseString(ctx, "first", "a: b")
	if err != nil {
		t.Fatal(err)
	}

	before := entriesOf(doc)

	second, err := doc.ParseString(ctx, "second", "c>d")
	if err != nil {
		t.Fatal(err)
	}

	if first.Origin != 0 || second.Origin != 4 {
		t.Errorf("origins = %d, %d; want 0, 4", first.Origin, second.Origin)
	}

	// Earlier nodes are untouched by later units.
	if got := entriesOf(doc)[:len(before)]; !reflect.DeepEqual(before, got) {
		deepequal.SideBySide(t, "first unit", before, got)
	}

	if !reflect.DeepEqual(idx(0), first.Top) || !reflect.DeepEqual(idx(5), second.Top) {
		t.Errorf("tops = %v, %v; want [0], [5]", first.Top, second.Top)
	}

	if !reflect.DeepEqual(idx(0, 5), doc.Top()) {
		t.Errorf("Top() = %v, want [0 5]", doc.Top())
	}

	if got := doc.Span(5); got != span(4, 7) {
		t.Errorf("Span(5) = %v, want [4,7)", got)
	}

	// Ranges of the two units never overlap, so the containment index builds.
	if i, ok := doc.Enclosing(6); !ok || i != 4 {
		t.Errorf("Enclosing(6) = %d, %v; want 4, true", i, ok)
	}
}

func TestDocument_ParseString_SyntaxErrorLeavesDocumentUnchanged(t *testing.T) {
	ctx := context.Background()
	doc := NewDocument()

	if _, err := doc.ParseString(ctx, "ok", "a: b"); err != nil {
		t.Fatal(err)
	}

	before := entriesOf(doc)

	_, err := doc.ParseString(ctx, "bad", "a: (b")
	if err == nil {
		t.Fatal("expected syntax error")
	}

	var synErr *syntax.Error
	if !errors.As(err, &synErr) {
		t.Fatalf("error = %T, want *syntax.Error", err)
	}

	if errors.Is(err, ErrReadInput) {
		t.Error("syntax error must not match ErrReadInput")
	}

	if got := entriesOf(doc); !reflect.DeepEqual(before, got) {
		deepequal.SideBySide(t, "arena", before, got)
	}

	if len(doc.Units()) != 1 || doc.Extent() != 4 {
		t.Errorf("units = %d, extent = %d; want 1, 4", len(doc.Units()), doc.Extent())
	}
}

func TestDocument_ParseReader_ReadFailure(t *testing.T) {
	ctx := context.Background()
	doc := NewDocument()

	cause := errors.New("device unplugged")

	_, err := doc.ParseReader(ctx, "stdin", iotest.ErrReader(cause))
	if !errors.Is(err, ErrReadInput) {
		t.Fatalf("error = %v, want ErrReadInput", err)
	}

	if !errors.Is(err, cause) {
		t.Errorf("error = %v, want wrapped cause", err)
	}

	var synErr *syntax.Error
	if errors.As(err, &synErr) {
		t.Error("read failure must not be a syntax error")
	}

	if doc.Len() != 0 || len(doc.Units()) != 0 {
		t.Errorf("document changed: %d nodes, %d units", doc.Len(), len(doc.Units()))
	}
}

func TestDocument_ParseReader(t *testing.T) {
	doc := NewDocument(WithCache(false))

	unit, err := doc.ParseReader(context.Background(), "reader", strings.NewReader("x: @"))
	if err != nil {
		t.Fatal(err)
	}

	if unit.Length != 4 || doc.Len() != 3 {
		t.Errorf("unit length %d with %d nodes, want 4 and 3", unit.Length, doc.Len())
	}

	if _, ok := doc.Node(2).(Marker); !ok {
		t.Errorf("node 2 = %v, want marker", doc.Node(2))
	}
}

func TestDocument_ParseFiles(t *testing.T) {
	dir := t.TempDir()

	a := filepath.Join(dir, "a.cose")
	b := filepath.Join(dir, "b.cose")

	if err := os.WriteFile(a, []byte("a: b\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(b, []byte("c\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	doc := NewDocument()

	units, err := doc.ParseFiles(context.Background(), a, b)
	if err != nil {
		t.Fatal(err)
	}

	if len(units) != 2 || units[0].Name != a || units[1].Origin != 5 {
		t.Errorf("units = %+v", units)
	}

	_, err = doc.ParseFiles(context.Background(), filepath.Join(dir, "missing"))
	if !errors.Is(err, ErrOpenSource) {
		t.Errorf("error = %v, want ErrOpenSource", err)
	}
}

func TestDocument_ParseString_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc := NewDocument()
	if _, err := doc.ParseString(ctx, "x", "a"); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestDocument_ScopeAndDepth(t *testing.T) {
	doc := NewDocument()

	if _, err := doc.ParseString(context.Background(), "main", "a:\n  b: c"); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		index arena.Index
		scope Scope
		depth int
	}{
		{index: 0, scope: NoScope, depth: 0},    // association a
		{index: 1, scope: NoScope, depth: 0},    // key a
		{index: 2, scope: ScopeAt(0), depth: 1}, // association b
		{index: 3, scope: ScopeAt(0), depth: 1}, // key b
		{index: 4, scope: ScopeAt(2), depth: 2}, // value c
	}

	for _, tt := range tests {
		if got := doc.Scope(tt.index); got != tt.scope {
			t.Errorf("Scope(%d) = %v, want %v", tt.index, got, tt.scope)
		}

		if got := doc.Depth(tt.index); got != tt.depth {
			t.Errorf("Depth(%d) = %d, want %d", tt.index, got, tt.depth)
		}
	}
}

func TestDocument_UnitAt(t *testing.T) {
	ctx := context.Background()
	doc := NewDocument()

	for _, src := range []string{"a: b", "", "c d"} {
		if _, err := doc.ParseString(ctx, "u"+src, src); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		pos  int
		name string
		ok   bool
	}{
		{pos: 0, name: "ua: b", ok: true},
		{pos: 3, name: "ua: b", ok: true},
		{pos: 4, name: "uc d", ok: true},
		{pos: 6, name: "uc d", ok: true},
		{pos: 7, ok: false},
		{pos: -1, ok: false},
	}

	for _, tt := range tests {
		u, ok := doc.UnitAt(tt.pos)
		if ok != tt.ok || u.Name != tt.name {
			t.Errorf("UnitAt(%d) = %q, %v; want %q, %v", tt.pos, u.Name, ok, tt.name, tt.ok)
		}
	}

	if u, ok := doc.UnitOf(doc.Top()[1]); !ok || u.Name != "uc d" {
		t.Errorf("UnitOf(%d) = %q, %v", doc.Top()[1], u.Name, ok)
	}
}

func TestDocument_Text(t *testing.T) {
	doc := NewDocument()
	if _, err := doc.ParseString(context.Background(), "main", `k: "v w"`); err != nil {
		t.Fatal(err)
	}

	if v, ok := doc.Text(2); !ok || v != "v w" {
		t.Errorf("Text(2) = %q, %v", v, ok)
	}

	if _, ok := doc.Text(0); ok {
		t.Error("Text(0) must fail for an association")
	}
}

func entriesOf(d *Document) []entry {
	return entries(d.arena)
}
