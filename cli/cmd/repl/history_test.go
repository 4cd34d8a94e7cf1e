package repl

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestHistory_PersistsWithModes(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)

	for _, e := range []HistoryEntry{
		{Line: "a: b", Mode: modeBuild},
		{Line: "tree", Mode: modeCtrl},
		{Line: "  ", Mode: modeBuild},
		{Line: "c", Mode: modeBuild},
	} {
		if err := h.Append(e.Line, e.Mode); err != nil {
			t.Fatal(err)
		}
	}

	want := []HistoryEntry{
		{Line: "a: b", Mode: modeBuild},
		{Line: "tree", Mode: modeCtrl},
		{Line: "c", Mode: modeBuild},
	}

	if got := h.Entries(); !reflect.DeepEqual(want, got) {
		t.Fatalf("Entries() = %v, want %v", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if string(data) != "B:a: b\nC:tree\nB:c\n" {
		t.Errorf("history file = %q", data)
	}

	loaded := NewHistory(path)
	if err := loaded.Load(); err != nil {
		t.Fatal(err)
	}

	if got := loaded.Entries(); !reflect.DeepEqual(want, got) {
		t.Errorf("loaded = %v, want %v", got, want)
	}
}

func TestHistory_MovesDuplicatesToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)

	for _, line := range []string{"a", "b", "b", "a"} {
		if err := h.Append(line, modeBuild); err != nil {
			t.Fatal(err)
		}
	}

	// The same line in another mode is a distinct entry.
	if err := h.Append("a", modeCtrl); err != nil {
		t.Fatal(err)
	}

	want := []HistoryEntry{
		{Line: "b", Mode: modeBuild},
		{Line: "a", Mode: modeBuild},
		{Line: "a", Mode: modeCtrl},
	}

	if got := h.Entries(); !reflect.DeepEqual(want, got) {
		t.Fatalf("Entries() = %v, want %v", got, want)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if string(data) != "B:b\nB:a\nC:a\n" {
		t.Errorf("history file = %q", data)
	}
}

func TestHistory_MissingFileAndBounds(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "absent"))
	if err := h.Load(); err != nil {
		t.Fatalf("Load() of a missing file = %v", err)
	}

	if _, err := h.Entry(0); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Entry(0) = %v, want ErrOutOfBounds", err)
	}

	mem := NewHistory("")
	if err := mem.Append("x", modeBuild); err != nil {
		t.Fatal(err)
	}

	if mem.Len() != 1 {
		t.Errorf("in-memory Len() = %d, want 1", mem.Len())
	}
}
