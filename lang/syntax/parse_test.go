package syntax

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/sirkon/deepequal"

	"github.com/ardnew/cose/lang/arena"
)

// dump renders a tree compactly: texts as their quoted lexeme, markers as
// "@", and every other node as Tag(children...).
func dump(t *Tree) string {
	var buf strings.Builder

	var walk func(n *Node)
	walk = func(n *Node) {
		switch n.Tag {
		case TagText:
			buf.WriteString("'" + t.Lexeme(n) + "'")

			return
		case TagMarker:
			buf.WriteString("@")

			return
		}

		buf.WriteString(n.Tag.String())
		buf.WriteString("(")

		for i, c := range n.Children {
			if i > 0 {
				buf.WriteString(" ")
			}

			walk(c)
		}

		buf.WriteString(")")
	}

	walk(t.Root)

	return buf.String()
}

func TestParse_Structure(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "empty",
			input: "",
			want:  "File()",
		},
		{
			name:  "comments and blank lines",
			input: "# heading\n\n   \n# trailing",
			want:  "File()",
		},
		{
			name:  "simple association",
			input: "a: b",
			want:  "File(Association(Keys('a') Values('b')))",
		},
		{
			name:  "bare colon",
			input: ":",
			want:  "File(Association(Keys() Values()))",
		},
		{
			name:  "several keys and values",
			input: "a b: c d",
			want:  "File(Association(Keys('a' 'b') Values('c' 'd')))",
		},
		{
			name:  "colons nest",
			input: "a: b: c",
			want:  "File(Association(Keys('a') Values(Association(Keys('b') Values('c')))))",
		},
		{
			name:  "comma closes line associations",
			input: "a: b: c, d: e",
			want: "File(Association(Keys('a') Values(Association(Keys('b') Values('c')))) " +
				"Association(Keys('d') Values('e')))",
		},
		{
			name:  "indented block",
			input: "a:\n  b: c",
			want:  "File(Association(Keys('a') Values(Association(Keys('b') Values('c')))))",
		},
		{
			name:  "block appends to line values",
			input: "a: b\n  c\nd",
			want:  "File(Association(Keys('a') Values('b' 'c')) 'd')",
		},
		{
			name:  "block attaches to innermost open association",
			input: "a: b:\n  c\n  d",
			want:  "File(Association(Keys('a') Values(Association(Keys('b') Values('c' 'd')))))",
		},
		{
			name:  "nested blocks",
			input: "a:\n  b:\n    c\n  d\ne",
			want: "File(Association(Keys('a') Values(Association(Keys('b') Values('c')) 'd')) " +
				"'e')",
		},
		{
			name:  "group key and chained prefix",
			input: "(a): >b>c",
			want: "File(Association(Keys(Group('a')) " +
				"Values(Reference(Chain(Segment(Prefix(Segment('b'))) Segment('c'))))))",
		},
		{
			name:  "prefix after whitespace",
			input: "a >b",
			want:  "File('a' Reference(Prefix(Segment('b'))))",
		},
		{
			name:  "chain",
			input: "a>b>c",
			want:  "File(Reference(Chain(Segment('a') Segment('b') Segment('c'))))",
		},
		{
			name:  "prefix inside chain",
			input: "a>>b",
			want:  "File(Reference(Chain(Segment('a') Segment(Prefix(Segment('b'))))))",
		},
		{
			name:  "group spans lines",
			input: "(a,\n  # note\n b: c)",
			want:  "File(Group('a' Association(Keys('b') Values('c'))))",
		},
		{
			name:  "marker",
			input: "x: @ y",
			want:  "File(Association(Keys('x') Values(@ 'y')))",
		},
		{
			name:  "quoted text",
			input: `"a b": c`,
			want:  `File(Association(Keys('"a b"') Values('c')))`,
		},
		{
			name:  "trailing comment",
			input: "a: b # note\n",
			want:  "File(Association(Keys('a') Values('b')))",
		},
		{
			name:  "trailing comma",
			input: "a, b,\nc",
			want:  "File('a' 'b' 'c')",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}

			if got := dump(tree); got != tt.want {
				t.Errorf("Parse(%q)\n got: %s\nwant: %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestParse_Spans(t *testing.T) {
	tree, err := Parse("(a): >b>c")
	if err != nil {
		t.Fatal(err)
	}

	var got []arena.Span
	for n := range tree.Walk() {
		switch n.Tag {
		case TagAssociation, TagKeys, TagValues, TagReference, TagPrefix, TagGroup:
			got = append(got, n.Span)
		}
	}

	want := []arena.Span{
		{Start: 0, End: 9}, // association
		{Start: 0, End: 3}, // keys
		{Start: 0, End: 3}, // group
		{Start: 5, End: 9}, // values
		{Start: 5, End: 9}, // reference
		{Start: 5, End: 7}, // prefix
	}

	if !reflect.DeepEqual(want, got) {
		deepequal.SideBySide(t, "spans", want, got)
	}
}

func TestParse_BlockStretchesSpans(t *testing.T) {
	tree, err := Parse("a:\n  b: c")
	if err != nil {
		t.Fatal(err)
	}

	assoc := tree.Root.Children[0]
	if assoc.Span != (arena.Span{Start: 0, End: 9}) {
		t.Errorf("association span = %v, want [0,9)", assoc.Span)
	}

	if values := assoc.Children[1]; values.Span != (arena.Span{Start: 2, End: 9}) {
		t.Errorf("values span = %v, want [2,9)", values.Span)
	}
}

func TestParse_TextUnits(t *testing.T) {
	tree, err := Parse(`a\:b "x\"y"`)
	if err != nil {
		t.Fatal(err)
	}

	type unit struct {
		Tag  Tag
		Text string
	}

	var got []unit
	for n := range tree.Walk() {
		if n.Tag == TagChar || n.Tag == TagEscape {
			got = append(got, unit{n.Tag, n.Text})
		}
	}

	want := []unit{
		{TagChar, "a"},
		{TagEscape, `\:`},
		{TagChar, "b"},
		{TagChar, "x"},
		{TagEscape, `\"`},
		{TagChar, "y"},
	}

	if !reflect.DeepEqual(want, got) {
		deepequal.SideBySide(t, "units", want, got)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		line    int
		column  int
		message string
	}{
		{
			name:    "unexpected indentation",
			input:   "a\n  b",
			line:    2,
			column:  3,
			message: "unexpected indentation",
		},
		{
			name:    "inconsistent indentation",
			input:   "a: b\n    c\n  d",
			line:    3,
			column:  3,
			message: "inconsistent indentation",
		},
		{
			name:    "unterminated string",
			input:   `a: "abc`,
			line:    1,
			column:  8,
			message: "unterminated string",
		},
		{
			name:    "unterminated escape",
			input:   `a\`,
			line:    1,
			column:  3,
			message: "unterminated escape",
		},
		{
			name:    "unclosed group",
			input:   "(a",
			line:    1,
			column:  3,
			message: `expected`,
		},
		{
			name:    "stray close paren",
			input:   "a)",
			line:    1,
			column:  2,
			message: `expected`,
		},
		{
			name:    "dangling chain",
			input:   "a> b",
			line:    1,
			column:  3,
			message: `"marker"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Parse(tt.input)
			if err == nil {
				t.Fatalf("Parse(%q) = %s, want error", tt.input, dump(tree))
			}

			var synErr *Error
			if !errors.As(err, &synErr) {
				t.Fatalf("error type = %T, want *Error", err)
			}

			if synErr.Pos.Line != tt.line || synErr.Pos.Column != tt.column {
				t.Errorf("position = %s, want %d:%d (%v)",
					synErr.Pos, tt.line, tt.column, err)
			}

			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("error %q does not contain %q", err, tt.message)
			}
		})
	}
}

func TestParse_NestingLimit(t *testing.T) {
	indented := func(levels int) string {
		var buf strings.Builder
		for i := range levels {
			buf.WriteString(strings.Repeat(" ", i) + "a:\n")
		}

		return buf.String()
	}
	grouped := func(levels int) string {
		return strings.Repeat("(", levels) + "a" + strings.Repeat(")", levels)
	}

	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "shallow groups", input: grouped(50)},
		{name: "shallow blocks", input: indented(100)},
		{name: "shallow prefixes", input: strings.Repeat(">", 100) + "a"},
		{name: "deep groups", input: grouped(1000), wantErr: true},
		{name: "deep blocks", input: indented(1000), wantErr: true},
		{name: "deep associations", input: strings.Repeat("a: ", 1000) + "b", wantErr: true},
		{name: "deep prefixes", input: strings.Repeat(">", 1000) + "a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := Parse(tt.input)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Parse() error: %v", err)
				}

				return
			}

			if err == nil {
				t.Fatalf("Parse() = %s, want error", dump(tree))
			}

			var synErr *Error
			if !errors.As(err, &synErr) {
				t.Fatalf("error type = %T, want *Error", err)
			}

			if !strings.Contains(err.Error(), "nesting exceeds") {
				t.Errorf("error %q does not mention nesting", err)
			}
		})
	}
}
