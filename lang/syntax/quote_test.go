package syntax

import "testing"

func TestQuote(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{in: "info", want: "info"},
		{in: "", want: `""`},
		{in: "a b", want: `"a b"`},
		{in: "/tmp/x:y", want: `"/tmp/x:y"`},
		{in: `say "hi"`, want: `"say \"hi\""`},
		{in: `c:\dir`, want: `"c:\\dir"`},
		{in: "@", want: `"@"`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Quote(tt.in)
			if got != tt.want {
				t.Fatalf("Quote(%q) = %s, want %s", tt.in, got, tt.want)
			}

			tree, err := Parse(got)
			if err != nil {
				t.Fatalf("Parse(%s) error: %v", got, err)
			}

			if len(tree.Root.Children) != 1 || tree.Root.Children[0].Tag != TagText {
				t.Fatalf("Parse(%s) = %s, want a single text", got, dump(tree))
			}
		})
	}
}
