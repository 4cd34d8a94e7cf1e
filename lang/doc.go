// Package lang builds source text written in the cose notation into a
// resolved semantic graph.
//
// # Notation
//
// The notation is a nested key-value language. Informally:
//
//	a: b              association: keys [a], values [b]
//	a: b: c           colons nest: the values of a are [b: c]
//	a: b, c: d        a comma closes every association on the line
//	a:                an indented block adds to the values of the
//	  b: c            innermost association open at the end of the line
//	(a b): c          groups are transparent; (a b) stands for a b
//	a>b>c             chained reference
//	>a                prefix reference
//	@                 the marker literal
//	"a b" a\:b        quoted and escaped text
//	# comment
//
// See package [github.com/ardnew/cose/lang/syntax] for the parser.
//
// # Semantic graph
//
// A [Builder] walks a parse tree and appends [Node] values to an
// [arena.Arena]. Nodes refer to each other only by [arena.Index]:
//
//   - [Association] records its keys and values. Keys are scoped to the
//     association's parent; values are scoped to the association itself.
//   - A chain "A>B>C" folds left: the first segment yields the initial
//     associations, and every later segment allocates a [Reference] over
//     them. A chain of N segments produces N-1 references, and the last one
//     stands for the whole chain.
//   - A [PrefixReference] ">X" is resolved against its enclosing scope. A
//     reference segment beginning with a prefix is that prefix alone.
//   - [Text] holds its decoded value; [Marker] holds nothing.
//
// # Documents
//
// A [Document] accumulates several units into one arena, offsetting each by
// an origin so their ranges never overlap. Syntax and read errors leave the
// document unchanged.
//
//	doc := lang.NewDocument()
//	if _, err := doc.ParseString(ctx, "main", "(a): >b>c"); err != nil {
//	    return err
//	}
//	doc.FormatBounds(os.Stdout)
package lang
