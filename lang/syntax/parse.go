package syntax

import (
	"strconv"
	"unicode/utf8"

	"github.com/ardnew/cose/lang/arena"
)

// Marker is the distinguished literal.
const Marker = '@'

// MaxNesting bounds how deeply indented blocks, associations, groups and
// prefixes may nest. Deeper input is a syntax error.
const MaxNesting = 256

// Parse parses one source unit into a concrete parse tree.
//
// On failure it returns a *[Error] and no tree.
func Parse(source string) (*Tree, error) {
	p := &parser{
		input: source,
		line:  1,
		col:   1,
	}

	entries, err := p.parseBlock(-1)
	if err != nil {
		return nil, err
	}

	if !p.eof() {
		return nil, p.errorf("file", "unexpected input", "end of input")
	}

	return &Tree{
		Source: source,
		Root: &Node{
			Tag:      TagFile,
			Span:     arena.Span{Start: 0, End: len(source)},
			Children: entries,
		},
	}, nil
}

// parser holds the parser state.
type parser struct {
	input string
	pos   int
	line  int
	col   int
	depth int // group nesting; newlines are plain whitespace when > 0
	nest  int // nesting of every recursive rule, bounded by MaxNesting
}

// enter descends one nesting level on behalf of rule.
func (p *parser) enter(rule string) error {
	if p.nest >= MaxNesting {
		return p.errorf(rule, "nesting exceeds "+strconv.Itoa(MaxNesting)+" levels")
	}

	p.nest++

	return nil
}

func (p *parser) leave() { p.nest-- }

// parseBlock parses every line indented deeper than parent. All lines of a
// block share the indentation of its first line.
func (p *parser) parseBlock(parent int) ([]*Node, error) {
	if err := p.enter("block"); err != nil {
		return nil, err
	}
	defer p.leave()

	var (
		entries []*Node
		indent  = -1
	)

	for {
		p.skipBlankLines()

		if p.eof() {
			return entries, nil
		}

		n := p.measureIndent()
		if n <= parent {
			return entries, nil
		}

		switch {
		case indent < 0:
			indent = n
		case n != indent:
			p.advanceN(n)

			return nil, p.errorf("block", "inconsistent indentation")
		}

		p.advanceN(n)

		line, err := p.parseLine(indent)
		if err != nil {
			return nil, err
		}

		entries = append(entries, line...)
	}
}

// parseLine parses comma-separated entries up to the end of the current
// line, then the indented block that belongs to the association left open at
// the end of the line, if any.
func (p *parser) parseLine(indent int) ([]*Node, error) {
	var (
		entries []*Node
		open    []*Node
	)

	for {
		nodes, path, err := p.parseEntry()
		if err != nil {
			return nil, err
		}

		entries = append(entries, nodes...)
		open = path

		p.skipSpace()

		if p.peek() != ',' {
			break
		}

		p.advance()
		p.skipSpace()

		if p.atLineEnd() || p.peek() == '#' {
			open = nil

			break
		}
	}

	p.skipComment()

	if !p.atLineEnd() {
		return nil, p.errorf("line", "unexpected input", ",", ":", "newline")
	}

	p.skipNewline()

	if n, ok := p.peekIndent(); ok && n > indent {
		if len(open) == 0 {
			p.skipBlankLines()
			p.advanceN(n)

			return nil, p.errorf("block", "unexpected indentation")
		}

		block, err := p.parseBlock(indent)
		if err != nil {
			return nil, err
		}

		attachBlock(open, block)
	}

	return entries, nil
}

// attachBlock appends block to the values of the innermost association of
// path and stretches every association of path over it.
func attachBlock(path []*Node, block []*Node) {
	if len(block) == 0 {
		return
	}

	end := block[len(block)-1].Span.End

	inner := path[len(path)-1].Children[1]
	inner.Children = append(inner.Children, block...)

	for _, assoc := range path {
		assoc.Span.End = end
		assoc.Children[1].Span.End = end
	}
}

// parseEntry parses: Exprs [':' Entry].
//
// It returns the parsed nodes and, if the entry is an association, the chain
// of associations opened by its colons from outermost to innermost.
func (p *parser) parseEntry() ([]*Node, []*Node, error) {
	if err := p.enter("entry"); err != nil {
		return nil, nil, err
	}
	defer p.leave()

	keys, err := p.parseExprs()
	if err != nil {
		return nil, nil, err
	}

	p.skipSpace()

	if p.peek() != ':' {
		if len(keys) == 0 {
			return nil, nil, p.errorf("entry", "",
				"text", "marker", "(", ">", ":")
		}

		return keys, nil, nil
	}

	colon := p.pos
	p.advance()

	keyList := &Node{
		Tag:      TagKeys,
		Span:     spanOf(keys, colon),
		Children: keys,
	}

	p.skipSpace()

	var (
		values []*Node
		path   []*Node
	)

	if !p.atEntryEnd() {
		values, path, err = p.parseEntry()
		if err != nil {
			return nil, nil, err
		}
	}

	valueList := &Node{
		Tag:      TagValues,
		Span:     spanOf(values, colon+1),
		Children: values,
	}

	assoc := &Node{
		Tag: TagAssociation,
		Span: arena.Span{
			Start: min(keyList.Span.Start, colon),
			End:   max(valueList.Span.End, colon+1),
		},
		Children: []*Node{keyList, valueList},
	}

	return []*Node{assoc}, append([]*Node{assoc}, path...), nil
}

// parseExprs parses zero or more whitespace-separated expressions.
func (p *parser) parseExprs() ([]*Node, error) {
	var exprs []*Node

	for {
		p.skipSpace()

		if p.atEntryEnd() || p.peek() == ':' {
			return exprs, nil
		}

		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}

		exprs = append(exprs, expr)
	}
}

// parseExpr parses: Chain | Prefix | Primary.
//
// A chain continues only while '>' immediately follows a segment; '>' after
// whitespace starts a new prefix reference.
func (p *parser) parseExpr() (*Node, error) {
	start := p.pos

	first, err := p.parseSegment()
	if err != nil {
		return nil, err
	}

	if p.peek() != '>' {
		if first.Tag != TagPrefix {
			return first, nil
		}

		return &Node{
			Tag:      TagReference,
			Span:     first.Span,
			Children: []*Node{first},
		}, nil
	}

	segments := []*Node{segment(first)}

	for p.peek() == '>' {
		p.advance()

		next, err := p.parseSegment()
		if err != nil {
			return nil, err
		}

		segments = append(segments, segment(next))
	}

	span := arena.Span{Start: start, End: p.pos}

	return &Node{
		Tag:  TagReference,
		Span: span,
		Children: []*Node{{
			Tag:      TagChain,
			Span:     span,
			Children: segments,
		}},
	}, nil
}

// parseSegment parses: Prefix | Primary.
func (p *parser) parseSegment() (*Node, error) {
	if p.peek() == '>' {
		return p.parsePrefix()
	}

	return p.parsePrimary()
}

// parsePrefix parses: '>' Primary.
func (p *parser) parsePrefix() (*Node, error) {
	if err := p.enter("prefix"); err != nil {
		return nil, err
	}
	defer p.leave()

	start := p.pos
	p.advance()

	operand, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}

	return &Node{
		Tag:      TagPrefix,
		Span:     arena.Span{Start: start, End: p.pos},
		Children: []*Node{segment(operand)},
	}, nil
}

// parsePrimary parses: Text | Marker | Group.
func (p *parser) parsePrimary() (*Node, error) {
	switch ch := p.peek(); {
	case ch == '(':
		return p.parseGroup()

	case ch == Marker:
		start := p.pos
		p.advance()

		return &Node{
			Tag:  TagMarker,
			Span: arena.Span{Start: start, End: p.pos},
		}, nil

	case ch == '"':
		return p.parseQuoted()

	case !p.eof() && (ch == '\\' || !isSpecial(ch)):
		return p.parseBare()

	default:
		return nil, p.errorf("primary", "", "text", "marker", "(")
	}
}

// parseGroup parses: '(' [Entry (',' Entry)*] ')'.
func (p *parser) parseGroup() (*Node, error) {
	if err := p.enter("group"); err != nil {
		return nil, err
	}
	defer p.leave()

	start := p.pos
	p.advance()

	p.depth++
	defer func() { p.depth-- }()

	var entries []*Node

	for {
		p.skipSpace()

		if p.peek() == ')' {
			break
		}

		nodes, _, err := p.parseEntry()
		if err != nil {
			return nil, err
		}

		entries = append(entries, nodes...)

		p.skipSpace()

		if p.peek() == ',' {
			p.advance()

			continue
		}

		if p.peek() != ')' {
			return nil, p.errorf("group", "", ",", ")")
		}
	}

	p.advance()

	return &Node{
		Tag:      TagGroup,
		Span:     arena.Span{Start: start, End: p.pos},
		Children: entries,
	}, nil
}

// parseBare parses an unquoted text.
func (p *parser) parseBare() (*Node, error) {
	text := &Node{Tag: TagText}
	start := p.pos

	for !p.eof() {
		ch := p.peek()

		if ch == '\\' {
			unit, err := p.parseEscape()
			if err != nil {
				return nil, err
			}

			text.Children = append(text.Children, unit)

			continue
		}

		if isSpecial(ch) {
			break
		}

		text.Children = append(text.Children, p.parseChar())
	}

	text.Span = arena.Span{Start: start, End: p.pos}

	return text, nil
}

// parseQuoted parses a double-quoted text.
func (p *parser) parseQuoted() (*Node, error) {
	text := &Node{Tag: TagText}
	start := p.pos
	p.advance()

	for {
		switch ch := p.peek(); {
		case p.eof() || ch == '\n':
			return nil, p.errorf("text", "unterminated string", `"`)

		case ch == '"':
			p.advance()
			text.Span = arena.Span{Start: start, End: p.pos}

			return text, nil

		case ch == '\\':
			unit, err := p.parseEscape()
			if err != nil {
				return nil, err
			}

			text.Children = append(text.Children, unit)

		default:
			text.Children = append(text.Children, p.parseChar())
		}
	}
}

func (p *parser) parseEscape() (*Node, error) {
	start := p.pos
	p.advance()

	if p.eof() {
		return nil, p.errorf("escape", "unterminated escape sequence")
	}

	p.advance()

	return &Node{
		Tag:  TagEscape,
		Span: arena.Span{Start: start, End: p.pos},
		Text: p.input[start:p.pos],
	}, nil
}

func (p *parser) parseChar() *Node {
	start := p.pos
	p.advance()

	return &Node{
		Tag:  TagChar,
		Span: arena.Span{Start: start, End: p.pos},
		Text: p.input[start:p.pos],
	}
}

func segment(n *Node) *Node {
	return &Node{
		Tag:      TagSegment,
		Span:     n.Span,
		Children: []*Node{n},
	}
}

// spanOf returns the range covered by nodes, or an empty range at pos.
func spanOf(nodes []*Node, pos int) arena.Span {
	if len(nodes) == 0 {
		return arena.Span{Start: pos, End: pos}
	}

	return arena.Span{
		Start: nodes[0].Span.Start,
		End:   nodes[len(nodes)-1].Span.End,
	}
}

// Helper methods

func (p *parser) peek() rune {
	if p.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(p.input[p.pos:])

	return r
}

func (p *parser) advance() {
	if p.eof() {
		return
	}

	r, size := utf8.DecodeRuneInString(p.input[p.pos:])

	p.pos += size
	if r == '\n' {
		p.line++
		p.col = 1
	} else {
		p.col++
	}
}

func (p *parser) advanceN(n int) {
	for range n {
		p.advance()
	}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.input)
}

func (p *parser) position() Position {
	return Position{
		Offset: p.pos,
		Line:   p.line,
		Column: p.col,
	}
}

func (p *parser) errorf(rule, msg string, expected ...string) *Error {
	return &Error{
		Pos:      p.position(),
		Rule:     rule,
		Expected: expected,
		Message:  msg,
		Source:   p.input,
	}
}

// atLineEnd reports whether the parser is at a newline or end of input.
func (p *parser) atLineEnd() bool {
	return p.eof() || p.peek() == '\n'
}

// atEntryEnd reports whether the next character ends the current entry.
func (p *parser) atEntryEnd() bool {
	switch p.peek() {
	case ',', ')', '#', '\n':
		return true
	}

	return p.eof()
}

// skipSpace skips inline whitespace. Inside a group it also skips newlines
// and comments.
func (p *parser) skipSpace() {
	for !p.eof() {
		switch p.peek() {
		case ' ', '\t', '\r':
			p.advance()
		case '\n':
			if p.depth == 0 {
				return
			}

			p.advance()
		case '#':
			if p.depth == 0 {
				return
			}

			p.skipComment()
		default:
			return
		}
	}
}

func (p *parser) skipComment() {
	if p.peek() != '#' {
		return
	}

	for !p.eof() && p.peek() != '\n' {
		p.advance()
	}
}

func (p *parser) skipNewline() {
	if p.peek() == '\n' {
		p.advance()
	}
}

// skipBlankLines skips lines holding only whitespace and comments, leaving
// the parser at the start of the next content line (or end of input).
func (p *parser) skipBlankLines() {
	for !p.eof() {
		pos, line, col := p.pos, p.line, p.col

		for !p.eof() && isInlineSpace(p.peek()) {
			p.advance()
		}

		p.skipComment()

		if p.eof() {
			return
		}

		if p.peek() != '\n' {
			p.pos, p.line, p.col = pos, line, col

			return
		}

		p.advance()
	}
}

// measureIndent counts the spaces and tabs at the parser position without
// consuming them.
func (p *parser) measureIndent() int {
	n := 0
	for i := p.pos; i < len(p.input); i++ {
		if p.input[i] != ' ' && p.input[i] != '\t' {
			break
		}

		n++
	}

	return n
}

// peekIndent returns the indentation of the next content line without
// consuming anything.
func (p *parser) peekIndent() (int, bool) {
	pos, line, col := p.pos, p.line, p.col
	defer func() { p.pos, p.line, p.col = pos, line, col }()

	p.skipBlankLines()

	if p.eof() {
		return 0, false
	}

	return p.measureIndent(), true
}

// Character classification

func isInlineSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r'
}

// isSpecial reports whether r ends a bare text.
func isSpecial(r rune) bool {
	switch r {
	case ' ', '\t', '\r', '\n',
		':', ',', '(', ')', '>', '#', '"', '\\', Marker:
		return true
	}

	return false
}
