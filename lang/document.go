package lang

import (
	"context"
	"io"
	"iter"
	"log/slog"
	"os"
	"slices"

	"github.com/ardnew/cose/lang/arena"
	"github.com/ardnew/cose/lang/syntax"
	"github.com/ardnew/cose/log"
)

// Document accumulates any number of source units into one semantic arena.
//
// Each unit is placed at an origin past every unit before it, so spans of
// different units never overlap and indices handed out earlier stay valid.
// A Document is not safe for concurrent use.
type Document struct {
	arena  *arena.Arena[Node]
	units  []Unit
	scopes []Scope // lexical scope of every node, by index
	logger log.Logger
	cache  bool
}

// Unit describes one source text built into a [Document].
type Unit struct {
	Name   string        `json:"name"   yaml:"name"`
	Origin int           `json:"origin" yaml:"origin"` // offset of the unit in document coordinates
	Length int           `json:"length" yaml:"length"`
	Top    []arena.Index `json:"top"    yaml:"top"`    // top-level nodes in source order
}

// Span returns the range the unit occupies in document coordinates.
func (u Unit) Span() arena.Span {
	return arena.Span{Start: u.Origin, End: u.Origin + u.Length}
}

// Option configures a [Document].
type Option func(*Document)

// WithLogger sets the structured logger for trace-level debugging.
// If not provided, the logger is zero-valued and all logging is a no-op.
func WithLogger(logger log.Logger) Option {
	return func(d *Document) {
		d.logger = logger
	}
}

// WithCache enables or disables the process-wide parse cache (enabled by
// default).
func WithCache(enable bool) Option {
	return func(d *Document) {
		d.cache = enable
	}
}

// NewDocument returns an empty document.
func NewDocument(opts ...Option) *Document {
	d := &Document{
		arena: arena.New[Node](),
		cache: true,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(d)
		}
	}

	return d
}

// ParseString parses source and builds it into the document as a new unit.
//
// A syntax error is returned as the *[syntax.Error] from the parser. On any
// error the document is left unchanged.
func (d *Document) ParseString(
	ctx context.Context,
	name, source string,
) (Unit, error) {
	if err := ctx.Err(); err != nil {
		return Unit{}, err
	}

	var (
		tree *syntax.Tree
		err  error
	)

	if d.cache {
		tree, err = parseCached(ctx, d.logger, source)
	} else {
		tree, err = syntax.Parse(source)
	}

	if err != nil {
		d.logger.DebugContext(
			ctx,
			"parse failed",
			slog.String("unit", name),
			slog.Any("error", err),
		)

		return Unit{}, err
	}

	unit := Unit{
		Name:   name,
		Origin: d.Extent(),
		Length: len(source),
	}

	builder := NewBuilder(
		d.arena,
		WithOrigin(unit.Origin),
		WithBuilderLogger(d.logger),
		OnAllocate(d.record),
	)

	unit.Top = builder.Build(tree, NoScope)
	d.units = append(d.units, unit)

	d.logger.TraceContext(
		ctx,
		"unit added",
		slog.String("unit", name),
		slog.Int("origin", unit.Origin),
		slog.Int("length", unit.Length),
		slog.Int("nodes", d.arena.Len()),
	)

	return unit, nil
}

// ParseReader reads r to the end and builds its content into the document
// as a new unit. Read failures wrap [ErrReadInput].
func (d *Document) ParseReader(
	ctx context.Context,
	name string,
	r io.Reader,
) (Unit, error) {
	source, err := readSource(r)
	if err != nil {
		return Unit{}, ErrReadInput.Wrap(err).
			With(slog.String("source", name))
	}

	d.logger.TraceContext(
		ctx,
		"read input",
		slog.String("source", name),
		slog.Int("source_bytes", len(source)),
		slog.Bool("read_ahead", true),
	)

	return d.ParseString(ctx, name, source)
}

// ParseFiles builds each named file as a unit, in order. It stops at the
// first failure and returns the units built before it.
func (d *Document) ParseFiles(
	ctx context.Context,
	paths ...string,
) ([]Unit, error) {
	units := make([]Unit, 0, len(paths))

	for _, path := range paths {
		unit, err := d.parseFile(ctx, path)
		if err != nil {
			return units, err
		}

		units = append(units, unit)
	}

	return units, nil
}

func (d *Document) parseFile(ctx context.Context, path string) (Unit, error) {
	f, err := os.Open(path)
	if err != nil {
		return Unit{}, ErrOpenSource.Wrap(err).
			With(slog.String("path", path))
	}
	defer f.Close()

	return d.ParseReader(ctx, path, f)
}

func (d *Document) record(idx arena.Index, s Scope) {
	if n := int(idx) + 1; n > len(d.scopes) {
		d.scopes = slices.Grow(d.scopes, n-len(d.scopes))[:n]
	}

	d.scopes[idx] = s
}

// Units returns the units built so far, in order.
func (d *Document) Units() []Unit {
	return slices.Clone(d.units)
}

// Top returns the top-level nodes of every unit, in order.
func (d *Document) Top() []arena.Index {
	var top []arena.Index
	for _, u := range d.units {
		top = append(top, u.Top...)
	}

	return top
}

// Len returns the number of nodes in the document.
func (d *Document) Len() int { return d.arena.Len() }

// Node returns the node with index i. It panics if i is out of range.
func (d *Document) Node(i arena.Index) Node { return d.arena.Get(i) }

// Span returns the range of node i in document coordinates.
func (d *Document) Span(i arena.Index) arena.Span { return d.arena.Span(i) }

// Valid reports whether i names a node of the document.
func (d *Document) Valid(i arena.Index) bool { return d.arena.Valid(i) }

// All returns an iterator over every node in index order.
func (d *Document) All() iter.Seq2[arena.Index, Node] { return d.arena.All() }

// Bounds returns the start and end events of every node in document order.
func (d *Document) Bounds() iter.Seq[arena.Bound] { return d.arena.Bounds() }

// Enclosing returns the innermost node whose range covers pos.
func (d *Document) Enclosing(pos int) (arena.Index, bool) {
	return d.arena.Enclosing(pos)
}

// Extent returns the document offset at which the next unit will start.
func (d *Document) Extent() int {
	if len(d.units) == 0 {
		return 0
	}

	return d.units[len(d.units)-1].Span().End
}

// UnitAt returns the unit whose range covers pos.
func (d *Document) UnitAt(pos int) (Unit, bool) {
	i, found := slices.BinarySearchFunc(d.units, pos, func(u Unit, p int) int {
		switch s := u.Span(); {
		case p < s.Start:
			return 1
		case p >= s.End:
			return -1
		}

		return 0
	})
	if !found {
		return Unit{}, false
	}

	return d.units[i], true
}

// UnitOf returns the unit that node i was built from.
func (d *Document) UnitOf(i arena.Index) (Unit, bool) {
	return d.UnitAt(d.arena.Span(i).Start)
}

// Scope returns the lexical scope node i was built in: the association whose
// values contain it, or [NoScope] for top-level nodes and association keys
// at the top level.
func (d *Document) Scope(i arena.Index) Scope {
	if n, ok := ParentOf(d.arena.Get(i)); ok {
		return n
	}

	if int(i) < len(d.scopes) {
		return d.scopes[i]
	}

	return NoScope
}

// Depth returns the number of enclosing scopes of node i.
func (d *Document) Depth(i arena.Index) int {
	depth := 0

	for s := d.Scope(i); s.IsSet(); depth++ {
		p, _ := s.Index()
		s = d.Scope(p)
	}

	return depth
}

// Text returns the value of node i if it is a [Text].
func (d *Document) Text(i arena.Index) (string, bool) {
	if t, ok := d.arena.Get(i).(Text); ok {
		return t.Value, true
	}

	return "", false
}
