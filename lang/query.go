package lang

import (
	"context"
	"log/slog"
	"slices"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/sahilm/fuzzy"

	"github.com/ardnew/cose/lang/arena"
)

// Query is a compiled record filter.
type Query struct {
	program *vm.Program
	source  string
}

// CompileQuery compiles a boolean expr-lang expression over the fields of
// [Record], such as `Kind == "Text" && Depth > 0`.
func CompileQuery(filter string) (*Query, error) {
	program, err := expr.Compile(filter, expr.Env(Record{}), expr.AsBool())
	if err != nil {
		return nil, ErrQueryCompile.Wrap(err).
			With(slog.String("filter", filter))
	}

	return &Query{program: program, source: filter}, nil
}

// String returns the source of the filter.
func (q *Query) String() string { return q.source }

// Match reports whether r satisfies the filter.
func (q *Query) Match(r Record) (bool, error) {
	result, err := expr.Run(q.program, r)
	if err != nil {
		return false, ErrQueryEvaluate.Wrap(err).
			With(slog.String("filter", q.source), slog.Int("index", r.Index))
	}

	match, ok := result.(bool)
	if !ok {
		return false, ErrQueryResult.
			With(slog.String("filter", q.source), slog.Any("result", result))
	}

	return match, nil
}

// Select returns the indices of every node whose record satisfies filter,
// in index order.
func (d *Document) Select(ctx context.Context, filter string) ([]arena.Index, error) {
	q, err := CompileQuery(filter)
	if err != nil {
		return nil, err
	}

	var selected []arena.Index

	for i := range d.All() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		match, err := q.Match(d.Record(i))
		if err != nil {
			return nil, err
		}

		if match {
			selected = append(selected, i)
		}
	}

	d.logger.TraceContext(
		ctx,
		"select",
		slog.String("filter", filter),
		slog.Int("matches", len(selected)),
	)

	return selected, nil
}

// Match is one result of [Document.Find].
type Match struct {
	Text    string
	Matched []int // byte offsets in Text of the matched pattern characters
	Index   arena.Index
	Score   int
}

// Find fuzzy-matches pattern against the value of every [Text] node and
// returns the matches best first.
func (d *Document) Find(pattern string) []Match {
	var (
		indices []arena.Index
		values  []string
	)

	for i, n := range d.All() {
		if t, ok := n.(Text); ok {
			indices = append(indices, i)
			values = append(values, t.Value)
		}
	}

	found := fuzzy.Find(pattern, values)
	matches := make([]Match, len(found))

	for k, m := range found {
		matches[k] = Match{
			Text:    m.Str,
			Matched: m.MatchedIndexes,
			Index:   indices[m.Index],
			Score:   m.Score,
		}
	}

	return matches
}

// Texts returns the distinct values of every [Text] node, sorted.
func (d *Document) Texts() []string {
	var values []string

	for _, n := range d.All() {
		if t, ok := n.(Text); ok {
			values = append(values, t.Value)
		}
	}

	slices.Sort(values)

	return slices.Compact(values)
}
