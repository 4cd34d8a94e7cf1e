package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/cose/cli/cmd/repl"
	"github.com/ardnew/cose/lang"
)

// Fmt builds the sources and prints the document in the chosen format.
type Fmt struct {
	Tree   Tree   `cmd:"" default:"withargs" help:"Format as an indented node outline (default)."`
	JSON   JSON   `cmd:""                    help:"Format node records as JSON."`
	YAML   YAML   `cmd:""                    help:"Format node records as YAML."`
	Bounds Bounds `cmd:""                    help:"Format as start/end traversal events."`
}

// Tree formats the document as an outline of its top-level nodes.
type Tree struct {
	Indent int  `default:"2"     help:"Indent width for formatted output" short:"i"`
	Color  bool `default:"false" help:"Colorize node kinds."              negatable:""`

	Files []string `arg:"" help:"Source files or '-' for stdin." name:"file" optional:"" type:"existingfile"`
}

// Run executes the tree command.
func (t *Tree) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	doc, err := loadDocument(ctx, t.Files)
	if err != nil {
		return err
	}

	var style lang.Style
	if t.Color {
		style = repl.KindStyle
	}

	if err := doc.FormatTree(outputFrom(ctx), t.Indent, style); err != nil {
		return ErrFormat.With(slog.String("format", "tree")).Wrap(err)
	}

	return nil
}

// JSON formats the document as JSON node records.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Files []string `arg:"" help:"Source files or '-' for stdin." name:"file" optional:"" type:"existingfile"`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	doc, err := loadDocument(ctx, j.Files)
	if err != nil {
		return err
	}

	if err := doc.FormatJSON(ctx, outputFrom(ctx), j.Indent); err != nil {
		return ErrFormat.With(slog.String("format", "json")).Wrap(err)
	}

	return nil
}

// YAML formats the document as YAML node records.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output (0 for flow style)" short:"i"`

	Files []string `arg:"" help:"Source files or '-' for stdin." name:"file" optional:"" type:"existingfile"`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	doc, err := loadDocument(ctx, y.Files)
	if err != nil {
		return err
	}

	if err := doc.FormatYAML(ctx, outputFrom(ctx), y.Indent); err != nil {
		return ErrFormat.With(slog.String("format", "yaml")).Wrap(err)
	}

	return nil
}

// Bounds formats the document as its bounds traversal.
type Bounds struct {
	Files []string `arg:"" help:"Source files or '-' for stdin." name:"file" optional:"" type:"existingfile"`
}

// Run executes the bounds command.
func (b *Bounds) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	doc, err := loadDocument(ctx, b.Files)
	if err != nil {
		return err
	}

	if err := doc.FormatBounds(outputFrom(ctx)); err != nil {
		return ErrFormat.With(slog.String("format", "bounds")).Wrap(err)
	}

	return nil
}
