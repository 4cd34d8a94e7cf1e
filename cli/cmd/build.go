package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/cose/log"
)

// Build builds every source into one document and prints the bounds
// traversal of the resulting arena.
type Build struct {
	Files []string `arg:"" help:"Source files or '-' for stdin." name:"file" optional:"" type:"existingfile"`
}

// Run executes the build command.
func (b *Build) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	doc, err := loadDocument(ctx, b.Files)
	if err != nil {
		return err
	}

	if err := doc.FormatBounds(outputFrom(ctx)); err != nil {
		return ErrFormat.With(slog.String("format", "bounds")).Wrap(err)
	}

	log.DebugContext(ctx, "build complete", slog.Int("extent", doc.Extent()))

	return nil
}
