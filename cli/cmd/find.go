package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/cose/log"
)

// Find fuzzy-searches the text values of every source, best match first.
type Find struct {
	Limit int `default:"0" help:"Maximum number of matches to print (0 for all)." short:"n"`

	Pattern string   `arg:"" help:"Fuzzy pattern to match against text values."`
	Files   []string `arg:"" help:"Source files or '-' for stdin." name:"file" optional:"" type:"existingfile"`
}

// Run executes the find command.
func (f *Find) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	doc, err := loadDocument(ctx, f.Files)
	if err != nil {
		return err
	}

	matches := doc.Find(f.Pattern)

	log.DebugContext(ctx, "find",
		slog.String("pattern", f.Pattern),
		slog.Int("matched", len(matches)),
	)

	if f.Limit > 0 && len(matches) > f.Limit {
		matches = matches[:f.Limit]
	}

	w := outputFrom(ctx)

	for _, m := range matches {
		unit, _ := doc.UnitOf(m.Index)

		_, err := fmt.Fprintf(w, "%2d %s %s %q\n", m.Index, unit.Name, doc.Span(m.Index), m.Text)
		if err != nil {
			return ErrFormat.With(slog.String("format", "find")).Wrap(err)
		}
	}

	return nil
}
