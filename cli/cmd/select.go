package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/ardnew/cose/lang"
	"github.com/ardnew/cose/log"
)

// Select prints the nodes whose records satisfy a boolean filter expression.
//
// The filter is evaluated against each [lang.Record], for example
// `Kind == "Text" && Depth > 1` or `Parent == 0`.
type Select struct {
	Output string `default:"text" enum:"text,json,yaml" help:"Output format." short:"o"`

	Filter string   `arg:"" help:"Boolean filter over node records."`
	Files  []string `arg:"" help:"Source files or '-' for stdin." name:"file" optional:"" type:"existingfile"`
}

// Run executes the select command.
func (s *Select) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	doc, err := loadDocument(ctx, s.Files)
	if err != nil {
		return err
	}

	matched, err := doc.Select(ctx, s.Filter)
	if err != nil {
		return err
	}

	log.DebugContext(ctx, "select",
		slog.String("filter", s.Filter),
		slog.Int("matched", len(matched)),
	)

	records := make([]lang.Record, len(matched))
	for i, idx := range matched {
		records[i] = doc.Record(idx)
	}

	w := outputFrom(ctx)

	switch s.Output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")

		err = enc.Encode(records)

	case "yaml":
		var data []byte

		data, err = yaml.MarshalContext(ctx, records, yaml.Indent(2))
		if err == nil {
			_, err = w.Write(data)
		}

	default:
		var b strings.Builder

		for _, idx := range matched {
			fmt.Fprintf(&b, "%2d %s %v\n", idx, doc.Span(idx), doc.Node(idx))
		}

		_, err = fmt.Fprint(w, b.String())
	}

	if err != nil {
		return ErrFormat.With(slog.String("format", s.Output)).Wrap(err)
	}

	return nil
}
