package cmd

import (
	"context"

	"github.com/ardnew/cose/cli/cmd/repl"
	"github.com/ardnew/cose/lang"
	"github.com/ardnew/cose/log"
)

// Repl starts an interactive session. Every submitted line is built as a new
// unit of one session document, after any sources given on the command line.
type Repl struct {
	Files []string `arg:"" help:"Source files to load before the session starts." name:"file" optional:"" type:"existingfile"`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	doc := lang.NewDocument(lang.WithLogger(log.Default()))

	if paths := sourcePaths(ctx, r.Files); len(paths) > 0 {
		if err := appendSources(ctx, doc, paths); err != nil {
			return err
		}
	}

	return repl.Run(ctx, doc, cacheDir, log.Default())
}
