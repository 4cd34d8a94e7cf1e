package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/cose/lang"
	"github.com/ardnew/cose/lang/syntax"
	"github.com/ardnew/cose/log"
)

const defaultEditor = "vi"

// editUnitCommand implements [tea.ExecCommand] for composing a multi-line
// unit in the user's editor. The edited text is built as a new unit of the
// session document. On a syntax error the user is prompted to re-edit, and
// declining ends the session.
type editUnitCommand struct {
	doc     *lang.Document
	name    string
	ctxFunc func() context.Context
	logger  log.Logger
	unit    *lang.Unit
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editUnitCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editUnitCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editUnitCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-build-retry loop. An empty file cancels the edit and
// leaves unit nil.
func (c *editUnitCommand) Run() error {
	ctx := c.ctxFunc()

	f, err := os.CreateTemp(os.TempDir(), "cose-repl-*.cose")
	if err != nil {
		return err
	}

	path := f.Name()

	defer os.Remove(path)

	if err := f.Close(); err != nil {
		return err
	}

	for {
		if err := runEditor(ctx, c.stdin, c.stdout, c.stderr, path); err != nil {
			return err
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		if strings.TrimSpace(string(data)) == "" {
			return nil
		}

		unit, buildErr := c.doc.ParseString(ctx, c.name, string(data))

		c.logger.TraceContext(
			ctx,
			"editor build attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", buildErr == nil),
		)

		if buildErr == nil {
			c.unit = &unit

			return nil
		}

		var synErr *syntax.Error
		if !errors.As(buildErr, &synErr) {
			return buildErr
		}

		fmt.Fprintf(c.stderr, "\n%s\n%s", synErr, synErr.Snippet())
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}
	}
}

// runEditor launches $EDITOR (or vi) on path and waits for it to exit.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	return cmd.Run()
}
