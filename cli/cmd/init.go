package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/cose/lang/syntax"
	"github.com/ardnew/cose/log"
	"github.com/ardnew/cose/profile"
)

// defaultConfigIndent is the number of spaces to use for indentation
// when generating the default configuration file.
const defaultConfigIndent = 2

// Init generates a default configuration file with current flag values.
type Init struct {
	Force bool `help:"Overwrite existing configuration file" short:"f"`
}

// Run executes the init command.
func (i *Init) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	ktx := kongContextFrom(ctx)

	confPath, ok := ktx.Model.Vars()[ConfigIdentifier]
	if !ok {
		panic("internal error: config path undefined")
	}

	// Check if file exists and force not set
	_, err = os.Stat(confPath)
	if err == nil && !i.Force {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			With(slog.Bool("exists", true)).
			Wrap(ErrFileExists)
	}

	file, err := os.Create(confPath)
	if err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}
	defer file.Close()

	if _, err := file.WriteString(i.render(ktx)); err != nil {
		return ErrWriteConfig.
			With(slog.String("file", confPath)).
			Wrap(err)
	}

	log.DebugContext(
		ctx,
		"initialized configuration file",
		slog.String("path", confPath),
	)

	return nil
}

// render writes the current flag values as one association keyed by
// [ConfigIdentifier], with one nested association per flag.
func (i *Init) render(ktx *kong.Context) string {
	var b strings.Builder

	b.WriteString(ConfigIdentifier + ":\n")

	prefixIgnore := []string{"help", profile.Tag}
	pad := strings.Repeat(" ", defaultConfigIndent)

	for _, flag := range ktx.Model.Flags {
		if flag.Hidden || slices.ContainsFunc(prefixIgnore, func(s string) bool {
			return strings.HasPrefix(flag.Name, s)
		}) {
			continue
		}

		values := flagValues(ktx.FlagValue(flag))
		if len(values) == 0 {
			continue
		}

		b.WriteString(pad + syntax.Quote(flag.Name) + ": " + strings.Join(values, " ") + "\n")
	}

	return b.String()
}

// flagValues returns the notation text of a flag value, one element per
// value, or nil if the flag is unset.
func flagValues(val any) []string {
	switch v := val.(type) {
	case nil:
		return nil

	case bool:
		return []string{strconv.FormatBool(v)}

	case string:
		if v == "" {
			return nil
		}

		return []string{syntax.Quote(v)}

	case []string:
		out := make([]string, len(v))
		for k, s := range v {
			out[k] = syntax.Quote(s)
		}

		return out

	case fmt.Stringer:
		return flagValues(v.String())

	default:
		return []string{syntax.Quote(fmt.Sprint(v))}
	}
}
