package cli

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/alecthomas/kong"

	"github.com/ardnew/cose/lang"
	"github.com/ardnew/cose/lang/arena"
	"github.com/ardnew/cose/log"
)

// resolve returns a [kong.ConfigurationLoader] that reads flag values from a
// configuration file written in the notation.
//
// It can be used with [kong.Configuration] like this:
//
//	kong.Configuration(resolve(ctx, "config"), "/path/to/config")
//
// The file is built into a [lang.Document] and the top-level association
// whose only key is the text name is read as follows:
//   - Each nested association with a single text key sets the flag of that
//     name. Hyphens and underscores in the key are interchangeable.
//   - A single text value is the flag value; several text values form a list
//     for repeatable flags.
//   - A marker value (@) is boolean true.
//   - Entries with any other shape are ignored.
//
// Example config file:
//
//	config:
//	  log-level: debug
//	  log-format: text
//	  log-caller: @
//	  source: base.cose "with space.cose"
//
// A file that does not build is ignored with a warning. Command-line flags
// override config file values.
func resolve(ctx context.Context, name string) kong.ConfigurationLoader {
	return func(r io.Reader) (kong.Resolver, error) {
		doc := lang.NewDocument(lang.WithLogger(log.Default()))

		unit, err := doc.ParseReader(ctx, name, r)
		if err != nil {
			log.WarnContext(ctx, "ignoring configuration file", slog.Any("error", err))

			return config{}, nil
		}

		cfg := configFrom(doc, unit.Top, name)

		log.TraceContext(ctx, "configuration loaded",
			slog.String("name", name),
			slog.Int("entries", len(cfg)),
		)

		return cfg, nil
	}
}

// config implements [kong.Resolver] for notation config files.
type config map[string]any

// Validate implements [kong.Resolver].
func (r config) Validate(*kong.Application) error {
	return nil
}

// Resolve implements [kong.Resolver].
func (r config) Resolve(
	_ *kong.Context,
	_ *kong.Path,
	flag *kong.Flag,
) (any, error) {
	if value, ok := r[flag.Name]; ok {
		return value, nil
	}

	if value, ok := r[strings.ReplaceAll(flag.Name, "-", "_")]; ok {
		return value, nil
	}

	// Not found - return nil to let Kong use defaults
	return nil, nil
}

// configFrom collects the flag entries of the first association in top keyed
// by name. Later duplicate entries override earlier ones.
func configFrom(doc *lang.Document, top []arena.Index, name string) config {
	cfg := config{}

	for _, i := range top {
		assoc, ok := doc.Node(i).(lang.Association)
		if !ok || keyOf(doc, assoc) != name {
			continue
		}

		for _, v := range assoc.Values {
			entry, ok := doc.Node(v).(lang.Association)
			if !ok {
				continue
			}

			key := keyOf(doc, entry)
			if key == "" {
				continue
			}

			if value, ok := valueOf(doc, entry.Values); ok {
				cfg[key] = value
			}
		}

		break
	}

	return cfg
}

// keyOf returns the text of an association's only key, or "".
func keyOf(doc *lang.Document, a lang.Association) string {
	if len(a.Keys) != 1 {
		return ""
	}

	s, _ := doc.Text(a.Keys[0])

	return s
}

// valueOf converts association values into a kong flag value.
func valueOf(doc *lang.Document, values []arena.Index) (any, bool) {
	if len(values) == 1 {
		if _, ok := doc.Node(values[0]).(lang.Marker); ok {
			return true, true
		}
	}

	list := make([]any, 0, len(values))

	for _, v := range values {
		s, ok := doc.Text(v)
		if !ok {
			return nil, false
		}

		list = append(list, s)
	}

	switch len(list) {
	case 0:
		return nil, false
	case 1:
		return list[0], true
	default:
		return list, true
	}
}
