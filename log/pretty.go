package log

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// prettyStyles colorizes the parts of a record. Colors are dropped when the
// output is not a terminal.
type prettyStyles struct {
	key, str, num, boolean, null, other lipgloss.Style
	levels                               map[slog.Level]lipgloss.Style
}

func newPrettyStyles(w io.Writer) *prettyStyles {
	r := lipgloss.NewRenderer(w)
	fg := func(c string) lipgloss.Style { return r.NewStyle().Foreground(lipgloss.Color(c)) }

	return &prettyStyles{
		key:     fg("8"),
		str:     fg("6"),
		num:     fg("3"),
		boolean: fg("2"),
		null:    fg("8"),
		other:   fg("5"),
		levels: map[slog.Level]lipgloss.Style{
			slog.Level(LevelTrace): fg("4").Faint(true),
			slog.LevelDebug:        fg("4"),
			slog.LevelInfo:         fg("2"),
			slog.LevelWarn:         fg("3"),
			slog.LevelError:        fg("1").Bold(true),
		},
	}
}

func (s *prettyStyles) level(l slog.Level) lipgloss.Style {
	for _, at := range []slog.Level{
		slog.LevelError, slog.LevelWarn, slog.LevelInfo, slog.LevelDebug,
	} {
		if l >= at {
			return s.levels[at]
		}
	}

	return s.levels[slog.Level(LevelTrace)]
}

// prettyHandler writes records for a human reader, either as key=value
// pairs on one line or as indented JSON.
type prettyHandler struct {
	opts   slog.HandlerOptions
	format Format
	styles *prettyStyles
	mu     *sync.Mutex
	w      io.Writer
	attrs  []slog.Attr // group-qualified, added by WithAttrs
	group  string      // key prefix added by WithGroup
}

func newPrettyHandler(w io.Writer, opts *slog.HandlerOptions, format Format) *prettyHandler {
	return &prettyHandler{
		opts:   *opts,
		format: format,
		styles: newPrettyStyles(w),
		mu:     &sync.Mutex{},
		w:      w,
	}
}

func (h *prettyHandler) Enabled(_ context.Context, level slog.Level) bool {
	minLevel := slog.LevelInfo
	if h.opts.Level != nil {
		minLevel = h.opts.Level.Level()
	}

	return level >= minLevel
}

func (h *prettyHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(h.attrs[:len(h.attrs):len(h.attrs)], qualify(h.group, attrs)...)

	return &c
}

func (h *prettyHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	c := *h
	c.group = h.group + name + "."

	return &c
}

func (h *prettyHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make([]slog.Attr, 0, 4+len(h.attrs)+r.NumAttrs())

	builtin := func(a slog.Attr) {
		if h.opts.ReplaceAttr != nil {
			a = h.opts.ReplaceAttr(nil, a)
		}

		if a.Key != "" {
			fields = append(fields, a)
		}
	}

	if !r.Time.IsZero() {
		builtin(slog.Time(slog.TimeKey, r.Time))
	}

	builtin(slog.Any(slog.LevelKey, r.Level))

	if h.opts.AddSource && r.PC != 0 {
		if src := r.Source(); src != nil {
			builtin(slog.String(slog.SourceKey, fmt.Sprintf("%s:%d", src.File, src.Line)))
		}
	}

	builtin(slog.String(slog.MessageKey, r.Message))

	fields = append(fields, h.attrs...)

	r.Attrs(func(a slog.Attr) bool {
		fields = append(fields, qualify(h.group, []slog.Attr{a})...)

		return true
	})

	var buf bytes.Buffer

	switch h.format {
	case FormatJSON:
		h.writeJSON(&buf, r.Level, fields)
	default:
		h.writeText(&buf, r.Level, fields)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	_, err := h.w.Write(buf.Bytes())

	return err
}

func (h *prettyHandler) writeText(buf *bytes.Buffer, level slog.Level, fields []slog.Attr) {
	for i, a := range fields {
		if i > 0 {
			buf.WriteByte(' ')
		}

		buf.WriteString(h.styles.key.Render(a.Key))
		buf.WriteByte('=')

		if a.Key == slog.LevelKey {
			buf.WriteString(h.styles.level(level).Render(a.Value.String()))

			continue
		}

		buf.WriteString(h.textValue(a.Value))
	}

	buf.WriteByte('\n')
}

func (h *prettyHandler) textValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if s == "" || strings.ContainsAny(s, " \t\n\"=") {
			s = strconv.Quote(s)
		}

		return h.styles.str.Render(s)
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64, slog.KindDuration:
		return h.styles.num.Render(v.String())
	case slog.KindBool:
		return h.styles.boolean.Render(v.String())
	default:
		if v.Any() == nil {
			return h.styles.null.Render("<nil>")
		}

		return h.styles.other.Render(v.String())
	}
}

func (h *prettyHandler) writeJSON(buf *bytes.Buffer, level slog.Level, fields []slog.Attr) {
	buf.WriteString("{\n")

	for i, a := range fields {
		if i > 0 {
			buf.WriteString(",\n")
		}

		buf.WriteString("  ")
		buf.WriteString(h.styles.key.Render(strconv.Quote(a.Key)))
		buf.WriteString(": ")

		if a.Key == slog.LevelKey {
			buf.WriteString(h.styles.level(level).Render(strconv.Quote(a.Value.String())))

			continue
		}

		buf.WriteString(h.jsonValue(a.Value))
	}

	buf.WriteString("\n}\n")
}

func (h *prettyHandler) jsonValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindString:
		return h.styles.str.Render(strconv.Quote(v.String()))
	case slog.KindInt64, slog.KindUint64, slog.KindFloat64:
		return h.styles.num.Render(v.String())
	case slog.KindDuration:
		return h.styles.num.Render(strconv.FormatInt(int64(v.Duration()), 10))
	case slog.KindBool:
		return h.styles.boolean.Render(v.String())
	case slog.KindTime:
		return h.styles.str.Render(strconv.Quote(v.Time().Format(DefaultTimeLayout)))
	}

	a := v.Any()
	if a == nil {
		return h.styles.null.Render("null")
	}

	if err, ok := a.(error); ok {
		return h.styles.str.Render(strconv.Quote(err.Error()))
	}

	b, err := json.Marshal(a)
	if err != nil {
		return h.styles.str.Render(strconv.Quote(fmt.Sprint(a)))
	}

	return h.styles.other.Render(string(b))
}

// qualify resolves attrs, prefixes their keys with group, and flattens
// nested groups into dotted keys.
func qualify(group string, attrs []slog.Attr) []slog.Attr {
	var out []slog.Attr

	for _, a := range attrs {
		a.Value = a.Value.Resolve()

		if a.Value.Kind() == slog.KindGroup {
			prefix := group
			if a.Key != "" {
				prefix += a.Key + "."
			}

			out = append(out, qualify(prefix, a.Value.Group())...)

			continue
		}

		if a.Key == "" {
			continue
		}

		a.Key = group + a.Key
		out = append(out, a)
	}

	return out
}
