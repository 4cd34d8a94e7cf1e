package log

import "io"

// Option configures a [Logger] made by [Make] or derived by [Logger.Wrap].
type Option func(*config)

// WithOutput sets the writer receiving log records. A nil writer discards
// them.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w == nil {
			w = io.Discard
		}

		c.output = w
	}
}

// WithLevel sets the minimum level of records written.
func WithLevel(level Level) Option {
	return func(c *config) { c.level = level }
}

// WithFormat sets the record format.
func WithFormat(format Format) Option {
	return func(c *config) { c.format = format }
}

// WithTimeLayout sets the timestamp layout. See [ParseTimeLayout] for the
// accepted names; a blank layout disables timestamps.
func WithTimeLayout(layout string) Option {
	return func(c *config) { c.layout = ParseTimeLayout(layout) }
}

// WithCaller includes the source location of each call in its record.
func WithCaller(enable bool) Option {
	return func(c *config) { c.caller = enable }
}

// WithPretty renders records for a terminal: JSON is indented and both
// formats are colorized when the output supports it.
func WithPretty(enable bool) Option {
	return func(c *config) { c.pretty = enable }
}
