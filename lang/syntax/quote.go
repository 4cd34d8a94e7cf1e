package syntax

import "strings"

// Quote returns s written as a single text primary: s itself when it is
// valid bare text, otherwise a quoted string with '"' and '\' escaped.
func Quote(s string) string {
	if s != "" && !strings.ContainsFunc(s, isSpecial) {
		return s
	}

	var b strings.Builder

	b.Grow(len(s) + 2)
	b.WriteByte('"')

	for _, r := range s {
		if r == '"' || r == '\\' || r == '\n' {
			b.WriteByte('\\')
		}

		b.WriteRune(r)
	}

	b.WriteByte('"')

	return b.String()
}
