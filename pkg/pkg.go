//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

// version is the semantic version of the cose module embedded at build time.
//
//go:embed VERSION
var version string

// Version returns the semantic version of the cose module. It is printed by
// the CLI when users pass the --version flag.
func Version() string {
	return strings.TrimSpace(version)
}

const (
	// Name is the canonical command and module identifier used across the
	// project. For example, it appears in help text and default config paths.
	Name = "cose"
	// Description is a short, human-readable summary of the project used in
	// help output and documentation.
	Description = "Build nested key-value notation into a resolved semantic graph"
	// Extension is the conventional file extension of source units.
	Extension = ".cose"
)

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	// Name is the author's preferred name or handle.
	Name string
	// Email is the author's contact email address.
	Email string
}

// Author lists the primary author(s) of the project for display in metadata.
//
//nolint:gochecknoglobals
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}
