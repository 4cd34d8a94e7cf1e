// Package cmd implements the cose subcommands that build notation sources
// into a [lang.Document] and present the resulting semantic graph.
//
// Sources are named with the global --source flag and with the positional
// arguments of each command. Duplicate files are read once, and "-" reads
// standard input after every regular file. With no sources at all, standard
// input is read.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file written in the notation.
	ConfigIdentifier = "config"
)
