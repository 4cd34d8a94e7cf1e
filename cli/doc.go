// Package cli contains the command line interface for cose.
//
// # Usage
//
//	cose [flags] [build] [FILE...]
//	cose [flags] fmt tree|json|yaml|bounds [FILE...]
//	cose [flags] select FILTER [FILE...]
//	cose [flags] find PATTERN [FILE...]
//	cose [flags] repl [FILE...]
//	cose [flags] init [--force]
//
// Every command builds its sources into one document, one unit per source,
// in order: the files named with --source first, then the command's own
// arguments. Standard input is read when no source is named.
//
// # Configuration
//
// Flag defaults may be set in two files under the user configuration
// directory (for example ~/.config/cose):
//
//   - config.json, read with [kong.JSON]
//   - config, written in the notation itself and read by the loader
//     returned from resolve
//
// "cose init" writes the current flag values to the notation file:
//
//	config:
//	  log-level: info
//	  log-format: json
//	  log-pretty: true
//
// # Logging Options
//
//   - --log-level: Set minimum log level (trace, debug, info, warn, error)
//   - --log-format: Set log output format (json, text)
//   - --log-time-layout: Set timestamp format (RFC3339, RFC3339Nano, etc.)
//   - --log-caller: Include caller information in log output
//   - --log-pretty: Colorize log output
//
// # Profiling Options
//
// Profiling is only available when built with the pprof build tag:
//
//	go build -tags pprof -o cose .
//
//   - --pprof-mode: Enable profiling (allocs, block, clock, cpu, goroutine,
//     heap, mem, mutex, thread, trace)
//   - --pprof-dir: Set profile output directory (default ~/.cache/cose/pprof)
//
// # Examples
//
//	# Print the bounds traversal of two files built as one document
//	cose a.cose b.cose
//
//	# Every text value nested two scopes deep, as YAML
//	cose select -o yaml 'Kind == "Text" && Depth == 2' a.cose
//
//	# Trace every allocation while building from stdin
//	echo 'a: >b>c' | cose --log-level=trace --log-format=text fmt tree
package cli
