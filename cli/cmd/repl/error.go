package repl

import "errors"

var (
	// ErrOutOfBounds is returned for a history index past either end.
	ErrOutOfBounds = errors.New("history index out of range")
	// ErrEditDeclined ends an edit whose text does not build.
	ErrEditDeclined = errors.New("edit declined")
	// ErrNoDocument is returned by [Run] without a document to build into.
	ErrNoDocument = errors.New("no session document")
)
