package cmd

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/ardnew/cose/lang"
	"github.com/ardnew/cose/log"
)

// ContextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

type outputKey struct{}

// WithOutput returns a new context.Context whose commands write to w.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

// outputFrom returns the writer set by [WithOutput], the kong context's
// stdout, or os.Stdout, in that order.
func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	if ktx := kongContextFrom(ctx); ktx != nil && ktx.Stdout != nil {
		return ktx.Stdout
	}

	return os.Stdout
}

type (
	sourcePathsKey struct{}

	source struct {
		name string
		file *os.File
	}

	sourceFiles struct {
		read     []source
		hasStdin bool
	}

	// SourceFiles is an ordered, deduplicated set of opened sources.
	SourceFiles interface {
		IsZero() bool
		Stdin() io.Reader
		All() iter.Seq2[string, io.Reader]
		io.Closer
	}
)

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// stdinName is the unit name given to standard input.
const stdinName = "<stdin>"

// IsZero reports whether there are no source files.
func (s *sourceFiles) IsZero() bool { return len(s.read) == 0 && !s.hasStdin }

// Stdin returns os.Stdin if stdin was included as a source, or nil otherwise.
func (s *sourceFiles) Stdin() io.Reader {
	if s.hasStdin {
		return os.Stdin
	}

	return nil
}

// All yields each source name with its reader in order, stdin last.
func (s *sourceFiles) All() iter.Seq2[string, io.Reader] {
	return func(yield func(string, io.Reader) bool) {
		for _, src := range s.read {
			if !yield(src.name, src.file) {
				return
			}
		}

		if s.hasStdin {
			yield(stdinName, os.Stdin)
		}
	}
}

// Close closes every opened regular file.
func (s *sourceFiles) Close() error {
	var errs []error

	for _, src := range s.read {
		errs = append(errs, src.file.Close())
	}

	return errors.Join(errs...)
}

// fileKey uniquely identifies a file by its device and inode numbers.
// This handles deduplication across symlinks, absolute/relative paths, and
// special device files.
type fileKey struct {
	dev uint64
	ino uint64
}

// WithSourceFiles returns a new context.Context carrying the global source
// paths. The files are opened when a command loads its document.
func WithSourceFiles(ctx context.Context, sources []string) context.Context {
	return context.WithValue(ctx, sourcePathsKey{}, sources)
}

// sourcePathsFrom returns the paths stored in ctx by [WithSourceFiles].
func sourcePathsFrom(ctx context.Context) []string {
	paths, _ := ctx.Value(sourcePathsKey{}).([]string)

	return paths
}

// openSourceFiles opens the given source paths.
//
// Readers are deduplicated by resolving symlinks and comparing device/inode
// pairs. All occurrences of "-" are replaced with a single stdin reader placed
// last so it reads after all regular files.
func openSourceFiles(sources []string) (SourceFiles, error) {
	var srcs sourceFiles

	srcs.read = make([]source, 0, len(sources))
	seen := make(map[fileKey]struct{})

	var stdinKey fileKey

	stdinInfo, err := os.Stdin.Stat()
	if err == nil {
		stdinKey, _ = makeFileKey(stdinInfo)
	}

	for _, src := range sources {
		if src == stdinSource {
			seen[stdinKey] = struct{}{}

			continue
		}

		file, err := openUniqueFile(src, seen)
		if err != nil {
			_ = srcs.Close()

			return nil, ErrOpenSource.With(slog.String("source", src)).Wrap(err)
		}

		if file != nil {
			srcs.read = append(srcs.read, source{name: src, file: file})
		}
	}

	// Stdin may have been included via "-" or as a named file.
	// Both of which will be represented by stdinKey in seen.
	_, srcs.hasStdin = seen[stdinKey]

	return &srcs, nil
}

// openUniqueFile opens the file at path if it hasn't been seen before.
// It resolves symlinks and uses device/inode to detect duplicates.
// A duplicate yields a nil file and a nil error.
func openUniqueFile(path string, seen map[fileKey]struct{}) (*os.File, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	resolved, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return nil, err
	}

	if key, ok := makeFileKey(info); ok {
		if _, exists := seen[key]; exists {
			return nil, nil
		}

		seen[key] = struct{}{}
	}

	return os.Open(resolved)
}

// makeFileKey creates a fileKey from os.FileInfo.
// Returns false if the underlying Sys() data is not of type *syscall.Stat_t.
func makeFileKey(info os.FileInfo) (key fileKey, ok bool) {
	stat, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return key, false
	}

	return fileKey{dev: uint64(stat.Dev), ino: stat.Ino}, true
}

// sourcePaths returns the global source paths followed by files.
func sourcePaths(ctx context.Context, files []string) []string {
	return append(append([]string(nil), sourcePathsFrom(ctx)...), files...)
}

// loadDocument builds every global source followed by files into one
// document, one unit per source. Standard input is read when no source is
// named at all.
func loadDocument(ctx context.Context, files []string) (*lang.Document, error) {
	paths := sourcePaths(ctx, files)
	if len(paths) == 0 {
		paths = []string{stdinSource}
	}

	doc := lang.NewDocument(lang.WithLogger(log.Default()))

	if err := appendSources(ctx, doc, paths); err != nil {
		return nil, err
	}

	return doc, nil
}

// appendSources builds each path as a new unit of doc.
func appendSources(ctx context.Context, doc *lang.Document, paths []string) error {
	srcs, err := openSourceFiles(paths)
	if err != nil {
		return err
	}
	defer srcs.Close()

	if srcs.IsZero() {
		return ErrNoSource
	}

	for name, r := range srcs.All() {
		unit, err := doc.ParseReader(ctx, name, r)
		if err != nil {
			return ErrBuild.With(slog.String("source", name)).Wrap(err)
		}

		log.DebugContext(ctx, "unit built",
			slog.String("source", name),
			slog.Int("origin", unit.Origin),
			slog.Int("length", unit.Length),
			slog.Int("top", len(unit.Top)),
		)
	}

	log.DebugContext(ctx, "document built",
		slog.Int("units", len(doc.Units())),
		slog.Int("nodes", doc.Len()),
	)

	return nil
}
