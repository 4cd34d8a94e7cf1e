package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/cose/lang/syntax"
	"github.com/ardnew/cose/log"
)

// treeCache stores parse trees keyed by the xxh3 hash of their source.
// Trees are never mutated after parsing, so one tree may back any number of
// documents and goroutines.
var treeCache sync.Map

// cacheEntry parses its source exactly once.
type cacheEntry struct {
	once   sync.Once
	source string
	tree   *syntax.Tree
	err    error
}

// parseCached returns the parse tree of source, parsing it on first use.
func parseCached(
	ctx context.Context,
	logger log.Logger,
	source string,
) (*syntax.Tree, error) {
	hash := xxh3.HashString(source)

	value, hit := treeCache.LoadOrStore(hash, new(cacheEntry))

	entry, ok := value.(*cacheEntry)
	if !ok {
		return syntax.Parse(source)
	}

	logger.TraceContext(
		ctx,
		"cache lookup",
		slog.String("source_hash", strconv.FormatUint(hash, 16)),
		slog.Bool("cache_hit", hit),
	)

	entry.once.Do(func() {
		entry.source = source
		entry.tree, entry.err = syntax.Parse(source)
	})

	if entry.source != source {
		logger.TraceContext(
			ctx,
			"cache collision",
			slog.String("source_hash", strconv.FormatUint(hash, 16)),
		)

		return syntax.Parse(source)
	}

	return entry.tree, entry.err
}

// readSource reads all of r, prefetching asynchronously while the previous
// chunk is consumed.
func readSource(r io.Reader) (string, error) {
	ra := readahead.NewReader(r)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

// ClearCache removes every cached parse tree.
// This is primarily useful for testing or when memory needs to be reclaimed.
func ClearCache() {
	treeCache.Clear()
}
