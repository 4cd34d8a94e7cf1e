package log_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/cose/log"
)

func Example_basic() {
	logger := log.Make(os.Stdout)
	logger.Info("document built", slog.Int("units", 2))
}

func Example_configuration() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelTrace),
		log.WithTimeLayout("RFC3339Nano"),
		log.WithCaller(true))

	logger.Trace("allocate", slog.Int("index", 0), slog.String("kind", "Association"))
}

func Example_levels() {
	logger := log.Make(os.Stdout, log.WithLevel(log.LevelWarn))

	logger.Trace("allocate")
	logger.Debug("cache lookup")
	logger.Info("unit added")
	logger.Warn("empty unit", slog.String("unit", "main"))
	logger.Error("parse failed", slog.String("error", "unexpected indentation"))
}

func Example_textFormat() {
	logger := log.Make(os.Stdout, log.WithFormat(log.FormatText), log.WithPretty(false))
	logger.Info("text format message", slog.String("unit", "main"))
}

func Example_withAttributes() {
	// Every message carries the unit being built.
	logger := log.Make(os.Stdout)
	logger = logger.With(slog.String("unit", "config"))

	logger.Info("unit added")
	logger.Debug("read input", slog.Int("source_bytes", 42))
}

func Example_withContext() {
	type sessionKey struct{}

	ctx := context.WithValue(context.Background(), sessionKey{}, "repl-1")

	logger := log.Make(os.Stdout)

	logger.InfoContext(ctx, "session started")
	logger.TraceContext(ctx, "cache lookup", slog.Bool("cache_hit", true))
}

func Example_packageLogger() {
	log.Config(log.WithOutput(os.Stdout), log.WithLevel(log.LevelDebug))

	log.Debug("configured default logger")
}
