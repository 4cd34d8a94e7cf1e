package cmd

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ardnew/cose/lang/syntax"
)

// writeSources writes each content to its own file in a temp directory and
// returns the paths in order.
func writeSources(t *testing.T, contents ...string) []string {
	t.Helper()

	dir := t.TempDir()
	paths := make([]string, len(contents))

	for i, content := range contents {
		paths[i] = filepath.Join(dir, "src"+string(rune('a'+i))+".cose")
		if err := os.WriteFile(paths[i], []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	return paths
}

func readAll(t *testing.T, srcs SourceFiles) (names, contents []string) {
	t.Helper()

	for name, r := range srcs.All() {
		data, err := io.ReadAll(r)
		if err != nil {
			t.Fatal(err)
		}

		names = append(names, name)
		contents = append(contents, string(data))
	}

	return names, contents
}

func TestOpenSourceFiles_Order(t *testing.T) {
	paths := writeSources(t, "first", "second")

	srcs, err := openSourceFiles(paths)
	if err != nil {
		t.Fatal(err)
	}
	defer srcs.Close()

	names, contents := readAll(t, srcs)

	if !reflect.DeepEqual(paths, names) {
		t.Errorf("names = %v, want %v", names, paths)
	}

	if !reflect.DeepEqual([]string{"first", "second"}, contents) {
		t.Errorf("contents = %v", contents)
	}

	if srcs.Stdin() != nil {
		t.Error("stdin included without '-'")
	}
}

func TestOpenSourceFiles_Deduplicates(t *testing.T) {
	paths := writeSources(t, "only")

	link := filepath.Join(t.TempDir(), "link.cose")
	if err := os.Symlink(paths[0], link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	rel, err := filepath.Rel(mustGetwd(t), paths[0])
	if err != nil {
		rel = paths[0]
	}

	srcs, err := openSourceFiles([]string{paths[0], link, rel, paths[0]})
	if err != nil {
		t.Fatal(err)
	}
	defer srcs.Close()

	names, _ := readAll(t, srcs)
	if len(names) != 1 {
		t.Errorf("names = %v, want a single source", names)
	}
}

func TestOpenSourceFiles_Stdin(t *testing.T) {
	paths := writeSources(t, "x")

	srcs, err := openSourceFiles([]string{stdinSource, paths[0], stdinSource})
	if err != nil {
		t.Fatal(err)
	}
	defer srcs.Close()

	if srcs.Stdin() == nil || srcs.IsZero() {
		t.Fatal("stdin not included")
	}

	var names []string
	for name := range srcs.All() {
		names = append(names, name)
	}

	if !reflect.DeepEqual([]string{paths[0], stdinName}, names) {
		t.Errorf("names = %v, want stdin last and once", names)
	}
}

func TestOpenSourceFiles_Missing(t *testing.T) {
	_, err := openSourceFiles([]string{filepath.Join(t.TempDir(), "absent")})
	if !errors.Is(err, ErrOpenSource) || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, want ErrOpenSource wrapping ErrNotExist", err)
	}
}

func TestLoadDocument_GlobalThenLocal(t *testing.T) {
	paths := writeSources(t, "a: b", "c")

	ctx := WithSourceFiles(context.Background(), paths[:1])

	doc, err := loadDocument(ctx, paths[1:])
	if err != nil {
		t.Fatal(err)
	}

	units := doc.Units()
	if len(units) != 2 || units[0].Name != paths[0] || units[1].Name != paths[1] {
		t.Fatalf("units = %+v", units)
	}

	if units[1].Origin != 4 {
		t.Errorf("second origin = %d, want 4", units[1].Origin)
	}
}

func TestLoadDocument_SyntaxError(t *testing.T) {
	paths := writeSources(t, "ok", "(broken")

	_, err := loadDocument(context.Background(), paths)
	if !errors.Is(err, ErrBuild) {
		t.Fatalf("error = %v, want ErrBuild", err)
	}

	var synErr *syntax.Error
	if !errors.As(err, &synErr) {
		t.Errorf("error = %v, want a wrapped *syntax.Error", err)
	}
}

func TestOutputFrom_Default(t *testing.T) {
	if outputFrom(context.Background()) != os.Stdout {
		t.Error("default output is not stdout")
	}
}

func mustGetwd(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}

	return wd
}
