package modules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rill-lang/rill/internal/config"
)

func newLoaderIn(t *testing.T, projectDir string) *Loader {
	t.Helper()
	t.Setenv("RILL_PROJECT_DIR", projectDir)
	_ = config.ProjectDir() // sanity: env var is visible
	return NewLoader()
}

func writeModule(t *testing.T, dir, relPath, src string) {
	t.Helper()
	full := filepath.Join(dir, relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(full, []byte(src), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

func TestResolveDottedPathToFile(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, filepath.Join("a", "b", "c.rx"), "x := 1\n")
	l := newLoaderIn(t, dir)

	prog, err := l.Resolve("a.b.c")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(prog.Statements) != 1 {
		t.Fatalf("got %d statements, want 1", len(prog.Statements))
	}
}

func TestResolveCachesByPath(t *testing.T) {
	dir := t.TempDir()
	writeModule(t, dir, "m.rx", "x := 1\n")
	l := newLoaderIn(t, dir)

	first, err := l.Resolve("m")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	second, err := l.Resolve("m")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if first != second {
		t.Error("expected the second Resolve of the same path to return the identical cached *ast.Program")
	}
}

func TestResolveMissingFile(t *testing.T) {
	l := newLoaderIn(t, t.TempDir())
	if _, err := l.Resolve("does.not.exist"); err == nil {
		t.Fatal("expected an error for a missing module file")
	}
}

func TestResolveMissingFileStampsNoCacheEntry(t *testing.T) {
	dir := t.TempDir()
	l := newLoaderIn(t, dir)
	if _, err := l.Resolve("missing"); err == nil {
		t.Fatal("expected an error")
	}
	writeModule(t, dir, "missing.rx", "x := 1\n")
	if _, err := l.Resolve("missing"); err != nil {
		t.Fatalf("Resolve after file was created: %v", err)
	}
}
