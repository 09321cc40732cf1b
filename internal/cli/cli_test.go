package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersionCommandPrintsVersion(t *testing.T) {
	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if strings.TrimSpace(out.String()) == "" {
		t.Error("expected version output, got empty string")
	}
}

func TestRunCommandExecutesSourceFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.rx")
	if err := os.WriteFile(path, []byte("func main() {\n\tprintln 1\n}\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"run", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if strings.TrimSpace(out.String()) != "1" {
		t.Errorf("got %q, want 1", out.String())
	}
}

func TestDisasmCommandPrintsListing(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "main.rx")
	if err := os.WriteFile(path, []byte("func main() {\n\tprintln 1\n}\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	root := NewRootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"disasm", path})
	if err := root.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.Contains(out.String(), "==") {
		t.Errorf("got %q, want a disassembly listing header", out.String())
	}
}

func TestRunCommandMissingFile(t *testing.T) {
	root := NewRootCommand()
	root.SetArgs([]string{"run", "/does/not/exist.rx"})
	root.SetOut(&bytes.Buffer{})
	if err := root.Execute(); err == nil {
		t.Fatal("expected an error for a missing source file")
	}
}
