package vm

import (
	"bytes"
	"testing"

	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/parser"
)

// stubLoader resolves a fixed set of in-memory sources, standing in
// for internal/modules.Loader so this package's tests don't need to
// import internal/modules (which itself imports internal/parser, not
// internal/vm, so no cycle — but a stub keeps this test hermetic and
// independent of the filesystem).
type stubLoader struct {
	sources map[string]string
}

func (s *stubLoader) Resolve(path string) (*ast.Program, error) {
	src, ok := s.sources[path]
	if !ok {
		return nil, diagErrNotFound(path)
	}
	return parser.Parse(src, path)
}

func diagErrNotFound(path string) error {
	return &notFoundErr{path}
}

type notFoundErr struct{ path string }

func (e *notFoundErr) Error() string { return "module not found: " + e.path }

func TestImportRunsModuleOnceAndSharesGlobals(t *testing.T) {
	// The second import must be a no-op: running the module twice would
	// redefine greeting_message in the same immutable frame and fail.
	src := `
import greeting
import greeting
func main() {
	println greeting_message
}
`
	loader := &stubLoader{sources: map[string]string{
		"greeting": `greeting_message := 42`,
	}}

	prog, err := parser.Parse(src, "main.rx")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	machine := New()
	var out bytes.Buffer
	machine.Out = &out
	machine.SetLoader(loader)

	if err := machine.Run(prog); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.String() != "42\n" {
		t.Errorf("got %q, want 42\\n", out.String())
	}
}

func TestImportMissingModuleIsAFatalError(t *testing.T) {
	src := `
import nowhere
func main() {}
`
	prog, err := parser.Parse(src, "main.rx")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	machine := New()
	machine.SetLoader(&stubLoader{sources: map[string]string{}})
	if err := machine.Run(prog); err == nil {
		t.Fatal("expected an error importing a module the loader cannot resolve")
	}
}
