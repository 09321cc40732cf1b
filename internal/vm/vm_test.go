package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/rill-lang/rill/internal/parser"
)

func runSource(t *testing.T, src string) (string, error) {
	t.Helper()
	prog, err := parser.Parse(src, "test.rx")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	machine := New()
	var out bytes.Buffer
	machine.Out = &out
	err = machine.Run(prog)
	return out.String(), err
}

func TestReactiveBindingRecomputesOnDependencyChange(t *testing.T) {
	src := `
func main() {
	x = 1
	y ::= x + 1
	println y
	x = 5
	println y
}
`
	out, err := runSource(t, src)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 || lines[0] != "2" || lines[1] != "6" {
		t.Errorf("got output %q, want lines 2 then 6 (reactive re-read after x changes)", out)
	}
}

func TestCapturedImmutableStaysStableAcrossLaterReassign(t *testing.T) {
	// A reactive binding's captured immutable free variables are frozen
	// at installation time: rebinding the same name with := in an inner
	// scope afterwards does not change what the reactive read sees.
	src := `
func main() {
	a := 10
	b ::= a * 2
	println b
	if 1 {
		a := 99
		println b
	}
}
`
	out, err := runSource(t, src)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out != "20\n20\n" {
		t.Errorf("got %q, want 20 twice (inner rebinding of a must not reach the captured a)", out)
	}
}

func TestImmutableFieldRejectsReassignment(t *testing.T) {
	src := `
struct Point {
	x := 1
}
func main() {
	p := struct Point
	p.x = 2
}
`
	_, err := runSource(t, src)
	if err == nil {
		t.Fatal("expected an error assigning to an immutable field")
	}
}

func TestReactiveStructFieldSeesSiblingUpdates(t *testing.T) {
	src := `
struct Box {
	w = 2
	area ::= w * w
}
func main() {
	b := struct Box
	println b.area
	b.w = 3
	println b.area
}
`
	out, err := runSource(t, src)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 || lines[0] != "4" || lines[1] != "9" {
		t.Errorf("got output %q, want 4 then 9 (area recomputed from updated sibling w)", out)
	}
}

func TestPrintNonCharArrayEmitsLength(t *testing.T) {
	src := `
func main() {
	a := array(3)
	a[0] = 1
	a[1] = 2
	a[2] = 3
	println a
}
`
	out, err := runSource(t, src)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(out) != "3" {
		t.Errorf("got %q, want 3 (array length, since elements are not all chars)", out)
	}
}

func TestPrintCharArrayPrintsAsString(t *testing.T) {
	src := `
func main() {
	println "hi"
}
`
	out, err := runSource(t, src)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(out) != "hi" {
		t.Errorf("got %q, want hi", out)
	}
}

func TestLoopClearsImmutableFrameEachIteration(t *testing.T) {
	// A one-shot immutable binding declared inside a loop body must be
	// re-declarable on every iteration: the loop clears the frame
	// rather than rejecting the second iteration's redefinition.
	src := `
func main() {
	n = 0
	loop {
		if n == 3 {
			break
		}
		k := n
		n = k + 1
	}
	println n
}
`
	out, err := runSource(t, src)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.TrimSpace(out) != "3" {
		t.Errorf("got %q, want 3", out)
	}
}

func TestMissingMainIsAFatalError(t *testing.T) {
	_, err := runSource(t, "x := 1\n")
	if err == nil {
		t.Fatal("expected an error for a program with no main function")
	}
}

func TestBreakOutsideLoopIsRejectedAtCompileTime(t *testing.T) {
	_, err := runSource(t, "func main() {\n\tbreak\n}\n")
	if err == nil {
		t.Fatal("expected an error for break outside of a loop")
	}
}
