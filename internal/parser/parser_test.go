package parser

import (
	"testing"

	"github.com/rill-lang/rill/internal/ast"
)

func TestParseImmutableAndMutableBindings(t *testing.T) {
	prog, err := Parse("x := 1\ny = 2\n", "test.rx")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(prog.Statements) != 2 {
		t.Fatalf("got %d statements, want 2", len(prog.Statements))
	}
	s0, ok := prog.Statements[0].(*ast.AssignStatement)
	if !ok {
		t.Fatalf("statement 0 is %T, want *ast.AssignStatement", prog.Statements[0])
	}
	if s0.Op != ast.OpImmutable {
		t.Errorf("got op %v, want OpImmutable", s0.Op)
	}
	s1 := prog.Statements[1].(*ast.AssignStatement)
	if s1.Op != ast.OpMutable {
		t.Errorf("got op %v, want OpMutable", s1.Op)
	}
}

func TestParseReactiveBinding(t *testing.T) {
	prog, err := Parse("x ::= y + 1\n", "test.rx")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s := prog.Statements[0].(*ast.AssignStatement)
	if s.Op != ast.OpReactive {
		t.Errorf("got op %v, want OpReactive", s.Op)
	}
	if _, ok := s.Value.(*ast.BinaryExpression); !ok {
		t.Errorf("got value %T, want *ast.BinaryExpression", s.Value)
	}
}

func TestParseInvalidAssignmentTarget(t *testing.T) {
	_, err := Parse("1 + 1 := 2\n", "test.rx")
	if err == nil {
		t.Fatal("expected an error for an invalid assignment target")
	}
}

func TestParseStructWithFieldModes(t *testing.T) {
	src := `struct Point {
		x = 0
		y := 1
		sum ::= x + y
	}`
	prog, err := Parse(src, "test.rx")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	s := prog.Statements[0].(*ast.StructStatement)
	if s.Name != "Point" {
		t.Fatalf("got struct name %q, want Point", s.Name)
	}
	if len(s.Fields) != 3 {
		t.Fatalf("got %d fields, want 3", len(s.Fields))
	}
	wantModes := []ast.AssignOp{ast.OpMutable, ast.OpImmutable, ast.OpReactive}
	for i, want := range wantModes {
		if s.Fields[i].Mode != want {
			t.Errorf("field %d: got mode %v, want %v", i, s.Fields[i].Mode, want)
		}
	}
}

func TestParseImportDottedPath(t *testing.T) {
	prog, err := Parse("import a.b.c\n", "test.rx")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	imp := prog.Statements[0].(*ast.ImportStatement)
	if imp.Path != "a.b.c" {
		t.Errorf("got path %q, want a.b.c", imp.Path)
	}
}

func TestParseCastAndArrayBuiltinSyntax(t *testing.T) {
	prog, err := Parse("x := int(c)\ny := char(n)\nz := array(5)\n", "test.rx")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cast := prog.Statements[0].(*ast.AssignStatement).Value.(*ast.CastExpression)
	if cast.To != "int" {
		t.Errorf("got cast target %q, want int", cast.To)
	}
	cast2 := prog.Statements[1].(*ast.AssignStatement).Value.(*ast.CastExpression)
	if cast2.To != "char" {
		t.Errorf("got cast target %q, want char", cast2.To)
	}
	if _, ok := prog.Statements[2].(*ast.AssignStatement).Value.(*ast.NewArrayExpression); !ok {
		t.Errorf("got %T, want *ast.NewArrayExpression", prog.Statements[2].(*ast.AssignStatement).Value)
	}
}

func TestParseFunctionCallVsBuiltin(t *testing.T) {
	prog, err := Parse("x := foo(1, 2)\n", "test.rx")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	call := prog.Statements[0].(*ast.AssignStatement).Value.(*ast.CallExpression)
	if call.Name != "foo" || len(call.Args) != 2 {
		t.Errorf("got call %+v", call)
	}
}

func TestParseBreakOutsideLoopStillParses(t *testing.T) {
	// break is a legal statement in the grammar regardless of lexical
	// context; rejecting a break outside a loop is the compiler's job.
	prog, err := Parse("break\n", "test.rx")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if _, ok := prog.Statements[0].(*ast.BreakStatement); !ok {
		t.Errorf("got %T, want *ast.BreakStatement", prog.Statements[0])
	}
}

func TestParseLoopAndIfElse(t *testing.T) {
	src := `loop {
		if x == 0 {
			break
		} else {
			x = x - 1
		}
	}`
	prog, err := Parse(src, "test.rx")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	loop := prog.Statements[0].(*ast.LoopStatement)
	if len(loop.Body) != 1 {
		t.Fatalf("got %d body statements, want 1", len(loop.Body))
	}
	ifs := loop.Body[0].(*ast.IfStatement)
	if len(ifs.Then) != 1 || len(ifs.Else) != 1 {
		t.Errorf("got then=%d else=%d, want 1 and 1", len(ifs.Then), len(ifs.Else))
	}
}
