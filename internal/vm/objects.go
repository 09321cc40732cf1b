package vm

import "github.com/rill-lang/rill/internal/ast"

// FunctionValue is a first-class function: parameter names plus
// either an unlowered body (compiled on first call, spec §4.6) or
// already-lowered bytecode.
type FunctionValue struct {
	Name   string
	Params []string
	Body   []ast.Statement // nil once Code has been compiled
	Code   *Chunk          // nil until the body is compiled
}

// Thunk is a frozen reactive expression: bytecode that leaves exactly
// one value on the stack and ends in OP_RETURN, plus the free-variable
// names the compiler found in it (spec §3, §4.1, §4.3).
type Thunk struct {
	Code     *Chunk
	FreeVars []string
}

// Lazy is an installed reactive binding: a thunk plus the immutable
// values captured at installation time (spec §3, §4.8).
type Lazy struct {
	Thunk    *Thunk
	Captured map[string]Value
}

// FieldSpec is one field of a struct definition, frozen at definition
// time (spec §3 "Field modes are set at declaration ... and frozen at
// instantiation").
type FieldSpec struct {
	Name  string
	Mode  ast.AssignOp // only meaningful when HasInit
	HasInit bool
	// For OpMutable/OpImmutable fields, InitCode compiles the
	// initializer as ordinary rvalue bytecode evaluated at
	// instantiation time. For OpReactive fields, InitThunk instead
	// freezes the initializer so later reads re-evaluate it (spec §4.8
	// "Struct-field self-reference").
	InitCode  *Chunk
	InitThunk *Thunk
}

// StructDef is a named record type declaration (spec §3 "Record arena"
// field modes).
type StructDef struct {
	Name   string
	Fields []FieldSpec
}
