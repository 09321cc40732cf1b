package vm

import (
	"fmt"

	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/diagnostics"
)

// Compiler lowers a syntax tree to Rill's flat, label-addressed
// bytecode (spec §4.2). One Compiler instance is used for an entire
// compilation session (a program, a module, or a single expression
// frozen for reactivity); it hands out globally-unique label names so
// that labels never collide even though every function/thunk/struct
// initializer gets its own Chunk and its own independent label table.
type Compiler struct {
	labelSeq int

	// breakStack holds, per enclosing loop of the CHUNK CURRENTLY
	// BEING EMITTED, the label a `break` should jump to. It is saved
	// and restored around compilation of a nested chunk (function
	// body, thunk, field initializer) because a jump can only ever
	// target a label within the same chunk — a loop lexically
	// enclosing a nested function does not reach into it.
	breakStack []string
}

func NewCompiler() *Compiler {
	return &Compiler{}
}

func (c *Compiler) newLabel(prefix string) string {
	c.labelSeq++
	return fmt.Sprintf("%s_%d", prefix, c.labelSeq)
}

// CompileProgram compiles a top-level program: every statement in
// source order, followed by an implicit call to main and return
// (spec §4.2 "single entry point ... emits instructions for each
// statement in source order, followed by an implicit call('main',
// 0); return").
func (c *Compiler) CompileProgram(prog *ast.Program) (*Chunk, error) {
	chunk := NewChunk(prog.File)
	saved := c.breakStack
	c.breakStack = nil
	defer func() { c.breakStack = saved }()

	if err := c.compileStatements(prog.Statements, chunk); err != nil {
		return nil, err
	}

	hasMain := false
	for _, stmt := range prog.Statements {
		if fn, ok := stmt.(*ast.FunctionStatement); ok && fn.Name == "main" {
			hasMain = true
			break
		}
	}
	if !hasMain {
		return nil, diagnostics.New(diagnostics.KindMissingMain, "no function named \"main\"")
	}

	chunk.WriteOpConst(OP_CALL, "main", 0, 0)
	chunk.Write(0, 0, 0) // argc = 0
	chunk.WriteOp(OP_POP, 0, 0)
	chunk.WriteOp(OP_RETURN, 0, 0)
	chunk.BuildLabelTable()
	return chunk, nil
}

// CompileModule compiles a program in module mode: no implicit call
// to main, no trailing return (spec §4.6 "compiles the resulting
// program in module mode (no implicit call to main and no trailing
// return)").
func (c *Compiler) CompileModule(prog *ast.Program) (*Chunk, error) {
	chunk := NewChunk(prog.File)
	saved := c.breakStack
	c.breakStack = nil
	defer func() { c.breakStack = saved }()

	if err := c.compileStatements(prog.Statements, chunk); err != nil {
		return nil, err
	}
	chunk.BuildLabelTable()
	return chunk, nil
}

// compileFunctionBody compiles params+body into a standalone chunk
// terminated by OP_RETURN. It is called on a function's first call
// (compiled on demand, spec §4.6); function bodies are never lowered
// at declaration time.
func (c *Compiler) compileFunctionBody(body []ast.Statement, file string) (*Chunk, error) {
	chunk := NewChunk(file)
	saved := c.breakStack
	c.breakStack = nil
	defer func() { c.breakStack = saved }()

	if err := c.compileStatements(body, chunk); err != nil {
		return nil, err
	}
	chunk.WriteOp(OP_RETURN, 0, 0)
	chunk.BuildLabelTable()
	return chunk, nil
}

// compileExprChunk compiles a single expression into its own chunk
// that leaves exactly one value on the stack and returns. Used for
// non-reactive struct field initializers (spec §4.2 "Struct field
// initializers are compiled similarly").
func (c *Compiler) compileExprChunk(expr ast.Expression, file string) (*Chunk, error) {
	chunk := NewChunk(file)
	saved := c.breakStack
	c.breakStack = nil
	defer func() { c.breakStack = saved }()

	if err := c.compileExpr(expr, chunk); err != nil {
		return nil, err
	}
	chunk.WriteOp(OP_RETURN, 0, 0)
	chunk.BuildLabelTable()
	return chunk, nil
}

func (c *Compiler) compileStatements(stmts []ast.Statement, chunk *Chunk) error {
	for _, stmt := range stmts {
		if err := c.compileStatement(stmt, chunk); err != nil {
			return err
		}
	}
	return nil
}

func line(n ast.Node) (int, int) { return n.Line(), n.Column() }
