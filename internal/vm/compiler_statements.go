package vm

import (
	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/diagnostics"
)

func (c *Compiler) compileStatement(stmt ast.Statement, chunk *Chunk) error {
	switch s := stmt.(type) {
	case *ast.AssignStatement:
		return c.compileAssign(s, chunk)
	case *ast.ExpressionStatement:
		if err := c.compileExpr(s.Expr, chunk); err != nil {
			return err
		}
		ln, col := line(s)
		chunk.WriteOp(OP_POP, ln, col)
		return nil
	case *ast.IfStatement:
		return c.compileIf(s, chunk)
	case *ast.LoopStatement:
		return c.compileLoop(s, chunk)
	case *ast.BreakStatement:
		return c.compileBreak(s, chunk)
	case *ast.ReturnStatement:
		return c.compileReturn(s, chunk)
	case *ast.PrintStatement:
		if err := c.compileExpr(s.Expr, chunk); err != nil {
			return err
		}
		ln, col := line(s)
		if s.Newline {
			chunk.WriteOp(OP_PRINTLN, ln, col)
		} else {
			chunk.WriteOp(OP_PRINT, ln, col)
		}
		return nil
	case *ast.FunctionStatement:
		return c.compileFunctionStatement(s, chunk)
	case *ast.StructStatement:
		return c.compileStructStatement(s, chunk)
	case *ast.ImportStatement:
		ln, col := line(s)
		chunk.WriteOpConst(OP_IMPORT, s.Path, ln, col)
		return nil
	default:
		return diagnostics.New(diagnostics.KindInternal, "unhandled statement type %T", stmt)
	}
}

// compileAssign implements spec §4.2 "Assignment dispatch": a bare
// name becomes a direct store-*; a compound lvalue becomes lvalue
// compilation of the target followed by the rvalue (or, for reactive
// writes, just the frozen thunk) and a store-through* instruction.
func (c *Compiler) compileAssign(s *ast.AssignStatement, chunk *Chunk) error {
	ln, col := line(s)

	if ident, ok := s.Target.(*ast.Identifier); ok {
		switch s.Op {
		case ast.OpReactive:
			thunk, err := c.freeze(s.Value, chunk.File)
			if err != nil {
				return err
			}
			idx := chunk.AddConstant(thunk)
			chunk.WriteOp(OP_STORE_REACTIVE, ln, col)
			nameIdx := chunk.AddConstant(ident.Name)
			chunk.WriteConstRef(nameIdx, ln, col)
			chunk.WriteConstRef(idx, ln, col)
			return nil
		default:
			if err := c.compileExpr(s.Value, chunk); err != nil {
				return err
			}
			op := OP_STORE_MUTABLE
			if s.Op == ast.OpImmutable {
				op = OP_STORE_IMMUTABLE
			}
			chunk.WriteOpConst(op, ident.Name, ln, col)
			return nil
		}
	}

	if !isLvalueTarget(s.Target) {
		return diagnostics.At(diagnostics.KindInvalidAssignTarget, ln, col, "invalid assignment target")
	}

	if err := c.compileLvalue(s.Target, chunk); err != nil {
		return err
	}

	switch s.Op {
	case ast.OpReactive:
		thunk, err := c.freeze(s.Value, chunk.File)
		if err != nil {
			return err
		}
		idx := chunk.AddConstant(thunk)
		chunk.WriteOp(OP_STORE_THROUGH_REACTIVE, ln, col)
		chunk.WriteConstRef(idx, ln, col)
	case ast.OpImmutable:
		if err := c.compileExpr(s.Value, chunk); err != nil {
			return err
		}
		chunk.WriteOp(OP_STORE_THROUGH_IMMUTABLE, ln, col)
	default:
		if err := c.compileExpr(s.Value, chunk); err != nil {
			return err
		}
		chunk.WriteOp(OP_STORE_THROUGH, ln, col)
	}
	return nil
}

func isLvalueTarget(e ast.Expression) bool {
	switch e.(type) {
	case *ast.IndexExpression, *ast.FieldExpression:
		return true
	default:
		return false
	}
}

func (c *Compiler) compileIf(s *ast.IfStatement, chunk *Chunk) error {
	ln, col := line(s)
	if err := c.compileExpr(s.Cond, chunk); err != nil {
		return err
	}
	elseLabel := c.newLabel("else")
	endLabel := c.newLabel("endif")
	chunk.WriteOpConst(OP_JUMP_IF_ZERO, elseLabel, ln, col)

	chunk.WriteOp(OP_PUSH_IMMUTABLE_SCOPE, ln, col)
	if err := c.compileStatements(s.Then, chunk); err != nil {
		return err
	}
	chunk.WriteOp(OP_POP_IMMUTABLE_SCOPE, ln, col)
	chunk.WriteOpConst(OP_JUMP, endLabel, ln, col)

	chunk.WriteOp(OP_LABEL, ln, col)
	nameIdx := chunk.AddConstant(elseLabel)
	chunk.WriteConstRef(nameIdx, ln, col)

	chunk.WriteOp(OP_PUSH_IMMUTABLE_SCOPE, ln, col)
	if s.Else != nil {
		if err := c.compileStatements(s.Else, chunk); err != nil {
			return err
		}
	}
	chunk.WriteOp(OP_POP_IMMUTABLE_SCOPE, ln, col)

	chunk.WriteOp(OP_LABEL, ln, col)
	nameIdx2 := chunk.AddConstant(endLabel)
	chunk.WriteConstRef(nameIdx2, ln, col)
	return nil
}

// compileLoop implements spec §4.2 "Loops open a scope once, then
// emit a clear-immutable-scope at the top of each iteration ... A
// loop also registers its end label on a break stack".
func (c *Compiler) compileLoop(s *ast.LoopStatement, chunk *Chunk) error {
	ln, col := line(s)
	startLabel := c.newLabel("loop")
	endLabel := c.newLabel("loopend")

	chunk.WriteOp(OP_PUSH_IMMUTABLE_SCOPE, ln, col)

	chunk.WriteOp(OP_LABEL, ln, col)
	startIdx := chunk.AddConstant(startLabel)
	chunk.WriteConstRef(startIdx, ln, col)

	chunk.WriteOp(OP_CLEAR_IMMUTABLE_SCOPE, ln, col)

	c.breakStack = append(c.breakStack, endLabel)
	err := c.compileStatements(s.Body, chunk)
	c.breakStack = c.breakStack[:len(c.breakStack)-1]
	if err != nil {
		return err
	}

	chunk.WriteOpConst(OP_JUMP, startLabel, ln, col)

	chunk.WriteOp(OP_LABEL, ln, col)
	endIdx := chunk.AddConstant(endLabel)
	chunk.WriteConstRef(endIdx, ln, col)

	chunk.WriteOp(OP_POP_IMMUTABLE_SCOPE, ln, col)
	return nil
}

func (c *Compiler) compileBreak(s *ast.BreakStatement, chunk *Chunk) error {
	ln, col := line(s)
	if len(c.breakStack) == 0 {
		return diagnostics.At(diagnostics.KindBreakOutsideLoop, ln, col, "break outside of a loop")
	}
	target := c.breakStack[len(c.breakStack)-1]
	chunk.WriteOpConst(OP_JUMP, target, ln, col)
	return nil
}

func (c *Compiler) compileReturn(s *ast.ReturnStatement, chunk *Chunk) error {
	ln, col := line(s)
	if s.Value != nil {
		if err := c.compileExpr(s.Value, chunk); err != nil {
			return err
		}
	}
	chunk.WriteOp(OP_RETURN, ln, col)
	return nil
}

func (c *Compiler) compileFunctionStatement(s *ast.FunctionStatement, chunk *Chunk) error {
	ln, col := line(s)
	fn := &FunctionValue{Name: s.Name, Params: s.Params, Body: s.Body}
	idx := chunk.AddConstant(fn)
	chunk.WriteOp(OP_STORE_FUNCTION, ln, col)
	chunk.WriteConstRef(idx, ln, col)
	return nil
}

// compileStructStatement compiles every field initializer now (eagerly,
// unlike function bodies, which are compiled on first call) and records the resulting
// StructDef as a chunk constant for OP_DEFINE_STRUCT to install.
func (c *Compiler) compileStructStatement(s *ast.StructStatement, chunk *Chunk) error {
	def := &StructDef{Name: s.Name}
	for _, f := range s.Fields {
		spec := FieldSpec{Name: f.Name, Mode: f.Mode, HasInit: f.Init != nil}
		if f.Init != nil {
			if f.Mode == ast.OpReactive {
				thunk, err := c.freeze(f.Init, chunk.File)
				if err != nil {
					return err
				}
				spec.InitThunk = thunk
			} else {
				initChunk, err := c.compileExprChunk(f.Init, chunk.File)
				if err != nil {
					return err
				}
				spec.InitCode = initChunk
			}
		}
		def.Fields = append(def.Fields, spec)
	}
	ln, col := line(s)
	idx := chunk.AddConstant(def)
	chunk.WriteOp(OP_DEFINE_STRUCT, ln, col)
	chunk.WriteConstRef(idx, ln, col)
	return nil
}
