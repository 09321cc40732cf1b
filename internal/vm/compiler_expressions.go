package vm

import (
	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/diagnostics"
)

// compileExpr lowers an expression for its value (spec §4.2's rvalue
// compilation mode). Every case leaves exactly one value on the stack.
func (c *Compiler) compileExpr(expr ast.Expression, chunk *Chunk) error {
	ln, col := line(expr)
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		chunk.WriteOpConst(OP_CONST, IntVal(e.Value), ln, col)
		return nil

	case *ast.CharLiteral:
		chunk.WriteOp(OP_PUSH_CHAR, ln, col)
		r := uint32(e.Value)
		chunk.Write(byte(r>>24), ln, col)
		chunk.Write(byte(r>>16), ln, col)
		chunk.Write(byte(r>>8), ln, col)
		chunk.Write(byte(r), ln, col)
		return nil

	case *ast.StringLiteral:
		return c.compileStringLiteral(e, chunk)

	case *ast.Identifier:
		chunk.WriteOpConst(OP_LOAD, e.Name, ln, col)
		return nil

	case *ast.NewArrayExpression:
		if err := c.compileExpr(e.Size, chunk); err != nil {
			return err
		}
		chunk.WriteOp(OP_NEW_ARRAY, ln, col)
		return nil

	case *ast.NewStructExpression:
		chunk.WriteOpConst(OP_NEW_STRUCT, e.Name, ln, col)
		return nil

	case *ast.IndexExpression:
		if err := c.compileExpr(e.Base, chunk); err != nil {
			return err
		}
		if err := c.compileExpr(e.Index, chunk); err != nil {
			return err
		}
		chunk.WriteOp(OP_ARRAY_GET, ln, col)
		return nil

	case *ast.FieldExpression:
		if err := c.compileExpr(e.Base, chunk); err != nil {
			return err
		}
		chunk.WriteOpConst(OP_FIELD_GET, e.Name, ln, col)
		return nil

	case *ast.CallExpression:
		return c.compileCall(e, chunk)

	case *ast.CastExpression:
		if err := c.compileExpr(e.Expr, chunk); err != nil {
			return err
		}
		if e.To == "char" {
			chunk.WriteOp(OP_CAST_CHAR, ln, col)
		} else {
			chunk.WriteOp(OP_CAST_INT, ln, col)
		}
		return nil

	case *ast.BinaryExpression:
		return c.compileBinary(e, chunk)

	case *ast.LogicalExpression:
		if err := c.compileExpr(e.Left, chunk); err != nil {
			return err
		}
		if err := c.compileExpr(e.Right, chunk); err != nil {
			return err
		}
		if e.Op == ast.LogicalAnd {
			chunk.WriteOp(OP_AND, ln, col)
		} else {
			chunk.WriteOp(OP_OR, ln, col)
		}
		return nil

	case *ast.NotExpression:
		if err := c.compileExpr(e.Expr, chunk); err != nil {
			return err
		}
		chunk.WriteOp(OP_NOT, ln, col)
		return nil

	case *ast.NegateExpression:
		// Lowered as 0 - e; there is no dedicated unary-minus opcode
		// (spec §4.2, OP_NEG_INT exists only as an unused reservation).
		chunk.WriteOpConst(OP_CONST, IntVal(0), ln, col)
		if err := c.compileExpr(e.Expr, chunk); err != nil {
			return err
		}
		chunk.WriteOp(OP_SUB, ln, col)
		return nil

	case *ast.TernaryExpression:
		return c.compileTernary(e, chunk)

	default:
		return diagnostics.At(diagnostics.KindInternal, ln, col, "unhandled expression type %T", expr)
	}
}

// compileStringLiteral lowers a string to an array allocation plus one
// indexed store per character, leaving the array reference as the
// expression's value (spec §4.2 "string literals desugar to an array
// of char"; SPEC_FULL §11 cast/array surface).
func (c *Compiler) compileStringLiteral(e *ast.StringLiteral, chunk *Chunk) error {
	ln, col := line(e)
	runes := []rune(e.Value)

	chunk.WriteOpConst(OP_CONST, IntVal(int32(len(runes))), ln, col)
	chunk.WriteOp(OP_NEW_ARRAY, ln, col)

	for i, r := range runes {
		chunk.WriteOp(OP_DUP, ln, col)
		chunk.WriteOpConst(OP_CONST, IntVal(int32(i)), ln, col)
		chunk.WriteOp(OP_ARRAY_LVALUE, ln, col)

		chunk.WriteOp(OP_PUSH_CHAR, ln, col)
		ur := uint32(r)
		chunk.Write(byte(ur>>24), ln, col)
		chunk.Write(byte(ur>>16), ln, col)
		chunk.Write(byte(ur>>8), ln, col)
		chunk.Write(byte(ur), ln, col)

		chunk.WriteOp(OP_STORE_THROUGH, ln, col)
	}
	return nil
}

func (c *Compiler) compileCall(e *ast.CallExpression, chunk *Chunk) error {
	ln, col := line(e)
	for _, arg := range e.Args {
		if err := c.compileExpr(arg, chunk); err != nil {
			return err
		}
	}
	idx := chunk.AddConstant(e.Name)
	chunk.WriteOp(OP_CALL, ln, col)
	chunk.WriteConstRef(idx, ln, col)
	chunk.Write(byte(len(e.Args)), ln, col)
	return nil
}

var binaryOps = map[ast.BinaryOp]Opcode{
	ast.OpAdd: OP_ADD, ast.OpSub: OP_SUB, ast.OpMul: OP_MUL,
	ast.OpDiv: OP_DIV, ast.OpMod: OP_MOD,
	ast.OpEq: OP_EQ, ast.OpNeq: OP_NEQ,
	ast.OpLt: OP_LT, ast.OpLe: OP_LE, ast.OpGt: OP_GT, ast.OpGe: OP_GE,
}

func (c *Compiler) compileBinary(e *ast.BinaryExpression, chunk *Chunk) error {
	if err := c.compileExpr(e.Left, chunk); err != nil {
		return err
	}
	if err := c.compileExpr(e.Right, chunk); err != nil {
		return err
	}
	ln, col := line(e)
	op, ok := binaryOps[e.Op]
	if !ok {
		return diagnostics.At(diagnostics.KindInternal, ln, col, "unhandled binary operator %v", e.Op)
	}
	chunk.WriteOp(op, ln, col)
	return nil
}

func (c *Compiler) compileTernary(e *ast.TernaryExpression, chunk *Chunk) error {
	ln, col := line(e)
	if err := c.compileExpr(e.Cond, chunk); err != nil {
		return err
	}
	elseLabel := c.newLabel("terelse")
	endLabel := c.newLabel("terend")

	chunk.WriteOpConst(OP_JUMP_IF_ZERO, elseLabel, ln, col)
	if err := c.compileExpr(e.Then, chunk); err != nil {
		return err
	}
	chunk.WriteOpConst(OP_JUMP, endLabel, ln, col)

	chunk.WriteOp(OP_LABEL, ln, col)
	idx := chunk.AddConstant(elseLabel)
	chunk.WriteConstRef(idx, ln, col)
	if err := c.compileExpr(e.Else, chunk); err != nil {
		return err
	}

	chunk.WriteOp(OP_LABEL, ln, col)
	idx2 := chunk.AddConstant(endLabel)
	chunk.WriteConstRef(idx2, ln, col)
	return nil
}

// compileLvalue lowers an assignable expression into a Path push (spec
// §4.2 "lvalue compilation mode"). Only Identifier, IndexExpression
// and FieldExpression reach here; bare Identifier targets are handled
// directly by compileAssign and never call this function, so a lone
// Identifier below indicates a base of a compound chain.
func (c *Compiler) compileLvalue(expr ast.Expression, chunk *Chunk) error {
	ln, col := line(expr)
	switch e := expr.(type) {
	case *ast.IndexExpression:
		if err := c.compileLvalueBase(e.Base, chunk); err != nil {
			return err
		}
		if err := c.compileExpr(e.Index, chunk); err != nil {
			return err
		}
		chunk.WriteOp(OP_ARRAY_LVALUE, ln, col)
		return nil

	case *ast.FieldExpression:
		if err := c.compileLvalueBase(e.Base, chunk); err != nil {
			return err
		}
		chunk.WriteOpConst(OP_FIELD_LVALUE, e.Name, ln, col)
		return nil

	default:
		return diagnostics.At(diagnostics.KindInvalidAssignTarget, ln, col, "invalid assignment target")
	}
}

// compileLvalueBase compiles the base of a compound lvalue: a nested
// compound base recurses into a Path push, any other base (an
// identifier holding an array/struct reference, or a call producing
// one) is compiled as an ordinary rvalue (spec §4.7 "the base of a
// path may itself be an array reference, a nested element path, or a
// field path").
func (c *Compiler) compileLvalueBase(base ast.Expression, chunk *Chunk) error {
	switch base.(type) {
	case *ast.IndexExpression, *ast.FieldExpression:
		return c.compileLvalue(base, chunk)
	default:
		return c.compileExpr(base, chunk)
	}
}
