package vm

import "github.com/rill-lang/rill/internal/ast"

// freeze compiles expr into its own chunk and records every identifier
// it reads as a free variable (spec §4.1, §4.3: "a frozen expression
// is bytecode plus the list of names it reads"). The free-variable set
// drives which bindings get captured into a Lazy at installation time.
func (c *Compiler) freeze(expr ast.Expression, file string) (*Thunk, error) {
	code, err := c.compileExprChunk(expr, file)
	if err != nil {
		return nil, err
	}
	return &Thunk{Code: code, FreeVars: FreeVars(expr)}, nil
}

// FreeVars walks expr and collects the name of every Identifier node
// reachable within it, deduplicated but otherwise unordered. Every
// free-variable source the spec names — plain variable reads, the
// base of a postfix access, call arguments, ternary subexpressions —
// reduces to "every Identifier reachable in the tree" (spec §4.3).
func FreeVars(expr ast.Expression) []string {
	seen := make(map[string]bool)
	var names []string
	var walk func(ast.Expression)
	walk = func(e ast.Expression) {
		if e == nil {
			return
		}
		switch n := e.(type) {
		case *ast.Identifier:
			if !seen[n.Name] {
				seen[n.Name] = true
				names = append(names, n.Name)
			}
		case *ast.IntegerLiteral, *ast.CharLiteral, *ast.StringLiteral, *ast.NewStructExpression:
			// no sub-expressions
		case *ast.NewArrayExpression:
			walk(n.Size)
		case *ast.IndexExpression:
			walk(n.Base)
			walk(n.Index)
		case *ast.FieldExpression:
			walk(n.Base)
		case *ast.CallExpression:
			for _, a := range n.Args {
				walk(a)
			}
		case *ast.CastExpression:
			walk(n.Expr)
		case *ast.BinaryExpression:
			walk(n.Left)
			walk(n.Right)
		case *ast.LogicalExpression:
			walk(n.Left)
			walk(n.Right)
		case *ast.NotExpression:
			walk(n.Expr)
		case *ast.NegateExpression:
			walk(n.Expr)
		case *ast.TernaryExpression:
			walk(n.Cond)
			walk(n.Then)
			walk(n.Else)
		}
	}
	walk(expr)
	return names
}
