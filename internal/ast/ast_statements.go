package ast

// AssignStatement covers all three binding operators on a bare name
// (store-mutable/immutable/reactive) and all three on a compound
// lvalue (store-through / store-through-reactive / store-through-
// immutable) — see spec §4.2 "Assignment dispatch". Target is
// restricted by the parser to an Identifier, IndexExpression, or
// FieldExpression chain; the compiler rejects anything else with
// "invalid assignment target" when compiling it as an lvalue.
type AssignStatement struct {
	pos
	Target Expression
	Op     AssignOp
	Value  Expression
}

func (*AssignStatement) statementNode() {}

// ExpressionStatement wraps an expression used for its side effects.
// The parser accepts any expression here; only a call has an effect.
type ExpressionStatement struct {
	pos
	Expr Expression
}

func (*ExpressionStatement) statementNode() {}

// IfStatement is `if cond { then } [else { else }]`. Each branch opens
// and closes its own immutable scope (spec §4.2 "Block scoping").
type IfStatement struct {
	pos
	Cond Expression
	Then []Statement
	Else []Statement // nil if no else branch
}

func (*IfStatement) statementNode() {}

// LoopStatement is the unconditional `loop { body }`; termination is
// via `break`.
type LoopStatement struct {
	pos
	Body []Statement
}

func (*LoopStatement) statementNode() {}

// BreakStatement exits the innermost enclosing loop.
type BreakStatement struct {
	pos
}

func (*BreakStatement) statementNode() {}

// ReturnStatement returns from the current function (or reactive
// thunk / module top level); Value is nil for a bare `return`.
type ReturnStatement struct {
	pos
	Value Expression
}

func (*ReturnStatement) statementNode() {}

// PrintStatement is `print expr` or `println expr`.
type PrintStatement struct {
	pos
	Expr   Expression
	Newline bool
}

func (*PrintStatement) statementNode() {}
