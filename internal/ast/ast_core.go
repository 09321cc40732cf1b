// Package ast defines the syntax tree the parser builds and the
// compiler consumes. It is a closed vocabulary of statement and
// expression nodes; nothing outside this package should need to grow
// the set of node types.
package ast

// Node is the root interface implemented by every syntax tree node.
type Node interface {
	Line() int
	Column() int
}

// Statement is a top-level or block-level syntax form.
type Statement interface {
	Node
	statementNode()
}

// Expression is anything that produces a value when compiled as an
// rvalue (a subset also compiles as an lvalue path; see Compiler).
type Expression interface {
	Node
	expressionNode()
}

// pos is embedded by every concrete node to satisfy Node.
type pos struct {
	LineNo int
	ColNo  int
}

func (p pos) Line() int   { return p.LineNo }
func (p pos) Column() int { return p.ColNo }

// Program is the root of a parsed file: an ordered statement list.
type Program struct {
	pos
	Statements []Statement
	File       string
}

// AssignOp distinguishes the three binding-declaration operators.
type AssignOp int

const (
	OpMutable   AssignOp = iota // =
	OpImmutable                 // :=
	OpReactive                  // ::=
)
