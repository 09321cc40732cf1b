// Package parser implements a recursive-descent, precedence-climbing
// parser that turns a Rill token stream into an internal/ast syntax
// tree. The parser's only contract with the rest of the system is the
// shape of that tree (see spec §6 "Grammar is expression-oriented...").
package parser

import (
	"fmt"

	"github.com/rill-lang/rill/internal/ast"
	"github.com/rill-lang/rill/internal/lexer"
	"github.com/rill-lang/rill/internal/token"
)

// Parser consumes a pre-tokenized stream with one token of lookahead.
type Parser struct {
	tokens []token.Token
	pos    int
	file   string
}

// New builds a Parser over an already-lexed token stream.
func New(tokens []token.Token, file string) *Parser {
	return &Parser{tokens: tokens, file: file}
}

// Parse tokenizes and parses src in one step, returning the Program.
func Parse(src, file string) (*ast.Program, error) {
	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	return New(toks, file).ParseProgram()
}

func (p *Parser) cur() token.Token  { return p.tokens[p.pos] }
func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return p.tokens[len(p.tokens)-1]
}
func (p *Parser) advance() token.Token {
	t := p.cur()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) errorf(format string, args ...interface{}) error {
	t := p.cur()
	return fmt.Errorf("%s at %s:%d:%d", fmt.Sprintf(format, args...), p.file, t.Line, t.Column)
}

func (p *Parser) expect(tt token.Type) (token.Token, error) {
	if p.cur().Type != tt {
		return token.Token{}, p.errorf("unexpected token %q, expected %s", p.cur().Literal, tt)
	}
	return p.advance(), nil
}

// ParseProgram parses an entire file into a flat statement list.
func (p *Parser) ParseProgram() (*ast.Program, error) {
	prog := &ast.Program{File: p.file}
	for p.cur().Type != token.EOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		prog.Statements = append(prog.Statements, stmt)
	}
	return prog, nil
}

func (p *Parser) parseBlock() ([]ast.Statement, error) {
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var stmts []ast.Statement
	for p.cur().Type != token.RBRACE {
		if p.cur().Type == token.EOF {
			return nil, p.errorf("unexpected EOF inside block")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, stmt)
	}
	p.advance() // consume RBRACE
	return stmts, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	tok := p.cur()
	switch tok.Type {
	case token.IF:
		return p.parseIf()
	case token.LOOP:
		return p.parseLoop()
	case token.BREAK:
		p.advance()
		p.skipSemicolon()
		return &ast.BreakStatement{}, nil
	case token.RETURN:
		return p.parseReturn()
	case token.FUNC:
		return p.parseFunction()
	case token.STRUCT:
		return p.parseStruct()
	case token.IMPORT:
		return p.parseImport()
	case token.PRINT, token.PRINTLN:
		return p.parsePrint()
	default:
		return p.parseAssignOrExprStatement()
	}
}

func (p *Parser) skipSemicolon() {
	if p.cur().Type == token.SEMICOLON {
		p.advance()
	}
}

func (p *Parser) parseIf() (ast.Statement, error) {
	p.advance() // 'if'
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	thenBlock, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	var elseBlock []ast.Statement
	if p.cur().Type == token.ELSE {
		p.advance()
		elseBlock, err = p.parseBlock()
		if err != nil {
			return nil, err
		}
	}
	return &ast.IfStatement{Cond: cond, Then: thenBlock, Else: elseBlock}, nil
}

func (p *Parser) parseLoop() (ast.Statement, error) {
	p.advance() // 'loop'
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.LoopStatement{Body: body}, nil
}

func (p *Parser) parseReturn() (ast.Statement, error) {
	p.advance() // 'return'
	if p.cur().Type == token.SEMICOLON || p.cur().Type == token.RBRACE {
		p.skipSemicolon()
		return &ast.ReturnStatement{}, nil
	}
	val, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipSemicolon()
	return &ast.ReturnStatement{Value: val}, nil
}

func (p *Parser) parseFunction() (ast.Statement, error) {
	p.advance() // 'func'
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LPAREN); err != nil {
		return nil, err
	}
	var params []string
	for p.cur().Type != token.RPAREN {
		id, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		params = append(params, id.Literal)
		if p.cur().Type == token.COMMA {
			p.advance()
		}
	}
	p.advance() // RPAREN
	body, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return &ast.FunctionStatement{Name: name.Literal, Params: params, Body: body}, nil
}

func (p *Parser) parseStruct() (ast.Statement, error) {
	p.advance() // 'struct'
	name, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.LBRACE); err != nil {
		return nil, err
	}
	var fields []ast.FieldDecl
	for p.cur().Type != token.RBRACE {
		fname, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		fd := ast.FieldDecl{Name: fname.Literal}
		switch p.cur().Type {
		case token.ASSIGN:
			p.advance()
			fd.Mode = ast.OpMutable
			fd.Init, err = p.parseExpression()
			if err != nil {
				return nil, err
			}
		case token.DEFINE:
			p.advance()
			fd.Mode = ast.OpImmutable
			fd.Init, err = p.parseExpression()
			if err != nil {
				return nil, err
			}
		case token.REACTIVE:
			p.advance()
			fd.Mode = ast.OpReactive
			fd.Init, err = p.parseExpression()
			if err != nil {
				return nil, err
			}
		}
		fields = append(fields, fd)
		if p.cur().Type == token.SEMICOLON || p.cur().Type == token.COMMA {
			p.advance()
		}
	}
	p.advance() // RBRACE
	return &ast.StructStatement{Name: name.Literal, Fields: fields}, nil
}

func (p *Parser) parseImport() (ast.Statement, error) {
	p.advance() // 'import'
	id, err := p.expect(token.IDENT)
	if err != nil {
		return nil, err
	}
	path := id.Literal
	for p.cur().Type == token.DOT {
		p.advance()
		part, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		path += "." + part.Literal
	}
	p.skipSemicolon()
	return &ast.ImportStatement{Path: path}, nil
}

func (p *Parser) parsePrint() (ast.Statement, error) {
	nl := p.cur().Type == token.PRINTLN
	p.advance()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipSemicolon()
	return &ast.PrintStatement{Expr: expr, Newline: nl}, nil
}

// parseAssignOrExprStatement handles bare-name and path assignment in
// all three operators, falling back to a bare expression statement
// (currently only meaningful for a call used for its side effects).
func (p *Parser) parseAssignOrExprStatement() (ast.Statement, error) {
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	var op ast.AssignOp
	hasAssign := true
	switch p.cur().Type {
	case token.ASSIGN:
		op = ast.OpMutable
	case token.DEFINE:
		op = ast.OpImmutable
	case token.REACTIVE:
		op = ast.OpReactive
	default:
		hasAssign = false
	}

	if !hasAssign {
		p.skipSemicolon()
		return &ast.ExpressionStatement{Expr: expr}, nil
	}

	if !isAssignable(expr) {
		return nil, p.errorf("invalid assignment target")
	}

	p.advance() // consume operator
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	p.skipSemicolon()
	return &ast.AssignStatement{Target: expr, Op: op, Value: value}, nil
}

// isAssignable restricts lvalue targets to name, indexing, and field
// access, matching spec §4.2's lvalue-compilation contract.
func isAssignable(e ast.Expression) bool {
	switch e.(type) {
	case *ast.Identifier, *ast.IndexExpression, *ast.FieldExpression:
		return true
	default:
		return false
	}
}

// --- expression parsing: precedence climbing ---
// mul/div/mod > add/sub > comparison > and > or > ternary

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseTernary()
}

func (p *Parser) parseTernary() (ast.Expression, error) {
	cond, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.cur().Type == token.QUESTION {
		p.advance()
		thenE, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.COLON); err != nil {
			return nil, err
		}
		elseE, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		return &ast.TernaryExpression{Cond: cond, Then: thenE, Else: elseE}, nil
	}
	return cond, nil
}

func (p *Parser) parseOr() (ast.Expression, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == token.OR {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalExpression{Op: ast.LogicalOr, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (ast.Expression, error) {
	left, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == token.AND {
		p.advance()
		right, err := p.parseComparison()
		if err != nil {
			return nil, err
		}
		left = &ast.LogicalExpression{Op: ast.LogicalAnd, Left: left, Right: right}
	}
	return left, nil
}

var comparisonOps = map[token.Type]ast.BinaryOp{
	token.EQ: ast.OpEq, token.NEQ: ast.OpNeq,
	token.LT: ast.OpLt, token.LE: ast.OpLe,
	token.GT: ast.OpGt, token.GE: ast.OpGe,
}

func (p *Parser) parseComparison() (ast.Expression, error) {
	left, err := p.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		op, ok := comparisonOps[p.cur().Type]
		if !ok {
			return left, nil
		}
		p.advance()
		right, err := p.parseAdditive()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Op: op, Left: left, Right: right}
	}
}

func (p *Parser) parseAdditive() (ast.Expression, error) {
	left, err := p.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == token.PLUS || p.cur().Type == token.MINUS {
		op := ast.OpAdd
		if p.cur().Type == token.MINUS {
			op = ast.OpSub
		}
		p.advance()
		right, err := p.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseMultiplicative() (ast.Expression, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.cur().Type == token.STAR || p.cur().Type == token.SLASH || p.cur().Type == token.PERCENT {
		var op ast.BinaryOp
		switch p.cur().Type {
		case token.STAR:
			op = ast.OpMul
		case token.SLASH:
			op = ast.OpDiv
		case token.PERCENT:
			op = ast.OpMod
		}
		p.advance()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &ast.BinaryExpression{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	switch p.cur().Type {
	case token.MINUS:
		p.advance()
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.NegateExpression{Expr: e}, nil
	case token.NOT:
		p.advance()
		e, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.NotExpression{Expr: e}, nil
	default:
		return p.parsePostfix()
	}
}

func (p *Parser) parsePostfix() (ast.Expression, error) {
	expr, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch p.cur().Type {
		case token.LBRACKET:
			p.advance()
			idx, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			if _, err := p.expect(token.RBRACKET); err != nil {
				return nil, err
			}
			expr = &ast.IndexExpression{Base: expr, Index: idx}
		case token.DOT:
			p.advance()
			name, err := p.expect(token.IDENT)
			if err != nil {
				return nil, err
			}
			expr = &ast.FieldExpression{Base: expr, Name: name.Literal}
		default:
			return expr, nil
		}
	}
}

func (p *Parser) parsePrimary() (ast.Expression, error) {
	tok := p.cur()
	switch tok.Type {
	case token.INT:
		p.advance()
		var v int64
		fmt.Sscanf(tok.Literal, "%d", &v)
		return &ast.IntegerLiteral{Value: int32(v)}, nil
	case token.CHAR:
		p.advance()
		return &ast.CharLiteral{Value: []rune(tok.Literal)[0]}, nil
	case token.STRING:
		p.advance()
		return &ast.StringLiteral{Value: tok.Literal}, nil
	case token.LPAREN:
		p.advance()
		e, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN); err != nil {
			return nil, err
		}
		return e, nil
	case token.STRUCT:
		p.advance()
		name, err := p.expect(token.IDENT)
		if err != nil {
			return nil, err
		}
		return &ast.NewStructExpression{Name: name.Literal}, nil
	case token.IDENT:
		return p.parseIdentOrCall(tok)
	default:
		return nil, p.errorf("unexpected token %q", tok.Literal)
	}
}

// parseIdentOrCall resolves the ambiguity between a bare identifier, a
// user function call, and the two builtin "call-like" forms int(..)/
// char(..) (casts) and array(..) (new-array) described in SPEC_FULL §11.
func (p *Parser) parseIdentOrCall(tok token.Token) (ast.Expression, error) {
	name := tok.Literal
	p.advance()
	if p.cur().Type != token.LPAREN {
		return &ast.Identifier{Name: name}, nil
	}
	p.advance() // LPAREN
	var args []ast.Expression
	for p.cur().Type != token.RPAREN {
		arg, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		if p.cur().Type == token.COMMA {
			p.advance()
		}
	}
	p.advance() // RPAREN

	switch name {
	case "int", "char":
		if len(args) != 1 {
			return nil, p.errorf("%s(...) takes exactly one argument", name)
		}
		return &ast.CastExpression{To: name, Expr: args[0]}, nil
	case "array":
		if len(args) != 1 {
			return nil, p.errorf("array(...) takes exactly one argument")
		}
		return &ast.NewArrayExpression{Size: args[0]}, nil
	default:
		return &ast.CallExpression{Name: name, Args: args}, nil
	}
}
