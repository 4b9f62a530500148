package parser

import (
	"fmt"
	"strconv"

	"github.com/thiremani/cepheid/ast"
	"github.com/thiremani/cepheid/token"
)

// Operator candidates per precedence level, loosest first. Each level is
// matched greedily so "<=" is never read as "<" followed by "=".
var (
	assignOps     = []string{"=", "=="}
	equalityOps   = []string{"==", "!="}
	comparisonOps = []string{"<", ">", "<=", ">="}
	termOps       = []string{"+", "-"}
	factorOps     = []string{"*", "/"}
	unaryOps      = []string{"-", "!", "--", "++"}
)

// pattern matches one token by type and, when Literal is set, by text.
type pattern struct {
	Type    token.TokenType
	Literal string
}

var arrow = []pattern{{token.OPERATOR, "-"}, {token.OPERATOR, ">"}}

type Parser struct {
	toks []token.Token
	pos  int
}

func New(toks []token.Token) *Parser {
	return &Parser{toks: toks}
}

// Parse builds the module for toks, stopping at the first error.
func Parse(toks []token.Token) (*ast.Module, error) {
	return New(toks).ParseModule()
}

func (p *Parser) ParseModule() (*ast.Module, error) {
	module := &ast.Module{Functions: []*ast.Function{}}

	for !p.curTokenIs(token.EOF) {
		if !p.curToken().Is(token.KEYWORD, token.FUNC) {
			return nil, p.errorf(p.curToken(), "expected function declaration, got %s", describe(p.curToken()))
		}
		fn, err := p.parseFunction()
		if err != nil {
			return nil, err
		}
		module.Functions = append(module.Functions, fn)
	}

	return module, nil
}

// peekAt returns the token n places ahead of the cursor, or EOF positioned
// at the last real token.
func (p *Parser) peekAt(n int) token.Token {
	i := p.pos + n
	if i < len(p.toks) {
		return p.toks[i]
	}
	eof := token.Token{Type: token.EOF}
	if len(p.toks) > 0 {
		eof.Pos = p.toks[len(p.toks)-1].Pos
	}
	return eof
}

func (p *Parser) curToken() token.Token {
	return p.peekAt(0)
}

func (p *Parser) nextToken() token.Token {
	tok := p.curToken()
	if p.pos < len(p.toks) {
		p.pos++
	}
	return tok
}

func (p *Parser) curTokenIs(t token.TokenType) bool {
	return p.curToken().Type == t
}

func (p *Parser) peekTokenIs(t token.TokenType) bool {
	return p.peekAt(1).Type == t
}

// expect consumes the current token if it has type t.
func (p *Parser) expect(t token.TokenType, what string) (token.Token, error) {
	tok := p.curToken()
	if tok.Type != t {
		return tok, p.errorf(tok, "expected %s, got %s", what, describe(tok))
	}
	return p.nextToken(), nil
}

func (p *Parser) errorf(tok token.Token, format string, args ...any) error {
	return &token.CompileError{
		Phase: token.ParsePhase,
		Token: tok,
		Msg:   fmt.Sprintf(format, args...),
	}
}

func describe(tok token.Token) string {
	if tok.Type == token.EOF {
		return "end of input"
	}
	return tok.String()
}

// peekSequence reports, without consuming, whether the tokens at the cursor
// match seq one for one.
func (p *Parser) peekSequence(seq ...pattern) bool {
	for i, pt := range seq {
		if !p.peekAt(i).Is(pt.Type, pt.Literal) {
			return false
		}
	}
	return true
}

func operatorPattern(op string) []pattern {
	seq := make([]pattern, 0, len(op))
	for _, ch := range op {
		seq = append(seq, pattern{token.OPERATOR, string(ch)})
	}
	return seq
}

// peekOperator returns the longest candidate spelled by the operator tokens
// at the cursor. Nothing is consumed.
func (p *Parser) peekOperator(candidates ...string) (string, bool) {
	best := ""
	for _, c := range candidates {
		if len(c) > len(best) && p.peekSequence(operatorPattern(c)...) {
			best = c
		}
	}
	return best, best != ""
}

// takeOperator consumes the tokens of op and returns one token carrying the
// whole operator text at the position of its first character.
func (p *Parser) takeOperator(op string) token.Token {
	first := p.curToken()
	for range op {
		p.nextToken()
	}
	return token.Token{Type: token.OPERATOR, Literal: op, Pos: first.Pos}
}

func (p *Parser) parseFunction() (*ast.Function, error) {
	p.nextToken() // func

	name, err := p.expect(token.IDENT, "function name")
	if err != nil {
		return nil, err
	}
	fn := &ast.Function{Token: name, Name: name.Literal}

	if _, err = p.expect(token.LPAREN, "( after function name"); err != nil {
		return nil, err
	}
	if fn.Params, err = p.parseParameters(); err != nil {
		return nil, err
	}
	if _, err = p.expect(token.RPAREN, ") after parameters"); err != nil {
		return nil, err
	}

	if !p.peekSequence(arrow...) {
		return nil, p.errorf(p.curToken(), "expected -> before return type, got %s", describe(p.curToken()))
	}
	p.pos += len(arrow)

	retType, err := p.expect(token.IDENT, "return type")
	if err != nil {
		return nil, err
	}
	fn.ReturnType = &ast.Identifier{Token: retType, Value: retType.Literal}

	if fn.Body, err = p.parseScope(); err != nil {
		return nil, err
	}
	return fn, nil
}

func (p *Parser) parseParameters() ([]*ast.Parameter, error) {
	params := []*ast.Parameter{}
	if p.curTokenIs(token.RPAREN) {
		return params, nil
	}

	for {
		typeTok, err := p.expect(token.IDENT, "parameter type")
		if err != nil {
			return nil, err
		}
		nameTok, err := p.expect(token.IDENT, "parameter name")
		if err != nil {
			return nil, err
		}
		params = append(params, &ast.Parameter{
			Type: &ast.Identifier{Token: typeTok, Value: typeTok.Literal},
			Name: &ast.Identifier{Token: nameTok, Value: nameTok.Literal},
		})
		if !p.curTokenIs(token.DELIMITER) {
			return params, nil
		}
		p.nextToken()
	}
}

func (p *Parser) parseScope() (*ast.Scope, error) {
	open, err := p.expect(token.LBRACE, "{")
	if err != nil {
		return nil, err
	}
	scope := ast.NewScope(open)

	for !p.curTokenIs(token.RBRACE) {
		if p.curTokenIs(token.EOF) {
			return nil, p.errorf(p.curToken(), "expected }, got end of input")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		scope.AddStatement(stmt)
	}
	p.nextToken() // }

	return scope, nil
}

func (p *Parser) parseStatement() (ast.Statement, error) {
	tok := p.curToken()
	switch tok.Type {
	case token.KEYWORD:
		switch tok.Literal {
		case token.RETURN:
			return p.parseReturnStatement()
		case token.FUNC:
			return p.parseFunction()
		case token.IF:
			return p.parseConditional()
		case token.FOR:
			return p.parseForLoop()
		case token.WHILE:
			return p.parseWhileLoop()
		}
		return nil, p.errorf(tok, "unexpected keyword %q", tok.Literal)
	case token.LBRACE:
		return p.parseScope()
	case token.IDENT:
		if p.peekTokenIs(token.IDENT) {
			return p.parseVariableDeclaration()
		}
	}
	return p.parseExpressionStatement()
}

func (p *Parser) parseReturnStatement() (*ast.ReturnStatement, error) {
	stmt := &ast.ReturnStatement{Token: p.nextToken()}
	if !p.curTokenIs(token.TERMINATOR) {
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Value = value
	}
	if _, err := p.expect(token.TERMINATOR, "; after return"); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseVariableDeclaration() (*ast.VariableDeclaration, error) {
	typeTok := p.nextToken()
	nameTok := p.nextToken()
	stmt := &ast.VariableDeclaration{
		Token: typeTok,
		Type:  &ast.Identifier{Token: typeTok, Value: typeTok.Literal},
		Name:  &ast.Identifier{Token: nameTok, Value: nameTok.Literal},
	}

	if op, ok := p.peekOperator(assignOps...); ok && op == "=" {
		p.takeOperator(op)
		value, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		stmt.Value = value
	}

	if _, err := p.expect(token.TERMINATOR, "; after declaration"); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseConditional() (*ast.Conditional, error) {
	stmt := &ast.Conditional{Token: p.nextToken()}

	cond, err := p.parseParenthesized("if")
	if err != nil {
		return nil, err
	}
	stmt.Condition = cond

	if stmt.Body, err = p.parseScope(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseWhileLoop() (*ast.Loop, error) {
	stmt := &ast.Loop{Token: p.nextToken()}

	cond, err := p.parseParenthesized("while")
	if err != nil {
		return nil, err
	}
	stmt.Condition = cond

	if stmt.Body, err = p.parseScope(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseForLoop() (*ast.Loop, error) {
	stmt := &ast.Loop{Token: p.nextToken()}
	var err error

	if _, err = p.expect(token.LPAREN, "( after for"); err != nil {
		return nil, err
	}
	if !p.curTokenIs(token.TERMINATOR) {
		if stmt.Init, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err = p.expect(token.TERMINATOR, "; after loop initializer"); err != nil {
		return nil, err
	}
	if stmt.Condition, err = p.parseExpression(); err != nil {
		return nil, err
	}
	if _, err = p.expect(token.TERMINATOR, "; after loop condition"); err != nil {
		return nil, err
	}
	if !p.curTokenIs(token.RPAREN) {
		if stmt.Update, err = p.parseExpression(); err != nil {
			return nil, err
		}
	}
	if _, err = p.expect(token.RPAREN, ") after loop header"); err != nil {
		return nil, err
	}

	if stmt.Body, err = p.parseScope(); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseParenthesized(keyword string) (ast.Expression, error) {
	if _, err := p.expect(token.LPAREN, "( after "+keyword); err != nil {
		return nil, err
	}
	exp, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.RPAREN, ") after "+keyword+" condition"); err != nil {
		return nil, err
	}
	return exp, nil
}

func (p *Parser) parseExpressionStatement() (*ast.ExpressionStatement, error) {
	stmt := &ast.ExpressionStatement{Token: p.curToken()}
	exp, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	stmt.Expression = exp
	if _, err := p.expect(token.TERMINATOR, "; after expression"); err != nil {
		return nil, err
	}
	return stmt, nil
}

func (p *Parser) parseExpression() (ast.Expression, error) {
	return p.parseAssignment()
}

// parseAssignment is right associative: a = b = c is a = (b = c).
func (p *Parser) parseAssignment() (ast.Expression, error) {
	left, err := p.parseEquality()
	if err != nil {
		return nil, err
	}

	op, ok := p.peekOperator(assignOps...)
	if !ok || op != "=" {
		return left, nil
	}
	tok := p.takeOperator(op)

	right, err := p.parseAssignment()
	if err != nil {
		return nil, err
	}
	return &ast.BinaryOperation{Token: tok, Op: ast.Assign, Left: left, Right: right}, nil
}

func (p *Parser) parseEquality() (ast.Expression, error) {
	return p.parseBinaryChain(equalityOps, p.parseComparison)
}

func (p *Parser) parseComparison() (ast.Expression, error) {
	return p.parseBinaryChain(comparisonOps, p.parseTerm)
}

func (p *Parser) parseTerm() (ast.Expression, error) {
	return p.parseBinaryChain(termOps, p.parseFactor)
}

func (p *Parser) parseFactor() (ast.Expression, error) {
	return p.parseBinaryChain(factorOps, p.parseUnary)
}

// parseBinaryChain parses next (op next)* and folds it to the left.
func (p *Parser) parseBinaryChain(ops []string, next func() (ast.Expression, error)) (ast.Expression, error) {
	left, err := next()
	if err != nil {
		return nil, err
	}

	for {
		op, ok := p.peekOperator(ops...)
		if !ok {
			return left, nil
		}
		tok := p.takeOperator(op)

		right, err := next()
		if err != nil {
			return nil, err
		}
		binOp, _ := ast.LookupBinaryOp(op)
		left = &ast.BinaryOperation{Token: tok, Op: binOp, Left: left, Right: right}
	}
}

func (p *Parser) parseUnary() (ast.Expression, error) {
	op, ok := p.peekOperator(unaryOps...)
	if !ok {
		return p.parseBase()
	}
	tok := p.takeOperator(op)

	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	unOp, _ := ast.LookupUnaryOp(op)
	return &ast.UnaryOperation{Token: tok, Op: unOp, Operand: operand}, nil
}

func (p *Parser) parseBase() (ast.Expression, error) {
	tok := p.curToken()
	switch tok.Type {
	case token.INT:
		return p.parseIntegerLiteral()
	case token.IDENT:
		p.nextToken()
		return &ast.Identifier{Token: tok, Value: tok.Literal}, nil
	case token.LPAREN:
		p.nextToken()
		exp, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.RPAREN, ")"); err != nil {
			return nil, err
		}
		return exp, nil
	case token.OPERATOR:
		return nil, p.errorf(tok, "unknown operator sequence starting with %q", tok.Literal)
	}
	return nil, p.errorf(tok, "expected expression, got %s", describe(tok))
}

func (p *Parser) parseIntegerLiteral() (ast.Expression, error) {
	tok := p.nextToken()
	value, err := strconv.ParseInt(tok.Literal, 10, 64)
	if err != nil {
		return nil, p.errorf(tok, "could not parse %q as integer", tok.Literal)
	}
	return &ast.IntegerLiteral{Token: tok, Value: value}, nil
}
