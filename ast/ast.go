package ast

import (
	"bytes"
	"strings"

	"github.com/thiremani/cepheid/token"
)

// The base Node interface. The set of nodes is closed: the unexported
// marker keeps other packages from adding variants, so a type switch over
// the types in this file is exhaustive.
type Node interface {
	Tok() token.Token
	String() string
	node()
}

// All statement nodes implement this
type Statement interface {
	Node
	statementNode()
}

// All expression nodes implement this
type Expression interface {
	Node
	expressionNode()
}

// Module is the root of a parsed source file.
type Module struct {
	Functions []*Function
}

func (m *Module) node() {}
func (m *Module) Tok() token.Token {
	if len(m.Functions) > 0 {
		return m.Functions[0].Tok()
	}
	return token.Token{Type: token.EOF}
}
func (m *Module) String() string {
	var out bytes.Buffer
	out.WriteString("(module")
	for _, f := range m.Functions {
		out.WriteString(" ")
		out.WriteString(f.String())
	}
	out.WriteString(")")
	return out.String()
}

// Parameter is a "Type name" pair in a function signature.
type Parameter struct {
	Type *Identifier
	Name *Identifier
}

func (p *Parameter) String() string {
	return "(" + p.Type.Value + " " + p.Name.Value + ")"
}

// Statements
type Function struct {
	Token      token.Token // the function name
	Name       string
	Params     []*Parameter
	ReturnType *Identifier
	Body       *Scope
}

func (f *Function) node()            {}
func (f *Function) statementNode()   {}
func (f *Function) Tok() token.Token { return f.Token }
func (f *Function) String() string {
	var out bytes.Buffer

	out.WriteString("(func ")
	out.WriteString(f.Name)
	out.WriteString(" ")
	out.WriteString(f.ReturnType.Value)
	if len(f.Params) > 0 {
		params := []string{}
		for _, p := range f.Params {
			params = append(params, p.String())
		}
		out.WriteString(" (params ")
		out.WriteString(strings.Join(params, " "))
		out.WriteString(")")
	}
	out.WriteString(" ")
	out.WriteString(f.Body.String())
	out.WriteString(")")

	return out.String()
}

// Scope is a braced block. Besides owning its statements it keeps
// references to its own declarations and to the scopes nested directly in
// it (bare blocks and the bodies of conditionals and loops).
type Scope struct {
	Token      token.Token // the { token
	Statements []Statement
	locals     []*VariableDeclaration
	scopes     []*Scope
}

func NewScope(tok token.Token) *Scope {
	return &Scope{Token: tok, Statements: []Statement{}}
}

func (s *Scope) AddStatement(stmt Statement) {
	switch st := stmt.(type) {
	case *VariableDeclaration:
		s.locals = append(s.locals, st)
	case *Scope:
		s.scopes = append(s.scopes, st)
	case *Conditional:
		s.scopes = append(s.scopes, st.Body)
	case *Loop:
		s.scopes = append(s.scopes, st.Body)
	}
	s.Statements = append(s.Statements, stmt)
}

func (s *Scope) Locals() []*VariableDeclaration { return s.locals }
func (s *Scope) NestedScopes() []*Scope         { return s.scopes }

func (s *Scope) node()            {}
func (s *Scope) statementNode()   {}
func (s *Scope) Tok() token.Token { return s.Token }
func (s *Scope) String() string {
	var out bytes.Buffer

	out.WriteString("(scope")
	for _, st := range s.Statements {
		out.WriteString(" ")
		out.WriteString(st.String())
	}
	out.WriteString(")")

	return out.String()
}

type VariableDeclaration struct {
	Token token.Token // the type name token
	Type  *Identifier
	Name  *Identifier
	Value Expression // nil when there is no initializer
}

func (vd *VariableDeclaration) node()            {}
func (vd *VariableDeclaration) statementNode()   {}
func (vd *VariableDeclaration) Tok() token.Token { return vd.Token }
func (vd *VariableDeclaration) String() string {
	var out bytes.Buffer

	out.WriteString("(var ")
	out.WriteString(vd.Type.Value)
	out.WriteString(" ")
	out.WriteString(vd.Name.Value)
	if vd.Value != nil {
		out.WriteString(" ")
		out.WriteString(vd.Value.String())
	}
	out.WriteString(")")

	return out.String()
}

// Conditional is an if statement. There is no else branch.
type Conditional struct {
	Token     token.Token // the if token
	Condition Expression
	Body      *Scope
}

func (c *Conditional) node()            {}
func (c *Conditional) statementNode()   {}
func (c *Conditional) Tok() token.Token { return c.Token }
func (c *Conditional) String() string {
	return "(if " + c.Condition.String() + " " + c.Body.String() + ")"
}

// Loop covers both for and while. Init and Update are nil when absent.
type Loop struct {
	Token     token.Token // the for or while token
	Init      Expression
	Condition Expression
	Update    Expression
	Body      *Scope
}

func (l *Loop) node()            {}
func (l *Loop) statementNode()   {}
func (l *Loop) Tok() token.Token { return l.Token }
func (l *Loop) String() string {
	var out bytes.Buffer

	out.WriteString("(loop ")
	out.WriteString(optional(l.Init))
	out.WriteString(" ")
	out.WriteString(l.Condition.String())
	out.WriteString(" ")
	out.WriteString(optional(l.Update))
	out.WriteString(" ")
	out.WriteString(l.Body.String())
	out.WriteString(")")

	return out.String()
}

type ReturnStatement struct {
	Token token.Token // the return token
	Value Expression  // nil for a bare return
}

func (rs *ReturnStatement) node()            {}
func (rs *ReturnStatement) statementNode()   {}
func (rs *ReturnStatement) Tok() token.Token { return rs.Token }
func (rs *ReturnStatement) String() string {
	if rs.Value == nil {
		return "(return)"
	}
	return "(return " + rs.Value.String() + ")"
}

// ExpressionStatement is an expression evaluated for its effect, e.g. "x = 1;".
type ExpressionStatement struct {
	Token      token.Token // the first token of the expression
	Expression Expression
}

func (es *ExpressionStatement) node()            {}
func (es *ExpressionStatement) statementNode()   {}
func (es *ExpressionStatement) Tok() token.Token { return es.Token }
func (es *ExpressionStatement) String() string {
	return "(expr " + es.Expression.String() + ")"
}

// Expressions
type BinaryOperation struct {
	Token token.Token // the first token of the operator
	Op    BinaryOp
	Left  Expression
	Right Expression
}

func (bo *BinaryOperation) node()            {}
func (bo *BinaryOperation) expressionNode()  {}
func (bo *BinaryOperation) Tok() token.Token { return bo.Token }
func (bo *BinaryOperation) String() string {
	return "(" + bo.Op.String() + " " + bo.Left.String() + " " + bo.Right.String() + ")"
}

type UnaryOperation struct {
	Token   token.Token // the first token of the operator
	Op      UnaryOp
	Operand Expression
}

func (uo *UnaryOperation) node()            {}
func (uo *UnaryOperation) expressionNode()  {}
func (uo *UnaryOperation) Tok() token.Token { return uo.Token }
func (uo *UnaryOperation) String() string {
	return "(" + uo.Op.String() + " " + uo.Operand.String() + ")"
}

type Identifier struct {
	Token token.Token // the token.IDENT token
	Value string
}

func (i *Identifier) node()            {}
func (i *Identifier) expressionNode()  {}
func (i *Identifier) Tok() token.Token { return i.Token }
func (i *Identifier) String() string   { return i.Value }

type IntegerLiteral struct {
	Token token.Token
	Value int64
}

func (il *IntegerLiteral) node()            {}
func (il *IntegerLiteral) expressionNode()  {}
func (il *IntegerLiteral) Tok() token.Token { return il.Token }
func (il *IntegerLiteral) String() string   { return il.Token.Literal }

func optional(e Expression) string {
	if e == nil {
		return "_"
	}
	return e.String()
}
