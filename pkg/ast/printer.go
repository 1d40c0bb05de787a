package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Operator binding strength, loosest first.
const (
	precOr = iota + 1
	precAnd
	precEquality
	precComparison
	precAdditive
	precMultiplicative
	precUnary
	precAtom
)

// BinaryPrecedence returns the binding strength of op.
func BinaryPrecedence(op BinaryOperator) int {
	switch op {
	case OpOr:
		return precOr
	case OpAnd:
		return precAnd
	case OpEqual, OpNotEqual:
		return precEquality
	case OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		return precComparison
	case OpAdd, OpSubtract:
		return precAdditive
	case OpMultiply, OpDivide, OpRemainder:
		return precMultiplicative
	default:
		return 0
	}
}

// Print renders node as canonical MicroKotlin source.
func Print(node Node) string {
	p := &printer{}
	p.node(node)
	return p.b.String()
}

type printer struct {
	b      strings.Builder
	indent int

	comments []Comment
	next     int
	lastLine int
}

func (p *printer) line(format string, args ...any) {
	p.b.WriteString(strings.Repeat("  ", p.indent))
	fmt.Fprintf(&p.b, format, args...)
	p.b.WriteByte('\n')
}

func (p *printer) node(node Node) {
	switch n := node.(type) {
	case *Program:
		for i, decl := range n.Declarations {
			start := decl.Span().Start
			p.flushTrailing(start)
			if i > 0 {
				p.b.WriteByte('\n')
			}
			p.flushComments(start)
			p.node(decl)
			p.endNode(decl)
		}
	case *FunctionDeclaration:
		p.function(n)
	case Statement:
		p.statement(n)
	case Expression:
		p.b.WriteString(FormatExpression(n))
	case *TypeReference:
		p.b.WriteString(string(n.Name))
	}
}

func (p *printer) function(fn *FunctionDeclaration) {
	params := make([]string, len(fn.Params))
	for i, param := range fn.Params {
		params[i] = fmt.Sprintf("%s: %s", param.ID.Name, param.TypeRef.Name)
	}
	header := fmt.Sprintf("fun %s(%s)", fn.ID.Name, strings.Join(params, ", "))
	if fn.ReturnType != nil && fn.ReturnType.Name != TypeUnit {
		header += ": " + string(fn.ReturnType.Name)
	}
	p.line("%s {", header)
	p.blockBody(fn.Body)
	p.line("}")
}

func (p *printer) blockBody(block *Block) {
	if block == nil {
		return
	}
	p.indent++
	for _, stmt := range block.Body {
		p.flushComments(stmt.Span().Start)
		p.statement(stmt)
		p.endNode(stmt)
	}
	p.flushComments(block.Span().End)
	p.indent--
}

func (p *printer) statement(stmt Statement) {
	switch s := stmt.(type) {
	case *VariableDeclaration:
		p.line("%s %s: %s = %s;", s.Keyword(), s.ID.Name, s.TypeRef.Name, FormatExpression(s.Initializer))
	case *AssignmentStatement:
		p.line("%s = %s;", s.Target.Name, FormatExpression(s.Value))
	case *ExpressionStatement:
		p.line("%s;", FormatExpression(s.Expression))
	case *ReturnStatement:
		if s.Argument == nil {
			p.line("return;")
			return
		}
		p.line("return %s;", FormatExpression(s.Argument))
	case *Block:
		p.line("{")
		p.blockBody(s)
		p.line("}")
	case *WhileStatement:
		p.line("while (%s) {", FormatExpression(s.Condition))
		p.blockBody(s.Body)
		p.line("}")
	case *DoWhileStatement:
		p.line("do {")
		p.blockBody(s.Body)
		p.line("} while (%s);", FormatExpression(s.Condition))
	case *IfStatement:
		p.line("if (%s) {", FormatExpression(s.Condition))
		p.blockBody(s.Then)
		for _, clause := range s.ElseIfs {
			p.line("} else if (%s) {", FormatExpression(clause.Condition))
			p.blockBody(clause.Body)
		}
		if s.Else != nil {
			p.line("} else {")
			p.blockBody(s.Else)
		}
		p.line("}")
	}
}

// FormatExpression renders an expression with the minimal parentheses
// needed to preserve its tree shape.
func FormatExpression(expr Expression) string {
	switch e := expr.(type) {
	case *IntegerLiteral:
		return strconv.FormatInt(int64(e.Value), 10)
	case *DoubleLiteral:
		return formatDoubleLiteral(e.Value)
	case *BooleanLiteral:
		return strconv.FormatBool(e.Value)
	case *StringLiteral:
		return QuoteString(e.Value)
	case *Identifier:
		return e.Name
	case *CallExpression:
		args := make([]string, len(e.Arguments))
		for i, arg := range e.Arguments {
			args[i] = FormatExpression(arg)
		}
		return fmt.Sprintf("%s(%s)", e.Callee.Name, strings.Join(args, ", "))
	case *UnaryExpression:
		operand := FormatExpression(e.Operand)
		if expressionPrecedence(e.Operand) < precUnary {
			operand = "(" + operand + ")"
		}
		return string(e.Operator) + operand
	case *BinaryExpression:
		prec := BinaryPrecedence(e.Operator)
		left := FormatExpression(e.Left)
		if expressionPrecedence(e.Left) < prec {
			left = "(" + left + ")"
		}
		right := FormatExpression(e.Right)
		if expressionPrecedence(e.Right) <= prec {
			right = "(" + right + ")"
		}
		return fmt.Sprintf("%s %s %s", left, e.Operator, right)
	default:
		return "<invalid>"
	}
}

func expressionPrecedence(expr Expression) int {
	switch e := expr.(type) {
	case *BinaryExpression:
		return BinaryPrecedence(e.Operator)
	case *UnaryExpression:
		return precUnary
	default:
		return precAtom
	}
}

func formatDoubleLiteral(v float64) string {
	text := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(text, ".") {
		text += ".0"
	}
	return text
}

// QuoteString renders a string literal using the escapes the lexer accepts.
func QuoteString(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('"')
	return b.String()
}
