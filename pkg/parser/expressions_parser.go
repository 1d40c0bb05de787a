package parser

import (
	"strconv"

	"microkotlin/interpreter-go/pkg/ast"
	"microkotlin/interpreter-go/pkg/lexer"
)

// binaryLevels lists the binary operator tiers from loosest to tightest. All
// tiers are left-associative.
var binaryLevels = [][]lexer.TokenKind{
	{lexer.OrOr},
	{lexer.AndAnd},
	{lexer.EqualEqual, lexer.BangEqual},
	{lexer.Less, lexer.LessEqual, lexer.Greater, lexer.GreaterEqual},
	{lexer.Plus, lexer.Minus},
	{lexer.Star, lexer.Slash, lexer.Percent},
}

var binaryOperators = map[lexer.TokenKind]ast.BinaryOperator{
	lexer.OrOr:         ast.OpOr,
	lexer.AndAnd:       ast.OpAnd,
	lexer.EqualEqual:   ast.OpEqual,
	lexer.BangEqual:    ast.OpNotEqual,
	lexer.Less:         ast.OpLess,
	lexer.LessEqual:    ast.OpLessEqual,
	lexer.Greater:      ast.OpGreater,
	lexer.GreaterEqual: ast.OpGreaterEqual,
	lexer.Plus:         ast.OpAdd,
	lexer.Minus:        ast.OpSubtract,
	lexer.Star:         ast.OpMultiply,
	lexer.Slash:        ast.OpDivide,
	lexer.Percent:      ast.OpRemainder,
}

func (p *parser) parseExpression() (ast.Expression, error) {
	return p.parseBinary(0)
}

func (p *parser) parseBinary(level int) (ast.Expression, error) {
	if level >= len(binaryLevels) {
		return p.parseUnary()
	}
	left, err := p.parseBinary(level + 1)
	if err != nil {
		return nil, err
	}
	for p.match(binaryLevels[level]...) {
		op := binaryOperators[p.previous().Kind]
		right, err := p.parseBinary(level + 1)
		if err != nil {
			return nil, err
		}
		expr := ast.NewBinaryExpression(op, left, right)
		ast.SetSpan(expr, ast.Join(left.Span(), right.Span()))
		left = expr
	}
	return left, nil
}

func (p *parser) parseUnary() (ast.Expression, error) {
	var op ast.UnaryOperator
	switch {
	case p.check(lexer.Minus):
		op = ast.UnaryNegate
	case p.check(lexer.Bang):
		op = ast.UnaryNot
	default:
		return p.parsePrimary()
	}
	opTok := p.advance()
	operand, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	expr := ast.NewUnaryExpression(op, operand)
	ast.SetSpan(expr, ast.Join(opTok.Span, operand.Span()))
	return expr, nil
}

func (p *parser) parsePrimary() (ast.Expression, error) {
	tok := p.peek()
	switch tok.Kind {
	case lexer.IntLiteral:
		p.advance()
		value, err := strconv.ParseInt(tok.Lexeme, 10, 32)
		if err != nil {
			return nil, p.failf(tok.Span, "integer literal %s is out of range for Int", tok.Lexeme)
		}
		lit := ast.NewIntegerLiteral(int32(value))
		ast.SetSpan(lit, tok.Span)
		return lit, nil
	case lexer.DoubleLiteral:
		p.advance()
		value, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, p.failf(tok.Span, "double literal %s is out of range for Double", tok.Lexeme)
		}
		lit := ast.NewDoubleLiteral(value)
		ast.SetSpan(lit, tok.Span)
		return lit, nil
	case lexer.StringLiteral:
		p.advance()
		lit := ast.NewStringLiteral(tok.Value)
		ast.SetSpan(lit, tok.Span)
		return lit, nil
	case lexer.True, lexer.False:
		p.advance()
		lit := ast.NewBooleanLiteral(tok.Kind == lexer.True)
		ast.SetSpan(lit, tok.Span)
		return lit, nil
	case lexer.Identifier:
		p.advance()
		id := ast.NewIdentifier(tok.Lexeme)
		ast.SetSpan(id, tok.Span)
		if p.check(lexer.LParen) {
			return p.parseCall(id)
		}
		return id, nil
	case lexer.LParen:
		p.advance()
		inner, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.RParen, "to close parenthesized expression"); err != nil {
			return nil, err
		}
		return inner, nil
	default:
		return nil, p.failExpected("expression")
	}
}

func (p *parser) parseCall(callee *ast.Identifier) (*ast.CallExpression, error) {
	p.advance() // '('
	var args []ast.Expression
	if !p.check(lexer.RParen) {
		for {
			arg, err := p.parseExpression()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
			if !p.match(lexer.Comma) {
				break
			}
		}
	}
	if _, err := p.expect(lexer.RParen, "to close argument list"); err != nil {
		return nil, err
	}
	call := ast.NewCallExpression(callee, args)
	ast.SetSpan(call, ast.Join(callee.Span(), p.previous().Span))
	return call, nil
}
