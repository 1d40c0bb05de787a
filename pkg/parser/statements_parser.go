package parser

import (
	"microkotlin/interpreter-go/pkg/ast"
	"microkotlin/interpreter-go/pkg/lexer"
)

// parseBlock parses `{ statement* }`, recovering statement by statement.
func (p *parser) parseBlock(context string) (*ast.Block, error) {
	open, err := p.expect(lexer.LBrace, "to open "+context)
	if err != nil {
		return nil, err
	}
	var body []ast.Statement
	// set while the statements being parsed are bodies of a broken header
	dangling := false
	for !p.check(lexer.RBrace) && !p.atEnd() {
		if dangling && p.check(lexer.Else) {
			p.skipElseHeader()
			continue
		}
		start := p.pos
		stmt, err := p.parseStatement()
		if err != nil {
			dangling = p.synchronize(start)
			continue
		}
		_, isBlock := stmt.(*ast.Block)
		dangling = dangling && isBlock
		body = append(body, stmt)
	}
	if _, err := p.expect(lexer.RBrace, "to close "+context); err != nil {
		return nil, err
	}
	block := ast.NewBlock(body)
	ast.SetSpan(block, p.spanFrom(open))
	return block, nil
}

func (p *parser) parseStatement() (ast.Statement, error) {
	switch p.peek().Kind {
	case lexer.Val, lexer.Var:
		return p.parseVariableDeclaration()
	case lexer.If:
		return p.parseIfStatement()
	case lexer.While:
		return p.parseWhileStatement()
	case lexer.Do:
		return p.parseDoWhileStatement()
	case lexer.Return:
		return p.parseReturnStatement()
	case lexer.LBrace:
		return p.parseBlock("block")
	case lexer.Fun:
		tok := p.advance()
		return nil, p.failf(tok.Span, "function declarations are only allowed at top level")
	case lexer.Identifier:
		if p.peekAt(1).Kind == lexer.Assign {
			return p.parseAssignment()
		}
	}
	return p.parseExpressionStatement()
}

func (p *parser) parseCondition(keyword string) (ast.Expression, error) {
	if _, err := p.expect(lexer.LParen, "after '"+keyword+"'"); err != nil {
		return nil, err
	}
	cond, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.RParen, "after "+keyword+" condition"); err != nil {
		return nil, err
	}
	return cond, nil
}

// parseIfStatement collects `else if` chains into a flat clause list.
func (p *parser) parseIfStatement() (*ast.IfStatement, error) {
	keyword := p.advance()
	cond, err := p.parseCondition("if")
	if err != nil {
		return nil, err
	}
	then, err := p.parseBlock("if body")
	if err != nil {
		return nil, err
	}
	var elseIfs []*ast.ElseIfClause
	var elseBlock *ast.Block
	for p.check(lexer.Else) {
		elseTok := p.advance()
		if p.match(lexer.If) {
			clauseCond, err := p.parseCondition("if")
			if err != nil {
				return nil, err
			}
			body, err := p.parseBlock("else-if body")
			if err != nil {
				return nil, err
			}
			clause := ast.NewElseIfClause(clauseCond, body)
			ast.SetSpan(clause, p.spanFrom(elseTok))
			elseIfs = append(elseIfs, clause)
			continue
		}
		elseBlock, err = p.parseBlock("else body")
		if err != nil {
			return nil, err
		}
		break
	}
	stmt := ast.NewIfStatement(cond, then, elseIfs, elseBlock)
	ast.SetSpan(stmt, p.spanFrom(keyword))
	return stmt, nil
}

func (p *parser) parseWhileStatement() (*ast.WhileStatement, error) {
	keyword := p.advance()
	cond, err := p.parseCondition("while")
	if err != nil {
		return nil, err
	}
	body, err := p.parseBlock("while body")
	if err != nil {
		return nil, err
	}
	stmt := ast.NewWhileStatement(cond, body)
	ast.SetSpan(stmt, p.spanFrom(keyword))
	return stmt, nil
}

// parseDoWhileStatement parses `do { ... } while (cond)` with an optional
// trailing ';'.
func (p *parser) parseDoWhileStatement() (*ast.DoWhileStatement, error) {
	keyword := p.advance()
	body, err := p.parseBlock("do body")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.While, "after do body"); err != nil {
		return nil, err
	}
	cond, err := p.parseCondition("while")
	if err != nil {
		return nil, err
	}
	p.match(lexer.Semicolon)
	stmt := ast.NewDoWhileStatement(body, cond)
	ast.SetSpan(stmt, p.spanFrom(keyword))
	return stmt, nil
}

func (p *parser) parseReturnStatement() (*ast.ReturnStatement, error) {
	keyword := p.advance()
	var arg ast.Expression
	if !p.check(lexer.Semicolon) {
		var err error
		arg, err = p.parseExpression()
		if err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(lexer.Semicolon, "after return"); err != nil {
		return nil, err
	}
	stmt := ast.NewReturnStatement(arg)
	ast.SetSpan(stmt, p.spanFrom(keyword))
	return stmt, nil
}

func (p *parser) parseAssignment() (*ast.AssignmentStatement, error) {
	nameTok := p.advance()
	target := ast.NewIdentifier(nameTok.Lexeme)
	ast.SetSpan(target, nameTok.Span)
	p.advance() // '='
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semicolon, "after assignment"); err != nil {
		return nil, err
	}
	stmt := ast.NewAssignmentStatement(target, value)
	ast.SetSpan(stmt, p.spanFrom(nameTok))
	return stmt, nil
}

func (p *parser) parseExpressionStatement() (*ast.ExpressionStatement, error) {
	start := p.peek()
	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if p.check(lexer.Assign) {
		return nil, p.failf(p.peek().Span, "invalid assignment target: only a variable name may be assigned")
	}
	if _, err := p.expect(lexer.Semicolon, "after expression"); err != nil {
		return nil, err
	}
	stmt := ast.NewExpressionStatement(expr)
	ast.SetSpan(stmt, p.spanFrom(start))
	return stmt, nil
}
