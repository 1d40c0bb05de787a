package parser

import (
	"microkotlin/interpreter-go/pkg/ast"
	"microkotlin/interpreter-go/pkg/lexer"
)

func (p *parser) parseProgram() *ast.Program {
	startTok := p.peek()
	var decls []ast.Declaration
	for !p.atEnd() {
		start := p.pos
		decl, err := p.parseDeclaration()
		if err != nil {
			p.synchronizeTopLevel(start)
			continue
		}
		decls = append(decls, decl)
	}
	program := ast.NewProgram(decls)
	ast.SetSpan(program, ast.Join(startTok.Span, p.peek().Span))
	return program
}

func (p *parser) parseDeclaration() (ast.Declaration, error) {
	switch p.peek().Kind {
	case lexer.Val, lexer.Var:
		return p.parseVariableDeclaration()
	case lexer.Fun:
		return p.parseFunctionDeclaration()
	case lexer.RBrace:
		tok := p.advance()
		return nil, p.failf(tok.Span, "unexpected '}' outside of a block")
	default:
		return nil, p.failExpected("declaration ('val', 'var' or 'fun')")
	}
}

// parseVariableDeclaration parses `val|var name: Type = expr;`.
func (p *parser) parseVariableDeclaration() (*ast.VariableDeclaration, error) {
	keyword := p.advance()
	mutable := keyword.Kind == lexer.Var

	name, err := p.parseIdentifier("after '" + keyword.Lexeme + "'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Colon, "after variable name (declarations need an explicit type)"); err != nil {
		return nil, err
	}
	typeRef, err := p.parseTypeReference()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Assign, "to initialize '"+name.Name+"'"); err != nil {
		return nil, err
	}
	init, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Semicolon, "after variable declaration"); err != nil {
		return nil, err
	}
	decl := ast.NewVariableDeclaration(name, typeRef, init, mutable)
	ast.SetSpan(decl, p.spanFrom(keyword))
	return decl, nil
}

// parseFunctionDeclaration parses `fun name(a: T, ...)[: R] { ... }`. An
// omitted return type means Unit.
func (p *parser) parseFunctionDeclaration() (*ast.FunctionDeclaration, error) {
	keyword := p.advance()
	name, err := p.parseIdentifier("after 'fun'")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.LParen, "after function name"); err != nil {
		return nil, err
	}
	var params []*ast.Parameter
	if !p.check(lexer.RParen) {
		for {
			param, err := p.parseParameter()
			if err != nil {
				return nil, err
			}
			params = append(params, param)
			if !p.match(lexer.Comma) {
				break
			}
		}
	}
	if _, err := p.expect(lexer.RParen, "after parameters"); err != nil {
		return nil, err
	}
	var returnType *ast.TypeReference
	if p.match(lexer.Colon) {
		returnType, err = p.parseTypeReference()
		if err != nil {
			return nil, err
		}
	} else {
		returnType = ast.NewTypeReference(ast.TypeUnit)
		ast.SetSpan(returnType, p.previous().Span)
	}
	body, err := p.parseBlock("function body")
	if err != nil {
		return nil, err
	}
	fn := ast.NewFunctionDeclaration(name, params, returnType, body)
	ast.SetSpan(fn, p.spanFrom(keyword))
	return fn, nil
}

func (p *parser) parseParameter() (*ast.Parameter, error) {
	start := p.peek()
	name, err := p.parseIdentifier("for parameter name")
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.Colon, "after parameter name"); err != nil {
		return nil, err
	}
	typeRef, err := p.parseTypeReference()
	if err != nil {
		return nil, err
	}
	param := ast.NewParameter(name, typeRef)
	ast.SetSpan(param, p.spanFrom(start))
	return param, nil
}

func (p *parser) parseIdentifier(context string) (*ast.Identifier, error) {
	tok, err := p.expect(lexer.Identifier, context)
	if err != nil {
		return nil, err
	}
	id := ast.NewIdentifier(tok.Lexeme)
	ast.SetSpan(id, tok.Span)
	return id, nil
}

func (p *parser) parseTypeReference() (*ast.TypeReference, error) {
	tok := p.peek()
	name, ok := tok.Kind.TypeName()
	if !ok {
		return nil, p.failExpected("type name (Int, Double, Boolean, String or Unit)")
	}
	p.advance()
	ref := ast.NewTypeReference(name)
	ast.SetSpan(ref, tok.Span)
	return ref, nil
}
