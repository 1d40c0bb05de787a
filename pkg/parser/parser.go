package parser

import (
	"errors"

	"microkotlin/interpreter-go/pkg/ast"
	"microkotlin/interpreter-go/pkg/diag"
	"microkotlin/interpreter-go/pkg/lexer"
)

// errSyntax aborts the current statement after its diagnostic has been
// recorded; the caller resynchronizes and keeps parsing.
var errSyntax = errors.New("parser: syntax error")

// ParseProgram lexes and parses source. Lex errors stop the pipeline before
// parsing, so the returned list holds either lexer or parser diagnostics.
func ParseProgram(source string) (*ast.Program, diag.List) {
	tokens, lexDiags := lexer.Lex(source)
	if len(lexDiags) > 0 {
		return nil, lexDiags
	}
	return ParseTokens(tokens)
}

// ParseFile is ParseProgram that also returns the source comments, for
// tools that print the tree back out.
func ParseFile(source string) (*ast.Program, []ast.Comment, diag.List) {
	tokens, comments, lexDiags := lexer.LexWithComments(source)
	if len(lexDiags) > 0 {
		return nil, nil, lexDiags
	}
	program, diags := ParseTokens(tokens)
	return program, comments, diags
}

// ParseTokens parses an EOF-terminated token stream. The program is returned
// even when diagnostics are reported; it then holds only the declarations
// that parsed cleanly.
func ParseTokens(tokens []lexer.Token) (*ast.Program, diag.List) {
	p := newParser(tokens)
	program := p.parseProgram()
	return program, p.diags.List()
}

// ParseExpression parses a single expression spanning the whole input.
func ParseExpression(source string) (ast.Expression, diag.List) {
	tokens, lexDiags := lexer.Lex(source)
	if len(lexDiags) > 0 {
		return nil, lexDiags
	}
	p := newParser(tokens)
	expr, err := p.parseExpression()
	if err == nil && !p.check(lexer.EOF) {
		p.failExpected("end of input")
	}
	if p.diags.Len() > 0 {
		return nil, p.diags.List()
	}
	return expr, nil
}

type parser struct {
	tokens []lexer.Token
	pos    int
	diags  *diag.Collector
}

func newParser(tokens []lexer.Token) *parser {
	if len(tokens) == 0 || tokens[len(tokens)-1].Kind != lexer.EOF {
		tokens = append(tokens, lexer.Token{Kind: lexer.EOF})
	}
	return &parser{tokens: tokens, diags: diag.NewCollector(diag.StageParser)}
}

func (p *parser) peek() lexer.Token {
	return p.tokens[p.pos]
}

func (p *parser) peekAt(offset int) lexer.Token {
	idx := p.pos + offset
	if idx >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[idx]
}

func (p *parser) previous() lexer.Token {
	if p.pos == 0 {
		return p.tokens[0]
	}
	return p.tokens[p.pos-1]
}

func (p *parser) atEnd() bool {
	return p.peek().Kind == lexer.EOF
}

func (p *parser) check(kind lexer.TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *parser) advance() lexer.Token {
	tok := p.peek()
	if !p.atEnd() {
		p.pos++
	}
	return tok
}

func (p *parser) match(kinds ...lexer.TokenKind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			p.advance()
			return true
		}
	}
	return false
}

// expect consumes a token of the given kind or reports what was found instead.
func (p *parser) expect(kind lexer.TokenKind, context string) (lexer.Token, error) {
	if p.check(kind) {
		return p.advance(), nil
	}
	what := kind.String()
	if context != "" {
		what += " " + context
	}
	return lexer.Token{}, p.failExpected(what)
}

func (p *parser) failExpected(what string) error {
	tok := p.peek()
	p.diags.Errorf(diag.ParseError, tok.Span, "expected %s, found %s", what, tok.Describe())
	return errSyntax
}

func (p *parser) failf(span ast.Span, format string, args ...any) error {
	p.diags.Errorf(diag.ParseError, span, format, args...)
	return errSyntax
}

// spanFrom covers the tokens from start through the last consumed token.
func (p *parser) spanFrom(start lexer.Token) ast.Span {
	return ast.Join(start.Span, p.previous().Span)
}

func isStatementKeyword(kind lexer.TokenKind) bool {
	switch kind {
	case lexer.Val, lexer.Var, lexer.Fun, lexer.If, lexer.While, lexer.Do, lexer.Return:
		return true
	}
	return false
}

// synchronize skips to the next statement boundary after a failed statement
// that began at token index start: past the next ';', up to a closing '}', or
// up to a statement keyword or an opening '{' once at least one token has
// been skipped. It reports whether it stopped at '{', in which case the body
// of a broken header parses as a bare block.
func (p *parser) synchronize(start int) bool {
	for !p.atEnd() {
		tok := p.peek()
		switch {
		case tok.Kind == lexer.Semicolon:
			p.advance()
			return false
		case tok.Kind == lexer.RBrace:
			if p.pos == start {
				p.advance()
			}
			return false
		case tok.Kind == lexer.LBrace && p.pos > start:
			return true
		case isStatementKeyword(tok.Kind) && p.pos > start:
			return false
		}
		p.advance()
	}
	return false
}

// skipElseHeader drops `else` or `else if (...)` left over from an if
// statement whose header failed to parse, stopping before its body.
func (p *parser) skipElseHeader() {
	p.advance()
	for !p.atEnd() && !p.check(lexer.LBrace) && !p.check(lexer.RBrace) {
		p.advance()
	}
}

// synchronizeTopLevel skips to the next top-level declaration keyword,
// stepping over balanced braces so a broken function is dropped whole.
func (p *parser) synchronizeTopLevel(start int) {
	depth := 0
	for !p.atEnd() {
		tok := p.peek()
		switch tok.Kind {
		case lexer.LBrace:
			depth++
		case lexer.RBrace:
			if depth > 0 {
				depth--
			}
		case lexer.Fun, lexer.Val, lexer.Var:
			if depth == 0 && p.pos > start {
				return
			}
		}
		p.advance()
	}
}
