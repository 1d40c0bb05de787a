package lexer

import (
	"strings"

	"microkotlin/interpreter-go/pkg/ast"
	"microkotlin/interpreter-go/pkg/diag"
)

// Lex converts source text into tokens terminated by a single EOF token.
// Lexing continues past malformed input so every LexError in the file is
// reported; the returned tokens are only meaningful when the list is empty.
func Lex(source string) ([]Token, diag.List) {
	tokens, _, diags := LexWithComments(source)
	return tokens, diags
}

// LexWithComments is Lex that also returns the comments it skipped, in
// source order.
func LexWithComments(source string) ([]Token, []ast.Comment, diag.List) {
	s := &scanner{
		src:   []rune(source),
		line:  1,
		col:   1,
		diags: diag.NewCollector(diag.StageLexer),
	}
	s.run()
	return s.tokens, s.comments, s.diags.List()
}

type scanner struct {
	src    []rune
	pos    int
	line   int
	col    int
	tokens   []Token
	comments []ast.Comment
	diags    *diag.Collector

	startPos  int
	startLine int
	startCol  int
}

func (s *scanner) run() {
	for {
		s.skipTrivia()
		s.mark()
		if s.atEnd() {
			s.emit(EOF, "")
			return
		}
		s.scanToken()
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.src)
}

func (s *scanner) peek() rune {
	if s.atEnd() {
		return 0
	}
	return s.src[s.pos]
}

func (s *scanner) peekNext() rune {
	if s.pos+1 >= len(s.src) {
		return 0
	}
	return s.src[s.pos+1]
}

func (s *scanner) advance() rune {
	ch := s.src[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

func (s *scanner) match(want rune) bool {
	if s.peek() != want || s.atEnd() {
		return false
	}
	s.advance()
	return true
}

func (s *scanner) mark() {
	s.startPos = s.pos
	s.startLine = s.line
	s.startCol = s.col
}

func (s *scanner) span() ast.Span {
	return ast.Span{
		Start: ast.Position{Line: s.startLine, Column: s.startCol},
		End:   ast.Position{Line: s.line, Column: s.col},
	}
}

func (s *scanner) lexeme() string {
	return string(s.src[s.startPos:s.pos])
}

func (s *scanner) emit(kind TokenKind, value string) {
	lexeme := s.lexeme()
	if kind != StringLiteral {
		value = lexeme
	}
	s.tokens = append(s.tokens, Token{Kind: kind, Lexeme: lexeme, Value: value, Span: s.span()})
}

func (s *scanner) keepComment() {
	text := strings.TrimRight(s.lexeme(), "\r")
	s.comments = append(s.comments, ast.Comment{Text: text, Span: s.span()})
}

func (s *scanner) errorf(format string, args ...any) {
	s.diags.Errorf(diag.LexError, s.span(), format, args...)
}

func (s *scanner) skipTrivia() {
	for !s.atEnd() {
		switch ch := s.peek(); {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			s.advance()
		case ch == '/' && s.peekNext() == '/':
			s.mark()
			for !s.atEnd() && s.peek() != '\n' {
				s.advance()
			}
			s.keepComment()
		case ch == '/' && s.peekNext() == '*':
			s.mark()
			s.advance()
			s.advance()
			closed := false
			for !s.atEnd() {
				if s.peek() == '*' && s.peekNext() == '/' {
					s.advance()
					s.advance()
					closed = true
					break
				}
				s.advance()
			}
			if !closed {
				s.errorf("unterminated block comment")
				continue
			}
			s.keepComment()
		default:
			return
		}
	}
}

func (s *scanner) scanToken() {
	ch := s.advance()
	switch {
	case isIdentStart(ch):
		s.identifier()
		return
	case isDigit(ch):
		s.number()
		return
	}

	switch ch {
	case '"':
		s.string()
	case '(':
		s.emit(LParen, "")
	case ')':
		s.emit(RParen, "")
	case '{':
		s.emit(LBrace, "")
	case '}':
		s.emit(RBrace, "")
	case ',':
		s.emit(Comma, "")
	case ':':
		s.emit(Colon, "")
	case ';':
		s.emit(Semicolon, "")
	case '+':
		s.emit(Plus, "")
	case '-':
		s.emit(Minus, "")
	case '*':
		s.emit(Star, "")
	case '/':
		s.emit(Slash, "")
	case '%':
		s.emit(Percent, "")
	case '<':
		if s.match('=') {
			s.emit(LessEqual, "")
		} else {
			s.emit(Less, "")
		}
	case '>':
		if s.match('=') {
			s.emit(GreaterEqual, "")
		} else {
			s.emit(Greater, "")
		}
	case '=':
		if s.match('=') {
			s.emit(EqualEqual, "")
		} else {
			s.emit(Assign, "")
		}
	case '!':
		if s.match('=') {
			s.emit(BangEqual, "")
		} else {
			s.emit(Bang, "")
		}
	case '&':
		if s.match('&') {
			s.emit(AndAnd, "")
		} else {
			s.errorf("unexpected character '&' (did you mean '&&'?)")
		}
	case '|':
		if s.match('|') {
			s.emit(OrOr, "")
		} else {
			s.errorf("unexpected character '|' (did you mean '||'?)")
		}
	default:
		s.errorf("unexpected character %q", ch)
	}
}

func (s *scanner) identifier() {
	for isIdentPart(s.peek()) {
		s.advance()
	}
	if kind, ok := keywords[s.lexeme()]; ok {
		s.emit(kind, "")
		return
	}
	s.emit(Identifier, "")
}

// number scans `digits` or `digits.digits`. Range checks happen in the parser,
// which owns literal conversion.
func (s *scanner) number() {
	for isDigit(s.peek()) {
		s.advance()
	}
	if s.peek() != '.' {
		s.emit(IntLiteral, "")
		return
	}
	s.advance()
	if !isDigit(s.peek()) {
		s.errorf("malformed number %q: expected digits after '.'", s.lexeme())
		return
	}
	for isDigit(s.peek()) {
		s.advance()
	}
	s.emit(DoubleLiteral, "")
}

func (s *scanner) string() {
	var b strings.Builder
	valid := true
	for {
		if s.atEnd() || s.peek() == '\n' {
			s.errorf("unterminated string literal")
			return
		}
		ch := s.advance()
		if ch == '"' {
			break
		}
		if ch != '\\' {
			b.WriteRune(ch)
			continue
		}
		if s.atEnd() || s.peek() == '\n' {
			continue
		}
		esc := s.advance()
		switch esc {
		case '"':
			b.WriteRune('"')
		case '\\':
			b.WriteRune('\\')
		case 'n':
			b.WriteRune('\n')
		case 't':
			b.WriteRune('\t')
		case 'r':
			b.WriteRune('\r')
		default:
			valid = false
			s.diags.Errorf(diag.LexError, ast.Span{
				Start: ast.Position{Line: s.line, Column: s.col - 2},
				End:   ast.Position{Line: s.line, Column: s.col},
			}, "unknown escape sequence '\\%c'", esc)
		}
	}
	if valid {
		s.emit(StringLiteral, b.String())
	}
}

func isDigit(ch rune) bool {
	return '0' <= ch && ch <= '9'
}

func isIdentStart(ch rune) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isIdentPart(ch rune) bool {
	return isIdentStart(ch) || isDigit(ch)
}
