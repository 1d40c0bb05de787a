package lexer

import (
	"reflect"
	"testing"

	"microkotlin/interpreter-go/pkg/ast"
	"microkotlin/interpreter-go/pkg/diag"
)

func kinds(tokens []Token) []TokenKind {
	out := make([]TokenKind, len(tokens))
	for i, tok := range tokens {
		out[i] = tok.Kind
	}
	return out
}

func mustLex(t *testing.T, src string) []Token {
	t.Helper()
	tokens, diags := Lex(src)
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	return tokens
}

func TestLexDeclaration(t *testing.T) {
	tokens := mustLex(t, "val x: Int = 10;")
	want := []TokenKind{Val, Identifier, Colon, TypeInt, Assign, IntLiteral, Semicolon, EOF}
	if got := kinds(tokens); !reflect.DeepEqual(got, want) {
		t.Fatalf("kinds mismatch: got %v, want %v", got, want)
	}
	if tokens[1].Lexeme != "x" || tokens[5].Lexeme != "10" {
		t.Fatalf("unexpected lexemes: %v", tokens)
	}
}

func TestLexOperators(t *testing.T) {
	tokens := mustLex(t, "+ - * / % < <= > >= == != = ! && || ( ) { } , ; :")
	want := []TokenKind{
		Plus, Minus, Star, Slash, Percent, Less, LessEqual, Greater, GreaterEqual,
		EqualEqual, BangEqual, Assign, Bang, AndAnd, OrOr,
		LParen, RParen, LBrace, RBrace, Comma, Semicolon, Colon, EOF,
	}
	if got := kinds(tokens); !reflect.DeepEqual(got, want) {
		t.Fatalf("kinds mismatch: got %v, want %v", got, want)
	}
}

func TestLexKeywordsAndIdentifiers(t *testing.T) {
	tokens := mustLex(t, "fun main do while if else return true false Boolean String Double Unit value _tmp1")
	want := []TokenKind{Fun, Identifier, Do, While, If, Else, Return, True, False, TypeBoolean, TypeString, TypeDouble, TypeUnit, Identifier, Identifier, EOF}
	if got := kinds(tokens); !reflect.DeepEqual(got, want) {
		t.Fatalf("kinds mismatch: got %v, want %v", got, want)
	}
	if tokens[1].Kind.Category() != CategoryIdentifier || tokens[0].Kind.Category() != CategoryKeyword {
		t.Fatalf("unexpected categories")
	}
}

func TestLexNumbers(t *testing.T) {
	tokens := mustLex(t, "0 42 3.14 12.0")
	want := []TokenKind{IntLiteral, IntLiteral, DoubleLiteral, DoubleLiteral, EOF}
	if got := kinds(tokens); !reflect.DeepEqual(got, want) {
		t.Fatalf("kinds mismatch: got %v, want %v", got, want)
	}
	if tokens[2].Lexeme != "3.14" {
		t.Fatalf("expected lexeme 3.14, got %q", tokens[2].Lexeme)
	}
}

func TestLexStringEscapes(t *testing.T) {
	tokens := mustLex(t, `"a\"b\\c\nd\te"`)
	if tokens[0].Kind != StringLiteral {
		t.Fatalf("expected string literal, got %v", tokens[0])
	}
	if tokens[0].Value != "a\"b\\c\nd\te" {
		t.Fatalf("unexpected decoded value %q", tokens[0].Value)
	}
	if tokens[0].Lexeme != `"a\"b\\c\nd\te"` {
		t.Fatalf("lexeme should keep raw text, got %q", tokens[0].Lexeme)
	}
}

func TestLexCommentsAreSkipped(t *testing.T) {
	src := "// line comment\n/** doc\n comment */ val /* inline */ x"
	tokens := mustLex(t, src)
	want := []TokenKind{Val, Identifier, EOF}
	if got := kinds(tokens); !reflect.DeepEqual(got, want) {
		t.Fatalf("kinds mismatch: got %v, want %v", got, want)
	}
	if tokens[0].Span.Start.Line != 3 || tokens[0].Span.Start.Column != 13 {
		t.Fatalf("unexpected position for val: %+v", tokens[0].Span.Start)
	}
}

func TestLexPositions(t *testing.T) {
	tokens := mustLex(t, "fun main() {\n  printLn(1);\n}")
	call := tokens[5]
	if call.Lexeme != "printLn" {
		t.Fatalf("expected printLn token, got %v", call)
	}
	if call.Span.Start.Line != 2 || call.Span.Start.Column != 3 {
		t.Fatalf("printLn start mismatch: %+v", call.Span.Start)
	}
	if call.Span.End.Line != 2 || call.Span.End.Column != 10 {
		t.Fatalf("printLn end mismatch: %+v", call.Span.End)
	}
	eof := tokens[len(tokens)-1]
	if eof.Kind != EOF || eof.Span.Start.Line != 3 || eof.Span.Start.Column != 2 {
		t.Fatalf("unexpected EOF token: %+v", eof)
	}
}

func TestLexErrorsAreCollected(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		count int
		line  int
		col   int
	}{
		{name: "unknown character", src: "val x = 1 # 2;", count: 1, line: 1, col: 11},
		{name: "unterminated string", src: "val s = \"abc\nval y", count: 1, line: 1, col: 9},
		{name: "unterminated block comment", src: "val x /* never closed", count: 1, line: 1, col: 7},
		{name: "single ampersand", src: "a & b", count: 1, line: 1, col: 3},
		{name: "single bar", src: "a | b", count: 1, line: 1, col: 3},
		{name: "dangling dot", src: "val d = 1.;", count: 1, line: 1, col: 9},
		{name: "unknown escape", src: `"a\qb"`, count: 1, line: 1, col: 3},
		{name: "several errors", src: "@ val # x $", count: 3, line: 1, col: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, diags := Lex(tc.src)
			if len(diags) != tc.count {
				t.Fatalf("expected %d diagnostics, got %d (%v)", tc.count, len(diags), diags)
			}
			first := diags[0]
			if first.Kind != diag.LexError || first.Stage != diag.StageLexer {
				t.Fatalf("unexpected diagnostic %+v", first)
			}
			if first.Span.Start.Line != tc.line || first.Span.Start.Column != tc.col {
				t.Fatalf("position mismatch: got %d:%d, want %d:%d", first.Span.Start.Line, first.Span.Start.Column, tc.line, tc.col)
			}
		})
	}
}

func TestLexContinuesAfterError(t *testing.T) {
	tokens, diags := Lex("val # x")
	if len(diags) != 1 {
		t.Fatalf("expected one diagnostic, got %v", diags)
	}
	want := []TokenKind{Val, Identifier, EOF}
	if got := kinds(tokens); !reflect.DeepEqual(got, want) {
		t.Fatalf("kinds mismatch: got %v, want %v", got, want)
	}
}

func TestLexEmptySource(t *testing.T) {
	tokens := mustLex(t, "")
	if len(tokens) != 1 || tokens[0].Kind != EOF {
		t.Fatalf("expected lone EOF, got %v", tokens)
	}
}

func TestLexWithCommentsKeepsText(t *testing.T) {
	tokens, comments, diags := LexWithComments("val x: Int = 1; // one\n/* two\n three */ fun")
	if len(diags) > 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(tokens) != 9 {
		t.Fatalf("expected 9 tokens, got %d", len(tokens))
	}
	want := []ast.Comment{
		{Text: "// one", Span: ast.Span{Start: ast.Position{Line: 1, Column: 17}, End: ast.Position{Line: 1, Column: 23}}},
		{Text: "/* two\n three */", Span: ast.Span{Start: ast.Position{Line: 2, Column: 1}, End: ast.Position{Line: 3, Column: 10}}},
	}
	if !reflect.DeepEqual(comments, want) {
		t.Fatalf("comments mismatch\nwant: %#v\ngot:  %#v", want, comments)
	}
}
