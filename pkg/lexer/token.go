package lexer

import (
	"fmt"

	"microkotlin/interpreter-go/pkg/ast"
)

type TokenKind int

const (
	EOF TokenKind = iota

	Identifier
	IntLiteral
	DoubleLiteral
	StringLiteral

	// keywords
	Val
	Var
	Fun
	If
	Else
	While
	Do
	Return
	True
	False
	TypeInt
	TypeDouble
	TypeBoolean
	TypeString
	TypeUnit

	// operators
	Plus
	Minus
	Star
	Slash
	Percent
	Less
	LessEqual
	Greater
	GreaterEqual
	EqualEqual
	BangEqual
	Bang
	AndAnd
	OrOr
	Assign

	// punctuation
	LParen
	RParen
	LBrace
	RBrace
	Comma
	Colon
	Semicolon
)

var tokenNames = map[TokenKind]string{
	EOF:           "end of input",
	Identifier:    "identifier",
	IntLiteral:    "integer literal",
	DoubleLiteral: "double literal",
	StringLiteral: "string literal",
	Val:           "'val'",
	Var:           "'var'",
	Fun:           "'fun'",
	If:            "'if'",
	Else:          "'else'",
	While:         "'while'",
	Do:            "'do'",
	Return:        "'return'",
	True:          "'true'",
	False:         "'false'",
	TypeInt:       "'Int'",
	TypeDouble:    "'Double'",
	TypeBoolean:   "'Boolean'",
	TypeString:    "'String'",
	TypeUnit:      "'Unit'",
	Plus:          "'+'",
	Minus:         "'-'",
	Star:          "'*'",
	Slash:         "'/'",
	Percent:       "'%'",
	Less:          "'<'",
	LessEqual:     "'<='",
	Greater:       "'>'",
	GreaterEqual:  "'>='",
	EqualEqual:    "'=='",
	BangEqual:     "'!='",
	Bang:          "'!'",
	AndAnd:        "'&&'",
	OrOr:          "'||'",
	Assign:        "'='",
	LParen:        "'('",
	RParen:        "')'",
	LBrace:        "'{'",
	RBrace:        "'}'",
	Comma:         "','",
	Colon:         "':'",
	Semicolon:     "';'",
}

func (k TokenKind) String() string {
	if name, ok := tokenNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

var keywords = map[string]TokenKind{
	"val":     Val,
	"var":     Var,
	"fun":     Fun,
	"if":      If,
	"else":    Else,
	"while":   While,
	"do":      Do,
	"return":  Return,
	"true":    True,
	"false":   False,
	"Int":     TypeInt,
	"Double":  TypeDouble,
	"Boolean": TypeBoolean,
	"String":  TypeString,
	"Unit":    TypeUnit,
}

// Category groups token kinds the way diagnostics describe them.
type Category string

const (
	CategoryKeyword     Category = "keyword"
	CategoryIdentifier  Category = "identifier"
	CategoryLiteral     Category = "literal"
	CategoryOperator    Category = "operator"
	CategoryPunctuation Category = "punctuation"
	CategoryEnd         Category = "end"
)

func (k TokenKind) Category() Category {
	switch {
	case k == EOF:
		return CategoryEnd
	case k == Identifier:
		return CategoryIdentifier
	case k >= IntLiteral && k <= StringLiteral:
		return CategoryLiteral
	case k >= Val && k <= TypeUnit:
		return CategoryKeyword
	case k >= Plus && k <= Assign:
		return CategoryOperator
	default:
		return CategoryPunctuation
	}
}

// TypeName maps a type keyword to its AST name.
func (k TokenKind) TypeName() (ast.TypeName, bool) {
	switch k {
	case TypeInt:
		return ast.TypeInt, true
	case TypeDouble:
		return ast.TypeDouble, true
	case TypeBoolean:
		return ast.TypeBoolean, true
	case TypeString:
		return ast.TypeString, true
	case TypeUnit:
		return ast.TypeUnit, true
	}
	return "", false
}

// Token is an immutable lexeme with its source span. Value holds the decoded
// contents of string literals and equals Lexeme for everything else.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Value  string
	Span   ast.Span
}

func (t Token) String() string {
	if t.Kind == EOF {
		return t.Kind.String()
	}
	return fmt.Sprintf("%s %q", t.Kind, t.Lexeme)
}

// Describe renders the token for "expected X, found Y" messages.
func (t Token) Describe() string {
	switch t.Kind {
	case EOF:
		return "end of input"
	case Identifier:
		return fmt.Sprintf("identifier '%s'", t.Lexeme)
	case IntLiteral, DoubleLiteral, StringLiteral:
		return fmt.Sprintf("%s %s", t.Kind, t.Lexeme)
	default:
		return t.Kind.String()
	}
}
