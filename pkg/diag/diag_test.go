package diag

import (
	"strings"
	"testing"

	"microkotlin/interpreter-go/pkg/ast"
)

func span(line, col int) ast.Span {
	return ast.Span{Start: ast.Position{Line: line, Column: col}, End: ast.Position{Line: line, Column: col + 1}}
}

func TestCollectorKeepsReportOrder(t *testing.T) {
	c := NewCollector(StageTypechecker)
	c.Errorf(TypeMismatch, span(3, 5), "cannot assign %s to '%s'", "String", "x")
	c.Warnf(UndefinedSymbol, span(1, 1), "unused")
	c.Errorf(ReassignImmutable, span(4, 2), "'y' is a val")

	list := c.List()
	if c.Len() != 3 || len(list) != 3 {
		t.Fatalf("expected 3 diagnostics, got %d", len(list))
	}
	kinds := list.Kinds()
	if kinds[0] != TypeMismatch || kinds[1] != UndefinedSymbol || kinds[2] != ReassignImmutable {
		t.Fatalf("unexpected order %v", kinds)
	}
	if list[0].Message != "typechecker: cannot assign String to 'x'" {
		t.Fatalf("unexpected message %q", list[0].Message)
	}
	if list[1].Severity != SeverityWarning || list[0].Stage != StageTypechecker {
		t.Fatalf("unexpected metadata %+v", list[1])
	}
	if !list.HasErrors() {
		t.Fatalf("expected errors in list")
	}

	list[0].Message = "changed"
	if c.List()[0].Message == "changed" {
		t.Fatalf("List must return a copy")
	}
}

func TestEmptyCollectorReturnsNil(t *testing.T) {
	if list := NewCollector(StageLexer).List(); list != nil {
		t.Fatalf("expected nil list, got %v", list)
	}
}

func TestListError(t *testing.T) {
	c := NewCollector(StageParser)
	c.Errorf(ParseError, span(1, 7), "expected ';'")
	if got := c.List().Error(); got != "1:7 parser: expected ';'" {
		t.Fatalf("unexpected single error %q", got)
	}
	c.Errorf(ParseError, ast.Span{}, "unexpected end of input")
	got := c.List().Error()
	if !strings.HasPrefix(got, "2 diagnostics:") || !strings.HasSuffix(got, "\n- parser: unexpected end of input") {
		t.Fatalf("unexpected multi error %q", got)
	}
}

func TestParseKind(t *testing.T) {
	kind, stage, ok := ParseKind("ConditionNotBoolean")
	if !ok || kind != ConditionNotBoolean || stage != StageTypechecker {
		t.Fatalf("unexpected ParseKind result %q %q %v", kind, stage, ok)
	}
	if _, stage, ok := ParseKind("LexError"); !ok || stage != StageLexer {
		t.Fatalf("LexError should belong to the lexer stage")
	}
	if _, _, ok := ParseKind("typemismatch"); ok {
		t.Fatalf("kind names are case sensitive")
	}
}
