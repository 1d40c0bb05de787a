package ast

import "testing"

func TestPrintProgram(t *testing.T) {
	prog := Prog(
		Val("PI", TypeDouble, Dbl(3.14)),
		Fn("area", []*Parameter{Param("r", TypeInt)}, TypeDouble,
			Ret(Bin(OpMultiply, Bin(OpMultiply, ID("PI"), ID("r")), ID("r"))),
		),
		Main(
			Var("i", TypeInt, Int(0)),
			DoWhile(Blk(
				Assign("i", Bin(OpAdd, ID("i"), Int(1))),
			), Bin(OpLess, ID("i"), Int(3))),
			If(Not(Bin(OpEqual, ID("i"), Int(3))),
				Blk(CallStmt("printLn", Str("odd \"case\""))),
				[]*ElseIfClause{ElseIf(Bool(false), Blk())},
				Blk(CallStmt("printLn", Call("area", Neg(Bin(OpSubtract, ID("i"), Int(1)))))),
			),
		),
	)
	want := `val PI: Double = 3.14;

fun area(r: Int): Double {
  return PI * r * r;
}

fun main() {
  var i: Int = 0;
  do {
    i = i + 1;
  } while (i < 3);
  if (!(i == 3)) {
    printLn("odd \"case\"");
  } else if (false) {
  } else {
    printLn(area(-(i - 1)));
  }
}
`
	if got := Print(prog); got != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatExpressionParenthesizesRightOperand(t *testing.T) {
	cases := []struct {
		expr Expression
		want string
	}{
		{Bin(OpSubtract, Int(1), Bin(OpSubtract, Int(2), Int(3))), "1 - (2 - 3)"},
		{Bin(OpSubtract, Bin(OpSubtract, Int(1), Int(2)), Int(3)), "1 - 2 - 3"},
		{Bin(OpMultiply, Bin(OpAdd, Int(1), Int(2)), Int(3)), "(1 + 2) * 3"},
		{Bin(OpOr, Bin(OpAnd, Bool(true), Bool(false)), Bool(true)), "true && false || true"},
		{Dbl(1e8), "100000000.0"},
		{Str("tab\there"), `"tab\there"`},
	}
	for _, tc := range cases {
		if got := FormatExpression(tc.expr); got != tc.want {
			t.Fatalf("FormatExpression = %q, want %q", got, tc.want)
		}
	}
}

func TestJoinAndClearSpans(t *testing.T) {
	a := Span{Start: Position{Line: 2, Column: 5}, End: Position{Line: 2, Column: 9}}
	b := Span{Start: Position{Line: 1, Column: 3}, End: Position{Line: 1, Column: 4}}
	joined := Join(a, b)
	if joined.Start != b.Start || joined.End != a.End {
		t.Fatalf("unexpected join %+v", joined)
	}
	if Join(Span{}, a) != a || Join(a, Span{}) != a {
		t.Fatalf("zero spans must be ignored")
	}

	expr := Bin(OpAdd, ID("x"), Int(1))
	SetSpan(expr, a)
	SetSpan(expr.Left, b)
	ClearSpans(expr)
	count := 0
	Inspect(expr, func(n Node) bool {
		count++
		if !n.Span().IsZero() {
			t.Fatalf("span not cleared on %T", n)
		}
		return true
	})
	if count != 3 {
		t.Fatalf("expected 3 nodes, visited %d", count)
	}
}
