package typechecker

import (
	"microkotlin/interpreter-go/pkg/ast"
	"microkotlin/interpreter-go/pkg/diag"
)

// BinaryKind is the evaluation strategy chosen for a binary operator.
type BinaryKind int

const (
	BinaryIntArithmetic BinaryKind = iota
	BinaryDoubleArithmetic
	BinaryConcat
	BinaryIntCompare
	BinaryDoubleCompare
	BinaryEquality
	BinaryLogical
)

func (k BinaryKind) String() string {
	switch k {
	case BinaryIntArithmetic:
		return "int-arithmetic"
	case BinaryDoubleArithmetic:
		return "double-arithmetic"
	case BinaryConcat:
		return "concat"
	case BinaryIntCompare:
		return "int-compare"
	case BinaryDoubleCompare:
		return "double-compare"
	case BinaryEquality:
		return "equality"
	case BinaryLogical:
		return "logical"
	default:
		return "unknown"
	}
}

// BinaryResolution describes how the interpreter evaluates a binary
// expression. Arithmetic and comparison on mixed Int/Double operands promote
// the Int side to Double.
type BinaryResolution struct {
	Operator ast.BinaryOperator
	Kind     BinaryKind
	Left     Type
	Right    Type
	Result   Type
}

type binaryKey struct {
	op    ast.BinaryOperator
	left  Type
	right Type
}

var binaryTable = buildBinaryTable()

// buildBinaryTable enumerates every legal (operator, left, right) triple.
func buildBinaryTable() map[binaryKey]BinaryResolution {
	table := make(map[binaryKey]BinaryResolution)
	add := func(op ast.BinaryOperator, left, right Type, kind BinaryKind, result Type) {
		table[binaryKey{op, left, right}] = BinaryResolution{Operator: op, Kind: kind, Left: left, Right: right, Result: result}
	}
	numeric := []Type{IntType, DoubleType}
	printable := []Type{IntType, DoubleType, BooleanType, StringType}

	for _, op := range []ast.BinaryOperator{ast.OpAdd, ast.OpSubtract, ast.OpMultiply, ast.OpDivide, ast.OpRemainder} {
		for _, l := range numeric {
			for _, r := range numeric {
				if l == IntType && r == IntType {
					add(op, l, r, BinaryIntArithmetic, IntType)
				} else {
					add(op, l, r, BinaryDoubleArithmetic, DoubleType)
				}
			}
		}
	}
	for _, other := range printable {
		add(ast.OpAdd, StringType, other, BinaryConcat, StringType)
		add(ast.OpAdd, other, StringType, BinaryConcat, StringType)
	}
	for _, op := range []ast.BinaryOperator{ast.OpLess, ast.OpLessEqual, ast.OpGreater, ast.OpGreaterEqual} {
		for _, l := range numeric {
			for _, r := range numeric {
				if l == IntType && r == IntType {
					add(op, l, r, BinaryIntCompare, BooleanType)
				} else {
					add(op, l, r, BinaryDoubleCompare, BooleanType)
				}
			}
		}
	}
	for _, op := range []ast.BinaryOperator{ast.OpEqual, ast.OpNotEqual} {
		for _, t := range []Type{IntType, DoubleType, BooleanType, StringType, UnitType} {
			add(op, t, t, BinaryEquality, BooleanType)
		}
	}
	add(ast.OpAnd, BooleanType, BooleanType, BinaryLogical, BooleanType)
	add(ast.OpOr, BooleanType, BooleanType, BinaryLogical, BooleanType)
	return table
}

// ResolveBinary looks up the static resolution for op applied to operands
// of the given types.
func ResolveBinary(op ast.BinaryOperator, left, right Type) (BinaryResolution, bool) {
	res, ok := binaryTable[binaryKey{op, left, right}]
	return res, ok
}

func (c *Checker) checkBinaryExpression(scope *scopeChain, expr *ast.BinaryExpression) Type {
	leftType := c.checkExpression(scope, expr.Left)
	rightType := c.checkExpression(scope, expr.Right)
	if isErrorType(leftType) || isErrorType(rightType) {
		return c.record(expr, Error)
	}
	res, ok := ResolveBinary(expr.Operator, leftType, rightType)
	if !ok {
		c.diags.Errorf(diag.InvalidOperator, expr.Span(), "operator '%s' cannot be applied to %s and %s", expr.Operator, typeName(leftType), typeName(rightType))
		return c.record(expr, Error)
	}
	c.binary[expr] = res
	return c.record(expr, res.Result)
}

func (c *Checker) checkUnaryExpression(scope *scopeChain, expr *ast.UnaryExpression) Type {
	operandType := c.checkExpression(scope, expr.Operand)
	if isErrorType(operandType) {
		return c.record(expr, Error)
	}
	switch expr.Operator {
	case ast.UnaryNegate:
		if isNumericType(operandType) {
			return c.record(expr, operandType)
		}
	case ast.UnaryNot:
		if operandType == BooleanType {
			return c.record(expr, BooleanType)
		}
	}
	c.diags.Errorf(diag.InvalidOperator, expr.Span(), "unary '%s' cannot be applied to %s", expr.Operator, typeName(operandType))
	return c.record(expr, Error)
}
