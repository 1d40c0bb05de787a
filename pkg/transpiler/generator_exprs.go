package transpiler

import (
	"fmt"
	"strconv"
	"strings"

	"microkotlin/interpreter-go/pkg/ast"
	"microkotlin/interpreter-go/pkg/runtime"
	"microkotlin/interpreter-go/pkg/typechecker"
)

const (
	precUnary = 100
	precAtom  = 200
)

var builtinCalls = map[string]string{
	typechecker.BuiltinPrint:       "System.out.print",
	typechecker.BuiltinPrintLn:     "System.out.println",
	typechecker.BuiltinReadInt:     scannerField + ".nextInt",
	typechecker.BuiltinReadDouble:  scannerField + ".nextDouble",
	typechecker.BuiltinReadBoolean: scannerField + ".nextBoolean",
	typechecker.BuiltinReadLine:    scannerField + ".nextLine",
}

func (g *generator) expression(expr ast.Expression) (string, error) {
	text, _, err := g.expr(expr)
	return text, err
}

// expr renders expr and reports the precedence of its outermost operator so
// callers can parenthesize. Java shares MicroKotlin's operator precedence.
func (g *generator) expr(expr ast.Expression) (string, int, error) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return strconv.FormatInt(int64(e.Value), 10), precAtom, nil
	case *ast.DoubleLiteral:
		return runtime.FormatDouble(e.Value), precAtom, nil
	case *ast.BooleanLiteral:
		return strconv.FormatBool(e.Value), precAtom, nil
	case *ast.StringLiteral:
		return ast.QuoteString(e.Value), precAtom, nil
	case *ast.Identifier:
		name := g.identifier(e.Name)
		if name == "" {
			return "", 0, g.errorf(e, "Unit value '%s' has no Java equivalent", e.Name)
		}
		return name, precAtom, nil
	case *ast.UnaryExpression:
		operand, prec, err := g.expr(e.Operand)
		if err != nil {
			return "", 0, err
		}
		if prec < precUnary || strings.HasPrefix(operand, "-") || strings.HasPrefix(operand, "!") {
			operand = "(" + operand + ")"
		}
		return string(e.Operator) + operand, precUnary, nil
	case *ast.BinaryExpression:
		return g.binary(e)
	case *ast.CallExpression:
		text, err := g.call(e)
		return text, precAtom, err
	default:
		return "", 0, fmt.Errorf("transpiler: unsupported expression %T", expr)
	}
}

func (g *generator) operand(expr ast.Expression, min int) (string, error) {
	text, prec, err := g.expr(expr)
	if err != nil {
		return "", err
	}
	if prec < min {
		text = "(" + text + ")"
	}
	return text, nil
}

func (g *generator) binary(expr *ast.BinaryExpression) (string, int, error) {
	res, ok := g.program.Binary(expr)
	if !ok {
		return "", 0, fmt.Errorf("transpiler: no resolution recorded for '%s'", expr.Operator)
	}
	if res.Kind == typechecker.BinaryEquality {
		switch res.Left {
		case typechecker.StringType:
			return g.stringEquality(expr)
		case typechecker.UnitType:
			start := expr.Span().Start
			return "", 0, fmt.Errorf("transpiler: %d:%d Unit values cannot be compared in Java", start.Line, start.Column)
		}
	}
	prec := ast.BinaryPrecedence(expr.Operator)
	left, err := g.operand(expr.Left, prec)
	if err != nil {
		return "", 0, err
	}
	right, err := g.operand(expr.Right, prec+1)
	if err != nil {
		return "", 0, err
	}
	return left + " " + string(expr.Operator) + " " + right, prec, nil
}

// stringEquality compares by value; Java == on strings compares references.
func (g *generator) stringEquality(expr *ast.BinaryExpression) (string, int, error) {
	left, err := g.operand(expr.Left, precAtom)
	if err != nil {
		return "", 0, err
	}
	right, err := g.expression(expr.Right)
	if err != nil {
		return "", 0, err
	}
	text := left + ".equals(" + right + ")"
	if expr.Operator == ast.OpNotEqual {
		return "!" + text, precUnary, nil
	}
	return text, precAtom, nil
}

func (g *generator) call(call *ast.CallExpression) (string, error) {
	target, ok := g.program.Call(call)
	if !ok {
		return "", fmt.Errorf("transpiler: unresolved call to '%s'", call.Callee.Name)
	}
	args := make([]string, len(call.Arguments))
	for idx, arg := range call.Arguments {
		text, err := g.expression(arg)
		if err != nil {
			return "", err
		}
		args[idx] = text
	}
	callee := g.methods[call.Callee.Name]
	if target.IsBuiltin() {
		callee, ok = builtinCalls[target.Builtin]
		if !ok {
			return "", fmt.Errorf("transpiler: no Java form for built-in '%s'", target.Builtin)
		}
	}
	return callee + "(" + strings.Join(args, ", ") + ")", nil
}

// isConstant reports whether cond is a Java constant expression with the
// given Boolean value. Java treats loops over such conditions specially when
// deciding reachability.
func isConstant(cond ast.Expression, want bool) bool {
	v, ok := constValue(cond)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b == want
}

func constValue(expr ast.Expression) (any, bool) {
	switch e := expr.(type) {
	case *ast.BooleanLiteral:
		return e.Value, true
	case *ast.IntegerLiteral:
		return float64(e.Value), true
	case *ast.DoubleLiteral:
		return e.Value, true
	case *ast.UnaryExpression:
		v, ok := constValue(e.Operand)
		if !ok {
			return nil, false
		}
		switch x := v.(type) {
		case bool:
			return !x, e.Operator == ast.UnaryNot
		case float64:
			return -x, e.Operator == ast.UnaryNegate
		}
	case *ast.BinaryExpression:
		l, lok := constValue(e.Left)
		r, rok := constValue(e.Right)
		if !lok || !rok {
			return nil, false
		}
		if lb, ok := l.(bool); ok {
			rb, ok := r.(bool)
			if !ok {
				return nil, false
			}
			switch e.Operator {
			case ast.OpAnd:
				return lb && rb, true
			case ast.OpOr:
				return lb || rb, true
			case ast.OpEqual:
				return lb == rb, true
			case ast.OpNotEqual:
				return lb != rb, true
			}
			return nil, false
		}
		ln, lok := l.(float64)
		rn, rok := r.(float64)
		if !lok || !rok {
			return nil, false
		}
		switch e.Operator {
		case ast.OpLess:
			return ln < rn, true
		case ast.OpLessEqual:
			return ln <= rn, true
		case ast.OpGreater:
			return ln > rn, true
		case ast.OpGreaterEqual:
			return ln >= rn, true
		case ast.OpEqual:
			return ln == rn, true
		case ast.OpNotEqual:
			return ln != rn, true
		case ast.OpAdd:
			return ln + rn, true
		case ast.OpSubtract:
			return ln - rn, true
		case ast.OpMultiply:
			return ln * rn, true
		}
	}
	return nil, false
}
