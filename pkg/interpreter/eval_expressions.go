package interpreter

import (
	"math"

	"microkotlin/interpreter-go/pkg/ast"
	"microkotlin/interpreter-go/pkg/runtime"
	"microkotlin/interpreter-go/pkg/typechecker"
)

func (i *Interpreter) evaluate(scope runtime.Scope, expr ast.Expression) (runtime.Value, error) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return runtime.IntValue{Val: e.Value}, nil
	case *ast.DoubleLiteral:
		return runtime.DoubleValue{Val: e.Value}, nil
	case *ast.BooleanLiteral:
		return runtime.Bool(e.Value), nil
	case *ast.StringLiteral:
		return runtime.StringValue{Val: e.Value}, nil
	case *ast.Identifier:
		binding, _, ok := i.env.Lookup(scope, e.Name)
		if !ok {
			return nil, internalError(e, nil, "undefined variable '%s'", e.Name)
		}
		return binding.Value, nil
	case *ast.UnaryExpression:
		return i.evaluateUnary(scope, e)
	case *ast.BinaryExpression:
		return i.evaluateBinary(scope, e)
	case *ast.CallExpression:
		return i.evaluateCall(scope, e)
	default:
		return nil, internalError(expr, nil, "unsupported expression %T", expr)
	}
}

func (i *Interpreter) evaluateUnary(scope runtime.Scope, expr *ast.UnaryExpression) (runtime.Value, error) {
	operand, err := i.evaluate(scope, expr.Operand)
	if err != nil {
		return nil, err
	}
	switch v := operand.(type) {
	case runtime.IntValue:
		if expr.Operator == ast.UnaryNegate {
			return runtime.IntValue{Val: -v.Val}, nil
		}
	case runtime.DoubleValue:
		if expr.Operator == ast.UnaryNegate {
			return runtime.DoubleValue{Val: -v.Val}, nil
		}
	case runtime.BoolValue:
		if expr.Operator == ast.UnaryNot {
			return runtime.Bool(!v.Val), nil
		}
	}
	return nil, internalError(expr, nil, "unary '%s' applied to %s", expr.Operator, operand.Kind())
}

// evaluateBinary dispatches on the resolution the checker recorded for expr.
func (i *Interpreter) evaluateBinary(scope runtime.Scope, expr *ast.BinaryExpression) (runtime.Value, error) {
	res, ok := i.program.Binary(expr)
	if !ok {
		return nil, internalError(expr, nil, "no resolution recorded for '%s'", expr.Operator)
	}
	left, err := i.evaluate(scope, expr.Left)
	if err != nil {
		return nil, err
	}
	if res.Kind == typechecker.BinaryLogical {
		l, ok := left.(runtime.BoolValue)
		if !ok {
			return nil, internalError(expr.Left, nil, "logical operand is %s", left.Kind())
		}
		if (expr.Operator == ast.OpAnd && !l.Val) || (expr.Operator == ast.OpOr && l.Val) {
			return l, nil
		}
		return i.evaluate(scope, expr.Right)
	}
	right, err := i.evaluate(scope, expr.Right)
	if err != nil {
		return nil, err
	}

	switch res.Kind {
	case typechecker.BinaryConcat:
		return runtime.StringValue{Val: runtime.Text(left) + runtime.Text(right)}, nil
	case typechecker.BinaryEquality:
		eq := left == right
		if expr.Operator == ast.OpNotEqual {
			eq = !eq
		}
		return runtime.Bool(eq), nil
	case typechecker.BinaryIntArithmetic, typechecker.BinaryIntCompare:
		l, lok := left.(runtime.IntValue)
		r, rok := right.(runtime.IntValue)
		if !lok || !rok {
			return nil, internalError(expr, nil, "int operation on %s and %s", left.Kind(), right.Kind())
		}
		if res.Kind == typechecker.BinaryIntCompare {
			return runtime.Bool(compareOrdered(expr.Operator, l.Val, r.Val)), nil
		}
		return intArithmetic(expr, l.Val, r.Val)
	case typechecker.BinaryDoubleArithmetic, typechecker.BinaryDoubleCompare:
		l, lok := toDouble(left)
		r, rok := toDouble(right)
		if !lok || !rok {
			return nil, internalError(expr, nil, "double operation on %s and %s", left.Kind(), right.Kind())
		}
		if res.Kind == typechecker.BinaryDoubleCompare {
			return runtime.Bool(compareOrdered(expr.Operator, l, r)), nil
		}
		return doubleArithmetic(expr, l, r)
	default:
		return nil, internalError(expr, nil, "unsupported resolution %s", res.Kind)
	}
}

// intArithmetic uses 32-bit two's complement arithmetic; overflow wraps.
func intArithmetic(expr *ast.BinaryExpression, l, r int32) (runtime.Value, error) {
	switch expr.Operator {
	case ast.OpAdd:
		return runtime.IntValue{Val: l + r}, nil
	case ast.OpSubtract:
		return runtime.IntValue{Val: l - r}, nil
	case ast.OpMultiply:
		return runtime.IntValue{Val: l * r}, nil
	case ast.OpDivide:
		if r == 0 {
			return nil, runtimeErrorf(DivisionByZero, expr, "division by zero")
		}
		return runtime.IntValue{Val: l / r}, nil
	case ast.OpRemainder:
		if r == 0 {
			return nil, runtimeErrorf(DivisionByZero, expr, "remainder by zero")
		}
		return runtime.IntValue{Val: l % r}, nil
	}
	return nil, internalError(expr, nil, "unsupported int operator '%s'", expr.Operator)
}

// doubleArithmetic follows IEEE 754; division by zero yields an infinity or NaN.
func doubleArithmetic(expr *ast.BinaryExpression, l, r float64) (runtime.Value, error) {
	switch expr.Operator {
	case ast.OpAdd:
		return runtime.DoubleValue{Val: l + r}, nil
	case ast.OpSubtract:
		return runtime.DoubleValue{Val: l - r}, nil
	case ast.OpMultiply:
		return runtime.DoubleValue{Val: l * r}, nil
	case ast.OpDivide:
		return runtime.DoubleValue{Val: l / r}, nil
	case ast.OpRemainder:
		return runtime.DoubleValue{Val: math.Mod(l, r)}, nil
	}
	return nil, internalError(expr, nil, "unsupported double operator '%s'", expr.Operator)
}

func compareOrdered[T int32 | float64](op ast.BinaryOperator, l, r T) bool {
	switch op {
	case ast.OpLess:
		return l < r
	case ast.OpLessEqual:
		return l <= r
	case ast.OpGreater:
		return l > r
	case ast.OpGreaterEqual:
		return l >= r
	}
	return false
}

func toDouble(v runtime.Value) (float64, bool) {
	switch val := v.(type) {
	case runtime.IntValue:
		return float64(val.Val), true
	case runtime.DoubleValue:
		return val.Val, true
	}
	return 0, false
}

func (i *Interpreter) evaluateCall(scope runtime.Scope, call *ast.CallExpression) (runtime.Value, error) {
	target, ok := i.program.Call(call)
	if !ok {
		return nil, internalError(call, nil, "unresolved call to '%s'", call.Callee.Name)
	}
	args := make([]runtime.Value, len(call.Arguments))
	for idx, arg := range call.Arguments {
		val, err := i.evaluate(scope, arg)
		if err != nil {
			return nil, err
		}
		args[idx] = val
	}
	if target.IsBuiltin() {
		return i.callBuiltin(call, target.Builtin, args)
	}
	return i.callFunction(target.Function, args, call)
}
