package typechecker

import (
	"microkotlin/interpreter-go/pkg/ast"
	"microkotlin/interpreter-go/pkg/diag"
)

func (c *Checker) checkExpression(scope *scopeChain, expr ast.Expression) Type {
	switch e := expr.(type) {
	case nil:
		return Error
	case *ast.IntegerLiteral:
		return c.record(e, IntType)
	case *ast.DoubleLiteral:
		return c.record(e, DoubleType)
	case *ast.BooleanLiteral:
		return c.record(e, BooleanType)
	case *ast.StringLiteral:
		return c.record(e, StringType)
	case *ast.Identifier:
		sym, ok := scope.lookup(e.Name)
		if !ok {
			c.diags.Errorf(diag.UndefinedSymbol, e.Span(), "undefined variable '%s'", e.Name)
			return c.record(e, Error)
		}
		return c.record(e, sym.Type)
	case *ast.BinaryExpression:
		return c.checkBinaryExpression(scope, e)
	case *ast.UnaryExpression:
		return c.checkUnaryExpression(scope, e)
	case *ast.CallExpression:
		return c.checkCall(scope, e)
	default:
		c.internal(errUnsupported(expr))
		return Error
	}
}

// checkCall resolves the callee and validates arguments. The result type is
// the callee's declared result even when arguments are wrong, so a bad
// argument is reported once and does not taint the enclosing expression.
func (c *Checker) checkCall(scope *scopeChain, call *ast.CallExpression) Type {
	argTypes := make([]Type, len(call.Arguments))
	argsOK := true
	for i, arg := range call.Arguments {
		argTypes[i] = c.checkExpression(scope, arg)
		if isErrorType(argTypes[i]) {
			argsOK = false
		}
	}
	name := call.Callee.Name

	if b, ok := LookupBuiltin(name); ok {
		c.calls[call] = CallTarget{Builtin: name}
		if argsOK {
			c.checkBuiltinArguments(call, b, argTypes)
		}
		return c.record(call, b.Result)
	}

	fn, ok := c.functions[name]
	if !ok {
		if _, isVar := scope.lookup(name); isVar {
			c.diags.Errorf(diag.UndefinedSymbol, call.Callee.Span(), "'%s' is a variable, not a function", name)
		} else {
			c.diags.Errorf(diag.UndefinedSymbol, call.Callee.Span(), "undefined function '%s'", name)
		}
		return c.record(call, Error)
	}
	c.calls[call] = CallTarget{Function: fn}
	if c.inInitializer {
		c.diags.Errorf(diag.InvalidCall, call.Span(), "top-level initializers cannot call function '%s'", name)
	}
	if argsOK {
		c.checkFunctionArguments(call, fn, argTypes)
	}
	return c.record(call, fromTypeReference(fn.ReturnType))
}

func (c *Checker) checkBuiltinArguments(call *ast.CallExpression, b Builtin, argTypes []Type) {
	params, ok := b.overloadFor(len(argTypes))
	if !ok {
		c.diags.Errorf(diag.InvalidArgument, call.Span(), "'%s' expects %s argument(s), got %d", b.Name, describeArities(b.arities()), len(argTypes))
		return
	}
	for i, param := range params {
		actual := argTypes[i]
		if param == nil {
			if !isPrintable(actual) {
				c.diags.Errorf(diag.InvalidArgument, call.Arguments[i].Span(), "'%s' cannot print a value of type %s", b.Name, typeName(actual))
			}
			continue
		}
		if actual != param {
			c.diags.Errorf(diag.InvalidArgument, call.Arguments[i].Span(), "argument %d of '%s' must be %s, found %s", i+1, b.Name, typeName(param), typeName(actual))
		}
	}
}

func (c *Checker) checkFunctionArguments(call *ast.CallExpression, fn *ast.FunctionDeclaration, argTypes []Type) {
	if len(argTypes) != len(fn.Params) {
		c.diags.Errorf(diag.InvalidArgument, call.Span(), "'%s' expects %d argument(s), got %d", fn.ID.Name, len(fn.Params), len(argTypes))
		return
	}
	for i, param := range fn.Params {
		expected := fromTypeReference(param.TypeRef)
		if argTypes[i] != expected {
			c.diags.Errorf(diag.InvalidArgument, call.Arguments[i].Span(), "argument '%s' of '%s' must be %s, found %s", param.ID.Name, fn.ID.Name, typeName(expected), typeName(argTypes[i]))
		}
	}
}
