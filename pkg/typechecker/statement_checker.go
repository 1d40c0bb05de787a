package typechecker

import (
	"microkotlin/interpreter-go/pkg/ast"
	"microkotlin/interpreter-go/pkg/diag"
)

func (c *Checker) checkStatement(scope *scopeChain, stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		c.checkVariableDeclaration(scope, s)
	case *ast.AssignmentStatement:
		c.checkAssignment(scope, s)
	case *ast.ExpressionStatement:
		c.checkExpression(scope, s.Expression)
	case *ast.Block:
		c.checkBlock(scope, s)
	case *ast.IfStatement:
		c.checkCondition(scope, s.Condition, "if")
		c.checkBlock(scope, s.Then)
		for _, clause := range s.ElseIfs {
			c.checkCondition(scope, clause.Condition, "else if")
			c.checkBlock(scope, clause.Body)
		}
		if s.Else != nil {
			c.checkBlock(scope, s.Else)
		}
	case *ast.WhileStatement:
		c.checkCondition(scope, s.Condition, "while")
		c.checkBlock(scope, s.Body)
	case *ast.DoWhileStatement:
		c.checkBlock(scope, s.Body)
		c.checkCondition(scope, s.Condition, "do-while")
	case *ast.ReturnStatement:
		c.checkReturn(scope, s)
	}
}

func (c *Checker) checkBlock(scope *scopeChain, block *ast.Block) {
	if block == nil {
		return
	}
	inner := scope.nested()
	defer inner.close()
	for _, stmt := range block.Body {
		c.checkStatement(inner, stmt)
	}
}

func (c *Checker) checkCondition(scope *scopeChain, cond ast.Expression, construct string) {
	typ := c.checkExpression(scope, cond)
	if isErrorType(typ) || typ == BooleanType {
		return
	}
	c.diags.Errorf(diag.ConditionNotBoolean, cond.Span(), "%s condition must be Boolean, found %s", construct, typeName(typ))
}

// checkVariableDeclaration binds the symbol with its declared type even when
// the initializer is wrong, so later uses do not cascade.
func (c *Checker) checkVariableDeclaration(scope *scopeChain, decl *ast.VariableDeclaration) {
	declared := fromTypeReference(decl.TypeRef)
	if decl.Initializer != nil {
		actual := c.checkExpression(scope, decl.Initializer)
		if !isErrorType(actual) && actual != declared {
			c.diags.Errorf(diag.TypeMismatch, decl.Initializer.Span(), "'%s' is declared as %s but initialized with %s", decl.ID.Name, typeName(declared), typeName(actual))
		}
	}
	scope.define(decl.ID, Symbol{
		Name:    decl.ID.Name,
		Type:    declared,
		Mutable: decl.Mutable,
		Node:    decl,
	})
}

func (c *Checker) checkAssignment(scope *scopeChain, stmt *ast.AssignmentStatement) {
	valueType := c.checkExpression(scope, stmt.Value)
	name := stmt.Target.Name
	sym, ok := scope.lookup(name)
	if !ok {
		c.diags.Errorf(diag.UndefinedSymbol, stmt.Target.Span(), "cannot assign to undeclared variable '%s'", name)
		return
	}
	c.record(stmt.Target, sym.Type)
	if !sym.Mutable {
		c.diags.Errorf(diag.ReassignImmutable, stmt.Target.Span(), "cannot reassign '%s': it is declared with 'val'", name)
	}
	if !isErrorType(valueType) && valueType != sym.Type {
		c.diags.Errorf(diag.TypeMismatch, stmt.Value.Span(), "cannot assign %s to '%s' of type %s", typeName(valueType), name, typeName(sym.Type))
	}
}

func (c *Checker) checkReturn(scope *scopeChain, stmt *ast.ReturnStatement) {
	expected := c.returnType
	if expected == nil {
		c.diags.Errorf(diag.InvalidReturn, stmt.Span(), "return outside of a function")
		return
	}
	if stmt.Argument == nil {
		if expected != UnitType {
			c.diags.Errorf(diag.InvalidReturn, stmt.Span(), "missing return value of type %s", typeName(expected))
		}
		return
	}
	actual := c.checkExpression(scope, stmt.Argument)
	if isErrorType(actual) {
		return
	}
	if expected == UnitType && actual != UnitType {
		c.diags.Errorf(diag.InvalidReturn, stmt.Argument.Span(), "function returning Unit cannot return a value of type %s", typeName(actual))
		return
	}
	if actual != expected {
		c.diags.Errorf(diag.TypeMismatch, stmt.Argument.Span(), "return value has type %s, expected %s", typeName(actual), typeName(expected))
	}
}

// alwaysReturns reports whether every path through stmts ends in a return.
func alwaysReturns(stmts []ast.Statement) bool {
	for _, stmt := range stmts {
		if statementReturns(stmt) {
			return true
		}
	}
	return false
}

func statementReturns(stmt ast.Statement) bool {
	switch s := stmt.(type) {
	case *ast.ReturnStatement:
		return true
	case *ast.Block:
		return alwaysReturns(s.Body)
	case *ast.DoWhileStatement:
		return s.Body != nil && alwaysReturns(s.Body.Body)
	case *ast.IfStatement:
		if s.Else == nil || s.Then == nil || !alwaysReturns(s.Then.Body) {
			return false
		}
		for _, clause := range s.ElseIfs {
			if clause.Body == nil || !alwaysReturns(clause.Body.Body) {
				return false
			}
		}
		return alwaysReturns(s.Else.Body)
	default:
		return false
	}
}
