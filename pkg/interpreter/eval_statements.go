package interpreter

import (
	"microkotlin/interpreter-go/pkg/ast"
	"microkotlin/interpreter-go/pkg/runtime"
)

func (i *Interpreter) execStatements(scope runtime.Scope, stmts []ast.Statement) error {
	for _, stmt := range stmts {
		if err := i.execStatement(scope, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (i *Interpreter) execStatement(scope runtime.Scope, stmt ast.Statement) error {
	switch s := stmt.(type) {
	case *ast.VariableDeclaration:
		return i.execVariableDeclaration(scope, s)
	case *ast.AssignmentStatement:
		return i.execAssignment(scope, s)
	case *ast.ExpressionStatement:
		_, err := i.evaluate(scope, s.Expression)
		return err
	case *ast.Block:
		return i.execBlock(scope, s)
	case *ast.IfStatement:
		return i.execIf(scope, s)
	case *ast.WhileStatement:
		for {
			ok, err := i.evaluateCondition(scope, s.Condition)
			if err != nil || !ok {
				return err
			}
			if err := i.execBlock(scope, s.Body); err != nil {
				return err
			}
		}
	case *ast.DoWhileStatement:
		for {
			if err := i.execBlock(scope, s.Body); err != nil {
				return err
			}
			ok, err := i.evaluateCondition(scope, s.Condition)
			if err != nil || !ok {
				return err
			}
		}
	case *ast.ReturnStatement:
		if s.Argument == nil {
			return returnSignal{value: runtime.Unit}
		}
		val, err := i.evaluate(scope, s.Argument)
		if err != nil {
			return err
		}
		return returnSignal{value: val}
	default:
		return internalError(stmt, nil, "unsupported statement %T", stmt)
	}
}

// execBlock runs block in a fresh child scope that is discarded on exit,
// including exits by return or runtime error.
func (i *Interpreter) execBlock(parent runtime.Scope, block *ast.Block) error {
	if block == nil {
		return nil
	}
	scope, err := i.env.Push(parent)
	if err != nil {
		return internalError(block, err, "open block scope")
	}
	defer func() { _ = i.env.Pop(scope) }()
	return i.execStatements(scope, block.Body)
}

func (i *Interpreter) execIf(scope runtime.Scope, stmt *ast.IfStatement) error {
	ok, err := i.evaluateCondition(scope, stmt.Condition)
	if err != nil {
		return err
	}
	if ok {
		return i.execBlock(scope, stmt.Then)
	}
	for _, clause := range stmt.ElseIfs {
		ok, err := i.evaluateCondition(scope, clause.Condition)
		if err != nil {
			return err
		}
		if ok {
			return i.execBlock(scope, clause.Body)
		}
	}
	if stmt.Else != nil {
		return i.execBlock(scope, stmt.Else)
	}
	return nil
}

func (i *Interpreter) evaluateCondition(scope runtime.Scope, cond ast.Expression) (bool, error) {
	val, err := i.evaluate(scope, cond)
	if err != nil {
		return false, err
	}
	b, ok := val.(runtime.BoolValue)
	if !ok {
		return false, internalError(cond, nil, "condition evaluated to %s", val.Kind())
	}
	return b.Val, nil
}

func (i *Interpreter) execVariableDeclaration(scope runtime.Scope, decl *ast.VariableDeclaration) error {
	val, err := i.evaluate(scope, decl.Initializer)
	if err != nil {
		return err
	}
	if err := i.env.Define(scope, decl.ID.Name, Binding{Value: val, Mutable: decl.Mutable}); err != nil {
		return internalError(decl, err, "declare '%s'", decl.ID.Name)
	}
	return nil
}

// execAssignment rebinds the variable in the scope that declared it.
func (i *Interpreter) execAssignment(scope runtime.Scope, stmt *ast.AssignmentStatement) error {
	val, err := i.evaluate(scope, stmt.Value)
	if err != nil {
		return err
	}
	name := stmt.Target.Name
	binding, owner, ok := i.env.Lookup(scope, name)
	if !ok {
		return internalError(stmt.Target, nil, "assignment to undeclared '%s'", name)
	}
	if !binding.Mutable {
		return internalError(stmt.Target, nil, "assignment to immutable '%s'", name)
	}
	binding.Value = val
	if err := i.env.Update(owner, name, binding); err != nil {
		return internalError(stmt.Target, err, "assign '%s'", name)
	}
	return nil
}
