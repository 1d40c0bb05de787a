package ast

// Identifier and literal helpers.

func ID(name string) *Identifier {
	return NewIdentifier(name)
}

func Int(value int32) *IntegerLiteral {
	return NewIntegerLiteral(value)
}

func Dbl(value float64) *DoubleLiteral {
	return NewDoubleLiteral(value)
}

func Bool(value bool) *BooleanLiteral {
	return NewBooleanLiteral(value)
}

func Str(value string) *StringLiteral {
	return NewStringLiteral(value)
}

func Ty(name TypeName) *TypeReference {
	return NewTypeReference(name)
}

// Expression helpers.

func Bin(op BinaryOperator, left, right Expression) *BinaryExpression {
	return NewBinaryExpression(op, left, right)
}

func Neg(operand Expression) *UnaryExpression {
	return NewUnaryExpression(UnaryNegate, operand)
}

func Not(operand Expression) *UnaryExpression {
	return NewUnaryExpression(UnaryNot, operand)
}

func Call(name string, args ...Expression) *CallExpression {
	return NewCallExpression(ID(name), args)
}

// Statement helpers.

func Val(name string, typ TypeName, init Expression) *VariableDeclaration {
	return NewVariableDeclaration(ID(name), Ty(typ), init, false)
}

func Var(name string, typ TypeName, init Expression) *VariableDeclaration {
	return NewVariableDeclaration(ID(name), Ty(typ), init, true)
}

func Assign(name string, value Expression) *AssignmentStatement {
	return NewAssignmentStatement(ID(name), value)
}

func ExprStmt(expr Expression) *ExpressionStatement {
	return NewExpressionStatement(expr)
}

func CallStmt(name string, args ...Expression) *ExpressionStatement {
	return NewExpressionStatement(Call(name, args...))
}

func Blk(stmts ...Statement) *Block {
	return NewBlock(stmts)
}

func If(cond Expression, then *Block, elseIfs []*ElseIfClause, elseBlock *Block) *IfStatement {
	return NewIfStatement(cond, then, elseIfs, elseBlock)
}

func ElseIf(cond Expression, body *Block) *ElseIfClause {
	return NewElseIfClause(cond, body)
}

func While(cond Expression, body *Block) *WhileStatement {
	return NewWhileStatement(cond, body)
}

func DoWhile(body *Block, cond Expression) *DoWhileStatement {
	return NewDoWhileStatement(body, cond)
}

func Ret(arg Expression) *ReturnStatement {
	return NewReturnStatement(arg)
}

// Declaration helpers.

func Param(name string, typ TypeName) *Parameter {
	return NewParameter(ID(name), Ty(typ))
}

func Fn(name string, params []*Parameter, ret TypeName, body ...Statement) *FunctionDeclaration {
	return NewFunctionDeclaration(ID(name), params, Ty(ret), Blk(body...))
}

// Main builds a `fun main()` declaration.
func Main(body ...Statement) *FunctionDeclaration {
	return Fn("main", nil, TypeUnit, body...)
}

func Prog(decls ...Declaration) *Program {
	return NewProgram(decls)
}
